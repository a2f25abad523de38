package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AiSensyProvider sends approved template campaigns through the AiSensy
// campaign API. Campaigns are created in the AiSensy dashboard; we only
// reference them by name.
type AiSensyProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAiSensyProvider creates a new AiSensy provider
func NewAiSensyProvider(apiKey, baseURL string) *AiSensyProvider {
	if baseURL == "" {
		baseURL = "https://backend.aisensy.com/campaign/t1/api/v2"
	}
	return &AiSensyProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type aisensyRequest struct {
	APIKey         string   `json:"apiKey"`
	CampaignName   string   `json:"campaignName"`
	Destination    string   `json:"destination"`
	UserName       string   `json:"userName"`
	TemplateParams []string `json:"templateParams"`
}

type aisensyResponse struct {
	Success     bool   `json:"success"`
	SubmittedID string `json:"submitted_message_id"`
	ErrorMsg    string `json:"errorMessage"`
}

// SendTemplate sends a campaign to the destination number.
func (p *AiSensyProvider) SendTemplate(ctx context.Context, to, campaignName string, params []string) (string, error) {
	if params == nil {
		params = []string{}
	}
	payload := aisensyRequest{
		APIKey:         p.apiKey,
		CampaignName:   campaignName,
		Destination:    to,
		UserName:       "edvantage-crm",
		TemplateParams: params,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("AiSensy API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result aisensyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Some AiSensy endpoints answer with a bare "Success" string
		log.Printf("⚠️ AiSensy returned non-JSON body: %s", string(respBody))
		return "", nil
	}
	if result.ErrorMsg != "" {
		return "", fmt.Errorf("AiSensy rejected campaign %q: %s", campaignName, result.ErrorMsg)
	}

	log.Printf("✅ AiSensy campaign %s sent to %s", campaignName, to)
	return result.SubmittedID, nil
}

// GetProviderName returns the provider name
func (p *AiSensyProvider) GetProviderName() string {
	return "AiSensy"
}
