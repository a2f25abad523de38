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

// CloudAPIProvider sends template messages via the WhatsApp Cloud API
// (Official Business API).
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type CloudAPIProvider struct {
	baseURL     string
	phoneID     string // WhatsApp Business Phone Number ID
	accessToken string // Meta Business Access Token
	client      *http.Client
}

// NewCloudAPIProvider creates a new WhatsApp Cloud API provider
func NewCloudAPIProvider(phoneID, accessToken, apiVersion string) *CloudAPIProvider {
	if apiVersion == "" {
		apiVersion = "v18.0"
	}
	return &CloudAPIProvider{
		baseURL:     fmt.Sprintf("https://graph.facebook.com/%s/%s", apiVersion, phoneID),
		phoneID:     phoneID,
		accessToken: accessToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendTemplate sends an approved template. Cloud API addresses templates by
// name with body parameters in positional order, which maps one to one onto
// our campaign model.
func (p *CloudAPIProvider) SendTemplate(ctx context.Context, to, campaignName string, params []string) (string, error) {
	components := []map[string]interface{}{}
	if len(params) > 0 {
		parameters := make([]map[string]string, 0, len(params))
		for _, param := range params {
			parameters = append(parameters, map[string]string{
				"type": "text",
				"text": param,
			})
		}
		components = append(components, map[string]interface{}{
			"type":       "body",
			"parameters": parameters,
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":       campaignName,
			"language":   map[string]string{"code": "en"},
			"components": components,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("Cloud API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	deliveryID := ""
	if len(result.Messages) > 0 {
		deliveryID = result.Messages[0].ID
	}

	log.Printf("✅ Cloud API template %s sent to %s", campaignName, to)
	return deliveryID, nil
}

// GetProviderName returns the provider name
func (p *CloudAPIProvider) GetProviderName() string {
	return "WhatsApp Cloud API (Official)"
}
