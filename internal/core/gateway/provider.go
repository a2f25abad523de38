// Package gateway sends WhatsApp template campaigns through pluggable
// HTTP providers.
package gateway

import (
	"context"
	"fmt"
)

// Provider is the interface every WhatsApp gateway integration implements.
type Provider interface {
	// SendTemplate sends an approved template campaign to a phone number
	// (digits only, country code included) with the template's parameters
	// in positional order. Returns the provider's delivery id.
	SendTemplate(ctx context.Context, to, campaignName string, params []string) (string, error)

	// GetProviderName returns the provider name for logging
	GetProviderName() string
}

// ProviderType for the factory
type ProviderType string

const (
	ProviderAiSensy  ProviderType = "aisensy"
	ProviderCloudAPI ProviderType = "cloudapi"
)

// ProviderConfig holds provider configuration. The caller builds it from the
// application config; this package never reads the environment itself.
type ProviderConfig struct {
	Type ProviderType

	// AiSensy specific
	AiSensyAPIKey string
	AiSensyURL    string

	// Cloud API specific
	CloudAPIPhoneID string
	CloudAPIToken   string
	CloudAPIVersion string
}

// NewProvider creates a provider from config
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderAiSensy:
		if cfg.AiSensyAPIKey == "" {
			return nil, fmt.Errorf("AISENSY_API_KEY is required")
		}
		return NewAiSensyProvider(cfg.AiSensyAPIKey, cfg.AiSensyURL), nil

	case ProviderCloudAPI:
		if cfg.CloudAPIPhoneID == "" || cfg.CloudAPIToken == "" {
			return nil, fmt.Errorf("CLOUD_API_PHONE_ID and CLOUD_API_ACCESS_TOKEN are required")
		}
		return NewCloudAPIProvider(cfg.CloudAPIPhoneID, cfg.CloudAPIToken, cfg.CloudAPIVersion), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
