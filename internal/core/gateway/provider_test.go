package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderAiSensy(t *testing.T) {
	provider, err := NewProvider(&ProviderConfig{
		Type:          ProviderAiSensy,
		AiSensyAPIKey: "key",
	})
	require.NoError(t, err)
	assert.Equal(t, "AiSensy", provider.GetProviderName())
}

func TestNewProviderCloudAPI(t *testing.T) {
	provider, err := NewProvider(&ProviderConfig{
		Type:            ProviderCloudAPI,
		CloudAPIPhoneID: "1234567890",
		CloudAPIToken:   "token",
	})
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp Cloud API (Official)", provider.GetProviderName())
}

func TestNewProviderMissingCredentials(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Type: ProviderAiSensy})
	assert.Error(t, err)

	_, err = NewProvider(&ProviderConfig{Type: ProviderCloudAPI, CloudAPIPhoneID: "1234567890"})
	assert.Error(t, err)
}

func TestNewProviderUnknownType(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Type: "twilio"})
	assert.Error(t, err)
}
