package gateway

import (
	"context"
	"fmt"
	"time"
)

// Service wraps a Provider with a delivery timeout so a slow gateway can
// never stall lead processing past the configured limit.
type Service struct {
	provider Provider
	timeout  time.Duration
}

// NewService creates a gateway service with the given timeout in ms.
func NewService(provider Provider, timeoutMs int) *Service {
	if timeoutMs <= 0 {
		timeoutMs = 15000
	}
	return &Service{
		provider: provider,
		timeout:  time.Duration(timeoutMs) * time.Millisecond,
	}
}

// Send dispatches a template campaign and returns the provider delivery id.
func (s *Service) Send(ctx context.Context, to, campaignName string, params []string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("destination phone is empty")
	}
	if campaignName == "" {
		return "", fmt.Errorf("campaign name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.provider.SendTemplate(ctx, to, campaignName, params)
}

// ProviderName returns the underlying provider's display name.
func (s *Service) ProviderName() string {
	return s.provider.GetProviderName()
}
