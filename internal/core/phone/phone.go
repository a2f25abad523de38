// Package phone holds the canonical phone normalization used for lead dedup.
//
// Inbound sources submit phone numbers in whatever shape their forms collect
// ("+91 98765 43210", "098765-43210", "9876543210"), so the dedup key has to be
// a fixed canonical form. Policy: parse with libphonenumber against the
// workspace's default region and store the E.164 digits without the "+"
// ("919876543210"). Input that libphonenumber cannot parse degrades to a
// digits-only string, keeping the last 10 digits when longer, so free-form
// submissions from the same person still converge on one key.
package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize returns the canonical dedup form of a raw phone string.
// region is an ISO 3166-1 alpha-2 code used when the input has no country code.
func Normalize(raw, region string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	if region == "" {
		region = "IN"
	}

	parsed, err := phonenumbers.Parse(trimmed, region)
	if err == nil && phonenumbers.IsValidNumber(parsed) {
		e164 := phonenumbers.Format(parsed, phonenumbers.E164)
		return strings.TrimPrefix(e164, "+"), nil
	}

	// Fallback for junk the parser rejects: digits only, last 10 kept
	digits := stripNonDigits(trimmed)
	if digits == "" {
		return "", fmt.Errorf("phone number has no digits: %q", raw)
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
