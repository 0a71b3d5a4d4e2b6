package entity

import (
	"strings"
	"time"
)

// TokenPlaceholder is the substitution point inside message templates.
const TokenPlaceholder = "{token}"

const (
	// DefaultChallengeMessage is the acknowledgment returned when the
	// operator configures no template of their own.
	DefaultChallengeMessage = "Sent by SMS"
	// DefaultTokenValidity is the acceptance window in seconds.
	DefaultTokenValidity = 30
)

// Settings is the delivery configuration for the SMS second factor.
//
// It is built once at module init from the configuration source and passed by
// reference into the usecase; the core never reads ambient configuration.
type Settings struct {
	// Account is the provider account reference. Kept for operators; the
	// core logic does not consume it directly.
	Account string
	// Auth is the provider auth credential paired with Account.
	Auth string
	// ChallengeMessage is the template of the acknowledgment string returned
	// to the caller after a challenge. It is shown to the end user and does
	// not contain the token unless the operator templates it in.
	ChallengeMessage string
	// Sender is the provider-registered sender mask.
	Sender string
	// NoDelivery routes the token message to the log instead of the network.
	NoDelivery bool
	// TokenTemplate is the template of the message actually sent by SMS.
	TokenTemplate string
	// TokenValidity is the acceptance window in seconds. The engine step is
	// one second, so this is also the number of drift steps scanned.
	TokenValidity int
	// URL is the provider send endpoint.
	URL string
	// APIKey is the provider API credential.
	APIKey string
	// ChallengeCooldown is the minimum delay between outbound sends per device.
	ChallengeCooldown time.Duration
}

// RenderToken substitutes the code into a message template.
func RenderToken(template, code string) string {
	return strings.ReplaceAll(template, TokenPlaceholder, code)
}

// MissingDeliverySettings returns the names of required delivery settings that
// are absent. A non-empty result is a configuration error and must be raised
// before any network call.
func (s *Settings) MissingDeliverySettings() []string {
	var missing []string

	if strings.TrimSpace(s.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if strings.TrimSpace(s.URL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(s.Sender) == "" {
		missing = append(missing, "sender")
	}

	return missing
}
