package oauth

import "context"

// Profile is what an identity provider tells us about the user after a
// successful authorization-code exchange.
type Profile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// Provider defines a common interface for all identity providers
type Provider interface {
	Exchange(ctx context.Context, code string) (*Profile, error)
}
