package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// ExpoAdapter sends review notifications through Expo's push gateway. The
// indirection exists so handler tests can swap in an in-memory sender.
type ExpoAdapter struct {
	client *exponent.Client
}

func NewExpoAdapter(c *exponent.Client) *ExpoAdapter {
	return &ExpoAdapter{client: c}
}

func (a *ExpoAdapter) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	return a.client.Publish(ctx, msgs)
}
