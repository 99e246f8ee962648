package oauth

import (
	"context"
	"fmt"
)

type Manager struct {
	providers map[string]Provider
}

func NewManager() *Manager {
	return &Manager{providers: make(map[string]Provider)}
}

func (m *Manager) RegisterProvider(name string, provider Provider) {
	m.providers[name] = provider
}

func (m *Manager) Exchange(ctx context.Context, name, code string) (*Profile, error) {
	provider, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not registered: %s", name)
	}
	return provider.Exchange(ctx, code)
}
