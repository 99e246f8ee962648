package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ppangmap/internal/auth"
	"ppangmap/internal/oauth"
	"ppangmap/internal/ratelimiter"
	"ppangmap/internal/sharecode"
	"ppangmap/internal/store"

	"github.com/9ssi7/exponent"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMailer struct {
	Sent int
}

func (m *mockMailer) Send(templateFile, username, email string, data any) (int, error) {
	m.Sent++
	return http.StatusOK, nil
}

type mockPush struct {
	mu        sync.Mutex
	Published []*exponent.Message
}

func (m *mockPush) Publish(_ context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, msgs...)
	return nil, nil
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	shareCodes, err := sharecode.New("test-salt", 6)
	require.NoError(t, err)

	return &application{
		config: config{
			env:         "test",
			frontendURL: "https://ppang.app",
			auth: authConfig{
				basic: basicConfig{user: "admin", pass: "admin"},
			},
		},
		store:  store.NewMockStorage(),
		logger: zap.NewNop().Sugar(),
		mailer: &mockMailer{},
		authenticator: auth.NewJWTAuthenticator(
			"test-secret", "test-refresh-secret",
			"Ppangmap", "Ppangmap",
			time.Hour, 24*time.Hour,
		),
		oauth:       oauth.NewManager(),
		push:        &mockPush{},
		shareCodes:  shareCodes,
		rateLimiter: ratelimiter.NewFixedWindowLimiter(1000, time.Second),
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// seedUser puts a user straight into the mock store and returns it.
func seedUser(t *testing.T, app *application, name, email string) *store.User {
	t.Helper()

	user := &store.User{Name: name, Email: email}
	require.NoError(t, user.Password.Set("secret123"))
	require.NoError(t, app.store.Users.Create(context.Background(), user))
	return user
}

// bearerFor returns an Authorization header value for the given user.
func bearerFor(t *testing.T, app *application, userID int64) string {
	t.Helper()

	accessToken, _, err := app.authenticator.GenerateTokens(userID)
	require.NoError(t, err)
	return fmt.Sprintf("Bearer %s", accessToken)
}

// seedCart puts a cart straight into the mock store and returns it.
func seedCart(t *testing.T, app *application, ownerID int64, name, category string, lat, lng float64) *store.Cart {
	t.Helper()

	cart := &store.Cart{
		OwnerID:  &ownerID,
		Name:     name,
		Category: category,
		Lat:      lat,
		Lng:      lng,
	}
	require.NoError(t, app.store.Carts.Create(context.Background(), cart))
	return cart
}

func mockCarts(app *application) *store.MockCartsStore {
	return app.store.Carts.(*store.MockCartsStore)
}

func mockCooldowns(app *application) *store.MockCooldownsStore {
	return app.store.Cooldowns.(*store.MockCooldownsStore)
}
