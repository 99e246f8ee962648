package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, mux http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	return executeRequest(req, mux)
}

func TestRegisterLoginSession(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := postJSON(t, mux, "/v1/authentication/user", RegisterUserPayload{
		Name: "새 회원", Email: "new@example.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, app.mailer.(*mockMailer).Sent)

	rr = postJSON(t, mux, "/v1/authentication/token", CreateUserTokenPayload{
		Email: "new@example.com", Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var tokens struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.Data["access_token"])
	require.NotEmpty(t, tokens.Data["refresh_token"])

	req := httptest.NewRequest(http.MethodGet, "/v1/authentication/session", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.Data["access_token"])
	rr = executeRequest(req, mux)
	require.Equal(t, http.StatusOK, rr.Code)

	var session struct {
		Data SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.Equal(t, "새 회원", session.Data.User.Name)
	assert.Equal(t, 0, session.Data.ActivityCount)
	assert.Equal(t, "브론즈 붕어", session.Data.Tier.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	seedUser(t, app, "기존 회원", "taken@example.com")

	rr := postJSON(t, mux, "/v1/authentication/user", RegisterUserPayload{
		Name: "새 회원", Email: "taken@example.com", Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	seedUser(t, app, "회원", "user@example.com")

	rr := postJSON(t, mux, "/v1/authentication/token", CreateUserTokenPayload{
		Email: "user@example.com", Password: "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "회원", "user@example.com")

	_, refreshToken, err := app.authenticator.GenerateTokens(user.ID)
	require.NoError(t, err)
	require.NoError(t, app.store.Users.SaveRefreshToken(httptest.NewRequest("GET", "/", nil).Context(), user.ID, refreshToken))

	rr := postJSON(t, mux, "/v1/authentication/refresh", RefreshPayload{RefreshToken: refreshToken})
	require.Equal(t, http.StatusOK, rr.Code)

	var tokens struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.Data["refresh_token"])

	// The old token was rotated out; replaying it fails.
	rr = postJSON(t, mux, "/v1/authentication/refresh", RefreshPayload{RefreshToken: refreshToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshTokenNotSaved(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "회원", "user@example.com")

	// Valid signature, but the server never stored this token.
	_, refreshToken, err := app.authenticator.GenerateTokens(user.ID)
	require.NoError(t, err)

	rr := postJSON(t, mux, "/v1/authentication/refresh", RefreshPayload{RefreshToken: refreshToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutClearsRefreshToken(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "회원", "user@example.com")

	ctx := httptest.NewRequest("GET", "/", nil).Context()
	require.NoError(t, app.store.Users.SaveRefreshToken(ctx, user.ID, "some-refresh-token"))

	req := httptest.NewRequest(http.MethodPost, "/v1/users/logout", nil)
	req.Header.Set("Authorization", bearerFor(t, app, user.ID))
	rr := executeRequest(req, mux)
	require.Equal(t, http.StatusNoContent, rr.Code)

	saved, err := app.store.Users.GetRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestHealthRequiresBasicAuth(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rr := executeRequest(req, mux)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.SetBasicAuth("admin", "admin")
	rr = executeRequest(req, mux)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMalformedAccessTokenRejected(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/authentication/session", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := executeRequest(req, mux)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
