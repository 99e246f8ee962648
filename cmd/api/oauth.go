package main

import (
	"net/http"
	"strconv"

	"ppangmap/internal/store"

	"github.com/go-chi/chi/v5"
)

type OAuthExchangePayload struct {
	Code string `json:"code" validate:"required"`
}

// oauthExchangeHandler godoc
//
//	@Summary		Sign in with Google or Kakao
//	@Description	Exchanges an authorization code with the named provider, creates the user on first sign-in and returns a token pair.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			provider	path		string				true	"Identity provider"	Enums(google, kakao)
//	@Param			payload		body		OAuthExchangePayload	true	"Authorization code"
//	@Success		200			{object}	Envelope			"Token pair"
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		401			{object}	error	"Code rejected by the provider"
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/authentication/oauth/{provider} [post]
func (app *application) oauthExchangeHandler(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	var payload OAuthExchangePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	profile, err := app.oauth.Exchange(ctx, providerName, payload.Code)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	user := &store.User{
		Name:       profile.Name,
		Email:      profile.Email,
		Provider:   profile.Provider,
		ProviderID: &profile.ProviderID,
	}
	if profile.AvatarURL != "" {
		user.AvatarURL = &profile.AvatarURL
	}

	if err := app.store.Users.GetOrCreateOAuth(ctx, user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user_id":       strconv.FormatInt(user.ID, 10),
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
