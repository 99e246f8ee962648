package main

import (
	"errors"
	"net/http"
	"strconv"

	"ppangmap/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

// setAuthCookies sets access + refresh tokens as HttpOnly cookies.
// Web browsers store/send these automatically; JS cannot read them (HttpOnly).
func (app *application) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	// Access token cookie (short lived)
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.auth.token.accessTokenExp.Seconds()),
	})

	// Refresh token cookie (long lived, refresh/logout only)
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/v1/authentication",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.auth.token.refreshTokenExp.Seconds()),
	})
}

func (app *application) clearAuthCookies(w http.ResponseWriter) {
	expire := func(name, path string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			HttpOnly: true,
			Secure:   app.config.env == "production",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}

	expire("access_token", "/")
	expire("refresh_token", "/v1/authentication")
}

// createTokenCookieHandler godoc
//
//	@Summary		Web login (cookie)
//	@Description	Same login logic as /authentication/token, but sets HttpOnly cookies instead of returning tokens.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateUserTokenPayload	true	"User credentials"
//	@Success		200		{object}	Envelope				"user_id"
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/authentication/web/token [post]
func (app *application) createTokenCookieHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Save refresh token in DB for rotation/revocation
	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAuthCookies(w, accessToken, refreshToken)

	// The web client never sees the tokens themselves.
	_ = app.jsonResponse(w, http.StatusOK, map[string]string{
		"user_id": strconv.FormatInt(user.ID, 10),
	})
}

// refreshTokenCookieHandler godoc
//
//	@Summary		Refresh web session (cookie)
//	@Description	Rotates the token pair held in HttpOnly cookies.
//	@Tags			authentication
//	@Produce		json
//	@Success		204
//	@Failure		401	{object}	error
//	@Failure		500	{object}	error
//	@Router			/authentication/web/refresh [post]
func (app *application) refreshTokenCookieHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("refresh_token")
	if err != nil || c.Value == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("missing refresh token"))
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(c.Value)
	if err != nil || !token.Valid {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid claims"))
		return
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid sub claim"))
		return
	}
	userID := int64(sub)

	// Ensure refresh token matches DB (rotation safety)
	saved, err := app.store.Users.GetRefreshToken(r.Context(), userID)
	if err != nil || saved != c.Value {
		app.unauthorizedErrorResponse(w, r, errors.New("refresh token mismatch"))
		return
	}

	accessToken, newRefresh, err := app.authenticator.GenerateTokens(userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), userID, newRefresh); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAuthCookies(w, accessToken, newRefresh)

	w.WriteHeader(http.StatusNoContent)
}

// logoutCookieHandler godoc
//
//	@Summary		Web logout (cookie)
//	@Description	Revokes the refresh token and clears the session cookies.
//	@Tags			authentication
//	@Produce		json
//	@Success		204
//	@Failure		401	{object}	error
//	@Router			/authentication/web/logout [post]
func (app *application) logoutCookieHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("access_token")
	if err != nil || c.Value == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	tok, err := app.authenticator.ValidateAccessToken(c.Value)
	if err != nil || !tok.Valid {
		// The session is unusable either way; clear what we can.
		app.clearAuthCookies(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if claims, ok := tok.Claims.(jwt.MapClaims); ok {
		if sub, ok := claims["sub"].(float64); ok {
			if err := app.store.Users.DeleteRefreshToken(r.Context(), int64(sub)); err != nil {
				app.logger.Warnw("failed to delete refresh token on logout", "error", err)
			}
		}
	}

	app.clearAuthCookies(w)

	w.WriteHeader(http.StatusNoContent)
}

// webSessionHandler godoc
//
//	@Summary		Get current web session (cookie)
//	@Description	Reads the access_token cookie, validates it and returns the signed-in user with their contributor tier.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	Envelope
//	@Failure		401	{object}	error
//	@Router			/authentication/web/session [get]
func (app *application) webSessionHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("access_token")
	if err != nil || c.Value == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	tok, err := app.authenticator.ValidateAccessToken(c.Value)
	if err != nil || tok == nil || !tok.Valid {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	subFloat, ok := claims["sub"].(float64)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}
	userID := int64(subFloat)

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	activityCount, err := app.store.Carts.CountByReporter(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	_ = app.jsonResponse(w, http.StatusOK, SessionResponse{
		User:          user,
		ActivityCount: activityCount,
		Tier:          store.TierFor(activityCount),
	})
}
