package main

import (
	"net/http"

	"ppangmap/internal/store"
)

// SessionResponse is what the client hydrates its signed-in state from.
type SessionResponse struct {
	User          *store.User `json:"user"`
	ActivityCount int         `json:"activity_count"`
	Tier          store.Tier  `json:"tier"`
}

// sessionHandler godoc
//
//	@Summary		Current session
//	@Description	Returns the signed-in user with their report count and contributor tier
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	Envelope
//	@Failure		401	{object}	error	"Unauthorized"
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/authentication/session [get]
func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	activityCount, err := app.store.Carts.CountByReporter(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := SessionResponse{
		User:          user,
		ActivityCount: activityCount,
		Tier:          store.TierFor(activityCount),
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
