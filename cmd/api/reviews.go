package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ppangmap/internal/notifications"
	"ppangmap/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateReviewPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Content string `json:"content" validate:"required,max=1000"`
}

// getCartReviewsHandler godoc
//
//	@Summary		List reviews for a cart
//	@Description	Returns a cart's reviews, newest first, with the reviewer's contributor tier
//	@Tags			reviews
//	@Produce		json
//	@Param			cartID	path		int	true	"Cart ID"
//	@Success		200		{object}	Envelope
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/carts/{cartID}/reviews [get]
func (app *application) getCartReviewsHandler(w http.ResponseWriter, r *http.Request) {
	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid cart id"))
		return
	}

	reviews, err := app.store.Reviews.ListByCart(r.Context(), cartID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, reviews); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createCartReviewHandler godoc
//
//	@Summary		Add a review
//	@Description	Adds a review to a cart. The reviewer's name, avatar and activity count are snapshotted at submission time.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			cartID	path		int					true	"Cart ID"
//	@Param			payload	body		CreateReviewPayload	true	"Review details"
//	@Success		201		{object}	Envelope			"Review created"
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		404		{object}	error	"Cart not found"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/carts/{cartID}/reviews [post]
func (app *application) createCartReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid cart id"))
		return
	}

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	cart, err := app.store.Carts.GetByID(ctx, cartID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Activity count is snapshotted on the review so the tier shown next to
	// it reflects the reviewer as they were when they wrote it.
	activityCount, err := app.store.Carts.CountByReporter(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	review := &store.Review{
		CartID:            cartID,
		UserID:            user.ID,
		UserName:          user.Name,
		UserAvatar:        user.AvatarURL,
		Rating:            payload.Rating,
		Content:           payload.Content,
		UserActivityCount: activityCount,
	}

	if err := app.store.Reviews.Create(ctx, review); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	review.Tier = store.TierFor(activityCount)

	// Tell the reporter their cart got a review. Best effort, off the request
	// path.
	if cart.OwnerID != nil && *cart.OwnerID != user.ID {
		ownerID := *cart.OwnerID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			err := notifications.NotifyCartReviewed(
				ctx, app.push, app.store.PushTokens,
				ownerID, cart.ID, cart.Name, user.Name, payload.Rating,
			)
			if err != nil {
				app.logger.Errorw("error sending review notification", "cart_id", cart.ID, "error", err)
			}
		}()
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCartReviewHandler godoc
//
//	@Summary		Delete a review
//	@Description	Deletes a review the current user wrote
//	@Tags			reviews
//	@Produce		json
//	@Param			cartID		path	int	true	"Cart ID"
//	@Param			reviewID	path	int	true	"Review ID"
//	@Success		204
//	@Failure		400	{object}	ErrorBadRequestResponse
//	@Failure		401	{object}	error	"Unauthorized"
//	@Failure		404	{object}	error	"Not found or not the author"
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/carts/{cartID}/reviews/{reviewID} [delete]
func (app *application) deleteCartReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review id"))
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), reviewID, user.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
