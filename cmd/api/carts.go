package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"ppangmap/internal/geo"
	"ppangmap/internal/params"
	"ppangmap/internal/store"

	"github.com/go-chi/chi/v5"
)

// reportCooldown is how long a user has to wait between cart reports. The
// window is enforced here, not in the client, so retries through curl get the
// same answer as taps in the app.
const reportCooldown = 10 * time.Minute

type CreateCartPayload struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Category string  `json:"category" validate:"required,cartcategory"`
	Lat      float64 `json:"lat" validate:"required"`
	Lng      float64 `json:"lng" validate:"required"`
}

// listCartsHandler godoc
//
//	@Summary		List carts
//	@Description	Returns all active carts, or only those inside the viewport when sw_lat, sw_lng, ne_lat and ne_lng are all given
//	@Tags			carts
//	@Produce		json
//	@Param			sw_lat	query		number	false	"Viewport southwest latitude"
//	@Param			sw_lng	query		number	false	"Viewport southwest longitude"
//	@Param			ne_lat	query		number	false	"Viewport northeast latitude"
//	@Param			ne_lng	query		number	false	"Viewport northeast longitude"
//	@Success		200		{object}	Envelope					"Carts with review aggregates"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Router			/carts [get]
func (app *application) listCartsHandler(w http.ResponseWriter, r *http.Request) {
	bounds, err := params.ParseBounds(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var carts []store.Cart
	if bounds == nil {
		// First paint: the client has not reported a viewport yet.
		carts, err = app.store.Carts.List(r.Context())
	} else {
		carts, err = app.store.Carts.ListInBounds(r.Context(), *bounds)
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, carts); err != nil {
		app.internalServerError(w, r, err)
	}
}

// CartWithShare is a cart plus the short code the client builds share links
// from.
type CartWithShare struct {
	*store.Cart
	ShareCode string `json:"share_code"`
}

// getCartHandler godoc
//
//	@Summary		Get a cart
//	@Description	Returns one cart with its review aggregates
//	@Tags			carts
//	@Produce		json
//	@Param			cartID	path		int	true	"Cart ID"
//	@Success		200		{object}	Envelope
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	error	"Not found"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/carts/{cartID} [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid cart id"))
		return
	}

	cart, err := app.store.Carts.GetByID(r.Context(), cartID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	shareCode, err := app.shareCodes.Encode(cart.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, CartWithShare{Cart: cart, ShareCode: shareCode}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createCartHandler godoc
//
//	@Summary		Report a cart
//	@Description	Reports a new street cart at a map coordinate. Rejected outside the service region, during the 10-minute report cooldown, or when a cart already sits at the exact coordinate.
//	@Tags			carts
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateCartPayload	true	"Cart details"
//	@Success		201		{object}	Envelope			"Cart created"
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		409		{object}	error	"A cart already exists at that coordinate"
//	@Failure		422		{object}	error	"Outside the service region"
//	@Failure		429		{object}	error	"Report cooldown active"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/carts [post]
func (app *application) createCartHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateCartPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	coord := geo.Coordinate{Lat: payload.Lat, Lng: payload.Lng}
	if !geo.ServiceRegion.Contains(coord) {
		app.unprocessableEntityResponse(w, r, errors.New("서비스 지역 안에서만 제보할 수 있어요"))
		return
	}

	ctx := r.Context()

	last, found, err := app.store.Cooldowns.Last(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if found {
		elapsed := time.Since(last)
		if elapsed < reportCooldown {
			remaining := int(math.Ceil((reportCooldown - elapsed).Minutes()))
			app.cooldownResponse(w, r, fmt.Sprintf("제보는 10분에 한 번만 할 수 있어요. %d분 후에 다시 시도해주세요.", remaining))
			return
		}
	}

	cart := &store.Cart{
		OwnerID:  &user.ID,
		Name:     payload.Name,
		Category: payload.Category,
		Lat:      payload.Lat,
		Lng:      payload.Lng,
	}

	// The store refuses the insert when an active cart already sits at the
	// exact coordinate.
	if err := app.store.Carts.Create(ctx, cart); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("이미 같은 위치에 제보된 가게가 있어요"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.store.Cooldowns.Touch(ctx, user.ID, time.Now().UTC()); err != nil {
		// the cart is already in; a lost cooldown marker only lets the user
		// report again sooner
		app.logger.Errorw("error recording report cooldown", "user_id", user.ID, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusCreated, cart); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCartHandler godoc
//
//	@Summary		Delete a cart
//	@Description	Deletes a cart the current user reported
//	@Tags			carts
//	@Produce		json
//	@Param			cartID	path	int	true	"Cart ID"
//	@Success		204
//	@Failure		400	{object}	ErrorBadRequestResponse
//	@Failure		401	{object}	error	"Unauthorized"
//	@Failure		404	{object}	error	"Not found or not the owner"
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/carts/{cartID} [delete]
func (app *application) deleteCartHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid cart id"))
		return
	}

	if err := app.store.Carts.Delete(r.Context(), cartID, user.ID); err != nil {
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

// resolveShareCodeHandler godoc
//
//	@Summary		Resolve a share code
//	@Description	Resolves a short cart share code (ppang.app/c/{code}) to the cart it points at
//	@Tags			carts
//	@Produce		json
//	@Param			code	path		string	true	"Share code"
//	@Success		200		{object}	Envelope
//	@Failure		404		{object}	error	"Unknown code"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/c/{code} [get]
func (app *application) resolveShareCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	cartID, err := app.shareCodes.Decode(code)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	cart, err := app.store.Carts.GetByID(r.Context(), cartID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, cart); err != nil {
		app.internalServerError(w, r, err)
	}
}
