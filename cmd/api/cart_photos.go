package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ppangmap/internal/store"

	"github.com/go-chi/chi/v5"
)

// uploadCartPhotoHandler godoc
//
//	@Summary		Upload a cart photo
//	@Description	Uploads a photo for a cart the current user reported and appends its URL to the cart
//	@Tags			carts
//	@Accept			mpfd
//	@Produce		json
//	@Param			cartID	path		int		true	"Cart ID"
//	@Param			photo	formData	file	true	"Photo file, 5MB limit, JPEG or PNG"
//	@Success		201		{object}	Envelope	"Uploaded photo URL"
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		403		{object}	error	"Not the reporter"
//	@Failure		404		{object}	error	"Cart not found"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/carts/{cartID}/photos [post]
func (app *application) uploadCartPhotoHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

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

	if cart.OwnerID == nil || *cart.OwnerID != user.ID {
		app.forbiddenResponse(w, r, errors.New("only the reporter can add photos"))
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil { // 5 MB
		app.badRequestResponse(w, r, errors.New("unable to parse form, file size limit is 5MB"))
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("unable to retrieve file"))
		return
	}
	defer file.Close()

	// Allow only JPEG & PNG
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		app.badRequestResponse(w, r, errors.New("only JPEG and PNG images are allowed"))
		return
	}

	publicID := fmt.Sprintf("cart_%d_%d", cartID, time.Now().UnixNano())
	photoURL, err := app.uploadToCloudinaryWithID(file, publicID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Carts.AddPhotoURL(r.Context(), cartID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"photo_url": photoURL}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCartPhotoHandler godoc
//
//	@Summary		Delete a cart photo
//	@Description	Removes a photo URL from a cart the current user reported and destroys the Cloudinary asset
//	@Tags			carts
//	@Produce		json
//	@Param			cartID		path	int		true	"Cart ID"
//	@Param			photo_url	query	string	true	"Photo URL to remove"
//	@Success		204
//	@Failure		400	{object}	ErrorBadRequestResponse
//	@Failure		401	{object}	error	"Unauthorized"
//	@Failure		403	{object}	error	"Not the reporter"
//	@Failure		404	{object}	error	"Cart not found"
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/carts/{cartID}/photos [delete]
func (app *application) deleteCartPhotoHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid cart id"))
		return
	}

	photoURL := r.URL.Query().Get("photo_url")
	if photoURL == "" {
		app.badRequestResponse(w, r, errors.New("photo_url query parameter is required"))
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

	if cart.OwnerID == nil || *cart.OwnerID != user.ID {
		app.forbiddenResponse(w, r, errors.New("only the reporter can remove photos"))
		return
	}

	if err := app.store.Carts.RemovePhotoURL(r.Context(), cartID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// The row no longer references the asset; a leaked Cloudinary file is not
	// worth failing the request over.
	if err := app.deletePhotoFromCloudinary(photoURL); err != nil {
		app.logger.Errorw("error deleting photo from cloudinary", "cart_id", cartID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
