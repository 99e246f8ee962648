package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ppangmap/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postReview(t *testing.T, mux http.Handler, token string, cartID int64, payload CreateReviewPayload) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/v1/carts/%d/reviews", cartID), bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return executeRequest(req, mux)
}

func TestCreateReviewSnapshotsReviewer(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	owner := seedUser(t, app, "주인", "owner@example.com")
	cart := seedCart(t, app, owner.ID, "붕어빵 아저씨", "붕어빵", 35.10, 129.00)

	reviewer := seedUser(t, app, "리뷰어", "reviewer@example.com")
	// Twelve reports puts the reviewer into the silver tier.
	for i := 0; i < 12; i++ {
		seedCart(t, app, reviewer.ID, fmt.Sprintf("가게 %d", i), "기타", 36.0+float64(i)*0.01, 127.0)
	}

	rr := postReview(t, mux, bearerFor(t, app, reviewer.ID), cart.ID, CreateReviewPayload{
		Rating: 5, Content: "겉바속촉",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Data store.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, reviewer.ID, resp.Data.UserID)
	assert.Equal(t, "리뷰어", resp.Data.UserName)
	assert.Equal(t, 12, resp.Data.UserActivityCount)
	assert.Equal(t, "실버 붕어", resp.Data.Tier.Name)
}

func TestCreateReviewRequiresSession(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := postReview(t, mux, "", 1, CreateReviewPayload{Rating: 4, Content: "맛있어요"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateReviewValidation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	owner := seedUser(t, app, "주인", "owner@example.com")
	cart := seedCart(t, app, owner.ID, "붕어빵", "붕어빵", 35.10, 129.00)
	token := bearerFor(t, app, owner.ID)

	rr := postReview(t, mux, token, cart.ID, CreateReviewPayload{Rating: 6, Content: "별점이 이상해요"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postReview(t, mux, token, cart.ID, CreateReviewPayload{Rating: 3, Content: ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateReviewMissingCart(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "리뷰어", "reviewer@example.com")

	rr := postReview(t, mux, bearerFor(t, app, user.ID), 999, CreateReviewPayload{
		Rating: 4, Content: "어디 갔지",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListReviewsPerCartNewestFirst(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	owner := seedUser(t, app, "주인", "owner@example.com")
	cartA := seedCart(t, app, owner.ID, "가게 A", "붕어빵", 35.10, 129.00)
	cartB := seedCart(t, app, owner.ID, "가게 B", "호떡", 35.11, 129.01)

	reviewer := seedUser(t, app, "리뷰어", "reviewer@example.com")
	token := bearerFor(t, app, reviewer.ID)

	require.Equal(t, http.StatusCreated, postReview(t, mux, token, cartA.ID, CreateReviewPayload{Rating: 4, Content: "첫 번째"}).Code)
	require.Equal(t, http.StatusCreated, postReview(t, mux, token, cartB.ID, CreateReviewPayload{Rating: 2, Content: "다른 가게"}).Code)
	require.Equal(t, http.StatusCreated, postReview(t, mux, token, cartA.ID, CreateReviewPayload{Rating: 5, Content: "두 번째"}).Code)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/carts/%d/reviews", cartA.ID), nil)
	rr := executeRequest(req, mux)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []store.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.Data, 2)
	assert.Equal(t, "두 번째", resp.Data[0].Content)
	assert.Equal(t, "첫 번째", resp.Data[1].Content)
	for _, review := range resp.Data {
		assert.Equal(t, cartA.ID, review.CartID)
	}
}

func TestDeleteReviewOwnerScoped(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	owner := seedUser(t, app, "주인", "owner@example.com")
	cart := seedCart(t, app, owner.ID, "붕어빵", "붕어빵", 35.10, 129.00)

	author := seedUser(t, app, "작성자", "author@example.com")
	rr := postReview(t, mux, bearerFor(t, app, author.ID), cart.ID, CreateReviewPayload{
		Rating: 4, Content: "지울 거예요",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Data store.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	path := fmt.Sprintf("/v1/carts/%d/reviews/%d", cart.ID, created.Data.ID)

	// The cart owner is not the review author; they cannot remove it.
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", bearerFor(t, app, owner.ID))
	assert.Equal(t, http.StatusNotFound, executeRequest(req, mux).Code)

	// The author can.
	req = httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", bearerFor(t, app, author.ID))
	assert.Equal(t, http.StatusNoContent, executeRequest(req, mux).Code)
}
