package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ppangmap/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCart(t *testing.T, mux http.Handler, token string, payload CreateCartPayload) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/carts", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return executeRequest(req, mux)
}

func TestCreateCartRequiresSession(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := postCart(t, mux, "", CreateCartPayload{
		Name: "붕어빵 아저씨", Category: "붕어빵", Lat: 35.10, Lng: 129.00,
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, mockCarts(app).Calls, "an unauthenticated report must not touch the cart store")
}

func TestCreateCartAndCooldown(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")
	token := bearerFor(t, app, user.ID)

	// First report inside the service region lands.
	rr := postCart(t, mux, token, CreateCartPayload{
		Name: "Test Cart", Category: "붕어빵", Lat: 35.10, Lng: 129.00,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Data store.Cart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Test Cart", created.Data.Name)
	assert.Equal(t, "붕어빵", created.Data.Category)
	require.NotNil(t, created.Data.OwnerID)
	assert.Equal(t, user.ID, *created.Data.OwnerID)

	// A second report inside ten minutes is refused even at another spot.
	rr = postCart(t, mux, token, CreateCartPayload{
		Name: "호떡집", Category: "호떡", Lat: 35.11, Lng: 129.01,
	})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Once the window has passed the same report goes through.
	mockCooldowns(app).LastReports[user.ID] = time.Now().Add(-11 * time.Minute)

	rr = postCart(t, mux, token, CreateCartPayload{
		Name: "호떡집", Category: "호떡", Lat: 35.11, Lng: 129.01,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateCartCooldownMentionsRemainingMinutes(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")
	token := bearerFor(t, app, user.ID)

	mockCooldowns(app).LastReports[user.ID] = time.Now().Add(-3 * time.Minute)

	rr := postCart(t, mux, token, CreateCartPayload{
		Name: "붕어빵", Category: "붕어빵", Lat: 35.10, Lng: 129.00,
	})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "7분")
}

func TestCreateCartAtExactCooldownBoundary(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")
	token := bearerFor(t, app, user.ID)

	// Exactly ten minutes after the last report the window is over.
	mockCooldowns(app).LastReports[user.ID] = time.Now().Add(-reportCooldown)

	rr := postCart(t, mux, token, CreateCartPayload{
		Name: "경계 가게", Category: "붕어빵", Lat: 35.10, Lng: 129.00,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateCartDuplicateCoordinate(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	other := seedUser(t, app, "다른사람", "u2@example.com")
	seedCart(t, app, other.ID, "기존 가게", "붕어빵", 35.10, 129.00)

	user := seedUser(t, app, "제보왕", "u1@example.com")
	token := bearerFor(t, app, user.ID)

	rr := postCart(t, mux, token, CreateCartPayload{
		Name: "같은 자리", Category: "호떡", Lat: 35.10, Lng: 129.00,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreateCartOutsideServiceRegion(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "여행자", "u1@example.com")
	token := bearerFor(t, app, user.ID)

	// Paris is a fine city but not in scope.
	rr := postCart(t, mux, token, CreateCartPayload{
		Name: "Crêperie", Category: "기타", Lat: 48.85, Lng: 2.35,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateCartRejectsUnknownCategory(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")
	token := bearerFor(t, app, user.ID)

	rr := postCart(t, mux, token, CreateCartPayload{
		Name: "버거트럭", Category: "햄버거", Lat: 35.10, Lng: 129.00,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListCartsInViewport(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")

	inside := seedCart(t, app, user.ID, "안쪽", "붕어빵", 35.10, 128.10)
	onLatEdge := seedCart(t, app, user.ID, "남쪽 경계", "호떡", 35.0, 128.10)
	onLngEdge := seedCart(t, app, user.ID, "동쪽 경계", "군고구마", 35.10, 128.2)
	outside := seedCart(t, app, user.ID, "바깥", "붕어빵", 35.30, 128.10)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/carts?sw_lat=35.0&sw_lng=128.0&ne_lat=35.2&ne_lng=128.2", nil)
	rr := executeRequest(req, mux)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []store.Cart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	ids := make(map[int64]bool)
	for _, c := range resp.Data {
		ids[c.ID] = true
	}

	// Both axes filter inclusively, so carts sitting exactly on a bound are in.
	assert.True(t, ids[inside.ID])
	assert.True(t, ids[onLatEdge.ID])
	assert.True(t, ids[onLngEdge.ID])
	assert.False(t, ids[outside.ID])
}

func TestListCartsWithoutViewportReturnsAll(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")
	seedCart(t, app, user.ID, "부산", "붕어빵", 35.10, 129.00)
	seedCart(t, app, user.ID, "서울", "호떡", 37.56, 126.97)

	req := httptest.NewRequest(http.MethodGet, "/v1/carts", nil)
	rr := executeRequest(req, mux)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []store.Cart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestListCartsRejectsPartialViewport(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/carts?sw_lat=35.0&ne_lat=35.2", nil)
	rr := executeRequest(req, mux)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteCartOwnerScoped(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	owner := seedUser(t, app, "주인", "owner@example.com")
	stranger := seedUser(t, app, "남", "stranger@example.com")
	cart := seedCart(t, app, owner.ID, "내 가게", "붕어빵", 35.10, 129.00)

	// Someone else cannot delete it.
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/v1/carts/%d", cart.ID), nil)
	req.Header.Set("Authorization", bearerFor(t, app, stranger.ID))
	rr := executeRequest(req, mux)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The reporter can.
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/v1/carts/%d", cart.ID), nil)
	req.Header.Set("Authorization", bearerFor(t, app, owner.ID))
	rr = executeRequest(req, mux)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err := app.store.Carts.GetByID(req.Context(), cart.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSweepStaleCarts(t *testing.T) {
	app := newTestApplication(t)

	user := seedUser(t, app, "제보왕", "u1@example.com")

	old := seedCart(t, app, user.ID, "떠난 가게", "붕어빵", 35.10, 129.00)
	reviewed := seedCart(t, app, user.ID, "단골 가게", "호떡", 35.11, 129.01)
	fresh := seedCart(t, app, user.ID, "새 가게", "군고구마", 35.12, 129.02)

	carts := mockCarts(app)
	carts.Carts[old.ID].CreatedAt = time.Now().Add(-90 * 24 * time.Hour)
	carts.Carts[reviewed.ID].CreatedAt = time.Now().Add(-90 * 24 * time.Hour)

	// A recent review keeps an old cart on the map.
	review := &store.Review{CartID: reviewed.ID, UserID: user.ID, Rating: 5, Content: "아직 여기 있어요"}
	require.NoError(t, app.store.Reviews.Create(context.Background(), review))

	app.sweepStaleCarts()

	_, err := app.store.Carts.GetByID(context.Background(), old.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "an old unreviewed cart goes inactive")

	_, err = app.store.Carts.GetByID(context.Background(), reviewed.ID)
	assert.NoError(t, err, "a recent review keeps the cart active")

	_, err = app.store.Carts.GetByID(context.Background(), fresh.ID)
	assert.NoError(t, err)
}

func TestResolveShareCode(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	user := seedUser(t, app, "제보왕", "u1@example.com")
	cart := seedCart(t, app, user.ID, "공유 가게", "붕어빵", 35.10, 129.00)

	// The detail endpoint hands out the code.
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/carts/%d", cart.ID), nil)
	rr := executeRequest(req, mux)
	require.Equal(t, http.StatusOK, rr.Code)

	var detail struct {
		Data struct {
			ID        int64  `json:"id"`
			ShareCode string `json:"share_code"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	require.NotEmpty(t, detail.Data.ShareCode)

	// And the resolver takes it back to the cart, no session needed.
	req = httptest.NewRequest(http.MethodGet, "/v1/c/"+detail.Data.ShareCode, nil)
	rr = executeRequest(req, mux)
	require.Equal(t, http.StatusOK, rr.Code)

	var resolved struct {
		Data store.Cart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolved))
	assert.Equal(t, cart.ID, resolved.Data.ID)

	req = httptest.NewRequest(http.MethodGet, "/v1/c/definitely-not-a-code", nil)
	rr = executeRequest(req, mux)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
