package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"ppangmap/internal/geo"
)

// In-memory doubles for handler tests. They keep the same contracts as the
// pgx stores (owner-scoped deletes, inclusive bounds, newest-first reviews)
// without a database behind them.

func NewMockStorage() Storage {
	reviews := NewMockReviewsStore()
	carts := NewMockCartsStore()
	carts.Reviews = reviews
	return Storage{
		Users:      NewMockUsersStore(),
		Carts:      carts,
		Reviews:    reviews,
		Cooldowns:  NewMockCooldownsStore(),
		PushTokens: NewMockPushTokensStore(),
	}
}

type MockUsersStore struct {
	Users  map[int64]*User
	nextID int64
}

func NewMockUsersStore() *MockUsersStore {
	return &MockUsersStore{Users: make(map[int64]*User)}
}

func (m *MockUsersStore) Create(_ context.Context, user *User) error {
	for _, u := range m.Users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.Provider = "email"
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = user
	return nil
}

func (m *MockUsersStore) GetByID(_ context.Context, userID int64) (*User, error) {
	user, ok := m.Users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MockUsersStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockUsersStore) GetOrCreateOAuth(_ context.Context, user *User) error {
	for _, u := range m.Users {
		if u.Provider == user.Provider && u.ProviderID != nil && user.ProviderID != nil &&
			*u.ProviderID == *user.ProviderID {
			u.Name = user.Name
			u.AvatarURL = user.AvatarURL
			*user = *u
			return nil
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = user
	return nil
}

func (m *MockUsersStore) UpdateUser(_ context.Context, userID int64, updates map[string]interface{}) error {
	user, ok := m.Users[userID]
	if !ok {
		return ErrNotFound
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if avatar, ok := updates["avatar_url"].(string); ok {
		user.AvatarURL = &avatar
	}
	return nil
}

func (m *MockUsersStore) SaveRefreshToken(_ context.Context, userID int64, token string) error {
	user, ok := m.Users[userID]
	if !ok {
		return ErrNotFound
	}
	user.RefreshToken = token
	return nil
}

func (m *MockUsersStore) GetRefreshToken(_ context.Context, userID int64) (string, error) {
	user, ok := m.Users[userID]
	if !ok {
		return "", ErrNotFound
	}
	return user.RefreshToken, nil
}

func (m *MockUsersStore) DeleteRefreshToken(_ context.Context, userID int64) error {
	if user, ok := m.Users[userID]; ok {
		user.RefreshToken = ""
	}
	return nil
}

type MockCartsStore struct {
	Carts   map[int64]*Cart
	Reviews *MockReviewsStore // consulted by the staleness sweep
	Calls   int               // every method bumps this; lets tests assert "no store touch"
	nextID  int64
}

func NewMockCartsStore() *MockCartsStore {
	return &MockCartsStore{Carts: make(map[int64]*Cart)}
}

func (m *MockCartsStore) Create(_ context.Context, cart *Cart) error {
	m.Calls++
	for _, c := range m.Carts {
		if c.IsActive && c.Lat == cart.Lat && c.Lng == cart.Lng {
			return ErrConflict
		}
	}
	m.nextID++
	cart.ID = m.nextID
	cart.IsActive = true
	cart.CreatedAt = time.Now()
	stored := *cart
	m.Carts[cart.ID] = &stored
	return nil
}

func (m *MockCartsStore) GetByID(_ context.Context, cartID int64) (*Cart, error) {
	m.Calls++
	cart, ok := m.Carts[cartID]
	if !ok || !cart.IsActive {
		return nil, ErrNotFound
	}
	c := *cart
	return &c, nil
}

func (m *MockCartsStore) List(_ context.Context) ([]Cart, error) {
	m.Calls++
	var carts []Cart
	for _, c := range m.Carts {
		if c.IsActive {
			carts = append(carts, *c)
		}
	}
	sortCartsNewestFirst(carts)
	return carts, nil
}

func (m *MockCartsStore) ListInBounds(_ context.Context, b geo.Bounds) ([]Cart, error) {
	m.Calls++
	var carts []Cart
	for _, c := range m.Carts {
		if c.IsActive && b.Contains(geo.Coordinate{Lat: c.Lat, Lng: c.Lng}) {
			carts = append(carts, *c)
		}
	}
	sortCartsNewestFirst(carts)
	return carts, nil
}

func (m *MockCartsStore) Delete(_ context.Context, cartID, ownerID int64) error {
	m.Calls++
	cart, ok := m.Carts[cartID]
	if !ok || cart.OwnerID == nil || *cart.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.Carts, cartID)
	return nil
}

func (m *MockCartsStore) CountByReporter(_ context.Context, userID int64) (int, error) {
	m.Calls++
	count := 0
	for _, c := range m.Carts {
		if c.OwnerID != nil && *c.OwnerID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockCartsStore) AddPhotoURL(_ context.Context, cartID int64, photoURL string) error {
	m.Calls++
	cart, ok := m.Carts[cartID]
	if !ok {
		return ErrNotFound
	}
	cart.ImageURLs = append(cart.ImageURLs, photoURL)
	return nil
}

func (m *MockCartsStore) RemovePhotoURL(_ context.Context, cartID int64, photoURL string) error {
	m.Calls++
	cart, ok := m.Carts[cartID]
	if !ok {
		return ErrNotFound
	}
	urls := cart.ImageURLs[:0]
	for _, u := range cart.ImageURLs {
		if u != photoURL {
			urls = append(urls, u)
		}
	}
	cart.ImageURLs = urls
	return nil
}

func (m *MockCartsStore) MarkStaleInactive(_ context.Context, cutoff time.Time) (int64, error) {
	m.Calls++
	var n int64
	for id, c := range m.Carts {
		if !c.IsActive || !c.CreatedAt.Before(cutoff) {
			continue
		}
		if m.Reviews != nil && m.Reviews.reviewedSince(id, cutoff) {
			continue
		}
		c.IsActive = false
		n++
	}
	return n, nil
}

func sortCartsNewestFirst(carts []Cart) {
	sort.Slice(carts, func(i, j int) bool {
		return carts[i].CreatedAt.After(carts[j].CreatedAt)
	})
}

type MockReviewsStore struct {
	Reviews map[int64]*Review
	nextID  int64
}

func NewMockReviewsStore() *MockReviewsStore {
	return &MockReviewsStore{Reviews: make(map[int64]*Review)}
}

func (m *MockReviewsStore) Create(_ context.Context, review *Review) error {
	m.nextID++
	review.ID = m.nextID
	review.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	stored := *review
	m.Reviews[review.ID] = &stored
	return nil
}

func (m *MockReviewsStore) ListByCart(_ context.Context, cartID int64) ([]Review, error) {
	var reviews []Review
	for _, r := range m.Reviews {
		if r.CartID == cartID {
			review := *r
			review.Tier = TierFor(review.UserActivityCount)
			reviews = append(reviews, review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// reviewedSince reports whether the cart has any review at or after cutoff.
func (m *MockReviewsStore) reviewedSince(cartID int64, cutoff time.Time) bool {
	for _, r := range m.Reviews {
		if r.CartID == cartID && !r.CreatedAt.Before(cutoff) {
			return true
		}
	}
	return false
}

func (m *MockReviewsStore) Delete(_ context.Context, reviewID, userID int64) error {
	review, ok := m.Reviews[reviewID]
	if !ok || review.UserID != userID {
		return ErrNotFound
	}
	delete(m.Reviews, reviewID)
	return nil
}

type MockCooldownsStore struct {
	LastReports map[int64]time.Time
}

func NewMockCooldownsStore() *MockCooldownsStore {
	return &MockCooldownsStore{LastReports: make(map[int64]time.Time)}
}

func (m *MockCooldownsStore) Last(_ context.Context, userID int64) (time.Time, bool, error) {
	at, ok := m.LastReports[userID]
	return at, ok, nil
}

func (m *MockCooldownsStore) Touch(_ context.Context, userID int64, at time.Time) error {
	m.LastReports[userID] = at
	return nil
}

type MockPushTokensStore struct {
	Tokens map[int64][]string
}

func NewMockPushTokensStore() *MockPushTokensStore {
	return &MockPushTokensStore{Tokens: make(map[int64][]string)}
}

func (m *MockPushTokensStore) AddOrUpdate(_ context.Context, userID int64, token string, _ json.RawMessage) error {
	for _, t := range m.Tokens[userID] {
		if t == token {
			return nil
		}
	}
	m.Tokens[userID] = append(m.Tokens[userID], token)
	return nil
}

func (m *MockPushTokensStore) Remove(_ context.Context, userID int64, token string) error {
	tokens := m.Tokens[userID][:0]
	for _, t := range m.Tokens[userID] {
		if t != token {
			tokens = append(tokens, t)
		}
	}
	m.Tokens[userID] = tokens
	return nil
}

func (m *MockPushTokensStore) GetForUser(_ context.Context, userID int64) ([]string, error) {
	return m.Tokens[userID], nil
}

func (m *MockPushTokensStore) RemoveByTokenList(_ context.Context, tokens []string) error {
	stale := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		stale[t] = true
	}
	for userID, userTokens := range m.Tokens {
		kept := userTokens[:0]
		for _, t := range userTokens {
			if !stale[t] {
				kept = append(kept, t)
			}
		}
		m.Tokens[userID] = kept
	}
	return nil
}
