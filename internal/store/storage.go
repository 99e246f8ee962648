package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ppangmap/internal/geo"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		GetOrCreateOAuth(context.Context, *User) error
		UpdateUser(context.Context, int64, map[string]interface{}) error
		SaveRefreshToken(ctx context.Context, userID int64, token string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
	}
	Carts interface {
		Create(context.Context, *Cart) error
		GetByID(context.Context, int64) (*Cart, error)
		List(context.Context) ([]Cart, error)
		ListInBounds(context.Context, geo.Bounds) ([]Cart, error)
		Delete(ctx context.Context, cartID, ownerID int64) error
		CountByReporter(ctx context.Context, userID int64) (int, error)
		AddPhotoURL(ctx context.Context, cartID int64, photoURL string) error
		RemovePhotoURL(ctx context.Context, cartID int64, photoURL string) error
		MarkStaleInactive(ctx context.Context, cutoff time.Time) (int64, error)
	}
	Reviews interface {
		Create(context.Context, *Review) error
		ListByCart(context.Context, int64) ([]Review, error)
		Delete(ctx context.Context, reviewID, userID int64) error
	}
	Cooldowns interface {
		Last(ctx context.Context, userID int64) (time.Time, bool, error)
		Touch(ctx context.Context, userID int64, at time.Time) error
	}
	PushTokens interface {
		AddOrUpdate(ctx context.Context, userID int64, token string, deviceInfo json.RawMessage) error
		Remove(ctx context.Context, userID int64, token string) error
		GetForUser(ctx context.Context, userID int64) ([]string, error)
		RemoveByTokenList(ctx context.Context, tokens []string) error
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db},
		Carts:      &CartsStore{db},
		Reviews:    &ReviewsStore{db},
		Cooldowns:  &CooldownsStore{db},
		PushTokens: &PushTokensStore{db},
	}
}
