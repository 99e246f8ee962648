package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Review carries a snapshot of the submitter's display name, avatar and
// activity count as they were at submission time, so old reviews keep the
// identity they were written under.
type Review struct {
	ID                int64     `json:"id"`
	CartID            int64     `json:"cart_id"`
	UserID            int64     `json:"user_id"`
	UserName          string    `json:"user_name"`
	UserAvatar        *string   `json:"user_avatar,omitempty"`
	Rating            int       `json:"rating"` // 1-5
	Content           string    `json:"content"`
	UserActivityCount int       `json:"user_activity_count"`
	CreatedAt         time.Time `json:"created_at"`

	// Derived, not stored
	Tier Tier `json:"tier"`
}

type ReviewsStore struct {
	db *pgxpool.Pool
}

func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (cart_id, user_id, user_name, user_avatar, rating, content, user_activity_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		review.CartID,
		review.UserID,
		review.UserName,
		review.UserAvatar,
		review.Rating,
		review.Content,
		review.UserActivityCount,
	).Scan(&review.ID, &review.CreatedAt)
}

// ListByCart returns the reviews for one cart, newest first.
func (s *ReviewsStore) ListByCart(ctx context.Context, cartID int64) ([]Review, error) {
	query := `
		SELECT id, cart_id, user_id, user_name, user_avatar, rating, content,
		       user_activity_count, created_at
		FROM reviews
		WHERE cart_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.CartID,
			&review.UserID,
			&review.UserName,
			&review.UserAvatar,
			&review.Rating,
			&review.Content,
			&review.UserActivityCount,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		review.Tier = TierFor(review.UserActivityCount)
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// Delete removes a review only when userID wrote it.
func (s *ReviewsStore) Delete(ctx context.Context, reviewID, userID int64) error {
	query := `
		DELETE FROM reviews
		WHERE id = $1 AND user_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, reviewID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
