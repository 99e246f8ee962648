package store

import (
	"context"
	"errors"
	"time"

	"ppangmap/internal/geo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cart is one reported street-food cart on the map.
type Cart struct {
	ID        int64     `json:"id"`
	OwnerID   *int64    `json:"owner_id,omitempty"` // nil on legacy rows reported before sign-in was required
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	ImageURLs []string  `json:"image_urls,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`

	// Aggregated fields
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

type CartsStore struct {
	db *pgxpool.Pool
}

const cartListQuery = `
	SELECT c.id, c.owner_id, c.name, c.category, c.lat, c.lng,
	       c.image_urls, c.is_active, c.created_at,
	       COUNT(r.id) AS total_reviews,
	       COALESCE(AVG(r.rating), 0) AS average_rating
	FROM carts c
	LEFT JOIN reviews r ON r.cart_id = c.id
	WHERE c.is_active = TRUE
`

// Create inserts the report unless an active cart already sits at the exact
// coordinate, in which case it returns ErrConflict. Check and insert run as a
// single statement; no unique index backs it, so a truly concurrent pair can
// still both land.
func (s *CartsStore) Create(ctx context.Context, cart *Cart) error {
	query := `
		INSERT INTO carts (owner_id, name, category, lat, lng)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
		  SELECT 1 FROM carts WHERE lat = $4 AND lng = $5 AND is_active = TRUE
		)
		RETURNING id, is_active, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		cart.OwnerID,
		cart.Name,
		cart.Category,
		cart.Lat,
		cart.Lng,
	).Scan(&cart.ID, &cart.IsActive, &cart.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConflict
	}
	return err
}

func (s *CartsStore) GetByID(ctx context.Context, cartID int64) (*Cart, error) {
	query := cartListQuery + ` AND c.id = $1 GROUP BY c.id`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var c Cart
	err := s.db.QueryRow(ctx, query, cartID).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Category, &c.Lat, &c.Lng,
		&c.ImageURLs, &c.IsActive, &c.CreatedAt,
		&c.TotalReviews, &c.AverageRating,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns every active cart with its review aggregates. Used for the
// first paint, before the client has reported a viewport.
func (s *CartsStore) List(ctx context.Context) ([]Cart, error) {
	query := cartListQuery + ` GROUP BY c.id ORDER BY c.created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCarts(rows)
}

// ListInBounds returns active carts inside the viewport rectangle. Both
// corners are plain values and both axes filter inclusively.
func (s *CartsStore) ListInBounds(ctx context.Context, b geo.Bounds) ([]Cart, error) {
	query := cartListQuery + `
		AND c.lat BETWEEN $1 AND $2
		AND c.lng BETWEEN $3 AND $4
		GROUP BY c.id
		ORDER BY c.created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, b.SW.Lat, b.NE.Lat, b.SW.Lng, b.NE.Lng)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCarts(rows)
}

func scanCarts(rows pgx.Rows) ([]Cart, error) {
	var carts []Cart
	for rows.Next() {
		var c Cart
		err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.Category, &c.Lat, &c.Lng,
			&c.ImageURLs, &c.IsActive, &c.CreatedAt,
			&c.TotalReviews, &c.AverageRating,
		)
		if err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

// Delete removes a cart, but only when the caller owns it. The server is the
// real enforcement point here; hiding the delete button client-side is not.
func (s *CartsStore) Delete(ctx context.Context, cartID, ownerID int64) error {
	query := `DELETE FROM carts WHERE id = $1 AND owner_id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, cartID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByReporter counts the carts a user has reported, the input to the
// contributor tier shown next to reviews.
func (s *CartsStore) CountByReporter(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(id) FROM carts WHERE owner_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	err := s.db.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

// AddPhotoURL appends a new photo URL to a cart's image_urls array
func (s *CartsStore) AddPhotoURL(ctx context.Context, cartID int64, photoURL string) error {
	query := `
		UPDATE carts
		SET image_urls = array_append(image_urls, $1)
		WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, photoURL, cartID)
	return err
}

// RemovePhotoURL removes a specific photo URL from a cart's image_urls array
func (s *CartsStore) RemovePhotoURL(ctx context.Context, cartID int64, photoURL string) error {
	query := `
		UPDATE carts
		SET image_urls = array_remove(image_urls, $1)
		WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, photoURL, cartID)
	return err
}

// MarkStaleInactive deactivates carts that were reported before cutoff and
// have received no review since. Deactivated carts drop out of listings but
// keep their rows and reviews.
func (s *CartsStore) MarkStaleInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE carts
		SET is_active = FALSE
		WHERE is_active = TRUE
		  AND created_at < $1
		  AND id NOT IN (
		    SELECT cart_id FROM reviews WHERE created_at >= $1
		  )
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
