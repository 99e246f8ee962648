package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CooldownsStore keeps the per-user last-report timestamp that gates how
// often a user may submit a new cart. Server-owned, unlike the original
// localStorage marker, so clearing browser state does not reset it.
type CooldownsStore struct {
	db *pgxpool.Pool
}

// Last returns the user's most recent successful report time. The second
// return is false when the user has never reported.
func (s *CooldownsStore) Last(ctx context.Context, userID int64) (time.Time, bool, error) {
	query := `SELECT last_report_at FROM report_cooldowns WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var at time.Time
	err := s.db.QueryRow(ctx, query, userID).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}

// Touch records a successful report. Called only after the insert landed.
func (s *CooldownsStore) Touch(ctx context.Context, userID int64, at time.Time) error {
	query := `
		INSERT INTO report_cooldowns (user_id, last_report_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET last_report_at = EXCLUDED.last_report_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, at)
	return err
}
