package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrPresenceNotFound = errors.New("presence not found")

// PresenceRepository stores per-user liveness rows. Liveness itself is derived
// at read time from last_seen_at; RemoveStale only reclaims storage.
type PresenceRepository interface {
	Heartbeat(ctx context.Context, clerkID string, now time.Time) error
	GoOffline(ctx context.Context, clerkID string) error
	Get(ctx context.Context, clerkID string) (models.Presence, error)
	ListAll(ctx context.Context) ([]models.Presence, error)
	RemoveStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// PresenceRepo is a sqlx implementation of PresenceRepository.
type PresenceRepo struct {
	db *sqlx.DB
}

// NewPresenceRepo constructs a PresenceRepo.
func NewPresenceRepo(db *sqlx.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// Heartbeat upserts the user's last_seen_at. Idempotent.
func (r *PresenceRepo) Heartbeat(ctx context.Context, clerkID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO presence (clerk_id, last_seen_at) VALUES ($1, $2)
        ON CONFLICT (clerk_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at`, clerkID, now)
	return err
}

// GoOffline deletes the user's presence row outright.
func (r *PresenceRepo) GoOffline(ctx context.Context, clerkID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM presence WHERE clerk_id=$1`, clerkID)
	return err
}

// Get fetches a presence row; absence means offline.
func (r *PresenceRepo) Get(ctx context.Context, clerkID string) (models.Presence, error) {
	var p models.Presence
	err := r.db.GetContext(ctx, &p, `SELECT clerk_id, last_seen_at FROM presence WHERE clerk_id=$1`, clerkID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Presence{}, ErrPresenceNotFound
	}
	return p, err
}

// ListAll returns every presence row; callers apply the liveness threshold.
func (r *PresenceRepo) ListAll(ctx context.Context) ([]models.Presence, error) {
	var rows []models.Presence
	err := r.db.SelectContext(ctx, &rows, `SELECT clerk_id, last_seen_at FROM presence`)
	return rows, err
}

// RemoveStale deletes rows last refreshed at or before the cutoff. The
// staleness check and delete happen in one statement, so a concurrently
// refreshed row cannot be swept.
func (r *PresenceRepo) RemoveStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM presence WHERE last_seen_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
