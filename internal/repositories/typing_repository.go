package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// TypingRepository stores per-(user, conversation) typing signals. There is no
// sweep: freshness is evaluated by every reader, so stale rows simply sit in
// storage until overwritten or cleared.
type TypingRepository interface {
	Set(ctx context.Context, conversationID int64, clerkID string, now time.Time) error
	Clear(ctx context.Context, conversationID int64, clerkID string) error
	ListForConversation(ctx context.Context, conversationID int64) ([]models.Typing, error)
	ListAll(ctx context.Context) ([]models.Typing, error)
}

// TypingRepo is a sqlx implementation of TypingRepository.
type TypingRepo struct {
	db *sqlx.DB
}

// NewTypingRepo constructs a TypingRepo.
func NewTypingRepo(db *sqlx.DB) *TypingRepo {
	return &TypingRepo{db: db}
}

// Set upserts the typing timestamp for the pair. Idempotent.
func (r *TypingRepo) Set(ctx context.Context, conversationID int64, clerkID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO typing (conversation_id, clerk_id, typing_at) VALUES ($1, $2, $3)
        ON CONFLICT (conversation_id, clerk_id) DO UPDATE SET typing_at = EXCLUDED.typing_at`, conversationID, clerkID, now)
	return err
}

// Clear deletes the typing row for the pair.
func (r *TypingRepo) Clear(ctx context.Context, conversationID int64, clerkID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM typing WHERE conversation_id=$1 AND clerk_id=$2`, conversationID, clerkID)
	return err
}

// ListForConversation returns all typing rows for a conversation, fresh or not.
func (r *TypingRepo) ListForConversation(ctx context.Context, conversationID int64) ([]models.Typing, error) {
	var rows []models.Typing
	err := r.db.SelectContext(ctx, &rows, `SELECT conversation_id, clerk_id, typing_at FROM typing WHERE conversation_id=$1`, conversationID)
	return rows, err
}

// ListAll returns every typing row across conversations.
func (r *TypingRepo) ListAll(ctx context.Context) ([]models.Typing, error) {
	var rows []models.Typing
	err := r.db.SelectContext(ctx, &rows, `SELECT conversation_id, clerk_id, typing_at FROM typing`)
	return rows, err
}
