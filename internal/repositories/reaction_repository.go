package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

// ReactionRepository toggles per-user emoji reactions and aggregates them.
type ReactionRepository interface {
	Toggle(ctx context.Context, messageID int64, clerkID string, emoji models.Emoji) (added bool, err error)
	ForMessages(ctx context.Context, messageIDs []int64) ([]models.Reaction, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// Toggle removes the caller's (message, emoji) reaction if present, otherwise
// inserts it and rewrites the parent conversation preview to "Reacted <glyph>"
// so the reaction bumps the conversation in the sidebar. Insert and preview
// update share one transaction. Toggle semantics are per-emoji: distinct
// emojis by the same user coexist on one message.
func (r *ReactionRepo) Toggle(ctx context.Context, messageID int64, clerkID string, emoji models.Emoji) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM reactions WHERE message_id=$1 AND clerk_id=$2 AND emoji=$3`,
		messageID, clerkID, string(emoji))
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed > 0 {
		err = tx.Commit()
		return false, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO reactions (message_id, clerk_id, emoji) VALUES ($1, $2, $3)`,
		messageID, clerkID, string(emoji)); err != nil {
		if isForeignKeyViolation(err) {
			err = ErrMessageNotFound
		}
		return false, err
	}

	var conversationID int64
	if err = tx.GetContext(ctx, &conversationID, `SELECT conversation_id FROM messages WHERE id=$1`, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMessageNotFound
		}
		return false, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET last_message_text=$1, last_message_at=NOW() WHERE id=$2`,
		"Reacted "+emoji.Glyph(), conversationID); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ForMessages fetches all reaction rows for the given messages in one query.
func (r *ReactionRepo) ForMessages(ctx context.Context, messageIDs []int64) ([]models.Reaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var rows []models.Reaction
	err := r.db.SelectContext(ctx, &rows, `SELECT id, message_id, clerk_id, emoji FROM reactions WHERE message_id = ANY($1)`, pq.Array(messageIDs))
	return rows, err
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
