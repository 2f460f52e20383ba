package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for messages and the denormalized
// conversation preview they maintain.
type MessageRepository interface {
	Create(ctx context.Context, conversationID int64, senderClerkID, text string) (models.Message, error)
	ListForConversation(ctx context.Context, conversationID int64) ([]models.Message, error)
	Get(ctx context.Context, messageID int64) (models.Message, error)
	SoftDelete(ctx context.Context, messageID int64) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const selectMessage = `SELECT id, conversation_id, sender_clerk_id, text, created_at, deleted_at FROM messages`

// Create stores a message and updates the parent conversation's preview in
// the same transaction so concurrent sends cannot leave a stale preview.
func (r *MessageRepo) Create(ctx context.Context, conversationID int64, senderClerkID, text string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var msg models.Message
	if err = tx.GetContext(ctx, &msg, `INSERT INTO messages (conversation_id, sender_clerk_id, text)
        VALUES ($1, $2, $3)
        RETURNING id, conversation_id, sender_clerk_id, text, created_at, deleted_at`, conversationID, senderClerkID, text); err != nil {
		return models.Message{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET last_message_text=$1, last_message_at=$2 WHERE id=$3`,
		msg.Text, msg.CreatedAt, conversationID); err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListForConversation returns all messages ascending by creation time, id as
// the tie-break. Soft-deleted rows are included; hiding them is a UI concern.
func (r *MessageRepo) ListForConversation(ctx context.Context, conversationID int64) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, selectMessage+` WHERE conversation_id=$1 ORDER BY created_at ASC, id ASC`, conversationID)
	return msgs, err
}

// Get retrieves a single message.
func (r *MessageRepo) Get(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, selectMessage+` WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// SoftDelete stamps deleted_at once (repeat deletes are no-ops) and, when the
// deleted message is the conversation's current latest by creation order,
// rewrites the preview to the deleted-message placeholder. Latest is
// re-queried rather than compared against cached preview text.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID int64) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var msg models.Message
	err = tx.GetContext(ctx, &msg, `UPDATE messages SET deleted_at = NOW() WHERE id=$1 AND deleted_at IS NULL
        RETURNING id, conversation_id, sender_clerk_id, text, created_at, deleted_at`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		// Already deleted: deleted_at is immutable once set.
		tx.Rollback()
		return r.Get(ctx, messageID)
	}
	if err != nil {
		return models.Message{}, err
	}

	var latestID int64
	if err = tx.GetContext(ctx, &latestID, `SELECT id FROM messages WHERE conversation_id=$1
        ORDER BY created_at DESC, id DESC LIMIT 1`, msg.ConversationID); err != nil {
		return models.Message{}, err
	}

	if latestID == msg.ID {
		if _, err = tx.ExecContext(ctx, `UPDATE conversations SET last_message_text=$1 WHERE id=$2`,
			models.DeletedMessagePlaceholder, msg.ConversationID); err != nil {
			return models.Message{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}
