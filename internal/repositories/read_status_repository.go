package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReadStatusRepository tracks last-read timestamps and derives unread counts.
type ReadStatusRepository interface {
	MarkRead(ctx context.Context, conversationID int64, clerkID string, now time.Time) error
	UnreadCounts(ctx context.Context, clerkID string) (map[int64]int, error)
}

// ReadStatusRepo is a sqlx implementation of ReadStatusRepository.
type ReadStatusRepo struct {
	db *sqlx.DB
}

// NewReadStatusRepo constructs a ReadStatusRepo.
func NewReadStatusRepo(db *sqlx.DB) *ReadStatusRepo {
	return &ReadStatusRepo{db: db}
}

// MarkRead upserts (clerk_id, conversation_id) -> last_read_at. Idempotent.
func (r *ReadStatusRepo) MarkRead(ctx context.Context, conversationID int64, clerkID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO read_status (conversation_id, clerk_id, last_read_at) VALUES ($1, $2, $3)
        ON CONFLICT (conversation_id, clerk_id) DO UPDATE SET last_read_at = EXCLUDED.last_read_at`, conversationID, clerkID, now)
	return err
}

// UnreadCounts counts, per member conversation, the messages newer than the
// caller's last-read mark, excluding the caller's own and soft-deleted
// messages. Conversations with zero unread are absent from the map.
func (r *ReadStatusRepo) UnreadCounts(ctx context.Context, clerkID string) (map[int64]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT m.conversation_id, COUNT(*) AS unread
        FROM messages m
        INNER JOIN conversation_members cm ON cm.conversation_id = m.conversation_id AND cm.clerk_id=$1
        LEFT JOIN read_status rs ON rs.conversation_id = m.conversation_id AND rs.clerk_id=$1
        WHERE m.sender_clerk_id <> $1
          AND m.deleted_at IS NULL
          AND m.created_at > COALESCE(rs.last_read_at, 'epoch'::timestamptz)
        GROUP BY m.conversation_id`, clerkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var conversationID int64
		var unread int
		if err := rows.Scan(&conversationID, &unread); err != nil {
			return nil, err
		}
		counts[conversationID] = unread
	}
	return counts, rows.Err()
}
