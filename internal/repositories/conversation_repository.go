package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation and membership persistence.
// Membership lives solely in the conversation_members join table.
type ConversationRepository interface {
	GetOrCreateDirect(ctx context.Context, clerkID, otherClerkID string) (models.Conversation, error)
	CreateGroup(ctx context.Context, name string, memberClerkIDs []string) (models.Conversation, error)
	GetByID(ctx context.Context, conversationID int64) (models.Conversation, error)
	ListForUser(ctx context.Context, clerkID string) ([]models.Conversation, error)
	IsMember(ctx context.Context, conversationID int64, clerkID string) (bool, error)
	ListMembers(ctx context.Context, conversationID int64) ([]string, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreateDirect returns the direct conversation for the unordered pair,
// inserting the conversation plus both membership rows when absent. The unique
// direct_key constraint keeps concurrent duplicate calls from creating a
// second row: losers of the race re-read the winner's row.
func (r *ConversationRepo) GetOrCreateDirect(ctx context.Context, clerkID, otherClerkID string) (models.Conversation, error) {
	if clerkID == otherClerkID {
		return models.Conversation{}, errors.New("cannot create conversation with self")
	}
	key := models.DirectKey(clerkID, otherClerkID)

	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, selectConversation+` WHERE direct_key=$1`, key)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Conversation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.GetContext(ctx, &conv, `INSERT INTO conversations (is_group, direct_key) VALUES (FALSE, $1)
        ON CONFLICT (direct_key) DO NOTHING
        RETURNING id, is_group, group_name, direct_key, last_message_text, last_message_at, created_at`, key)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race: another call inserted the pair first.
		tx.Rollback()
		err = r.db.GetContext(ctx, &conv, selectConversation+` WHERE direct_key=$1`, key)
		return conv, err
	}
	if err != nil {
		return models.Conversation{}, err
	}

	for _, member := range []string{clerkID, otherClerkID} {
		if _, err = tx.ExecContext(ctx, `INSERT INTO conversation_members (conversation_id, clerk_id) VALUES ($1, $2)`, conv.ID, member); err != nil {
			return models.Conversation{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// CreateGroup inserts a group conversation and its membership rows atomically.
// Callers validate the roster; memberClerkIDs is the full deduplicated set,
// creator included.
func (r *ConversationRepo) CreateGroup(ctx context.Context, name string, memberClerkIDs []string) (models.Conversation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Conversation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var conv models.Conversation
	if err = tx.GetContext(ctx, &conv, `INSERT INTO conversations (is_group, group_name) VALUES (TRUE, $1)
        RETURNING id, is_group, group_name, direct_key, last_message_text, last_message_at, created_at`, name); err != nil {
		return models.Conversation{}, err
	}

	ids := append([]string(nil), memberClerkIDs...)
	sort.Strings(ids)
	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO conversation_members (conversation_id, clerk_id) VALUES ($1, $2)`, conv.ID, id); err != nil {
			return models.Conversation{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

const selectConversation = `SELECT id, is_group, group_name, direct_key, last_message_text, last_message_at, created_at FROM conversations`

// GetByID fetches a conversation by id.
func (r *ConversationRepo) GetByID(ctx context.Context, conversationID int64) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, selectConversation+` WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListForUser returns every conversation the user is a member of, most
// recently active first; conversations with no messages sort last.
func (r *ConversationRepo) ListForUser(ctx context.Context, clerkID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, selectConversation+`
        c INNER JOIN conversation_members cm ON cm.conversation_id = c.id
        WHERE cm.clerk_id=$1
        ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`, clerkID)
	return convs, err
}

// IsMember checks membership via the join table.
func (r *ConversationRepo) IsMember(ctx context.Context, conversationID int64, clerkID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversation_members WHERE conversation_id=$1 AND clerk_id=$2)`, conversationID, clerkID)
	return exists, err
}

// ListMembers enumerates the clerk ids of a conversation's members.
func (r *ConversationRepo) ListMembers(ctx context.Context, conversationID int64) ([]string, error) {
	var members []string
	err := r.db.SelectContext(ctx, &members, `SELECT clerk_id FROM conversation_members WHERE conversation_id=$1 ORDER BY clerk_id`, conversationID)
	return members, err
}
