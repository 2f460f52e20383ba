package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/auth"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Upsert(ctx context.Context, clerkID, email, name string, imageURL *string) (models.User, error) {
	args := m.Called(ctx, clerkID, email, name, imageURL)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, clerkID string, name *string, imageURL *string, removeAvatar bool) (models.User, error) {
	args := m.Called(ctx, clerkID, name, imageURL, removeAvatar)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByClerkID(ctx context.Context, clerkID string) (models.User, error) {
	args := m.Called(ctx, clerkID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) MissingClerkIDs(ctx context.Context, clerkIDs []string) ([]string, error) {
	args := m.Called(ctx, clerkIDs)
	var missing []string
	if val := args.Get(0); val != nil {
		missing = val.([]string)
	}
	return missing, args.Error(1)
}

func (m *UserRepositoryMock) ByClerkIDs(ctx context.Context, clerkIDs []string) (map[string]models.User, error) {
	args := m.Called(ctx, clerkIDs)
	var users map[string]models.User
	if val := args.Get(0); val != nil {
		users = val.(map[string]models.User)
	}
	return users, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetOrCreateDirect(ctx context.Context, clerkID, otherClerkID string) (models.Conversation, error) {
	args := m.Called(ctx, clerkID, otherClerkID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) CreateGroup(ctx context.Context, name string, memberClerkIDs []string) (models.Conversation, error) {
	args := m.Called(ctx, name, memberClerkIDs)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetByID(ctx context.Context, conversationID int64) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, clerkID string) ([]models.Conversation, error) {
	args := m.Called(ctx, clerkID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) IsMember(ctx context.Context, conversationID int64, clerkID string) (bool, error) {
	args := m.Called(ctx, conversationID, clerkID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListMembers(ctx context.Context, conversationID int64) ([]string, error) {
	args := m.Called(ctx, conversationID)
	var members []string
	if val := args.Get(0); val != nil {
		members = val.([]string)
	}
	return members, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, conversationID int64, senderClerkID, text string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderClerkID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListForConversation(ctx context.Context, conversationID int64) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) Get(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) SoftDelete(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type PresenceRepositoryMock struct {
	mock.Mock
}

func (m *PresenceRepositoryMock) Heartbeat(ctx context.Context, clerkID string, now time.Time) error {
	args := m.Called(ctx, clerkID, now)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) GoOffline(ctx context.Context, clerkID string) error {
	args := m.Called(ctx, clerkID)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) Get(ctx context.Context, clerkID string) (models.Presence, error) {
	args := m.Called(ctx, clerkID)
	var p models.Presence
	if val := args.Get(0); val != nil {
		p = val.(models.Presence)
	}
	return p, args.Error(1)
}

func (m *PresenceRepositoryMock) ListAll(ctx context.Context) ([]models.Presence, error) {
	args := m.Called(ctx)
	var rows []models.Presence
	if val := args.Get(0); val != nil {
		rows = val.([]models.Presence)
	}
	return rows, args.Error(1)
}

func (m *PresenceRepositoryMock) RemoveStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type TypingRepositoryMock struct {
	mock.Mock
}

func (m *TypingRepositoryMock) Set(ctx context.Context, conversationID int64, clerkID string, now time.Time) error {
	args := m.Called(ctx, conversationID, clerkID, now)
	return args.Error(0)
}

func (m *TypingRepositoryMock) Clear(ctx context.Context, conversationID int64, clerkID string) error {
	args := m.Called(ctx, conversationID, clerkID)
	return args.Error(0)
}

func (m *TypingRepositoryMock) ListForConversation(ctx context.Context, conversationID int64) ([]models.Typing, error) {
	args := m.Called(ctx, conversationID)
	var rows []models.Typing
	if val := args.Get(0); val != nil {
		rows = val.([]models.Typing)
	}
	return rows, args.Error(1)
}

func (m *TypingRepositoryMock) ListAll(ctx context.Context) ([]models.Typing, error) {
	args := m.Called(ctx)
	var rows []models.Typing
	if val := args.Get(0); val != nil {
		rows = val.([]models.Typing)
	}
	return rows, args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) Toggle(ctx context.Context, messageID int64, clerkID string, emoji models.Emoji) (bool, error) {
	args := m.Called(ctx, messageID, clerkID, emoji)
	return args.Bool(0), args.Error(1)
}

func (m *ReactionRepositoryMock) ForMessages(ctx context.Context, messageIDs []int64) ([]models.Reaction, error) {
	args := m.Called(ctx, messageIDs)
	var rows []models.Reaction
	if val := args.Get(0); val != nil {
		rows = val.([]models.Reaction)
	}
	return rows, args.Error(1)
}

type ReadStatusRepositoryMock struct {
	mock.Mock
}

func (m *ReadStatusRepositoryMock) MarkRead(ctx context.Context, conversationID int64, clerkID string, now time.Time) error {
	args := m.Called(ctx, conversationID, clerkID, now)
	return args.Error(0)
}

func (m *ReadStatusRepositoryMock) UnreadCounts(ctx context.Context, clerkID string) (map[int64]int, error) {
	args := m.Called(ctx, clerkID)
	var counts map[int64]int
	if val := args.Get(0); val != nil {
		counts = val.(map[int64]int)
	}
	return counts, args.Error(1)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.PresenceRepository = (*PresenceRepositoryMock)(nil)
var _ repositories.TypingRepository = (*TypingRepositoryMock)(nil)
var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)
var _ repositories.ReadStatusRepository = (*ReadStatusRepositoryMock)(nil)
var _ auth.Verifier = (*VerifierMock)(nil)
