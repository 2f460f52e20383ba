package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/ws"
)

func setupReactionRouter(handler *ReactionHandler, clerkID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if clerkID != "" {
			c.Set(middleware.ClerkIDKey, clerkID)
		}
		c.Next()
	})
	r.POST("/messages/:message_id/reactions", handler.Toggle)
	r.POST("/reactions/query", handler.GetForMessages)
	return r
}

func TestToggleReactionAdded(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	reactionRepo := new(mocks.ReactionRepositoryMock)
	handler := NewReactionHandler(msgRepo, reactionRepo, ws.NewHub(zerolog.Nop()))
	router := setupReactionRouter(handler, "user_a")

	msgRepo.On("Get", mock.Anything, int64(7)).Return(models.Message{ID: 7, ConversationID: 5}, nil).Once()
	reactionRepo.On("Toggle", mock.Anything, int64(7), "user_a", models.EmojiHeart).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/7/reactions", bytes.NewBufferString(`{"emoji":"heart"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp["added"])
	msgRepo.AssertExpectations(t)
	reactionRepo.AssertExpectations(t)
}

func TestToggleReactionRemoved(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	reactionRepo := new(mocks.ReactionRepositoryMock)
	handler := NewReactionHandler(msgRepo, reactionRepo, ws.NewHub(zerolog.Nop()))
	router := setupReactionRouter(handler, "user_a")

	msgRepo.On("Get", mock.Anything, int64(7)).Return(models.Message{ID: 7, ConversationID: 5}, nil).Once()
	reactionRepo.On("Toggle", mock.Anything, int64(7), "user_a", models.EmojiThumbsUp).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/7/reactions", bytes.NewBufferString(`{"emoji":"thumbsup"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp["added"])
	reactionRepo.AssertExpectations(t)
}

func TestToggleReactionUnknownEmoji(t *testing.T) {
	handler := NewReactionHandler(new(mocks.MessageRepositoryMock), new(mocks.ReactionRepositoryMock), ws.NewHub(zerolog.Nop()))
	router := setupReactionRouter(handler, "user_a")

	req := httptest.NewRequest(http.MethodPost, "/messages/7/reactions", bytes.NewBufferString(`{"emoji":"sparkles"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleReactionMessageMissing(t *testing.T) {
	msgRepo := new(mocks.MessageRepositoryMock)
	handler := NewReactionHandler(msgRepo, new(mocks.ReactionRepositoryMock), ws.NewHub(zerolog.Nop()))
	router := setupReactionRouter(handler, "user_a")

	msgRepo.On("Get", mock.Anything, int64(404)).Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/404/reactions", bytes.NewBufferString(`{"emoji":"laugh"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	msgRepo.AssertExpectations(t)
}

func TestGetForMessagesAggregates(t *testing.T) {
	reactionRepo := new(mocks.ReactionRepositoryMock)
	handler := NewReactionHandler(new(mocks.MessageRepositoryMock), reactionRepo, ws.NewHub(zerolog.Nop()))
	router := setupReactionRouter(handler, "user_a")

	reactionRepo.On("ForMessages", mock.Anything, []int64{7, 8}).Return([]models.Reaction{
		{ID: 1, MessageID: 7, ClerkID: "user_a", Emoji: models.EmojiHeart},
		{ID: 2, MessageID: 7, ClerkID: "user_b", Emoji: models.EmojiHeart},
		{ID: 3, MessageID: 7, ClerkID: "user_b", Emoji: models.EmojiLaugh},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/reactions/query", bytes.NewBufferString(`{"message_ids":[7,8]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Reactions map[string][]models.ReactionSummary `json:"reactions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Reactions["7"], 2)
	assert.Equal(t, models.EmojiHeart, resp.Reactions["7"][0].Emoji)
	assert.Equal(t, 2, resp.Reactions["7"][0].Count)
	assert.True(t, resp.Reactions["7"][0].UserReacted)
	assert.Equal(t, models.EmojiLaugh, resp.Reactions["7"][1].Emoji)
	assert.False(t, resp.Reactions["7"][1].UserReacted)
	assert.NotContains(t, resp.Reactions, "8")
	reactionRepo.AssertExpectations(t)
}
