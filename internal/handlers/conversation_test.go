package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

func setupConversationRouter(handler *ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClerkIDKey, "user_a")
		c.Next()
	})
	r.POST("/conversations/direct", handler.StartDirect)
	r.POST("/conversations/group", handler.CreateGroup)
	r.GET("/conversations", handler.List)
	r.GET("/conversations/:conversation_id", handler.GetByID)
	return r
}

func TestStartDirectSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.UserRepositoryMock), nil)
	router := setupConversationRouter(handler)

	convRepo.On("GetOrCreateDirect", mock.Anything, "user_a", "user_b").
		Return(models.Conversation{ID: 10}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/direct", bytes.NewBufferString(`{"other_clerk_id":"user_b"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(10), resp["conversation_id"])
	convRepo.AssertExpectations(t)
}

func TestStartDirectWithSelf(t *testing.T) {
	handler := NewConversationHandler(new(mocks.ConversationRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupConversationRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/conversations/direct", bytes.NewBufferString(`{"other_clerk_id":"user_a"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGroupSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewConversationHandler(convRepo, userRepo, nil)
	router := setupConversationRouter(handler)

	// Creator is included and duplicates collapse; members arrive sorted.
	userRepo.On("MissingClerkIDs", mock.Anything, []string{"user_a", "user_b", "user_c"}).
		Return([]string(nil), nil).Once()
	convRepo.On("CreateGroup", mock.Anything, "Team", []string{"user_a", "user_b", "user_c"}).
		Return(models.Conversation{ID: 20, IsGroup: true}, nil).Once()

	body := bytes.NewBufferString(`{"name":" Team ","member_clerk_ids":["user_b","user_c","user_b"]}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/group", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	convRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCreateGroupTooFewMembers(t *testing.T) {
	handler := NewConversationHandler(new(mocks.ConversationRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupConversationRouter(handler)

	body := bytes.NewBufferString(`{"name":"Team","member_clerk_ids":["user_b"]}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/group", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGroupUnknownMembers(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewConversationHandler(new(mocks.ConversationRepositoryMock), userRepo, nil)
	router := setupConversationRouter(handler)

	userRepo.On("MissingClerkIDs", mock.Anything, []string{"user_a", "user_b", "user_x"}).
		Return([]string{"user_x"}, nil).Once()

	body := bytes.NewBufferString(`{"name":"Team","member_clerk_ids":["user_b","user_x"]}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/group", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []any{"user_x"}, resp["missing"])
	userRepo.AssertExpectations(t)
}

func TestListConversationsSkipsDanglingDirect(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewConversationHandler(convRepo, userRepo, nil)
	router := setupConversationRouter(handler)

	convRepo.On("ListForUser", mock.Anything, "user_a").
		Return([]models.Conversation{{ID: 1}, {ID: 2}}, nil).Once()

	// Conversation 1 has a known counterpart; 2's counterpart has no row.
	convRepo.On("ListMembers", mock.Anything, int64(1)).Return([]string{"user_a", "user_b"}, nil).Once()
	userRepo.On("ByClerkIDs", mock.Anything, []string{"user_b"}).
		Return(map[string]models.User{"user_b": {ID: 2, ClerkID: "user_b", Name: "Bob"}}, nil).Once()
	convRepo.On("ListMembers", mock.Anything, int64(2)).Return([]string{"user_a", "user_gone"}, nil).Once()
	userRepo.On("ByClerkIDs", mock.Anything, []string{"user_gone"}).
		Return(map[string]models.User{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.ConversationSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["conversations"], 1)
	assert.Equal(t, "user_b", resp["conversations"][0].OtherUser.ClerkID)
	convRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetConversationForbidden(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.UserRepositoryMock), nil)
	router := setupConversationRouter(handler)

	convRepo.On("GetByID", mock.Anything, int64(5)).Return(models.Conversation{ID: 5}, nil).Once()
	convRepo.On("IsMember", mock.Anything, int64(5), "user_a").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestGetConversationKeepsUnknownCounterpart(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewConversationHandler(convRepo, userRepo, nil)
	router := setupConversationRouter(handler)

	convRepo.On("GetByID", mock.Anything, int64(7)).Return(models.Conversation{ID: 7}, nil).Once()
	convRepo.On("IsMember", mock.Anything, int64(7), "user_a").Return(true, nil).Once()
	convRepo.On("ListMembers", mock.Anything, int64(7)).Return([]string{"user_a", "user_gone"}, nil).Once()
	userRepo.On("ByClerkIDs", mock.Anything, []string{"user_gone"}).
		Return(map[string]models.User{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ConversationSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.OtherUser)
	assert.Equal(t, "Unknown", resp.OtherUser.Name)
	convRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
