package handlers

import (
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
)

func setupReadStatusRouter(handler *ReadStatusHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClerkIDKey, "user_a")
		c.Next()
	})
	r.POST("/conversations/:conversation_id/read", handler.MarkRead)
	r.GET("/unread-counts", handler.UnreadCounts)
	return r
}

func TestMarkReadSuccess(t *testing.T) {
	readRepo := new(mocks.ReadStatusRepositoryMock)
	router := setupReadStatusRouter(NewReadStatusHandler(readRepo))

	readRepo.On("MarkRead", mock.Anything, int64(5), "user_a", mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	readRepo.AssertExpectations(t)
}

func TestMarkReadInvalidID(t *testing.T) {
	router := setupReadStatusRouter(NewReadStatusHandler(new(mocks.ReadStatusRepositoryMock)))

	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnreadCountsSuccess(t *testing.T) {
	readRepo := new(mocks.ReadStatusRepositoryMock)
	router := setupReadStatusRouter(NewReadStatusHandler(readRepo))

	readRepo.On("UnreadCounts", mock.Anything, "user_a").Return(map[int64]int{5: 3, 8: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/unread-counts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Counts["5"])
	assert.Equal(t, 1, resp.Counts["8"])
	readRepo.AssertExpectations(t)
}
