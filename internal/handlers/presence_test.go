package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

func setupPresenceRouter(handler *PresenceHandler, clerkID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if clerkID != "" {
			c.Set(middleware.ClerkIDKey, clerkID)
		}
		c.Next()
	})
	r.POST("/presence/heartbeat", handler.Heartbeat)
	r.POST("/presence/offline", handler.GoOffline)
	r.GET("/presence", handler.OnlineUsers)
	r.GET("/presence/:clerk_id", handler.IsOnline)
	return r
}

func TestHeartbeatSuccess(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)
	router := setupPresenceRouter(NewPresenceHandler(presenceRepo, 20*time.Second), "user_a")

	presenceRepo.On("Heartbeat", mock.Anything, "user_a", mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/presence/heartbeat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	presenceRepo.AssertExpectations(t)
}

func TestHeartbeatAnonymousNoOp(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)
	router := setupPresenceRouter(NewPresenceHandler(presenceRepo, 20*time.Second), "")

	req := httptest.NewRequest(http.MethodPost, "/presence/heartbeat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	presenceRepo.AssertNotCalled(t, "Heartbeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestGoOfflineSuccess(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)
	router := setupPresenceRouter(NewPresenceHandler(presenceRepo, 20*time.Second), "user_a")

	presenceRepo.On("GoOffline", mock.Anything, "user_a").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/presence/offline", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	presenceRepo.AssertExpectations(t)
}

func TestIsOnlineNoRow(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)
	router := setupPresenceRouter(NewPresenceHandler(presenceRepo, 20*time.Second), "")

	presenceRepo.On("Get", mock.Anything, "user_b").Return(models.Presence{}, repositories.ErrPresenceNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/presence/user_b", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["online"])
	presenceRepo.AssertExpectations(t)
}

func TestIsOnlineStaleRow(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)
	router := setupPresenceRouter(NewPresenceHandler(presenceRepo, 20*time.Second), "")

	// Row exists but the sweeper has not reclaimed it yet; the threshold
	// check still reports offline.
	presenceRepo.On("Get", mock.Anything, "user_b").
		Return(models.Presence{ClerkID: "user_b", LastSeenAt: time.Now().Add(-time.Minute)}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/presence/user_b", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["online"])
	presenceRepo.AssertExpectations(t)
}

func TestOnlineUsersFiltersStale(t *testing.T) {
	presenceRepo := new(mocks.PresenceRepositoryMock)
	router := setupPresenceRouter(NewPresenceHandler(presenceRepo, 20*time.Second), "")

	now := time.Now()
	presenceRepo.On("ListAll", mock.Anything).Return([]models.Presence{
		{ClerkID: "user_a", LastSeenAt: now.Add(-5 * time.Second)},
		{ClerkID: "user_b", LastSeenAt: now.Add(-time.Minute)},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/presence", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"user_a"}, resp["online"])
	presenceRepo.AssertExpectations(t)
}
