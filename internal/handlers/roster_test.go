package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripchat-service/internal/mocks"
	"tripchat-service/internal/models"
)

func TestListUsersCarriesOnlineFlag(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	tracker := new(mocks.TrackerMock)
	handler := NewRosterHandler(userRepo, tracker)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/users", handler.ListUsers)

	userRepo.On("ListUsers", mock.Anything).Return([]models.User{
		{ID: 1, Username: "ana", DisplayName: "Ana"},
		{ID: 2, Username: "ben", DisplayName: "Ben"},
	}, nil).Once()
	tracker.On("IsOnline", mock.Anything, 1).Return(true, nil).Once()
	tracker.On("IsOnline", mock.Anything, 2).Return(false, errors.New("redis down")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users []struct {
			ID     int  `json:"id"`
			Online bool `json:"online"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Users, 2)
	require.True(t, resp.Users[0].Online)
	// tracker failures degrade to offline instead of erroring the roster
	require.False(t, resp.Users[1].Online)

	userRepo.AssertExpectations(t)
	tracker.AssertExpectations(t)
}

func TestDebugRoutesRequireDevToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, nil, true, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	req.Header.Set("X-Debug-Token", "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	// nil emitter answers 503, proving the token gate was passed
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
