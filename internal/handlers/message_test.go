package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripchat-service/internal/mocks"
	"tripchat-service/internal/models"
	"tripchat-service/internal/ws"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/api/groups", handler.ListGroups)
	r.GET("/api/groups/:group_id/messages", handler.GetGroupMessages)
	r.POST("/api/groups/:group_id/messages", handler.PostGroupMessage)
	return r
}

func TestGetGroupMessagesSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(groupRepo, messageRepo, userRepo, nil, nil)
	router := setupMessageRouter(handler)

	groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	messageRepo.On("ListMessages", mock.Anything, 9).Return([]models.ChatMessage{
		{ID: 1, GroupID: 9, SenderID: 1, Content: "who packed the tent"},
		{ID: 2, GroupID: 9, SenderID: 2, Content: "me"},
	}, nil).Once()
	userRepo.On("BulkUsers", mock.Anything, []int{1, 2}).Return([]models.User{
		{ID: 1, Username: "ana", DisplayName: "Ana"},
		{ID: 2, Username: "bo", DisplayName: "Bo"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/groups/9/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []struct {
			ID         int    `json:"id"`
			SenderName string `json:"senderName"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	require.Equal(t, "Ana", resp.Messages[0].SenderName)

	groupRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetGroupMessagesNotMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewMessageHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	groupRepo.On("IsMember", mock.Anything, 9, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/groups/9/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetGroupMessagesInvalidID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.GroupRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/groups/bad/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostGroupMessageSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	hub := ws.NewHub()
	handler := NewMessageHandler(groupRepo, messageRepo, new(mocks.UserRepositoryMock), hub, nil)
	router := setupMessageRouter(handler)

	groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	messageRepo.On("CreateMessage", mock.Anything, 9, 1, "rolling out at 8").Return(models.ChatMessage{ID: 3, GroupID: 9, SenderID: 1, Content: "rolling out at 8"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/groups/9/messages", bytes.NewBufferString(`{"content":"rolling out at 8"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostGroupMessageEmptyContent(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(groupRepo, messageRepo, new(mocks.UserRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler)

	groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Twice()

	for _, body := range []string{`{"content":""}`, `{"content":"   "}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/groups/9/messages", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListGroupsSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewMessageHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	groupRepo.On("ListGroupsForUser", mock.Anything, 1).Return([]models.Group{{ID: 4, Name: "camping crew"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}
