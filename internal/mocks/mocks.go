package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tripchat-service/internal/models"
	"tripchat-service/internal/repositories"
)

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupIDsForUser(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID int, userID int) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, groupID int, senderID int, content string) (models.ChatMessage, error) {
	args := m.Called(ctx, groupID, senderID, content)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, groupID int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, groupID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

type CheckInRepositoryMock struct {
	mock.Mock
}

func (m *CheckInRepositoryMock) UpsertCheckIn(ctx context.Context, tripID int, userID int, status string, notes string) (models.CheckIn, error) {
	args := m.Called(ctx, tripID, userID, status, notes)
	var ci models.CheckIn
	if val := args.Get(0); val != nil {
		ci = val.(models.CheckIn)
	}
	return ci, args.Error(1)
}

func (m *CheckInRepositoryMock) ListCheckIns(ctx context.Context, tripID int) ([]models.CheckIn, error) {
	args := m.Called(ctx, tripID)
	var cis []models.CheckIn
	if val := args.Get(0); val != nil {
		cis = val.([]models.CheckIn)
	}
	return cis, args.Error(1)
}

func (m *CheckInRepositoryMock) GetCheckIn(ctx context.Context, tripID int, userID int) (models.CheckIn, error) {
	args := m.Called(ctx, tripID, userID)
	var ci models.CheckIn
	if val := args.Get(0); val != nil {
		ci = val.(models.CheckIn)
	}
	return ci, args.Error(1)
}

type TripRepositoryMock struct {
	mock.Mock
}

func (m *TripRepositoryMock) GetTrip(ctx context.Context, tripID int) (models.Trip, error) {
	args := m.Called(ctx, tripID)
	var trip models.Trip
	if val := args.Get(0); val != nil {
		trip = val.(models.Trip)
	}
	return trip, args.Error(1)
}

func (m *TripRepositoryMock) ListTripsForGroup(ctx context.Context, groupID int) ([]models.Trip, error) {
	args := m.Called(ctx, groupID)
	var trips []models.Trip
	if val := args.Get(0); val != nil {
		trips = val.([]models.Trip)
	}
	return trips, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.CheckInRepository = (*CheckInRepositoryMock)(nil)
var _ repositories.TripRepository = (*TripRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
