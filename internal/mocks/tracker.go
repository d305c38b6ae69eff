package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tripchat-service/internal/presence"
)

type TrackerMock struct {
	mock.Mock
}

func (m *TrackerMock) MarkOnline(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *TrackerMock) MarkOffline(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *TrackerMock) IsOnline(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var _ presence.Tracker = (*TrackerMock)(nil)
