package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go-live-polls/models"
)

// Ensure the mocks implement the service interfaces
var (
	_ SessionServiceInterface = (*MockSessionService)(nil)
	_ PollServiceInterface    = (*MockPollService)(nil)
	_ VoteServiceInterface    = (*MockVoteService)(nil)
)

// MockSessionService is a mock implementation for controller tests and extends `mock.Mock`
type MockSessionService struct {
	mock.Mock
}

// CreateSession (Mocked)
func (m *MockSessionService) CreateSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

// GetSession (Mocked)
func (m *MockSessionService) GetSession(ctx context.Context, code string) (*models.SessionView, error) {
	args := m.Called(ctx, code)
	view, _ := args.Get(0).(*models.SessionView)
	return view, args.Error(1)
}

// MockPollService (Mocked)
type MockPollService struct {
	mock.Mock
}

// CreatePoll (Mocked)
func (m *MockPollService) CreatePoll(ctx context.Context, sessionCode string, req CreatePollRequest) (*models.Poll, error) {
	args := m.Called(ctx, sessionCode, req)
	poll, _ := args.Get(0).(*models.Poll)
	return poll, args.Error(1)
}

// MockVoteService (Mocked)
type MockVoteService struct {
	mock.Mock
}

// Vote (Mocked)
func (m *MockVoteService) Vote(ctx context.Context, pollID, option string) (*models.Poll, error) {
	args := m.Called(ctx, pollID, option)
	poll, _ := args.Get(0).(*models.Poll)
	return poll, args.Error(1)
}
