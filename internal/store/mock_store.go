package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRun(ctx context.Context, run Run) (Run, error) {
	args := m.Called(ctx, run)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockStore) SaveSummary(ctx context.Context, id uuid.UUID, summary string, highlights []string) error {
	args := m.Called(ctx, id, summary, highlights)
	return args.Error(0)
}

func (m *MockStore) SaveAdaptation(ctx context.Context, id uuid.UUID, adapted string, complexity float64) error {
	args := m.Called(ctx, id, adapted, complexity)
	return args.Error(0)
}

func (m *MockStore) SaveCards(ctx context.Context, id uuid.UUID, cards []Card) error {
	args := m.Called(ctx, id, cards)
	return args.Error(0)
}

func (m *MockStore) ListCards(ctx context.Context, id uuid.UUID) ([]Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Card), args.Error(1)
}
