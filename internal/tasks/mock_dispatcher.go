package tasks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studykit/internal/llm"
)

// MockDispatcher is a mock implementation of Dispatcher using testify/mock.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, task llm.Task, prompt string) (string, error) {
	args := m.Called(ctx, task, prompt)
	return args.String(0), args.Error(1)
}
