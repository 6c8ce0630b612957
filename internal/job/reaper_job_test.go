package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockReaper is a mock implementation of Reaper
type MockReaper struct {
	mock.Mock
}

func (m *MockReaper) ReapAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestReaperJob_Run_DeletesStale(t *testing.T) {
	mockReaper := new(MockReaper)
	mockReaper.On("ReapAll", mock.Anything).Return(int64(4), nil).Once()

	NewReaperJob(mockReaper, time.Second, zap.NewNop()).Run()

	mockReaper.AssertExpectations(t)
}

func TestReaperJob_Run_NothingStale(t *testing.T) {
	mockReaper := new(MockReaper)
	mockReaper.On("ReapAll", mock.Anything).Return(int64(0), nil).Once()

	NewReaperJob(mockReaper, time.Second, zap.NewNop()).Run()

	mockReaper.AssertExpectations(t)
}

func TestReaperJob_Run_ErrorIsSwallowed(t *testing.T) {
	mockReaper := new(MockReaper)
	mockReaper.On("ReapAll", mock.Anything).Return(int64(0), errors.New("database is down")).Once()

	assert.NotPanics(t, func() {
		NewReaperJob(mockReaper, time.Second, zap.NewNop()).Run()
	})
	mockReaper.AssertExpectations(t)
}

func TestReaperJob_Run_UsesDeadline(t *testing.T) {
	mockReaper := new(MockReaper)
	mockReaper.On("ReapAll", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(int64(0), nil).Once()

	NewReaperJob(mockReaper, 0, zap.NewNop()).Run()

	mockReaper.AssertExpectations(t)
}

func TestScheduler_RunsJob(t *testing.T) {
	mockReaper := new(MockReaper)
	ran := make(chan struct{}, 1)
	mockReaper.On("ReapAll", mock.Anything).Return(int64(0), nil).Run(func(mock.Arguments) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	s := NewScheduler(zap.NewNop())
	require.NoError(t, s.Add("presence-reaper", "@every 1s", NewReaperJob(mockReaper, time.Second, zap.NewNop())))
	assert.Equal(t, 1, s.Entries())

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("reaper job did not run")
	}
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.Add("presence-reaper", "every minute", NewReaperJob(new(MockReaper), time.Second, zap.NewNop()))
	assert.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}
