package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecg-academy/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) RefreshUserStats(ctx context.Context) ([]dto.AdminUserStatRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AdminUserStatRow), args.Error(1)
}

func TestStart_RunsRefreshImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	refresher := new(MockRefresher)
	refresher.On("RefreshUserStats", mock.Anything).
		Return([]dto.AdminUserStatRow{{UID: "u1"}}, nil).
		Run(func(mock.Arguments) {
			select {
			case ran <- struct{}{}:
			default:
			}
		})

	s := New(refresher, time.Hour, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("stats refresh did not run")
	}
}

func TestStart_RejectsNonPositiveInterval(t *testing.T) {
	s := New(new(MockRefresher), 0, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestRefreshStats_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	refresher := new(MockRefresher)
	refresher.On("RefreshUserStats", mock.Anything).Return(nil, errors.New("ORA-12541: TNS:no listener")).Once()

	s := New(refresher, time.Hour, zap.New(core))
	s.RefreshStats()

	require.Equal(t, 1, logs.FilterMessage("admin stats refresh failed").Len())
	refresher.AssertExpectations(t)
}
