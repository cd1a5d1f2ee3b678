package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// MockCache is a mock type for domain.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSessionTracker is a mock type for domain.SessionTracker
type MockSessionTracker struct {
	mock.Mock
}

func (m *MockSessionTracker) MarkLogin(ctx context.Context, uid, sessionID string) (bool, error) {
	args := m.Called(ctx, uid, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionTracker) Clear(ctx context.Context, uid, sessionID string) error {
	args := m.Called(ctx, uid, sessionID)
	return args.Error(0)
}

func newTestStore() (*memory.Store, *memory.Clock) {
	clock := memory.NewClock(t0)
	return memory.New(clock), clock
}

func seedUser(t *testing.T, store *memory.Store, uid, employeeID string) {
	t.Helper()
	user := &domain.User{UID: uid, EmployeeID: employeeID, Email: uid + "@example.com", Role: "user"}
	require.NoError(t, store.Commit(context.Background(), domain.NewBatch().Create(domain.CollectionUsers, uid, user)))
}

func eventsOf(t *testing.T, store *memory.Store, uid string, action domain.EventAction) []domain.Event {
	t.Helper()
	events, err := store.QueryEvents(context.Background(), domain.EventQuery{
		Field:  domain.EventFieldUID,
		Values: []string{uid},
		Action: action,
	})
	require.NoError(t, err)
	return events
}

func requireBalanced(t *testing.T, store *memory.Store, uid string) *domain.PointsStats {
	t.Helper()
	ps, err := store.GetPointsStats(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, ps)
	require.True(t, ps.Balanced(), "totalPoints %d != breakdown sum %d", ps.TotalPoints, ps.PointsBreakdown.Sum())
	return ps
}

// barrierStore holds every GetContentStatus caller until n readers have arrived,
// so concurrent views all observe the same pre-commit state.
type barrierStore struct {
	*memory.Store
	wg sync.WaitGroup
}

func newBarrierStore(store *memory.Store, n int) *barrierStore {
	b := &barrierStore{Store: store}
	b.wg.Add(n)
	return b
}

func (b *barrierStore) GetContentStatus(ctx context.Context, uid string) (*domain.ContentReadStatus, error) {
	status, err := b.Store.GetContentStatus(ctx, uid)
	b.wg.Done()
	b.wg.Wait()
	return status, err
}

// failingQueryStore fails the nth QueryEvents call (1-based).
type failingQueryStore struct {
	*memory.Store
	mu     sync.Mutex
	calls  int
	failOn int
	err    error
}

func (f *failingQueryStore) QueryEvents(ctx context.Context, q domain.EventQuery) ([]domain.Event, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls == f.failOn
	f.mu.Unlock()
	if fail {
		return nil, f.err
	}
	return f.Store.QueryEvents(ctx, q)
}

var testLogger = zap.NewNop()
