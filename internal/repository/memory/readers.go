package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecg-academy/internal/domain"
)

func (s *Store) QueryEvents(ctx context.Context, q domain.EventQuery) ([]domain.Event, error) {
	s.eventQueries.Add(1)
	if len(q.Values) > domain.MaxInValues {
		return nil, domain.ErrTooManyFilterValues
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(q.Values))
	for _, v := range q.Values {
		want[v] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, v := range s.data[domain.CollectionEvents] {
		e := v.(*domain.Event)
		if len(want) > 0 {
			field := e.EmployeeID
			if q.Field == domain.EventFieldUID {
				field = e.UID
			}
			if _, ok := want[field]; !ok {
				continue
			}
		}
		if q.Since != nil && e.CreatedAt.Before(*q.Since) {
			continue
		}
		if q.Action != "" && e.Action != q.Action {
			continue
		}
		out = append(out, *cloneDoc(e).(*domain.Event))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.Order == domain.SortDescending {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) GetContentStatus(ctx context.Context, uid string) (*domain.ContentReadStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[domain.CollectionContentStatus][uid]
	if !ok {
		return nil, nil
	}
	return cloneDoc(v).(*domain.ContentReadStatus), nil
}

func (s *Store) GetPointsStats(ctx context.Context, uid string) (*domain.PointsStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[domain.CollectionPointsStats][uid]
	if !ok {
		return nil, nil
	}
	return cloneDoc(v).(*domain.PointsStats), nil
}

func (s *Store) ListPointsStats(ctx context.Context) ([]domain.PointsStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PointsStats, 0, len(s.data[domain.CollectionPointsStats]))
	for _, k := range s.sortedKeys(domain.CollectionPointsStats) {
		out = append(out, *s.data[domain.CollectionPointsStats][k].(*domain.PointsStats))
	}
	return out, nil
}

func (s *Store) GetUserStats(ctx context.Context, uid string) (*domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[domain.CollectionUserStats][uid]
	if !ok {
		return nil, nil
	}
	return cloneDoc(v).(*domain.UserStats), nil
}

func (s *Store) ListUserStats(ctx context.Context) ([]domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserStats, 0, len(s.data[domain.CollectionUserStats]))
	for _, k := range s.sortedKeys(domain.CollectionUserStats) {
		out = append(out, *s.data[domain.CollectionUserStats][k].(*domain.UserStats))
	}
	return out, nil
}

func (s *Store) GetCaseStats(ctx context.Context, caseID string) (*domain.CaseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[domain.CollectionCaseStats][caseID]
	if !ok {
		return nil, nil
	}
	return cloneDoc(v).(*domain.CaseStats), nil
}

func (s *Store) GetAttempt(ctx context.Context, id string) (*domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[domain.CollectionAttempts][id]
	if !ok {
		return nil, nil
	}
	return cloneDoc(v).(*domain.QuizAttempt), nil
}

// ListClinicalEvents orders by createdAt, then ID.
func (s *Store) ListClinicalEvents(ctx context.Context) ([]domain.ClinicalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ClinicalEvent, 0, len(s.data[domain.CollectionClinical]))
	for _, v := range s.data[domain.CollectionClinical] {
		out = append(out, *cloneDoc(v).(*domain.ClinicalEvent))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListCases(ctx context.Context, status domain.ContentStatus) ([]domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Case
	for _, k := range s.sortedKeys(domain.CollectionCases) {
		c := s.data[domain.CollectionCases][k].(*domain.Case)
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *Store) ListPapers(ctx context.Context, status domain.ContentStatus) ([]domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Paper
	for _, k := range s.sortedKeys(domain.CollectionPapers) {
		p := s.data[domain.CollectionPapers][k].(*domain.Paper)
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *cloneDoc(p).(*domain.Paper))
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[domain.CollectionUsers][uid]
	if !ok {
		return nil, nil
	}
	return cloneDoc(v).(*domain.User), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.data[domain.CollectionUsers]))
	for _, k := range s.sortedKeys(domain.CollectionUsers) {
		out = append(out, *s.data[domain.CollectionUsers][k].(*domain.User))
	}
	return out, nil
}

type documentable interface {
	ToDocument() domain.Document
}

func (s *Store) ListDocuments(ctx context.Context, collection string) ([]domain.KeyedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.data[collection]
	if !ok {
		return nil, domain.ErrUnknownCollection
	}
	out := make([]domain.KeyedDocument, 0, len(rows))
	for _, k := range s.sortedKeys(collection) {
		out = append(out, domain.KeyedDocument{ID: k, Fields: rows[k].(documentable).ToDocument()})
	}
	return out, nil
}

// InsertEvents loads fixture events with their own createdAt, bypassing the commit clock.
func (s *Store) InsertEvents(events ...domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range events {
		e := events[i]
		s.data[domain.CollectionEvents][e.ID] = cloneDoc(&e)
	}
}

// Clock is a manually driven domain.Clock for deterministic tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
