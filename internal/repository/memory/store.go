// Package memory is an in-process document store implementing domain.Store.
// It backs tests and `store.driver=memory` local runs, and serves as the
// reference behaviour the Oracle repository is checked against.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"ecg-academy/internal/domain"
)

// Store keeps every collection as key -> pointer to the typed document.
type Store struct {
	mu    sync.RWMutex
	clock domain.Clock
	data  map[string]map[string]interface{}

	eventQueries atomic.Int64
	failNext     error
}

var _ domain.Store = (*Store)(nil)

var collections = []string{
	domain.CollectionUsers,
	domain.CollectionEvents,
	domain.CollectionAttempts,
	domain.CollectionClinical,
	domain.CollectionUserStats,
	domain.CollectionCaseStats,
	domain.CollectionPointsStats,
	domain.CollectionContentStatus,
	domain.CollectionCases,
	domain.CollectionPapers,
}

func New(clock domain.Clock) *Store {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	s := &Store{clock: clock, data: make(map[string]map[string]interface{}, len(collections))}
	for _, c := range collections {
		s.data[c] = make(map[string]interface{})
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// FailNextCommit makes the next Commit return err without applying anything.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// EventQueryCount is the number of QueryEvents calls served so far.
func (s *Store) EventQueryCount() int {
	return int(s.eventQueries.Load())
}

// Commit applies the batch all-or-nothing. Mutations are staged in an overlay
// and merged only after every one of them succeeded.
func (s *Store) Commit(ctx context.Context, batch *domain.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}

	now := s.clock.Now()
	tx := &overlay{base: s.data, pending: make(map[string]map[string]interface{})}
	for i, m := range batch.Mutations() {
		if err := tx.apply(m, now); err != nil {
			return fmt.Errorf("mutation %d (%s %s/%s): %w", i, m.Kind, m.Collection, m.Key, err)
		}
	}
	tx.flush()
	return nil
}

type overlay struct {
	base    map[string]map[string]interface{}
	pending map[string]map[string]interface{}
}

// get returns a private copy of the current value, consulting staged writes first.
func (o *overlay) get(collection, key string) (interface{}, bool) {
	if staged, ok := o.pending[collection]; ok {
		if v, ok := staged[key]; ok {
			return v, v != nil
		}
	}
	v, ok := o.base[collection][key]
	if !ok {
		return nil, false
	}
	return cloneDoc(v), true
}

func (o *overlay) put(collection, key string, v interface{}) {
	if o.pending[collection] == nil {
		o.pending[collection] = make(map[string]interface{})
	}
	o.pending[collection][key] = v
}

func (o *overlay) apply(m domain.Mutation, now time.Time) error {
	if _, ok := o.base[m.Collection]; !ok {
		return domain.ErrUnknownCollection
	}
	if m.Key == "" {
		return errors.New("empty document key")
	}

	switch m.Kind {
	case domain.MutationCreate:
		if _, exists := o.get(m.Collection, m.Key); exists {
			return domain.ErrAlreadyExists
		}
		doc, err := typedDoc(m.Collection, m.Doc)
		if err != nil {
			return err
		}
		doc.StampServerTime(now)
		o.put(m.Collection, m.Key, doc)
	case domain.MutationIncrement:
		doc, err := o.getOrInit(m.Collection, m.Key)
		if err != nil {
			return err
		}
		inc, ok := doc.(interface {
			ApplyIncrement(string, int64) error
		})
		if !ok {
			return fmt.Errorf("%w: %s has no counters", domain.ErrUnknownField, m.Collection)
		}
		if err := inc.ApplyIncrement(m.Field, m.Delta); err != nil {
			return err
		}
		touch(doc, now)
		o.put(m.Collection, m.Key, doc)
	case domain.MutationArrayUnion:
		doc, err := o.getOrInit(m.Collection, m.Key)
		if err != nil {
			return err
		}
		status, ok := doc.(*domain.ContentReadStatus)
		if !ok {
			return fmt.Errorf("%w: %s has no set fields", domain.ErrUnknownField, m.Collection)
		}
		if err := status.Union(m.Field, m.Values); err != nil {
			return err
		}
		status.UpdatedAt = now
		o.put(m.Collection, m.Key, status)
	case domain.MutationDelete:
		o.put(m.Collection, m.Key, nil)
	default:
		return fmt.Errorf("unsupported mutation kind %d", m.Kind)
	}
	return nil
}

// getOrInit implements upsert semantics for counter and set documents.
func (o *overlay) getOrInit(collection, key string) (interface{}, error) {
	if v, ok := o.get(collection, key); ok {
		return v, nil
	}
	switch collection {
	case domain.CollectionUserStats:
		return &domain.UserStats{UID: key}, nil
	case domain.CollectionCaseStats:
		return &domain.CaseStats{CaseID: key}, nil
	case domain.CollectionPointsStats:
		return &domain.PointsStats{UID: key}, nil
	case domain.CollectionContentStatus:
		return &domain.ContentReadStatus{UID: key}, nil
	}
	return nil, fmt.Errorf("%w: %s cannot be upserted", domain.ErrUnknownField, collection)
}

func (o *overlay) flush() {
	for collection, staged := range o.pending {
		for key, v := range staged {
			if v == nil {
				delete(o.base[collection], key)
				continue
			}
			o.base[collection][key] = v
		}
	}
}

func touch(doc interface{}, now time.Time) {
	switch d := doc.(type) {
	case *domain.UserStats:
		d.UpdatedAt = now
	case *domain.CaseStats:
		d.UpdatedAt = now
	case *domain.PointsStats:
		d.UpdatedAt = now
	}
}

// typedDoc checks the document type against the collection and returns a private copy.
func typedDoc(collection string, doc domain.ServerStamped) (domain.ServerStamped, error) {
	var ok bool
	switch collection {
	case domain.CollectionUsers:
		_, ok = doc.(*domain.User)
	case domain.CollectionEvents:
		_, ok = doc.(*domain.Event)
	case domain.CollectionAttempts:
		_, ok = doc.(*domain.QuizAttempt)
	case domain.CollectionClinical:
		_, ok = doc.(*domain.ClinicalEvent)
	case domain.CollectionCases:
		_, ok = doc.(*domain.Case)
	case domain.CollectionPapers:
		_, ok = doc.(*domain.Paper)
	}
	if !ok {
		return nil, fmt.Errorf("document %T cannot be created in %s", doc, collection)
	}
	return cloneDoc(doc).(domain.ServerStamped), nil
}

func cloneDoc(v interface{}) interface{} {
	switch d := v.(type) {
	case *domain.User:
		c := *d
		return &c
	case *domain.Event:
		c := *d
		if d.Meta != nil {
			c.Meta = make(map[string]interface{}, len(d.Meta))
			for k, val := range d.Meta {
				c.Meta[k] = val
			}
		}
		return &c
	case *domain.QuizAttempt:
		c := *d
		c.Items = append([]domain.QuizItem(nil), d.Items...)
		return &c
	case *domain.ClinicalEvent:
		c := *d
		return &c
	case *domain.UserStats:
		c := *d
		return &c
	case *domain.CaseStats:
		c := *d
		return &c
	case *domain.PointsStats:
		c := *d
		return &c
	case *domain.ContentReadStatus:
		c := *d
		c.CasesRead = append([]string(nil), d.CasesRead...)
		c.PapersRead = append([]string(nil), d.PapersRead...)
		c.QuizzesCompleted = append([]string(nil), d.QuizzesCompleted...)
		return &c
	case *domain.Case:
		c := *d
		return &c
	case *domain.Paper:
		c := *d
		c.Tags = append([]string(nil), d.Tags...)
		return &c
	}
	return v
}

// sortedKeys returns the collection's keys in ascending order.
func (s *Store) sortedKeys(collection string) []string {
	keys := make([]string, 0, len(s.data[collection]))
	for k := range s.data[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
