// test/mock/store.go
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/echo-cache/dao"
	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// StoreCalls counts the queries a MemoryStore answered.
type StoreCalls struct {
	Get       int
	GetIn     int
	FindFirst int
	Count     int
	FindPairs int
	// LastIn holds the ids of the most recent GetIn or FindPairs call.
	LastIn []string
}

// MemoryStore is an in-memory entity store that fires lifecycle hooks like
// the relational one.
type MemoryStore[T model.Entity] struct {
	mu        sync.Mutex
	schema    model.Schema
	lifecycle *dao.Lifecycle
	rows      map[string]T
	calls     StoreCalls
}

func NewMemoryStore[T model.Entity](schema model.Schema, lifecycle *dao.Lifecycle) *MemoryStore[T] {
	return &MemoryStore[T]{schema: schema, lifecycle: lifecycle, rows: make(map[string]T)}
}

func (s *MemoryStore[T]) Schema() model.Schema { return s.schema }

// Calls returns a copy of the query counters.
func (s *MemoryStore[T]) Calls() StoreCalls {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.calls
	c.LastIn = append([]string(nil), s.calls.LastIn...)
	return c
}

func (s *MemoryStore[T]) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = StoreCalls{}
}

// Seed stores rows without firing hooks.
func (s *MemoryStore[T]) Seed(rows ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.rows[row.PrimaryKey()] = row
	}
}

func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Get++
	row, ok := s.rows[id]
	return row, ok, nil
}

func (s *MemoryStore[T]) GetIn(ctx context.Context, ids []string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.GetIn++
	s.calls.LastIn = append([]string(nil), ids...)
	var rows []T
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *MemoryStore[T]) FindFirst(ctx context.Context, pred model.Predicate) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.FindFirst++
	for _, id := range s.sortedIDs() {
		if matches(s.rows[id], pred) {
			return s.rows[id], true, nil
		}
	}
	var zero T
	return zero, false, nil
}

func (s *MemoryStore[T]) Count(ctx context.Context, pred model.Predicate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Count++
	var n int64
	for _, row := range s.rows {
		if matches(row, pred) {
			n++
		}
	}
	return n, nil
}

// FindPairs serves association kinds; T must implement model.Association.
func (s *MemoryStore[T]) FindPairs(ctx context.Context, ownerID string, subjectIDs []string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.FindPairs++
	s.calls.LastIn = append([]string(nil), subjectIDs...)
	wanted := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = true
	}
	var rows []T
	for _, id := range s.sortedIDs() {
		assoc, ok := any(s.rows[id]).(model.Association)
		if !ok {
			return nil, fmt.Errorf("%s is not an association kind", s.schema.Kind)
		}
		if assoc.OwnerKey() == ownerID && wanted[assoc.SubjectKey()] {
			rows = append(rows, s.rows[id])
		}
	}
	return rows, nil
}

func (s *MemoryStore[T]) Insert(ctx context.Context, item T) (T, error) {
	s.mu.Lock()
	s.rows[item.PrimaryKey()] = item
	s.mu.Unlock()
	s.lifecycle.FireInsert(ctx, s.schema.Kind, item)
	return item, nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, item T) (T, error) {
	s.mu.Lock()
	old, ok := s.rows[item.PrimaryKey()]
	if !ok {
		s.mu.Unlock()
		return item, &echo_errors.NotFoundError{Kind: s.schema.Kind, Key: item.PrimaryKey()}
	}
	s.rows[item.PrimaryKey()] = item
	s.mu.Unlock()
	s.lifecycle.FireUpdate(ctx, s.schema.Kind, old, item, dao.ChangedFields(old, item))
	return item, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, item T) error {
	s.mu.Lock()
	old, ok := s.rows[item.PrimaryKey()]
	if !ok {
		s.mu.Unlock()
		return &echo_errors.NotFoundError{Kind: s.schema.Kind, Key: item.PrimaryKey()}
	}
	delete(s.rows, item.PrimaryKey())
	s.mu.Unlock()
	s.lifecycle.FireDelete(ctx, s.schema.Kind, old)
	return nil
}

func (s *MemoryStore[T]) sortedIDs() []string {
	ids := make([]string, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func matches(row model.Entity, pred model.Predicate) bool {
	fields := row.Fields()
	for col, want := range pred {
		if fmt.Sprint(fields[col]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// MockEntityStore is a mock implementation of dao.EntityStore
type MockEntityStore[T model.Entity] struct {
	mock.Mock
	schema model.Schema
}

func NewMockEntityStore[T model.Entity](schema model.Schema) *MockEntityStore[T] {
	return &MockEntityStore[T]{schema: schema}
}

func (m *MockEntityStore[T]) Schema() model.Schema { return m.schema }

func (m *MockEntityStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(T), args.Bool(1), args.Error(2)
}

func (m *MockEntityStore[T]) GetIn(ctx context.Context, ids []string) ([]T, error) {
	args := m.Called(ctx, ids)
	rows, _ := args.Get(0).([]T)
	return rows, args.Error(1)
}

func (m *MockEntityStore[T]) FindFirst(ctx context.Context, pred model.Predicate) (T, bool, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(T), args.Bool(1), args.Error(2)
}

func (m *MockEntityStore[T]) Count(ctx context.Context, pred model.Predicate) (int64, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(int64), args.Error(1)
}
