package resource

import (
	"context"
	"sort"
	"sync"
)

// Store manages one Table per resource type name.
type Store struct {
	tables map[string]*Table
	mu     sync.RWMutex
}

// NewStore creates an empty resource store.
func NewStore() *Store {
	return &Store{
		tables: make(map[string]*Table),
	}
}

// Table returns the table for name, creating it with dtor if it does not
// exist yet. dtor is ignored for an existing table.
func (s *Store) Table(name string, dtor Destructor) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tables[name]; ok {
		return t
	}
	t := NewTable(dtor)
	s.tables[name] = t
	return t
}

// Lookup returns the table for name if it exists.
func (s *Store) Lookup(name string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	return t, ok
}

// Names returns the registered type names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every table in name order.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	tables := s.tables
	s.tables = make(map[string]*Table)
	s.mu.Unlock()

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if err := tables[name].Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
