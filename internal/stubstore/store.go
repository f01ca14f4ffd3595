package stubstore

import (
	"fmt"
	"sync"
)

// Row is one created record, kept exactly as it was posted.
type Row map[string]any

// ErrDuplicateID is returned when a row reuses an id already stored.
type ErrDuplicateID struct {
	ID string
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate key value violates unique constraint: id=%s", e.ID)
}

// Memory holds rows per table. Inserts are all-or-nothing.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
	ids    map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]Row),
		ids:    make(map[string]map[string]struct{}),
	}
}

// Count returns the number of rows in table.
func (m *Memory) Count(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

// Rows returns a copy of the rows in table, in insertion order.
func (m *Memory) Rows(table string) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Row(nil), m.tables[table]...)
}

// Insert stores rows unless any id collides with a stored row or another row
// of the same request.
func (m *Memory) Insert(table string, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.ids[table]
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		id := fmt.Sprint(row["id"])
		if _, ok := existing[id]; ok {
			return &ErrDuplicateID{ID: id}
		}
		if _, ok := seen[id]; ok {
			return &ErrDuplicateID{ID: id}
		}
		seen[id] = struct{}{}
	}

	if existing == nil {
		existing = make(map[string]struct{}, len(rows))
		m.ids[table] = existing
	}
	for id := range seen {
		existing[id] = struct{}{}
	}
	m.tables[table] = append(m.tables[table], rows...)
	return nil
}
