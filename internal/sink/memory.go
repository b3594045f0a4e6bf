package sink

import (
	"context"
	"sync"

	"github.com/spigell/job-router/internal/routing"
)

// Memory keeps rows in process. Used for dry runs and tests.
type Memory struct {
	mu   sync.Mutex
	rows map[routing.Category][]Row

	// ReadErr, when set, is returned by ReadKeys for that destination.
	ReadErr map[routing.Category]error
	// AppendErr, when set, decides per row whether Append fails.
	AppendErr func(dest routing.Category, row Row) error
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[routing.Category][]Row)}
}

func (m *Memory) ReadKeys(_ context.Context, dest routing.Category) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ReadErr[dest]; err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.rows[dest]))
	for _, r := range m.rows[dest] {
		if r.Link != "" {
			keys = append(keys, r.Link)
		}
	}
	return keys, nil
}

func (m *Memory) Append(_ context.Context, dest routing.Category, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		if err := m.AppendErr(dest, row); err != nil {
			return err
		}
	}

	m.rows[dest] = append(m.rows[dest], row)
	return nil
}

// Rows returns a copy of the rows stored in dest.
func (m *Memory) Rows(dest routing.Category) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Row, len(m.rows[dest]))
	copy(out, m.rows[dest])
	return out
}

// Total counts rows across all destinations.
func (m *Memory) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, rows := range m.rows {
		n += len(rows)
	}
	return n
}
