package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spigell/job-router/internal/routing"
)

// CSV writes one <Category>.csv file per destination under Dir.
type CSV struct {
	Dir string

	mu sync.Mutex
}

func NewCSV(dir string) (*CSV, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("csv directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating csv directory %q: %w", dir, err)
	}
	return &CSV{Dir: dir}, nil
}

func (c *CSV) path(dest routing.Category) string {
	return filepath.Join(c.Dir, string(dest)+".csv")
}

// ReadKeys treats a missing file as an empty destination.
func (c *CSV) ReadKeys(_ context.Context, dest routing.Category) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path(dest))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dest, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", dest, err)
	}

	col := KeyColumn(header)
	if col < 0 {
		return nil, fmt.Errorf("%s has no link column in header %v", dest, header)
	}

	var keys []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dest, err)
		}
		if col < len(record) {
			if key := strings.TrimSpace(record[col]); key != "" {
				keys = append(keys, key)
			}
		}
	}

	return keys, nil
}

func (c *CSV) Append(_ context.Context, dest routing.Category, row Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path(dest), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dest, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", dest, err)
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("writing %s header: %w", dest, err)
		}
	}
	if err := w.Write(row.Values()); err != nil {
		return fmt.Errorf("writing %s row: %w", dest, err)
	}
	w.Flush()

	return w.Error()
}
