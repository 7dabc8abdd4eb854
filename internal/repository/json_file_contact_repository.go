package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/studio/backend/internal/model"
)

// JSONFileContactRepository keeps every contact in a single file holding a
// JSON array. Each operation re-reads the whole file and rewrites it; mu
// serializes those cycles within the process.
type JSONFileContactRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileContactRepository creates a repository backed by path. The file
// is created on the first write.
func NewJSONFileContactRepository(path string) *JSONFileContactRepository {
	return &JSONFileContactRepository{path: path}
}

// Ensure JSONFileContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*JSONFileContactRepository)(nil)

// Path returns the backing file path.
func (r *JSONFileContactRepository) Path() string { return r.path }

// Load reads and parses the backing file. A missing or empty file is an empty
// store. Load does not take the repository lock.
func (r *JSONFileContactRepository) Load() ([]*model.Contact, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*model.Contact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Contact{}, nil
	}

	var contacts []*model.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	return contacts, nil
}

// Save replaces the backing file with contacts encoded as an indented JSON
// array. The data is written to a sibling temp file and renamed into place.
// Save does not take the repository lock.
func (r *JSONFileContactRepository) Save(contacts []*model.Contact) error {
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

// Create assigns the next id (one past the largest stored id) and appends c.
func (r *JSONFileContactRepository) Create(ctx context.Context, c *model.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.Load()
	if err != nil {
		return err
	}
	stored := *c
	stored.ID = nextID(contacts)
	if err := r.Save(append(contacts, &stored)); err != nil {
		return err
	}
	c.ID = stored.ID
	return nil
}

// List returns the file contents in stored order.
func (r *JSONFileContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Load()
}

// MarkRead flags the first record with the given id as read. The file is
// only rewritten when the flag actually changes.
func (r *JSONFileContactRepository) MarkRead(ctx context.Context, id int) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.Load()
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if c == nil || c.ID != id {
			continue
		}
		if !c.Read {
			c.Read = true
			if err := r.Save(contacts); err != nil {
				return nil, err
			}
		}
		updated := *c
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Close is a no-op; the file is not held open between operations.
func (r *JSONFileContactRepository) Close() error { return nil }

// nextID returns one past the largest id in contacts. For files without gaps
// this equals len(contacts)+1.
func nextID(contacts []*model.Contact) int {
	maxID := 0
	for _, c := range contacts {
		if c != nil && c.ID > maxID {
			maxID = c.ID
		}
	}
	return maxID + 1
}
