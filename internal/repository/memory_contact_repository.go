package repository

import (
	"context"
	"sync"

	"github.com/studio/backend/internal/model"
)

// MemoryContactRepository keeps contacts in process memory. Callers receive
// copies, never the stored values.
type MemoryContactRepository struct {
	mu       sync.Mutex
	contacts []model.Contact
}

func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{}
}

var (
	_ ContactRepository = (*MemoryContactRepository)(nil)
	_ Importer          = (*MemoryContactRepository)(nil)
)

func (r *MemoryContactRepository) Create(_ context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.maxID() + 1
	r.contacts = append(r.contacts, *c)
	return nil
}

func (r *MemoryContactRepository) List(_ context.Context) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Contact, 0, len(r.contacts))
	for i := range r.contacts {
		c := r.contacts[i]
		out = append(out, &c)
	}
	return out, nil
}

func (r *MemoryContactRepository) MarkRead(_ context.Context, id int) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.contacts {
		if r.contacts[i].ID == id {
			r.contacts[i].Read = true
			c := r.contacts[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryContactRepository) Import(_ context.Context, contacts []*model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range contacts {
		if c != nil {
			r.contacts = append(r.contacts, *c)
		}
	}
	return nil
}

func (r *MemoryContactRepository) Close() error { return nil }

func (r *MemoryContactRepository) maxID() int {
	n := 0
	for _, c := range r.contacts {
		if c.ID > n {
			n = c.ID
		}
	}
	return n
}
