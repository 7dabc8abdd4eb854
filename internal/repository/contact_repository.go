package repository

import (
	"context"

	"github.com/studio/backend/internal/model"
)

// ContactRepository is the persistence interface for contact records.
// Implementations keep records in insertion order and never delete them.
type ContactRepository interface {
	// Create assigns c.ID and appends c to the store.
	Create(ctx context.Context, c *model.Contact) error

	// List returns every record in insertion order. An empty store yields an
	// empty, non-nil slice.
	List(ctx context.Context) ([]*model.Contact, error)

	// MarkRead sets Read on the record with the given id and returns it.
	// Unknown ids return ErrNotFound and leave the store untouched.
	MarkRead(ctx context.Context, id int) (*model.Contact, error)

	Close() error
}

// Importer is implemented by stores that can ingest records verbatim,
// keeping their ids, timestamps and read flags.
type Importer interface {
	Import(ctx context.Context, contacts []*model.Contact) error
}
