package repository

import (
	"context"
	"fmt"
)

// Open returns the ContactRepository for backend ("file", "bolt", "postgres"
// or "memory"). target is the file path or connection string it uses.
func Open(ctx context.Context, backend, target string) (ContactRepository, error) {
	switch backend {
	case "file", "":
		return NewJSONFileContactRepository(target), nil
	case "bolt":
		return NewBoltContactRepository(target)
	case "postgres":
		pool, err := NewPool(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPgContactRepository(pool), nil
	case "memory":
		return NewMemoryContactRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
