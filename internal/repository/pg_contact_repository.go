package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studio/backend/internal/model"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
// Ids come from the contacts.id SERIAL column.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var (
	_ ContactRepository = (*PgContactRepository)(nil)
	_ Importer          = (*PgContactRepository)(nil)
)

const contactColumns = `id, name, email, message, created_at, read`

// Create inserts a contacts row and populates c.ID from the RETURNING clause.
func (r *PgContactRepository) Create(ctx context.Context, c *model.Contact) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contacts (name, email, message, created_at, read)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.Name, c.Email, c.Message, c.Timestamp.Time, c.Read,
	).Scan(&c.ID)
}

// List returns all contacts ordered by id.
func (r *PgContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// MarkRead sets read = TRUE and returns the updated row.
func (r *PgContactRepository) MarkRead(ctx context.Context, id int) (*model.Contact, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE contacts SET read = TRUE WHERE id = $1 RETURNING `+contactColumns, id)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Import inserts contacts with their original ids in one transaction, skipping
// ids that already exist, then moves the id sequence past the largest id.
func (r *PgContactRepository) Import(ctx context.Context, contacts []*model.Contact) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, c := range contacts {
		if c == nil || c.ID <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO contacts (`+contactColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Email, c.Message, c.Timestamp.Time, c.Read,
		); err != nil {
			return fmt.Errorf("import contact %d: %w", c.ID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('contacts', 'id'),
		               COALESCE((SELECT MAX(id) FROM contacts), 0) + 1, false)`,
	); err != nil {
		return fmt.Errorf("advance id sequence: %w", err)
	}
	return tx.Commit(ctx)
}

// Close releases the pool.
func (r *PgContactRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.Timestamp.Time, &c.Read); err != nil {
		return nil, err
	}
	return &c, nil
}
