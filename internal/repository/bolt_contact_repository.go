package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/studio/backend/internal/model"
	bolt "go.etcd.io/bbolt"
)

var contactsBucket = []byte("contacts")

// BoltContactRepository stores contacts in a bbolt database, one key per
// record. Keys are big-endian ids, so cursor order is insertion order.
type BoltContactRepository struct {
	db *bolt.DB
}

// NewBoltContactRepository opens (or creates) the database at path and makes
// sure the contacts bucket exists.
func NewBoltContactRepository(path string) (*BoltContactRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(contactsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltContactRepository{db: db}, nil
}

var (
	_ ContactRepository = (*BoltContactRepository)(nil)
	_ Importer          = (*BoltContactRepository)(nil)
)

// Create takes the next value of the bucket sequence as the id.
func (r *BoltContactRepository) Create(ctx context.Context, c *model.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := *c
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		stored.ID = int(seq)
		return putContact(b, &stored)
	})
	if err != nil {
		return err
	}
	c.ID = stored.ID
	return nil
}

func (r *BoltContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	contacts := []*model.Contact{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(contactsBucket).ForEach(func(k, v []byte) error {
			var c model.Contact
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("decode contact %d: %w", binary.BigEndian.Uint64(k), err)
			}
			contacts = append(contacts, &c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *BoltContactRepository) MarkRead(ctx context.Context, id int) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrNotFound
	}
	var c model.Contact
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		v := b.Get(idKey(id))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &c); err != nil {
			return fmt.Errorf("decode contact %d: %w", id, err)
		}
		if c.Read {
			return nil
		}
		c.Read = true
		return putContact(b, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Import writes contacts under their existing ids and advances the bucket
// sequence past the largest one.
func (r *BoltContactRepository) Import(ctx context.Context, contacts []*model.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(contactsBucket)
		var maxID uint64
		for _, c := range contacts {
			if c == nil || c.ID <= 0 {
				continue
			}
			if err := putContact(b, c); err != nil {
				return err
			}
			if uint64(c.ID) > maxID {
				maxID = uint64(c.ID)
			}
		}
		if maxID > b.Sequence() {
			return b.SetSequence(maxID)
		}
		return nil
	})
}

func (r *BoltContactRepository) Close() error {
	return r.db.Close()
}

func putContact(b *bolt.Bucket, c *model.Contact) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode contact %d: %w", c.ID, err)
	}
	return b.Put(idKey(c.ID), data)
}

func idKey(id int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}
