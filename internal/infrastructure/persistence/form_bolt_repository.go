package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

const bucketForms = "forms"

// BoltFormRepository keeps one JSON document per form in a bbolt bucket
// keyed by form id
type BoltFormRepository struct {
	db *bolt.DB
}

var _ ports.FormRepository = (*BoltFormRepository)(nil)

// NewBoltFormRepository opens (or creates) the database file at path
func NewBoltFormRepository(path string) (*BoltFormRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open form database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketForms))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize form bucket: %w", err)
	}
	return &BoltFormRepository{db: db}, nil
}

// Close releases the database file lock
func (r *BoltFormRepository) Close() error {
	return r.db.Close()
}

// List returns the forms of an owner, newest first
func (r *BoltFormRepository) List(ctx context.Context, ownerID string) ([]models.Form, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Form, 0, len(all))
	for _, f := range all {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListAll returns every stored form in key order
func (r *BoltFormRepository) ListAll(ctx context.Context) ([]models.Form, error) {
	out := make([]models.Form, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketForms))
		return b.ForEach(func(k, v []byte) error {
			form, err := decodeForm(k, v)
			if err != nil {
				return err
			}
			out = append(out, *form)
			return nil
		})
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to list forms", err)
	}
	return out, nil
}

// Get returns one form by id
func (r *BoltFormRepository) Get(ctx context.Context, id string) (*models.Form, error) {
	var form *models.Form
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketForms)).Get([]byte(id))
		if v == nil {
			return nil
		}
		var err error
		form, err = decodeForm([]byte(id), v)
		return err
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to read form", err)
	}
	if form == nil {
		return nil, errors.NewNotFoundError("Form", id)
	}
	return form, nil
}

// Save inserts or replaces a form
func (r *BoltFormRepository) Save(ctx context.Context, form *models.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return errors.NewInternalError("failed to encode form", err)
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketForms)).Put([]byte(form.ID), data)
	})
	if err != nil {
		return errors.NewInternalError("failed to save form", err)
	}
	return nil
}

// Delete removes a form
func (r *BoltFormRepository) Delete(ctx context.Context, id string) error {
	found := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketForms))
		if b.Get([]byte(id)) == nil {
			return nil
		}
		found = true
		return b.Delete([]byte(id))
	})
	if err != nil {
		return errors.NewInternalError("failed to delete form", err)
	}
	if !found {
		return errors.NewNotFoundError("Form", id)
	}
	return nil
}

// decodeForm copies out of v, which bbolt only keeps valid inside the transaction
func decodeForm(key, v []byte) (*models.Form, error) {
	var form models.Form
	if err := json.Unmarshal(v, &form); err != nil {
		return nil, fmt.Errorf("form %s: %w", key, err)
	}
	if form.Fields == nil {
		form.Fields = []models.Field{}
	}
	return &form, nil
}
