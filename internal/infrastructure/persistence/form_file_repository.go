package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// FileFormRepository stores forms as a JSON array in a single file, the
// same shape the browser builder keeps under its "forms" key.
// An empty path keeps forms in memory only.
type FileFormRepository struct {
	forms    []models.Form
	mu       sync.RWMutex
	filePath string
}

var _ ports.FormRepository = (*FileFormRepository)(nil)

// NewFileFormRepository opens (or starts) the store at filePath
func NewFileFormRepository(filePath string) (*FileFormRepository, error) {
	r := &FileFormRepository{filePath: filePath}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileFormRepository) load() error {
	if r.filePath == "" {
		return nil
	}

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read form store: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var forms []models.Form
	if err := json.Unmarshal(data, &forms); err != nil {
		return fmt.Errorf("failed to decode form store %s: %w", r.filePath, err)
	}
	r.forms = forms
	return nil
}

// persist writes the store atomically. Callers hold the write lock.
func (r *FileFormRepository) persist() error {
	if r.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(r.forms, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(r.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create form store directory: %w", err)
		}
	}
	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write form store: %w", err)
	}
	return os.Rename(tmp, r.filePath)
}

func (r *FileFormRepository) indexOf(id string) int {
	for i := range r.forms {
		if r.forms[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns the forms of an owner, newest first
func (r *FileFormRepository) List(ctx context.Context, ownerID string) ([]models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Form, 0)
	for i := range r.forms {
		if r.forms[i].OwnerID == ownerID {
			out = append(out, *r.forms[i].Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListAll returns every stored form
func (r *FileFormRepository) ListAll(ctx context.Context) ([]models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Form, len(r.forms))
	for i := range r.forms {
		out[i] = *r.forms[i].Clone()
	}
	return out, nil
}

// Get returns one form by id
func (r *FileFormRepository) Get(ctx context.Context, id string) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.forms[i].Clone(), nil
	}
	return nil, errors.NewNotFoundError("Form", id)
}

// Save inserts or replaces a form
func (r *FileFormRepository) Save(ctx context.Context, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := form.Clone()
	previous := append([]models.Form(nil), r.forms...)
	if i := r.indexOf(form.ID); i >= 0 {
		r.forms[i] = *stored
	} else {
		r.forms = append(r.forms, *stored)
	}

	if err := r.persist(); err != nil {
		r.forms = previous
		return errors.NewInternalError("failed to save form", err)
	}
	return nil
}

// Delete removes a form
func (r *FileFormRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return errors.NewNotFoundError("Form", id)
	}

	previous := append([]models.Form(nil), r.forms...)
	r.forms = append(r.forms[:i:i], r.forms[i+1:]...)

	if err := r.persist(); err != nil {
		r.forms = previous
		return errors.NewInternalError("failed to delete form", err)
	}
	return nil
}

func sortNewestFirst(forms []models.Form) {
	sort.SliceStable(forms, func(i, j int) bool {
		return forms[i].CreatedAt.After(forms[j].CreatedAt)
	})
}
