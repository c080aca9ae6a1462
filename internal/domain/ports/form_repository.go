package ports

import (
	"context"

	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// FormRepository persists form definitions.
// Implementations return *errors.NotFoundError for unknown ids.
type FormRepository interface {
	// List returns the forms of an owner, newest first.
	List(ctx context.Context, ownerID string) ([]models.Form, error)

	// ListAll returns every stored form.
	ListAll(ctx context.Context) ([]models.Form, error)

	// Get returns one form by id.
	Get(ctx context.Context, id string) (*models.Form, error)

	// Save inserts or replaces a form.
	Save(ctx context.Context, form *models.Form) error

	// Delete removes a form.
	Delete(ctx context.Context, id string) error
}
