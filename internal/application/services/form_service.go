package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/fieldtypes"
	"github.com/HARIPRASAD-2003/form-builder/pkg/graph"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

// FormInput carries the editable metadata of a form. Nil members are left
// unchanged on update.
type FormInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// FieldInput describes a new field or a patch to an existing one.
// Nil members are left unchanged on update.
type FieldInput struct {
	Label        *string             `json:"label"`
	Type         *string             `json:"type"`
	Required     *bool               `json:"required"`
	DefaultValue *string             `json:"defaultValue"`
	Options      []string            `json:"options"`
	Validations  *models.Validations `json:"validations"`
}

// RemoveFieldResult reports the derived fields that lost a parent when a
// field was removed
type RemoveFieldResult struct {
	Form     *models.Form `json:"form"`
	Affected []string     `json:"affected"`
}

// FormService manages form definitions and their field lists
type FormService struct {
	repo   ports.FormRepository
	events ports.EventPublisher
	now    func() time.Time
	// serializes read-modify-write cycles on stored forms
	mu sync.Mutex
}

// NewFormService creates a FormService. events may be nil.
func NewFormService(repo ports.FormRepository, eventPublisher ports.EventPublisher) *FormService {
	return &FormService{
		repo:   repo,
		events: eventPublisher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListForms returns the saved forms of an owner, newest first
func (s *FormService) ListForms(ctx context.Context, ownerID string) ([]models.FormSummary, error) {
	forms, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]models.FormSummary, len(forms))
	for i := range forms {
		out[i] = forms[i].Summary()
	}
	return out, nil
}

// GetForm returns a form owned by ownerID
func (s *FormService) GetForm(ctx context.Context, ownerID, formID string) (*models.Form, error) {
	form, err := s.repo.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	// other owners' forms are reported as missing
	if form.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("Form", formID)
	}
	return form, nil
}

// CreateForm stores a new empty form
func (s *FormService) CreateForm(ctx context.Context, ownerID string, input FormInput) (*models.Form, error) {
	now := s.now()
	form := &models.Form{
		ID:        utils.GenerateID(),
		Name:      constants.DefaultFormName,
		OwnerID:   ownerID,
		Fields:    []models.Field{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		form.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		form.Description = *input.Description
	}

	if err := s.repo.Save(ctx, form); err != nil {
		return nil, err
	}
	s.publish(ctx, events.FormCreated, events.FormEvent{FormID: form.ID, OwnerID: ownerID})
	return form, nil
}

// UpdateForm changes the name and description of a form. A blank name
// falls back to the default.
func (s *FormService) UpdateForm(ctx context.Context, ownerID, formID string, input FormInput) (*models.Form, error) {
	return s.mutate(ctx, ownerID, formID, events.FormUpdated, func(form *models.Form) (events.FormEvent, error) {
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				name = constants.DefaultFormName
			}
			form.Name = name
		}
		if input.Description != nil {
			form.Description = *input.Description
		}
		return events.FormEvent{}, nil
	})
}

// DeleteForm removes a form
func (s *FormService) DeleteForm(ctx context.Context, ownerID, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetForm(ctx, ownerID, formID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, formID); err != nil {
		return err
	}
	s.publish(ctx, events.FormDeleted, events.FormEvent{FormID: formID, OwnerID: ownerID})
	return nil
}

// AddField appends a field, or inserts it at index when index is not nil.
// An index past the end appends.
func (s *FormService) AddField(ctx context.Context, ownerID, formID string, input FieldInput, index *int) (*models.Field, error) {
	field := models.Field{
		ID:    utils.GenerateID(),
		Label: constants.DefaultFieldLabel,
		Type:  constants.FieldTypeText,
	}
	if err := applyFieldInput(&field, input); err != nil {
		return nil, err
	}
	if input.Options == nil && field.Type.HasOptions() {
		field.Options = append([]string(nil), constants.DefaultFieldOptions...)
	}

	_, err := s.mutate(ctx, ownerID, formID, events.FieldAdded, func(form *models.Form) (events.FormEvent, error) {
		pos := len(form.Fields)
		if index != nil {
			if *index < 0 {
				return events.FormEvent{}, errors.NewValidationError("index", "Index must not be negative")
			}
			if *index < pos {
				pos = *index
			}
		}
		form.Fields = insertField(form.Fields, pos, field)
		return events.FormEvent{FieldID: field.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// DuplicateField inserts a copy of a field right after it. Derived
// configuration is copied as well.
func (s *FormService) DuplicateField(ctx context.Context, ownerID, formID, fieldID string) (*models.Field, error) {
	var copied models.Field
	_, err := s.mutate(ctx, ownerID, formID, events.FieldAdded, func(form *models.Form) (events.FormEvent, error) {
		i := form.FieldIndex(fieldID)
		if i < 0 {
			return events.FormEvent{}, errors.NewNotFoundError("Field", fieldID)
		}
		copied = form.Fields[i].Clone()
		copied.ID = utils.GenerateID()
		if copied.Label == "" {
			copied.Label = constants.DefaultFieldLabel
		}
		copied.Label += constants.CopyLabelSuffix
		form.Fields = insertField(form.Fields, i+1, copied)
		return events.FormEvent{FieldID: copied.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &copied, nil
}

// UpdateField patches the plain attributes of a field. Derived
// configuration is managed by DerivedFieldService.
func (s *FormService) UpdateField(ctx context.Context, ownerID, formID, fieldID string, input FieldInput) (*models.Field, error) {
	var updated models.Field
	_, err := s.mutate(ctx, ownerID, formID, events.FieldUpdated, func(form *models.Form) (events.FormEvent, error) {
		field := form.FindField(fieldID)
		if field == nil {
			return events.FormEvent{}, errors.NewNotFoundError("Field", fieldID)
		}
		if err := applyFieldInput(field, input); err != nil {
			return events.FormEvent{}, err
		}
		if !field.Type.HasOptions() {
			field.Options = nil
		} else if len(field.Options) == 0 {
			field.Options = append([]string(nil), constants.DefaultFieldOptions...)
		}
		updated = field.Clone()
		return events.FormEvent{FieldID: fieldID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveField deletes a field and clears it from the parent lists of every
// derived field that referenced it. Those dependents keep their formula,
// which now evaluates to the error marker until edited, and are returned as
// Affected.
func (s *FormService) RemoveField(ctx context.Context, ownerID, formID, fieldID string) (*RemoveFieldResult, error) {
	var affected []string
	form, err := s.mutate(ctx, ownerID, formID, events.FieldRemoved, func(form *models.Form) (events.FormEvent, error) {
		i := form.FieldIndex(fieldID)
		if i < 0 {
			return events.FormEvent{}, errors.NewNotFoundError("Field", fieldID)
		}
		affected = graph.Dependents(form.Fields, fieldID)
		form.Fields = append(form.Fields[:i:i], form.Fields[i+1:]...)

		for j := range form.Fields {
			f := &form.Fields[j]
			if !f.HasParent(fieldID) {
				continue
			}
			parents := make([]string, 0, len(f.ParentFields)-1)
			for _, p := range f.ParentFields {
				if p != fieldID {
					parents = append(parents, p)
				}
			}
			f.ParentFields = parents
		}
		if len(affected) > 0 {
			log.Printf("⚠️ Removing field %s from form %s left %d derived field(s) needing attention: %v", fieldID, formID, len(affected), affected)
		}
		return events.FormEvent{FieldID: fieldID, Affected: affected}, nil
	})
	if err != nil {
		return nil, err
	}
	if affected == nil {
		affected = []string{}
	}
	return &RemoveFieldResult{Form: form, Affected: affected}, nil
}

// ReorderFields puts the fields in the given id order. The order must be a
// permutation of the current field ids.
func (s *FormService) ReorderFields(ctx context.Context, ownerID, formID string, order []string) (*models.Form, error) {
	return s.mutate(ctx, ownerID, formID, events.FieldsReordered, func(form *models.Form) (events.FormEvent, error) {
		if len(order) != len(form.Fields) {
			return events.FormEvent{}, errors.NewValidationError("order", fmt.Sprintf("Expected %d field ids, got %d", len(form.Fields), len(order)))
		}
		reordered := make([]models.Field, 0, len(order))
		seen := make(map[string]bool, len(order))
		for _, id := range order {
			if seen[id] {
				return events.FormEvent{}, errors.NewValidationError("order", fmt.Sprintf("Field '%s' listed twice", id))
			}
			seen[id] = true
			f := form.FindField(id)
			if f == nil {
				return events.FormEvent{}, errors.NewNotFoundError("Field", id)
			}
			reordered = append(reordered, *f)
		}
		form.Fields = reordered
		return events.FormEvent{}, nil
	})
}

// MoveField moves the field at position from to position to
func (s *FormService) MoveField(ctx context.Context, ownerID, formID string, from, to int) (*models.Form, error) {
	return s.mutate(ctx, ownerID, formID, events.FieldsReordered, func(form *models.Form) (events.FormEvent, error) {
		n := len(form.Fields)
		if from < 0 || from >= n || to < 0 || to >= n {
			return events.FormEvent{}, errors.NewValidationError("index", fmt.Sprintf("Positions must be between 0 and %d", n-1))
		}
		moved := form.Fields[from]
		rest := append(form.Fields[:from:from], form.Fields[from+1:]...)
		form.Fields = insertField(rest, to, moved)
		return events.FormEvent{FieldID: moved.ID}, nil
	})
}

// mutate loads a form, applies fn to a private copy and saves the result.
// Nothing is saved when fn fails.
func (s *FormService) mutate(ctx context.Context, ownerID, formID string, eventType EventType, fn func(form *models.Form) (events.FormEvent, error)) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.GetForm(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}
	form := stored.Clone()

	event, err := fn(form)
	if err != nil {
		return nil, err
	}
	form.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, form); err != nil {
		return nil, err
	}

	event.FormID = form.ID
	event.OwnerID = ownerID
	s.publish(ctx, eventType, event)
	return form, nil
}

func (s *FormService) publish(ctx context.Context, eventType EventType, payload events.FormEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		log.Printf("⚠️ Event %s for form %s failed: %v", eventType, payload.FormID, err)
	}
}

func applyFieldInput(field *models.Field, input FieldInput) error {
	if input.Type != nil {
		if _, ok := fieldtypes.GetPlugin(*input.Type); !ok {
			return errors.NewValidationError("type", fmt.Sprintf("Unknown field type '%s'", *input.Type))
		}
		field.Type = constants.FieldType(*input.Type)
	}
	if input.Label != nil {
		field.Label = strings.TrimSpace(*input.Label)
	}
	if input.Required != nil {
		field.Required = *input.Required
	}
	if input.DefaultValue != nil {
		v := *input.DefaultValue
		field.DefaultValue = &v
	}
	if input.Options != nil {
		field.Options = append([]string(nil), input.Options...)
	}
	if input.Validations != nil {
		v := *input.Validations
		if v.MinLength != nil && *v.MinLength < 0 {
			return errors.NewValidationError("validations.minLength", "Minimum length must not be negative")
		}
		if v.MinLength != nil && v.MaxLength != nil && *v.MaxLength < *v.MinLength {
			return errors.NewValidationError("validations.maxLength", "Maximum length must not be below minimum length")
		}
		field.Validations = &v
	}
	return nil
}

func insertField(fields []models.Field, at int, field models.Field) []models.Field {
	out := make([]models.Field, 0, len(fields)+1)
	out = append(out, fields[:at]...)
	out = append(out, field)
	return append(out, fields[at:]...)
}
