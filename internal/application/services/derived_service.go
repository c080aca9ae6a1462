package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/formula"
	"github.com/HARIPRASAD-2003/form-builder/pkg/graph"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// DerivedInput is a parent set plus a formula written against parent labels
type DerivedInput struct {
	ParentFields []string `json:"parentFields"`
	Formula      string   `json:"formula"`
}

// DerivedConfig is the derived configuration of a field as shown to editors
type DerivedConfig struct {
	FieldID         string   `json:"fieldId"`
	ParentFields    []string `json:"parentFields"`
	Formula         string   `json:"formula"`
	EditableFormula string   `json:"editableFormula"`
}

// DerivedFieldService promotes fields to derived fields and commits their
// parent sets and formulas. Every commit is checked for cycles first.
type DerivedFieldService struct {
	forms     *FormService
	evaluator ports.FormulaEvaluator
}

// NewDerivedFieldService creates a DerivedFieldService
func NewDerivedFieldService(forms *FormService, evaluator ports.FormulaEvaluator) *DerivedFieldService {
	return &DerivedFieldService{forms: forms, evaluator: evaluator}
}

// Promote marks a field as derived with no parents and an empty formula.
// Promoting a derived field keeps its configuration.
func (s *DerivedFieldService) Promote(ctx context.Context, ownerID, formID, fieldID string) (*DerivedConfig, error) {
	var cfg *DerivedConfig
	_, err := s.forms.mutate(ctx, ownerID, formID, events.DerivedConfigChange, func(form *models.Form) (events.FormEvent, error) {
		field := form.FindField(fieldID)
		if field == nil {
			return events.FormEvent{}, errors.NewNotFoundError("Field", fieldID)
		}
		if !field.IsDerived {
			field.Promote()
		}
		cfg = configOf(form, field)
		return events.FormEvent{FieldID: fieldID}, nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Demote turns a derived field back into a user-entered field, dropping its
// formula and parents
func (s *DerivedFieldService) Demote(ctx context.Context, ownerID, formID, fieldID string) (*models.Field, error) {
	var out models.Field
	_, err := s.forms.mutate(ctx, ownerID, formID, events.DerivedConfigChange, func(form *models.Form) (events.FormEvent, error) {
		field := form.FindField(fieldID)
		if field == nil {
			return events.FormEvent{}, errors.NewNotFoundError("Field", fieldID)
		}
		field.Demote()
		out = field.Clone()
		return events.FormEvent{FieldID: fieldID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConfig returns the derived configuration of a field with its formula
// rendered against current labels
func (s *DerivedFieldService) GetConfig(ctx context.Context, ownerID, formID, fieldID string) (*DerivedConfig, error) {
	form, err := s.forms.GetForm(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}
	field := form.FindField(fieldID)
	if field == nil {
		return nil, errors.NewNotFoundError("Field", fieldID)
	}
	if !field.IsDerived {
		return nil, errors.NewValidationError("isDerived", "Field is not derived")
	}
	return configOf(form, field), nil
}

// SetConfig commits a parent set and a label-form formula to a derived
// field. The change is rejected, leaving the form untouched, when a parent
// is unknown or the field itself, when the parent set would close a cycle,
// or when the formula does not compile.
func (s *DerivedFieldService) SetConfig(ctx context.Context, ownerID, formID, fieldID string, input DerivedInput) (*DerivedConfig, error) {
	var cfg *DerivedConfig
	_, err := s.forms.mutate(ctx, ownerID, formID, events.DerivedConfigChange, func(form *models.Form) (events.FormEvent, error) {
		field := form.FindField(fieldID)
		if field == nil {
			return events.FormEvent{}, errors.NewNotFoundError("Field", fieldID)
		}
		if !field.IsDerived {
			return events.FormEvent{}, errors.NewValidationError("isDerived", "Field is not derived")
		}

		parents := models.UniqueIDs(input.ParentFields)
		for _, id := range parents {
			if id == fieldID {
				return events.FormEvent{}, errors.NewValidationError("parentFields", "A field cannot depend on itself")
			}
			if form.FindField(id) == nil {
				return events.FormEvent{}, errors.NewValidationError("parentFields", fmt.Sprintf("Unknown parent field '%s'", id))
			}
		}

		if path := graph.CandidateCycle(form.Fields, fieldID, parents); path != nil {
			return events.FormEvent{}, errors.NewCycleError(fieldID, path)
		}

		if err := formula.CheckLabels(parents, form.LabelOf); err != nil {
			log.Printf("⚠️ Derived field %s in form %s: %v", fieldID, formID, err)
		}

		stored := formula.ToStorage(input.Formula, parents, form.LabelOf)
		if strings.TrimSpace(stored) != "" {
			if err := s.evaluator.Validate(stored, parents); err != nil {
				return events.FormEvent{}, errors.NewValidationError("formula", fmt.Sprintf("Invalid formula: %v", err))
			}
		}

		field.ParentFields = parents
		field.Formula = &stored
		cfg = configOf(form, field)
		return events.FormEvent{FieldID: fieldID}, nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func configOf(form *models.Form, field *models.Field) *DerivedConfig {
	parents := append([]string{}, field.ParentFields...)
	stored := field.FormulaText()
	return &DerivedConfig{
		FieldID:         field.ID,
		ParentFields:    parents,
		Formula:         stored,
		EditableFormula: formula.ToEditable(stored, parents, form.LabelOf),
	}
}
