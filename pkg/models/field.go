package models

import (
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
)

// FieldType is defined in pkg/constants
type FieldType = constants.FieldType

// Validations holds the per-field validation rules checked in preview
type Validations struct {
	MinLength  *int    `json:"minLength,omitempty"`
	MaxLength  *int    `json:"maxLength,omitempty"`
	Pattern    *string `json:"pattern,omitempty"`
	IsEmail    bool    `json:"isEmail,omitempty"`
	IsPassword bool    `json:"isPassword,omitempty"`
}

// Field is the atomic unit of a form.
// Formula and ParentFields are only populated when IsDerived is true.
type Field struct {
	ID           string       `json:"id"`
	Label        string       `json:"label"`
	Type         FieldType    `json:"type"`
	Required     bool         `json:"required"`
	DefaultValue *string      `json:"defaultValue,omitempty"`
	Options      []string     `json:"options,omitempty"`
	Validations  *Validations `json:"validations,omitempty"`
	IsDerived    bool         `json:"isDerived"`
	Formula      *string      `json:"formula,omitempty"`
	ParentFields []string     `json:"parentFields,omitempty"`
}

// FormulaText returns the stored formula or "" when none is set
func (f *Field) FormulaText() string {
	if f.Formula == nil {
		return ""
	}
	return *f.Formula
}

// Promote marks the field as derived with an empty formula and no parents
func (f *Field) Promote() {
	empty := ""
	f.IsDerived = true
	f.Formula = &empty
	f.ParentFields = []string{}
}

// Demote turns a derived field back into a user-entered one
func (f *Field) Demote() {
	f.IsDerived = false
	f.Formula = nil
	f.ParentFields = nil
}

// HasParent reports whether id is one of the field's declared parents
func (f *Field) HasParent(id string) bool {
	for _, p := range f.ParentFields {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the field
func (f Field) Clone() Field {
	out := f
	if f.DefaultValue != nil {
		v := *f.DefaultValue
		out.DefaultValue = &v
	}
	if f.Formula != nil {
		v := *f.Formula
		out.Formula = &v
	}
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.ParentFields != nil {
		out.ParentFields = append([]string{}, f.ParentFields...)
	}
	if f.Validations != nil {
		out.Validations = f.Validations.Clone()
	}
	return out
}

// Clone returns a deep copy of the rules
func (v *Validations) Clone() *Validations {
	out := *v
	if v.MinLength != nil {
		n := *v.MinLength
		out.MinLength = &n
	}
	if v.MaxLength != nil {
		n := *v.MaxLength
		out.MaxLength = &n
	}
	if v.Pattern != nil {
		p := *v.Pattern
		out.Pattern = &p
	}
	return &out
}

// UniqueIDs returns ids with duplicates and empty entries removed, keeping first occurrence order
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
