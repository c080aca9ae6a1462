package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }
func strPtr(s string) *string { return &s }

func TestField_CloneIsDeep(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Field)
	}{
		{name: "min length", mutate: func(f *Field) { *f.Validations.MinLength = 99 }},
		{name: "max length", mutate: func(f *Field) { *f.Validations.MaxLength = 99 }},
		{name: "pattern", mutate: func(f *Field) { *f.Validations.Pattern = "changed" }},
		{name: "email flag", mutate: func(f *Field) { f.Validations.IsEmail = true }},
		{name: "formula", mutate: func(f *Field) { *f.Formula = "changed" }},
		{name: "default value", mutate: func(f *Field) { *f.DefaultValue = "changed" }},
		{name: "options", mutate: func(f *Field) { f.Options[0] = "changed" }},
		{name: "parents", mutate: func(f *Field) { f.ParentFields[0] = "changed" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := Field{
				ID:           "f1",
				Label:        "Name",
				DefaultValue: strPtr("ada"),
				Formula:      strPtr("{p}"),
				Options:      []string{"a", "b"},
				ParentFields: []string{"p"},
				Validations: &Validations{
					MinLength: intPtr(2),
					MaxLength: intPtr(10),
					Pattern:   strPtr("^[a-z]+$"),
				},
			}
			clone := original.Clone()
			tt.mutate(&clone)

			assert.Equal(t, 2, *original.Validations.MinLength)
			assert.Equal(t, 10, *original.Validations.MaxLength)
			assert.Equal(t, "^[a-z]+$", *original.Validations.Pattern)
			assert.False(t, original.Validations.IsEmail)
			assert.Equal(t, "{p}", *original.Formula)
			assert.Equal(t, "ada", *original.DefaultValue)
			assert.Equal(t, []string{"a", "b"}, original.Options)
			assert.Equal(t, []string{"p"}, original.ParentFields)
		})
	}
}

func TestForm_CloneCopiesValidations(t *testing.T) {
	form := &Form{ID: "form1", Fields: []Field{{
		ID:          "f1",
		Validations: &Validations{MinLength: intPtr(3)},
	}}}

	clone := form.Clone()
	require.Len(t, clone.Fields, 1)
	*clone.Fields[0].Validations.MinLength = 7

	assert.Equal(t, 3, *form.Fields[0].Validations.MinLength)
	assert.NotSame(t, form.Fields[0].Validations, clone.Fields[0].Validations)
}
