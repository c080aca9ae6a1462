package services

import (
	"context"
	"testing"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/formula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *formula.Engine {
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	return formula.NewEngine(formula.WithClock(func() time.Time { return fixed }))
}

func TestDerivedFieldService_PromoteDemote(t *testing.T) {
	forms, _ := newTestFormService(t)
	svc := NewDerivedFieldService(forms, newTestEngine())
	ctx := context.Background()
	form, ids := addFields(t, forms, "A")

	cfg, err := svc.Promote(ctx, testOwner, form.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Formula)
	assert.Empty(t, cfg.ParentFields)

	got, _ := forms.GetForm(ctx, testOwner, form.ID)
	assert.True(t, got.Fields[0].IsDerived)
	require.NotNil(t, got.Fields[0].Formula)

	field, err := svc.Demote(ctx, testOwner, form.ID, ids[0])
	require.NoError(t, err)
	assert.False(t, field.IsDerived)
	assert.Nil(t, field.Formula)
	assert.Nil(t, field.ParentFields)

	_, err = svc.GetConfig(ctx, testOwner, form.ID, ids[0])
	assert.True(t, errors.IsValidation(err))
}

func TestDerivedFieldService_SetConfigTranslatesLabels(t *testing.T) {
	forms, _ := newTestFormService(t)
	svc := NewDerivedFieldService(forms, newTestEngine())
	ctx := context.Background()
	form, ids := addFields(t, forms, "Price", "Qty", "Total")

	_, err := svc.Promote(ctx, testOwner, form.ID, ids[2])
	require.NoError(t, err)

	cfg, err := svc.SetConfig(ctx, testOwner, form.ID, ids[2], DerivedInput{
		ParentFields: []string{ids[0], ids[1], ids[0]},
		Formula:      "{Price} * {Qty}",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1]}, cfg.ParentFields)
	assert.Equal(t, "{"+ids[0]+"} * {"+ids[1]+"}", cfg.Formula)
	assert.Equal(t, "{Price} * {Qty}", cfg.EditableFormula)

	// Renaming a parent changes only the editable form
	_, err = forms.UpdateField(ctx, testOwner, form.ID, ids[0], FieldInput{Label: strPtr("Unit price")})
	require.NoError(t, err)

	cfg, err = svc.GetConfig(ctx, testOwner, form.ID, ids[2])
	require.NoError(t, err)
	assert.Equal(t, "{Unit price} * {Qty}", cfg.EditableFormula)
	assert.Equal(t, "{"+ids[0]+"} * {"+ids[1]+"}", cfg.Formula)
}

func TestDerivedFieldService_RejectsCycle(t *testing.T) {
	forms, _ := newTestFormService(t)
	svc := NewDerivedFieldService(forms, newTestEngine())
	ctx := context.Background()
	form, ids := addFields(t, forms, "A", "B")

	for _, id := range ids {
		_, err := svc.Promote(ctx, testOwner, form.ID, id)
		require.NoError(t, err)
	}
	_, err := svc.SetConfig(ctx, testOwner, form.ID, ids[1], DerivedInput{ParentFields: []string{ids[0]}, Formula: "{A} + 1"})
	require.NoError(t, err)

	before, _ := forms.GetForm(ctx, testOwner, form.ID)

	_, err = svc.SetConfig(ctx, testOwner, form.ID, ids[0], DerivedInput{ParentFields: []string{ids[1]}, Formula: "{B} + 1"})
	require.Error(t, err)
	assert.True(t, errors.IsCycle(err))
	assert.Equal(t, 409, errors.GetHTTPStatus(err))

	after, _ := forms.GetForm(ctx, testOwner, form.ID)
	assert.Equal(t, before.Fields, after.Fields)
}

func TestDerivedFieldService_SetConfigErrors(t *testing.T) {
	forms, _ := newTestFormService(t)
	svc := NewDerivedFieldService(forms, newTestEngine())
	ctx := context.Background()
	form, ids := addFields(t, forms, "A", "B")
	_, err := svc.Promote(ctx, testOwner, form.ID, ids[1])
	require.NoError(t, err)

	tests := []struct {
		name    string
		fieldID string
		input   DerivedInput
		check   func(error) bool
	}{
		{"self reference", ids[1], DerivedInput{ParentFields: []string{ids[1]}, Formula: "1"}, errors.IsValidation},
		{"unknown parent", ids[1], DerivedInput{ParentFields: []string{"ghost"}, Formula: "1"}, errors.IsValidation},
		{"syntax error", ids[1], DerivedInput{ParentFields: []string{ids[0]}, Formula: "{A} +"}, errors.IsValidation},
		{"label not among parents", ids[1], DerivedInput{ParentFields: []string{}, Formula: "{A} * 2"}, errors.IsValidation},
		{"sandbox escape", ids[1], DerivedInput{ParentFields: []string{ids[0]}, Formula: "{A}.foo"}, errors.IsValidation},
		{"not derived", ids[0], DerivedInput{Formula: "1"}, errors.IsValidation},
		{"missing field", "ghost", DerivedInput{Formula: "1"}, errors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetConfig(ctx, testOwner, form.ID, tt.fieldID, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
		})
	}

	// An empty formula is accepted and evaluates to the error marker later
	cfg, err := svc.SetConfig(ctx, testOwner, form.ID, ids[1], DerivedInput{ParentFields: []string{ids[0]}})
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Formula)
}
