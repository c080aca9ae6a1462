package services

import (
	"context"
	"testing"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
	"github.com/HARIPRASAD-2003/form-builder/internal/infrastructure/persistence"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "owner-1"

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func newTestFormService(t *testing.T) (*FormService, *EventBus) {
	t.Helper()
	repo, err := persistence.NewFileFormRepository("")
	require.NoError(t, err)
	bus := NewEventBus()
	return NewFormService(repo, bus), bus
}

// addFields creates a form with one field per label and returns the form
// and the field ids in order
func addFields(t *testing.T, svc *FormService, labels ...string) (*models.Form, []string) {
	t.Helper()
	ctx := context.Background()
	form, err := svc.CreateForm(ctx, testOwner, FormInput{Name: strPtr("Test")})
	require.NoError(t, err)

	ids := make([]string, len(labels))
	for i, label := range labels {
		f, err := svc.AddField(ctx, testOwner, form.ID, FieldInput{Label: strPtr(label), Type: strPtr("number")}, nil)
		require.NoError(t, err)
		ids[i] = f.ID
	}
	form, err = svc.GetForm(ctx, testOwner, form.ID)
	require.NoError(t, err)
	return form, ids
}

func TestFormService_CreateDefaults(t *testing.T) {
	svc, bus := newTestFormService(t)
	ctx := context.Background()

	var created []events.FormEvent
	bus.Subscribe(events.FormCreated, func(ctx context.Context, payload interface{}) error {
		created = append(created, payload.(events.FormEvent))
		return nil
	})

	form, err := svc.CreateForm(ctx, testOwner, FormInput{Name: strPtr("   ")})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultFormName, form.Name)
	assert.NotEmpty(t, form.ID)
	require.Len(t, created, 1)
	assert.Equal(t, form.ID, created[0].FormID)

	list, err := svc.ListForms(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].FieldCount)
}

func TestFormService_OwnerIsolation(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()

	form, err := svc.CreateForm(ctx, testOwner, FormInput{})
	require.NoError(t, err)

	_, err = svc.GetForm(ctx, "someone-else", form.ID)
	assert.True(t, errors.IsNotFound(err))

	err = svc.DeleteForm(ctx, "someone-else", form.ID)
	assert.True(t, errors.IsNotFound(err))

	list, err := svc.ListForms(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFormService_UpdateForm(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()

	form, _ := svc.CreateForm(ctx, testOwner, FormInput{Name: strPtr("Before")})
	updated, err := svc.UpdateForm(ctx, testOwner, form.ID, FormInput{Description: strPtr("about")})
	require.NoError(t, err)
	assert.Equal(t, "Before", updated.Name)
	assert.Equal(t, "about", updated.Description)
}

func TestFormService_AddField(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()
	form, ids := addFields(t, svc, "A", "B")

	t.Run("defaults", func(t *testing.T) {
		f, err := svc.AddField(ctx, testOwner, form.ID, FieldInput{}, nil)
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultFieldLabel, f.Label)
		assert.Equal(t, constants.FieldTypeText, f.Type)
		assert.Nil(t, f.Options)
	})

	t.Run("choice fields get default options", func(t *testing.T) {
		f, err := svc.AddField(ctx, testOwner, form.ID, FieldInput{Type: strPtr("select")}, nil)
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultFieldOptions, f.Options)
	})

	t.Run("insert at index", func(t *testing.T) {
		f, err := svc.AddField(ctx, testOwner, form.ID, FieldInput{Label: strPtr("Between")}, intPtr(1))
		require.NoError(t, err)
		got, _ := svc.GetForm(ctx, testOwner, form.ID)
		assert.Equal(t, ids[0], got.Fields[0].ID)
		assert.Equal(t, f.ID, got.Fields[1].ID)
		assert.Equal(t, ids[1], got.Fields[2].ID)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.AddField(ctx, testOwner, form.ID, FieldInput{Type: strPtr("rating")}, nil)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := svc.AddField(ctx, testOwner, form.ID, FieldInput{}, intPtr(-1))
		assert.True(t, errors.IsValidation(err))
	})
}

func TestFormService_UpdateField(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()
	form, ids := addFields(t, svc, "A")

	f, err := svc.UpdateField(ctx, testOwner, form.ID, ids[0], FieldInput{
		Label:       strPtr("Renamed"),
		Type:        strPtr("radio"),
		Required:    boolPtr(true),
		Validations: &models.Validations{MinLength: intPtr(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", f.Label)
	assert.True(t, f.Required)
	assert.Equal(t, constants.DefaultFieldOptions, f.Options)

	f, err = svc.UpdateField(ctx, testOwner, form.ID, ids[0], FieldInput{Type: strPtr("text")})
	require.NoError(t, err)
	assert.Nil(t, f.Options)

	_, err = svc.UpdateField(ctx, testOwner, form.ID, ids[0], FieldInput{
		Validations: &models.Validations{MinLength: intPtr(5), MaxLength: intPtr(2)},
	})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.UpdateField(ctx, testOwner, form.ID, "missing", FieldInput{})
	assert.True(t, errors.IsNotFound(err))
}

func TestFormService_DuplicateField(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()
	form, ids := addFields(t, svc, "A", "B")

	copied, err := svc.DuplicateField(ctx, testOwner, form.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "A (copy)", copied.Label)
	assert.NotEqual(t, ids[0], copied.ID)

	got, _ := svc.GetForm(ctx, testOwner, form.ID)
	require.Len(t, got.Fields, 3)
	assert.Equal(t, copied.ID, got.Fields[1].ID)
}

func TestFormService_RemoveFieldCascades(t *testing.T) {
	svc, bus := newTestFormService(t)
	derived := NewDerivedFieldService(svc, newTestEngine())
	ctx := context.Background()
	form, ids := addFields(t, svc, "A", "B", "Total")

	_, err := derived.Promote(ctx, testOwner, form.ID, ids[2])
	require.NoError(t, err)
	_, err = derived.SetConfig(ctx, testOwner, form.ID, ids[2], DerivedInput{
		ParentFields: []string{ids[0], ids[1]},
		Formula:      "{A} + {B}",
	})
	require.NoError(t, err)

	var removed events.FormEvent
	bus.Subscribe(events.FieldRemoved, func(ctx context.Context, payload interface{}) error {
		removed = payload.(events.FormEvent)
		return nil
	})

	res, err := svc.RemoveField(ctx, testOwner, form.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2]}, res.Affected)
	assert.Equal(t, []string{ids[2]}, removed.Affected)

	total := res.Form.FindField(ids[2])
	require.NotNil(t, total)
	assert.Equal(t, []string{ids[1]}, total.ParentFields)
	// the formula keeps the dangling placeholder until edited
	assert.Contains(t, total.FormulaText(), "{"+ids[0]+"}")

	res, err = svc.RemoveField(ctx, testOwner, form.ID, ids[2])
	require.NoError(t, err)
	assert.Empty(t, res.Affected)
}

func TestFormService_Reorder(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()
	form, ids := addFields(t, svc, "A", "B", "C")

	got, err := svc.ReorderFields(ctx, testOwner, form.ID, []string{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	assert.Equal(t, ids[2], got.Fields[0].ID)

	_, err = svc.ReorderFields(ctx, testOwner, form.ID, []string{ids[0], ids[0], ids[1]})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.ReorderFields(ctx, testOwner, form.ID, []string{ids[0]})
	assert.True(t, errors.IsValidation(err))

	got, err = svc.MoveField(ctx, testOwner, form.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1], ids[2]}, []string{got.Fields[0].ID, got.Fields[1].ID, got.Fields[2].ID})

	_, err = svc.MoveField(ctx, testOwner, form.ID, 0, 3)
	assert.True(t, errors.IsValidation(err))
}

func TestFormService_DeleteForm(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()
	form, _ := svc.CreateForm(ctx, testOwner, FormInput{})

	require.NoError(t, svc.DeleteForm(ctx, testOwner, form.ID))
	_, err := svc.GetForm(ctx, testOwner, form.ID)
	assert.True(t, errors.IsNotFound(err))
}
