package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type previewFixture struct {
	forms   *FormService
	derived *DerivedFieldService
	preview *PreviewService
	bus     *EventBus
	form    *models.Form
	ids     []string
}

// newPreviewFixture builds a form with Price, Qty and a derived Total
func newPreviewFixture(t *testing.T) *previewFixture {
	t.Helper()
	forms, bus := newTestFormService(t)
	engine := newTestEngine()
	fx := &previewFixture{
		forms:   forms,
		derived: NewDerivedFieldService(forms, engine),
		preview: NewPreviewService(forms, engine, bus, time.Hour),
		bus:     bus,
	}
	fx.preview.RegisterEventHandlers(bus)

	ctx := context.Background()
	fx.form, fx.ids = addFields(t, forms, "Price", "Qty", "Total")
	_, err := forms.UpdateField(ctx, testOwner, fx.form.ID, fx.ids[1], FieldInput{DefaultValue: strPtr("2")})
	require.NoError(t, err)
	_, err = fx.derived.Promote(ctx, testOwner, fx.form.ID, fx.ids[2])
	require.NoError(t, err)
	_, err = fx.derived.SetConfig(ctx, testOwner, fx.form.ID, fx.ids[2], DerivedInput{
		ParentFields: []string{fx.ids[0], fx.ids[1]},
		Formula:      "{Price} * {Qty}",
	})
	require.NoError(t, err)
	return fx
}

func TestPreviewService_OpenSeedsDefaults(t *testing.T) {
	fx := newPreviewFixture(t)

	snap, err := fx.preview.Open(context.Background(), testOwner, fx.form.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.Values[fx.ids[1]])
	// Price is absent, so the product of "" and 2 fails
	assert.Equal(t, constants.ErrorMarker, snap.Display[fx.ids[2]])
	assert.Empty(t, snap.Errors)
	assert.Equal(t, 1, fx.preview.Count())
}

func TestPreviewService_SetValueRecomputes(t *testing.T) {
	fx := newPreviewFixture(t)
	ctx := context.Background()
	snap, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
	require.NoError(t, err)

	snap, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, fx.ids[0], "12.5")
	require.NoError(t, err)
	assert.Equal(t, 25.0, snap.Values[fx.ids[2]])
	assert.Equal(t, "25", snap.Display[fx.ids[2]])

	_, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, fx.ids[2], 1)
	assert.True(t, errors.IsValidation(err))

	_, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, fx.ids[0], "abc")
	assert.True(t, errors.IsValidation(err))

	_, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, "ghost", 1)
	assert.True(t, errors.IsNotFound(err))
}

func TestPreviewService_NonFiniteResults(t *testing.T) {
	tests := []struct {
		name  string
		price interface{}
		qty   interface{}
		want  string
	}{
		{name: "division by zero", price: 1, qty: 0, want: "Infinity"},
		{name: "negative over zero", price: -1, qty: 0, want: "-Infinity"},
		{name: "zero over zero", price: 0, qty: 0, want: "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newPreviewFixture(t)
			ctx := context.Background()
			_, err := fx.derived.SetConfig(ctx, testOwner, fx.form.ID, fx.ids[2], DerivedInput{
				ParentFields: []string{fx.ids[0], fx.ids[1]},
				Formula:      "{Price} / {Qty}",
			})
			require.NoError(t, err)

			snap, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
			require.NoError(t, err)
			_, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, fx.ids[0], tt.price)
			require.NoError(t, err)
			snap, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, fx.ids[1], tt.qty)
			require.NoError(t, err)

			assert.Equal(t, tt.want, snap.Display[fx.ids[2]])
			assert.Equal(t, tt.want, snap.Values[fx.ids[2]])

			raw, err := json.Marshal(snap)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"`+tt.want+`"`)
		})
	}
}

func TestPreviewService_Validation(t *testing.T) {
	fx := newPreviewFixture(t)
	ctx := context.Background()

	email, err := fx.forms.AddField(ctx, testOwner, fx.form.ID, FieldInput{
		Label:       strPtr("Email"),
		Type:        strPtr("email"),
		Required:    boolPtr(true),
		Validations: &models.Validations{IsEmail: true},
	}, nil)
	require.NoError(t, err)

	snap, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
	require.NoError(t, err)
	assert.NotContains(t, snap.Errors, email.ID)

	snap, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, email.ID, "not-an-email")
	require.NoError(t, err)
	assert.Equal(t, "Invalid email format", snap.Errors[email.ID])

	snap, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, email.ID, "a@b.co")
	require.NoError(t, err)
	assert.NotContains(t, snap.Errors, email.ID)

	snap, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, email.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "This field is required", snap.Errors[email.ID])
}

func TestPreviewService_ValidateAll(t *testing.T) {
	fx := newPreviewFixture(t)
	ctx := context.Background()
	_, err := fx.forms.UpdateField(ctx, testOwner, fx.form.ID, fx.ids[0], FieldInput{Required: boolPtr(true)})
	require.NoError(t, err)

	snap, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Errors)

	snap, err = fx.preview.ValidateAll(testOwner, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "This field is required", snap.Errors[fx.ids[0]])
	// derived fields are never validated
	assert.NotContains(t, snap.Errors, fx.ids[2])
}

func TestPreviewService_FollowsFormEdits(t *testing.T) {
	fx := newPreviewFixture(t)
	ctx := context.Background()
	snap, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
	require.NoError(t, err)
	_, err = fx.preview.SetValue(ctx, testOwner, snap.SessionID, fx.ids[0], 3)
	require.NoError(t, err)

	_, err = fx.derived.SetConfig(ctx, testOwner, fx.form.ID, fx.ids[2], DerivedInput{
		ParentFields: []string{fx.ids[0], fx.ids[1]},
		Formula:      "{Price} + {Qty}",
	})
	require.NoError(t, err)

	snap, err = fx.preview.Snapshot(testOwner, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, snap.Values[fx.ids[2]])

	require.NoError(t, fx.forms.DeleteForm(ctx, testOwner, fx.form.ID))
	_, err = fx.preview.Snapshot(testOwner, snap.SessionID)
	assert.True(t, errors.IsNotFound(err))
}

func TestPreviewService_SessionsAreOwned(t *testing.T) {
	fx := newPreviewFixture(t)
	snap, err := fx.preview.Open(context.Background(), testOwner, fx.form.ID)
	require.NoError(t, err)

	_, err = fx.preview.Snapshot("intruder", snap.SessionID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(fx.preview.Close("intruder", snap.SessionID)))

	require.NoError(t, fx.preview.Close(testOwner, snap.SessionID))
	assert.Equal(t, 0, fx.preview.Count())
}

func TestPreviewService_ExpireIdle(t *testing.T) {
	fx := newPreviewFixture(t)
	ctx := context.Background()

	clock := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	fx.preview.now = func() time.Time { return clock }

	expired := make(chan events.PreviewEvent, 2)
	fx.bus.Subscribe(events.PreviewExpired, func(ctx context.Context, payload interface{}) error {
		expired <- payload.(events.PreviewEvent)
		return nil
	})

	old, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
	require.NoError(t, err)

	clock = clock.Add(50 * time.Minute)
	fresh, err := fx.preview.Open(ctx, testOwner, fx.form.ID)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, 1, fx.preview.ExpireIdle())
	select {
	case evt := <-expired:
		assert.Equal(t, old.SessionID, evt.SessionID)
		assert.Equal(t, fx.form.ID, evt.FormID)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry event was not delivered")
	}

	_, err = fx.preview.Snapshot(testOwner, fresh.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, 1, fx.preview.RefreshAll())
}
