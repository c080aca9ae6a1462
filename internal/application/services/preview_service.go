package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/fieldtypes"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
	"github.com/HARIPRASAD-2003/form-builder/pkg/validator"
)

type previewSession struct {
	models.PreviewSession
	ownerID string
	fields  []models.Field
	touched map[string]bool
	// last computed snapshot, refreshed on every change
	snapshot *models.PreviewSnapshot
}

// PreviewService runs preview sessions: it holds the values a user entered
// into a form, recomputes derived fields after every change and validates
// entered values.
type PreviewService struct {
	forms     *FormService
	evaluator ports.FormulaEvaluator
	events    ports.EventPublisher
	ttl       time.Duration
	now       func() time.Time

	sessions map[string]*previewSession
	mu       sync.RWMutex
}

// NewPreviewService creates a PreviewService. Sessions idle for longer than
// ttl are dropped by ExpireIdle.
func NewPreviewService(forms *FormService, evaluator ports.FormulaEvaluator, eventPublisher ports.EventPublisher, ttl time.Duration) *PreviewService {
	return &PreviewService{
		forms:     forms,
		evaluator: evaluator,
		events:    eventPublisher,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
		sessions:  make(map[string]*previewSession),
	}
}

// RegisterEventHandlers keeps open sessions in step with form edits
func (s *PreviewService) RegisterEventHandlers(bus ports.EventPublisher) {
	reload := func(ctx context.Context, payload interface{}) error {
		evt, ok := payload.(events.FormEvent)
		if !ok {
			return nil
		}
		s.reloadForm(ctx, evt.FormID)
		return nil
	}
	for _, t := range []EventType{
		events.FormUpdated,
		events.FieldAdded,
		events.FieldUpdated,
		events.FieldRemoved,
		events.FieldsReordered,
		events.DerivedConfigChange,
	} {
		bus.Subscribe(t, reload)
	}

	bus.Subscribe(events.FormDeleted, func(ctx context.Context, payload interface{}) error {
		if evt, ok := payload.(events.FormEvent); ok {
			s.closeForm(evt.FormID)
		}
		return nil
	})
}

// Open starts a preview of a form. Fields with a default value start with
// it; derived fields are computed immediately.
func (s *PreviewService) Open(ctx context.Context, ownerID, formID string) (*models.PreviewSnapshot, error) {
	form, err := s.forms.GetForm(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}

	sess := &previewSession{
		PreviewSession: models.PreviewSession{
			ID:           utils.GenerateID(),
			FormID:       form.ID,
			Values:       seedValues(form.Fields),
			LastActivity: s.now(),
		},
		ownerID: ownerID,
		fields:  form.Fields,
		touched: make(map[string]bool),
	}
	s.recompute(sess)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	snap := copySnapshot(sess.snapshot)
	s.mu.Unlock()

	s.publish(ctx, events.PreviewOpened, events.PreviewEvent{SessionID: sess.ID, FormID: form.ID})
	return snap, nil
}

// Snapshot returns the current state of a session
func (s *PreviewService) Snapshot(ownerID, sessionID string) (*models.PreviewSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionFor(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.LastActivity = s.now()
	return copySnapshot(sess.snapshot), nil
}

// SetValue records a value for an entered field, recomputes every derived
// field and revalidates. Derived fields cannot be set.
func (s *PreviewService) SetValue(ctx context.Context, ownerID, sessionID, fieldID string, value interface{}) (*models.PreviewSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionFor(ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	var field *models.Field
	for i := range sess.fields {
		if sess.fields[i].ID == fieldID {
			field = &sess.fields[i]
			break
		}
	}
	if field == nil {
		return nil, errors.NewNotFoundError("Field", fieldID)
	}
	if field.IsDerived {
		return nil, errors.NewValidationError(fieldID, "Derived fields are computed and cannot be edited")
	}

	normalized, err := fieldtypes.Transform(*field, value)
	if err != nil {
		return nil, errors.NewValidationError(fieldID, err.Error())
	}

	if normalized == nil {
		delete(sess.Values, fieldID)
	} else {
		sess.Values[fieldID] = normalized
	}
	sess.touched[fieldID] = true
	sess.LastActivity = s.now()
	s.recompute(sess)

	return copySnapshot(sess.snapshot), nil
}

// ValidateAll marks every field as touched so the snapshot reports every
// validation failure, as on submit
func (s *PreviewService) ValidateAll(ownerID, sessionID string) (*models.PreviewSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionFor(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	for _, f := range sess.fields {
		sess.touched[f.ID] = true
	}
	sess.LastActivity = s.now()
	s.recompute(sess)
	return copySnapshot(sess.snapshot), nil
}

// Close ends a session
func (s *PreviewService) Close(ownerID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessionFor(ownerID, sessionID); err != nil {
		return err
	}
	delete(s.sessions, sessionID)
	return nil
}

// sessionFor looks up a session of ownerID. Callers hold the lock.
func (s *PreviewService) sessionFor(ownerID, sessionID string) (*previewSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.ownerID != ownerID {
		return nil, errors.NewNotFoundError("Preview session", sessionID)
	}
	return sess, nil
}

// Count returns the number of open sessions
func (s *PreviewService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ExpireIdle drops sessions idle for longer than the TTL and returns how
// many were dropped
func (s *PreviewService) ExpireIdle() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []events.PreviewEvent
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			expired = append(expired, events.PreviewEvent{SessionID: id, FormID: sess.FormID})
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	// the sweeper runs off the request path, so listeners are not awaited
	if s.events != nil {
		for _, evt := range expired {
			s.events.PublishAsync(events.PreviewExpired, evt)
		}
	}
	return len(expired)
}

// RefreshAll recomputes every open session. Formulas using today() change
// value when the date does.
func (s *PreviewService) RefreshAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		s.recompute(sess)
	}
	return len(s.sessions)
}

// reloadForm swaps in the current field list for every session of a form.
// Values of removed fields are dropped.
func (s *PreviewService) reloadForm(ctx context.Context, formID string) {
	s.mu.RLock()
	open := false
	for _, sess := range s.sessions {
		if sess.FormID == formID {
			open = true
			break
		}
	}
	s.mu.RUnlock()
	if !open {
		return
	}

	form, err := s.forms.repo.Get(ctx, formID)
	if err != nil {
		log.Printf("⚠️ Failed to reload form %s for preview: %v", formID, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.FormID != formID {
			continue
		}
		sess.fields = form.Clone().Fields
		kept := make(map[string]interface{}, len(sess.Values))
		for _, f := range sess.fields {
			if v, ok := sess.Values[f.ID]; ok && !f.IsDerived {
				kept[f.ID] = v
			}
		}
		sess.Values = kept
		s.recompute(sess)
	}
}

func (s *PreviewService) closeForm(formID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.FormID == formID {
			delete(s.sessions, id)
		}
	}
}

// recompute rebuilds the snapshot of a session. Callers hold the write lock.
func (s *PreviewService) recompute(sess *previewSession) {
	results := s.evaluator.Recompute(sess.fields, sess.Values)

	snap := &models.PreviewSnapshot{
		SessionID: sess.ID,
		FormID:    sess.FormID,
		Values:    make(map[string]any, len(sess.fields)),
		Display:   make(map[string]string, len(sess.fields)),
		Errors:    make(map[string]string),
	}

	for _, f := range sess.fields {
		if f.IsDerived {
			res := results[f.ID]
			if res.OK() {
				snap.Values[f.ID] = res.JSONValue()
			}
			snap.Display[f.ID] = res.Display()
			continue
		}

		value, ok := sess.Values[f.ID]
		if ok {
			snap.Values[f.ID] = value
		}
		snap.Display[f.ID] = formatValue(f, value)
		if sess.touched[f.ID] {
			if msg := validator.ValidateField(f, value); msg != "" {
				snap.Errors[f.ID] = msg
			}
		}
	}
	sess.snapshot = snap
}

func (s *PreviewService) publish(ctx context.Context, eventType EventType, payload events.PreviewEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		log.Printf("⚠️ Event %s for preview %s failed: %v", eventType, payload.SessionID, err)
	}
}

// seedValues converts default values to the typed values of each field
func seedValues(fields []models.Field) map[string]interface{} {
	values := make(map[string]interface{})
	for _, f := range fields {
		if f.IsDerived || f.DefaultValue == nil || *f.DefaultValue == "" {
			continue
		}
		v, err := fieldtypes.Transform(f, *f.DefaultValue)
		if err != nil {
			log.Printf("⚠️ Ignoring default value of field %s: %v", f.ID, err)
			continue
		}
		if v != nil {
			values[f.ID] = v
		}
	}
	return values
}

func formatValue(f models.Field, value interface{}) string {
	if value == nil {
		return ""
	}
	if plugin, ok := fieldtypes.GetPlugin(string(f.Type)); ok {
		return plugin.Format(value)
	}
	return utils.ToDisplayString(value)
}

func copySnapshot(snap *models.PreviewSnapshot) *models.PreviewSnapshot {
	if snap == nil {
		return nil
	}
	out := &models.PreviewSnapshot{
		SessionID: snap.SessionID,
		FormID:    snap.FormID,
		Values:    make(map[string]any, len(snap.Values)),
		Display:   make(map[string]string, len(snap.Display)),
		Errors:    make(map[string]string, len(snap.Errors)),
	}
	for k, v := range snap.Values {
		out.Values[k] = v
	}
	for k, v := range snap.Display {
		out.Display[k] = v
	}
	for k, v := range snap.Errors {
		out.Errors[k] = v
	}
	return out
}
