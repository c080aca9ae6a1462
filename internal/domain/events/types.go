package events

// EventType defines the type of event in the system
type EventType string

const (
	// Form Events
	FormCreated EventType = "form.created"
	FormUpdated EventType = "form.updated"
	FormDeleted EventType = "form.deleted"

	// Field Events
	FieldAdded          EventType = "field.added"
	FieldUpdated        EventType = "field.updated"
	FieldRemoved        EventType = "field.removed"
	FieldsReordered     EventType = "field.reordered"
	DerivedConfigChange EventType = "field.derived_changed"

	// Preview Events
	PreviewOpened  EventType = "preview.opened"
	PreviewExpired EventType = "preview.expired"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}

// FormEvent is the payload of form and field events
type FormEvent struct {
	FormID  string `json:"formId"`
	OwnerID string `json:"ownerId"`
	FieldID string `json:"fieldId,omitempty"`
	// Affected lists dependents whose parent set changed as a side effect
	Affected []string `json:"affected,omitempty"`
}

// PreviewEvent is the payload of preview session events
type PreviewEvent struct {
	SessionID string `json:"sessionId"`
	FormID    string `json:"formId"`
}
