package models

import "time"

// Form is a saved form definition. Fields are kept in display order.
type Form struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FieldIndex returns the position of the field with the given id, or -1
func (f *Form) FieldIndex(id string) int {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return i
		}
	}
	return -1
}

// FindField returns a pointer into Fields for the given id, or nil
func (f *Form) FindField(id string) *Field {
	if i := f.FieldIndex(id); i >= 0 {
		return &f.Fields[i]
	}
	return nil
}

// LabelOf returns the current label for a field id
func (f *Form) LabelOf(id string) (string, bool) {
	field := f.FindField(id)
	if field == nil {
		return "", false
	}
	return field.Label, true
}

// Clone returns a deep copy of the form so callers can mutate it freely
func (f *Form) Clone() *Form {
	out := *f
	out.Fields = make([]Field, len(f.Fields))
	for i := range f.Fields {
		out.Fields[i] = f.Fields[i].Clone()
	}
	return &out
}

// FormSummary is the listing view of a saved form
type FormSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FieldCount  int       `json:"fieldCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary returns the listing view of the form
func (f *Form) Summary() FormSummary {
	return FormSummary{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		FieldCount:  len(f.Fields),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
