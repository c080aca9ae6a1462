package constants

// FieldType represents the type of a form field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
)

// GetAllFieldTypes returns all valid field types as a slice of strings
func GetAllFieldTypes() []string {
	return []string{
		string(FieldTypeText),
		string(FieldTypeNumber),
		string(FieldTypeTextArea),
		string(FieldTypeSelect),
		string(FieldTypeRadio),
		string(FieldTypeCheckbox),
		string(FieldTypeDate),
		string(FieldTypeEmail),
		string(FieldTypePassword),
	}
}

// IsValidFieldType reports whether t is one of the supported field types
func IsValidFieldType(t string) bool {
	for _, ft := range GetAllFieldTypes() {
		if ft == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether the field type takes a list of options
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio || t == FieldTypeCheckbox
}

// FormStoreKind selects the form persistence adapter
type FormStoreKind string

const (
	FormStoreFile  FormStoreKind = "file"
	FormStoreBolt  FormStoreKind = "bolt"
	FormStoreMySQL FormStoreKind = "mysql"
)

// TranslationDirection selects which way a formula is translated
type TranslationDirection string

const (
	TranslateToEditable TranslationDirection = "editable"
	TranslateToStorage  TranslationDirection = "storage"
)
