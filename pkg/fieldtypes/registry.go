package fieldtypes

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

func builtinPlugins() []FieldTypePlugin {
	return []FieldTypePlugin{
		textPlugin{NewBasePlugin(string(constants.FieldTypeText), "Short answer", "Single line of text", "type", false)},
		textPlugin{NewBasePlugin(string(constants.FieldTypeTextArea), "Paragraph", "Multi-line text", "align-left", false)},
		textPlugin{NewBasePlugin(string(constants.FieldTypeEmail), "Email", "Email address", "mail", false)},
		textPlugin{NewBasePlugin(string(constants.FieldTypePassword), "Password", "Masked text input", "lock", false)},
		numberPlugin{NewBasePlugin(string(constants.FieldTypeNumber), "Number", "Numeric value", "hash", false)},
		datePlugin{NewBasePlugin(string(constants.FieldTypeDate), "Date", "Calendar date (YYYY-MM-DD)", "calendar", false)},
		choicePlugin{NewBasePlugin(string(constants.FieldTypeSelect), "Dropdown", "One choice from a list", "chevron-down", true)},
		choicePlugin{NewBasePlugin(string(constants.FieldTypeRadio), "Multiple choice", "One choice shown as radio buttons", "circle-dot", true)},
		checkboxPlugin{NewBasePlugin(string(constants.FieldTypeCheckbox), "Checkboxes", "Any number of choices", "check-square", true)},
	}
}

type textPlugin struct{ BasePlugin }

func (p textPlugin) Transform(value interface{}, field models.Field) (interface{}, error) {
	return utils.ToDisplayString(value), nil
}

type numberPlugin struct{ BasePlugin }

// Transform yields float64, or nil for an empty value
func (p numberPlugin) Transform(value interface{}, field models.Field) (interface{}, error) {
	if utils.IsEmptyValue(value) {
		return nil, nil
	}
	f, ok := utils.ToNumber(value)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("'%s' must be a number", field.Label)
	}
	return f, nil
}

type datePlugin struct{ BasePlugin }

var dateInputLayouts = []string{constants.DateLayout, time.RFC3339Nano}

// Transform yields a yyyy-mm-dd string, or "" for an empty value
func (p datePlugin) Transform(value interface{}, field models.Field) (interface{}, error) {
	if utils.IsEmptyValue(value) {
		return "", nil
	}
	s := strings.TrimSpace(utils.ToDisplayString(value))
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(constants.DateLayout), nil
		}
	}
	return nil, fmt.Errorf("'%s' must be a date (YYYY-MM-DD)", field.Label)
}

type choicePlugin struct{ BasePlugin }

func (p choicePlugin) Transform(value interface{}, field models.Field) (interface{}, error) {
	s := utils.ToDisplayString(value)
	if s == "" || isOption(field, s) {
		return s, nil
	}
	return nil, fmt.Errorf("'%s' is not an option of '%s'", s, field.Label)
}

type checkboxPlugin struct{ BasePlugin }

// Transform yields the list of checked options
func (p checkboxPlugin) Transform(value interface{}, field models.Field) (interface{}, error) {
	var items []string
	switch v := value.(type) {
	case nil:
	case []string:
		items = v
	case []interface{}:
		for _, item := range v {
			items = append(items, utils.ToDisplayString(item))
		}
	case string:
		if v != "" {
			items = []string{v}
		}
	default:
		return nil, fmt.Errorf("'%s' expects a list of options", field.Label)
	}

	out := make([]string, 0, len(items))
	for _, item := range models.UniqueIDs(items) {
		if !isOption(field, item) {
			return nil, fmt.Errorf("'%s' is not an option of '%s'", item, field.Label)
		}
		out = append(out, item)
	}
	return out, nil
}

// isOption reports whether s is allowed; fields without options accept anything
func isOption(field models.Field, s string) bool {
	if len(field.Options) == 0 {
		return true
	}
	for _, o := range field.Options {
		if o == s {
			return true
		}
	}
	return false
}

// FieldTypeWithName describes a field type for API responses
type FieldTypeWithName struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	HasOptions  bool   `json:"hasOptions"`
}

// GetAllFieldTypes returns all registered field types sorted by name
func GetAllFieldTypes() []FieldTypeWithName {
	registry := GetPluginRegistry()
	names := registry.List()
	result := make([]FieldTypeWithName, 0, len(names))
	for _, name := range names {
		p, ok := registry.Get(name)
		if !ok {
			continue
		}
		result = append(result, FieldTypeWithName{
			Name:        p.Name(),
			Label:       p.Label(),
			Description: p.Description(),
			Icon:        p.Icon(),
			HasOptions:  p.HasOptions(),
		})
	}
	return result
}
