// Package validator provides a pluggable validator registry for field validation
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

// Validator names, in the order ValidateField applies them
const (
	Required  = "required"
	MinLength = "minLength"
	MaxLength = "maxLength"
	Pattern   = "pattern"
	Email     = "email"
	Password  = "password"
)

// ValidatorFunc is the signature for validator functions
// Takes a value and optional configuration, returns an error if validation fails
type ValidatorFunc func(value interface{}, config map[string]interface{}) error

// Registry holds registered validators
type Registry struct {
	validators map[string]ValidatorFunc
	mu         sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// GetRegistry returns the singleton validator registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry returns a registry holding the built-in validators
func NewRegistry() *Registry {
	r := &Registry{
		validators: make(map[string]ValidatorFunc),
	}
	r.registerBuiltins()
	return r
}

// Register adds a validator to the registry
func (r *Registry) Register(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Get returns a validator by name
func (r *Registry) Get(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Validate runs a named validator
func (r *Registry) Validate(name string, value interface{}, config map[string]interface{}) error {
	fn, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("validator '%s' not found", name)
	}
	return fn(value, config)
}

// List returns all registered validator names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateField checks a preview value against a field's rules and returns
// the first failure message, or "" when the value is acceptable.
// Derived fields are computed, never entered, so they always pass.
// Optional fields left empty skip the remaining rules.
func (r *Registry) ValidateField(field models.Field, value interface{}) string {
	if field.IsDerived {
		return ""
	}
	if field.Required {
		if err := r.Validate(Required, value, nil); err != nil {
			return err.Error()
		}
	}

	v := field.Validations
	if v == nil || utils.IsEmptyValue(value) {
		return ""
	}

	type check struct {
		name   string
		config map[string]interface{}
	}
	var checks []check
	if v.MinLength != nil {
		checks = append(checks, check{MinLength, map[string]interface{}{"min": *v.MinLength}})
	}
	if v.MaxLength != nil {
		checks = append(checks, check{MaxLength, map[string]interface{}{"max": *v.MaxLength}})
	}
	if v.Pattern != nil && *v.Pattern != "" {
		checks = append(checks, check{Pattern, map[string]interface{}{"pattern": *v.Pattern}})
	}
	if v.IsEmail {
		checks = append(checks, check{Email, nil})
	}
	if v.IsPassword {
		checks = append(checks, check{Password, nil})
	}

	for _, c := range checks {
		if err := r.Validate(c.name, value, c.config); err != nil {
			return err.Error()
		}
	}
	return ""
}

// registerBuiltins registers all built-in validators
func (r *Registry) registerBuiltins() {
	r.Register(Required, func(value interface{}, config map[string]interface{}) error {
		if utils.IsEmptyValue(value) {
			return fmt.Errorf("This field is required")
		}
		return nil
	})

	r.Register(MinLength, func(value interface{}, config map[string]interface{}) error {
		if min, ok := config["min"].(int); ok && length(value) < min {
			return fmt.Errorf("Minimum length is %d", min)
		}
		return nil
	})

	r.Register(MaxLength, func(value interface{}, config map[string]interface{}) error {
		if max, ok := config["max"].(int); ok && length(value) > max {
			return fmt.Errorf("Maximum length is %d", max)
		}
		return nil
	})

	r.Register(Pattern, func(value interface{}, config map[string]interface{}) error {
		pattern, _ := config["pattern"].(string)
		if pattern == "" {
			return nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("Invalid regex pattern")
		}
		str, ok := value.(string)
		if !ok || !re.MatchString(str) {
			return fmt.Errorf("Invalid format")
		}
		return nil
	})

	r.Register(Email, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || !emailPattern.MatchString(str) {
			return fmt.Errorf("Invalid email format")
		}
		return nil
	})

	// At least 8 characters including a digit
	r.Register(Password, func(value interface{}, config map[string]interface{}) error {
		str, ok := value.(string)
		if !ok || utf8.RuneCountInString(str) < 8 || !strings.ContainsFunc(str, unicode.IsDigit) {
			return fmt.Errorf("Password must be at least 8 characters and contain a number")
		}
		return nil
	})
}

// length counts characters of text and elements of lists
func length(value interface{}) int {
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		return utf8.RuneCountInString(v)
	case []string:
		return len(v)
	case []interface{}:
		return len(v)
	default:
		return utf8.RuneCountInString(utils.ToDisplayString(v))
	}
}

// Package-level convenience functions

// Register adds a validator to the default registry
func Register(name string, fn ValidatorFunc) {
	GetRegistry().Register(name, fn)
}

// Validate runs a named validator using the default registry
func Validate(name string, value interface{}, config map[string]interface{}) error {
	return GetRegistry().Validate(name, value, config)
}

// ValidateField checks a value using the default registry
func ValidateField(field models.Field, value interface{}) string {
	return GetRegistry().ValidateField(field, value)
}
