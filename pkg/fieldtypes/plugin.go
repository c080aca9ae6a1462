package fieldtypes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

// FieldTypePlugin defines the interface for field types
// Plugins can be registered to extend the builder with new field types
type FieldTypePlugin interface {
	// Name returns the unique identifier for this field type
	Name() string

	// Label returns the human-readable label for this field type
	Label() string

	// Description returns a description of what this field type is for
	Description() string

	// Icon returns the icon name for UI display
	Icon() string

	// HasOptions reports whether the field offers a fixed list of choices
	HasOptions() bool

	// Transform normalizes a submitted value before it is stored
	Transform(value interface{}, field models.Field) (interface{}, error)

	// Format formats a value for display
	Format(value interface{}) string
}

// BasePlugin provides default implementations for optional plugin methods
type BasePlugin struct {
	name        string
	label       string
	description string
	icon        string
	hasOptions  bool
}

// NewBasePlugin creates a new base plugin with required fields
func NewBasePlugin(name, label, description, icon string, hasOptions bool) BasePlugin {
	return BasePlugin{
		name:        name,
		label:       label,
		description: description,
		icon:        icon,
		hasOptions:  hasOptions,
	}
}

func (p BasePlugin) Name() string        { return p.name }
func (p BasePlugin) Label() string       { return p.label }
func (p BasePlugin) Description() string { return p.description }
func (p BasePlugin) Icon() string        { return p.icon }
func (p BasePlugin) HasOptions() bool    { return p.hasOptions }

func (p BasePlugin) Transform(value interface{}, field models.Field) (interface{}, error) {
	return value, nil // Default: no transformation
}

func (p BasePlugin) Format(value interface{}) string {
	return utils.ToDisplayString(value)
}

// PluginRegistry manages registered field type plugins
type PluginRegistry struct {
	plugins map[string]FieldTypePlugin
	mu      sync.RWMutex
}

var (
	pluginRegistry     *PluginRegistry
	pluginRegistryOnce sync.Once
)

// GetPluginRegistry returns the singleton plugin registry, holding the
// built-in field types
func GetPluginRegistry() *PluginRegistry {
	pluginRegistryOnce.Do(func() {
		pluginRegistry = NewPluginRegistry()
	})
	return pluginRegistry
}

// NewPluginRegistry returns a registry with the built-in field types
func NewPluginRegistry() *PluginRegistry {
	r := &PluginRegistry{
		plugins: make(map[string]FieldTypePlugin),
	}
	for _, p := range builtinPlugins() {
		r.plugins[p.Name()] = p
	}
	return r
}

// Register adds a plugin to the registry
func (r *PluginRegistry) Register(plugin FieldTypePlugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := plugin.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("field type plugin '%s' is already registered", name)
	}

	r.plugins[name] = plugin
	return nil
}

// Get retrieves a plugin by name
func (r *PluginRegistry) Get(name string) (FieldTypePlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugin, ok := r.plugins[name]
	return plugin, ok
}

// List returns all registered plugin names, sorted
func (r *PluginRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a plugin from the registry
func (r *PluginRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		delete(r.plugins, name)
		return true
	}
	return false
}

// Transform normalizes a value with the plugin for the field's type.
// Unknown types pass the value through unchanged.
func (r *PluginRegistry) Transform(field models.Field, value interface{}) (interface{}, error) {
	plugin, ok := r.Get(string(field.Type))
	if !ok {
		return value, nil
	}
	return plugin.Transform(value, field)
}

// Package-level convenience functions

// RegisterPlugin registers a field type plugin
func RegisterPlugin(plugin FieldTypePlugin) error {
	return GetPluginRegistry().Register(plugin)
}

// GetPlugin retrieves a field type plugin by name
func GetPlugin(name string) (FieldTypePlugin, bool) {
	return GetPluginRegistry().Get(name)
}

// ListPlugins returns all registered plugin names
func ListPlugins() []string {
	return GetPluginRegistry().List()
}

// Transform normalizes a value using the default registry
func Transform(field models.Field, value interface{}) (interface{}, error) {
	return GetPluginRegistry().Transform(field, value)
}
