package resource

import (
	"fmt"
	"sort"
)

// FieldSchema describes one field of a resource schema. Type is one of
// string, integer, float, boolean, datetime, list or dict; empty means
// untyped (any value accepted).
type FieldSchema struct {
	Type      string   `mapstructure:"type"`
	Required  bool     `mapstructure:"required"`
	Unique    bool     `mapstructure:"unique"`
	MaxLength int      `mapstructure:"maxlength"`
	MinLength int      `mapstructure:"minlength"`
	Allowed   []string `mapstructure:"allowed"`
	Default   any      `mapstructure:"default"`
}

// Definition is the static per-resource configuration. It is read-only
// during request processing.
type Definition struct {
	Schema map[string]FieldSchema `mapstructure:"schema"`

	// AuthField, when set, names the field stamped with the requester's
	// identity on every successful write.
	AuthField string `mapstructure:"auth_field"`

	// Hateoas defaults to enabled when left unset.
	Hateoas *bool `mapstructure:"hateoas"`

	// ExtraResponseFields are echoed into success response items when
	// present on the validated document.
	ExtraResponseFields []string `mapstructure:"extra_response_fields"`
}

// HateoasEnabled reports whether link augmentation is on for this resource.
func (d *Definition) HateoasEnabled() bool {
	return d.Hateoas == nil || *d.Hateoas
}

// DateFields returns the sorted names of all datetime-typed fields.
func (d *Definition) DateFields() []string {
	var out []string
	for name, fs := range d.Schema {
		if fs.Type == TypeDatetime {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultFields returns the sorted names of all fields carrying a declared
// default value.
func (d *Definition) DefaultFields() []string {
	var out []string
	for name, fs := range d.Schema {
		if fs.Default != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Field type names accepted in schemas.
const (
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
	TypeList     = "list"
	TypeDict     = "dict"
)

func validType(t string) bool {
	switch t {
	case "", TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDatetime, TypeList, TypeDict:
		return true
	}
	return false
}

// Validate checks the definition for configuration mistakes. Called once at
// load time, never per request.
func (d *Definition) Validate() error {
	for name, fs := range d.Schema {
		if !validType(fs.Type) {
			return fmt.Errorf("field %q: unknown type %q", name, fs.Type)
		}
	}
	if d.AuthField != "" {
		if _, ok := d.Schema[d.AuthField]; !ok {
			return fmt.Errorf("auth_field %q is not in the schema", d.AuthField)
		}
	}
	return nil
}

// Registry maps resource names to their definitions.
type Registry map[string]*Definition

// Get looks up a resource definition by name.
func (r Registry) Get(name string) (*Definition, bool) {
	d, ok := r[name]
	return d, ok
}

// Names returns the sorted resource names, used for route registration.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
