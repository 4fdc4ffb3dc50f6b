// Package schema derives differentiated input shapes from a single canonical
// entity definition. A definition lists each field once, together with its
// mutability class and validation rules; the create and update shapes are
// computed from that table instead of being written (or generated) twice.
package schema

// Mutability classifies who may write a field.
type Mutability int

const (
	// ServerOnly fields are assigned by the server and excluded from
	// every input shape, regardless of what a client submits.
	ServerOnly Mutability = iota

	// RequiredOnCreate fields must be present when creating an entity
	// and become optional on update.
	RequiredOnCreate

	// AlwaysOptional fields are optional in both input shapes.
	AlwaysOptional
)

// Type is the semantic type of a field. The template currently only needs
// string-valued fields; the type still travels with the field so derived
// shapes and documentation stay accurate if more are added.
type Type string

const (
	TypeString Type = "string"
)

// Rules holds the validation rules attached to a field. Zero values mean
// "no rule". Rules propagate unchanged into both derived shapes.
type Rules struct {
	// MinLen and MaxLen bound the length in runes, not bytes.
	MinLen int
	MaxLen int

	// Email requires the value to parse as an RFC 5322 address.
	Email bool

	// Alphanumeric restricts the value to letters and digits.
	Alphanumeric bool
}

// Field is one row of the canonical definition table.
type Field struct {
	Name       string
	Type       Type
	Doc        string
	Mutability Mutability
	Rules      Rules

	// Secret marks fields that must never be echoed back in responses
	// or documentation examples (e.g. passwords).
	Secret bool
}

// Definition is the canonical source of truth for an entity.
type Definition struct {
	Name   string
	Fields []Field
}

// InputField is a field of a derived input shape.
type InputField struct {
	Name     string
	Type     Type
	Doc      string
	Required bool
	Rules    Rules
	Secret   bool
}

// Shape is a derived input shape: the fields a client may submit for one
// operation, each with its requiredness and validation rules.
type Shape struct {
	Name   string
	Fields []InputField
}

// CreateInput derives the creation shape: every non-server-only field, with
// required-on-create fields mandatory and always-optional fields optional.
func (d Definition) CreateInput() Shape {
	return d.derive("Create"+d.Name, func(f Field) bool {
		return f.Mutability == RequiredOnCreate
	})
}

// UpdateInput derives the partial-update shape: the same fields as
// CreateInput, all optional. Omitting a field means "leave unchanged".
func (d Definition) UpdateInput() Shape {
	return d.derive("Update"+d.Name, func(Field) bool {
		return false
	})
}

func (d Definition) derive(name string, required func(Field) bool) Shape {
	s := Shape{Name: name}
	for _, f := range d.Fields {
		if f.Mutability == ServerOnly {
			continue
		}
		s.Fields = append(s.Fields, InputField{
			Name:     f.Name,
			Type:     f.Type,
			Doc:      f.Doc,
			Required: required(f),
			Rules:    f.Rules,
			Secret:   f.Secret,
		})
	}
	return s
}

// Field returns the shape field with the given name.
func (s Shape) Field(name string) (InputField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return InputField{}, false
}
