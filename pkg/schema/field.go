// Package schema provides runtime-assembled data schemas for LLM extraction.
package schema

// FieldType represents the type of a schema field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field represents a single field in the schema.
type Field struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type        FieldType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *Field    `json:"items,omitempty" yaml:"items,omitempty"`           // For array types
	Properties  []Field   `json:"properties,omitempty" yaml:"properties,omitempty"` // For object types
	Validators  []string  `json:"validators,omitempty" yaml:"validators,omitempty"` // validator/v10 tags
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// String returns an optional string field. Optional-with-default is the
// shape used for every extracted listing field so model omission never
// fails validation.
func String(name, description string) Field {
	return Field{
		Name:        name,
		Type:        TypeString,
		Description: description,
		Default:     "",
	}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
