package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Schema defines the structure for data extraction.
type Schema struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`

	validate *validator.Validate
}

// New creates a schema from a field list.
func New(name string, fields ...Field) Schema {
	return Schema{
		Name:     name,
		Fields:   fields,
		validate: validator.New(),
	}
}

// Listings builds the container schema for listing extraction: a single
// required "listings" array whose items carry the given fields. Item
// fields are optional strings, so a model that omits one never breaks
// validation; absent values are backfilled later.
func Listings(itemFields []Field) Schema {
	items := Field{
		Type:       TypeObject,
		Properties: itemFields,
	}
	s := New("listings_container", Field{
		Name:     "listings",
		Type:     TypeArray,
		Required: true,
		Items:    &items,
	})
	s.Description = "One listing per entity mentioned in the content."
	return s
}

// FromFile loads a schema from a JSON or YAML file.
func FromFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var s Schema

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return Schema{}, fmt.Errorf("failed to parse JSON schema: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Schema{}, fmt.Errorf("failed to parse YAML schema: %w", err)
		}
	default:
		return Schema{}, fmt.Errorf("unsupported schema file format: %s", ext)
	}

	s.validate = validator.New()
	return s, nil
}

// FieldNames returns the names of the item fields when the schema has a
// listings array, or the top-level field names otherwise.
func (s Schema) FieldNames() []string {
	fields := s.Fields
	for _, f := range s.Fields {
		if f.Name == "listings" && f.Type == TypeArray && f.Items != nil {
			fields = f.Items.Properties
			break
		}
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

// Validate checks a decoded JSON document against the schema fields.
func (s Schema) Validate(data map[string]any) []ValidationError {
	var errors []ValidationError

	for _, field := range s.Fields {
		val, exists := data[field.Name]
		if field.Required && !exists {
			errors = append(errors, ValidationError{
				Field:   field.Name,
				Message: "required field is missing",
			})
			continue
		}
		if !exists {
			continue
		}

		errors = append(errors, s.validateFieldType(field, field.Name, val)...)
	}

	return errors
}

// validateFieldType checks a value against the expected field type and any
// validator tags.
func (s Schema) validateFieldType(field Field, path string, val any) []ValidationError {
	if val == nil {
		if field.Required {
			return []ValidationError{{Field: path, Message: "value is null but field is required"}}
		}
		return nil
	}

	var errors []ValidationError

	switch field.Type {
	case TypeString:
		str, ok := val.(string)
		if !ok {
			return []ValidationError{{Field: path, Message: fmt.Sprintf("expected string, got %T", val), Value: val}}
		}
		errors = append(errors, s.runValidators(field, path, str)...)
	case TypeInteger, TypeNumber:
		switch val.(type) {
		case int, int64, float64:
			// JSON numbers decode as float64
		default:
			errors = append(errors, ValidationError{Field: path, Message: fmt.Sprintf("expected number, got %T", val), Value: val})
		}
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			errors = append(errors, ValidationError{Field: path, Message: fmt.Sprintf("expected boolean, got %T", val), Value: val})
		}
	case TypeArray:
		arr, ok := val.([]any)
		if !ok {
			return []ValidationError{{Field: path, Message: fmt.Sprintf("expected array, got %T", val), Value: val}}
		}
		if field.Items != nil {
			for i, item := range arr {
				errors = append(errors, s.validateFieldType(*field.Items, fmt.Sprintf("%s[%d]", path, i), item)...)
			}
		}
	case TypeObject:
		obj, ok := val.(map[string]any)
		if !ok {
			return []ValidationError{{Field: path, Message: fmt.Sprintf("expected object, got %T", val), Value: val}}
		}
		for _, prop := range field.Properties {
			pv, exists := obj[prop.Name]
			if !exists {
				if prop.Required {
					errors = append(errors, ValidationError{Field: path + "." + prop.Name, Message: "required field is missing"})
				}
				continue
			}
			errors = append(errors, s.validateFieldType(prop, path+"."+prop.Name, pv)...)
		}
	}

	return errors
}

// runValidators applies validator/v10 tags declared on a field.
func (s Schema) runValidators(field Field, path, val string) []ValidationError {
	if len(field.Validators) == 0 || s.validate == nil {
		return nil
	}

	var errors []ValidationError
	for _, tag := range field.Validators {
		if err := s.validate.Var(val, tag); err != nil {
			errors = append(errors, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("failed validation '%s'", tag),
				Value:   val,
			})
		}
	}
	return errors
}
