package jsonschema

import (
	gojson "github.com/goccy/go-json"
)

// Draft is the dialect FromSpec emits.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// It only carries the keywords a spec tree can produce.
type Schema struct {
	// Core
	Schema  string             `json:"$schema,omitempty"`
	Ref     string             `json:"$ref,omitempty"`
	Defs    map[string]*Schema `json:"$defs,omitempty"`
	Type    string             `json:"type,omitempty"`
	Format  string             `json:"format,omitempty"`
	Default Raw                `json:"default,omitempty"`
	Const   Raw                `json:"const,omitempty"`
	Enum    []Raw              `json:"enum,omitempty"`

	// String
	MinLength       *int   `json:"minLength,omitempty"`
	MaxLength       *int   `json:"maxLength,omitempty"`
	Pattern         string `json:"pattern,omitempty"`
	ContentEncoding string `json:"contentEncoding,omitempty"`

	// Number
	Minimum Number `json:"minimum,omitempty"`
	Maximum Number `json:"maximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`

	// Array
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	Items       any       `json:"items,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`

	// Composition
	AnyOf []*Schema `json:"anyOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`

	// Predicates lists the names of checks JSON Schema cannot express.
	Predicates []string `json:"x-predicates,omitempty"`
}

// Raw is an already encoded JSON value.
type Raw []byte

func (r Raw) MarshalJSON() ([]byte, error) { return r, nil }

// Number is the canonical text of a JSON number, kept as text so bounds
// wider than float64 survive.
type Number string

func (n Number) MarshalJSON() ([]byte, error) { return []byte(n), nil }

// Marshal renders s as indented JSON.
func Marshal(s *Schema) ([]byte, error) { return gojson.MarshalIndent(s, "", "  ") }
