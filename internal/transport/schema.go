package transport

import (
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mkarren/toolgate/internal/models"
)

// FromToolSchema normalizes a tool input schema as delivered by the SDK
// (either a *jsonschema.Schema or a decoded JSON value) and flattens it.
func FromToolSchema(v any) models.ParameterSchema {
	switch s := v.(type) {
	case nil:
		return models.ParameterSchema{}
	case *jsonschema.Schema:
		return FromJSONSchema(s)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return models.ParameterSchema{}
		}
		var schema jsonschema.Schema
		if err := json.Unmarshal(data, &schema); err != nil {
			return models.ParameterSchema{}
		}
		return FromJSONSchema(&schema)
	}
}

// FromJSONSchema flattens a tool's JSON input schema into the explicit
// tagged parameter shape used throughout the catalog. Only the top-level
// properties are kept; nested object structure collapses to KindObject.
// Fields are sorted by name so repeated builds produce identical descriptors.
func FromJSONSchema(schema *jsonschema.Schema) models.ParameterSchema {
	if schema == nil || len(schema.Properties) == 0 {
		return models.ParameterSchema{}
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]models.ParamField, 0, len(names))
	for _, name := range names {
		prop := schema.Properties[name]
		field := models.ParamField{
			Name:     name,
			Kind:     models.KindAny,
			Required: required[name],
		}
		if prop != nil {
			field.Kind = kindOf(prop.Type)
			field.Description = prop.Description
		}
		fields = append(fields, field)
	}

	return models.ParameterSchema{Fields: fields}
}

func kindOf(schemaType string) models.ParamKind {
	switch schemaType {
	case "string":
		return models.KindString
	case "number":
		return models.KindNumber
	case "integer":
		return models.KindInteger
	case "boolean":
		return models.KindBoolean
	case "array":
		return models.KindArray
	case "object":
		return models.KindObject
	default:
		return models.KindAny
	}
}
