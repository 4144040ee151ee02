package transport

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mkarren/toolgate/internal/models"
)

func TestFromJSONSchema(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string", Description: "search query"},
			"limit": {Type: "integer"},
			"deep":  {Type: "object"},
		},
		Required: []string{"query"},
	}

	got := FromJSONSchema(schema)
	if len(got.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(got.Fields))
	}

	// Fields come back sorted by name.
	wantOrder := []string{"deep", "limit", "query"}
	for i, name := range wantOrder {
		if got.Fields[i].Name != name {
			t.Errorf("Fields[%d].Name = %q, want %q", i, got.Fields[i].Name, name)
		}
	}

	query, ok := got.Field("query")
	if !ok {
		t.Fatal("query field missing")
	}
	if query.Kind != models.KindString || !query.Required || query.Description != "search query" {
		t.Errorf("query field = %+v", query)
	}

	limit, _ := got.Field("limit")
	if limit.Kind != models.KindInteger || limit.Required {
		t.Errorf("limit field = %+v", limit)
	}

	deep, _ := got.Field("deep")
	if deep.Kind != models.KindObject {
		t.Errorf("deep field = %+v", deep)
	}
}

func TestFromJSONSchema_Empty(t *testing.T) {
	if got := FromJSONSchema(nil); len(got.Fields) != 0 {
		t.Errorf("nil schema should yield no fields, got %v", got.Fields)
	}
	if got := FromJSONSchema(&jsonschema.Schema{Type: "object"}); len(got.Fields) != 0 {
		t.Errorf("empty schema should yield no fields, got %v", got.Fields)
	}
}

func TestFromToolSchema_DecodedJSONValue(t *testing.T) {
	// The SDK may deliver the schema as a plain decoded JSON value.
	raw := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string"},
		},
		"required": []any{"url"},
	}

	got := FromToolSchema(raw)
	if len(got.Fields) != 1 {
		t.Fatalf("got %d fields, want 1", len(got.Fields))
	}
	if got.Fields[0].Name != "url" || got.Fields[0].Kind != models.KindString || !got.Fields[0].Required {
		t.Errorf("field = %+v", got.Fields[0])
	}
}

func TestFromToolSchema_Nil(t *testing.T) {
	if got := FromToolSchema(nil); len(got.Fields) != 0 {
		t.Errorf("nil schema should yield no fields, got %v", got.Fields)
	}
}

func TestFromJSONSchema_UnknownTypeIsAny(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"anything": {},
		},
	}
	got := FromJSONSchema(schema)
	if got.Fields[0].Kind != models.KindAny {
		t.Errorf("Kind = %q, want any", got.Fields[0].Kind)
	}
}
