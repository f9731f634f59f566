// Package main generates the JSON schema of the refmine report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Sumatoshi-tech/refmine/pkg/report"
)

// Schema is the subset of JSON Schema draft-07 the generator emits.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

func main() {
	outputDir := flag.String("o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	schema := generate("refmine report", reflect.TypeOf(report.Report{}))

	path := filepath.Join(*outputDir, "report.json")
	if err := write(path, schema); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("wrote", path)
}

func generate(title string, t reflect.Type) *Schema {
	defs := make(map[string]*Schema)
	props, required := properties(t, defs)

	schema := &Schema{
		Schema:     "http://json-schema.org/draft-07/schema#",
		Title:      title,
		Type:       "object",
		Properties: props,
		Required:   required,
	}

	if len(defs) > 0 {
		schema.Definitions = defs
	}

	return schema
}

func properties(t reflect.Type, defs map[string]*Schema) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for i := range t.NumField() {
		field := t.Field(i)

		tag := field.Tag.Get("json")
		if tag == "-" || tag == "" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		props[name] = typeSchema(field.Type, defs)

		if opts != "omitempty" && field.Type.Kind() != reflect.Ptr {
			required = append(required, name)
		}
	}

	return props, required
}

func typeSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Slice:
		return &Schema{Type: "array", Items: typeSchema(t.Elem(), defs)}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: typeSchema(t.Elem(), defs)}
	case reflect.Ptr:
		return typeSchema(t.Elem(), defs)
	case reflect.Struct:
		name := t.Name()
		if _, ok := defs[name]; !ok {
			// Reserve the name first so recursive types terminate.
			defs[name] = &Schema{}
			props, required := properties(t, defs)
			*defs[name] = Schema{Type: "object", Properties: props, Required: required}
		}

		return &Schema{Ref: "#/definitions/" + name}
	default:
		return &Schema{}
	}
}

func write(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
