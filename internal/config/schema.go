// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package config

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id published in generated schema files.
const SchemaID = "https://authward.dev/schemas/config.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	schemaErr      error
)

// GenerateSchema reflects the Settings struct into a JSON Schema document.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		// Only fields tagged jsonschema:"required" are mandatory; config
		// files may be partial and merge over defaults.
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Settings{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "AuthWard Configuration"
	schema.Description = "Schema for authward.yaml configuration files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code(CodeConfigInvalid).
			With("operation", "marshal schema").
			Wrap(err)
	}
	return data, nil
}

// ValidateYAML validates raw YAML config data against the generated schema.
func ValidateYAML(data []byte) error {
	if len(data) == 0 {
		return oops.Code(CodeConfigInvalid).Errorf("config data is empty")
	}

	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return oops.Code(CodeConfigInvalid).
			With("operation", "parse yaml").
			Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(parsed)); err != nil {
		return oops.Code(CodeConfigInvalid).
			With("operation", "schema validation").
			Wrap(err)
	}
	return nil
}

// compiledSchema compiles the generated schema once. The schema is derived
// from a compile-time struct, so caching for process lifetime is safe.
func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := GenerateSchema()
		if err != nil {
			schemaErr = err
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			schemaErr = oops.Code(CodeConfigInvalid).
				With("operation", "parse generated schema").
				Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			schemaErr = oops.Code(CodeConfigInvalid).
				With("operation", "add schema resource").
				Wrap(err)
			return
		}
		schemaCompiled, schemaErr = c.Compile("config.schema.json")
	})
	return schemaCompiled, schemaErr
}

// toJSONTypes normalizes YAML-decoded values into the types the schema
// validator expects.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONTypes(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return val
	}
}
