// Package reasoning wraps the external LLM behind a small structured-output
// interface: callers hand over prompts plus a JSON schema and get back a
// validated, typed result. Nothing else in the application talks to the model
// directly.
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request carries the prompt material and the schema the model output must
// satisfy.
type Request struct {
	AgentName    string
	SystemPrompt string
	UserPrompt   string
	Schema       *jsonschema.Schema
}

// Engine produces a structured object from a prompt. Implementations must
// validate the raw model output against req.Schema before unmarshalling it
// into out; invalid output is an error, never a partially filled result.
type Engine interface {
	Execute(ctx context.Context, req Request, out any) error
}

// MustCompileSchema compiles an embedded schema document, panicking on
// malformed schemas. Schemas are package constants, so a failure here is a
// programming error caught at startup.
func MustCompileSchema(name, raw string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name, raw)
}

// decodeValidated checks raw JSON against the schema and unmarshals it into out.
func decodeValidated(raw []byte, schema *jsonschema.Schema, out any) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if schema != nil {
		if err := schema.Validate(v); err != nil {
			return fmt.Errorf("model output failed schema validation: %w", err)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("could not decode model output: %w", err)
	}
	return nil
}
