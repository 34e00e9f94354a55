package analysis

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the response schema sent to the analyzer. Replies are
// checked against a relaxed copy, see Validate.
func Schema() json.RawMessage {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var shape []byte
		if shape, compileErr = relaxedSchema(schemaJSON); compileErr != nil {
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		compiled, compileErr = compiler.Compile(shape)
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile analysis schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// relaxedSchema strips the constraints the pipeline repairs itself from the
// request schema: required lists, enums, numeric bounds and the integer
// score type. Missing arrays become empty, scores are rounded and clamped
// and unknown severities get a default weight, so only the shape is left
// to check.
func relaxedSchema(doc []byte) ([]byte, error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("failed to parse analysis schema: %w", err)
	}
	relax(root)
	return json.Marshal(root)
}

func relax(node any) {
	switch n := node.(type) {
	case map[string]any:
		delete(n, "required")
		delete(n, "enum")
		delete(n, "minimum")
		delete(n, "maximum")
		if n["type"] == "integer" {
			n["type"] = "number"
		}
		for _, v := range n {
			relax(v)
		}
	case []any:
		for _, v := range n {
			relax(v)
		}
	}
}

// SchemaError reports analyzer output that does not match the schema.
type SchemaError struct {
	Details []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return "analysis does not match schema: " + strings.Join(e.Details, "; ")
}

// Validate checks that a JSON document has the shape of an analysis: an
// object whose known fields carry the right types.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors))
	for field, e := range result.Errors {
		details = append(details, fmt.Sprintf("%v: %v", field, e))
	}
	sort.Strings(details)
	if len(details) == 0 {
		details = append(details, "invalid document")
	}
	return &SchemaError{Details: details}
}
