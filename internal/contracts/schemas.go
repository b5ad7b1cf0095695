// Package contracts validates incoming request bodies against the embedded
// JSON schemas.
package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"valuation-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const schemaRoot = "requests"

var (
	ErrSchemaNotFound = errors.New("schema not found")
	ErrMalformedJSON  = errors.New("request body is not valid JSON")
	ErrSchemaMismatch = errors.New("request body does not match schema")
)

// ViolationError lists every field that failed validation.
type ViolationError struct {
	Violations []Violation
}

type Violation struct {
	// Field is the JSON pointer of the offending value, "" for the document root.
	Field   string
	Message string
}

func (e *ViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ViolationError) Unwrap() error { return ErrSchemaMismatch }

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// resources first so schemas can $ref each other
	err := fs.WalkDir(schemas.SchemasFS, schemaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		raw, err := fs.ReadFile(schemas.SchemasFS, path)
		if err != nil {
			return err
		}
		return compiler.AddResource(path, bytes.NewReader(raw))
	})
	if err != nil {
		log.Fatalf("error adding schema resources: %v", err)
	}

	err = fs.WalkDir(schemas.SchemasFS, schemaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		key := generateKeyFromPath(path)
		if key == "" {
			log.Printf("WARNING: schema path %s does not follow <name>/v<N>.json. Skipping.", path)
			return nil
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return fmt.Errorf("compile %s: %w", path, err)
		}
		compiledSchemas[key] = schema
		return nil
	})
	if err != nil {
		log.Fatalf("error compiling schemas: %v", err)
	}
}

// generateKeyFromPath turns "requests/property-info/v1.json" into
// "PropertyInfoRequest/1.0.0".
func generateKeyFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, schemaRoot+"/")
	trimmed = strings.TrimSuffix(trimmed, ".json")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "v") {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString("Request")

	version := strings.TrimPrefix(parts[1], "v") + ".0.0"
	return fmt.Sprintf("%s/%s", name.String(), version)
}

// Registered lists the schema keys known to the registry, sorted.
func Registered() []string {
	keys := make([]string, 0, len(compiledSchemas))
	for k := range compiledSchemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateRequest checks body against the named schema. It returns an error
// wrapping ErrMalformedJSON when body is not JSON and a *ViolationError
// (matching ErrSchemaMismatch) when the document breaks the schema.
func ValidateRequest(name, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", name, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, key)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ViolationError{Violations: collectViolations(ve)}
		}
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}

// collectViolations flattens the cause tree down to its leaves.
func collectViolations(ve *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{Field: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
