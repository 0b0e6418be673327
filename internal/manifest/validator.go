package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/package.schema.json
var schemaBytes []byte

var (
	loadSchema = sync.OnceValues(compileSchema)
	printer    = message.NewPrinter(language.English)
)

// Issue is one schema violation found in a package.json.
type Issue struct {
	Path    string // JSON pointer into the document, "" for the top level
	Keyword string // failing schema keyword, e.g. "pattern"
	Message string
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema JSON: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("package.schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	return c.Compile("package.schema.json")
}

// Validate checks raw package.json bytes against the embedded schema and
// returns the violations, none for a valid document. The error is for
// malformed JSON.
func Validate(data []byte) ([]Issue, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}
	return leafIssues(ve, nil), nil
}

// leafIssues appends one issue per leaf of the error tree. The bin
// alternatives and the dependency map references only group their causes.
func leafIssues(ve *jsonschema.ValidationError, issues []Issue) []Issue {
	for _, cause := range ve.Causes {
		issues = leafIssues(cause, issues)
	}
	if len(ve.Causes) > 0 {
		return issues
	}

	issue := Issue{Message: ve.ErrorKind.LocalizedString(printer)}
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		issue.Keyword = kw[len(kw)-1]
	}
	return append(issues, issue)
}
