package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tacogips/stackzip/internal/app"
)

//go:embed schema/combined.schema.json
var combinedSchemaBytes []byte

// invalidRequestMessage is the message returned for any malformed
// combined payload.
const invalidRequestMessage = "Provide an array of template names in the body"

var (
	combinedSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// CombinedRequest is the body of the combined generation routes.
type CombinedRequest struct {
	TemplateNames []string `json:"templates"`
}

// SchemaIssues lists the individual schema violations of a payload.
type SchemaIssues []string

func (s SchemaIssues) Error() string {
	return strings.Join(s, "; ")
}

func getCombinedSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(combinedSchemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("combined.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		combinedSchema, compileErr = c.Compile("combined.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return combinedSchema, compileErr
}

// DecodeCombinedRequest validates body against the combined request schema
// and decodes it. Every failure is an InvalidRequest AppError whose cause
// carries the individual issues.
func DecodeCombinedRequest(body []byte) (*CombinedRequest, error) {
	schema, err := getCombinedSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, app.NewInvalidRequestError(invalidRequestMessage, SchemaIssues{"body is not valid JSON"})
	}
	if err := schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("unexpected validation error type: %w", err)
		}
		return nil, app.NewInvalidRequestError(invalidRequestMessage, collectIssues(ve))
	}

	var req CombinedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, app.NewInvalidRequestError(invalidRequestMessage, err)
	}
	return &req, nil
}

func collectIssues(ve *jsonschema.ValidationError) SchemaIssues {
	var issues SchemaIssues
	seen := make(map[string]bool)
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		if e.ErrorKind == nil {
			return
		}
		issue := e.ErrorKind.LocalizedString(printer)
		if len(e.InstanceLocation) > 0 {
			issue = "/" + strings.Join(e.InstanceLocation, "/") + ": " + issue
		}
		if !seen[issue] {
			seen[issue] = true
			issues = append(issues, issue)
		}
	}
	walk(ve)
	if len(issues) == 0 {
		issues = SchemaIssues{ve.Error()}
	}
	return issues
}
