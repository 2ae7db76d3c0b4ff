package orders

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/migue1angel/event-manager-gateway/errors"
)

// JSON Schemas for the inbound bodies. Unknown fields are rejected so
// malformed client payloads fail here instead of inside a backend.
const createOrderSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["userId", "items"],
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"items": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["ticketId", "quantity"],
				"properties": {
					"ticketId": {"type": "string", "minLength": 1},
					"quantity": {"type": "integer", "minimum": 1},
					"price": {"type": "number", "minimum": 0}
				}
			}
		}
	}
}`

const updateOrderSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["status"],
	"properties": {
		"id": {"type": "string"},
		"status": {
			"type": "string",
			"enum": ["PENDING", "PAID", "CANCELLED", "DELIVERED"]
		}
	}
}`

var (
	createOrderSchema = mustCompileSchema(createOrderSchemaJSON)
	updateOrderSchema = mustCompileSchema(updateOrderSchemaJSON)
)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("orders: invalid embedded schema: %v", err))
	}
	return schema
}

// ValidationError lists every schema violation found in an inbound body.
// Its message is safe to surface to clients directly.
type ValidationError struct {
	Violations []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// Unwrap ties the violations to the shared invalid-data sentinel
func (e *ValidationError) Unwrap() error {
	return errors.ErrInvalidData
}

// validateAgainst runs raw through the schema, collecting every violation
// into a single invalid-classified error.
func validateAgainst(schema *gojsonschema.Schema, raw []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// raw is not even JSON
		return errors.WrapInvalid(errors.ErrParsingFailed, "Orders", "validate", "parse body")
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}
		return errors.WrapInvalid(&ValidationError{Violations: descriptions},
			"Orders", "validate", "schema check")
	}

	return nil
}
