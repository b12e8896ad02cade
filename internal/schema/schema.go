// Package schema validates tool call arguments against the input schema a tool server declared for the tool.
package schema

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mozilla-ai/mcpconnect/internal/errors"
)

// ValidateArguments checks arguments against a JSON Schema.
// An empty schema accepts anything. Violations are returned as a single error wrapping errors.ErrBadRequest.
func ValidateArguments(inputSchema []byte, arguments map[string]any) error {
	inputSchema = bytes.TrimSpace(inputSchema)
	if len(inputSchema) == 0 || bytes.Equal(inputSchema, []byte("null")) {
		return nil
	}

	if arguments == nil {
		arguments = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(inputSchema),
		gojsonschema.NewGoLoader(arguments),
	)
	if err != nil {
		// The server declared a schema we cannot use, leave validation to the server itself.
		return nil
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, re.String())
	}

	return fmt.Errorf("%w: arguments do not match tool input schema: %s", errors.ErrBadRequest, strings.Join(violations, "; "))
}
