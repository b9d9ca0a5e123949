package extract

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed rules_schema.json
var rulesSchema string

// LoadRuleSet reads a custom rule set from a JSON file and validates it
// against the embedded schema before use. Invalid rule sets are rejected
// before any extraction happens.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RuleSetError{Path: path, Message: "read failed", Cause: err}
	}

	if err := validateRules(string(data)); err != nil {
		return nil, &RuleSetError{Path: path, Message: "schema validation failed", Cause: err}
	}

	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, &RuleSetError{Path: path, Message: "parse failed", Cause: err}
	}
	return &rules, nil
}

func validateRules(jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(rulesSchema)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("invalid rule set:")
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		sb.WriteString(fmt.Sprintf("\n  %s: %s", field, desc.Description()))
	}
	return fmt.Errorf("%s", sb.String())
}
