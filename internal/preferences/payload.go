package preferences

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var payloadSchema []byte

// Payload is the wire representation accepted from callers: the criteria plus
// the list of must-have field names.
type Payload struct {
	Criteria
	MustHavePreferences []string `json:"must_have_preferences,omitempty" mapstructure:"must_have_preferences"`
}

// ParsePayload validates raw JSON against the embedded schema, builds the
// preferences and applies the must-have list. The returned slice holds the
// must-have names that could not be honored.
func ParsePayload(data []byte) (*Preferences, []string, error) {
	if err := ValidatePayload(data); err != nil {
		return nil, nil, err
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return FromPayload(payload)
}

// FromPayload builds preferences from an already decoded payload.
func FromPayload(payload Payload) (*Preferences, []string, error) {
	prefs, err := New(payload.Criteria)
	if err != nil {
		return nil, nil, err
	}
	failed := prefs.SetMustHavesFromList(payload.MustHavePreferences)
	return prefs, failed, nil
}

// ValidatePayload checks data against the preferences JSON schema.
func ValidatePayload(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(payloadSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(errs, "; "))
	}

	return nil
}
