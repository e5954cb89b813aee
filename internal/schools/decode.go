package schools

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var (
	ErrUnknownSource        = errors.New("unknown school source")
	ErrInvalidDivisionGroup = errors.New("invalid division group")
)

// Decode converts raw column maps into School records. Numeric columns that
// arrive as strings are converted; empty strings are treated as missing.
func Decode(records []map[string]any) ([]*School, error) {
	var out []*School

	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       emptyStringToNil,
		WeaklyTypedInput: true,
		Result:           &out,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(records); err != nil {
		return nil, fmt.Errorf("decode schools: %w", err)
	}

	if out == nil {
		out = []*School{}
	}
	return out, nil
}

func emptyStringToNil(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Ptr {
		return data, nil
	}
	if s, ok := data.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return data, nil
}
