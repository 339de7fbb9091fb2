package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
)

// Arguments are the decoded, defaulted and type-checked parameters of a call.
// String parameters hold a string, integer parameters an int64
type Arguments map[string]any

// String returns a string parameter, or "" when absent
func (a Arguments) String(name string) string {
	value, _ := a[name].(string)
	return value
}

// Int returns an integer parameter, or 0 when absent
func (a Arguments) Int(name string) int64 {
	value, _ := a[name].(int64)
	return value
}

// JSON renders the arguments with sorted keys
func (a Arguments) JSON() string {
	encoded, err := json.Marshal(map[string]any(a))
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// decodeArguments parses a JSON object against the parameter list. Unknown
// keys, missing required values and wrongly typed values are rejected
func decodeArguments(params []Param, raw string) (Arguments, error) {
	values := map[string]any{}

	if trimmed := strings.TrimSpace(raw); trimmed != "" && trimmed != "null" {
		decoder := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
		decoder.UseNumber()
		if err := decoder.Decode(&values); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrValidation, err, "arguments must be a JSON object")
		}
	}

	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.Name] = true
	}

	var unknown []string
	for key := range values {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperrors.New(apperrors.ErrValidation, "unknown parameters: %s", strings.Join(unknown, ", "))
	}

	args := make(Arguments, len(params))
	for _, p := range params {
		value, present := values[p.Name]
		if !present || value == nil {
			if p.Required() {
				return nil, apperrors.New(apperrors.ErrValidation, "missing required parameter %q", p.Name)
			}
			args[p.Name] = p.Default
			continue
		}

		converted, err := convert(p.Type, value)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrValidation, err, "parameter %q", p.Name)
		}
		args[p.Name] = converted
	}

	return args, nil
}

// convert checks a decoded JSON value against a parameter type
func convert(kind ParamType, value any) (any, error) {
	switch kind {
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected a string, got %T", value)
	case TypeInteger:
		return toInt64(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", kind)
	}
}

// toInt64 accepts JSON numbers with an integral value, numeric strings and Go
// integers
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("expected an integer, got %s", v)
		}
		return int64(f), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", v)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}
