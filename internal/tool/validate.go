package tool

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// ValidationError reports the first argument that violates a tool schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// Validate checks decoded JSON arguments against the schema.
// Required keys are checked first in declared order, then present
// properties in sorted key order. Unknown keys are ignored.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	for _, key := range s.Required {
		v, ok := args[key]
		if !ok || v == nil {
			return &ValidationError{Field: key, Reason: "required"}
		}
	}

	keys := make([]string, 0, len(s.Properties))
	for key := range s.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		if err := s.Properties[key].check(key, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) check(field string, v any) error {
	switch s.Type {
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected string, got %s", jsonKind(v))}
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("must be one of %v", s.Enum)}
		}
	case TypeInteger:
		n, ok := toFloat(v)
		if !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected integer, got %s", jsonKind(v))}
		}
		if n != math.Trunc(n) {
			return &ValidationError{Field: field, Reason: "expected integer, got fractional number"}
		}
	case TypeNumber:
		if _, ok := toFloat(v); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected number, got %s", jsonKind(v))}
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected boolean, got %s", jsonKind(v))}
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected array, got %s", jsonKind(v))}
		}
		if s.Items != nil {
			for i, item := range items {
				if err := s.Items.check(fmt.Sprintf("%s[%d]", field, i), item); err != nil {
					return err
				}
			}
		}
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected object, got %s", jsonKind(v))}
		}
		if err := s.Validate(obj); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				return &ValidationError{Field: field + "." + ve.Field, Reason: ve.Reason}
			}
			return err
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
