package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"compliance-coursegen/internal/domain"
)

// check validates a generic JSON value found at path.
type check func(path string, v any) domain.SchemaErrors

type field struct {
	key      string
	required bool
	check    check
}

func required(key string, c check) field { return field{key: key, required: true, check: c} }
func optional(key string, c check) field { return field{key: key, check: c} }

func fail(path, expected string) domain.SchemaErrors {
	return domain.SchemaErrors{{Path: path, Expected: expected}}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func object(fields ...field) check {
	return func(path string, v any) domain.SchemaErrors {
		obj, ok := v.(map[string]any)
		if !ok {
			return fail(rootName(path), "object")
		}
		var errs domain.SchemaErrors
		for _, f := range fields {
			value, present := obj[f.key]
			if !present || value == nil {
				if f.required {
					errs = append(errs, fail(join(path, f.key), "required field")...)
				}
				continue
			}
			errs = append(errs, f.check(join(path, f.key), value)...)
		}
		return errs
	}
}

func listOf(minLen int, item check) check {
	return func(path string, v any) domain.SchemaErrors {
		list, ok := v.([]any)
		if !ok {
			return fail(path, "array")
		}
		if len(list) < minLen {
			return fail(path, fmt.Sprintf("array with at least %d item(s)", minLen))
		}
		var errs domain.SchemaErrors
		for i, elem := range list {
			errs = append(errs, item(fmt.Sprintf("%s[%d]", path, i), elem)...)
		}
		return errs
	}
}

func stringValue(path string, v any) domain.SchemaErrors {
	if _, ok := v.(string); !ok {
		return fail(path, "string")
	}
	return nil
}

func nonEmptyString(path string, v any) domain.SchemaErrors {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fail(path, "non-empty string")
	}
	return nil
}

func numericString(path string, v any) domain.SchemaErrors {
	s, ok := v.(string)
	if !ok {
		return fail(path, "numeric string")
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fail(path, "numeric string")
	}
	return nil
}

func stringOrNumber(path string, v any) domain.SchemaErrors {
	switch x := v.(type) {
	case json.Number:
		return nil
	case string:
		if strings.TrimSpace(x) != "" {
			return nil
		}
	}
	return fail(path, "string or number")
}

func integerAtLeast(min int64) check {
	return func(path string, v any) domain.SchemaErrors {
		n, ok := v.(json.Number)
		if !ok {
			return fail(path, "integer")
		}
		i, err := n.Int64()
		if err != nil {
			return fail(path, "integer")
		}
		if i < min {
			return fail(path, fmt.Sprintf("integer >= %d", min))
		}
		return nil
	}
}

func integer(path string, v any) domain.SchemaErrors {
	n, ok := v.(json.Number)
	if !ok {
		return fail(path, "integer")
	}
	if _, err := n.Int64(); err != nil {
		return fail(path, "integer")
	}
	return nil
}

func oneOf(values ...string) check {
	return func(path string, v any) domain.SchemaErrors {
		s, ok := v.(string)
		if ok {
			for _, allowed := range values {
				if s == allowed {
					return nil
				}
			}
		}
		return fail(path, "one of "+strings.Join(values, ", "))
	}
}

func rootName(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

// Helpers used after a value has passed its check.

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return ""
}

func asInt(v any) int {
	if n, ok := v.(json.Number); ok {
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

func asStrings(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, elem := range list {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asObjects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, elem := range list {
		if obj, ok := elem.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
