package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StringArg returns the trimmed string argument name, or "" if absent.
func StringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

// RawStringArg returns the string argument name untrimmed, or "" if absent.
func RawStringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// RequiredString returns the string argument name or an error if it is absent or blank.
func RequiredString(args map[string]any, name string) (string, error) {
	s := StringArg(args, name)
	if s == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return s, nil
}

// IntArg returns the integer argument name, or def if it is absent.
// JSON numbers and numeric strings are accepted.
func IntArg(args map[string]any, name string, def int) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", name, v)
		}
		// float64(math.MaxInt) rounds up to 2^63, which is itself out of range.
		if v < math.MinInt || v >= math.MaxInt {
			return 0, fmt.Errorf("%s is out of range: %v", name, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", name, v)
	}
}

// ListArg returns the array argument name. A string argument is parsed as a
// JSON array, since some clients send structured arguments as text.
func ListArg(args map[string]any, name string) ([]any, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", name)
	case []any:
		return v, nil
	case string:
		var list []any
		if err := json.Unmarshal([]byte(v), &list); err != nil {
			return nil, fmt.Errorf("%s must be a JSON array: %w", name, err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%s must be an array, got %T", name, v)
	}
}

// ValuesArg returns the 2D array argument name as rows of cells.
func ValuesArg(args map[string]any, name string) ([][]any, error) {
	list, err := ListArg(args, name)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, len(list))
	for i, row := range list {
		cells, ok := row.([]any)
		if !ok {
			return nil, fmt.Errorf("%s must be a 2D array: row %d is %T", name, i, row)
		}
		rows[i] = cells
	}
	return rows, nil
}
