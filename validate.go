package spssconverter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Validation primitives shared by the metadata model.  These mirror
// the checks the sav format itself imposes on variable names and
// widths; violations wrap ErrInvalidValue (or ErrColumnNotFound where
// noted) so callers can test them with errors.Is.

var variableNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateVariableName checks that name is a well-formed variable
// identifier (letters, digits and underscores, not starting with a
// digit).  The empty string is accepted only when allowEmpty is true.
func validateVariableName(name string, allowEmpty bool) error {
	if name == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: variable name is empty", ErrInvalidValue)
	}
	if !variableNameRegexp.MatchString(name) {
		return fmt.Errorf("%w: value (%q) is not a valid variable name", ErrInvalidValue, name)
	}
	return nil
}

func validateNonNegative(field string, v int) error {
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative, was %d", ErrInvalidValue, field, v)
	}
	return nil
}

// asString coerces a loosely typed mapping value to a string.  nil
// coerces to the empty string.
func asString(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("%w: expected a string, was %T", ErrInvalidValue, v)
	}
}

// asInt coerces a loosely typed mapping value to an int.  Compatible
// numeric-like input (any integer type, an integral float, or a
// numeric string) is accepted.
func asInt(v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float32:
		return asInt(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: expected an integer, was %v", ErrInvalidValue, x)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("%w: expected an integer, was %q", ErrInvalidValue, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: expected an integer, was %T", ErrInvalidValue, v)
	}
}

// asFloat coerces a loosely typed mapping value to a float64.
func asFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: expected a number, was %q", ErrInvalidValue, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected a number, was %T", ErrInvalidValue, v)
	}
}

// asStringList coerces a loosely typed mapping value to a list of
// strings.  A bare string becomes a single-element list.
func asStringList(v interface{}) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{x}, nil
	case []string:
		return x, nil
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a string or list of strings, was %T", ErrInvalidValue, v)
	}
}

// normalizeValueKey canonicalizes a raw coded value used as a
// value-label key.  Integer types collapse to int64; other key types
// are rejected.
func normalizeValueKey(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	default:
		return nil, fmt.Errorf("%w: value-label key must be a string or number, was %T", ErrInvalidValue, v)
	}
}
