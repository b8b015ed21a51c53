package models

import (
	"encoding/json"
	"fmt"

	"github.com/fieldlens/fieldlens/internal/errors"
)

// TypeOf classifies a value into its FieldType tag. Any Go type outside
// the Value union is ErrUnsupportedValue.
func TypeOf(v Value) (FieldType, error) {
	switch v.(type) {
	case nil:
		return TypeNull, nil
	case Array:
		return TypeArray, nil
	case *Object:
		return TypeObject, nil
	case bool:
		return TypeBoolean, nil
	case string:
		return TypeString, nil
	case json.Number, float64, float32, int, int32, int64:
		return TypeNumber, nil
	default:
		return "", fmt.Errorf("%w: %T", errors.ErrUnsupportedValue, v)
	}
}
