package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/logisq/xyronq/internal/types"
)

// coerceValue re-types a stored text value per its declared type for
// manifest output. int and decimal fall back to the raw string when the
// text does not parse; bool is a case-insensitive "true" literal check,
// so any other text reads as false.
func coerceValue(t types.ParamType, stored string) any {
	switch t {
	case types.ParamTypeInt:
		if n, err := strconv.ParseInt(stored, 10, 64); err == nil {
			return n
		}
		return stored
	case types.ParamTypeDecimal:
		if f, err := strconv.ParseFloat(stored, 64); err == nil {
			return f
		}
		return stored
	case types.ParamTypeBool:
		return strings.EqualFold(stored, "true")
	default:
		return stored
	}
}

// stringifyValue is the import-side inverse: a decoded JSON value becomes
// the stored text representation, independent of the declared type.
// Integral floats print without a fractional part so that a round-tripped
// int survives JSON's number decoding.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
