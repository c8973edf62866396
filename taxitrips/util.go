package taxitrips

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const TimestampFormat = "2006-01-02 15:04:05"

// FormatValue gives the console form of a table or query value.
// Nulls print as "None" and integral floats keep one decimal place ("1.0").
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case time.Time:
		return v.UTC().Format(TimestampFormat)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormaliseKey maps a group key to a form comparable across data sources;
// integer and float keys of the same numeric value become equal.
func NormaliseKey(value interface{}) interface{} {
	switch v := value.(type) {
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
