package tablequery

import (
	"math"
	"strings"
	"time"

	"github.com/jamesrr39/taxitrips-app/taxitrips"
)

type keyRank int

const (
	keyRankNull keyRank = iota
	keyRankBool
	keyRankNumber
	keyRankTimestamp
	keyRankString
	keyRankOther
)

func rankOf(key interface{}) keyRank {
	switch key.(type) {
	case nil:
		return keyRankNull
	case bool:
		return keyRankBool
	case int64, int32, int, float64, float32:
		return keyRankNumber
	case time.Time:
		return keyRankTimestamp
	case string, []byte:
		return keyRankString
	default:
		return keyRankOther
	}
}

// compareKeys orders keys: nulls, then bools, numbers, timestamps and strings.
// It returns -1, 0 or 1.
func compareKeys(a, b interface{}) int {
	rankA, rankB := rankOf(a), rankOf(b)
	if rankA != rankB {
		if rankA < rankB {
			return -1
		}
		return 1
	}

	switch rankA {
	case keyRankBool:
		boolA, boolB := a.(bool), b.(bool)
		switch {
		case boolA == boolB:
			return 0
		case !boolA:
			return -1
		default:
			return 1
		}
	case keyRankNumber:
		return compareFloats(
			taxitrips.NormaliseKey(a).(float64),
			taxitrips.NormaliseKey(b).(float64),
		)
	case keyRankTimestamp:
		timeA, timeB := a.(time.Time), b.(time.Time)
		switch {
		case timeA.Before(timeB):
			return -1
		case timeA.After(timeB):
			return 1
		default:
			return 0
		}
	case keyRankString:
		return strings.Compare(
			taxitrips.NormaliseKey(a).(string),
			taxitrips.NormaliseKey(b).(string),
		)
	case keyRankOther:
		return strings.Compare(taxitrips.FormatValue(a), taxitrips.FormatValue(b))
	}

	// both null
	return 0
}

// NaN sorts after every other number
func compareFloats(a, b float64) int {
	nanA, nanB := math.IsNaN(a), math.IsNaN(b)
	switch {
	case nanA && nanB:
		return 0
	case nanA:
		return 1
	case nanB:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

type nanKeyType struct{}

// groupingKey gives the map key a value is grouped under.
// NaN is not equal to itself, so all NaNs share one marker key.
func groupingKey(value interface{}) interface{} {
	key := taxitrips.NormaliseKey(value)

	f, ok := key.(float64)
	if ok && math.IsNaN(f) {
		return nanKeyType{}
	}

	return key
}
