package parquetdbtestutil

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb"
	"github.com/stretchr/testify/require"
)

const testFilename = "yellow_tripdata_test.parquet"

// small row groups, so that the test files have more than one
const testRowGroupSize = 4 * 1024

// TripsWithPassengerCounts creates one sample trip per passenger count given, in order.
// A nil entry gives a trip without a passenger count.
func TripsWithPassengerCounts(passengerCounts ...*float64) []*parquetdb.Trip {
	trips := parquetdb.GenerateSampleTrips(len(passengerCounts), 1)
	for i, passengerCount := range passengerCounts {
		trips[i].PassengerCount = passengerCount
	}
	return trips
}

func PassengerCount(v float64) *float64 {
	return &v
}

// WriteTestFile writes the trips to a parquet file in a temporary directory and returns the file path
func WriteTestFile(t *testing.T, trips []*parquetdb.Trip) string {
	filePath := filepath.Join(t.TempDir(), testFilename)

	err := parquetdb.WriteTripsFile(filePath, trips, testRowGroupSize)
	require.NoError(t, errorsx.ErrWithStack(err))

	return filePath
}

// LoadTestTable writes the trips to a parquet file and loads it back in as a table
func LoadTestTable(t *testing.T, trips []*parquetdb.Trip) *taxitrips.Table {
	filePath := WriteTestFile(t, trips)

	table, err := parquetdb.LoadTable(NewTestLogger(), gofs.NewOsFs(), filePath, parquetdb.LoadOptions{})
	require.NoError(t, errorsx.ErrWithStack(err))

	return table
}

func NewTestLogger() *logpkg.Logger {
	return logpkg.NewLogger(ioutil.Discard, logpkg.LogLevelDebug)
}
