package tripssqldb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb/parquetdbtestutil"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb/tripssqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pc = parquetdbtestutil.PassengerCount

func openTestStore(t *testing.T, filePath string) *tripssqldb.TripsSQLDB {
	store, err := tripssqlite.Open(parquetdbtestutil.NewTestLogger(), filePath)
	require.NoError(t, errorsx.ErrWithStack(err))
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func newQuery(limit int) *taxitripsdal.GroupCountQuery {
	return &taxitripsdal.GroupCountQuery{
		TableName:     taxitripsdal.DefaultTableName,
		GroupByColumn: taxitripsdal.DefaultGroupByColumn,
		Limit:         limit,
	}
}

func Test_GroupCount(t *testing.T) {
	ctx := context.Background()

	table := parquetdbtestutil.LoadTestTable(t, parquetdbtestutil.TripsWithPassengerCounts(
		pc(2), pc(1), pc(3), pc(1), pc(2), pc(1),
	))

	store := openTestStore(t, filepath.Join(t.TempDir(), "yellow_taxi.db"))

	err := store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))

	groupCounts, err := store.GroupCount(ctx, newQuery(5))
	require.NoError(t, errorsx.ErrWithStack(err))

	expected := []*taxitrips.GroupCount{
		{Key: float64(1), Count: 3},
		{Key: float64(2), Count: 2},
		{Key: float64(3), Count: 1},
	}
	assert.Equal(t, expected, groupCounts)
}

func Test_GroupCount_limit(t *testing.T) {
	ctx := context.Background()

	table := parquetdbtestutil.LoadTestTable(t, parquetdbtestutil.TripsWithPassengerCounts(
		pc(0), pc(1), pc(2), pc(3), pc(4), pc(5), pc(6), pc(6), pc(1),
	))

	store := openTestStore(t, filepath.Join(t.TempDir(), "yellow_taxi.db"))

	err := store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))

	groupCounts, err := store.GroupCount(ctx, newQuery(5))
	require.NoError(t, errorsx.ErrWithStack(err))
	require.Len(t, groupCounts, 5)

	seen := make(map[interface{}]bool)
	for _, groupCount := range groupCounts {
		assert.False(t, seen[groupCount.Key], "key %v appeared more than once", groupCount.Key)
		seen[groupCount.Key] = true
	}
	assert.Equal(t, int64(2), groupCounts[1].Count)

	allGroupCounts, err := store.GroupCount(ctx, newQuery(0))
	require.NoError(t, errorsx.ErrWithStack(err))
	assert.Len(t, allGroupCounts, 7)
}

func Test_GroupCount_nullKeys(t *testing.T) {
	ctx := context.Background()

	table := parquetdbtestutil.LoadTestTable(t, parquetdbtestutil.TripsWithPassengerCounts(
		pc(1), nil, pc(1), nil, nil,
	))

	store := openTestStore(t, filepath.Join(t.TempDir(), "yellow_taxi.db"))

	err := store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))

	groupCounts, err := store.GroupCount(ctx, newQuery(5))
	require.NoError(t, errorsx.ErrWithStack(err))

	// SQLite sorts NULLs first
	expected := []*taxitrips.GroupCount{
		{Key: nil, Count: 3},
		{Key: float64(1), Count: 2},
	}
	assert.Equal(t, expected, groupCounts)
}

func Test_GroupCount_missingTable(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "yellow_taxi.db"))

	_, err := store.GroupCount(context.Background(), newQuery(5))
	require.Error(t, err)

	assert.Equal(t, taxitripsdal.ErrTableNotFound, errorsx.Cause(err))
	assert.Contains(t, err.Error(), taxitripsdal.DefaultTableName)
	assert.Contains(t, err.Error(), "GROUP BY")
}

func Test_GroupCount_missingColumn(t *testing.T) {
	ctx := context.Background()

	table := parquetdbtestutil.LoadTestTable(t, parquetdbtestutil.TripsWithPassengerCounts(pc(1)))
	store := openTestStore(t, filepath.Join(t.TempDir(), "yellow_taxi.db"))

	err := store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))

	query := newQuery(5)
	query.GroupByColumn = "passengers"

	_, err = store.GroupCount(ctx, query)
	require.Error(t, err)
	assert.Equal(t, taxitrips.ErrColumnNotFound, errorsx.Cause(err))
	assert.Contains(t, err.Error(), "passengers")
}

func Test_LoadTable_ifExists(t *testing.T) {
	ctx := context.Background()

	table := parquetdbtestutil.LoadTestTable(t, parquetdbtestutil.TripsWithPassengerCounts(pc(1), pc(2)))
	store := openTestStore(t, filepath.Join(t.TempDir(), "yellow_taxi.db"))

	loadAndCount := func(mode taxitripsdal.IfExistsMode) ([]*taxitrips.GroupCount, errorsx.Error) {
		err := store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, mode)
		if err != nil {
			return nil, err
		}

		return store.GroupCount(ctx, newQuery(5))
	}

	groupCounts, err := loadAndCount(taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))
	assert.Equal(t, int64(1), groupCounts[0].Count)

	groupCounts, err = loadAndCount(taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))
	assert.Equal(t, int64(1), groupCounts[0].Count)

	groupCounts, err = loadAndCount(taxitripsdal.IfExistsModeAppend)
	require.NoError(t, errorsx.ErrWithStack(err))
	assert.Equal(t, int64(2), groupCounts[0].Count)

	_, err = loadAndCount(taxitripsdal.IfExistsModeFail)
	require.Error(t, err)
	assert.Equal(t, taxitripsdal.ErrTableAlreadyExists, errorsx.Cause(err))
}

func Test_GroupCount_persistedStore(t *testing.T) {
	ctx := context.Background()
	filePath := filepath.Join(t.TempDir(), "yellow_taxi.db")

	table := parquetdbtestutil.LoadTestTable(t, parquetdb.GenerateSampleTrips(200, 3))

	store := openTestStore(t, filePath)
	err := store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))

	first, err := store.GroupCount(ctx, newQuery(5))
	require.NoError(t, errorsx.ErrWithStack(err))

	err = store.Close()
	require.NoError(t, errorsx.ErrWithStack(err))

	reopened := openTestStore(t, filePath)
	second, err := reopened.GroupCount(ctx, newQuery(5))
	require.NoError(t, errorsx.ErrWithStack(err))

	assert.Equal(t, first, second)
}
