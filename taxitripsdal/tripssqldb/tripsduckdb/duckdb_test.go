package tripsduckdb

import (
	"context"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb/parquetdbtestutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GroupCount(t *testing.T) {
	ctx := context.Background()

	store, err := Open(parquetdbtestutil.NewTestLogger(), "")
	require.NoError(t, errorsx.ErrWithStack(err))
	defer store.Close()

	table, err := taxitrips.NewTable([]*taxitrips.Column{
		{Name: "VendorID", Type: taxitrips.ColumnTypeInt64, Values: []interface{}{int64(1), int64(2), int64(2), int64(1)}},
		{Name: "passenger_count", Type: taxitrips.ColumnTypeFloat64, Values: []interface{}{float64(2), float64(1), float64(2), float64(2)}},
	})
	require.NoError(t, errorsx.ErrWithStack(err))

	err = store.LoadTable(ctx, taxitripsdal.DefaultTableName, table, taxitripsdal.IfExistsModeReplace)
	require.NoError(t, errorsx.ErrWithStack(err))

	exists, err := store.TableExists(ctx, taxitripsdal.DefaultTableName)
	require.NoError(t, errorsx.ErrWithStack(err))
	assert.True(t, exists)

	groupCounts, err := store.GroupCount(ctx, &taxitripsdal.GroupCountQuery{
		TableName:     taxitripsdal.DefaultTableName,
		GroupByColumn: taxitripsdal.DefaultGroupByColumn,
		Limit:         taxitripsdal.DefaultGroupLimit,
	})
	require.NoError(t, errorsx.ErrWithStack(err))

	expected := []*taxitrips.GroupCount{
		{Key: float64(1), Count: 1},
		{Key: float64(2), Count: 3},
	}
	assert.Equal(t, expected, groupCounts)
}

func Test_GroupCount_missingTable(t *testing.T) {
	store, err := Open(parquetdbtestutil.NewTestLogger(), "")
	require.NoError(t, errorsx.ErrWithStack(err))
	defer store.Close()

	_, err = store.GroupCount(context.Background(), &taxitripsdal.GroupCountQuery{
		TableName:     taxitripsdal.DefaultTableName,
		GroupByColumn: taxitripsdal.DefaultGroupByColumn,
	})
	require.Error(t, err)
	assert.Equal(t, taxitripsdal.ErrTableNotFound, errorsx.Cause(err))
}
