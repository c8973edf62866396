package tripreport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/parquetdb/parquetdbtestutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewStoreOpener(t *testing.T) {
	type testCase struct {
		Name      string
		StoreType taxitripsdal.StoreType
	}

	testCases := []testCase{
		{"sqlite", taxitripsdal.StoreTypeSQLite},
		{"duckdb", taxitripsdal.StoreTypeDuckDB},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			storeFilePath := filepath.Join(t.TempDir(), "nested", "dir", "yellow_taxi.db")

			pathsConfig, err := taxitripsdal.NewPathsConfig(taxitripsdal.DefaultInputFilePath, string(tc.StoreType)+"://"+storeFilePath)
			require.NoError(t, errorsx.ErrWithStack(err))

			openStore := NewStoreOpener(parquetdbtestutil.NewTestLogger(), gofs.NewOsFs(), pathsConfig)

			store, err := openStore(context.Background())
			require.NoError(t, errorsx.ErrWithStack(err))
			defer store.Close()

			assert.Equal(t, string(tc.StoreType)+"://"+storeFilePath, store.Name())

			fileInfo, statErr := os.Stat(filepath.Dir(storeFilePath))
			require.NoError(t, statErr)
			assert.True(t, fileInfo.IsDir())
		})
	}

	t.Run("unknown store type", func(t *testing.T) {
		pathsConfig, err := taxitripsdal.NewPathsConfig(taxitripsdal.DefaultInputFilePath, "mysql://localhost/trips")
		require.NoError(t, errorsx.ErrWithStack(err))

		store, err := NewStoreOpener(parquetdbtestutil.NewTestLogger(), gofs.NewOsFs(), pathsConfig)(context.Background())
		require.Error(t, err)
		assert.Nil(t, store)
	})
}
