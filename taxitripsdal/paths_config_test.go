package taxitripsdal

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathsConfig(t *testing.T) {
	currentUser, err := user.Current()
	require.NoError(t, err)
	homeDir := currentUser.HomeDir

	pathsConfig, err := NewPathsConfig("~/data/trips.parquet", "sqlite://~/stores/yellow_taxi.db")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(homeDir, "data", "trips.parquet"), pathsConfig.InputFilePath)
	assert.Equal(t, filepath.Join(homeDir, "stores", "yellow_taxi.db"), pathsConfig.StoreConnURL.ConnectionPath)

	_, err = NewPathsConfig(DefaultInputFilePath, "yellow_taxi.db")
	assert.Error(t, err)
}

func TestPathsConfig_EnsurePaths(t *testing.T) {
	fs := mockfs.NewMockFs()

	pathsConfig, err := NewPathsConfig(DefaultInputFilePath, "sqlite:///stores/nyc/yellow_taxi.db")
	require.NoError(t, err)

	err = pathsConfig.EnsurePaths(fs)
	require.NoError(t, err)

	fileInfo, statErr := fs.Stat("/stores/nyc")
	require.NoError(t, statErr)
	assert.True(t, fileInfo.IsDir())

	t.Run("server store creates nothing", func(t *testing.T) {
		fs := mockfs.NewMockFs()
		fs.MkdirAllFunc = func(path string, perm os.FileMode) error {
			t.Errorf("unexpected MkdirAll(%q)", path)
			return nil
		}

		pathsConfig, err := NewPathsConfig(DefaultInputFilePath, "postgresql://localhost/trips")
		require.NoError(t, err)

		err = pathsConfig.EnsurePaths(fs)
		require.NoError(t, err)
	})
}
