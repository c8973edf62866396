package taxitripsdal

import (
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/userextra"
)

const (
	DefaultInputFilePath   = "yellow_tripdata_2023-01.parquet"
	DefaultStoreConnString = "sqlite://yellow_taxi.db"
	DefaultTableName       = "yellow_trips"
	DefaultGroupByColumn   = "passenger_count"
	DefaultGroupLimit      = 5
	DefaultPreviewRows     = 5
)

type PathsConfig struct {
	InputFilePath string
	StoreConnURL  StoreConnURL
}

// NewPathsConfig resolves "~" in the input path and, for file-backed stores, in the store path
func NewPathsConfig(inputFilePath, storeConnString string) (*PathsConfig, errorsx.Error) {
	expandedInputFilePath, err := userextra.ExpandUser(inputFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", inputFilePath)
	}

	storeConnURL, err := ParseStoreConnURL(storeConnString)
	if err != nil {
		return nil, errorsx.Wrap(err, "store", storeConnString)
	}

	if storeConnURL.Type.IsFileBacked() {
		storeConnURL.ConnectionPath, err = userextra.ExpandUser(storeConnURL.ConnectionPath)
		if err != nil {
			return nil, errorsx.Wrap(err, "store", storeConnString)
		}
	}

	return &PathsConfig{
		InputFilePath: expandedInputFilePath,
		StoreConnURL:  storeConnURL,
	}, nil
}

// EnsurePaths creates the directory a file-backed store lives in
func (pc *PathsConfig) EnsurePaths(fs gofs.Fs) errorsx.Error {
	if !pc.StoreConnURL.Type.IsFileBacked() {
		return nil
	}

	dirPath := filepath.Dir(pc.StoreConnURL.ConnectionPath)
	err := fs.MkdirAll(dirPath, 0755)
	if err != nil {
		return errorsx.Wrap(err, "dirPath", dirPath)
	}

	return nil
}
