package tripreport

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb/tripsduckdb"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb/tripspostgresql"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb/tripssqlite"
)

// StoreOpener opens the store a report runs against. The caller closes the returned store.
type StoreOpener func(ctx context.Context) (taxitripsdal.Store, errorsx.Error)

// NewStoreOpener gives a StoreOpener for the store in the paths config.
// For file-backed stores, the directory holding the file is created first.
func NewStoreOpener(logger *logpkg.Logger, fs gofs.Fs, pathsConfig *taxitripsdal.PathsConfig) StoreOpener {
	return func(ctx context.Context) (taxitripsdal.Store, errorsx.Error) {
		connURL := pathsConfig.StoreConnURL

		err := pathsConfig.EnsurePaths(fs)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		logger.Debug("opening %s store", connURL.Type)

		var store *tripssqldb.TripsSQLDB
		switch connURL.Type {
		case taxitripsdal.StoreTypeSQLite:
			store, err = tripssqlite.Open(logger, connURL.ConnectionPath)
		case taxitripsdal.StoreTypeDuckDB:
			store, err = tripsduckdb.Open(logger, connURL.ConnectionPath)
		case taxitripsdal.StoreTypePostgresql:
			store, err = tripspostgresql.Open(logger, connURL.ConnectionPath)
		default:
			return nil, errorsx.Errorf("unknown store type: %q", connURL.Type)
		}

		if err != nil {
			return nil, errorsx.Wrap(err, "storeType", connURL.Type)
		}

		return store, nil
	}
}
