package tripsduckdb

import (
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb"
	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"
)

// Open opens (and creates, if needed) the DuckDB database file at filePath. An empty filePath gives an in-memory database.
func Open(logger *logpkg.Logger, filePath string) (*tripssqldb.TripsSQLDB, errorsx.Error) {
	db, err := sqlx.Open("duckdb", filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	// every driver connection opens its own database handle, and only one handle may hold the file
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	return tripssqldb.NewTripsSQLDB(logger, db, tripssqldb.DuckDBDialect, fmt.Sprintf("duckdb://%s", filePath)), nil
}
