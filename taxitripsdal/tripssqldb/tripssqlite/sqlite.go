package tripssqlite

import (
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens (and creates, if needed) the SQLite database file at filePath
func Open(logger *logpkg.Logger, filePath string) (*tripssqldb.TripsSQLDB, errorsx.Error) {
	db, err := sqlx.Open("sqlite3", filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	return tripssqldb.NewTripsSQLDB(logger, db, tripssqldb.SQLiteDialect, fmt.Sprintf("sqlite://%s", filePath)), nil
}
