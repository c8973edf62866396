package tripspostgresql

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal/tripssqldb"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open connects to a postgresql server. connStr is everything after "postgresql://", e.g. "user:pass@localhost/trips?sslmode=disable"
func Open(logger *logpkg.Logger, connStr string) (*tripssqldb.TripsSQLDB, errorsx.Error) {
	db, err := sqlx.Open("postgres", "postgresql://"+connStr)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errorsx.Wrap(err)
	}

	return tripssqldb.NewTripsSQLDB(logger, db, tripssqldb.PostgresqlDialect, "postgresql database"), nil
}
