package tripssqldb

import (
	"github.com/jamesrr39/taxitrips-app/taxitrips"
)

// Dialect holds what differs between the SQL stores. Queries are written with "?" placeholders
// and rebound to the driver's style by sqlx.
type Dialect struct {
	Name             string
	ColumnTypeNames  map[taxitrips.ColumnType]string
	TableExistsQuery string
}

func (d *Dialect) ColumnTypeName(columnType taxitrips.ColumnType) string {
	name, ok := d.ColumnTypeNames[columnType]
	if !ok {
		return d.ColumnTypeNames[taxitrips.ColumnTypeString]
	}
	return name
}

var SQLiteDialect = &Dialect{
	Name: "sqlite",
	ColumnTypeNames: map[taxitrips.ColumnType]string{
		taxitrips.ColumnTypeInt64:     "INTEGER",
		taxitrips.ColumnTypeFloat64:   "REAL",
		taxitrips.ColumnTypeString:    "TEXT",
		taxitrips.ColumnTypeBool:      "BOOLEAN",
		taxitrips.ColumnTypeTimestamp: "TIMESTAMP",
	},
	TableExistsQuery: `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
}

var DuckDBDialect = &Dialect{
	Name: "duckdb",
	ColumnTypeNames: map[taxitrips.ColumnType]string{
		taxitrips.ColumnTypeInt64:     "BIGINT",
		taxitrips.ColumnTypeFloat64:   "DOUBLE",
		taxitrips.ColumnTypeString:    "VARCHAR",
		taxitrips.ColumnTypeBool:      "BOOLEAN",
		taxitrips.ColumnTypeTimestamp: "TIMESTAMP",
	},
	TableExistsQuery: `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`,
}

var PostgresqlDialect = &Dialect{
	Name: "postgresql",
	ColumnTypeNames: map[taxitrips.ColumnType]string{
		taxitrips.ColumnTypeInt64:     "BIGINT",
		taxitrips.ColumnTypeFloat64:   "DOUBLE PRECISION",
		taxitrips.ColumnTypeString:    "TEXT",
		taxitrips.ColumnTypeBool:      "BOOLEAN",
		taxitrips.ColumnTypeTimestamp: "TIMESTAMP WITHOUT TIME ZONE",
	},
	TableExistsQuery: `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
}
