package tripssqldb

import (
	"context"
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/jmoiron/sqlx"
)

var _ taxitripsdal.Store = &TripsSQLDB{}

type TripsSQLDB struct {
	logger  *logpkg.Logger
	name    string
	db      *sqlx.DB
	dialect *Dialect
}

func NewTripsSQLDB(logger *logpkg.Logger, db *sqlx.DB, dialect *Dialect, name string) *TripsSQLDB {
	return &TripsSQLDB{
		logger:  logger,
		name:    name,
		db:      db,
		dialect: dialect,
	}
}

func (s *TripsSQLDB) Name() string {
	return s.name
}

func (s *TripsSQLDB) TableExists(ctx context.Context, tableName string) (bool, errorsx.Error) {
	return tableExists(ctx, s.db, s.dialect, tableName)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func tableExists(ctx context.Context, q queryer, dialect *Dialect, tableName string) (bool, errorsx.Error) {
	query := q.Rebind(dialect.TableExistsQuery)

	var count int64
	err := sqlx.GetContext(ctx, q, &count, query, tableName)
	if err != nil {
		return false, errorsx.Wrap(err, "query", query, "table", tableName)
	}

	return count > 0, nil
}

type groupCountRow struct {
	GroupKey interface{} `db:"group_key"`
	RowCount int64       `db:"row_count"`
}

// GroupCount counts the rows per distinct value of the query's column.
// If the table is not in the store, the returned error's cause is taxitripsdal.ErrTableNotFound.
func (s *TripsSQLDB) GroupCount(ctx context.Context, query *taxitripsdal.GroupCountQuery) ([]*taxitrips.GroupCount, errorsx.Error) {
	var err error

	err = query.Validate()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	sqlText := s.db.Rebind(query.SQL())

	exists, err := s.TableExists(ctx, query.TableName)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	if !exists {
		return nil, errorsx.Wrap(taxitripsdal.ErrTableNotFound, "table", query.TableName, "query", sqlText, "store", s.name)
	}

	columnNames, err := s.columnNames(ctx, query.TableName)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	// SQLite reads an unknown double-quoted identifier as a string literal, so check the column is there first
	if !containsString(columnNames, query.GroupByColumn) {
		return nil, errorsx.Wrap(taxitrips.ErrColumnNotFound, "column", query.GroupByColumn, "table", query.TableName, "query", sqlText)
	}

	s.logger.Debug("running query: %s", sqlText)

	var rows []*groupCountRow
	err = s.db.SelectContext(ctx, &rows, sqlText)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", sqlText, "store", s.name)
	}

	var groupCounts []*taxitrips.GroupCount
	for _, row := range rows {
		groupCounts = append(groupCounts, &taxitrips.GroupCount{
			Key:   normaliseDriverValue(row.GroupKey),
			Count: row.RowCount,
		})
	}

	return groupCounts, nil
}

func (s *TripsSQLDB) columnNames(ctx context.Context, tableName string) ([]string, errorsx.Error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 0", taxitripsdal.QuoteIdentifier(tableName))

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}

	return columnNames, nil
}

func containsString(list []string, str string) bool {
	for _, item := range list {
		if item == str {
			return true
		}
	}
	return false
}

// some drivers hand back text as []byte when scanning into an interface{}
func normaliseDriverValue(value interface{}) interface{} {
	b, ok := value.([]byte)
	if ok {
		return string(b)
	}
	return value
}

func (s *TripsSQLDB) Close() errorsx.Error {
	err := s.db.Close()
	if err != nil {
		return errorsx.Wrap(err, "store", s.name)
	}
	return nil
}
