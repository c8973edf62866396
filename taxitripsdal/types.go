package taxitripsdal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
)

var (
	ErrInputFileNotFound  = errors.New("input file not found")
	ErrTableNotFound      = errors.New("table not found in store")
	ErrTableAlreadyExists = errors.New("table already exists in store")
)

// Store is a relational store that trip tables can be loaded into and queried from.
type Store interface {
	Name() string
	TableExists(ctx context.Context, tableName string) (bool, errorsx.Error)
	LoadTable(ctx context.Context, tableName string, table *taxitrips.Table, ifExists IfExistsMode) errorsx.Error
	GroupCount(ctx context.Context, query *GroupCountQuery) ([]*taxitrips.GroupCount, errorsx.Error)
	Close() errorsx.Error
}

type StoreType string

const (
	StoreTypeSQLite     StoreType = "sqlite"
	StoreTypeDuckDB     StoreType = "duckdb"
	StoreTypePostgresql StoreType = "postgresql"
)

// IsFileBacked is true for the embedded stores, whose connection path is a local file
func (st StoreType) IsFileBacked() bool {
	return st == StoreTypeSQLite || st == StoreTypeDuckDB
}

type StoreConnURL struct {
	Type           StoreType
	ConnectionPath string
}

func (u StoreConnURL) String() string {
	return string(u.Type) + ConnectionPathSeparator + u.ConnectionPath
}

const ConnectionPathSeparator = "://"

func ParseStoreConnURL(str string) (StoreConnURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return StoreConnURL{}, errorsx.Errorf("couldn't find connection path separator %q in store connection string", ConnectionPathSeparator)
	}

	return StoreConnURL{
		Type:           StoreType(str[:idx]),
		ConnectionPath: str[idx+len(ConnectionPathSeparator):],
	}, nil
}

// IfExistsMode decides what loading a table does when the table is already in the store
type IfExistsMode string

const (
	IfExistsModeReplace IfExistsMode = "replace"
	IfExistsModeAppend  IfExistsMode = "append"
	IfExistsModeFail    IfExistsMode = "fail"
)

func ParseIfExistsMode(str string) (IfExistsMode, errorsx.Error) {
	mode := IfExistsMode(str)
	switch mode {
	case IfExistsModeReplace, IfExistsModeAppend, IfExistsModeFail:
		return mode, nil
	default:
		return "", errorsx.Errorf("unknown if-exists mode: %q", str)
	}
}

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func ValidateIdentifier(identifier string) errorsx.Error {
	if !identifierRegexp.MatchString(identifier) {
		return errorsx.Errorf("invalid SQL identifier: %q", identifier)
	}
	return nil
}

// QuoteIdentifier quotes a table or column name, doubling any quotes inside it
func QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
}

// GroupCountQuery counts the rows of a table per distinct value of one column.
type GroupCountQuery struct {
	TableName     string
	GroupByColumn string
	Limit         int // 0 = no limit
}

func (q *GroupCountQuery) Validate() errorsx.Error {
	err := ValidateIdentifier(q.TableName)
	if err != nil {
		return errorsx.Wrap(err, "field", "table name")
	}

	err = ValidateIdentifier(q.GroupByColumn)
	if err != nil {
		return errorsx.Wrap(err, "field", "group by column")
	}

	if q.Limit < 0 {
		return errorsx.Errorf("limit must not be negative, but was %d", q.Limit)
	}

	return nil
}

// SQL renders the query. Groups are ordered by key so that repeated runs give the same output.
func (q *GroupCountQuery) SQL() string {
	column := QuoteIdentifier(q.GroupByColumn)

	query := fmt.Sprintf(
		"SELECT %s AS group_key, COUNT(*) AS row_count FROM %s GROUP BY %s ORDER BY %s",
		column,
		QuoteIdentifier(q.TableName),
		column,
		column,
	)

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	return query
}
