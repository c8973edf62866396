package tripssqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
)

const logProgressEveryRows = 100 * 1000

// LoadTable writes the whole table into the store, in one transaction.
// ifExists decides what happens when there is already a table with the same name.
func (s *TripsSQLDB) LoadTable(ctx context.Context, tableName string, table *taxitrips.Table, ifExists taxitripsdal.IfExistsMode) errorsx.Error {
	var err error

	err = taxitripsdal.ValidateIdentifier(tableName)
	if err != nil {
		return errorsx.Wrap(err)
	}

	if table.NumColumns() == 0 {
		return errorsx.Errorf("cannot load a table without columns into the store")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errorsx.Wrap(err, "store", s.name)
	}
	defer tx.Rollback()

	exists, err := tableExists(ctx, tx, s.dialect, tableName)
	if err != nil {
		return errorsx.Wrap(err)
	}

	quotedTableName := taxitripsdal.QuoteIdentifier(tableName)

	createTable := true
	if exists {
		switch ifExists {
		case taxitripsdal.IfExistsModeFail:
			return errorsx.Wrap(taxitripsdal.ErrTableAlreadyExists, "table", tableName, "store", s.name)
		case taxitripsdal.IfExistsModeAppend:
			createTable = false
		case taxitripsdal.IfExistsModeReplace:
			s.logger.Debug("dropping existing table %q", tableName)
			_, err = tx.ExecContext(ctx, "DROP TABLE "+quotedTableName)
			if err != nil {
				return errorsx.Wrap(err, "table", tableName)
			}
		default:
			return errorsx.Errorf("unknown if-exists mode: %q", ifExists)
		}
	}

	if createTable {
		createTableSQL := s.createTableSQL(quotedTableName, table)
		_, err = tx.ExecContext(ctx, createTableSQL)
		if err != nil {
			return errorsx.Wrap(err, "query", createTableSQL)
		}
	}

	insertQuery := tx.Rebind(insertSQL(quotedTableName, table))
	stmt, err := tx.PreparexContext(ctx, insertQuery)
	if err != nil {
		return errorsx.Wrap(err, "query", insertQuery)
	}
	defer stmt.Close()

	numRows := table.NumRows()
	for i := 0; i < numRows; i++ {
		_, err = stmt.ExecContext(ctx, table.Row(i)...)
		if err != nil {
			return errorsx.Wrap(err, "query", insertQuery, "row", i)
		}

		if (i+1)%logProgressEveryRows == 0 {
			s.logger.Debug("inserted %d/%d rows into %q", i+1, numRows, tableName)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errorsx.Wrap(err, "table", tableName, "store", s.name)
	}

	s.logger.Info("loaded %d rows into %q (%s)", numRows, tableName, s.name)

	return nil
}

func (s *TripsSQLDB) createTableSQL(quotedTableName string, table *taxitrips.Table) string {
	var columnDefinitions []string
	for _, column := range table.Columns {
		columnDefinitions = append(
			columnDefinitions,
			fmt.Sprintf("%s %s", taxitripsdal.QuoteIdentifier(column.Name), s.dialect.ColumnTypeName(column.Type)),
		)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", quotedTableName, strings.Join(columnDefinitions, ", "))
}

func insertSQL(quotedTableName string, table *taxitrips.Table) string {
	var columnNames, placeholders []string
	for _, column := range table.Columns {
		columnNames = append(columnNames, taxitripsdal.QuoteIdentifier(column.Name))
		placeholders = append(placeholders, "?")
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quotedTableName,
		strings.Join(columnNames, ", "),
		strings.Join(placeholders, ", "),
	)
}
