package taxitrips

import (
	"errors"

	"github.com/jamesrr39/goutil/errorsx"
)

var (
	ErrColumnNotFound = errors.New("column not found")
)

type ColumnType int

const (
	ColumnTypeUnknown ColumnType = iota
	ColumnTypeInt64
	ColumnTypeFloat64
	ColumnTypeString
	ColumnTypeBool
	ColumnTypeTimestamp
)

var columnTypeNames = []string{
	"unknown",
	"int64",
	"float64",
	"string",
	"bool",
	"timestamp",
}

func (ct ColumnType) String() string {
	if int(ct) < 0 || int(ct) >= len(columnTypeNames) {
		return columnTypeNames[ColumnTypeUnknown]
	}
	return columnTypeNames[ct]
}

// Column holds every value of one named column, in file order. A nil value is a null.
type Column struct {
	Name   string
	Type   ColumnType
	Values []interface{}
}

// Table is an in-memory, read-only set of equally long columns.
type Table struct {
	Columns []*Column
}

func NewTable(columns []*Column) (*Table, errorsx.Error) {
	seenNames := make(map[string]struct{})
	for _, column := range columns {
		_, ok := seenNames[column.Name]
		if ok {
			return nil, errorsx.Errorf("duplicate column name: %q", column.Name)
		}
		seenNames[column.Name] = struct{}{}

		if len(column.Values) != len(columns[0].Values) {
			return nil, errorsx.Errorf(
				"column %q has %d values, but column %q has %d",
				column.Name, len(column.Values),
				columns[0].Name, len(columns[0].Values),
			)
		}
	}

	return &Table{columns}, nil
}

func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Shape returns (row count, column count)
func (t *Table) Shape() (int, int) {
	return t.NumRows(), t.NumColumns()
}

func (t *Table) ColumnNames() []string {
	var names []string
	for _, column := range t.Columns {
		names = append(names, column.Name)
	}
	return names
}

func (t *Table) ColumnByName(name string) (*Column, errorsx.Error) {
	for _, column := range t.Columns {
		if column.Name == name {
			return column, nil
		}
	}

	return nil, errorsx.Wrap(ErrColumnNotFound, "column", name)
}

// Head returns a new table with the first n rows (or all of them, if the table is shorter).
// The value slices are shared with the original table.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}

	var columns []*Column
	for _, column := range t.Columns {
		columns = append(columns, &Column{
			Name:   column.Name,
			Type:   column.Type,
			Values: column.Values[:n],
		})
	}

	return &Table{columns}
}

func (t *Table) Row(index int) []interface{} {
	row := make([]interface{}, len(t.Columns))
	for i, column := range t.Columns {
		row[i] = column.Values[index]
	}
	return row
}

// GroupCount is one (group key, number of rows) pair of a grouped count.
type GroupCount struct {
	Key   interface{}
	Count int64
}
