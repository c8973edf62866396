package taxitripsrenderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/olekukonko/tablewriter"
)

// RenderPreview writes the first n rows of the table (or all of them, if there are fewer) as a text table
func RenderPreview(w io.Writer, table *taxitrips.Table, n int) errorsx.Error {
	head := table.Head(n)

	buf := bytes.NewBuffer(nil)

	tableWriter := tablewriter.NewWriter(buf)
	tableWriter.SetHeader(head.ColumnNames())
	tableWriter.SetAutoFormatHeaders(false)
	tableWriter.SetAutoWrapText(false)

	numRows := head.NumRows()
	for i := 0; i < numRows; i++ {
		var cells []string
		for _, value := range head.Row(i) {
			cells = append(cells, taxitrips.FormatValue(value))
		}
		tableWriter.Append(cells)
	}

	tableWriter.Render()

	_, err := io.Copy(w, buf)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

// RenderShape writes the table's shape as "(rows, columns)"
func RenderShape(w io.Writer, table *taxitrips.Table) errorsx.Error {
	rows, columns := table.Shape()

	_, err := fmt.Fprintf(w, "(%d, %d)\n", rows, columns)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

// RenderGroupCounts writes one "(key, count)" line per pair, in the order given
func RenderGroupCounts(w io.Writer, groupCounts []*taxitrips.GroupCount) errorsx.Error {
	buf := bytes.NewBuffer(nil)
	for _, groupCount := range groupCounts {
		fmt.Fprintf(buf, "(%s, %d)\n", taxitrips.FormatValue(groupCount.Key), groupCount.Count)
	}

	_, err := io.Copy(w, buf)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func RenderLoadedRowCount(w io.Writer, tableName string, rowCount int) errorsx.Error {
	_, err := fmt.Fprintf(w, "rows loaded into %s: %d\n", tableName, rowCount)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
