package parquetdb

import (
	_ "embed"
	"encoding/json"
	"runtime"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	parquetwriter "github.com/xitongsys/parquet-go/writer"
)

// JSON writer example: https://github.com/xitongsys/parquet-go/blob/62cf52a8dad4f8b729e6c38809f091cd134c3749/example/json_write.go

const DefaultRowGroupSize = 128 * 1024 * 1024 //128M

//go:embed trips_schema.json
var tripsSchema string

type TripsWriter struct {
	file          source.ParquetFile
	parquetWriter *parquetwriter.JSONWriter
	rowsWritten   int64
}

// NewTripsWriter creates (or truncates) a parquet file at filePath. rowGroupSize is in bytes; 0 means DefaultRowGroupSize.
func NewTripsWriter(filePath string, rowGroupSize int64) (*TripsWriter, errorsx.Error) {
	f, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	w, err := parquetwriter.NewJSONWriter(tripsSchema, f, int64(runtime.NumCPU()))
	if err != nil {
		f.Close()
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	if rowGroupSize <= 0 {
		rowGroupSize = DefaultRowGroupSize
	}
	w.RowGroupSize = rowGroupSize
	w.CompressionType = parquet.CompressionCodec_SNAPPY

	return &TripsWriter{f, w, 0}, nil
}

func (tw *TripsWriter) Write(trip *Trip) errorsx.Error {
	j, err := json.Marshal(trip)
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = tw.parquetWriter.Write(string(j))
	if err != nil {
		return errorsx.Wrap(err, "row", tw.rowsWritten)
	}

	tw.rowsWritten++

	return nil
}

func (tw *TripsWriter) RowsWritten() int64 {
	return tw.rowsWritten
}

// Close flushes the footer and closes the file. The file is not a valid parquet file until Close has been called.
func (tw *TripsWriter) Close() errorsx.Error {
	err := tw.parquetWriter.WriteStop()
	if err != nil {
		tw.file.Close()
		return errorsx.Wrap(err)
	}

	err = tw.file.Close()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

// WriteTripsFile writes all the trips to a new file at filePath
func WriteTripsFile(filePath string, trips []*Trip, rowGroupSize int64) errorsx.Error {
	w, err := NewTripsWriter(filePath, rowGroupSize)
	if err != nil {
		return errorsx.Wrap(err)
	}

	for _, trip := range trips {
		err = w.Write(trip)
		if err != nil {
			w.Close()
			return errorsx.Wrap(err)
		}
	}

	err = w.Close()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
