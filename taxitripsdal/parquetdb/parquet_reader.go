package parquetdb

import (
	"os"
	"runtime"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/humanise"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/taxitrips-app/taxitrips"
	"github.com/jamesrr39/taxitrips-app/taxitripsdal"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	parquetreader "github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/schema"
	"github.com/xitongsys/parquet-go/types"
)

const (
	DefaultReadBatchSize = 64 * 1024
	parquetMagic         = "PAR1"
)

type LoadOptions struct {
	// BatchSize is the amount of values read from one column at a time. 0 means DefaultReadBatchSize
	BatchSize int64
}

type valueConverterFunc func(value interface{}) interface{}

type columnDescriptor struct {
	name       string
	columnType taxitrips.ColumnType
	convert    valueConverterFunc
}

// LoadTable reads a whole (flat) parquet file into memory.
// If the file does not exist, the returned error's cause is taxitripsdal.ErrInputFileNotFound.
func LoadTable(logger *logpkg.Logger, fs gofs.Fs, filePath string, options LoadOptions) (*taxitrips.Table, errorsx.Error) {
	var err error

	fileInfo, err := fs.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorsx.Wrap(taxitripsdal.ErrInputFileNotFound, "filepath", filePath)
		}
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	if fileInfo.IsDir() {
		return nil, errorsx.Errorf("expected %q to be a parquet file, but it is a directory", filePath)
	}

	logger.Debug("loading %q (%s)", filePath, humanise.HumaniseBytes(fileInfo.Size()))

	err = checkParquetMagic(fs, filePath, fileInfo.Size())
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	fileReader, err := local.NewLocalFileReader(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}
	defer fileReader.Close()

	pr, err := parquetreader.NewParquetReader(fileReader, nil, int64(runtime.NumCPU()))
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}
	defer pr.ReadStop()

	descriptors, err := getColumnDescriptors(pr.SchemaHandler)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultReadBatchSize
	}

	numRows := pr.GetNumRows()
	logger.Debug("%q: %d rows in %d row groups, %d columns", filePath, numRows, len(pr.Footer.GetRowGroups()), len(descriptors))

	var columns []*taxitrips.Column
	for i, descriptor := range descriptors {
		values, err := readColumn(pr, int64(i), numRows, batchSize, descriptor.convert)
		if err != nil {
			return nil, errorsx.Wrap(err, "filepath", filePath, "column", descriptor.name)
		}

		columns = append(columns, &taxitrips.Column{
			Name:   descriptor.name,
			Type:   descriptor.columnType,
			Values: values,
		})
	}

	table, err := taxitrips.NewTable(columns)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	return table, nil
}

// checkParquetMagic checks the file starts and ends with the parquet magic bytes,
// so that other files are rejected before the footer is parsed.
func checkParquetMagic(fs gofs.Fs, filePath string, size int64) errorsx.Error {
	if size < int64(2*len(parquetMagic)) {
		return errorsx.Errorf("not a parquet file: only %d bytes long", size)
	}

	file, err := fs.Open(filePath)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer file.Close()

	for _, offset := range []int64{0, size - int64(len(parquetMagic))} {
		b := make([]byte, len(parquetMagic))
		_, err = file.ReadAt(b, offset)
		if err != nil {
			return errorsx.Wrap(err)
		}

		if string(b) != parquetMagic {
			return errorsx.Errorf("not a parquet file: expected magic bytes %q at offset %d, but found %q", parquetMagic, offset, b)
		}
	}

	return nil
}

func readColumn(pr *parquetreader.ParquetReader, index, numRows, batchSize int64, convert valueConverterFunc) ([]interface{}, errorsx.Error) {
	values := make([]interface{}, 0, numRows)

	for remaining := numRows; remaining > 0; {
		wanted := batchSize
		if remaining < wanted {
			wanted = remaining
		}

		batch, repetitionLevels, _, err := pr.ReadColumnByIndex(index, wanted)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		if int64(len(batch)) != wanted {
			return nil, errorsx.Errorf("expected %d values but read %d", wanted, len(batch))
		}

		for i, value := range batch {
			if repetitionLevels[i] != 0 {
				return nil, errorsx.Errorf("repeated values are not supported")
			}

			if value != nil {
				value = convert(value)
			}

			values = append(values, value)
		}

		remaining -= wanted
	}

	return values, nil
}

// getColumnDescriptors gives one descriptor per leaf column, in file order. Only flat schemas are supported.
// The reader renames the footer's schema elements to Go-style names, so the names as written in the file are taken from the schema handler.
func getColumnDescriptors(schemaHandler *schema.SchemaHandler) ([]*columnDescriptor, errorsx.Error) {
	elements := schemaHandler.SchemaElements
	if len(elements) == 0 {
		return nil, errorsx.Errorf("parquet file has no schema")
	}

	var descriptors []*columnDescriptor
	for i := 1; i < len(elements); i++ {
		element := elements[i]
		name := schemaHandler.Infos[i].ExName

		if element.GetNumChildren() > 0 {
			return nil, errorsx.Errorf("nested column %q is not supported", name)
		}

		if element.IsSetRepetitionType() && element.GetRepetitionType() == parquet.FieldRepetitionType_REPEATED {
			return nil, errorsx.Errorf("repeated column %q is not supported", name)
		}

		columnType, convert := columnTypeForElement(element)

		descriptors = append(descriptors, &columnDescriptor{
			name:       name,
			columnType: columnType,
			convert:    convert,
		})
	}

	return descriptors, nil
}

func columnTypeForElement(element *parquet.SchemaElement) (taxitrips.ColumnType, valueConverterFunc) {
	if !element.IsSetType() {
		return taxitrips.ColumnTypeUnknown, identity
	}

	switch element.GetType() {
	case parquet.Type_BOOLEAN:
		return taxitrips.ColumnTypeBool, identity
	case parquet.Type_INT32:
		return taxitrips.ColumnTypeInt64, int32ToInt64
	case parquet.Type_INT64:
		unit, isTimestamp := timestampUnit(element)
		if isTimestamp {
			return taxitrips.ColumnTypeTimestamp, func(value interface{}) interface{} {
				return time.Unix(0, value.(int64)*int64(unit)).UTC()
			}
		}
		return taxitrips.ColumnTypeInt64, identity
	case parquet.Type_INT96:
		return taxitrips.ColumnTypeTimestamp, func(value interface{}) interface{} {
			return types.INT96ToTime(value.(string)).UTC()
		}
	case parquet.Type_FLOAT:
		return taxitrips.ColumnTypeFloat64, float32ToFloat64
	case parquet.Type_DOUBLE:
		return taxitrips.ColumnTypeFloat64, identity
	case parquet.Type_BYTE_ARRAY, parquet.Type_FIXED_LEN_BYTE_ARRAY:
		return taxitrips.ColumnTypeString, identity
	default:
		return taxitrips.ColumnTypeUnknown, identity
	}
}

// timestampUnit checks both the legacy converted type and the newer logical type annotations
func timestampUnit(element *parquet.SchemaElement) (time.Duration, bool) {
	if element.IsSetLogicalType() && element.GetLogicalType().IsSetTIMESTAMP() {
		unit := element.GetLogicalType().GetTIMESTAMP().GetUnit()
		switch {
		case unit == nil:
			// fall back to the converted type
		case unit.IsSetMILLIS():
			return time.Millisecond, true
		case unit.IsSetMICROS():
			return time.Microsecond, true
		case unit.IsSetNANOS():
			return time.Nanosecond, true
		}
	}

	if element.IsSetConvertedType() {
		switch element.GetConvertedType() {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return time.Millisecond, true
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return time.Microsecond, true
		}
	}

	return 0, false
}

func identity(value interface{}) interface{} {
	return value
}

func int32ToInt64(value interface{}) interface{} {
	return int64(value.(int32))
}

func float32ToFloat64(value interface{}) interface{} {
	return float64(value.(float32))
}
