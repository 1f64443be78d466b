// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/dacolabs/blueprint/internal/dtype"
	"github.com/dacolabs/blueprint/internal/schema"
)

// FromArrow converts an Arrow schema into a schema tree. Struct fields
// become struct columns; list-like types keep their element type.
func FromArrow(sc *arrow.Schema) (*schema.Tree, error) {
	fields := make([]dtype.Field, 0, sc.NumFields())
	for _, f := range sc.Fields() {
		fields = append(fields, dtype.Field{Name: f.Name, Type: arrowType(f.Type)})
	}
	return schema.FromFields(fields)
}

func arrowType(dt arrow.DataType) *dtype.DataType {
	switch dt.ID() {
	case arrow.INT8:
		return dtype.Scalar(dtype.Int8)
	case arrow.INT16:
		return dtype.Scalar(dtype.Int16)
	case arrow.INT32:
		return dtype.Scalar(dtype.Int32)
	case arrow.INT64:
		return dtype.Scalar(dtype.Int64)
	case arrow.UINT8:
		return dtype.Scalar(dtype.UInt8)
	case arrow.UINT16:
		return dtype.Scalar(dtype.UInt16)
	case arrow.UINT32:
		return dtype.Scalar(dtype.UInt32)
	case arrow.UINT64:
		return dtype.Scalar(dtype.UInt64)
	case arrow.FLOAT16, arrow.FLOAT32:
		return dtype.Scalar(dtype.Float32)
	case arrow.FLOAT64:
		return dtype.Scalar(dtype.Float64)
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return dtype.Scalar(dtype.Decimal)
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return dtype.Scalar(dtype.String)
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW, arrow.FIXED_SIZE_BINARY:
		return dtype.Scalar(dtype.Binary)
	case arrow.BOOL:
		return dtype.Scalar(dtype.Boolean)
	case arrow.DATE32, arrow.DATE64:
		return dtype.Scalar(dtype.Date)
	case arrow.TIMESTAMP:
		return dtype.Scalar(dtype.Datetime)
	case arrow.TIME32, arrow.TIME64:
		return dtype.Scalar(dtype.Time)
	case arrow.DURATION, arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO:
		return dtype.Scalar(dtype.Duration)
	case arrow.NULL:
		return dtype.Scalar(dtype.Null)
	case arrow.DICTIONARY:
		return dtype.Scalar(dtype.Categorical)
	case arrow.FIXED_SIZE_LIST:
		t := dt.(*arrow.FixedSizeListType)
		return dtype.ArrayOf(arrowType(t.Elem()), int(t.Len()))
	case arrow.MAP:
		t := dt.(*arrow.MapType)
		return dtype.ListOf(dtype.StructOf(
			dtype.Field{Name: "key", Type: arrowType(t.KeyType())},
			dtype.Field{Name: "value", Type: arrowType(t.ItemType())},
		))
	case arrow.LIST, arrow.LARGE_LIST, arrow.LIST_VIEW, arrow.LARGE_LIST_VIEW:
		return dtype.ListOf(arrowType(dt.(arrow.ListLikeType).Elem()))
	case arrow.STRUCT:
		t := dt.(*arrow.StructType)
		fields := make([]dtype.Field, 0, t.NumFields())
		for _, f := range t.Fields() {
			fields = append(fields, dtype.Field{Name: f.Name, Type: arrowType(f.Type)})
		}
		return dtype.StructOf(fields...)
	case arrow.RUN_END_ENCODED:
		return arrowType(dt.(*arrow.RunEndEncodedType).Encoded())
	case arrow.EXTENSION:
		return arrowType(dt.(arrow.ExtensionType).StorageType())
	default:
		return dtype.Scalar(dtype.Unknown)
	}
}

// ReadIPC reads the schema of an Arrow IPC file. Both the random-access
// file format (Feather v2) and the streaming format are accepted.
func ReadIPC(path string) (*schema.Tree, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided source path
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	if r, err := ipc.NewFileReader(f); err == nil {
		defer r.Close() //nolint:errcheck
		return FromArrow(r.Schema())
	} else if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return nil, errors.Join(err, serr)
	}

	r, err := ipc.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: not an Arrow IPC file: %w", path, err)
	}
	defer r.Release()
	return FromArrow(r.Schema())
}

// ReadParquet reads the Arrow schema stored in (or derived from) the footer
// of a Parquet file.
func ReadParquet(path string) (*schema.Tree, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer rdr.Close() //nolint:errcheck

	meta := rdr.MetaData()
	sc, err := pqarrow.FromParquet(meta.Schema, &pqarrow.ArrowReadProperties{}, meta.KeyValueMetadata())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromArrow(sc)
}
