// Package datasets loads externally supplied golden requests. The file
// carries requests only; true labels are always recomputed from the
// carrier, so a stale file cannot inject wrong expectations.
package datasets

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/XiaoConstantine/mendloop/pkg/errors"
)

// RequestColumn is the Parquet column golden requests are read from.
const RequestColumn = "request"

// LoadGoldenRequests reads the "request" column of a Parquet file and
// returns its values in file order.
func LoadGoldenRequests(ctx context.Context, path string) ([]string, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to open golden request file"),
			errors.Fields{"path": path})
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read golden request file")
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read golden request schema")
	}
	indices := schema.FieldIndices(RequestColumn)
	if len(indices) == 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "golden request file lacks the request column"),
			errors.Fields{"path": path, "column": RequestColumn})
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read golden request table")
	}
	defer table.Release()

	col := table.Column(indices[0])
	requests := make([]string, 0, table.NumRows())
	for _, chunk := range col.Data().Chunks() {
		strs, ok := chunk.(*array.String)
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "request column is not a string column"),
				errors.Fields{"path": path})
		}
		for i := 0; i < strs.Len(); i++ {
			requests = append(requests, strs.Value(i))
		}
	}
	return requests, nil
}
