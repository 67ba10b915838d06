package datasets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeParquet(t *testing.T, path, column string, values []string) {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: column, Type: arrow.BinaryTypes.String},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()
	builder.Field(0).(*array.StringBuilder).AppendValues(values, nil)

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, pqarrow.WriteTable(table, f, 1024,
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
}

func TestLoadGoldenRequests(t *testing.T) {
	requests := []string{
		"Ship 2 kg books box to US",
		"Ship 1 kg books box to iran",
		"Quote for 3kg toys crate -> EU",
	}

	path := filepath.Join(t.TempDir(), "golden.parquet")
	writeParquet(t, path, RequestColumn, requests)

	loaded, err := LoadGoldenRequests(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, requests, loaded, "requests must come back in file order")
}

func TestLoadGoldenRequestsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.parquet")
	writeParquet(t, path, "question", []string{"not a request"})

	_, err := LoadGoldenRequests(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request column")
}

func TestLoadGoldenRequestsMissingFile(t *testing.T) {
	_, err := LoadGoldenRequests(context.Background(), filepath.Join(t.TempDir(), "absent.parquet"))
	assert.Error(t, err)
}
