package engine

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csvdash/internal/models"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ExportSeries writes points to path as CSV or Parquet depending on the
// extension.
func ExportSeries(path string, points []models.Point, valueName string) error {
	var write func(io.Writer, []models.Point, string) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		write = WriteSeriesCSV
	case ".parquet", ".pq":
		write = WriteSeriesParquet
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	// The Parquet writer closes its sink, so render in memory first.
	var buf bytes.Buffer
	if err := write(&buf, points, valueName); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteSeriesCSV writes a date,<valueName> table.
func WriteSeriesCSV(w io.Writer, points []models.Point, valueName string) error {
	dates := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date.Format(time.DateOnly)
		values[i] = p.Value
	}

	df := dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(values, series.Float, seriesValueName(valueName)),
	)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}

// WriteSeriesParquet writes the series as a two column Parquet file
// (date32, float64).
func WriteSeriesParquet(w io.Writer, points []models.Point, valueName string) error {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "date", Type: arrow.FixedWidthTypes.Date32},
		{Name: seriesValueName(valueName), Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	dates := b.Field(0).(*array.Date32Builder)
	values := b.Field(1).(*array.Float64Builder)
	for _, p := range points {
		dates.Append(arrow.Date32FromTime(p.Date))
		values.Append(p.Value)
	}

	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	return pqarrow.WriteTable(tbl, w, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
}

func seriesValueName(name string) string {
	if name == "" || isDateName(name) {
		return "value"
	}
	return name
}
