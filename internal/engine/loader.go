package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csvdash/internal/log"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/go-gota/gota/dataframe"
)

// missingTokens are read as missing values in every column.
var missingTokens = []string{"", "NA", "NaN", "N/A", "n/a", "null", "NULL", "<nil>"}

// FileType represents the format of an input file.
type FileType int

const (
	FileTypeCSV FileType = iota
	FileTypeParquet
)

// DetectFileType picks the reader from the file extension. Anything that is
// not Parquet is read as delimited text.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FileTypeParquet
	default:
		return FileTypeCSV
	}
}

// --- 1. LOAD BOUNDARY ---

// Load reads the whole file at path into a Table. Every failure, including a
// panic inside the parsers, comes back as a *LoadError.
func Load(path string) (t *Table, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("%v", r)
		}
		if err != nil {
			t, err = nil, &LoadError{Path: path, Err: err}
		}
	}()

	switch DetectFileType(path) {
	case FileTypeParquet:
		t, err = loadParquet(path)
	default:
		t, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("table loaded", "component", log.ComponentLoader, "path", path,
		"rows", t.Rows(), "columns", len(t.Columns()), "date_column", t.dateColumn, "elapsed", time.Since(start))
	return t, nil
}

// --- 2. CSV ---

func loadCSV(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	return ReadCSV(bytes.NewReader(content), sniffDelimiter(content))
}

// utf8BOM starts spreadsheet "CSV UTF-8" exports.
var utf8BOM = []byte("\xef\xbb\xbf")

// ReadCSV parses delimited text with a header row into a Table.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	df := dataframe.ReadCSV(r, readOptions(dataframe.WithDelimiter(delimiter))...)
	return newTable(df)
}

func readOptions(extra ...dataframe.LoadOption) []dataframe.LoadOption {
	return append([]dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingTokens),
	}, extra...)
}

// sniffDelimiter picks the separator occurring most often in the header line,
// outside quoted fields. Ties go to the earlier candidate, so plain headers
// stay comma separated.
func sniffDelimiter(content []byte) rune {
	counts := make(map[byte]int)
	inQuotes := false
	for _, c := range content {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if c == '\n' {
			break
		}
		counts[c]++
	}

	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := counts[byte(sep)]; n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// --- 3. PARQUET ---

func loadParquet(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("create arrow reader: %w", err)
	}
	tbl, err := reader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("read parquet data: %w", err)
	}
	defer tbl.Release()

	return newTable(dataframe.LoadRecords(arrowRecords(tbl), readOptions()...))
}

// arrowRecords flattens an Arrow table into header + rows of text so Parquet
// input goes through the same type detection as CSV.
func arrowRecords(tbl arrow.Table) [][]string {
	ncols, nrows := int(tbl.NumCols()), int(tbl.NumRows())

	records := make([][]string, nrows+1)
	records[0] = make([]string, ncols)
	for c := 0; c < ncols; c++ {
		records[0][c] = tbl.Schema().Field(c).Name
	}
	for r := 1; r <= nrows; r++ {
		records[r] = make([]string, ncols)
	}

	for c := 0; c < ncols; c++ {
		row := 1
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				records[row][c] = arrowValue(chunk, i)
				row++
			}
		}
	}
	return records
}

func arrowValue(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return "NA"
	}
	switch a := arr.(type) {
	case *array.Date32:
		return a.Value(i).ToTime().Format(time.DateOnly)
	case *array.Date64:
		return a.Value(i).ToTime().Format(time.DateOnly)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(time.RFC3339)
	default:
		return arr.ValueStr(i)
	}
}
