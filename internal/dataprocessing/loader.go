package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"nplreport/internal/config"
	"nplreport/internal/errors"
	"nplreport/pkg/contracts/domain"
)

const transactionDelimiter = '|'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads the raw transaction extract and performance workbook of a
// reporting period. All cells are kept as text; NA tokens become null.
type Loader struct {
	logger *slog.Logger
	paths  *config.Paths
	sheet  string
}

// NewLoader creates a loader. An empty sheet selects the first worksheet.
func NewLoader(logger *slog.Logger, paths *config.Paths, sheet string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
		paths:  paths,
		sheet:  sheet,
	}
}

// Load returns the transactions and performance datasets for reportDate
func (l *Loader) Load(ctx context.Context, reportDate string) (*domain.Table, *domain.Table, error) {
	l.logger.InfoContext(ctx, "Loading data", slog.String("report_date", reportDate))

	transactions, err := l.ReadTransactions(ctx, l.paths.TransactionFile(reportDate))
	if err != nil {
		return nil, nil, err
	}

	performance, err := l.ReadPerformance(ctx, l.paths.PerformanceFile())
	if err != nil {
		return nil, nil, err
	}

	l.logger.InfoContext(ctx, "Data loaded",
		slog.Int("transaction_rows", transactions.Len()),
		slog.Int("transaction_columns", len(transactions.Columns())),
		slog.Int("performance_rows", performance.Len()),
		slog.Int("performance_columns", len(performance.Columns())))

	return transactions, performance, nil
}

// ReadTransactions reads a pipe-delimited UTF-8 file whose first record is the header
func (l *Loader) ReadTransactions(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewSourceAccessError("failed to open transaction file", err).
			WithContext("path", path)
	}
	defer file.Close()

	table, err := readDelimited(file, transactionDelimiter)
	if err != nil {
		return nil, errors.NewSourceAccessError("failed to read transaction file", err).
			WithContext("path", path)
	}

	l.logger.DebugContext(ctx, "Transaction file read",
		slog.String("path", path),
		slog.Int("rows", table.Len()))
	return table, nil
}

// ReadPerformance reads the configured worksheet of the performance workbook
func (l *Loader) ReadPerformance(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewSourceAccessError("failed to open performance workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewSourceAccessError("performance workbook has no sheets", nil).
				WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewSourceAccessError("failed to read performance sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	table, err := tableFromRows(rows, false)
	if err != nil {
		return nil, errors.NewSourceAccessError("malformed performance sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	l.logger.DebugContext(ctx, "Performance sheet read",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()))
	return table, nil
}

// readDelimited parses delimited text with a header record
func readDelimited(r io.Reader, comma rune) (*domain.Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited data: %w", err)
	}
	return tableFromRows(records, true)
}

// tableFromRows builds a table from a header row and data rows. Short rows
// are padded with null. When strict, a row longer than the header is an
// error; otherwise the header grows unnamed columns.
func tableFromRows(rows [][]string, strict bool) (*domain.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := rows[0]
	data := rows[1:]

	width := len(header)
	for i, row := range data {
		if len(row) <= width {
			continue
		}
		if strict {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", i+2, len(row), len(header))
		}
		width = len(row)
	}
	if width == 0 {
		return nil, fmt.Errorf("empty header row")
	}

	table := domain.NewTable(normalizeHeader(header, width))
	for i, row := range data {
		if !strict && isBlankRow(row) {
			continue
		}
		values := make([]domain.Value, width)
		for j := 0; j < width; j++ {
			if j >= len(row) {
				values[j] = domain.Null()
				continue
			}
			if !utf8.ValidString(row[j]) {
				return nil, fmt.Errorf("line %d field %d is not valid UTF-8", i+2, j+1)
			}
			values[j] = cellValue(row[j])
		}
		if err := table.AppendRow(values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// normalizeHeader trims names, names blank columns "Unnamed: N" and
// disambiguates repeated names with ".1", ".2" suffixes
func normalizeHeader(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			n := seen[base]
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
