package dataprocessing

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"nplreport/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// textTable builds a table of text cells; "" becomes null
func textTable(t *testing.T, columns []string, rows ...[]string) *domain.Table {
	t.Helper()
	table := domain.NewTable(columns)
	for _, row := range rows {
		values := make([]domain.Value, len(row))
		for i, cell := range row {
			values[i] = cellValue(cell)
		}
		require.NoError(t, table.AppendRow(values))
	}
	return table
}

func number(t *testing.T, v domain.Value) float64 {
	t.Helper()
	f, ok := v.AsNumber()
	require.True(t, ok, "expected number, got %s %q", v.Kind(), v.String())
	return f
}

func text(t *testing.T, v domain.Value) string {
	t.Helper()
	s, ok := v.AsText()
	require.True(t, ok, "expected text, got %s", v.Kind())
	return s
}
