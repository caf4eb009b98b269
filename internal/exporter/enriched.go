package exporter

import (
	"context"
	"log/slog"

	"nplreport/internal/errors"
	"nplreport/pkg/contracts/domain"
)

// ExportTable streams every row of table to a UTF-8 CSV file with a BOM.
// Null cells are written empty, dates as YYYY-MM-DD.
func (w *CSVWriter) ExportTable(ctx context.Context, path string, table *domain.Table) error {
	stream, err := w.CreateStreamWriter(path, WriteOptions{
		Headers:   table.Columns(),
		BOMPrefix: true,
	})
	if err != nil {
		return errors.NewStorageError("failed to create enriched dataset file", err).WithContext("path", path)
	}

	record := make([]string, len(table.Columns()))
	for i := 0; i < table.Len(); i++ {
		if err := ctx.Err(); err != nil {
			stream.Abort()
			return err
		}
		for j, v := range table.Row(i) {
			record[j] = v.String()
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return errors.NewStorageError("failed to write enriched dataset row", err).WithContext("row", i)
		}
	}

	if err := stream.Close(); err != nil {
		return errors.NewStorageError("failed to finish enriched dataset file", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "Enriched dataset exported",
		slog.String("path", path),
		slog.Int("rows", table.Len()))
	return nil
}
