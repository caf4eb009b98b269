package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"

	"nplreport/internal/files"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Comma     rune // defaults to ','
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to filePath, replacing any existing file only once
// every record has been written
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	stream, err := w.CreateStreamWriter(filePath, options)
	if err != nil {
		return err
	}

	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return stream.Close()
}

// StreamWriter writes records one at a time to a temporary file that is
// renamed into place on Close
type StreamWriter struct {
	file   *files.AtomicFile
	writer *csv.Writer
}

// CreateStreamWriter creates a streaming CSV writer. Records in options
// are ignored; the headers are written immediately.
func (w *CSVWriter) CreateStreamWriter(filePath string, options WriteOptions) (*StreamWriter, error) {
	file, err := files.Create(filePath)
	if err != nil {
		return nil, err
	}

	s := &StreamWriter{file: file, writer: csv.NewWriter(file)}
	if options.Comma != 0 {
		s.writer.Comma = options.Comma
	}

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			s.Abort()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if len(options.Headers) > 0 {
		if err := s.writer.Write(options.Headers); err != nil {
			s.Abort()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes the stream and moves it to its final path
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return err
	}
	return s.file.Commit()
}

// Abort discards everything written so far
func (s *StreamWriter) Abort() {
	s.file.Abort()
}
