// Package pocket reads Pocket CSV exports and the normalized unread-links
// file produced from them.
package pocket

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/pocket-migrate/internal/entities"
	"github.com/mrlokans/pocket-migrate/internal/logger"
)

const (
	// minFields is title, url, time_added, tags, status.
	minFields = 5

	// maxWarningsPerFile caps how many short rows are logged for one export file.
	maxWarningsPerFile = 10

	headerMarker = "title"
)

// NormalizedHeader is the header row of the file written by WriteUnread.
var NormalizedHeader = []string{"title", "url", "time_added", "tags", "status", "source_file"}

// FileSummary describes what was taken from one export file.
type FileSummary struct {
	Path      string
	Retained  int
	Skipped   int // Rows with fewer than minFields fields
	HasHeader bool
	Err       error
}

// ExtractResult is the outcome of scanning every export file.
type ExtractResult struct {
	Files []FileSummary
	Links []entities.PocketLink
}

// Total returns the number of retained links across all files.
func (r ExtractResult) Total() int {
	return len(r.Links)
}

// Extractor filters Pocket exports down to the rows with a given status.
type Extractor struct {
	status string
	log    logger.Logger
}

// NewExtractor creates an extractor keeping rows whose status equals status.
func NewExtractor(status string, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{status: status, log: log}
}

// Extract scans every path in order. A file that cannot be read contributes
// zero links and its error is recorded in the summary; it never stops the scan.
func (e *Extractor) Extract(paths []string) ExtractResult {
	var result ExtractResult

	for _, path := range paths {
		summary := FileSummary{Path: path}

		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				e.log.Warn("export file not found, skipping", logger.String("file", path))
			} else {
				e.log.Error("failed to open export file", logger.String("file", path), logger.Error(err))
			}
			summary.Err = err
			result.Files = append(result.Files, summary)
			continue
		}

		e.log.Info("processing export file", logger.String("file", path))
		links, summary, err := e.ExtractFrom(f, filepath.Base(path))
		f.Close()
		summary.Path = path
		if err != nil {
			e.log.Error("failed to process export file", logger.String("file", path), logger.Error(err))
			summary.Err = err
			summary.Retained = 0
			result.Files = append(result.Files, summary)
			continue
		}

		e.log.Info("export file processed",
			logger.String("file", path),
			logger.Int("retained", summary.Retained),
			logger.Int("skipped", summary.Skipped),
		)
		result.Files = append(result.Files, summary)
		result.Links = append(result.Links, links...)
	}

	return result
}

// ExtractFrom reads one export. sourceFile is recorded on every retained link.
// On error the returned links must be discarded.
func (e *Extractor) ExtractFrom(r io.Reader, sourceFile string) ([]entities.PocketLink, FileSummary, error) {
	summary := FileSummary{Path: sourceFile}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Wrapped titles produce rows of any width
	reader.LazyQuotes = true

	var links []entities.PocketLink
	warnings := 0

	for rowNum := 0; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, summary, fmt.Errorf("read row %d: %w", rowNum, err)
		}

		if rowNum == 0 && len(row) > 0 && row[0] == headerMarker {
			summary.HasHeader = true
			continue
		}

		if len(row) < minFields {
			// A lone status value is the tail of a wrapped entry, not worth a warning.
			if len(row) == 1 && strings.TrimSpace(row[0]) == e.status {
				continue
			}
			summary.Skipped++
			if warnings < maxWarningsPerFile {
				warnings++
				e.log.Warn("skipping short row",
					logger.String("file", sourceFile),
					logger.Int("row", rowNum),
					logger.Int("columns", len(row)),
					logger.Strings("values", row),
				)
			}
			continue
		}

		status := clean(row[4])
		if status != e.status {
			continue
		}

		links = append(links, entities.PocketLink{
			Title:      clean(row[0]),
			URL:        clean(row[1]),
			TimeAdded:  clean(row[2]),
			Tags:       clean(row[3]),
			Status:     status,
			SourceFile: sourceFile,
		})
	}

	summary.Retained = len(links)
	return links, summary, nil
}

// WriteUnread writes links as the normalized CSV read back by LoadUnread.
func WriteUnread(w io.Writer, links []entities.PocketLink) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(NormalizedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range links {
		if err := writer.Write([]string{l.Title, l.URL, l.TimeAdded, l.Tags, l.Status, l.SourceFile}); err != nil {
			return fmt.Errorf("failed to write link %s: %w", l.URL, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteUnreadFile writes links to path, replacing any existing file.
func WriteUnreadFile(path string, links []entities.PocketLink) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteUnread(f, links); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// clean trims a field and replaces invalid UTF-8, which shows up in older exports.
func clean(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, "�"))
}
