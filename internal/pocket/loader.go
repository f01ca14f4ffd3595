package pocket

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/pocket-migrate/internal/entities"
)

// LoadUnread reads the normalized CSV and keeps only rows whose status is
// exactly status. Columns are located by header name.
func LoadUnread(r io.Reader, status string) ([]entities.PocketLink, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"url", "status"} {
		if _, ok := headerIndex[required]; !ok {
			return nil, fmt.Errorf("missing required header: %s", required)
		}
	}

	var links []entities.PocketLink
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		if getValue(record, headerIndex, "status") != status {
			continue
		}

		links = append(links, entities.PocketLink{
			Title:      getValue(record, headerIndex, "title"),
			URL:        getValue(record, headerIndex, "url"),
			TimeAdded:  getValue(record, headerIndex, "time_added"),
			Tags:       getValue(record, headerIndex, "tags"),
			Status:     getValue(record, headerIndex, "status"),
			SourceFile: getValue(record, headerIndex, "source_file"),
		})
	}

	return links, nil
}

// LoadUnreadFile opens path and calls LoadUnread.
func LoadUnreadFile(path, status string) ([]entities.PocketLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return LoadUnread(f, status)
}

func getValue(record []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
