package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"ticketdraft/internal/domain"
)

const (
	SubjectColumn    = "Subject"
	ResolutionColumn = "Resolution"
)

// SchemaError reports required columns absent from the corpus header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("corpus must contain %q and %q columns (missing: %s)",
		SubjectColumn, ResolutionColumn, strings.Join(e.Missing, ", "))
}

// LoadFile opens a CSV export of resolved tickets and loads it.
func LoadFile(path string) (domain.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	log.Printf("corpus loaded path=%s records=%d", path, len(c))
	return c, nil
}

// Load reads CSV with a header row. Rows are kept in source order with no
// filtering; empty cells pass through as empty strings.
func Load(r io.Reader) (domain.Corpus, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Missing: []string{SubjectColumn, ResolutionColumn}}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	subjectIdx, resolutionIdx := -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch name {
		case SubjectColumn:
			if subjectIdx < 0 {
				subjectIdx = i
			}
		case ResolutionColumn:
			if resolutionIdx < 0 {
				resolutionIdx = i
			}
		}
	}
	var missing []string
	if subjectIdx < 0 {
		missing = append(missing, SubjectColumn)
	}
	if resolutionIdx < 0 {
		missing = append(missing, ResolutionColumn)
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var out domain.Corpus
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		out = append(out, domain.TicketRecord{
			Subject:    cell(row, subjectIdx),
			Resolution: cell(row, resolutionIdx),
		})
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
