// internal/words/csv.go
//
// CSV parsing for word sets. This is the one place a malformed external
// source surfaces an error to the user: a file whose header lacks the
// required columns fails with *DataFormatError.
//
// Expected format: a header row containing "word" and "definition"
// columns (case-insensitive), plus an optional "category" column.

package words

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DataFormatError reports a word-set source missing required columns.
type DataFormatError struct {
	Missing []string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("CSV is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ParseWordSets reads word/definition rows grouped by category.
// Rows without a category (or from files without a category column) are
// grouped under the empty string; the caller decides what to name them.
// Blank words/definitions and short rows are skipped.
func ParseWordSets(r io.Reader) (map[string]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows; validated per row below
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataFormatError{Missing: []string{"word", "definition"}}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	wordCol, defCol, catCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "word":
			wordCol = i
		case "definition":
			defCol = i
		case "category":
			catCol = i
		}
	}
	var missing []string
	if wordCol < 0 {
		missing = append(missing, "word")
	}
	if defCol < 0 {
		missing = append(missing, "definition")
	}
	if len(missing) > 0 {
		return nil, &DataFormatError{Missing: missing}
	}

	groups := make(map[string]map[string]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if wordCol >= len(rec) || defCol >= len(rec) {
			continue
		}
		word := strings.TrimSpace(rec[wordCol])
		def := strings.TrimSpace(rec[defCol])
		if word == "" || def == "" {
			continue
		}
		cat := ""
		if catCol >= 0 && catCol < len(rec) {
			cat = strings.TrimSpace(rec[catCol])
		}
		if groups[cat] == nil {
			groups[cat] = make(map[string]string)
		}
		groups[cat][word] = def
	}
	return groups, nil
}

// bytesReader wraps a byte slice for ParseWordSets.
func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }
