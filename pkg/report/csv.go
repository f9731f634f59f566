package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVHeader is the header row of the CSV format.
var CSVHeader = []string{"CommitId", "RefactoringType", "RefactoringDetail"}

// CSVWriter streams refactorings as semicolon separated rows.
type CSVWriter struct {
	w      *csv.Writer
	header bool
}

// NewCSVWriter creates a CSV writer. The header is written with the first row
// or on Flush, whichever comes first.
func NewCSVWriter(w io.Writer) *CSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	return &CSVWriter{w: cw}
}

func (c *CSVWriter) writeHeader() error {
	if c.header {
		return nil
	}

	c.header = true

	return c.w.Write(CSVHeader)
}

// WriteCommit writes one row per refactoring of the commit.
func (c *CSVWriter) WriteCommit(commit *Commit) error {
	if err := c.writeHeader(); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, ref := range commit.Refactorings {
		if err := c.w.Write([]string{commit.SHA1, ref.Type, ref.Description}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	// Rows are flushed per commit so long runs show progress.
	c.w.Flush()

	return c.w.Error()
}

// Flush writes any buffered data.
func (c *CSVWriter) Flush() error {
	if err := c.writeHeader(); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	c.w.Flush()

	return c.w.Error()
}
