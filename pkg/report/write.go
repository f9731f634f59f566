package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const jsonIndent = "  "

// Write renders a complete report in the given format.
func Write(w io.Writer, format Format, r *Report) error {
	switch format {
	case FormatCSV:
		cw := NewCSVWriter(w)

		for i := range r.Commits {
			if err := cw.WriteCommit(&r.Commits[i]); err != nil {
				return err
			}
		}

		return cw.Flush()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", jsonIndent)

		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(len(jsonIndent))

		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	case FormatTable:
		return WriteSummary(w, r, false)
	case FormatHTML:
		return WriteChart(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
