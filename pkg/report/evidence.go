package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Evidence is a token level diff between the two sides of a relationship.
type Evidence struct {
	Equal    int    `json:"equal"    yaml:"equal"`
	Inserted int    `json:"inserted" yaml:"inserted"`
	Deleted  int    `json:"deleted"  yaml:"deleted"`
	Patch    string `json:"patch"    yaml:"patch"`
}

// Diff compares two token sequences. The patch marks removed runs as
// [-...-] and added runs as {+...+}.
func Diff(before, after []string) *Evidence {
	dmp := diffmatchpatch.New()

	// One token per line lets the line mode diff work on whole tokens.
	left, right, lines := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(left, right, false), lines)

	ev := &Evidence{}

	var patch []string

	for _, d := range diffs {
		tokens := strings.Fields(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ev.Equal += len(tokens)
			patch = append(patch, strings.Join(tokens, " "))
		case diffmatchpatch.DiffDelete:
			ev.Deleted += len(tokens)
			patch = append(patch, "[-"+strings.Join(tokens, " ")+"-]")
		case diffmatchpatch.DiffInsert:
			ev.Inserted += len(tokens)
			patch = append(patch, "{+"+strings.Join(tokens, " ")+"+}")
		}
	}

	ev.Patch = strings.Join(patch, " ")

	return ev
}

func joinLines(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}

	return strings.Join(tokens, "\n") + "\n"
}
