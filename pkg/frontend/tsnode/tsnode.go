// Package tsnode holds tree-sitter helpers shared by the language front ends.
package tsnode

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/safeconv"
)

// ErrNoRoot is returned when tree-sitter yields no root node.
var ErrNoRoot = errors.New("parse produced no root node")

// Parser is a pool of tree-sitter parsers for one grammar.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a parser pool from a grammar's GetLanguage function.
func NewParser(getLanguage func() unsafe.Pointer) *Parser {
	lang := sitter.NewLanguage(getLanguage())

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(lang)

				return p
			},
		},
	}
}

// Parse parses content and hands the root to visit. The tree is released
// when visit returns, so visit must not retain nodes.
func (p *Parser) Parse(ctx context.Context, content []byte, visit func(root sitter.Node)) error {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return ErrNoRoot
	}
	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return fmt.Errorf("tree-sitter: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return ErrNoRoot
	}

	visit(root)

	return nil
}

// Text returns the source text of n.
func Text(n sitter.Node, src []byte) string {
	if n.IsNull() {
		return ""
	}

	start, end := safeconv.MustUintToInt(n.StartByte()), safeconv.MustUintToInt(n.EndByte())
	if start > end || end > len(src) {
		return ""
	}

	return string(src[start:end])
}

// Field returns the child bound to a grammar field, if present.
func Field(n sitter.Node, name string) (sitter.Node, bool) {
	c := n.ChildByFieldName(name)

	return c, !c.IsNull()
}

// FieldText returns the text of a field child, or "".
func FieldText(n sitter.Node, name string, src []byte) string {
	if c, ok := Field(n, name); ok {
		return Text(c, src)
	}

	return ""
}

// Named returns the named children of n.
func Named(n sitter.Node) []sitter.Node {
	out := make([]sitter.Node, 0, n.NamedChildCount())
	for i := range n.NamedChildCount() {
		out = append(out, n.NamedChild(i))
	}

	return out
}

// FirstOfType returns the first named child of the given type.
func FirstOfType(n sitter.Node, typ string) (sitter.Node, bool) {
	for _, c := range Named(n) {
		if c.Type() == typ {
			return c, true
		}
	}

	return sitter.Node{}, false
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n sitter.Node, fn func(sitter.Node) bool) {
	if n.IsNull() || !fn(n) {
		return
	}

	for i := range n.ChildCount() {
		Walk(n.Child(i), fn)
	}
}

// Tokens returns the leaf tokens of n in source order. Comments are dropped
// and nodes whose type is listed in atomic become a single token.
func Tokens(n sitter.Node, src []byte, atomic ...string) []string {
	var out []string

	Walk(n, func(c sitter.Node) bool {
		typ := c.Type()

		switch {
		case strings.Contains(typ, "comment"):
			return false
		case c.ChildCount() == 0 || slices.Contains(atomic, typ):
			if tok := strings.TrimSpace(Text(c, src)); tok != "" {
				out = append(out, tok)
			}

			return false
		default:
			return true
		}
	})

	return out
}

// Location returns the 1-based source span of n.
func Location(file string, n sitter.Node) cst.Location {
	start, end := n.StartPoint(), n.EndPoint()

	return cst.Location{
		File:        file,
		StartLine:   safeconv.MustUintToInt(start.Row) + 1,
		StartColumn: safeconv.MustUintToInt(start.Column) + 1,
		EndLine:     safeconv.MustUintToInt(end.Row) + 1,
		EndColumn:   safeconv.MustUintToInt(end.Column) + 1,
		StartOffset: safeconv.MustUintToInt(n.StartByte()),
		EndOffset:   safeconv.MustUintToInt(n.EndByte()),
	}
}

// Dedup returns names without repeats, first occurrence order.
func Dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]

	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}

		seen[n] = true
		out = append(out, n)
	}

	return out
}
