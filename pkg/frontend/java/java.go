// Package java extracts declaration specs from Java sources.
package java

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/java"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend/tsnode"
)

// Language is the enry language name handled by this front end.
const Language = "Java"

// Literal node types kept as single tokens.
var atomic = []string{"string_literal", "character_literal", "text_block"}

var grammar = sync.OnceValue(func() *tsnode.Parser {
	return tsnode.NewParser(java.GetLanguage)
})

// Parser is the Java front end.
type Parser struct{}

// New creates a Java parser.
func New() *Parser { return &Parser{} }

// Language implements frontend.Parser.
func (p *Parser) Language() string { return Language }

// Parse returns the top-level type declarations of a compilation unit.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) ([]*cst.Spec, error) {
	var specs []*cst.Spec

	err := grammar().Parse(ctx, content, func(root sitter.Node) {
		w := &walker{path: path, src: content}
		specs = w.compilationUnit(root)
	})
	if err != nil {
		return nil, err
	}

	return specs, nil
}

type walker struct {
	path string
	src  []byte
	pkg  string
}

func (w *walker) compilationUnit(root sitter.Node) []*cst.Spec {
	children := tsnode.Named(root)

	for _, c := range children {
		if c.Type() != "package_declaration" {
			continue
		}

		for _, id := range tsnode.Named(c) {
			if id.Type() == "scoped_identifier" || id.Type() == "identifier" {
				w.pkg = tsnode.Text(id, w.src)
			}
		}
	}

	var out []*cst.Spec

	for _, c := range children {
		if spec := w.typeDeclaration(c); spec != nil {
			out = append(out, spec)
		}
	}

	return out
}

func (w *walker) typeDeclaration(n sitter.Node) *cst.Spec {
	var kind cst.Kind

	switch n.Type() {
	case "class_declaration", "record_declaration":
		kind = cst.KindClass
	case "interface_declaration", "annotation_type_declaration":
		kind = cst.KindInterface
	case "enum_declaration":
		kind = cst.KindEnum
	default:
		return nil
	}

	name := tsnode.FieldText(n, "name", w.src)
	if name == "" {
		return nil
	}

	spec := &cst.Spec{
		Kind:        kind,
		Name:        name,
		Namespace:   w.pkg,
		Location:    tsnode.Location(w.path, n),
		Stereotypes: w.modifiers(n),
		SuperTypes:  w.superTypes(n),
	}

	if body, ok := tsnode.Field(n, "body"); ok {
		spec.Tokens = tsnode.Tokens(body, w.src, atomic...)
		spec.Children = w.members(body)
	}

	return spec
}

func (w *walker) members(body sitter.Node) []*cst.Spec {
	var out []*cst.Spec

	for _, c := range tsnode.Named(body) {
		switch c.Type() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration",
			"annotation_type_element_declaration":
			if m := w.method(c); m != nil {
				out = append(out, m)
			}
		case "field_declaration", "constant_declaration":
			out = append(out, w.fields(c)...)
		case "enum_body_declarations":
			out = append(out, w.members(c)...)
		default:
			if t := w.typeDeclaration(c); t != nil {
				out = append(out, t)
			}
		}
	}

	return out
}

func (w *walker) method(n sitter.Node) *cst.Spec {
	name := tsnode.FieldText(n, "name", w.src)
	if name == "" {
		return nil
	}

	kind := cst.KindMethod
	if n.Type() != "method_declaration" && n.Type() != "annotation_type_element_declaration" {
		kind = cst.KindConstructor
	}

	spec := &cst.Spec{
		Kind:        kind,
		Name:        name,
		Location:    tsnode.Location(w.path, n),
		Stereotypes: w.modifiers(n),
		ReturnType:  tsnode.FieldText(n, "type", w.src),
	}

	params, hasParams := tsnode.Field(n, "parameters")
	if hasParams {
		spec.Parameters = w.parameters(params)
	}

	body, hasBody := tsnode.Field(n, "body")
	if hasBody {
		spec.Tokens = tsnode.Tokens(body, w.src, atomic...)
		spec.Calls = w.calls(body)

		return spec
	}

	// A body-less declaration is abstract unless native; its signature
	// types stand in for the body.
	if !slices.Contains(spec.Stereotypes, "native") && !slices.Contains(spec.Stereotypes, "abstract") {
		spec.Stereotypes = append(spec.Stereotypes, "abstract")
	}

	if t, ok := tsnode.Field(n, "type"); ok {
		spec.Tokens = tsnode.Tokens(t, w.src, atomic...)
	}

	if hasParams {
		spec.Tokens = append(spec.Tokens, tsnode.Tokens(params, w.src, atomic...)...)
	}

	return spec
}

func (w *walker) parameters(n sitter.Node) []cst.Parameter {
	var out []cst.Parameter

	for _, p := range tsnode.Named(n) {
		switch p.Type() {
		case "formal_parameter":
			typ := tsnode.FieldText(p, "type", w.src)
			if dims, ok := tsnode.Field(p, "dimensions"); ok {
				typ += tsnode.Text(dims, w.src)
			}

			out = append(out, cst.Parameter{Name: tsnode.FieldText(p, "name", w.src), Type: typ})
		case "spread_parameter":
			var typ, name string

			for _, c := range tsnode.Named(p) {
				switch c.Type() {
				case "modifiers":
				case "variable_declarator":
					name = tsnode.FieldText(c, "name", w.src)
				default:
					typ = tsnode.Text(c, w.src)
				}
			}

			out = append(out, cst.Parameter{Name: name, Type: typ + "..."})
		}
	}

	return out
}

func (w *walker) fields(n sitter.Node) []*cst.Spec {
	typeNode, _ := tsnode.Field(n, "type")
	typ := tsnode.Text(typeNode, w.src)
	typeTokens := tsnode.Tokens(typeNode, w.src, atomic...)
	mods := w.modifiers(n)

	var out []*cst.Spec

	for _, d := range tsnode.Named(n) {
		if d.Type() != "variable_declarator" {
			continue
		}

		name := tsnode.FieldText(d, "name", w.src)
		if name == "" {
			continue
		}

		out = append(out, &cst.Spec{
			Kind:        cst.KindAttribute,
			Name:        name,
			Location:    tsnode.Location(w.path, n),
			Stereotypes: slices.Clone(mods),
			ReturnType:  typ,
			Tokens:      append(slices.Clone(typeTokens), tsnode.Tokens(d, w.src, atomic...)...),
		})
	}

	return out
}

// modifiers returns the keyword modifiers of a declaration; annotations are skipped.
func (w *walker) modifiers(n sitter.Node) []string {
	mods, ok := tsnode.FirstOfType(n, "modifiers")
	if !ok {
		return nil
	}

	var out []string

	for i := range mods.ChildCount() {
		c := mods.Child(i)
		if strings.Contains(c.Type(), "annotation") {
			continue
		}

		if txt := strings.TrimSpace(tsnode.Text(c, w.src)); txt != "" {
			out = append(out, txt)
		}
	}

	return out
}

func (w *walker) superTypes(n sitter.Node) []string {
	var out []string

	for _, c := range tsnode.Named(n) {
		switch c.Type() {
		case "superclass", "super_interfaces", "extends_interfaces":
			tsnode.Walk(c, func(t sitter.Node) bool {
				switch t.Type() {
				case "type_identifier", "scoped_type_identifier":
					out = append(out, tsnode.Text(t, w.src))

					return false
				case "generic_type":
					if base := tsnode.Named(t); len(base) > 0 {
						out = append(out, tsnode.Text(base[0], w.src))
					}

					return false
				default:
					return true
				}
			})
		}
	}

	return tsnode.Dedup(out)
}

func (w *walker) calls(body sitter.Node) []string {
	var out []string

	tsnode.Walk(body, func(c sitter.Node) bool {
		if c.Type() == "method_invocation" {
			out = append(out, tsnode.FieldText(c, "name", w.src))
		}

		return true
	})

	return tsnode.Dedup(out)
}
