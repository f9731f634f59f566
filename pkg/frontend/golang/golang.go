// Package golang extracts declaration specs from Go sources.
//
// Structs, interfaces and other named types become types; functions and
// methods become methods; struct fields become attributes. Methods are
// attached to their receiver type through cst.Spec.Owner since Go declares
// them outside the type. Embedded types are recorded as super types.
package golang

import (
	"context"
	"path"
	"strings"
	"sync"

	golang "github.com/alexaandru/go-sitter-forest/go"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend/tsnode"
)

// Language is the enry language name handled by this front end.
const Language = "Go"

var atomic = []string{"interpreted_string_literal", "raw_string_literal", "rune_literal"}

var grammar = sync.OnceValue(func() *tsnode.Parser {
	return tsnode.NewParser(golang.GetLanguage)
})

// Parser is the Go front end.
type Parser struct{}

// New creates a Go parser.
func New() *Parser { return &Parser{} }

// Language implements frontend.Parser.
func (p *Parser) Language() string { return Language }

// Parse returns the declarations of one Go file. The namespace is the
// file's directory, or the package name for files at the root.
func (p *Parser) Parse(ctx context.Context, file string, content []byte) ([]*cst.Spec, error) {
	var specs []*cst.Spec

	err := grammar().Parse(ctx, content, func(root sitter.Node) {
		w := &walker{path: file, src: content}
		specs = w.sourceFile(root)
	})
	if err != nil {
		return nil, err
	}

	return specs, nil
}

type walker struct {
	path      string
	src       []byte
	namespace string
}

func (w *walker) sourceFile(root sitter.Node) []*cst.Spec {
	children := tsnode.Named(root)

	w.namespace = path.Dir(w.path)
	if w.namespace == "." || w.namespace == "/" {
		for _, c := range children {
			if c.Type() == "package_clause" {
				if id, ok := tsnode.FirstOfType(c, "package_identifier"); ok {
					w.namespace = tsnode.Text(id, w.src)
				}
			}
		}
	}

	var out []*cst.Spec

	for _, c := range children {
		switch c.Type() {
		case "type_declaration":
			for _, ts := range tsnode.Named(c) {
				if ts.Type() == "type_spec" {
					if spec := w.typeSpec(ts); spec != nil {
						out = append(out, spec)
					}
				}
			}
		case "function_declaration":
			if fn := w.function(c); fn != nil {
				fn.Namespace = w.namespace
				out = append(out, fn)
			}
		case "method_declaration":
			if m := w.function(c); m != nil {
				m.Namespace = w.namespace
				m.Owner = w.receiver(c)
				out = append(out, m)
			}
		}
	}

	return out
}

func (w *walker) typeSpec(n sitter.Node) *cst.Spec {
	name := tsnode.FieldText(n, "name", w.src)
	typeNode, ok := tsnode.Field(n, "type")

	if name == "" || !ok {
		return nil
	}

	spec := &cst.Spec{
		Kind:      cst.KindClass,
		Name:      name,
		Namespace: w.namespace,
		Location:  tsnode.Location(w.path, n),
		Tokens:    tsnode.Tokens(typeNode, w.src, atomic...),
	}

	switch typeNode.Type() {
	case "struct_type":
		w.structBody(spec, typeNode)
	case "interface_type":
		spec.Kind = cst.KindInterface
		w.interfaceBody(spec, typeNode)
	}

	return spec
}

func (w *walker) structBody(spec *cst.Spec, st sitter.Node) {
	list, ok := tsnode.FirstOfType(st, "field_declaration_list")
	if !ok {
		return
	}

	for _, f := range tsnode.Named(list) {
		if f.Type() != "field_declaration" {
			continue
		}

		typeNode, _ := tsnode.Field(f, "type")
		typ := tsnode.Text(typeNode, w.src)

		var names []string

		for _, c := range tsnode.Named(f) {
			if c.Type() == "field_identifier" {
				names = append(names, tsnode.Text(c, w.src))
			}
		}

		if len(names) == 0 {
			spec.SuperTypes = append(spec.SuperTypes, baseType(typ))

			continue
		}

		for _, name := range names {
			spec.Children = append(spec.Children, &cst.Spec{
				Kind:       cst.KindAttribute,
				Name:       name,
				Location:   tsnode.Location(w.path, f),
				ReturnType: typ,
				Tokens:     tsnode.Tokens(f, w.src, atomic...),
			})
		}
	}
}

func (w *walker) interfaceBody(spec *cst.Spec, it sitter.Node) {
	for _, c := range tsnode.Named(it) {
		switch c.Type() {
		case "method_elem", "method_spec":
			name := tsnode.FieldText(c, "name", w.src)
			if name == "" {
				continue
			}

			m := &cst.Spec{
				Kind:        cst.KindMethod,
				Name:        name,
				Location:    tsnode.Location(w.path, c),
				Stereotypes: []string{"abstract"},
				ReturnType:  tsnode.FieldText(c, "result", w.src),
			}

			if params, ok := tsnode.Field(c, "parameters"); ok {
				m.Parameters = w.parameters(params)
				m.Tokens = tsnode.Tokens(params, w.src, atomic...)
			}

			if result, ok := tsnode.Field(c, "result"); ok {
				m.Tokens = append(m.Tokens, tsnode.Tokens(result, w.src, atomic...)...)
			}

			spec.Children = append(spec.Children, m)
		case "type_elem", "constraint_elem", "type_identifier", "qualified_type":
			spec.SuperTypes = append(spec.SuperTypes, baseType(tsnode.Text(c, w.src)))
		}
	}
}

func (w *walker) function(n sitter.Node) *cst.Spec {
	name := tsnode.FieldText(n, "name", w.src)
	if name == "" {
		return nil
	}

	spec := &cst.Spec{
		Kind:       cst.KindMethod,
		Name:       name,
		Location:   tsnode.Location(w.path, n),
		ReturnType: tsnode.FieldText(n, "result", w.src),
	}

	if params, ok := tsnode.Field(n, "parameters"); ok {
		spec.Parameters = w.parameters(params)
	}

	if body, ok := tsnode.Field(n, "body"); ok {
		spec.Tokens = tsnode.Tokens(body, w.src, atomic...)
		spec.Calls = w.calls(body)
	}

	return spec
}

// receiver returns the qualified name of a method's receiver type.
func (w *walker) receiver(n sitter.Node) string {
	list, ok := tsnode.Field(n, "receiver")
	if !ok {
		return ""
	}

	for _, p := range tsnode.Named(list) {
		if p.Type() != "parameter_declaration" {
			continue
		}

		if t := baseType(tsnode.FieldText(p, "type", w.src)); t != "" {
			return w.namespace + "." + t
		}
	}

	return ""
}

func (w *walker) parameters(list sitter.Node) []cst.Parameter {
	var out []cst.Parameter

	for _, p := range tsnode.Named(list) {
		typ := tsnode.FieldText(p, "type", w.src)

		switch p.Type() {
		case "variadic_parameter_declaration":
			typ = "..." + typ
		case "parameter_declaration":
		default:
			continue
		}

		var names []string

		for _, c := range tsnode.Named(p) {
			if c.Type() == "identifier" {
				names = append(names, tsnode.Text(c, w.src))
			}
		}

		if len(names) == 0 {
			names = []string{""}
		}

		for _, name := range names {
			out = append(out, cst.Parameter{Name: name, Type: typ})
		}
	}

	return out
}

func (w *walker) calls(body sitter.Node) []string {
	var out []string

	tsnode.Walk(body, func(c sitter.Node) bool {
		if c.Type() != "call_expression" {
			return true
		}

		fn, ok := tsnode.Field(c, "function")
		if !ok {
			return true
		}

		switch fn.Type() {
		case "identifier":
			out = append(out, tsnode.Text(fn, w.src))
		case "selector_expression":
			out = append(out, tsnode.FieldText(fn, "field", w.src))
		}

		return true
	})

	return tsnode.Dedup(out)
}

// baseType strips pointers, package qualifiers and type arguments: *pkg.T[K] -> T.
func baseType(t string) string {
	t = strings.TrimLeft(strings.TrimSpace(t), "*")

	if i := strings.IndexByte(t, '['); i >= 0 {
		t = t[:i]
	}

	if i := strings.LastIndexByte(t, '.'); i >= 0 {
		t = t[i+1:]
	}

	return t
}
