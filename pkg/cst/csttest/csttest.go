// Package csttest provides compact constructors for declaration trees used in tests.
package csttest

import (
	"strings"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
)

// Option adjusts a spec under construction.
type Option func(*cst.Spec)

// Body sets the content tokens from a whitespace-separated string.
func Body(src string) Option {
	return func(s *cst.Spec) {
		s.Tokens = strings.Fields(src)
	}
}

// Params sets the parameters from "name Type" pairs.
func Params(pairs ...string) Option {
	return func(s *cst.Spec) {
		for _, p := range pairs {
			name, typ, _ := strings.Cut(p, " ")
			s.Parameters = append(s.Parameters, cst.Parameter{Name: name, Type: typ})
		}
	}
}

// Extends sets the super type references.
func Extends(types ...string) Option {
	return func(s *cst.Spec) {
		s.SuperTypes = append(s.SuperTypes, types...)
	}
}

// Calls sets the invoked method names.
func Calls(names ...string) Option {
	return func(s *cst.Spec) {
		s.Calls = append(s.Calls, names...)
	}
}

// Stereotypes sets the modifier names.
func Stereotypes(names ...string) Option {
	return func(s *cst.Spec) {
		s.Stereotypes = append(s.Stereotypes, names...)
	}
}

// File sets the source file and a one-line location derived from line.
func File(path string, line int) Option {
	return func(s *cst.Spec) {
		s.Location = cst.Location{File: path, StartLine: line, StartColumn: 1, EndLine: line, EndColumn: 1}
	}
}

// Members appends child declarations.
func Members(children ...*cst.Spec) Option {
	return func(s *cst.Spec) {
		s.Children = append(s.Children, children...)
	}
}

// Type creates a top-level or nested type declaration.
func Type(kind cst.Kind, namespace, name string, opts ...Option) *cst.Spec {
	s := &cst.Spec{Kind: kind, Name: name, Namespace: namespace}
	s.Location.File = strings.ReplaceAll(namespace, ".", "/") + "/" + name + ".java"

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Class creates a class declaration.
func Class(namespace, name string, opts ...Option) *cst.Spec {
	return Type(cst.KindClass, namespace, name, opts...)
}

// Interface creates an interface declaration.
func Interface(namespace, name string, opts ...Option) *cst.Spec {
	return Type(cst.KindInterface, namespace, name, opts...)
}

// Method creates a method declaration.
func Method(name string, opts ...Option) *cst.Spec {
	s := &cst.Spec{Kind: cst.KindMethod, Name: name}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Constructor creates a constructor declaration. Its name should match the
// enclosing type.
func Constructor(name string, opts ...Option) *cst.Spec {
	s := &cst.Spec{Kind: cst.KindConstructor, Name: name}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Attribute creates a field declaration.
func Attribute(name, typ string, opts ...Option) *cst.Spec {
	s := &cst.Spec{Kind: cst.KindAttribute, Name: name, ReturnType: typ}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot builds a strict snapshot and panics on error; fixtures are static.
func Snapshot(roots ...*cst.Spec) *cst.Snapshot {
	b := cst.NewBuilder()
	for _, r := range roots {
		b.Add(r)
	}

	s, err := b.Build()
	if err != nil {
		panic("csttest: " + err.Error())
	}

	return s
}

// MustLookup returns the node with the given qualified name or panics.
func MustLookup(s *cst.Snapshot, qualifiedName string) *cst.Node {
	n, ok := s.Lookup(qualifiedName)
	if !ok {
		panic("csttest: no node " + qualifiedName)
	}

	return n
}
