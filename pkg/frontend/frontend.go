// Package frontend turns source files into declaration snapshots. It picks a
// language front end per file with enry, skips vendored, binary and oversized
// files, and caches parse results by content hash.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/refmine/pkg/alg/lru"
	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend/golang"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend/java"
)

// Default limits.
const (
	DefaultMaxFileSize  = 1 << 20
	DefaultCacheEntries = 4096
)

// Sentinel errors.
var (
	ErrUnsupported = errors.New("unsupported file")
	ErrTooLarge    = errors.New("file exceeds size limit")
	ErrBinary      = errors.New("binary file")
)

// Parser extracts the declarations of one source file.
type Parser interface {
	// Language returns the enry language name the parser handles.
	Language() string
	Parse(ctx context.Context, path string, content []byte) ([]*cst.Spec, error)
}

// File is one source file. Hash, when set, identifies the content for caching.
type File struct {
	Path    string
	Content []byte
	Hash    string
}

// Registry dispatches files to front ends.
type Registry struct {
	parsers     map[string]Parser
	maxFileSize int64
	cache       *lru.Cache[string, []*cst.Spec]
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxFileSize skips files larger than n bytes. Zero or less disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(r *Registry) {
		r.maxFileSize = n
	}
}

// WithCacheEntries sizes the parse cache. Zero or less disables caching.
func WithCacheEntries(n int) Option {
	return func(r *Registry) {
		if n <= 0 {
			r.cache = nil

			return
		}

		r.cache = lru.New(lru.WithMaxEntries[string, []*cst.Spec](n))
	}
}

// WithLanguages keeps only the front ends of the named languages.
func WithLanguages(names ...string) Option {
	return func(r *Registry) {
		if len(names) == 0 {
			return
		}

		keep := make(map[string]Parser, len(names))

		for _, name := range names {
			for lang, p := range r.parsers {
				if strings.EqualFold(lang, name) {
					keep[lang] = p
				}
			}
		}

		r.parsers = keep
	}
}

// WithParser registers an additional front end.
func WithParser(p Parser) Option {
	return func(r *Registry) {
		r.parsers[p.Language()] = p
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates a registry with the Java and Go front ends.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		parsers: map[string]Parser{
			java.Language:   java.New(),
			golang.Language: golang.New(),
		},
		maxFileSize: DefaultMaxFileSize,
		cache:       lru.New(lru.WithMaxEntries[string, []*cst.Spec](DefaultCacheEntries)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}

	return r.logger
}

// Languages returns the supported language names, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.parsers))
	for lang := range r.parsers {
		out = append(out, lang)
	}

	sort.Strings(out)

	return out
}

// Detect returns the front end for path, or false when the file is vendored
// or in an unsupported language. content may be nil.
func (r *Registry) Detect(path string, content []byte) (Parser, bool) {
	if enry.IsVendor(path) {
		return nil, false
	}

	lang := enry.GetLanguage(filepath.Base(path), nil)
	if lang == "" && content != nil {
		lang = enry.GetLanguage(filepath.Base(path), content)
	}

	p, ok := r.parsers[lang]

	return p, ok
}

// Supports reports whether path would be parsed.
func (r *Registry) Supports(path string) bool {
	_, ok := r.Detect(path, nil)

	return ok
}

// ParseFile returns the declarations of f.
func (r *Registry) ParseFile(ctx context.Context, f File) ([]*cst.Spec, error) {
	p, ok := r.Detect(f.Path, f.Content)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, f.Path)
	}

	if r.maxFileSize > 0 && int64(len(f.Content)) > r.maxFileSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, f.Path, len(f.Content))
	}

	if enry.IsBinary(f.Content) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, f.Path)
	}

	// The path is part of the key: locations and Go namespaces depend on it.
	key := ""
	if f.Hash != "" && r.cache != nil {
		key = f.Hash + "\x00" + f.Path

		if specs, hit := r.cache.Get(key); hit {
			return specs, nil
		}
	}

	specs, err := p.Parse(ctx, f.Path, f.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}

	if key != "" {
		r.cache.Put(key, specs)
	}

	return specs, nil
}

// Parse parses every supported file. Files that cannot be parsed are logged
// and skipped; only context cancellation fails the call.
func (r *Registry) Parse(ctx context.Context, files []File) ([]*cst.Spec, error) {
	var out []*cst.Spec

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		specs, err := r.ParseFile(ctx, f)
		if err != nil {
			if !errors.Is(err, ErrUnsupported) {
				r.log().Warn("file skipped", "path", f.Path, "error", err)
			}

			continue
		}

		out = append(out, specs...)
	}

	return out, nil
}

// BuildSnapshot parses files and assembles their snapshot.
func (r *Registry) BuildSnapshot(ctx context.Context, files []File) (*cst.Snapshot, error) {
	specs, err := r.Parse(ctx, files)
	if err != nil {
		return nil, err
	}

	return r.build(specs)
}

// Document parses files into a serializable snapshot document.
func (r *Registry) Document(ctx context.Context, revision string, files []File) (*cst.Document, error) {
	specs, err := r.Parse(ctx, files)
	if err != nil {
		return nil, err
	}

	return &cst.Document{Revision: revision, Roots: specs}, nil
}

func (r *Registry) build(specs []*cst.Spec) (*cst.Snapshot, error) {
	b := cst.NewBuilder(cst.Lenient())
	for _, s := range specs {
		b.Add(s)
	}

	snap, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	if renamed := b.Renamed(); len(renamed) > 0 {
		r.log().Debug("duplicate declarations disambiguated", "count", len(renamed), "first", renamed[0])
	}

	return snap, nil
}

// CacheStats returns the parse cache counters; zero when caching is disabled.
func (r *Registry) CacheStats() lru.Stats {
	if r.cache == nil {
		return lru.Stats{}
	}

	return r.cache.Stats()
}
