package refactoring

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Grammar errors.
var (
	ErrUnknownDescription = errors.New("unknown refactoring description")
	ErrInvalidDefinition  = errors.New("invalid grammar definition")
	ErrArgumentCount      = errors.New("wrong number of template arguments")
)

const placeholder = "%s"

// aggregateMask replaces aggregate groups when bucketing descriptions.
const aggregateMask = "*"

// Refactoring is one immutable grammar entry.
type Refactoring struct {
	ID          string
	DisplayName string
	Template    string
	// Aggregate holds the 1-based capture groups masked by Registry.Aggregate.
	Aggregate []int
	// Relationship is the coarse type the entry describes; zero when no
	// relationship type corresponds to it.
	Relationship RelationshipType

	pattern *regexp.Regexp
	args    int
}

// Pattern returns the compiled parse pattern.
func (r *Refactoring) Pattern() *regexp.Regexp { return r.pattern }

// Arity returns the number of template arguments.
func (r *Refactoring) Arity() int { return r.args }

// Format fills the template.
func (r *Refactoring) Format(args ...string) (string, error) {
	if len(args) != r.args {
		return "", fmt.Errorf("%w: %s wants %d, got %d", ErrArgumentCount, r.ID, r.args, len(args))
	}

	parts := strings.Split(r.Template, placeholder)

	var b strings.Builder

	for i, part := range parts {
		b.WriteString(part)

		if i < len(args) {
			b.WriteString(args[i])
		}
	}

	return b.String(), nil
}

func compile(def Definition) (*Refactoring, error) {
	if def.ID == "" || def.DisplayName == "" {
		return nil, fmt.Errorf("%w: missing id or display name", ErrInvalidDefinition)
	}

	if !strings.HasPrefix(def.Template, def.DisplayName+" ") {
		return nil, fmt.Errorf("%w: %s template must start with %q", ErrInvalidDefinition, def.ID, def.DisplayName)
	}

	parts := strings.Split(def.Template, placeholder)
	quoted := make([]string, len(parts))

	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}

	args := len(parts) - 1

	for _, g := range def.Aggregate {
		if g < 1 || g > args {
			return nil, fmt.Errorf("%w: %s aggregate group %d out of range", ErrInvalidDefinition, def.ID, g)
		}
	}

	pattern, err := regexp.Compile("^" + strings.Join(quoted, "(.+)") + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.ID, err)
	}

	return &Refactoring{
		ID:           def.ID,
		DisplayName:  def.DisplayName,
		Template:     def.Template,
		Aggregate:    append([]int(nil), def.Aggregate...),
		Relationship: def.Relationship,
		pattern:      pattern,
		args:         args,
	}, nil
}

// Registry is an immutable set of grammar entries. It is safe for concurrent use.
type Registry struct {
	entries []*Refactoring
	byID    map[string]*Refactoring
	byName  map[string]*Refactoring
}

// NewRegistry compiles definitions. IDs and display names must be unique.
func NewRegistry(defs []Definition) (*Registry, error) {
	g := &Registry{
		byID:   make(map[string]*Refactoring, len(defs)),
		byName: make(map[string]*Refactoring, len(defs)),
	}

	for _, def := range defs {
		r, err := compile(def)
		if err != nil {
			return nil, err
		}

		if _, dup := g.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidDefinition, r.ID)
		}

		if _, dup := g.byName[r.DisplayName]; dup {
			return nil, fmt.Errorf("%w: duplicate display name %q", ErrInvalidDefinition, r.DisplayName)
		}

		g.entries = append(g.entries, r)
		g.byID[r.ID] = r
		g.byName[r.DisplayName] = r
	}

	return g, nil
}

var defaultRegistry = mustRegistry(Catalog)

func mustRegistry(defs []Definition) *Registry {
	g, err := NewRegistry(defs)
	if err != nil {
		panic("refactoring: " + err.Error())
	}

	return g
}

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// Entries returns the entries in catalog order.
func (g *Registry) Entries() []*Refactoring {
	return g.entries
}

// ByID returns the entry with the given identifier.
func (g *Registry) ByID(id string) (*Refactoring, bool) {
	r, ok := g.byID[id]

	return r, ok
}

// ByDisplayName returns the entry with the given display name.
func (g *Registry) ByDisplayName(name string) (*Refactoring, bool) {
	r, ok := g.byName[name]

	return r, ok
}

// Parsed is a description matched against the grammar.
type Parsed struct {
	Refactoring *Refactoring
	Groups      []string
}

// Relationship returns the coarse type of the matched entry.
func (p Parsed) Relationship() RelationshipType {
	return p.Refactoring.Relationship
}

// Parse matches a description against the grammar. When several entries
// match, the one with the longest display name wins.
func (g *Registry) Parse(description string) (Parsed, error) {
	description = strings.TrimSpace(description)

	var best Parsed

	for _, r := range g.entries {
		m := r.pattern.FindStringSubmatch(description)
		if m == nil {
			continue
		}

		if best.Refactoring == nil || len(r.DisplayName) > len(best.Refactoring.DisplayName) {
			best = Parsed{Refactoring: r, Groups: m[1:]}
		}
	}

	if best.Refactoring == nil {
		return Parsed{}, fmt.Errorf("%w: %q", ErrUnknownDescription, description)
	}

	return best, nil
}

// Aggregate parses description and masks its aggregate groups with "*", so
// that many instances of the same refactoring fall into one bucket.
func (g *Registry) Aggregate(description string) (string, error) {
	p, err := g.Parse(description)
	if err != nil {
		return "", err
	}

	args := append([]string(nil), p.Groups...)
	for _, idx := range p.Refactoring.Aggregate {
		args[idx-1] = aggregateMask
	}

	return p.Refactoring.Format(args...)
}
