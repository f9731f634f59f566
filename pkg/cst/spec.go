package cst

// Location is the source span of a declaration. Lines and columns are 1-based.
type Location struct {
	File        string `json:"file"                  yaml:"file"`
	StartLine   int    `json:"start_line"            yaml:"start_line"`
	StartColumn int    `json:"start_column"          yaml:"start_column"`
	EndLine     int    `json:"end_line"              yaml:"end_line"`
	EndColumn   int    `json:"end_column"            yaml:"end_column"`
	StartOffset int    `json:"start_offset,omitempty" yaml:"start_offset,omitempty"`
	EndOffset   int    `json:"end_offset,omitempty"   yaml:"end_offset,omitempty"`
}

// Parameter describes one formal parameter of a method-like declaration.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Spec is the plain-data description of one declaration and its members.
// Front ends produce Spec trees; Builder turns them into snapshot nodes.
// Specs hold no snapshot identity, so a cached Spec tree can be replayed
// into any number of snapshots.
type Spec struct {
	Kind        Kind        `json:"kind"                  yaml:"kind"`
	Name        string      `json:"name"                  yaml:"name"`
	Namespace   string      `json:"namespace,omitempty"   yaml:"namespace,omitempty"`
	Location    Location    `json:"location"              yaml:"location"`
	Stereotypes []string    `json:"stereotypes,omitempty" yaml:"stereotypes,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	ReturnType  string      `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	SuperTypes  []string    `json:"super_types,omitempty" yaml:"super_types,omitempty"`
	Calls       []string    `json:"calls,omitempty"       yaml:"calls,omitempty"`
	Tokens      []string    `json:"tokens,omitempty"      yaml:"tokens,omitempty"`
	Children    []*Spec     `json:"children,omitempty"    yaml:"children,omitempty"`
	// Owner is the qualified name of the type a top-level spec belongs to
	// when it is declared outside the type body, as Go methods are.
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`
}

// Document is the serialized form of a snapshot: the top-level specs of every file.
type Document struct {
	Revision string  `json:"revision,omitempty" yaml:"revision,omitempty"`
	Roots    []*Spec `json:"roots"              yaml:"roots"`
}

// Count returns the number of specs in the tree rooted at s.
func (s *Spec) Count() int {
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}

	return n
}
