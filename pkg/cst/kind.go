package cst

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a kind name does not match any Kind.
var ErrUnknownKind = errors.New("unknown node kind")

// Kind classifies a declaration node.
type Kind uint8

// Node kinds.
const (
	KindClass Kind = iota + 1
	KindInterface
	KindEnum
	KindMethod
	KindAttribute
	KindConstructor
)

var kindNames = map[Kind]string{
	KindClass:       "Class",
	KindInterface:   "Interface",
	KindEnum:        "Enum",
	KindMethod:      "Method",
	KindAttribute:   "Attribute",
	KindConstructor: "Constructor",
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindClass, KindInterface, KindEnum, KindMethod, KindAttribute, KindConstructor}
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	_, ok := kindNames[k]

	return ok
}

// IsType reports whether the kind declares a type.
func (k Kind) IsType() bool {
	return k == KindClass || k == KindInterface || k == KindEnum
}

// IsMethodLike reports whether the kind declares executable code with parameters.
func (k Kind) IsMethodLike() bool {
	return k == KindMethod || k == KindConstructor
}

// ParseKind converts a kind name (case-insensitive) back to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// Stereotype is a bit set of structural modifiers.
type Stereotype uint8

// Stereotypes.
const (
	Abstract Stereotype = 1 << iota
	Static
	Final
	TypeConstructor
	Anonymous
)

var stereotypeNames = []struct {
	flag Stereotype
	name string
}{
	{Abstract, "abstract"},
	{Static, "static"},
	{Final, "final"},
	{TypeConstructor, "type-constructor"},
	{Anonymous, "anonymous"},
}

// Has reports whether every flag in other is set.
func (s Stereotype) Has(other Stereotype) bool {
	return s&other == other
}

// Names returns the names of the set flags in a fixed order.
func (s Stereotype) Names() []string {
	var names []string

	for _, entry := range stereotypeNames {
		if s.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}

	return names
}

// ParseStereotypes folds stereotype names into a bit set. Unknown names are ignored.
func ParseStereotypes(names []string) Stereotype {
	var s Stereotype

	for _, name := range names {
		for _, entry := range stereotypeNames {
			if strings.EqualFold(entry.name, name) {
				s |= entry.flag
			}
		}
	}

	return s
}
