package persist

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
)

//go:embed snapshot-schema.json
var snapshotSchema []byte

// ErrInvalidDocument is returned when a snapshot document fails schema validation.
var ErrInvalidDocument = errors.New("invalid snapshot document")

var schemaLoader = gojsonschema.NewBytesLoader(snapshotSchema)

// ValidateDocument checks JSON data against the snapshot document schema.
func ValidateDocument(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.Field()+": "+e.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// SaveDocument writes doc to path with the codec implied by its extension.
func SaveDocument(path string, doc *cst.Document) error {
	return NewPersister[cst.Document](nil).Save(path, doc)
}

// LoadDocument reads a snapshot document. JSON documents, compressed or not,
// are validated against the schema before decoding.
func LoadDocument(path string) (*cst.Document, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(codec.Extension(), JSONExtension) {
		if err := validateFile(path); err != nil {
			return nil, err
		}
	}

	return NewPersister[cst.Document](codec).Load(path)
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if strings.HasSuffix(strings.ToLower(path), LZ4Extension) {
		data, err = Uncompress(data)
		if err != nil {
			return err
		}
	}

	if err := ValidateDocument(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// LoadSnapshot reads a document and builds its snapshot leniently.
func LoadSnapshot(path string) (*cst.Snapshot, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}

	return BuildSnapshot(doc)
}

// BuildSnapshot builds the snapshot described by doc.
func BuildSnapshot(doc *cst.Document) (*cst.Snapshot, error) {
	b := cst.NewBuilder(cst.Lenient())
	for _, root := range doc.Roots {
		b.Add(root)
	}

	snap, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	return snap, nil
}
