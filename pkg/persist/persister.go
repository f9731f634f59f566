package persist

import (
	"fmt"
	"os"
)

// Persister reads and writes one state type at file paths, choosing the
// codec from the extension unless one is fixed.
type Persister[T any] struct {
	codec Codec
}

// NewPersister creates a persister. A nil codec selects one per path with CodecFor.
func NewPersister[T any](codec Codec) *Persister[T] {
	return &Persister[T]{codec: codec}
}

func (p *Persister[T]) codecFor(path string) (Codec, error) {
	if p.codec != nil {
		return p.codec, nil
	}

	return CodecFor(path)
}

// Save writes state to path.
func (p *Persister[T]) Save(path string, state *T) error {
	codec, err := p.codecFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	err = codec.Encode(file, state)
	closeErr := file.Close()

	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("close state file: %w", closeErr)
	}

	return nil
}

// Load reads the state stored at path.
func (p *Persister[T]) Load(path string) (*T, error) {
	codec, err := p.codecFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	var state T

	if err := codec.Decode(file, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	return &state, nil
}
