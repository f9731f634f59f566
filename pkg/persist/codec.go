// Package persist reads and writes snapshot documents and other state with
// pluggable codecs: JSON, gob, and LZ4 block compression over either.
package persist

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	JSONExtension = ".json"
	GobExtension  = ".gob"
	LZ4Extension  = ".lz4"
)

const defaultIndent = "  "

// lz4HeaderSize is the length prefix holding the uncompressed size.
const lz4HeaderSize = 8

// maxUncompressed bounds the size a compressed file may claim.
const maxUncompressed = 1 << 31

// Codec errors.
var (
	ErrUnknownExtension = errors.New("unknown file extension")
	ErrCorruptBlock     = errors.New("corrupt lz4 block")
)

// Codec serializes state.
type Codec interface {
	Encode(w io.Writer, state any) error
	Decode(r io.Reader, state any) error
	// Extension returns the file extension, dot included.
	Extension() string
}

// JSONCodec encodes JSON, indented when Indent is set.
type JSONCodec struct {
	Indent string
}

// NewJSONCodec creates a JSON codec with two-space indentation.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode writes state as JSON.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	enc := json.NewEncoder(w)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}

	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode reads JSON into state.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	if err := json.NewDecoder(r).Decode(state); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *JSONCodec) Extension() string { return JSONExtension }

// GobCodec encodes gob.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec { return &GobCodec{} }

// Encode writes state as gob.
func (c *GobCodec) Encode(w io.Writer, state any) error {
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode reads gob into state.
func (c *GobCodec) Decode(r io.Reader, state any) error {
	if err := gob.NewDecoder(r).Decode(state); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *GobCodec) Extension() string { return GobExtension }

// LZ4Codec compresses the output of an inner codec as a single LZ4 block
// prefixed with the uncompressed length.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec wraps inner with LZ4 compression.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	var raw bytes.Buffer

	if err := c.Inner.Encode(&raw, state); err != nil {
		return err
	}

	src := raw.Bytes()
	dst := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint64(dst, uint64(len(src)))

	n, err := lz4.CompressBlock(src, dst[lz4HeaderSize:], nil)
	if err != nil {
		return fmt.Errorf("lz4 compress: %w", err)
	}

	// Incompressible input is stored as is; a zero block length marks it.
	if n == 0 {
		binary.LittleEndian.PutUint64(dst, uint64(len(src))|1<<63)
		dst = append(dst[:lz4HeaderSize], src...)
	} else {
		dst = dst[:lz4HeaderSize+n]
	}

	if _, err := w.Write(dst); err != nil {
		return fmt.Errorf("lz4 write: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("lz4 read: %w", err)
	}

	raw, err := Uncompress(data)
	if err != nil {
		return err
	}

	return c.Inner.Decode(bytes.NewReader(raw), state)
}

// Extension implements Codec.
func (c *LZ4Codec) Extension() string { return c.Inner.Extension() + LZ4Extension }

// Uncompress reverses the LZ4Codec framing.
func Uncompress(data []byte) ([]byte, error) {
	if len(data) < lz4HeaderSize {
		return nil, fmt.Errorf("%w: short header", ErrCorruptBlock)
	}

	header := binary.LittleEndian.Uint64(data)
	stored := header&(1<<63) != 0
	size := header &^ (1 << 63)

	if size > maxUncompressed {
		return nil, fmt.Errorf("%w: claimed size %d", ErrCorruptBlock, size)
	}

	if stored {
		return data[lz4HeaderSize:], nil
	}

	out := make([]byte, size)

	n, err := lz4.UncompressBlock(data[lz4HeaderSize:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
	}

	if uint64(n) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptBlock, n, size)
	}

	return out, nil
}

// CodecFor picks a codec from a file name: ".json", ".gob", optionally
// followed by ".lz4".
func CodecFor(path string) (Codec, error) {
	name := strings.ToLower(filepath.Base(path))

	compressed := strings.HasSuffix(name, LZ4Extension)
	name = strings.TrimSuffix(name, LZ4Extension)

	var codec Codec

	switch filepath.Ext(name) {
	case JSONExtension:
		codec = NewJSONCodec()
	case GobExtension:
		codec = NewGobCodec()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, path)
	}

	if compressed {
		return NewLZ4Codec(codec), nil
	}

	return codec, nil
}
