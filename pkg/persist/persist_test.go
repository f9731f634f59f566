package persist_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/persist"
)

func sampleDocument() *cst.Document {
	return &cst.Document{
		Revision: "abc123",
		Roots: []*cst.Spec{{
			Kind:      cst.KindClass,
			Name:      "Foo",
			Namespace: "p",
			Location:  cst.Location{File: "p/Foo.java", StartLine: 1, EndLine: 9},
			Tokens:    []string{"class", "Foo", "{", "}"},
			Children: []*cst.Spec{{
				Kind:       cst.KindMethod,
				Name:       "run",
				Parameters: []cst.Parameter{{Name: "n", Type: "int"}},
				Tokens:     []string{"return", "n", ";"},
			}},
		}},
	}
}

func TestCodecForExtensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"snap.json", ".json"},
		{"snap.gob", ".gob"},
		{"dir/snap.JSON.lz4", ".json.lz4"},
		{"snap.gob.lz4", ".gob.lz4"},
	}

	for _, tt := range tests {
		codec, err := persist.CodecFor(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, codec.Extension())
	}

	_, err := persist.CodecFor("snap.txt")
	require.ErrorIs(t, err, persist.ErrUnknownExtension)
}

func TestLZ4CodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := persist.NewLZ4Codec(persist.NewJSONCodec())

	in := map[string][]string{"tokens": strings.Fields(strings.Repeat("a b c d ", 200))}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, in))

	var out map[string][]string

	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, in, out)
}

func TestLZ4CodecIncompressible(t *testing.T) {
	t.Parallel()

	codec := persist.NewLZ4Codec(persist.NewGobCodec())

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, "x"))

	var out string

	require.NoError(t, codec.Decode(&buf, &out))
	assert.Equal(t, "x", out)
}

func TestUncompressRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := persist.Uncompress([]byte{1, 2})
	require.ErrorIs(t, err, persist.ErrCorruptBlock)

	_, err = persist.Uncompress([]byte{10, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff})
	require.ErrorIs(t, err, persist.ErrCorruptBlock)
}

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"snap.json", "snap.json.lz4", "snap.gob", "snap.gob.lz4"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, persist.SaveDocument(path, sampleDocument()))

			doc, err := persist.LoadDocument(path)
			require.NoError(t, err)
			assert.Equal(t, sampleDocument(), doc)

			snap, err := persist.BuildSnapshot(doc)
			require.NoError(t, err)
			assert.Equal(t, 2, snap.Len())

			_, ok := snap.Lookup("p.Foo.run(int)")
			assert.True(t, ok)
		})
	}
}

func TestLoadDocumentValidatesJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"roots":[{"kind":"Widget","name":"x"}]}`), 0o600))

	_, err := persist.LoadDocument(path)
	require.ErrorIs(t, err, persist.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "kind")
}

func TestValidateDocument(t *testing.T) {
	t.Parallel()

	require.NoError(t, persist.ValidateDocument([]byte(`{"roots":[]}`)))
	require.ErrorIs(t, persist.ValidateDocument([]byte(`{}`)), persist.ErrInvalidDocument)
	require.ErrorIs(t, persist.ValidateDocument([]byte(`{"roots":[{"kind":"Class"}]}`)), persist.ErrInvalidDocument)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	t.Parallel()

	_, err := persist.LoadSnapshot(filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
}
