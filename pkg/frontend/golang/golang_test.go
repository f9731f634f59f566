package golang_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend/golang"
)

const source = `package store

import "fmt"

// Store keeps items.
type Store struct {
	sync.Mutex
	items    map[string]int
	min, max int
}

type Reader interface {
	io.Closer
	Get(key string) (int, bool)
}

func New() *Store {
	return &Store{items: make(map[string]int)}
}

func (s *Store) Get(key string) (int, bool) {
	v, ok := s.items[key]
	fmt.Println("get", key)
	return v, ok
}

func (s Store) Sum(values ...int) int {
	return s.min + len(values)
}
`

func parse(t *testing.T) *cst.Snapshot {
	t.Helper()

	specs, err := golang.New().Parse(context.Background(), "internal/store/store.go", []byte(source))
	require.NoError(t, err)

	b := cst.NewBuilder()
	for _, s := range specs {
		b.Add(s)
	}

	snap, err := b.Build()
	require.NoError(t, err)

	return snap
}

func lookup(t *testing.T, snap *cst.Snapshot, qn string) *cst.Node {
	t.Helper()

	n, ok := snap.Lookup(qn)
	require.True(t, ok, "missing %s", qn)

	return n
}

func TestParseStructAndFields(t *testing.T) {
	t.Parallel()

	snap := parse(t)

	store := lookup(t, snap, "internal/store.Store")
	assert.Equal(t, cst.KindClass, store.Kind())
	assert.Equal(t, []string{"Mutex"}, store.SuperTypes())

	for _, name := range []string{"items", "min", "max"} {
		assert.Equal(t, cst.KindAttribute, lookup(t, snap, "internal/store.Store."+name).Kind())
	}

	assert.Equal(t, "map[string]int", lookup(t, snap, "internal/store.Store.items").ReturnType())
}

func TestParseInterface(t *testing.T) {
	t.Parallel()

	snap := parse(t)

	reader := lookup(t, snap, "internal/store.Reader")
	assert.Equal(t, cst.KindInterface, reader.Kind())
	assert.Equal(t, []string{"Closer"}, reader.SuperTypes())

	get := lookup(t, snap, "internal/store.Reader.Get(string)")
	assert.True(t, get.IsAbstract())
}

func TestParseMethodsAttachToReceiver(t *testing.T) {
	t.Parallel()

	snap := parse(t)
	store := lookup(t, snap, "internal/store.Store")

	get := lookup(t, snap, "internal/store.Store.Get(string)")
	assert.Same(t, store, get.Container())
	assert.Equal(t, []string{"Println"}, get.Calls())
	assert.Contains(t, get.Tokens(), `"get"`)

	sum := lookup(t, snap, "internal/store.Store.Sum(...int)")
	assert.Equal(t, "int", sum.ReturnType())

	fn := lookup(t, snap, "internal/store.New()")
	assert.Nil(t, fn.Container())
	assert.Equal(t, []string{"make"}, fn.Calls())
}
