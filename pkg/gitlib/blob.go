package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"
)

// Blob wraps a libgit2 blob.
type Blob struct {
	blob *git2go.Blob
}

// Hash returns the blob hash.
func (b *Blob) Hash() Hash {
	return HashFromOid(b.blob.Id())
}

// Size returns the blob size.
func (b *Blob) Size() int64 {
	return b.blob.Size()
}

// Contents returns the blob contents. The slice is only valid until Free.
func (b *Blob) Contents() []byte {
	return b.blob.Contents()
}

// Bytes returns a copy of the blob contents.
func (b *Blob) Bytes() []byte {
	data := b.blob.Contents()
	out := make([]byte, len(data))
	copy(out, data)

	return out
}

// Free releases the blob resources.
func (b *Blob) Free() {
	if b.blob != nil {
		b.blob.Free()
		b.blob = nil
	}
}
