// Package strarray implements a contiguous sequence of NUL-delimited
// strings backed by a single blob, with a pointer to the last element. It
// is the storage representation for every multi-value configuration entry
// (see cfgdb) and its raw-blob equality is what cfgdelta's change
// detection relies on.
package strarray

import (
	"bytes"
	"errors"
)

// ErrNotFound is returned by Remove when the given element is not present.
var ErrNotFound = errors.New("strarray: element not found")

// Array is a blob of concatenated NUL-terminated strings.
//
// The zero value is an empty array.
type Array struct {
	blob       []byte
	lastOffset int // offset of the last element within blob; unused while blob is empty
}

// New returns an Array containing the given elements, in order.
func New(elems ...string) *Array {
	a := &Array{lastOffset: -1}
	for _, e := range elems {
		a.Append(e)
	}
	return a
}

// Len returns the number of content bytes in the blob, including every
// element's trailing NUL. This is the original's "length" field.
func (a *Array) Len() int {
	return len(a.blob)
}

// Count returns the number of elements (entry_get_listsize in the original).
func (a *Array) Count() int {
	if a == nil || len(a.blob) == 0 {
		return 0
	}
	n := 0
	for _, b := range a.blob {
		if b == 0 {
			n++
		}
	}
	return n
}

// Append adds s as the new last element.
func (a *Array) Append(s string) {
	a.lastOffset = len(a.blob)
	a.blob = append(a.blob, s...)
	a.blob = append(a.blob, 0)
}

// First returns the first element and whether the array is non-empty.
func (a *Array) First() (string, bool) {
	if a == nil || len(a.blob) == 0 {
		return "", false
	}
	end := bytes.IndexByte(a.blob, 0)
	return string(a.blob[:end]), true
}

// Last returns the last element and whether the array is non-empty.
func (a *Array) Last() (string, bool) {
	if a == nil || len(a.blob) == 0 {
		return "", false
	}
	end := bytes.IndexByte(a.blob[a.lastOffset:], 0) + a.lastOffset
	return string(a.blob[a.lastOffset:end]), true
}

// ForEach calls fn for each element in order, stopping early if fn returns
// false. It is the Go equivalent of the original's FOR_ALL_STRINGS
// iteration macro.
func (a *Array) ForEach(fn func(s string) bool) {
	if a == nil {
		return
	}
	off := 0
	for off < len(a.blob) {
		end := bytes.IndexByte(a.blob[off:], 0) + off
		if !fn(string(a.blob[off:end])) {
			return
		}
		off = end + 1
	}
}

// All returns every element as a slice, in order.
func (a *Array) All() []string {
	out := make([]string, 0, a.Count())
	a.ForEach(func(s string) bool {
		out = append(out, s)
		return true
	})
	return out
}

// Remove deletes the first occurrence of s. If s is the array's only
// element and freeIfLast is false, the removal is rejected (ErrNotFound) — this mirrors
// the original's optional protection against removing a scalar entry's only
// value via the list-remove path; callers that want to allow it pass true.
func (a *Array) Remove(s string, freeIfLast bool) error {
	if a == nil {
		return ErrNotFound
	}
	off := 0
	for off < len(a.blob) {
		end := bytes.IndexByte(a.blob[off:], 0) + off
		if string(a.blob[off:end]) == s {
			isLast := end == len(a.blob)-1 && a.lastOffset == off
			if isLast && a.Count() == 1 && !freeIfLast {
				return ErrNotFound
			}
			a.blob = append(a.blob[:off], a.blob[end+1:]...)
			a.reindexLast()
			return nil
		}
		off = end + 1
	}
	return ErrNotFound
}

// reindexLast recomputes lastOffset after a structural mutation.
func (a *Array) reindexLast() {
	if len(a.blob) == 0 {
		a.lastOffset = -1
		return
	}
	off, last := 0, 0
	for off < len(a.blob) {
		last = off
		end := bytes.IndexByte(a.blob[off:], 0) + off
		off = end + 1
	}
	a.lastOffset = last
}

// Blob returns the raw backing bytes, including every trailing NUL. It is
// exposed for the delta engine's exact-equality comparison: trailing
// NUL presence is part of the comparison.
func (a *Array) Blob() []byte {
	if a == nil {
		return nil
	}
	return a.blob
}

// Equal reports whether a and b have byte-identical blobs, including all
// element terminators. This is intentionally a raw memcmp-equivalent, not a
// set or order-insensitive comparison: the delta engine (cfgdelta) depends
// on it to detect "reverted to default" as unchanged only when the blobs
// are literally identical.
func Equal(a, b *Array) bool {
	return bytes.Equal(a.Blob(), b.Blob())
}
