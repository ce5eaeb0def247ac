// Package autobuf provides a growable byte buffer with append/prepend/
// strftime/printf primitives, modeled on the fixed-chunk-size growth
// strategy of the original C autobuf implementation.
package autobuf

import (
	"fmt"
	"strings"
	"time"
)

// chunkSize is the granularity capacity is rounded up to on Grow. The
// original C code rounds to a power-of-two chunk to amortize realloc calls
// across repeated small appends (e.g. one packet buffer reused per
// interface, every send cycle); we keep the same rounding even though Go's
// allocator does not strictly require it, so callers that depend on buffer
// addresses staying stable across a burst of small appends see the same
// amortized-growth behavior the original gives them.
const chunkSize = 4096

// Buffer is a growable byte buffer. It keeps no trailing NUL: Bytes and
// String return the content bytes only.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer with at least size bytes of capacity.
func New(size int) *Buffer {
	b := &Buffer{}
	if size > 0 {
		b.data = make([]byte, 0, roundUp(size))
	}
	return b
}

// Len returns the number of content bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset discards all content but keeps the underlying storage.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Bytes returns the buffer's content. The returned slice is only valid
// until the next mutating call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// String returns the buffer's content as a string.
func (b *Buffer) String() string {
	return string(b.data)
}

// Grow ensures the buffer has room for at least n additional bytes without
// reallocating, rounding the new capacity up to a chunk boundary.
func (b *Buffer) Grow(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	next := make([]byte, len(b.data), roundUp(len(b.data)+n))
	copy(next, b.data)
	b.data = next
}

// AppendBytes appends raw bytes to the end of the buffer.
func (b *Buffer) AppendBytes(p ...byte) {
	b.Grow(len(p))
	b.data = append(b.data, p...)
}

// AppendString appends s to the end of the buffer.
func (b *Buffer) AppendString(s string) {
	b.Grow(len(s))
	b.data = append(b.data, s...)
}

// Appendf appends a printf-formatted string to the buffer, growing as
// needed. It mirrors the original's vappendf/appendf pair, which grows the
// buffer and retries once on overflow; here the string is formatted with
// fmt.Sprintf first, so no retry is needed, and AppendString's Grow call
// reserves room for it in chunk-rounded steps.
func (b *Buffer) Appendf(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	b.AppendString(s)
}

// Prepend inserts p at the start of the buffer, shifting existing content
// to the right.
func (b *Buffer) Prepend(p []byte) {
	b.Grow(len(p))
	b.data = append(b.data, make([]byte, len(p))...)
	copy(b.data[len(p):], b.data)
	copy(b.data, p)
}

// Pull removes the first n bytes from the buffer, as in a FIFO. If n is
// larger than the buffer's length, the buffer is emptied. The backing array
// is reallocated (shrunk) once the live content plus two chunks of slack
// would fit in a smaller chunk-rounded capacity, matching the original's
// shrink-on-drain heuristic.
func (b *Buffer) Pull(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return
	}
	remaining := len(b.data) - n
	copy(b.data, b.data[n:])
	b.data = b.data[:remaining]

	if remaining+2*chunkSize <= cap(b.data) {
		shrunk := make([]byte, remaining, roundUp(remaining))
		copy(shrunk, b.data)
		b.data = shrunk
	}
}

// Strftime appends a strftime-style formatted timestamp. The original C
// function grows the buffer and retries when strftime returns 0 (buffer too
// small); Go's time.Format never fails that way, so this just translates a
// handful of the original's placeholders to a Go reference-time layout.
// Unsupported directives are passed through the Go layout unconverted.
func (b *Buffer) Strftime(format string, t time.Time) {
	b.AppendString(t.Format(strftimeToGo(format)))
}

var strftimeReplacer = strings.NewReplacer(
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%Z", "MST",
)

func strftimeToGo(format string) string {
	return strftimeReplacer.Replace(format)
}

func roundUp(n int) int {
	if n <= 0 {
		return chunkSize
	}
	return ((n + chunkSize - 1) / chunkSize) * chunkSize
}
