package autobuf_test

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/oonf-go/oonf/autobuf"
)

func TestAppendAndBytes(t *testing.T) {
	b := autobuf.New(0)
	b.AppendString("hello ")
	b.AppendBytes('w', 'o', 'r', 'l', 'd')
	if got, want := b.String(), "hello world"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if b.Len() != len("hello world") {
		t.Errorf("Len() = %d, want %d", b.Len(), len("hello world"))
	}
}

func TestAppendf(t *testing.T) {
	b := autobuf.New(0)
	b.Appendf("%s=%d", "count", 42)
	if got, want := b.String(), "count=42"; got != want {
		t.Errorf("Appendf result = %q, want %q", got, want)
	}
}

func TestPrepend(t *testing.T) {
	b := autobuf.New(0)
	b.AppendString("world")
	b.Prepend([]byte("hello "))
	if got, want := b.String(), "hello world"; got != want {
		t.Errorf("Prepend result = %q, want %q", got, want)
	}
}

func TestPull(t *testing.T) {
	b := autobuf.New(0)
	b.AppendString("0123456789")
	b.Pull(4)
	if got, want := b.String(), "456789"; got != want {
		t.Errorf("Pull result = %q, want %q", got, want)
	}
	b.Pull(100)
	if b.Len() != 0 {
		t.Errorf("Pull(100) left Len() = %d, want 0", b.Len())
	}
}

func TestGrowDoesNotReallocateUnderChunk(t *testing.T) {
	b := autobuf.New(0)
	b.Grow(10)
	c := cap(b.Bytes())
	b.AppendString("0123456789")
	if got := cap(b.Bytes()); got != c {
		t.Errorf("cap changed after append within pre-grown capacity: got %d, want %d", got, c)
	}
}

func TestStrftime(t *testing.T) {
	b := autobuf.New(0)
	ts := time.Date(2026, time.July, 31, 13, 0, 0, 0, time.UTC)
	b.Strftime("%Y%m%d", ts)
	if got, want := b.String(), "20260731"; got != want {
		t.Errorf("Strftime result = %q, want %q", got, want)
	}
}

func TestDeepEqualStyle(t *testing.T) {
	b1 := autobuf.New(0)
	b1.AppendString("x")
	b2 := autobuf.New(0)
	b2.AppendString("x")
	if diff := deep.Equal(b1.Bytes(), b2.Bytes()); diff != nil {
		t.Errorf("unexpected diff: %v", diff)
	}
}
