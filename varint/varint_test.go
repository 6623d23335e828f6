package varint

import (
	"bufio"
	"bytes"
	"testing"
)

func TestInt32RoundTrip(t *testing.T) {
	cases := []struct {
		n      int32
		wanLen int
	}{
		{0, 1},
		{1, 1},
		{-1, 5},
		{127, 1},
		{128, 2},
		{2147483647, 5},
		{-2147483648, 5},
	}
	for _, c := range cases {
		buf := AppendInt32(nil, c.n)
		if len(buf) != c.wanLen {
			t.Fatalf("AppendInt32(%d): got %d bytes, want %d", c.n, len(buf), c.wanLen)
		}
		if l := Int32Len(c.n); l != c.wanLen {
			t.Fatalf("Int32Len(%d) = %d, want %d", c.n, l, c.wanLen)
		}
		got, n, err := ReadInt32(buf)
		if err != nil {
			t.Fatalf("ReadInt32(%d): unexpected error: %v", c.n, err)
		}
		if got != c.n {
			t.Fatalf("ReadInt32 round-trip: got %d, want %d", got, c.n)
		}
		if n != len(buf) {
			t.Fatalf("ReadInt32 consumed %d bytes, want %d", n, len(buf))
		}
	}
}

func TestInt32Truncated(t *testing.T) {
	buf := AppendInt32(nil, 128)
	if _, _, err := ReadInt32(buf[:1]); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestInt32TooLong(t *testing.T) {
	// Five continuation bytes followed by a sixth: always invalid.
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	if _, _, err := ReadInt32(buf); err != ErrTooLong {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestInt64RoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, 128, 9223372036854775807, -9223372036854775808}
	for _, n := range cases {
		buf := AppendInt64(nil, n)
		if l := Int64Len(n); l != len(buf) {
			t.Fatalf("Int64Len(%d) = %d, want %d", n, l, len(buf))
		}
		got, consumed, err := ReadInt64(buf)
		if err != nil {
			t.Fatalf("ReadInt64(%d): unexpected error: %v", n, err)
		}
		if got != n {
			t.Fatalf("ReadInt64 round-trip: got %d, want %d", got, n)
		}
		if consumed != len(buf) {
			t.Fatalf("ReadInt64 consumed %d bytes, want %d", consumed, len(buf))
		}
	}
}

func TestReadInt32FromReader(t *testing.T) {
	buf := AppendInt32(nil, 300)
	br := bufio.NewReader(bytes.NewReader(buf))
	got, n, err := ReadInt32FromReader(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 300 || n != len(buf) {
		t.Fatalf("got (%d, %d), want (300, %d)", got, n, len(buf))
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	buf := append(AppendInt32(nil, 16384), 0xAB)
	br := bufio.NewReader(bytes.NewReader(buf))
	v, n, err := Peek(br)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 16384 {
		t.Fatalf("Peek value = %d, want 16384", v)
	}
	rest := make([]byte, br.Buffered())
	br.Read(rest)
	if !bytes.Equal(rest, buf) {
		t.Fatalf("Peek must not consume bytes; buffered content changed, n=%d", n)
	}
}
