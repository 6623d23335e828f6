// Package protocol defines the wire primitives (§3.1) shared by every packet
// body, and the registry (C3) that maps a (phase, direction, id) triple to a
// typed, encodable/decodable packet.
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/emberforge/core/varint"
)

// DefaultMaxStringLen is the default upper bound, in UTF-16 code units, on a
// decoded string (§3.1).
const DefaultMaxStringLen = 32767

// Writer accumulates a packet body in the big-endian, VarInt-prefixed wire
// format described in §4.3. A zero Writer is ready to use.
type Writer struct {
	buf []byte
	err error
}

// Err returns the first error encountered by any Write call, if any.
func (w *Writer) Err() error { return w.err }

// Bytes returns the encoded body so far. If any Write call failed, the
// encoder buffer is truncated to its length from before that call (§7); the
// returned slice never contains a partially-written field.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// checkpoint returns the current buffer length so a failed multi-byte write
// can be rolled back to it.
func (w *Writer) checkpoint() int { return len(w.buf) }

func (w *Writer) rollback(to int) { w.buf = w.buf[:to] }

// Bool writes a single boolean byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// Int8 writes a signed byte.
func (w *Writer) Int8(v int8) { w.buf = append(w.buf, byte(v)) }

// Uint8 writes an unsigned byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Int16 writes a big-endian signed 16-bit integer.
func (w *Writer) Int16(v int16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

// Uint16 writes a big-endian unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// Int32 writes a big-endian signed 32-bit integer.
func (w *Writer) Int32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

// Int64 writes a big-endian signed 64-bit integer.
func (w *Writer) Int64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

// Float32 writes a big-endian IEEE-754 single-precision float.
func (w *Writer) Float32(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// Float64 writes a big-endian IEEE-754 double-precision float.
func (w *Writer) Float64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// VarInt writes a VarInt (§4.1).
func (w *Writer) VarInt(v int32) { w.buf = varint.AppendInt32(w.buf, v) }

// VarLong writes a VarLong (§4.1).
func (w *Writer) VarLong(v int64) { w.buf = varint.AppendInt64(w.buf, v) }

// String writes a length-prefixed UTF-8 string, rejecting one longer than
// DefaultMaxStringLen UTF-16 code units (§3.1, §7).
func (w *Writer) String(s string) {
	w.StringMax(s, DefaultMaxStringLen)
}

// StringMax writes s as above but with an explicit UTF-16 code-unit bound.
func (w *Writer) StringMax(s string, max int) {
	start := w.checkpoint()
	if n := utf16Len(s); n > max {
		w.rollback(start)
		w.fail(fmt.Errorf("protocol: string exceeds %d UTF-16 code units (got %d)", max, n))
		return
	}
	b := []byte(s)
	w.VarInt(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// Identifier writes a namespaced identifier, validating it first (§3.1, §7).
func (w *Writer) Identifier(id Identifier) {
	start := w.checkpoint()
	if err := id.Validate(); err != nil {
		w.rollback(start)
		w.fail(err)
		return
	}
	w.String(id.String())
}

// UUID writes a 128-bit UUID as two big-endian 64-bit halves.
func (w *Writer) UUID(id uuid.UUID) {
	w.buf = append(w.buf, id[:]...)
}

// ByteArray writes a VarInt length followed by raw bytes.
func (w *Writer) ByteArray(b []byte) {
	w.VarInt(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// RawBytes appends b with no length prefix, used for tail fields explicitly
// documented as consuming the rest of the packet.
func (w *Writer) RawBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Optional writes the boolean-tag-then-value encoding for optional fields; if
// present is false, write is never called.
func Optional(w *Writer, present bool, write func(*Writer)) {
	w.Bool(present)
	if present {
		write(w)
	}
}

// Reader consumes a packet body produced by Writer, tracking position and the
// first decode error encountered (§7).
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Err returns the first error encountered by any Read call, if any.
func (r *Reader) Err() error { return r.err }

// Remaining reports how many bytes have not yet been consumed.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) need(n int) ([]byte, bool) {
	if r.err != nil {
		return nil, false
	}
	if r.pos+n > len(r.buf) {
		r.fail(fmt.Errorf("protocol: truncated packet body (need %d bytes, have %d)", n, len(r.buf)-r.pos))
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

// Bool reads a single boolean byte.
func (r *Reader) Bool() bool {
	b, ok := r.need(1)
	if !ok {
		return false
	}
	return b[0] != 0
}

// Int8 reads a signed byte.
func (r *Reader) Int8() int8 {
	b, ok := r.need(1)
	if !ok {
		return 0
	}
	return int8(b[0])
}

// Uint8 reads an unsigned byte.
func (r *Reader) Uint8() uint8 {
	b, ok := r.need(1)
	if !ok {
		return 0
	}
	return b[0]
}

// Int16 reads a big-endian signed 16-bit integer.
func (r *Reader) Int16() int16 {
	b, ok := r.need(2)
	if !ok {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

// Uint16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) Uint16() uint16 {
	b, ok := r.need(2)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// Int32 reads a big-endian signed 32-bit integer.
func (r *Reader) Int32() int32 {
	b, ok := r.need(4)
	if !ok {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// Int64 reads a big-endian signed 64-bit integer.
func (r *Reader) Int64() int64 {
	b, ok := r.need(8)
	if !ok {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Float32 reads a big-endian IEEE-754 single-precision float.
func (r *Reader) Float32() float32 {
	b, ok := r.need(4)
	if !ok {
		return 0
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// Float64 reads a big-endian IEEE-754 double-precision float.
func (r *Reader) Float64() float64 {
	b, ok := r.need(8)
	if !ok {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// VarInt reads a VarInt (§4.1).
func (r *Reader) VarInt() int32 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.ReadInt32(r.buf[r.pos:])
	if err != nil {
		r.fail(fmt.Errorf("protocol: read varint: %w", err))
		return 0
	}
	r.pos += n
	return v
}

// VarLong reads a VarLong (§4.1).
func (r *Reader) VarLong() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.ReadInt64(r.buf[r.pos:])
	if err != nil {
		r.fail(fmt.Errorf("protocol: read varlong: %w", err))
		return 0
	}
	r.pos += n
	return v
}

// String reads a length-prefixed UTF-8 string bounded by DefaultMaxStringLen
// UTF-16 code units.
func (r *Reader) String() string { return r.StringMax(DefaultMaxStringLen) }

// StringMax reads a string as above with an explicit UTF-16 code-unit bound.
func (r *Reader) StringMax(max int) string {
	n := r.VarInt()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.fail(fmt.Errorf("protocol: negative string length %d", n))
		return ""
	}
	b, ok := r.need(int(n))
	if !ok {
		return ""
	}
	s := string(b)
	if u := utf16Len(s); u > max {
		r.fail(fmt.Errorf("protocol: string exceeds %d UTF-16 code units (got %d)", max, u))
		return ""
	}
	return s
}

// Identifier reads and validates a namespaced identifier.
func (r *Reader) Identifier() Identifier {
	s := r.String()
	if r.err != nil {
		return Identifier{}
	}
	id := ParseIdentifier(s)
	if err := id.Validate(); err != nil {
		r.fail(err)
		return Identifier{}
	}
	return id
}

// UUID reads a 128-bit UUID.
func (r *Reader) UUID() uuid.UUID {
	b, ok := r.need(16)
	if !ok {
		return uuid.UUID{}
	}
	var id uuid.UUID
	copy(id[:], b)
	return id
}

// ByteArray reads a VarInt-length-prefixed byte slice.
func (r *Reader) ByteArray() []byte {
	n := r.VarInt()
	if r.err != nil || n < 0 {
		return nil
	}
	b, ok := r.need(int(n))
	if !ok {
		return nil
	}
	return append([]byte(nil), b...)
}

// RawBytes reads exactly n raw bytes with no length prefix, used for
// embedded fields whose length is known from context rather than encoded
// inline (e.g. a paletted container's packed index array).
func (r *Reader) RawBytes(n int) []byte {
	b, ok := r.need(n)
	if !ok {
		return nil
	}
	return append([]byte(nil), b...)
}

// Rest returns every remaining byte, consuming the reader.
func (r *Reader) Rest() []byte {
	if r.err != nil {
		return nil
	}
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return append([]byte(nil), b...)
}

// OptionalRead reads the presence tag and, if set, runs read.
func OptionalRead[T any](r *Reader, read func(*Reader) T) (T, bool) {
	var zero T
	if !r.Bool() {
		return zero, false
	}
	return read(r), true
}
