package protocol

import (
	"testing"

	"github.com/emberforge/core/conn"
)

func TestIdentifierDefaultNamespace(t *testing.T) {
	id := ParseIdentifier("stone")
	if id.Namespace != "minecraft" || id.Path != "stone" {
		t.Fatalf("got %+v", id)
	}
	if err := id.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "minecraft:stone" {
		t.Fatalf("String() = %q", id.String())
	}
}

func TestIdentifierRejectsBadCharacters(t *testing.T) {
	id := ParseIdentifier("Bad:Path With Spaces")
	if err := id.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBlockPosRoundTrip(t *testing.T) {
	cases := []BlockPos{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -1, -1},
		{33554431, 2047, 33554431},
		{-33554432, -2048, -33554432},
	}
	for _, p := range cases {
		got := UnpackBlockPos(p.Pack())
		if got != p {
			t.Fatalf("round trip %+v -> %+v", p, got)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := &Writer{}
	w.String("hello")
	if err := w.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewReader(w.Bytes())
	if s := r.String(); s != "hello" {
		t.Fatalf("got %q", s)
	}
}

func TestStringRejectsOverlong(t *testing.T) {
	long := make([]byte, 10)
	for i := range long {
		long[i] = 'a'
	}
	w := &Writer{}
	w.StringMax(string(long), 5)
	if w.Err() == nil {
		t.Fatalf("expected overlong string to fail")
	}
	if len(w.Bytes()) != 0 {
		t.Fatalf("expected rollback to empty buffer, got %d bytes", len(w.Bytes()))
	}
}

func TestWriterRollsBackOnError(t *testing.T) {
	w := &Writer{}
	w.Bool(true)
	before := len(w.Bytes())
	w.Identifier(Identifier{Namespace: "Bad Namespace", Path: "x"})
	if w.Err() == nil {
		t.Fatalf("expected error")
	}
	if len(w.Bytes()) != before {
		t.Fatalf("writer buffer was not rolled back: got %d bytes, want %d", len(w.Bytes()), before)
	}
}

type dummyPacket struct {
	value int32
}

func (p *dummyPacket) Encode(w *Writer) { w.VarInt(p.value) }
func (p *dummyPacket) Decode(r *Reader) error {
	p.value = r.VarInt()
	return r.Err()
}

func TestRegistryEncodeDecodeRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.Register(conn.Play, conn.Clientbound, 0x10, func() Packet { return &dummyPacket{} })

	orig := &dummyPacket{value: 42}
	encoded, err := reg.Encode(0x10, orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := NewReader(encoded)
	id := r.VarInt()
	decoded, err := reg.Decode(conn.Play, conn.Clientbound, id, encoded[len(encoded)-r.Remaining():])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.(*dummyPacket).value != orig.value {
		t.Fatalf("got %d, want %d", decoded.(*dummyPacket).value, orig.value)
	}
}

func TestRegistryUnknownPacket(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Decode(conn.Play, conn.Serverbound, 0x99, nil)
	var unknown *ErrUnknownPacket
	if !asUnknown(err, &unknown) {
		t.Fatalf("expected ErrUnknownPacket, got %v", err)
	}
}

func asUnknown(err error, target **ErrUnknownPacket) bool {
	if e, ok := err.(*ErrUnknownPacket); ok {
		*target = e
		return true
	}
	return false
}

func TestRegistryRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	reg := NewRegistry()
	reg.Register(conn.Play, conn.Clientbound, 0x01, func() Packet { return &dummyPacket{} })
	reg.Register(conn.Play, conn.Clientbound, 0x01, func() Packet { return &dummyPacket{} })
}
