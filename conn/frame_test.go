package conn

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTripUncompressed(t *testing.T) {
	enc := NewEncoder()
	body := []byte("hello, world")
	if err := enc.AppendPacket(0x03, body); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := enc.Take()

	dec := NewDecoder(bytes.NewReader(raw))
	id, got, err := dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if id != 0x03 || !bytes.Equal(got, body) {
		t.Fatalf("got (%d, %q), want (3, %q)", id, got, body)
	}
}

func TestCompressionThresholdCrossing(t *testing.T) {
	const threshold = 256

	small := bytes.Repeat([]byte{'a'}, 253) // id(1) + body = 254 < 256
	large := bytes.Repeat([]byte{'b'}, 400)

	enc := NewEncoder()
	enc.EnableCompression(threshold)
	if err := enc.AppendPacket(0x01, small); err != nil {
		t.Fatalf("AppendPacket small: %v", err)
	}
	if err := enc.AppendPacket(0x01, large); err != nil {
		t.Fatalf("AppendPacket large: %v", err)
	}
	raw := enc.Take()

	dec := NewDecoder(bytes.NewReader(raw))
	dec.EnableCompression(threshold)

	id, got, err := dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket small: %v", err)
	}
	if id != 1 || !bytes.Equal(got, small) {
		t.Fatalf("small frame mismatch")
	}

	id, got, err = dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket large: %v", err)
	}
	if id != 1 || !bytes.Equal(got, large) {
		t.Fatalf("large frame mismatch")
	}
}

func TestEncryptionRoundTrip(t *testing.T) {
	var key [16]byte
	copy(key[:], []byte("0123456789abcdef"))

	enc := NewEncoder()
	if err := enc.EnableEncryption(key); err != nil {
		t.Fatalf("EnableEncryption: %v", err)
	}
	if err := enc.AppendPacket(0x00, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := enc.Take()

	dec := NewDecoder(bytes.NewReader(raw))
	if err := dec.EnableEncryption(key); err != nil {
		t.Fatalf("EnableEncryption: %v", err)
	}
	id, got, err := dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if id != 0 || !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("got (%d, %v)", id, got)
	}
}

func TestEnableEncryptionEncryptsStagedBytes(t *testing.T) {
	var key [16]byte
	copy(key[:], []byte("0123456789abcdef"))

	enc := NewEncoder()
	if err := enc.AppendPacket(0x00, []byte{9, 9}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	if err := enc.EnableEncryption(key); err != nil {
		t.Fatalf("EnableEncryption: %v", err)
	}
	if err := enc.AppendPacket(0x00, []byte{8, 8}); err != nil {
		t.Fatalf("AppendPacket: %v", err)
	}
	raw := enc.Take()

	dec := NewDecoder(bytes.NewReader(raw))
	if err := dec.EnableEncryption(key); err != nil {
		t.Fatalf("EnableEncryption: %v", err)
	}
	_, got, err := dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket first: %v", err)
	}
	if !bytes.Equal(got, []byte{9, 9}) {
		t.Fatalf("first packet corrupted: %v", got)
	}
	_, got, err = dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket second: %v", err)
	}
	if !bytes.Equal(got, []byte{8, 8}) {
		t.Fatalf("second packet corrupted: %v", got)
	}
}

func TestPrependDoesNotReorderExistingQueue(t *testing.T) {
	enc := NewEncoder()
	_ = enc.AppendPacket(0x01, []byte("first"))
	_ = enc.PrependPacket(0x02, []byte("priority"))
	raw := enc.Take()

	dec := NewDecoder(bytes.NewReader(raw))
	id, body, err := dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if id != 2 || string(body) != "priority" {
		t.Fatalf("expected priority packet first, got id=%d body=%q", id, body)
	}
	id, body, err = dec.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if id != 1 || string(body) != "first" {
		t.Fatalf("expected first packet second, got id=%d body=%q", id, body)
	}
}

func TestFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}) // VarInt(2147483647)
	dec := NewDecoder(&buf)
	if _, _, err := dec.ReadPacket(); err != ErrFrameTooLarge {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}
