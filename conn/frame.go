// Package conn implements the connection-level concerns of the protocol: frame
// encoding/decoding (length-prefixing, ZLib compression and AES-128/CFB-8
// encryption), and the connection state machine that drives packet dispatch
// through the handshake/status/login/configuration/play phases.
package conn

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/emberforge/core/varint"
)

// MaxFrameLength is the largest packet_length a decoded frame may declare.
// A frame exceeding it is a malformed-frame error (§6.1 of the protocol).
const MaxFrameLength = 2097152

// Encoder accumulates outbound packets into length-prefixed, optionally
// compressed and encrypted frames ready to be written to a socket. It is
// owned by the tick thread; the network writer only calls Take.
type Encoder struct {
	threshold int // < 0 disables compression
	cipher    *cfb8

	buf    bytes.Buffer
	scratch []byte
}

// NewEncoder returns an Encoder with compression disabled and encryption
// disabled.
func NewEncoder() *Encoder {
	return &Encoder{threshold: -1}
}

// EnableCompression enables ZLib compression for any data at or above
// threshold bytes. It is monotonic: once set it is never disabled, matching
// the real protocol (a LoginCompression packet is sent at most once).
func (e *Encoder) EnableCompression(threshold int) {
	e.threshold = threshold
}

// EnableEncryption switches the encoder to AES-128/CFB-8 using key as both
// key and IV. It is monotonic: once enabled it cannot be disabled. Any bytes
// already staged in the send buffer are encrypted in place so that nothing
// written before this call leaves the encoder in plaintext.
func (e *Encoder) EnableEncryption(key [16]byte) error {
	if e.cipher != nil {
		return fmt.Errorf("conn: encryption already enabled")
	}
	c, err := newCFB8Encrypt(key)
	if err != nil {
		return err
	}
	e.cipher = c
	if e.buf.Len() > 0 {
		b := e.buf.Bytes()
		e.cipher.XORKeyStream(b, b)
	}
	return nil
}

// AppendPacket encodes a packet id and body into a single frame and appends
// it to the end of the send buffer. id must be the packet's VarInt-encoded
// identity; body is the already-encoded packet payload.
func (e *Encoder) AppendPacket(id int32, body []byte) error {
	frame, err := e.frame(id, body)
	if err != nil {
		return err
	}
	if e.cipher != nil {
		e.cipher.XORKeyStream(frame, frame)
	}
	e.buf.Write(frame)
	return nil
}

// PrependPacket encodes a packet the same way AppendPacket does, but places
// it ahead of any bytes already staged in the send buffer. It is used for
// priority packets (e.g. a Disconnect) that must reach the client before
// anything already queued. Prepending never reorders packets relative to
// each other; it only inserts before the existing queue.
func (e *Encoder) PrependPacket(id int32, body []byte) error {
	frame, err := e.frame(id, body)
	if err != nil {
		return err
	}
	if e.cipher != nil {
		e.cipher.XORKeyStream(frame, frame)
	}
	rest := append([]byte(nil), e.buf.Bytes()...)
	e.buf.Reset()
	e.buf.Write(frame)
	e.buf.Write(rest)
	return nil
}

// Take returns the bytes ready for socket write and clears the send buffer.
// The returned slice is owned by the caller; the Encoder does not retain it.
func (e *Encoder) Take() []byte {
	if e.buf.Len() == 0 {
		return nil
	}
	out := append([]byte(nil), e.buf.Bytes()...)
	e.buf.Reset()
	return out
}

// frame builds VarInt(packet_length) ∥ payload for the given id/body,
// applying compression framing per §4.2 of the protocol. Bytes are NOT
// encrypted here; AppendPacket/PrependPacket do that afterwards so frame can
// be used to measure length without touching the cipher state.
func (e *Encoder) frame(id int32, body []byte) ([]byte, error) {
	data := e.scratch[:0]
	data = varint.AppendInt32(data, id)
	data = append(data, body...)
	e.scratch = data

	if e.threshold < 0 {
		out := varint.AppendInt32(nil, int32(len(data)))
		out = append(out, data...)
		return out, nil
	}
	if len(data) < e.threshold {
		inner := varint.AppendInt32(nil, 0)
		inner = append(inner, data...)
		out := varint.AppendInt32(nil, int32(len(inner)))
		out = append(out, inner...)
		return out, nil
	}

	compressed, err := zlibCompress(data)
	if err != nil {
		return nil, fmt.Errorf("conn: compress frame: %w", err)
	}
	dataLen := varint.AppendInt32(nil, int32(len(data)))
	packetLen := len(dataLen) + len(compressed)
	out := varint.AppendInt32(nil, int32(packetLen))
	out = append(out, dataLen...)
	out = append(out, compressed...)
	return out, nil
}

func zlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zlibDecompress(data []byte, expectedLen int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]byte, 0, expectedLen)
	buf := bytes.NewBuffer(out)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
