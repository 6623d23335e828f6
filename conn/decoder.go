package conn

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/emberforge/core/varint"
)

// ErrFrameTooLarge is returned by Decoder.ReadPacket when a frame declares a
// packet_length greater than MaxFrameLength (or a negative one). It is a fatal, malformed-frame
// error (§7).
var ErrFrameTooLarge = fmt.Errorf("conn: frame exceeds %d bytes", MaxFrameLength)

// Decoder turns a byte stream into a sequence of (id, body) pairs, mirroring
// Encoder's framing, decryption and decompression in reverse.
type Decoder struct {
	r         *bufio.Reader
	threshold int // < 0 disables compression
	cipher    *cfb8
}

// NewDecoder wraps r in a 4096-byte read buffer.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 4096), threshold: -1}
}

// EnableCompression mirrors Encoder.EnableCompression.
func (d *Decoder) EnableCompression(threshold int) {
	d.threshold = threshold
}

// EnableEncryption mirrors Encoder.EnableEncryption. Decryption is applied
// as bytes are consumed, so bytes already sitting unread in the internal
// bufio buffer when this is called are decrypted too: callers enable it
// right after reading the last plaintext packet, matching vanilla's
// handshake (the LoginKey response is the last plaintext packet read).
func (d *Decoder) EnableEncryption(key [16]byte) error {
	if d.cipher != nil {
		return errors.New("conn: encryption already enabled")
	}
	c, err := newCFB8Decrypt(key)
	if err != nil {
		return err
	}
	d.cipher = c
	return nil
}

// ReadPacket blocks until a full frame is available, decodes it, and returns
// the packet id and its body. The returned body slice is only valid until
// the next call to ReadPacket.
func (d *Decoder) ReadPacket() (id int32, body []byte, err error) {
	packetLen, err := d.readVarInt()
	if err != nil {
		return 0, nil, err
	}
	if packetLen < 0 || packetLen > MaxFrameLength {
		return 0, nil, ErrFrameTooLarge
	}
	raw := make([]byte, packetLen)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		return 0, nil, fmt.Errorf("conn: read frame body: %w", err)
	}
	if d.cipher != nil {
		d.cipher.XORKeyStream(raw, raw)
	}

	data := raw
	if d.threshold >= 0 {
		dataLen, n, err := varint.ReadInt32(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("conn: read data_length: %w", err)
		}
		rest := raw[n:]
		if dataLen == 0 {
			data = rest
		} else {
			data, err = zlibDecompress(rest, int(dataLen))
			if err != nil {
				return 0, nil, fmt.Errorf("conn: decompress frame: %w", err)
			}
			if int32(len(data)) != dataLen {
				return 0, nil, fmt.Errorf("conn: decompressed length mismatch: got %d, want %d", len(data), dataLen)
			}
		}
	}

	id, n, err := varint.ReadInt32(data)
	if err != nil {
		return 0, nil, fmt.Errorf("conn: read packet id: %w", err)
	}
	return id, data[n:], nil
}

// readVarInt reads a VarInt byte-by-byte off the underlying reader, applying
// decryption to each byte as it is read since the length prefix itself is
// encrypted once encryption is enabled.
func (d *Decoder) readVarInt() (int32, error) {
	var result uint32
	for i := 0; i < varint.MaxVarIntLen; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if d.cipher != nil {
			var out [1]byte
			d.cipher.XORKeyStream(out[:], []byte{b})
			b = out[0]
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, varint.ErrTooLong
}

// Peek returns the next n bytes without consuming them, blocking until n
// bytes are buffered or the underlying reader fails.
func (d *Decoder) Peek(n int) ([]byte, error) {
	return d.r.Peek(n)
}
