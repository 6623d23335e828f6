package chunk

import (
	"bytes"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// EncodeBlockEntityNBT serialises v (typically a map[string]any built by a
// gameplay-level caller) into the opaque Data field of a BlockEntity, using
// the big-endian encoding Java Edition's NBT wire format requires. The core
// itself never inspects the result (§6.4); this is purely the bridge to the
// external NBT codec.
func EncodeBlockEntityNBT(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(v); err != nil {
		return nil, fmt.Errorf("chunk: encode block entity nbt: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBlockEntityNBT reverses EncodeBlockEntityNBT into v, which must be a
// pointer as required by the nbt package.
func DecodeBlockEntityNBT(data []byte, v any) error {
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(data), nbt.BigEndian).Decode(v); err != nil {
		return fmt.Errorf("chunk: decode block entity nbt: %w", err)
	}
	return nil
}
