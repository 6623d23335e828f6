package protocol

// BlockPos is a block coordinate packed into a 64-bit word as
// x(26) ∥ z(26) ∥ y(12), the layout used on the wire (§3.1).
type BlockPos struct {
	X, Y, Z int32
}

const (
	xBits = 26
	zBits = 26
	yBits = 64 - xBits - zBits

	xMask = 1<<xBits - 1
	zMask = 1<<zBits - 1
	yMask = 1<<yBits - 1
)

// Pack encodes p as the 64-bit wire representation.
func (p BlockPos) Pack() int64 {
	x := uint64(p.X) & xMask
	z := uint64(p.Z) & zMask
	y := uint64(p.Y) & yMask
	return int64(x<<(zBits+yBits) | z<<yBits | y)
}

// UnpackBlockPos decodes the wire representation produced by Pack, sign
// extending each field.
func UnpackBlockPos(v int64) BlockPos {
	u := uint64(v)
	x := signExtend(u>>(zBits+yBits)&xMask, xBits)
	z := signExtend(u>>yBits&zMask, zBits)
	y := signExtend(u&yMask, yBits)
	return BlockPos{X: int32(x), Y: int32(y), Z: int32(z)}
}

func signExtend(v uint64, bits int) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}
