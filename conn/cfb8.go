package conn

import (
	"crypto/aes"
	"crypto/cipher"
)

// cfb8 implements AES in 8-bit cipher-feedback mode (CFB-8), which the
// standard library does not provide (crypto/cipher's CFB implementation
// operates on the full block size). Minecraft uses the 16-byte shared
// secret as both the AES key and the initial feedback register, per §6.2.
type cfb8 struct {
	block   cipher.Block
	reg     []byte
	decrypt bool
}

func newCFB8Encrypt(key [16]byte) (*cfb8, error) {
	return newCFB8(key, false)
}

func newCFB8Decrypt(key [16]byte) (*cfb8, error) {
	return newCFB8(key, true)
}

func newCFB8(key [16]byte, decrypt bool) (*cfb8, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	reg := make([]byte, len(key))
	copy(reg, key[:])
	return &cfb8{block: block, reg: reg, decrypt: decrypt}, nil
}

// XORKeyStream processes src into dst one byte at a time, updating the
// feedback register after every byte. dst and src may alias (in-place use).
func (c *cfb8) XORKeyStream(dst, src []byte) {
	var tmp [16]byte
	for i, in := range src {
		c.block.Encrypt(tmp[:], c.reg)
		out := in ^ tmp[0]

		// Shift the register left by one byte and append the ciphertext byte
		// (the decrypted plaintext never enters the feedback path).
		copy(c.reg, c.reg[1:])
		if c.decrypt {
			c.reg[len(c.reg)-1] = in
		} else {
			c.reg[len(c.reg)-1] = out
		}
		dst[i] = out
	}
}
