//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/hex"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
)

const (
	// BlockSize is the OT block size in bytes.
	BlockSize = 16

	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 8 * BlockSize
)

// Block implements a 128 bit OT block. Bit i is the bit i%8 of the
// byte i/8, the same layout as in bit vectors.
type Block [BlockSize]byte

// RandomBlock creates a random block.
func RandomBlock(r io.Reader) (Block, error) {
	var b Block
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return b, errors.Wrap(err, "ot: random block")
	}
	return b, nil
}

func (b Block) String() string {
	return hex.EncodeToString(b[:])
}

// Bit returns the block bit i as 0 or 1.
func (b Block) Bit(i int) uint {
	return uint(b[i/8]>>(i%8)) & 1
}

// SetBit sets the block bit i to the value v.
func (b *Block) SetBit(i int, v uint) {
	mask := byte(1) << (i % 8)
	if v&1 == 1 {
		b[i/8] |= mask
	} else {
		b[i/8] &^= mask
	}
}

// Xor returns b ⊕ o.
func (b Block) Xor(o Block) Block {
	for i := range b {
		b[i] ^= o[i]
	}
	return b
}

// Bits returns the first bitLen bits of the block. The bitLen must
// be at most K.
func (b Block) Bits(bitLen int) bitvec.BitVector {
	v, err := bitvec.FromBytes(b[:], bitLen)
	if err != nil {
		panic(errors.AssertionFailedf("ot: %d bits from a block", bitLen))
	}
	return v
}
