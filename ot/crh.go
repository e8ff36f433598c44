//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Efficient and Secure Multiparty Computation from Fixed-Key Block
// Ciphers
//  - https://eprint.iacr.org/2019/074.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
)

var fixedKey = Block{
	0x65, 0x78, 0x70, 0x61, 0x6e, 0x64, 0x20, 0x33,
	0x32, 0x2d, 0x62, 0x79, 0x74, 0x65, 0x20, 0x6b,
}

// CRH implements the tweakable circular correlation robust hash
// H(i, x) = π(π(x) ⊕ i) ⊕ π(x) where π is AES with a fixed key. The
// CRH is safe for concurrent use.
type CRH struct {
	block cipher.Block
}

// NewCRH creates a new fixed-key CRH.
func NewCRH() *CRH {
	block, err := aes.NewCipher(fixedKey[:])
	if err != nil {
		panic(err)
	}
	return &CRH{
		block: block,
	}
}

func (h *CRH) permute(x Block) Block {
	var r Block
	h.block.Encrypt(r[:], x[:])
	return r
}

// Hash hashes the block x with the tweak i.
func (h *CRH) Hash(i uint64, x Block) Block {
	px := h.permute(x)
	t := px
	binary.LittleEndian.PutUint64(t[:8],
		binary.LittleEndian.Uint64(t[:8])^i)
	return h.permute(t).Xor(px)
}

// Pad derives a bitLen bit pad from the block x with the tweak i.
// Pads longer than a block are expanded with the AES-CTR PRG keyed
// by the hash value.
func (h *CRH) Pad(i uint64, x Block, bitLen int) bitvec.BitVector {
	hv := h.Hash(i, x)
	if bitLen <= K {
		return hv.Bits(bitLen)
	}
	g, err := newPRG(hv)
	if err != nil {
		panic(err)
	}
	buf := make([]byte, (bitLen+7)/8)
	g.fill(buf)
	v, err := bitvec.FromBytes(buf, bitLen)
	if err != nil {
		panic(errors.AssertionFailedf("ot: pad: %v", err))
	}
	return v
}

// prg implements the AES-CTR pseudorandom generator.
type prg struct {
	stream cipher.Stream
}

func newPRG(seed Block) (*prg, error) {
	block, err := aes.NewCipher(seed[:])
	if err != nil {
		return nil, errors.Wrap(err, "ot: prg")
	}
	var iv [aes.BlockSize]byte
	return &prg{
		stream: cipher.NewCTR(block, iv[:]),
	}, nil
}

// fill fills buf with the next len(buf) pseudorandom bytes.
func (g *prg) fill(buf []byte) {
	clear(buf)
	g.stream.XORKeyStream(buf, buf)
}
