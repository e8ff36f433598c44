//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ring"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// SeedSize defines the size of the input sharing seeds in bytes.
const SeedSize = 32

const inputSharingDomain = "beavy input sharing v1"

// Randomness implements the pseudorandom streams of the input
// sharing. Each input ID selects an independent ChaCha20 stream so
// the streams can be read in any order.
type Randomness struct {
	key [chacha20.KeySize]byte
}

// NewRandomness creates the input sharing randomness from the seed.
// Both parties create the same randomness from the same seed.
func NewRandomness(seed []byte) (*Randomness, error) {
	if len(seed) != SeedSize {
		return nil, errors.Newf("beavy: invalid seed size %d", len(seed))
	}
	h, err := blake2b.New256(seed)
	if err != nil {
		return nil, errors.Wrap(err, "beavy: seed hash")
	}
	h.Write([]byte(inputSharingDomain))

	r := new(Randomness)
	copy(r.key[:], h.Sum(nil))
	return r, nil
}

func (r *Randomness) stream(id, n int) []byte {
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[4:], uint64(id))

	c, err := chacha20.NewUnauthenticatedCipher(r.key[:], nonce[:])
	if err != nil {
		panic(errors.AssertionFailedf("beavy: chacha20: %v", err))
	}
	buf := make([]byte, n)
	c.XORKeyStream(buf, buf)
	return buf
}

// GetBits returns n pseudorandom bits of the input ID.
func (r *Randomness) GetBits(id, n int) bitvec.BitVector {
	v, err := bitvec.FromBytes(r.stream(id, (n+7)/8), n)
	if err != nil {
		panic(errors.AssertionFailedf("beavy: random bits: %v", err))
	}
	return v
}

// GetUnsigned returns n pseudorandom ring elements of the input ID.
func GetUnsigned[T ring.Ring](r *Randomness, id, n int) []T {
	vals, err := ring.Decode[T](r.stream(id, n*ring.ByteSize[T]()), n)
	if err != nil {
		panic(errors.AssertionFailedf("beavy: random ints: %v", err))
	}
	return vals
}
