//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bitvec implements packed bit vectors. Bit i is stored in
// byte i/8 at bit position i%8.
package bitvec

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// BitVector implements a fixed-size vector of bits.
type BitVector struct {
	data []byte
	size int
}

func numBytes(bits int) int {
	return (bits + 7) / 8
}

// New creates a new zero bit vector of size bits.
func New(size int) BitVector {
	return BitVector{
		data: make([]byte, numBytes(size)),
		size: size,
	}
}

// NewFilled creates a new bit vector of size bits, all set to val.
func NewFilled(size int, val bool) BitVector {
	v := New(size)
	if val {
		for i := range v.data {
			v.data[i] = 0xff
		}
		v.clearTail()
	}
	return v
}

// Random creates a new random bit vector of size bits.
func Random(r io.Reader, size int) (BitVector, error) {
	v := New(size)
	if _, err := io.ReadFull(r, v.data); err != nil {
		return v, errors.Wrap(err, "bitvec: random")
	}
	v.clearTail()
	return v, nil
}

// FromBytes creates a bit vector of size bits from the packed
// data. The function returns an error if data is too short.
func FromBytes(data []byte, size int) (BitVector, error) {
	if len(data) < numBytes(size) {
		return BitVector{}, errors.Newf("bitvec: %d bytes too short for %d bits",
			len(data), size)
	}
	v := New(size)
	copy(v.data, data)
	v.clearTail()
	return v, nil
}

// FromBools creates a bit vector from the boolean values.
func FromBools(vals []bool) BitVector {
	v := New(len(vals))
	for i, b := range vals {
		v.Set(i, b)
	}
	return v
}

func (v *BitVector) clearTail() {
	if v.size%8 != 0 {
		v.data[len(v.data)-1] &= byte(1<<(v.size%8)) - 1
	}
}

// Size returns the number of bits in the vector.
func (v BitVector) Size() int {
	return v.size
}

// Bytes returns the packed vector data. The returned slice shares
// storage with the vector.
func (v BitVector) Bytes() []byte {
	return v.data
}

// Get returns the bit i.
func (v BitVector) Get(i int) bool {
	return v.data[i/8]&(1<<(i%8)) != 0
}

// Bit returns the bit i as 0 or 1.
func (v BitVector) Bit(i int) uint {
	return uint(v.data[i/8]>>(i%8)) & 1
}

// Set sets the bit i to val.
func (v BitVector) Set(i int, val bool) {
	if val {
		v.data[i/8] |= 1 << (i % 8)
	} else {
		v.data[i/8] &^= 1 << (i % 8)
	}
}

// Clone returns a deep copy of the vector.
func (v BitVector) Clone() BitVector {
	n := BitVector{
		data: make([]byte, len(v.data)),
		size: v.size,
	}
	copy(n.data, v.data)
	return n
}

func (v BitVector) check(o BitVector, op string) {
	if v.size != o.size {
		panic(errors.AssertionFailedf("bitvec: %s: size mismatch %d != %d",
			op, v.size, o.size))
	}
}

// Xor sets v to v^o. The vectors must have equal sizes.
func (v BitVector) Xor(o BitVector) {
	v.check(o, "xor")
	for i := range v.data {
		v.data[i] ^= o.data[i]
	}
}

// And sets v to v&o. The vectors must have equal sizes.
func (v BitVector) And(o BitVector) {
	v.check(o, "and")
	for i := range v.data {
		v.data[i] &= o.data[i]
	}
}

// Not inverts all bits of v.
func (v BitVector) Not() {
	for i := range v.data {
		v.data[i] = ^v.data[i]
	}
	v.clearTail()
}

// XorOf returns a^b.
func XorOf(a, b BitVector) BitVector {
	r := a.Clone()
	r.Xor(b)
	return r
}

// AndOf returns a&b.
func AndOf(a, b BitVector) BitVector {
	r := a.Clone()
	r.And(b)
	return r
}

// Equal tests if the vectors are equal.
func (v BitVector) Equal(o BitVector) bool {
	if v.size != o.size {
		return false
	}
	for i := range v.data {
		if v.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Append appends the bits of o to v.
func (v *BitVector) Append(o BitVector) {
	if v.size%8 == 0 {
		v.data = append(v.data[:numBytes(v.size)], o.data...)
		v.size += o.size
		return
	}
	start := v.size
	v.size += o.size
	for len(v.data) < numBytes(v.size) {
		v.data = append(v.data, 0)
	}
	for i := 0; i < o.size; i++ {
		v.Set(start+i, o.Get(i))
	}
}

// Concat concatenates the vectors.
func Concat(vs ...BitVector) BitVector {
	var total int
	for _, v := range vs {
		total += v.size
	}
	r := BitVector{
		data: make([]byte, 0, numBytes(total)),
	}
	for _, v := range vs {
		r.Append(v)
	}
	return r
}

// Subset returns the bits [from, to) as a new vector.
func (v BitVector) Subset(from, to int) BitVector {
	if from < 0 || to > v.size || from > to {
		panic(errors.AssertionFailedf("bitvec: invalid subset [%d,%d) of %d",
			from, to, v.size))
	}
	r := New(to - from)
	if from%8 == 0 {
		copy(r.data, v.data[from/8:])
		r.clearTail()
		return r
	}
	for i := from; i < to; i++ {
		r.Set(i-from, v.Get(i))
	}
	return r
}

// OnesCount returns the number of set bits.
func (v BitVector) OnesCount() int {
	var count int
	for i := 0; i < v.size; i++ {
		if v.Get(i) {
			count++
		}
	}
	return count
}

func (v BitVector) String() string {
	var sb strings.Builder
	for i := 0; i < v.size; i++ {
		if v.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Parse parses the bit string of '0' and '1' characters.
func Parse(s string) (BitVector, error) {
	v := New(len(s))
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			v.Set(i, true)
		default:
			return v, errors.Newf("bitvec: invalid bit '%c'", c)
		}
	}
	return v, nil
}
