//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ring implements helpers for the rings Z_{2^n} with n in
// {8, 16, 32, 64}.
package ring

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// Ring defines the unsigned integer types used as ring elements.
type Ring interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// BitSize returns the bit size of the ring T.
func BitSize[T Ring]() int {
	return bits.OnesCount64(uint64(^T(0)))
}

// ByteSize returns the byte size of the ring T.
func ByteSize[T Ring]() int {
	return BitSize[T]() / 8
}

// Random creates n random ring elements.
func Random[T Ring](r io.Reader, n int) ([]T, error) {
	buf := make([]byte, n*ByteSize[T]())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "ring: random")
	}
	return Decode[T](buf, n)
}

// Encode encodes the values as little-endian bytes.
func Encode[T Ring](vals []T) []byte {
	size := ByteSize[T]()
	buf := make([]byte, len(vals)*size)
	for i, v := range vals {
		Put(buf[i*size:], v)
	}
	return buf
}

// Put stores v into buf in little-endian byte order.
func Put[T Ring](buf []byte, v T) {
	switch ByteSize[T]() {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}
}

// Get reads a little-endian ring element from buf.
func Get[T Ring](buf []byte) T {
	switch ByteSize[T]() {
	case 1:
		return T(buf[0])
	case 2:
		return T(binary.LittleEndian.Uint16(buf))
	case 4:
		return T(binary.LittleEndian.Uint32(buf))
	default:
		return T(binary.LittleEndian.Uint64(buf))
	}
}

// Decode decodes n little-endian ring elements from data.
func Decode[T Ring](data []byte, n int) ([]T, error) {
	size := ByteSize[T]()
	if len(data) != n*size {
		return nil, errors.Newf("ring: invalid data length %d, expected %d",
			len(data), n*size)
	}
	result := make([]T, n)
	for i := range result {
		result[i] = Get[T](data[i*size:])
	}
	return result, nil
}

// Add returns a+b element-wise.
func Add[T Ring](a, b []T) []T {
	check(a, b)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return r
}

// Sub returns a-b element-wise.
func Sub[T Ring](a, b []T) []T {
	check(a, b)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return r
}

// Mul returns a*b element-wise.
func Mul[T Ring](a, b []T) []T {
	check(a, b)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] * b[i]
	}
	return r
}

// Neg returns -a element-wise.
func Neg[T Ring](a []T) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = -a[i]
	}
	return r
}

// AddTo sets a to a+b element-wise.
func AddTo[T Ring](a, b []T) {
	check(a, b)
	for i := range a {
		a[i] += b[i]
	}
}

// SubFrom sets a to a-b element-wise.
func SubFrom[T Ring](a, b []T) {
	check(a, b)
	for i := range a {
		a[i] -= b[i]
	}
}

func check[T Ring](a, b []T) {
	if len(a) != len(b) {
		panic(errors.AssertionFailedf("ring: length mismatch %d != %d",
			len(a), len(b)))
	}
}
