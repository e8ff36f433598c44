//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

package ot

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/bwesterb/go-ristretto"
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"golang.org/x/crypto/blake2b"
)

var (
	_ BaseOT = &CO{}
)

const pointSize = 32

// BaseOT defines the random 1-out-of-2 oblivious transfer that seeds
// the OT extension. The sender learns n random block pairs and the
// receiver learns the block of each pair selected by its choice bit.
type BaseOT interface {
	Send(io IO, n int) ([][2]Block, error)
	Receive(io IO, choices bitvec.BitVector) ([]Block, error)
}

// CO implements the Chou-Orlandi random OT over the ristretto255
// group.
type CO struct {
	rand io.Reader
}

// NewCO creates a new CO OT. The rand is the source of the
// protocol's random scalars. If rand is nil, crypto/rand.Reader is
// used.
func NewCO(r io.Reader) *CO {
	if r == nil {
		r = rand.Reader
	}
	return &CO{
		rand: r,
	}
}

func (co *CO) scalar() (*ristretto.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(co.rand, buf[:]); err != nil {
		return nil, errors.Wrap(err, "co: random scalar")
	}
	return new(ristretto.Scalar).SetReduced(&buf), nil
}

func decodePoint(data []byte) (*ristretto.Point, bool) {
	var buf [pointSize]byte
	copy(buf[:], data)
	p := new(ristretto.Point)
	return p, p.SetBytes(&buf)
}

// key derives the OT key i from the shared point. The sender's
// public point A binds the keys to the session.
func key(A []byte, i int, p *ristretto.Point) Block {
	h, err := blake2b.New(BlockSize, nil)
	if err != nil {
		panic(err)
	}
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(i))
	h.Write(A)
	h.Write(idx[:])
	h.Write(p.Bytes())

	var k Block
	h.Sum(k[:0])
	return k
}

// Send runs the OT sender with n OTs. It returns the key pairs.
func (co *CO) Send(io IO, n int) ([][2]Block, error) {
	a, err := co.scalar()
	if err != nil {
		return nil, err
	}
	A := new(ristretto.Point).ScalarMultBase(a)
	aBytes := A.Bytes()
	if err := io.SendData(aBytes); err != nil {
		return nil, errors.Wrap(err, "co: send A")
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}

	data, err := receiveExact(io, n*pointSize, "co: points")
	if err != nil {
		return nil, err
	}
	// aA is subtracted from a·B to get the key of choice 1.
	aA := new(ristretto.Point).ScalarMult(A, a)

	result := make([][2]Block, n)
	for i := range result {
		B, ok := decodePoint(data[i*pointSize:])
		if !ok {
			return nil, errors.Newf("co: invalid point %d", i)
		}
		aB := new(ristretto.Point).ScalarMult(B, a)
		result[i][0] = key(aBytes, i, aB)
		result[i][1] = key(aBytes, i, new(ristretto.Point).Sub(aB, aA))
	}
	return result, nil
}

// Receive runs the OT receiver for the choice bits. It returns the
// keys of the chosen messages.
func (co *CO) Receive(io IO, choices bitvec.BitVector) ([]Block, error) {
	aBytes, err := receiveExact(io, pointSize, "co: A")
	if err != nil {
		return nil, err
	}
	A, ok := decodePoint(aBytes)
	if !ok {
		return nil, errors.New("co: invalid sender point")
	}

	n := choices.Size()
	points := make([]byte, 0, n*pointSize)
	result := make([]Block, n)
	for i := range result {
		b, err := co.scalar()
		if err != nil {
			return nil, err
		}
		B := new(ristretto.Point).ScalarMultBase(b)
		if choices.Get(i) {
			B = new(ristretto.Point).Add(B, A)
		}
		points = append(points, B.Bytes()...)
		result[i] = key(aBytes, i, new(ristretto.Point).ScalarMult(A, b))
	}
	if err := io.SendData(points); err != nil {
		return nil, errors.Wrap(err, "co: send points")
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}
	return result, nil
}
