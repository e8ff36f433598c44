//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package comm

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ring"
)

// BitsFuture implements a future for a bit vector message of a gate.
type BitsFuture struct {
	l    *Layer
	k    key
	size int
	used atomic.Bool
}

// RegisterBits registers a size bit message for the gate's message
// index and returns its future.
func (l *Layer) RegisterBits(gateID, index, size int) *BitsFuture {
	k := key{
		t:     TypeBits,
		id:    uint32(gateID),
		index: uint32(index),
	}
	l.register(k)
	return &BitsFuture{
		l:    l,
		k:    k,
		size: size,
	}
}

// Get blocks until the message arrives and returns it. Get can be
// called only once.
func (f *BitsFuture) Get() (bitvec.BitVector, error) {
	if !f.used.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("comm: %v: Get called twice", f.k))
	}
	data, err := f.l.receive(f.k)
	if err != nil {
		return bitvec.BitVector{}, err
	}
	if len(data) != (f.size+7)/8 {
		return bitvec.BitVector{}, errors.Newf("comm: %v: invalid length %d "+
			"for %d bits", f.k, len(data), f.size)
	}
	return bitvec.FromBytes(data, f.size)
}

// SendBits sends the bit vector message for the gate's message index.
func (l *Layer) SendBits(gateID, index int, v bitvec.BitVector) error {
	return l.send(key{
		t:     TypeBits,
		id:    uint32(gateID),
		index: uint32(index),
	}, v.Bytes(), true)
}

// IntsFuture implements a future for a ring element vector message of
// a gate.
type IntsFuture[T ring.Ring] struct {
	l    *Layer
	k    key
	n    int
	used atomic.Bool
}

// RegisterInts registers an n element message for the gate's message
// index and returns its future.
func RegisterInts[T ring.Ring](l *Layer, gateID, index, n int) *IntsFuture[T] {
	k := key{
		t:     TypeInts,
		id:    uint32(gateID),
		index: uint32(index),
	}
	l.register(k)
	return &IntsFuture[T]{
		l: l,
		k: k,
		n: n,
	}
}

// Get blocks until the message arrives and returns it. Get can be
// called only once.
func (f *IntsFuture[T]) Get() ([]T, error) {
	if !f.used.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("comm: %v: Get called twice", f.k))
	}
	data, err := f.l.receive(f.k)
	if err != nil {
		return nil, err
	}
	vals, err := ring.Decode[T](data, f.n)
	if err != nil {
		return nil, errors.Wrapf(err, "comm: %v", f.k)
	}
	return vals, nil
}

// SendInts sends the ring element message for the gate's message
// index.
func SendInts[T ring.Ring](l *Layer, gateID, index int, vals []T) error {
	return l.send(key{
		t:     TypeInts,
		id:    uint32(gateID),
		index: uint32(index),
	}, ring.Encode(vals), true)
}
