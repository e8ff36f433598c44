//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package mult implements secret-shared multiplication of private
// values over the ring T using additively correlated OTs. For
// sender input x and receiver input y, the parties get additive
// shares of x·y.
package mult

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/ring"
)

// IntSender implements the sender of the integer multiplication. The
// sender holds vectorSize values per SIMD slot and the receiver one
// value per slot.
type IntSender[T ring.Ring] struct {
	numSIMD    int
	vectorSize int
	acot       *ot.ACOTSender[T]
	haveInputs bool
	outputs    []T
}

// NewIntSender creates a new integer multiplication sender and
// registers its OTs with the provider.
func NewIntSender[T ring.Ring](p *ot.Provider, numSIMD, vectorSize int) *IntSender[T] {
	return &IntSender[T]{
		numSIMD:    numSIMD,
		vectorSize: vectorSize,
		acot:       ot.RegisterSendACOT[T](p, numSIMD*ring.BitSize[T](), vectorSize),
	}
}

// SetInputs sets the numSIMD·vectorSize sender values.
func (s *IntSender[T]) SetInputs(x []T) {
	if len(x) != s.numSIMD*s.vectorSize {
		panic(errors.AssertionFailedf("mult: %d inputs, expected %d",
			len(x), s.numSIMD*s.vectorSize))
	}
	bits := ring.BitSize[T]()
	v := s.vectorSize
	corr := make([]T, len(x)*bits)
	for i := 0; i < s.numSIMD; i++ {
		for b := 0; b < bits; b++ {
			for j := 0; j < v; j++ {
				corr[(i*bits+b)*v+j] = x[i*v+j] << b
			}
		}
	}
	s.acot.SetCorrelations(corr)
	s.haveInputs = true
}

// ComputeOutputs runs the OT exchange and computes the sender's
// share of the products.
func (s *IntSender[T]) ComputeOutputs() error {
	if !s.haveInputs {
		panic(errors.AssertionFailedf("mult: inputs not set"))
	}
	if err := s.acot.SendMessages(); err != nil {
		return errors.Wrap(err, "mult: sender")
	}
	bits := ring.BitSize[T]()
	v := s.vectorSize
	out := s.acot.Outputs()

	s.outputs = make([]T, s.numSIMD*v)
	for i := 0; i < s.numSIMD; i++ {
		for b := 0; b < bits; b++ {
			for j := 0; j < v; j++ {
				s.outputs[i*v+j] -= out[(i*bits+b)*v+j]
			}
		}
	}
	return nil
}

// Outputs returns the sender's numSIMD·vectorSize product shares.
func (s *IntSender[T]) Outputs() []T {
	if s.outputs == nil {
		panic(errors.AssertionFailedf("mult: outputs not computed"))
	}
	return s.outputs
}

// IntReceiver implements the receiver of the integer multiplication.
type IntReceiver[T ring.Ring] struct {
	numSIMD    int
	vectorSize int
	acot       *ot.ACOTReceiver[T]
	haveInputs bool
	outputs    []T
}

// NewIntReceiver creates a new integer multiplication receiver and
// registers its OTs with the provider.
func NewIntReceiver[T ring.Ring](p *ot.Provider, numSIMD, vectorSize int) *IntReceiver[T] {
	return &IntReceiver[T]{
		numSIMD:    numSIMD,
		vectorSize: vectorSize,
		acot:       ot.RegisterReceiveACOT[T](p, numSIMD*ring.BitSize[T](), vectorSize),
	}
}

// SetInputs sets the numSIMD receiver values.
func (r *IntReceiver[T]) SetInputs(y []T) {
	if len(y) != r.numSIMD {
		panic(errors.AssertionFailedf("mult: %d inputs, expected %d",
			len(y), r.numSIMD))
	}
	bits := ring.BitSize[T]()
	choices := bitvec.New(r.numSIMD * bits)
	for i, v := range y {
		for b := 0; b < bits; b++ {
			choices.Set(i*bits+b, (v>>b)&1 == 1)
		}
	}
	r.acot.SetChoices(choices)
	r.haveInputs = true
}

// ComputeOutputs runs the OT exchange and computes the receiver's
// share of the products.
func (r *IntReceiver[T]) ComputeOutputs() error {
	if !r.haveInputs {
		panic(errors.AssertionFailedf("mult: inputs not set"))
	}
	if err := r.acot.SendCorrections(); err != nil {
		return errors.Wrap(err, "mult: receiver")
	}
	if err := r.acot.ComputeOutputs(); err != nil {
		return errors.Wrap(err, "mult: receiver")
	}
	bits := ring.BitSize[T]()
	v := r.vectorSize
	out := r.acot.Outputs()

	r.outputs = make([]T, r.numSIMD*v)
	for i := 0; i < r.numSIMD; i++ {
		for b := 0; b < bits; b++ {
			for j := 0; j < v; j++ {
				r.outputs[i*v+j] += out[(i*bits+b)*v+j]
			}
		}
	}
	return nil
}

// Outputs returns the receiver's numSIMD·vectorSize product shares.
func (r *IntReceiver[T]) Outputs() []T {
	if r.outputs == nil {
		panic(errors.AssertionFailedf("mult: outputs not computed"))
	}
	return r.outputs
}
