//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package mult

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/ring"
)

// BitSide implements the bit holder of the bit×integer
// multiplication. For bit b and integer vector x, the parties get
// additive shares of b·x.
type BitSide[T ring.Ring] struct {
	acot    *ot.ACOTReceiver[T]
	set     bool
	outputs []T
}

// NewBitSide creates a new bit side for numSIMD bits and registers
// its OTs.
func NewBitSide[T ring.Ring](p *ot.Provider, numSIMD, vectorSize int) *BitSide[T] {
	return &BitSide[T]{
		acot: ot.RegisterReceiveACOT[T](p, numSIMD, vectorSize),
	}
}

// SetInputs sets the numSIMD bits.
func (b *BitSide[T]) SetInputs(bits bitvec.BitVector) {
	b.acot.SetChoices(bits)
	b.set = true
}

// ComputeOutputs runs the OT exchange.
func (b *BitSide[T]) ComputeOutputs() error {
	if !b.set {
		panic(errors.AssertionFailedf("mult: bit inputs not set"))
	}
	if err := b.acot.SendCorrections(); err != nil {
		return errors.Wrap(err, "mult: bit side")
	}
	if err := b.acot.ComputeOutputs(); err != nil {
		return errors.Wrap(err, "mult: bit side")
	}
	b.outputs = b.acot.Outputs()
	return nil
}

// Outputs returns the numSIMD·vectorSize product shares.
func (b *BitSide[T]) Outputs() []T {
	if b.outputs == nil {
		panic(errors.AssertionFailedf("mult: outputs not computed"))
	}
	return b.outputs
}

// IntSide implements the integer holder of the bit×integer
// multiplication.
type IntSide[T ring.Ring] struct {
	acot    *ot.ACOTSender[T]
	set     bool
	outputs []T
}

// NewIntSide creates a new integer side for numSIMD slots of
// vectorSize integers and registers its OTs.
func NewIntSide[T ring.Ring](p *ot.Provider, numSIMD, vectorSize int) *IntSide[T] {
	return &IntSide[T]{
		acot: ot.RegisterSendACOT[T](p, numSIMD, vectorSize),
	}
}

// SetInputs sets the numSIMD·vectorSize integers.
func (s *IntSide[T]) SetInputs(x []T) {
	s.acot.SetCorrelations(x)
	s.set = true
}

// ComputeOutputs runs the OT exchange.
func (s *IntSide[T]) ComputeOutputs() error {
	if !s.set {
		panic(errors.AssertionFailedf("mult: integer inputs not set"))
	}
	if err := s.acot.SendMessages(); err != nil {
		return errors.Wrap(err, "mult: int side")
	}
	s.outputs = ring.Neg(s.acot.Outputs())
	return nil
}

// Outputs returns the numSIMD·vectorSize product shares.
func (s *IntSide[T]) Outputs() []T {
	if s.outputs == nil {
		panic(errors.AssertionFailedf("mult: outputs not computed"))
	}
	return s.outputs
}
