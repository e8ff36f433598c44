//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ring"
)

// ACOTSender implements the additively correlated OT sender over the
// ring T. Each OT carries vectorSize ring elements. For each OT i,
// the receiver with choice c learns out[i] + c·corr[i].
type ACOTSender[T ring.Ring] struct {
	batch
	vectorSize   int
	correlations []T
	outputs      []T
	sent         bool
}

// RegisterSendACOT registers n ACOTs with vectorSize ring elements
// each.
func RegisterSendACOT[T ring.Ring](p *Provider, n, vectorSize int) *ACOTSender[T] {
	return &ACOTSender[T]{
		batch: batch{
			p:      p,
			id:     p.register(&p.snd.numOTs, n),
			n:      n,
			bitLen: ring.BitSize[T]() * vectorSize,
		},
		vectorSize: vectorSize,
	}
}

// VectorSize returns the number of ring elements per OT.
func (s *ACOTSender[T]) VectorSize() int {
	return s.vectorSize
}

// SetCorrelations sets the n·vectorSize correlations.
func (s *ACOTSender[T]) SetCorrelations(c []T) {
	if len(c) != s.n*s.vectorSize {
		panic(errors.AssertionFailedf("acot %d: %d correlations, expected %d",
			s.id, len(c), s.n*s.vectorSize))
	}
	s.correlations = c
}

// SendMessages waits for the receiver's corrections, computes the
// outputs, and sends the sender message.
func (s *ACOTSender[T]) SendMessages() error {
	if s.correlations == nil {
		panic(errors.AssertionFailedf("acot %d: correlations not set", s.id))
	}
	onceFlag(&s.sent, "ACOTSender.SendMessages")

	p0, p1, err := s.receiveCorrections()
	if err != nil {
		return err
	}
	v := s.vectorSize
	s.outputs = make([]T, s.n*v)
	z := make([]T, s.n*v)
	for i := 0; i < s.n; i++ {
		a := padValues[T](p0[i], v)
		b := padValues[T](p1[i], v)
		for j := 0; j < v; j++ {
			k := i*v + j
			s.outputs[k] = a[j]
			z[k] = a[j] + s.correlations[k] - b[j]
		}
	}
	return s.p.msg.SendOTSender(s.id, ring.Encode(z))
}

// Outputs returns the sender outputs.
func (s *ACOTSender[T]) Outputs() []T {
	if !s.sent {
		panic(errors.AssertionFailedf("acot %d: outputs not computed", s.id))
	}
	return s.outputs
}

// ACOTReceiver implements the additively correlated OT receiver over
// the ring T.
type ACOTReceiver[T ring.Ring] struct {
	batch
	vectorSize int
	choices    bitvec.BitVector
	haveChoice bool
	pads       []bitvec.BitVector
	outputs    []T
	sent       bool
	computed   bool
}

// RegisterReceiveACOT registers n ACOTs with vectorSize ring
// elements each.
func RegisterReceiveACOT[T ring.Ring](p *Provider, n, vectorSize int) *ACOTReceiver[T] {
	return &ACOTReceiver[T]{
		batch: batch{
			p:      p,
			id:     p.register(&p.rcv.numOTs, n),
			n:      n,
			bitLen: ring.BitSize[T]() * vectorSize,
		},
		vectorSize: vectorSize,
	}
}

// VectorSize returns the number of ring elements per OT.
func (r *ACOTReceiver[T]) VectorSize() int {
	return r.vectorSize
}

// SetChoices sets the n choice bits.
func (r *ACOTReceiver[T]) SetChoices(c bitvec.BitVector) {
	if c.Size() != r.n {
		panic(errors.AssertionFailedf("acot %d: %d choices, expected %d",
			r.id, c.Size(), r.n))
	}
	r.choices = c
	r.haveChoice = true
}

// SendCorrections sends the choice corrections to the sender.
func (r *ACOTReceiver[T]) SendCorrections() error {
	if !r.haveChoice {
		panic(errors.AssertionFailedf("acot %d: choices not set", r.id))
	}
	onceFlag(&r.sent, "ACOTReceiver.SendCorrections")

	var err error
	r.pads, err = r.sendCorrections(r.choices)
	return err
}

// ComputeOutputs receives the sender message and computes the
// outputs.
func (r *ACOTReceiver[T]) ComputeOutputs() error {
	if !r.sent {
		panic(errors.AssertionFailedf("acot %d: corrections not sent", r.id))
	}
	onceFlag(&r.computed, "ACOTReceiver.ComputeOutputs")

	v := r.vectorSize
	data, err := r.receiveSenderMessage(r.n * v * ring.ByteSize[T]())
	if err != nil {
		return err
	}
	z, err := ring.Decode[T](data, r.n*v)
	if err != nil {
		return err
	}
	r.outputs = make([]T, r.n*v)
	for i := 0; i < r.n; i++ {
		y := padValues[T](r.pads[i], v)
		c := r.choices.Get(i)
		for j := 0; j < v; j++ {
			k := i*v + j
			r.outputs[k] = y[j]
			if c {
				r.outputs[k] += z[k]
			}
		}
	}
	r.pads = nil
	return nil
}

// Outputs returns the receiver outputs.
func (r *ACOTReceiver[T]) Outputs() []T {
	if !r.computed {
		panic(errors.AssertionFailedf("acot %d: outputs not computed", r.id))
	}
	return r.outputs
}

func padValues[T ring.Ring](pad bitvec.BitVector, n int) []T {
	vals, err := ring.Decode[T](pad.Bytes(), n)
	if err != nil {
		panic(err)
	}
	return vals
}
