//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
)

// ROTSender implements the random OT sender. The sender gets two
// random bitLen bit messages per OT and no messages are exchanged.
type ROTSender struct {
	batch
	m0, m1   bitvec.BitVector
	computed bool
}

// RegisterSendROT registers n ROTs of bitLen bits.
func (p *Provider) RegisterSendROT(n, bitLen int) *ROTSender {
	return &ROTSender{
		batch: batch{
			p:      p,
			id:     p.register(&p.snd.numOTs, n),
			n:      n,
			bitLen: bitLen,
		},
	}
}

// ComputeOutputs waits for the OT setup and computes the random
// messages.
func (s *ROTSender) ComputeOutputs() error {
	onceFlag(&s.computed, "ROTSender.ComputeOutputs")

	y0, y1, err := s.p.senderPads(s.id, s.n, s.bitLen)
	if err != nil {
		return err
	}
	s.m0 = bitvec.Concat(y0...)
	s.m1 = bitvec.Concat(y1...)
	return nil
}

// Outputs returns the random messages m0 and m1.
func (s *ROTSender) Outputs() (m0, m1 bitvec.BitVector) {
	if !s.computed {
		panic(errors.AssertionFailedf("rot %d: outputs not computed", s.id))
	}
	return s.m0, s.m1
}

// ROTReceiver implements the random OT receiver.
type ROTReceiver struct {
	batch
	choices  bitvec.BitVector
	outputs  bitvec.BitVector
	computed bool
}

// RegisterReceiveROT registers n ROTs of bitLen bits.
func (p *Provider) RegisterReceiveROT(n, bitLen int) *ROTReceiver {
	return &ROTReceiver{
		batch: batch{
			p:      p,
			id:     p.register(&p.rcv.numOTs, n),
			n:      n,
			bitLen: bitLen,
		},
	}
}

// ComputeOutputs waits for the OT setup and computes the outputs.
func (r *ROTReceiver) ComputeOutputs() error {
	onceFlag(&r.computed, "ROTReceiver.ComputeOutputs")

	y, c, err := r.p.receiverPads(r.id, r.n, r.bitLen)
	if err != nil {
		return err
	}
	r.outputs = bitvec.Concat(y...)
	r.choices = c
	return nil
}

// Choices returns the random choice bits.
func (r *ROTReceiver) Choices() bitvec.BitVector {
	if !r.computed {
		panic(errors.AssertionFailedf("rot %d: outputs not computed", r.id))
	}
	return r.choices
}

// Outputs returns the chosen random messages.
func (r *ROTReceiver) Outputs() bitvec.BitVector {
	if !r.computed {
		panic(errors.AssertionFailedf("rot %d: outputs not computed", r.id))
	}
	return r.outputs
}
