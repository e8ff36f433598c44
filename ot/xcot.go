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

// XCOTSender implements the XOR-correlated OT sender. For each OT i,
// the receiver with choice c learns out[i] ⊕ c·Δ[i] where out[i] is
// the sender's output and Δ[i] the sender's correlation.
type XCOTSender struct {
	batch
	correlations bitvec.BitVector
	outputs      bitvec.BitVector
	haveCorr     bool
	sent         bool
}

// RegisterSendXCOT registers n XCOTs of bitLen bits.
func (p *Provider) RegisterSendXCOT(n, bitLen int) *XCOTSender {
	return &XCOTSender{
		batch: batch{
			p:      p,
			id:     p.register(&p.snd.numOTs, n),
			n:      n,
			bitLen: bitLen,
		},
	}
}

// SetCorrelations sets the n·bitLen correlation bits. The correlation
// of OT i is the bits [i·bitLen, (i+1)·bitLen).
func (s *XCOTSender) SetCorrelations(c bitvec.BitVector) {
	if c.Size() != s.n*s.bitLen {
		panic(errors.AssertionFailedf("xcot %d: %d correlation bits, expected %d",
			s.id, c.Size(), s.n*s.bitLen))
	}
	s.correlations = c
	s.haveCorr = true
}

// SendMessages waits for the receiver's corrections, computes the
// outputs, and sends the sender message.
func (s *XCOTSender) SendMessages() error {
	if !s.haveCorr {
		panic(errors.AssertionFailedf("xcot %d: correlations not set", s.id))
	}
	onceFlag(&s.sent, "XCOTSender.SendMessages")

	p0, p1, err := s.receiveCorrections()
	if err != nil {
		return err
	}
	z := bitvec.New(0)
	for i := 0; i < s.n; i++ {
		p1[i].Xor(p0[i])
		p1[i].Xor(s.correlations.Subset(i*s.bitLen, (i+1)*s.bitLen))
		z.Append(p1[i])
	}
	s.outputs = bitvec.Concat(p0...)
	return s.p.msg.SendOTSender(s.id, z.Bytes())
}

// Outputs returns the sender outputs.
func (s *XCOTSender) Outputs() bitvec.BitVector {
	if !s.sent {
		panic(errors.AssertionFailedf("xcot %d: outputs not computed", s.id))
	}
	return s.outputs
}

// XCOTReceiver implements the XOR-correlated OT receiver.
type XCOTReceiver struct {
	batch
	choices    bitvec.BitVector
	pads       []bitvec.BitVector
	outputs    bitvec.BitVector
	haveChoice bool
	sent       bool
	computed   bool
}

// RegisterReceiveXCOT registers n XCOTs of bitLen bits.
func (p *Provider) RegisterReceiveXCOT(n, bitLen int) *XCOTReceiver {
	return &XCOTReceiver{
		batch: batch{
			p:      p,
			id:     p.register(&p.rcv.numOTs, n),
			n:      n,
			bitLen: bitLen,
		},
	}
}

// SetChoices sets the n choice bits.
func (r *XCOTReceiver) SetChoices(c bitvec.BitVector) {
	if c.Size() != r.n {
		panic(errors.AssertionFailedf("xcot %d: %d choices, expected %d",
			r.id, c.Size(), r.n))
	}
	r.choices = c
	r.haveChoice = true
}

// SendCorrections sends the choice corrections to the sender.
func (r *XCOTReceiver) SendCorrections() error {
	if !r.haveChoice {
		panic(errors.AssertionFailedf("xcot %d: choices not set", r.id))
	}
	onceFlag(&r.sent, "XCOTReceiver.SendCorrections")

	var err error
	r.pads, err = r.sendCorrections(r.choices)
	return err
}

// ComputeOutputs receives the sender message and computes the
// outputs.
func (r *XCOTReceiver) ComputeOutputs() error {
	if !r.sent {
		panic(errors.AssertionFailedf("xcot %d: corrections not sent", r.id))
	}
	onceFlag(&r.computed, "XCOTReceiver.ComputeOutputs")

	data, err := r.receiveSenderMessage((r.n*r.bitLen + 7) / 8)
	if err != nil {
		return err
	}
	z, err := bitvec.FromBytes(data, r.n*r.bitLen)
	if err != nil {
		return err
	}
	for i := 0; i < r.n; i++ {
		if r.choices.Get(i) {
			r.pads[i].Xor(z.Subset(i*r.bitLen, (i+1)*r.bitLen))
		}
	}
	r.outputs = bitvec.Concat(r.pads...)
	r.pads = nil
	return nil
}

// Outputs returns the receiver outputs.
func (r *XCOTReceiver) Outputs() bitvec.BitVector {
	if !r.computed {
		panic(errors.AssertionFailedf("xcot %d: outputs not computed", r.id))
	}
	return r.outputs
}
