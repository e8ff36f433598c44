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

// GOTSender implements the general 1-out-of-2 OT sender with two
// independent bitLen bit messages per OT.
type GOTSender struct {
	batch
	m0, m1     bitvec.BitVector
	haveInputs bool
	sent       bool
}

// RegisterSendGOT registers n GOTs of bitLen bits.
func (p *Provider) RegisterSendGOT(n, bitLen int) *GOTSender {
	return &GOTSender{
		batch: batch{
			p:      p,
			id:     p.register(&p.snd.numOTs, n),
			n:      n,
			bitLen: bitLen,
		},
	}
}

// SetInputs sets the n·bitLen bit message vectors m0 and m1.
func (s *GOTSender) SetInputs(m0, m1 bitvec.BitVector) {
	if m0.Size() != s.n*s.bitLen || m1.Size() != s.n*s.bitLen {
		panic(errors.AssertionFailedf("got %d: invalid input sizes %d/%d",
			s.id, m0.Size(), m1.Size()))
	}
	s.m0 = m0
	s.m1 = m1
	s.haveInputs = true
}

// SendMessages waits for the receiver's corrections and sends the
// encrypted messages.
func (s *GOTSender) SendMessages() error {
	if !s.haveInputs {
		panic(errors.AssertionFailedf("got %d: inputs not set", s.id))
	}
	onceFlag(&s.sent, "GOTSender.SendMessages")

	p0, p1, err := s.receiveCorrections()
	if err != nil {
		return err
	}
	e := bitvec.New(0)
	for i := 0; i < s.n; i++ {
		p0[i].Xor(s.m0.Subset(i*s.bitLen, (i+1)*s.bitLen))
		p1[i].Xor(s.m1.Subset(i*s.bitLen, (i+1)*s.bitLen))
		e.Append(p0[i])
		e.Append(p1[i])
	}
	return s.p.msg.SendOTSender(s.id, e.Bytes())
}

// GOTReceiver implements the general 1-out-of-2 OT receiver.
type GOTReceiver struct {
	batch
	choices    bitvec.BitVector
	haveChoice bool
	pads       []bitvec.BitVector
	outputs    bitvec.BitVector
	sent       bool
	computed   bool
}

// RegisterReceiveGOT registers n GOTs of bitLen bits.
func (p *Provider) RegisterReceiveGOT(n, bitLen int) *GOTReceiver {
	return &GOTReceiver{
		batch: batch{
			p:      p,
			id:     p.register(&p.rcv.numOTs, n),
			n:      n,
			bitLen: bitLen,
		},
	}
}

// SetChoices sets the n choice bits.
func (r *GOTReceiver) SetChoices(c bitvec.BitVector) {
	if c.Size() != r.n {
		panic(errors.AssertionFailedf("got %d: %d choices, expected %d",
			r.id, c.Size(), r.n))
	}
	r.choices = c
	r.haveChoice = true
}

// SendCorrections sends the choice corrections to the sender.
func (r *GOTReceiver) SendCorrections() error {
	if !r.haveChoice {
		panic(errors.AssertionFailedf("got %d: choices not set", r.id))
	}
	onceFlag(&r.sent, "GOTReceiver.SendCorrections")

	var err error
	r.pads, err = r.sendCorrections(r.choices)
	return err
}

// ComputeOutputs receives the encrypted messages and decrypts the
// chosen ones.
func (r *GOTReceiver) ComputeOutputs() error {
	if !r.sent {
		panic(errors.AssertionFailedf("got %d: corrections not sent", r.id))
	}
	onceFlag(&r.computed, "GOTReceiver.ComputeOutputs")

	size := 2 * r.n * r.bitLen
	data, err := r.receiveSenderMessage((size + 7) / 8)
	if err != nil {
		return err
	}
	e, err := bitvec.FromBytes(data, size)
	if err != nil {
		return err
	}
	for i := 0; i < r.n; i++ {
		ofs := 2 * i * r.bitLen
		if r.choices.Get(i) {
			ofs += r.bitLen
		}
		r.pads[i].Xor(e.Subset(ofs, ofs+r.bitLen))
	}
	r.outputs = bitvec.Concat(r.pads...)
	r.pads = nil
	return nil
}

// Outputs returns the chosen messages.
func (r *GOTReceiver) Outputs() bitvec.BitVector {
	if !r.computed {
		panic(errors.AssertionFailedf("got %d: outputs not computed", r.id))
	}
	return r.outputs
}
