//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/ring"
	"github.com/markkurossi/beavy/wire"
)

// bitsCore converts the masks of boolean wires into arithmetic
// shares with one ACOT batch where party 0 is the sender. For bit
// shares s₀ and s₁ the OT gives shares of s₀·s₁ and the arithmetic
// mask is s₀ + s₁ - 2·s₀s₁.
type bitsCore[T ring.Ring] struct {
	numWires int
	numSIMD  int
	shift    bool
	sender   *ot.ACOTSender[T]
	receiver *ot.ACOTReceiver[T]
	deltas   []T
}

func newBitsCore[T ring.Ring](p *Provider, numWires, numSIMD int,
	shift bool) bitsCore[T] {

	c := bitsCore[T]{
		numWires: numWires,
		numSIMD:  numSIMD,
		shift:    shift,
	}
	if p.myID == 0 {
		c.sender = ot.RegisterSendACOT[T](p.otp, numWires*numSIMD, 1)
	} else {
		c.receiver = ot.RegisterReceiveACOT[T](p.otp, numWires*numSIMD, 1)
	}
	return c
}

func bitValues[T ring.Ring](v bitvec.BitVector) []T {
	result := make([]T, v.Size())
	for i := range result {
		result[i] = T(v.Bit(i))
	}
	return result
}

// setup computes the arithmetic shares of the boolean masks.
func (c *bitsCore[T]) setup(secrets bitvec.BitVector) error {
	bits := bitValues[T](secrets)
	c.deltas = make([]T, len(bits))

	if c.sender != nil {
		c.sender.SetCorrelations(bits)
		if err := c.sender.SendMessages(); err != nil {
			return err
		}
		for i, out := range c.sender.Outputs() {
			c.deltas[i] = bits[i] + 2*out
		}
		return nil
	}
	c.receiver.SetChoices(secrets)
	if err := c.receiver.SendCorrections(); err != nil {
		return err
	}
	if err := c.receiver.ComputeOutputs(); err != nil {
		return err
	}
	for i, out := range c.receiver.Outputs() {
		c.deltas[i] = bits[i] - 2*out
	}
	return nil
}

// online returns this party's arithmetic share of the sum of the
// wire values, each shifted by its wire index if shift is set.
func (c *bitsCore[T]) online(publics bitvec.BitVector, myJob bool) []T {
	result := make([]T, c.numSIMD)
	for w := 0; w < c.numWires; w++ {
		for j := range result {
			k := w*c.numSIMD + j
			p := T(publics.Bit(k))
			v := (1 - 2*p) * c.deltas[k]
			if myJob {
				v += p
			}
			if c.shift {
				v <<= w
			}
			result[j] += v
		}
	}
	return result
}

// BitsToArithmeticGate implements the conversions of boolean wires to
// an arithmetic wire: Bit2A of one wire, B2A of the bit-decomposed
// wires of a ring element, and COUNT of the set bits of any number
// of wires.
type BitsToArithmeticGate[T ring.Ring] struct {
	gate
	op         circuit.Operation
	core       bitsCore[T]
	inputs     []*BooleanWire
	output     *ArithmeticWire[T]
	publicY    []T
	peerShares *comm.IntsFuture[T]
}

func newBitsToArithmeticGate[T ring.Ring](p *Provider, op circuit.Operation,
	inputs []*BooleanWire) *BitsToArithmeticGate[T] {

	numSIMD := wire.CheckSIMD(inputs...)

	g := &BitsToArithmeticGate[T]{
		gate:   p.newGate(),
		op:     op,
		core:   newBitsCore[T](p, len(inputs), numSIMD, op == circuit.B2A),
		inputs: inputs,
		output: newArithmeticWire[T](p, numSIMD),
	}
	g.peerShares = comm.RegisterInts[T](p.layer, g.id, 0, numSIMD)
	return g
}

// NewBit2AGate creates a gate converting the boolean wire into an
// arithmetic wire holding 0 or 1.
func NewBit2AGate[T ring.Ring](p *Provider,
	input *BooleanWire) *BitsToArithmeticGate[T] {

	g := newBitsToArithmeticGate[T](p, circuit.Bit2A, []*BooleanWire{input})
	p.reg.AddGate(g)
	return g
}

// NewB2AGate creates a gate converting the BitSize(T) wires, least
// significant bit first, into an arithmetic wire.
func NewB2AGate[T ring.Ring](p *Provider,
	inputs []*BooleanWire) *BitsToArithmeticGate[T] {

	if len(inputs) != ring.BitSize[T]() {
		panic(errors.AssertionFailedf("beavy: B2A: %d wires for %d-bit ring",
			len(inputs), ring.BitSize[T]()))
	}
	g := newBitsToArithmeticGate[T](p, circuit.B2A, inputs)
	p.reg.AddGate(g)
	return g
}

// NewCOUNTGate creates a gate counting the set bits of the wires.
func NewCOUNTGate[T ring.Ring](p *Provider,
	inputs []*BooleanWire) *BitsToArithmeticGate[T] {

	g := newBitsToArithmeticGate[T](p, circuit.COUNT, inputs)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *BitsToArithmeticGate[T]) Op() circuit.Operation {
	return g.op
}

// Output returns the output wire.
func (g *BitsToArithmeticGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *BitsToArithmeticGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *BitsToArithmeticGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *BitsToArithmeticGate[T]) EvaluateSetup() error {
	if err := g.core.setup(appendSecrets(g.inputs)); err != nil {
		return err
	}
	var err error
	g.output.Secret, err = randomInts[T](g.p, g.output.NumSIMD())
	if err != nil {
		return err
	}
	g.publicY = append([]T(nil), g.output.Secret...)
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *BitsToArithmeticGate[T]) EvaluateOnline() error {
	share := g.core.online(appendPublics(g.inputs), g.isMyJob())
	ring.AddTo(g.publicY, share)

	if err := comm.SendInts(g.p.layer, g.id, 0, g.publicY); err != nil {
		return err
	}
	peer, err := g.peerShares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: public shares", g.id)
	}
	ring.AddTo(g.publicY, peer)

	g.output.Public = g.publicY
	g.output.SetOnlineReady()
	return nil
}
