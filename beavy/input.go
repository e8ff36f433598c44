//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ring"
)

// BooleanInputGateSender shares this party's boolean input. The mask
// is δ = δ₀ ⊕ δ₁ where the peer's share comes from the shared input
// randomness. The online phase broadcasts Δ = x ⊕ δ.
type BooleanInputGateSender struct {
	gate
	numSIMD int
	inputID int
	input   *Future[[]bitvec.BitVector]
	outputs []*BooleanWire
}

// NewBooleanInputGateSender creates an input gate for numWires wires
// of numSIMD bits that this party provides.
func NewBooleanInputGateSender(p *Provider, numWires,
	numSIMD int) *BooleanInputGateSender {

	if numWires <= 0 {
		panic(errors.AssertionFailedf("beavy: invalid number of wires %d",
			numWires))
	}
	g := &BooleanInputGateSender{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		inputID: p.NextInputID(numWires),
		outputs: p.newBooleanWires(numWires, numSIMD),
	}
	g.input = NewFuture[[]bitvec.BitVector]("boolean input")
	p.reg.AddGate(g)
	return g
}

// NeedSetup implements circuit.Gate.
func (g *BooleanInputGateSender) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *BooleanInputGateSender) NeedOnline() bool {
	return true
}

// SetInputs sets the plain input values, one bit vector of numSIMD
// bits per wire.
func (g *BooleanInputGateSender) SetInputs(inputs []bitvec.BitVector) {
	if len(inputs) != len(g.outputs) {
		panic(errors.AssertionFailedf("gate %d: %d inputs for %d wires",
			g.id, len(inputs), len(g.outputs)))
	}
	for i, in := range inputs {
		if in.Size() != g.numSIMD {
			panic(errors.AssertionFailedf("gate %d: input %d: size %d != %d",
				g.id, i, in.Size(), g.numSIMD))
		}
	}
	g.input.Set(inputs)
}

// Outputs returns the output wires.
func (g *BooleanInputGateSender) Outputs() []*BooleanWire {
	return g.outputs
}

// EvaluateSetup implements circuit.Gate.
func (g *BooleanInputGateSender) EvaluateSetup() error {
	r, err := g.p.myRandomness()
	if err != nil {
		return err
	}
	for i, w := range g.outputs {
		w.Secret, err = g.p.randomBits(g.numSIMD)
		if err != nil {
			return err
		}
		w.SetSetupReady()
		w.Public = w.Secret.Clone()
		w.Public.Xor(r.GetBits(g.inputID+i, g.numSIMD))
	}
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *BooleanInputGateSender) EvaluateOnline() error {
	inputs := g.input.Get()

	var publics bitvec.BitVector
	for i, w := range g.outputs {
		w.Public.Xor(inputs[i])
		publics.Append(w.Public)
		w.SetOnlineReady()
	}
	return g.p.layer.SendBits(g.id, 0, publics)
}

// BooleanInputGateReceiver receives the peer's boolean input shares.
type BooleanInputGateReceiver struct {
	gate
	numSIMD int
	owner   int
	inputID int
	public  *comm.BitsFuture
	outputs []*BooleanWire
}

// NewBooleanInputGateReceiver creates an input gate for numWires
// wires of numSIMD bits that the peer provides.
func NewBooleanInputGateReceiver(p *Provider, numWires,
	numSIMD int) *BooleanInputGateReceiver {

	if numWires <= 0 {
		panic(errors.AssertionFailedf("beavy: invalid number of wires %d",
			numWires))
	}
	g := &BooleanInputGateReceiver{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		owner:   p.PeerID(),
		inputID: p.NextInputID(numWires),
		outputs: p.newBooleanWires(numWires, numSIMD),
	}
	g.public = p.layer.RegisterBits(g.id, 0, numWires*numSIMD)
	p.reg.AddGate(g)
	return g
}

// NeedSetup implements circuit.Gate.
func (g *BooleanInputGateReceiver) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *BooleanInputGateReceiver) NeedOnline() bool {
	return true
}

// Outputs returns the output wires.
func (g *BooleanInputGateReceiver) Outputs() []*BooleanWire {
	return g.outputs
}

// EvaluateSetup implements circuit.Gate.
func (g *BooleanInputGateReceiver) EvaluateSetup() error {
	r, err := g.p.theirRandomness()
	if err != nil {
		return err
	}
	for i, w := range g.outputs {
		w.Secret = r.GetBits(g.inputID+i, g.numSIMD)
		w.SetSetupReady()
	}
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *BooleanInputGateReceiver) EvaluateOnline() error {
	publics, err := g.public.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: input of party %d", g.id, g.owner)
	}
	distributePublics(g.outputs, publics)
	return nil
}

// ArithmeticInputGateSender shares this party's arithmetic input.
type ArithmeticInputGateSender[T ring.Ring] struct {
	gate
	numSIMD int
	inputID int
	input   *Future[[]T]
	output  *ArithmeticWire[T]
}

// NewArithmeticInputGateSender creates an input gate for numSIMD
// ring elements that this party provides.
func NewArithmeticInputGateSender[T ring.Ring](p *Provider,
	numSIMD int) *ArithmeticInputGateSender[T] {

	g := &ArithmeticInputGateSender[T]{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		inputID: p.NextInputID(1),
		input:   NewFuture[[]T]("arithmetic input"),
		output:  newArithmeticWire[T](p, numSIMD),
	}
	p.reg.AddGate(g)
	return g
}

// NeedSetup implements circuit.Gate.
func (g *ArithmeticInputGateSender[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *ArithmeticInputGateSender[T]) NeedOnline() bool {
	return true
}

// SetInputs sets the numSIMD plain input values.
func (g *ArithmeticInputGateSender[T]) SetInputs(inputs []T) {
	if len(inputs) != g.numSIMD {
		panic(errors.AssertionFailedf("gate %d: %d inputs, expected %d",
			g.id, len(inputs), g.numSIMD))
	}
	g.input.Set(inputs)
}

// Output returns the output wire.
func (g *ArithmeticInputGateSender[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// EvaluateSetup implements circuit.Gate.
func (g *ArithmeticInputGateSender[T]) EvaluateSetup() error {
	r, err := g.p.myRandomness()
	if err != nil {
		return err
	}
	w := g.output
	w.Secret, err = randomInts[T](g.p, g.numSIMD)
	if err != nil {
		return err
	}
	w.SetSetupReady()
	w.Public = ring.Add(w.Secret, GetUnsigned[T](r, g.inputID, g.numSIMD))
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *ArithmeticInputGateSender[T]) EvaluateOnline() error {
	inputs := g.input.Get()

	w := g.output
	ring.AddTo(w.Public, inputs)
	w.SetOnlineReady()

	return comm.SendInts(g.p.layer, g.id, 0, w.Public)
}

// ArithmeticInputGateReceiver receives the peer's arithmetic input
// shares.
type ArithmeticInputGateReceiver[T ring.Ring] struct {
	gate
	numSIMD int
	owner   int
	inputID int
	public  *comm.IntsFuture[T]
	output  *ArithmeticWire[T]
}

// NewArithmeticInputGateReceiver creates an input gate for numSIMD
// ring elements that the peer provides.
func NewArithmeticInputGateReceiver[T ring.Ring](p *Provider,
	numSIMD int) *ArithmeticInputGateReceiver[T] {

	g := &ArithmeticInputGateReceiver[T]{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		owner:   p.PeerID(),
		inputID: p.NextInputID(1),
		output:  newArithmeticWire[T](p, numSIMD),
	}
	g.public = comm.RegisterInts[T](p.layer, g.id, 0, numSIMD)
	p.reg.AddGate(g)
	return g
}

// NeedSetup implements circuit.Gate.
func (g *ArithmeticInputGateReceiver[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *ArithmeticInputGateReceiver[T]) NeedOnline() bool {
	return true
}

// Output returns the output wire.
func (g *ArithmeticInputGateReceiver[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// EvaluateSetup implements circuit.Gate.
func (g *ArithmeticInputGateReceiver[T]) EvaluateSetup() error {
	r, err := g.p.theirRandomness()
	if err != nil {
		return err
	}
	g.output.Secret = GetUnsigned[T](r, g.inputID, g.numSIMD)
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *ArithmeticInputGateReceiver[T]) EvaluateOnline() error {
	public, err := g.public.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: input of party %d", g.id, g.owner)
	}
	g.output.Public = public
	g.output.SetOnlineReady()
	return nil
}
