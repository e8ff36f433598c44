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
	"github.com/markkurossi/beavy/wire"
)

// BooleanOutputGate reconstructs boolean wires for the output owner.
// The parties not receiving the output send their secret shares in
// the setup phase.
type BooleanOutputGate struct {
	gate
	owner   int
	inputs  []*BooleanWire
	shares  *comm.BitsFuture
	outputs *Future[[]bitvec.BitVector]
}

// NewBooleanOutputGate creates an output gate revealing the input
// wires to owner, which is a party ID or AllParties.
func NewBooleanOutputGate(p *Provider, inputs []*BooleanWire,
	owner int) *BooleanOutputGate {

	p.checkOwner(owner)
	numSIMD := wire.CheckSIMD(inputs...)

	g := &BooleanOutputGate{
		gate:   p.newGate(),
		owner:  owner,
		inputs: inputs,
	}
	if g.myOutput() {
		g.shares = p.layer.RegisterBits(g.id, 0, len(inputs)*numSIMD)
		g.outputs = NewFuture[[]bitvec.BitVector]("boolean output")
	}
	p.reg.AddGate(g)
	return g
}

func (g *BooleanOutputGate) myOutput() bool {
	return g.owner == AllParties || g.owner == g.p.myID
}

// NeedSetup implements circuit.Gate.
func (g *BooleanOutputGate) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *BooleanOutputGate) NeedOnline() bool {
	return g.myOutput()
}

// Output returns the output future. It panics if this party does not
// receive the output.
func (g *BooleanOutputGate) Output() *Future[[]bitvec.BitVector] {
	if !g.myOutput() {
		panic(errors.AssertionFailedf("gate %d: output of party %d",
			g.id, g.owner))
	}
	return g.outputs
}

// EvaluateSetup implements circuit.Gate.
func (g *BooleanOutputGate) EvaluateSetup() error {
	if g.owner == g.p.myID {
		return nil
	}
	return g.p.layer.SendBits(g.id, 0, appendSecrets(g.inputs))
}

// EvaluateOnline implements circuit.Gate.
func (g *BooleanOutputGate) EvaluateOnline() error {
	if !g.myOutput() {
		return nil
	}
	shares, err := g.shares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: output shares", g.id)
	}
	shares.Xor(appendSecrets(g.inputs))
	shares.Xor(appendPublics(g.inputs))

	result := make([]bitvec.BitVector, len(g.inputs))
	var ofs int
	for i, w := range g.inputs {
		n := w.NumSIMD()
		result[i] = shares.Subset(ofs, ofs+n)
		ofs += n
	}
	g.outputs.Set(result)
	return nil
}

// ArithmeticOutputGate reconstructs an arithmetic wire for the output
// owner.
type ArithmeticOutputGate[T ring.Ring] struct {
	gate
	owner   int
	input   *ArithmeticWire[T]
	shares  *comm.IntsFuture[T]
	outputs *Future[[]T]
}

// NewArithmeticOutputGate creates an output gate revealing the input
// wire to owner, which is a party ID or AllParties.
func NewArithmeticOutputGate[T ring.Ring](p *Provider, input *ArithmeticWire[T],
	owner int) *ArithmeticOutputGate[T] {

	p.checkOwner(owner)

	g := &ArithmeticOutputGate[T]{
		gate:  p.newGate(),
		owner: owner,
		input: input,
	}
	if g.myOutput() {
		g.shares = comm.RegisterInts[T](p.layer, g.id, 0, input.NumSIMD())
		g.outputs = NewFuture[[]T]("arithmetic output")
	}
	p.reg.AddGate(g)
	return g
}

func (g *ArithmeticOutputGate[T]) myOutput() bool {
	return g.owner == AllParties || g.owner == g.p.myID
}

// NeedSetup implements circuit.Gate.
func (g *ArithmeticOutputGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *ArithmeticOutputGate[T]) NeedOnline() bool {
	return g.myOutput()
}

// Output returns the output future. It panics if this party does not
// receive the output.
func (g *ArithmeticOutputGate[T]) Output() *Future[[]T] {
	if !g.myOutput() {
		panic(errors.AssertionFailedf("gate %d: output of party %d",
			g.id, g.owner))
	}
	return g.outputs
}

// EvaluateSetup implements circuit.Gate.
func (g *ArithmeticOutputGate[T]) EvaluateSetup() error {
	if g.owner == g.p.myID {
		return nil
	}
	g.input.WaitSetup()
	return comm.SendInts(g.p.layer, g.id, 0, g.input.Secret)
}

// EvaluateOnline implements circuit.Gate.
func (g *ArithmeticOutputGate[T]) EvaluateOnline() error {
	if !g.myOutput() {
		return nil
	}
	shares, err := g.shares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: output shares", g.id)
	}
	g.input.WaitSetup()
	ring.AddTo(shares, g.input.Secret)

	g.input.WaitOnline()
	g.outputs.Set(ring.Sub(g.input.Public, shares))
	return nil
}

// OutputShareGate exposes this party's shares of an arithmetic wire
// without reconstructing it.
type OutputShareGate[T ring.Ring] struct {
	gate
	input  *ArithmeticWire[T]
	secret *Future[[]T]
	public *Future[[]T]
}

// NewOutputShareGate creates a share output gate for the wire.
func NewOutputShareGate[T ring.Ring](p *Provider,
	input *ArithmeticWire[T]) *OutputShareGate[T] {

	g := &OutputShareGate[T]{
		gate:   p.newGate(),
		input:  input,
		secret: NewFuture[[]T]("secret share"),
		public: NewFuture[[]T]("public share"),
	}
	p.reg.AddGate(g)
	return g
}

// NeedSetup implements circuit.Gate.
func (g *OutputShareGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *OutputShareGate[T]) NeedOnline() bool {
	return true
}

// SecretShare returns the future of this party's secret share.
func (g *OutputShareGate[T]) SecretShare() *Future[[]T] {
	return g.secret
}

// PublicShare returns the future of the public share.
func (g *OutputShareGate[T]) PublicShare() *Future[[]T] {
	return g.public
}

// EvaluateSetup implements circuit.Gate.
func (g *OutputShareGate[T]) EvaluateSetup() error {
	g.input.WaitSetup()
	g.secret.Set(g.input.Secret)
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *OutputShareGate[T]) EvaluateOnline() error {
	g.input.WaitOnline()
	g.public.Set(g.input.Public)
	return nil
}
