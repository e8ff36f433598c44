//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ring"
)

// HAMGate computes the Hamming distance of two boolean wire vectors
// into an arithmetic wire. The gate XORs the vectors locally and
// converts each difference bit with an internal Bit2A gate. The
// internal gates are driven by the HAM gate and they are not in the
// register.
type HAMGate[T ring.Ring] struct {
	gate
	xor    *XORGate
	bits   []*BitsToArithmeticGate[T]
	output *ArithmeticWire[T]
}

// NewHAMGate creates a new HAM gate.
func NewHAMGate[T ring.Ring](p *Provider, a, b []*BooleanWire) *HAMGate[T] {
	numSIMD := checkBinary(a, b)

	g := &HAMGate[T]{
		gate:   p.newGate(),
		output: newArithmeticWire[T](p, numSIMD),
	}
	g.xor = newXORGate(p, a, b)
	for _, w := range g.xor.Outputs() {
		g.bits = append(g.bits,
			newBitsToArithmeticGate[T](p, circuit.Bit2A, []*BooleanWire{w}))
	}
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *HAMGate[T]) Op() circuit.Operation {
	return circuit.HAM
}

// Output returns the output wire.
func (g *HAMGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *HAMGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *HAMGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *HAMGate[T]) EvaluateSetup() error {
	if err := g.xor.EvaluateSetup(); err != nil {
		return err
	}
	var fs []func() error
	for _, b := range g.bits {
		fs = append(fs, b.EvaluateSetup)
	}
	if err := concurrently(fs...); err != nil {
		return err
	}
	secret := make([]T, g.output.NumSIMD())
	for _, b := range g.bits {
		ring.AddTo(secret, b.Output().Secret)
	}
	g.output.Secret = secret
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *HAMGate[T]) EvaluateOnline() error {
	if err := g.xor.EvaluateOnline(); err != nil {
		return err
	}
	var fs []func() error
	for _, b := range g.bits {
		fs = append(fs, b.EvaluateOnline)
	}
	if err := concurrently(fs...); err != nil {
		return err
	}
	public := make([]T, g.output.NumSIMD())
	for _, b := range g.bits {
		ring.AddTo(public, b.Output().Public)
	}
	g.output.Public = public
	g.output.SetOnlineReady()
	return nil
}

// AHAMGate computes the Hamming distance of two vectors of arithmetic
// wires holding 0 or 1 values as Σ a + b - 2ab. The products are
// linear in the shares after the setup so the gate takes one online
// round.
type AHAMGate[T ring.Ring] struct {
	gate
	numSIMD    int
	core       mulCore[T]
	a, b       []*ArithmeticWire[T]
	output     *ArithmeticWire[T]
	publicY    []T
	peerShares *comm.IntsFuture[T]
}

// NewAHAMGate creates a new AHAM gate.
func NewAHAMGate[T ring.Ring](p *Provider, a, b []*ArithmeticWire[T]) *AHAMGate[T] {
	if len(a) != len(b) || len(a) == 0 {
		panic(errors.AssertionFailedf("beavy: AHAM: invalid wires: %d, %d",
			len(a), len(b)))
	}
	numSIMD := a[0].NumSIMD()
	for i := range a {
		checkArithmetic(a[0], a[i])
		checkArithmetic(a[0], b[i])
	}
	g := &AHAMGate[T]{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		core:    newMulCore[T](p, len(a)*numSIMD),
		a:       a,
		b:       b,
		output:  newArithmeticWire[T](p, numSIMD),
	}
	g.peerShares = comm.RegisterInts[T](p.layer, g.id, 0, numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *AHAMGate[T]) Op() circuit.Operation {
	return circuit.AHAM
}

// Output returns the output wire.
func (g *AHAMGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *AHAMGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *AHAMGate[T]) NeedOnline() bool {
	return true
}

// fold sums the numSIMD element slices of the wires.
func (g *AHAMGate[T]) fold(v []T) []T {
	result := make([]T, g.numSIMD)
	for ofs := 0; ofs < len(v); ofs += g.numSIMD {
		ring.AddTo(result, v[ofs:ofs+g.numSIMD])
	}
	return result
}

// EvaluateSetup implements circuit.Gate.
func (g *AHAMGate[T]) EvaluateSetup() error {
	var deltaA, deltaB []T
	for i := range g.a {
		g.a[i].WaitSetup()
		g.b[i].WaitSetup()
		deltaA = append(deltaA, g.a[i].Secret...)
		deltaB = append(deltaB, g.b[i].Secret...)
	}
	deltaAB, err := g.core.setup(deltaA, deltaB)
	if err != nil {
		return err
	}
	g.output.Secret, err = randomInts[T](g.p, g.numSIMD)
	if err != nil {
		return err
	}
	g.output.SetSetupReady()

	// The share of a is -δa and the share of ab is δab before the
	// public terms.
	terms := make([]T, len(deltaA))
	for i := range terms {
		terms[i] = -deltaA[i] - deltaB[i] - 2*deltaAB[i]
	}
	g.publicY = g.fold(terms)
	ring.AddTo(g.publicY, g.output.Secret)
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *AHAMGate[T]) EvaluateOnline() error {
	var publicA, publicB []T
	for i := range g.a {
		g.a[i].WaitOnline()
		g.b[i].WaitOnline()
		publicA = append(publicA, g.a[i].Public...)
		publicB = append(publicB, g.b[i].Public...)
	}
	myJob := g.isMyJob()
	products := g.core.online(publicA, publicB, myJob)

	terms := make([]T, len(publicA))
	for i := range terms {
		terms[i] = -(2 * products[i])
		if myJob {
			terms[i] += publicA[i] + publicB[i]
		}
	}
	ring.AddTo(g.publicY, g.fold(terms))

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
