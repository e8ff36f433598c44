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
	"github.com/markkurossi/beavy/mult"
	"github.com/markkurossi/beavy/ring"
)

// BXAMULGate multiplies a boolean wire with an arithmetic wire. The
// setup converts the bit mask δb into arithmetic shares and computes
// the shares of δb·δn with bit×integer multiplications in both
// directions. The party whose job the gate is multiplies a vector of
// two integers with the peer's bit.
type BXAMULGate[T ring.Ring] struct {
	gate
	numSIMD    int
	b          *BooleanWire
	n          *ArithmeticWire[T]
	output     *ArithmeticWire[T]
	intSide    *mult.IntSide[T]
	bitSide    *mult.BitSide[T]
	deltaB     []T
	deltaBN    []T
	publicY    []T
	peerShares *comm.IntsFuture[T]
}

// NewBXAMULGate creates a new bit×integer multiplication gate.
func NewBXAMULGate[T ring.Ring](p *Provider, b *BooleanWire,
	n *ArithmeticWire[T]) *BXAMULGate[T] {

	if b.NumSIMD() != n.NumSIMD() {
		panic(errors.AssertionFailedf(
			"beavy: number of SIMD values differ: %d != %d",
			b.NumSIMD(), n.NumSIMD()))
	}
	numSIMD := n.NumSIMD()

	g := &BXAMULGate[T]{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		b:       b,
		n:       n,
		output:  newArithmeticWire[T](p, numSIMD),
	}
	if g.isMyJob() {
		g.intSide = mult.NewIntSide[T](p.otp, numSIMD, 2)
		g.bitSide = mult.NewBitSide[T](p.otp, numSIMD, 1)
	} else {
		g.intSide = mult.NewIntSide[T](p.otp, numSIMD, 1)
		g.bitSide = mult.NewBitSide[T](p.otp, numSIMD, 2)
	}
	g.peerShares = comm.RegisterInts[T](p.layer, g.id, 0, numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *BXAMULGate[T]) Op() circuit.Operation {
	return circuit.BXAMUL
}

// Output returns the output wire.
func (g *BXAMULGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *BXAMULGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *BXAMULGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *BXAMULGate[T]) EvaluateSetup() error {
	g.b.WaitSetup()
	g.n.WaitSetup()

	bits := bitValues[T](g.b.Secret)
	deltaN := g.n.Secret
	myJob := g.isMyJob()

	// The bit side multiplies the local bit with the peer's integers.
	// The integers are [b, n - 2bn] at the party whose job the gate
	// is and [n - 2bn] at the other party.
	var ints []T
	for i := 0; i < g.numSIMD; i++ {
		v := deltaN[i] - 2*bits[i]*deltaN[i]
		if myJob {
			ints = append(ints, bits[i], v)
		} else {
			ints = append(ints, v)
		}
	}
	g.intSide.SetInputs(ints)
	g.bitSide.SetInputs(g.b.Secret)

	err := concurrently(g.intSide.ComputeOutputs, g.bitSide.ComputeOutputs)
	if err != nil {
		return err
	}
	intOut := g.intSide.Outputs()
	bitOut := g.bitSide.Outputs()

	g.deltaB = make([]T, g.numSIMD)
	g.deltaBN = make([]T, g.numSIMD)
	for i := 0; i < g.numSIMD; i++ {
		if myJob {
			g.deltaB[i] = bits[i] - 2*intOut[2*i]
			g.deltaBN[i] = bits[i]*deltaN[i] + intOut[2*i+1] + bitOut[i]
		} else {
			g.deltaB[i] = bits[i] - 2*bitOut[2*i]
			g.deltaBN[i] = bits[i]*deltaN[i] + bitOut[2*i+1] + intOut[i]
		}
	}
	g.output.Secret, err = randomInts[T](g.p, g.numSIMD)
	if err != nil {
		return err
	}
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *BXAMULGate[T]) EvaluateOnline() error {
	g.b.WaitOnline()
	g.n.WaitOnline()

	publicB := bitValues[T](g.b.Public)
	publicN := g.n.Public
	deltaN := g.n.Secret
	myJob := g.isMyJob()

	g.publicY = make([]T, g.numSIMD)
	for i := range g.publicY {
		pb := publicB[i]
		pn := publicN[i]
		v := g.deltaB[i]*(pn-2*pb*pn) - pb*deltaN[i] -
			g.deltaBN[i]*(1-2*pb) + g.output.Secret[i]
		if myJob {
			v += pb * pn
		}
		g.publicY[i] = v
	}
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
