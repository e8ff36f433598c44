//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/ring"
)

// MaxTableSize defines the maximum EQEXP table size.
const MaxTableSize = 1 << 20

// EQEXPGate tests the equality of two arithmetic wires modulo a
// public table size. For d = a - b = Δd - δd₀ - δd₁, party 0 knows
// u₀ = Δd - δd₀ and party 1 knows u₁ = δd₁ after the setup, and
// d ≡ 0 (mod tableSize) iff u₀ ≡ u₁. The parties compute the AND of
// the one-hot vectors of u₀ and u₁ and XOR it over the table
// positions. The masks of the one-hot vectors are correlated with one
// XCOT batch in the setup.
type EQEXPGate[T ring.Ring] struct {
	gate
	numSIMD   int
	tableSize int
	a, b      *ArithmeticWire[T]
	output    *BooleanWire

	// Party 0 is the XCOT receiver and party 1 the sender.
	receiver *ot.XCOTReceiver
	sender   *ot.XCOTSender

	mask       bitvec.BitVector
	andShare   bitvec.BitVector
	masked     bitvec.BitVector
	peerOneHot *comm.BitsFuture
	peerShares *comm.BitsFuture
}

// CheckTableSize verifies that the table size is valid for the ring
// T.
func CheckTableSize[T ring.Ring](tableSize int) error {
	if tableSize < 2 || bits.OnesCount(uint(tableSize)) != 1 {
		return errors.Newf("EQEXP: table size %d is not a power of two",
			tableSize)
	}
	maxSize := MaxTableSize
	if ring.BitSize[T]() < 20 {
		maxSize = 1 << ring.BitSize[T]()
	}
	if tableSize > maxSize {
		return errors.Newf("EQEXP: table size %d too large for %d-bit ring",
			tableSize, ring.BitSize[T]())
	}
	return nil
}

// NewEQEXPGate creates a new EQEXP gate.
func NewEQEXPGate[T ring.Ring](p *Provider, a, b *ArithmeticWire[T],
	tableSize int) *EQEXPGate[T] {

	if err := CheckTableSize[T](tableSize); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "beavy"))
	}
	numSIMD := checkArithmetic(a, b)

	g := &EQEXPGate[T]{
		gate:      p.newGate(),
		numSIMD:   numSIMD,
		tableSize: tableSize,
		a:         a,
		b:         b,
		output:    p.newBooleanWire(numSIMD),
	}
	n := tableSize * numSIMD
	if p.myID == 0 {
		g.receiver = p.otp.RegisterReceiveXCOT(n, 1)
	} else {
		g.sender = p.otp.RegisterSendXCOT(n, 1)
	}
	g.peerOneHot = p.layer.RegisterBits(g.id, 0, n)
	g.peerShares = p.layer.RegisterBits(g.id, 1, numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *EQEXPGate[T]) Op() circuit.Operation {
	return circuit.EQEXP
}

// Output returns the output wire.
func (g *EQEXPGate[T]) Output() *BooleanWire {
	return g.output
}

// TableSize returns the table size.
func (g *EQEXPGate[T]) TableSize() int {
	return g.tableSize
}

// NeedSetup implements circuit.Gate.
func (g *EQEXPGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *EQEXPGate[T]) NeedOnline() bool {
	return true
}

// oneHot returns the one-hot vectors of the values modulo the table
// size. The bit of value u at SIMD index i is at u·numSIMD+i.
func (g *EQEXPGate[T]) oneHot(vals []T) bitvec.BitVector {
	mod := uint64(g.tableSize - 1)
	result := bitvec.New(g.tableSize * g.numSIMD)
	for i, v := range vals {
		result.Set(int(uint64(v)&mod)*g.numSIMD+i, true)
	}
	return result
}

// EvaluateSetup implements circuit.Gate.
func (g *EQEXPGate[T]) EvaluateSetup() error {
	var err error
	g.mask, err = g.p.randomBits(g.tableSize * g.numSIMD)
	if err != nil {
		return err
	}
	if g.receiver != nil {
		g.receiver.SetChoices(g.mask)
		if err := g.receiver.SendCorrections(); err != nil {
			return err
		}
		if err := g.receiver.ComputeOutputs(); err != nil {
			return err
		}
		g.andShare = g.receiver.Outputs()
	} else {
		g.sender.SetCorrelations(g.mask)
		if err := g.sender.SendMessages(); err != nil {
			return err
		}
		g.andShare = g.sender.Outputs().Clone()

		g.a.WaitSetup()
		g.b.WaitSetup()
		g.masked = g.oneHot(ring.Sub(g.a.Secret, g.b.Secret))
		g.masked.Xor(g.mask)
	}
	g.output.Secret, err = g.p.randomBits(g.numSIMD)
	if err != nil {
		return err
	}
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *EQEXPGate[T]) EvaluateOnline() error {
	if g.receiver != nil {
		g.a.WaitSetup()
		g.b.WaitSetup()
		g.a.WaitOnline()
		g.b.WaitOnline()
		u := ring.Sub(ring.Sub(g.a.Public, g.b.Public),
			ring.Sub(g.a.Secret, g.b.Secret))
		g.masked = g.oneHot(u)
		g.masked.Xor(g.mask)
	}
	if err := g.p.layer.SendBits(g.id, 0, g.masked); err != nil {
		return err
	}
	peer, err := g.peerOneHot.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: one-hot vector", g.id)
	}

	// Party 0: A'∧B' ⊕ α∧B' ⊕ c₀, party 1: A'∧β ⊕ c₁.
	share := g.andShare
	if g.receiver != nil {
		share.Xor(bitvec.AndOf(g.masked, peer))
		share.Xor(bitvec.AndOf(g.mask, peer))
	} else {
		share.Xor(bitvec.AndOf(peer, g.mask))
	}
	public := foldWires(share, g.tableSize, g.numSIMD)
	public.Xor(g.output.Secret)

	if err := g.p.layer.SendBits(g.id, 1, public); err != nil {
		return err
	}
	peerShare, err := g.peerShares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: public shares", g.id)
	}
	public.Xor(peerShare)
	distributePublics([]*BooleanWire{g.output}, public)
	return nil
}
