//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"testing"

	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
)

func testBooleanGates(t *testing.T, mode circuit.Evaluation, threads int) {
	const numWires = 4
	const numSIMD = 50

	parties := newParties(t)
	a := testBits(t, numWires, numSIMD)
	b := testBits(t, numWires, numSIMD)

	var xors, ands, invs, chain [2]*BooleanOutputGate
	for id, p := range parties {
		wa := p.booleanInput(0, numSIMD, a)
		wb := p.booleanInput(1, numSIMD, b)

		x := NewXORGate(p.bp, wa, wb)
		xors[id] = NewBooleanOutputGate(p.bp, x.Outputs(), AllParties)

		y := NewANDGate(p.bp, wa, wb)
		ands[id] = NewBooleanOutputGate(p.bp, y.Outputs(), AllParties)

		inv := NewINVGate(p.bp, wa)
		invs[id] = NewBooleanOutputGate(p.bp, inv.Outputs(), AllParties)

		// ¬(a∧b) ∧ a
		z := NewANDGate(p.bp, NewINVGate(p.bp, y.Outputs()).Outputs(), wa)
		chain[id] = NewBooleanOutputGate(p.bp, z.Outputs(), AllParties)
	}
	evaluate(t, parties, mode, threads)

	expXor := make([]bitvec.BitVector, numWires)
	expAnd := make([]bitvec.BitVector, numWires)
	expInv := make([]bitvec.BitVector, numWires)
	expChain := make([]bitvec.BitVector, numWires)
	for i := 0; i < numWires; i++ {
		expXor[i] = bitvec.XorOf(a[i], b[i])
		expAnd[i] = bitvec.AndOf(a[i], b[i])
		expInv[i] = a[i].Clone()
		expInv[i].Not()
		nand := expAnd[i].Clone()
		nand.Not()
		expChain[i] = bitvec.AndOf(nand, a[i])
	}
	for id := range parties {
		checkBits(t, "XOR", xors[id].Output().Get(), expXor)
		checkBits(t, "AND", ands[id].Output().Get(), expAnd)
		checkBits(t, "INV", invs[id].Output().Get(), expInv)
		checkBits(t, "chain", chain[id].Output().Get(), expChain)
	}
}

func TestBooleanGates(t *testing.T) {
	t.Run("setup-online", func(t *testing.T) {
		testBooleanGates(t, circuit.SetupOnline, 0)
	})
	t.Run("interleaved", func(t *testing.T) {
		testBooleanGates(t, circuit.Interleaved, 0)
	})
	t.Run("threads", func(t *testing.T) {
		testBooleanGates(t, circuit.SetupOnline, 2)
	})
	t.Run("interleaved-threads", func(t *testing.T) {
		testBooleanGates(t, circuit.Interleaved, 1)
	})
}

func TestINVForwarding(t *testing.T) {
	parties := newParties(t)
	var gates [2]*INVGate
	for id, p := range parties {
		w := p.booleanInput(0, 8, testBits(t, 1, 8))
		gates[id] = NewINVGate(p.bp, w)
	}
	job := 0
	if !gates[0].isMyJob() {
		job = 1
	}
	if !gates[job].NeedSetup() || !gates[job].NeedOnline() {
		t.Errorf("INV gate does not need evaluation at party %d", job)
	}
	if gates[1-job].NeedSetup() || gates[1-job].NeedOnline() {
		t.Errorf("INV gate needs evaluation at party %d", 1-job)
	}
	if gates[1-job].Outputs()[0] != gates[1-job].inputs[0] {
		t.Errorf("INV gate does not forward its input")
	}
}

func TestDOT(t *testing.T) {
	const numWires = 7
	const numSIMD = 33

	parties := newParties(t)
	a := testBits(t, numWires, numSIMD)
	b := testBits(t, numWires, numSIMD)

	var outs [2]*BooleanOutputGate
	for id, p := range parties {
		wa := p.booleanInput(0, numSIMD, a)
		wb := p.booleanInput(1, numSIMD, b)
		g := NewDOTGate(p.bp, wa, wb)
		outs[id] = NewBooleanOutputGate(p.bp, []*BooleanWire{g.Output()},
			AllParties)
	}
	run(t, parties)

	expected := bitvec.New(numSIMD)
	for i := 0; i < numWires; i++ {
		expected.Xor(bitvec.AndOf(a[i], b[i]))
	}
	for id := range parties {
		checkBits(t, "DOT", outs[id].Output().Get(),
			[]bitvec.BitVector{expected})
	}
}

func testMSG(t *testing.T, numWires int) {
	const numSIMD = 16

	parties := newParties(t)
	in := testBits(t, numWires, numSIMD)
	// Slot 0 is all ones so the AND is true at least once.
	for _, v := range in {
		v.Set(0, true)
	}
	var outs [2]*BooleanOutputGate
	for id, p := range parties {
		w := p.booleanInput(1, numSIMD, in)
		g := NewMSGGate(p.bp, w)
		outs[id] = NewBooleanOutputGate(p.bp, []*BooleanWire{g.Output()},
			AllParties)
	}
	run(t, parties)

	expected := bitvec.NewFilled(numSIMD, true)
	for _, v := range in {
		expected.And(v)
	}
	for id := range parties {
		checkBits(t, "MSG", outs[id].Output().Get(),
			[]bitvec.BitVector{expected})
	}
}

func TestMSG(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8} {
		testMSG(t, n)
	}
}

func TestMSGRounds(t *testing.T) {
	parties := newParties(t)
	w := parties[0].booleanInput(0, 4, testBits(t, 5, 4))
	g := NewMSGGate(parties[0].bp, w)
	if g.NumRounds() != 3 {
		t.Errorf("MSG of 5 wires: got %d rounds, expected 3", g.NumRounds())
	}
}
