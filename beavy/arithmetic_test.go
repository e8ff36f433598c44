//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"testing"

	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/ring"
)

func testArithmeticGates[T ring.Ring](t *testing.T) {
	const numSIMD = 31

	parties := newParties(t)
	a := testInts[T](t, numSIMD)
	b := testInts[T](t, numSIMD)

	var add, mul, neg, sqr, poly [2]*ArithmeticOutputGate[T]
	for id, p := range parties {
		wa := arithmeticInput(p, 0, a)
		wb := arithmeticInput(p, 1, b)

		add[id] = NewArithmeticOutputGate(p.bp,
			NewADDGate(p.bp, wa, wb).Output(), AllParties)
		m := NewMULGate(p.bp, wa, wb).Output()
		mul[id] = NewArithmeticOutputGate(p.bp, m, AllParties)
		neg[id] = NewArithmeticOutputGate(p.bp,
			NewNEGGate(p.bp, wa).Output(), AllParties)
		sqr[id] = NewArithmeticOutputGate(p.bp,
			NewSQRGate(p.bp, wb).Output(), AllParties)

		// ab·ab - a
		q := NewSQRGate(p.bp, m).Output()
		r := NewADDGate(p.bp, q, NewNEGGate(p.bp, wa).Output()).Output()
		poly[id] = NewArithmeticOutputGate(p.bp, r, AllParties)
	}
	run(t, parties)

	expAdd := make([]T, numSIMD)
	expMul := make([]T, numSIMD)
	expNeg := make([]T, numSIMD)
	expSqr := make([]T, numSIMD)
	expPoly := make([]T, numSIMD)
	for i := 0; i < numSIMD; i++ {
		expAdd[i] = a[i] + b[i]
		expMul[i] = a[i] * b[i]
		expNeg[i] = -a[i]
		expSqr[i] = b[i] * b[i]
		expPoly[i] = expMul[i]*expMul[i] - a[i]
	}
	for id := range parties {
		checkInts(t, "ADD", add[id].Output().Get(), expAdd)
		checkInts(t, "MUL", mul[id].Output().Get(), expMul)
		checkInts(t, "NEG", neg[id].Output().Get(), expNeg)
		checkInts(t, "SQR", sqr[id].Output().Get(), expSqr)
		checkInts(t, "poly", poly[id].Output().Get(), expPoly)
	}
}

func TestArithmeticGates(t *testing.T) {
	t.Run("uint8", testArithmeticGates[uint8])
	t.Run("uint16", testArithmeticGates[uint16])
	t.Run("uint32", testArithmeticGates[uint32])
	t.Run("uint64", testArithmeticGates[uint64])
}

func TestMULSIMDMismatch(t *testing.T) {
	parties := newParties(t)
	p := parties[0]
	a := arithmeticInput(p, 0, testInts[uint16](t, 4))
	b := arithmeticInput(p, 0, testInts[uint16](t, 5))

	defer func() {
		if recover() == nil {
			t.Errorf("SIMD mismatch did not panic")
		}
	}()
	NewMULGate(p.bp, a, b)
}

func testMULNI[T ring.Ring](t *testing.T) {
	const numSIMD = 17

	parties := newParties(t)
	a := testInts[T](t, numSIMD)
	b := testInts[T](t, numSIMD)

	var outs [2]*MULNIGate[T]
	var mul [2]*ArithmeticOutputGate[T]
	for id, p := range parties {
		wa := arithmeticInput(p, 0, a)
		wb := arithmeticInput(p, 1, b)
		outs[id] = NewMULNIGate(p.bp, wa, wb)
		// The interactive product of the same wires.
		mul[id] = NewArithmeticOutputGate(p.bp,
			NewMULGate(p.bp, wa, wb).Output(), AllParties)
	}
	run(t, parties)

	expected := ring.Mul(a, b)
	result := ring.Add(outs[0].Output().Get(), outs[1].Output().Get())
	checkInts(t, "MULNI", result, expected)
	for id := range parties {
		checkInts(t, "MUL", mul[id].Output().Get(), expected)
	}
	if parties[0].reg.Stats()[circuit.MULNI] != 1 {
		t.Errorf("register stats: %v", parties[0].reg.Stats())
	}
}

func TestMULNI(t *testing.T) {
	t.Run("uint8", testMULNI[uint8])
	t.Run("uint32", testMULNI[uint32])
	t.Run("uint64", testMULNI[uint64])
}
