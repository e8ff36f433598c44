//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/backend"
	"github.com/markkurossi/beavy/beavy"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/ring"
	"github.com/markkurossi/beavy/wire"
	"github.com/markkurossi/text/superscript"
)

// randomValues returns numSIMD random ring-size bit values for this
// party's input.
func randomValues(opts *options) ([]uint64, error) {
	vals, err := ring.Random[uint64](rand.Reader, opts.numSIMD)
	if err != nil {
		return nil, err
	}
	mask := ^uint64(0) >> (64 - opts.ringSize)
	for i := range vals {
		vals[i] &= mask
	}
	return vals, nil
}

// booleanInputs creates the boolean input gates of both parties. My
// input vals is decomposed into numWires wires of len(vals) SIMD
// values, wire i holding bit i. It returns the wires of party 0 and
// party 1.
func booleanInputs(bp *beavy.Provider, numWires int, vals []uint64) (
	[2][]*beavy.BooleanWire, error) {

	var result [2][]*beavy.BooleanWire
	if numWires <= 0 || numWires > 64 {
		return result, errors.Newf("invalid number of input wires %d",
			numWires)
	}
	for owner := 0; owner < 2; owner++ {
		if owner != bp.MyID() {
			result[owner] = beavy.NewBooleanInputGateReceiver(bp, numWires,
				len(vals)).Outputs()
			continue
		}
		bits := make([]bitvec.BitVector, numWires)
		for i := range bits {
			bits[i] = bitvec.New(len(vals))
			for j, v := range vals {
				bits[i].Set(j, (v>>i)&1 == 1)
			}
		}
		g := beavy.NewBooleanInputGateSender(bp, numWires, len(vals))
		g.SetInputs(bits)
		result[owner] = g.Outputs()
	}
	return result, nil
}

func arithmeticInputs[T ring.Ring](bp *beavy.Provider,
	vals []uint64) [2]*beavy.ArithmeticWire[T] {

	var result [2]*beavy.ArithmeticWire[T]
	for owner := 0; owner < 2; owner++ {
		if owner != bp.MyID() {
			result[owner] = beavy.NewArithmeticInputGateReceiver[T](bp,
				len(vals)).Output()
			continue
		}
		in := make([]T, len(vals))
		for i, v := range vals {
			in[i] = T(v)
		}
		g := beavy.NewArithmeticInputGateSender[T](bp, len(vals))
		g.SetInputs(in)
		result[owner] = g.Output()
	}
	return result
}

func printResult(b *backend.TwoParty, opts *options, format string,
	a ...any) {

	if opts.json {
		return
	}
	fmt.Fprintf(os.Stdout, "P%s: %s\n", superscript.Itoa(b.MyID()),
		fmt.Sprintf(format, a...))
}

func buildEquality(b *backend.TwoParty, opts *options) (func(), error) {
	vals, err := randomValues(opts)
	if err != nil {
		return nil, err
	}
	g, err := equalityCircuit(b, opts, vals)
	if err != nil {
		return nil, err
	}
	return func() {
		var equal int
		for _, v := range g.Output().Get() {
			equal += v.OnesCount()
		}
		printResult(b, opts, "%d of %d values equal", equal, opts.numSIMD)
	}, nil
}

// equalityCircuit builds the equality test of my input vals and the
// peer's input. The output gate reveals one wire with a set bit for
// each equal SIMD slot.
func equalityCircuit(b *backend.TwoParty, opts *options, vals []uint64) (
	*beavy.BooleanOutputGate, error) {

	switch opts.ringSize {
	case 8:
		return eqexpEquality[uint8](b, opts, vals)
	case 16:
		return eqexpEquality[uint16](b, opts, vals)
	default:
		return booleanEquality(b, opts, vals)
	}
}

// eqexpEquality tests the equality with the EQEXP gate over the full
// ring.
func eqexpEquality[T ring.Ring](b *backend.TwoParty, opts *options,
	vals []uint64) (*beavy.BooleanOutputGate, error) {

	bp := b.BEAVY()
	in := arithmeticInputs[T](bp, vals)
	out, err := bp.MakeEQEXPGate(in[0], in[1], 1<<opts.ringSize)
	if err != nil {
		return nil, err
	}
	return revealBits(b, out)
}

// booleanEquality tests the equality as MSG(¬(a⊕b)) over the bit
// decomposed inputs.
func booleanEquality(b *backend.TwoParty, opts *options, vals []uint64) (
	*beavy.BooleanOutputGate, error) {

	f, err := b.GateFactory(wire.BooleanBEAVY)
	if err != nil {
		return nil, err
	}
	in, err := booleanInputs(b.BEAVY(), opts.ringSize, vals)
	if err != nil {
		return nil, err
	}
	d, err := f.MakeBinaryGate(circuit.XOR, beavy.BooleanWires(in[0]),
		beavy.BooleanWires(in[1]))
	if err != nil {
		return nil, err
	}
	eq, err := f.MakeUnaryGate(circuit.INV, d)
	if err != nil {
		return nil, err
	}
	out, err := f.MakeUnaryGate(circuit.MSG, eq)
	if err != nil {
		return nil, err
	}
	return revealBits(b, out)
}

func revealBits(b *backend.TwoParty, out []wire.Wire) (
	*beavy.BooleanOutputGate, error) {

	share, err := backend.NewShare(b.MyID(), out)
	if err != nil {
		return nil, err
	}
	var wires []*beavy.BooleanWire
	for _, w := range share.Wires {
		wires = append(wires, w.(*beavy.BooleanWire))
	}
	return beavy.NewBooleanOutputGate(b.BEAVY(), wires, beavy.AllParties),
		nil
}
