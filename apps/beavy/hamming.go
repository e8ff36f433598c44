//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"github.com/markkurossi/beavy/backend"
	"github.com/markkurossi/beavy/beavy"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/wire"
)

// buildHamming computes the Hamming distance of the parties'
// ring-size bit vectors.
func buildHamming(b *backend.TwoParty, opts *options) (func(), error) {
	vals, err := randomValues(opts)
	if err != nil {
		return nil, err
	}
	g, err := hammingCircuit(b, opts, vals)
	if err != nil {
		return nil, err
	}
	return func() {
		var sum, longest uint64
		dists := g.Output().Get()
		for _, d := range dists {
			sum += uint64(d)
			longest = max(longest, uint64(d))
		}
		printResult(b, opts, "mean distance %.2f, max %d of %d bits",
			float64(sum)/float64(len(dists)), longest, opts.ringSize)
	}, nil
}

// hammingCircuit builds the Hamming distance of my input vals and the
// peer's input into a revealed 16-bit arithmetic wire.
func hammingCircuit(b *backend.TwoParty, opts *options, vals []uint64) (
	*beavy.ArithmeticOutputGate[uint16], error) {

	f, err := b.GateFactory(wire.BooleanBEAVY)
	if err != nil {
		return nil, err
	}
	in, err := booleanInputs(b.BEAVY(), opts.ringSize, vals)
	if err != nil {
		return nil, err
	}
	ws := append(beavy.BooleanWires(in[0]), beavy.BooleanWires(in[1])...)
	out, err := f.MakeConversionGate(circuit.HAM, 16, ws)
	if err != nil {
		return nil, err
	}
	return beavy.NewArithmeticOutputGate(b.BEAVY(),
		out[0].(*beavy.ArithmeticWire[uint16]), beavy.AllParties), nil
}
