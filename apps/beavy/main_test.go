//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"math/bits"
	"testing"

	"github.com/google/uuid"
	"github.com/markkurossi/beavy/backend"
	"github.com/markkurossi/beavy/p2p"
)

func TestParseParties(t *testing.T) {
	parties, err := parseParties([]string{
		"1,10.0.0.2,7777",
		"0,localhost,65535",
	})
	if err != nil {
		t.Fatal(err)
	}
	if parties[0].Host != "localhost" || parties[0].Port != 65535 {
		t.Errorf("invalid party 0: %+v", parties[0])
	}
	if parties[1].Addr() != "10.0.0.2:7777" {
		t.Errorf("invalid party 1: %+v", parties[1])
	}

	invalid := [][]string{
		nil,
		{"0,localhost,7777"},
		{"0,localhost,7777", "0,localhost,7778"},
		{"0,localhost,7777", "2,localhost,7778"},
		{"0,localhost,7777", "1,localhost,65536"},
		{"0,localhost,7777", "1,localhost,123456"},
		{"0,localhost,7777", "1,,7778"},
		{"0,localhost,7777", "1,localhost"},
		{"0,localhost,7777", "1,localhost,7778", "1,localhost,7779"},
	}
	for _, args := range invalid {
		if _, err := parseParties(args); err == nil {
			t.Errorf("parseParties(%q) succeeded", args)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := options{
		myID:        1,
		numSIMD:     1,
		repetitions: 1,
		ringSize:    32,
	}
	if err := valid.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
	for _, f := range []func(o *options){
		func(o *options) { o.myID = 2 },
		func(o *options) { o.ringSize = 12 },
		func(o *options) { o.numSIMD = 0 },
		func(o *options) { o.repetitions = 0 },
	} {
		o := valid
		f(&o)
		if err := o.validate(); err == nil {
			t.Errorf("validate(%+v) succeeded", o)
		}
	}
}

func testBenchmark(t *testing.T, build benchmark, ringSize int) {
	c0, c1 := p2p.Pipe()
	session := uuid.New()

	errCh := make(chan error, 2)
	for id, conn := range []*p2p.Conn{c0, c1} {
		b, err := backend.New(conn, session, backend.Config{MyID: id})
		if err != nil {
			t.Fatal(err)
		}
		defer b.Close()

		opts := &options{
			myID:        id,
			numSIMD:     10,
			repetitions: 1,
			ringSize:    ringSize,
			json:        true,
		}
		report, err := build(b, opts)
		if err != nil {
			t.Fatal(err)
		}
		go func() {
			err := b.Run(context.Background())
			if err == nil {
				report()
			}
			errCh <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
}

func TestEquality(t *testing.T) {
	for _, ringSize := range []int{8, 32, 64} {
		testBenchmark(t, buildEquality, ringSize)
	}
}

func TestHamming(t *testing.T) {
	for _, ringSize := range []int{8, 64} {
		testBenchmark(t, buildHamming, ringSize)
	}
}

// runCircuit builds the circuit of both parties with their inputs
// vals, runs it, and returns the output gates.
func runCircuit[G any](t *testing.T, ringSize int, vals [2][]uint64,
	build func(*backend.TwoParty, *options, []uint64) (G, error)) [2]G {

	t.Helper()
	c0, c1 := p2p.Pipe()
	session := uuid.New()

	var result [2]G
	errCh := make(chan error, 2)
	for id, conn := range []*p2p.Conn{c0, c1} {
		b, err := backend.New(conn, session, backend.Config{MyID: id})
		if err != nil {
			t.Fatal(err)
		}
		defer b.Close()

		opts := &options{
			myID:        id,
			numSIMD:     len(vals[id]),
			repetitions: 1,
			ringSize:    ringSize,
		}
		result[id], err = build(b, opts, vals[id])
		if err != nil {
			t.Fatal(err)
		}
		go func() {
			errCh <- b.Run(context.Background())
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
	return result
}

// testInputs returns numSIMD input pairs of ringSize bits. Every third
// slot holds equal values and the others differ in one bit.
func testInputs(t *testing.T, ringSize, numSIMD int) [2][]uint64 {
	opts := &options{
		numSIMD:  numSIMD,
		ringSize: ringSize,
	}
	a, err := randomValues(opts)
	if err != nil {
		t.Fatal(err)
	}
	b := make([]uint64, numSIMD)
	for i, v := range a {
		b[i] = v
		if i%3 != 0 {
			b[i] ^= 1 << (i % ringSize)
		}
	}
	return [2][]uint64{a, b}
}

func TestEqualityOutput(t *testing.T) {
	const numSIMD = 100

	for _, ringSize := range []int{8, 16, 32, 64} {
		vals := testInputs(t, ringSize, numSIMD)
		outs := runCircuit(t, ringSize, vals, equalityCircuit)

		for id, out := range outs {
			got := out.Output().Get()
			if len(got) != 1 || got[0].Size() != numSIMD {
				t.Fatalf("ring %d: party %d: invalid output %v", ringSize,
					id, got)
			}
			for i := 0; i < numSIMD; i++ {
				expected := vals[0][i] == vals[1][i]
				if got[0].Get(i) != expected {
					t.Errorf("ring %d: party %d: slot %d: %v == %v: got %v",
						ringSize, id, i, vals[0][i], vals[1][i], got[0].Get(i))
				}
			}
			if equal := got[0].OnesCount(); equal != (numSIMD+2)/3 {
				t.Errorf("ring %d: party %d: %d equal values, expected %d",
					ringSize, id, equal, (numSIMD+2)/3)
			}
		}
	}
}

func TestHammingOutput(t *testing.T) {
	const numSIMD = 50

	for _, ringSize := range []int{8, 16, 64} {
		opts := &options{
			numSIMD:  numSIMD,
			ringSize: ringSize,
		}
		var vals [2][]uint64
		for id := range vals {
			var err error
			vals[id], err = randomValues(opts)
			if err != nil {
				t.Fatal(err)
			}
		}
		outs := runCircuit(t, ringSize, vals, hammingCircuit)

		for id, out := range outs {
			got := out.Output().Get()
			for i := 0; i < numSIMD; i++ {
				expected := uint16(bits.OnesCount64(vals[0][i] ^ vals[1][i]))
				if got[i] != expected {
					t.Errorf("ring %d: party %d: slot %d: got %v, expected %v",
						ringSize, id, i, got[i], expected)
				}
			}
		}
	}
}
