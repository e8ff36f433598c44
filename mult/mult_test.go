//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package mult

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/p2p"
	"github.com/markkurossi/beavy/ring"
)

type party struct {
	layer *comm.Layer
	otp   *ot.Provider
}

func newParties(t *testing.T) [2]*party {
	c0, c1 := p2p.Pipe()
	var result [2]*party
	for id, conn := range []*p2p.Conn{c0, c1} {
		l := comm.NewLayer(conn, nil)
		result[id] = &party{
			layer: l,
			otp:   ot.NewProvider(l.Stream(id), l.Stream(1-id), l, rand.Reader, nil),
		}
	}
	t.Cleanup(func() {
		result[0].layer.Close()
		result[1].layer.Close()
	})
	return result
}

// run runs the OT setup and the party functions concurrently.
func run(t *testing.T, parties [2]*party, f0, f1 func() error) {
	errCh := make(chan error, 4)
	for _, p := range parties {
		go func(p *party) {
			errCh <- p.otp.Run()
		}(p)
	}
	go func() {
		errCh <- f0()
	}()
	go func() {
		errCh <- f1()
	}()
	for i := 0; i < 4; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
}

func testIntMult[T ring.Ring](t *testing.T, numSIMD, vectorSize int) {
	parties := newParties(t)

	s := NewIntSender[T](parties[0].otp, numSIMD, vectorSize)
	r := NewIntReceiver[T](parties[1].otp, numSIMD, vectorSize)

	x, err := ring.Random[T](rand.Reader, numSIMD*vectorSize)
	if err != nil {
		t.Fatal(err)
	}
	y, err := ring.Random[T](rand.Reader, numSIMD)
	if err != nil {
		t.Fatal(err)
	}
	s.SetInputs(x)
	r.SetInputs(y)

	run(t, parties, s.ComputeOutputs, r.ComputeOutputs)

	so := s.Outputs()
	ro := r.Outputs()
	for i := 0; i < numSIMD; i++ {
		for j := 0; j < vectorSize; j++ {
			idx := i*vectorSize + j
			expected := x[idx] * y[i]
			if got := so[idx] + ro[idx]; got != expected {
				t.Fatalf("%d-bit: product %d: got %v, expected %v",
					ring.BitSize[T](), idx, got, expected)
			}
		}
	}
}

func TestIntMult(t *testing.T) {
	testIntMult[uint8](t, 17, 1)
	testIntMult[uint16](t, 5, 2)
	testIntMult[uint32](t, 9, 1)
	testIntMult[uint64](t, 3, 3)
}

func testBitIntMult[T ring.Ring](t *testing.T, numSIMD, vectorSize int) {
	parties := newParties(t)

	// Party 1 holds the integers and party 0 the bits.
	bs := NewBitSide[T](parties[0].otp, numSIMD, vectorSize)
	is := NewIntSide[T](parties[1].otp, numSIMD, vectorSize)

	b, err := bitvec.Random(rand.Reader, numSIMD)
	if err != nil {
		t.Fatal(err)
	}
	x, err := ring.Random[T](rand.Reader, numSIMD*vectorSize)
	if err != nil {
		t.Fatal(err)
	}
	bs.SetInputs(b)
	is.SetInputs(x)

	run(t, parties, bs.ComputeOutputs, is.ComputeOutputs)

	bo := bs.Outputs()
	io := is.Outputs()
	for i := 0; i < numSIMD; i++ {
		for j := 0; j < vectorSize; j++ {
			idx := i*vectorSize + j
			var expected T
			if b.Get(i) {
				expected = x[idx]
			}
			if got := bo[idx] + io[idx]; got != expected {
				t.Fatalf("%d-bit: product %d: got %v, expected %v",
					ring.BitSize[T](), idx, got, expected)
			}
		}
	}
}

func TestBitIntMult(t *testing.T) {
	testBitIntMult[uint8](t, 40, 1)
	testBitIntMult[uint16](t, 7, 2)
	testBitIntMult[uint32](t, 11, 1)
	testBitIntMult[uint64](t, 5, 2)
}

func TestInputsNotSet(t *testing.T) {
	parties := newParties(t)
	s := NewIntSender[uint32](parties[0].otp, 1, 1)

	defer func() {
		if recover() == nil {
			t.Errorf("ComputeOutputs without inputs did not panic")
		}
	}()
	s.ComputeOutputs()
}
