//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ring"
	"github.com/markkurossi/beavy/wire"
)

// BooleanWire implements a boolean BEAVY wire. The public share is
// Δ = x ⊕ δ where x is the plain value and δ = δ₀ ⊕ δ₁ is the mask;
// the secret share holds this party's δᵢ. The owning gate sets the
// secret share before the setup flag and the public share before the
// online flag.
type BooleanWire struct {
	wire.State
	Secret bitvec.BitVector
	Public bitvec.BitVector
}

// Protocol returns wire.BooleanBEAVY.
func (w *BooleanWire) Protocol() wire.Protocol {
	return wire.BooleanBEAVY
}

// BitSize returns 1.
func (w *BooleanWire) BitSize() int {
	return 1
}

// ArithmeticWire implements an arithmetic BEAVY wire over the ring T.
// The public share is Δ = x + δ₀ + δ₁ and the secret share holds
// this party's δᵢ.
type ArithmeticWire[T ring.Ring] struct {
	wire.State
	Secret []T
	Public []T
}

// Protocol returns wire.ArithmeticBEAVY.
func (w *ArithmeticWire[T]) Protocol() wire.Protocol {
	return wire.ArithmeticBEAVY
}

// BitSize returns the ring bit size.
func (w *ArithmeticWire[T]) BitSize() int {
	return ring.BitSize[T]()
}

// BooleanWires returns the wires as generic wires.
func BooleanWires(wires []*BooleanWire) []wire.Wire {
	result := make([]wire.Wire, len(wires))
	for i, w := range wires {
		result[i] = w
	}
	return result
}

// ArithmeticWires returns the wires as generic wires.
func ArithmeticWires[T ring.Ring](wires ...*ArithmeticWire[T]) []wire.Wire {
	result := make([]wire.Wire, len(wires))
	for i, w := range wires {
		result[i] = w
	}
	return result
}

func (p *Provider) newBooleanWire(numSIMD int) *BooleanWire {
	w := new(BooleanWire)
	w.Init(p.reg.NextWireID(), numSIMD)
	p.reg.AddWire(w)
	return w
}

func (p *Provider) newBooleanWires(numWires, numSIMD int) []*BooleanWire {
	result := make([]*BooleanWire, numWires)
	for i := range result {
		result[i] = p.newBooleanWire(numSIMD)
	}
	return result
}

func newArithmeticWire[T ring.Ring](p *Provider, numSIMD int) *ArithmeticWire[T] {
	w := new(ArithmeticWire[T])
	w.Init(p.reg.NextWireID(), numSIMD)
	p.reg.AddWire(w)
	return w
}

// appendSecrets waits for the setup of the wires and returns their
// concatenated secret shares.
func appendSecrets(wires []*BooleanWire) bitvec.BitVector {
	var result bitvec.BitVector
	for _, w := range wires {
		w.WaitSetup()
		result.Append(w.Secret)
	}
	return result
}

// appendPublics waits for the online phase of the wires and returns
// their concatenated public shares.
func appendPublics(wires []*BooleanWire) bitvec.BitVector {
	var result bitvec.BitVector
	for _, w := range wires {
		w.WaitOnline()
		result.Append(w.Public)
	}
	return result
}

// distributePublics sets the public shares of the wires from v and
// marks them online ready.
func distributePublics(wires []*BooleanWire, v bitvec.BitVector) {
	var ofs int
	for _, w := range wires {
		n := w.NumSIMD()
		w.Public = v.Subset(ofs, ofs+n)
		ofs += n
		w.SetOnlineReady()
	}
}
