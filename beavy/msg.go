//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/wire"
)

// MSGGate computes the AND of all its input wires into one output
// wire. The wires are multiplied pairwise in a tree so the online
// phase takes ⌈log₂ n⌉ rounds. The masks of the intermediate levels
// are local random values and all OTs run in the setup phase.
type MSGGate struct {
	gate
	numSIMD int
	inputs  []*BooleanWire
	output  *BooleanWire
	rounds  []*msgRound
}

type msgRound struct {
	core    andCore
	pairs   int
	carry   bool
	publicY bitvec.BitVector
	peer    *comm.BitsFuture
}

// NewMSGGate creates a new MSG gate.
func NewMSGGate(p *Provider, inputs []*BooleanWire) *MSGGate {
	numSIMD := wire.CheckSIMD(inputs...)

	g := &MSGGate{
		gate:    p.newGate(),
		numSIMD: numSIMD,
		inputs:  inputs,
		output:  p.newBooleanWire(numSIMD),
	}
	for n := len(inputs); n > 1; {
		r := &msgRound{
			core:  newANDCore(p, n/2, numSIMD),
			pairs: n / 2,
			carry: n%2 == 1,
		}
		r.peer = p.layer.RegisterBits(g.id, len(g.rounds), r.pairs*numSIMD)
		g.rounds = append(g.rounds, r)

		n = r.pairs
		if r.carry {
			n++
		}
	}
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *MSGGate) Op() circuit.Operation {
	return circuit.MSG
}

// Output returns the output wire.
func (g *MSGGate) Output() *BooleanWire {
	return g.output
}

// NumRounds returns the number of online rounds.
func (g *MSGGate) NumRounds() int {
	return len(g.rounds)
}

// NeedSetup implements circuit.Gate.
func (g *MSGGate) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *MSGGate) NeedOnline() bool {
	return true
}

// split splits the round operands into the even and odd wires of the
// level.
func (r *msgRound) split(level []bitvec.BitVector) (a, b bitvec.BitVector) {
	for i := 0; i < r.pairs; i++ {
		a.Append(level[2*i])
		b.Append(level[2*i+1])
	}
	return
}

// next returns the next level of values from the round results.
func (r *msgRound) next(level []bitvec.BitVector, v bitvec.BitVector,
	numSIMD int) []bitvec.BitVector {

	var result []bitvec.BitVector
	for i := 0; i < r.pairs; i++ {
		result = append(result, v.Subset(i*numSIMD, (i+1)*numSIMD))
	}
	if r.carry {
		result = append(result, level[len(level)-1])
	}
	return result
}

// EvaluateSetup implements circuit.Gate.
func (g *MSGGate) EvaluateSetup() error {
	secrets := make([]bitvec.BitVector, len(g.inputs))
	for i, w := range g.inputs {
		w.WaitSetup()
		secrets[i] = w.Secret
	}
	for idx, r := range g.rounds {
		deltaAB, err := r.core.setupShares(r.split(secrets))
		if err != nil {
			return errors.Wrapf(err, "round %d", idx)
		}
		deltaY, err := g.p.randomBits(r.pairs * g.numSIMD)
		if err != nil {
			return err
		}
		r.publicY = deltaAB
		r.publicY.Xor(deltaY)
		secrets = r.next(secrets, deltaY, g.numSIMD)
	}
	g.output.Secret = secrets[0].Clone()
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *MSGGate) EvaluateOnline() error {
	publics := make([]bitvec.BitVector, len(g.inputs))
	for i, w := range g.inputs {
		w.WaitOnline()
		publics[i] = w.Public
	}
	for idx, r := range g.rounds {
		publicA, publicB := r.split(publics)
		r.publicY.Xor(r.core.onlineShares(publicA, publicB, g.isMyJob()))

		if err := g.p.layer.SendBits(g.id, idx, r.publicY); err != nil {
			return err
		}
		peer, err := r.peer.Get()
		if err != nil {
			return errors.Wrapf(err, "gate %d: round %d", g.id, idx)
		}
		r.publicY.Xor(peer)
		publics = r.next(publics, r.publicY, g.numSIMD)
	}
	g.output.Public = publics[0].Clone()
	g.output.SetOnlineReady()
	return nil
}
