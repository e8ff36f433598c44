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
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/wire"
)

// checkBinary verifies the operand vectors of a binary gate and
// returns their SIMD width.
func checkBinary(a, b []*BooleanWire) int {
	if len(a) != len(b) {
		panic(errors.AssertionFailedf("beavy: number of wires differ: %d != %d",
			len(a), len(b)))
	}
	n := wire.CheckSIMD(a...)
	if m := wire.CheckSIMD(b...); m != n {
		panic(errors.AssertionFailedf(
			"beavy: number of SIMD values differ: %d != %d", n, m))
	}
	return n
}

// foldWires XORs the numWires consecutive numSIMD bit slices of v.
func foldWires(v bitvec.BitVector, numWires, numSIMD int) bitvec.BitVector {
	result := v.Subset(0, numSIMD)
	for i := 1; i < numWires; i++ {
		result.Xor(v.Subset(i*numSIMD, (i+1)*numSIMD))
	}
	return result
}

// INVGate implements boolean negation. Only the party whose job the
// gate is negates its secret share; for the other party the gate
// forwards its input wires.
type INVGate struct {
	gate
	inputs  []*BooleanWire
	outputs []*BooleanWire
}

// NewINVGate creates a new INV gate.
func NewINVGate(p *Provider, inputs []*BooleanWire) *INVGate {
	numSIMD := wire.CheckSIMD(inputs...)

	g := &INVGate{
		gate:   p.newGate(),
		inputs: inputs,
	}
	if g.isMyJob() {
		g.outputs = p.newBooleanWires(len(inputs), numSIMD)
	} else {
		g.outputs = inputs
	}
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *INVGate) Op() circuit.Operation {
	return circuit.INV
}

// Outputs returns the output wires.
func (g *INVGate) Outputs() []*BooleanWire {
	return g.outputs
}

// NeedSetup implements circuit.Gate.
func (g *INVGate) NeedSetup() bool {
	return g.isMyJob()
}

// NeedOnline implements circuit.Gate.
func (g *INVGate) NeedOnline() bool {
	return g.isMyJob()
}

// EvaluateSetup implements circuit.Gate.
func (g *INVGate) EvaluateSetup() error {
	if !g.isMyJob() {
		return nil
	}
	for i, in := range g.inputs {
		in.WaitSetup()
		out := g.outputs[i]
		out.Secret = in.Secret.Clone()
		out.Secret.Not()
		out.SetSetupReady()
	}
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *INVGate) EvaluateOnline() error {
	if !g.isMyJob() {
		return nil
	}
	for i, in := range g.inputs {
		in.WaitOnline()
		out := g.outputs[i]
		out.Public = in.Public
		out.SetOnlineReady()
	}
	return nil
}

// XORGate implements boolean XOR. It is evaluated locally in both
// phases.
type XORGate struct {
	gate
	a, b    []*BooleanWire
	outputs []*BooleanWire
}

// NewXORGate creates a new XOR gate.
func NewXORGate(p *Provider, a, b []*BooleanWire) *XORGate {
	g := newXORGate(p, a, b)
	p.reg.AddGate(g)
	return g
}

func newXORGate(p *Provider, a, b []*BooleanWire) *XORGate {
	numSIMD := checkBinary(a, b)

	return &XORGate{
		gate:    p.newGate(),
		a:       a,
		b:       b,
		outputs: p.newBooleanWires(len(a), numSIMD),
	}
}

// Op implements circuit.Op.
func (g *XORGate) Op() circuit.Operation {
	return circuit.XOR
}

// Outputs returns the output wires.
func (g *XORGate) Outputs() []*BooleanWire {
	return g.outputs
}

// NeedSetup implements circuit.Gate.
func (g *XORGate) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *XORGate) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *XORGate) EvaluateSetup() error {
	for i, out := range g.outputs {
		g.a[i].WaitSetup()
		g.b[i].WaitSetup()
		out.Secret = bitvec.XorOf(g.a[i].Secret, g.b[i].Secret)
		out.SetSetupReady()
	}
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *XORGate) EvaluateOnline() error {
	for i, out := range g.outputs {
		g.a[i].WaitOnline()
		g.b[i].WaitOnline()
		out.Public = bitvec.XorOf(g.a[i].Public, g.b[i].Public)
		out.SetOnlineReady()
	}
	return nil
}

// andCore implements the setup and online algebra shared by the AND
// and DOT gates. The setup computes this party's share of δa∧δb with
// one XCOT batch in each direction.
type andCore struct {
	numWires int
	numSIMD  int
	sender   *ot.XCOTSender
	receiver *ot.XCOTReceiver
	deltaA   bitvec.BitVector
	deltaB   bitvec.BitVector
}

func newANDCore(p *Provider, numWires, numSIMD int) andCore {
	n := numWires * numSIMD
	return andCore{
		numWires: numWires,
		numSIMD:  numSIMD,
		sender:   p.otp.RegisterSendXCOT(n, 1),
		receiver: p.otp.RegisterReceiveXCOT(n, 1),
	}
}

// setup waits for the operand setups and returns this party's share
// of δa∧δb.
func (c *andCore) setup(a, b []*BooleanWire) (bitvec.BitVector, error) {
	return c.setupShares(appendSecrets(a), appendSecrets(b))
}

func (c *andCore) setupShares(deltaA, deltaB bitvec.BitVector) (
	bitvec.BitVector, error) {

	c.deltaA = deltaA
	c.deltaB = deltaB

	c.receiver.SetChoices(c.deltaA)
	if err := c.receiver.SendCorrections(); err != nil {
		return bitvec.BitVector{}, err
	}
	c.sender.SetCorrelations(c.deltaB)
	if err := c.sender.SendMessages(); err != nil {
		return bitvec.BitVector{}, err
	}
	if err := c.receiver.ComputeOutputs(); err != nil {
		return bitvec.BitVector{}, err
	}
	deltaAB := bitvec.AndOf(c.deltaA, c.deltaB)
	deltaAB.Xor(c.sender.Outputs())
	deltaAB.Xor(c.receiver.Outputs())

	return deltaAB, nil
}

// online waits for the operand public shares and returns this
// party's share of the public product terms.
func (c *andCore) online(a, b []*BooleanWire, myJob bool) bitvec.BitVector {
	return c.onlineShares(appendPublics(a), appendPublics(b), myJob)
}

func (c *andCore) onlineShares(publicA, publicB bitvec.BitVector,
	myJob bool) bitvec.BitVector {

	share := bitvec.AndOf(publicA, c.deltaB)
	share.Xor(bitvec.AndOf(publicB, c.deltaA))
	if myJob {
		share.Xor(bitvec.AndOf(publicA, publicB))
	}
	return share
}

// ANDGate implements boolean AND with one online round.
type ANDGate struct {
	gate
	core       andCore
	a, b       []*BooleanWire
	outputs    []*BooleanWire
	publicY    bitvec.BitVector
	peerShares *comm.BitsFuture
}

// NewANDGate creates a new AND gate.
func NewANDGate(p *Provider, a, b []*BooleanWire) *ANDGate {
	numSIMD := checkBinary(a, b)

	g := &ANDGate{
		gate:    p.newGate(),
		core:    newANDCore(p, len(a), numSIMD),
		a:       a,
		b:       b,
		outputs: p.newBooleanWires(len(a), numSIMD),
	}
	g.peerShares = p.layer.RegisterBits(g.id, 0, len(a)*numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *ANDGate) Op() circuit.Operation {
	return circuit.AND
}

// Outputs returns the output wires.
func (g *ANDGate) Outputs() []*BooleanWire {
	return g.outputs
}

// NeedSetup implements circuit.Gate.
func (g *ANDGate) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *ANDGate) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *ANDGate) EvaluateSetup() error {
	deltaAB, err := g.core.setup(g.a, g.b)
	if err != nil {
		return err
	}
	var secrets bitvec.BitVector
	for _, out := range g.outputs {
		out.Secret, err = g.p.randomBits(g.core.numSIMD)
		if err != nil {
			return err
		}
		secrets.Append(out.Secret)
		out.SetSetupReady()
	}
	g.publicY = deltaAB
	g.publicY.Xor(secrets)
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *ANDGate) EvaluateOnline() error {
	g.publicY.Xor(g.core.online(g.a, g.b, g.isMyJob()))
	if err := g.p.layer.SendBits(g.id, 0, g.publicY); err != nil {
		return err
	}
	peer, err := g.peerShares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: public shares", g.id)
	}
	g.publicY.Xor(peer)
	distributePublics(g.outputs, g.publicY)
	return nil
}

// DOTGate implements the boolean inner product of two wire vectors:
// the AND of each wire pair XORed into a single output wire.
type DOTGate struct {
	gate
	core       andCore
	a, b       []*BooleanWire
	output     *BooleanWire
	publicY    bitvec.BitVector
	peerShares *comm.BitsFuture
}

// NewDOTGate creates a new DOT gate.
func NewDOTGate(p *Provider, a, b []*BooleanWire) *DOTGate {
	numSIMD := checkBinary(a, b)

	g := &DOTGate{
		gate:   p.newGate(),
		core:   newANDCore(p, len(a), numSIMD),
		a:      a,
		b:      b,
		output: p.newBooleanWire(numSIMD),
	}
	g.peerShares = p.layer.RegisterBits(g.id, 0, numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *DOTGate) Op() circuit.Operation {
	return circuit.DOT
}

// Output returns the output wire.
func (g *DOTGate) Output() *BooleanWire {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *DOTGate) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *DOTGate) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *DOTGate) EvaluateSetup() error {
	deltaAB, err := g.core.setup(g.a, g.b)
	if err != nil {
		return err
	}
	g.output.Secret, err = g.p.randomBits(g.core.numSIMD)
	if err != nil {
		return err
	}
	g.publicY = foldWires(deltaAB, g.core.numWires, g.core.numSIMD)
	g.publicY.Xor(g.output.Secret)
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *DOTGate) EvaluateOnline() error {
	share := g.core.online(g.a, g.b, g.isMyJob())
	g.publicY.Xor(foldWires(share, g.core.numWires, g.core.numSIMD))

	if err := g.p.layer.SendBits(g.id, 0, g.publicY); err != nil {
		return err
	}
	peer, err := g.peerShares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: public shares", g.id)
	}
	g.publicY.Xor(peer)
	distributePublics([]*BooleanWire{g.output}, g.publicY)
	return nil
}
