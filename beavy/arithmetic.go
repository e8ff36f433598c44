//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/mult"
	"github.com/markkurossi/beavy/ring"
	"golang.org/x/sync/errgroup"
)

// concurrently runs the functions concurrently and returns the first
// error. Gates that act both as a correlation sender and receiver run
// the two sides concurrently since each side blocks on the peer's
// opposite side.
func concurrently(fs ...func() error) error {
	var g errgroup.Group
	for _, f := range fs {
		g.Go(f)
	}
	return g.Wait()
}

func checkArithmetic[T ring.Ring](a, b *ArithmeticWire[T]) int {
	if a.NumSIMD() != b.NumSIMD() {
		panic(errors.AssertionFailedf(
			"beavy: number of SIMD values differ: %d != %d",
			a.NumSIMD(), b.NumSIMD()))
	}
	return a.NumSIMD()
}

// NEGGate implements arithmetic negation.
type NEGGate[T ring.Ring] struct {
	gate
	input  *ArithmeticWire[T]
	output *ArithmeticWire[T]
}

// NewNEGGate creates a new NEG gate.
func NewNEGGate[T ring.Ring](p *Provider, input *ArithmeticWire[T]) *NEGGate[T] {
	g := &NEGGate[T]{
		gate:   p.newGate(),
		input:  input,
		output: newArithmeticWire[T](p, input.NumSIMD()),
	}
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *NEGGate[T]) Op() circuit.Operation {
	return circuit.NEG
}

// Output returns the output wire.
func (g *NEGGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *NEGGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *NEGGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *NEGGate[T]) EvaluateSetup() error {
	g.input.WaitSetup()
	g.output.Secret = ring.Neg(g.input.Secret)
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *NEGGate[T]) EvaluateOnline() error {
	g.input.WaitOnline()
	g.output.Public = ring.Neg(g.input.Public)
	g.output.SetOnlineReady()
	return nil
}

// ADDGate implements arithmetic addition. It is evaluated locally in
// both phases.
type ADDGate[T ring.Ring] struct {
	gate
	a, b   *ArithmeticWire[T]
	output *ArithmeticWire[T]
}

// NewADDGate creates a new ADD gate.
func NewADDGate[T ring.Ring](p *Provider, a, b *ArithmeticWire[T]) *ADDGate[T] {
	numSIMD := checkArithmetic(a, b)

	g := &ADDGate[T]{
		gate:   p.newGate(),
		a:      a,
		b:      b,
		output: newArithmeticWire[T](p, numSIMD),
	}
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *ADDGate[T]) Op() circuit.Operation {
	return circuit.ADD
}

// Output returns the output wire.
func (g *ADDGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *ADDGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *ADDGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *ADDGate[T]) EvaluateSetup() error {
	g.a.WaitSetup()
	g.b.WaitSetup()
	g.output.Secret = ring.Add(g.a.Secret, g.b.Secret)
	g.output.SetSetupReady()
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *ADDGate[T]) EvaluateOnline() error {
	g.a.WaitOnline()
	g.b.WaitOnline()
	g.output.Public = ring.Add(g.a.Public, g.b.Public)
	g.output.SetOnlineReady()
	return nil
}

// mulCore implements the multiplication algebra shared by the MUL
// and AHAM gates. The setup computes this party's share of δa·δb with
// one integer multiplication in each direction.
type mulCore[T ring.Ring] struct {
	sender   *mult.IntSender[T]
	receiver *mult.IntReceiver[T]
	deltaA   []T
	deltaB   []T
}

func newMulCore[T ring.Ring](p *Provider, n int) mulCore[T] {
	return mulCore[T]{
		sender:   mult.NewIntSender[T](p.otp, n, 1),
		receiver: mult.NewIntReceiver[T](p.otp, n, 1),
	}
}

// setup returns this party's share of δa·δb.
func (c *mulCore[T]) setup(deltaA, deltaB []T) ([]T, error) {
	c.deltaA = deltaA
	c.deltaB = deltaB

	c.receiver.SetInputs(deltaA)
	c.sender.SetInputs(deltaB)
	err := concurrently(c.sender.ComputeOutputs, c.receiver.ComputeOutputs)
	if err != nil {
		return nil, err
	}
	result := ring.Mul(deltaA, deltaB)
	ring.AddTo(result, c.sender.Outputs())
	ring.AddTo(result, c.receiver.Outputs())
	return result, nil
}

// online returns this party's share of the public product terms
// ΔaΔb - Δa·δb - Δb·δa.
func (c *mulCore[T]) online(publicA, publicB []T, myJob bool) []T {
	result := make([]T, len(publicA))
	for i := range result {
		result[i] = -publicA[i]*c.deltaB[i] - publicB[i]*c.deltaA[i]
		if myJob {
			result[i] += publicA[i] * publicB[i]
		}
	}
	return result
}

// MULGate implements arithmetic multiplication with one online round.
type MULGate[T ring.Ring] struct {
	gate
	core       mulCore[T]
	a, b       *ArithmeticWire[T]
	output     *ArithmeticWire[T]
	publicY    []T
	peerShares *comm.IntsFuture[T]
}

// NewMULGate creates a new MUL gate.
func NewMULGate[T ring.Ring](p *Provider, a, b *ArithmeticWire[T]) *MULGate[T] {
	numSIMD := checkArithmetic(a, b)

	g := &MULGate[T]{
		gate:   p.newGate(),
		core:   newMulCore[T](p, numSIMD),
		a:      a,
		b:      b,
		output: newArithmeticWire[T](p, numSIMD),
	}
	g.peerShares = comm.RegisterInts[T](p.layer, g.id, 0, numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *MULGate[T]) Op() circuit.Operation {
	return circuit.MUL
}

// Output returns the output wire.
func (g *MULGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *MULGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *MULGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *MULGate[T]) EvaluateSetup() error {
	g.a.WaitSetup()
	g.b.WaitSetup()

	deltaAB, err := g.core.setup(g.a.Secret, g.b.Secret)
	if err != nil {
		return err
	}
	g.output.Secret, err = randomInts[T](g.p, g.output.NumSIMD())
	if err != nil {
		return err
	}
	g.output.SetSetupReady()

	g.publicY = ring.Add(deltaAB, g.output.Secret)
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *MULGate[T]) EvaluateOnline() error {
	g.a.WaitOnline()
	g.b.WaitOnline()

	ring.AddTo(g.publicY, g.core.online(g.a.Public, g.b.Public, g.isMyJob()))
	if err := comm.SendInts(g.p.layer, g.id, 0, g.publicY); err != nil {
		return err
	}
	peer, err := g.peerShares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: public shares", g.id)
	}
	ring.AddTo(g.publicY, peer)

	g.output.Public = g.publicY
	g.output.SetOnlineReady()
	return nil
}

// MULNIGate multiplies two arithmetic wires without online
// communication. The result is not a BEAVY wire: each party gets an
// additive share of a·b and the shares of both parties sum to the
// product.
type MULNIGate[T ring.Ring] struct {
	gate
	core   mulCore[T]
	a, b   *ArithmeticWire[T]
	share  []T
	output *Future[[]T]
}

// NewMULNIGate creates a new MULNI gate.
func NewMULNIGate[T ring.Ring](p *Provider, a, b *ArithmeticWire[T]) *MULNIGate[T] {
	numSIMD := checkArithmetic(a, b)

	g := &MULNIGate[T]{
		gate:   p.newGate(),
		core:   newMulCore[T](p, numSIMD),
		a:      a,
		b:      b,
		output: NewFuture[[]T]("additive share"),
	}
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *MULNIGate[T]) Op() circuit.Operation {
	return circuit.MULNI
}

// Output returns the future of this party's additive share of the
// product.
func (g *MULNIGate[T]) Output() *Future[[]T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *MULNIGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *MULNIGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *MULNIGate[T]) EvaluateSetup() error {
	g.a.WaitSetup()
	g.b.WaitSetup()

	var err error
	g.share, err = g.core.setup(g.a.Secret, g.b.Secret)
	return err
}

// EvaluateOnline implements circuit.Gate.
func (g *MULNIGate[T]) EvaluateOnline() error {
	g.a.WaitOnline()
	g.b.WaitOnline()

	ring.AddTo(g.share, g.core.online(g.a.Public, g.b.Public, g.isMyJob()))
	g.output.Set(g.share)
	return nil
}

// SQRGate implements arithmetic squaring. The cross term δa₀·δa₁ is
// computed with one integer multiplication where party 0 is the
// sender.
type SQRGate[T ring.Ring] struct {
	gate
	sender     *mult.IntSender[T]
	receiver   *mult.IntReceiver[T]
	input      *ArithmeticWire[T]
	output     *ArithmeticWire[T]
	publicY    []T
	peerShares *comm.IntsFuture[T]
}

// NewSQRGate creates a new SQR gate.
func NewSQRGate[T ring.Ring](p *Provider, input *ArithmeticWire[T]) *SQRGate[T] {
	numSIMD := input.NumSIMD()

	g := &SQRGate[T]{
		gate:   p.newGate(),
		input:  input,
		output: newArithmeticWire[T](p, numSIMD),
	}
	if p.myID == 0 {
		g.sender = mult.NewIntSender[T](p.otp, numSIMD, 1)
	} else {
		g.receiver = mult.NewIntReceiver[T](p.otp, numSIMD, 1)
	}
	g.peerShares = comm.RegisterInts[T](p.layer, g.id, 0, numSIMD)
	p.reg.AddGate(g)
	return g
}

// Op implements circuit.Op.
func (g *SQRGate[T]) Op() circuit.Operation {
	return circuit.SQR
}

// Output returns the output wire.
func (g *SQRGate[T]) Output() *ArithmeticWire[T] {
	return g.output
}

// NeedSetup implements circuit.Gate.
func (g *SQRGate[T]) NeedSetup() bool {
	return true
}

// NeedOnline implements circuit.Gate.
func (g *SQRGate[T]) NeedOnline() bool {
	return true
}

// EvaluateSetup implements circuit.Gate.
func (g *SQRGate[T]) EvaluateSetup() error {
	g.input.WaitSetup()
	deltaA := g.input.Secret

	var cross []T
	if g.sender != nil {
		g.sender.SetInputs(deltaA)
		if err := g.sender.ComputeOutputs(); err != nil {
			return err
		}
		cross = g.sender.Outputs()
	} else {
		g.receiver.SetInputs(deltaA)
		if err := g.receiver.ComputeOutputs(); err != nil {
			return err
		}
		cross = g.receiver.Outputs()
	}
	var err error
	g.output.Secret, err = randomInts[T](g.p, g.output.NumSIMD())
	if err != nil {
		return err
	}
	g.output.SetSetupReady()

	g.publicY = make([]T, len(deltaA))
	for i, d := range deltaA {
		g.publicY[i] = d*d + g.output.Secret[i] + 2*cross[i]
	}
	return nil
}

// EvaluateOnline implements circuit.Gate.
func (g *SQRGate[T]) EvaluateOnline() error {
	g.input.WaitOnline()
	deltaA := g.input.Secret
	publicA := g.input.Public

	myJob := g.isMyJob()
	for i, a := range publicA {
		g.publicY[i] -= 2 * a * deltaA[i]
		if myJob {
			g.publicY[i] += a * a
		}
	}
	if err := comm.SendInts(g.p.layer, g.id, 0, g.publicY); err != nil {
		return err
	}
	peer, err := g.peerShares.Get()
	if err != nil {
		return errors.Wrapf(err, "gate %d: public shares", g.id)
	}
	ring.AddTo(g.publicY, peer)

	g.output.Public = g.publicY
	g.output.SetOnlineReady()
	return nil
}
