//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/ring"
	"github.com/markkurossi/beavy/wire"
)

func booleanWires(in []wire.Wire) ([]*BooleanWire, error) {
	if len(in) == 0 {
		return nil, errors.New("beavy: no input wires")
	}
	result := make([]*BooleanWire, len(in))
	for i, w := range in {
		bw, ok := w.(*BooleanWire)
		if !ok {
			return nil, errors.Newf("beavy: wire %d: expected %v, got %v",
				w.ID(), wire.BooleanBEAVY, w.Protocol())
		}
		result[i] = bw
	}
	return result, nil
}

func arithmeticWires[T ring.Ring](in []wire.Wire) ([]*ArithmeticWire[T], error) {
	if len(in) == 0 {
		return nil, errors.New("beavy: no input wires")
	}
	result := make([]*ArithmeticWire[T], len(in))
	for i, w := range in {
		aw, ok := w.(*ArithmeticWire[T])
		if !ok {
			return nil, errors.Newf("beavy: wire %d: expected %d-bit %v, "+
				"got %d-bit %v", w.ID(), ring.BitSize[T](),
				wire.ArithmeticBEAVY, w.BitSize(), w.Protocol())
		}
		result[i] = aw
	}
	return result, nil
}

func single[W any](ws []W, op circuit.Operation) (W, error) {
	if len(ws) != 1 {
		var zero W
		return zero, errors.Newf("beavy: %v: expected 1 wire, got %d",
			op, len(ws))
	}
	return ws[0], nil
}

func unsupported(op circuit.Operation, in []wire.Wire) error {
	if len(in) == 0 {
		return errors.Newf("beavy: operation %v not supported", op)
	}
	return errors.Newf("beavy: operation %v not supported for %v",
		op, in[0].Protocol())
}

// MakeUnaryGate creates a gate for the unary operation and returns
// its output wires.
func (p *Provider) MakeUnaryGate(op circuit.Operation,
	in []wire.Wire) ([]wire.Wire, error) {

	if len(in) == 0 {
		return nil, errors.Newf("beavy: %v: no input wires", op)
	}
	switch in[0].Protocol() {
	case wire.BooleanBEAVY:
		ws, err := booleanWires(in)
		if err != nil {
			return nil, err
		}
		switch op {
		case circuit.INV:
			return BooleanWires(NewINVGate(p, ws).Outputs()), nil
		case circuit.MSG:
			return BooleanWires([]*BooleanWire{NewMSGGate(p, ws).Output()}), nil
		}

	case wire.ArithmeticBEAVY:
		switch in[0].BitSize() {
		case 8:
			return arithmeticUnary[uint8](p, op, in)
		case 16:
			return arithmeticUnary[uint16](p, op, in)
		case 32:
			return arithmeticUnary[uint32](p, op, in)
		case 64:
			return arithmeticUnary[uint64](p, op, in)
		}
	}
	return nil, unsupported(op, in)
}

func arithmeticUnary[T ring.Ring](p *Provider, op circuit.Operation,
	in []wire.Wire) ([]wire.Wire, error) {

	ws, err := arithmeticWires[T](in)
	if err != nil {
		return nil, err
	}
	w, err := single(ws, op)
	if err != nil {
		return nil, err
	}
	switch op {
	case circuit.NEG:
		return ArithmeticWires(NewNEGGate(p, w).Output()), nil
	case circuit.SQR:
		return ArithmeticWires(NewSQRGate(p, w).Output()), nil
	}
	return nil, unsupported(op, in)
}

// MakeBinaryGate creates a gate for the binary operation and returns
// its output wires. The operands must be of the same protocol except
// for BXAMUL which multiplies a boolean wire with an arithmetic
// wire.
func (p *Provider) MakeBinaryGate(op circuit.Operation,
	a, b []wire.Wire) ([]wire.Wire, error) {

	if len(a) == 0 || len(b) == 0 {
		return nil, errors.Newf("beavy: %v: no input wires", op)
	}
	if op == circuit.BXAMUL {
		switch b[0].BitSize() {
		case 8:
			return bxaMul[uint8](p, a, b)
		case 16:
			return bxaMul[uint16](p, a, b)
		case 32:
			return bxaMul[uint32](p, a, b)
		case 64:
			return bxaMul[uint64](p, a, b)
		}
		return nil, unsupported(op, b)
	}
	if a[0].Protocol() != b[0].Protocol() {
		return nil, errors.Newf("beavy: %v: protocols differ: %v != %v",
			op, a[0].Protocol(), b[0].Protocol())
	}
	switch a[0].Protocol() {
	case wire.BooleanBEAVY:
		wa, err := booleanWires(a)
		if err != nil {
			return nil, err
		}
		wb, err := booleanWires(b)
		if err != nil {
			return nil, err
		}
		if len(wa) != len(wb) {
			return nil, errors.Newf("beavy: %v: number of wires differ: "+
				"%d != %d", op, len(wa), len(wb))
		}
		switch op {
		case circuit.XOR:
			return BooleanWires(NewXORGate(p, wa, wb).Outputs()), nil
		case circuit.AND:
			return BooleanWires(NewANDGate(p, wa, wb).Outputs()), nil
		case circuit.DOT:
			return BooleanWires([]*BooleanWire{NewDOTGate(p, wa, wb).Output()}),
				nil
		}

	case wire.ArithmeticBEAVY:
		switch a[0].BitSize() {
		case 8:
			return arithmeticBinary[uint8](p, op, a, b)
		case 16:
			return arithmeticBinary[uint16](p, op, a, b)
		case 32:
			return arithmeticBinary[uint32](p, op, a, b)
		case 64:
			return arithmeticBinary[uint64](p, op, a, b)
		}
	}
	return nil, unsupported(op, a)
}

func arithmeticBinary[T ring.Ring](p *Provider, op circuit.Operation,
	a, b []wire.Wire) ([]wire.Wire, error) {

	wa, err := arithmeticWires[T](a)
	if err != nil {
		return nil, err
	}
	wb, err := arithmeticWires[T](b)
	if err != nil {
		return nil, err
	}
	if op == circuit.AHAM {
		if len(wa) != len(wb) {
			return nil, errors.Newf("beavy: %v: number of wires differ: "+
				"%d != %d", op, len(wa), len(wb))
		}
		return ArithmeticWires(NewAHAMGate(p, wa, wb).Output()), nil
	}
	x, err := single(wa, op)
	if err != nil {
		return nil, err
	}
	y, err := single(wb, op)
	if err != nil {
		return nil, err
	}
	switch op {
	case circuit.ADD:
		return ArithmeticWires(NewADDGate(p, x, y).Output()), nil
	case circuit.MUL:
		return ArithmeticWires(NewMULGate(p, x, y).Output()), nil
	}
	return nil, unsupported(op, a)
}

func bxaMul[T ring.Ring](p *Provider, a, b []wire.Wire) ([]wire.Wire, error) {
	wa, err := booleanWires(a)
	if err != nil {
		return nil, err
	}
	bit, err := single(wa, circuit.BXAMUL)
	if err != nil {
		return nil, err
	}
	wb, err := arithmeticWires[T](b)
	if err != nil {
		return nil, err
	}
	n, err := single(wb, circuit.BXAMUL)
	if err != nil {
		return nil, err
	}
	return ArithmeticWires(NewBXAMULGate(p, bit, n).Output()), nil
}

// MakeConversionGate creates a boolean to arithmetic gate with a
// bitSize-bit arithmetic output. The operation is one of Bit2A, B2A,
// COUNT, or HAM. HAM takes its second operand vector as the second
// half of the input wires.
func (p *Provider) MakeConversionGate(op circuit.Operation, bitSize int,
	in []wire.Wire) ([]wire.Wire, error) {

	if len(in) == 0 || in[0].Protocol() != wire.BooleanBEAVY {
		return nil, unsupported(op, in)
	}
	switch bitSize {
	case 8:
		return convert[uint8](p, op, in)
	case 16:
		return convert[uint16](p, op, in)
	case 32:
		return convert[uint32](p, op, in)
	case 64:
		return convert[uint64](p, op, in)
	default:
		return nil, errors.Newf("beavy: %v: unsupported bit size %d",
			op, bitSize)
	}
}

func convert[T ring.Ring](p *Provider, op circuit.Operation,
	in []wire.Wire) ([]wire.Wire, error) {

	ws, err := booleanWires(in)
	if err != nil {
		return nil, err
	}
	switch op {
	case circuit.Bit2A:
		w, err := single(ws, op)
		if err != nil {
			return nil, err
		}
		return ArithmeticWires(NewBit2AGate[T](p, w).Output()), nil

	case circuit.B2A:
		if len(ws) != ring.BitSize[T]() {
			return nil, errors.Newf("beavy: %v: %d wires for %d-bit ring",
				op, len(ws), ring.BitSize[T]())
		}
		return ArithmeticWires(NewB2AGate[T](p, ws).Output()), nil

	case circuit.COUNT:
		return ArithmeticWires(NewCOUNTGate[T](p, ws).Output()), nil

	case circuit.HAM:
		if len(ws)%2 != 0 {
			return nil, errors.Newf("beavy: %v: odd number of wires %d",
				op, len(ws))
		}
		half := len(ws) / 2
		return ArithmeticWires(NewHAMGate[T](p, ws[:half], ws[half:]).Output()),
			nil
	}
	return nil, unsupported(op, in)
}

// MakeEQEXPGate creates an EQEXP gate testing a ≡ b (mod tableSize)
// and returns its boolean output wire.
func (p *Provider) MakeEQEXPGate(a, b wire.Wire,
	tableSize int) ([]wire.Wire, error) {

	if a.Protocol() != wire.ArithmeticBEAVY ||
		b.Protocol() != wire.ArithmeticBEAVY {
		return nil, errors.Newf("beavy: %v not supported for %v and %v",
			circuit.EQEXP, a.Protocol(), b.Protocol())
	}
	switch a.BitSize() {
	case 8:
		return eqexp[uint8](p, a, b, tableSize)
	case 16:
		return eqexp[uint16](p, a, b, tableSize)
	case 32:
		return eqexp[uint32](p, a, b, tableSize)
	case 64:
		return eqexp[uint64](p, a, b, tableSize)
	}
	return nil, errors.Newf("beavy: EQEXP: unsupported bit size %d",
		a.BitSize())
}

func eqexp[T ring.Ring](p *Provider, a, b wire.Wire,
	tableSize int) ([]wire.Wire, error) {

	ws, err := arithmeticWires[T]([]wire.Wire{a, b})
	if err != nil {
		return nil, err
	}
	if err := CheckTableSize[T](tableSize); err != nil {
		return nil, err
	}
	g := NewEQEXPGate(p, ws[0], ws[1], tableSize)
	return BooleanWires([]*BooleanWire{g.Output()}), nil
}
