//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package backend

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markkurossi/beavy/beavy"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/p2p"
	"github.com/markkurossi/beavy/wire"
	"go.uber.org/zap"
)

func newBackends(t *testing.T, cfg Config) [2]*TwoParty {
	c0, c1 := p2p.Pipe()
	session := uuid.New()

	var result [2]*TwoParty
	for id, conn := range []*p2p.Conn{c0, c1} {
		cfg.MyID = id
		b, err := New(conn, session, cfg)
		if err != nil {
			t.Fatal(err)
		}
		result[id] = b
	}
	t.Cleanup(func() {
		result[0].Close()
		result[1].Close()
	})
	return result
}

func runBackends(t *testing.T, backends [2]*TwoParty) {
	errCh := make(chan error, 2)
	for _, b := range backends {
		go func(b *TwoParty) {
			errCh <- b.Run(context.Background())
		}(b)
	}
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
}

// buildHamming builds the Hamming distance circuit of a and x over
// the gate factory and returns the output gate.
func buildHamming(b *TwoParty, a, x []bitvec.BitVector) (
	*beavy.ArithmeticOutputGate[uint16], error) {

	bp := b.BEAVY()
	var wa, wx []*beavy.BooleanWire
	if b.MyID() == 0 {
		g := beavy.NewBooleanInputGateSender(bp, len(a), a[0].Size())
		g.SetInputs(a)
		wa = g.Outputs()
		wx = beavy.NewBooleanInputGateReceiver(bp, len(x), x[0].Size()).
			Outputs()
	} else {
		wa = beavy.NewBooleanInputGateReceiver(bp, len(a), a[0].Size()).
			Outputs()
		g := beavy.NewBooleanInputGateSender(bp, len(x), x[0].Size())
		g.SetInputs(x)
		wx = g.Outputs()
	}
	share, err := NewShare(b.MyID(),
		append(beavy.BooleanWires(wa), beavy.BooleanWires(wx)...))
	if err != nil {
		return nil, err
	}
	f, err := b.GateFactory(share.Protocol)
	if err != nil {
		return nil, err
	}
	out, err := f.MakeConversionGate(circuit.HAM, 16, share.Wires)
	if err != nil {
		return nil, err
	}
	return beavy.NewArithmeticOutputGate(bp,
		out[0].(*beavy.ArithmeticWire[uint16]), beavy.AllParties), nil
}

func mustHamming(t *testing.T, b *TwoParty,
	a, x []bitvec.BitVector) *beavy.ArithmeticOutputGate[uint16] {

	out, err := buildHamming(b, a, x)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func testVectors(t *testing.T, numWires, numSIMD int) (
	a, x []bitvec.BitVector, expected []uint16) {

	expected = make([]uint16, numSIMD)
	for i := 0; i < numWires; i++ {
		va, err := bitvec.Random(rand.Reader, numSIMD)
		if err != nil {
			t.Fatal(err)
		}
		vx, err := bitvec.Random(rand.Reader, numSIMD)
		if err != nil {
			t.Fatal(err)
		}
		a = append(a, va)
		x = append(x, vx)
		d := bitvec.XorOf(va, vx)
		for j := range expected {
			expected[j] += uint16(d.Bit(j))
		}
	}
	return
}

func checkOutputs(t *testing.T, outs [2]*beavy.ArithmeticOutputGate[uint16],
	expected []uint16) {

	t.Helper()
	for id, out := range outs {
		got := out.Output().Get()
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("party %d: value %d: got %v, expected %v",
					id, i, got[i], expected[i])
			}
		}
	}
}

func TestTwoParty(t *testing.T) {
	configs := []Config{
		{},
		{Threads: 2},
		{SyncBetweenSetupAndOnline: true},
		{Evaluation: circuit.Interleaved},
	}
	for _, cfg := range configs {
		name := fmt.Sprintf("%v/%d/%v", cfg.Evaluation, cfg.Threads,
			cfg.SyncBetweenSetupAndOnline)
		t.Run(name, func(t *testing.T) {
			backends := newBackends(t, cfg)
			a, x, expected := testVectors(t, 8, 20)

			var outs [2]*beavy.ArithmeticOutputGate[uint16]
			for id, b := range backends {
				outs[id] = mustHamming(t, b, a, x)
			}
			runBackends(t, backends)
			checkOutputs(t, outs, expected)
		})
	}
}

func TestRepetitions(t *testing.T) {
	backends := newBackends(t, Config{})

	for rep := 0; rep < 3; rep++ {
		a, x, expected := testVectors(t, 5, 7)
		var outs [2]*beavy.ArithmeticOutputGate[uint16]
		for id, b := range backends {
			if rep > 0 {
				b.Reset()
			}
			outs[id] = mustHamming(t, b, a, x)
		}
		runBackends(t, backends)
		checkOutputs(t, outs, expected)
	}
	for id, b := range backends {
		if b.Timing().Runs != 3 {
			t.Errorf("party %d: %d runs, expected 3", id, b.Timing().Runs)
		}
		if b.Gates()[circuit.HAM] != 3 {
			t.Errorf("party %d: %d HAM gates, expected 3", id,
				b.Gates()[circuit.HAM])
		}
		if b.IOStats().Sum() == 0 {
			t.Errorf("party %d: no communication", id)
		}
	}
	if err := backends[0].Run(context.Background()); err == nil {
		t.Errorf("second Run of the same circuit succeeded")
	}

	var buf bytes.Buffer
	backends[1].PrintStats(&buf)
	if !strings.Contains(buf.String(), "OT setup") {
		t.Errorf("stats table without OT setup:\n%s", buf.String())
	}

	buf.Reset()
	if err := backends[1].PrintJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var report map[string]any
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, buf.String())
	}
	if report["session"] != backends[1].Session().String() {
		t.Errorf("report session %v, expected %v", report["session"],
			backends[1].Session())
	}
	if report["runs"] != float64(3) {
		t.Errorf("report runs %v, expected 3", report["runs"])
	}
}

func TestGateFactory(t *testing.T) {
	backends := newBackends(t, Config{})
	for _, proto := range []wire.Protocol{wire.BooleanBEAVY,
		wire.ArithmeticBEAVY} {
		if _, err := backends[0].GateFactory(proto); err != nil {
			t.Errorf("GateFactory(%v): %v", proto, err)
		}
	}
	for _, proto := range []wire.Protocol{wire.BooleanGMW,
		wire.ArithmeticGMW, wire.BMR} {
		if _, err := backends[0].GateFactory(proto); err == nil {
			t.Errorf("GateFactory(%v) succeeded", proto)
		}
	}
}

func TestShare(t *testing.T) {
	backends := newBackends(t, Config{})
	bp := backends[0].BEAVY()

	bw := beavy.NewBooleanInputGateSender(bp, 2, 4).Outputs()
	aw := beavy.NewArithmeticInputGateSender[uint8](bp, 4).Output()
	aw5 := beavy.NewArithmeticInputGateSender[uint8](bp, 5).Output()
	aw16 := beavy.NewArithmeticInputGateSender[uint16](bp, 4).Output()

	s, err := NewShare(0, beavy.BooleanWires(bw))
	if err != nil {
		t.Fatal(err)
	}
	if s.Protocol != wire.BooleanBEAVY || s.NumSIMD() != 4 {
		t.Errorf("invalid share %v", s)
	}

	invalid := [][]wire.Wire{
		nil,
		{bw[0], aw},
		{aw, aw5},
		{aw, aw16},
	}
	for _, ws := range invalid {
		if _, err := NewShare(0, ws); err == nil {
			t.Errorf("NewShare(%v) succeeded", ws)
		}
	}
}

func TestConfig(t *testing.T) {
	invalid := []Config{
		{MyID: 2},
		{MyID: -1},
		{Threads: -1},
		{Evaluation: circuit.Evaluation(7)},
	}
	c0, _ := p2p.Pipe()
	for _, cfg := range invalid {
		if _, err := New(c0, uuid.New(), cfg); err == nil {
			t.Errorf("New(%+v) succeeded", cfg)
		}
	}
}

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestTCP(t *testing.T) {
	parties := [2]p2p.Party{
		{ID: 0, Host: "127.0.0.1", Port: freePort(t)},
		{ID: 1, Host: "127.0.0.1", Port: freePort(t)},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, x, expected := testVectors(t, 16, 100)

	type result struct {
		b   *TwoParty
		out *beavy.ArithmeticOutputGate[uint16]
		err error
	}
	resultCh := make(chan result, 2)
	for id := 0; id < 2; id++ {
		go func(id int) {
			session, err := p2p.Connect(ctx, zap.NewNop(), id, parties)
			if err != nil {
				resultCh <- result{err: err}
				return
			}
			b, err := NewFromSession(session, Config{MyID: id})
			if err != nil {
				resultCh <- result{err: err}
				return
			}
			out, err := buildHamming(b, a, x)
			if err != nil {
				b.Close()
				resultCh <- result{err: err}
				return
			}
			resultCh <- result{
				b:   b,
				out: out,
				err: b.Run(ctx),
			}
		}(id)
	}

	var outs [2]*beavy.ArithmeticOutputGate[uint16]
	var sessions [2]uuid.UUID
	for i := 0; i < 2; i++ {
		r := <-resultCh
		if r.err != nil {
			t.Fatal(r.err)
		}
		defer r.b.Close()
		outs[r.b.MyID()] = r.out
		sessions[r.b.MyID()] = r.b.Session()
	}
	if sessions[0] != sessions[1] {
		t.Errorf("session IDs differ: %v != %v", sessions[0], sessions[1])
	}
	checkOutputs(t, outs, expected)
}
