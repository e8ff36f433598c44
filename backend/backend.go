//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package backend implements the two-party backend running BEAVY
// circuits over one peer connection.
package backend

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/markkurossi/beavy/beavy"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/p2p"
	"github.com/markkurossi/beavy/wire"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GateFactory creates the gates of one protocol family.
type GateFactory interface {
	MakeUnaryGate(op circuit.Operation, in []wire.Wire) ([]wire.Wire, error)
	MakeBinaryGate(op circuit.Operation, a, b []wire.Wire) ([]wire.Wire,
		error)
	MakeConversionGate(op circuit.Operation, bitSize int,
		in []wire.Wire) ([]wire.Wire, error)
}

var _ GateFactory = &beavy.Provider{}

// TwoParty implements the backend of one party. The backend holds
// the communication layer for its lifetime and the protocol state of
// the current circuit. Reset starts a new circuit on the same
// connection.
type TwoParty struct {
	cfg     Config
	log     *zap.Logger
	session uuid.UUID
	layer   *comm.Layer
	timing  *circuit.Timing
	ioStart p2p.IOStats
	gates   circuit.Stats

	reg *circuit.Register
	otp *ot.Provider
	bp  *beavy.Provider
	ran bool
}

// New creates a backend on the connection.
func New(conn *p2p.Conn, session uuid.UUID, cfg Config) (*TwoParty, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	b := &TwoParty{
		cfg:     cfg,
		log:     log,
		session: session,
		layer:   comm.NewLayer(conn, log.Named("comm")),
		timing:  circuit.NewTiming(),
		ioStart: conn.Stats(),
	}
	b.Reset()
	return b, nil
}

// NewFromSession creates a backend on the session's connection.
func NewFromSession(session *p2p.Session, cfg Config) (*TwoParty, error) {
	if session.PeerID != 1-cfg.MyID {
		return nil, errors.Newf("backend: party %d: invalid peer %d",
			cfg.MyID, session.PeerID)
	}
	return New(session.Conn, session.ID, cfg)
}

// Reset discards the current circuit and creates fresh protocol
// state for the next one. Both parties must reset before building
// the next circuit.
func (b *TwoParty) Reset() {
	id := b.cfg.MyID
	b.reg = circuit.NewRegister()
	b.otp = ot.NewProvider(b.layer.Stream(id), b.layer.Stream(1-id), b.layer,
		rand.Reader, b.log.Named("ot"))
	b.bp = beavy.NewProvider(id, b.reg, b.layer, b.otp, nil,
		b.log.Named("beavy"))
	b.ran = false
}

// MyID returns this party's ID.
func (b *TwoParty) MyID() int {
	return b.cfg.MyID
}

// Session returns the session ID.
func (b *TwoParty) Session() uuid.UUID {
	return b.session
}

// Config returns the backend configuration.
func (b *TwoParty) Config() Config {
	return b.cfg
}

// BEAVY returns the BEAVY provider of the current circuit.
func (b *TwoParty) BEAVY() *beavy.Provider {
	return b.bp
}

// Register returns the gate register of the current circuit.
func (b *TwoParty) Register() *circuit.Register {
	return b.reg
}

// GateFactory returns the gate factory for the protocol.
func (b *TwoParty) GateFactory(proto wire.Protocol) (GateFactory, error) {
	switch proto {
	case wire.BooleanBEAVY, wire.ArithmeticBEAVY:
		return b.bp, nil
	default:
		return nil, errors.Newf("backend: no gate factory for protocol %v",
			proto)
	}
}

// Run evaluates the current circuit. It exchanges the base seeds,
// runs the OT setup concurrently with the gate evaluation, and
// accumulates the run time statistics. On error, the communication
// layer is closed and the backend cannot be used anymore.
func (b *TwoParty) Run(ctx context.Context) error {
	if b.ran {
		return errors.New("backend: circuit already evaluated")
	}
	b.ran = true

	err := b.run(ctx)
	if err != nil {
		b.log.Error("run failed", zap.Error(err))
		b.layer.Close()
	}
	return err
}

func (b *TwoParty) run(ctx context.Context) error {
	start := time.Now()

	if err := b.layer.Sync(); err != nil {
		return errors.Wrap(err, "backend: sync")
	}

	seedStart := time.Now()
	if err := b.bp.Setup(); err != nil {
		return errors.Wrap(err, "backend: base seeds")
	}
	seeds := time.Since(seedStart)

	var otTime time.Duration
	var exec circuit.ExecStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		otStart := time.Now()
		err := b.otp.Run()
		otTime = time.Since(otStart)
		if err != nil {
			b.layer.Close()
			return errors.Wrap(err, "backend: OT setup")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		executor := circuit.NewExecutor(b.reg, b.cfg.Threads,
			b.log.Named("exec"))
		if b.cfg.Evaluation == circuit.Interleaved {
			exec, err = executor.Evaluate(gctx)
		} else {
			var barrier func() error
			if b.cfg.SyncBetweenSetupAndOnline {
				barrier = b.layer.Sync
			}
			exec, err = executor.EvaluateSetupOnline(gctx, barrier)
		}
		if err != nil {
			// Unblock the OT setup waiting for the peer.
			b.layer.Close()
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	total := time.Since(start)

	b.timing.Add("Base seeds", seeds)
	b.timing.Add("OT setup", otTime)
	if b.cfg.Evaluation == circuit.Interleaved {
		b.timing.Add("Gates", exec.Online)
	} else {
		b.timing.Add("Gates setup", exec.Setup)
		b.timing.Add("Gates online", exec.Online)
	}
	b.timing.AddRun(total)

	stats := b.reg.Stats()
	for op := range stats {
		b.gates[op] += stats[op]
	}

	b.log.Info("circuit evaluated",
		zap.Int("gates", b.reg.NumGates()),
		zap.Int("ots", b.otp.NumSend()+b.otp.NumReceive()),
		zap.Duration("seeds", seeds),
		zap.Duration("ot", otTime),
		zap.Duration("setup", exec.Setup),
		zap.Duration("online", exec.Online),
		zap.Duration("total", total))
	return nil
}

// Timing returns the accumulated run time statistics.
func (b *TwoParty) Timing() *circuit.Timing {
	return b.timing
}

// IOStats returns the communication statistics since the backend was
// created.
func (b *TwoParty) IOStats() p2p.IOStats {
	return b.layer.Stats().Sub(b.ioStart)
}

// Close closes the backend and its connection.
func (b *TwoParty) Close() error {
	return b.layer.Close()
}
