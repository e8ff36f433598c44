//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Evaluation specifies how the executor schedules the gate phases.
type Evaluation int

// Evaluation modes.
const (
	// SetupOnline runs the setup phase of all gates before the
	// online phase of any gate.
	SetupOnline Evaluation = iota
	// Interleaved runs the online phase of each gate as soon as its
	// own setup phase is done.
	Interleaved
)

var evaluationNames = map[Evaluation]string{
	SetupOnline: "setup-online",
	Interleaved: "interleaved",
}

func (e Evaluation) String() string {
	name, ok := evaluationNames[e]
	if ok {
		return name
	}
	return fmt.Sprintf("{Evaluation %d}", e)
}

// ExecStats holds the gate evaluation run times.
type ExecStats struct {
	Setup  time.Duration
	Online time.Duration
}

// Executor evaluates the gates of a register.
type Executor struct {
	reg     *Register
	threads int
	log     *zap.Logger
}

// NewExecutor creates a new executor for the register. The threads
// bounds the number of concurrently evaluated gates. The value 0
// means unlimited.
func NewExecutor(reg *Register, threads int, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		reg:     reg,
		threads: threads,
		log:     log,
	}
}

// EvaluateSetupOnline evaluates the setup phase of all gates and
// then the online phase of all gates. If barrier is not nil, it is
// called between the phases.
func (e *Executor) EvaluateSetupOnline(ctx context.Context,
	barrier func() error) (ExecStats, error) {

	var stats ExecStats
	gates := e.reg.Gates()

	e.log.Debug("evaluating setup", zap.Int("gates", e.reg.NumSetupGates()))
	start := time.Now()
	err := e.run(ctx, gates, Gate.NeedSetup, e.setup)
	stats.Setup = time.Since(start)
	if err != nil {
		return stats, err
	}
	if barrier != nil {
		if err := barrier(); err != nil {
			return stats, errors.Wrap(err, "sync between setup and online")
		}
	}

	e.log.Debug("evaluating online", zap.Int("gates", e.reg.NumOnlineGates()))
	start = time.Now()
	err = e.run(ctx, gates, Gate.NeedOnline, e.online)
	stats.Online = time.Since(start)

	return stats, err
}

// Evaluate evaluates all gates so that each gate runs its online
// phase right after its setup phase.
func (e *Executor) Evaluate(ctx context.Context) (ExecStats, error) {
	var stats ExecStats
	start := time.Now()

	err := e.run(ctx, e.reg.Gates(),
		func(g Gate) bool {
			return g.NeedSetup() || g.NeedOnline()
		},
		func(g Gate) error {
			if g.NeedSetup() {
				if err := e.setup(g); err != nil {
					return err
				}
			}
			if g.NeedOnline() {
				return e.online(g)
			}
			return nil
		})
	stats.Online = time.Since(start)

	return stats, err
}

func (e *Executor) run(ctx context.Context, gates []Gate,
	need func(Gate) bool, eval func(Gate) error) error {

	g, gctx := errgroup.WithContext(ctx)
	if e.threads > 0 {
		g.SetLimit(e.threads)
	}
	done := make(chan error, 1)
	go func() {
		for _, gate := range gates {
			if !need(gate) {
				continue
			}
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				return eval(gate)
			})
		}
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// The group context is also cancelled when all gates are done.
	// Gates waiting for the wires of a failed gate never return so
	// the first error is returned without waiting for them.
	cause := context.Cause(gctx)
	if errors.Is(cause, context.Canceled) {
		return <-done
	}
	return cause
}

func (e *Executor) setup(g Gate) error {
	e.log.Debug("gate setup start", zap.Int("gate", g.ID()))
	if err := g.EvaluateSetup(); err != nil {
		return errors.Wrapf(err, "gate %d: setup", g.ID())
	}
	e.log.Debug("gate setup end", zap.Int("gate", g.ID()))
	return nil
}

func (e *Executor) online(g Gate) error {
	e.log.Debug("gate online start", zap.Int("gate", g.ID()))
	if err := g.EvaluateOnline(); err != nil {
		return errors.Wrapf(err, "gate %d: online", g.ID())
	}
	e.log.Debug("gate online end", zap.Int("gate", g.ID()))
	return nil
}
