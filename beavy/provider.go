//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package beavy implements the two-party BEAVY protocol: boolean and
// arithmetic secret-shared wires and gates that evaluate in an
// input-independent setup phase and an online phase with at most one
// communication round per gate.
package beavy

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/ring"
	"go.uber.org/zap"
)

// AllParties specifies that an output is revealed to both parties.
const AllParties = -1

// Provider implements the BEAVY protocol state of one party. Gates
// are constructed through the provider in the same order by both
// parties. The construction registers the gate's OTs and messages
// and the gate in the circuit register.
type Provider struct {
	myID  int
	reg   *circuit.Register
	layer *comm.Layer
	otp   *ot.Provider
	rand  io.Reader
	log   *zap.Logger

	m           sync.Mutex
	nextInputID int

	seeded  chan struct{}
	seedErr error
	mine    *Randomness
	theirs  *Randomness
}

// NewProvider creates a new BEAVY provider for the party myID. If
// rnd is nil, crypto/rand is used for the local randomness.
func NewProvider(myID int, reg *circuit.Register, layer *comm.Layer,
	otp *ot.Provider, rnd io.Reader, log *zap.Logger) *Provider {

	if myID != 0 && myID != 1 {
		panic(errors.AssertionFailedf("beavy: invalid party ID %d", myID))
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		myID:   myID,
		reg:    reg,
		layer:  layer,
		otp:    otp,
		rand:   rnd,
		log:    log,
		seeded: make(chan struct{}),
	}
}

// MyID returns this party's ID.
func (p *Provider) MyID() int {
	return p.myID
}

// PeerID returns the other party's ID.
func (p *Provider) PeerID() int {
	return 1 - p.myID
}

// Register returns the circuit register.
func (p *Provider) Register() *circuit.Register {
	return p.reg
}

// IsMyJob tests if this party adds the public terms of the gate.
func (p *Provider) IsMyJob(gateID int) bool {
	return gateID%2 == p.myID
}

// NextInputID allocates n input sharing stream IDs.
func (p *Provider) NextInputID(n int) int {
	p.m.Lock()
	defer p.m.Unlock()

	id := p.nextInputID
	p.nextInputID += n
	return id
}

// Setup exchanges the input sharing seeds with the peer. It must be
// called once before the input gates are evaluated.
func (p *Provider) Setup() error {
	defer close(p.seeded)

	p.seedErr = p.exchangeSeeds()
	if p.seedErr != nil {
		p.log.Error("seed exchange failed", zap.Error(p.seedErr))
	}
	return p.seedErr
}

func (p *Provider) exchangeSeeds() error {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(p.rand, seed); err != nil {
		return errors.Wrap(err, "beavy: seed")
	}
	if err := p.layer.SendSeed(seed); err != nil {
		return errors.Wrap(err, "beavy: send seed")
	}
	peerSeed, err := p.layer.ReceiveSeed()
	if err != nil {
		return errors.Wrap(err, "beavy: receive seed")
	}
	p.mine, err = NewRandomness(seed)
	if err != nil {
		return err
	}
	p.theirs, err = NewRandomness(peerSeed)
	if err != nil {
		return errors.Wrap(err, "beavy: peer seed")
	}
	p.log.Debug("input sharing seeds exchanged")
	return nil
}

// myRandomness returns the randomness shared with the peer for this
// party's inputs.
func (p *Provider) myRandomness() (*Randomness, error) {
	<-p.seeded
	return p.mine, p.seedErr
}

// theirRandomness returns the randomness shared with the peer for the
// peer's inputs.
func (p *Provider) theirRandomness() (*Randomness, error) {
	<-p.seeded
	return p.theirs, p.seedErr
}

func (p *Provider) randomBits(n int) (bitvec.BitVector, error) {
	return bitvec.Random(p.rand, n)
}

func randomInts[T ring.Ring](p *Provider, n int) ([]T, error) {
	return ring.Random[T](p.rand, n)
}

func (p *Provider) checkOwner(owner int) {
	if owner != AllParties && owner != 0 && owner != 1 {
		panic(errors.AssertionFailedf("beavy: invalid party ID %d", owner))
	}
}

// gate holds the common attributes of all gates.
type gate struct {
	id int
	p  *Provider
}

func (p *Provider) newGate() gate {
	return gate{
		id: p.reg.NextGateID(),
		p:  p,
	}
}

// ID returns the gate ID.
func (g *gate) ID() int {
	return g.id
}

// isMyJob tests if this party handles the public terms of the gate.
func (g *gate) isMyJob() bool {
	return g.p.IsMyJob(g.id)
}
