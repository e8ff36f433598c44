//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Messenger defines the transport for the per-batch OT messages. The
// receive functions block until the message for the OT id arrives.
type Messenger interface {
	SendOTCorrection(otID int, data []byte) error
	ReceiveOTCorrection(otID int) ([]byte, error)
	SendOTSender(otID int, data []byte) error
	ReceiveOTSender(otID int) ([]byte, error)
}

// Provider implements the OT engine between two parties. It runs two
// IKNP extensions: one where this party is the OT sender and one
// where it is the OT receiver. OT batches are registered before Run
// and they consume their ID ranges after the setup completes.
type Provider struct {
	log  *zap.Logger
	rand io.Reader
	msg  Messenger
	crh  *CRH

	m       sync.Mutex
	started bool

	snd senderSide
	rcv receiverSide
}

type senderSide struct {
	io     IO
	numOTs int
	done   chan struct{}
	err    error
	setup  *SenderSetup
}

type receiverSide struct {
	io     IO
	numOTs int
	done   chan struct{}
	err    error
	setup  *ReceiverSetup
}

// NewProvider creates a new OT provider. The sendIO carries the
// extension where this party is the OT sender and the recvIO the
// extension where it is the OT receiver.
func NewProvider(sendIO, recvIO IO, msg Messenger, rand io.Reader,
	log *zap.Logger) *Provider {

	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		log:  log,
		rand: rand,
		msg:  msg,
		crh:  NewCRH(),
		snd: senderSide{
			io:   sendIO,
			done: make(chan struct{}),
		},
		rcv: receiverSide{
			io:   recvIO,
			done: make(chan struct{}),
		},
	}
}

func (p *Provider) register(counter *int, n int) int {
	p.m.Lock()
	defer p.m.Unlock()

	if p.started {
		panic(errors.AssertionFailedf("ot: registration after setup started"))
	}
	if n <= 0 {
		panic(errors.AssertionFailedf("ot: invalid number of OTs: %d", n))
	}
	id := *counter
	*counter += n
	return id
}

// NumSend returns the number of OTs registered where this party is
// the sender.
func (p *Provider) NumSend() int {
	p.m.Lock()
	defer p.m.Unlock()
	return p.snd.numOTs
}

// NumReceive returns the number of OTs registered where this party
// is the receiver.
func (p *Provider) NumReceive() int {
	p.m.Lock()
	defer p.m.Unlock()
	return p.rcv.numOTs
}

// Run runs the OT extension setup for all registered OTs. Run can be
// called only once.
func (p *Provider) Run() error {
	p.m.Lock()
	if p.started {
		p.m.Unlock()
		panic(errors.AssertionFailedf("ot: Run called twice"))
	}
	p.started = true
	p.m.Unlock()

	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		defer close(p.snd.done)
		p.snd.err = p.runSender()
		return p.snd.err
	})
	g.Go(func() error {
		defer close(p.rcv.done)
		p.rcv.err = p.runReceiver()
		return p.rcv.err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	p.log.Debug("OT setup done",
		zap.Int("send", p.snd.numOTs),
		zap.Int("receive", p.rcv.numOTs),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (p *Provider) runSender() error {
	n := p.snd.numOTs
	if err := p.snd.io.SendUint32(n); err != nil {
		return errors.Wrap(err, "ot: send count")
	}
	if err := p.snd.io.Flush(); err != nil {
		return err
	}
	peer, err := p.snd.io.ReceiveUint32()
	if err != nil {
		return errors.Wrap(err, "ot: receive count")
	}
	if peer != n {
		return errors.Newf("ot: peer expects %d OTs, we send %d", peer, n)
	}
	if n == 0 {
		return nil
	}
	p.snd.setup, err = ExtendSend(NewCO(p.rand), p.snd.io, p.rand, n)
	return err
}

func (p *Provider) runReceiver() error {
	n := p.rcv.numOTs
	peer, err := p.rcv.io.ReceiveUint32()
	if err != nil {
		return errors.Wrap(err, "ot: receive count")
	}
	if err := p.rcv.io.SendUint32(n); err != nil {
		return errors.Wrap(err, "ot: send count")
	}
	if err := p.rcv.io.Flush(); err != nil {
		return err
	}
	if peer != n {
		return errors.Newf("ot: peer sends %d OTs, we expect %d", peer, n)
	}
	if n == 0 {
		return nil
	}
	p.rcv.setup, err = ExtendReceive(NewCO(p.rand), p.rcv.io, p.rand, n)
	return err
}

// WaitSetup blocks until both extension directions have completed.
func (p *Provider) WaitSetup() error {
	<-p.snd.done
	<-p.rcv.done
	if p.snd.err != nil {
		return p.snd.err
	}
	return p.rcv.err
}

// senderPads returns the pads y0 and y1 of the OTs [id, id+n).
func (p *Provider) senderPads(id, n, bitLen int) (
	y0, y1 []bitvec.BitVector, err error) {

	<-p.snd.done
	if p.snd.err != nil {
		return nil, nil, errors.Wrap(p.snd.err, "ot: sender setup failed")
	}
	y0, y1 = p.snd.setup.Pads(p.crh, id, n, bitLen)
	return y0, y1, nil
}

// receiverPads returns the pads y_r and the random choices r of the
// OTs [id, id+n).
func (p *Provider) receiverPads(id, n, bitLen int) (
	y []bitvec.BitVector, r bitvec.BitVector, err error) {

	<-p.rcv.done
	if p.rcv.err != nil {
		return nil, r, errors.Wrap(p.rcv.err, "ot: receiver setup failed")
	}
	y, r = p.rcv.setup.Pads(p.crh, id, n, bitLen)
	return y, r, nil
}

// batch holds the common attributes of an OT batch.
type batch struct {
	p      *Provider
	id     int
	n      int
	bitLen int
}

// ID returns the first OT id of the batch.
func (b *batch) ID() int {
	return b.id
}

// NumOTs returns the number of OTs in the batch.
func (b *batch) NumOTs() int {
	return b.n
}

// BitLen returns the bit length of the OT messages.
func (b *batch) BitLen() int {
	return b.bitLen
}

// sendCorrections sends the receiver's corrections choices ⊕ r and
// returns the receiver pads.
func (b *batch) sendCorrections(choices bitvec.BitVector) (
	[]bitvec.BitVector, error) {

	if choices.Size() != b.n {
		panic(errors.AssertionFailedf("ot: %d choices for %d OTs",
			choices.Size(), b.n))
	}
	y, r, err := b.p.receiverPads(b.id, b.n, b.bitLen)
	if err != nil {
		return nil, err
	}
	r.Xor(choices)
	if err := b.p.msg.SendOTCorrection(b.id, r.Bytes()); err != nil {
		return nil, errors.Wrapf(err, "ot %d: send corrections", b.id)
	}
	return y, nil
}

// receiveCorrections receives the receiver's corrections and returns
// the correction-permuted sender pads p0 and p1.
func (b *batch) receiveCorrections() (p0, p1 []bitvec.BitVector, err error) {
	y0, y1, err := b.p.senderPads(b.id, b.n, b.bitLen)
	if err != nil {
		return nil, nil, err
	}
	data, err := b.p.msg.ReceiveOTCorrection(b.id)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "ot %d: receive corrections", b.id)
	}
	corr, err := bitvec.FromBytes(data, b.n)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "ot %d: corrections", b.id)
	}
	for i := 0; i < b.n; i++ {
		if corr.Get(i) {
			y0[i], y1[i] = y1[i], y0[i]
		}
	}
	return y0, y1, nil
}

func (b *batch) receiveSenderMessage(size int) ([]byte, error) {
	data, err := b.p.msg.ReceiveOTSender(b.id)
	if err != nil {
		return nil, errors.Wrapf(err, "ot %d: receive sender message", b.id)
	}
	if len(data) != size {
		return nil, errors.Newf("ot %d: invalid sender message length %d, "+
			"expected %d", b.id, len(data), size)
	}
	return data, nil
}

func onceFlag(flag *bool, what string) {
	if *flag {
		panic(errors.AssertionFailedf("ot: %s called twice", what))
	}
	*flag = true
}
