//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package comm implements the two-party communication layer. All
// messages are multiplexed over one p2p.Conn as typed frames routed
// by (type, id, index) into mailboxes.
package comm

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/p2p"
	"go.uber.org/zap"
)

var bo = binary.BigEndian

// MessageType defines the frame types.
type MessageType byte

// Message types.
const (
	TypeStream MessageType = iota
	TypeOTCorrection
	TypeOTSender
	TypeBits
	TypeInts
	TypeSeed
	TypeSync
	numTypes
)

var messageTypeNames = map[MessageType]string{
	TypeStream:       "Stream",
	TypeOTCorrection: "OTCorrection",
	TypeOTSender:     "OTSender",
	TypeBits:         "Bits",
	TypeInts:         "Ints",
	TypeSeed:         "Seed",
	TypeSync:         "Sync",
}

func (t MessageType) String() string {
	name, ok := messageTypeNames[t]
	if ok {
		return name
	}
	return fmt.Sprintf("{MessageType %d}", t)
}

// ErrClosed is returned from receive operations when the layer is
// closed.
var ErrClosed = errors.New("comm: layer closed")

type key struct {
	t     MessageType
	id    uint32
	index uint32
}

func (k key) String() string {
	return fmt.Sprintf("%s/%d/%d", k.t, k.id, k.index)
}

type mailbox struct {
	c          *sync.Cond
	queue      [][]byte
	registered bool
}

// Layer implements the communication layer between the two parties.
type Layer struct {
	log  *zap.Logger
	conn *p2p.Conn

	wm     sync.Mutex
	closed bool

	m       sync.Mutex
	boxes   map[key]*mailbox
	err     error
	syncSeq uint32

	numSent [numTypes]uint64
	numRcvd [numTypes]uint64

	done chan struct{}
}

// NewLayer creates a new communication layer on the connection and
// starts its receive loop.
func NewLayer(conn *p2p.Conn, log *zap.Logger) *Layer {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Layer{
		log:   log,
		conn:  conn,
		boxes: make(map[key]*mailbox),
		done:  make(chan struct{}),
	}
	go l.receiver()
	return l
}

// Stats returns the connection I/O statistics.
func (l *Layer) Stats() p2p.IOStats {
	return l.conn.Stats()
}

// MessageCounts returns the number of sent and received frames per
// message type.
func (l *Layer) MessageCounts() (sent, rcvd map[MessageType]uint64) {
	l.m.Lock()
	defer l.m.Unlock()

	sent = make(map[MessageType]uint64)
	rcvd = make(map[MessageType]uint64)
	for t := MessageType(0); t < numTypes; t++ {
		sent[t] = l.numSent[t]
		rcvd[t] = l.numRcvd[t]
	}
	return
}

// Close closes the layer and its connection. All pending and future
// receive operations fail.
func (l *Layer) Close() error {
	l.wm.Lock()
	if l.closed {
		l.wm.Unlock()
		return nil
	}
	l.closed = true
	err := l.conn.Close()
	l.wm.Unlock()

	<-l.done

	l.m.Lock()
	if l.err == nil {
		l.err = ErrClosed
	}
	for _, box := range l.boxes {
		box.c.Broadcast()
	}
	l.m.Unlock()

	return err
}

func (l *Layer) receiver() {
	defer close(l.done)

	for {
		k, data, err := l.readFrame()
		if err != nil {
			l.m.Lock()
			l.err = errors.Wrap(ErrClosed, err.Error())
			for _, box := range l.boxes {
				box.c.Broadcast()
			}
			l.m.Unlock()
			l.log.Debug("receiver stopped", zap.Error(err))
			return
		}
		l.m.Lock()
		if k.t < numTypes {
			l.numRcvd[k.t]++
		}
		box := l.mailbox(k)
		box.queue = append(box.queue, data)
		box.c.Signal()
		l.m.Unlock()
	}
}

func (l *Layer) readFrame() (k key, data []byte, err error) {
	t, err := l.conn.ReceiveByte()
	if err != nil {
		return
	}
	if MessageType(t) >= numTypes {
		err = errors.Newf("comm: invalid message type %d", t)
		return
	}
	id, err := l.conn.ReceiveUint32()
	if err != nil {
		return
	}
	index, err := l.conn.ReceiveUint32()
	if err != nil {
		return
	}
	data, err = l.conn.ReceiveData()
	if err != nil {
		return
	}
	k = key{
		t:     MessageType(t),
		id:    uint32(id),
		index: uint32(index),
	}
	return
}

// mailbox returns the mailbox for the key, creating it on first
// touch. The l.m must be held.
func (l *Layer) mailbox(k key) *mailbox {
	box, ok := l.boxes[k]
	if !ok {
		box = &mailbox{
			c: sync.NewCond(&l.m),
		}
		l.boxes[k] = box
	}
	return box
}

// register marks the key registered. Registering the same key twice
// is a programming error.
func (l *Layer) register(k key) {
	l.m.Lock()
	defer l.m.Unlock()

	box := l.mailbox(k)
	if box.registered {
		panic(errors.AssertionFailedf("comm: %v registered twice", k))
	}
	box.registered = true
}

// send sends a frame. If flush is false, the frame is buffered until
// the next flushing send.
func (l *Layer) send(k key, data []byte, flush bool) error {
	l.wm.Lock()
	defer l.wm.Unlock()

	if l.closed {
		return errors.Wrapf(ErrClosed, "comm: send %v", k)
	}
	err := l.writeFrame(k, data)
	if err == nil && flush {
		err = l.conn.Flush()
	}
	if err != nil {
		return errors.Wrapf(err, "comm: send %v", k)
	}
	l.m.Lock()
	l.numSent[k.t]++
	l.m.Unlock()
	return nil
}

func (l *Layer) writeFrame(k key, data []byte) error {
	if err := l.conn.SendByte(byte(k.t)); err != nil {
		return err
	}
	if err := l.conn.SendUint32(int(k.id)); err != nil {
		return err
	}
	if err := l.conn.SendUint32(int(k.index)); err != nil {
		return err
	}
	return l.conn.SendData(data)
}

func (l *Layer) flush() error {
	l.wm.Lock()
	defer l.wm.Unlock()
	if l.closed {
		return ErrClosed
	}
	return l.conn.Flush()
}

// receive blocks until a frame for the key arrives and returns its
// data. Mailboxes of non-stream keys are removed when they are
// drained.
func (l *Layer) receive(k key) ([]byte, error) {
	l.m.Lock()
	defer l.m.Unlock()

	box := l.mailbox(k)
	for len(box.queue) == 0 {
		if l.err != nil {
			return nil, errors.Wrapf(l.err, "comm: receive %v", k)
		}
		box.c.Wait()
	}
	data := box.queue[0]
	box.queue[0] = nil
	box.queue = box.queue[1:]
	if len(box.queue) == 0 && k.t != TypeStream {
		delete(l.boxes, k)
	}
	return data, nil
}

// SendSeed sends the base randomness seed.
func (l *Layer) SendSeed(seed []byte) error {
	return l.send(key{t: TypeSeed}, seed, true)
}

// ReceiveSeed receives the peer's base randomness seed.
func (l *Layer) ReceiveSeed() ([]byte, error) {
	return l.receive(key{t: TypeSeed})
}

// Sync implements a two-party barrier. Both parties must call Sync
// the same number of times.
func (l *Layer) Sync() error {
	l.m.Lock()
	l.syncSeq++
	seq := l.syncSeq
	l.m.Unlock()

	k := key{
		t:     TypeSync,
		index: seq,
	}
	var buf [4]byte
	bo.PutUint32(buf[:], seq)
	if err := l.send(k, buf[:], true); err != nil {
		return err
	}
	data, err := l.receive(k)
	if err != nil {
		return err
	}
	if len(data) != 4 || bo.Uint32(data) != seq {
		return errors.Newf("comm: sync %d: invalid peer message %x", seq, data)
	}
	return nil
}

// SendOTCorrection sends the OT receiver corrections of the OT batch.
func (l *Layer) SendOTCorrection(otID int, data []byte) error {
	return l.send(key{t: TypeOTCorrection, id: uint32(otID)}, data, true)
}

// ReceiveOTCorrection receives the OT receiver corrections of the OT
// batch.
func (l *Layer) ReceiveOTCorrection(otID int) ([]byte, error) {
	return l.receive(key{t: TypeOTCorrection, id: uint32(otID)})
}

// SendOTSender sends the OT sender message of the OT batch.
func (l *Layer) SendOTSender(otID int, data []byte) error {
	return l.send(key{t: TypeOTSender, id: uint32(otID)}, data, true)
}

// ReceiveOTSender receives the OT sender message of the OT batch.
func (l *Layer) ReceiveOTSender(otID int) ([]byte, error) {
	return l.receive(key{t: TypeOTSender, id: uint32(otID)})
}
