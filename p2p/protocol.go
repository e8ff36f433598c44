//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the buffered framed connection between the
// two computing parties.
package p2p

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

var bo = binary.BigEndian

const (
	numBuffers  = 3
	flushLimit  = 64 * 1024
	readBufSize = 1024 * 1024

	// MaxDataSize is the largest length-prefixed data value a Conn
	// accepts.
	MaxDataSize = 1 << 30
)

// IOStats holds a snapshot of connection I/O statistics.
type IOStats struct {
	Sent    uint64
	Recvd   uint64
	Flushed uint64
}

// Add returns the sum of the stats.
func (s IOStats) Add(o IOStats) IOStats {
	return IOStats{
		Sent:    s.Sent + o.Sent,
		Recvd:   s.Recvd + o.Recvd,
		Flushed: s.Flushed + o.Flushed,
	}
}

// Sub returns the difference of the stats.
func (s IOStats) Sub(o IOStats) IOStats {
	return IOStats{
		Sent:    s.Sent - o.Sent,
		Recvd:   s.Recvd - o.Recvd,
		Flushed: s.Flushed - o.Flushed,
	}
}

// Sum returns sum of sent and received bytes.
func (s IOStats) Sum() uint64 {
	return s.Sent + s.Recvd
}

type counters struct {
	sent    atomic.Uint64
	recvd   atomic.Uint64
	flushed atomic.Uint64
}

// countingReader counts the bytes read from the connection.
type countingReader struct {
	r     io.Reader
	recvd *atomic.Uint64
}

func (r countingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.recvd.Add(uint64(n))
	return n, err
}

// writer writes flushed buffers to the connection in order. The
// buffers cycle between the Conn, the queue, and the spare channel.
type writer struct {
	dst   io.Writer
	queue chan []byte
	spare chan []byte
	done  chan struct{}

	m   sync.Mutex
	err error
}

func (w *writer) run() {
	defer close(w.done)
	for buf := range w.queue {
		if w.failed() == nil {
			if _, err := w.dst.Write(buf); err != nil {
				w.m.Lock()
				w.err = errors.Wrap(err, "p2p: write")
				w.m.Unlock()
			}
		}
		w.spare <- buf[:0]
	}
}

func (w *writer) failed() error {
	w.m.Lock()
	defer w.m.Unlock()
	return w.err
}

// Conn implements a protocol connection. Values are appended to an
// output buffer which Flush hands to a writer goroutine. One
// goroutine may send while another receives; a Conn is not safe for
// concurrent senders or concurrent receivers.
type Conn struct {
	conn   io.ReadWriter
	r      *bufio.Reader
	out    []byte
	w      *writer
	stats  counters
	closed bool
	hdr    [4]byte
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn: conn,
		out:  make([]byte, 0, flushLimit),
		w: &writer{
			dst:   conn,
			queue: make(chan []byte, numBuffers),
			spare: make(chan []byte, numBuffers),
			done:  make(chan struct{}),
		},
	}
	c.r = bufio.NewReaderSize(countingReader{
		r:     conn,
		recvd: &c.stats.recvd,
	}, readBufSize)
	for i := 1; i < numBuffers; i++ {
		c.w.spare <- make([]byte, 0, flushLimit)
	}
	go c.w.run()
	return c
}

// Stats returns a snapshot of the connection I/O statistics.
func (c *Conn) Stats() IOStats {
	return IOStats{
		Sent:    c.stats.sent.Load(),
		Recvd:   c.stats.recvd.Load(),
		Flushed: c.stats.flushed.Load(),
	}
}

// Flush hands the buffered output to the writer. It returns the
// first write error of the connection.
func (c *Conn) Flush() error {
	if len(c.out) > 0 {
		c.stats.sent.Add(uint64(len(c.out)))
		c.stats.flushed.Add(1)
		c.w.queue <- c.out
		c.out = <-c.w.spare
	}
	return c.w.failed()
}

func (c *Conn) sent() error {
	if len(c.out) >= flushLimit {
		return c.Flush()
	}
	return nil
}

// Close flushes any pending data and closes the connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	flushErr := c.Flush()
	close(c.w.queue)
	<-c.w.done

	var err error
	if closer, ok := c.conn.(io.Closer); ok {
		err = closer.Close()
	}
	if flushErr != nil {
		return flushErr
	}
	return err
}

// SendByte sends a byte value.
func (c *Conn) SendByte(val byte) error {
	c.out = append(c.out, val)
	return c.sent()
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	c.out = bo.AppendUint32(c.out, uint32(val))
	return c.sent()
}

// SendData sends length-prefixed binary data.
func (c *Conn) SendData(val []byte) error {
	if len(val) > MaxDataSize {
		return errors.Newf("p2p: data too long: %d", len(val))
	}
	c.out = bo.AppendUint32(c.out, uint32(len(val)))
	c.out = append(c.out, val...)
	return c.sent()
}

// SendString sends a string value.
func (c *Conn) SendString(val string) error {
	return c.SendData([]byte(val))
}

// ReceiveByte receives a byte value.
func (c *Conn) ReceiveByte() (byte, error) {
	return c.r.ReadByte()
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	if _, err := io.ReadFull(c.r, c.hdr[:]); err != nil {
		return 0, err
	}
	return int(bo.Uint32(c.hdr[:])), nil
}

// ReceiveData receives length-prefixed binary data. The returned
// slice is owned by the caller.
func (c *Conn) ReceiveData() ([]byte, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if n > MaxDataSize {
		return nil, errors.Newf("p2p: data too long: %d", n)
	}
	result := make([]byte, n)
	if _, err := io.ReadFull(c.r, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveString receives a string value.
func (c *Conn) ReceiveString() (string, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
