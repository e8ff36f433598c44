//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

var (
	bo    = binary.BigEndian
	_  IO = &Pipe{}
)

// maxPipeData defines the maximum data frame size of the Pipe.
const maxPipeData = 16 * 1024 * 1024

// Pipe implements the IO interface with in-memory io.Pipe.
type Pipe struct {
	hdr [4]byte
	r   *io.PipeReader
	w   *io.PipeWriter
}

// NewPipe creates a new in-memory pipe.
func NewPipe() (*Pipe, *Pipe) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	return &Pipe{
			r: ar,
			w: bw,
		}, &Pipe{
			r: br,
			w: aw,
		}
}

// SendData sends binary data.
func (p *Pipe) SendData(val []byte) error {
	buf := make([]byte, 4+len(val))
	bo.PutUint32(buf, uint32(len(val)))
	copy(buf[4:], val)
	_, err := p.w.Write(buf)
	return err
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	var buf [4]byte
	bo.PutUint32(buf[:], uint32(val))
	_, err := p.w.Write(buf[:])
	return err
}

// Flush flushed any pending data in the connection.
func (p *Pipe) Flush() error {
	return nil
}

// Drain consumes all input from the pipe.
func (p *Pipe) Drain() error {
	_, err := io.Copy(io.Discard, p.r)
	return err
}

// Close closes the pipe.
func (p *Pipe) Close() error {
	return p.w.Close()
}

// ReceiveData receives binary data.
func (p *Pipe) ReceiveData() ([]byte, error) {
	if _, err := io.ReadFull(p.r, p.hdr[:]); err != nil {
		return nil, err
	}
	l := bo.Uint32(p.hdr[:])
	if l > maxPipeData {
		return nil, errors.Newf("pipe: data frame too long: %d", l)
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	if _, err := io.ReadFull(p.r, p.hdr[:]); err != nil {
		return 0, err
	}
	return int(bo.Uint32(p.hdr[:])), nil
}
