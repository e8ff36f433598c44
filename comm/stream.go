//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package comm

import (
	"github.com/cockroachdb/errors"
)

// Stream implements an ordered duplex byte frame channel over the
// layer. Streams carry the OT extension protocols.
type Stream struct {
	l  *Layer
	id uint32
}

// Stream returns the stream with the channel id. Both parties must
// use the same channel id for the same purpose.
func (l *Layer) Stream(id int) *Stream {
	return &Stream{
		l:  l,
		id: uint32(id),
	}
}

func (s *Stream) key() key {
	return key{
		t:  TypeStream,
		id: s.id,
	}
}

// SendData sends binary data.
func (s *Stream) SendData(val []byte) error {
	return s.l.send(s.key(), val, false)
}

// SendUint32 sends an uint32 value.
func (s *Stream) SendUint32(val int) error {
	var buf [4]byte
	bo.PutUint32(buf[:], uint32(val))
	return s.l.send(s.key(), buf[:], false)
}

// Flush flushed any pending data in the connection.
func (s *Stream) Flush() error {
	return s.l.flush()
}

// ReceiveData receives binary data.
func (s *Stream) ReceiveData() ([]byte, error) {
	return s.l.receive(s.key())
}

// ReceiveUint32 receives an uint32 value.
func (s *Stream) ReceiveUint32() (int, error) {
	data, err := s.l.receive(s.key())
	if err != nil {
		return 0, err
	}
	if len(data) != 4 {
		return 0, errors.Newf("comm: stream %d: invalid uint32 frame length %d",
			s.id, len(data))
	}
	return int(bo.Uint32(data)), nil
}
