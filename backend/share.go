//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package backend

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/wire"
)

// Share binds the wires of a secret-shared value to the party and
// the protocol that processes them.
type Share struct {
	PartyID  int
	Protocol wire.Protocol
	Wires    []wire.Wire
}

// NewShare creates a share of the wires. All wires must be of the
// same protocol, SIMD width, and bit size.
func NewShare(partyID int, wires []wire.Wire) (*Share, error) {
	if len(wires) == 0 {
		return nil, errors.New("backend: share without wires")
	}
	first := wires[0]
	for _, w := range wires[1:] {
		if w.Protocol() != first.Protocol() {
			return nil, errors.Newf("backend: share: protocols differ: "+
				"%v != %v", w.Protocol(), first.Protocol())
		}
		if w.NumSIMD() != first.NumSIMD() {
			return nil, errors.Newf("backend: share: SIMD widths differ: "+
				"%d != %d", w.NumSIMD(), first.NumSIMD())
		}
		if w.BitSize() != first.BitSize() {
			return nil, errors.Newf("backend: share: bit sizes differ: "+
				"%d != %d", w.BitSize(), first.BitSize())
		}
	}
	return &Share{
		PartyID:  partyID,
		Protocol: first.Protocol(),
		Wires:    wires,
	}, nil
}

// NumSIMD returns the share's SIMD width.
func (s *Share) NumSIMD() int {
	return s.Wires[0].NumSIMD()
}

func (s *Share) String() string {
	return fmt.Sprintf("%v[%d×%d]@P%d", s.Protocol, len(s.Wires),
		s.NumSIMD(), s.PartyID)
}
