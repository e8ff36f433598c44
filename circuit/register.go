//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/wire"
)

// Register implements the arena of gates and wires of a circuit. Gate
// and wire IDs are allocated in increasing order. Gates and wires
// refer to each other by pointers into the arena and the arena owns
// them for the lifetime of the circuit.
type Register struct {
	m          sync.Mutex
	nextGateID int
	nextWireID int
	gates      []Gate
	wires      []wire.Wire
	numSetup   int
	numOnline  int
	stats      Stats
}

// NewRegister creates a new empty register.
func NewRegister() *Register {
	return new(Register)
}

// NextGateID allocates a new gate ID. Gates driven by other gates
// allocate IDs but they are not added to the register.
func (r *Register) NextGateID() int {
	r.m.Lock()
	defer r.m.Unlock()

	id := r.nextGateID
	r.nextGateID++
	return id
}

// NextWireID allocates a new wire ID.
func (r *Register) NextWireID() int {
	r.m.Lock()
	defer r.m.Unlock()

	id := r.nextWireID
	r.nextWireID++
	return id
}

// AddWire adds the wire to the register. The wire ID must be
// allocated with NextWireID and it can be added only once.
func (r *Register) AddWire(w wire.Wire) {
	r.m.Lock()
	defer r.m.Unlock()

	id := w.ID()
	if id < 0 || id >= r.nextWireID {
		panic(errors.AssertionFailedf("wire ID %d not allocated", id))
	}
	for len(r.wires) <= id {
		r.wires = append(r.wires, nil)
	}
	if r.wires[id] != nil {
		panic(errors.AssertionFailedf("wire %d added twice", id))
	}
	r.wires[id] = w
}

// AddGate adds the gate to the register. Gates must be added in
// increasing ID order.
func (r *Register) AddGate(g Gate) {
	r.m.Lock()
	defer r.m.Unlock()

	if g.ID() >= r.nextGateID {
		panic(errors.AssertionFailedf("gate ID %d not allocated", g.ID()))
	}
	if len(r.gates) > 0 && r.gates[len(r.gates)-1].ID() >= g.ID() {
		panic(errors.AssertionFailedf("gate %d added after gate %d",
			g.ID(), r.gates[len(r.gates)-1].ID()))
	}
	r.gates = append(r.gates, g)
	if g.NeedSetup() {
		r.numSetup++
	}
	if g.NeedOnline() {
		r.numOnline++
	}
	if op, ok := Op(g); ok {
		r.stats[op]++
	}
}

// Gates returns the registered gates in ID order.
func (r *Register) Gates() []Gate {
	r.m.Lock()
	defer r.m.Unlock()
	return append([]Gate(nil), r.gates...)
}

// Wire returns the wire by its ID. It returns nil if the wire is not
// added.
func (r *Register) Wire(id int) wire.Wire {
	r.m.Lock()
	defer r.m.Unlock()
	if id < 0 || id >= len(r.wires) {
		return nil
	}
	return r.wires[id]
}

// NumGates returns the number of registered gates.
func (r *Register) NumGates() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.gates)
}

// NumWires returns the number of allocated wires.
func (r *Register) NumWires() int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.nextWireID
}

// NumSetupGates returns the number of gates that need the setup
// phase.
func (r *Register) NumSetupGates() int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.numSetup
}

// NumOnlineGates returns the number of gates that need the online
// phase.
func (r *Register) NumOnlineGates() int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.numOnline
}

// Stats returns the gate operation statistics.
func (r *Register) Stats() Stats {
	r.m.Lock()
	defer r.m.Unlock()
	return r.stats
}
