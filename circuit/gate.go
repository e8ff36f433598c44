//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

// Gate defines a gate of a secret-shared circuit. Gates are
// registered at construction time and evaluated later in two phases.
// Gates synchronize only through the readiness of their input wires
// and their network messages.
type Gate interface {
	// ID returns the gate ID. Both parties assign the same IDs to
	// the same gates.
	ID() int
	// NeedSetup tests if the gate has setup phase work.
	NeedSetup() bool
	// NeedOnline tests if the gate has online phase work.
	NeedOnline() bool
	// EvaluateSetup runs the input-independent setup phase.
	EvaluateSetup() error
	// EvaluateOnline runs the online phase. It is called after
	// EvaluateSetup of the same gate has returned.
	EvaluateOnline() error
}

// Op returns the gate operation if the gate reports it.
func Op(g Gate) (Operation, bool) {
	o, ok := g.(interface {
		Op() Operation
	})
	if !ok {
		return 0, false
	}
	return o.Op(), true
}
