//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package wire defines the protocol tags and the readiness state
// shared by all secret-shared wires.
package wire

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Protocol identifies the MPC protocol a wire belongs to.
type Protocol int

// Protocols.
const (
	ArithmeticGMW Protocol = iota
	BooleanGMW
	ArithmeticBEAVY
	BooleanBEAVY
	BMR
)

var protocolNames = map[Protocol]string{
	ArithmeticGMW:   "ArithmeticGMW",
	BooleanGMW:      "BooleanGMW",
	ArithmeticBEAVY: "ArithmeticBEAVY",
	BooleanBEAVY:    "BooleanBEAVY",
	BMR:             "BMR",
}

func (p Protocol) String() string {
	name, ok := protocolNames[p]
	if ok {
		return name
	}
	return fmt.Sprintf("{Protocol %d}", p)
}

// Boolean tests if the protocol shares boolean values.
func (p Protocol) Boolean() bool {
	return p == BooleanGMW || p == BooleanBEAVY || p == BMR
}

// Wire defines a secret-shared wire carrying NumSIMD values.
type Wire interface {
	ID() int
	Protocol() Protocol
	NumSIMD() int
	// BitSize returns the ring bit size of arithmetic wires and 1
	// for boolean wires.
	BitSize() int
	WaitSetup()
	WaitOnline()
}

// State implements the wire identity and the setup and online
// readiness flags. A wire is written by its owning gate only before
// the corresponding flag is set and read by any number of gates
// after it.
type State struct {
	id          int
	numSIMD     int
	setupReady  atomic.Bool
	onlineReady atomic.Bool
	setupC      chan struct{}
	onlineC     chan struct{}
}

// Init initializes the state for the wire id with numSIMD values.
func (s *State) Init(id, numSIMD int) {
	if numSIMD <= 0 {
		panic(errors.AssertionFailedf("wire %d: invalid SIMD width %d",
			id, numSIMD))
	}
	s.id = id
	s.numSIMD = numSIMD
	s.setupC = make(chan struct{})
	s.onlineC = make(chan struct{})
}

// ID returns the wire ID.
func (s *State) ID() int {
	return s.id
}

// NumSIMD returns the number of SIMD values on the wire.
func (s *State) NumSIMD() int {
	return s.numSIMD
}

// SetSetupReady marks the secret share ready. Calling it twice is a
// programming error and panics.
func (s *State) SetSetupReady() {
	if !s.setupReady.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("wire %d: setup ready already set", s.id))
	}
	close(s.setupC)
}

// SetOnlineReady marks the public share ready. Calling it twice is a
// programming error and panics.
func (s *State) SetOnlineReady() {
	if !s.onlineReady.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("wire %d: online ready already set",
			s.id))
	}
	close(s.onlineC)
}

// IsSetupReady tests if the setup flag is set.
func (s *State) IsSetupReady() bool {
	return s.setupReady.Load()
}

// IsOnlineReady tests if the online flag is set.
func (s *State) IsOnlineReady() bool {
	return s.onlineReady.Load()
}

// WaitSetup blocks until the setup flag is set.
func (s *State) WaitSetup() {
	<-s.setupC
}

// WaitOnline blocks until the online flag is set.
func (s *State) WaitOnline() {
	<-s.onlineC
}

// CheckSIMD verifies that all wires have the same non-zero SIMD
// width and returns it. The function panics on mismatch.
func CheckSIMD[W Wire](wires ...W) int {
	if len(wires) == 0 {
		panic(errors.AssertionFailedf("empty wire vector"))
	}
	n := wires[0].NumSIMD()
	for _, w := range wires[1:] {
		if w.NumSIMD() != n {
			panic(errors.AssertionFailedf(
				"number of SIMD values differ: wire %d: %d != %d",
				w.ID(), w.NumSIMD(), n))
		}
	}
	return n
}
