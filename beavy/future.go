//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beavy

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Future implements a single-assignment value. The input gates read
// their plain inputs and the output gates publish their results
// through futures.
type Future[V any] struct {
	set  atomic.Bool
	c    chan struct{}
	val  V
	name string
}

// NewFuture creates a new future. The name identifies the future in
// error messages.
func NewFuture[V any](name string) *Future[V] {
	return &Future[V]{
		c:    make(chan struct{}),
		name: name,
	}
}

// Set sets the future value. Setting a future twice is a programming
// error and panics.
func (f *Future[V]) Set(v V) {
	if !f.set.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("%s: value already set", f.name))
	}
	f.val = v
	close(f.c)
}

// Get blocks until the value is set and returns it.
func (f *Future[V]) Get() V {
	<-f.c
	return f.val
}

// Ready returns a channel that is closed when the value is set.
func (f *Future[V]) Ready() <-chan struct{} {
	return f.c
}
