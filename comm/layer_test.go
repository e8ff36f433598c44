//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package comm

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ot"
	"github.com/markkurossi/beavy/p2p"
)

var (
	_ ot.IO        = &Stream{}
	_ ot.Messenger = &Layer{}
)

func newLayers() (*Layer, *Layer) {
	c0, c1 := p2p.Pipe()
	return NewLayer(c0, nil), NewLayer(c1, nil)
}

func TestBits(t *testing.T) {
	l0, l1 := newLayers()
	defer l0.Close()
	defer l1.Close()

	v, err := bitvec.Parse("1011001110")
	if err != nil {
		t.Fatal(err)
	}

	// Message arrives before the future is registered.
	if err := l0.SendBits(7, 1, v); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	f := l1.RegisterBits(7, 1, v.Size())
	got, err := f.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(v) {
		t.Errorf("got %v, expected %v", got, v)
	}
}

func TestInts(t *testing.T) {
	l0, l1 := newLayers()
	defer l0.Close()
	defer l1.Close()

	f := RegisterInts[uint16](l1, 3, 0, 3)
	done := make(chan error)
	var got []uint16
	go func() {
		var err error
		got, err = f.Get()
		done <- err
	}()
	if err := SendInts(l0, 3, 0, []uint16{1, 65535, 300}); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 || got[1] != 65535 || got[2] != 300 {
		t.Errorf("got %v", got)
	}
}

func TestDoubleRegister(t *testing.T) {
	l0, l1 := newLayers()
	defer l0.Close()
	defer l1.Close()

	l0.RegisterBits(1, 0, 8)
	defer func() {
		if recover() == nil {
			t.Errorf("double registration did not panic")
		}
	}()
	l0.RegisterBits(1, 0, 8)
}

func TestStream(t *testing.T) {
	l0, l1 := newLayers()
	defer l0.Close()
	defer l1.Close()

	s0 := l0.Stream(0)
	s1 := l1.Stream(0)

	for i := 0; i < 10; i++ {
		if err := s0.SendUint32(i); err != nil {
			t.Fatal(err)
		}
	}
	if err := ot.SendString(s0, "done"); err != nil {
		t.Fatal(err)
	}
	if err := s0.Flush(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		v, err := s1.ReceiveUint32()
		if err != nil {
			t.Fatal(err)
		}
		if v != i {
			t.Fatalf("stream order: got %v, expected %v", v, i)
		}
	}
	str, err := ot.ReceiveString(s1)
	if err != nil {
		t.Fatal(err)
	}
	if str != "done" {
		t.Errorf("got %q", str)
	}
}

func TestSync(t *testing.T) {
	l0, l1 := newLayers()
	defer l0.Close()
	defer l1.Close()

	done := make(chan error)
	go func() {
		for i := 0; i < 3; i++ {
			if err := l1.Sync(); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	for i := 0; i < 3; i++ {
		if err := l0.Sync(); err != nil {
			t.Fatal(err)
		}
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestCloseFailsWaits(t *testing.T) {
	l0, l1 := newLayers()
	defer l1.Close()

	f := l0.RegisterBits(1, 0, 8)
	done := make(chan error)
	go func() {
		_, err := f.Get()
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	l0.Close()

	err := <-done
	if err == nil {
		t.Fatalf("Get succeeded after Close")
	}
	if !errors.Is(err, ErrClosed) {
		t.Errorf("unexpected error: %v", err)
	}
}
