//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"fmt"
	"sync"
	"testing"

	"github.com/markkurossi/beavy/bitvec"
	"github.com/markkurossi/beavy/ring"
)

type mailboxes struct {
	m     sync.Mutex
	boxes map[int]chan []byte
}

func (mb *mailboxes) get(id int) chan []byte {
	mb.m.Lock()
	defer mb.m.Unlock()
	if mb.boxes == nil {
		mb.boxes = make(map[int]chan []byte)
	}
	c, ok := mb.boxes[id]
	if !ok {
		c = make(chan []byte, 1)
		mb.boxes[id] = c
	}
	return c
}

// testMessenger routes the OT messages between two providers:
// corrections go to the peer's out.corr and sender messages to the
// peer's out.sender.
type testMessenger struct {
	inCorr, outCorr     *mailboxes
	inSender, outSender *mailboxes
}

func (m *testMessenger) SendOTCorrection(id int, data []byte) error {
	m.outCorr.get(id) <- append([]byte(nil), data...)
	return nil
}

func (m *testMessenger) ReceiveOTCorrection(id int) ([]byte, error) {
	return <-m.inCorr.get(id), nil
}

func (m *testMessenger) SendOTSender(id int, data []byte) error {
	m.outSender.get(id) <- append([]byte(nil), data...)
	return nil
}

func (m *testMessenger) ReceiveOTSender(id int) ([]byte, error) {
	return <-m.inSender.get(id), nil
}

func newProviders() (p0, p1 *Provider) {
	a0, a1 := NewPipe()
	b0, b1 := NewPipe()

	corr0, corr1 := new(mailboxes), new(mailboxes)
	sender0, sender1 := new(mailboxes), new(mailboxes)

	p0 = NewProvider(a0, b0, &testMessenger{
		inCorr:    corr0,
		outCorr:   corr1,
		inSender:  sender0,
		outSender: sender1,
	}, rand.Reader, nil)
	p1 = NewProvider(b1, a1, &testMessenger{
		inCorr:    corr1,
		outCorr:   corr0,
		inSender:  sender1,
		outSender: sender0,
	}, rand.Reader, nil)
	return
}

func runProviders(t *testing.T, p0, p1 *Provider) {
	errCh := make(chan error)
	go func() {
		errCh <- p0.Run()
	}()
	go func() {
		errCh <- p1.Run()
	}()
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
}

func TestProviderEmpty(t *testing.T) {
	p0, p1 := newProviders()
	runProviders(t, p0, p1)
	if err := p0.WaitSetup(); err != nil {
		t.Fatal(err)
	}
}

func TestProviderCountMismatch(t *testing.T) {
	p0, p1 := newProviders()
	p0.RegisterSendXCOT(10, 1)
	p1.RegisterReceiveXCOT(11, 1)

	errCh := make(chan error)
	go func() {
		errCh <- p0.Run()
	}()
	go func() {
		errCh <- p1.Run()
	}()
	var failed int
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			failed++
		}
	}
	if failed != 2 {
		t.Fatalf("count mismatch: %d parties failed, expected 2", failed)
	}
}

func TestXCOT(t *testing.T) {
	const n = 300
	const bitLen = 3

	p0, p1 := newProviders()
	s := p0.RegisterSendXCOT(n, bitLen)
	r := p1.RegisterReceiveXCOT(n, bitLen)

	// Reverse direction to exercise both extensions.
	s2 := p1.RegisterSendXCOT(5, 1)
	r2 := p0.RegisterReceiveXCOT(5, 1)

	delta, err := bitvec.Random(rand.Reader, n*bitLen)
	if err != nil {
		t.Fatal(err)
	}
	choices, err := bitvec.Random(rand.Reader, n)
	if err != nil {
		t.Fatal(err)
	}
	s.SetCorrelations(delta)
	r.SetChoices(choices)
	s2.SetCorrelations(bitvec.NewFilled(5, true))
	r2.SetChoices(bitvec.NewFilled(5, true))

	runProviders(t, p0, p1)

	errCh := make(chan error)
	go func() {
		if err := s.SendMessages(); err != nil {
			errCh <- err
			return
		}
		errCh <- s2.SendMessages()
	}()
	go func() {
		if err := r.SendCorrections(); err != nil {
			errCh <- err
			return
		}
		if err := r.ComputeOutputs(); err != nil {
			errCh <- err
			return
		}
		if err := r2.SendCorrections(); err != nil {
			errCh <- err
			return
		}
		errCh <- r2.ComputeOutputs()
	}()
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}

	so := s.Outputs()
	ro := r.Outputs()
	for i := 0; i < n; i++ {
		expected := so.Subset(i*bitLen, (i+1)*bitLen)
		if choices.Get(i) {
			expected.Xor(delta.Subset(i*bitLen, (i+1)*bitLen))
		}
		got := ro.Subset(i*bitLen, (i+1)*bitLen)
		if !got.Equal(expected) {
			t.Fatalf("OT %d: got %v, expected %v", i, got, expected)
		}
	}
	x := bitvec.XorOf(s2.Outputs(), r2.Outputs())
	if x.OnesCount() != 5 {
		t.Errorf("reverse XCOT: got %v", x)
	}
}

func testACOT[T ring.Ring](t *testing.T, n, vectorSize int) {
	p0, p1 := newProviders()
	s := RegisterSendACOT[T](p0, n, vectorSize)
	r := RegisterReceiveACOT[T](p1, n, vectorSize)

	corr, err := ring.Random[T](rand.Reader, n*vectorSize)
	if err != nil {
		t.Fatal(err)
	}
	choices, err := bitvec.Random(rand.Reader, n)
	if err != nil {
		t.Fatal(err)
	}
	s.SetCorrelations(corr)
	r.SetChoices(choices)

	runProviders(t, p0, p1)

	errCh := make(chan error)
	go func() {
		errCh <- s.SendMessages()
	}()
	go func() {
		if err := r.SendCorrections(); err != nil {
			errCh <- err
			return
		}
		errCh <- r.ComputeOutputs()
	}()
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
	so := s.Outputs()
	ro := r.Outputs()
	for i := 0; i < n; i++ {
		for j := 0; j < vectorSize; j++ {
			k := i*vectorSize + j
			expected := so[k]
			if choices.Get(i) {
				expected += corr[k]
			}
			if ro[k] != expected {
				t.Fatalf("%T: OT %d[%d]: got %v, expected %v",
					expected, i, j, ro[k], expected)
			}
		}
	}
}

func TestACOT(t *testing.T) {
	testACOT[uint8](t, 100, 1)
	testACOT[uint16](t, 33, 2)
	testACOT[uint32](t, 64, 1)
	testACOT[uint64](t, 17, 3)
}

func TestGOT(t *testing.T) {
	const n = 130
	const bitLen = 200

	p0, p1 := newProviders()
	s := p1.RegisterSendGOT(n, bitLen)
	r := p0.RegisterReceiveGOT(n, bitLen)

	m0, err := bitvec.Random(rand.Reader, n*bitLen)
	if err != nil {
		t.Fatal(err)
	}
	m1, err := bitvec.Random(rand.Reader, n*bitLen)
	if err != nil {
		t.Fatal(err)
	}
	choices, err := bitvec.Random(rand.Reader, n)
	if err != nil {
		t.Fatal(err)
	}
	s.SetInputs(m0, m1)
	r.SetChoices(choices)

	runProviders(t, p0, p1)

	errCh := make(chan error)
	go func() {
		errCh <- s.SendMessages()
	}()
	go func() {
		if err := r.SendCorrections(); err != nil {
			errCh <- err
			return
		}
		errCh <- r.ComputeOutputs()
	}()
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
	out := r.Outputs()
	for i := 0; i < n; i++ {
		m := m0
		if choices.Get(i) {
			m = m1
		}
		expected := m.Subset(i*bitLen, (i+1)*bitLen)
		got := out.Subset(i*bitLen, (i+1)*bitLen)
		if !got.Equal(expected) {
			t.Fatalf("OT %d: choice %v: message mismatch", i, choices.Get(i))
		}
	}
}

func TestROT(t *testing.T) {
	const n = 50
	const bitLen = 128

	p0, p1 := newProviders()
	s := p0.RegisterSendROT(n, bitLen)
	r := p1.RegisterReceiveROT(n, bitLen)

	runProviders(t, p0, p1)

	if err := s.ComputeOutputs(); err != nil {
		t.Fatal(err)
	}
	if err := r.ComputeOutputs(); err != nil {
		t.Fatal(err)
	}
	m0, m1 := s.Outputs()
	out := r.Outputs()
	c := r.Choices()
	for i := 0; i < n; i++ {
		m := m0
		if c.Get(i) {
			m = m1
		}
		if !out.Subset(i*bitLen, (i+1)*bitLen).Equal(
			m.Subset(i*bitLen, (i+1)*bitLen)) {
			t.Fatalf("OT %d: %s", i, fmt.Sprintf("choice %v mismatch", c.Get(i)))
		}
	}
}

func TestRegisterAfterRun(t *testing.T) {
	p0, p1 := newProviders()
	runProviders(t, p0, p1)

	defer func() {
		if recover() == nil {
			t.Errorf("registration after Run did not panic")
		}
	}()
	p0.RegisterSendXCOT(1, 1)
}
