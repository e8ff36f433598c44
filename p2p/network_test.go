//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

type result struct {
	session *Session
	err     error
}

func TestHandshake(t *testing.T) {
	c0, c1 := Pipe()
	ch := make(chan result)

	go func() {
		s, err := acceptHandshake(c0)
		ch <- result{s, err}
	}()
	s1, err := dialHandshake(c1)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	r := <-ch
	if r.err != nil {
		t.Fatalf("accept: %v", r.err)
	}
	if r.session.ID != s1.ID {
		t.Errorf("session ID mismatch: %v != %v", r.session.ID, s1.ID)
	}
	if r.session.PeerID != 1 || s1.PeerID != 0 {
		t.Errorf("peer IDs: %v, %v", r.session.PeerID, s1.PeerID)
	}
}

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestConnect(t *testing.T) {
	parties := [2]Party{
		{ID: 0, Host: "127.0.0.1", Port: freePort(t)},
		{ID: 1, Host: "127.0.0.1", Port: freePort(t)},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch := make(chan result)
	go func() {
		s, err := Connect(ctx, zap.NewNop(), 1, parties)
		ch <- result{s, err}
	}()
	s0, err := Connect(ctx, zap.NewNop(), 0, parties)
	if err != nil {
		t.Fatalf("party 0: %v", err)
	}
	r := <-ch
	if r.err != nil {
		t.Fatalf("party 1: %v", r.err)
	}
	if s0.ID != r.session.ID {
		t.Errorf("session ID mismatch")
	}
	s0.Conn.Close()
	r.session.Conn.Close()
}

func TestDialCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(),
		100*time.Millisecond)
	defer cancel()

	_, err := Dial(ctx, zap.NewNop(),
		net.JoinHostPort("127.0.0.1", "1"))
	if err == nil {
		t.Fatalf("Dial succeeded")
	}
}
