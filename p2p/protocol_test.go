//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"fmt"
	"net"
	"testing"
)

func pattern(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	return buf
}

var tests = []interface{}{
	byte(42),
	uint32(44),
	"",
	"Hello, world!",
	pattern(1024),
	pattern(flushLimit - 3),
	uint32(0xffffffff),
	pattern(2 * 1024 * 1024),
	byte(45),
	pattern(8 * 1024 * 1024),
}

func testWriter(c *Conn, errCh chan error) {
	for _, test := range tests {
		var err error
		switch d := test.(type) {
		case byte:
			err = c.SendByte(d)
		case uint32:
			err = c.SendUint32(int(d))
		case string:
			err = c.SendString(d)
		case []byte:
			err = c.SendData(d)
		default:
			err = fmt.Errorf("writer: invalid data: %v(%T)", test, test)
		}
		if err != nil {
			errCh <- err
			return
		}
	}
	errCh <- c.Flush()
}

func TestProtocol(t *testing.T) {
	cw, c := Pipe()

	errCh := make(chan error, 1)
	go testWriter(cw, errCh)

	for _, test := range tests {
		switch d := test.(type) {
		case byte:
			v, err := c.ReceiveByte()
			if err != nil {
				t.Fatalf("ReceiveByte: %v", err)
			}
			if v != d {
				t.Errorf("ReceiveByte: got %v, expected %v", v, d)
			}

		case uint32:
			v, err := c.ReceiveUint32()
			if err != nil {
				t.Fatalf("ReceiveUint32: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint32: got %v, expected %v", v, d)
			}

		case string:
			v, err := c.ReceiveString()
			if err != nil {
				t.Fatalf("ReceiveString: %v", err)
			}
			if v != d {
				t.Errorf("ReceiveString: got %v, expected %v", v, d)
			}

		case []byte:
			v, err := c.ReceiveData()
			if err != nil {
				t.Fatalf("ReceiveData: %v", err)
			}
			if !bytes.Equal(v, d) {
				t.Errorf("ReceiveData: [%v]byte mismatch", len(d))
			}

		default:
			t.Errorf("invalid value: %v(%T)", test, test)
		}
	}
	if err := <-errCh; err != nil {
		t.Fatalf("writer: %v", err)
	}
	sent := cw.Stats()
	rcvd := c.Stats()
	if sent.Sent != rcvd.Recvd || sent.Sent == 0 {
		t.Errorf("stats: sent %v, received %v", sent.Sent, rcvd.Recvd)
	}
	if sent.Flushed == 0 {
		t.Errorf("stats: no flushes")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDataTooLong(t *testing.T) {
	raw, peer := net.Pipe()
	c := NewConn(peer)
	defer c.Close()

	go func() {
		raw.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}()
	if _, err := c.ReceiveData(); err == nil {
		t.Errorf("ReceiveData accepted %d bytes", 0xffffffff)
	}
	raw.Close()
}

func TestIOStats(t *testing.T) {
	a := IOStats{Sent: 10, Recvd: 5, Flushed: 1}
	b := IOStats{Sent: 3, Recvd: 2, Flushed: 1}

	sum := a.Add(b)
	if sum.Sent != 13 || sum.Recvd != 7 || sum.Flushed != 2 || sum.Sum() != 20 {
		t.Errorf("Add: %+v", sum)
	}
	if diff := sum.Sub(b); diff != a {
		t.Errorf("Sub: %+v, expected %+v", diff, a)
	}
}
