//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
)

// Pipe creates a pair of connected in-memory connections. Anything
// sent to the first endpoint can be received from the second and vice
// versa. Closing one endpoint makes the peer's reads fail with
// io.EOF.
func Pipe() (*Conn, *Conn) {
	c0, c1 := net.Pipe()
	return NewConn(c0), NewConn(c1)
}
