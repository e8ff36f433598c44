//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	handshakeMagic = "beavy-2pc/1"
	retryDelay     = 500 * time.Millisecond
)

// Party defines a computing party endpoint.
type Party struct {
	ID   int
	Host string
	Port int
}

// Addr returns the party's network address.
func (p Party) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Session implements an established two-party session.
type Session struct {
	Conn   *Conn
	ID     uuid.UUID
	PeerID int
}

// Connect establishes a session between the two parties. Party 0
// listens for the connection and party 1 dials it, retrying until the
// context is cancelled.
func Connect(ctx context.Context, log *zap.Logger, myID int,
	parties [2]Party) (*Session, error) {

	if myID != 0 && myID != 1 {
		return nil, errors.Newf("p2p: invalid party ID %d", myID)
	}
	if myID == 0 {
		return Listen(ctx, log, parties[0].Addr())
	}
	return Dial(ctx, log, parties[0].Addr())
}

// Listen accepts one connection at addr as party 0 and runs the
// handshake.
func Listen(ctx context.Context, log *zap.Logger, addr string) (
	*Session, error) {

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "p2p: listen %s", addr)
	}
	defer listener.Close()

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stop()

	log.Info("waiting for peer", zap.String("addr", listener.Addr().String()))

	for {
		nc, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), "p2p: accept")
			}
			return nil, errors.Wrap(err, "p2p: accept")
		}
		conn := NewConn(nc)
		session, err := acceptHandshake(conn)
		if err != nil {
			log.Warn("handshake failed",
				zap.String("remote", nc.RemoteAddr().String()),
				zap.Error(err))
			conn.Close()
			continue
		}
		log.Info("peer connected",
			zap.String("remote", nc.RemoteAddr().String()),
			zap.Stringer("session", session.ID))
		return session, nil
	}
}

// Dial connects to party 0 at addr as party 1 and runs the handshake.
// Failed connection attempts are retried until the context is
// cancelled.
func Dial(ctx context.Context, log *zap.Logger, addr string) (*Session, error) {
	var d net.Dialer
	for {
		nc, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrapf(ctx.Err(), "p2p: dial %s", addr)
			}
			log.Debug("connect failed, retrying",
				zap.String("addr", addr),
				zap.Duration("delay", retryDelay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, errors.Wrapf(ctx.Err(), "p2p: dial %s", addr)
			case <-time.After(retryDelay):
			}
			continue
		}
		conn := NewConn(nc)
		session, err := dialHandshake(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		log.Info("connected to peer",
			zap.String("addr", addr),
			zap.Stringer("session", session.ID))
		return session, nil
	}
}

func dialHandshake(conn *Conn) (*Session, error) {
	if err := conn.SendString(handshakeMagic); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if err := conn.SendUint32(1); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if err := conn.Flush(); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	peerID, err := conn.ReceiveUint32()
	if err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if peerID != 0 {
		return nil, errors.Newf("p2p: handshake: unexpected peer ID %d", peerID)
	}
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	id, err := uuid.FromBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "p2p: handshake: session ID")
	}
	// Echo the session ID.
	if err := conn.SendData(id[:]); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if err := conn.Flush(); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	return &Session{
		Conn:   conn,
		ID:     id,
		PeerID: peerID,
	}, nil
}

func acceptHandshake(conn *Conn) (*Session, error) {
	magic, err := conn.ReceiveString()
	if err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if magic != handshakeMagic {
		return nil, errors.Newf("p2p: handshake: invalid protocol %q", magic)
	}
	peerID, err := conn.ReceiveUint32()
	if err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if peerID != 1 {
		return nil, errors.Newf("p2p: handshake: unexpected peer ID %d", peerID)
	}
	id := uuid.New()
	if err := conn.SendUint32(0); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if err := conn.SendData(id[:]); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if err := conn.Flush(); err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	echo, err := conn.ReceiveData()
	if err != nil {
		return nil, errors.Wrap(err, "p2p: handshake")
	}
	if string(echo) != string(id[:]) {
		return nil, errors.New("p2p: handshake: session ID mismatch")
	}
	return &Session{
		Conn:   conn,
		ID:     id,
		PeerID: peerID,
	}, nil
}
