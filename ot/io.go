//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"github.com/cockroachdb/errors"
)

// IO defines an ordered I/O channel between the OT peers.
type IO interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// Flush flushed any pending data in the connection.
	Flush() error

	// ReceiveData receives binary data. The returned slice is owned
	// by the caller.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)
}

// SendString sends a string value.
func SendString(io IO, str string) error {
	return io.SendData([]byte(str))
}

// ReceiveString receives a string value.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// receiveExact receives a data value of size bytes.
func receiveExact(io IO, size int, what string) ([]byte, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, errors.Wrap(err, what)
	}
	if len(data) != size {
		return nil, errors.Newf("%s: invalid length %d, expected %d",
			what, len(data), size)
	}
	return data, nil
}
