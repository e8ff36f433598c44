//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit implements the gate arena and the two-phase
// executor of secret-shared circuits.
package circuit

import (
	"fmt"
)

// Operation specifies gate function.
type Operation byte

// Gate functions.
const (
	XOR Operation = iota
	AND
	INV
	DOT
	MSG
	NEG
	ADD
	MUL
	SQR
	COUNT
	HAM
	AHAM
	EQEXP
	Bit2A
	B2A
	BXAMUL
	MULNI
	numOperations
)

var operationNames = map[Operation]string{
	XOR:    "XOR",
	AND:    "AND",
	INV:    "INV",
	DOT:    "DOT",
	MSG:    "MSG",
	NEG:    "NEG",
	ADD:    "ADD",
	MUL:    "MUL",
	SQR:    "SQR",
	COUNT:  "COUNT",
	HAM:    "HAM",
	AHAM:   "AHAM",
	EQEXP:  "EQEXP",
	Bit2A:  "Bit2A",
	B2A:    "B2A",
	BXAMUL: "BXAMUL",
	MULNI:  "MULNI",
}

func (op Operation) String() string {
	name, ok := operationNames[op]
	if ok {
		return name
	}
	return fmt.Sprintf("{Operation %d}", op)
}

// Stats holds statistics about circuit operations.
type Stats [numOperations]int

func (s Stats) String() string {
	var result string
	for op := Operation(0); op < numOperations; op++ {
		if s[op] == 0 {
			continue
		}
		if len(result) > 0 {
			result += " "
		}
		result += fmt.Sprintf("%s=%d", op, s[op])
	}
	return result
}

// FileSize specifies a data size in bytes.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}
