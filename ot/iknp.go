//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf

package ot

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/bitvec"
)

// chunkRows is the number of extended OTs per column message. It is
// a multiple of 8 so chunks start at byte boundaries of the choices.
const chunkRows = 8 * 1024

// SenderSetup holds the sender's random OT correlations. For each OT
// j, the receiver holds T[j] = Q[j] ⊕ c[j]·Delta where c[j] is its
// random choice bit.
type SenderSetup struct {
	Delta Block
	Q     []Block
}

// ReceiverSetup holds the receiver's random choices and correlations.
type ReceiverSetup struct {
	Choices bitvec.BitVector
	T       []Block
}

// ExtendSend runs the IKNP sender for n OTs. The sender is the base
// OT receiver with the bits of Delta as its choices.
func ExtendSend(base BaseOT, io IO, r io.Reader, n int) (*SenderSetup, error) {
	delta, err := RandomBlock(r)
	if err != nil {
		return nil, err
	}
	seeds, err := base.Receive(io, delta.Bits(K))
	if err != nil {
		return nil, errors.Wrap(err, "iknp: base OT")
	}
	cols, err := newColumns(seeds)
	if err != nil {
		return nil, err
	}

	s := &SenderSetup{
		Delta: delta,
		Q:     make([]Block, n),
	}
	buf := make([]byte, K*chunkRows/8)
	for ofs := 0; ofs < n; ofs += chunkRows {
		rows := min(chunkRows, n-ofs)
		w := (rows + 7) / 8

		u, err := receiveExact(io, K*w, "iknp: columns")
		if err != nil {
			return nil, err
		}
		q := buf[:K*w]
		for i := 0; i < K; i++ {
			col := q[i*w : (i+1)*w]
			cols[i].fill(col)
			if delta.Bit(i) == 1 {
				xorBytes(col, u[i*w:(i+1)*w])
			}
		}
		transpose(s.Q[ofs:ofs+rows], q, w)
	}
	return s, nil
}

// ExtendReceive runs the IKNP receiver for n OTs with random
// choices. The receiver is the base OT sender.
func ExtendReceive(base BaseOT, io IO, r io.Reader, n int) (
	*ReceiverSetup, error) {

	pairs, err := base.Send(io, K)
	if err != nil {
		return nil, errors.Wrap(err, "iknp: base OT")
	}
	seeds0 := make([]Block, K)
	seeds1 := make([]Block, K)
	for i, pair := range pairs {
		seeds0[i] = pair[0]
		seeds1[i] = pair[1]
	}
	cols0, err := newColumns(seeds0)
	if err != nil {
		return nil, err
	}
	cols1, err := newColumns(seeds1)
	if err != nil {
		return nil, err
	}
	choices, err := bitvec.Random(r, n)
	if err != nil {
		return nil, err
	}

	rs := &ReceiverSetup{
		Choices: choices,
		T:       make([]Block, n),
	}
	c := choices.Bytes()
	t := make([]byte, K*chunkRows/8)
	for ofs := 0; ofs < n; ofs += chunkRows {
		rows := min(chunkRows, n-ofs)
		w := (rows + 7) / 8

		// u_i = G(k0_i) ⊕ G(k1_i) ⊕ c
		u := make([]byte, K*w)
		for i := 0; i < K; i++ {
			col := t[i*w : (i+1)*w]
			cols0[i].fill(col)
			cols1[i].fill(u[i*w : (i+1)*w])
			xorBytes(u[i*w:(i+1)*w], col)
			xorBytes(u[i*w:(i+1)*w], c[ofs/8:ofs/8+w])
		}
		if err := io.SendData(u); err != nil {
			return nil, errors.Wrap(err, "iknp: send columns")
		}
		transpose(rs.T[ofs:ofs+rows], t[:K*w], w)
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Pads returns the pads y0 and y1 of the OTs [id, id+n). The pad yc
// equals the receiver's pad of the OT when its choice bit is c.
func (s *SenderSetup) Pads(crh *CRH, id, n, bitLen int) (
	y0, y1 []bitvec.BitVector) {

	y0 = make([]bitvec.BitVector, n)
	y1 = make([]bitvec.BitVector, n)
	for i := range y0 {
		j := id + i
		y0[i] = crh.Pad(uint64(j), s.Q[j], bitLen)
		y1[i] = crh.Pad(uint64(j), s.Q[j].Xor(s.Delta), bitLen)
	}
	return
}

// Pads returns the pads and the random choices of the OTs [id, id+n).
func (r *ReceiverSetup) Pads(crh *CRH, id, n, bitLen int) (
	y []bitvec.BitVector, c bitvec.BitVector) {

	y = make([]bitvec.BitVector, n)
	for i := range y {
		j := id + i
		y[i] = crh.Pad(uint64(j), r.T[j], bitLen)
	}
	return y, r.Choices.Subset(id, id+n)
}

func newColumns(seeds []Block) ([]*prg, error) {
	cols := make([]*prg, len(seeds))
	for i, seed := range seeds {
		var err error
		cols[i], err = newPRG(seed)
		if err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// transpose sets bit i of rows[j] to the bit j of the column i. The
// matrix holds K columns of w bytes.
func transpose(rows []Block, matrix []byte, w int) {
	for j := range rows {
		rows[j] = Block{}
	}
	for i := 0; i < K; i++ {
		col := matrix[i*w : (i+1)*w]
		mask := byte(1) << (i % 8)
		for j := range rows {
			if col[j/8]&(1<<(j%8)) != 0 {
				rows[j][i/8] |= mask
			}
		}
	}
}

func xorBytes(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
