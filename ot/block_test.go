//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"
)

func TestBlockBits(t *testing.T) {
	var b Block

	for _, i := range []int{0, 1, 63, 64, 65, 127} {
		b.SetBit(i, 1)
		if b.Bit(i) != 1 {
			t.Fatalf("bit %d not set: %v", i, b)
		}
	}
	if b[0] != 0x03 || b[7] != 0x80 || b[8] != 0x03 || b[15] != 0x80 {
		t.Fatalf("unexpected block %v", b)
	}
	b.SetBit(64, 0)
	if b.Bit(64) != 0 || b[8] != 0x02 {
		t.Fatalf("failed to clear bit 64: %v", b)
	}

	v := b.Bits(K)
	for i := 0; i < K; i++ {
		if v.Bit(i) != b.Bit(i) {
			t.Errorf("Bits: bit %d: got %v, expected %v", i, v.Bit(i), b.Bit(i))
		}
	}
	if b.Bits(9).Size() != 9 {
		t.Errorf("Bits: invalid size %v", b.Bits(9).Size())
	}
}

func TestBlockXor(t *testing.T) {
	a, err := RandomBlock(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RandomBlock(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	c := a.Xor(b)
	if c.Xor(b) != a {
		t.Errorf("Xor: %v ⊕ %v ⊕ %v != %v", a, b, b, a)
	}
	if a.Xor(a) != (Block{}) {
		t.Errorf("Xor: %v ⊕ %v is not zero", a, a)
	}
}

func TestCRH(t *testing.T) {
	crh := NewCRH()
	x, err := RandomBlock(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if crh.Hash(1, x) != crh.Hash(1, x) {
		t.Errorf("Hash is not deterministic")
	}
	if crh.Hash(1, x) == crh.Hash(2, x) {
		t.Errorf("Hash ignores the tweak")
	}
	long := crh.Pad(3, x, 1000)
	if long.Size() != 1000 {
		t.Errorf("Pad: invalid size %d", long.Size())
	}
	if !crh.Pad(3, x, 1000).Equal(long) {
		t.Errorf("Pad is not deterministic")
	}
	if !crh.Pad(3, x, 100).Equal(crh.Hash(3, x).Bits(100)) {
		t.Errorf("short Pad differs from Hash")
	}
}
