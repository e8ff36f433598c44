//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bitvec

import (
	"crypto/rand"
	"testing"
)

func TestParse(t *testing.T) {
	v, err := Parse("10110010")
	if err != nil {
		t.Fatal(err)
	}
	if v.Size() != 8 {
		t.Fatalf("size %v, expected 8", v.Size())
	}
	if v.Bytes()[0] != 0x4d {
		t.Errorf("data %02x, expected 4d", v.Bytes()[0])
	}
	if v.String() != "10110010" {
		t.Errorf("String: got %v", v)
	}
	if v.OnesCount() != 4 {
		t.Errorf("OnesCount: got %v, expected 4", v.OnesCount())
	}
	if _, err := Parse("10x"); err == nil {
		t.Errorf("Parse accepted invalid input")
	}
}

func TestOps(t *testing.T) {
	a, _ := Parse("1100110011")
	b, _ := Parse("1010101010")

	x := XorOf(a, b)
	if x.String() != "0110011001" {
		t.Errorf("xor: got %v", x)
	}
	y := AndOf(a, b)
	if y.String() != "1000100010" {
		t.Errorf("and: got %v", y)
	}
	a.Not()
	if a.String() != "0011001100" {
		t.Errorf("not: got %v", a)
	}
	if a.Bytes()[1]&^0x03 != 0 {
		t.Errorf("not: tail bits not cleared: %08b", a.Bytes()[1])
	}
}

func TestAppendSubset(t *testing.T) {
	for _, sizes := range [][]int{
		{8, 8}, {3, 5}, {7, 13}, {0, 9}, {17, 1},
	} {
		a, err := Random(rand.Reader, sizes[0])
		if err != nil {
			t.Fatal(err)
		}
		b, err := Random(rand.Reader, sizes[1])
		if err != nil {
			t.Fatal(err)
		}
		c := Concat(a, b)
		if c.Size() != a.Size()+b.Size() {
			t.Fatalf("Concat: size %v", c.Size())
		}
		if !c.Subset(0, a.Size()).Equal(a) {
			t.Errorf("%v: prefix mismatch", sizes)
		}
		if !c.Subset(a.Size(), c.Size()).Equal(b) {
			t.Errorf("%v: suffix mismatch: %v, expected %v", sizes,
				c.Subset(a.Size(), c.Size()), b)
		}
	}
}

func TestSizeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Xor did not panic on size mismatch")
		}
	}()
	a := New(8)
	a.Xor(New(9))
}
