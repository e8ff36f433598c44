//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"crypto/rand"
	"testing"
)

func TestBitSize(t *testing.T) {
	if BitSize[uint8]() != 8 || BitSize[uint16]() != 16 ||
		BitSize[uint32]() != 32 || BitSize[uint64]() != 64 {
		t.Errorf("BitSize: got %v %v %v %v", BitSize[uint8](),
			BitSize[uint16](), BitSize[uint32](), BitSize[uint64]())
	}
}

func testEncoding[T Ring](t *testing.T) {
	vals, err := Random[T](rand.Reader, 17)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode[T](Encode(vals), len(vals))
	if err != nil {
		t.Fatal(err)
	}
	for i := range vals {
		if vals[i] != decoded[i] {
			t.Fatalf("value %d: got %v, expected %v", i, decoded[i], vals[i])
		}
	}
	if _, err := Decode[T](Encode(vals), len(vals)+1); err == nil {
		t.Errorf("Decode accepted short data")
	}
}

func TestEncoding(t *testing.T) {
	testEncoding[uint8](t)
	testEncoding[uint16](t)
	testEncoding[uint32](t)
	testEncoding[uint64](t)
}

func TestWrap(t *testing.T) {
	a := []uint8{200, 1, 0}
	b := []uint8{100, 2, 1}

	sum := Add(a, b)
	if sum[0] != 44 || sum[1] != 3 || sum[2] != 1 {
		t.Errorf("Add: got %v", sum)
	}
	diff := Sub(a, b)
	if diff[0] != 100 || diff[1] != 255 || diff[2] != 255 {
		t.Errorf("Sub: got %v", diff)
	}
	prod := Mul(a, b)
	if prod[0] != uint8(200*100%256) {
		t.Errorf("Mul: got %v", prod)
	}
	neg := Neg(a)
	if neg[0] != 56 || neg[2] != 0 {
		t.Errorf("Neg: got %v", neg)
	}
}
