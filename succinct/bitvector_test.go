package succinct

import "testing"

func buildTestVector(bits []int) *BitVector {
	bv := NewBitVector(uint64(len(bits)))
	for i, b := range bits {
		if b == 1 {
			bv.Set(uint64(i), true)
		}
	}
	bv.Build()
	return bv
}

func TestRank1(t *testing.T) {
	bits := []int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1}
	bv := buildTestVector(bits)
	var want uint64
	for i := 0; i <= len(bits); i++ {
		if got := bv.Rank1(uint64(i)); got != want {
			t.Errorf("Rank1(%d) = %d, want %d", i, got, want)
		}
		if i < len(bits) && bits[i] == 1 {
			want++
		}
	}
}

func TestRank1AcrossBlockBoundary(t *testing.T) {
	n := blockBits*3 + 17
	bits := make([]int, n)
	for i := range bits {
		if i%7 == 0 {
			bits[i] = 1
		}
	}
	bv := buildTestVector(bits)
	var want uint64
	for i := 0; i <= n; i++ {
		if got := bv.Rank1(uint64(i)); got != want {
			t.Fatalf("Rank1(%d) = %d, want %d", i, got, want)
		}
		if i < n && bits[i] == 1 {
			want++
		}
	}
}

func TestSelect1(t *testing.T) {
	bits := []int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1}
	bv := buildTestVector(bits)
	var ones []uint64
	for i, b := range bits {
		if b == 1 {
			ones = append(ones, uint64(i))
		}
	}
	for k, want := range ones {
		got, ok := bv.Select1(uint64(k))
		if !ok || got != want {
			t.Errorf("Select1(%d) = %d,%v want %d", k, got, ok, want)
		}
	}
	if _, ok := bv.Select1(uint64(len(ones))); ok {
		t.Error("Select1 past the last 1-bit should fail")
	}
}

func TestSelect0(t *testing.T) {
	bits := []int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1}
	bv := buildTestVector(bits)
	var zeros []uint64
	for i, b := range bits {
		if b == 0 {
			zeros = append(zeros, uint64(i))
		}
	}
	for k, want := range zeros {
		got, ok := bv.Select0(uint64(k))
		if !ok || got != want {
			t.Errorf("Select0(%d) = %d,%v want %d", k, got, ok, want)
		}
	}
}

func TestCount(t *testing.T) {
	bv := buildTestVector([]int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1})
	if got := bv.Count(); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
}
