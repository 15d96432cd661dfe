package succinct

import "testing"

func TestWaveletTreeAccess(t *testing.T) {
	codes := []uint8{0, 4, 2, 1, 3, 3, 0, 2, 4, 1, 1, 0}
	wt := BuildWaveletTree(codes, 5)
	for i, want := range codes {
		if got := wt.Access(uint64(i)); got != want {
			t.Errorf("Access(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestWaveletTreeRank(t *testing.T) {
	codes := []uint8{0, 4, 2, 1, 3, 3, 0, 2, 4, 1, 1, 0}
	wt := BuildWaveletTree(codes, 5)
	for symbol := uint8(0); symbol < 5; symbol++ {
		var want uint64
		for i := 0; i <= len(codes); i++ {
			if got := wt.Rank(symbol, uint64(i)); got != want {
				t.Fatalf("Rank(%d,%d) = %d, want %d", symbol, i, got, want)
			}
			if i < len(codes) && codes[i] == symbol {
				want++
			}
		}
	}
}

func TestWaveletTreeSelect(t *testing.T) {
	codes := []uint8{0, 4, 2, 1, 3, 3, 0, 2, 4, 1, 1, 0}
	wt := BuildWaveletTree(codes, 5)
	for symbol := uint8(0); symbol < 5; symbol++ {
		var occurrences []uint64
		for i, c := range codes {
			if c == symbol {
				occurrences = append(occurrences, uint64(i))
			}
		}
		for k, want := range occurrences {
			got, ok := wt.Select(symbol, uint64(k))
			if !ok || got != want {
				t.Errorf("Select(%d,%d) = %d,%v want %d", symbol, k, got, ok, want)
			}
		}
		if _, ok := wt.Select(symbol, uint64(len(occurrences))); ok {
			t.Errorf("Select(%d,%d) should fail past the last occurrence", symbol, len(occurrences))
		}
	}
}

func TestWaveletTreeCount(t *testing.T) {
	codes := []uint8{0, 4, 2, 1, 3, 3, 0, 2, 4, 1, 1, 0}
	wt := BuildWaveletTree(codes, 5)
	counts := map[uint8]uint64{}
	for _, c := range codes {
		counts[c]++
	}
	for symbol, want := range counts {
		if got := wt.Count(symbol); got != want {
			t.Errorf("Count(%d) = %d, want %d", symbol, got, want)
		}
	}
}
