package succinct

// WaveletTree is a wavelet-matrix encoding (Claude & Navarro) of a
// sequence over a small alphabet {0,...,alphabetSize-1}, supporting
// Access and Rank with O(levels) BitVector rank calls and Select with
// O(levels) BitVector select calls (BitVector.Select0 is a linear
// scan), using only the BitVector rank/select primitive. This backs the BOSS W array: the augmented
// edge-label alphabet (real symbols plus their minus-flagged
// counterparts) is small and fixed, exactly what a wavelet matrix is
// built for.
type WaveletTree struct {
	alphabetSize int
	levels       int
	length       uint64
	level        []*BitVector // level[l] has length `length`
	zeros        []uint64     // zeros[l] = number of 0-bits at level l
	counts       []uint64     // counts[s] = occurrences of symbol s
}

func bitsFor(alphabetSize int) int {
	levels := 0
	for n := alphabetSize - 1; n > 0; n >>= 1 {
		levels++
	}
	if levels == 0 {
		levels = 1
	}
	return levels
}

// BuildWaveletTree constructs a wavelet tree over codes, each of which
// must be in [0, alphabetSize).
func BuildWaveletTree(codes []uint8, alphabetSize int) *WaveletTree {
	n := uint64(len(codes))
	levels := bitsFor(alphabetSize)
	wt := &WaveletTree{
		alphabetSize: alphabetSize,
		levels:       levels,
		length:       n,
		level:        make([]*BitVector, levels),
		zeros:        make([]uint64, levels),
		counts:       make([]uint64, alphabetSize),
	}
	for _, c := range codes {
		wt.counts[c]++
	}

	seq := make([]uint8, len(codes))
	copy(seq, codes)
	for l := 0; l < levels; l++ {
		shift := uint(levels - 1 - l)
		bv := NewBitVector(n)
		for i, c := range seq {
			if (c>>shift)&1 == 1 {
				bv.Set(uint64(i), true)
			}
		}
		bv.Build()
		wt.level[l] = bv
		wt.zeros[l] = bv.Rank0(n)

		if l == levels-1 {
			break
		}
		next := make([]uint8, len(seq))
		zi, oi := 0, int(wt.zeros[l])
		for _, c := range seq {
			if (c>>shift)&1 == 0 {
				next[zi] = c
				zi++
			} else {
				next[oi] = c
				oi++
			}
		}
		seq = next
	}
	return wt
}

// Len returns the number of elements in the encoded sequence.
func (wt *WaveletTree) Len() uint64 { return wt.length }

// Access returns the symbol at position i.
func (wt *WaveletTree) Access(i uint64) uint8 {
	pos := i
	var code uint8
	for l := 0; l < wt.levels; l++ {
		bv := wt.level[l]
		if bv.Get(pos) {
			code = code<<1 | 1
			pos = wt.zeros[l] + bv.Rank1(pos)
		} else {
			code = code << 1
			pos = bv.Rank0(pos)
		}
	}
	return code
}

// Rank returns the number of occurrences of symbol in the prefix
// [0, i).
func (wt *WaveletTree) Rank(symbol uint8, i uint64) uint64 {
	lo, hi := uint64(0), i
	for l := 0; l < wt.levels; l++ {
		bv := wt.level[l]
		shift := uint(wt.levels - 1 - l)
		bit := (symbol >> shift) & 1
		if bit == 0 {
			lo = bv.Rank0(lo)
			hi = bv.Rank0(hi)
		} else {
			lo = wt.zeros[l] + bv.Rank1(lo)
			hi = wt.zeros[l] + bv.Rank1(hi)
		}
	}
	return hi - lo
}

// symbolStart returns the position, in the matrix's bottom-level
// order, of the first occurrence of symbol's block: the same
// top-down bit-by-bit narrowing Rank uses to track its lo bound
// (which always starts at, and stays derived from, position 0),
// generalized to the symbol's full code rather than one query
// position. The wavelet matrix's bottom order is the bit-reversal
// permutation of the alphabet, not ascending symbol order, so this
// cannot be precomputed once as a simple cumulative symbol count the
// way it could for a naturally-sorted wavelet tree.
func (wt *WaveletTree) symbolStart(symbol uint8) uint64 {
	pos := uint64(0)
	for l := 0; l < wt.levels; l++ {
		bv := wt.level[l]
		shift := uint(wt.levels - 1 - l)
		bit := (symbol >> shift) & 1
		if bit == 0 {
			pos = bv.Rank0(pos)
		} else {
			pos = wt.zeros[l] + bv.Rank1(pos)
		}
	}
	return pos
}

// Select returns the position of the k-th (0-based) occurrence of
// symbol, and false if there is no such occurrence.
func (wt *WaveletTree) Select(symbol uint8, k uint64) (uint64, bool) {
	if int(symbol) >= wt.alphabetSize || k >= wt.counts[symbol] {
		return 0, false
	}
	pos := wt.symbolStart(symbol) + k
	for l := wt.levels - 1; l >= 0; l-- {
		bv := wt.level[l]
		shift := uint(wt.levels - 1 - l)
		bit := (symbol >> shift) & 1
		var ok bool
		if bit == 0 {
			pos, ok = bv.Select0(pos)
		} else {
			pos, ok = bv.Select1(pos - wt.zeros[l])
		}
		if !ok {
			return 0, false
		}
	}
	return pos, true
}

// Count returns the total number of occurrences of symbol.
func (wt *WaveletTree) Count(symbol uint8) uint64 {
	if int(symbol) >= wt.alphabetSize {
		return 0
	}
	return wt.counts[symbol]
}
