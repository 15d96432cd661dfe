package boss

import (
	"os"

	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/kmer"
	"github.com/exascience/debruijn/merge"
	"github.com/exascience/debruijn/succinct"
)

// codeAlphabet is the augmented alphabet size the W wavelet tree is
// built over: (Sigma+1) real symbols ($,A,C,G,T), each doubled by the
// minus flag (spec §3, "the augmented alphabet has 2·(σ+1) values").
const codeAlphabet = 2 * (int(kmer.Sigma) + 1)

func code(label kmer.Symbol, minusFlag bool) uint8 {
	c := uint8(label) << 1
	if minusFlag {
		c |= 1
	}
	return c
}

// Graph is a built, immutable, query-ready BOSS index (spec §3, "BOSS
// index (persisted and in-memory)"). Every field is read-only once
// Assemble returns; queries against it require no synchronization, the
// same contract the teacher's mmap'd sam.Index gives concurrent
// readers.
type Graph struct {
	K int // k-mer length; node length is K-1.

	w       *succinct.WaveletTree
	l       *succinct.SparseBitVector
	f       [int(kmer.Sigma) + 2]uint64 // f[x] = # edges with label < x
	maxRank [int(kmer.Sigma) + 1]uint64 // maxRank[x] = W.rank(E, with(x,0))
	numEdges uint64
	numNodes uint64

	colors    *succinct.BitVector // optional edge-major color bitmap
	numColors int

	alphabet string

	// mmapped and file are set only on a graph returned by Load; a
	// graph built in-process by Assemble owns no file mapping.
	mmapped []byte
	file    *os.File
}

// ColorOf returns the indices of the colors that record r, the edge at
// position edgeIndex of the merged stream, belongs to. AssembleColored
// calls it once per edge and does not accept a nil ColorOf; Assemble
// builds a graph without a color bitmap (spec §3's color bitmap is
// explicitly optional).
type ColorOf func(r merge.Record, edgeIndex uint64) []int

// Assemble runs the three-way merge over a (real edges, node-order),
// inDummies, and outDummies (the outputs of dummies.Find and
// dummies.SortDummies.Finish) and builds the succinct BOSS structures
// from the resulting record stream (spec §4.F). Use AssembleColored
// instead when a per-edge color bitmap is wanted.
//
// succinct.BuildWaveletTree and succinct.NewSparseBitVector both take
// their whole input up front rather than streaming incrementally, so
// Assemble first buffers the record stream's per-edge codes and L bits
// into slices (bounded by the edge count, the same memory footprint
// the built W and L already commit to) before constructing the final
// structures.
func Assemble(a *extsort.Stream, edgeLength int, inDummies []kmer.Dummy, outDummies []kmer.Kmer) *Graph {
	var codes []uint8
	var lastEdge []bool

	merge.Run(a, edgeLength, inDummies, outDummies, func(r merge.Record) {
		codes = append(codes, code(r.Label, r.MinusFlag))
		lastEdge = append(lastEdge, r.FirstEndNode)
	})

	return buildFromCodes(edgeLength, codes, lastEdge)
}

// buildFromCodes constructs the succinct W/L/F/maxRank structures from
// a graph's already-decided per-edge codes and L bits, the common tail
// shared by Assemble (fed directly from a live merge.Run) and
// AssemblePacked (fed from a previously written .packed file).
func buildFromCodes(edgeLength int, codes []uint8, lastEdge []bool) *Graph {
	numEdges := uint64(len(codes))
	w := succinct.BuildWaveletTree(codes, codeAlphabet)

	l := succinct.NewSparseBitVector(numEdges)
	for i, last := range lastEdge {
		if last {
			l.Set(uint64(i), true)
		}
	}
	l.Build()

	g := &Graph{K: edgeLength, w: w, l: l, numEdges: numEdges, numNodes: l.Count(), alphabet: kmer.Alphabet}
	g.buildFTable()
	return g
}

// buildFTable computes the F-table (cumulative per-symbol edge
// counts) and the per-symbol maximum non-flagged W-rank, both derived
// directly from the finished wavelet tree's symbol counts rather than
// re-walking the record stream (spec §4.F).
func (g *Graph) buildFTable() {
	var running uint64
	for x := 0; x <= int(kmer.Sigma); x++ {
		g.f[x] = running
		running += g.w.Count(code(kmer.Symbol(x), false)) + g.w.Count(code(kmer.Symbol(x), true))
	}
	g.f[int(kmer.Sigma)+1] = running

	for x := 0; x <= int(kmer.Sigma); x++ {
		g.maxRank[x] = g.w.Rank(code(kmer.Symbol(x), false), g.numEdges)
	}
}

// AssembleColored is Assemble's counterpart when a per-edge color
// bitmap is wanted: it needs each record's assigned edge index before
// it can place bits in the edge-major color bitmap, so it runs the
// merge once, materializing colors per edge as it goes rather than
// re-deriving them from a second pass.
func AssembleColored(a *extsort.Stream, edgeLength int, inDummies []kmer.Dummy, outDummies []kmer.Kmer, numColors int, colorOf ColorOf) *Graph {
	var codes []uint8
	var lastEdge []bool
	var colorRecords [][]int
	var edgeIndex uint64

	merge.Run(a, edgeLength, inDummies, outDummies, func(r merge.Record) {
		codes = append(codes, code(r.Label, r.MinusFlag))
		lastEdge = append(lastEdge, r.FirstEndNode)
		colorRecords = append(colorRecords, colorOf(r, edgeIndex))
		edgeIndex++
	})

	numEdges := edgeIndex
	w := succinct.BuildWaveletTree(codes, codeAlphabet)

	l := succinct.NewSparseBitVector(numEdges)
	for i, last := range lastEdge {
		if last {
			l.Set(uint64(i), true)
		}
	}
	l.Build()

	colors := succinct.NewBitVector(numEdges * uint64(numColors))
	for i, cs := range colorRecords {
		for _, c := range cs {
			colors.Set(uint64(i)*uint64(numColors)+uint64(c), true)
		}
	}
	colors.Build()

	g := &Graph{
		K:         edgeLength,
		w:         w,
		l:         l,
		numEdges:  numEdges,
		numNodes:  l.Count(),
		alphabet:  kmer.Alphabet,
		colors:    colors,
		numColors: numColors,
	}
	g.buildFTable()
	return g
}
