package boss

import (
	"os"
	"testing"

	"github.com/exascience/debruijn/dummies"
	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/kmer"
)

func symString(syms []kmer.Symbol) string {
	buf := make([]byte, len(syms))
	for i, s := range syms {
		buf[i] = s.Byte()
	}
	return string(buf)
}

func TestNodeLabelRoundTripsOnClosedCycle(t *testing.T) {
	dir, err := os.MkdirTemp("", "boss-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	const k = 4
	seqs := []string{"AACG", "ACGA", "CGAA", "GAAC"}
	a := buildNodeStream(t, dir, seqs, k)
	defer a.Close()

	g := Assemble(a, k, nil, nil)

	labels := make(map[string]bool)
	for v := uint64(0); v < g.NumNodes(); v++ {
		labels[symString(g.NodeLabel(v))] = true
	}
	want := []string{"AAC", "ACG", "CGA", "GAA"}
	for _, w := range want {
		if !labels[w] {
			t.Errorf("expected node label %q among the built graph's nodes, got %v", w, labels)
		}
	}
}

// TestIndexFindsPresentKmerAndMissesAbsentOne builds a graph with a
// genuine all-sentinel root (spec §3 invariant 6): AACG's source node
// AAC has no real incoming edge, so its full incoming-dummy staircase,
// starting from the shared "$$$" root, is what Index walks through to
// find the k-mer.
func TestIndexFindsPresentKmerAndMissesAbsentOne(t *testing.T) {
	dir, err := os.MkdirTemp("", "boss-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	const k = 4
	const nodeLen = k - 1
	less := func(a, b kmer.Kmer) bool { return kmer.ComparePrefix(a, b, k) < 0 }
	sufLess := func(a, b kmer.Kmer) bool { return kmer.CompareSuffix(a, b, k) < 0 }

	x := kmer.FromString("AACG")
	na := extsort.NewBuilder(less, dir, 1024)
	na.Push(x)
	a1 := na.Finish()
	nb := extsort.NewBuilder(sufLess, dir, 1024)
	nb.Push(x)
	b1 := nb.Finish()

	var inDummies []kmer.Dummy
	var outNodes []kmer.Kmer
	if err := dummies.Find(a1, b1, k,
		func(d kmer.Dummy) { inDummies = append(inDummies, d) },
		func(n kmer.Kmer) { outNodes = append(outNodes, n) },
	); err != nil {
		t.Fatal(err)
	}
	a1.Close()
	b1.Close()

	sorter := dummies.NewSortDummies(nodeLen)
	for _, d := range inDummies {
		sorter.Push(d)
	}
	sorted := sorter.Finish()

	na2 := extsort.NewBuilder(less, dir, 1024)
	na2.Push(x)
	a2 := na2.Finish()
	defer a2.Close()

	g := Assemble(a2, k, sorted, outNodes)

	present := []kmer.Symbol{kmer.A, kmer.A, kmer.C, kmer.G}
	if _, _, ok := g.Index(present); !ok {
		t.Error("expected AACG to be found via Index")
	}

	absent := []kmer.Symbol{kmer.T, kmer.T, kmer.T, kmer.T}
	if _, _, ok := g.Index(absent); ok {
		t.Error("expected TTTT to be absent")
	}
}
