package merge

import (
	"os"
	"testing"

	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/kmer"
)

func buildAStream(t *testing.T, dir string, seqs []string, edgeLength int) *extsort.Stream {
	t.Helper()
	less := func(a, b kmer.Kmer) bool { return kmer.ComparePrefix(a, b, edgeLength) < 0 }
	b := extsort.NewBuilder(less, dir, 1024)
	for _, s := range seqs {
		b.Push(kmer.FromString(s))
	}
	return b.Finish()
}

func TestRunOrdersByNodeThenLabel(t *testing.T) {
	dir, err := os.MkdirTemp("", "merge-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	const k = 4
	// AAA has two outgoing edges, to C and to G; label order must sort
	// C before G (A < C < G < T).
	a := buildAStream(t, dir, []string{"AAAG", "AAAC"}, k)
	defer a.Close()

	var got []Record
	Run(a, k, nil, nil, func(r Record) { got = append(got, r) })

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Label != kmer.C || got[1].Label != kmer.G {
		t.Errorf("expected labels [C,G], got [%v,%v]", got[0].Label, got[1].Label)
	}
	if got[0].FirstEndNode {
		t.Error("first edge of a two-edge node group should not be first_end_node")
	}
	if !got[1].FirstEndNode {
		t.Error("last edge of the node group should be first_end_node")
	}
	if got[0].MinusFlag || got[1].MinusFlag {
		t.Error("distinct labels should never set MinusFlag")
	}
}

func TestRunSetsMinusFlagOnDuplicateLabel(t *testing.T) {
	dir, err := os.MkdirTemp("", "merge-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	const k = 4
	// The same edge pushed twice (e.g. a repeated k-mer in the input).
	a := buildAStream(t, dir, []string{"AAAC", "AAAC"}, k)
	defer a.Close()

	var got []Record
	Run(a, k, nil, nil, func(r Record) { got = append(got, r) })

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].MinusFlag {
		t.Error("the first occurrence of a label should not set MinusFlag")
	}
	if !got[1].MinusFlag {
		t.Error("the second occurrence of the same label should set MinusFlag")
	}
}

func TestRunInterleavesInAndOutDummyGroups(t *testing.T) {
	dir, err := os.MkdirTemp("", "merge-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	const k = 4
	const nodeLen = k - 1

	a := buildAStream(t, dir, []string{"CCCA"}, k) // node CCC, real edge to A
	defer a.Close()

	// An in-dummy staircase node "$$A" (real=1, content 'A') sorts
	// before CCC in colex order (A < C), and an out-dummy on node TTT
	// sorts after it (T > C).
	inDummy := []kmer.Dummy{{Kmer: kmer.FromString("A"), Real: 1, Shift: nodeLen - 1, Label: kmer.C}}
	outDummy := []kmer.Kmer{kmer.FromString("TTT")}

	var got []Record
	Run(a, k, inDummy, outDummy, func(r Record) { got = append(got, r) })

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Tag != InDummy {
		t.Errorf("expected the in-dummy node to sort first, got tag %v", got[0].Tag)
	}
	if got[1].Tag != RealEdge {
		t.Errorf("expected the real edge second, got tag %v", got[1].Tag)
	}
	if got[2].Tag != OutDummy || got[2].Label != kmer.Sentinel {
		t.Errorf("expected the out-dummy node last with a sentinel label, got tag %v label %v", got[2].Tag, got[2].Label)
	}
}
