package ingest

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/kmer"
)

func encodeRecord(k kmer.Kmer) []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint64(buf[0:8], k.Hi)
	binary.LittleEndian.PutUint64(buf[8:16], k.Lo)
	return buf
}

func TestRunPushesCanonicalPairs(t *testing.T) {
	const k = 4
	inputs := []string{"ACGT", "GATT", "TTTT"}

	var buf bytes.Buffer
	for _, s := range inputs {
		buf.Write(encodeRecord(kmer.FromString(s)))
	}

	dir, err := os.MkdirTemp("", "ingest-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	nodeLess := func(a, b kmer.Kmer) bool { return kmer.ColexLess(a, b, k) }
	edgeLess := func(a, b kmer.Kmer) bool { return kmer.EdgeLess(a, b, k) }
	nodes := extsort.NewBuilder(nodeLess, dir, 1024)
	edges := extsort.NewBuilder(edgeLess, dir, 1024)

	if err := Run(&buf, k, Sinks{Nodes: nodes, Edges: edges}); err != nil {
		t.Fatal(err)
	}

	nodeStream := nodes.Finish()
	defer nodeStream.Close()
	var nodeCount int
	for {
		if _, ok := nodeStream.Next(); !ok {
			break
		}
		nodeCount++
	}
	if want := len(inputs) * 2; nodeCount != want {
		t.Errorf("node stream got %d records, want %d", nodeCount, want)
	}

	edgeStream := edges.Finish()
	defer edgeStream.Close()
	var edgeCount int
	for {
		if _, ok := edgeStream.Next(); !ok {
			break
		}
		edgeCount++
	}
	if want := len(inputs) * 2; edgeCount != want {
		t.Errorf("edge stream got %d records, want %d", edgeCount, want)
	}
}
