package extsort

import (
	"os"
	"testing"

	"github.com/exascience/debruijn/kmer"
)

func numericLess(a, b kmer.Kmer) bool {
	if a.Hi != b.Hi {
		return a.Hi < b.Hi
	}
	return a.Lo < b.Lo
}

func TestSortInPlace(t *testing.T) {
	items := []kmer.Kmer{{Lo: 5}, {Lo: 1}, {Lo: 3}, {Lo: 2}, {Lo: 4}}
	Sort(items, numericLess)
	for i := 1; i < len(items); i++ {
		if numericLess(items[i], items[i-1]) {
			t.Fatalf("Sort left elements out of order: %v", items)
		}
	}
}

func TestBuilderMultiRunMerge(t *testing.T) {
	dir, err := os.MkdirTemp("", "extsort-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	b := NewBuilder(numericLess, dir, 4)
	values := []uint64{9, 2, 7, 1, 5, 8, 0, 6, 3, 4}
	for _, v := range values {
		b.Push(kmer.Kmer{Lo: v})
	}
	stream := b.Finish()
	defer stream.Close()

	var got []uint64
	for {
		k, ok := stream.Next()
		if !ok {
			break
		}
		got = append(got, k.Lo)
	}
	if len(got) != len(values) {
		t.Fatalf("expected %d values back, got %d", len(values), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("merged stream out of order: %v", got)
		}
	}
}

func TestBuilderEmpty(t *testing.T) {
	dir, err := os.MkdirTemp("", "extsort-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	b := NewBuilder(numericLess, dir, 4)
	stream := b.Finish()
	defer stream.Close()
	if _, ok := stream.Next(); ok {
		t.Error("expected an empty stream to yield nothing")
	}
}
