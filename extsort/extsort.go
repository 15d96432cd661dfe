// Package extsort implements bounded-memory external sorting of
// k-mer streams: each of the pipeline's node-order and edge-order
// streams is built by batching incoming records into memory-sized
// runs, sorting each run in parallel with
// github.com/exascience/pargo/sort (the same StableSorter interface
// the teacher implements for its alignment sorters in
// sam/sam-types.go), spilling runs to scratch files named with
// github.com/google/uuid the way the pack's own temp-directory
// convention does (see other_examples' muscato.go), and merging the
// runs with a bounded k-way heap merge.
package extsort

import (
	"bufio"
	"container/heap"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/debruijn/internal"
	"github.com/exascience/debruijn/kmer"
)

// Less is a strict-weak-order comparator over packed k-mers, used to
// parameterize a Builder for one of the pipeline's two k-mer sort
// orders (node-colex, edge-colex). Shifted dummies are sorted
// separately, in memory, by dummies.SortDummies.
type Less func(a, b kmer.Kmer) bool

// KmerSorter adapts a slice of k-mers and a Less function to
// pargo/sort's StableSorter interface.
type KmerSorter struct {
	items []kmer.Kmer
	less  Less
}

// NewKmerSorter wraps items for in-place parallel stable sorting by
// less.
func NewKmerSorter(items []kmer.Kmer, less Less) KmerSorter {
	return KmerSorter{items: items, less: less}
}

func (s KmerSorter) SequentialSort(i, j int) {
	items, less := s.items[i:j], s.less
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

func (s KmerSorter) NewTemp() psort.StableSorter {
	return KmerSorter{items: make([]kmer.Kmer, len(s.items)), less: s.less}
}

func (s KmerSorter) Len() int { return len(s.items) }

func (s KmerSorter) Less(i, j int) bool { return s.less(s.items[i], s.items[j]) }

func (s KmerSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.items, p.(KmerSorter).items
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// Sort sorts items in place by less, using pargo's parallel stable
// merge sort.
func Sort(items []kmer.Kmer, less Less) {
	psort.StableSort(NewKmerSorter(items, less))
}

const runRecordSize = 16 // two uint64 words per k-mer

// run is one spilled, already-sorted batch of k-mers.
type run struct {
	path string
}

func newScratchPath(dir string) string {
	return filepath.Join(dir, "debruijn-run-"+uuid.New().String()+".tmp")
}

func writeRun(dir string, items []kmer.Kmer) run {
	path := newScratchPath(dir)
	f := internal.FileCreate(path)
	w := bufio.NewWriter(f)
	buf := make([]byte, runRecordSize)
	for _, k := range items {
		binary.LittleEndian.PutUint64(buf[0:8], k.Hi)
		binary.LittleEndian.PutUint64(buf[8:16], k.Lo)
		if _, err := w.Write(buf); err != nil {
			panic(err)
		}
	}
	if err := w.Flush(); err != nil {
		panic(err)
	}
	internal.Close(f)
	return run{path: path}
}

// runReader pulls k-mers back out of a scratch file in the order they
// were written.
type runReader struct {
	f   *os.File
	r   *bufio.Reader
	buf [runRecordSize]byte
}

func openRun(rn run) *runReader {
	f := internal.FileOpen(rn.path)
	return &runReader{f: f, r: bufio.NewReader(f)}
}

func (rr *runReader) next() (kmer.Kmer, bool) {
	if _, err := io.ReadFull(rr.r, rr.buf[:]); err != nil {
		return kmer.Kmer{}, false
	}
	return kmer.Kmer{
		Hi: binary.LittleEndian.Uint64(rr.buf[0:8]),
		Lo: binary.LittleEndian.Uint64(rr.buf[8:16]),
	}, true
}

func (rr *runReader) close() {
	internal.Close(rr.f)
	os.Remove(rr.f.Name())
}

// Stream is a pull-style sorted iterator over a k-mer stream. Callers
// must call Close once done, whether or not the stream was drained.
type Stream struct {
	less   Less
	source []*runReader
	heapS  *mergeHeap
}

// heapItem holds one run's current head element and its origin, for
// container/heap based k-way merging.
type heapItem struct {
	value kmer.Kmer
	run   int
}

type mergeHeap struct {
	items []heapItem
	less  Less
}

func (h *mergeHeap) Len() int { return len(h.items) }
func (h *mergeHeap) Less(i, j int) bool {
	return h.less(h.items[i].value, h.items[j].value)
}
func (h *mergeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap) Push(x interface{}) { h.items = append(h.items, x.(heapItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Next returns the next k-mer in sorted order, and false once the
// stream is exhausted.
func (s *Stream) Next() (kmer.Kmer, bool) {
	if s.heapS.Len() == 0 {
		return kmer.Kmer{}, false
	}
	top := heap.Pop(s.heapS).(heapItem)
	if v, ok := s.source[top.run].next(); ok {
		heap.Push(s.heapS, heapItem{value: v, run: top.run})
	}
	return top.value, true
}

// Close releases every scratch run backing the stream.
func (s *Stream) Close() {
	for _, rr := range s.source {
		if rr != nil {
			rr.close()
		}
	}
}

// Builder accumulates k-mers into bounded-memory runs and, on Finish,
// returns a merged sorted Stream. batchSize is the number of k-mers
// held in memory per run before it is sorted and spilled.
type Builder struct {
	less      Less
	scratch   string
	batchSize int
	buffer    []kmer.Kmer
	runs      []run
}

// NewBuilder creates a run builder that spills sorted batches of at
// most batchSize k-mers into scratchDir.
func NewBuilder(less Less, scratchDir string, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = 1 << 20
	}
	internal.MkdirAll(scratchDir, 0o755)
	return &Builder{less: less, scratch: scratchDir, batchSize: batchSize}
}

// Push adds one k-mer to the builder, spilling a run if the in-memory
// batch has reached its size limit.
func (b *Builder) Push(k kmer.Kmer) {
	b.buffer = append(b.buffer, k)
	if len(b.buffer) >= b.batchSize {
		b.flush()
	}
}

func (b *Builder) flush() {
	if len(b.buffer) == 0 {
		return
	}
	Sort(b.buffer, b.less)
	b.runs = append(b.runs, writeRun(b.scratch, b.buffer))
	b.buffer = nil
}

// Finish spills any buffered k-mers and returns a merged sorted Stream
// over every run written so far. The builder must not be reused after
// this call.
func (b *Builder) Finish() *Stream {
	b.flush()
	readers := make([]*runReader, len(b.runs))
	items := make([]heapItem, 0, len(b.runs))
	for i, rn := range b.runs {
		rr := openRun(rn)
		readers[i] = rr
		if v, ok := rr.next(); ok {
			items = append(items, heapItem{value: v, run: i})
		}
	}
	mh := &mergeHeap{items: items, less: b.less}
	heap.Init(mh)
	return &Stream{less: b.less, source: readers, heapS: mh}
}
