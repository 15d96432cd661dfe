// Package ingest reads the external, already-k-mer-counted input file
// and feeds the two initial sort streams the BOSS build starts from:
// stream A, colex-ordered on the (k-1)-symbol node prefix, and stream
// B, colex-ordered on the full k-mer edge. Every input k-mer x
// contributes both x and its reverse complement to each stream, the
// same "add the kmer and its reverse complement" step
// original_source/cosmo-pack.cpp performs before sorting.
//
// The read-batch/canonicalize/emit stages are wired together with
// github.com/exascience/pargo/pipeline the way the teacher's
// haplotype-calling pipeline (filters/haplotypecaller.go) parallelizes
// a per-item transform while keeping the downstream emission strictly
// ordered.
package ingest

import (
	"encoding/binary"
	"fmt"
	"io"
	"runtime"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/debruijn/extsort"
	"github.com/exascience/debruijn/internal"
	"github.com/exascience/debruijn/kmer"
)

// RecordSize is the on-disk width, in bytes, of one packed k-mer
// record: two little-endian uint64 words (Hi, Lo) in kmer.Kmer's own
// layout, regardless of k (unused high bits above 2*k are zero).
const RecordSize = 16

// batchRecords is the number of raw records pulled per pipeline batch.
const batchRecords = 4096

// Sinks receives every canonicalized k-mer for stream A (node order)
// and stream B (edge order). Implementations are called from a single
// goroutine in order, so they need not be concurrency-safe.
//
// NodesAgain is an optional second node-order builder fed the exact
// same k-mers as Nodes. extsort.Stream is single-pass and deletes its
// scratch runs on Close, but the build pipeline needs the node-order
// set twice: once for dummies.Find's unmatched-node scan and once more
// for merge.Run's final regrouping pass. Rather than cache the whole
// canonicalized set in memory or re-read and re-canonicalize the input
// file a second time, Run just pushes every record into both node
// builders as it goes; leave NodesAgain nil to skip it.
type Sinks struct {
	Nodes      *extsort.Builder
	NodesAgain *extsort.Builder
	Edges      *extsort.Builder
}

// Run reads fixed-width k-mer records from r and pushes each one, and
// its reverse complement, into both the node-order and edge-order
// builders. k is the edge length (number of symbols per record).
func Run(r io.Reader, k int, sinks Sinks) error {
	var readErr error
	src := pipeline.NewFunc(-1, func(size int) (interface{}, int, error) {
		buf := make([]byte, RecordSize*size)
		n, err := io.ReadFull(r, buf)
		full := n / RecordSize
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			if full == 0 {
				return nil, 0, nil
			}
			return buf[:full*RecordSize], full, nil
		}
		if err != nil {
			readErr = err
			return nil, 0, err
		}
		return buf, full, nil
	})

	var p pipeline.Pipeline
	p.Source(src)
	p.SetVariableBatchSize(batchRecords, batchRecords)
	p.Add(
		pipeline.LimitedPar(runtime.GOMAXPROCS(0), pipeline.Receive(func(_ int, data interface{}) interface{} {
			buf := data.([]byte)
			n := len(buf) / RecordSize
			out := make([]kmer.Kmer, n)
			for i := 0; i < n; i++ {
				rec := buf[i*RecordSize : (i+1)*RecordSize]
				out[i] = kmer.Kmer{
					Hi: binary.LittleEndian.Uint64(rec[0:8]),
					Lo: binary.LittleEndian.Uint64(rec[8:16]),
				}
			}
			return out
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, x := range data.([]kmer.Kmer) {
				rc := kmer.ReverseComplement(x, k)
				sinks.Nodes.Push(x)
				sinks.Nodes.Push(rc)
				if sinks.NodesAgain != nil {
					sinks.NodesAgain.Push(x)
					sinks.NodesAgain.Push(rc)
				}
				sinks.Edges.Push(x)
				sinks.Edges.Push(rc)
			}
			return nil
		})),
	)
	internal.RunPipeline(&p)
	if readErr != nil {
		return fmt.Errorf("ingest: reading k-mer records: %w", readErr)
	}
	return nil
}
