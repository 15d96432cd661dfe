// Package boss assembles the merged edge stream into a succinct BOSS
// graph (wavelet tree W, sparse bit-vector L, F-table, max-ranks) and
// answers the rank/select-based traversal and lookup queries against
// it, the way the teacher's sam package builds an index structure once
// (sam/bai.go) and then serves read-only queries against it from
// multiple goroutines without synchronization.
package boss

import "fmt"

// ErrKind classifies a boss failure the way filters.Error and
// utils.Error classify the teacher's pipeline failures.
type ErrKind int

const (
	// InputFormat means the merged record stream or a persisted file
	// was malformed: wrong footer, unsupported k, truncated header.
	InputFormat ErrKind = iota
	// ResourceExceeded means k or the color count is beyond what this
	// build supports.
	ResourceExceeded
	// Io means a file could not be opened, read, or written.
	Io
	// QueryDomain means a query argument (node id, symbol, edge index)
	// is out of range for the built graph.
	QueryDomain
)

func (k ErrKind) String() string {
	switch k {
	case InputFormat:
		return "input format"
	case ResourceExceeded:
		return "resource exceeded"
	case Io:
		return "io"
	case QueryDomain:
		return "query domain"
	default:
		return "unknown"
	}
}

// Error reports a build or query failure, naming the stage/operation
// it occurred in the way the CLI's diagnostics are expected to (spec
// §7: "print a single-line diagnostic naming the stage and input
// file").
type Error struct {
	Kind ErrKind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("boss: %s: %s: %s", e.Op, e.Kind, e.Msg)
}
