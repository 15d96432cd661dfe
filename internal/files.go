package internal

import (
	"log"
	"os"
	"path/filepath"
)

// FullPathname resolves filename against the working directory if it
// isn't already absolute.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}

// FileOpen is os.Open with a panic in place of an error, for call
// sites where the caller has already validated the file exists.
func FileOpen(filename string) *os.File {
	f, err := os.Open(filename)
	if err != nil {
		log.Panic(err)
	}
	return f
}

// FileCreate is os.Create with a panic in place of an error.
func FileCreate(filename string) *os.File {
	f, err := os.Create(filename)
	if err != nil {
		log.Panic(err)
	}
	return f
}

// MkdirAll is os.MkdirAll with a panic in place of an error.
func MkdirAll(path string, perm os.FileMode) {
	if err := os.MkdirAll(path, perm); err != nil {
		log.Panic(err)
	}
}

// Close is f.Close() with a panic in place of an error. Intended for
// deferred use on files opened for reading, where a close error
// almost always indicates a deeper problem (e.g. a network mount
// going away) rather than something callers can meaningfully recover
// from.
func Close(f *os.File) {
	if err := f.Close(); err != nil {
		log.Panic(err)
	}
}

// Write is f.Write(b) with a panic in place of an error, returning
// the number of bytes written.
func Write(f *os.File, b []byte) int {
	n, err := f.Write(b)
	if err != nil {
		log.Panic(err)
	}
	return n
}

// WriteString is f.WriteString(s) with a panic in place of an error.
func WriteString(f *os.File, s string) int {
	n, err := f.WriteString(s)
	if err != nil {
		log.Panic(err)
	}
	return n
}
