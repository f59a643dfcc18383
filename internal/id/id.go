// Package id generates prefixed, lexicographically sortable identifiers
// for sketch surfaces and runs.
package id

import (
	"crypto/rand"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// SketchID identifies a mounted sketch surface.
type SketchID string

// RunID identifies one execution attempt on a surface.
type RunID string

const (
	SketchPrefix = "sk"
	RunPrefix    = "run"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// NewSketchID returns a new sketch surface identifier, e.g.
// "sk_01J9ZK...".
func NewSketchID() SketchID {
	return SketchID(SketchPrefix + "_" + newULID())
}

// NewRunID returns a new run identifier.
func NewRunID() RunID {
	return RunID(RunPrefix + "_" + newULID())
}

// ValidSketchID reports whether s carries the sketch prefix and a parseable
// ULID body.
func ValidSketchID(s string) bool {
	return valid(s, SketchPrefix)
}

func valid(s, prefix string) bool {
	body, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(body)
	return err == nil
}

func (s SketchID) String() string { return string(s) }
func (r RunID) String() string    { return string(r) }
