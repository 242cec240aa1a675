// Package id generates identifiers for messages and simulation runs.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewIDGenerator returns the sequential ID generator. The IDs are unique within
// one generator.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewPrefixedIDGenerator returns a sequential ID generator whose IDs start
// with the prefix. Generators with distinct prefixes never collide. If only
// one goroutine uses the generator, the IDs do not depend on scheduling.
func NewPrefixedIDGenerator(prefix string) IDGenerator {
	return &sequentialIDGenerator{prefix: prefix + "-"}
}

// NewParallelIDGenerator returns an ID generator that does not share a
// counter between goroutines. The IDs are globally unique but not
// deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

// NewRunID returns a globally unique ID for a simulation run.
func NewRunID() string {
	return xid.New().String()
}

type sequentialIDGenerator struct {
	prefix string
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := g.prefix + strconv.FormatUint(idNumber, 10)

	return id
}

type parallelIDGenerator struct {
}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
