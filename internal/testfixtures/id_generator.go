package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// fixtureNamespace seeds every deterministic identifier.
var fixtureNamespace = uuid.MustParse("6f1c3f57-8a55-4f39-9d3c-6b1a2e0c9a10")

// StableID derives a UUID from name. The same name always yields the same ID,
// which keeps fixtures valid for uuid validation and reproducible across runs.
func StableID(name string) string {
	return uuid.NewSHA1(fixtureNamespace, []byte(name)).String()
}

// IDGenerator produces deterministic UUIDs for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator scoped by prefix. When prefix is
// empty, "id" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return StableID(fmt.Sprintf("%s-%d", g.prefix, g.counter))
}

// Nth returns the identifier Next produced or will produce at position n.
func (g *IDGenerator) Nth(n uint64) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return StableID(fmt.Sprintf("%s-%d", g.prefix, n))
}

// NextFunc exposes Next for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return uuid.NewString() }
	}
	return g.Next
}

// Issued reports how many identifiers have been handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
