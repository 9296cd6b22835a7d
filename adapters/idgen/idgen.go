// Package idgen provides ID generation implementations.
package idgen

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/artpar/gridpatch/ports"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// UUID generates UUIDs.
type UUID struct{}

// New generates a new UUID v4.
func (UUID) New() string {
	return uuid.New().String()
}

// Ensure interface compliance.
var _ ports.IDGenerator = UUID{}

// ULID generates lexicographically sortable IDs. Keys created later sort
// after keys created earlier, even within the same millisecond.
type ULID struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULID creates a ULID generator.
func NewULID() *ULID {
	return &ULID{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New generates the next ULID.
func (g *ULID) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*ULID)(nil)

// Sequential generates sequential IDs (for testing).
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential ID.
func (s *Sequential) New() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + strconv.FormatUint(n, 10)
}

// Reset resets the counter (for testing).
func (s *Sequential) Reset() {
	atomic.StoreUint64(&s.counter, 0)
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Sequential)(nil)

// New returns the generator for a configured kind: "uuid" or "ulid".
func New(kind string) (ports.IDGenerator, error) {
	switch kind {
	case "", "uuid":
		return UUID{}, nil
	case "ulid":
		return NewULID(), nil
	default:
		return nil, fmt.Errorf("unknown id generator %q", kind)
	}
}
