package council

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts wall-clock time so tests can freeze it. Spec §9:
// "implementations must allow a pluggable clock and id generator for
// reproducible tests."
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts id generation so tests can produce deterministic
// ids instead of random UUIDs and an in-memory counter.
type IDGenerator interface {
	NewSessionID() string
	NewMotionID() string
	// NextEventID returns the next strictly-monotonic event id for the
	// generator's lifetime. Callers must use one IDGenerator per session.
	NextEventID() int64
}

// UUIDGenerator is the production IDGenerator: UUIDs for session and motion
// ids (grounded on pkg/session/manager.go's uuid.New().String() use), and
// an atomic counter for event ids.
type UUIDGenerator struct {
	eventSeq atomic.Int64
}

// NewUUIDGenerator creates a generator whose event ids start at 1.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewSessionID returns a fresh random UUID.
func (g *UUIDGenerator) NewSessionID() string {
	return uuid.New().String()
}

// NewMotionID returns a fresh random UUID.
func (g *UUIDGenerator) NewMotionID() string {
	return uuid.New().String()
}

// NextEventID returns the next strictly-monotonic event id, starting at 1.
func (g *UUIDGenerator) NextEventID() int64 {
	return g.eventSeq.Add(1)
}
