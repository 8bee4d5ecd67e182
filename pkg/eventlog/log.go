// Package eventlog is the append-only, crash-consistent event log for one
// council session. It owns three of the artifacts listed in spec §6:
// events.json (the ordered typed-event document), transcript.md (the
// human-readable rendering), and session.json (the final synthesis,
// written once at close). Grounded on tim-coutinho-agentops's
// internal/storage.FileStorage: temp-file-then-rename writes, one mutex
// guarding the whole store, JSON documents on disk rather than a database.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/codeready-toolchain/council/pkg/council"
)

// Log is the event log for one session, rooted at
// <rootDir>/sessions/<sessionId>/.
type Log struct {
	mu         sync.Mutex
	sessionDir string
	events     []council.Event
}

// New creates the session directory (if absent) and returns a Log ready to
// accept events for it.
func New(rootDir, sessionID string) (*Log, error) {
	dir := filepath.Join(rootDir, "sessions", sessionID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("eventlog: create session directory: %w", err)
	}
	return &Log{sessionDir: dir}, nil
}

// SessionDir returns the directory this log persists artifacts under.
func (l *Log) SessionDir() string {
	return l.sessionDir
}

// ArtifactPath joins name onto the session directory — used by
// pkg/docloop and pkg/orchestrator to name revision-loop and handoff
// artifacts consistently.
func (l *Log) ArtifactPath(name string) string {
	return filepath.Join(l.sessionDir, name)
}

// Append records ev as the next entry in the log and durably persists
// events.json and transcript.md before returning. Per spec §4.8, events
// must be retrievable in order after any crash that survives the last
// successful Append — both files are rewritten via atomicWrite, so a crash
// mid-write never corrupts the previous, already-durable version.
func (l *Log) Append(ev council.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, ev)

	if err := atomicWriteJSON(l.eventsPath(), l.events); err != nil {
		return fmt.Errorf("eventlog: write events.json: %w", err)
	}
	if err := atomicWrite(l.transcriptPath(), []byte(renderTranscript(l.events))); err != nil {
		return fmt.Errorf("eventlog: write transcript.md: %w", err)
	}
	return nil
}

// Events returns a copy of the events appended so far, in append order.
func (l *Log) Events() []council.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]council.Event, len(l.events))
	copy(out, l.events)
	return out
}

// WriteSessionResult persists the final session state document — spec
// §4.8's "synthesis" artifact — called once, at session close.
func (l *Log) WriteSessionResult(result council.SessionResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := atomicWriteJSON(l.sessionResultPath(), result); err != nil {
		return fmt.Errorf("eventlog: write session.json: %w", err)
	}
	return nil
}

func (l *Log) eventsPath() string        { return filepath.Join(l.sessionDir, "events.json") }
func (l *Log) transcriptPath() string    { return filepath.Join(l.sessionDir, "transcript.md") }
func (l *Log) sessionResultPath() string { return filepath.Join(l.sessionDir, "session.json") }
