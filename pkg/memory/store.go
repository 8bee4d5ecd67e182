// Package memory persists the bounded, per-member and council-wide
// MemoryRecord sets, and derives the prompt-context snapshot injected into
// member turn prompts. Grounded on pkg/agent/context's
// structured-state-to-prompt-text formatters for the snapshot rendering,
// and on pkg/config's registry pattern (map protected by a mutex, copy-out
// accessors) for the in-memory bounded sets.
package memory

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/codeready-toolchain/council/pkg/council"
)

// MaxRecords bounds both per-member and council-wide record sets, per spec
// §8 property 7 ("after any sequence of sessions, per-member records ≤ 80
// and council records ≤ 80").
const MaxRecords = 80

// Digest limits for the recent-session lists RecordSession maintains
// alongside each record set, per spec §4.2's prune policy ("recent-session
// digest lists are truncated to 40 per member and 50 council").
const (
	MemberSessionDigestLimit  = 40
	CouncilSessionDigestLimit = 50
)

// memoryDocument is the on-disk shape of MEMORY.json/COUNCIL.json: the
// record set plus the recent-session digest used to derive the prompt-
// context "fade" window (spec §4.2).
type memoryDocument struct {
	Records        []council.MemoryRecord `json:"records"`
	RecentSessions []string                `json:"recentSessions"`
}

// Store is the bounded memory store for one council's persistent directory.
// One Store instance is shared across the orchestrator for the lifetime of
// a session; all methods are safe for concurrent use.
type Store struct {
	mu                sync.Mutex
	memoryDir         string
	memberSets        map[string][]council.MemoryRecord
	memberSessionLogs map[string][]string
	councilSet        []council.MemoryRecord
	councilSessionLog []string
}

// Open loads any existing MEMORY.json/COUNCIL.json documents under
// memoryDir for the given member ids. Missing files are treated as an
// empty set, not an error — a council's first session has no memory yet.
func Open(memoryDir string, memberIDs []string) (*Store, error) {
	s := &Store{
		memoryDir:         memoryDir,
		memberSets:        make(map[string][]council.MemoryRecord, len(memberIDs)),
		memberSessionLogs: make(map[string][]string, len(memberIDs)),
	}

	for _, id := range memberIDs {
		var doc memoryDocument
		if _, err := readJSON(s.memberJSONPath(id), &doc); err != nil {
			return nil, err
		}
		s.memberSets[id] = doc.Records
		s.memberSessionLogs[id] = doc.RecentSessions
	}

	var councilDoc memoryDocument
	if _, err := readJSON(s.councilJSONPath(), &councilDoc); err != nil {
		return nil, err
	}
	s.councilSet = councilDoc.Records
	s.councilSessionLog = councilDoc.RecentSessions

	return s, nil
}

// MemberRecords returns a copy of memberID's current record set.
func (s *Store) MemberRecords(memberID string) []council.MemoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]council.MemoryRecord(nil), s.memberSets[memberID]...)
}

// CouncilRecords returns a copy of the council-wide record set.
func (s *Store) CouncilRecords() []council.MemoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]council.MemoryRecord(nil), s.councilSet...)
}

// UpsertMember inserts or replaces (by ID) a record in memberID's set, then
// prunes and persists both MEMORY.json and MEMORY.md. Any evidence refs on
// rec are folded into memberID's recent-session digest, which the prompt-
// context snapshot uses to decide whether a record has "faded" (spec §4.2).
func (s *Store) UpsertMember(memberID string, rec council.MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memberSets[memberID] = upsert(s.memberSets[memberID], rec)
	s.memberSessionLogs[memberID] = pushSessionIDs(s.memberSessionLogs[memberID], rec.EvidenceRefs, MemberSessionDigestLimit)

	doc := memoryDocument{Records: s.memberSets[memberID], RecentSessions: s.memberSessionLogs[memberID]}
	if err := atomicWriteJSON(s.memberJSONPath(memberID), doc); err != nil {
		return err
	}
	return atomicWrite(s.memberMDPath(memberID), []byte(renderMemoryMarkdown(memberID, s.memberSets[memberID])))
}

// UpsertCouncil inserts or replaces (by ID) a record in the council-wide
// set, then prunes and persists both COUNCIL.json and COUNCIL.md, folding
// rec's evidence refs into the council recent-session digest.
func (s *Store) UpsertCouncil(rec council.MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.councilSet = upsert(s.councilSet, rec)
	s.councilSessionLog = pushSessionIDs(s.councilSessionLog, rec.EvidenceRefs, CouncilSessionDigestLimit)

	doc := memoryDocument{Records: s.councilSet, RecentSessions: s.councilSessionLog}
	if err := atomicWriteJSON(s.councilJSONPath(), doc); err != nil {
		return err
	}
	return atomicWrite(s.councilMDPath(), []byte(renderMemoryMarkdown("council", s.councilSet)))
}

// WriteAgentProfile persists <memberId>/AGENT.md, the member's static
// profile document. Called once per member at session start; unlike
// MEMORY.json it is not a MemoryRecord set, so it has no prune policy.
func (s *Store) WriteAgentProfile(memberID, profileMarkdown string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWrite(filepath.Join(s.memoryDir, memberID, "AGENT.md"), []byte(profileMarkdown))
}

// upsert inserts rec (replacing any existing record with the same ID), then
// prunes the set to MaxRecords by keeping the highest (importance desc,
// UpdatedAt desc) records — the most important, most recently touched
// knowledge survives first.
func upsert(records []council.MemoryRecord, rec council.MemoryRecord) []council.MemoryRecord {
	out := make([]council.MemoryRecord, 0, len(records)+1)
	replaced := false
	for _, r := range records {
		if r.ID == rec.ID {
			out = append(out, rec)
			replaced = true
			continue
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, rec)
	}

	if len(out) <= MaxRecords {
		return out
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out[:MaxRecords]
}

// pushSessionIDs folds each of ids into log (most-recent-first, deduped),
// truncating to max. Order within ids doesn't matter in practice — a single
// RecordSession call only ever contributes one session id at a time.
func pushSessionIDs(log []string, ids []string, max int) []string {
	for _, id := range ids {
		log = pushSessionID(log, id, max)
	}
	return log
}

func pushSessionID(log []string, id string, max int) []string {
	if id == "" {
		return log
	}
	for _, existing := range log {
		if existing == id {
			return log
		}
	}
	out := append([]string{id}, log...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// memberRecentWindow and councilRecentWindow return the set of session ids
// within the most-recent-RecentSessionWindow entries of a digest, used by
// Snapshot to decide which records still "fade in" to a prompt.
func (s *Store) memberRecentWindow(memberID string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recentWindowSet(s.memberSessionLogs[memberID])
}

func (s *Store) councilRecentWindow() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recentWindowSet(s.councilSessionLog)
}

func recentWindowSet(log []string) map[string]bool {
	window := make(map[string]bool, RecentSessionWindow)
	for i, id := range log {
		if i >= RecentSessionWindow {
			break
		}
		window[id] = true
	}
	return window
}

func (s *Store) memberJSONPath(memberID string) string {
	return filepath.Join(s.memoryDir, memberID, "MEMORY.json")
}

func (s *Store) memberMDPath(memberID string) string {
	return filepath.Join(s.memoryDir, memberID, "MEMORY.md")
}

func (s *Store) councilJSONPath() string {
	return filepath.Join(s.memoryDir, "COUNCIL.json")
}

func (s *Store) councilMDPath() string {
	return filepath.Join(s.memoryDir, "COUNCIL.md")
}
