// Package council holds the session-scoped runtime entities the
// orchestrator, phase runner, and documentation loop operate on: motions,
// ballots, the event taxonomy, the leader summary, and memory records.
// None of these types perform I/O; persistence lives in pkg/eventlog and
// pkg/memory.
package council

import (
	"time"

	"github.com/codeready-toolchain/council/pkg/vote"
)

// EventType is the closed set of protocol records the event log accepts.
// Modeled as a discriminated enum, the same way tarsy's pkg/events
// enumerates its timeline event types.
type EventType string

const (
	EventLeaderElectionBallot EventType = "LEADER_ELECTION_BALLOT"
	EventLeaderElected        EventType = "LEADER_ELECTED"

	EventRoundStarted       EventType = "ROUND_STARTED"
	EventTurnAction         EventType = "TURN_ACTION"
	EventMessageContributed EventType = "MESSAGE_CONTRIBUTED"
	EventPassRecorded       EventType = "PASS_RECORDED"

	EventMotionCalled      EventType = "MOTION_CALLED"
	EventSecondingResponse EventType = "SECONDING_RESPONSE"
	EventMotionNotSeconded EventType = "MOTION_NOT_SECONDED"
	EventMotionSeconded    EventType = "MOTION_SECONDED"

	EventVoteCast   EventType = "VOTE_CAST"
	EventVoteResult EventType = "VOTE_RESULT"

	EventRoundLimitReached EventType = "ROUND_LIMIT_REACHED"
	EventPhaseCompleted    EventType = "PASS_COMPLETED"

	EventDocumentDraftWritten         EventType = "DOCUMENT_DRAFT_WRITTEN"
	EventDocumentRevisionWritten      EventType = "DOCUMENT_REVISION_WRITTEN"
	EventDocumentApprovalVoteCalled   EventType = "DOCUMENT_APPROVAL_VOTE_CALLED"
	EventDocumentApprovalVoteResult   EventType = "DOCUMENT_APPROVAL_VOTE_RESULT"

	EventSessionClosed EventType = "SESSION_CLOSED"
)

// Event is one ordered protocol record. ID is assigned by the emitter from
// the session's IDGenerator.NextEventID and is strictly monotonic within a
// session; the event log stores it as given. Payload holds one of the typed
// payload structs from payloads.go (never a raw map), marshalled to JSON by
// pkg/eventlog.
type Event struct {
	ID         int64
	SessionID  string
	Timestamp  time.Time
	PhaseState string // current sub-state tag: DISCUSSION, SECONDING, VOTING
	Type       EventType
	Round      int
	TurnIndex  int
	ActorID    string // optional; empty when the event has no single actor
	Payload    any
}

// Motion is a proposal introduced by a CALL_VOTE action. It resolves within
// the turn that called it.
type Motion struct {
	ID             string
	Title          string
	Text           string
	DecisionIfPass string
	ProposerID     string
	Round          int
	TurnIndex      int
}

// Ballot is one member's vote on a motion, including the rationale the
// model gave for it. vote.Ballot (the pure-arithmetic package) only carries
// what Compute needs; this carries what the event log and prompts need.
type Ballot struct {
	MemberID  string
	Choice    vote.Choice
	Rationale string
}

// ToVoteBallots strips rationale, producing the input pkg/vote.Compute
// expects.
func ToVoteBallots(ballots []Ballot) []vote.Ballot {
	out := make([]vote.Ballot, len(ballots))
	for i, b := range ballots {
		out[i] = vote.Ballot{MemberID: b.MemberID, Choice: b.Choice}
	}
	return out
}

// LeaderSummary is the leader's closing statement, produced once after all
// phases complete.
type LeaderSummary struct {
	SummaryMarkdown   string
	FinalResolution   string
	RequiresExecution bool
	ExecutionBrief    string // empty when RequiresExecution is false
}

// MemoryRecordKind is the closed set of memory record categories.
type MemoryRecordKind string

const (
	MemoryKindPreference  MemoryRecordKind = "preference"
	MemoryKindConstraint  MemoryRecordKind = "constraint"
	MemoryKindDecision    MemoryRecordKind = "decision"
	MemoryKindAssumption  MemoryRecordKind = "assumption"
	MemoryKindRiskPattern MemoryRecordKind = "risk_pattern"
	MemoryKindLesson      MemoryRecordKind = "lesson"
	MemoryKindOpenLoop    MemoryRecordKind = "open_loop"
	MemoryKindOutcome     MemoryRecordKind = "outcome"
)

// IsValid reports whether the kind is one of the recognized values.
func (k MemoryRecordKind) IsValid() bool {
	switch k {
	case MemoryKindPreference, MemoryKindConstraint, MemoryKindDecision,
		MemoryKindAssumption, MemoryKindRiskPattern, MemoryKindLesson,
		MemoryKindOpenLoop, MemoryKindOutcome:
		return true
	default:
		return false
	}
}

// MemoryRecordStatus tracks a record's lifecycle.
type MemoryRecordStatus string

const (
	MemoryStatusActive     MemoryRecordStatus = "active"
	MemoryStatusResolved   MemoryRecordStatus = "resolved"
	MemoryStatusSuperseded MemoryRecordStatus = "superseded"
	MemoryStatusStale      MemoryRecordStatus = "stale"
)

// MemoryRecord is a durable per-member (or council-wide) knowledge item,
// upserted at session close and bounded by a prune policy (pkg/memory).
type MemoryRecord struct {
	ID          string
	Kind        MemoryRecordKind
	Status      MemoryRecordStatus
	Summary     string
	Importance  int // 1–5
	Confidence  float64 // [0,1]
	EvidenceRefs []string // session ids this record's evidence comes from
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PhaseResult is what pkg/phaserunner returns after driving one phase to
// completion.
type PhaseResult struct {
	PhaseID         string
	PhaseGoal       string
	EndedBy         string // "MAJORITY_VOTE" or "ROUND_LIMIT"
	FinalResolution string
	WinningMotion   *Motion // nil unless EndedBy == "MAJORITY_VOTE"
	RoundsCompleted int
	// FallbackMembers lists, in first-triggered order and without
	// duplicates, every member whose turn/seconding/vote response required
	// the deterministic JSON parse-fallback path during this phase. Feeds
	// pkg/memory's session-close risk_pattern record (spec §4.2).
	FallbackMembers []string
	// LastMessageByMember is each member's most recent CONTRIBUTE message
	// text during this phase, if any. Feeds pkg/memory's per-member stance
	// record at session close (spec §4.2).
	LastMessageByMember map[string]string
}

// ExecutionHandoff is the descriptor written when the leader summary
// declares the outcome executable.
type ExecutionHandoff struct {
	SessionID              string
	Approved               bool
	ApprovalRequired       bool
	DefaultExecutorProfile string
	MotionID               string // empty if no winning motion backs the handoff
	LeaderID               string
	ExecutionBrief         string
}

// SessionResult is the top-level return value of Orchestrator.Run: a
// synthesis of everything the session produced.
type SessionResult struct {
	SessionID       string
	LeaderID        string
	PhaseResults    []PhaseResult
	EndedBy         string
	FinalResolution string
	DocumentApproved *bool // nil unless output.type == documentation
	ExecutionHandoff *ExecutionHandoff
	ArtifactPaths   map[string]string
}
