package council

import "github.com/codeready-toolchain/council/pkg/vote"

// Event payload types, one per EventType. Payload is checked at compile
// time by whichever package constructs the Event (pkg/phaserunner,
// pkg/docloop, pkg/orchestrator); pkg/eventlog type-switches over these to
// render the human-readable transcript. Grounded on tarsy's
// pkg/events/payloads.go (one payload struct per event type, JSON tags for
// the wire shape).

// LeaderElectionBallotPayload is the payload for EventLeaderElectionBallot.
type LeaderElectionBallotPayload struct {
	CandidateID string `json:"candidateId"`
	Rationale   string `json:"rationale"`
}

// LeaderElectedPayload is the payload for EventLeaderElected.
type LeaderElectedPayload struct {
	LeaderID string `json:"leaderId"`
}

// RoundStartedPayload is the payload for EventRoundStarted.
type RoundStartedPayload struct {
	PhaseID string `json:"phaseId"`
	Round   int    `json:"round"`
}

// TurnActionPayload is the payload for EventTurnAction.
type TurnActionPayload struct {
	Action         string `json:"action"`
	Message        string `json:"message,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Note           string `json:"note,omitempty"`
	MotionTitle    string `json:"motionTitle,omitempty"`
	MotionText     string `json:"motionText,omitempty"`
	DecisionIfPass string `json:"decisionIfPass,omitempty"`
}

// MessageContributedPayload is the payload for EventMessageContributed.
type MessageContributedPayload struct {
	Message string `json:"message"`
}

// PassRecordedPayload is the payload for EventPassRecorded.
type PassRecordedPayload struct {
	Reason string `json:"reason"`
	Note   string `json:"note,omitempty"`
}

// MotionCalledPayload is the payload for EventMotionCalled.
type MotionCalledPayload struct {
	Motion Motion `json:"motion"`
}

// SecondingResponsePayload is the payload for EventSecondingResponse.
type SecondingResponsePayload struct {
	MotionID  string `json:"motionId"`
	Second    bool   `json:"second"`
	Rationale string `json:"rationale"`
}

// MotionNotSecondedPayload is the payload for EventMotionNotSeconded.
type MotionNotSecondedPayload struct {
	MotionID string `json:"motionId"`
}

// MotionSecondedPayload is the payload for EventMotionSeconded.
type MotionSecondedPayload struct {
	MotionID   string `json:"motionId"`
	SeconderID string `json:"seconderId"`
}

// VoteCastPayload is the payload for EventVoteCast.
type VoteCastPayload struct {
	MotionID  string      `json:"motionId"`
	Choice    vote.Choice `json:"choice"`
	Rationale string      `json:"rationale"`
}

// VoteResultPayload is the payload for EventVoteResult.
type VoteResultPayload struct {
	MotionID          string  `json:"motionId"`
	Passed            bool    `json:"passed"`
	YesVotes          int     `json:"yesVotes"`
	NoVotesEffective  int     `json:"noVotesEffective"`
	TotalCouncilSize  int     `json:"totalCouncilSize"`
	MajorityThreshold float64 `json:"majorityThreshold"`
}

// RoundLimitReachedPayload is the payload for EventRoundLimitReached.
type RoundLimitReachedPayload struct {
	PhaseID           string `json:"phaseId"`
	FallbackAction    string `json:"fallbackAction"`
	FallbackResolution string `json:"fallbackResolution"`
}

// PhaseCompletedPayload is the payload for EventPhaseCompleted.
type PhaseCompletedPayload struct {
	EndedBy         string `json:"endedBy"`
	FinalResolution string `json:"finalResolution"`
}

// DocumentDraftWrittenPayload is the payload for EventDocumentDraftWritten.
type DocumentDraftWrittenPayload struct {
	Path     string `json:"path"`
	Revision int    `json:"revision"`
}

// DocumentRevisionWrittenPayload is the payload for EventDocumentRevisionWritten.
type DocumentRevisionWrittenPayload struct {
	Path     string `json:"path"`
	Revision int    `json:"revision"`
}

// DocumentApprovalVoteCalledPayload is the payload for EventDocumentApprovalVoteCalled.
type DocumentApprovalVoteCalledPayload struct {
	Revision int `json:"revision"`
}

// DocumentApprovalVoteResultPayload is the payload for EventDocumentApprovalVoteResult.
type DocumentApprovalVoteResultPayload struct {
	Revision         int  `json:"revision"`
	Passed           bool `json:"passed"`
	YesVotes         int  `json:"yesVotes"`
	NoVotesEffective int  `json:"noVotesEffective"`
	TotalCouncilSize int  `json:"totalCouncilSize"`
}

// SessionClosedPayload is the payload for EventSessionClosed.
type SessionClosedPayload struct {
	EndedBy         string `json:"endedBy"`
	FinalResolution string `json:"finalResolution"`
}
