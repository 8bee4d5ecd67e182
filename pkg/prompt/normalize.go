package prompt

import (
	"fmt"

	"github.com/codeready-toolchain/council/pkg/modelclient"
)

// fallbackNote is attached to every deterministically-synthesized PASS, per
// spec §4.3's exact fallback contract.
const fallbackNote = "Auto-converted to PASS to preserve deterministic flow."

// rawTurnAction is the wire shape a member's turn-prompt JSON response must
// match before normalization.
type rawTurnAction struct {
	Action         string `json:"action"`
	Message        string `json:"message,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Note           string `json:"note,omitempty"`
	Title          string `json:"title,omitempty"`
	Text           string `json:"text,omitempty"`
	DecisionIfPass string `json:"decisionIfPass,omitempty"`
}

// NormalizeTurnAction maps a decoded response (or a parse-error envelope)
// into a TurnAction. The second return value is true whenever the
// deterministic fallback path was taken — callers use this to drive the
// session-close risk_pattern:parse_fallback memory record (spec §4.2).
func NormalizeTurnAction(raw *rawTurnAction, envelope *modelclient.ParseErrorEnvelope) (TurnAction, bool) {
	if envelope != nil {
		return fallbackTurnAction(fmt.Sprintf("Model JSON parse error: %s", envelope.Message)), true
	}

	switch TurnActionKind(raw.Action) {
	case ActionContribute:
		if raw.Message == "" {
			return fallbackTurnAction("Invalid response format: CONTRIBUTE requires a non-empty message"), true
		}
		return TurnAction{Kind: ActionContribute, Message: raw.Message}, false

	case ActionPass:
		reason := raw.Reason
		if reason == "" {
			reason = "No reason given"
		}
		return TurnAction{Kind: ActionPass, Reason: reason, Note: raw.Note}, false

	case ActionCallVote:
		if raw.Title == "" || raw.Text == "" || raw.DecisionIfPass == "" {
			return fallbackTurnAction("Invalid response format: CALL_VOTE requires title, text, and decisionIfPass"), true
		}
		return TurnAction{
			Kind:           ActionCallVote,
			MotionTitle:    raw.Title,
			MotionText:     raw.Text,
			DecisionIfPass: raw.DecisionIfPass,
		}, false

	default:
		return fallbackTurnAction(fmt.Sprintf("Invalid response format: unrecognized action %q", raw.Action)), true
	}
}

func fallbackTurnAction(reason string) TurnAction {
	return TurnAction{Kind: ActionPass, Reason: reason, Note: fallbackNote}
}

// rawSecondingResponse is the wire shape for a seconding-prompt response.
type rawSecondingResponse struct {
	Second    bool   `json:"second"`
	Rationale string `json:"rationale"`
}

// NormalizeSecondingResponse maps a decoded response (or envelope) into a
// SecondingResponse; fallback is {second: false, rationale: "...parse error..."}.
func NormalizeSecondingResponse(raw *rawSecondingResponse, envelope *modelclient.ParseErrorEnvelope) (SecondingResponse, bool) {
	if envelope != nil {
		return SecondingResponse{
			Second:    false,
			Rationale: fmt.Sprintf("Model JSON parse error: %s", envelope.Message),
		}, true
	}
	return SecondingResponse{Second: raw.Second, Rationale: raw.Rationale}, false
}

// rawVoteResponse is the wire shape for a voting-prompt response.
type rawVoteResponse struct {
	Ballot    string `json:"ballot"`
	Rationale string `json:"rationale"`
}

// NormalizeVoteResponse maps a decoded response (or envelope) into a
// VoteResponse; fallback is {ballot: ABSTAIN, rationale: "...parse error..."}.
// An unrecognized ballot value is treated the same as a parse failure.
func NormalizeVoteResponse(raw *rawVoteResponse, envelope *modelclient.ParseErrorEnvelope) (VoteResponse, bool) {
	if envelope != nil {
		return fallbackVoteResponse(fmt.Sprintf("Model JSON parse error: %s", envelope.Message)), true
	}

	choice := BallotChoice(raw.Ballot)
	switch choice {
	case BallotYes, BallotNo, BallotAbstain:
		return VoteResponse{Ballot: choice, Rationale: raw.Rationale}, false
	default:
		return fallbackVoteResponse(fmt.Sprintf("Invalid response format: unrecognized ballot %q", raw.Ballot)), true
	}
}

func fallbackVoteResponse(reason string) VoteResponse {
	return VoteResponse{Ballot: BallotAbstain, Rationale: reason}
}

// rawLeaderElectionBallot is the wire shape for a leader-election response.
type rawLeaderElectionBallot struct {
	CandidateID string `json:"candidateId"`
	Rationale   string `json:"rationale"`
}

// NormalizeLeaderElectionBallot maps a decoded response (or envelope) into a
// LeaderElectionBallot. memberDeclarationOrder must be the council's
// declared member ids in order; on fallback the first declared member wins
// the ballot, per spec §4.3.
func NormalizeLeaderElectionBallot(raw *rawLeaderElectionBallot, envelope *modelclient.ParseErrorEnvelope, memberDeclarationOrder []string) (LeaderElectionBallot, bool) {
	if envelope != nil {
		return fallbackLeaderBallot(memberDeclarationOrder, fmt.Sprintf("Model JSON parse error: %s", envelope.Message)), true
	}
	if raw.CandidateID == "" {
		return fallbackLeaderBallot(memberDeclarationOrder, "Invalid response format: candidateId must not be empty"), true
	}
	return LeaderElectionBallot{CandidateID: raw.CandidateID, Rationale: raw.Rationale}, false
}

func fallbackLeaderBallot(memberDeclarationOrder []string, reason string) LeaderElectionBallot {
	var first string
	if len(memberDeclarationOrder) > 0 {
		first = memberDeclarationOrder[0]
	}
	return LeaderElectionBallot{CandidateID: first, Rationale: reason}
}

// rawLeaderSummary is the wire shape for a leader-summary response.
type rawLeaderSummary struct {
	SummaryMarkdown   string `json:"summaryMarkdown"`
	FinalResolution   string `json:"finalResolution"`
	RequiresExecution bool   `json:"requiresExecution"`
	ExecutionBrief    string `json:"executionBrief,omitempty"`
}

// LeaderSummary is a normalized response to the leader-summary prompt.
type LeaderSummary struct {
	SummaryMarkdown   string
	FinalResolution   string
	RequiresExecution bool
	ExecutionBrief    string
}

// NormalizeLeaderSummary maps a decoded response (or envelope) into a
// LeaderSummary. On parse failure the summary falls back to the session's
// own final resolution text, with execution never requested — an
// unsynthesizable summary must never silently trigger an execution handoff.
func NormalizeLeaderSummary(raw *rawLeaderSummary, envelope *modelclient.ParseErrorEnvelope, fallbackResolution string) (LeaderSummary, bool) {
	if envelope != nil {
		return LeaderSummary{
			SummaryMarkdown: fmt.Sprintf("Model JSON parse error: %s", envelope.Message),
			FinalResolution: fallbackResolution,
		}, true
	}
	return LeaderSummary{
		SummaryMarkdown:   raw.SummaryMarkdown,
		FinalResolution:   raw.FinalResolution,
		RequiresExecution: raw.RequiresExecution,
		ExecutionBrief:    raw.ExecutionBrief,
	}, false
}

// synthenticBlockerID is inserted when a reviewer's feedback response is
// unparseable, so the leader still observes a deficit instead of silently
// losing that reviewer's input (spec §4.6).
const synthenticBlockerID = "B0"

const maxCriticalBlockers = 5
const maxSuggestedChanges = 6

// rawCriticalBlocker is the wire shape for one feedback-document blocker.
type rawCriticalBlocker struct {
	ID             string `json:"id"`
	Section        string `json:"section"`
	Problem        string `json:"problem"`
	Impact         string `json:"impact"`
	RequiredChange string `json:"requiredChange"`
	Severity       string `json:"severity"`
}

// rawFeedbackDocument is the wire shape for a documentation-review feedback
// response.
type rawFeedbackDocument struct {
	CriticalBlockers  []rawCriticalBlocker `json:"criticalBlockers"`
	SuggestedChanges []string             `json:"suggestedChanges"`
}

// NormalizeFeedbackDocument maps a decoded response (or envelope) into a
// FeedbackDocument. Malformed blocker entries (missing id or problem) are
// dropped. On parse failure a synthetic blocker with id "B0" is inserted so
// the leader still sees that this reviewer's feedback is missing, per spec
// §4.6. Entries beyond the field caps are dropped, not truncated silently —
// callers that need to know about drops should compare input/output length.
func NormalizeFeedbackDocument(raw *rawFeedbackDocument, envelope *modelclient.ParseErrorEnvelope) (FeedbackDocument, bool) {
	if envelope != nil {
		return FeedbackDocument{
			CriticalBlockers: []CriticalBlocker{{
				ID:      synthenticBlockerID,
				Problem: fmt.Sprintf("Model JSON parse error: %s", envelope.Message),
			}},
		}, true
	}

	blockers := make([]CriticalBlocker, 0, len(raw.CriticalBlockers))
	for _, b := range raw.CriticalBlockers {
		if b.ID == "" || b.Problem == "" {
			continue
		}
		if len(blockers) >= maxCriticalBlockers {
			break
		}
		blockers = append(blockers, CriticalBlocker{
			ID:             b.ID,
			Section:        b.Section,
			Problem:        b.Problem,
			Impact:         b.Impact,
			RequiredChange: b.RequiredChange,
			Severity:       b.Severity,
		})
	}

	changes := raw.SuggestedChanges
	if len(changes) > maxSuggestedChanges {
		changes = changes[:maxSuggestedChanges]
	}

	return FeedbackDocument{CriticalBlockers: blockers, SuggestedChanges: changes}, false
}
