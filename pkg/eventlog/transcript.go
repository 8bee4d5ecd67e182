package eventlog

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/council/pkg/council"
)

// renderTranscript renders the full human-readable transcript from the
// events appended so far. Rewritten whole on every Append — simpler and
// just as crash-consistent as append-in-place for this log's scale, and it
// keeps rendering logic in one deterministic pass over the known payload
// types (spec §4.8: "rewrite-whole-file or append semantics, deterministic").
func renderTranscript(events []council.Event) string {
	var sb strings.Builder
	sb.WriteString("# Session Transcript\n\n")

	for _, ev := range events {
		line := renderLine(ev)
		if line == "" {
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", line)
	}

	return sb.String()
}

func renderLine(ev council.Event) string {
	prefix := fmt.Sprintf("[%s round=%d turn=%d]", ev.Type, ev.Round, ev.TurnIndex)

	switch payload := ev.Payload.(type) {
	case council.RoundStartedPayload:
		return fmt.Sprintf("%s Round %d begins in phase `%s`", prefix, payload.Round, payload.PhaseID)
	case council.TurnActionPayload:
		return fmt.Sprintf("%s %s: action=%s %s", prefix, ev.ActorID, payload.Action, summarizeTurnAction(payload))
	case council.MessageContributedPayload:
		return fmt.Sprintf("%s %s says: %s", prefix, ev.ActorID, payload.Message)
	case council.PassRecordedPayload:
		return fmt.Sprintf("%s %s passes: %s", prefix, ev.ActorID, payload.Reason)
	case council.MotionCalledPayload:
		return fmt.Sprintf("%s %s calls motion %q: %s", prefix, ev.ActorID, payload.Motion.Title, payload.Motion.Text)
	case council.SecondingResponsePayload:
		return fmt.Sprintf("%s %s seconding=%t: %s", prefix, ev.ActorID, payload.Second, payload.Rationale)
	case council.MotionNotSecondedPayload:
		return fmt.Sprintf("%s motion %s failed to find a seconder", prefix, payload.MotionID)
	case council.MotionSecondedPayload:
		return fmt.Sprintf("%s motion %s seconded by %s", prefix, payload.MotionID, payload.SeconderID)
	case council.VoteCastPayload:
		return fmt.Sprintf("%s %s votes %s: %s", prefix, ev.ActorID, payload.Choice, payload.Rationale)
	case council.VoteResultPayload:
		return fmt.Sprintf("%s motion %s: passed=%t (yes=%d required-denominator=%d threshold=%.2f)",
			prefix, payload.MotionID, payload.Passed, payload.YesVotes, payload.TotalCouncilSize, payload.MajorityThreshold)
	case council.RoundLimitReachedPayload:
		return fmt.Sprintf("%s phase `%s` exhausted its round limit; fallback=%s", prefix, payload.PhaseID, payload.FallbackAction)
	case council.PhaseCompletedPayload:
		return fmt.Sprintf("%s phase completed: endedBy=%s resolution=%s", prefix, payload.EndedBy, payload.FinalResolution)
	case council.LeaderElectionBallotPayload:
		return fmt.Sprintf("%s %s nominates %s: %s", prefix, ev.ActorID, payload.CandidateID, payload.Rationale)
	case council.LeaderElectedPayload:
		return fmt.Sprintf("%s leader elected: %s", prefix, payload.LeaderID)
	case council.DocumentDraftWrittenPayload:
		return fmt.Sprintf("%s documentation draft v%d written to %s", prefix, payload.Revision, payload.Path)
	case council.DocumentRevisionWrittenPayload:
		return fmt.Sprintf("%s documentation revision v%d written to %s", prefix, payload.Revision, payload.Path)
	case council.DocumentApprovalVoteCalledPayload:
		return fmt.Sprintf("%s documentation approval vote called for v%d", prefix, payload.Revision)
	case council.DocumentApprovalVoteResultPayload:
		return fmt.Sprintf("%s documentation v%d approval: passed=%t (yes=%d/%d)", prefix, payload.Revision, payload.Passed, payload.YesVotes, payload.TotalCouncilSize)
	case council.SessionClosedPayload:
		return fmt.Sprintf("%s session closed: endedBy=%s resolution=%s", prefix, payload.EndedBy, payload.FinalResolution)
	default:
		return fmt.Sprintf("%s (no renderer for payload type %T)", prefix, ev.Payload)
	}
}

func summarizeTurnAction(p council.TurnActionPayload) string {
	switch p.Action {
	case "CONTRIBUTE":
		return p.Message
	case "PASS":
		if p.Note != "" {
			return fmt.Sprintf("%s (%s)", p.Reason, p.Note)
		}
		return p.Reason
	case "CALL_VOTE":
		return fmt.Sprintf("%q", p.MotionTitle)
	default:
		return ""
	}
}
