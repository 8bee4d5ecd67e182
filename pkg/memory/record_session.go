package memory

import (
	"fmt"
	"time"

	"github.com/codeready-toolchain/council/pkg/council"
)

// SessionOutcome bundles what pkg/orchestrator learned about one session —
// the input to RecordSession's upserts, per spec §4.2's recordSession(input)
// step invoked from the orchestrator's Finalize step (spec §4.1 step 6).
type SessionOutcome struct {
	SessionID         string
	EndedBy           string // "MAJORITY_VOTE" or "ROUND_LIMIT"
	FinalResolution   string
	MemberLastMessage map[string]string // last MESSAGE_CONTRIBUTED text per member, if any
	FallbackMembers   []string          // members with >=1 JSON parse-fallback turn this session
	RequiresExecution bool
	ApproveExecution  bool
	ExecutionBrief    string
	Now               time.Time
}

// RecordSession applies spec §4.2's five upserts at session close, each
// keyed by a stable record id so re-running a session's close (e.g. after a
// crash-and-resume) replaces rather than duplicates:
//
//  1. Always: a council decision record (`decision:<sessionId>`).
//  2. Per member with a contribution: a stance record
//     (`outcome:<sessionId>:<memberId>`).
//  3. Per member that used the JSON parse-fallback path: a persistent
//     reliability risk record (`risk_pattern:parse_fallback:<memberId>`),
//     plus one council-level cross-agent lesson for the session.
//  4. If the session ended by round limit: a council open_loop record.
//  5. If the leader summary declared requiresExecution: a council
//     execution outcome/open_loop record reflecting approveExecution.
func (s *Store) RecordSession(out SessionOutcome) error {
	if err := s.UpsertCouncil(council.MemoryRecord{
		ID:           "decision:" + out.SessionID,
		Kind:         council.MemoryKindDecision,
		Status:       council.MemoryStatusResolved,
		Summary:      out.FinalResolution,
		Importance:   5,
		Confidence:   0.9,
		EvidenceRefs: []string{out.SessionID},
		CreatedAt:    out.Now,
		UpdatedAt:    out.Now,
	}); err != nil {
		return fmt.Errorf("memory: record session decision: %w", err)
	}

	for memberID, message := range out.MemberLastMessage {
		if message == "" {
			continue
		}
		if err := s.UpsertMember(memberID, council.MemoryRecord{
			ID:           "outcome:" + out.SessionID + ":" + memberID,
			Kind:         council.MemoryKindOutcome,
			Status:       council.MemoryStatusResolved,
			Summary:      message,
			Importance:   2,
			Confidence:   0.7,
			EvidenceRefs: []string{out.SessionID},
			CreatedAt:    out.Now,
			UpdatedAt:    out.Now,
		}); err != nil {
			return fmt.Errorf("memory: record member stance for %s: %w", memberID, err)
		}
	}

	for _, memberID := range out.FallbackMembers {
		if err := s.UpsertMember(memberID, council.MemoryRecord{
			ID:           "risk_pattern:parse_fallback:" + memberID,
			Kind:         council.MemoryKindRiskPattern,
			Status:       council.MemoryStatusActive,
			Summary:      "Fell back to a deterministic default at least once after an unparsable model response.",
			Importance:   3,
			Confidence:   0.6,
			EvidenceRefs: []string{out.SessionID},
			CreatedAt:    out.Now,
			UpdatedAt:    out.Now,
		}); err != nil {
			return fmt.Errorf("memory: record fallback risk for %s: %w", memberID, err)
		}
	}
	if len(out.FallbackMembers) > 0 {
		if err := s.UpsertCouncil(council.MemoryRecord{
			ID:           "lesson:parse_fallback:" + out.SessionID,
			Kind:         council.MemoryKindLesson,
			Status:       council.MemoryStatusActive,
			Summary:      "One or more members required a deterministic fallback this session; watch for recurring JSON-format drift.",
			Importance:   2,
			Confidence:   0.6,
			EvidenceRefs: []string{out.SessionID},
			CreatedAt:    out.Now,
			UpdatedAt:    out.Now,
		}); err != nil {
			return fmt.Errorf("memory: record fallback lesson: %w", err)
		}
	}

	if out.EndedBy == "ROUND_LIMIT" {
		if err := s.UpsertCouncil(council.MemoryRecord{
			ID:           "open_loop:" + out.SessionID,
			Kind:         council.MemoryKindOpenLoop,
			Status:       council.MemoryStatusActive,
			Summary:      "Session ended by round limit without reaching consensus: " + out.FinalResolution,
			Importance:   4,
			Confidence:   0.8,
			EvidenceRefs: []string{out.SessionID},
			CreatedAt:    out.Now,
			UpdatedAt:    out.Now,
		}); err != nil {
			return fmt.Errorf("memory: record round-limit open loop: %w", err)
		}
	}

	if out.RequiresExecution {
		rec := council.MemoryRecord{
			ID:           "execution:" + out.SessionID,
			Summary:      out.ExecutionBrief,
			Importance:   3,
			Confidence:   1,
			EvidenceRefs: []string{out.SessionID},
			CreatedAt:    out.Now,
			UpdatedAt:    out.Now,
		}
		if out.ApproveExecution {
			rec.Kind = council.MemoryKindOutcome
			rec.Status = council.MemoryStatusResolved
		} else {
			rec.Kind = council.MemoryKindOpenLoop
			rec.Status = council.MemoryStatusActive
		}
		if err := s.UpsertCouncil(rec); err != nil {
			return fmt.Errorf("memory: record execution outcome: %w", err)
		}
	}

	return nil
}
