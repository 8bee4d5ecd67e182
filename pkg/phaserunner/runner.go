// Package phaserunner drives one phase of a council session: the per-turn
// DISCUSSION/SECONDING/VOTING state machine described in spec §4.4. It is
// the only package that calls into modelclient.ModelClient during a phase
// and performs two of the three bounded fan-outs (seconding and voting; the
// third, leader election, is a session-level concern handled the same way
// by pkg/orchestrator) the spec calls out as needing deterministic
// reordering before any event is emitted.
package phaserunner

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/eventlog"
	"github.com/codeready-toolchain/council/pkg/memory"
	"github.com/codeready-toolchain/council/pkg/modelclient"
	"github.com/codeready-toolchain/council/pkg/prompt"
	"github.com/codeready-toolchain/council/pkg/transition"
)

// maxTranscriptWindow bounds how many recent transcript entries are
// injected into a turn prompt. The full transcript already lives in
// transcript.md; the prompt only needs enough recent context to keep a
// member's next contribution coherent.
const maxTranscriptWindow = 20

// Clients resolves a member id to the ModelClient that answers its prompts.
type Clients map[string]modelclient.ModelClient

// Deps bundles the session-scoped collaborators a Runner needs.
// pkg/orchestrator builds one Deps per phase from the same session-scoped
// values.
type Deps struct {
	Identity      prompt.CouncilIdentity
	Members       *config.MemberRegistry
	PhaseRegistry *config.PhaseRegistry
	Clients       Clients
	Log           *eventlog.Log
	IDs           council.IDGenerator
	Clock         council.Clock
	MemoryStore   *memory.Store
	Verbosity     config.PhaseContextVerbosity
	CompleteOpts  modelclient.CompleteOptions
}

// Runner drives a single phase from its first round to either a passing
// motion or round-limit exhaustion.
type Runner struct {
	deps      Deps
	phase     *config.PhaseConfig
	turnOrder []string
	sessionID string
	turnIndex *int // shared counter across every phase in the session

	transcript    []prompt.TranscriptEntry
	fallbackSeen  map[string]bool
	fallbackOrder []string
}

// New builds a Runner for one phase. turnIndex is a pointer to the
// session-wide turn counter (pkg/orchestrator owns it and passes the same
// pointer to every phase's Runner, so turn numbers stay monotonic across
// phase boundaries).
func New(deps Deps, phase *config.PhaseConfig, turnOrder []string, sessionID string, turnIndex *int) *Runner {
	return &Runner{
		deps:      deps,
		phase:     phase,
		turnOrder: turnOrder,
		sessionID: sessionID,
		turnIndex: turnIndex,
	}
}

// Run drives the phase to completion: either a majority-vote close or
// round-limit exhaustion, per spec §4.4's round loop.
func (r *Runner) Run(ctx context.Context) (council.PhaseResult, error) {
	maxRounds := r.phase.StopConditions.MaxRounds
	result := council.PhaseResult{PhaseID: r.phase.ID, PhaseGoal: r.phase.Goal}

	for round := 1; round <= maxRounds; round++ {
		if err := r.emit(round, 0, "", council.EventRoundStarted, "", council.RoundStartedPayload{
			PhaseID: r.phase.ID, Round: round,
		}); err != nil {
			return council.PhaseResult{}, err
		}

		closed, err := r.runRound(ctx, round, maxRounds, &result)
		if err != nil {
			return council.PhaseResult{}, err
		}
		result.RoundsCompleted = round
		if closed {
			result.FallbackMembers = r.fallbackOrder
			return result, nil
		}
	}

	return r.terminateByRoundLimit(result)
}

// noteFallback records, the first time it's seen, that memberID required
// the deterministic JSON parse-fallback path during this phase — feeds the
// session-close risk_pattern memory record (spec §4.2).
func (r *Runner) noteFallback(memberID string, usedFallback bool) {
	if !usedFallback {
		return
	}
	if r.fallbackSeen == nil {
		r.fallbackSeen = make(map[string]bool)
	}
	if !r.fallbackSeen[memberID] {
		r.fallbackSeen[memberID] = true
		r.fallbackOrder = append(r.fallbackOrder, memberID)
	}
}

// runRound drives every speaker's turn for one round in turn order. It
// returns closed=true if a motion passed and the phase's stop condition
// says to end the phase immediately.
func (r *Runner) runRound(ctx context.Context, round, maxRounds int, result *council.PhaseResult) (bool, error) {
	for _, memberID := range r.turnOrder {
		*r.turnIndex++

		action, err := r.takeTurn(ctx, memberID, round, maxRounds)
		if err != nil {
			return false, err
		}

		switch action.Kind {
		case prompt.ActionContribute:
			if err := r.emit(round, *r.turnIndex, memberID, council.EventMessageContributed, "", council.MessageContributedPayload{
				Message: action.Message,
			}); err != nil {
				return false, err
			}
			r.appendTranscript(round, memberID, "CONTRIBUTE", action.Message)
			if result.LastMessageByMember == nil {
				result.LastMessageByMember = make(map[string]string)
			}
			result.LastMessageByMember[memberID] = action.Message

		case prompt.ActionPass:
			if err := r.emit(round, *r.turnIndex, memberID, council.EventPassRecorded, "", council.PassRecordedPayload{
				Reason: action.Reason, Note: action.Note,
			}); err != nil {
				return false, err
			}
			r.appendTranscript(round, memberID, "PASS", action.Reason)

		case prompt.ActionCallVote:
			closed, err := r.runMotion(ctx, memberID, round, action, result)
			if err != nil {
				return false, err
			}
			if closed {
				return true, nil
			}
		}
	}
	return false, nil
}

// takeTurn builds the turn prompt for memberID, calls its model, and emits
// TURN_ACTION. It returns the normalized action for the caller to branch on.
func (r *Runner) takeTurn(ctx context.Context, memberID string, round, maxRounds int) (prompt.TurnAction, error) {
	member, err := r.deps.Members.Get(memberID)
	if err != nil {
		return prompt.TurnAction{}, err
	}
	client, err := r.clientFor(memberID)
	if err != nil {
		return prompt.TurnAction{}, err
	}

	tctx := r.turnContext(round, maxRounds, memberID)
	packet := transition.BuildPacket(r.phase, r.deps.PhaseRegistry, round, maxRounds, nil, r.deps.Verbosity)
	system, user := prompt.BuildTurnPrompt(r.deps.Identity, member, r.phase, packet, tctx)

	action, usedFallback, err := prompt.RequestTurnAction(ctx, client, system, user, r.deps.CompleteOpts)
	if err != nil {
		return prompt.TurnAction{}, fmt.Errorf("phaserunner: turn action for %s: %w", memberID, err)
	}
	r.noteFallback(memberID, usedFallback)

	if err := r.emit(round, *r.turnIndex, memberID, council.EventTurnAction, "", council.TurnActionPayload{
		Action: string(action.Kind), Message: action.Message, Reason: action.Reason, Note: action.Note,
		MotionTitle: action.MotionTitle, MotionText: action.MotionText, DecisionIfPass: action.DecisionIfPass,
	}); err != nil {
		return prompt.TurnAction{}, err
	}

	return action, nil
}

// terminateByRoundLimit closes the phase out when the round loop exhausts
// without a passing motion, per spec §4.4's phase-termination step.
func (r *Runner) terminateByRoundLimit(result council.PhaseResult) (council.PhaseResult, error) {
	if err := r.emit(result.RoundsCompleted, *r.turnIndex, "", council.EventRoundLimitReached, "", council.RoundLimitReachedPayload{
		PhaseID:            r.phase.ID,
		FallbackAction:     string(r.phase.Fallback.Action),
		FallbackResolution: r.phase.Fallback.Resolution,
	}); err != nil {
		return council.PhaseResult{}, err
	}

	result.EndedBy = "ROUND_LIMIT"
	result.FinalResolution = r.phase.Fallback.Resolution
	result.FallbackMembers = r.fallbackOrder

	if err := r.emit(result.RoundsCompleted, *r.turnIndex, "", council.EventPhaseCompleted, "", council.PhaseCompletedPayload{
		EndedBy: result.EndedBy, FinalResolution: result.FinalResolution,
	}); err != nil {
		return council.PhaseResult{}, err
	}

	return result, nil
}

func (r *Runner) clientFor(memberID string) (modelclient.ModelClient, error) {
	client, ok := r.deps.Clients[memberID]
	if !ok {
		return nil, fmt.Errorf("phaserunner: no model client configured for member %q", memberID)
	}
	return client, nil
}

// turnContext assembles the TurnContext for one member's prompt: the
// windowed transcript, remaining-turns-for-this-speaker, and — if the
// phase's memory policy allows it — that member's and the council's memory
// snapshot.
func (r *Runner) turnContext(round, maxRounds int, memberID string) prompt.TurnContext {
	tctx := prompt.TurnContext{
		Round:          round,
		RemainingTurns: maxRounds - round + 1,
		Transcript:     r.windowedTranscript(),
	}
	if r.deps.MemoryStore != nil && r.phase.MemoryPolicy.ReadMemberMemory {
		memberText, councilText := r.deps.MemoryStore.Snapshot(memberID)
		tctx.MemberMemoryText = memberText
		tctx.CouncilMemoryText = councilText
	}
	return tctx
}

func (r *Runner) windowedTranscript() []prompt.TranscriptEntry {
	if len(r.transcript) <= maxTranscriptWindow {
		return r.transcript
	}
	return r.transcript[len(r.transcript)-maxTranscriptWindow:]
}

func (r *Runner) appendTranscript(round int, memberID, label, content string) {
	member, err := r.deps.Members.Get(memberID)
	name := memberID
	if err == nil {
		name = member.Name
	}
	r.transcript = append(r.transcript, prompt.TranscriptEntry{
		Round: round, ActorID: memberID, ActorName: name, Label: label, Content: content,
	})
}

// emit constructs an Event with a fresh id and timestamp and appends it to
// the session log.
func (r *Runner) emit(round, turnIndex int, actorID string, eventType council.EventType, phaseState string, payload any) error {
	ev := council.Event{
		ID:         r.deps.IDs.NextEventID(),
		SessionID:  r.sessionID,
		Timestamp:  r.deps.Clock.Now(),
		PhaseState: phaseState,
		Type:       eventType,
		Round:      round,
		TurnIndex:  turnIndex,
		ActorID:    actorID,
		Payload:    payload,
	}
	if err := r.deps.Log.Append(ev); err != nil {
		return fmt.Errorf("phaserunner: append event %s: %w", eventType, err)
	}
	return nil
}
