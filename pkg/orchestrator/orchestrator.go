// Package orchestrator drives one full council session from its first
// leader-election ballot to its final session.json synthesis: leader
// election, the phase sequence (via pkg/transition.Resolve), the leader's
// closing summary, an optional documentation review loop, and the
// execution-handoff gate. Grounded on tarsy's cmd/tarsy/main.go dependency
// wiring (every collaborator passed in via an Options/Deps struct, nothing
// package-global) and pkg/agent/orchestrator.SubAgentRunner for the
// dispatch-join-reorder-emit fan-out shape, reused here once for leader
// election.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/docloop"
	"github.com/codeready-toolchain/council/pkg/eventlog"
	"github.com/codeready-toolchain/council/pkg/memory"
	"github.com/codeready-toolchain/council/pkg/modelclient"
	"github.com/codeready-toolchain/council/pkg/phaserunner"
	"github.com/codeready-toolchain/council/pkg/prompt"
	"github.com/codeready-toolchain/council/pkg/transition"
)

// Clients resolves a member id to the ModelClient that answers its prompts.
type Clients map[string]modelclient.ModelClient

// Options bundles the I/O dependencies an Orchestrator needs beyond the
// council config and model clients — every one of them pluggable, the way
// tarsy's services take an *ent.Client, so deterministic replay tests
// (spec §8 property 5) never depend on wall-clock time or random ids.
type Options struct {
	IDs    council.IDGenerator
	Clock  council.Clock
	Logger *slog.Logger
}

// Orchestrator runs one session against a loaded council configuration.
type Orchestrator struct {
	cfg     *config.CouncilConfig
	clients Clients
	opts    Options
}

// New builds an Orchestrator. cfg must already be validated
// (config.Initialize does this).
func New(cfg *config.CouncilConfig, clients Clients, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, clients: clients, opts: opts}
}

// Run drives one session to completion: leader election, the phase
// sequence, the leader summary, an optional documentation loop, and the
// execution-handoff gate, per spec §4.1 and §9's orchestrator step list.
func (o *Orchestrator) Run(ctx context.Context, humanPrompt string, approveExecution bool) (*council.SessionResult, error) {
	sessionID := o.opts.IDs.NewSessionID()
	log := o.opts.Logger.With("session_id", sessionID)

	evLog, err := eventlog.New(o.cfg.Storage.RootDir, sessionID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open event log: %w", err)
	}

	identity := prompt.CouncilIdentity{Name: o.cfg.CouncilName, Purpose: o.cfg.Purpose}
	turnOrder := o.cfg.EffectiveTurnOrder()

	var memStore *memory.Store
	if o.cfg.Storage.MemoryDir != "" {
		memStore, err = memory.Open(o.cfg.Storage.MemoryDir, o.cfg.MemberRegistry.DeclarationOrder())
		if err != nil {
			return nil, fmt.Errorf("orchestrator: open memory store: %w", err)
		}
		for _, id := range o.cfg.MemberRegistry.DeclarationOrder() {
			member, err := o.cfg.MemberRegistry.Get(id)
			if err != nil {
				return nil, err
			}
			if err := memStore.WriteAgentProfile(id, memory.RenderAgentProfile(member)); err != nil {
				return nil, fmt.Errorf("orchestrator: write agent profile for %s: %w", id, err)
			}
		}
	}

	s := &session{
		orch:      o,
		sessionID: sessionID,
		log:       evLog,
		identity:  identity,
		turnOrder: turnOrder,
		memStore:  memStore,
		logger:    log,
	}

	leaderID, err := s.electLeader(ctx)
	if err != nil {
		return nil, err
	}
	s.leaderID = leaderID
	log.Info("leader elected", "leader_id", leaderID)

	result, err := s.runPhases(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.requestLeaderSummary(ctx, result)
	if err != nil {
		return nil, err
	}
	result.FinalResolution = summary.FinalResolution
	result.ArtifactPaths["leader-summary"] = evLog.ArtifactPath("leader-summary.md")
	if err := atomicWriteMarkdown(result.ArtifactPaths["leader-summary"], summary.SummaryMarkdown); err != nil {
		return nil, fmt.Errorf("orchestrator: persist leader summary: %w", err)
	}

	if o.cfg.Output.Type == config.OutputTypeDocumentation {
		approved, err := s.runDocumentationLoop(ctx, result, humanPrompt)
		if err != nil {
			return nil, err
		}
		result.DocumentApproved = &approved
	}

	if summary.RequiresExecution {
		handoff := s.buildExecutionHandoff(result, summary, approveExecution)
		result.ExecutionHandoff = &handoff
		handoffPath := evLog.ArtifactPath("execution-handoff.json")
		if err := atomicWriteJSON(handoffPath, handoff); err != nil {
			return nil, fmt.Errorf("orchestrator: persist execution handoff: %w", err)
		}
		result.ArtifactPaths["execution-handoff"] = handoffPath
	}

	if err := s.emit(council.EventSessionClosed, "", council.SessionClosedPayload{
		EndedBy: result.EndedBy, FinalResolution: result.FinalResolution,
	}); err != nil {
		return nil, err
	}

	if err := s.finalizeMemory(result, summary, approveExecution); err != nil {
		return nil, err
	}

	if err := evLog.WriteSessionResult(*result); err != nil {
		return nil, fmt.Errorf("orchestrator: write session result: %w", err)
	}

	return result, nil
}

// session carries the per-Run state threaded through each step: the event
// log, the elected leader, and the shared turn-index counter every phase's
// Runner advances.
type session struct {
	orch      *Orchestrator
	sessionID string
	log       *eventlog.Log
	identity  prompt.CouncilIdentity
	turnOrder []string
	memStore  *memory.Store
	leaderID  string
	turnIndex int
	logger    *slog.Logger
}

func (s *session) clientFor(memberID string) (modelclient.ModelClient, error) {
	client, ok := s.orch.clients[memberID]
	if !ok {
		return nil, fmt.Errorf("orchestrator: no model client configured for member %q", memberID)
	}
	return client, nil
}

// electLeader fans a leader-election prompt out to every member in
// parallel, joins on all ballots, emits one LEADER_ELECTION_BALLOT per
// voter in turn order, then a single LEADER_ELECTED — per spec §4.1 step 1.
func (s *session) electLeader(ctx context.Context) (string, error) {
	declarationOrder := s.orch.cfg.MemberRegistry.DeclarationOrder()

	ballots, err := fanOut(len(s.turnOrder), func(i int) (prompt.LeaderElectionBallot, error) {
		return s.requestLeaderBallot(ctx, s.turnOrder[i], declarationOrder)
	})
	if err != nil {
		return "", err
	}

	tally := make(map[string]int, len(s.turnOrder))
	for i, ballot := range ballots {
		voterID := s.turnOrder[i]
		tally[ballot.CandidateID]++
		if err := s.emit(council.EventLeaderElectionBallot, voterID, council.LeaderElectionBallotPayload{
			CandidateID: ballot.CandidateID, Rationale: ballot.Rationale,
		}); err != nil {
			return "", err
		}
	}

	leaderID := pickLeader(tally, declarationOrder)
	if err := s.emit(council.EventLeaderElected, leaderID, council.LeaderElectedPayload{LeaderID: leaderID}); err != nil {
		return "", err
	}
	return leaderID, nil
}

// pickLeader applies spec §4.1's deterministic tiebreak: highest ballot
// count wins; ties broken by lexicographic ascending member id.
func pickLeader(tally map[string]int, declarationOrder []string) string {
	candidates := make([]string, 0, len(declarationOrder))
	for _, id := range declarationOrder {
		if _, ok := tally[id]; ok {
			candidates = append(candidates, id)
		}
	}
	sort.Strings(candidates)

	best := ""
	bestCount := -1
	for _, id := range candidates {
		if tally[id] > bestCount {
			best = id
			bestCount = tally[id]
		}
	}
	return best
}

func (s *session) requestLeaderBallot(ctx context.Context, memberID string, declarationOrder []string) (prompt.LeaderElectionBallot, error) {
	member, err := s.orch.cfg.MemberRegistry.Get(memberID)
	if err != nil {
		return prompt.LeaderElectionBallot{}, err
	}
	client, err := s.clientFor(memberID)
	if err != nil {
		return prompt.LeaderElectionBallot{}, err
	}
	system, user := prompt.BuildLeaderElectionPrompt(s.identity, member, declarationOrder)
	ballot, _, err := prompt.RequestLeaderElectionBallot(ctx, client, system, user, modelclient.CompleteOptions{}, declarationOrder)
	if err != nil {
		return prompt.LeaderElectionBallot{}, fmt.Errorf("orchestrator: leader ballot from %s: %w", memberID, err)
	}
	return ballot, nil
}

// runPhases drives the phase graph from sessionPolicy.entryPhaseId to
// termination, via pkg/transition.Resolve between phases.
func (s *session) runPhases(ctx context.Context) (*council.SessionResult, error) {
	result := &council.SessionResult{
		SessionID:     s.sessionID,
		LeaderID:      s.leaderID,
		ArtifactPaths: make(map[string]string),
	}

	currentPhaseID := s.orch.cfg.SessionPolicy.EntryPhaseID
	transitions := 0
	maxTransitions := s.orch.cfg.SessionPolicy.MaxPhaseTransitions
	if maxTransitions <= 0 {
		maxTransitions = len(s.orch.cfg.PhaseRegistry.IDs())
	}

	for currentPhaseID != "" {
		phase, err := s.orch.cfg.PhaseRegistry.Get(currentPhaseID)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: resolve phase %q: %w", currentPhaseID, err)
		}

		deps := phaserunner.Deps{
			Identity:      s.identity,
			Members:       s.orch.cfg.MemberRegistry,
			PhaseRegistry: s.orch.cfg.PhaseRegistry,
			Clients:       phaserunner.Clients(s.orch.clients),
			Log:           s.log,
			IDs:           s.orch.opts.IDs,
			Clock:         s.orch.opts.Clock,
			MemoryStore:   s.memStore,
			Verbosity:     s.orch.cfg.SessionPolicy.PhaseContextVerbosity,
		}
		runner := phaserunner.New(deps, phase, s.turnOrder, s.sessionID, &s.turnIndex)
		phaseResult, err := runner.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: run phase %q: %w", currentPhaseID, err)
		}
		result.PhaseResults = append(result.PhaseResults, phaseResult)

		trigger := config.TriggerRoundLimit
		if phaseResult.EndedBy == "MAJORITY_VOTE" {
			trigger = config.TriggerMajorityVote
		}

		transitions++
		if transitions > maxTransitions {
			s.logger.Warn("max phase transitions exceeded, ending session", "max", maxTransitions)
			result.EndedBy = "ROUND_LIMIT"
			result.FinalResolution = fmt.Sprintf(
				"Session terminated: exceeded sessionPolicy.maxPhaseTransitions (%d) after phase %q.",
				maxTransitions, phase.ID)
			break
		}

		nextPhaseID, terminate := transition.Resolve(phase, trigger)
		result.EndedBy = phaseResult.EndedBy
		result.FinalResolution = phaseResult.FinalResolution
		if terminate {
			break
		}
		currentPhaseID = nextPhaseID
	}

	return result, nil
}

// requestLeaderSummary asks the elected leader to synthesize the session's
// phase results into a closing summary, per spec §4.1 step 3.
func (s *session) requestLeaderSummary(ctx context.Context, result *council.SessionResult) (prompt.LeaderSummary, error) {
	leader, err := s.orch.cfg.MemberRegistry.Get(s.leaderID)
	if err != nil {
		return prompt.LeaderSummary{}, err
	}
	client, err := s.clientFor(s.leaderID)
	if err != nil {
		return prompt.LeaderSummary{}, err
	}
	system, user := prompt.BuildLeaderSummaryPrompt(s.identity, leader, renderPhaseResults(result.PhaseResults))
	summary, _, err := prompt.RequestLeaderSummary(ctx, client, system, user, modelclient.CompleteOptions{}, result.FinalResolution)
	if err != nil {
		return prompt.LeaderSummary{}, fmt.Errorf("orchestrator: leader summary: %w", err)
	}
	return summary, nil
}

// runDocumentationLoop invokes pkg/docloop when the council is configured
// to produce a reviewed documentation deliverable (spec §4.1 step 4).
func (s *session) runDocumentationLoop(ctx context.Context, result *council.SessionResult, humanPrompt string) (bool, error) {
	deliverables := collectDeliverables(s.orch.cfg.PhaseRegistry, result.PhaseResults)

	deps := docloop.Deps{
		Identity:          s.identity,
		Members:           s.orch.cfg.MemberRegistry,
		Clients:           docloop.Clients(s.orch.clients),
		Log:               s.log,
		IDs:               s.orch.opts.IDs,
		Clock:             s.orch.opts.Clock,
		SessionID:         s.sessionID,
		VoterOrder:        s.turnOrder,
		LeaderID:          s.leaderID,
		MaxRevisionRounds: s.orch.cfg.DocumentationReview.MaxRevisionRounds,
	}
	docResult, err := docloop.Run(ctx, deps, renderPhaseResults(result.PhaseResults), deliverables)
	if err != nil {
		return false, fmt.Errorf("orchestrator: documentation review: %w", err)
	}
	if docResult.Approved {
		result.ArtifactPaths["documentation"] = docResult.FinalPath
	} else {
		result.ArtifactPaths["documentation-unapproved"] = docResult.FinalPath
	}
	return docResult.Approved, nil
}

// buildExecutionHandoff assembles the execution-handoff descriptor per
// spec §6's execution-handoff.json shape and §4.1 step 5's approval rule.
func (s *session) buildExecutionHandoff(result *council.SessionResult, summary prompt.LeaderSummary, approveExecution bool) council.ExecutionHandoff {
	approvalRequired := s.orch.cfg.Execution.RequireHumanApproval
	handoff := council.ExecutionHandoff{
		SessionID:              s.sessionID,
		Approved:               !approvalRequired || approveExecution,
		ApprovalRequired:       approvalRequired,
		DefaultExecutorProfile: s.orch.cfg.Execution.DefaultExecutorProfile,
		LeaderID:               s.leaderID,
		ExecutionBrief:         summary.ExecutionBrief,
	}
	for i := len(result.PhaseResults) - 1; i >= 0; i-- {
		if result.PhaseResults[i].WinningMotion != nil {
			handoff.MotionID = result.PhaseResults[i].WinningMotion.ID
			break
		}
	}
	return handoff
}

// finalizeMemory invokes pkg/memory's session-close recordSession when any
// completed phase's memory policy permits writes, per spec §4.1 step 6 and
// §4.2. Sessions without storage.memoryDir configured carry no memory at
// all (memStore is nil); a session where every visited phase disabled both
// writeMemberMemory and writeCouncilMemory also writes nothing, per
// spec.md's own all-or-nothing framing of that open question.
func (s *session) finalizeMemory(result *council.SessionResult, summary prompt.LeaderSummary, approveExecution bool) error {
	if s.memStore == nil || !s.anyPhaseAllowsMemoryWrites(result) {
		return nil
	}

	out := memory.SessionOutcome{
		SessionID:         s.sessionID,
		EndedBy:           result.EndedBy,
		FinalResolution:   result.FinalResolution,
		MemberLastMessage: mergeLastMessages(result.PhaseResults),
		FallbackMembers:   mergeFallbackMembers(result.PhaseResults),
		RequiresExecution: summary.RequiresExecution,
		ApproveExecution:  approveExecution,
		ExecutionBrief:    summary.ExecutionBrief,
		Now:               s.orch.opts.Clock.Now(),
	}
	if err := s.memStore.RecordSession(out); err != nil {
		return fmt.Errorf("orchestrator: record session memory: %w", err)
	}
	return nil
}

func (s *session) anyPhaseAllowsMemoryWrites(result *council.SessionResult) bool {
	for _, pr := range result.PhaseResults {
		phase, err := s.orch.cfg.PhaseRegistry.Get(pr.PhaseID)
		if err != nil {
			continue
		}
		if phase.MemoryPolicy.WriteMemberMemory || phase.MemoryPolicy.WriteCouncilMemory {
			return true
		}
	}
	return false
}

// mergeLastMessages folds every phase's LastMessageByMember into one map, a
// later phase's contribution overwriting an earlier one for the same
// member — the most recent thing a member said is its session stance.
func mergeLastMessages(results []council.PhaseResult) map[string]string {
	out := make(map[string]string)
	for _, pr := range results {
		for memberID, message := range pr.LastMessageByMember {
			out[memberID] = message
		}
	}
	return out
}

// mergeFallbackMembers unions every phase's FallbackMembers, deduped and in
// first-seen order across phases.
func mergeFallbackMembers(results []council.PhaseResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pr := range results {
		for _, memberID := range pr.FallbackMembers {
			if !seen[memberID] {
				seen[memberID] = true
				out = append(out, memberID)
			}
		}
	}
	return out
}

func (s *session) emit(eventType council.EventType, actorID string, payload any) error {
	ev := council.Event{
		ID:        s.orch.opts.IDs.NextEventID(),
		SessionID: s.sessionID,
		Timestamp: s.orch.opts.Clock.Now(),
		Type:      eventType,
		ActorID:   actorID,
		Payload:   payload,
	}
	if err := s.log.Append(ev); err != nil {
		return fmt.Errorf("orchestrator: append event %s: %w", eventType, err)
	}
	return nil
}

// renderPhaseResults builds the plain-text phase-results summary fed into
// the leader-summary and documentation-draft prompts.
func renderPhaseResults(results []council.PhaseResult) string {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "Phase %s (%s): ended by %s after %d round(s). Resolution: %s\n",
			r.PhaseID, r.PhaseGoal, r.EndedBy, r.RoundsCompleted, r.FinalResolution)
	}
	return sb.String()
}

// collectDeliverables gathers the required-deliverable descriptions from
// every phase the session actually visited, for the documentation draft
// prompt's "required deliverables" section.
func collectDeliverables(phases *config.PhaseRegistry, results []council.PhaseResult) []string {
	var out []string
	for _, r := range results {
		phase, err := phases.Get(r.PhaseID)
		if err != nil {
			continue
		}
		for _, d := range phase.Deliverables {
			if d.Required {
				out = append(out, d.Description)
			}
		}
	}
	return out
}
