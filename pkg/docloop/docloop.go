// Package docloop drives the bounded documentation review loop described in
// spec §4.6: the leader drafts a documentation deliverable, the full council
// casts a blind approval vote on it, and — on rejection — every dissenting
// member's feedback is folded into a revision, up to a fixed number of
// rounds. Along with pkg/phaserunner and pkg/orchestrator, it is one of the
// packages that request model responses through modelclient.ModelClient,
// and shares pkg/phaserunner's bounded fan-out shape for the approval vote
// and feedback collection.
package docloop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/eventlog"
	"github.com/codeready-toolchain/council/pkg/modelclient"
	"github.com/codeready-toolchain/council/pkg/prompt"
	"github.com/codeready-toolchain/council/pkg/vote"
)

// approvalGovernance is fixed independent of any phase's governance config:
// spec §4.6 requires a simple majority with abstentions counting against
// approval, regardless of how any deliberation phase was configured.
var approvalGovernance = vote.Governance{Threshold: 0.5, AbstainCountsAsNo: true}

// Clients resolves a member id to the ModelClient that answers its prompts.
type Clients map[string]modelclient.ModelClient

// Deps bundles the collaborators the review loop needs. VoterOrder is the
// full council's turn order (so events and ballots render deterministically);
// LeaderID must be a member of VoterOrder.
type Deps struct {
	Identity          prompt.CouncilIdentity
	Members           *config.MemberRegistry
	Clients           Clients
	Log               *eventlog.Log
	IDs               council.IDGenerator
	Clock             council.Clock
	SessionID         string
	VoterOrder        []string
	LeaderID          string
	MaxRevisionRounds int
	CompleteOpts      modelclient.CompleteOptions
}

// Result is what Run returns once the loop ends, approved or not.
type Result struct {
	Approved  bool
	FinalPath string
	Revision  int
	Blockers  []prompt.CriticalBlocker
}

// Run drives the draft/approve/revise loop to completion. phaseResultsText
// and deliverables seed the first draft prompt; see spec §4.6.
func Run(ctx context.Context, deps Deps, phaseResultsText string, deliverables []string) (Result, error) {
	l := &loop{deps: deps}

	draft, err := l.draftInitial(ctx, phaseResultsText, deliverables)
	if err != nil {
		return Result{}, err
	}

	maxRevision := deps.MaxRevisionRounds + 1
	for revision := 1; revision <= maxRevision; revision++ {
		path, err := l.persistDraft(revision, draft)
		if err != nil {
			return Result{}, err
		}
		if err := l.emitDraftWritten(revision, path); err != nil {
			return Result{}, err
		}

		if err := l.emit(revision, council.EventDocumentApprovalVoteCalled, "", council.DocumentApprovalVoteCalledPayload{
			Revision: revision,
		}); err != nil {
			return Result{}, err
		}
		ballots, err := l.runApprovalVote(ctx, draft)
		if err != nil {
			return Result{}, err
		}
		tally, err := vote.Compute(ballots, approvalGovernance, len(deps.VoterOrder))
		if err != nil {
			return Result{}, fmt.Errorf("docloop: tally approval vote revision %d: %w", revision, err)
		}
		if err := l.emit(revision, council.EventDocumentApprovalVoteResult, "", council.DocumentApprovalVoteResultPayload{
			Revision:         revision,
			Passed:           tally.Passed,
			YesVotes:         tally.YesVotes,
			NoVotesEffective: tally.NoVotesEffective,
			TotalCouncilSize: tally.TotalCouncilSize,
		}); err != nil {
			return Result{}, err
		}

		if tally.Passed {
			finalPath := l.deps.Log.ArtifactPath("documentation.md")
			if err := atomicWrite(finalPath, []byte(draft)); err != nil {
				return Result{}, fmt.Errorf("docloop: persist approved documentation: %w", err)
			}
			return Result{Approved: true, FinalPath: finalPath, Revision: revision}, nil
		}
		if revision == maxRevision {
			blockers := collectBlockers(l.lastFeedback)
			unapprovedPath := l.deps.Log.ArtifactPath("documentation.unapproved.md")
			if err := atomicWrite(unapprovedPath, []byte(draft)); err != nil {
				return Result{}, fmt.Errorf("docloop: persist unapproved documentation: %w", err)
			}
			blockersPath := l.deps.Log.ArtifactPath("documentation.unresolved-blockers.json")
			if err := atomicWriteJSON(blockersPath, blockers); err != nil {
				return Result{}, fmt.Errorf("docloop: persist unresolved blockers: %w", err)
			}
			return Result{Approved: false, FinalPath: unapprovedPath, Revision: revision, Blockers: blockers}, nil
		}

		feedbackJSON, err := l.collectFeedback(ctx, revision, draft, ballots)
		if err != nil {
			return Result{}, err
		}
		draft, err = l.revise(ctx, draft, feedbackJSON)
		if err != nil {
			return Result{}, err
		}
	}

	// unreachable: the loop above always returns by revision == maxRevision
	return Result{}, fmt.Errorf("docloop: review loop exited without a result")
}

// loop carries the Run-scoped state threaded through each revision:
// feedback from the most recent rejected vote, kept so the final unapproved
// result can report unresolved blockers.
type loop struct {
	deps         Deps
	lastFeedback []prompt.FeedbackDocument
}

func (l *loop) draftInitial(ctx context.Context, phaseResultsText string, deliverables []string) (string, error) {
	leader, err := l.deps.Members.Get(l.deps.LeaderID)
	if err != nil {
		return "", err
	}
	client, err := l.clientFor(l.deps.LeaderID)
	if err != nil {
		return "", err
	}
	system, user := prompt.BuildDocumentDraftPrompt(l.deps.Identity, leader, phaseResultsText, deliverables)
	text, err := client.CompleteText(ctx, system, user, l.deps.CompleteOpts)
	if err != nil {
		return "", fmt.Errorf("docloop: initial draft: %w", err)
	}
	return text, nil
}

func (l *loop) revise(ctx context.Context, priorDraft, feedbackJSON string) (string, error) {
	leader, err := l.deps.Members.Get(l.deps.LeaderID)
	if err != nil {
		return "", err
	}
	client, err := l.clientFor(l.deps.LeaderID)
	if err != nil {
		return "", err
	}
	system, user := prompt.BuildDocumentRevisionPrompt(l.deps.Identity, leader, priorDraft, feedbackJSON)
	text, err := client.CompleteText(ctx, system, user, l.deps.CompleteOpts)
	if err != nil {
		return "", fmt.Errorf("docloop: revision: %w", err)
	}
	return text, nil
}

// runApprovalVote fans the approval-vote prompt out to every council member
// in parallel, awaits every ballot (blindness invariant — no VOTE_CAST-style
// per-member event is emitted here at all; only the aggregate result is
// logged, per spec §4.6), and returns them in VoterOrder.
func (l *loop) runApprovalVote(ctx context.Context, draft string) ([]vote.Ballot, error) {
	responses, err := fanOut(len(l.deps.VoterOrder), func(i int) (prompt.VoteResponse, error) {
		memberID := l.deps.VoterOrder[i]
		return l.requestApproval(ctx, memberID, draft)
	})
	if err != nil {
		return nil, err
	}

	ballots := make([]vote.Ballot, len(l.deps.VoterOrder))
	for i, resp := range responses {
		ballots[i] = vote.Ballot{MemberID: l.deps.VoterOrder[i], Choice: vote.Choice(resp.Ballot)}
	}
	return ballots, nil
}

func (l *loop) requestApproval(ctx context.Context, memberID, draft string) (prompt.VoteResponse, error) {
	member, err := l.deps.Members.Get(memberID)
	if err != nil {
		return prompt.VoteResponse{}, err
	}
	client, err := l.clientFor(memberID)
	if err != nil {
		return prompt.VoteResponse{}, err
	}
	system, user := prompt.BuildDocumentApprovalVotePrompt(l.deps.Identity, member, draft)
	resp, _, err := prompt.RequestVoteResponse(ctx, client, system, user, l.deps.CompleteOpts)
	if err != nil {
		return prompt.VoteResponse{}, fmt.Errorf("docloop: approval vote for %s: %w", memberID, err)
	}
	return resp, nil
}

// collectFeedback fans the feedback prompt out to every member whose ballot
// wasn't YES, persists the combined feedback as JSON, and returns that JSON
// for the revision prompt.
func (l *loop) collectFeedback(ctx context.Context, revision int, draft string, ballots []vote.Ballot) (string, error) {
	dissenters := make([]string, 0, len(ballots))
	for _, b := range ballots {
		if b.Choice != vote.ChoiceYes {
			dissenters = append(dissenters, b.MemberID)
		}
	}

	docs, err := fanOut(len(dissenters), func(i int) (prompt.FeedbackDocument, error) {
		return l.requestFeedback(ctx, dissenters[i], draft)
	})
	if err != nil {
		return "", err
	}
	l.lastFeedback = docs

	path := l.deps.Log.ArtifactPath(feedbackFileName(revision))
	if err := atomicWriteJSON(path, docs); err != nil {
		return "", fmt.Errorf("docloop: persist feedback: %w", err)
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("docloop: marshal feedback: %w", err)
	}
	return string(data), nil
}

func (l *loop) requestFeedback(ctx context.Context, memberID, draft string) (prompt.FeedbackDocument, error) {
	member, err := l.deps.Members.Get(memberID)
	if err != nil {
		return prompt.FeedbackDocument{}, err
	}
	client, err := l.clientFor(memberID)
	if err != nil {
		return prompt.FeedbackDocument{}, err
	}
	system, user := prompt.BuildDocumentFeedbackPrompt(l.deps.Identity, member, draft)
	doc, _, err := prompt.RequestFeedbackDocument(ctx, client, system, user, l.deps.CompleteOpts)
	if err != nil {
		return prompt.FeedbackDocument{}, fmt.Errorf("docloop: feedback from %s: %w", memberID, err)
	}
	return doc, nil
}

func (l *loop) persistDraft(revision int, draft string) (string, error) {
	name := fmt.Sprintf("documentation.draft.v%d.md", revision)
	path := l.deps.Log.ArtifactPath(name)
	if err := atomicWrite(path, []byte(draft)); err != nil {
		return "", fmt.Errorf("docloop: persist draft revision %d: %w", revision, err)
	}
	return path, nil
}

func (l *loop) emitDraftWritten(revision int, path string) error {
	if revision == 1 {
		return l.emit(revision, council.EventDocumentDraftWritten, "", council.DocumentDraftWrittenPayload{
			Path: path, Revision: revision,
		})
	}
	return l.emit(revision, council.EventDocumentRevisionWritten, "", council.DocumentRevisionWrittenPayload{
		Path: path, Revision: revision,
	})
}

func (l *loop) emit(revision int, eventType council.EventType, actorID string, payload any) error {
	ev := council.Event{
		ID:         l.deps.IDs.NextEventID(),
		SessionID:  l.deps.SessionID,
		Timestamp:  l.deps.Clock.Now(),
		PhaseState: "DOCUMENT_REVIEW",
		Type:       eventType,
		Round:      revision,
		ActorID:    actorID,
		Payload:    payload,
	}
	if err := l.deps.Log.Append(ev); err != nil {
		return fmt.Errorf("docloop: append event %s: %w", eventType, err)
	}
	return nil
}

func (l *loop) clientFor(memberID string) (modelclient.ModelClient, error) {
	client, ok := l.deps.Clients[memberID]
	if !ok {
		return nil, fmt.Errorf("docloop: no model client configured for member %q", memberID)
	}
	return client, nil
}

func feedbackFileName(revision int) string {
	return fmt.Sprintf("documentation.review.v%d.json", revision)
}

func collectBlockers(docs []prompt.FeedbackDocument) []prompt.CriticalBlocker {
	var blockers []prompt.CriticalBlocker
	for _, d := range docs {
		blockers = append(blockers, d.CriticalBlockers...)
	}
	return blockers
}
