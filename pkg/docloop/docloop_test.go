package docloop_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/docloop"
	"github.com/codeready-toolchain/council/pkg/eventlog"
	"github.com/codeready-toolchain/council/pkg/modelclient/stub"
	"github.com/codeready-toolchain/council/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ seq atomic.Int64 }

func (g *seqIDs) NewSessionID() string { return "session-1" }
func (g *seqIDs) NewMotionID() string  { return "" }
func (g *seqIDs) NextEventID() int64   { return g.seq.Add(1) }

func member(id string) *config.MemberConfig {
	return &config.MemberConfig{ID: id, Name: id, Role: "member", SystemPrompt: "Write and vote carefully."}
}

func newDeps(t *testing.T, client *stub.Client, ids []string, leaderID string, maxRevisionRounds int) (docloop.Deps, *eventlog.Log) {
	t.Helper()
	memberConfigs := make(map[string]*config.MemberConfig, len(ids))
	for _, id := range ids {
		memberConfigs[id] = member(id)
	}
	members := config.NewMemberRegistry(memberConfigs, ids)

	log, err := eventlog.New(t.TempDir(), "session-1")
	require.NoError(t, err)

	clients := make(docloop.Clients, len(ids))
	for _, id := range ids {
		clients[id] = client.ForMember(id)
	}

	return docloop.Deps{
		Identity:          prompt.CouncilIdentity{Name: "Test Council", Purpose: "testing"},
		Members:           members,
		Clients:           clients,
		Log:               log,
		IDs:               &seqIDs{},
		Clock:             fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		SessionID:         "session-1",
		VoterOrder:        ids,
		LeaderID:          leaderID,
		MaxRevisionRounds: maxRevisionRounds,
	}, log
}

// TestRun_ApprovedOnFirstDraft covers the loop's shortest path: the leader
// drafts once, the council approves it unanimously, and no revision round
// is needed.
func TestRun_ApprovedOnFirstDraft(t *testing.T) {
	client := stub.New()
	client.Script("a", stub.Response{Text: "# Architecture Decision Record\n..."})
	for _, id := range []string{"a", "b", "c"} {
		client.Script(id, stub.Response{JSON: map[string]any{"ballot": "YES", "rationale": "looks complete"}})
	}

	deps, log := newDeps(t, client, []string{"a", "b", "c"}, "a", 2)
	result, err := docloop.Run(context.Background(), deps, "Phase results text.", []string{"deliverable 1"})
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Equal(t, 1, result.Revision)
	assert.Empty(t, result.Blockers)

	var sawDraftWritten, sawVoteCalled, sawVoteResult bool
	for _, ev := range log.Events() {
		switch ev.Type {
		case council.EventDocumentDraftWritten:
			sawDraftWritten = true
		case council.EventDocumentApprovalVoteCalled:
			sawVoteCalled = true
		case council.EventDocumentApprovalVoteResult:
			payload := ev.Payload.(council.DocumentApprovalVoteResultPayload)
			assert.True(t, payload.Passed)
			assert.Equal(t, 3, payload.YesVotes)
			sawVoteResult = true
		case council.EventDocumentRevisionWritten:
			t.Fatal("no revision should have been written when the first draft was approved")
		}
	}
	assert.True(t, sawDraftWritten)
	assert.True(t, sawVoteCalled)
	assert.True(t, sawVoteResult)
}

// TestRun_RevisesAfterRejectionThenApproves covers the middle path: the
// first draft is rejected, dissenters' feedback is folded into a revision,
// and the revised draft is approved before the round budget is exhausted.
func TestRun_RevisesAfterRejectionThenApproves(t *testing.T) {
	client := stub.New()
	// revision 1
	client.Script("a", stub.Response{Text: "draft v1"})
	client.Script("a", stub.Response{JSON: map[string]any{"ballot": "NO", "rationale": "missing rollback plan"}})
	client.Script("b", stub.Response{JSON: map[string]any{"ballot": "NO", "rationale": "unclear ownership"}})
	client.Script("c", stub.Response{JSON: map[string]any{"ballot": "YES", "rationale": "fine by me"}})
	// feedback from dissenters a, b
	client.Script("a", stub.Response{JSON: map[string]any{
		"criticalBlockers": []map[string]any{
			{"id": "b1", "section": "Rollback", "problem": "none described", "impact": "risky deploy", "requiredChange": "add a rollback section", "severity": "high"},
		},
		"suggestedChanges": []string{"add a timeline"},
	}})
	client.Script("b", stub.Response{JSON: map[string]any{
		"criticalBlockers": []map[string]any{},
		"suggestedChanges": []string{"clarify ownership"},
	}})
	// revision
	client.Script("a", stub.Response{Text: "draft v2, now with rollback plan"})
	// revision 2 vote — unanimous approval
	for _, id := range []string{"a", "b", "c"} {
		client.Script(id, stub.Response{JSON: map[string]any{"ballot": "YES", "rationale": "addressed"}})
	}

	deps, log := newDeps(t, client, []string{"a", "b", "c"}, "a", 1)
	result, err := docloop.Run(context.Background(), deps, "Phase results text.", nil)
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Equal(t, 2, result.Revision)

	var revisionWritten int
	for _, ev := range log.Events() {
		if ev.Type == council.EventDocumentRevisionWritten {
			revisionWritten++
		}
	}
	assert.Equal(t, 1, revisionWritten)
}

// TestRun_ExhaustsWithoutApproval covers the loop's worst case: the draft
// is never approved within the revision budget, so Run reports
// approved=false along with whatever blockers the last rejection raised.
func TestRun_ExhaustsWithoutApproval(t *testing.T) {
	client := stub.New()
	client.Script("a", stub.Response{Text: "draft v1"})
	for _, id := range []string{"a", "b", "c"} {
		client.Script(id, stub.Response{JSON: map[string]any{"ballot": "NO", "rationale": "not ready"}})
	}

	deps, log := newDeps(t, client, []string{"a", "b", "c"}, "a", 0)
	result, err := docloop.Run(context.Background(), deps, "Phase results text.", nil)
	require.NoError(t, err)

	assert.False(t, result.Approved)
	assert.Equal(t, 1, result.Revision)

	var sawVoteResult bool
	for _, ev := range log.Events() {
		if ev.Type == council.EventDocumentApprovalVoteResult {
			payload := ev.Payload.(council.DocumentApprovalVoteResultPayload)
			assert.False(t, payload.Passed)
			sawVoteResult = true
		}
		assert.NotEqual(t, council.EventDocumentRevisionWritten, ev.Type, "loop exhausted at revision budget 0, no revision should be written")
	}
	assert.True(t, sawVoteResult)
}
