package memory_test

import (
	"testing"
	"time"

	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSession_AlwaysInsertsSessionDecision(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:       "sess-1",
		EndedBy:         "MAJORITY_VOTE",
		FinalResolution: "adopt plan A",
		Now:             time.Now(),
	}))

	records := store.CouncilRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "decision:sess-1", records[0].ID)
	assert.Equal(t, council.MemoryKindDecision, records[0].Kind)
	assert.Equal(t, council.MemoryStatusResolved, records[0].Status)
	assert.Equal(t, "adopt plan A", records[0].Summary)
	assert.Equal(t, 5, records[0].Importance)
	assert.Equal(t, 0.9, records[0].Confidence)
}

func TestRecordSession_InsertsPerMemberStanceFromLastMessage(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1", "m2"})
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:       "sess-1",
		EndedBy:         "MAJORITY_VOTE",
		FinalResolution: "adopt plan A",
		MemberLastMessage: map[string]string{
			"m1": "I favor plan A for its lower blast radius.",
			"m2": "",
		},
		Now: time.Now(),
	}))

	m1Records := store.MemberRecords("m1")
	require.Len(t, m1Records, 1)
	assert.Equal(t, "outcome:sess-1:m1", m1Records[0].ID)
	assert.Equal(t, council.MemoryKindOutcome, m1Records[0].Kind)
	assert.Equal(t, "I favor plan A for its lower blast radius.", m1Records[0].Summary)

	assert.Empty(t, store.MemberRecords("m2"), "empty last message should not produce a stance record")
}

func TestRecordSession_FallbackMembersGetRiskAndCouncilLesson(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1", "m2"})
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:       "sess-1",
		EndedBy:         "MAJORITY_VOTE",
		FinalResolution: "adopt plan A",
		FallbackMembers: []string{"m1"},
		Now:             time.Now(),
	}))

	m1Records := store.MemberRecords("m1")
	require.Len(t, m1Records, 1)
	assert.Equal(t, "risk_pattern:parse_fallback:m1", m1Records[0].ID)
	assert.Equal(t, council.MemoryKindRiskPattern, m1Records[0].Kind)

	assert.Empty(t, store.MemberRecords("m2"))

	councilRecords := store.CouncilRecords()
	var lessonFound bool
	for _, r := range councilRecords {
		if r.ID == "lesson:parse_fallback:sess-1" {
			lessonFound = true
			assert.Equal(t, council.MemoryKindLesson, r.Kind)
		}
	}
	assert.True(t, lessonFound, "expected a council-level fallback lesson record")
}

func TestRecordSession_RoundLimitInsertsCouncilOpenLoop(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, nil)
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:       "sess-1",
		EndedBy:         "ROUND_LIMIT",
		FinalResolution: "no consensus reached",
		Now:             time.Now(),
	}))

	var openLoopFound bool
	for _, r := range store.CouncilRecords() {
		if r.ID == "open_loop:sess-1" {
			openLoopFound = true
			assert.Equal(t, council.MemoryKindOpenLoop, r.Kind)
			assert.Equal(t, council.MemoryStatusActive, r.Status)
		}
	}
	assert.True(t, openLoopFound)
}

func TestRecordSession_ExecutionApprovedInsertsResolvedOutcome(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, nil)
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:         "sess-1",
		EndedBy:           "MAJORITY_VOTE",
		FinalResolution:   "adopt plan A",
		RequiresExecution: true,
		ApproveExecution:  true,
		ExecutionBrief:    "roll out plan A to staging",
		Now:               time.Now(),
	}))

	var execRecord *council.MemoryRecord
	for _, r := range store.CouncilRecords() {
		r := r
		if r.ID == "execution:sess-1" {
			execRecord = &r
		}
	}
	require.NotNil(t, execRecord)
	assert.Equal(t, council.MemoryKindOutcome, execRecord.Kind)
	assert.Equal(t, council.MemoryStatusResolved, execRecord.Status)
	assert.Equal(t, "roll out plan A to staging", execRecord.Summary)

	// the execution record must not collide with the always-inserted
	// session decision record's id.
	var decisionRecord *council.MemoryRecord
	for _, r := range store.CouncilRecords() {
		r := r
		if r.ID == "decision:sess-1" {
			decisionRecord = &r
		}
	}
	require.NotNil(t, decisionRecord)
	assert.Equal(t, "adopt plan A", decisionRecord.Summary)
}

func TestRecordSession_ExecutionWithheldInsertsOpenLoop(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, nil)
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:         "sess-1",
		EndedBy:           "MAJORITY_VOTE",
		FinalResolution:   "adopt plan A",
		RequiresExecution: true,
		ApproveExecution:  false,
		ExecutionBrief:    "roll out plan A to staging",
		Now:               time.Now(),
	}))

	var execRecord *council.MemoryRecord
	for _, r := range store.CouncilRecords() {
		r := r
		if r.ID == "execution:sess-1" {
			execRecord = &r
		}
	}
	require.NotNil(t, execRecord)
	assert.Equal(t, council.MemoryKindOpenLoop, execRecord.Kind)
	assert.Equal(t, council.MemoryStatusActive, execRecord.Status)
}

func TestRecordSession_FeedsRecentSessionDigestForSnapshotFade(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	require.NoError(t, store.RecordSession(memory.SessionOutcome{
		SessionID:       "sess-1",
		EndedBy:         "MAJORITY_VOTE",
		FinalResolution: "adopt plan A",
		FallbackMembers: []string{"m1"},
		Now:             time.Now(),
	}))

	memberText, councilText := store.Snapshot("m1")
	assert.Contains(t, memberText, "risk_pattern")
	assert.Contains(t, councilText, "lesson")
}
