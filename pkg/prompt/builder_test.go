package prompt

import (
	"testing"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIdentity() CouncilIdentity {
	return CouncilIdentity{Name: "Architecture Council", Purpose: "Decide the v2 storage layer."}
}

func sampleMember() *config.MemberConfig {
	return &config.MemberConfig{
		ID:           "m1",
		Name:         "Ada",
		Role:         "Systems Architect",
		SystemPrompt: "You favor simplicity and proven patterns.",
		Traits:       []string{"skeptical", "concise"},
	}
}

func samplePhase() *config.PhaseConfig {
	return &config.PhaseConfig{
		ID:             "discovery",
		Goal:           "Surface constraints and options.",
		PromptGuidance: []string{"Cite prior incidents where relevant."},
	}
}

func samplePacket() PhaseContextPacket {
	return PhaseContextPacket{
		PhaseID:             "discovery",
		PhaseGoal:           "Surface constraints and options.",
		Round:               2,
		MaxRounds:           5,
		PendingDeliverables: []string{"risk register"},
		QualityGates:        []string{"all options costed"},
		EvidenceGaps:        []string{"no load-test data"},
		LegalNextPhases:     []NextPhaseOption{{PhaseID: "design", Trigger: "MAJORITY_VOTE"}},
	}
}

func sampleTurnContext() TurnContext {
	return TurnContext{
		Round:          2,
		RemainingTurns: 3,
		Transcript: []TranscriptEntry{
			{Round: 1, ActorID: "m2", ActorName: "Grace", Label: "CONTRIBUTE", Content: "We should consider sharding."},
		},
		MemberMemoryText:  "- prefers boring technology",
		CouncilMemoryText: "- decided to drop the legacy cache in phase 1",
	}
}

func joined(system, user string) string {
	return system + "\n\n" + user
}

func TestBuildTurnPrompt_ContainsAllSections(t *testing.T) {
	system, user := BuildTurnPrompt(sampleIdentity(), sampleMember(), samplePhase(), samplePacket(), sampleTurnContext())
	out := joined(system, user)

	assert.Contains(t, out, "Architecture Council")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "discovery")
	assert.Contains(t, out, "risk register")
	assert.Contains(t, out, "Grace")
	assert.Contains(t, out, "prefers boring technology")
	assert.Contains(t, out, "decided to drop the legacy cache")
	assert.Contains(t, out, "single line of valid JSON")
	assert.Contains(t, out, "CALL_VOTE")
}

func TestBuildTurnPrompt_EmptyTranscriptNotesOpeningSpeaker(t *testing.T) {
	ctx := sampleTurnContext()
	ctx.Transcript = nil
	_, user := BuildTurnPrompt(sampleIdentity(), sampleMember(), samplePhase(), samplePacket(), ctx)

	assert.Contains(t, user, "you open the discussion")
}

func TestBuildSecondingPrompt_IncludesMotionText(t *testing.T) {
	_, user := BuildSecondingPrompt(sampleIdentity(), sampleMember(), samplePhase(), samplePacket(), sampleTurnContext(), "Adopt sharding", "Split by tenant", "migrate in Q3")
	assert.Contains(t, user, "Adopt sharding")
	assert.Contains(t, user, "migrate in Q3")
	assert.Contains(t, user, `"second"`)
}

func TestBuildVotePrompt_IncludesBallotSchema(t *testing.T) {
	_, user := BuildVotePrompt(sampleIdentity(), sampleMember(), samplePhase(), samplePacket(), sampleTurnContext(), "Adopt sharding", "Split by tenant", "migrate in Q3")
	assert.Contains(t, user, `"ballot":"YES|NO|ABSTAIN"`)
}

func TestBuildLeaderElectionPrompt_ListsCandidates(t *testing.T) {
	_, user := BuildLeaderElectionPrompt(sampleIdentity(), sampleMember(), []string{"m1", "m2", "m3"})
	assert.Contains(t, user, "m1, m2, m3")
	assert.Contains(t, user, `"candidateId"`)
}

func TestBuildLeaderSummaryPrompt_IncludesPhaseResults(t *testing.T) {
	_, user := BuildLeaderSummaryPrompt(sampleIdentity(), sampleMember(), "Phase discovery ended by MAJORITY_VOTE.")
	assert.Contains(t, user, "Phase discovery ended by MAJORITY_VOTE")
	assert.Contains(t, user, `"requiresExecution"`)
}

func TestBuildDocumentDraftPrompt_ListsDeliverables(t *testing.T) {
	_, user := BuildDocumentDraftPrompt(sampleIdentity(), sampleMember(), "summary text", []string{"risk register", "decision log"})
	assert.Contains(t, user, "risk register")
	assert.Contains(t, user, "decision log")
	assert.Contains(t, user, "not JSON")
}

func TestBuildDocumentRevisionPrompt_IncludesPriorDraftAndFeedback(t *testing.T) {
	_, user := BuildDocumentRevisionPrompt(sampleIdentity(), sampleMember(), "draft v1 text", `{"criticalBlockers":[]}`)
	assert.Contains(t, user, "draft v1 text")
	assert.Contains(t, user, `"criticalBlockers":[]`)
}

func TestBuildDocumentApprovalVotePrompt_IncludesDraft(t *testing.T) {
	_, user := BuildDocumentApprovalVotePrompt(sampleIdentity(), sampleMember(), "final draft text")
	assert.Contains(t, user, "final draft text")
	assert.Contains(t, user, `"ballot":"YES|NO|ABSTAIN"`)
}

func TestBuildDocumentFeedbackPrompt_IncludesCapsAndSchema(t *testing.T) {
	system, user := BuildDocumentFeedbackPrompt(sampleIdentity(), sampleMember(), "draft text")
	assert.Contains(t, user, "at most 5 entries")
	assert.Contains(t, user, "at most 6 entries")
	assert.Contains(t, user, "criticalBlockers")
	require.NotEmpty(t, system)
}
