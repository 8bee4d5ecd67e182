package transition_test

import (
	"testing"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/transition"
	"github.com/stretchr/testify/assert"
)

func samplePhaseForPacket() *config.PhaseConfig {
	return &config.PhaseConfig{
		ID:   "discovery",
		Goal: "Surface constraints.",
		Deliverables: []config.Deliverable{
			{ID: "risk-register", Description: "enumerate risks", Required: true},
			{ID: "notes", Description: "scratch notes", Required: false},
		},
		QualityGates: []string{"all options costed"},
		EvidenceRequirements: config.EvidenceRequirements{
			MinCitations:               2,
			RequireExplicitAssumptions: true,
		},
		Transitions: []config.TransitionConfig{
			{To: "design", When: config.TriggerMajorityVote, Priority: 1},
		},
	}
}

func TestBuildPacket_PendingDeliverablesExcludesCompletedAndOptional(t *testing.T) {
	phase := samplePhaseForPacket()
	registry := config.NewPhaseRegistry(map[string]*config.PhaseConfig{phase.ID: phase})

	packet := transition.BuildPacket(phase, registry, 1, 5, map[string]bool{"risk-register": true}, config.VerbosityMinimal)

	assert.Empty(t, packet.PendingDeliverables)
}

func TestBuildPacket_PendingDeliverablesIncludesIncompleteRequired(t *testing.T) {
	phase := samplePhaseForPacket()
	registry := config.NewPhaseRegistry(map[string]*config.PhaseConfig{phase.ID: phase})

	packet := transition.BuildPacket(phase, registry, 1, 5, nil, config.VerbosityMinimal)

	assert.Len(t, packet.PendingDeliverables, 1)
	assert.Contains(t, packet.PendingDeliverables[0], "risk-register")
}

func TestBuildPacket_EvidenceGapsDerivedFromRequirements(t *testing.T) {
	phase := samplePhaseForPacket()
	registry := config.NewPhaseRegistry(map[string]*config.PhaseConfig{phase.ID: phase})

	packet := transition.BuildPacket(phase, registry, 1, 5, nil, config.VerbosityMinimal)

	assert.Contains(t, packet.EvidenceGaps, "cite at least 2 prior decisions or external sources")
	assert.Contains(t, packet.EvidenceGaps, "state any assumptions explicitly")
}

func TestBuildPacket_MinimalVerbosityOmitsGraphDigest(t *testing.T) {
	phase := samplePhaseForPacket()
	registry := config.NewPhaseRegistry(map[string]*config.PhaseConfig{phase.ID: phase})

	packet := transition.BuildPacket(phase, registry, 1, 5, nil, config.VerbosityMinimal)

	assert.Empty(t, packet.GraphDigest)
}

func TestBuildPacket_StandardVerbosityIncludesGraphDigest(t *testing.T) {
	phase := samplePhaseForPacket()
	registry := config.NewPhaseRegistry(map[string]*config.PhaseConfig{phase.ID: phase})

	packet := transition.BuildPacket(phase, registry, 1, 5, nil, config.VerbosityStandard)

	assert.Contains(t, packet.GraphDigest, "discovery ->")
	assert.Contains(t, packet.GraphDigest, "design")
}

func TestBuildPacket_LegalNextPhasesCarriesTrigger(t *testing.T) {
	phase := samplePhaseForPacket()
	registry := config.NewPhaseRegistry(map[string]*config.PhaseConfig{phase.ID: phase})

	packet := transition.BuildPacket(phase, registry, 1, 5, nil, config.VerbosityMinimal)

	assert.Equal(t, "design", packet.LegalNextPhases[0].PhaseID)
	assert.Equal(t, "MAJORITY_VOTE", packet.LegalNextPhases[0].Trigger)
}
