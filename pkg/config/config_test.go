package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestConfig(t *testing.T, turnOrder []string) *CouncilConfig {
	t.Helper()
	members, order := sampleMembers()
	phases := samplePhases()
	return &CouncilConfig{
		CouncilName:    "test-council",
		SessionPolicy:  SessionPolicyConfig{EntryPhaseID: "discussion"},
		TurnOrder:      turnOrder,
		MemberRegistry: NewMemberRegistry(members, order),
		PhaseRegistry:  NewPhaseRegistry(phases),
	}
}

func TestCouncilConfig_Stats(t *testing.T) {
	cfg := buildTestConfig(t, nil)
	stats := cfg.Stats()
	assert.Equal(t, 3, stats.Members)
	assert.Equal(t, 2, stats.Phases)
}

func TestCouncilConfig_EffectiveTurnOrder_FallsBackToDeclarationOrder(t *testing.T) {
	cfg := buildTestConfig(t, nil)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.EffectiveTurnOrder())
}

func TestCouncilConfig_EffectiveTurnOrder_UsesConfiguredOrder(t *testing.T) {
	cfg := buildTestConfig(t, []string{"c", "a", "b"})
	assert.Equal(t, []string{"c", "a", "b"}, cfg.EffectiveTurnOrder())
}

func TestCouncilConfig_GetMemberAndGetPhase(t *testing.T) {
	cfg := buildTestConfig(t, nil)

	m, err := cfg.GetMember("a")
	require.NoError(t, err)
	assert.Equal(t, "pragmatist", m.Role)

	p, err := cfg.GetPhase("vote")
	require.NoError(t, err)
	assert.Equal(t, "vote", p.Goal)
}
