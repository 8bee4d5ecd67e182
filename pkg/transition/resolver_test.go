package transition_test

import (
	"testing"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/transition"
	"github.com/stretchr/testify/assert"
)

func TestResolve_PicksLowestPriorityEligibleTransition(t *testing.T) {
	phase := &config.PhaseConfig{
		ID: "discovery",
		Transitions: []config.TransitionConfig{
			{To: "design", When: config.TriggerMajorityVote, Priority: 2},
			{To: "risk-review", When: config.TriggerMajorityVote, Priority: 1},
		},
	}

	next, terminate := transition.Resolve(phase, config.TriggerMajorityVote)

	assert.False(t, terminate)
	assert.Equal(t, "risk-review", next)
}

func TestResolve_TiesBreakByTargetIDAscending(t *testing.T) {
	phase := &config.PhaseConfig{
		ID: "discovery",
		Transitions: []config.TransitionConfig{
			{To: "zzz", When: config.TriggerMajorityVote, Priority: 1},
			{To: "aaa", When: config.TriggerMajorityVote, Priority: 1},
		},
	}

	next, terminate := transition.Resolve(phase, config.TriggerMajorityVote)

	assert.False(t, terminate)
	assert.Equal(t, "aaa", next)
}

func TestResolve_AlwaysTransitionsAreEligibleRegardlessOfEndedBy(t *testing.T) {
	phase := &config.PhaseConfig{
		ID: "discovery",
		Transitions: []config.TransitionConfig{
			{To: "closing", When: config.TriggerAlways, Priority: 5},
		},
	}

	next, terminate := transition.Resolve(phase, config.TriggerRoundLimit)

	assert.False(t, terminate)
	assert.Equal(t, "closing", next)
}

func TestResolve_FallsBackToFallbackTransitionOnRoundLimitWithNoEligible(t *testing.T) {
	phase := &config.PhaseConfig{
		ID: "discovery",
		Fallback: config.FallbackConfig{
			Action:              config.FallbackTransition,
			TransitionToPhaseID: "design",
		},
	}

	next, terminate := transition.Resolve(phase, config.TriggerRoundLimit)

	assert.False(t, terminate)
	assert.Equal(t, "design", next)
}

func TestResolve_TerminatesWhenNoEligibleAndFallbackEndsSession(t *testing.T) {
	phase := &config.PhaseConfig{
		ID: "discovery",
		Fallback: config.FallbackConfig{
			Action: config.FallbackEndSession,
		},
	}

	next, terminate := transition.Resolve(phase, config.TriggerRoundLimit)

	assert.True(t, terminate)
	assert.Empty(t, next)
}

func TestResolve_TerminatesWhenEndedByMajorityVoteAndNoTransitionMatches(t *testing.T) {
	phase := &config.PhaseConfig{
		ID: "discovery",
		Transitions: []config.TransitionConfig{
			{To: "design", When: config.TriggerRoundLimit, Priority: 1},
		},
		Fallback: config.FallbackConfig{
			Action:              config.FallbackTransition,
			TransitionToPhaseID: "design",
		},
	}

	// A ROUND_LIMIT-only transition is not eligible when endedBy is
	// MAJORITY_VOTE, and the fallback only applies on ROUND_LIMIT.
	next, terminate := transition.Resolve(phase, config.TriggerMajorityVote)

	assert.True(t, terminate)
	assert.Empty(t, next)
}
