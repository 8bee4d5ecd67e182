// Package transition resolves which phase a session moves to next and
// builds the phase-context packet injected into member prompts. Pure
// functions; no I/O. Grounded on
// pkg/agent/context/stage_context.go's BuildStageContext (assemble a
// formatted context string from completed-stage data), generalized here
// from a linear chain to a cyclic phase graph.
package transition

import (
	"sort"

	"github.com/codeready-toolchain/council/pkg/config"
)

// Resolve implements spec §4.5's phase transition resolver: a pure function
// (phase, endedBy) → next phase id | terminate. endedBy must be
// TriggerMajorityVote or TriggerRoundLimit — it is the phase outcome, never
// TriggerAlways.
//
// Eligible transitions are those whose trigger is ALWAYS or equals endedBy.
// Eligible transitions sort by (priority asc, target id asc); the head
// wins. If none are eligible and endedBy is ROUND_LIMIT with
// phase.fallback.action == TRANSITION, phase.fallback.transitionToPhaseId
// is taken as a synthetic lowest-priority transition. Otherwise the session
// terminates.
func Resolve(phase *config.PhaseConfig, endedBy config.TransitionTrigger) (nextPhaseID string, terminate bool) {
	eligible := make([]config.TransitionConfig, 0, len(phase.Transitions))
	for _, t := range phase.Transitions {
		if t.When == config.TriggerAlways || t.When == endedBy {
			eligible = append(eligible, t)
		}
	}

	if len(eligible) > 0 {
		sort.Slice(eligible, func(i, j int) bool {
			if eligible[i].Priority != eligible[j].Priority {
				return eligible[i].Priority < eligible[j].Priority
			}
			return eligible[i].To < eligible[j].To
		})
		return eligible[0].To, false
	}

	if endedBy == config.TriggerRoundLimit && phase.Fallback.Action == config.FallbackTransition {
		return phase.Fallback.TransitionToPhaseID, false
	}

	return "", true
}
