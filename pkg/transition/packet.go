package transition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/prompt"
)

// BuildPacket assembles the phase-context packet described in spec §4.5:
// current phase identity and round counters, pending deliverables and
// quality gates, evidence gaps derived from evidence requirements, legal
// next phases with their triggers, and — at "standard" or "full" verbosity
// — a condensed graph digest. completedDeliverableIDs holds the ids of
// deliverables the orchestrator has already recorded as satisfied; nil is
// treated as "none completed yet."
func BuildPacket(phase *config.PhaseConfig, registry *config.PhaseRegistry, round, maxRounds int, completedDeliverableIDs map[string]bool, verbosity config.PhaseContextVerbosity) prompt.PhaseContextPacket {
	packet := prompt.PhaseContextPacket{
		PhaseID:             phase.ID,
		PhaseGoal:           phase.Goal,
		Round:               round,
		MaxRounds:           maxRounds,
		PendingDeliverables: pendingDeliverables(phase.Deliverables, completedDeliverableIDs),
		QualityGates:        append([]string(nil), phase.QualityGates...),
		EvidenceGaps:        deriveEvidenceGaps(phase.EvidenceRequirements),
		LegalNextPhases:     legalNextPhases(phase),
	}

	switch verbosity {
	case config.VerbosityStandard:
		packet.GraphDigest = graphDigest(registry)
	case config.VerbosityFull:
		packet.GraphDigest = graphDigest(registry)
	}

	return packet
}

func pendingDeliverables(deliverables []config.Deliverable, completedIDs map[string]bool) []string {
	pending := make([]string, 0, len(deliverables))
	for _, d := range deliverables {
		if !d.Required {
			continue
		}
		if completedIDs != nil && completedIDs[d.ID] {
			continue
		}
		pending = append(pending, fmt.Sprintf("%s: %s", d.ID, d.Description))
	}
	return pending
}

// deriveEvidenceGaps restates a phase's evidence requirements as reminder
// strings. EvidenceRequirements is enforced at the prompt-construction
// layer, not mechanically checked against model output (see
// pkg/config.EvidenceRequirements), so these are standing reminders rather
// than a computed diff against the transcript.
func deriveEvidenceGaps(req config.EvidenceRequirements) []string {
	var gaps []string
	if req.MinCitations > 0 {
		gaps = append(gaps, fmt.Sprintf("cite at least %d prior decisions or external sources", req.MinCitations))
	}
	if req.RequireExplicitAssumptions {
		gaps = append(gaps, "state any assumptions explicitly")
	}
	if req.RequireRiskRegister {
		gaps = append(gaps, "maintain a risk register entry for new risks raised")
	}
	return gaps
}

func legalNextPhases(phase *config.PhaseConfig) []prompt.NextPhaseOption {
	opts := make([]prompt.NextPhaseOption, 0, len(phase.Transitions))
	for _, t := range phase.Transitions {
		opts = append(opts, prompt.NextPhaseOption{PhaseID: t.To, Trigger: string(t.When)})
	}
	return opts
}

// graphDigest renders a condensed node+edge listing of the entire phase
// graph, sorted by phase id for determinism.
func graphDigest(registry *config.PhaseRegistry) string {
	if registry == nil {
		return ""
	}
	all := registry.GetAll()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		p := all[id]
		fmt.Fprintf(&sb, "%s ->", id)
		if len(p.Transitions) == 0 {
			sb.WriteString(" (terminal unless fallback transitions)")
		}
		for _, t := range p.Transitions {
			fmt.Fprintf(&sb, " %s[%s,p%d]", t.To, t.When, t.Priority)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
