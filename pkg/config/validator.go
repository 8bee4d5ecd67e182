package config

import "fmt"

// Validator validates a CouncilConfig comprehensively with clear error
// messages.
type Validator struct {
	cfg *CouncilConfig
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *CouncilConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error). Order: members → phases → graph reachability → session
// policy → turn order → documentation review, so dependent checks always
// run against an already-sane council.
func (v *Validator) ValidateAll() error {
	if err := v.validateMembers(); err != nil {
		return fmt.Errorf("member validation failed: %w", err)
	}
	if err := v.validatePhases(); err != nil {
		return fmt.Errorf("phase validation failed: %w", err)
	}
	if err := v.validateReachability(); err != nil {
		return fmt.Errorf("phase graph validation failed: %w", err)
	}
	if err := v.validateSessionPolicy(); err != nil {
		return fmt.Errorf("session policy validation failed: %w", err)
	}
	if err := v.validateTurnOrder(); err != nil {
		return fmt.Errorf("turn order validation failed: %w", err)
	}
	if err := v.validateDocumentationReview(); err != nil {
		return fmt.Errorf("documentation review validation failed: %w", err)
	}
	return nil
}

// validateMembers enforces: odd council size ≥ 3, unique member ids,
// non-empty id/role/systemPrompt.
func (v *Validator) validateMembers() error {
	seen := make(map[string]bool)
	for _, id := range v.cfg.MemberRegistry.DeclarationOrder() {
		if seen[id] {
			return NewValidationError("member", id, "id", fmt.Errorf("duplicate member id %q", id))
		}
		seen[id] = true
	}

	all := v.cfg.MemberRegistry.GetAll()
	n := len(all)
	if n < 3 {
		return NewValidationError("council", "", "members", fmt.Errorf("council must have at least 3 members, got %d", n))
	}
	if n%2 == 0 {
		return NewValidationError("council", "", "members", fmt.Errorf("council size must be odd, got %d", n))
	}
	for id, m := range all {
		if id == "" {
			return NewValidationError("member", id, "id", fmt.Errorf("member id must not be empty"))
		}
		if m.Role == "" {
			return NewValidationError("member", id, "role", fmt.Errorf("member role must not be empty"))
		}
		if m.SystemPrompt == "" {
			return NewValidationError("member", id, "systemPrompt", fmt.Errorf("member systemPrompt must not be empty"))
		}
	}
	return nil
}

// validatePhases enforces per-phase invariants: non-empty goal, governance
// threshold ∈ (0,1], maxRounds ≥ 1, legal fallback action, legal transition
// triggers, non-negative priorities.
func (v *Validator) validatePhases() error {
	all := v.cfg.PhaseRegistry.GetAll()
	if len(all) == 0 {
		return NewValidationError("council", "", "phases", fmt.Errorf("at least one phase is required"))
	}
	for id, p := range all {
		if p.Goal == "" {
			return NewValidationError("phase", id, "goal", fmt.Errorf("phase goal must not be empty"))
		}
		if p.Governance.MajorityThreshold <= 0 || p.Governance.MajorityThreshold > 1 {
			return NewValidationError("phase", id, "governance.majorityThreshold", fmt.Errorf("majorityThreshold must be in (0,1], got %v", p.Governance.MajorityThreshold))
		}
		if p.StopConditions.MaxRounds < 1 {
			return NewValidationError("phase", id, "stopConditions.maxRounds", fmt.Errorf("maxRounds must be >= 1, got %d", p.StopConditions.MaxRounds))
		}
		if !p.Fallback.Action.IsValid() {
			return NewValidationError("phase", id, "fallback.action", fmt.Errorf("unrecognized fallback action %q", p.Fallback.Action))
		}
		if p.Fallback.Action == FallbackTransition {
			if p.Fallback.TransitionToPhaseID == "" {
				return NewValidationError("phase", id, "fallback.transitionToPhaseId", fmt.Errorf("required when fallback.action = TRANSITION"))
			}
			if !v.cfg.PhaseRegistry.Has(p.Fallback.TransitionToPhaseID) {
				return NewValidationError("phase", id, "fallback.transitionToPhaseId", fmt.Errorf("unknown phase %q", p.Fallback.TransitionToPhaseID))
			}
		}
		for _, t := range p.Transitions {
			if !t.When.IsValid() {
				return NewValidationError("phase", id, "transitions[].when", fmt.Errorf("unrecognized trigger %q", t.When))
			}
			if t.Priority < 0 {
				return NewValidationError("phase", id, "transitions[].priority", fmt.Errorf("priority must be >= 0, got %d", t.Priority))
			}
			if !v.cfg.PhaseRegistry.Has(t.To) {
				return NewValidationError("phase", id, "transitions[].to", fmt.Errorf("unknown phase %q", t.To))
			}
		}
	}
	return nil
}

// validateReachability enforces: "the phase graph's reachable set from
// entryPhaseId must equal the declared phase set (no unreachable phases)".
func (v *Validator) validateReachability() error {
	entry := v.cfg.SessionPolicy.EntryPhaseID
	if entry == "" {
		return NewValidationError("council", "", "sessionPolicy.entryPhaseId", fmt.Errorf("entryPhaseId must not be empty"))
	}
	all := v.cfg.PhaseRegistry.GetAll()
	if !v.cfg.PhaseRegistry.Has(entry) {
		return NewValidationError("council", "", "sessionPolicy.entryPhaseId", fmt.Errorf("unknown phase %q", entry))
	}

	reached := map[string]bool{entry: true}
	queue := []string{entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		phase := all[id]
		targets := make([]string, 0, len(phase.Transitions)+1)
		for _, t := range phase.Transitions {
			targets = append(targets, t.To)
		}
		if phase.Fallback.Action == FallbackTransition {
			targets = append(targets, phase.Fallback.TransitionToPhaseID)
		}
		for _, to := range targets {
			if !reached[to] {
				reached[to] = true
				queue = append(queue, to)
			}
		}
	}

	for id := range all {
		if !reached[id] {
			return NewValidationError("council", "", "phases", fmt.Errorf("phase %q is unreachable from entryPhaseId %q", id, entry))
		}
	}
	return nil
}

// validateSessionPolicy enforces maxPhaseTransitions ≥ 1 and a legal
// verbosity value.
func (v *Validator) validateSessionPolicy() error {
	sp := v.cfg.SessionPolicy
	if sp.MaxPhaseTransitions < 1 {
		return NewValidationError("council", "", "sessionPolicy.maxPhaseTransitions", fmt.Errorf("must be >= 1, got %d", sp.MaxPhaseTransitions))
	}
	if !sp.PhaseContextVerbosity.IsValid() {
		return NewValidationError("council", "", "sessionPolicy.phaseContextVerbosity", fmt.Errorf("unrecognized verbosity %q", sp.PhaseContextVerbosity))
	}
	return nil
}

// validateTurnOrder enforces that, if present, turnOrder is a permutation
// of the declared member ids.
func (v *Validator) validateTurnOrder() error {
	if len(v.cfg.TurnOrder) == 0 {
		return nil
	}
	members := v.cfg.MemberRegistry.GetAll()
	if len(v.cfg.TurnOrder) != len(members) {
		return NewValidationError("council", "", "turnOrder", fmt.Errorf("must list exactly the %d declared members, got %d entries", len(members), len(v.cfg.TurnOrder)))
	}
	seen := make(map[string]bool, len(v.cfg.TurnOrder))
	for _, id := range v.cfg.TurnOrder {
		if !v.cfg.MemberRegistry.Has(id) {
			return NewValidationError("council", "", "turnOrder", fmt.Errorf("unknown member %q", id))
		}
		if seen[id] {
			return NewValidationError("council", "", "turnOrder", fmt.Errorf("duplicate member %q", id))
		}
		seen[id] = true
	}
	return nil
}

// validateDocumentationReview enforces maxRevisionRounds ≥ 0.
func (v *Validator) validateDocumentationReview() error {
	if !v.cfg.Output.Type.IsValid() {
		return NewValidationError("council", "", "output.type", fmt.Errorf("unrecognized output type %q", v.cfg.Output.Type))
	}
	if v.cfg.Output.Type != OutputTypeDocumentation {
		return nil
	}
	if v.cfg.DocumentationReview.MaxRevisionRounds < 0 {
		return NewValidationError("council", "", "documentationReview.maxRevisionRounds", fmt.Errorf("must be >= 0, got %d", v.cfg.DocumentationReview.MaxRevisionRounds))
	}
	return nil
}
