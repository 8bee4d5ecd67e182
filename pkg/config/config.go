package config

// CouncilConfig is the umbrella configuration object: the immutable input
// spec for one council deliberation session. This is the object returned
// by Initialize() and consumed by pkg/orchestrator.
type CouncilConfig struct {
	configPath string // path to the loaded council file, for reference

	CouncilName string
	Purpose     string

	SessionPolicy       SessionPolicyConfig
	Output              OutputConfig
	DocumentationReview DocumentationReviewConfig
	Storage             StorageConfig
	Execution           ExecutionConfig

	// TurnOrder is a permutation of member ids, if configured; otherwise
	// turn order falls back to MemberRegistry.DeclarationOrder().
	TurnOrder []string

	MemberRegistry *MemberRegistry
	PhaseRegistry  *PhaseRegistry
}

// Stats summarizes a loaded CouncilConfig for startup logging.
type Stats struct {
	Members int
	Phases  int
}

// Stats returns configuration statistics for logging.
func (c *CouncilConfig) Stats() Stats {
	return Stats{
		Members: c.MemberRegistry.Len(),
		Phases:  c.PhaseRegistry.Len(),
	}
}

// ConfigPath returns the path the configuration was loaded from.
func (c *CouncilConfig) ConfigPath() string {
	return c.configPath
}

// GetMember retrieves a member configuration by id.
// Convenience wrapper around MemberRegistry.Get().
func (c *CouncilConfig) GetMember(id string) (*MemberConfig, error) {
	return c.MemberRegistry.Get(id)
}

// GetPhase retrieves a phase configuration by id.
// Convenience wrapper around PhaseRegistry.Get().
func (c *CouncilConfig) GetPhase(id string) (*PhaseConfig, error) {
	return c.PhaseRegistry.Get(id)
}

// EffectiveTurnOrder returns the configured TurnOrder if present, else the
// member registry's declaration order. Spec §4.4: "Deterministic:
// config.turnOrder if present, else member declaration order."
func (c *CouncilConfig) EffectiveTurnOrder() []string {
	if len(c.TurnOrder) > 0 {
		order := make([]string, len(c.TurnOrder))
		copy(order, c.TurnOrder)
		return order
	}
	return c.MemberRegistry.DeclarationOrder()
}
