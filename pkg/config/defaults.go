package config

// defaultMaxPhaseTransitions bounds phase-graph cycling when sessionPolicy
// doesn't specify one. Spec §6: "int ≥1, default 12".
const defaultMaxPhaseTransitions = 12

// applySessionPolicyDefaults fills in zero-valued SessionPolicyConfig fields.
// Called after YAML unmarshal, before validation.
func applySessionPolicyDefaults(p *SessionPolicyConfig) {
	if p.MaxPhaseTransitions == 0 {
		p.MaxPhaseTransitions = defaultMaxPhaseTransitions
	}
	if p.PhaseContextVerbosity == "" {
		p.PhaseContextVerbosity = VerbosityStandard
	}
}

// applyStorageDefaults fills in zero-valued StorageConfig fields.
func applyStorageDefaults(s *StorageConfig) {
	if s.RootDir == "" {
		s.RootDir = "./council-data"
	}
	if s.MemoryDir == "" {
		s.MemoryDir = "./council-data/memory"
	}
}

// applyExecutionDefaults fills in zero-valued ExecutionConfig fields.
func applyExecutionDefaults(e *ExecutionConfig) {
	if e.DefaultExecutorProfile == "" {
		e.DefaultExecutorProfile = "default"
	}
}
