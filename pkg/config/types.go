package config

// GovernanceConfig controls how a phase's motions are seconded and tallied.
type GovernanceConfig struct {
	RequireSeconding  bool    `yaml:"requireSeconding"`
	MajorityThreshold float64 `yaml:"majorityThreshold"`
	AbstainCountsAsNo bool    `yaml:"abstainCountsAsNo"`
}

// StopConditions bounds a phase's round loop and says whether a passing
// motion ends the phase outright.
type StopConditions struct {
	MaxRounds         int  `yaml:"maxRounds"`
	EndOnMajorityVote bool `yaml:"endOnMajorityVote"`
}

// MemoryPolicyConfig controls whether a phase reads/writes member and
// council memory, and whether it carries forward the prior phase's summary.
type MemoryPolicyConfig struct {
	ReadMemberMemory        bool `yaml:"readMemberMemory"`
	WriteMemberMemory       bool `yaml:"writeMemberMemory"`
	WriteCouncilMemory      bool `yaml:"writeCouncilMemory"`
	IncludePriorPhaseSummary bool `yaml:"includePriorPhaseSummary"`
}

// EvidenceRequirements describes what a phase expects members to back their
// contributions with; enforced at the prompt-construction layer, not
// mechanically verified against model output.
type EvidenceRequirements struct {
	MinCitations          int  `yaml:"minCitations"`
	RequireExplicitAssumptions bool `yaml:"requireExplicitAssumptions"`
	RequireRiskRegister    bool `yaml:"requireRiskRegister"`
}

// Deliverable is one expected artifact of a phase's discussion.
type Deliverable struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// FallbackConfig names what happens when a phase's round loop exhausts
// without a passing motion.
type FallbackConfig struct {
	Resolution         string         `yaml:"resolution"`
	Action             FallbackAction `yaml:"action"`
	TransitionToPhaseID string        `yaml:"transitionToPhaseId,omitempty"`
}

// TransitionConfig is one edge out of a phase in the deliberation graph.
type TransitionConfig struct {
	To       string            `yaml:"to"`
	When     TransitionTrigger `yaml:"when"`
	Priority int               `yaml:"priority"`
}

// SessionPolicyConfig governs the top-level phase sequencing loop.
type SessionPolicyConfig struct {
	EntryPhaseID          string                `yaml:"entryPhaseId"`
	MaxPhaseTransitions   int                   `yaml:"maxPhaseTransitions"`
	PhaseContextVerbosity PhaseContextVerbosity `yaml:"phaseContextVerbosity"`
}

// OutputConfig selects the session's closing artifact.
type OutputConfig struct {
	Type OutputType `yaml:"type"`
}

// DocumentationReviewConfig bounds the documentation review loop.
type DocumentationReviewConfig struct {
	MaxRevisionRounds int `yaml:"maxRevisionRounds"`
}

// StorageConfig names the on-disk roots for session artifacts and memory.
type StorageConfig struct {
	RootDir   string `yaml:"rootDir"`
	MemoryDir string `yaml:"memoryDir"`
}

// ExecutionConfig governs the execution-handoff gate.
type ExecutionConfig struct {
	RequireHumanApproval   bool   `yaml:"requireHumanApproval"`
	DefaultExecutorProfile string `yaml:"defaultExecutorProfile"`
}
