package config

import (
	"fmt"
	"sync"
)

// PhaseConfig defines one node in the deliberation graph: its goal, the
// governance rules for motions raised inside it, and its outgoing
// transitions.
type PhaseConfig struct {
	ID                   string                    `yaml:"id"`
	Goal                 string                    `yaml:"goal"`
	PromptGuidance       []string                  `yaml:"promptGuidance,omitempty"`
	Deliverables         []Deliverable             `yaml:"deliverables,omitempty"`
	Governance           GovernanceConfig          `yaml:"governance"`
	StopConditions       StopConditions            `yaml:"stopConditions"`
	MemoryPolicy         MemoryPolicyConfig        `yaml:"memoryPolicy"`
	EvidenceRequirements EvidenceRequirements      `yaml:"evidenceRequirements"`
	QualityGates         []string                  `yaml:"qualityGates,omitempty"`
	Fallback             FallbackConfig            `yaml:"fallback"`
	Transitions          []TransitionConfig        `yaml:"transitions,omitempty"`
}

// PhaseRegistry stores phase configurations in memory with thread-safe access.
type PhaseRegistry struct {
	phases map[string]*PhaseConfig
	mu     sync.RWMutex
}

// NewPhaseRegistry creates a new phase registry from a defensive copy of the
// given map.
func NewPhaseRegistry(phases map[string]*PhaseConfig) *PhaseRegistry {
	copied := make(map[string]*PhaseConfig, len(phases))
	for k, v := range phases {
		copied[k] = v
	}
	return &PhaseRegistry{phases: copied}
}

// Get retrieves a phase configuration by id (thread-safe).
func (r *PhaseRegistry) Get(phaseID string) (*PhaseConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	phase, exists := r.phases[phaseID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPhaseNotFound, phaseID)
	}
	return phase, nil
}

// GetAll returns all phase configurations (thread-safe, returns a copy).
func (r *PhaseRegistry) GetAll() map[string]*PhaseConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*PhaseConfig, len(r.phases))
	for k, v := range r.phases {
		result[k] = v
	}
	return result
}

// Has checks if a phase exists in the registry (thread-safe).
func (r *PhaseRegistry) Has(phaseID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.phases[phaseID]
	return exists
}

// Len returns the number of phases in the registry (thread-safe).
func (r *PhaseRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.phases)
}

// IDs returns the set of phase ids, in no particular order.
func (r *PhaseRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.phases))
	for id := range r.phases {
		ids = append(ids, id)
	}
	return ids
}
