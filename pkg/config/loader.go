package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// councilYAMLConfig is the top-level shape of a council.yaml file.
type councilYAMLConfig struct {
	CouncilName         string                    `yaml:"councilName"`
	Purpose             string                    `yaml:"purpose"`
	SessionPolicy       SessionPolicyConfig       `yaml:"sessionPolicy"`
	Phases              []PhaseConfig             `yaml:"phases"`
	Output              OutputConfig              `yaml:"output"`
	DocumentationReview DocumentationReviewConfig `yaml:"documentationReview"`
	Members             []MemberConfig            `yaml:"members"`
	TurnOrder           []string                  `yaml:"turnOrder,omitempty"`
	Storage             StorageConfig             `yaml:"storage"`
	Execution           ExecutionConfig           `yaml:"execution"`
}

// Initialize loads, validates, and returns a ready-to-use CouncilConfig.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load council.yaml from configPath
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Apply session/storage/execution defaults
//  5. Build in-memory registries
//  6. Validate all configuration
//  7. Return CouncilConfig ready for use
func Initialize(ctx context.Context, configPath string) (*CouncilConfig, error) {
	log := slog.With("config_path", configPath)
	log.Info("Initializing configuration")

	cfg, err := load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"members", stats.Members,
		"phases", stats.Phases)

	return cfg, nil
}

func load(configPath string) (*CouncilConfig, error) {
	var raw councilYAMLConfig
	if err := loadYAML(configPath, &raw); err != nil {
		return nil, NewLoadError(configPath, err)
	}

	applySessionPolicyDefaults(&raw.SessionPolicy)
	applyStorageDefaults(&raw.Storage)
	applyExecutionDefaults(&raw.Execution)

	if raw.Output.Type == "" {
		raw.Output.Type = OutputTypeNone
	}

	members := make(map[string]*MemberConfig, len(raw.Members))
	order := make([]string, 0, len(raw.Members))
	for i := range raw.Members {
		m := raw.Members[i]
		members[m.ID] = &m
		order = append(order, m.ID)
	}

	phases := make(map[string]*PhaseConfig, len(raw.Phases))
	for i := range raw.Phases {
		p := raw.Phases[i]
		applyPhaseDefaults(&p)
		phases[p.ID] = &p
	}

	return &CouncilConfig{
		configPath:          configPath,
		CouncilName:         raw.CouncilName,
		Purpose:             raw.Purpose,
		SessionPolicy:       raw.SessionPolicy,
		Output:              raw.Output,
		DocumentationReview: raw.DocumentationReview,
		Storage:             raw.Storage,
		Execution:           raw.Execution,
		TurnOrder:           raw.TurnOrder,
		MemberRegistry:      NewMemberRegistry(members, order),
		PhaseRegistry:       NewPhaseRegistry(phases),
	}, nil
}

// applyPhaseDefaults merges defaultPhaseGovernance into a phase's zero-valued
// governance fields, via mergo, so phases that omit governance still get a
// legal (threshold ∈ (0,1]) config rather than a zero threshold.
func applyPhaseDefaults(p *PhaseConfig) {
	defaults := defaultPhaseGovernance()
	if err := mergo.Merge(&p.Governance, defaults); err != nil {
		// mergo.Merge only fails on unexported-field/type mismatches, which
		// cannot occur against our own zero-value default struct.
		slog.Warn("phase governance default merge failed, using as-loaded", "phase", p.ID, "error", err)
	}
	if p.StopConditions.MaxRounds == 0 {
		p.StopConditions.MaxRounds = 3
	}
}

func defaultPhaseGovernance() GovernanceConfig {
	return GovernanceConfig{
		RequireSeconding:  true,
		MajorityThreshold: 0.5,
		AbstainCountsAsNo: true,
	}
}

func validateConfig(cfg *CouncilConfig) error {
	v := NewValidator(cfg)
	if err := v.ValidateAll(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

func loadYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}
