package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	onboardConfigPath string
	onboardCredsPath  string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Scaffold a starter council.yaml and .env template",
	Long: `onboard writes a starter council.yaml and .env template at the given
paths and exits. It does not resolve credentials or perform any OAuth
flow — spec §1 puts credential resolution out of scope, so this is a
stub: fill in the .env template's API keys by hand before running "council run".`,
	RunE: runOnboard,
}

func init() {
	onboardCmd.Flags().StringVar(&onboardConfigPath, "config", "./council.yaml", "Path to write the starter council.yaml")
	onboardCmd.Flags().StringVar(&onboardCredsPath, "credentials", "", "Path to write the starter .env (default: alongside --config)")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(onboardConfigPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", onboardConfigPath)
	}
	if err := os.MkdirAll(filepath.Dir(onboardConfigPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(onboardConfigPath, []byte(starterCouncilYAML), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", onboardConfigPath, err)
	}
	fmt.Printf("Wrote %s\n", onboardConfigPath)

	credsPath := onboardCredsPath
	if credsPath == "" {
		credsPath = filepath.Join(filepath.Dir(onboardConfigPath), ".env")
	}
	if _, err := os.Stat(credsPath); err == nil {
		fmt.Printf("%s already exists, leaving it untouched\n", credsPath)
		return nil
	}
	if err := os.WriteFile(credsPath, []byte(starterEnvTemplate), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", credsPath, err)
	}
	fmt.Printf("Wrote %s\n", credsPath)
	fmt.Println("Fill in the provider API keys, then run: council run --config", onboardConfigPath, "--prompt \"...\"")
	return nil
}

const starterCouncilYAML = `councilName: New Council
purpose: Describe what this council deliberates on.

members:
  - id: member-a
    name: Member A
    role: Generalist
    systemPrompt: You are a careful, thorough deliberation council member.
    model:
      provider: openai
      model: gpt-4o
  - id: member-b
    name: Member B
    role: Skeptic
    systemPrompt: You push back on weak reasoning and demand evidence.
    model:
      provider: openai
      model: gpt-4o
  - id: member-c
    name: Member C
    role: Synthesizer
    systemPrompt: You look for common ground and practical next steps.
    model:
      provider: openai
      model: gpt-4o

sessionPolicy:
  entryPhaseId: discussion
  maxPhaseTransitions: 10
  phaseContextVerbosity: standard

phases:
  - id: discussion
    goal: Discuss the prompt and reach a majority-backed resolution.
    governance:
      requireSeconding: true
      majorityThreshold: 0.5
      abstainCountsAsNo: true
    stopConditions:
      maxRounds: 5
      endOnMajorityVote: true
    fallback:
      resolution: No consensus reached within the round budget.
      action: END_SESSION

output:
  type: none

documentationReview:
  maxRevisionRounds: 2

storage:
  rootDir: ./sessions
  memoryDir: ./memory

execution:
  requireHumanApproval: true
  defaultExecutorProfile: default
`

const starterEnvTemplate = `# Fill in per-provider credentials referenced by members[].model.provider
# in council.yaml. For provider "openai", council looks up OPENAI_BASE_URL
# and OPENAI_API_KEY.
OPENAI_BASE_URL=https://api.openai.com/v1/chat/completions
OPENAI_API_KEY=
`
