package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/modelclient"
	"github.com/codeready-toolchain/council/pkg/orchestrator"
	"github.com/codeready-toolchain/council/pkg/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	runConfigPath       string
	runPrompt           string
	runApproveExecution bool
	runOutputType       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one council deliberation session",
	RunE:  runSession,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", getEnv("COUNCIL_CONFIG", "./council.yaml"), "Path to council.yaml")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "The human prompt that opens the session")
	runCmd.Flags().BoolVar(&runApproveExecution, "approve-execution", false, "Approve the leader's execution handoff, if one is declared")
	runCmd.Flags().StringVar(&runOutputType, "output-type", "", "Override the configured output type (documentation|none)")
	_ = runCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	envPath := filepath.Join(filepath.Dir(runConfigPath), ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	}

	cfg, err := config.Initialize(ctx, runConfigPath)
	if err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}
	if runOutputType != "" {
		cfg.Output.Type = config.OutputType(runOutputType)
	}

	stats := cfg.Stats()
	slog.Info("starting council session", "app", version.Full(), "council", cfg.CouncilName,
		"members", stats.Members, "phases", stats.Phases)

	clients, err := buildClients(cfg)
	if err != nil {
		return fmt.Errorf("wire model clients: %w", err)
	}

	orch := orchestrator.New(cfg, clients, orchestrator.Options{
		IDs:    council.NewUUIDGenerator(),
		Clock:  council.SystemClock{},
		Logger: slog.Default(),
	})

	result, err := orch.Run(ctx, runPrompt, runApproveExecution)
	if err != nil {
		return fmt.Errorf("run session: %w", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

// buildClients wires one modelclient.ModelClient per configured member,
// reading each provider's base URL and API key from
// "<PROVIDER>_BASE_URL"/"<PROVIDER>_API_KEY" environment variables — the
// same provider-keyed env-var convention tarsy's llm-providers.yaml +
// per-provider credentials split follows.
func buildClients(cfg *config.CouncilConfig) (orchestrator.Clients, error) {
	clients := make(orchestrator.Clients)
	for _, id := range cfg.MemberRegistry.DeclarationOrder() {
		member, err := cfg.MemberRegistry.Get(id)
		if err != nil {
			return nil, err
		}
		provider := strings.ToUpper(member.Model.Provider)
		baseURL := os.Getenv(provider + "_BASE_URL")
		if baseURL == "" {
			return nil, fmt.Errorf("missing %s_BASE_URL for member %q (provider %q)", provider, id, member.Model.Provider)
		}
		apiKey := os.Getenv(provider + "_API_KEY")
		clients[id] = modelclient.NewHTTPClient(baseURL, apiKey, member.Model.Model)
	}
	return clients, nil
}
