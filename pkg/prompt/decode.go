package prompt

import (
	"context"

	"github.com/codeready-toolchain/council/pkg/modelclient"
)

// RequestTurnAction calls the member's CompleteJSON and normalizes the
// result into a TurnAction, applying the deterministic fallback on any
// parse failure. The returned error is non-nil only for transport/provider
// failures, which are fatal to the session (spec §5/§7).
func RequestTurnAction(ctx context.Context, client modelclient.ModelClient, systemPrompt, userPrompt string, opts modelclient.CompleteOptions) (TurnAction, bool, error) {
	raw, envelope, err := modelclient.DecodeJSON[rawTurnAction](ctx, client, systemPrompt, userPrompt, opts)
	if err != nil {
		return TurnAction{}, false, err
	}
	if raw == nil {
		raw = &rawTurnAction{}
	}
	action, usedFallback := NormalizeTurnAction(raw, envelope)
	return action, usedFallback, nil
}

// RequestSecondingResponse calls the member's CompleteJSON and normalizes
// the result into a SecondingResponse.
func RequestSecondingResponse(ctx context.Context, client modelclient.ModelClient, systemPrompt, userPrompt string, opts modelclient.CompleteOptions) (SecondingResponse, bool, error) {
	raw, envelope, err := modelclient.DecodeJSON[rawSecondingResponse](ctx, client, systemPrompt, userPrompt, opts)
	if err != nil {
		return SecondingResponse{}, false, err
	}
	if raw == nil {
		raw = &rawSecondingResponse{}
	}
	resp, usedFallback := NormalizeSecondingResponse(raw, envelope)
	return resp, usedFallback, nil
}

// RequestVoteResponse calls the member's CompleteJSON and normalizes the
// result into a VoteResponse.
func RequestVoteResponse(ctx context.Context, client modelclient.ModelClient, systemPrompt, userPrompt string, opts modelclient.CompleteOptions) (VoteResponse, bool, error) {
	raw, envelope, err := modelclient.DecodeJSON[rawVoteResponse](ctx, client, systemPrompt, userPrompt, opts)
	if err != nil {
		return VoteResponse{}, false, err
	}
	if raw == nil {
		raw = &rawVoteResponse{}
	}
	resp, usedFallback := NormalizeVoteResponse(raw, envelope)
	return resp, usedFallback, nil
}

// RequestLeaderElectionBallot calls the member's CompleteJSON and
// normalizes the result into a LeaderElectionBallot.
func RequestLeaderElectionBallot(ctx context.Context, client modelclient.ModelClient, systemPrompt, userPrompt string, opts modelclient.CompleteOptions, memberDeclarationOrder []string) (LeaderElectionBallot, bool, error) {
	raw, envelope, err := modelclient.DecodeJSON[rawLeaderElectionBallot](ctx, client, systemPrompt, userPrompt, opts)
	if err != nil {
		return LeaderElectionBallot{}, false, err
	}
	if raw == nil {
		raw = &rawLeaderElectionBallot{}
	}
	ballot, usedFallback := NormalizeLeaderElectionBallot(raw, envelope, memberDeclarationOrder)
	return ballot, usedFallback, nil
}

// RequestLeaderSummary calls the leader's CompleteJSON and normalizes the
// result into a LeaderSummary.
func RequestLeaderSummary(ctx context.Context, client modelclient.ModelClient, systemPrompt, userPrompt string, opts modelclient.CompleteOptions, fallbackResolution string) (LeaderSummary, bool, error) {
	raw, envelope, err := modelclient.DecodeJSON[rawLeaderSummary](ctx, client, systemPrompt, userPrompt, opts)
	if err != nil {
		return LeaderSummary{}, false, err
	}
	if raw == nil {
		raw = &rawLeaderSummary{}
	}
	summary, usedFallback := NormalizeLeaderSummary(raw, envelope, fallbackResolution)
	return summary, usedFallback, nil
}

// RequestFeedbackDocument calls a reviewer's CompleteJSON and normalizes the
// result into a FeedbackDocument.
func RequestFeedbackDocument(ctx context.Context, client modelclient.ModelClient, systemPrompt, userPrompt string, opts modelclient.CompleteOptions) (FeedbackDocument, bool, error) {
	raw, envelope, err := modelclient.DecodeJSON[rawFeedbackDocument](ctx, client, systemPrompt, userPrompt, opts)
	if err != nil {
		return FeedbackDocument{}, false, err
	}
	if raw == nil {
		raw = &rawFeedbackDocument{}
	}
	doc, usedFallback := NormalizeFeedbackDocument(raw, envelope)
	return doc, usedFallback, nil
}
