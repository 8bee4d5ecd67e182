// Package modelclient defines the boundary between the council engine and
// the language models that answer for each member. A ModelClient is an
// opaque request/response oracle: it is never retried by the caller and
// carries no notion of conversation state across calls.
package modelclient

import (
	"context"
	"encoding/json"
	"errors"
)

// CompleteOptions tunes a single completion call. Zero values mean "use the
// client's own defaults."
type CompleteOptions struct {
	Temperature float64
	MaxTokens   int
}

// ParseErrorEnvelope is returned by CompleteJSON in place of a value when the
// model's response could not be parsed into valid JSON, even after repair.
// Its presence is the signal pkg/prompt's normalizer uses to produce a
// deterministic fallback instead of aborting the session.
type ParseErrorEnvelope struct {
	Message string
	Raw     string
}

func (e *ParseErrorEnvelope) Error() string {
	return "model json parse error: " + e.Message
}

// ErrTransport is wrapped by errors returned from CompleteText/CompleteJSON
// that originate from the transport or provider layer (network, auth,
// non-OK status) rather than from response parsing. Such errors are fatal
// to the session (spec: "one call per prompt; transport errors are fatal").
var ErrTransport = errors.New("modelclient: transport error")

// ModelClient is the per-member interface every language-model backend must
// implement. It is the only external collaborator pkg/phaserunner calls
// into.
type ModelClient interface {
	// CompleteText requests a free-text completion. A returned error is
	// always a transport/provider failure — text responses have nothing to
	// parse, so there is no parse-error path here.
	CompleteText(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error)

	// CompleteJSON requests a completion and extracts a single JSON value
	// from it (see Extract). If extraction or repair fails, it returns a
	// non-nil ParseErrorEnvelope and a nil error — this is not a transport
	// failure, and callers must not treat it as fatal. A non-nil error
	// always indicates a transport/provider failure.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (json.RawMessage, *ParseErrorEnvelope, error)
}

// DecodeJSON calls client.CompleteJSON and unmarshals the result into a
// fresh T. Go interface methods cannot be generic, so the generic decode
// step lives here instead of on ModelClient itself.
//
// Three outcomes: (value, nil, nil) on success; (nil, envelope, nil) when
// the model's response could not be parsed or decoded into T; (nil, nil,
// err) on transport failure.
func DecodeJSON[T any](ctx context.Context, client ModelClient, systemPrompt, userPrompt string, opts CompleteOptions) (*T, *ParseErrorEnvelope, error) {
	raw, envelope, err := client.CompleteJSON(ctx, systemPrompt, userPrompt, opts)
	if err != nil {
		return nil, nil, err
	}
	if envelope != nil {
		return nil, envelope, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &ParseErrorEnvelope{Message: err.Error(), Raw: string(raw)}, nil
	}
	return &value, nil, nil
}
