package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is a ModelClient backed by a single HTTP JSON endpoint — the
// generic substitute for tarsy's gRPC connection to its Python LLM service:
// that service (and its protobuf/grpc wire format) is out of scope here (see
// DESIGN.md's dropped-dependency notes), so requests go straight to
// whatever OpenAI-compatible chat-completions endpoint the deployment
// points at, over stdlib net/http. No pack example ships a concrete LLM
// provider SDK to ground a richer client on.
type HTTPClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewHTTPClient builds an HTTPClient with a sane request timeout default.
func NewHTTPClient(baseURL, apiKey, model string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// CompleteText sends systemPrompt/userPrompt as a two-message chat
// completion request and returns the first choice's content verbatim.
func (c *HTTPClient) CompleteText(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error) {
	resp, err := c.complete(ctx, systemPrompt, userPrompt, opts)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices array", ErrTransport)
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON sends the same request as CompleteText, then extracts a
// single JSON value from the response text via Extract. Extraction failure
// is reported as a ParseErrorEnvelope, not a transport error — the call
// itself succeeded.
func (c *HTTPClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (json.RawMessage, *ParseErrorEnvelope, error) {
	resp, err := c.complete(ctx, systemPrompt, userPrompt, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil, fmt.Errorf("%w: empty choices array", ErrTransport)
	}
	text := resp.Choices[0].Message.Content
	raw, ok := Extract(text)
	if !ok {
		return nil, &ParseErrorEnvelope{Message: "no valid JSON found in model response", Raw: text}, nil
	}
	return raw, nil, nil
}

func (c *HTTPClient) complete(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (*chatResponse, error) {
	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpResp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, httpResp.StatusCode, string(body))
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return &resp, nil
}
