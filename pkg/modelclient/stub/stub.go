// Package stub provides a deterministic, scriptable modelclient.ModelClient
// test double, in the same spirit as tarsy's own stub executors
// (pkg/agent.NewStubToolExecutor, pkg/queue's in-memory job stand-ins):
// tests enqueue canned responses and assert on what the engine did with
// them, without ever making a real model call.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/codeready-toolchain/council/pkg/modelclient"
)

// Response is one scripted reply. Set exactly one of Text, JSON, or Err.
// ParseError, when set, makes CompleteJSON return a ParseErrorEnvelope
// instead of decoding a value — used to exercise the deterministic
// fallback path.
type Response struct {
	Text       string
	JSON       any
	ParseError string // when non-empty, CompleteJSON returns this as the envelope message
	Err        error
}

// Client is a ModelClient whose responses are scripted per member id.
// Each member has its own ordered queue; calls beyond the scripted queue
// repeat the last scripted response so tests don't need to pad every round.
type Client struct {
	mu       sync.Mutex
	queues   map[string][]Response
	cursor   map[string]int
	calls    []Call
	memberID string // never set; ForMember returns a memberClient that carries the member id
}

// Call records one CompleteText/CompleteJSON invocation for test assertions.
type Call struct {
	MemberID     string
	SystemPrompt string
	UserPrompt   string
	Kind         string // "text" or "json"
}

// New creates an empty stub client. Use Script to queue responses per
// member before running a phase/session through it.
func New() *Client {
	return &Client{
		queues: make(map[string][]Response),
		cursor: make(map[string]int),
	}
}

// Script appends a scripted response to the given member's queue.
func (c *Client) Script(memberID string, resp Response) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[memberID] = append(c.queues[memberID], resp)
	return c
}

// ForMember returns a view of the client bound to one member id, for
// callers (pkg/phaserunner) that hold one ModelClient per member.
func (c *Client) ForMember(memberID string) modelclient.ModelClient {
	return &memberClient{client: c, memberID: memberID}
}

// Calls returns a copy of every recorded call, in call order.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Client) next(memberID string) Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.queues[memberID]
	if len(queue) == 0 {
		return Response{Text: ""}
	}
	idx := c.cursor[memberID]
	if idx >= len(queue) {
		idx = len(queue) - 1
	} else {
		c.cursor[memberID]++
	}
	return queue[idx]
}

func (c *Client) record(memberID, system, user, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{MemberID: memberID, SystemPrompt: system, UserPrompt: user, Kind: kind})
}

// memberClient adapts Client to the single-member modelclient.ModelClient
// interface the rest of the engine depends on.
type memberClient struct {
	client   *Client
	memberID string
}

func (m *memberClient) CompleteText(_ context.Context, systemPrompt, userPrompt string, _ modelclient.CompleteOptions) (string, error) {
	m.client.record(m.memberID, systemPrompt, userPrompt, "text")
	resp := m.client.next(m.memberID)
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

func (m *memberClient) CompleteJSON(_ context.Context, systemPrompt, userPrompt string, _ modelclient.CompleteOptions) (json.RawMessage, *modelclient.ParseErrorEnvelope, error) {
	m.client.record(m.memberID, systemPrompt, userPrompt, "json")
	resp := m.client.next(m.memberID)

	if resp.Err != nil {
		return nil, nil, resp.Err
	}
	if resp.ParseError != "" {
		return nil, &modelclient.ParseErrorEnvelope{Message: resp.ParseError, Raw: resp.Text}, nil
	}
	raw, err := json.Marshal(resp.JSON)
	if err != nil {
		return nil, nil, fmt.Errorf("stub: failed to marshal scripted JSON response: %w", err)
	}
	return raw, nil, nil
}
