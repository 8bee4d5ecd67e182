package modelclient_test

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/council/pkg/modelclient"
	"github.com/codeready-toolchain/council/pkg/modelclient/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteResponse struct {
	Ballot    string `json:"ballot"`
	Rationale string `json:"rationale"`
}

func TestDecodeJSON_Success(t *testing.T) {
	c := stub.New()
	c.Script("a", stub.Response{JSON: voteResponse{Ballot: "YES", Rationale: "agreed"}})

	got, envelope, err := modelclient.DecodeJSON[voteResponse](context.Background(), c.ForMember("a"), "sys", "user", modelclient.CompleteOptions{})
	require.NoError(t, err)
	require.Nil(t, envelope)
	assert.Equal(t, "YES", got.Ballot)
}

func TestDecodeJSON_ParseErrorEnvelope(t *testing.T) {
	c := stub.New()
	c.Script("a", stub.Response{ParseError: "not valid json", Text: "garbage"})

	got, envelope, err := modelclient.DecodeJSON[voteResponse](context.Background(), c.ForMember("a"), "sys", "user", modelclient.CompleteOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NotNil(t, envelope)
	assert.Equal(t, "not valid json", envelope.Message)
}

func TestDecodeJSON_SchemaMismatchYieldsEnvelope(t *testing.T) {
	c := stub.New()
	// valid JSON, but wrong shape for voteResponse.Ballot (object instead of string)
	c.Script("a", stub.Response{JSON: map[string]any{"ballot": map[string]string{"nested": "oops"}}})

	got, envelope, err := modelclient.DecodeJSON[voteResponse](context.Background(), c.ForMember("a"), "sys", "user", modelclient.CompleteOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NotNil(t, envelope)
}

func TestDecodeJSON_TransportErrorPropagates(t *testing.T) {
	c := stub.New()
	c.Script("a", stub.Response{Err: assert.AnError})

	got, envelope, err := modelclient.DecodeJSON[voteResponse](context.Background(), c.ForMember("a"), "sys", "user", modelclient.CompleteOptions{})
	assert.Nil(t, got)
	assert.Nil(t, envelope)
	assert.ErrorIs(t, err, assert.AnError)
}
