package stub

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/council/pkg/modelclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CompleteJSON_ScriptedSequence(t *testing.T) {
	c := New()
	c.Script("a", Response{JSON: map[string]string{"action": "PASS"}})
	c.Script("a", Response{JSON: map[string]string{"action": "CONTRIBUTE"}})

	member := c.ForMember("a")

	raw1, envelope1, err1 := member.CompleteJSON(context.Background(), "sys", "first", modelclient.CompleteOptions{})
	require.NoError(t, err1)
	require.Nil(t, envelope1)
	assert.JSONEq(t, `{"action":"PASS"}`, string(raw1))

	raw2, _, err2 := member.CompleteJSON(context.Background(), "sys", "second", modelclient.CompleteOptions{})
	require.NoError(t, err2)
	assert.JSONEq(t, `{"action":"CONTRIBUTE"}`, string(raw2))

	// exhausted queue repeats the last scripted response
	raw3, _, err3 := member.CompleteJSON(context.Background(), "sys", "third", modelclient.CompleteOptions{})
	require.NoError(t, err3)
	assert.JSONEq(t, `{"action":"CONTRIBUTE"}`, string(raw3))
}

func TestClient_CompleteJSON_ParseError(t *testing.T) {
	c := New()
	c.Script("b", Response{ParseError: "unexpected token", Text: "lol not json"})

	_, envelope, err := c.ForMember("b").CompleteJSON(context.Background(), "sys", "user", modelclient.CompleteOptions{})
	require.NoError(t, err)
	require.NotNil(t, envelope)
	assert.Equal(t, "unexpected token", envelope.Message)
}

func TestClient_CompleteText_TransportError(t *testing.T) {
	c := New()
	boom := assert.AnError
	c.Script("c", Response{Err: boom})

	_, err := c.ForMember("c").CompleteText(context.Background(), "sys", "user", modelclient.CompleteOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestClient_Calls_RecordsInOrder(t *testing.T) {
	c := New()
	c.Script("a", Response{Text: "ok"})
	c.Script("b", Response{Text: "ok"})

	_, _ = c.ForMember("a").CompleteText(context.Background(), "sys", "first", modelclient.CompleteOptions{})
	_, _ = c.ForMember("b").CompleteText(context.Background(), "sys", "second", modelclient.CompleteOptions{})

	calls := c.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].MemberID)
	assert.Equal(t, "b", calls[1].MemberID)
}
