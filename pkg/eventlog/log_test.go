package eventlog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesSessionDirectory(t *testing.T) {
	root := t.TempDir()

	log, err := eventlog.New(root, "sess-1")
	require.NoError(t, err)

	info, err := os.Stat(log.SessionDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(root, "sessions", "sess-1"), log.SessionDir())
}

func TestAppend_PersistsEventsJSONAndTranscript(t *testing.T) {
	root := t.TempDir()
	log, err := eventlog.New(root, "sess-1")
	require.NoError(t, err)

	ev := council.Event{
		ID:        1,
		SessionID: "sess-1",
		Timestamp: time.Unix(0, 0),
		Type:      council.EventMessageContributed,
		Round:     1,
		TurnIndex: 1,
		ActorID:   "m1",
		Payload:   council.MessageContributedPayload{Message: "let's consider sharding"},
	}
	require.NoError(t, log.Append(ev))

	eventsData, err := os.ReadFile(filepath.Join(log.SessionDir(), "events.json"))
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(eventsData, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "MESSAGE_CONTRIBUTED", decoded[0]["Type"])

	transcript, err := os.ReadFile(filepath.Join(log.SessionDir(), "transcript.md"))
	require.NoError(t, err)
	assert.Contains(t, string(transcript), "let's consider sharding")
}

func TestAppend_KeepsEventsInOrder(t *testing.T) {
	root := t.TempDir()
	log, err := eventlog.New(root, "sess-1")
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, log.Append(council.Event{
			ID:      i,
			Type:    council.EventPassRecorded,
			ActorID: "m1",
			Payload: council.PassRecordedPayload{Reason: "thinking"},
		}))
	}

	events := log.Events()
	require.Len(t, events, 3)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, int64(3), events[2].ID)
}

func TestWriteSessionResult_PersistsSessionJSON(t *testing.T) {
	root := t.TempDir()
	log, err := eventlog.New(root, "sess-1")
	require.NoError(t, err)

	result := council.SessionResult{
		SessionID:       "sess-1",
		LeaderID:        "m1",
		EndedBy:         "MAJORITY_VOTE",
		FinalResolution: "ship it",
	}
	require.NoError(t, log.WriteSessionResult(result))

	data, err := os.ReadFile(filepath.Join(log.SessionDir(), "session.json"))
	require.NoError(t, err)
	var decoded council.SessionResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result, decoded)
}

func TestArtifactPath_JoinsSessionDir(t *testing.T) {
	root := t.TempDir()
	log, err := eventlog.New(root, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(log.SessionDir(), "leader-summary.md"), log.ArtifactPath("leader-summary.md"))
}
