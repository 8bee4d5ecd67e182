package memory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, importance int, updatedAt time.Time) council.MemoryRecord {
	return council.MemoryRecord{
		ID:         id,
		Kind:       council.MemoryKindDecision,
		Status:     council.MemoryStatusActive,
		Summary:    "decision " + id,
		Importance: importance,
		UpdatedAt:  updatedAt,
	}
}

func TestOpen_EmptyDirectoryYieldsEmptySets(t *testing.T) {
	dir := t.TempDir()

	store, err := memory.Open(dir, []string{"m1", "m2"})
	require.NoError(t, err)

	assert.Empty(t, store.MemberRecords("m1"))
	assert.Empty(t, store.CouncilRecords())
}

func TestUpsertMember_PersistsJSONAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	rec := record("r1", 4, time.Now())
	require.NoError(t, store.UpsertMember("m1", rec))

	assert.Len(t, store.MemberRecords("m1"), 1)

	_, err = os.Stat(filepath.Join(dir, "m1", "MEMORY.json"))
	require.NoError(t, err)
	md, err := os.ReadFile(filepath.Join(dir, "m1", "MEMORY.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "decision r1")
}

func TestUpsertMember_ReplacesByID(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	require.NoError(t, store.UpsertMember("m1", record("r1", 3, time.Now())))
	updated := record("r1", 5, time.Now())
	updated.Summary = "revised decision"
	require.NoError(t, store.UpsertMember("m1", updated))

	records := store.MemberRecords("m1")
	require.Len(t, records, 1)
	assert.Equal(t, "revised decision", records[0].Summary)
}

func TestUpsertMember_PrunesBeyondMaxRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	base := time.Now()
	for i := 0; i < memory.MaxRecords+5; i++ {
		id := "r" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		rec := record(id, i%5, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.UpsertMember("m1", rec))
	}

	assert.LessOrEqual(t, len(store.MemberRecords("m1")), memory.MaxRecords)
}

func TestUpsertCouncil_PersistsSeparatelyFromMemberSets(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	require.NoError(t, store.UpsertCouncil(record("c1", 3, time.Now())))

	assert.Len(t, store.CouncilRecords(), 1)
	assert.Empty(t, store.MemberRecords("m1"))

	_, err = os.Stat(filepath.Join(dir, "COUNCIL.json"))
	require.NoError(t, err)
}

func TestOpen_ReloadsPreviouslyPersistedRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)
	require.NoError(t, store.UpsertMember("m1", record("r1", 3, time.Now())))

	reopened, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)
	assert.Len(t, reopened.MemberRecords("m1"), 1)
}

func TestWriteAgentProfile_PersistsUnderMemberDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := memory.Open(dir, []string{"m1"})
	require.NoError(t, err)

	require.NoError(t, store.WriteAgentProfile("m1", "# Ada\n\nRole: Architect\n"))

	data, err := os.ReadFile(filepath.Join(dir, "m1", "AGENT.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ada")
}
