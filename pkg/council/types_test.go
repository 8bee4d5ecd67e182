package council

import (
	"testing"

	"github.com/codeready-toolchain/council/pkg/vote"
	"github.com/stretchr/testify/assert"
)

func TestToVoteBallots_StripsRationale(t *testing.T) {
	ballots := []Ballot{
		{MemberID: "a", Choice: vote.ChoiceYes, Rationale: "looks solid"},
		{MemberID: "b", Choice: vote.ChoiceAbstain, Rationale: "unsure"},
	}

	got := ToVoteBallots(ballots)

	assert.Equal(t, []vote.Ballot{
		{MemberID: "a", Choice: vote.ChoiceYes},
		{MemberID: "b", Choice: vote.ChoiceAbstain},
	}, got)
}

func TestMemoryRecordKind_IsValid(t *testing.T) {
	assert.True(t, MemoryKindDecision.IsValid())
	assert.True(t, MemoryKindRiskPattern.IsValid())
	assert.False(t, MemoryRecordKind("hallucination").IsValid())
}
