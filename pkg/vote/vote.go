// Package vote computes motion pass/fail outcomes from collected ballots.
// It is pure arithmetic: no I/O, no clock, no randomness. The accumulate-
// then-threshold-check shape is grounded on a blockchain governance engine's
// ComputeTally, adapted from basis-point voting power to one-member-one-vote
// and from a quorum+ratio check to the spec's full-denominator majority.
package vote

import (
	"fmt"
	"math"
)

// Choice is one member's ballot on a motion.
type Choice string

const (
	ChoiceYes     Choice = "YES"
	ChoiceNo      Choice = "NO"
	ChoiceAbstain Choice = "ABSTAIN"
)

// IsValid reports whether the choice is one of the recognized values.
func (c Choice) IsValid() bool {
	switch c {
	case ChoiceYes, ChoiceNo, ChoiceAbstain:
		return true
	default:
		return false
	}
}

// Ballot is one member's vote, paired with the member id that cast it.
type Ballot struct {
	MemberID string
	Choice   Choice
}

// Governance carries the two governance parameters that determine how
// ballots are tallied.
type Governance struct {
	Threshold         float64 // ∈ (0,1]
	AbstainCountsAsNo bool
}

// Tally is the result of counting a motion's ballots against the full
// council size. The denominator is always TotalCouncilSize, never the
// number of ballots actually returned — spec §4.7: "The denominator is
// always total council size, never ballots returned."
type Tally struct {
	Passed            bool
	YesVotes          int
	NoVotesEffective  int
	TotalCouncilSize  int
	RequiredYes       int
	MajorityThreshold float64
}

// Compute tallies ballots under the given governance rules. totalCouncilSize
// must be the full council size, independent of len(ballots) — callers must
// pass every member's seat even if some member's ballot collection failed
// upstream (which should not happen given the blind-voting fan-out, but this
// function does not assume it).
func Compute(ballots []Ballot, gov Governance, totalCouncilSize int) (Tally, error) {
	if totalCouncilSize <= 0 {
		return Tally{}, fmt.Errorf("vote: totalCouncilSize must be positive, got %d", totalCouncilSize)
	}
	if gov.Threshold <= 0 || gov.Threshold > 1 {
		return Tally{}, fmt.Errorf("vote: threshold must be in (0,1], got %v", gov.Threshold)
	}

	var yesVotes, noVotes int
	for _, b := range ballots {
		switch b.Choice {
		case ChoiceYes:
			yesVotes++
		case ChoiceNo:
			noVotes++
		case ChoiceAbstain:
			// counted below via noVotesEffective derivation
		default:
			return Tally{}, fmt.Errorf("vote: invalid ballot choice %q from member %q", b.Choice, b.MemberID)
		}
	}

	noVotesEffective := noVotes
	if gov.AbstainCountsAsNo {
		noVotesEffective = totalCouncilSize - yesVotes
	}

	requiredYes := requiredYesVotes(gov.Threshold, totalCouncilSize)

	return Tally{
		Passed:            yesVotes >= requiredYes,
		YesVotes:          yesVotes,
		NoVotesEffective:  noVotesEffective,
		TotalCouncilSize:  totalCouncilSize,
		RequiredYes:       requiredYes,
		MajorityThreshold: gov.Threshold,
	}, nil
}

// requiredYesVotes implements spec §4.7's formula exactly:
// threshold == 0.5 uses floor(total/2)+1 (a strict majority, the common
// case); any other threshold uses ceil(total*threshold).
func requiredYesVotes(threshold float64, total int) int {
	if threshold == 0.5 {
		return total/2 + 1
	}
	return int(math.Ceil(threshold * float64(total)))
}
