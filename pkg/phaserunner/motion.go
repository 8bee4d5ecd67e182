package phaserunner

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/council/pkg/council"
	"github.com/codeready-toolchain/council/pkg/prompt"
	"github.com/codeready-toolchain/council/pkg/transition"
	"github.com/codeready-toolchain/council/pkg/vote"
)

// runMotion drives the motion sub-machine for one CALL_VOTE action: optional
// seconding, blind voting, tally, and — on a majority-vote pass that the
// phase is configured to end on — phase closure. It returns closed=true
// only when the phase should stop immediately.
func (r *Runner) runMotion(ctx context.Context, callerID string, round int, action prompt.TurnAction, result *council.PhaseResult) (bool, error) {
	maxRounds := r.phase.StopConditions.MaxRounds

	motion := council.Motion{
		ID:             r.deps.IDs.NewMotionID(),
		Title:          action.MotionTitle,
		Text:           action.MotionText,
		DecisionIfPass: action.DecisionIfPass,
		ProposerID:     callerID,
		Round:          round,
		TurnIndex:      *r.turnIndex,
	}
	motionPhaseState := "VOTING"
	if r.phase.Governance.RequireSeconding {
		motionPhaseState = "SECONDING"
	}
	if err := r.emit(round, *r.turnIndex, callerID, council.EventMotionCalled, motionPhaseState, council.MotionCalledPayload{
		Motion: motion,
	}); err != nil {
		return false, err
	}

	if r.phase.Governance.RequireSeconding {
		seconderID, seconded, err := r.runSeconding(ctx, motion, callerID, round, maxRounds)
		if err != nil {
			return false, err
		}
		if !seconded {
			if err := r.emit(round, *r.turnIndex, "", council.EventMotionNotSeconded, "DISCUSSION", council.MotionNotSecondedPayload{
				MotionID: motion.ID,
			}); err != nil {
				return false, err
			}
			return false, nil
		}
		if err := r.emit(round, *r.turnIndex, seconderID, council.EventMotionSeconded, "VOTING", council.MotionSecondedPayload{
			MotionID: motion.ID, SeconderID: seconderID,
		}); err != nil {
			return false, err
		}
	}

	ballots, err := r.runVoting(ctx, motion, round, maxRounds)
	if err != nil {
		return false, err
	}
	for _, b := range ballots {
		if err := r.emit(round, *r.turnIndex, b.MemberID, council.EventVoteCast, "VOTING", council.VoteCastPayload{
			MotionID: motion.ID, Choice: b.Choice, Rationale: b.Rationale,
		}); err != nil {
			return false, err
		}
	}

	tally, err := vote.Compute(council.ToVoteBallots(ballots), vote.Governance{
		Threshold:         r.phase.Governance.MajorityThreshold,
		AbstainCountsAsNo: r.phase.Governance.AbstainCountsAsNo,
	}, len(r.turnOrder))
	if err != nil {
		return false, fmt.Errorf("phaserunner: tally motion %s: %w", motion.ID, err)
	}

	if err := r.emit(round, *r.turnIndex, "", council.EventVoteResult, "VOTING", council.VoteResultPayload{
		MotionID:          motion.ID,
		Passed:            tally.Passed,
		YesVotes:          tally.YesVotes,
		NoVotesEffective:  tally.NoVotesEffective,
		TotalCouncilSize:  tally.TotalCouncilSize,
		MajorityThreshold: tally.MajorityThreshold,
	}); err != nil {
		return false, err
	}

	if tally.Passed && r.phase.StopConditions.EndOnMajorityVote {
		result.EndedBy = "MAJORITY_VOTE"
		result.FinalResolution = motion.DecisionIfPass
		winning := motion
		result.WinningMotion = &winning
		if err := r.emit(round, *r.turnIndex, "", council.EventPhaseCompleted, "", council.PhaseCompletedPayload{
			EndedBy: result.EndedBy, FinalResolution: result.FinalResolution,
		}); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// runSeconding fans seconding prompts out to every non-caller member (in
// parallel), awaits all responses, emits each SECONDING_RESPONSE in
// deterministic non-caller turn order, then picks the first (in that same
// order) member whose response seconds the motion.
func (r *Runner) runSeconding(ctx context.Context, motion council.Motion, callerID string, round, maxRounds int) (string, bool, error) {
	nonCaller := make([]string, 0, len(r.turnOrder)-1)
	for _, id := range r.turnOrder {
		if id != callerID {
			nonCaller = append(nonCaller, id)
		}
	}

	responses, err := fanOut(len(nonCaller), func(i int) (prompt.SecondingResponse, error) {
		memberID := nonCaller[i]
		return r.requestSeconding(ctx, memberID, motion, round, maxRounds)
	})
	if err != nil {
		return "", false, err
	}

	seconderID := ""
	for i, resp := range responses {
		memberID := nonCaller[i]
		if err := r.emit(round, *r.turnIndex, memberID, council.EventSecondingResponse, "SECONDING", council.SecondingResponsePayload{
			MotionID: motion.ID, Second: resp.Second, Rationale: resp.Rationale,
		}); err != nil {
			return "", false, err
		}
		if resp.Second && seconderID == "" {
			seconderID = memberID
		}
	}

	return seconderID, seconderID != "", nil
}

func (r *Runner) requestSeconding(ctx context.Context, memberID string, motion council.Motion, round, maxRounds int) (prompt.SecondingResponse, error) {
	member, err := r.deps.Members.Get(memberID)
	if err != nil {
		return prompt.SecondingResponse{}, err
	}
	client, err := r.clientFor(memberID)
	if err != nil {
		return prompt.SecondingResponse{}, err
	}

	tctx := r.turnContext(round, maxRounds, memberID)
	packet := transition.BuildPacket(r.phase, r.deps.PhaseRegistry, round, maxRounds, nil, r.deps.Verbosity)
	system, user := prompt.BuildSecondingPrompt(r.deps.Identity, member, r.phase, packet, tctx, motion.Title, motion.Text, motion.DecisionIfPass)

	resp, usedFallback, err := prompt.RequestSecondingResponse(ctx, client, system, user, r.deps.CompleteOpts)
	if err != nil {
		return prompt.SecondingResponse{}, fmt.Errorf("phaserunner: seconding response for %s: %w", memberID, err)
	}
	r.noteFallback(memberID, usedFallback)
	return resp, nil
}

// runVoting fans vote prompts out to every member (including the motion's
// caller) in parallel and awaits every ballot before returning — the
// blindness invariant requires no member's vote to be observable before all
// ballots are collected. Ballots are returned in turn order.
func (r *Runner) runVoting(ctx context.Context, motion council.Motion, round, maxRounds int) ([]council.Ballot, error) {
	responses, err := fanOut(len(r.turnOrder), func(i int) (prompt.VoteResponse, error) {
		memberID := r.turnOrder[i]
		return r.requestVote(ctx, memberID, motion, round, maxRounds)
	})
	if err != nil {
		return nil, err
	}

	ballots := make([]council.Ballot, len(r.turnOrder))
	for i, resp := range responses {
		ballots[i] = council.Ballot{
			MemberID:  r.turnOrder[i],
			Choice:    vote.Choice(resp.Ballot),
			Rationale: resp.Rationale,
		}
	}
	return ballots, nil
}

func (r *Runner) requestVote(ctx context.Context, memberID string, motion council.Motion, round, maxRounds int) (prompt.VoteResponse, error) {
	member, err := r.deps.Members.Get(memberID)
	if err != nil {
		return prompt.VoteResponse{}, err
	}
	client, err := r.clientFor(memberID)
	if err != nil {
		return prompt.VoteResponse{}, err
	}

	tctx := r.turnContext(round, maxRounds, memberID)
	packet := transition.BuildPacket(r.phase, r.deps.PhaseRegistry, round, maxRounds, nil, r.deps.Verbosity)
	system, user := prompt.BuildVotePrompt(r.deps.Identity, member, r.phase, packet, tctx, motion.Title, motion.Text, motion.DecisionIfPass)

	resp, usedFallback, err := prompt.RequestVoteResponse(ctx, client, system, user, r.deps.CompleteOpts)
	if err != nil {
		return prompt.VoteResponse{}, fmt.Errorf("phaserunner: vote response for %s: %w", memberID, err)
	}
	r.noteFallback(memberID, usedFallback)
	return resp, nil
}
