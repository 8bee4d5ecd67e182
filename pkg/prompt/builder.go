package prompt

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/council/pkg/config"
)

// CouncilIdentity is the fixed preamble injected into every prompt.
type CouncilIdentity struct {
	Name    string
	Purpose string
}

// NextPhaseOption is one legal outgoing transition from the current phase,
// as surfaced in the phase-context packet (spec §4.5).
type NextPhaseOption struct {
	PhaseID string
	Trigger string
}

// PhaseContextPacket is the packet built by the phase transition resolver
// (spec §4.5) and injected into every prompt at the configured verbosity.
type PhaseContextPacket struct {
	PhaseID             string
	PhaseGoal           string
	Round               int
	MaxRounds           int
	PendingDeliverables []string
	QualityGates        []string
	EvidenceGaps        []string
	LegalNextPhases     []NextPhaseOption
	// GraphDigest is populated only at "standard" or "full" verbosity.
	GraphDigest string
}

// TranscriptEntry is one rendered line of the recent transcript window.
type TranscriptEntry struct {
	Round    int
	ActorID  string
	ActorName string
	Label    string
	Content  string
}

// TurnContext bundles everything BuildTurnPrompt needs beyond the member
// and phase configs: round counters, transcript, and memory.
type TurnContext struct {
	Round             int
	RemainingTurns    int
	Transcript        []TranscriptEntry
	MemberMemoryText  string
	CouncilMemoryText string
}

func formatIdentity(identity CouncilIdentity) string {
	return fmt.Sprintf("Council: %s\nPurpose: %s", identity.Name, identity.Purpose)
}

func formatMember(member *config.MemberConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s (%s), role: %s.\n", member.Name, member.ID, member.Role)
	sb.WriteString(member.SystemPrompt)
	if len(member.Traits) > 0 {
		fmt.Fprintf(&sb, "\nTraits: %s", strings.Join(member.Traits, ", "))
	}
	return sb.String()
}

func formatPhase(phase *config.PhaseConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current phase: %s\nGoal: %s\n", phase.ID, phase.Goal)
	if len(phase.PromptGuidance) > 0 {
		sb.WriteString("Guidance:\n")
		for _, g := range phase.PromptGuidance {
			fmt.Fprintf(&sb, "- %s\n", g)
		}
	}
	return sb.String()
}

func formatPhaseContextPacket(packet PhaseContextPacket) string {
	var sb strings.Builder
	sb.WriteString("Phase context:\n")
	fmt.Fprintf(&sb, "- phaseId: %s\n- round: %d/%d\n", packet.PhaseID, packet.Round, packet.MaxRounds)
	if len(packet.PendingDeliverables) > 0 {
		fmt.Fprintf(&sb, "- pending deliverables: %s\n", strings.Join(packet.PendingDeliverables, "; "))
	}
	if len(packet.QualityGates) > 0 {
		fmt.Fprintf(&sb, "- quality gates: %s\n", strings.Join(packet.QualityGates, "; "))
	}
	if len(packet.EvidenceGaps) > 0 {
		fmt.Fprintf(&sb, "- evidence gaps: %s\n", strings.Join(packet.EvidenceGaps, "; "))
	}
	if len(packet.LegalNextPhases) > 0 {
		sb.WriteString("- legal next phases:\n")
		for _, n := range packet.LegalNextPhases {
			fmt.Fprintf(&sb, "  - %s (on %s)\n", n.PhaseID, n.Trigger)
		}
	}
	if packet.GraphDigest != "" {
		fmt.Fprintf(&sb, "- graph digest:\n%s\n", packet.GraphDigest)
	}
	return sb.String()
}

func formatTranscript(entries []TranscriptEntry) string {
	if len(entries) == 0 {
		return "Transcript so far: (none yet — you open the discussion)"
	}
	var sb strings.Builder
	sb.WriteString("Recent transcript:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "[round %d] %s (%s) — %s: %s\n", e.Round, e.ActorName, e.ActorID, e.Label, e.Content)
	}
	return sb.String()
}

func formatMemory(memberMemory, councilMemory string) string {
	var sb strings.Builder
	sb.WriteString("Your memory:\n")
	if memberMemory == "" {
		sb.WriteString("(none recorded yet)\n")
	} else {
		sb.WriteString(memberMemory)
		sb.WriteString("\n")
	}
	sb.WriteString("Council memory:\n")
	if councilMemory == "" {
		sb.WriteString("(none recorded yet)\n")
	} else {
		sb.WriteString(councilMemory)
		sb.WriteString("\n")
	}
	return sb.String()
}

const jsonResponseRules = "Respond with a single line of valid JSON matching the schema below. No markdown fences, no commentary before or after. String values must not contain literal newlines."

func fieldLengthTable(rows map[string]int) string {
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Field length limits:\n")
	for field, limit := range rows {
		fmt.Fprintf(&sb, "- %s: at most %d characters\n", field, limit)
	}
	return sb.String()
}

// composePrompt returns (systemPrompt, userPrompt) for a JSON-schema-driven
// request, matching modelclient.ModelClient's two-part call shape. The
// identity and member framing form the system prompt; everything
// situational (phase, packet, transcript, memory, the request itself, and
// the schema) forms the user prompt.
func composePrompt(identity CouncilIdentity, member *config.MemberConfig, phase *config.PhaseConfig, packet PhaseContextPacket, tctx TurnContext, body, schema string, lengthLimits map[string]int) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(member)

	parts := []string{
		formatPhase(phase),
		formatPhaseContextPacket(packet),
		fmt.Sprintf("Round %d, remaining turns for you this phase: %d", tctx.Round, tctx.RemainingTurns),
		formatTranscript(tctx.Transcript),
		formatMemory(tctx.MemberMemoryText, tctx.CouncilMemoryText),
		body,
		jsonResponseRules,
	}
	if lt := fieldLengthTable(lengthLimits); lt != "" {
		parts = append(parts, lt)
	}
	parts = append(parts, "JSON schema:\n"+schema)
	return system, strings.Join(parts, "\n\n")
}

// BuildTurnPrompt builds the (system, user) prompt pair for a
// DISCUSSION-state turn (spec §4.4 step 2b). The caller supplies the
// phase-context packet built by the transition resolver (§4.5) and the
// transcript/memory already rendered.
func BuildTurnPrompt(identity CouncilIdentity, member *config.MemberConfig, phase *config.PhaseConfig, packet PhaseContextPacket, tctx TurnContext) (string, string) {
	body := "It is your turn. Choose one action: contribute a message to the discussion, pass, or call a vote on a motion."
	schema := `{"action":"CONTRIBUTE|PASS|CALL_VOTE","message":"...","reason":"...","note":"...","title":"...","text":"...","decisionIfPass":"..."}`
	limits := map[string]int{"message": 2000, "reason": 300, "title": 150, "text": 2000, "decisionIfPass": 1000}
	return composePrompt(identity, member, phase, packet, tctx, body, schema, limits)
}

// BuildSecondingPrompt builds the prompt sent to one non-caller member
// during the motion sub-machine's SECONDING state (spec §4.4).
func BuildSecondingPrompt(identity CouncilIdentity, member *config.MemberConfig, phase *config.PhaseConfig, packet PhaseContextPacket, tctx TurnContext, motionTitle, motionText, decisionIfPass string) (string, string) {
	body := fmt.Sprintf("A motion has been called:\nTitle: %s\nText: %s\nIf passed: %s\n\nDo you second this motion?", motionTitle, motionText, decisionIfPass)
	schema := `{"second":true,"rationale":"..."}`
	limits := map[string]int{"rationale": 500}
	return composePrompt(identity, member, phase, packet, tctx, body, schema, limits)
}

// BuildVotePrompt builds the blind-vote prompt sent to every member
// (including the caller) during the motion sub-machine's VOTING state.
func BuildVotePrompt(identity CouncilIdentity, member *config.MemberConfig, phase *config.PhaseConfig, packet PhaseContextPacket, tctx TurnContext, motionTitle, motionText, decisionIfPass string) (string, string) {
	body := fmt.Sprintf("Cast your ballot on the seconded motion:\nTitle: %s\nText: %s\nIf passed: %s", motionTitle, motionText, decisionIfPass)
	schema := `{"ballot":"YES|NO|ABSTAIN","rationale":"..."}`
	limits := map[string]int{"rationale": 500}
	return composePrompt(identity, member, phase, packet, tctx, body, schema, limits)
}

// BuildLeaderElectionPrompt builds the prompt used once per session, before
// the first phase, to elect the session leader.
func BuildLeaderElectionPrompt(identity CouncilIdentity, member *config.MemberConfig, candidateIDs []string) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(member)
	var sb strings.Builder
	sb.WriteString("Nominate one council member (including yourself) to serve as session leader, responsible for synthesizing the final summary and reviewing documentation drafts.\n")
	fmt.Fprintf(&sb, "Candidates: %s\n\n", strings.Join(candidateIDs, ", "))
	sb.WriteString(jsonResponseRules)
	sb.WriteString("\n\nJSON schema:\n")
	sb.WriteString(`{"candidateId":"...","rationale":"..."}`)
	return system, sb.String()
}

// BuildLeaderSummaryPrompt builds the prompt asking the elected leader to
// synthesize the session's final summary once all phases have completed.
func BuildLeaderSummaryPrompt(identity CouncilIdentity, leader *config.MemberConfig, phaseResultsText string) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(leader)
	var sb strings.Builder
	sb.WriteString("As session leader, synthesize the council's deliberation into a final summary.\n\n")
	sb.WriteString("Phase results:\n")
	sb.WriteString(phaseResultsText)
	sb.WriteString("\n\n")
	sb.WriteString(jsonResponseRules)
	sb.WriteString("\n\nJSON schema:\n")
	sb.WriteString(`{"summaryMarkdown":"...","finalResolution":"...","requiresExecution":true,"executionBrief":"..."}`)
	return system, sb.String()
}

// BuildDocumentDraftPrompt builds the free-text (not JSON) prompt asking the
// leader to produce the first documentation draft (spec §4.6).
func BuildDocumentDraftPrompt(identity CouncilIdentity, leader *config.MemberConfig, phaseResultsText string, deliverables []string) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(leader)
	var sb strings.Builder
	sb.WriteString("Draft the council's documentation deliverable based on the deliberation below. Respond with the document text directly — not JSON.\n\n")
	sb.WriteString("Phase results:\n")
	sb.WriteString(phaseResultsText)
	if len(deliverables) > 0 {
		sb.WriteString("\n\nRequired deliverables:\n")
		for _, d := range deliverables {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
	}
	return system, sb.String()
}

// BuildDocumentRevisionPrompt builds the prompt asking the leader to revise
// a prior draft using structured reviewer feedback (spec §4.6).
func BuildDocumentRevisionPrompt(identity CouncilIdentity, leader *config.MemberConfig, priorDraft, feedbackJSON string) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(leader)
	var sb strings.Builder
	sb.WriteString("Revise the prior draft to address the reviewer feedback below. Respond with the revised document text directly — not JSON.\n\n")
	sb.WriteString("Prior draft:\n")
	sb.WriteString(priorDraft)
	sb.WriteString("\n\nReviewer feedback (JSON):\n")
	sb.WriteString(feedbackJSON)
	return system, sb.String()
}

// BuildDocumentApprovalVotePrompt builds the blind-vote prompt sent to every
// member to approve or reject the current documentation draft.
func BuildDocumentApprovalVotePrompt(identity CouncilIdentity, member *config.MemberConfig, draft string) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(member)
	var sb strings.Builder
	sb.WriteString("Vote on whether to approve the following documentation draft as final:\n\n")
	sb.WriteString(draft)
	sb.WriteString("\n\n")
	sb.WriteString(jsonResponseRules)
	sb.WriteString("\n\nJSON schema:\n")
	sb.WriteString(`{"ballot":"YES|NO|ABSTAIN","rationale":"..."}`)
	return system, sb.String()
}

// BuildDocumentFeedbackPrompt builds the feedback prompt fanned out to every
// non-YES voter after a failed documentation approval vote (spec §4.6).
func BuildDocumentFeedbackPrompt(identity CouncilIdentity, member *config.MemberConfig, draft string) (string, string) {
	system := formatIdentity(identity) + "\n\n" + formatMember(member)
	var sb strings.Builder
	sb.WriteString("You did not vote YES to approve the following documentation draft. Provide structured feedback so the leader can revise it.\n\n")
	sb.WriteString(draft)
	sb.WriteString("\n\n")
	sb.WriteString(jsonResponseRules)
	sb.WriteString("\n\nJSON schema:\n")
	sb.WriteString(`{"criticalBlockers":[{"id":"...","section":"...","problem":"...","impact":"...","requiredChange":"...","severity":"..."}],"suggestedChanges":["..."]}`)
	sb.WriteString("\n\ncriticalBlockers: at most 5 entries. suggestedChanges: at most 6 entries.")
	return system, sb.String()
}
