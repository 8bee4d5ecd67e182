package memory

import (
	"sort"
	"strings"
	"text/template"

	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/council"
)

// RecentSessionWindow is how many of a record set's most recent sessions
// (per its recent-session digest) a record's evidence must touch to still
// surface in a prompt-context snapshot — spec §4.2's "fade" rule. Records
// whose evidence refs are all older, or with no evidence refs at all (never
// tied to a session — e.g. seeded directly), remain on disk but the latter
// never fades since there is nothing to check it against.
const RecentSessionWindow = 25

// snapshotBucket groups one or more MemoryRecordKind values under spec
// §4.2's six prompt-context buckets, each with its own per-turn cap.
// Spec names six buckets over the engine's eight record kinds without a
// literal 1:1 mapping; "decision"+"outcome" are folded into Decisions and
// "lesson" stands in for the "anti-patterns" bucket — a DESIGN.md-recorded
// choice, not an ambiguity left unresolved.
type snapshotBucket struct {
	label string
	cap   int
	kinds map[council.MemoryRecordKind]bool
}

var snapshotBuckets = []snapshotBucket{
	{label: "constraint", cap: 4, kinds: kindSet(council.MemoryKindConstraint)},
	{label: "decision", cap: 5, kinds: kindSet(council.MemoryKindDecision, council.MemoryKindOutcome)},
	{label: "risk/assumption", cap: 4, kinds: kindSet(council.MemoryKindRiskPattern, council.MemoryKindAssumption)},
	{label: "open_loop", cap: 4, kinds: kindSet(council.MemoryKindOpenLoop)},
	{label: "preference", cap: 3, kinds: kindSet(council.MemoryKindPreference)},
	{label: "anti-pattern", cap: 3, kinds: kindSet(council.MemoryKindLesson)},
}

func kindSet(kinds ...council.MemoryRecordKind) map[council.MemoryRecordKind]bool {
	out := make(map[council.MemoryRecordKind]bool, len(kinds))
	for _, k := range kinds {
		out[k] = true
	}
	return out
}

var memoryMDTemplate = template.Must(template.New("memory.md").Parse(
	`# Memory: {{.Owner}}

{{range .Records}}- **[{{.Kind}}/{{.Status}}]** {{.Summary}} (importance {{.Importance}}, confidence {{printf "%.2f" .Confidence}})
{{end}}`))

// renderMemoryMarkdown renders the full canonical record set for owner
// (a member id, or "council") to markdown. Used for MEMORY.md/COUNCIL.md —
// the durable, human-readable mirror of MEMORY.json/COUNCIL.json.
func renderMemoryMarkdown(owner string, records []council.MemoryRecord) string {
	sorted := sortedByRecency(records)
	var sb strings.Builder
	_ = memoryMDTemplate.Execute(&sb, struct {
		Owner   string
		Records []council.MemoryRecord
	}{Owner: owner, Records: sorted})
	return sb.String()
}

var agentProfileTemplate = template.Must(template.New("agent.md").Parse(
	`# {{.Name}} ({{.ID}})

Role: {{.Role}}
{{if .Traits}}Traits: {{.Traits}}
{{end}}{{if .Model.Provider}}Model: {{.Model.Provider}}/{{.Model.Model}}
{{end}}
{{.SystemPrompt}}
`))

// RenderAgentProfile renders a member's static AGENT.md profile document.
func RenderAgentProfile(member *config.MemberConfig) string {
	var sb strings.Builder
	_ = agentProfileTemplate.Execute(&sb, struct {
		ID           string
		Name         string
		Role         string
		Traits       string
		Model        config.ModelReference
		SystemPrompt string
	}{
		ID:           member.ID,
		Name:         member.Name,
		Role:         member.Role,
		Traits:       strings.Join(member.Traits, ", "),
		Model:        member.Model,
		SystemPrompt: member.SystemPrompt,
	})
	return sb.String()
}

// Snapshot derives the bounded prompt-context text for memberID: its own
// active records plus the council-wide active records, each partitioned
// into spec §4.2's six buckets by kind, capped per bucket, and ranked
// within a bucket by (importance desc, recency desc). A record only
// contributes if it hasn't faded (see contributesToPrompt).
func (s *Store) Snapshot(memberID string) (memberText, councilText string) {
	memberText = renderSnapshot(s.MemberRecords(memberID), s.memberRecentWindow(memberID))
	councilText = renderSnapshot(s.CouncilRecords(), s.councilRecentWindow())
	return memberText, councilText
}

func renderSnapshot(records []council.MemoryRecord, window map[string]bool) string {
	active := make([]council.MemoryRecord, 0, len(records))
	for _, r := range records {
		if r.Status != council.MemoryStatusActive {
			continue
		}
		if !contributesToPrompt(r, window) {
			continue
		}
		active = append(active, r)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Importance != active[j].Importance {
			return active[i].Importance > active[j].Importance
		}
		return active[i].UpdatedAt.After(active[j].UpdatedAt)
	})

	var sb strings.Builder
	for _, bucket := range snapshotBuckets {
		count := 0
		for _, r := range active {
			if count >= bucket.cap {
				break
			}
			if !bucket.kinds[r.Kind] {
				continue
			}
			sb.WriteString("- [")
			sb.WriteString(string(r.Kind))
			sb.WriteString("] ")
			sb.WriteString(r.Summary)
			sb.WriteString("\n")
			count++
		}
	}
	return sb.String()
}

// contributesToPrompt applies spec §4.2's fade rule: a record needs at
// least one evidence ref inside the most-recent-RecentSessionWindow-session
// digest to surface in a prompt. A record with no evidence refs at all was
// never tied to a session (e.g. seeded directly into the store) and so is
// never faded.
func contributesToPrompt(r council.MemoryRecord, window map[string]bool) bool {
	if len(r.EvidenceRefs) == 0 {
		return true
	}
	for _, ref := range r.EvidenceRefs {
		if window[ref] {
			return true
		}
	}
	return false
}

func sortedByRecency(records []council.MemoryRecord) []council.MemoryRecord {
	out := append([]council.MemoryRecord(nil), records...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
