package modelclient

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Fenced code block markers, tried before falling back to brace scanning.
var fencedBlockPattern = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)```")

// Extract pulls a single JSON object out of raw model text, tolerating the
// surrounding chatter real models produce. It tries, in order: a fenced
// code block, a balanced-brace scan over the whole text, and finally a
// repair pass that appends missing closing quote/brace characters to a
// truncated object. Returns the extracted bytes and true on success.
//
// This mirrors the forgiving, multi-strategy parsing react_parser.go uses
// for ReAct sections, applied to JSON instead of labeled text sections.
func Extract(text string) ([]byte, bool) {
	if candidate, ok := extractFenced(text); ok {
		if repaired, ok := tryParse(candidate); ok {
			return repaired, true
		}
	}

	if candidate, ok := extractBalancedBraces(text); ok {
		if repaired, ok := tryParse(candidate); ok {
			return repaired, true
		}
	}

	return nil, false
}

func extractFenced(text string) (string, bool) {
	m := fencedBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// extractBalancedBraces scans for the first top-level `{...}` span, tracking
// brace depth and skipping over braces that appear inside string literals.
func extractBalancedBraces(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal; braces don't count
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	// Unbalanced — the object was truncated. Return what we have so the
	// repair pass in tryParse can attempt to close it.
	return text[start:], true
}

// tryParse sanitizes raw newlines embedded in string literals (the model
// emitted a literal line break instead of the escape sequence), then
// attempts to parse; on failure it tries appending the closing characters a
// truncated object is most likely missing.
func tryParse(candidate string) ([]byte, bool) {
	sanitized := sanitizeRawNewlines(candidate)

	if json.Valid([]byte(sanitized)) {
		return []byte(sanitized), true
	}

	for _, repaired := range repairCandidates(sanitized) {
		if json.Valid([]byte(repaired)) {
			return []byte(repaired), true
		}
	}

	return nil, false
}

// sanitizeRawNewlines replaces literal newlines/carriage returns that occur
// inside a JSON string literal with their escaped form. Outside of strings,
// whitespace is left untouched.
func sanitizeRawNewlines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\' && inString:
			b.WriteByte(c)
			escaped = true
		case c == '"':
			inString = !inString
			b.WriteByte(c)
		case inString && c == '\n':
			b.WriteString("\\n")
		case inString && c == '\r':
			// drop bare CRs; the paired \n (if any) is handled above
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// repairCandidates returns progressively more aggressive attempts to close
// a truncated JSON object, most conservative first: close a dangling
// string, then append closing braces for any unclosed nesting.
func repairCandidates(s string) []string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
		}
	}

	closeDepth := max(depth, 0)
	candidates := make([]string, 0, 2)
	if inString {
		candidates = append(candidates, s+"\""+strings.Repeat("}", closeDepth))
	}
	candidates = append(candidates, s+strings.Repeat("}", closeDepth))
	return candidates
}
