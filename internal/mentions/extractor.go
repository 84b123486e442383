// Package mentions implements the mention-resolution and notification
// fan-out pipeline: it scans submitted post and comment text for @username
// tokens, validates them against real accounts, creates at most one "tag"
// notification per mentioned user per submission, and enforces the layered
// anti-abuse limits (per-submission bound, cooldown, daily unique-mention
// cap, and the sliding rate window applied at the transport boundary).
package mentions

import "strings"

// HasMentionMarker reports whether the text could carry mentions at all.
// Submissions without an @ bypass the throttle entirely.
func HasMentionMarker(text string) bool {
	return strings.ContainsRune(text, '@')
}

func isMentionByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// ExtractMentions scans free text and returns the distinct candidate
// usernames referenced via @name syntax, in first-occurrence order.
// A candidate is the longest run of ASCII letters, digits, and underscore
// immediately following an unescaped @; a \@ is skipped. Pure: no I/O,
// identical input yields identical output, empty text yields nil.
func ExtractMentions(text string) []string {
	if text == "" {
		return nil
	}

	var candidates []string
	seen := make(map[string]struct{})
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' {
			escaped = !escaped
			continue
		}
		if c == '@' && !escaped {
			j := i + 1
			for j < len(text) && isMentionByte(text[j]) {
				j++
			}
			if j > i+1 {
				name := text[i+1 : j]
				if _, dup := seen[name]; !dup {
					seen[name] = struct{}{}
					candidates = append(candidates, name)
				}
				i = j - 1
			}
		}
		escaped = false
	}

	return candidates
}
