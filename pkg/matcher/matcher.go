// Package matcher provides the low-level text primitives the classifiers
// share: normalization, case-insensitive keyword containment with
// order-preserving dedup, regex pattern search and word-boundary phrase
// redaction. All functions are pure; keyword order in equals keyword order
// out.
package matcher

import (
	"regexp"
	"strings"
	"sync"
)

// Normalize lowercases and trims the input. Matching always runs on
// normalized text; callers keep the original for display and redaction.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ContainsAny reports the first keyword (in list order) contained in the
// normalized text. Containment is substring based so stems like "sturz"
// also hit compounds ("sturzrisiko") and inflections ("gestürzt" via its
// own entry).
func ContainsAny(text string, keywords []string) (string, bool) {
	normalized := Normalize(text)
	for _, keyword := range keywords {
		if strings.Contains(normalized, keyword) {
			return keyword, true
		}
	}
	return "", false
}

// FindAll returns every keyword contained in the normalized text, in list
// order, each at most once.
func FindAll(text string, keywords []string) []string {
	normalized := Normalize(text)
	var found []string
	seen := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		if _, dup := seen[keyword]; dup {
			continue
		}
		if strings.Contains(normalized, keyword) {
			seen[keyword] = struct{}{}
			found = append(found, keyword)
		}
	}
	return found
}

// CountAll returns the number of distinct keywords contained in the text.
func CountAll(text string, keywords []string) int {
	return len(FindAll(text, keywords))
}

// FindPattern searches the normalized text with the given pattern and
// returns the first match. Patterns in the rule tables are lowercase, so
// normalization makes them effectively case-insensitive.
func FindPattern(text string, pattern *regexp.Regexp) (string, bool) {
	match := pattern.FindString(Normalize(text))
	return match, match != ""
}

var (
	redactMu    sync.RWMutex
	redactCache = make(map[string]*regexp.Regexp)
)

// boundaryPattern compiles (and caches) a case-insensitive word-boundary
// pattern for a literal phrase. Redaction is the hot path when notes are
// sanitized for forwarding, hence the cache.
func boundaryPattern(phrase string) *regexp.Regexp {
	redactMu.RLock()
	re, ok := redactCache[phrase]
	redactMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)

	redactMu.Lock()
	redactCache[phrase] = re
	redactMu.Unlock()
	return re
}

// Redact replaces each phrase in the original text with the token, using
// word boundaries so partial words survive. Case of the original text is
// otherwise preserved.
func Redact(text string, phrases []string, token string) string {
	for _, phrase := range phrases {
		text = boundaryPattern(phrase).ReplaceAllString(text, token)
	}
	return text
}
