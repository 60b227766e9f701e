// Package voice picks a synthesis voice from whatever the platform offers.
// Selection is a best-effort heuristic over opaque voice names; a wrong
// guess is acceptable, not an error.
package voice

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/smarthub/internal/domain"
)

// Name heuristics per gender. "female" contains "male", hence the word
// boundaries on the male side.
var (
	femalePattern = regexp.MustCompile(`(?i)anna|alyona|alena|irina|oksana|svetlana|milena|daria|dariya|ekaterina|katya|polina|natalia|tatyana|elena|\bfemale\b|\bwoman\b`)
	malePattern   = regexp.MustCompile(`(?i)oleg|ivan|nikolai|nikolay|serg|vlad|dmitr|pavel|yuri|maxim|artem|\bmale\b|\bman\b`)
)

// Choose returns the voice to use for the given gender and language tag:
//
//  1. a voice in the language whose name (or gender hint) fits the gender;
//  2. else any voice in the language;
//  3. else the first candidate;
//  4. none when there are no candidates.
//
// Language matching is a case-insensitive prefix match on the primary
// subtag, so "ru-RU" matches "ru-RU", "ru_RU" and "RU".
func Choose(candidates []domain.VoiceCandidate, gender domain.Gender, lang string) (domain.VoiceCandidate, bool) {
	if len(candidates) == 0 {
		return domain.VoiceCandidate{}, false
	}

	prefix := primarySubtag(lang)

	for _, c := range candidates {
		if langMatches(c.Lang, prefix) && genderMatches(c, gender) {
			return c, true
		}
	}
	for _, c := range candidates {
		if langMatches(c.Lang, prefix) {
			return c, true
		}
	}
	return candidates[0], true
}

func primarySubtag(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}

func langMatches(tag, prefix string) bool {
	if prefix == "" || tag == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(tag), prefix)
}

func genderMatches(c domain.VoiceCandidate, g domain.Gender) bool {
	if hint := strings.ToLower(c.Gender); hint != "" {
		return hint == string(g)
	}
	name := c.Name + " " + c.ID
	if g == domain.GenderMale {
		return malePattern.MatchString(name)
	}
	return femalePattern.MatchString(name)
}
