// Package classify assigns each event to exactly one category.
//
// Classification is an ordered list of predicate rules evaluated in sequence;
// the first matching rule wins. Order matters: deadline-type tags are checked
// before congress heuristics so a deadline belonging to a congress series
// ("WCA abstract deadline") is never miscategorized as the congress itself.
package classify

import (
	"strings"

	"github.com/helenopaiva/congresscal/internal/event"
)

// Category is the event category. Every event lands in exactly one.
type Category string

const (
	Deadline Category = "deadline"
	Congress Category = "congress"
)

// deadlineTokens match the kind-tag vocabulary used by the feeds for
// time-bound milestones. Substring match, after tag normalization.
var deadlineTokens = []string{
	"abstract",
	"pbl",
	"registration",
	"hotel",
	"housing",
	"early_bird",
	"submission",
	"poster",
	"workshop",
	"late_breaking",
	"notification",
	"confirmation",
	"substitution",
	"other",
	"deadline",
}

// congressTokens match kind tags for the marquee event itself.
// "meeting" also covers "annual_meeting".
var congressTokens = []string{
	"congress",
	"meeting",
	"main_event",
}

// brandTokens identify congress series whose kind tags are unreliable;
// matched against the series code and any published title.
var brandTokens = []string{
	"world congress",
	"euroanaesthesia",
	"wfsa",
}

type rule struct {
	name     string
	matches  func(*event.Event) bool
	category Category
}

var rules = []rule{
	{"deadline tag", matchKindTag(deadlineTokens), Deadline},
	{"congress tag", matchKindTag(congressTokens), Congress},
	{"congress brand", matchBrand, Congress},
	// Conservative default: an unclassifiable event is assumed to be an
	// informational, time-bound entry rather than a marquee congress.
	{"fallback", func(*event.Event) bool { return true }, Deadline},
}

// Classify returns the category for e. It is a pure function of the event's
// fields and is recomputed identically on every pipeline pass.
func Classify(e *event.Event) Category {
	for _, r := range rules {
		if r.matches(e) {
			return r.category
		}
	}
	return Deadline // unreachable; the fallback rule always matches
}

func matchKindTag(tokens []string) func(*event.Event) bool {
	return func(e *event.Event) bool {
		tag := normalizeTag(e.KindTag)
		if tag == "" {
			return false
		}
		for _, tok := range tokens {
			if strings.Contains(tag, tok) {
				return true
			}
		}
		return false
	}
}

func matchBrand(e *event.Event) bool {
	candidates := []string{e.Series, e.Title.Text}
	for _, s := range e.Title.Localized {
		candidates = append(candidates, s)
	}
	for _, c := range candidates {
		c = strings.ToLower(c)
		for _, tok := range brandTokens {
			if c != "" && strings.Contains(c, tok) {
				return true
			}
		}
	}
	return false
}

// normalizeTag lowercases and folds separator style so "early-bird" and
// "early_bird" match the same token.
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.ReplaceAll(tag, "-", "_")
}
