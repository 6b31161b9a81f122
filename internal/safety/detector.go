package safety

import "strings"

// crisisPhrases is the built-in screening list. Matching errs toward
// flagging: false positives are reviewed by a human, false negatives
// are not recoverable.
var crisisPhrases = []string{
	// Suicidal ideation
	"kill myself",
	"end my life",
	"want to die",
	"suicide",
	"suicidal",
	"take my own life",
	"better off dead",
	"no reason to live",
	"wish i was dead",
	"life isn't worth",

	// Self-harm
	"hurt myself",
	"self-harm",
	"self harm",
	"cutting myself",
	"harming myself",

	// Hopelessness indicators
	"no way out",
	"can't go on",
	"give up on life",
	"nothing left to live for",
	"everyone would be better off without me",
}

// Detector screens message text for crisis-indicating language
type Detector struct {
	phrases []string
}

// NewDetector creates a detector using the built-in phrase list plus any
// configured extras
func NewDetector(extraPhrases ...string) *Detector {
	phrases := make([]string, 0, len(crisisPhrases)+len(extraPhrases))
	phrases = append(phrases, crisisPhrases...)
	for _, p := range extraPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	return &Detector{phrases: phrases}
}

// Detect reports whether the text contains a crisis-indicating phrase.
// Matching is a case-insensitive substring check over the untruncated
// text. Pure and deterministic.
func (d *Detector) Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range d.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
