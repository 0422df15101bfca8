package domain

import "strings"

// DefaultTriggerPhrases is the built-in trigger phrase set, in match order.
// Half-width and full-width "@" variants are both listed.
var DefaultTriggerPhrases = []string{
	"@幫開卡", "@開卡", "@營運開卡", "@專員開卡",
	"＠幫開卡", "＠開卡", "＠卡卡",
	"@卡", "@卡卡", "＠卡",
}

// ClassKind is the result category of classifying an event
type ClassKind int

const (
	ClassIrrelevant ClassKind = iota
	ClassPlainText
	ClassTrigger
	ClassCandidateImage
)

func (k ClassKind) String() string {
	switch k {
	case ClassPlainText:
		return "plain_text"
	case ClassTrigger:
		return "trigger"
	case ClassCandidateImage:
		return "candidate_image"
	default:
		return "irrelevant"
	}
}

// Classification is the outcome of Classifier.Classify
type Classification struct {
	Kind    ClassKind
	Phrase  string // Matched trigger phrase (ClassTrigger only)
	Payload string // Text with the phrase removed and trimmed (ClassTrigger only)
}

// Classifier decides what an inbound event means to the capture flow.
// It holds no state besides the phrase set and is safe for concurrent use.
type Classifier struct {
	phrases []string
}

// NewClassifier creates a classifier matching phrases in the given order.
// Empty phrases are dropped; a nil or empty set falls back to DefaultTriggerPhrases.
func NewClassifier(phrases []string) *Classifier {
	kept := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, DefaultTriggerPhrases...)
	}
	return &Classifier{phrases: kept}
}

// Phrases returns a copy of the phrase set
func (c *Classifier) Phrases() []string {
	out := make([]string, len(c.phrases))
	copy(out, c.phrases)
	return out
}

// Classify classifies an inbound event
func (c *Classifier) Classify(ev InboundEvent) Classification {
	switch ev.Kind {
	case MessageKindText:
		phrase, ok := c.match(ev.Text)
		if !ok {
			return Classification{Kind: ClassPlainText}
		}
		return Classification{
			Kind:    ClassTrigger,
			Phrase:  phrase,
			Payload: ExtractPayload(ev.Text, phrase),
		}
	case MessageKindImage:
		return Classification{Kind: ClassCandidateImage}
	default:
		return Classification{Kind: ClassIrrelevant}
	}
}

// match returns the first phrase contained in text
func (c *Classifier) match(text string) (string, bool) {
	for _, p := range c.phrases {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// ExtractPayload removes the first occurrence of phrase and trims the result
func ExtractPayload(text, phrase string) string {
	return strings.TrimSpace(strings.Replace(text, phrase, "", 1))
}
