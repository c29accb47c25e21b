package extract

import (
	"context"
	"strings"
)

// reasonFillerPrefixes are conversational lead-ins stripped before storing a
// visit reason.
var reasonFillerPrefixes = []string{
	"i have been having ",
	"i've been having ",
	"i have been experiencing ",
	"i've been experiencing ",
	"i am experiencing ",
	"i'm experiencing ",
	"i am having ",
	"i'm having ",
	"i have a ",
	"i have an ",
	"i have ",
	"i've got ",
	"i got ",
	"it's ",
	"its ",
	"because of ",
	"because ",
	"for a ",
	"for an ",
	"for ",
	"my ",
	"suffering from ",
	"dealing with ",
}

// nonReasonReplies are acknowledgements and greetings that carry no medical
// content.
var nonReasonReplies = map[string]bool{
	"yes": true, "no": true, "ok": true, "okay": true, "sure": true,
	"hi": true, "hello": true, "hey": true, "thanks": true, "thank you": true,
	"yeah": true, "yep": true, "nope": true, "hmm": true, "um": true,
}

const maxReasonLength = 200

// Reason extracts the visit reason. The reason is free text, so the pattern
// tier is a cleanup pass rather than a matcher; the NLU tier condenses
// rambling descriptions.
func (e *Extractor) Reason(ctx context.Context, utterance string) (Result, bool) {
	if reason, ok := reasonFromText(utterance); ok {
		return Result{Value: reason, Tier: TierPattern}, true
	}

	if value, ok := e.nluExtract(ctx, "reason",
		"Extract the medical reason for the visit from the message, in a few words.",
		utterance, validateReasonAnswer); ok {
		return Result{Value: value, Tier: TierNLU}, true
	}

	return Result{}, false
}

func reasonFromText(utterance string) (string, bool) {
	text := strings.TrimSpace(utterance)
	text = strings.Trim(text, ".,!?")
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	if nonReasonReplies[lower] {
		return "", false
	}

	for _, prefix := range reasonFillerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			text = text[len(prefix):]
			lower = lower[len(prefix):]
			break
		}
	}

	text = strings.TrimSpace(text)
	if len(text) < 3 {
		return "", false
	}
	if len(text) > maxReasonLength {
		text = strings.TrimSpace(text[:maxReasonLength])
	}
	return strings.ToLower(text), true
}

func validateReasonAnswer(answer string) (string, bool) {
	return reasonFromText(answer)
}
