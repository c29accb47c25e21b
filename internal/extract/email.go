package extract

import (
	"context"
	"regexp"
	"strings"
)

// emailPattern matches common email address formats
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Email extracts an email address, lowercased.
func (e *Extractor) Email(ctx context.Context, utterance string) (Result, bool) {
	if email := emailPattern.FindString(utterance); email != "" {
		return Result{Value: strings.ToLower(email), Tier: TierPattern}, true
	}

	// Spoken-out addresses ("john dot doe at example dot com") are the NLU
	// tier's job.
	if value, ok := e.nluExtract(ctx, "email",
		"Extract the patient's email address from the message.",
		utterance, validateEmailAnswer); ok {
		return Result{Value: value, Tier: TierNLU}, true
	}

	return Result{}, false
}

func validateEmailAnswer(answer string) (string, bool) {
	if email := emailPattern.FindString(answer); email != "" {
		return strings.ToLower(email), true
	}
	return "", false
}
