package extract

import (
	"context"
	"regexp"
	"strings"
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\((\d{3})\)\s*(\d{3})[-.\s]?(\d{4})`),
	regexp.MustCompile(`\+?1[-.\s]?(\d{3})[-.\s]?(\d{3})[-.\s]?(\d{4})\b`),
	regexp.MustCompile(`\b(\d{3})[-.\s](\d{3})[-.\s](\d{4})\b`),
	regexp.MustCompile(`\b(\d{3})(\d{3})(\d{4})\b`),
}

// Phone extracts a US phone number and normalizes it to XXX-XXX-XXXX.
func (e *Extractor) Phone(ctx context.Context, utterance string) (Result, bool) {
	if phone, ok := phoneFromPatterns(utterance); ok {
		return Result{Value: phone, Tier: TierPattern}, true
	}

	if value, ok := e.nluExtract(ctx, "phone",
		"Extract the patient's phone number from the message.",
		utterance, validatePhoneAnswer); ok {
		return Result{Value: value, Tier: TierNLU}, true
	}

	return Result{}, false
}

func phoneFromPatterns(utterance string) (string, bool) {
	for _, pattern := range phonePatterns {
		match := pattern.FindStringSubmatch(utterance)
		if len(match) == 4 {
			return match[1] + "-" + match[2] + "-" + match[3], true
		}
	}
	return "", false
}

func validatePhoneAnswer(answer string) (string, bool) {
	if phone, ok := phoneFromPatterns(answer); ok {
		return phone, true
	}
	// The model may answer with bare digits in an unanchored form.
	digits := digitsOnly(answer)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits[0:3] + "-" + digits[3:6] + "-" + digits[6:10], true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
