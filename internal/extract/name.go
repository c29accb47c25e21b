package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const nameWordPattern = `[\p{L}][\p{L}\p{M}'-]*`

var namePhrasePattern = nameWordPattern + `(?:\s+` + nameWordPattern + `){0,3}`

var namePatterns = buildNamePatterns()

var nameTextNormalizer = strings.NewReplacer(
	"’", "'", // right single quote
	"‘", "'", // left single quote
	"′", "'", // prime symbol
)

func buildNamePatterns() []*regexp.Regexp {
	name := namePhrasePattern
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)my name is\s+(` + name + `)`),
		regexp.MustCompile(`(?i)i'?m\s+(` + name + `)(?:\s|,|\.|!|$)`),
		regexp.MustCompile(`(?i)i am\s+(` + name + `)(?:\s|,|\.|!|$)`),
		regexp.MustCompile(`(?i)this is\s+(` + name + `)`),
		regexp.MustCompile(`(?i)call me\s+(` + name + `)`),
		regexp.MustCompile(`(?i)it'?s\s+(` + name + `)(?:\s|,|\.|!|$)`),
		regexp.MustCompile(`(?i)name'?s\s+(` + name + `)`),
	}
}

// Name extracts a patient name. Pattern tier looks for introduction phrases;
// the NLU tier asks for the name; the heuristic tier treats a short bare
// reply as the name itself, which is the last resort after the agent has
// asked for it directly.
func (e *Extractor) Name(ctx context.Context, utterance string) (Result, bool) {
	if name, ok := nameFromPatterns(utterance); ok {
		return Result{Value: name, Tier: TierPattern}, true
	}

	if value, ok := e.nluExtract(ctx, "name",
		"Extract the patient's full name from the message.",
		utterance, validateNameAnswer); ok {
		return Result{Value: value, Tier: TierNLU}, true
	}

	if name, ok := nameFromBareReply(utterance); ok {
		return Result{Value: name, Tier: TierHeuristic}, true
	}

	return Result{}, false
}

func nameFromPatterns(utterance string) (string, bool) {
	normalized := nameTextNormalizer.Replace(utterance)
	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(normalized)
		if len(match) < 2 {
			continue
		}
		if name, ok := assembleName(match[1]); ok {
			return name, true
		}
	}
	return "", false
}

// nameFromBareReply accepts a short reply with no extraction markers as a
// name: at most four tokens, all name-shaped, none a common English word.
func nameFromBareReply(utterance string) (string, bool) {
	fields := strings.Fields(nameTextNormalizer.Replace(strings.TrimSpace(utterance)))
	if len(fields) == 0 || len(fields) > 4 {
		return "", false
	}
	parts := make([]string, 0, len(fields))
	for _, word := range fields {
		cleaned := cleanNameToken(word)
		if cleaned == "" || !looksLikeNameWord(cleaned) {
			return "", false
		}
		parts = append(parts, capitalizeNameWord(cleaned))
	}
	return strings.Join(parts, " "), true
}

func validateNameAnswer(answer string) (string, bool) {
	return assembleName(answer)
}

func assembleName(raw string) (string, bool) {
	words := strings.Fields(strings.TrimSpace(nameTextNormalizer.Replace(raw)))
	parts := make([]string, 0, 4)
	for _, word := range words {
		cleaned := cleanNameToken(word)
		if cleaned == "" {
			continue
		}
		if !looksLikeNameWord(cleaned) {
			if len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, capitalizeNameWord(cleaned))
		if len(parts) == 4 {
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func cleanNameToken(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	word = strings.Trim(word, ".,!?\"()[]{}")
	word = strings.Trim(word, "'-")
	return word
}

func looksLikeNameWord(word string) bool {
	count := utf8.RuneCountInString(word)
	if count < 2 || count > 30 {
		return false
	}
	firstRune, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsLetter(firstRune) {
		return false
	}
	if isCommonWord(strings.ToLower(word)) {
		return false
	}
	return true
}

func capitalizeNameWord(word string) string {
	if word == "" {
		return ""
	}
	firstRune, size := utf8.DecodeRuneInString(word)
	if firstRune == utf8.RuneError || size == 0 {
		return word
	}
	return strings.ToUpper(string(firstRune)) + strings.ToLower(word[size:])
}

// isCommonWord checks if a word is a common English word that shouldn't be treated as a name
func isCommonWord(word string) bool {
	common := map[string]bool{
		"the": true, "and": true, "for": true, "are": true, "but": true,
		"not": true, "you": true, "all": true, "can": true, "her": true,
		"was": true, "one": true, "our": true, "out": true, "day": true,
		"had": true, "has": true, "his": true, "how": true, "its": true,
		"may": true, "new": true, "now": true, "old": true, "see": true,
		"way": true, "who": true, "boy": true, "did": true, "get": true,
		"let": true, "put": true, "say": true, "she": true, "too": true,
		"use": true, "yes": true, "no": true, "hi": true, "hey": true,
		"thanks": true, "thank": true, "please": true, "ok": true, "okay": true,
		"sure": true, "good": true, "great": true, "fine": true, "well": true,
		"just": true, "like": true, "want": true, "need": true, "have": true,
		"book": true, "booking": true, "appointment": true, "cancel": true,
		"reschedule": true, "doctor": true, "nurse": true, "clinic": true,
		"morning": true, "afternoon": true, "evening": true, "today": true,
		"tomorrow": true, "available": true, "schedule": true, "time": true,
		"pain": true, "headache": true, "fever": true, "cough": true,
		"checkup": true, "visit": true, "help": true, "hello": true,
		"in": true, "on": true, "at": true, "to": true, "of": true, "is": true, "it": true,
		"an": true, "as": true, "be": true, "by": true, "do": true, "if": true, "or": true,
		"so": true, "up": true, "we": true, "me": true, "my": true, "he": true,
		"about": true, "with": true, "from": true, "this": true, "that": true, "what": true,
		"when": true, "your": true, "some": true, "been": true, "were": true, "them": true,
		"then": true, "than": true, "also": true, "very": true, "more": true, "much": true,
		"here": true, "there": true, "where": true, "which": true, "their": true,
		"would": true, "could": true, "should": true, "will": true,
	}
	return common[strings.ToLower(word)]
}
