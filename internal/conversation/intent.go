package conversation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

// Intent is the patient's top-level goal for a message.
type Intent string

const (
	IntentBook       Intent = "book"
	IntentCancel     Intent = "cancel"
	IntentReschedule Intent = "reschedule"
	IntentInquiry    Intent = "inquiry"
	IntentUnknown    Intent = "unknown"
)

var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	// Reschedule first: "reschedule" messages often also contain "appointment"
	// or "change my booking" phrasing that would match book.
	{IntentReschedule, []string{"reschedule", "move my appointment", "change my appointment", "different time", "push back"}},
	{IntentCancel, []string{"cancel", "call off", "can't make it", "cannot make it"}},
	{IntentBook, []string{"book", "schedule", "appointment", "see a doctor", "see the doctor", "come in", "make an"}},
	{IntentInquiry, []string{"hours", "open", "insurance", "parking", "located", "location", "address", "cost", "price", "bring", "covid", "telehealth", "question"}},
}

const intentClassifierPrompt = `Classify this message to a medical office assistant into ONE intent. Respond with JSON only.

Intents:
- book: wants to make a new appointment
- cancel: wants to cancel an existing appointment
- reschedule: wants to move an existing appointment to a different time
- inquiry: asking a question about the office (hours, insurance, location, policies)
- unknown: anything else, including greetings

Message: %s

Respond with: {"intent": "<intent_name>"}`

var knownIntents = map[Intent]bool{
	IntentBook: true, IntentCancel: true, IntentReschedule: true,
	IntentInquiry: true, IntentUnknown: true,
}

// IntentClassifier resolves the patient's goal, keywords first and an LLM
// fallback for everything the keywords miss.
type IntentClassifier struct {
	llm    nlu.LLMClient
	model  string
	logger *logging.Logger
}

// NewIntentClassifier creates a classifier. A nil LLM client leaves only the
// keyword tier.
func NewIntentClassifier(llm nlu.LLMClient, model string, logger *logging.Logger) *IntentClassifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntentClassifier{llm: llm, model: model, logger: logger}
}

// Classify returns the intent of a message.
func (c *IntentClassifier) Classify(ctx context.Context, message string) Intent {
	if intent := keywordIntent(message); intent != IntentUnknown {
		return intent
	}
	if c.llm == nil {
		return IntentUnknown
	}

	prompt := strings.Replace(intentClassifierPrompt, "%s", message, 1)
	resp, err := c.llm.Complete(ctx, nlu.LLMRequest{
		Model:     c.model,
		Messages:  []nlu.ChatMessage{{Role: nlu.ChatRoleUser, Content: prompt}},
		MaxTokens: 50,
	})
	if err != nil {
		c.logger.Warn("intent classification failed", "error", err)
		return IntentUnknown
	}

	var result struct {
		Intent string `json:"intent"`
	}
	// The model may wrap the JSON in extra text.
	content := strings.TrimSpace(resp.Text)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return IntentUnknown
	}

	intent := Intent(result.Intent)
	if !knownIntents[intent] {
		return IntentUnknown
	}
	return intent
}

func keywordIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, entry := range intentKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}

// wantsCancel and wantsReschedule detect mid-flow changes of direction.
func wantsCancel(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "cancel")
}

func wantsReschedule(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "reschedule") ||
		strings.Contains(lower, "move my appointment") ||
		strings.Contains(lower, "change my appointment")
}

// Affirmative and negative replies for confirmation prompts.
var affirmativeWords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "correct": true, "confirm": true, "confirmed": true,
	"right": true, "ok": true, "okay": true, "sounds good": true,
	"that works": true, "perfect": true, "please do": true, "go ahead": true,
	"absolutely": true, "definitely": true,
}

var negativeWords = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true, "wrong": true,
	"incorrect": true, "not right": true, "don't": true, "do not": true,
	"never mind": true, "nevermind": true, "stop": true,
}

// disagreementMarkers flag pushback on a suggested specialty. A reply without
// one counts as agreement with the suggestion.
var disagreementMarkers = []string{
	"no", "not", "nah", "nope", "don't", "do not", "rather", "instead",
	"different", "someone else", "somebody else", "prefer", "actually",
}

var markerPunctuation = strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ", ";", " ")

func disagreesWithSuggestion(message string) bool {
	padded := " " + markerPunctuation.Replace(strings.ToLower(message)) + " "
	for _, marker := range disagreementMarkers {
		if strings.Contains(padded, " "+marker+" ") {
			return true
		}
	}
	return false
}

func isAffirmative(message string) bool {
	return matchesReplySet(message, affirmativeWords)
}

func isNegative(message string) bool {
	return matchesReplySet(message, negativeWords)
}

func matchesReplySet(message string, set map[string]bool) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.Trim(normalized, ".,!?")
	if set[normalized] {
		return true
	}
	// Short replies that start with a set phrase still count.
	for phrase := range set {
		if len(phrase) > 1 && strings.HasPrefix(normalized, phrase+" ") {
			return true
		}
	}
	return false
}
