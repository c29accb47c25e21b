package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
)

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Complete(_ context.Context, _ nlu.LLMRequest) (nlu.LLMResponse, error) {
	s.calls++
	if s.err != nil {
		return nlu.LLMResponse{}, s.err
	}
	return nlu.LLMResponse{Text: s.reply}, nil
}

func TestClassifyKeywords(t *testing.T) {
	c := NewIntentClassifier(nil, "", nil)

	tests := []struct {
		message string
		want    Intent
	}{
		{"I'd like to book an appointment", IntentBook},
		{"can I schedule a visit for next week", IntentBook},
		{"I need to see a doctor", IntentBook},
		{"cancel my appointment please", IntentCancel},
		{"I can't make it on Friday", IntentCancel},
		{"I need to reschedule", IntentReschedule},
		{"can we move my appointment to Thursday", IntentReschedule},
		{"what are your hours?", IntentInquiry},
		{"do you take insurance", IntentInquiry},
		{"where are you located", IntentInquiry},
		{"hello there", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := c.Classify(context.Background(), tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassifyRescheduleBeatsBook(t *testing.T) {
	c := NewIntentClassifier(nil, "", nil)

	// "reschedule my appointment" contains a book keyword too; reschedule wins.
	if got := c.Classify(context.Background(), "I want to reschedule my appointment"); got != IntentReschedule {
		t.Errorf("Classify = %s, want %s", got, IntentReschedule)
	}
}

func TestClassifyLLMFallback(t *testing.T) {
	llm := &stubLLM{reply: `{"intent": "book"}`}
	c := NewIntentClassifier(llm, "test-model", nil)

	if got := c.Classify(context.Background(), "my knee has been bothering me, could someone look at it"); got != IntentBook {
		t.Errorf("Classify = %s, want %s", got, IntentBook)
	}
	if llm.calls != 1 {
		t.Errorf("llm calls = %d", llm.calls)
	}
}

func TestClassifyLLMWrappedJSON(t *testing.T) {
	llm := &stubLLM{reply: "Sure! Here is the classification:\n{\"intent\": \"inquiry\"}\nLet me know."}
	c := NewIntentClassifier(llm, "test-model", nil)

	if got := c.Classify(context.Background(), "hmm I was wondering something"); got != IntentInquiry {
		t.Errorf("Classify = %s, want %s", got, IntentInquiry)
	}
}

func TestClassifyLLMErrorsAndGarbage(t *testing.T) {
	tests := []struct {
		name string
		llm  *stubLLM
	}{
		{"llm error", &stubLLM{err: errors.New("model down")}},
		{"not json", &stubLLM{reply: "I think they want to book"}},
		{"unknown intent value", &stubLLM{reply: `{"intent": "party"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewIntentClassifier(tt.llm, "test-model", nil)
			if got := c.Classify(context.Background(), "hmm"); got != IntentUnknown {
				t.Errorf("Classify = %s, want %s", got, IntentUnknown)
			}
		})
	}
}

func TestAffirmativeNegative(t *testing.T) {
	affirmatives := []string{"yes", "Yes!", "yeah", "sure", "sounds good", "yes please", "ok great"}
	for _, msg := range affirmatives {
		if !isAffirmative(msg) {
			t.Errorf("isAffirmative(%q) = false", msg)
		}
	}

	negatives := []string{"no", "No.", "nope", "no thanks", "never mind", "wrong"}
	for _, msg := range negatives {
		if !isNegative(msg) {
			t.Errorf("isNegative(%q) = false", msg)
		}
	}

	neither := []string{"maybe", "what do you mean", "2 pm", ""}
	for _, msg := range neither {
		if isAffirmative(msg) || isNegative(msg) {
			t.Errorf("%q should be neither affirmative nor negative", msg)
		}
	}
}

func TestWantsCancelReschedule(t *testing.T) {
	if !wantsCancel("actually, cancel that") {
		t.Error("wantsCancel miss")
	}
	if wantsCancel("my name is Carla") {
		t.Error("wantsCancel false positive")
	}
	if !wantsReschedule("I'd rather reschedule") {
		t.Error("wantsReschedule miss")
	}
	if !wantsReschedule("please move my appointment") {
		t.Error("wantsReschedule miss on phrase")
	}
	if wantsReschedule("tomorrow at noon") {
		t.Error("wantsReschedule false positive")
	}
}

func TestDisagreesWithSuggestion(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"yes please", false},
		{"sounds good", false},
		{"okay", false},
		{"whatever you think is best", false},
		{"no, I'd rather see someone for my sinuses", true},
		{"not that one", true},
		{"someone else please", true},
		{"I'd prefer a different doctor", true},
		{"nope.", true},
	}
	for _, tt := range tests {
		if got := disagreesWithSuggestion(tt.message); got != tt.want {
			t.Errorf("disagreesWithSuggestion(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
