package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
)

// stubLLM returns scripted answers in order, then errors.
type stubLLM struct {
	replies []string
	calls   int
}

func (s *stubLLM) Complete(_ context.Context, _ nlu.LLMRequest) (nlu.LLMResponse, error) {
	if s.calls >= len(s.replies) {
		return nlu.LLMResponse{}, errors.New("no scripted reply")
	}
	reply := s.replies[s.calls]
	s.calls++
	return nlu.LLMResponse{Text: reply}, nil
}

var testNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) // a Tuesday

func newTestExtractor(llm nlu.LLMClient, bias bool) *Extractor {
	return New(Config{
		LLM:    llm,
		Model:  "test-model",
		Policy: TimePolicy{AfternoonBias: bias},
		Now:    func() time.Time { return testNow },
	})
}

func TestNLUTierUsedWhenPatternsMiss(t *testing.T) {
	llm := &stubLLM{replies: []string{"John O'Brien"}}
	ex := newTestExtractor(llm, true)

	res, ok := ex.Name(context.Background(), "uh sure it would be the guy from yesterday's call")
	if !ok {
		t.Fatal("expected NLU tier to produce a name")
	}
	if res.Tier != TierNLU {
		t.Errorf("Tier = %q, want %q", res.Tier, TierNLU)
	}
	if res.Value != "John O'brien" {
		t.Errorf("Value = %q", res.Value)
	}
}

func TestNLUUnknownSentinelIsAMiss(t *testing.T) {
	llm := &stubLLM{replies: []string{"Unknown"}}
	ex := newTestExtractor(llm, true)

	if _, ok := ex.Phone(context.Background(), "I'd rather not say"); ok {
		t.Error("sentinel answer should not produce a value")
	}
}

func TestNLUAnswerRevalidated(t *testing.T) {
	// The model hallucinates a phone number shape that fails syntax checks.
	llm := &stubLLM{replies: []string{"call the office"}}
	ex := newTestExtractor(llm, true)

	if _, ok := ex.Phone(context.Background(), "my number is the usual one"); ok {
		t.Error("non-numeric NLU answer should fail re-validation")
	}
}

func TestNLUDisabledWithoutClient(t *testing.T) {
	ex := newTestExtractor(nil, true)

	if _, ok := ex.Phone(context.Background(), "you already have my number"); ok {
		t.Error("expected a miss with the NLU tier disabled")
	}
	// The heuristic tier still runs for names.
	res, ok := ex.Name(context.Background(), "maria garcia")
	if !ok || res.Tier != TierHeuristic {
		t.Fatalf("got %+v, %v; want heuristic name", res, ok)
	}
	if res.Value != "Maria Garcia" {
		t.Errorf("Value = %q", res.Value)
	}
}

func TestNLUErrorDegradesToMiss(t *testing.T) {
	llm := &stubLLM{} // always errors
	ex := newTestExtractor(llm, true)

	if _, ok := ex.Email(context.Background(), "it is my work address"); ok {
		t.Error("LLM failure should degrade to a miss, not an error")
	}
}
