package inquiry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Complete(_ context.Context, _ nlu.LLMRequest) (nlu.LLMResponse, error) {
	if s.err != nil {
		return nlu.LLMResponse{}, s.err
	}
	return nlu.LLMResponse{Text: s.reply}, nil
}

func TestAnswerFromKnowledgeBase(t *testing.T) {
	svc := NewService(nil, "", nil)

	tests := []struct {
		question string
		want     string
	}{
		{"What are your hours?", "Monday through Friday"},
		{"do you accept insurance from my employer", "insurance card"},
		{"Where are you located exactly?", "123 Medical Drive"},
		{"is there parking nearby", "free parking"},
	}
	for _, tt := range tests {
		got := svc.Answer(context.Background(), tt.question)
		if !strings.Contains(got, tt.want) {
			t.Errorf("Answer(%q) = %q, want substring %q", tt.question, got, tt.want)
		}
	}
}

func TestAnswerFallsBackToLLM(t *testing.T) {
	svc := NewService(&stubLLM{reply: "We do offer telehealth visits for follow-ups."}, "test-model", nil)

	got := svc.Answer(context.Background(), "do you do telehealth")
	if !strings.Contains(got, "telehealth visits") {
		t.Errorf("Answer = %q", got)
	}
}

func TestAnswerApologizesOnLLMError(t *testing.T) {
	svc := NewService(&stubLLM{err: errors.New("model down")}, "test-model", nil)

	got := svc.Answer(context.Background(), "do you do telehealth")
	if got != apologyAnswer {
		t.Errorf("Answer = %q, want apology", got)
	}
}

func TestAnswerApologizesWithoutLLM(t *testing.T) {
	svc := NewService(nil, "", nil)

	got := svc.Answer(context.Background(), "something nobody asked before")
	if got != apologyAnswer {
		t.Errorf("Answer = %q, want apology", got)
	}
}
