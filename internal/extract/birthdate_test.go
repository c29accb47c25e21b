package extract

import (
	"context"
	"testing"
)

func TestBirthdateFromPatterns(t *testing.T) {
	ex := newTestExtractor(nil, true)

	tests := []struct {
		utterance string
		want      string
		ok        bool
	}{
		{"1990-05-15", "1990-05-15", true},
		{"I was born on 05/15/1990", "1990-05-15", true},
		{"5/1/1990", "1990-05-01", true},
		{"May 15, 1990", "1990-05-15", true},
		{"born May 15th 1990", "1990-05-15", true},
		{"15th of May 1990", "1990-05-15", true},
		{"3 June 1985", "1985-06-03", true},
		{"sometime in the spring", "", false},
		// Impossible calendar date.
		{"1990-02-30", "", false},
		// Future date.
		{"2030-01-01", "", false},
		// Implies an age over 120.
		{"1890-01-01", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			res, ok := ex.Birthdate(context.Background(), tt.utterance)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (res %+v)", ok, tt.ok, res)
			}
			if ok && res.Value != tt.want {
				t.Errorf("Value = %q, want %q", res.Value, tt.want)
			}
		})
	}
}

func TestBirthdateNLUAnswerChecked(t *testing.T) {
	// A well-formed but future NLU answer is rejected.
	llm := &stubLLM{replies: []string{"2030-05-15"}}
	ex := newTestExtractor(llm, true)

	if _, ok := ex.Birthdate(context.Background(), "the fifteenth of may"); ok {
		t.Error("future birthdate from NLU should be rejected")
	}
}
