package extract

import (
	"context"
	"testing"
)

func TestPhoneFromPatterns(t *testing.T) {
	ex := newTestExtractor(nil, true)

	tests := []struct {
		utterance string
		want      string
		ok        bool
	}{
		{"my number is 555-123-4567", "555-123-4567", true},
		{"(555) 123-4567", "555-123-4567", true},
		{"call me at +1 555 123 4567", "555-123-4567", true},
		{"1-555-123-4567", "555-123-4567", true},
		{"555.123.4567", "555-123-4567", true},
		{"it's 5551234567", "555-123-4567", true},
		{"my number ends in 4567", "", false},
		{"no phone", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			res, ok := ex.Phone(context.Background(), tt.utterance)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && res.Value != tt.want {
				t.Errorf("Value = %q, want %q", res.Value, tt.want)
			}
		})
	}
}

func TestValidatePhoneAnswerBareDigits(t *testing.T) {
	tests := []struct {
		answer string
		want   string
		ok     bool
	}{
		{"5551234567", "555-123-4567", true},
		{"15551234567", "555-123-4567", true},
		{"555123456", "", false},
		{"not a number", "", false},
	}
	for _, tt := range tests {
		got, ok := validatePhoneAnswer(tt.answer)
		if ok != tt.ok || got != tt.want {
			t.Errorf("validatePhoneAnswer(%q) = %q, %v; want %q, %v", tt.answer, got, ok, tt.want, tt.ok)
		}
	}
}
