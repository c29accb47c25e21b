package extract

import (
	"context"
	"testing"
)

func TestEmail(t *testing.T) {
	ex := newTestExtractor(nil, true)

	tests := []struct {
		utterance string
		want      string
		ok        bool
	}{
		{"john.doe@example.com", "john.doe@example.com", true},
		{"reach me at John.Doe+appts@Example.CO.UK thanks", "john.doe+appts@example.co.uk", true},
		{"john at example dot com", "", false},
		{"no email", "", false},
	}
	for _, tt := range tests {
		res, ok := ex.Email(context.Background(), tt.utterance)
		if ok != tt.ok {
			t.Errorf("Email(%q) ok = %v, want %v", tt.utterance, ok, tt.ok)
			continue
		}
		if ok && res.Value != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.utterance, res.Value, tt.want)
		}
	}
}

func TestAppointmentID(t *testing.T) {
	ex := newTestExtractor(nil, true)

	tests := []struct {
		utterance string
		want      string
		ok        bool
	}{
		{"cancel MA-12345", "MA-12345", true},
		{"it's ma 00042", "MA-00042", true},
		{"confirmation MA67890 please", "MA-67890", true},
		{"MA-123", "", false},
		{"I lost the number", "", false},
	}
	for _, tt := range tests {
		res, ok := ex.AppointmentID(context.Background(), tt.utterance)
		if ok != tt.ok {
			t.Errorf("AppointmentID(%q) ok = %v, want %v", tt.utterance, ok, tt.ok)
			continue
		}
		if ok && res.Value != tt.want {
			t.Errorf("AppointmentID(%q) = %q, want %q", tt.utterance, res.Value, tt.want)
		}
	}
}

func TestReason(t *testing.T) {
	ex := newTestExtractor(nil, true)

	tests := []struct {
		utterance string
		want      string
		ok        bool
	}{
		{"I have been having headaches", "headaches", true},
		{"I'm experiencing chest pain.", "chest pain", true},
		{"my back hurts", "back hurts", true},
		{"annual checkup", "annual checkup", true},
		{"for a skin rash", "skin rash", true},
		{"yes", "", false},
		{"ok", "", false},
		{"hi", "", false},
	}
	for _, tt := range tests {
		res, ok := ex.Reason(context.Background(), tt.utterance)
		if ok != tt.ok {
			t.Errorf("Reason(%q) ok = %v, want %v", tt.utterance, ok, tt.ok)
			continue
		}
		if ok && res.Value != tt.want {
			t.Errorf("Reason(%q) = %q, want %q", tt.utterance, res.Value, tt.want)
		}
	}
}

func TestSpecialtyForReason(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"terrible headaches", "Neurologist"},
		{"chest pain when climbing stairs", "Cardiologist"},
		{"itchy skin rash", "Dermatologist"},
		{"my child has a fever", "Pediatrician"},
		{"trouble breathing", "Pulmonologist"},
		{"annual physical", "General Practitioner"},
	}
	for _, tt := range tests {
		if got := SpecialtyForReason(tt.reason); got != tt.want {
			t.Errorf("SpecialtyForReason(%q) = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

func TestMentionedSpecialty(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{"I'd rather see a cardiologist", "Cardiologist"},
		{"can I get a heart doctor instead", "Cardiologist"},
		{"a GP is fine", "General Practitioner"},
		{"my gpa recommended you", ""},
		{"just book me with anyone", ""},
	}
	for _, tt := range tests {
		if got := MentionedSpecialty(tt.utterance); got != tt.want {
			t.Errorf("MentionedSpecialty(%q) = %q, want %q", tt.utterance, got, tt.want)
		}
	}
}

func TestSpecialtyPatternTier(t *testing.T) {
	ex := newTestExtractor(nil, true)

	res, ok := ex.Specialty(context.Background(), "I'd rather see a dermatologist")
	if !ok || res.Value != "Dermatologist" || res.Tier != TierPattern {
		t.Errorf("Specialty = %+v, %v", res, ok)
	}
}

func TestSpecialtyNLUTier(t *testing.T) {
	llm := &stubLLM{replies: []string{"ENT Specialist"}}
	ex := newTestExtractor(llm, true)

	res, ok := ex.Specialty(context.Background(), "no, I need someone for my sinuses")
	if !ok {
		t.Fatal("expected NLU tier to resolve the specialty")
	}
	if res.Value != "ENT Specialist" || res.Tier != TierNLU {
		t.Errorf("Specialty = %+v", res)
	}
}

func TestSpecialtyNLUAnswerRevalidated(t *testing.T) {
	llm := &stubLLM{replies: []string{"Wizardry"}}
	ex := newTestExtractor(llm, true)

	if _, ok := ex.Specialty(context.Background(), "someone for my sinuses"); ok {
		t.Error("answer outside the known specialty list must be a miss")
	}
}

func TestSpecialtyMissWithoutNLU(t *testing.T) {
	ex := newTestExtractor(nil, true)

	if _, ok := ex.Specialty(context.Background(), "someone for my sinuses"); ok {
		t.Error("free-text specialty needs the NLU tier")
	}
}
