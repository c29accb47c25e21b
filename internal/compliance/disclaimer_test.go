package compliance

import (
	"context"
	"strings"
	"testing"
)

func TestAddDisclaimerFirstMessageOnly(t *testing.T) {
	svc := NewDisclaimerService(nil, DefaultDisclaimerConfig())

	first := svc.AddDisclaimer(context.Background(), "Hello! How can I help?", DisclaimerOptions{
		ConversationID: "conv-1",
		IsFirstMessage: true,
	})
	if !strings.Contains(first, disclaimerMediumText) {
		t.Errorf("first message missing disclaimer: %q", first)
	}

	later := svc.AddDisclaimer(context.Background(), "Got it, what's your phone number?", DisclaimerOptions{
		ConversationID: "conv-1",
		IsFirstMessage: false,
	})
	if strings.Contains(later, disclaimerMediumText) {
		t.Errorf("later message should not carry disclaimer: %q", later)
	}
}

func TestAddDisclaimerDisabled(t *testing.T) {
	svc := NewDisclaimerService(nil, DisclaimerConfig{Enabled: false})

	got := svc.AddDisclaimer(context.Background(), "Hello!", DisclaimerOptions{IsFirstMessage: true})
	if got != "Hello!" {
		t.Errorf("AddDisclaimer = %q, want untouched", got)
	}
}

func TestAddDisclaimerIdempotent(t *testing.T) {
	svc := NewDisclaimerService(nil, DefaultDisclaimerConfig())

	once := svc.AddDisclaimer(context.Background(), "Hello!", DisclaimerOptions{IsFirstMessage: true})
	twice := svc.AddDisclaimer(context.Background(), once, DisclaimerOptions{IsFirstMessage: true})
	if once != twice {
		t.Errorf("disclaimer added twice:\n%q\n%q", once, twice)
	}
}

func TestGetDisclaimerText(t *testing.T) {
	tests := []struct {
		level DisclaimerLevel
		want  string
	}{
		{DisclaimerShort, disclaimerShortText},
		{DisclaimerMedium, disclaimerMediumText},
		{DisclaimerFull, disclaimerFullText},
	}
	for _, tt := range tests {
		svc := NewDisclaimerService(nil, DisclaimerConfig{Level: tt.level, Enabled: true})
		if got := svc.GetDisclaimerText(); got != tt.want {
			t.Errorf("level %s: got %q", tt.level, got)
		}
	}

	custom := NewDisclaimerService(nil, DisclaimerConfig{Enabled: true, CustomText: "Custom note."})
	if got := custom.GetDisclaimerText(); got != "Custom note." {
		t.Errorf("custom text: got %q", got)
	}
}
