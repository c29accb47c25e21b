package notify

import (
	"context"
	"strings"
	"testing"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
		FromName:  "",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Medical Office" {
		t.Errorf("expected default from name 'Medical Office', got %q", sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}

	err := sender.Send(context.Background(), Message{
		To:       "recipient@example.com",
		Subject:  "Test",
		TextBody: "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubSender_Send(t *testing.T) {
	sender := NewStubSender(nil)

	err := sender.Send(context.Background(), Message{
		To:       "recipient@example.com",
		Subject:  "Test Subject",
		TextBody: "Test body",
	})

	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

func TestBuildConfirmationEmail(t *testing.T) {
	msg := BuildConfirmationEmail(ReceiptDetails{
		AppointmentID: "MA-00042",
		PatientName:   "John Smith",
		DoctorName:    "Dr. Smith",
		Specialty:     "General Practitioner",
		Date:          "2026-03-11",
		Time:          "14:00",
		Reason:        "headaches",
	})

	if msg.Subject != "Your Appointment Confirmation" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"MA-00042", "Dr. Smith", "Wednesday, March 11, 2026", "2:00 PM", "headaches"} {
		if !strings.Contains(msg.TextBody, want) {
			t.Errorf("TextBody missing %q:\n%s", want, msg.TextBody)
		}
	}
	if msg.HTMLBody == "" {
		t.Error("expected an HTML body")
	}
}

func TestBuildCancellationEmail(t *testing.T) {
	msg := BuildCancellationEmail(ReceiptDetails{
		AppointmentID: "MA-00042",
		PatientName:   "John Smith",
		DoctorName:    "Dr. Smith",
		Date:          "2026-03-11",
		Time:          "14:00",
	})

	if msg.Subject != "Your Appointment Has Been Cancelled" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "cancelled") {
		t.Errorf("TextBody missing cancellation notice:\n%s", msg.TextBody)
	}
}

func TestBuildRescheduleEmail(t *testing.T) {
	msg := BuildRescheduleEmail(ReceiptDetails{
		AppointmentID: "MA-00042",
		PatientName:   "",
		DoctorName:    "Dr. Johnson",
		Date:          "2026-03-12",
		Time:          "09:30",
	})

	if msg.Subject != "Your Appointment Has Been Rescheduled" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	// Empty patient name falls back to a generic greeting.
	if !strings.Contains(msg.TextBody, "Hello there") {
		t.Errorf("TextBody missing fallback greeting:\n%s", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "9:30 AM") {
		t.Errorf("TextBody missing new time:\n%s", msg.TextBody)
	}
}
