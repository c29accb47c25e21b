package model

import (
	"testing"
	"time"
)

func TestFormatAppointmentID(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "MA-00001"},
		{42, "MA-00042"},
		{12345, "MA-12345"},
		{123456, "MA-123456"},
	}
	for _, tt := range tests {
		if got := FormatAppointmentID(tt.seq); got != tt.want {
			t.Errorf("FormatAppointmentID(%d) = %s, want %s", tt.seq, got, tt.want)
		}
	}
}

func TestAge(t *testing.T) {
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		birthdate string
		want      int
	}{
		{"birthday passed this year", "1990-01-15", 36},
		{"birthday later this year", "1990-06-20", 35},
		{"birthday today", "1990-03-15", 36},
		{"newborn", "2026-03-01", 0},
		{"unparseable", "not-a-date", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Age(tt.birthdate, at); got != tt.want {
				t.Errorf("Age(%s) = %d, want %d", tt.birthdate, got, tt.want)
			}
		})
	}
}

func TestAppointmentActive(t *testing.T) {
	if (Appointment{Status: StatusCancelled}).Active() {
		t.Error("cancelled appointment should not be active")
	}
	if !(Appointment{Status: StatusConfirmed}).Active() {
		t.Error("confirmed appointment should be active")
	}
	if !(Appointment{Status: StatusRescheduled}).Active() {
		t.Error("rescheduled appointment should be active")
	}
}

// The status strings are stored in Postgres rows, carried on receipts, and
// referenced by the partial slot index predicate; the literals are part of
// the external contract.
func TestStatusValues(t *testing.T) {
	if StatusConfirmed != "confirmed" {
		t.Errorf("StatusConfirmed = %q", StatusConfirmed)
	}
	if StatusCancelled != "cancelled" {
		t.Errorf("StatusCancelled = %q", StatusCancelled)
	}
	if StatusRescheduled != "rescheduled" {
		t.Errorf("StatusRescheduled = %q", StatusRescheduled)
	}
}
