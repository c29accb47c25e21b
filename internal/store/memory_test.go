package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
)

func TestMemoryUpsertPatientDedupesByPhone(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.UpsertPatient(ctx, model.Patient{Name: "John Doe", Phone: "555-123-4567"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := s.UpsertPatient(ctx, model.Patient{Name: "John Doe", Phone: "555-123-4567", Email: "john@example.com"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same patient id, got %s and %s", first.ID, second.ID)
	}
	if second.Email != "john@example.com" {
		t.Errorf("expected email merged, got %q", second.Email)
	}
}

func TestMemoryUpsertPatientDedupesByEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, _ := s.UpsertPatient(ctx, model.Patient{Name: "Jane Roe", Email: "Jane@Example.com"})
	second, _ := s.UpsertPatient(ctx, model.Patient{Name: "Jane Roe", Email: "jane@example.com", Phone: "555-000-1111"})

	if first.ID != second.ID {
		t.Errorf("expected case-insensitive email match to reuse patient")
	}
}

func TestMemoryCreateAppointmentSlotConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doctorID := uuid.New()

	a := model.Appointment{
		ID:       "MA-00001",
		DoctorID: doctorID,
		Date:     "2026-09-07",
		Time:     "10:00",
		Status:   model.StatusConfirmed,
	}
	if err := s.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("first create: %v", err)
	}

	b := a
	b.ID = "MA-00002"
	if err := s.CreateAppointment(ctx, b); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// A different time is fine.
	b.Time = "11:00"
	if err := s.CreateAppointment(ctx, b); err != nil {
		t.Fatalf("create at free slot: %v", err)
	}
}

func TestMemoryCancelFreesSlot(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doctorID := uuid.New()

	a := model.Appointment{ID: "MA-00001", DoctorID: doctorID, Date: "2026-09-07", Time: "10:00", Status: model.StatusConfirmed}
	if err := s.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := s.CancelAppointment(ctx, "MA-00001")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	b := a
	b.ID = "MA-00002"
	if err := s.CreateAppointment(ctx, b); err != nil {
		t.Errorf("slot should be free after cancellation: %v", err)
	}
}

func TestMemoryReschedule(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doctorID := uuid.New()

	a := model.Appointment{ID: "MA-00001", DoctorID: doctorID, Date: "2026-09-07", Time: "10:00", Status: model.StatusConfirmed}
	if err := s.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := s.RescheduleAppointment(ctx, "MA-00001", "2026-09-08", "14:00")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Date != "2026-09-08" || moved.Time != "14:00" {
		t.Errorf("moved to %s %s, want 2026-09-08 14:00", moved.Date, moved.Time)
	}
	if moved.Status != model.StatusRescheduled {
		t.Errorf("status = %s, want rescheduled", moved.Status)
	}

	// Old slot is free again.
	b := model.Appointment{ID: "MA-00002", DoctorID: doctorID, Date: "2026-09-07", Time: "10:00", Status: model.StatusConfirmed}
	if err := s.CreateAppointment(ctx, b); err != nil {
		t.Errorf("old slot should be free after reschedule: %v", err)
	}

	// Rescheduling onto an occupied slot fails.
	if _, err := s.RescheduleAppointment(ctx, "MA-00002", "2026-09-08", "14:00"); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
}

func TestMemoryNextAppointmentSeq(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := s.NextAppointmentSeq(ctx)
		if err != nil {
			t.Fatalf("seq: %v", err)
		}
		if got != want {
			t.Errorf("seq = %d, want %d", got, want)
		}
	}
}

func TestMemorySeedDemoDoctors(t *testing.T) {
	s := NewMemoryStore()
	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	s.SeedDemoDoctors(from, 3)

	doctors, err := s.ListDoctors(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(doctors) != 4 {
		t.Fatalf("expected 4 seeded doctors, got %d", len(doctors))
	}

	gps, err := s.FindDoctorsBySpecialty(context.Background(), "general practitioner")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(gps) != 1 || gps[0].Name != "Dr. Smith" {
		t.Fatalf("expected Dr. Smith as the GP, got %+v", gps)
	}
	if len(gps[0].Calendar["2026-09-07"]) == 0 {
		t.Error("expected calendar entries for seeded dates")
	}
	if len(gps[0].Calendar["2026-09-20"]) != 0 {
		t.Error("expected no calendar entries outside the seed window")
	}
}
