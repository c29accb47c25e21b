package scheduling

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wolfman30/medoffice-ai-agent/internal/availability"
	"github.com/wolfman30/medoffice-ai-agent/internal/model"
	"github.com/wolfman30/medoffice-ai-agent/internal/notify"
	"github.com/wolfman30/medoffice-ai-agent/internal/store"
)

type recordingSender struct {
	sent []notify.Message
}

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func newTestService(t *testing.T) (*Service, *store.MemoryStore, model.Doctor, *recordingSender) {
	t.Helper()
	st := store.NewMemoryStore()
	doctor := st.AddDoctor(model.Doctor{
		Name:      "Dr. Smith",
		Specialty: "General Practitioner",
		Calendar: map[string][]string{
			"2026-03-11": {"09:00", "10:00", "14:00"},
			"2026-03-12": {"09:00"},
		},
	})
	sender := &recordingSender{}
	svc := New(Config{
		Store:    st,
		Resolver: availability.NewResolver(st),
		Notifier: sender,
	})
	return svc, st, doctor, sender
}

func bookingRequest(doctorID uuid.UUID) BookingRequest {
	return BookingRequest{
		Name:      "John Smith",
		Phone:     "555-123-4567",
		Birthdate: "1990-05-15",
		Email:     "john@example.com",
		Reason:    "headaches",
		DoctorID:  doctorID,
		Date:      "2026-03-11",
		Time:      "14:00",
	}
}

func TestBook(t *testing.T) {
	svc, st, doctor, sender := newTestService(t)
	ctx := context.Background()

	receipt, patientID, err := svc.Book(ctx, bookingRequest(doctor.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if receipt.AppointmentID != "MA-00001" {
		t.Errorf("AppointmentID = %q, want MA-00001", receipt.AppointmentID)
	}
	if receipt.Status != model.StatusConfirmed {
		t.Errorf("Status = %q", receipt.Status)
	}
	if receipt.DoctorName != "Dr. Smith" || receipt.Date != "2026-03-11" || receipt.Time != "14:00" {
		t.Errorf("receipt = %+v", receipt)
	}

	patient, err := st.GetPatient(ctx, patientID)
	if err != nil {
		t.Fatalf("GetPatient: %v", err)
	}
	if patient.Name != "John Smith" {
		t.Errorf("patient.Name = %q", patient.Name)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "john@example.com" || msg.Subject != "Your Appointment Confirmation" {
		t.Errorf("email = %+v", msg)
	}
	if !strings.Contains(msg.TextBody, "MA-00001") {
		t.Errorf("confirmation email missing appointment ID")
	}
}

func TestBookSlotTaken(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Book(ctx, bookingRequest(doctor.ID)); err != nil {
		t.Fatalf("first Book: %v", err)
	}

	req := bookingRequest(doctor.ID)
	req.Name = "Maria Garcia"
	req.Phone = "555-987-6543"
	req.Email = "maria@example.com"
	if _, _, err := svc.Book(ctx, req); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("err = %v, want ErrSlotUnavailable", err)
	}
}

func TestBookOffCalendarSlot(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)

	req := bookingRequest(doctor.ID)
	req.Time = "23:00"
	if _, _, err := svc.Book(context.Background(), req); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("err = %v, want ErrSlotUnavailable", err)
	}
}

func TestBookReusesPatientByPhone(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)
	ctx := context.Background()

	_, firstID, err := svc.Book(ctx, bookingRequest(doctor.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	req := bookingRequest(doctor.ID)
	req.Time = "09:00"
	_, secondID, err := svc.Book(ctx, req)
	if err != nil {
		t.Fatalf("second Book: %v", err)
	}
	if firstID != secondID {
		t.Errorf("patient IDs differ: %s vs %s", firstID, secondID)
	}
}

func TestCancel(t *testing.T) {
	svc, _, doctor, sender := newTestService(t)
	ctx := context.Background()

	receipt, _, err := svc.Book(ctx, bookingRequest(doctor.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, receipt.AppointmentID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("Status = %q", cancelled.Status)
	}

	// The slot opens back up.
	if _, _, err := svc.Book(ctx, bookingRequest(doctor.ID)); err != nil {
		t.Errorf("rebooking freed slot: %v", err)
	}

	var subjects []string
	for _, m := range sender.sent {
		subjects = append(subjects, m.Subject)
	}
	if len(sender.sent) != 3 || sender.sent[1].Subject != "Your Appointment Has Been Cancelled" {
		t.Errorf("subjects = %v", subjects)
	}
}

func TestCancelUnknownID(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Cancel(context.Background(), "MA-99999"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("err = %v, want ErrAppointmentNotFound", err)
	}
}

func TestReschedule(t *testing.T) {
	svc, _, doctor, sender := newTestService(t)
	ctx := context.Background()

	receipt, _, err := svc.Book(ctx, bookingRequest(doctor.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	before, after, err := svc.Reschedule(ctx, receipt.AppointmentID, "2026-03-12", "09:00")
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if before.Date != "2026-03-11" || before.Time != "14:00" {
		t.Errorf("before = %+v", before)
	}
	if after.Date != "2026-03-12" || after.Time != "09:00" {
		t.Errorf("after = %+v", after)
	}
	if after.Status != model.StatusRescheduled {
		t.Errorf("after.Status = %q", after.Status)
	}

	// Old slot reopens.
	if _, _, err := svc.Book(ctx, bookingRequest(doctor.ID)); err != nil {
		t.Errorf("rebooking old slot: %v", err)
	}

	if len(sender.sent) < 2 || sender.sent[1].Subject != "Your Appointment Has Been Rescheduled" {
		t.Errorf("missing reschedule email, sent %d", len(sender.sent))
	}
}

func TestRescheduleToTakenSlot(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)
	ctx := context.Background()

	first, _, err := svc.Book(ctx, bookingRequest(doctor.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	req := bookingRequest(doctor.ID)
	req.Time = "09:00"
	if _, _, err := svc.Book(ctx, req); err != nil {
		t.Fatalf("second Book: %v", err)
	}

	if _, _, err := svc.Reschedule(ctx, first.AppointmentID, "2026-03-11", "09:00"); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("err = %v, want ErrSlotUnavailable", err)
	}
}

func TestLookup(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)
	ctx := context.Background()

	receipt, _, err := svc.Book(ctx, bookingRequest(doctor.ID))
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	found, err := svc.Lookup(ctx, receipt.AppointmentID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found.PatientName != "John Smith" || found.DoctorName != "Dr. Smith" {
		t.Errorf("found = %+v", found)
	}

	if _, err := svc.Lookup(ctx, "MA-99999"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("err = %v, want ErrAppointmentNotFound", err)
	}
}
