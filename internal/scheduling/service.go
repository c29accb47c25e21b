// Package scheduling executes booking transactions against the store:
// creating, cancelling, and rescheduling appointments, and producing the
// receipts the conversation layer reads back to the patient.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medoffice-ai-agent/internal/availability"
	"github.com/wolfman30/medoffice-ai-agent/internal/model"
	"github.com/wolfman30/medoffice-ai-agent/internal/notify"
	"github.com/wolfman30/medoffice-ai-agent/internal/store"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

var (
	// ErrSlotUnavailable means the requested slot is not on the calendar or
	// was taken between suggestion and confirmation.
	ErrSlotUnavailable = errors.New("scheduling: slot unavailable")
	// ErrAppointmentNotFound means no appointment matches the given ID.
	ErrAppointmentNotFound = errors.New("scheduling: appointment not found")
)

// Receipt summarizes a completed transaction for read-back and email.
type Receipt struct {
	AppointmentID string    `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	DoctorName    string    `json:"doctor_name"`
	Specialty     string    `json:"specialty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Reason        string    `json:"reason,omitempty"`
	Status        string    `json:"status"`
}

// BookingRequest carries everything needed to book an appointment.
type BookingRequest struct {
	PatientID uuid.UUID // uuid.Nil books for a new or looked-up patient
	Name      string
	Phone     string
	Birthdate string
	Email     string
	Reason    string
	DoctorID  uuid.UUID
	Date      string
	Time      string
}

// Service runs booking transactions.
type Service struct {
	store    store.Store
	resolver *availability.Resolver
	notifier notify.Sender
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Config configures a Service. Notifier is optional; the rest is required.
type Config struct {
	Store    store.Store
	Resolver *availability.Resolver
	Notifier notify.Sender
	Logger   *logging.Logger
}

// New creates a scheduling Service.
func New(cfg Config) *Service {
	if cfg.Store == nil {
		panic("scheduling: store is required")
	}
	if cfg.Resolver == nil {
		panic("scheduling: resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		store:    cfg.Store,
		resolver: cfg.Resolver,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		tracer:   otel.Tracer("medoffice.internal.scheduling"),
	}
}

// Book creates an appointment. The patient record is upserted first so a
// retried confirmation reuses the same patient, then the slot is re-checked
// right before the insert; the store's uniqueness guarantee is the final
// arbiter under concurrency.
func (s *Service) Book(ctx context.Context, req BookingRequest) (Receipt, uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "scheduling.Book",
		trace.WithAttributes(attribute.String("doctor_id", req.DoctorID.String()), attribute.String("date", req.Date)))
	defer span.End()

	doctor, err := s.store.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, uuid.Nil, fmt.Errorf("scheduling: load doctor: %w", err)
	}

	free, err := s.resolver.IsFree(ctx, req.DoctorID, req.Date, req.Time)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, uuid.Nil, err
	}
	if !free {
		return Receipt{}, uuid.Nil, ErrSlotUnavailable
	}

	patient := model.Patient{
		ID:        req.PatientID,
		Name:      req.Name,
		Phone:     req.Phone,
		Birthdate: req.Birthdate,
		Email:     req.Email,
	}
	patient, err = s.store.UpsertPatient(ctx, patient)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, uuid.Nil, fmt.Errorf("scheduling: upsert patient: %w", err)
	}

	seq, err := s.store.NextAppointmentSeq(ctx)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, uuid.Nil, fmt.Errorf("scheduling: allocate id: %w", err)
	}

	appt := model.Appointment{
		ID:         model.FormatAppointmentID(seq),
		PatientID:  patient.ID,
		DoctorID:   doctor.ID,
		DoctorName: doctor.Name,
		Specialty:  doctor.Specialty,
		Date:       req.Date,
		Time:       req.Time,
		Reason:     req.Reason,
		Status:     model.StatusConfirmed,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		span.RecordError(err)
		if errors.Is(err, store.ErrSlotTaken) {
			return Receipt{}, uuid.Nil, ErrSlotUnavailable
		}
		return Receipt{}, uuid.Nil, fmt.Errorf("scheduling: create appointment: %w", err)
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "doctor", doctor.Name, "date", appt.Date, "time", appt.Time)

	receipt := receiptFor(appt, patient.Name)
	s.sendReceipt(ctx, patient.Email, notify.BuildConfirmationEmail, receipt)
	return receipt, patient.ID, nil
}

// Cancel cancels an appointment by public ID and returns its receipt.
func (s *Service) Cancel(ctx context.Context, appointmentID string) (Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "scheduling.Cancel",
		trace.WithAttributes(attribute.String("appointment_id", appointmentID)))
	defer span.End()

	appt, err := s.store.CancelAppointment(ctx, appointmentID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, store.ErrNotFound) {
			return Receipt{}, ErrAppointmentNotFound
		}
		return Receipt{}, fmt.Errorf("scheduling: cancel: %w", err)
	}

	s.logger.Info("appointment cancelled", "appointment_id", appt.ID)

	patientName, email := s.patientContact(ctx, appt.PatientID)
	receipt := receiptFor(appt, patientName)
	s.sendReceipt(ctx, email, notify.BuildCancellationEmail, receipt)
	return receipt, nil
}

// Reschedule moves an appointment to a new slot. It returns the receipt as it
// stood before the move and the receipt after, in that order.
func (s *Service) Reschedule(ctx context.Context, appointmentID, newDate, newTime string) (Receipt, Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "scheduling.Reschedule",
		trace.WithAttributes(attribute.String("appointment_id", appointmentID), attribute.String("new_date", newDate)))
	defer span.End()

	before, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, store.ErrNotFound) {
			return Receipt{}, Receipt{}, ErrAppointmentNotFound
		}
		return Receipt{}, Receipt{}, fmt.Errorf("scheduling: load appointment: %w", err)
	}

	free, err := s.resolver.IsFree(ctx, before.DoctorID, newDate, newTime)
	if err != nil {
		span.RecordError(err)
		return Receipt{}, Receipt{}, err
	}
	// Moving within the same slot is a no-op the patient may still confirm.
	sameSlot := before.Date == newDate && before.Time == newTime
	if !free && !sameSlot {
		return Receipt{}, Receipt{}, ErrSlotUnavailable
	}

	after, err := s.store.RescheduleAppointment(ctx, appointmentID, newDate, newTime)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return Receipt{}, Receipt{}, ErrAppointmentNotFound
		case errors.Is(err, store.ErrSlotTaken):
			return Receipt{}, Receipt{}, ErrSlotUnavailable
		}
		return Receipt{}, Receipt{}, fmt.Errorf("scheduling: reschedule: %w", err)
	}

	s.logger.Info("appointment rescheduled",
		"appointment_id", after.ID, "from", before.Date+" "+before.Time, "to", after.Date+" "+after.Time)

	patientName, email := s.patientContact(ctx, after.PatientID)
	afterReceipt := receiptFor(after, patientName)
	s.sendReceipt(ctx, email, notify.BuildRescheduleEmail, afterReceipt)
	return receiptFor(before, patientName), afterReceipt, nil
}

// Lookup fetches an appointment receipt without changing it, for the
// confirmation step of cancel and reschedule flows.
func (s *Service) Lookup(ctx context.Context, appointmentID string) (Receipt, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Receipt{}, ErrAppointmentNotFound
		}
		return Receipt{}, fmt.Errorf("scheduling: load appointment: %w", err)
	}
	patientName, _ := s.patientContact(ctx, appt.PatientID)
	return receiptFor(appt, patientName), nil
}

func (s *Service) patientContact(ctx context.Context, patientID uuid.UUID) (name, email string) {
	patient, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		s.logger.Warn("patient lookup failed", "patient_id", patientID, "error", err)
		return "", ""
	}
	return patient.Name, patient.Email
}

// sendReceipt emails a receipt when a notifier is configured and the address
// is deliverable. Failures are logged, never surfaced to the patient.
func (s *Service) sendReceipt(ctx context.Context, email string, build func(notify.ReceiptDetails) notify.Message, receipt Receipt) {
	if s.notifier == nil || email == "" || strings.HasSuffix(email, ".invalid") {
		return
	}
	msg := build(notify.ReceiptDetails{
		AppointmentID: receipt.AppointmentID,
		PatientName:   receipt.PatientName,
		DoctorName:    receipt.DoctorName,
		Specialty:     receipt.Specialty,
		Date:          receipt.Date,
		Time:          receipt.Time,
		Reason:        receipt.Reason,
	})
	msg.To = email
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("receipt email failed", "appointment_id", receipt.AppointmentID, "error", err)
	}
}

func receiptFor(appt model.Appointment, patientName string) Receipt {
	return Receipt{
		AppointmentID: appt.ID,
		PatientName:   patientName,
		DoctorID:      appt.DoctorID,
		DoctorName:    appt.DoctorName,
		Specialty:     appt.Specialty,
		Date:          appt.Date,
		Time:          appt.Time,
		Reason:        appt.Reason,
		Status:        appt.Status,
	}
}
