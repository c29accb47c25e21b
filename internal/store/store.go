package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
)

var (
	// ErrNotFound is returned when a patient, doctor, or appointment does
	// not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrSlotTaken is returned when an insert would double-book a doctor
	// slot. Callers treat this as recoverable.
	ErrSlotTaken = errors.New("store: slot already booked")
)

// Store is the persistence collaborator for patients, doctors, and
// appointments. Implementations: Postgres (production) and in-memory
// (tests and demo mode).
type Store interface {
	// UpsertPatient finds an existing patient by phone or email and updates
	// it, or inserts a new record. The returned patient carries the
	// authoritative ID.
	UpsertPatient(ctx context.Context, p model.Patient) (model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (model.Patient, error)

	ListDoctors(ctx context.Context) ([]model.Doctor, error)
	FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (model.Doctor, error)

	// AppointmentsForDoctorDate returns all appointments (any status) for a
	// doctor on an ISO date.
	AppointmentsForDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]model.Appointment, error)
	FindAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Appointment, error)

	// NextAppointmentSeq atomically reserves the next value of the
	// appointment ID sequence.
	NextAppointmentSeq(ctx context.Context) (int64, error)
	// CreateAppointment inserts a new appointment. Returns ErrSlotTaken when
	// the doctor already has a non-cancelled appointment at the same
	// date and time.
	CreateAppointment(ctx context.Context, a model.Appointment) error
	GetAppointment(ctx context.Context, id string) (model.Appointment, error)
	// CancelAppointment flips the status to cancelled and returns the
	// updated record.
	CancelAppointment(ctx context.Context, id string) (model.Appointment, error)
	// RescheduleAppointment moves an appointment to a new date and time and
	// marks it rescheduled. Returns ErrSlotTaken if the target slot is
	// occupied.
	RescheduleAppointment(ctx context.Context, id, newDate, newTime string) (model.Appointment, error)
}
