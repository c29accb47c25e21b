package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. A cancelled appointment frees its slot; a rescheduled
// appointment keeps occupying its (new) slot.
const (
	StatusConfirmed   = "confirmed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Date and clock layouts used throughout the scheduling flow. Dates are stored
// as ISO calendar days, times as 24-hour HH:MM.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Patient is a clinic patient record. Patients are deduplicated by phone or
// email at booking time.
type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Birthdate string    `json:"birthdate"` // ISO date, may be a placeholder
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Doctor is a provider with a working calendar. Calendar maps an ISO date to
// the clock times the doctor works that day; a date absent from the calendar
// means the doctor does not work that day.
type Doctor struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Specialty string              `json:"specialty"`
	Calendar  map[string][]string `json:"calendar"`
}

// Appointment is a booked visit. The public ID is sequential in the MA-#####
// format; internal references use the patient and doctor UUIDs.
type Appointment struct {
	ID         string    `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Specialty  string    `json:"specialty"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the appointment still occupies its slot.
func (a Appointment) Active() bool {
	return a.Status != StatusCancelled
}

// FormatAppointmentID renders a sequence number as a public appointment ID.
func FormatAppointmentID(seq int64) string {
	return fmt.Sprintf("MA-%05d", seq)
}

// Age returns the patient age in whole years at the reference time.
// Returns -1 if the birthdate does not parse.
func Age(birthdate string, at time.Time) int {
	born, err := time.Parse(DateLayout, birthdate)
	if err != nil {
		return -1
	}
	years := at.Year() - born.Year()
	anniversary := born.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
