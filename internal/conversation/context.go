package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Context is everything the agent remembers about one conversation. It is
// serialized to Redis between turns, so every field must round-trip JSON.
type Context struct {
	ID    string `json:"id"`
	State State  `json:"state"`

	// Booking slots.
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Birthdate string    `json:"birthdate,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	DoctorID  uuid.UUID `json:"doctor_id,omitempty"`
	Doctor    string    `json:"doctor,omitempty"`
	Date      string    `json:"date,omitempty"`
	Time      string    `json:"time,omitempty"`
	Email     string    `json:"email,omitempty"`

	// PendingPatientID pins the patient record across a retried confirmation.
	PendingPatientID uuid.UUID `json:"pending_patient_id,omitempty"`

	// Cancel and reschedule targets.
	AppointmentID string `json:"appointment_id,omitempty"`
	NewDate       string `json:"new_date,omitempty"`
	NewTime       string `json:"new_time,omitempty"`

	// Attempts counts consecutive failed extractions per field.
	Attempts map[string]int `json:"attempts,omitempty"`
	// Placeholders lists fields filled with defaults after retries ran out,
	// so staff can follow up.
	Placeholders []string `json:"placeholders,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewContext creates a fresh conversation context.
func NewContext(id string) *Context {
	return &Context{
		ID:       id,
		State:    StateInitial,
		Attempts: make(map[string]int),
	}
}

// attempt increments and returns the failure count for a field.
func (c *Context) attempt(field string) int {
	if c.Attempts == nil {
		c.Attempts = make(map[string]int)
	}
	c.Attempts[field]++
	return c.Attempts[field]
}

// clearAttempts resets the failure count for a field.
func (c *Context) clearAttempts(field string) {
	delete(c.Attempts, field)
}

// markPlaceholder records that a field was filled with a default value.
func (c *Context) markPlaceholder(field string) {
	for _, f := range c.Placeholders {
		if f == field {
			return
		}
	}
	c.Placeholders = append(c.Placeholders, field)
}

// resetToInitial clears everything except the conversation ID.
func (c *Context) resetToInitial() {
	*c = *NewContext(c.ID)
}
