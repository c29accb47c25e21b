package conversation

// RetryPolicy bounds how many times the agent re-asks for a field before
// filling a placeholder and moving on. Names get fewer tries because a
// misheard name is recoverable at the front desk; everything else defaults
// to three.
type RetryPolicy struct {
	FieldMaxAttempts int
	NameMaxAttempts  int
}

// DefaultRetryPolicy matches front-desk practice.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{FieldMaxAttempts: 3, NameMaxAttempts: 2}
}

func (p RetryPolicy) maxFor(field string) int {
	if field == fieldName {
		return p.NameMaxAttempts
	}
	return p.FieldMaxAttempts
}

// Field keys for attempt tracking and placeholder records.
const (
	fieldName      = "name"
	fieldPhone     = "phone"
	fieldBirthdate = "birthdate"
	fieldReason    = "reason"
	fieldSpecialty = "specialty"
	fieldDateTime  = "datetime"
	fieldEmail     = "email"
	fieldConfirm   = "confirm"
	fieldApptID    = "appointment_id"
)

// placeholderValues are the defaults recorded when retries run out. The
// booking still completes; staff reconcile placeholders at check-in.
var placeholderValues = map[string]string{
	fieldName:      "Valued Patient",
	fieldPhone:     "000-000-0000",
	fieldBirthdate: "1990-01-01",
	fieldReason:    "General consultation",
	fieldEmail:     "unknown@patient.invalid",
}
