package conversation

// State identifies where a conversation sits in the dialogue machine.
type State string

const (
	StateInitial State = "INITIAL"

	// Booking flow.
	StateCollectingName      State = "COLLECTING_NAME"
	StateCollectingPhone     State = "COLLECTING_PHONE"
	StateCollectingBirthdate State = "COLLECTING_BIRTHDATE"
	StateCollectingReason    State = "COLLECTING_REASON"
	StateSuggestingSpecialty State = "SUGGESTING_SPECIALTY"
	StateCollectingDateTime  State = "COLLECTING_DATE_TIME"
	StateCollectingEmail     State = "COLLECTING_EMAIL"
	StateConfirming          State = "CONFIRMING"
	StateBookingConfirmed    State = "BOOKING_CONFIRMED"

	// Cancellation flow.
	StateCancelCollectingID    State = "CANCELLING_COLLECTING_ID"
	StateCancelConfirming      State = "CANCELLING_CONFIRMING"
	StateCancellationConfirmed State = "CANCELLATION_CONFIRMED"

	// Reschedule flow.
	StateRescheduleCollectingID State = "RESCHEDULING_COLLECTING_ID"
	StateRescheduleDateTime     State = "RESCHEDULING_DATE_TIME"
	StateRescheduleConfirming   State = "RESCHEDULING_CONFIRMING"
	StateRescheduleConfirmed    State = "RESCHEDULE_CONFIRMED"
)

// Terminal reports whether the state ends its flow. The next message starts a
// fresh conversation turn from INITIAL.
func (s State) Terminal() bool {
	switch s {
	case StateBookingConfirmed, StateCancellationConfirmed, StateRescheduleConfirmed:
		return true
	}
	return false
}

// inBookingFlow reports whether the state belongs to the booking slot-filling
// sequence.
func (s State) inBookingFlow() bool {
	switch s {
	case StateCollectingName, StateCollectingPhone, StateCollectingBirthdate,
		StateCollectingReason, StateSuggestingSpecialty, StateCollectingDateTime,
		StateCollectingEmail, StateConfirming:
		return true
	}
	return false
}

// inCancelFlow and inRescheduleFlow gate the cross-cutting keyword override:
// a cancel or reschedule request switches flows from any state except one
// already inside the matching flow.
func (s State) inCancelFlow() bool {
	switch s {
	case StateCancelCollectingID, StateCancelConfirming:
		return true
	}
	return false
}

func (s State) inRescheduleFlow() bool {
	switch s {
	case StateRescheduleCollectingID, StateRescheduleDateTime, StateRescheduleConfirming:
		return true
	}
	return false
}
