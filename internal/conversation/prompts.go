package conversation

import (
	"fmt"
	"strings"

	"github.com/wolfman30/medoffice-ai-agent/internal/availability"
	"github.com/wolfman30/medoffice-ai-agent/internal/scheduling"
)

// Reply text lives here so the engine reads as control flow. Wording stays
// close to how front-desk staff actually talk.

func promptGreeting(clinicName string) string {
	return fmt.Sprintf("Hello! This is the virtual assistant for %s. I can book, cancel, or reschedule appointments, and answer questions about the office. How can I help you today?", clinicName)
}

func promptAskName() string {
	return "I'd be happy to help you book an appointment. May I have your full name?"
}

func promptRetryName() string {
	return "Sorry, I didn't catch your name. Could you spell it out for me?"
}

func promptAskPhone(name string) string {
	return fmt.Sprintf("Thanks, %s. What's the best phone number to reach you?", name)
}

func promptRetryPhone() string {
	return "I couldn't read that as a phone number. Could you give it as ten digits, like 555-123-4567?"
}

func promptAskBirthdate() string {
	return "Got it. What's your date of birth?"
}

func promptRetryBirthdate() string {
	return "Sorry, I couldn't understand that date. Could you give your date of birth like 1990-05-15 or May 15, 1990?"
}

func promptAskReason() string {
	return "Thank you. What's the reason for your visit?"
}

func promptRetryReason() string {
	return "Could you tell me a bit more about what you'd like to be seen for?"
}

func promptSuggestSpecialty(reason, specialty string) string {
	return fmt.Sprintf("For %s, I'd suggest seeing a %s. Shall I book you with one, or would you prefer a different specialist?", reason, specialty)
}

func promptRetrySpecialty(specialty string) string {
	return fmt.Sprintf("Should I go ahead with a %s, or is there another specialty you'd prefer?", specialty)
}

func promptAskDateTime(doctor string) string {
	return fmt.Sprintf("I can book you with %s. What day and time work for you?", doctor)
}

func promptNoDoctorForSpecialty(specialty, fallbackDoctor string) string {
	return fmt.Sprintf("We don't have a %s on staff, so I'll book you with %s instead. What day and time work for you?", specialty, fallbackDoctor)
}

func promptAskTimeForDate(date string, slots []string) string {
	if len(slots) == 0 {
		return fmt.Sprintf("Unfortunately there are no openings on %s. Could you give me another day?",
			availability.FormatDisplayDate(date))
	}
	return fmt.Sprintf("On %s we have: %s. Which time works for you?",
		availability.FormatDisplayDate(date), joinSlots(slots))
}

func promptSlotTaken(date string, slots []string) string {
	if len(slots) == 0 {
		return fmt.Sprintf("I'm sorry, there are no openings left on %s. Could you give me another day?",
			availability.FormatDisplayDate(date))
	}
	return fmt.Sprintf("I'm sorry, that time is taken. On %s we still have: %s. Would any of those work?",
		availability.FormatDisplayDate(date), joinSlots(slots))
}

func promptRetryDateTime() string {
	return "Sorry, I didn't catch that. What day and time would you like? For example, \"next Tuesday at 2 pm\"."
}

func promptDateTimePlaceholder(date, clock string) string {
	return fmt.Sprintf("No problem. The earliest opening I can offer is %s at %s. I'll pencil that in, and we can always move it later. What's your email address for the confirmation?",
		availability.FormatDisplayDate(date), availability.FormatDisplayTime(clock))
}

func promptAskEmail() string {
	return "Almost done. What email address should the confirmation go to?"
}

func promptRetryEmail() string {
	return "That doesn't look like an email address. Could you give it like name@example.com?"
}

func promptConfirm(c *Context) string {
	var b strings.Builder
	b.WriteString("Here's what I have:\n")
	fmt.Fprintf(&b, "  Name: %s\n", c.Name)
	fmt.Fprintf(&b, "  Phone: %s\n", c.Phone)
	fmt.Fprintf(&b, "  Date of birth: %s\n", c.Birthdate)
	fmt.Fprintf(&b, "  Reason: %s\n", c.Reason)
	fmt.Fprintf(&b, "  Doctor: %s (%s)\n", c.Doctor, c.Specialty)
	fmt.Fprintf(&b, "  When: %s at %s\n", availability.FormatDisplayDate(c.Date), availability.FormatDisplayTime(c.Time))
	fmt.Fprintf(&b, "  Email: %s\n", c.Email)
	b.WriteString("Shall I book it?")
	return b.String()
}

func promptRetryConfirm() string {
	return "Just to be sure: should I book it? A yes or no works."
}

func promptBookingConfirmed(r scheduling.Receipt) string {
	return fmt.Sprintf("You're all set! Your appointment with %s is booked for %s at %s. Your confirmation number is %s. We've emailed you the details. Anything else I can help with?",
		r.DoctorName, availability.FormatDisplayDate(r.Date), availability.FormatDisplayTime(r.Time), r.AppointmentID)
}

func promptBookingAborted() string {
	return "No problem, I've discarded that booking. Is there anything else I can help with?"
}

func promptAskAppointmentID(action string) string {
	return fmt.Sprintf("I can help you %s. What's your confirmation number? It looks like MA-12345.", action)
}

func promptRetryAppointmentID() string {
	return "I couldn't find a confirmation number in that. It's in the format MA-12345, from your confirmation email."
}

func promptAppointmentNotFound() string {
	return "I couldn't find an appointment with that number. Could you double-check it?"
}

func promptConfirmCancel(r scheduling.Receipt) string {
	return fmt.Sprintf("I found it: %s with %s on %s at %s. Do you want me to cancel this appointment?",
		r.AppointmentID, r.DoctorName, availability.FormatDisplayDate(r.Date), availability.FormatDisplayTime(r.Time))
}

func promptCancelled(r scheduling.Receipt) string {
	return fmt.Sprintf("Done. Your appointment %s on %s at %s has been cancelled. Anything else I can help with?",
		r.AppointmentID, availability.FormatDisplayDate(r.Date), availability.FormatDisplayTime(r.Time))
}

func promptKeptAppointment() string {
	return "Okay, I've kept your appointment as it was. Anything else I can help with?"
}

func promptAskNewDateTime(r scheduling.Receipt) string {
	return fmt.Sprintf("I found it: %s with %s on %s at %s. What new day and time would you like?",
		r.AppointmentID, r.DoctorName, availability.FormatDisplayDate(r.Date), availability.FormatDisplayTime(r.Time))
}

func promptConfirmReschedule(c *Context) string {
	return fmt.Sprintf("To confirm: move appointment %s to %s at %s?",
		c.AppointmentID, availability.FormatDisplayDate(c.NewDate), availability.FormatDisplayTime(c.NewTime))
}

func promptRescheduled(before, after scheduling.Receipt) string {
	return fmt.Sprintf("Done! Appointment %s has been moved from %s at %s to %s at %s with %s. We've emailed you the update. Anything else I can help with?",
		after.AppointmentID,
		availability.FormatDisplayDate(before.Date), availability.FormatDisplayTime(before.Time),
		availability.FormatDisplayDate(after.Date), availability.FormatDisplayTime(after.Time),
		after.DoctorName)
}

func promptStartOver() string {
	return "I'm having trouble following, so let's start fresh. I can book, cancel, or reschedule an appointment. What would you like to do?"
}

func promptSystemTrouble() string {
	return "I'm sorry, I'm having trouble on my end right now. Please try again in a moment."
}

func joinSlots(slots []string) string {
	display := make([]string, len(slots))
	for i, s := range slots {
		display[i] = availability.FormatDisplayTime(s)
	}
	return strings.Join(display, ", ")
}
