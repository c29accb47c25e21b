package notify

import (
	"fmt"
	"time"
)

// ReceiptDetails is the appointment summary rendered into receipt emails.
type ReceiptDetails struct {
	AppointmentID string
	PatientName   string
	DoctorName    string
	Specialty     string
	Date          string // ISO date
	Time          string // 24-hour HH:MM
	Reason        string
}

// BuildConfirmationEmail renders the booking confirmation. The recipient
// address is filled in by the caller.
func BuildConfirmationEmail(d ReceiptDetails) Message {
	body := fmt.Sprintf(`Hello %s,

Your appointment is confirmed.

Confirmation number: %s
Doctor: %s (%s)
When: %s at %s%s

Please bring a photo ID and arrive 10 minutes early.
To cancel or reschedule, reply with your confirmation number.
`,
		displayName(d.PatientName), d.AppointmentID, d.DoctorName, d.Specialty,
		displayDate(d.Date), displayTime(d.Time), reasonLine(d.Reason))

	return Message{
		ToName:   d.PatientName,
		Subject:  "Your Appointment Confirmation",
		TextBody: body,
		HTMLBody: receiptHTML("Appointment Confirmed", d),
	}
}

// BuildCancellationEmail renders the cancellation notice.
func BuildCancellationEmail(d ReceiptDetails) Message {
	body := fmt.Sprintf(`Hello %s,

Your appointment %s with %s on %s at %s has been cancelled.

If this was a mistake, just reply and we will book you a new time.
`,
		displayName(d.PatientName), d.AppointmentID, d.DoctorName,
		displayDate(d.Date), displayTime(d.Time))

	return Message{
		ToName:   d.PatientName,
		Subject:  "Your Appointment Has Been Cancelled",
		TextBody: body,
		HTMLBody: receiptHTML("Appointment Cancelled", d),
	}
}

// BuildRescheduleEmail renders the reschedule notice with the new slot.
func BuildRescheduleEmail(d ReceiptDetails) Message {
	body := fmt.Sprintf(`Hello %s,

Your appointment %s with %s has been moved.

New time: %s at %s%s
`,
		displayName(d.PatientName), d.AppointmentID, d.DoctorName,
		displayDate(d.Date), displayTime(d.Time), reasonLine(d.Reason))

	return Message{
		ToName:   d.PatientName,
		Subject:  "Your Appointment Has Been Rescheduled",
		TextBody: body,
		HTMLBody: receiptHTML("Appointment Rescheduled", d),
	}
}

func receiptHTML(heading string, d ReceiptDetails) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>%s</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px;"><strong>Confirmation:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>Doctor:</strong></td><td style="padding: 8px;">%s (%s)</td></tr>
  <tr><td style="padding: 8px;"><strong>Date:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>Time:</strong></td><td style="padding: 8px;">%s</td></tr>
</table>
</div>`,
		heading, d.AppointmentID, d.DoctorName, d.Specialty,
		displayDate(d.Date), displayTime(d.Time))
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func reasonLine(reason string) string {
	if reason == "" {
		return ""
	}
	return "\nReason: " + reason
}

func displayDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func displayTime(clock string) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
