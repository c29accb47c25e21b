package extract

import (
	"context"
	"regexp"
	"strings"
)

var appointmentIDRE = regexp.MustCompile(`(?i)\b(MA[-\s]?(\d{5}))\b`)

// AppointmentID extracts a public appointment ID in the MA-##### format.
// Lowercase or space-separated variants are normalized.
func (e *Extractor) AppointmentID(ctx context.Context, utterance string) (Result, bool) {
	if id, ok := appointmentIDFromPattern(utterance); ok {
		return Result{Value: id, Tier: TierPattern}, true
	}

	if value, ok := e.nluExtract(ctx, "appointment_id",
		"Extract the appointment confirmation number from the message. It looks like MA-12345.",
		utterance, validateAppointmentIDAnswer); ok {
		return Result{Value: value, Tier: TierNLU}, true
	}

	return Result{}, false
}

func appointmentIDFromPattern(utterance string) (string, bool) {
	m := appointmentIDRE.FindStringSubmatch(utterance)
	if m == nil {
		return "", false
	}
	return "MA-" + m[2], true
}

func validateAppointmentIDAnswer(answer string) (string, bool) {
	return appointmentIDFromPattern(strings.TrimSpace(answer))
}
