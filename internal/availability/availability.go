// Package availability resolves open appointment slots from a doctor's
// calendar and the appointments already on the books.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
	"github.com/wolfman30/medoffice-ai-agent/internal/store"
)

// Resolver computes free slots. A slot is free when the doctor's calendar
// lists it for the date and no non-cancelled appointment occupies it.
type Resolver struct {
	store  store.Store
	tracer trace.Tracer
}

// NewResolver creates a Resolver.
func NewResolver(st store.Store) *Resolver {
	if st == nil {
		panic("availability: store is required")
	}
	return &Resolver{
		store:  st,
		tracer: otel.Tracer("medoffice.internal.availability"),
	}
}

// SlotsFor returns the free times for a doctor on a date, sorted ascending.
// A date the calendar does not list yields an empty slice, not an error.
func (r *Resolver) SlotsFor(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "availability.SlotsFor",
		trace.WithAttributes(attribute.String("doctor_id", doctorID.String()), attribute.String("date", date)))
	defer span.End()

	doctor, err := r.store.GetDoctor(ctx, doctorID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("availability: load doctor: %w", err)
	}

	calendar := doctor.Calendar[date]
	if len(calendar) == 0 {
		return []string{}, nil
	}

	appointments, err := r.store.AppointmentsForDoctorDate(ctx, doctorID, date)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("availability: load appointments: %w", err)
	}

	taken := make(map[string]bool, len(appointments))
	for _, appt := range appointments {
		if appt.Active() {
			taken[appt.Time] = true
		}
	}

	free := make([]string, 0, len(calendar))
	for _, slot := range calendar {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	sort.Strings(free)
	return free, nil
}

// IsFree reports whether a specific slot is open.
func (r *Resolver) IsFree(ctx context.Context, doctorID uuid.UUID, date, clock string) (bool, error) {
	slots, err := r.SlotsFor(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot == clock {
			return true, nil
		}
	}
	return false, nil
}

// EarliestSlot scans forward from the day after `from` and returns the first
// free slot within windowDays. It returns ok=false when the window has none.
func (r *Resolver) EarliestSlot(ctx context.Context, doctorID uuid.UUID, from time.Time, windowDays int) (date, clock string, ok bool, err error) {
	for day := 1; day <= windowDays; day++ {
		candidate := from.AddDate(0, 0, day).Format(model.DateLayout)
		slots, err := r.SlotsFor(ctx, doctorID, candidate)
		if err != nil {
			return "", "", false, err
		}
		if len(slots) > 0 {
			return candidate, slots[0], true, nil
		}
	}
	return "", "", false, nil
}

// FormatDisplayTime renders a 24-hour HH:MM time as 12-hour with a meridiem,
// for prompts and receipts. Unparseable input is returned unchanged.
func FormatDisplayTime(clock string) string {
	t, err := time.Parse(model.TimeLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

// FormatDisplayDate renders an ISO date as a full human-readable date.
// Unparseable input is returned unchanged.
func FormatDisplayDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
