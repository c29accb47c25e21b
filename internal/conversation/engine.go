// Package conversation implements the multi-turn dialogue engine: a state
// machine that collects booking fields with tiered extraction, bounded
// retries, and placeholder fallbacks, and drives scheduling transactions.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medoffice-ai-agent/internal/availability"
	"github.com/wolfman30/medoffice-ai-agent/internal/extract"
	"github.com/wolfman30/medoffice-ai-agent/internal/observability/metrics"
	"github.com/wolfman30/medoffice-ai-agent/internal/scheduling"
	"github.com/wolfman30/medoffice-ai-agent/internal/store"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

// InquiryAnswerer answers general office questions.
type InquiryAnswerer interface {
	Answer(ctx context.Context, question string) string
}

// OutputGuard reviews an outgoing reply and may rewrite it.
type OutputGuard interface {
	Review(ctx context.Context, reply string) string
}

// ReplyDecorator appends regulatory text, such as a disclaimer, to an
// outgoing reply. firstMessage is true on the opening turn of a conversation.
type ReplyDecorator interface {
	Decorate(ctx context.Context, conversationID, reply string, firstMessage bool) string
}

// Reply is the engine's answer to one patient message.
type Reply struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"reply"`
	State          State  `json:"state"`
}

// Engine processes conversation turns.
type Engine struct {
	contexts    *ContextStore
	extractor   *extract.Extractor
	scheduler   *scheduling.Service
	resolver    *availability.Resolver
	store       store.Store
	intents     *IntentClassifier
	inquiries   InquiryAnswerer
	guard       OutputGuard
	disclaimers ReplyDecorator
	transcripts *TranscriptStore
	metrics     *metrics.ConversationMetrics
	retry       RetryPolicy
	windowDays  int
	clinicName  string
	now         func() time.Time
	logger      *logging.Logger
	tracer      trace.Tracer
}

// EngineConfig wires an Engine. Contexts, Extractor, Scheduler, Resolver,
// Store, and Intents are required; the rest degrade gracefully when nil.
type EngineConfig struct {
	Contexts    *ContextStore
	Extractor   *extract.Extractor
	Scheduler   *scheduling.Service
	Resolver    *availability.Resolver
	Store       store.Store
	Intents     *IntentClassifier
	Inquiries   InquiryAnswerer
	Guard       OutputGuard
	Disclaimers ReplyDecorator
	Transcripts *TranscriptStore
	Metrics     *metrics.ConversationMetrics
	Retry       RetryPolicy
	WindowDays  int
	ClinicName  string
	Now         func() time.Time
	Logger      *logging.Logger
}

// NewEngine creates an Engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Contexts == nil {
		panic("conversation: context store is required")
	}
	if cfg.Extractor == nil {
		panic("conversation: extractor is required")
	}
	if cfg.Scheduler == nil {
		panic("conversation: scheduler is required")
	}
	if cfg.Resolver == nil {
		panic("conversation: resolver is required")
	}
	if cfg.Store == nil {
		panic("conversation: store is required")
	}
	if cfg.Intents == nil {
		panic("conversation: intent classifier is required")
	}
	if cfg.Retry.FieldMaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = "the medical office"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Engine{
		contexts:    cfg.Contexts,
		extractor:   cfg.Extractor,
		scheduler:   cfg.Scheduler,
		resolver:    cfg.Resolver,
		store:       cfg.Store,
		intents:     cfg.Intents,
		inquiries:   cfg.Inquiries,
		guard:       cfg.Guard,
		disclaimers: cfg.Disclaimers,
		transcripts: cfg.Transcripts,
		metrics:     cfg.Metrics,
		retry:       cfg.Retry,
		windowDays:  cfg.WindowDays,
		clinicName:  cfg.ClinicName,
		now:         cfg.Now,
		logger:      cfg.Logger,
		tracer:      otel.Tracer("medoffice.internal.conversation"),
	}
}

// ProcessTurn handles one patient message and returns the agent's reply.
// Internal failures degrade to an apology at the turn boundary; the
// conversation state is left as it was so the patient can retry.
func (e *Engine) ProcessTurn(ctx context.Context, conversationID, message string) (Reply, error) {
	started := e.now()
	ctx, span := e.tracer.Start(ctx, "conversation.ProcessTurn",
		trace.WithAttributes(attribute.String("conversation_id", conversationID)))
	defer span.End()

	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	firstMessage := false
	cctx, err := e.contexts.Load(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, ErrContextNotFound) {
			span.RecordError(err)
			e.logger.Error("context load failed", "conversation_id", conversationID, "error", err)
			e.metrics.ObserveTurn("", "error")
			return Reply{ConversationID: conversationID, Text: promptSystemTrouble(), State: StateInitial}, nil
		}
		cctx = NewContext(conversationID)
		firstMessage = true
	}
	entryState := cctx.State

	// A finished flow starts over on the next message.
	if cctx.State.Terminal() {
		cctx.resetToInitial()
	}

	text := e.dispatch(ctx, cctx, message)
	if e.guard != nil {
		text = e.guard.Review(ctx, text)
	}
	if e.disclaimers != nil {
		text = e.disclaimers.Decorate(ctx, conversationID, text, firstMessage)
	}

	if err := e.contexts.Save(ctx, cctx); err != nil {
		span.RecordError(err)
		e.logger.Error("context save failed", "conversation_id", conversationID, "error", err)
		e.metrics.ObserveTurn(string(entryState), "error")
		return Reply{ConversationID: conversationID, Text: promptSystemTrouble(), State: entryState}, nil
	}

	if err := e.transcripts.RecordTurn(ctx, conversationID, message, text, cctx.State); err != nil {
		// Transcript loss is not worth failing the turn over.
		e.logger.Warn("transcript write failed", "conversation_id", conversationID, "error", err)
	}

	e.metrics.ObserveTurn(string(entryState), "ok")
	e.metrics.ObserveTurnLatency(string(entryState), e.now().Sub(started).Seconds())
	return Reply{ConversationID: conversationID, Text: text, State: cctx.State}, nil
}

func (e *Engine) dispatch(ctx context.Context, cctx *Context, message string) string {
	// Cancel and reschedule requests cut across whatever flow is running,
	// unless the machine is already in the matching flow. INITIAL routes
	// through the intent classifier, and the booking confirmation step keeps
	// its own yes/no/cancel handling.
	if cctx.State != StateInitial && cctx.State != StateConfirming {
		if wantsCancel(message) && !cctx.State.inCancelFlow() {
			return e.startCancel(ctx, cctx, message)
		}
		if wantsReschedule(message) && !cctx.State.inRescheduleFlow() {
			return e.startReschedule(ctx, cctx, message)
		}
	}

	switch cctx.State {
	case StateInitial:
		return e.handleInitial(ctx, cctx, message)
	case StateCollectingName:
		return e.handleCollectingName(ctx, cctx, message)
	case StateCollectingPhone:
		return e.handleCollectingPhone(ctx, cctx, message)
	case StateCollectingBirthdate:
		return e.handleCollectingBirthdate(ctx, cctx, message)
	case StateCollectingReason:
		return e.handleCollectingReason(ctx, cctx, message)
	case StateSuggestingSpecialty:
		return e.handleSuggestingSpecialty(ctx, cctx, message)
	case StateCollectingDateTime:
		return e.handleCollectingDateTime(ctx, cctx, message)
	case StateCollectingEmail:
		return e.handleCollectingEmail(ctx, cctx, message)
	case StateConfirming:
		return e.handleConfirming(ctx, cctx, message)
	case StateCancelCollectingID:
		return e.handleCancelCollectingID(ctx, cctx, message)
	case StateCancelConfirming:
		return e.handleCancelConfirming(ctx, cctx, message)
	case StateRescheduleCollectingID:
		return e.handleRescheduleCollectingID(ctx, cctx, message)
	case StateRescheduleDateTime:
		return e.handleRescheduleDateTime(ctx, cctx, message)
	case StateRescheduleConfirming:
		return e.handleRescheduleConfirming(ctx, cctx, message)
	default:
		e.logger.Warn("unknown state, resetting", "state", cctx.State)
		cctx.resetToInitial()
		return promptStartOver()
	}
}

func (e *Engine) handleInitial(ctx context.Context, cctx *Context, message string) string {
	intent := e.intents.Classify(ctx, message)
	e.metrics.ObserveIntent(string(intent))

	switch intent {
	case IntentBook:
		cctx.State = StateCollectingName
		// The opening message often carries the name already ("Hi, I'm John
		// Smith, I'd like to book..."). Only the pattern tier is trusted
		// here; the heuristic would swallow the booking request itself.
		if res, ok := e.extractor.Name(ctx, message); ok && res.Tier == extract.TierPattern {
			e.metrics.ObserveExtraction(fieldName, string(res.Tier))
			cctx.Name = res.Value
			cctx.State = StateCollectingPhone
			return promptAskPhone(cctx.Name)
		}
		return promptAskName()
	case IntentCancel:
		return e.startCancel(ctx, cctx, message)
	case IntentReschedule:
		return e.startReschedule(ctx, cctx, message)
	case IntentInquiry:
		if e.inquiries != nil {
			return e.inquiries.Answer(ctx, message)
		}
		return promptGreeting(e.clinicName)
	default:
		return promptGreeting(e.clinicName)
	}
}

func (e *Engine) handleCollectingName(ctx context.Context, cctx *Context, message string) string {
	if res, ok := e.extractor.Name(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldName, string(res.Tier))
		cctx.Name = res.Value
		cctx.clearAttempts(fieldName)
		cctx.State = StateCollectingPhone
		return promptAskPhone(cctx.Name)
	}
	if cctx.attempt(fieldName) >= e.retry.maxFor(fieldName) {
		e.fillPlaceholder(cctx, fieldName)
		cctx.State = StateCollectingPhone
		return "That's alright, we can sort out the name at the front desk. " + promptAskPhone("there")
	}
	return promptRetryName()
}

func (e *Engine) handleCollectingPhone(ctx context.Context, cctx *Context, message string) string {
	if res, ok := e.extractor.Phone(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldPhone, string(res.Tier))
		cctx.Phone = res.Value
		cctx.clearAttempts(fieldPhone)
		cctx.State = StateCollectingBirthdate
		return promptAskBirthdate()
	}
	if cctx.attempt(fieldPhone) >= e.retry.maxFor(fieldPhone) {
		e.fillPlaceholder(cctx, fieldPhone)
		cctx.State = StateCollectingBirthdate
		return "We can update your number later. " + promptAskBirthdate()
	}
	return promptRetryPhone()
}

func (e *Engine) handleCollectingBirthdate(ctx context.Context, cctx *Context, message string) string {
	if res, ok := e.extractor.Birthdate(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldBirthdate, string(res.Tier))
		cctx.Birthdate = res.Value
		cctx.clearAttempts(fieldBirthdate)
		cctx.State = StateCollectingReason
		return promptAskReason()
	}
	if cctx.attempt(fieldBirthdate) >= e.retry.maxFor(fieldBirthdate) {
		e.fillPlaceholder(cctx, fieldBirthdate)
		cctx.State = StateCollectingReason
		return "We'll confirm your date of birth at check-in. " + promptAskReason()
	}
	return promptRetryBirthdate()
}

func (e *Engine) handleCollectingReason(ctx context.Context, cctx *Context, message string) string {
	if res, ok := e.extractor.Reason(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldReason, string(res.Tier))
		cctx.Reason = res.Value
		cctx.clearAttempts(fieldReason)
		cctx.Specialty = extract.SpecialtyForReason(cctx.Reason)
		cctx.State = StateSuggestingSpecialty
		return promptSuggestSpecialty(cctx.Reason, cctx.Specialty)
	}
	if cctx.attempt(fieldReason) >= e.retry.maxFor(fieldReason) {
		e.fillPlaceholder(cctx, fieldReason)
		cctx.Specialty = extract.DefaultSpecialty
		cctx.State = StateSuggestingSpecialty
		return promptSuggestSpecialty(cctx.Reason, cctx.Specialty)
	}
	return promptRetryReason()
}

func (e *Engine) handleSuggestingSpecialty(ctx context.Context, cctx *Context, message string) string {
	// The reply counts as agreement unless it names another specialty or
	// carries a disagreement marker.
	named := extract.MentionedSpecialty(message)
	switch {
	case named != "":
		cctx.Specialty = named
	case disagreesWithSuggestion(message):
		if res, ok := e.extractor.Specialty(ctx, message); ok {
			e.metrics.ObserveExtraction(fieldSpecialty, string(res.Tier))
			cctx.Specialty = res.Value
			break
		}
		if cctx.attempt(fieldSpecialty) < e.retry.maxFor(fieldSpecialty) {
			return promptRetrySpecialty(cctx.Specialty)
		}
		// Out of attempts; go with the suggestion after all.
	}
	cctx.clearAttempts(fieldSpecialty)
	return e.assignDoctor(ctx, cctx)
}

// assignDoctor picks a doctor for the chosen specialty, falling back to a
// general practitioner and then to anyone on staff.
func (e *Engine) assignDoctor(ctx context.Context, cctx *Context) string {
	doctors, err := e.store.FindDoctorsBySpecialty(ctx, cctx.Specialty)
	if err != nil {
		e.logger.Error("doctor lookup failed", "specialty", cctx.Specialty, "error", err)
		return promptSystemTrouble()
	}
	if len(doctors) > 0 {
		cctx.DoctorID = doctors[0].ID
		cctx.Doctor = doctors[0].Name
		cctx.State = StateCollectingDateTime
		return promptAskDateTime(cctx.Doctor)
	}

	wanted := cctx.Specialty
	fallback, err := e.store.FindDoctorsBySpecialty(ctx, extract.DefaultSpecialty)
	if err != nil {
		e.logger.Error("doctor lookup failed", "specialty", extract.DefaultSpecialty, "error", err)
		return promptSystemTrouble()
	}
	if len(fallback) == 0 {
		all, err := e.store.ListDoctors(ctx)
		if err != nil || len(all) == 0 {
			e.logger.Error("no doctors available", "error", err)
			return promptSystemTrouble()
		}
		fallback = all
	}
	cctx.Specialty = fallback[0].Specialty
	cctx.DoctorID = fallback[0].ID
	cctx.Doctor = fallback[0].Name
	cctx.State = StateCollectingDateTime
	return promptNoDoctorForSpecialty(wanted, cctx.Doctor)
}

func (e *Engine) handleCollectingDateTime(ctx context.Context, cctx *Context, message string) string {
	res, ok := e.extractor.DateTime(ctx, message)
	if ok {
		e.metrics.ObserveExtraction(fieldDateTime, string(res.Tier))
	}
	if res.Date != "" {
		cctx.Date = res.Date
	}
	if res.Time != "" {
		cctx.Time = res.Time
	}

	if cctx.Date != "" && cctx.Time != "" {
		free, err := e.resolver.IsFree(ctx, cctx.DoctorID, cctx.Date, cctx.Time)
		if err != nil {
			e.logger.Error("availability check failed", "error", err)
			return promptSystemTrouble()
		}
		if free {
			cctx.clearAttempts(fieldDateTime)
			cctx.State = StateCollectingEmail
			return promptAskEmail()
		}
		cctx.Time = ""
		return e.offerAlternatives(ctx, cctx)
	}

	if cctx.Date != "" {
		// Have a date, still need a time; list what's open.
		slots, err := e.resolver.SlotsFor(ctx, cctx.DoctorID, cctx.Date)
		if err != nil {
			e.logger.Error("availability check failed", "error", err)
			return promptSystemTrouble()
		}
		date := cctx.Date
		if len(slots) == 0 {
			cctx.Date = ""
		}
		return promptAskTimeForDate(date, slots)
	}

	if cctx.attempt(fieldDateTime) >= e.retry.maxFor(fieldDateTime) {
		return e.fallbackToEarliestSlot(ctx, cctx)
	}
	return promptRetryDateTime()
}

func (e *Engine) offerAlternatives(ctx context.Context, cctx *Context) string {
	slots, err := e.resolver.SlotsFor(ctx, cctx.DoctorID, cctx.Date)
	if err != nil {
		e.logger.Error("availability check failed", "error", err)
		return promptSystemTrouble()
	}
	if len(slots) == 0 {
		date := cctx.Date
		cctx.Date = ""
		if cctx.attempt(fieldDateTime) >= e.retry.maxFor(fieldDateTime) {
			return e.fallbackToEarliestSlot(ctx, cctx)
		}
		return promptSlotTaken(date, nil)
	}
	return promptSlotTaken(cctx.Date, slots)
}

// fallbackToEarliestSlot fills the date/time with the first opening in the
// search window after the patient couldn't land on one.
func (e *Engine) fallbackToEarliestSlot(ctx context.Context, cctx *Context) string {
	date, clock, ok, err := e.resolver.EarliestSlot(ctx, cctx.DoctorID, e.now(), e.windowDays)
	if err != nil {
		e.logger.Error("earliest slot search failed", "error", err)
		return promptSystemTrouble()
	}
	if !ok {
		// Nothing bookable at all; bail out of the flow.
		doctor := cctx.Doctor
		cctx.resetToInitial()
		return "I'm sorry, " + doctor + " has no openings in the next week. Please call the office and we'll find you a time. Is there anything else I can help with?"
	}
	cctx.Date = date
	cctx.Time = clock
	cctx.markPlaceholder(fieldDateTime)
	e.metrics.ObservePlaceholder(fieldDateTime)
	cctx.clearAttempts(fieldDateTime)
	cctx.State = StateCollectingEmail
	return promptDateTimePlaceholder(date, clock)
}

func (e *Engine) handleCollectingEmail(ctx context.Context, cctx *Context, message string) string {
	if res, ok := e.extractor.Email(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldEmail, string(res.Tier))
		cctx.Email = res.Value
		cctx.clearAttempts(fieldEmail)
		cctx.State = StateConfirming
		return promptConfirm(cctx)
	}
	if cctx.attempt(fieldEmail) >= e.retry.maxFor(fieldEmail) {
		e.fillPlaceholder(cctx, fieldEmail)
		cctx.State = StateConfirming
		return "We can add your email later. " + promptConfirm(cctx)
	}
	return promptRetryEmail()
}

func (e *Engine) handleConfirming(ctx context.Context, cctx *Context, message string) string {
	switch {
	case isAffirmative(message):
		return e.book(ctx, cctx)
	case wantsCancel(message):
		cctx.resetToInitial()
		return promptBookingAborted()
	case isNegative(message):
		// Keep identity fields, re-collect the slot.
		cctx.Date = ""
		cctx.Time = ""
		cctx.clearAttempts(fieldConfirm)
		cctx.State = StateCollectingDateTime
		return "Okay, let's pick a different time. " + promptAskDateTime(cctx.Doctor)
	}
	if cctx.attempt(fieldConfirm) >= e.retry.maxFor(fieldConfirm) {
		cctx.resetToInitial()
		return promptStartOver()
	}
	return promptRetryConfirm()
}

func (e *Engine) book(ctx context.Context, cctx *Context) string {
	receipt, patientID, err := e.scheduler.Book(ctx, scheduling.BookingRequest{
		PatientID: cctx.PendingPatientID,
		Name:      cctx.Name,
		Phone:     cctx.Phone,
		Birthdate: cctx.Birthdate,
		Email:     cctx.Email,
		Reason:    cctx.Reason,
		DoctorID:  cctx.DoctorID,
		Date:      cctx.Date,
		Time:      cctx.Time,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrSlotUnavailable) {
			// Someone grabbed the slot between confirmation and insert.
			cctx.Time = ""
			cctx.State = StateCollectingDateTime
			return e.offerAlternatives(ctx, cctx)
		}
		e.logger.Error("booking failed", "conversation_id", cctx.ID, "error", err)
		return promptSystemTrouble()
	}
	cctx.PendingPatientID = patientID
	cctx.State = StateBookingConfirmed
	e.metrics.ObserveTransaction("booking")
	return promptBookingConfirmed(receipt)
}

func (e *Engine) startCancel(ctx context.Context, cctx *Context, message string) string {
	// Partial fields from an abandoned flow are discarded, never merged into
	// this one.
	cctx.resetToInitial()
	cctx.State = StateCancelCollectingID
	if res, ok := e.extractor.AppointmentID(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldApptID, string(res.Tier))
		return e.lookupForCancel(ctx, cctx, res.Value)
	}
	return promptAskAppointmentID("cancel your appointment")
}

func (e *Engine) handleCancelCollectingID(ctx context.Context, cctx *Context, message string) string {
	res, ok := e.extractor.AppointmentID(ctx, message)
	if !ok {
		if cctx.attempt(fieldApptID) >= e.retry.maxFor(fieldApptID) {
			cctx.resetToInitial()
			return promptStartOver()
		}
		return promptRetryAppointmentID()
	}
	e.metrics.ObserveExtraction(fieldApptID, string(res.Tier))
	return e.lookupForCancel(ctx, cctx, res.Value)
}

func (e *Engine) lookupForCancel(ctx context.Context, cctx *Context, appointmentID string) string {
	receipt, err := e.scheduler.Lookup(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, scheduling.ErrAppointmentNotFound) {
			if cctx.attempt(fieldApptID) >= e.retry.maxFor(fieldApptID) {
				cctx.resetToInitial()
				return promptStartOver()
			}
			return promptAppointmentNotFound()
		}
		e.logger.Error("appointment lookup failed", "error", err)
		return promptSystemTrouble()
	}
	cctx.clearAttempts(fieldApptID)
	cctx.AppointmentID = receipt.AppointmentID
	cctx.State = StateCancelConfirming
	return promptConfirmCancel(receipt)
}

func (e *Engine) handleCancelConfirming(ctx context.Context, cctx *Context, message string) string {
	switch {
	case isAffirmative(message):
		receipt, err := e.scheduler.Cancel(ctx, cctx.AppointmentID)
		if err != nil {
			if errors.Is(err, scheduling.ErrAppointmentNotFound) {
				cctx.resetToInitial()
				return promptAppointmentNotFound()
			}
			e.logger.Error("cancellation failed", "appointment_id", cctx.AppointmentID, "error", err)
			return promptSystemTrouble()
		}
		cctx.State = StateCancellationConfirmed
		e.metrics.ObserveTransaction("cancellation")
		return promptCancelled(receipt)
	case isNegative(message):
		cctx.resetToInitial()
		return promptKeptAppointment()
	}
	if cctx.attempt(fieldConfirm) >= e.retry.maxFor(fieldConfirm) {
		cctx.resetToInitial()
		return promptStartOver()
	}
	return promptRetryConfirm()
}

func (e *Engine) startReschedule(ctx context.Context, cctx *Context, message string) string {
	// Same discard rule as startCancel.
	cctx.resetToInitial()
	cctx.State = StateRescheduleCollectingID
	if res, ok := e.extractor.AppointmentID(ctx, message); ok {
		e.metrics.ObserveExtraction(fieldApptID, string(res.Tier))
		return e.lookupForReschedule(ctx, cctx, res.Value)
	}
	return promptAskAppointmentID("reschedule your appointment")
}

func (e *Engine) handleRescheduleCollectingID(ctx context.Context, cctx *Context, message string) string {
	res, ok := e.extractor.AppointmentID(ctx, message)
	if !ok {
		if cctx.attempt(fieldApptID) >= e.retry.maxFor(fieldApptID) {
			cctx.resetToInitial()
			return promptStartOver()
		}
		return promptRetryAppointmentID()
	}
	e.metrics.ObserveExtraction(fieldApptID, string(res.Tier))
	return e.lookupForReschedule(ctx, cctx, res.Value)
}

func (e *Engine) lookupForReschedule(ctx context.Context, cctx *Context, appointmentID string) string {
	receipt, err := e.scheduler.Lookup(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, scheduling.ErrAppointmentNotFound) {
			if cctx.attempt(fieldApptID) >= e.retry.maxFor(fieldApptID) {
				cctx.resetToInitial()
				return promptStartOver()
			}
			return promptAppointmentNotFound()
		}
		e.logger.Error("appointment lookup failed", "error", err)
		return promptSystemTrouble()
	}
	cctx.clearAttempts(fieldApptID)
	cctx.AppointmentID = receipt.AppointmentID
	cctx.DoctorID = receipt.DoctorID
	cctx.Doctor = receipt.DoctorName
	cctx.State = StateRescheduleDateTime
	return promptAskNewDateTime(receipt)
}

func (e *Engine) handleRescheduleDateTime(ctx context.Context, cctx *Context, message string) string {
	res, ok := e.extractor.DateTime(ctx, message)
	if ok {
		e.metrics.ObserveExtraction(fieldDateTime, string(res.Tier))
	}
	if res.Date != "" {
		cctx.NewDate = res.Date
	}
	if res.Time != "" {
		cctx.NewTime = res.Time
	}

	if cctx.NewDate != "" && cctx.NewTime != "" {
		free, err := e.resolver.IsFree(ctx, cctx.DoctorID, cctx.NewDate, cctx.NewTime)
		if err != nil {
			e.logger.Error("availability check failed", "error", err)
			return promptSystemTrouble()
		}
		if !free {
			slots, err := e.resolver.SlotsFor(ctx, cctx.DoctorID, cctx.NewDate)
			if err != nil {
				e.logger.Error("availability check failed", "error", err)
				return promptSystemTrouble()
			}
			date := cctx.NewDate
			cctx.NewTime = ""
			if len(slots) == 0 {
				cctx.NewDate = ""
			}
			return promptSlotTaken(date, slots)
		}
		cctx.clearAttempts(fieldDateTime)
		cctx.State = StateRescheduleConfirming
		return promptConfirmReschedule(cctx)
	}

	if cctx.NewDate != "" {
		slots, err := e.resolver.SlotsFor(ctx, cctx.DoctorID, cctx.NewDate)
		if err != nil {
			e.logger.Error("availability check failed", "error", err)
			return promptSystemTrouble()
		}
		date := cctx.NewDate
		if len(slots) == 0 {
			cctx.NewDate = ""
		}
		return promptAskTimeForDate(date, slots)
	}

	if cctx.attempt(fieldDateTime) >= e.retry.maxFor(fieldDateTime) {
		cctx.resetToInitial()
		return promptStartOver()
	}
	return promptRetryDateTime()
}

func (e *Engine) handleRescheduleConfirming(ctx context.Context, cctx *Context, message string) string {
	switch {
	case isAffirmative(message):
		before, after, err := e.scheduler.Reschedule(ctx, cctx.AppointmentID, cctx.NewDate, cctx.NewTime)
		if err != nil {
			switch {
			case errors.Is(err, scheduling.ErrAppointmentNotFound):
				cctx.resetToInitial()
				return promptAppointmentNotFound()
			case errors.Is(err, scheduling.ErrSlotUnavailable):
				cctx.NewTime = ""
				cctx.State = StateRescheduleDateTime
				return promptRetryDateTime()
			}
			e.logger.Error("reschedule failed", "appointment_id", cctx.AppointmentID, "error", err)
			return promptSystemTrouble()
		}
		cctx.State = StateRescheduleConfirmed
		e.metrics.ObserveTransaction("reschedule")
		return promptRescheduled(before, after)
	case isNegative(message):
		cctx.resetToInitial()
		return promptKeptAppointment()
	}
	if cctx.attempt(fieldConfirm) >= e.retry.maxFor(fieldConfirm) {
		cctx.resetToInitial()
		return promptStartOver()
	}
	return promptRetryConfirm()
}

func (e *Engine) fillPlaceholder(cctx *Context, field string) {
	value, ok := placeholderValues[field]
	if !ok {
		return
	}
	switch field {
	case fieldName:
		cctx.Name = value
	case fieldPhone:
		cctx.Phone = value
	case fieldBirthdate:
		cctx.Birthdate = value
	case fieldReason:
		cctx.Reason = value
	case fieldEmail:
		cctx.Email = value
	}
	cctx.markPlaceholder(field)
	cctx.clearAttempts(field)
	e.metrics.ObservePlaceholder(field)
	e.logger.Info("placeholder filled", "conversation_id", cctx.ID, "field", field)
}
