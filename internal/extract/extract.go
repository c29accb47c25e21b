// Package extract implements tiered slot extraction from patient utterances.
// Each field tries a deterministic pattern tier first, then an NLU fallback
// constrained to value-or-Unknown, then (for names only) a permissive
// heuristic. NLU output is always re-validated with the same syntactic rules
// as the pattern tier before it is trusted.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

// Tier identifies which extraction tier produced a value.
type Tier string

const (
	TierPattern   Tier = "pattern"
	TierNLU       Tier = "nlu"
	TierHeuristic Tier = "heuristic"
)

// Result is a successfully extracted field value.
type Result struct {
	Value string
	Tier  Tier
}

// nluUnknown is the sentinel the NLU tier must return when the field is
// absent from the utterance.
const nluUnknown = "Unknown"

// TimePolicy controls ambiguous clock-time interpretation.
type TimePolicy struct {
	// AfternoonBias maps bare hours 1-11 without a meridiem onto the
	// afternoon and evening (13:00-23:00). Patients saying "at 3" almost
	// always mean 3 PM.
	AfternoonBias bool
}

// Extractor runs tiered extraction for every bookable field. The zero LLM
// client disables the NLU tier; pattern and heuristic tiers still run.
type Extractor struct {
	llm    nlu.LLMClient
	model  string
	policy TimePolicy
	now    func() time.Time
	logger *logging.Logger
}

// Config configures an Extractor.
type Config struct {
	LLM    nlu.LLMClient
	Model  string
	Policy TimePolicy
	Now    func() time.Time
	Logger *logging.Logger
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Extractor{
		llm:    cfg.LLM,
		model:  cfg.Model,
		policy: cfg.Policy,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
}

// nluExtract asks the LLM for a single field value. The instruction tells the
// model what to pull out; validate re-checks the answer syntactically and
// returns the normalized value. A sentinel, empty, or invalid answer counts
// as a miss.
func (e *Extractor) nluExtract(ctx context.Context, field, instruction, utterance string, validate func(string) (string, bool)) (string, bool) {
	if e.llm == nil {
		return "", false
	}

	prompt := fmt.Sprintf(
		"%s\nIf the message does not contain it, respond with exactly %q.\nRespond with only the value, no explanation.\n\nMessage: %s",
		instruction, nluUnknown, utterance)

	resp, err := e.llm.Complete(ctx, nlu.LLMRequest{
		Model:     e.model,
		Messages:  []nlu.ChatMessage{{Role: nlu.ChatRoleUser, Content: prompt}},
		MaxTokens: 40,
	})
	if err != nil {
		e.logger.Warn("nlu extraction failed", "field", field, "error", err)
		return "", false
	}

	answer := strings.TrimSpace(strings.Trim(resp.Text, `"'`))
	if answer == "" || strings.EqualFold(answer, nluUnknown) {
		return "", false
	}

	value, ok := validate(answer)
	if !ok {
		e.logger.Debug("nlu answer failed re-validation", "field", field, "answer", answer)
		return "", false
	}
	return value, ok
}
