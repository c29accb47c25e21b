package compliance

import (
	"context"
	"regexp"
	"strings"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

// guardRule is a compiled pattern for phrasing the assistant must not send.
type guardRule struct {
	re     *regexp.Regexp
	reason string
}

var guardRules = []guardRule{
	// The assistant schedules; it must never diagnose or prescribe.
	{regexp.MustCompile(`(?i)\byou (probably |likely |definitely )?have\b.{0,40}\b(cancer|diabetes|infection|disease|disorder|fracture)\b`), "diagnosis"},
	{regexp.MustCompile(`(?i)\b(i|we) diagnos\w+`), "diagnosis"},
	{regexp.MustCompile(`(?i)\byou should (take|stop taking|increase|decrease)\b.{0,40}\b(medication|medicine|dose|mg|pills?|antibiotics?)\b`), "medication_advice"},
	{regexp.MustCompile(`(?i)\bno need to (see|visit) a doctor\b`), "discourage_care"},
	{regexp.MustCompile(`(?i)\b(guarantee[ds]?|promise[ds]?)\b.{0,40}\b(cure[ds]?|recovery|results)\b`), "outcome_guarantee"},
	{regexp.MustCompile(`(?i)\bnothing to worry about\b`), "reassurance"},
	{regexp.MustCompile(`(?i)\bit'?s (not serious|harmless|benign)\b`), "reassurance"},
}

const guardRewritePrompt = `Rewrite this medical office assistant reply so it does not give a diagnosis, medication advice, a promise about outcomes, or discourage the patient from seeing a doctor. Keep the scheduling information intact. Reply with only the rewritten text.

Reply: %s`

// Guard reviews outgoing replies for phrasing an automated scheduler must
// not use, rewriting them via the LLM when possible. Review never fails:
// when the rewrite is unavailable the original reply passes through and the
// incident is logged for staff.
type Guard struct {
	llm    nlu.LLMClient
	model  string
	audit  *AuditService
	logger *logging.Logger
}

// NewGuard creates a Guard. LLM and audit are optional.
func NewGuard(llm nlu.LLMClient, model string, audit *AuditService, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Guard{llm: llm, model: model, audit: audit, logger: logger}
}

// Review checks a reply and returns the text to send.
func (g *Guard) Review(ctx context.Context, reply string) string {
	reasons := scanReply(reply)
	if len(reasons) == 0 {
		return reply
	}

	g.logger.Warn("reply flagged by compliance guard", "reasons", strings.Join(reasons, ","))

	rewritten, ok := g.rewrite(ctx, reply)
	if !ok {
		// Pass through rather than eat the reply; staff review the log.
		if g.audit != nil {
			_ = g.audit.LogResponseModified(ctx, "", reply, reply, "flagged, rewrite unavailable: "+strings.Join(reasons, ","))
		}
		return reply
	}

	if g.audit != nil {
		_ = g.audit.LogResponseModified(ctx, "", reply, rewritten, strings.Join(reasons, ","))
	}
	return rewritten
}

func (g *Guard) rewrite(ctx context.Context, reply string) (string, bool) {
	if g.llm == nil {
		return "", false
	}
	prompt := strings.Replace(guardRewritePrompt, "%s", reply, 1)
	resp, err := g.llm.Complete(ctx, nlu.LLMRequest{
		Model:     g.model,
		Messages:  []nlu.ChatMessage{{Role: nlu.ChatRoleUser, Content: prompt}},
		MaxTokens: 400,
	})
	if err != nil {
		g.logger.Warn("compliance rewrite failed", "error", err)
		return "", false
	}
	rewritten := strings.TrimSpace(resp.Text)
	if rewritten == "" {
		return "", false
	}
	// The rewrite must itself be clean.
	if len(scanReply(rewritten)) > 0 {
		return "", false
	}
	return rewritten, true
}

func scanReply(reply string) []string {
	if strings.TrimSpace(reply) == "" {
		return nil
	}
	var reasons []string
	for _, rule := range guardRules {
		if rule.re.MatchString(reply) {
			reasons = append(reasons, rule.reason)
		}
	}
	return reasons
}
