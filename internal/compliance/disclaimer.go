package compliance

import (
	"context"
	"fmt"
	"strings"
)

// DisclaimerLevel represents the verbosity of the disclaimer.
type DisclaimerLevel string

const (
	// DisclaimerShort is the shortest disclaimer.
	DisclaimerShort DisclaimerLevel = "short"
	// DisclaimerMedium is a moderate disclaimer.
	DisclaimerMedium DisclaimerLevel = "medium"
	// DisclaimerFull is the most comprehensive disclaimer.
	DisclaimerFull DisclaimerLevel = "full"
)

// Disclaimer templates
const (
	disclaimerShortText = "Auto-assistant. Not medical advice."

	disclaimerMediumText = "This is an automated assistant. For medical advice, please consult your provider."

	disclaimerFullText = "This is an automated scheduling assistant. The information provided is general in nature and not a substitute for professional medical advice. Please consult with a licensed healthcare provider for medical guidance."
)

// DisclaimerConfig configures the disclaimer service.
type DisclaimerConfig struct {
	// Level determines which disclaimer template to use.
	Level DisclaimerLevel
	// Enabled controls whether disclaimers are added.
	Enabled bool
	// FirstMessageOnly adds disclaimer only to the first message in a
	// conversation.
	FirstMessageOnly bool
	// CustomText overrides the default template.
	CustomText string
}

// DefaultDisclaimerConfig returns sensible defaults.
func DefaultDisclaimerConfig() DisclaimerConfig {
	return DisclaimerConfig{
		Level:            DisclaimerMedium,
		Enabled:          true,
		FirstMessageOnly: true,
	}
}

// DisclaimerService handles adding legal disclaimers to messages.
type DisclaimerService struct {
	audit  *AuditService
	config DisclaimerConfig
}

// NewDisclaimerService creates a new disclaimer service.
func NewDisclaimerService(audit *AuditService, config DisclaimerConfig) *DisclaimerService {
	return &DisclaimerService{
		audit:  audit,
		config: config,
	}
}

// GetDisclaimerText returns the appropriate disclaimer text.
func (s *DisclaimerService) GetDisclaimerText() string {
	if s.config.CustomText != "" {
		return s.config.CustomText
	}

	switch s.config.Level {
	case DisclaimerShort:
		return disclaimerShortText
	case DisclaimerFull:
		return disclaimerFullText
	default:
		return disclaimerMediumText
	}
}

// DisclaimerOptions provides context for disclaimer addition.
type DisclaimerOptions struct {
	ConversationID string
	IsFirstMessage bool
}

// AddDisclaimer adds a disclaimer to the message if configured.
func (s *DisclaimerService) AddDisclaimer(ctx context.Context, message string, opts DisclaimerOptions) string {
	if !s.ShouldAddDisclaimer(opts.IsFirstMessage) {
		return message
	}

	disclaimer := s.GetDisclaimerText()

	// Don't add if already present.
	if strings.Contains(message, disclaimer) {
		return message
	}

	result := fmt.Sprintf("%s\n\n%s", strings.TrimSpace(message), disclaimer)

	if s.audit != nil {
		_ = s.audit.LogDisclaimerSent(ctx, opts.ConversationID, string(s.config.Level), disclaimer)
	}

	return result
}

// Decorate implements the conversation engine's reply decorator hook.
func (s *DisclaimerService) Decorate(ctx context.Context, conversationID, reply string, firstMessage bool) string {
	return s.AddDisclaimer(ctx, reply, DisclaimerOptions{
		ConversationID: conversationID,
		IsFirstMessage: firstMessage,
	})
}

// ShouldAddDisclaimer checks if a disclaimer should be added based on config.
func (s *DisclaimerService) ShouldAddDisclaimer(isFirstMessage bool) bool {
	if !s.config.Enabled {
		return false
	}
	if s.config.FirstMessageOnly && !isFirstMessage {
		return false
	}
	return true
}
