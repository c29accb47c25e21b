// Package inquiry answers general office questions: a keyword knowledge base
// first, then an LLM constrained to office-assistant guidelines, then a
// polite apology when both come up empty.
package inquiry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

// knowledgeBase pairs trigger phrases with canned answers. Phrase matching is
// case-insensitive substring, first match wins.
var knowledgeBase = []struct {
	category string
	phrases  []string
	answer   string
}{
	{
		category: "hours",
		phrases:  []string{"what are your hours", "when are you open", "office hours", "opening hours"},
		answer:   "Our clinic is open Monday through Friday from 9:00 AM to 5:00 PM, and on Saturdays from 9:00 AM to 1:00 PM. We are closed on Sundays and major holidays.",
	},
	{
		category: "services",
		phrases:  []string{"what services do you offer", "what do you treat", "what medical services", "what can you help with"},
		answer:   "Our clinic offers primary care services, including annual check-ups, vaccinations, illness treatment, and management of chronic conditions. We also provide specialist referrals and basic laboratory services.",
	},
	{
		category: "location",
		phrases:  []string{"where are you located", "what's your address", "how do i get to your clinic", "directions", "parking"},
		answer:   "Our clinic is located at 123 Medical Drive, Suite 100, in downtown. We are easily accessible by public transportation and have free parking available for patients.",
	},
	{
		category: "insurance",
		phrases:  []string{"do you accept insurance", "what insurance plans", "is my insurance covered", "payment options"},
		answer:   "We accept most major insurance plans, including Medicare and Medicaid. Please bring your insurance card to your appointment so we can verify your coverage. We also offer affordable self-pay options for those without insurance.",
	},
	{
		category: "covid",
		phrases:  []string{"covid protocols", "covid testing", "covid vaccine", "mask requirements", "coronavirus"},
		answer:   "We offer COVID-19 testing and vaccinations. We follow CDC guidelines for safety protocols. Masks are currently optional but recommended for those who are immunocompromised or experiencing respiratory symptoms.",
	},
	{
		category: "doctors",
		phrases:  []string{"who are your doctors", "medical staff", "specialists", "practitioners"},
		answer:   "Our clinic has a team of board-certified physicians specializing in family medicine, internal medicine, and pediatrics. We also have nurse practitioners and physician assistants who work alongside our doctors to provide comprehensive care.",
	},
}

const inquirySystemPrompt = `You are an assistant for a medical office. Provide helpful, accurate, and concise responses to patient inquiries about office services, policies, and general medical information.

Guidelines:
1. Provide accurate information about office services, hours, and policies.
2. For general medical information, give widely accepted information but never a diagnosis.
3. If asked about emergencies, always advise calling 911 or going to the nearest emergency room.
4. Keep responses friendly, professional, and concise.
5. Do not provide information on prescription drugs or treatment recommendations.
6. If unsure, say so and suggest the patient speak with a healthcare provider.`

const apologyAnswer = "I'm having trouble finding information about that. Please try asking in a different way or contact our office directly for more information."

// Service answers office inquiries.
type Service struct {
	llm    nlu.LLMClient
	model  string
	logger *logging.Logger
	tracer trace.Tracer
}

// NewService creates an inquiry service. A nil LLM client limits answers to
// the knowledge base.
func NewService(llm nlu.LLMClient, model string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		llm:    llm,
		model:  model,
		logger: logger,
		tracer: otel.Tracer("medoffice.internal.inquiry"),
	}
}

// Answer responds to a question. It never fails: LLM errors degrade to an
// apology the patient can act on.
func (s *Service) Answer(ctx context.Context, question string) string {
	ctx, span := s.tracer.Start(ctx, "inquiry.Answer")
	defer span.End()

	if answer, category, ok := knowledgeBaseAnswer(question); ok {
		s.logger.Debug("knowledge base hit", "category", category)
		return answer
	}

	if s.llm == nil {
		return apologyAnswer
	}

	resp, err := s.llm.Complete(ctx, nlu.LLMRequest{
		Model:       s.model,
		System:      []string{inquirySystemPrompt},
		Messages:    []nlu.ChatMessage{{Role: nlu.ChatRoleUser, Content: question}},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("inquiry llm failed", "error", err)
		return apologyAnswer
	}

	answer := strings.TrimSpace(resp.Text)
	if answer == "" {
		return apologyAnswer
	}
	return answer
}

func knowledgeBaseAnswer(question string) (answer, category string, ok bool) {
	lower := strings.ToLower(question)
	for _, entry := range knowledgeBase {
		for _, phrase := range entry.phrases {
			if strings.Contains(lower, phrase) {
				return entry.answer, entry.category, true
			}
		}
	}
	return "", "", false
}
