package extract

import (
	"context"
	"regexp"
	"strings"
)

// DefaultSpecialty is suggested when no reason keyword matches.
const DefaultSpecialty = "General Practitioner"

// reasonSpecialties maps symptom keywords to the specialty to suggest.
// Order matters: earlier entries win when several keywords appear.
var reasonSpecialties = []struct {
	keywords  []string
	specialty string
}{
	{[]string{"headache", "migraine"}, "Neurologist"},
	{[]string{"chest pain", "heart"}, "Cardiologist"},
	{[]string{"rash", "skin"}, "Dermatologist"},
	{[]string{"stomach", "digestion"}, "Gastroenterologist"},
	{[]string{"joint pain", "bone", "fracture"}, "Orthopedic"},
	{[]string{"breathing", "cough"}, "Pulmonologist"},
	{[]string{"vision", "eye"}, "Ophthalmologist"},
	{[]string{"ear", "throat", "nose"}, "ENT Specialist"},
	{[]string{"mental health", "depression", "anxiety"}, "Psychiatrist"},
	{[]string{"women's health", "pregnancy"}, "Gynecologist"},
	{[]string{"child"}, "Pediatrician"},
	{[]string{"allergy"}, "Allergist"},
	{[]string{"diabetes", "hormone"}, "Endocrinologist"},
	{[]string{"kidney"}, "Nephrologist"},
	{[]string{"urinary"}, "Urologist"},
	{[]string{"cancer"}, "Oncologist"},
}

// knownSpecialties enables explicit specialty requests to override the
// keyword suggestion.
var knownSpecialties = []string{
	"General Practitioner", "Neurologist", "Cardiologist", "Dermatologist",
	"Gastroenterologist", "Orthopedic", "Pulmonologist", "Ophthalmologist",
	"ENT Specialist", "Psychiatrist", "Gynecologist", "Pediatrician",
	"Allergist", "Endocrinologist", "Nephrologist", "Urologist", "Oncologist",
}

var gpWordRE = regexp.MustCompile(`\bgp\b`)

// SpecialtyForReason suggests a specialty for a visit reason.
func SpecialtyForReason(reason string) string {
	lower := strings.ToLower(reason)
	for _, entry := range reasonSpecialties {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.specialty
			}
		}
	}
	return DefaultSpecialty
}

// Specialty extracts the specialty a patient asked to see. The pattern tier
// matches known names and informal aliases; the NLU tier maps free-text
// descriptions ("someone for my sinuses") onto the known list and is
// re-validated against it.
func (e *Extractor) Specialty(ctx context.Context, utterance string) (Result, bool) {
	if named := MentionedSpecialty(utterance); named != "" {
		return Result{Value: named, Tier: TierPattern}, true
	}
	value, ok := e.nluExtract(ctx, "specialty",
		"Extract the medical specialty this patient wants to see, choosing exactly one of: "+strings.Join(knownSpecialties, ", ")+".",
		utterance, validateSpecialty)
	if !ok {
		return Result{}, false
	}
	return Result{Value: value, Tier: TierNLU}, true
}

func validateSpecialty(answer string) (string, bool) {
	if named := MentionedSpecialty(answer); named != "" {
		return named, true
	}
	return "", false
}

// MentionedSpecialty returns a specialty the patient named explicitly, or ""
// if the utterance names none.
func MentionedSpecialty(utterance string) string {
	lower := strings.ToLower(utterance)
	for _, specialty := range knownSpecialties {
		if strings.Contains(lower, strings.ToLower(specialty)) {
			return specialty
		}
	}
	// Common informal aliases.
	switch {
	case strings.Contains(lower, "ent doctor"), strings.Contains(lower, "ent specialist"):
		return "ENT Specialist"
	case gpWordRE.MatchString(lower), strings.Contains(lower, "general doctor"), strings.Contains(lower, "family doctor"):
		return "General Practitioner"
	case strings.Contains(lower, "heart doctor"):
		return "Cardiologist"
	case strings.Contains(lower, "skin doctor"):
		return "Dermatologist"
	case strings.Contains(lower, "eye doctor"):
		return "Ophthalmologist"
	case strings.Contains(lower, "kids doctor"), strings.Contains(lower, "children's doctor"):
		return "Pediatrician"
	}
	return ""
}
