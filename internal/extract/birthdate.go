package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
)

var (
	isoDateRE       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRE     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayYearRE  = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthYearRE  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+(\d{4})\b`)
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// maxPatientAge bounds plausible birthdates.
const maxPatientAge = 120

// Birthdate extracts a date of birth and normalizes it to ISO format.
// Candidates implying an age outside [0, 120], or in the future, are
// rejected in every tier.
func (e *Extractor) Birthdate(ctx context.Context, utterance string) (Result, bool) {
	if date, ok := e.birthdateFromPatterns(utterance); ok {
		return Result{Value: date, Tier: TierPattern}, true
	}

	if value, ok := e.nluExtract(ctx, "birthdate",
		"Extract the patient's date of birth from the message. Answer in YYYY-MM-DD format.",
		utterance, e.validateBirthdateAnswer); ok {
		return Result{Value: value, Tier: TierNLU}, true
	}

	return Result{}, false
}

func (e *Extractor) birthdateFromPatterns(utterance string) (string, bool) {
	if m := isoDateRE.FindStringSubmatch(utterance); m != nil {
		return e.checkBirthdate(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]))
	}
	if m := slashDateRE.FindStringSubmatch(utterance); m != nil {
		// US month/day/year order.
		return e.checkBirthdate(atoi(m[3]), time.Month(atoi(m[1])), atoi(m[2]))
	}
	if m := monthDayYearRE.FindStringSubmatch(utterance); m != nil {
		return e.checkBirthdate(atoi(m[3]), monthFromName(m[1]), atoi(m[2]))
	}
	if m := dayMonthYearRE.FindStringSubmatch(utterance); m != nil {
		return e.checkBirthdate(atoi(m[3]), monthFromName(m[2]), atoi(m[1]))
	}
	return "", false
}

func (e *Extractor) validateBirthdateAnswer(answer string) (string, bool) {
	return e.birthdateFromPatterns(answer)
}

// checkBirthdate validates a calendar date and the age it implies.
func (e *Extractor) checkBirthdate(year int, month time.Month, day int) (string, bool) {
	if month < time.January || month > time.December {
		return "", false
	}
	born := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); reject those.
	if born.Year() != year || born.Month() != month || born.Day() != day {
		return "", false
	}

	now := e.now()
	if born.After(now) {
		return "", false
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
	age := model.Age(iso, now)
	if age < 0 || age > maxPatientAge {
		return "", false
	}
	return iso, true
}

func monthFromName(name string) time.Month {
	key := strings.ToLower(name)
	if len(key) > 3 {
		key = key[:3]
	}
	return monthNumbers[key]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
