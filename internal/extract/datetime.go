package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wolfman30/medoffice-ai-agent/internal/model"
)

// DateTimeResult carries the extracted appointment date and clock time.
// Either part may be empty when the patient only gave one of them; Complete
// reports whether both are present.
type DateTimeResult struct {
	Date string // ISO date
	Time string // 24-hour HH:MM
	Tier Tier
}

// Complete reports whether both date and time were extracted.
func (r DateTimeResult) Complete() bool {
	return r.Date != "" && r.Time != ""
}

var weekdayNumbers = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tues": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thurs": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var (
	weekdayRE      = regexp.MustCompile(`(?i)\b(sunday|sun|monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thu|friday|fri|saturday|sat)\b`)
	meridiemTimeRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(a\.?m\.?|p\.?m\.?)`)
	colonTimeRE    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	oclockTimeRE   = regexp.MustCompile(`(?i)\b(\d{1,2})\s*o'?clock\b`)
	bareHourRE     = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\b`)
	monthDayRE     = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	slashMonthDay  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
)

// Named parts of the day resolve to fixed clinic times.
var dayPartTimes = []struct {
	keywords []string
	clock    string
}{
	{[]string{"noon", "midday"}, "12:00"},
	{[]string{"morning"}, "09:00"},
	{[]string{"afternoon"}, "14:00"},
	{[]string{"evening", "after work"}, "16:00"},
}

// DateTime extracts a requested appointment date and clock time. Dates
// resolve forward only: a weekday means its next occurrence (a week out when
// it names today), and explicit dates in the past are rejected.
func (e *Extractor) DateTime(ctx context.Context, utterance string) (DateTimeResult, bool) {
	res := e.dateTimeFromPatterns(utterance)
	if res.Date != "" || res.Time != "" {
		res.Tier = TierPattern
		return res, true
	}

	if value, ok := e.nluExtract(ctx, "datetime",
		"Extract the requested appointment date and time from the message. Answer in the form YYYY-MM-DD HH:MM (24-hour).",
		utterance, e.validateDateTimeAnswer); ok {
		parts := strings.Fields(value)
		return DateTimeResult{Date: parts[0], Time: parts[1], Tier: TierNLU}, true
	}

	return DateTimeResult{}, false
}

func (e *Extractor) dateTimeFromPatterns(utterance string) DateTimeResult {
	return DateTimeResult{
		Date: e.dateFromText(utterance),
		Time: e.timeFromText(utterance),
	}
}

func (e *Extractor) validateDateTimeAnswer(answer string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(answer))
	if len(parts) != 2 {
		return "", false
	}
	date, err := time.Parse(model.DateLayout, parts[0])
	if err != nil {
		return "", false
	}
	clock, err := time.Parse(model.TimeLayout, parts[1])
	if err != nil {
		return "", false
	}
	today := dateOnly(e.now())
	if date.Before(today) {
		return "", false
	}
	return date.Format(model.DateLayout) + " " + clock.Format(model.TimeLayout), true
}

func (e *Extractor) dateFromText(utterance string) string {
	lower := strings.ToLower(utterance)
	now := e.now()
	today := dateOnly(now)

	if strings.Contains(lower, "day after tomorrow") {
		return today.AddDate(0, 0, 2).Format(model.DateLayout)
	}
	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1).Format(model.DateLayout)
	}
	if strings.Contains(lower, "today") {
		return today.Format(model.DateLayout)
	}

	if m := isoDateRE.FindStringSubmatch(utterance); m != nil {
		candidate := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), 0, 0, 0, 0, time.UTC)
		if validCalendarDate(candidate, atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])) && !candidate.Before(today) {
			return candidate.Format(model.DateLayout)
		}
		return ""
	}

	if m := weekdayRE.FindStringSubmatch(lower); m != nil {
		target := weekdayNumbers[strings.ToLower(m[1])]
		delta := (int(target) - int(today.Weekday()) + 7) % 7
		// "next Monday" said on a Monday means a week from now.
		if delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, delta).Format(model.DateLayout)
	}

	if m := monthDayRE.FindStringSubmatch(utterance); m != nil {
		month := monthFromName(m[1])
		day := atoi(m[2])
		candidate := time.Date(today.Year(), month, day, 0, 0, 0, 0, time.UTC)
		if !validCalendarDate(candidate, today.Year(), month, day) {
			return ""
		}
		if candidate.Before(today) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate.Format(model.DateLayout)
	}

	if m := slashMonthDay.FindStringSubmatch(utterance); m != nil {
		month := time.Month(atoi(m[1]))
		day := atoi(m[2])
		if month < time.January || month > time.December {
			return ""
		}
		year := today.Year()
		explicitYear := m[3] != ""
		if explicitYear {
			year = atoi(m[3])
		}
		candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if !validCalendarDate(candidate, year, month, day) {
			return ""
		}
		if candidate.Before(today) {
			if explicitYear {
				return ""
			}
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate.Format(model.DateLayout)
	}

	return ""
}

func (e *Extractor) timeFromText(utterance string) string {
	if m := meridiemTimeRE.FindStringSubmatch(utterance); m != nil {
		hour := atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		meridiem := strings.ReplaceAll(strings.ToLower(m[3]), ".", "")
		if hour < 1 || hour > 12 || minute > 59 {
			return ""
		}
		if meridiem == "pm" && hour != 12 {
			hour += 12
		} else if meridiem == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}

	if m := colonTimeRE.FindStringSubmatch(utterance); m != nil {
		hour := atoi(m[1])
		minute := atoi(m[2])
		if hour > 23 || minute > 59 {
			return ""
		}
		return e.applyBareHourPolicy(hour, minute, hour <= 11)
	}

	if m := oclockTimeRE.FindStringSubmatch(utterance); m != nil {
		hour := atoi(m[1])
		if hour < 1 || hour > 23 {
			return ""
		}
		return e.applyBareHourPolicy(hour, 0, true)
	}

	if m := bareHourRE.FindStringSubmatch(utterance); m != nil {
		hour := atoi(m[1])
		if hour < 1 || hour > 23 {
			return ""
		}
		return e.applyBareHourPolicy(hour, 0, true)
	}

	lower := strings.ToLower(utterance)
	for _, part := range dayPartTimes {
		for _, keyword := range part.keywords {
			if strings.Contains(lower, keyword) {
				return part.clock
			}
		}
	}

	return ""
}

// applyBareHourPolicy resolves an hour given without a meridiem.
func (e *Extractor) applyBareHourPolicy(hour, minute int, ambiguous bool) string {
	if ambiguous && e.policy.AfternoonBias && hour >= 1 && hour <= 11 {
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func validCalendarDate(parsed time.Time, year int, month time.Month, day int) bool {
	return parsed.Year() == year && parsed.Month() == month && parsed.Day() == day
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
