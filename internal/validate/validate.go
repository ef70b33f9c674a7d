package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rules holds the business rules a reservation request is checked
// against. Callers with tighter constraints (the calendar entry form
// caps bookings at 30 days ahead) pass their own Rules value.
type Rules struct {
	MinPeople   int
	MaxPeople   int
	OpenHour    int
	CloseHour   int
	HorizonDays int
}

// Candidate is the already-parsed reservation under validation.
type Candidate struct {
	People int
	Date   string // YYYY-MM-DD
	Time   string // HH:MM:SS
}

// Check returns every violated business rule as a human-readable
// message, empty when the candidate is valid. All rules are evaluated,
// not short-circuited, so the sender sees every problem at once.
func (r Rules) Check(c Candidate, now time.Time) []string {
	var violations []string

	if c.People < r.MinPeople || c.People > r.MaxPeople {
		violations = append(violations,
			fmt.Sprintf("予約人数は%d〜%d名で指定してください", r.MinPeople, r.MaxPeople))
	}

	when, parseOK := parseDateTime(c.Date, c.Time, now.Location())
	if parseOK && when.Before(now) {
		violations = append(violations, "過去の日時は予約できません")
	}

	if hour, ok := parseHour(c.Time); ok {
		if hour < r.OpenHour || hour >= r.CloseHour {
			violations = append(violations,
				fmt.Sprintf("予約時間は%d:00〜%d:00の間で指定してください", r.OpenHour, r.CloseHour-1))
		}
	}

	// The horizon is a whole-day bound: any time on the last allowed
	// date is still accepted.
	if day, err := time.ParseInLocation("2006-01-02", c.Date, now.Location()); err == nil {
		last := now.AddDate(0, 0, r.HorizonDays)
		lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())
		if day.After(lastDay) {
			violations = append(violations,
				fmt.Sprintf("予約は%d日先までとなっております", r.HorizonDays))
		}
	}

	return violations
}

func parseDateTime(date, clock string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseHour(clock string) (int, bool) {
	parts := strings.SplitN(clock, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return hour, true
}
