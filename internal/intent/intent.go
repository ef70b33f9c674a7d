package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind classifies what the sender asked for.
type Kind int

const (
	// KindUnrecognized is any text the parser cannot classify.
	KindUnrecognized Kind = iota
	// KindReservation is a reservation attempt with extracted fields.
	KindReservation
	// KindCancellation is a cancellation request, answered with a
	// terminal reply (cancellation itself is handled elsewhere).
	KindCancellation
	// KindMenu is an explicit request for the reservation menu.
	KindMenu
	// KindStatus asks for the sender's upcoming reservations.
	KindStatus
	// KindFormatHelp asks how to phrase a reservation message.
	KindFormatHelp
	// KindThanks is a closing message.
	KindThanks
)

// Request is a parsed reservation candidate. It is built fresh per
// event and never persisted until validated.
type Request struct {
	People int
	Date   string // YYYY-MM-DD
	Time   string // HH:MM:SS
}

// Result is the tagged outcome of parsing one message.
type Result struct {
	Kind    Kind
	Request Request
}

const (
	// DefaultPeople is assumed when no party size is present.
	DefaultPeople = 2
	// DefaultHour is assumed when no time is present.
	DefaultHour = 19

	minPeople = 1
	maxPeople = 20
)

var (
	peoplePattern = regexp.MustCompile(`(\d+)[人名]`)
	timePattern   = regexp.MustCompile(`(\d{1,2})時`)
)

// Parse classifies sanitized message text and extracts reservation
// fields. Extraction is keyword and pattern based, not NLU: unmatched
// fields fall back to defaults rather than causing rejection, because
// the audience types terse natural input. Parse never fails.
func Parse(text string, now time.Time) Result {
	switch text {
	case "メニュー", "menu", "予約したい":
		return Result{Kind: KindMenu}
	case "予約確認", "予約状況":
		return Result{Kind: KindStatus}
	case "ありがとうございました", "終了":
		return Result{Kind: KindThanks}
	}

	if strings.Contains(text, "キャンセル") {
		return Result{Kind: KindCancellation}
	}

	if !strings.Contains(text, "予約") {
		return Result{Kind: KindUnrecognized}
	}

	if strings.Contains(text, "予約フォーマット") {
		return Result{Kind: KindFormatHelp}
	}

	return Result{
		Kind: KindReservation,
		Request: Request{
			People: extractPeople(text),
			Date:   extractDate(text, now),
			Time:   extractTime(text),
		},
	}
}

func extractPeople(text string) int {
	m := peoplePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultPeople
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultPeople
	}
	if n < minPeople {
		return minPeople
	}
	if n > maxPeople {
		return maxPeople
	}
	return n
}

// extractTime returns the requested hour as HH:00:00. The hour is not
// clamped into business hours here; validation owns that rule, so an
// out-of-hours request is reported to the sender instead of being
// silently rewritten.
func extractTime(text string) string {
	hour := DefaultHour
	if m := timePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			hour = n
		}
	}
	return fmt.Sprintf("%02d:00:00", hour)
}

func extractDate(text string, now time.Time) string {
	switch {
	case strings.Contains(text, "明後日"):
		return now.AddDate(0, 0, 2).Format("2006-01-02")
	case strings.Contains(text, "明日"):
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	default:
		// 今日, or no date at all
		return now.Format("2006-01-02")
	}
}
