package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestParseClassification(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
	}{
		{"メニュー", KindMenu},
		{"menu", KindMenu},
		{"予約したい", KindMenu},
		{"予約確認", KindStatus},
		{"予約状況", KindStatus},
		{"ありがとうございました", KindThanks},
		{"終了", KindThanks},
		{"キャンセル", KindCancellation},
		{"予約をキャンセルしたい", KindCancellation},
		{"予約フォーマット：「予約 [日付] [時間] [人数]」", KindFormatHelp},
		{"予約 今日 19時 4名", KindReservation},
		{"予約", KindReservation},
		{"こんにちは", KindUnrecognized},
		{"", KindUnrecognized},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.kind, Parse(tc.text, testNow).Kind)
		})
	}
}

func TestParseExtractsFields(t *testing.T) {
	r := Parse("予約 今日 19時 4名", testNow)
	assert.Equal(t, KindReservation, r.Kind)
	assert.Equal(t, 4, r.Request.People)
	assert.Equal(t, "19:00:00", r.Request.Time)
	assert.Equal(t, "2025-06-01", r.Request.Date)
}

func TestParseDefaults(t *testing.T) {
	r := Parse("予約", testNow)
	assert.Equal(t, DefaultPeople, r.Request.People)
	assert.Equal(t, "19:00:00", r.Request.Time)
	assert.Equal(t, "2025-06-01", r.Request.Date, "missing date defaults to today")
}

func TestParseRelativeDates(t *testing.T) {
	assert.Equal(t, "2025-06-02", Parse("予約 明日 18時 2名", testNow).Request.Date)
	assert.Equal(t, "2025-06-03", Parse("予約 明後日 18時 2名", testNow).Request.Date)
	assert.Equal(t, "2025-06-01", Parse("予約 今日 18時 2名", testNow).Request.Date)
}

func TestParsePeopleCounterWords(t *testing.T) {
	assert.Equal(t, 3, Parse("予約 今日 3人", testNow).Request.People)
	assert.Equal(t, 6, Parse("予約 6名で", testNow).Request.People)
}

func TestParseClampsPeople(t *testing.T) {
	assert.Equal(t, 20, Parse("予約 今日 100名", testNow).Request.People)
	assert.Equal(t, 1, Parse("予約 今日 0名", testNow).Request.People)
}

func TestParseDoesNotClampHour(t *testing.T) {
	// An out-of-hours request is passed through so validation can
	// report it instead of silently rewriting it.
	assert.Equal(t, "23:00:00", Parse("予約 23時 2名", testNow).Request.Time)
}
