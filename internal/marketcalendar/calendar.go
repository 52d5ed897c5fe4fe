// Package marketcalendar answers is-the-market-open for a symbol at a
// given instant: an Eastern-time weekly session plus the US financial
// holiday calendar.
package marketcalendar

import (
	"strings"
	"time"

	"github.com/evetabi/marketagg/internal/domain"
)

var alwaysOpenTokens = []string{"BTC", "ETH", "PAXG", "USDT"}

// location is loaded once; if the tzdata database is unavailable the
// zero-value UTC location is used, which only affects wall-clock
// boundary precision in environments without a timezone database.
var location = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// IsMarketOpen reports whether symbol's market session is open at now.
func IsMarketOpen(symbol domain.Symbol, now time.Time) bool {
	upper := strings.ToUpper(string(symbol))
	for _, tok := range alwaysOpenTokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}

	et := now.In(location)

	if isUSHoliday(et) {
		return false
	}

	switch et.Weekday() {
	case time.Saturday:
		return false
	case time.Friday:
		if afterHour(et, 17, 0) {
			return false
		}
	case time.Sunday:
		if beforeHour(et, 18, 0) {
			return false
		}
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		if inDailyBreak(et) {
			return false
		}
	}

	return true
}

func afterHour(t time.Time, hour, minute int) bool {
	h, m, _ := t.Clock()
	return h > hour || (h == hour && m >= minute)
}

func beforeHour(t time.Time, hour, minute int) bool {
	h, m, _ := t.Clock()
	return h < hour || (h == hour && m < minute)
}

func inDailyBreak(t time.Time) bool {
	h, _, _ := t.Clock()
	return h == 17
}

func isUSHoliday(t time.Time) bool {
	y, m, d := t.Date()
	// Next year's New Year's Day falls on Dec 31 of this year when it is
	// a Saturday, so it is checked alongside this year's holidays.
	candidates := append(usHolidays(y), shiftWeekend(dateIn(y+1, time.January, 1)))
	for _, h := range candidates {
		hy, hm, hd := h.Date()
		if hy == y && hm == m && hd == d {
			return true
		}
	}
	return false
}

// usHolidays returns the COMEX-equivalent US financial holiday dates
// for a given year, weekend-shifted (Saturday -> Friday, Sunday ->
// Monday) where noted.
func usHolidays(year int) []time.Time {
	holidays := []time.Time{
		shiftWeekend(dateIn(year, time.January, 1)),
		shiftWeekend(dateIn(year, time.July, 4)),
		shiftWeekend(dateIn(year, time.December, 25)),
		nthWeekdayOfMonth(year, time.January, time.Monday, 3),   // MLK Day
		nthWeekdayOfMonth(year, time.February, time.Monday, 3),  // Presidents' Day
		lastWeekdayOfMonth(year, time.May, time.Monday),         // Memorial Day
		nthWeekdayOfMonth(year, time.September, time.Monday, 1), // Labor Day
		nthWeekdayOfMonth(year, time.November, time.Thursday, 4), // Thanksgiving
		goodFriday(year),
	}
	return holidays
}

func dateIn(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// shiftWeekend moves a fixed holiday observed on a weekend to the
// nearest weekday: Saturday shifts back to Friday, Sunday shifts
// forward to Monday.
func shiftWeekend(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// nthWeekdayOfMonth returns the date of the n-th occurrence of weekday
// in month/year (n is 1-indexed).
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := dateIn(year, month, 1)
	offset := int(weekday-first.Weekday()+7) % 7
	day := 1 + offset + (n-1)*7
	return dateIn(year, month, day)
}

// lastWeekdayOfMonth returns the date of the last occurrence of
// weekday in month/year.
func lastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	firstOfNext := dateIn(year, month+1, 1)
	if month == time.December {
		firstOfNext = dateIn(year+1, time.January, 1)
	}
	last := firstOfNext.AddDate(0, 0, -1)
	offset := int(last.Weekday()-weekday+7) % 7
	return last.AddDate(0, 0, -offset)
}

// goodFriday returns Good Friday (Easter minus two days) for year,
// computed via the Anonymous Gregorian algorithm.
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	easter := dateIn(year, time.Month(month), day)
	return easter.AddDate(0, 0, -2)
}
