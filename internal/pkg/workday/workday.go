// Package workday implements SLA day arithmetic.
//
// Every instant is reduced to its UTC calendar date before counting.
// Saturday and Sunday are the only non-business days; there is no holiday calendar.
package workday

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// DateOf truncates t to midnight UTC of its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether t's UTC date is Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	switch DateOf(t).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddBusinessDays returns the date n business days after start. n == 0 returns
// start's date unchanged; negative n walks backwards.
func AddBusinessDays(start time.Time, n int) time.Time {
	current := DateOf(start)
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	for added := 0; added < n; {
		current = current.AddDate(0, 0, step)
		if IsBusinessDay(current) {
			added++
		}
	}
	return current
}

// ParseAndAddBusinessDays parses start (YYYY-MM-DD or RFC3339) and adds n business days.
func ParseAndAddBusinessDays(start string, n int) (time.Time, error) {
	t, err := Parse(start)
	if err != nil {
		return time.Time{}, err
	}
	return AddBusinessDays(t, n), nil
}

// Parse accepts a calendar date or an RFC3339 timestamp and returns its UTC date.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return DateOf(t), nil
}

// BusinessDaysBetween counts business days stepping from start to end,
// excluding start and including end. The sign follows the direction.
func BusinessDaysBetween(start, end time.Time) int {
	from, to := DateOf(start), DateOf(end)
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}

	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return sign * count
}

// DaysUntil returns the signed number of calendar days from today to deadline.
func DaysUntil(deadline, today time.Time) int {
	return int(DateOf(deadline).Sub(DateOf(today)) / day)
}

// CalendarDaysBetween returns whole calendar days from start to end, floored at zero.
func CalendarDaysBetween(start, end time.Time) int {
	if n := DaysUntil(end, start); n > 0 {
		return n
	}
	return 0
}

// Format renders t's UTC date as YYYY-MM-DD.
func Format(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}
