package reports

import (
	"errors"
	"time"
)

// Period names a reporting window relative to the current time.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodWeek      Period = "week"
	PeriodLastWeek  Period = "last_week"
	PeriodMonth     Period = "month"
	PeriodLastMonth Period = "last_month"
)

// ErrUnknownPeriod rejects unrecognized period names.
var ErrUnknownPeriod = errors.New("reports: unknown period")

// DateRange is a half-open interval [From, To).
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the preceding Monday at midnight.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// RangeFor resolves a period to its current window and the window
// immediately before it, for percent comparisons.
func RangeFor(period Period, now time.Time) (current, previous DateRange, err error) {
	switch period {
	case PeriodToday:
		from := startOfDay(now)
		current = DateRange{From: from, To: from.AddDate(0, 0, 1)}
		previous = DateRange{From: from.AddDate(0, 0, -1), To: from}
	case PeriodYesterday:
		to := startOfDay(now)
		current = DateRange{From: to.AddDate(0, 0, -1), To: to}
		previous = DateRange{From: to.AddDate(0, 0, -2), To: to.AddDate(0, 0, -1)}
	case PeriodWeek:
		from := startOfWeek(now)
		current = DateRange{From: from, To: from.AddDate(0, 0, 7)}
		previous = DateRange{From: from.AddDate(0, 0, -7), To: from}
	case PeriodLastWeek:
		to := startOfWeek(now)
		current = DateRange{From: to.AddDate(0, 0, -7), To: to}
		previous = DateRange{From: to.AddDate(0, 0, -14), To: to.AddDate(0, 0, -7)}
	case PeriodMonth:
		from := startOfMonth(now)
		current = DateRange{From: from, To: from.AddDate(0, 1, 0)}
		previous = DateRange{From: from.AddDate(0, -1, 0), To: from}
	case PeriodLastMonth:
		to := startOfMonth(now)
		current = DateRange{From: to.AddDate(0, -1, 0), To: to}
		previous = DateRange{From: to.AddDate(0, -2, 0), To: to.AddDate(0, -1, 0)}
	default:
		return DateRange{}, DateRange{}, ErrUnknownPeriod
	}
	return current, previous, nil
}

// PercentChange compares two period amounts. Two empty periods show no
// movement; growth from zero reads as one hundred percent.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}
