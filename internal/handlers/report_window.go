package handlers

import (
	"errors"
	"time"
)

// reportWindow resolves the sales-report date filter to a concrete window.
// Weeks start on Monday.
func reportWindow(filter, startDate, endDate string, now time.Time) (time.Time, time.Time, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch filter {
	case "daily":
		return dayStart, dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	case "weekly":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		weekStart := dayStart.AddDate(0, 0, -(weekday - 1))
		return weekStart, weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond), nil
	case "monthly":
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
	case "yearly":
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return yearStart, yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond), nil
	case "custom":
		from, err := time.ParseInLocation("2006-01-02", startDate, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid startDate")
		}
		to, err := time.ParseInLocation("2006-01-02", endDate, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid endDate")
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, errors.New("endDate before startDate")
		}
		return from, to.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	default:
		return time.Time{}, time.Time{}, errors.New("invalid date filter")
	}
}
