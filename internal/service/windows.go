package service

import (
	"time"

	"github.com/escrowhq/escrow_bot/internal/models"
)

// Period names a report window anchored to the configured civil calendar.
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

// WindowFor computes the UTC bounds of a named period from the current
// instant in the report timezone.
func (s *Service) WindowFor(period Period) models.Window {
	return windowBounds(period, time.Now().In(s.reportLoc))
}

func windowBounds(period Period, now time.Time) models.Window {
	end := now.UTC()

	var startLocal time.Time
	switch period {
	case PeriodToday:
		startLocal = midnight(now)
	case PeriodWeekly:
		// Most recent Monday.
		offset := (int(now.Weekday()) + 6) % 7
		startLocal = midnight(now.AddDate(0, 0, -offset))
	case PeriodMonthly:
		startLocal = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return models.Window{End: end}
	}

	start := startLocal.UTC()
	return models.Window{Start: &start, End: end}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
