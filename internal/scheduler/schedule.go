// Package scheduler runs background maintenance jobs on cron-style
// schedules. It supports the @-prefixed expressions ("@every 6h",
// "@daily") and deliberately not five-field cron; maintenance cadences
// don't need minute-of-hour precision.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule yields successive run times for a job.
type Schedule interface {
	// Next returns the first run time strictly after the given instant.
	Next(after time.Time) time.Time
}

// every runs at a fixed interval from the previous run.
type every struct {
	interval time.Duration
}

func (e every) Next(after time.Time) time.Time {
	return after.Add(e.interval)
}

// nextFunc adapts a boundary function (top of hour, midnight, ...) to the
// Schedule interface.
type nextFunc func(time.Time) time.Time

func (f nextFunc) Next(after time.Time) time.Time {
	return f(after)
}

// ParseSchedule parses a schedule expression. Supported forms are
// "@every <duration>" (accepting a trailing "d" for days, which
// time.ParseDuration lacks) and the named expressions @hourly, @daily,
// @weekly, @monthly and @yearly.
func ParseSchedule(expr string) (Schedule, error) {
	switch expr = strings.TrimSpace(expr); {
	case expr == "@hourly":
		return nextFunc(nextHour), nil
	case expr == "@daily":
		return nextFunc(nextDay), nil
	case expr == "@weekly":
		return nextFunc(nextWeek), nil
	case expr == "@monthly":
		return nextFunc(nextMonth), nil
	case expr == "@yearly", expr == "@annually":
		return nextFunc(nextYear), nil
	case strings.HasPrefix(expr, "@every "):
		d, err := parseInterval(strings.TrimPrefix(expr, "@every "))
		if err != nil {
			return nil, err
		}
		return every{interval: d}, nil
	default:
		return nil, fmt.Errorf("unsupported schedule %q", expr)
	}
}

func parseInterval(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid interval %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	if d < time.Second {
		return 0, fmt.Errorf("interval %q is below one second", s)
	}
	return d, nil
}

func nextHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, t.Location())
}

func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

func nextWeek(t time.Time) time.Time {
	// Next Sunday at midnight.
	days := (7 - int(t.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()+days, 0, 0, 0, 0, t.Location())
}

func nextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

func nextYear(t time.Time) time.Time {
	return time.Date(t.Year()+1, 1, 1, 0, 0, 0, 0, t.Location())
}
