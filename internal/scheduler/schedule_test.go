package scheduler

import (
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"hourly", "@hourly", false},
		{"daily", "@daily", false},
		{"weekly", "@weekly", false},
		{"monthly", "@monthly", false},
		{"yearly", "@yearly", false},
		{"annually", "@annually", false},
		{"every 1h", "@every 1h", false},
		{"every 30m", "@every 30m", false},
		{"every 7d", "@every 7d", false},
		{"every padded", "  @every 90m  ", false},
		{"sub-second interval", "@every 500ms", true},
		{"zero days", "@every 0d", true},
		{"bad duration", "@every soon", true},
		{"five-field cron", "0 * * * *", true},
		{"unknown name", "@fortnightly", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedule(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSchedule(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestScheduleNext(t *testing.T) {
	// A Monday mid-morning.
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{"hourly", "@hourly", time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)},
		{"daily", "@daily", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		{"weekly", "@weekly", time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)},
		{"monthly", "@monthly", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"yearly", "@yearly", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"every 45m", "@every 45m", base.Add(45 * time.Minute)},
		{"every 7d", "@every 7d", base.Add(7 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := ParseSchedule(tt.expr)
			if err != nil {
				t.Fatalf("ParseSchedule(%q): %v", tt.expr, err)
			}
			if got := sched.Next(base); !got.Equal(tt.want) {
				t.Errorf("Next(%v) = %v, want %v", base, got, tt.want)
			}
		})
	}
}

func TestScheduleNext_MonthAndWeekRollover(t *testing.T) {
	// December rolls into the next year.
	dec := time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC)
	if got := nextMonth(dec); !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("nextMonth(%v) = %v", dec, got)
	}

	// From a Sunday, weekly means the following Sunday, not today.
	sun := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)
	if got := nextWeek(sun); !got.Equal(time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("nextWeek(%v) = %v", sun, got)
	}
}
