package schedule

import (
	"strings"
	"testing"
	"time"

	"SvnBackuper/internal/config"
)

func TestNextRun(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		s    *config.ScheduleConfig
		want time.Time
	}{
		{"nil", nil, time.Time{}},
		{"zero times", &config.ScheduleConfig{Period: "day"}, time.Time{}},
		{"daily once", &config.ScheduleConfig{Period: "day", Times: 1}, time.Date(2026, 3, 19, 2, 0, 0, 0, time.UTC)},
		{"daily three", &config.ScheduleConfig{Period: "day", Times: 3}, time.Date(2026, 3, 18, 18, 0, 0, 0, time.UTC)},
		{"weekly twice", &config.ScheduleConfig{Period: "week", Times: 2}, time.Date(2026, 3, 19, 2, 0, 0, 0, time.UTC)},
		{"weekly once", &config.ScheduleConfig{Period: "week", Times: 1}, time.Date(2026, 3, 23, 2, 0, 0, 0, time.UTC)},
		{"monthly twice", &config.ScheduleConfig{Period: "month", Times: 2}, time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)},
		{"monthly four", &config.ScheduleConfig{Period: "month", Times: 4}, time.Date(2026, 3, 22, 2, 0, 0, 0, time.UTC)},
		{"times clamped", &config.ScheduleConfig{Period: "day", Times: 9}, time.Date(2026, 3, 18, 18, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRun(tt.s, now); !got.Equal(tt.want) {
				t.Errorf("NextRun = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRun_Boundary(t *testing.T) {
	at := time.Date(2026, 3, 18, 2, 0, 0, 0, time.UTC)
	got := NextRun(&config.ScheduleConfig{Period: "day", Times: 1}, at)
	if !got.Equal(at.AddDate(0, 0, 1)) {
		t.Errorf("a slot equal to now is not next: got %v", got)
	}
	dec := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	if got := NextRun(&config.ScheduleConfig{Period: "month", Times: 1}, dec); !got.Equal(time.Date(2027, 1, 1, 2, 0, 0, 0, time.UTC)) {
		t.Errorf("month rollover = %v", got)
	}
}

func TestOnCalendar(t *testing.T) {
	tests := []struct {
		s    config.ScheduleConfig
		want string
	}{
		{config.ScheduleConfig{Period: "day", Times: 2}, "*-*-* 02:00:00,*-*-* 14:00:00"},
		{config.ScheduleConfig{Period: "week", Times: 3}, "Mon *-*-* 02:00:00,Wed *-*-* 02:00:00,Fri *-*-* 02:00:00"},
		{config.ScheduleConfig{Period: "month", Times: 2}, "*-*-01 02:00:00,*-*-15 02:00:00"},
		{config.ScheduleConfig{Times: 0}, "*-*-* 02:00:00"},
	}
	for _, tt := range tests {
		if got := strings.Join(OnCalendar(&tt.s), ","); got != tt.want {
			t.Errorf("OnCalendar(%+v) = %s, want %s", tt.s, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(&config.ScheduleConfig{Period: "week", Times: 2, JitterMinutes: 10}); got != "weekly 2× (+ up to 10m jitter)" {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe(nil); got != "no schedule" {
		t.Errorf("Describe(nil) = %q", got)
	}
}
