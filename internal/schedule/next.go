// Package schedule maps the schedule settings to timer slots.
package schedule

import (
	"fmt"
	"time"

	"SvnBackuper/internal/config"
)

// Every run starts at a whole hour; day schedules spread across the day,
// week and month schedules run at 02:00.
var (
	dayHours  = [][]int{{2}, {2, 14}, {2, 10, 18}, {2, 8, 14, 20}, {2, 6, 12, 18, 22}}
	weekDays  = [][]int{{1}, {1, 4}, {1, 3, 5}, {1, 2, 4, 5}, {1, 2, 3, 4, 5}}
	monthDays = [][]int{{1}, {1, 15}, {1, 10, 20}, {1, 8, 15, 22}, {1, 7, 14, 21, 28}}
	dayNames  = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

const runHour = 2

func times(s *config.ScheduleConfig) int {
	n := s.Times
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n
}

// OnCalendar returns systemd OnCalendar expressions for s.
func OnCalendar(s *config.ScheduleConfig) []string {
	n := times(s)
	var out []string
	switch s.Period {
	case "week":
		for _, d := range weekDays[n-1] {
			out = append(out, fmt.Sprintf("%s *-*-* %02d:00:00", dayNames[d], runHour))
		}
	case "month":
		for _, d := range monthDays[n-1] {
			out = append(out, fmt.Sprintf("*-*-%02d %02d:00:00", d, runHour))
		}
	default:
		for _, h := range dayHours[n-1] {
			out = append(out, fmt.Sprintf("*-*-* %02d:00:00", h))
		}
	}
	return out
}

// Describe renders s for humans, e.g. "daily 2×".
func Describe(s *config.ScheduleConfig) string {
	if s == nil || s.Times < 1 {
		return "no schedule"
	}
	period := "daily"
	switch s.Period {
	case "week":
		period = "weekly"
	case "month":
		period = "monthly"
	}
	desc := fmt.Sprintf("%s %d×", period, times(s))
	if s.JitterMinutes > 0 {
		desc += fmt.Sprintf(" (+ up to %dm jitter)", s.JitterMinutes)
	}
	return desc
}

// NextRun returns the earliest next slot strictly after now, before jitter.
// The zero time means there is no schedule.
func NextRun(s *config.ScheduleConfig, now time.Time) time.Time {
	if s == nil || s.Times < 1 {
		return time.Time{}
	}
	n := times(s)
	loc := now.Location()
	y, m, d := now.Date()

	switch s.Period {
	case "week":
		for ahead := 0; ahead <= 7; ahead++ {
			day := time.Date(y, m, d+ahead, runHour, 0, 0, 0, loc)
			for _, wd := range weekDays[n-1] {
				if int(day.Weekday()) == wd && day.After(now) {
					return day
				}
			}
		}
	case "month":
		for months := 0; months <= 1; months++ {
			for _, md := range monthDays[n-1] {
				cand := time.Date(y, m+time.Month(months), md, runHour, 0, 0, 0, loc)
				if cand.After(now) {
					return cand
				}
			}
		}
	default:
		for ahead := 0; ahead <= 1; ahead++ {
			for _, h := range dayHours[n-1] {
				cand := time.Date(y, m, d+ahead, h, 0, 0, 0, loc)
				if cand.After(now) {
					return cand
				}
			}
		}
	}
	return time.Time{}
}
