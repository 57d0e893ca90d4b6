package site

import "time"

type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Countdown splits the time until target; it stays at zero once target has
// passed.
func Countdown(target, now time.Time) TimeLeft {
	d := target.Sub(now)
	if d <= 0 {
		return TimeLeft{}
	}
	secs := int(d / time.Second)
	return TimeLeft{
		Days:    secs / 86400,
		Hours:   secs / 3600 % 24,
		Minutes: secs / 60 % 60,
		Seconds: secs % 60,
	}
}
