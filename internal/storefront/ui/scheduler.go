package ui

import "time"

// TimerScheduler is the real app.Scheduler, backed by runtime timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
