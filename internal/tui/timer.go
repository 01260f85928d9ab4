package tui

import (
	"math"
	"time"
)

// timerState tracks the current state of the stopwatch.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

const (
	idlePause = "pause"
	idleStop  = "stop"
)

// timerModel is the study stopwatch. It only measures time; stopping it
// hands the elapsed minutes to the session form.
type timerModel struct {
	now func() time.Time

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time // when paused, to compute pause gap
	pauseGap  time.Duration

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	idleAction   string
	isIdle       bool
}

func newTimerModel(now func() time.Time) timerModel {
	if now == nil {
		now = time.Now
	}
	return timerModel{
		now:          now,
		state:        timerStopped,
		lastActivity: now(),
		idleTimeout:  5 * time.Minute,
		idleAction:   idlePause,
	}
}

func (t *timerModel) configure(idleTimeout time.Duration, idleAction string) {
	if idleTimeout > 0 {
		t.idleTimeout = idleTimeout
	}
	if idleAction == idlePause || idleAction == idleStop {
		t.idleAction = idleAction
	}
}

func (t *timerModel) start() {
	if t.state != timerStopped {
		return
	}
	now := t.now()
	t.state = timerRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.lastActivity = now
	t.isIdle = false
}

// stop halts the stopwatch and returns the measured time.
func (t *timerModel) stop() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	d := t.currentElapsed()
	t.state = timerStopped
	t.elapsed = 0
	t.isIdle = false
	return d
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	now := t.now()
	t.pauseGap += now.Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = now
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

// tick updates the reading and applies idle detection. When the idle action
// is stop, it returns the elapsed time and true.
func (t *timerModel) tick() (time.Duration, bool) {
	if t.state != timerRunning {
		return 0, false
	}
	now := t.now()
	t.elapsed = now.Sub(t.startTime) - t.pauseGap

	if now.Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
		if t.idleAction == idleStop {
			return t.stop(), true
		}
		t.isIdle = true
		t.pause()
	}
	return 0, false
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}

// elapsedMinutes rounds d to whole minutes, at least 1.
func elapsedMinutes(d time.Duration) int {
	return max(1, int(math.Round(d.Minutes())))
}
