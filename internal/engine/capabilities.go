package engine

import "time"

// SoundCue abstracts the audible timer cues. The browser-era runtime
// synthesized these with an audio context; transports that cannot play sound
// plug in NopCue.
type SoundCue interface {
	// Tick is a short cue emitted once per second during the final minute.
	Tick()
	// Whistle is the longer cue emitted when time runs out.
	Whistle()
}

// NopCue ignores all cues.
type NopCue struct{}

func (NopCue) Tick()    {}
func (NopCue) Whistle() {}

// Scheduler delivers a callback after a delay. The engine uses it for the
// welcome auto-advance and the post-expiry grace; real deployments use
// timers, tests an immediate or manual fake.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// Probe reports whether the host currently has live connectivity. Used only
// at startup for offline-only documents; later changes arrive as events.
type Probe interface {
	Online() bool
}

// StaticProbe is a Probe with a fixed answer.
type StaticProbe bool

func (p StaticProbe) Online() bool { return bool(p) }
