package engine

import (
	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/report"
)

// Session is the mutable state of one test-taking run. It is created fresh
// per connection, owned exclusively by the engine, and every render derives
// from it alone.
type Session struct {
	Screen        Screen                   `json:"screen"`
	StudentName   string                   `json:"studentName"`
	CurrentIndex  int                      `json:"currentIndex"`
	Answers       map[string]domain.Answer `json:"answers"`
	TimeRemaining int                      `json:"timeRemainingSeconds"`
	ReviewMode    bool                     `json:"reviewMode"`

	// Presentation flags, never transitions.
	Blurred      bool `json:"blurred"`
	FocusWarning bool `json:"focusWarning"`
	ExitPrompt   bool `json:"exitPrompt"`

	// Result of the last completion, present from the first completed frame on.
	Result *report.Summary `json:"result,omitempty"`

	// resumeScreen remembers where to return after connectivity-blocked.
	resumeScreen Screen
	// attempts is the ledger count as of the last read or increment.
	attempts int
	// timerGen increments every time the countdown starts; events carrying an
	// older generation are stale and ignored.
	timerGen int
	// welcomeAdvanced guards the auto-advance against double-firing.
	welcomeAdvanced bool
}

func newSession(timerSeconds int) *Session {
	return &Session{
		Answers:       make(map[string]domain.Answer),
		TimeRemaining: timerSeconds,
	}
}
