package engine

import "quiz-delivery/internal/domain"

// EventType enumerates everything that can happen to a session: user input,
// timer ticks and environment signals. Funnelling them through one enum keeps
// every transition in a single place and rules out re-entrant callbacks.
type EventType string

const (
	EvStart       EventType = "start"        // identity-entry/welcome → in-progress
	EvAnswer      EventType = "answer"       // upsert one captured answer
	EvNext        EventType = "next"         // step forward one question
	EvPrev        EventType = "prev"         // step back one question
	EvJump        EventType = "jump"         // question-picker navigation
	EvFinish      EventType = "finish"       // last question → pre-submit summary
	EvBack        EventType = "back"         // summary → in-progress
	EvSubmit      EventType = "submit"       // summary → completed
	EvRetry       EventType = "retry"        // completed → in-progress (fresh run)
	EvReview      EventType = "review"       // completed → in-progress (read-only)
	EvExitRequest EventType = "exit"         // ask for exit confirmation
	EvExitConfirm EventType = "exit-confirm" // completed → exited
	EvExitCancel  EventType = "exit-cancel"  // dismiss the exit prompt
	EvTick        EventType = "tick"         // one-second countdown tick
	EvTimeUp      EventType = "time-up"      // grace elapsed after expiry
	EvAutoAdvance EventType = "auto-advance" // welcome auto-advance fired
	EvFocusLost   EventType = "focus-lost"
	EvFocusGained EventType = "focus-gained"
	EvWentOnline  EventType = "went-online"
	EvWentOffline EventType = "went-offline"
)

// Event is one unit of input to the state machine. Only the fields relevant
// to the type are populated.
type Event struct {
	Type       EventType
	Name       string        // EvStart
	QuestionID string        // EvAnswer
	Answer     domain.Answer // EvAnswer
	Index      int           // EvJump
	Gen        int           // EvTick/EvTimeUp: timer generation, stale ticks are dropped
}
