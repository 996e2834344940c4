// Package engine implements the quiz delivery state machine: it computes the
// initial screen from the document, the attempt ledger and the wall clock,
// then applies every later transition in response to a single stream of
// events. Callers must feed events from one goroutine at a time; the engine
// itself never spawns concurrent transitions.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/i18n"
	"quiz-delivery/internal/ledger"
	"quiz-delivery/internal/report"
	"quiz-delivery/internal/scoring"
)

const (
	// warningThreshold is when the timer display switches to its warning state.
	warningThreshold = 300
	// finalCueWindow is the stretch of final seconds with an audible tick.
	finalCueWindow = 60
)

// Deps are the engine's collaborators. Ledger and Reporter are required;
// the capability interfaces default to no-ops, the clock to time.Now.
type Deps struct {
	Ledger   ledger.Ledger
	Reporter *report.Reporter
	Cue      SoundCue
	Sched    Scheduler
	Probe    Probe
	Clock    func() time.Time
	// Emit feeds self-generated events (ticks, auto-advance, expiry) back
	// into the caller's serialized event loop. Nil disables the background
	// ticker; ticks must then be injected by the caller.
	Emit func(Event)
	Log  zerolog.Logger

	// TickInterval and ExpiryGrace exist for tests; zero means production
	// defaults (1s tick, 1s grace).
	TickInterval time.Duration
	ExpiryGrace  time.Duration
}

// Engine drives one test-taking session over one immutable document.
type Engine struct {
	doc       domain.Document
	strs      i18n.Bundle
	ledger    ledger.Ledger
	ledgerKey string
	reporter  *report.Reporter
	cue       SoundCue
	sched     Scheduler
	probe     Probe
	clock     func() time.Time
	emit      func(Event)
	log       zerolog.Logger

	tickInterval time.Duration
	grace        time.Duration

	session     *Session
	timer       *ticker
	timerActive bool
}

func New(doc domain.Document, deps Deps) *Engine {
	if deps.Cue == nil {
		deps.Cue = NopCue{}
	}
	if deps.Sched == nil {
		deps.Sched = TimerScheduler{}
	}
	if deps.Probe == nil {
		deps.Probe = StaticProbe(false)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.TickInterval <= 0 {
		deps.TickInterval = time.Second
	}
	if deps.ExpiryGrace <= 0 {
		deps.ExpiryGrace = time.Second
	}
	return &Engine{
		doc:          doc,
		strs:         i18n.For(doc.Settings.Language),
		ledger:       deps.Ledger,
		ledgerKey:    ledger.Key(doc.Settings.Title),
		reporter:     deps.Reporter,
		cue:          deps.Cue,
		sched:        deps.Sched,
		probe:        deps.Probe,
		clock:        deps.Clock,
		emit:         deps.Emit,
		log:          deps.Log.With().Str("component", "engine").Str("quiz", doc.Settings.Title).Logger(),
		tickInterval: deps.TickInterval,
		grace:        deps.ExpiryGrace,
		session:      newSession(doc.Settings.TimerSeconds),
	}
}

// Session exposes the current session state (read-only by convention).
func (e *Engine) Session() *Session { return e.session }

// Frame renders the current state. Safe to call repeatedly; identical state
// yields identical frames.
func (e *Engine) Frame() Frame {
	return buildFrame(e.doc, e.session, e.strs)
}

// Start computes the initial screen. Run once, before any Apply.
// Precedence: exhausted attempts, access window not open, access window
// closed, offline-only with live connectivity, then the entry screen.
func (e *Engine) Start(ctx context.Context) Frame {
	s := e.session

	if e.doc.Settings.MaxAttempts > 0 {
		n, err := e.ledger.Count(ctx, e.ledgerKey)
		if err != nil {
			// Storage trouble never blocks the session; treat as zero attempts.
			e.log.Warn().Err(err).Msg("attempt ledger unavailable")
		} else {
			s.attempts = n
		}
	}

	switch {
	case e.doc.Settings.MaxAttempts > 0 && s.attempts >= e.doc.Settings.MaxAttempts:
		s.Screen = ScreenAttemptsExhausted
	case e.beforeWindow():
		s.Screen = ScreenNotYetAvailable
	case e.afterWindow():
		s.Screen = ScreenExpired
	case e.doc.Settings.OfflineOnly && e.probe.Online():
		s.Screen = ScreenConnectivityBlocked
		s.resumeScreen = e.entryScreen()
	default:
		s.Screen = e.entryScreen()
	}

	if s.Screen == ScreenWelcome {
		e.scheduleWelcomeAdvance()
	}
	return e.Frame()
}

// Apply processes one event and returns the resulting frame. Rejected events
// leave the session untouched; validation problems surface on the frame, not
// as errors.
func (e *Engine) Apply(ctx context.Context, ev Event) Frame {
	s := e.session

	switch ev.Type {
	case EvStart:
		return e.applyStart(ev)

	case EvAutoAdvance:
		if s.Screen == ScreenWelcome && !s.welcomeAdvanced {
			e.beginRun("Guest")
		}

	case EvAnswer:
		if s.Screen == ScreenInProgress && !s.ReviewMode {
			if e.questionByID(ev.QuestionID) == nil {
				e.log.Debug().Str("question", ev.QuestionID).Msg("answer for unknown question dropped")
				break
			}
			// Upserted without validation; an empty answer is a valid
			// "unanswered" capture.
			s.Answers[ev.QuestionID] = ev.Answer
		}

	case EvNext:
		if s.Screen == ScreenInProgress && s.CurrentIndex < len(e.doc.Questions)-1 {
			s.CurrentIndex++
		}

	case EvPrev:
		if s.Screen == ScreenInProgress && s.CurrentIndex > 0 {
			s.CurrentIndex--
		}

	case EvJump:
		if s.Screen == ScreenInProgress && ev.Index >= 0 && ev.Index < len(e.doc.Questions) {
			s.CurrentIndex = ev.Index
		}

	case EvFinish:
		if s.Screen == ScreenInProgress {
			if s.ReviewMode {
				e.leaveReview()
			} else {
				s.Screen = ScreenPreSubmitSummary
			}
		}

	case EvBack:
		if s.Screen == ScreenPreSubmitSummary {
			s.Screen = ScreenInProgress
		} else if s.Screen == ScreenInProgress && s.ReviewMode {
			e.leaveReview()
		}

	case EvSubmit:
		if s.Screen == ScreenPreSubmitSummary {
			e.complete(ctx)
		}

	case EvTick:
		e.applyTick(ev)

	case EvTimeUp:
		// Expiry forces completion no matter where the run wandered during
		// the grace delay: summary and connectivity-blocked cannot shelter a
		// timed-out attempt.
		if ev.Gen == s.timerGen && !s.ReviewMode {
			switch s.Screen {
			case ScreenInProgress, ScreenPreSubmitSummary, ScreenConnectivityBlocked:
				e.complete(ctx)
			}
		}

	case EvRetry:
		return e.applyRetry()

	case EvReview:
		if s.Screen == ScreenCompleted {
			s.ReviewMode = true
			s.CurrentIndex = 0
			s.ExitPrompt = false
			s.Screen = ScreenInProgress
		}

	case EvExitRequest:
		if s.Screen == ScreenCompleted {
			s.ExitPrompt = true
		}

	case EvExitConfirm:
		if s.Screen == ScreenCompleted && s.ExitPrompt {
			e.stopTimer()
			s.ExitPrompt = false
			s.Screen = ScreenExited
		}

	case EvExitCancel:
		s.ExitPrompt = false

	case EvFocusLost:
		if e.doc.Settings.PreventScreenshot {
			s.Blurred = true
		}
		if e.doc.Settings.PreventSplitScreen && s.Screen == ScreenInProgress {
			s.FocusWarning = true
		}

	case EvFocusGained:
		s.Blurred = false
		s.FocusWarning = false

	case EvWentOnline:
		e.applyWentOnline()

	case EvWentOffline:
		e.applyWentOffline()
	}

	return e.Frame()
}

func (e *Engine) applyStart(ev Event) Frame {
	s := e.session
	switch s.Screen {
	case ScreenIdentityEntry:
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			// No transition; re-prompt with a localized message.
			f := e.Frame()
			f.Alert = e.strs.EnterName
			return f
		}
		e.beginRun(name)
	case ScreenWelcome:
		e.beginRun("Guest")
	}
	return e.Frame()
}

// beginRun moves into in-progress and starts the countdown.
func (e *Engine) beginRun(name string) {
	s := e.session
	s.StudentName = name
	s.welcomeAdvanced = true
	s.Screen = ScreenInProgress
	e.startTimer()
}

func (e *Engine) applyTick(ev Event) {
	s := e.session
	// Frozen everywhere except live in-progress, including the summary.
	if s.Screen != ScreenInProgress || s.ReviewMode || !e.doc.Settings.TimerEnabled {
		return
	}
	if ev.Gen != s.timerGen || !e.timerActive {
		return // stale tick from a stopped countdown
	}

	s.TimeRemaining--
	switch {
	case s.TimeRemaining <= 0:
		s.TimeRemaining = 0
		e.stopTimer()
		e.cue.Whistle()
		gen := s.timerGen
		e.sched.After(e.grace, func() {
			e.selfEmit(Event{Type: EvTimeUp, Gen: gen})
		})
	case s.TimeRemaining <= finalCueWindow:
		e.cue.Tick()
	}
}

func (e *Engine) applyRetry() Frame {
	s := e.session
	if s.Screen != ScreenCompleted {
		return e.Frame()
	}
	max := e.doc.Settings.MaxAttempts
	if max > 0 && s.attempts >= max {
		f := e.Frame()
		f.Alert = e.strs.AttemptsReached
		return f
	}
	// Captured answers are deliberately preserved across retries; index,
	// review flag and the countdown reset.
	s.CurrentIndex = 0
	s.ReviewMode = false
	s.ExitPrompt = false
	s.Result = nil
	s.TimeRemaining = e.doc.Settings.TimerSeconds
	s.Screen = ScreenInProgress
	e.startTimer()
	return e.Frame()
}

// leaveReview returns from read-only review to the result screen. The result
// summary is still on the session, so the completed frame renders as before.
func (e *Engine) leaveReview() {
	s := e.session
	s.ReviewMode = false
	s.Screen = ScreenCompleted
}

func (e *Engine) applyWentOnline() {
	s := e.session
	if !e.doc.Settings.OfflineOnly {
		return
	}
	switch s.Screen {
	case ScreenIdentityEntry, ScreenWelcome, ScreenInProgress, ScreenPreSubmitSummary:
		s.resumeScreen = s.Screen
		s.Screen = ScreenConnectivityBlocked
		e.stopTimer()
	}
}

func (e *Engine) applyWentOffline() {
	s := e.session
	if s.Screen != ScreenConnectivityBlocked {
		return
	}
	resume := s.resumeScreen
	if resume == "" {
		resume = e.entryScreen()
	}
	// Index and answers are untouched by the round trip.
	s.Screen = resume
	if resume == ScreenInProgress && !s.ReviewMode {
		e.startTimer()
	}
	if resume == ScreenWelcome {
		e.scheduleWelcomeAdvance()
	}
}

// complete is the completion event: stop the clock, record the attempt,
// score, report, land on the result screen.
func (e *Engine) complete(ctx context.Context) {
	s := e.session
	if s.Screen == ScreenCompleted {
		return
	}
	e.stopTimer()

	if e.doc.Settings.MaxAttempts > 0 {
		n, err := e.ledger.Increment(ctx, e.ledgerKey)
		if err != nil {
			// Count locally so retry limits still hold within this session.
			s.attempts++
			e.log.Warn().Err(err).Msg("attempt ledger increment failed")
		} else {
			s.attempts = n
		}
	}

	result := scoring.Score(e.doc, s.Answers)
	summary := e.reporter.Summarize(e.doc, s.StudentName, result)
	s.Result = &summary
	e.reporter.Dispatch(e.doc, s.StudentName, result, s.Answers)

	s.ExitPrompt = false
	s.ReviewMode = false
	s.Screen = ScreenCompleted
}

// MessageLink returns the teacher message handoff URL, or "" while no result
// exists. Opening it is always an explicit user action.
func (e *Engine) MessageLink() string {
	s := e.session
	if s.Result == nil {
		return ""
	}
	return report.ComposeWhatsApp(e.doc, s.StudentName, s.Result.Earned, s.Result.Possible)
}

// TranscriptText returns the plain-text transcript of the completed session,
// or "" while no result exists.
func (e *Engine) TranscriptText() string {
	s := e.session
	if s.Result == nil {
		return ""
	}
	return report.Transcript(e.doc, s.Answers, scoring.Score(e.doc, s.Answers))
}

// Stop releases the countdown goroutine. Call when the session ends for any
// reason, including transport disconnects.
func (e *Engine) Stop() {
	e.stopTimer()
}

func (e *Engine) startTimer() {
	if !e.doc.Settings.TimerEnabled || e.session.ReviewMode || e.session.TimeRemaining <= 0 {
		return
	}
	e.stopTimer()
	e.session.timerGen++
	e.timerActive = true
	if e.emit == nil {
		return // caller injects ticks itself
	}
	e.timer = startTicker(e.tickInterval, e.session.timerGen, e.selfEmit)
}

func (e *Engine) stopTimer() {
	e.timerActive = false
	if e.timer != nil {
		e.timer.halt()
		e.timer = nil
	}
}

func (e *Engine) selfEmit(ev Event) {
	if e.emit != nil {
		e.emit(ev)
	}
}

func (e *Engine) scheduleWelcomeAdvance() {
	d := e.doc.Settings.MessageDurationSeconds
	if d <= 0 {
		return
	}
	e.sched.After(time.Duration(d)*time.Second, func() {
		e.selfEmit(Event{Type: EvAutoAdvance})
	})
}

func (e *Engine) entryScreen() Screen {
	if e.doc.Settings.SkipNameEntry {
		return ScreenWelcome
	}
	return ScreenIdentityEntry
}

func (e *Engine) beforeWindow() bool {
	set := e.doc.Settings
	if !set.SchedulingEnabled || set.StartTime == "" {
		return false
	}
	start, err := time.Parse(time.RFC3339, set.StartTime)
	if err != nil {
		return false // malformed window is an authoring problem, never a crash
	}
	return e.clock().Before(start)
}

func (e *Engine) afterWindow() bool {
	set := e.doc.Settings
	if !set.SchedulingEnabled || set.EndTime == "" {
		return false
	}
	end, err := time.Parse(time.RFC3339, set.EndTime)
	if err != nil {
		return false
	}
	return e.clock().After(end)
}

func (e *Engine) questionByID(id string) *domain.Question {
	for i := range e.doc.Questions {
		if e.doc.Questions[i].ID == id {
			return &e.doc.Questions[i]
		}
	}
	return nil
}
