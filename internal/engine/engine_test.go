package engine

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/ledger"
	"quiz-delivery/internal/report"
)

// manualSched records scheduled callbacks so tests fire them deterministically.
type manualSched struct {
	fns []func()
}

func (m *manualSched) After(_ time.Duration, fn func()) { m.fns = append(m.fns, fn) }

func (m *manualSched) fire() {
	fns := m.fns
	m.fns = nil
	for _, fn := range fns {
		fn()
	}
}

// countingCue records audible cues.
type countingCue struct {
	ticks    int
	whistles int
}

func (c *countingCue) Tick()    { c.ticks++ }
func (c *countingCue) Whistle() { c.whistles++ }

type harness struct {
	engine *Engine
	ledger *ledger.MemoryLedger
	sched  *manualSched
	cue    *countingCue
	queue  []Event
}

func newHarness(t *testing.T, doc domain.Document) *harness {
	t.Helper()
	h := &harness{
		ledger: ledger.NewMemoryLedger(),
		sched:  &manualSched{},
		cue:    &countingCue{},
	}
	h.engine = New(doc, Deps{
		Ledger:   h.ledger,
		Reporter: report.NewReporter(nil, zerolog.Nop()),
		Cue:      h.cue,
		Sched:    h.sched,
		Clock:    func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		Emit:     func(ev Event) { h.queue = append(h.queue, ev) },
		Log:      zerolog.Nop(),
		// Ticks are injected by the tests; keep the background ticker idle.
		TickInterval: time.Hour,
	})
	return h
}

// drain applies every queued self-emitted event in arrival order.
func (h *harness) drain(t *testing.T) Frame {
	t.Helper()
	f := h.engine.Frame()
	for len(h.queue) > 0 {
		ev := h.queue[0]
		h.queue = h.queue[1:]
		f = h.engine.Apply(context.Background(), ev)
	}
	return f
}

func twoQuestionDoc() domain.Document {
	return domain.Document{
		ID: "doc-1",
		Settings: domain.Settings{
			Language: "en",
			Title:    "Unit 1 Quiz",
			Appearance: domain.Appearance{
				ShowSideColumn: true,
			},
		},
		Questions: []domain.Question{
			{ID: "q1", Type: domain.MultipleChoice, Text: "2+2?", Points: 1, Choices: []domain.Choice{
				{ID: "q1-a", Text: "3"}, {ID: "q1-b", Text: "4", Correct: true},
			}},
			{ID: "q2", Type: domain.MultipleChoice, Text: "3+3?", Points: 1, Choices: []domain.Choice{
				{ID: "q2-a", Text: "6", Correct: true}, {ID: "q2-b", Text: "7"},
			}},
		},
	}
}

func (h *harness) start(t *testing.T) Frame {
	t.Helper()
	return h.engine.Start(context.Background())
}

func (h *harness) apply(t *testing.T, ev Event) Frame {
	t.Helper()
	return h.engine.Apply(context.Background(), ev)
}

func TestInitialScreenIdentityEntry(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	f := h.start(t)
	if f.Screen != ScreenIdentityEntry {
		t.Fatalf("expected identity-entry, got %s", f.Screen)
	}
	if f.Identity == nil {
		t.Fatalf("identity screen must carry the prompt view")
	}
}

func TestInitialScreenWelcomeWhenNameSkipped(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.SkipNameEntry = true
	doc.Settings.WelcomeMessage = "Good luck!"
	h := newHarness(t, doc)
	f := h.start(t)
	if f.Screen != ScreenWelcome {
		t.Fatalf("expected welcome, got %s", f.Screen)
	}
	if f.Welcome == nil || f.Welcome.Message != "Good luck!" {
		t.Fatalf("expected welcome message, got %+v", f.Welcome)
	}
}

func TestInitialScreenNotYetAvailable(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.SchedulingEnabled = true
	doc.Settings.StartTime = "2024-06-01T13:00:00Z" // one hour after the fake clock
	h := newHarness(t, doc)
	if f := h.start(t); f.Screen != ScreenNotYetAvailable {
		t.Fatalf("expected not-yet-available, got %s", f.Screen)
	}
}

func TestInitialScreenExpired(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.SchedulingEnabled = true
	doc.Settings.EndTime = "2024-06-01T11:00:00Z"
	h := newHarness(t, doc)
	if f := h.start(t); f.Screen != ScreenExpired {
		t.Fatalf("expected expired, got %s", f.Screen)
	}
}

func TestInitialScreenAttemptsExhaustedWinsOverWindow(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.MaxAttempts = 1
	doc.Settings.SchedulingEnabled = true
	doc.Settings.StartTime = "2024-06-01T13:00:00Z"
	h := newHarness(t, doc)
	if _, err := h.ledger.Increment(context.Background(), ledger.Key(doc.Settings.Title)); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	if f := h.start(t); f.Screen != ScreenAttemptsExhausted {
		t.Fatalf("attempt gate must take precedence, got %s", f.Screen)
	}
}

func TestInitialScreenConnectivityBlocked(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.OfflineOnly = true
	h := newHarness(t, doc)
	h.engine.probe = StaticProbe(true)
	if f := h.start(t); f.Screen != ScreenConnectivityBlocked {
		t.Fatalf("expected connectivity-blocked, got %s", f.Screen)
	}
}

func TestEmptyNameIsRejectedWithoutTransition(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	f := h.apply(t, Event{Type: EvStart, Name: "   "})
	if f.Screen != ScreenIdentityEntry {
		t.Fatalf("empty name must not transition, got %s", f.Screen)
	}
	if f.Alert == "" {
		t.Fatalf("expected a validation message")
	}
	f = h.apply(t, Event{Type: EvStart, Name: " Alice "})
	if f.Screen != ScreenInProgress {
		t.Fatalf("expected in-progress after valid name, got %s", f.Screen)
	}
	if h.engine.Session().StudentName != "Alice" {
		t.Fatalf("name must be trimmed, got %q", h.engine.Session().StudentName)
	}
}

func TestNavigationClampsAtBounds(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	if f := h.apply(t, Event{Type: EvPrev}); f.Question.Index != 0 {
		t.Fatalf("prev at first question must be a no-op, got index %d", f.Question.Index)
	}
	if f := h.apply(t, Event{Type: EvNext}); f.Question.Index != 1 {
		t.Fatalf("expected index 1, got %d", f.Question.Index)
	}
	if f := h.apply(t, Event{Type: EvNext}); f.Question.Index != 1 {
		t.Fatalf("next at last question must be a no-op, got index %d", f.Question.Index)
	}
	if f := h.apply(t, Event{Type: EvJump, Index: 5}); f.Question.Index != 1 {
		t.Fatalf("out-of-range jump must be a no-op, got index %d", f.Question.Index)
	}
	if f := h.apply(t, Event{Type: EvJump, Index: 0}); f.Question.Index != 0 {
		t.Fatalf("expected jump to 0, got %d", f.Question.Index)
	}
}

func TestAnswerRoundTripAcrossNavigation(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	f := h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	if !f.Question.Choices[1].Selected {
		t.Fatalf("expected selection reflected immediately")
	}

	h.apply(t, Event{Type: EvNext})
	f = h.apply(t, Event{Type: EvPrev})
	if !f.Question.Choices[1].Selected {
		t.Fatalf("navigating away and back must return the captured answer")
	}

	// Picker reflects answered/unanswered state.
	if !f.Question.Picker[0].Answered || f.Question.Picker[1].Answered {
		t.Fatalf("unexpected picker state %+v", f.Question.Picker)
	}
}

func TestFinishListsMissingQuestions(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q2", Answer: domain.Answer{ChoiceID: "q2-a"}})

	f := h.apply(t, Event{Type: EvFinish})
	if f.Screen != ScreenPreSubmitSummary {
		t.Fatalf("expected pre-submit-summary, got %s", f.Screen)
	}
	if !reflect.DeepEqual(f.Summary.Missing, []int{1}) {
		t.Fatalf("expected question 1 listed missing, got %v", f.Summary.Missing)
	}

	// Going back loses nothing.
	f = h.apply(t, Event{Type: EvBack})
	if f.Screen != ScreenInProgress {
		t.Fatalf("expected in-progress after back, got %s", f.Screen)
	}
	if len(h.engine.Session().Answers) != 1 {
		t.Fatalf("answers must survive the summary round trip")
	}
}

func TestSubmitCompletesAndScores(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q2", Answer: domain.Answer{ChoiceID: "q2-a"}})
	h.apply(t, Event{Type: EvFinish})

	f := h.apply(t, Event{Type: EvSubmit})
	if f.Screen != ScreenCompleted {
		t.Fatalf("expected completed, got %s", f.Screen)
	}
	if f.Result == nil || f.Result.Earned != 2 || f.Result.Possible != 2 || f.Result.Percent != 100 {
		t.Fatalf("unexpected result %+v", f.Result)
	}
	if f.Result.Band.Label == "" {
		t.Fatalf("expected a feedback band")
	}
}

func TestUnlimitedAttemptsNeverExhaust(t *testing.T) {
	doc := twoQuestionDoc()
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	// With maxAttempts == 0 the ledger is never written and a fresh load
	// never lands on attempts-exhausted.
	if n, _ := h.ledger.Count(context.Background(), ledger.Key(doc.Settings.Title)); n != 0 {
		t.Fatalf("ledger must stay untouched for unlimited attempts, got %d", n)
	}
	h2 := newHarness(t, doc)
	h2.engine.ledger = h.ledger
	if f := h2.start(t); f.Screen == ScreenAttemptsExhausted {
		t.Fatalf("unlimited attempts must never exhaust")
	}
}

func TestSingleAttemptExhaustsAfterCompletion(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.MaxAttempts = 1
	shared := ledger.NewMemoryLedger()

	h := newHarness(t, doc)
	h.ledger = shared
	h.engine.ledger = shared
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	if n, _ := shared.Count(context.Background(), ledger.Key(doc.Settings.Title)); n != 1 {
		t.Fatalf("completion must increment the ledger exactly once, got %d", n)
	}

	// Retry on the same session is rejected.
	f := h.apply(t, Event{Type: EvRetry})
	if f.Screen != ScreenCompleted || f.Alert == "" {
		t.Fatalf("retry past the limit must be rejected with a message, got %s", f.Screen)
	}

	// A reload with the same storage computes attempts-exhausted.
	h2 := newHarness(t, doc)
	h2.engine.ledger = shared
	if f := h2.start(t); f.Screen != ScreenAttemptsExhausted {
		t.Fatalf("expected attempts-exhausted on reload, got %s", f.Screen)
	}
}

func TestRetryResetsRunButKeepsAnswers(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 100
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	h.apply(t, Event{Type: EvNext})
	h.apply(t, Event{Type: EvTick, Gen: h.engine.Session().timerGen})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	f := h.apply(t, Event{Type: EvRetry})
	s := h.engine.Session()
	if f.Screen != ScreenInProgress || s.CurrentIndex != 0 || s.ReviewMode {
		t.Fatalf("retry must restart at question 0 outside review, got %+v", s)
	}
	if s.TimeRemaining != 100 {
		t.Fatalf("retry must restore the full duration, got %d", s.TimeRemaining)
	}
	if len(s.Answers) != 1 {
		t.Fatalf("retry preserves captured answers, got %v", s.Answers)
	}
}

func TestReviewModeIsReadOnlyAndRevealsCorrectness(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 50
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-a"}})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	f := h.apply(t, Event{Type: EvReview})
	if f.Screen != ScreenInProgress || !f.Question.ReadOnly {
		t.Fatalf("review must render read-only in-progress frames")
	}
	// Correct choice marked positively, the wrong selection negatively.
	if !f.Question.Choices[1].MarkCorrect || !f.Question.Choices[0].MarkIncorrect {
		t.Fatalf("unexpected review marks %+v", f.Question.Choices)
	}
	if f.Timer != nil {
		t.Fatalf("no countdown in review mode")
	}

	// Answer capture is disabled.
	before := h.engine.Session().Answers["q1"]
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	if h.engine.Session().Answers["q1"] != before {
		t.Fatalf("review mode must not capture answers")
	}

	// Timer is frozen: ticks do not decrease remaining time.
	remaining := h.engine.Session().TimeRemaining
	h.apply(t, Event{Type: EvTick, Gen: h.engine.Session().timerGen})
	if h.engine.Session().TimeRemaining != remaining {
		t.Fatalf("time must be frozen in review mode")
	}
}

func TestReviewReturnsToResults(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	h.apply(t, Event{Type: EvReview})
	f := h.apply(t, Event{Type: EvBack})
	if f.Screen != ScreenCompleted || h.engine.Session().ReviewMode {
		t.Fatalf("back must leave review for the result screen, got %s", f.Screen)
	}
	if f.Result == nil {
		t.Fatalf("result summary must survive the review round trip")
	}

	// Retry and exit are reachable again after review.
	h.apply(t, Event{Type: EvReview})
	f = h.apply(t, Event{Type: EvFinish})
	if f.Screen != ScreenCompleted {
		t.Fatalf("finish must also leave review, got %s", f.Screen)
	}
	if f = h.apply(t, Event{Type: EvRetry}); f.Screen != ScreenInProgress {
		t.Fatalf("retry must work after review, got %s", f.Screen)
	}
}

func TestTimerCountdownForcesCompletion(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 5
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	gen := h.engine.Session().timerGen
	for i := 0; i < 5; i++ {
		before := h.engine.Session().TimeRemaining
		h.apply(t, Event{Type: EvTick, Gen: gen})
		if got := h.engine.Session().TimeRemaining; got != before-1 {
			t.Fatalf("tick %d: expected %d, got %d", i, before-1, got)
		}
	}
	if h.cue.whistles != 1 {
		t.Fatalf("expected one whistle at expiry, got %d", h.cue.whistles)
	}
	if h.cue.ticks != 4 {
		t.Fatalf("expected a cue per final-minute tick before expiry, got %d", h.cue.ticks)
	}
	if h.engine.Session().Screen != ScreenInProgress {
		t.Fatalf("completion waits for the grace delay")
	}

	h.sched.fire() // grace elapsed
	f := h.drain(t)
	if f.Screen != ScreenCompleted {
		t.Fatalf("expected completed after expiry, got %s", f.Screen)
	}
	if f.Result == nil {
		t.Fatalf("expiry completion must still produce a result")
	}
}

func TestTimerFreezesOutsideInProgress(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 30
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvFinish})

	gen := h.engine.Session().timerGen
	h.apply(t, Event{Type: EvTick, Gen: gen})
	if got := h.engine.Session().TimeRemaining; got != 30 {
		t.Fatalf("time must be frozen on the summary screen, got %d", got)
	}

	// Ticks resume after going back.
	h.apply(t, Event{Type: EvBack})
	h.apply(t, Event{Type: EvTick, Gen: gen})
	if got := h.engine.Session().TimeRemaining; got != 29 {
		t.Fatalf("time must resume in progress, got %d", got)
	}
}

func TestExpiryForcesCompletionFromSummary(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 1
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	gen := h.engine.Session().timerGen
	h.apply(t, Event{Type: EvTick, Gen: gen}) // reaches zero, grace scheduled

	// Ducking onto the summary during the grace must not shelter the run.
	h.apply(t, Event{Type: EvFinish})
	h.sched.fire()
	f := h.drain(t)
	if f.Screen != ScreenCompleted {
		t.Fatalf("expiry must complete even from the summary, got %s", f.Screen)
	}

	// And no further events reopen the run without a retry.
	if f := h.apply(t, Event{Type: EvBack}); f.Screen != ScreenCompleted {
		t.Fatalf("completed run must stay completed, got %s", f.Screen)
	}
}

func TestExpiryForcesCompletionFromConnectivityBlocked(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 1
	doc.Settings.OfflineOnly = true
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	gen := h.engine.Session().timerGen
	h.apply(t, Event{Type: EvTick, Gen: gen})
	h.apply(t, Event{Type: EvWentOnline}) // blocked during the grace

	h.sched.fire()
	f := h.drain(t)
	if f.Screen != ScreenCompleted {
		t.Fatalf("expiry must complete even while connectivity-blocked, got %s", f.Screen)
	}
}

func TestStaleTickIsDropped(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 30
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	staleGen := h.engine.Session().timerGen
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})
	h.apply(t, Event{Type: EvRetry}) // new generation

	remaining := h.engine.Session().TimeRemaining
	h.apply(t, Event{Type: EvTick, Gen: staleGen})
	if h.engine.Session().TimeRemaining != remaining {
		t.Fatalf("a tick from a stopped countdown must be ignored")
	}
}

func TestTimerWarningThreshold(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TimerEnabled = true
	doc.Settings.TimerSeconds = 301
	h := newHarness(t, doc)
	h.start(t)
	f := h.apply(t, Event{Type: EvStart, Name: "Alice"})
	if f.Timer == nil || f.Timer.Warning {
		t.Fatalf("expected calm timer at 301s, got %+v", f.Timer)
	}
	f = h.apply(t, Event{Type: EvTick, Gen: h.engine.Session().timerGen})
	if f.Timer.Display != "05:00" || !f.Timer.Warning {
		t.Fatalf("expected warning at 300s, got %+v", f.Timer)
	}
}

func TestWelcomeAutoAdvanceFiresOnce(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.SkipNameEntry = true
	doc.Settings.MessageDurationSeconds = 5
	h := newHarness(t, doc)
	h.start(t)

	if len(h.sched.fns) != 1 {
		t.Fatalf("expected one scheduled auto-advance, got %d", len(h.sched.fns))
	}

	// The user advances manually first.
	f := h.apply(t, Event{Type: EvStart})
	if f.Screen != ScreenInProgress {
		t.Fatalf("expected in-progress, got %s", f.Screen)
	}
	if h.engine.Session().StudentName != "Guest" {
		t.Fatalf("skipped identity must use the guest placeholder")
	}
	idx := h.engine.Session().CurrentIndex

	// The delayed auto-advance then fires and must be a no-op.
	h.sched.fire()
	h.drain(t)
	if h.engine.Session().Screen != ScreenInProgress || h.engine.Session().CurrentIndex != idx {
		t.Fatalf("late auto-advance must not disturb the session")
	}
}

func TestConnectivityRoundTripKeepsProgress(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.OfflineOnly = true
	h := newHarness(t, doc)
	h.start(t) // probe reports offline, so entry proceeds normally
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	h.apply(t, Event{Type: EvNext})

	f := h.apply(t, Event{Type: EvWentOnline})
	if f.Screen != ScreenConnectivityBlocked {
		t.Fatalf("expected connectivity-blocked, got %s", f.Screen)
	}

	f = h.apply(t, Event{Type: EvWentOffline})
	if f.Screen != ScreenInProgress {
		t.Fatalf("expected return to in-progress, got %s", f.Screen)
	}
	s := h.engine.Session()
	if s.CurrentIndex != 1 || len(s.Answers) != 1 {
		t.Fatalf("re-entry must not reset index or answers, got %+v", s)
	}
}

func TestExitRequiresConfirmation(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	f := h.apply(t, Event{Type: EvExitRequest})
	if f.Screen != ScreenCompleted || f.Confirm == nil {
		t.Fatalf("exit must first prompt for confirmation")
	}

	f = h.apply(t, Event{Type: EvExitCancel})
	if f.Screen != ScreenCompleted || f.Confirm != nil {
		t.Fatalf("cancel must dismiss the prompt and stay on completed")
	}

	h.apply(t, Event{Type: EvExitRequest})
	f = h.apply(t, Event{Type: EvExitConfirm})
	if f.Screen != ScreenExited {
		t.Fatalf("expected exited after confirmation, got %s", f.Screen)
	}

	// Exited is terminal.
	if f := h.apply(t, Event{Type: EvRetry}); f.Screen != ScreenExited {
		t.Fatalf("exited must be terminal, got %s", f.Screen)
	}
}

func TestFocusLossIsPresentationOnly(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.PreventScreenshot = true
	doc.Settings.PreventSplitScreen = true
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	f := h.apply(t, Event{Type: EvFocusLost})
	if f.Screen != ScreenInProgress {
		t.Fatalf("focus loss must never transition")
	}
	if !f.Blurred || f.Alert == "" {
		t.Fatalf("expected blur and warning, got blurred=%v alert=%q", f.Blurred, f.Alert)
	}

	f = h.apply(t, Event{Type: EvFocusGained})
	if f.Blurred || f.Alert != "" {
		t.Fatalf("focus return must clear the presentation flags")
	}
}

func TestFrameRenderIsIdempotent(t *testing.T) {
	h := newHarness(t, twoQuestionDoc())
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})
	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})

	first := h.engine.Frame()
	second := h.engine.Frame()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-rendering the same state must be identical:\n%+v\n%+v", first, second)
	}
}

func TestMessageLinkAndTranscriptRequireCompletion(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Settings.TeacherWhatsApp = "+201005550000"
	h := newHarness(t, doc)
	h.start(t)
	h.apply(t, Event{Type: EvStart, Name: "Alice"})

	if h.engine.MessageLink() != "" || h.engine.TranscriptText() != "" {
		t.Fatalf("handoffs must be unavailable before completion")
	}

	h.apply(t, Event{Type: EvAnswer, QuestionID: "q1", Answer: domain.Answer{ChoiceID: "q1-b"}})
	h.apply(t, Event{Type: EvFinish})
	h.apply(t, Event{Type: EvSubmit})

	if h.engine.MessageLink() == "" {
		t.Fatalf("expected a message link after completion")
	}
	if h.engine.TranscriptText() == "" {
		t.Fatalf("expected a transcript after completion")
	}
}
