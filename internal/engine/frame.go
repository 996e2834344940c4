package engine

import (
	"fmt"
	"math"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/i18n"
	"quiz-delivery/internal/report"
)

// Frame is the complete renderable view of a session at one instant. Frames
// are pure functions of (document, session): rendering the same pair twice
// yields identical frames.
type Frame struct {
	Screen    Screen            `json:"screen"`
	Title     string            `json:"title"`
	Direction string            `json:"direction"`
	Language  string            `json:"language"`
	Blurred   bool              `json:"blurred,omitempty"`
	Message   string            `json:"message,omitempty"`
	Alert     string            `json:"alert,omitempty"`
	Confirm   *ConfirmView      `json:"confirm,omitempty"`
	Identity  *IdentityView     `json:"identity,omitempty"`
	Welcome   *WelcomeView      `json:"welcome,omitempty"`
	Question  *QuestionView     `json:"question,omitempty"`
	Summary   *SummaryView      `json:"summary,omitempty"`
	Result    *report.Summary   `json:"result,omitempty"`
	Timer     *TimerView        `json:"timer,omitempty"`
	Branding  *BrandingView     `json:"branding,omitempty"`
	Style     domain.Appearance `json:"style"`
	// Strings is the full localized label set, so renderers never hardcode
	// button or prompt text.
	Strings i18n.Bundle `json:"strings"`
}

// ConfirmView is a yes/cancel prompt blocking a destructive action.
type ConfirmView struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Yes    string `json:"yes"`
	Cancel string `json:"cancel"`
}

type IdentityView struct {
	Prompt      string `json:"prompt"`
	Placeholder string `json:"placeholder"`
	Action      string `json:"action"`
}

type WelcomeView struct {
	Message string `json:"message"`
	Action  string `json:"action"`
}

// QuestionView renders one question with its captured answer state.
type QuestionView struct {
	Index      int                 `json:"index"`
	Counter    string              `json:"counter"`
	Progress   int                 `json:"progress"`
	Text       string              `json:"text"`
	Image      string              `json:"image,omitempty"`
	Type       domain.QuestionType `json:"type"`
	Choices    []ChoiceView        `json:"choices,omitempty"`
	TextAnswer string              `json:"textAnswer,omitempty"`
	ReadOnly   bool                `json:"readOnly"`
	IsFirst    bool                `json:"isFirst"`
	IsLast     bool                `json:"isLast"`
	Picker     []PickerItem        `json:"picker,omitempty"`
}

// ChoiceView is one selectable answer. The correctness marks are populated
// only in review mode.
type ChoiceView struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Image         string `json:"image,omitempty"`
	Selected      bool   `json:"selected"`
	MarkCorrect   bool   `json:"markCorrect,omitempty"`
	MarkIncorrect bool   `json:"markIncorrect,omitempty"`
}

// PickerItem is one cell in the question-picker side column.
type PickerItem struct {
	Number   int  `json:"number"`
	Answered bool `json:"answered"`
	Current  bool `json:"current"`
}

// SummaryView is the pre-submit listing of unanswered questions.
type SummaryView struct {
	Title       string `json:"title"`
	Missing     []int  `json:"missing,omitempty"` // 1-based question numbers
	AllAnswered bool   `json:"allAnswered"`
}

type TimerView struct {
	Display string `json:"display"` // mm:ss
	Warning bool   `json:"warning"`
}

type BrandingView struct {
	Name string `json:"name,omitempty"`
	Logo string `json:"logo,omitempty"`
}

// buildFrame renders the current session. It never mutates anything.
func buildFrame(doc domain.Document, s *Session, strs i18n.Bundle) Frame {
	f := Frame{
		Screen:    s.Screen,
		Title:     doc.Settings.Title,
		Direction: i18n.Direction(doc.Settings.Language),
		Language:  doc.Settings.Language,
		Blurred:   s.Blurred,
		Style:     doc.Settings.Appearance,
		Strings:   strs,
	}
	if doc.Settings.DesignerName != "" || doc.Settings.DesignerLogo != "" {
		f.Branding = &BrandingView{Name: doc.Settings.DesignerName, Logo: doc.Settings.DesignerLogo}
	}
	if s.FocusWarning {
		f.Alert = strs.SecurityWarning + ": " + strs.FocusLostMessage
	}

	switch s.Screen {
	case ScreenNotYetAvailable:
		f.Message = strs.NotYetAvailable
	case ScreenExpired:
		f.Message = strs.Expired
	case ScreenAttemptsExhausted:
		f.Message = strs.AttemptsReached
	case ScreenConnectivityBlocked:
		f.Message = strs.OfflineWarning
	case ScreenIdentityEntry:
		f.Identity = &IdentityView{Prompt: strs.EnterName, Placeholder: strs.StudentName, Action: strs.EnterTest}
	case ScreenWelcome:
		f.Welcome = &WelcomeView{Message: doc.Settings.WelcomeMessage, Action: strs.EnterTest}
	case ScreenInProgress:
		f.Question = questionView(doc, s)
		if doc.Settings.TimerEnabled && !s.ReviewMode {
			f.Timer = &TimerView{Display: clockFace(s.TimeRemaining), Warning: s.TimeRemaining <= warningThreshold}
		}
	case ScreenPreSubmitSummary:
		f.Summary = summaryView(doc, s, strs)
	case ScreenCompleted:
		f.Result = s.Result
		if s.ExitPrompt {
			f.Confirm = &ConfirmView{Title: strs.ConfirmExit, Body: strs.ConfirmExitMsg, Yes: strs.Yes, Cancel: strs.Cancel}
		}
	case ScreenExited:
		f.Message = strs.ExitTip
	}
	return f
}

func questionView(doc domain.Document, s *Session) *QuestionView {
	total := len(doc.Questions)
	if total == 0 || s.CurrentIndex < 0 || s.CurrentIndex >= total {
		return nil
	}
	q := doc.Questions[s.CurrentIndex]
	ans := s.Answers[q.ID]

	qv := &QuestionView{
		Index:      s.CurrentIndex,
		Counter:    fmt.Sprintf("%d / %d", s.CurrentIndex+1, total),
		Progress:   int(math.Round(100 * float64(s.CurrentIndex+1) / float64(total))),
		Text:       q.Text,
		Image:      q.Image,
		Type:       q.Type,
		TextAnswer: ans.Text,
		ReadOnly:   s.ReviewMode,
		IsFirst:    s.CurrentIndex == 0,
		IsLast:     s.CurrentIndex == total-1,
	}

	for _, c := range q.Choices {
		cv := ChoiceView{
			ID:       c.ID,
			Text:     c.Text,
			Image:    c.Image,
			Selected: ans.ChoiceID == c.ID,
		}
		if s.ReviewMode && q.Type.AutoScored() {
			cv.MarkCorrect = c.Correct
			cv.MarkIncorrect = cv.Selected && !c.Correct
		}
		qv.Choices = append(qv.Choices, cv)
	}

	if doc.Settings.Appearance.ShowSideColumn {
		qv.Picker = make([]PickerItem, 0, total)
		for i, question := range doc.Questions {
			a, ok := s.Answers[question.ID]
			qv.Picker = append(qv.Picker, PickerItem{
				Number:   i + 1,
				Answered: ok && !a.Empty(),
				Current:  i == s.CurrentIndex,
			})
		}
	}
	return qv
}

func summaryView(doc domain.Document, s *Session, strs i18n.Bundle) *SummaryView {
	sv := &SummaryView{Title: strs.SummaryTitle}
	for i, q := range doc.Questions {
		if a, ok := s.Answers[q.ID]; !ok || a.Empty() {
			sv.Missing = append(sv.Missing, i+1)
		}
	}
	sv.AllAnswered = len(sv.Missing) == 0
	return sv
}

// clockFace formats seconds as mm:ss, clamping at zero.
func clockFace(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
