package domain

// QuestionType enumerates the kinds of questions an author can put in a document.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	FillBlank      QuestionType = "fill-blank"
	Essay          QuestionType = "essay"
	Matching       QuestionType = "matching"
	Other          QuestionType = "other"
)

// AutoScored reports whether the runtime can grade this question type itself.
// Essay, matching and "other" are graded by the teacher, not the runtime.
func (t QuestionType) AutoScored() bool {
	switch t {
	case MultipleChoice, TrueFalse, FillBlank:
		return true
	}
	return false
}

// Choice is one possible answer inside a question.
type Choice struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Correct   bool   `json:"isCorrect"`
	Image     string `json:"image,omitempty"`
	MatchText string `json:"matchText,omitempty"` // matching-type questions only
}

// Question is a single authored question. Choice order is significant.
type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Image   string       `json:"image,omitempty"`
	Points  float64      `json:"points"`
	Choices []Choice     `json:"choices"`
}

// CorrectChoice returns the first choice flagged correct, or nil.
func (q Question) CorrectChoice() *Choice {
	for i := range q.Choices {
		if q.Choices[i].Correct {
			return &q.Choices[i]
		}
	}
	return nil
}

// Appearance carries the author's cosmetic settings. The engine only consults
// ShowSideColumn (whether frames include the question picker); everything else
// is passed through to renderers untouched.
type Appearance struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	AnswerBoxBg     string `json:"answerBoxBg,omitempty"`
	AnswerTextColor string `json:"answerTextColor,omitempty"`
	SelectedColor   string `json:"selectedColor,omitempty"`
	ShowSideColumn  bool   `json:"showSideColumn"`
}

// CloudConfig configures the best-effort grade sync.
type CloudConfig struct {
	SyncGrades bool   `json:"syncGrades"`
	URL        string `json:"cloudUrl,omitempty"`
}

// Settings is the per-quiz configuration authored alongside the questions.
type Settings struct {
	Language               string      `json:"language"` // "ar" or "en"
	Title                  string      `json:"title"`
	TimerEnabled           bool        `json:"timerEnabled"`
	TimerSeconds           int         `json:"timerSeconds"`
	TeacherWhatsApp        string      `json:"teacherWhatsApp,omitempty"`
	SkipNameEntry          bool        `json:"skipNameEntry"`
	WelcomeMessage         string      `json:"welcomeMessage,omitempty"`
	MessageDurationSeconds int         `json:"messageDuration"` // welcome auto-advance; 0 disables
	MaxAttempts            int         `json:"maxAttempts"`     // 0 means unlimited
	Appearance             Appearance  `json:"appearance"`
	Cloud                  CloudConfig `json:"cloudConfig"`
	SchedulingEnabled      bool        `json:"schedulingEnabled"`
	StartTime              string      `json:"startTime,omitempty"` // RFC 3339
	EndTime                string      `json:"endTime,omitempty"`   // RFC 3339
	PreventSplitScreen     bool        `json:"preventSplitScreen"`
	PreventScreenshot      bool        `json:"preventScreenshot"`
	OfflineOnly            bool        `json:"offlineMode"`
	DesignerName           string      `json:"designerName,omitempty"`
	DesignerLogo           string      `json:"designerLogo,omitempty"`
}

// Document is the immutable configuration the authoring side exports.
// The runtime never mutates it; all session data lives elsewhere.
type Document struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
	Settings  Settings   `json:"settings"`
}

// Answer is one captured response. ChoiceID is set for single-select types,
// Text (with an optional attached image) for free-text types.
type Answer struct {
	ChoiceID string `json:"choiceId,omitempty"`
	Text     string `json:"text,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Empty reports whether the answer counts as "unanswered".
func (a Answer) Empty() bool { return a.ChoiceID == "" && a.Text == "" }
