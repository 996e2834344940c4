// Package report formats and dispatches the outcome of a completed session:
// the local result summary, the best-effort grade sync, the teacher message
// handoff and the plain-text transcript.
package report

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/i18n"
	"quiz-delivery/internal/scoring"
)

// Band is one of the five qualitative feedback bands. Thresholds are fixed
// constants, independent of the document.
type Band struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// BandFor maps a percentage to its feedback band.
func BandFor(percent int, strings i18n.Feedback) Band {
	switch {
	case percent >= 90:
		return Band{Label: strings.Excellent, Color: "#27ae60"}
	case percent >= 75:
		return Band{Label: strings.VeryGood, Color: "#2ecc71"}
	case percent >= 60:
		return Band{Label: strings.Good, Color: "#f1c40f"}
	case percent >= 50:
		return Band{Label: strings.Fair, Color: "#e67e22"}
	default:
		return Band{Label: strings.Poor, Color: "#e74c3c"}
	}
}

// Summary is the locally rendered result of one completed session.
type Summary struct {
	Student   string                   `json:"student"`
	QuizTitle string                   `json:"quiz"`
	Earned    float64                  `json:"earned"`
	Possible  float64                  `json:"possible"`
	Percent   int                      `json:"percent"`
	Band      Band                     `json:"band"`
	Questions []scoring.QuestionResult `json:"questions"`
}

// Reporter produces summaries and dispatches the optional side effects.
// Every side effect is independently best-effort; none blocks another.
type Reporter struct {
	sync *Syncer
	log  zerolog.Logger
}

func NewReporter(sync *Syncer, log zerolog.Logger) *Reporter {
	return &Reporter{sync: sync, log: log.With().Str("component", "reporter").Logger()}
}

// Summarize builds the local result summary for a scored session.
func (r *Reporter) Summarize(doc domain.Document, student string, result scoring.Result) Summary {
	strings := i18n.For(doc.Settings.Language)
	return Summary{
		Student:   student,
		QuizTitle: doc.Settings.Title,
		Earned:    result.Earned,
		Possible:  result.Possible,
		Percent:   result.Percent,
		Band:      BandFor(result.Percent, strings.Feedback),
		Questions: result.Questions,
	}
}

// Dispatch fires the grade sync when the document asks for one. It returns
// immediately; the completion transition never waits on the network.
func (r *Reporter) Dispatch(doc domain.Document, student string, result scoring.Result, answers map[string]domain.Answer) {
	cloud := doc.Settings.Cloud
	if !cloud.SyncGrades || cloud.URL == "" || r.sync == nil {
		return
	}
	payload := SyncPayload{
		Student:   student,
		Score:     result.Earned,
		Total:     result.Possible,
		Quiz:      doc.Settings.Title,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Answers:   answers,
	}
	go func() {
		if err := r.sync.Send(cloud.URL, payload); err != nil {
			// Never surfaced to the test-taker, never retried.
			r.log.Warn().Err(err).Str("quiz", doc.Settings.Title).Msg("grade sync failed")
		}
	}()
}

// FormatPoints renders a point value without a trailing ".0" for whole numbers.
func FormatPoints(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
