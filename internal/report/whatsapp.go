package report

import (
	"net/url"
	"strings"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/i18n"
)

// ComposeWhatsApp builds the wa.me deep link that pre-fills the teacher
// message with the quiz title, student name and score. Returns "" when no
// teacher number is configured; the handoff is user-triggered, never automatic.
func ComposeWhatsApp(doc domain.Document, student string, earned, possible float64) string {
	phone := digitsOnly(doc.Settings.TeacherWhatsApp)
	if phone == "" {
		return ""
	}
	strs := i18n.For(doc.Settings.Language)

	var b strings.Builder
	b.WriteString(strs.QuizLabel + ": " + doc.Settings.Title + "\n")
	b.WriteString(strs.StudentLabel + ": " + student + "\n")
	b.WriteString(strs.ScoreLabel + ": " + FormatPoints(earned) + " / " + FormatPoints(possible))

	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(b.String())
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
