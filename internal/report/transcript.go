package report

import (
	"fmt"
	"strings"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/i18n"
	"quiz-delivery/internal/scoring"
)

// Transcript renders the full plain-text record of a completed session:
// every question, the captured answer and its verdict. The caller decides
// whether to offer it as a download; building it has no side effects.
func Transcript(doc domain.Document, answers map[string]domain.Answer, result scoring.Result) string {
	strs := i18n.For(doc.Settings.Language)
	verdicts := make(map[string]scoring.QuestionResult, len(result.Questions))
	for _, qr := range result.Questions {
		verdicts[qr.QuestionID] = qr
	}

	var b strings.Builder
	b.WriteString(doc.Settings.Title + "\n")
	fmt.Fprintf(&b, "%s: %s / %s (%d%%)\n\n",
		strs.ScoreLabel, FormatPoints(result.Earned), FormatPoints(result.Possible), result.Percent)

	for i, q := range doc.Questions {
		fmt.Fprintf(&b, "%d) %s\n", i+1, q.Text)
		fmt.Fprintf(&b, "   %s\n", answerText(q, answers[q.ID], strs))

		qr := verdicts[q.ID]
		switch {
		case !qr.Answered:
			fmt.Fprintf(&b, "   [%s]\n", strs.NoAnswer)
		case !qr.AutoScored:
			fmt.Fprintf(&b, "   [%s]\n", strs.NotAutoScored)
		case qr.Correct:
			fmt.Fprintf(&b, "   [%s]\n", strs.CorrectAnswer)
		default:
			fmt.Fprintf(&b, "   [%s]\n", strs.IncorrectAnswer)
		}
	}
	return b.String()
}

// answerText resolves a captured answer to human-readable text: the selected
// choice's text for single-select types, the raw text otherwise.
func answerText(q domain.Question, ans domain.Answer, strs i18n.Bundle) string {
	if ans.Empty() {
		return strs.NoAnswer
	}
	if ans.ChoiceID != "" {
		for _, c := range q.Choices {
			if c.ID == ans.ChoiceID {
				return c.Text
			}
		}
		return ans.ChoiceID
	}
	return ans.Text
}
