package scoring

import (
	"math"
	"strings"

	"quiz-delivery/internal/domain"
)

// QuestionResult is the graded outcome for one question.
type QuestionResult struct {
	QuestionID string  `json:"questionId"`
	Answered   bool    `json:"answered"`
	AutoScored bool    `json:"autoScored"`
	Correct    bool    `json:"correct"`
	Earned     float64 `json:"earned"`
	Possible   float64 `json:"possible"`
}

// Result is the full graded outcome of a session.
type Result struct {
	Earned    float64          `json:"earned"`
	Possible  float64          `json:"possible"`
	Percent   int              `json:"percent"`
	Questions []QuestionResult `json:"questions"`
}

// Score grades captured answers against the document. It is a pure function:
// same inputs, same result, no side effects.
//
// Essay, matching and "other" questions cannot be earned automatically but
// their points stay in the denominator, matching the authoring tool's
// historical grading. A scored-type question without a correct choice is
// degraded to unscored rather than failing.
func Score(doc domain.Document, answers map[string]domain.Answer) Result {
	res := Result{Questions: make([]QuestionResult, 0, len(doc.Questions))}

	for _, q := range doc.Questions {
		ans, answered := answers[q.ID]
		if answered && ans.Empty() {
			answered = false
		}
		qr := QuestionResult{
			QuestionID: q.ID,
			Answered:   answered,
			Possible:   q.Points,
		}

		switch q.Type {
		case domain.MultipleChoice, domain.TrueFalse:
			if correct := q.CorrectChoice(); correct != nil {
				qr.AutoScored = true
				qr.Correct = answered && ans.ChoiceID == correct.ID
			}
		case domain.FillBlank:
			if len(q.Choices) > 0 {
				qr.AutoScored = true
				qr.Correct = answered && textMatch(ans.Text, q.Choices[0].Text)
			}
		}

		if qr.Correct {
			qr.Earned = q.Points
		}
		res.Earned += qr.Earned
		res.Possible += q.Points
		res.Questions = append(res.Questions, qr)
	}

	res.Percent = percent(res.Earned, res.Possible)
	return res
}

// textMatch compares free-text answers case-insensitively after trimming
// surrounding whitespace.
func textMatch(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}

func percent(earned, possible float64) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(100 * earned / possible))
}
