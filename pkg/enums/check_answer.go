package enums

import "fmt"

// CheckAnswer is the three-way answer a wizard check step accepts. "no" and
// "needs_help" both leave the check unchecked; "needs_help" additionally
// raises an admin notification.
type CheckAnswer string

const (
	CheckAnswerYes       CheckAnswer = "yes"
	CheckAnswerNo        CheckAnswer = "no"
	CheckAnswerNeedsHelp CheckAnswer = "needs_help"
)

var validCheckAnswers = []CheckAnswer{
	CheckAnswerYes,
	CheckAnswerNo,
	CheckAnswerNeedsHelp,
}

// IsValid reports whether the value is a recognized answer.
func (c CheckAnswer) IsValid() bool {
	for _, candidate := range validCheckAnswers {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckAnswer converts raw input into CheckAnswer.
func ParseCheckAnswer(value string) (CheckAnswer, error) {
	for _, candidate := range validCheckAnswers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid check answer %q", value)
}
