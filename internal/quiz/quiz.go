// Package quiz implements the risk-profile questionnaire: a linear state
// machine over seven questions with additive scoring and a three-band
// classification of the final score.
package quiz

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNotAsking is returned when an answer is applied to a step that does not
// expect one (Start or Complete).
var ErrNotAsking = errors.New("quiz: current step does not expect an answer")

// Step is a position in the questionnaire.
type Step int

// Steps in order. StepQ1..StepQ7 are the question steps.
const (
	StepStart Step = iota
	StepQ1
	StepQ2
	StepQ3
	StepQ4
	StepQ5
	StepQ6
	StepQ7
	StepComplete
)

// QuestionCount is the number of question steps.
const QuestionCount = int(StepQ7 - StepQ1 + 1)

// IsQuestion reports whether the step expects an answer.
func (s Step) IsQuestion() bool {
	return s >= StepQ1 && s <= StepQ7
}

// Index returns the zero-based question index for a question step.
func (s Step) Index() (int, bool) {
	if !s.IsQuestion() {
		return 0, false
	}
	return int(s - StepQ1), true
}

func (s Step) String() string {
	switch {
	case s == StepStart:
		return "start"
	case s == StepComplete:
		return "complete"
	case s.IsQuestion():
		return "q" + string(rune('1'+int(s-StepQ1)))
	default:
		return "unknown"
	}
}

// Option is one of the four answer markers.
type Option int

// Answer options, worth 1..4 points respectively.
const (
	OptionA Option = iota
	OptionB
	OptionC
	OptionD
)

// Value returns the number of points the option adds to the score.
func (o Option) Value() int {
	return int(o) + 1
}

// Marker returns the Latin marker printed in front of the option text.
func (o Option) Marker() string {
	return string(rune('a' + int(o)))
}

var markers = map[rune]Option{
	'a': OptionA, 'b': OptionB, 'c': OptionC, 'd': OptionD,
	// Cyrillic markers used by the Russian edition of the questionnaire.
	'а': OptionA, 'б': OptionB, 'в': OptionC, 'г': OptionD,
}

// ParseOption extracts the option from a reply such as "b) Only minimal" or
// a bare marker such as "b". The marker must be followed by ")" or nothing;
// any other text, including words that merely start with a marker letter,
// is not an answer.
func ParseOption(text string) (Option, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(text)
	o, ok := markers[unicode.ToLower(r)]
	if !ok {
		return 0, false
	}
	if rest := text[size:]; rest != "" && !strings.HasPrefix(rest, ")") {
		return 0, false
	}
	return o, true
}

// Progress is the state of one user's run through the questionnaire.
type Progress struct {
	Step  Step `json:"step"`
	Score int  `json:"score"`
}

// Begin enters the Start state: any previous score is discarded and the
// first question becomes current.
func Begin() Progress {
	return Progress{Step: StepQ1, Score: 0}
}

// Advance applies an answer to the current question and returns the next
// progress. After the seventh answer the step is StepComplete.
func (p Progress) Advance(o Option) (Progress, error) {
	if !p.Step.IsQuestion() {
		return p, ErrNotAsking
	}
	if o < OptionA || o > OptionD {
		return p, errors.New("quiz: unknown option")
	}
	return Progress{Step: p.Step + 1, Score: p.Score + o.Value()}, nil
}

// Done reports whether all questions have been answered.
func (p Progress) Done() bool {
	return p.Step == StepComplete
}

// Question returns the question for the current step.
func (p Progress) Question() (Question, bool) {
	idx, ok := p.Step.Index()
	if !ok {
		return Question{}, false
	}
	return questions[idx], true
}
