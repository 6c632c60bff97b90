package quiz_test

import (
	"errors"
	"testing"

	"github.com/VDAgency/RiskBotCrypto/internal/quiz"
)

func run(t *testing.T, opts ...quiz.Option) quiz.Progress {
	t.Helper()
	p := quiz.Begin()
	for i, o := range opts {
		var err error
		p, err = p.Advance(o)
		if err != nil {
			t.Fatalf("answer %d: unexpected error: %v", i+1, err)
		}
	}
	return p
}

func repeat(o quiz.Option) []quiz.Option {
	out := make([]quiz.Option, quiz.QuestionCount)
	for i := range out {
		out[i] = o
	}
	return out
}

func TestParseOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   quiz.Option
		wantOK bool
	}{
		{name: "latin a with label", input: "a) I want to sell everything", want: quiz.OptionA, wantOK: true},
		{name: "latin d uppercase", input: "D) Deep fundamental analysis", want: quiz.OptionD, wantOK: true},
		{name: "leading whitespace", input: "  c", want: quiz.OptionC, wantOK: true},
		{name: "cyrillic b", input: "б) Только минимальное", want: quiz.OptionB, wantOK: true},
		{name: "cyrillic g uppercase", input: "Г", want: quiz.OptionD, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "free text", input: "hello", wantOK: false},
		{name: "digit", input: "1) first", wantOK: false},
		{name: "e is not a marker", input: "e) other", wantOK: false},
		{name: "cancel button text", input: "Cancel", wantOK: false},
		{name: "word starting with d", input: "Deposit?", wantOK: false},
		{name: "word starting with b", input: "Back to menu", wantOK: false},
		{name: "cyrillic word starting with v", input: "Всё понятно", wantOK: false},
		{name: "marker with space", input: "a ) spaced", wantOK: false},
		{name: "bare marker with trailing space", input: "b  ", want: quiz.OptionB, wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := quiz.ParseOption(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ParseOption(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("ParseOption(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestOptionValues(t *testing.T) {
	t.Parallel()

	want := map[quiz.Option]int{quiz.OptionA: 1, quiz.OptionB: 2, quiz.OptionC: 3, quiz.OptionD: 4}
	for o, v := range want {
		if o.Value() != v {
			t.Errorf("%s.Value() = %d, want %d", o.Marker(), o.Value(), v)
		}
	}
}

func TestAdvanceWalksAllQuestions(t *testing.T) {
	t.Parallel()

	p := quiz.Begin()
	if p.Step != quiz.StepQ1 || p.Score != 0 {
		t.Fatalf("Begin() = %+v, want Q1 with zero score", p)
	}

	for i := 0; i < quiz.QuestionCount; i++ {
		q, ok := p.Question()
		if !ok {
			t.Fatalf("step %s has no question", p.Step)
		}
		if q.Number != i+1 {
			t.Fatalf("question number = %d, want %d", q.Number, i+1)
		}
		var err error
		p, err = p.Advance(quiz.OptionB)
		if err != nil {
			t.Fatalf("Advance at question %d: %v", i+1, err)
		}
	}

	if !p.Done() {
		t.Fatalf("expected complete after %d answers, got step %s", quiz.QuestionCount, p.Step)
	}
	if p.Score != 2*quiz.QuestionCount {
		t.Errorf("score = %d, want %d", p.Score, 2*quiz.QuestionCount)
	}
	if _, ok := p.Question(); ok {
		t.Error("complete progress should not have a question")
	}
}

func TestAdvanceRejectsNonQuestionSteps(t *testing.T) {
	t.Parallel()

	for _, step := range []quiz.Step{quiz.StepStart, quiz.StepComplete, quiz.Step(42)} {
		p := quiz.Progress{Step: step, Score: 9}
		next, err := p.Advance(quiz.OptionA)
		if !errors.Is(err, quiz.ErrNotAsking) {
			t.Errorf("step %s: err = %v, want ErrNotAsking", step, err)
		}
		if next != p {
			t.Errorf("step %s: progress changed to %+v", step, next)
		}
	}
}

func TestBeginResetsFromAnyStep(t *testing.T) {
	t.Parallel()

	for n := 0; n <= quiz.QuestionCount; n++ {
		p := run(t, repeat(quiz.OptionD)[:n]...)
		if n > 0 && p.Score == 0 {
			t.Fatalf("expected a score after %d answers", n)
		}
		restarted := quiz.Begin()
		if restarted.Step != quiz.StepQ1 || restarted.Score != 0 {
			t.Errorf("restart after %d answers = %+v", n, restarted)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  quiz.Category
	}{
		{7, quiz.Conservative},
		{13, quiz.Conservative},
		{14, quiz.Moderate},
		{21, quiz.Moderate},
		{22, quiz.Aggressive},
		{28, quiz.Aggressive},
	}
	for _, tc := range tests {
		if got := quiz.Classify(tc.score); got != tc.want {
			t.Errorf("Classify(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []quiz.Option
		wantScore int
		want      quiz.Category
	}{
		{name: "lowest option every time", opts: repeat(quiz.OptionA), wantScore: 7, want: quiz.Conservative},
		{name: "highest option every time", opts: repeat(quiz.OptionD), wantScore: 28, want: quiz.Aggressive},
		{
			name:      "mixed answers",
			opts:      []quiz.Option{quiz.OptionA, quiz.OptionB, quiz.OptionC, quiz.OptionD, quiz.OptionB, quiz.OptionB, quiz.OptionA},
			wantScore: 15,
			want:      quiz.Moderate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := run(t, tc.opts...)
			if !p.Done() {
				t.Fatalf("quiz not complete: %+v", p)
			}
			if p.Score != tc.wantScore {
				t.Errorf("score = %d, want %d", p.Score, tc.wantScore)
			}
			if got := quiz.Classify(p.Score); got != tc.want {
				t.Errorf("category = %s, want %s", got, tc.want)
			}
		})
	}
}

// Every combination of seven answers lands in [7, 28]; sampling all 4^7
// sequences is cheap enough to do exhaustively.
func TestScoreRangeExhaustive(t *testing.T) {
	t.Parallel()

	total := 1
	for i := 0; i < quiz.QuestionCount; i++ {
		total *= 4
	}
	for n := 0; n < total; n++ {
		p := quiz.Begin()
		code := n
		for i := 0; i < quiz.QuestionCount; i++ {
			var err error
			p, err = p.Advance(quiz.Option(code % 4))
			if err != nil {
				t.Fatalf("sequence %d: %v", n, err)
			}
			code /= 4
		}
		if p.Score < quiz.MinScore || p.Score > quiz.MaxScore {
			t.Fatalf("sequence %d: score %d out of range", n, p.Score)
		}
		want := quiz.Aggressive
		if p.Score <= 13 {
			want = quiz.Conservative
		} else if p.Score <= 21 {
			want = quiz.Moderate
		}
		if got := quiz.Classify(p.Score); got != want {
			t.Fatalf("sequence %d: Classify(%d) = %s, want %s", n, p.Score, got, want)
		}
	}
}

func TestQuestionsContent(t *testing.T) {
	t.Parallel()

	qs := quiz.Questions()
	if len(qs) != quiz.QuestionCount {
		t.Fatalf("len(Questions()) = %d, want %d", len(qs), quiz.QuestionCount)
	}
	for i, q := range qs {
		labels := q.Labels()
		for j, label := range labels {
			o, ok := quiz.ParseOption(label)
			if !ok || int(o) != j {
				t.Errorf("question %d label %q parses to %v/%v", i+1, label, o, ok)
			}
		}
	}
	for _, c := range []quiz.Category{quiz.Conservative, quiz.Moderate, quiz.Aggressive} {
		if c.Recommendation() == "" {
			t.Errorf("%s has no recommendation", c)
		}
	}
}
