package quiz

import "fmt"

// Question is one step of the questionnaire with its four answers in
// option order.
type Question struct {
	Number  int
	Text    string
	Answers [4]string
}

// Prompt returns the question text prefixed with its number.
func (q Question) Prompt() string {
	return fmt.Sprintf("%d️⃣ %s", q.Number, q.Text)
}

// Labels returns the answers as keyboard labels, e.g. "a) Only minimal".
func (q Question) Labels() []string {
	labels := make([]string, len(q.Answers))
	for i, a := range q.Answers {
		labels[i] = Option(i).Marker() + ") " + a
	}
	return labels
}

var questions = [QuestionCount]Question{
	{
		Number: 1,
		Text:   "How do you feel when an asset drops 30% in a short time?",
		Answers: [4]string{
			"I want to sell everything and leave the market",
			"I'm anxious but keep watching",
			"I understand this can happen",
			"I see an opportunity for a new entry",
		},
	},
	{
		Number: 2,
		Text:   "Have you ever had losses in crypto?",
		Answers: [4]string{
			"No, I'm just starting",
			"Yes, and it was very unpleasant",
			"Yes, and I drew conclusions",
			"Yes, and I take it as experience",
		},
	},
	{
		Number: 3,
		Text:   "How comfortable are you watching 10–30% volatility?",
		Answers: [4]string{
			"It stresses me out",
			"It makes me a little nervous",
			"I'm used to it and stay calm",
			"The higher the volatility, the more interesting",
		},
	},
	{
		Number: 4,
		Text:   "Have you ever bought an asset on emotion or FOMO?",
		Answers: [4]string{
			"Yes, regularly",
			"Sometimes, I try to hold back",
			"Rarely, mostly by plan",
			"No, always by analysis",
		},
	},
	{
		Number: 5,
		Text:   "How much crypto experience do you have?",
		Answers: [4]string{
			"Less than 6 months",
			"Up to 1 year",
			"1–2 years",
			"More than 2 years",
		},
	},
	{
		Number: 6,
		Text:   "How do you pick coins to invest in?",
		Answers: [4]string{
			"I follow the trend",
			"I look at the chart",
			"I analyse volatility and liquidity",
			"Deep fundamental analysis",
		},
	},
	{
		Number: 7,
		Text:   "How comfortable are you trading with borrowed funds (leverage)?",
		Answers: [4]string{
			"I don't use it and don't want to",
			"Only minimal leverage",
			"I use it and understand the risk",
			"I'm comfortable with high leverage",
		},
	},
}

// Questions returns a copy of the questionnaire in order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions[:])
	return out
}
