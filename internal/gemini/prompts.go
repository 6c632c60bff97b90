package gemini

import (
	"fmt"
	"strings"
)

// AnswerDraftSystemInstruction is used when the configuration does not
// override the system instruction.
const AnswerDraftSystemInstruction = `You help the support team of a crypto trading bot service answer user questions.
Users have taken a seven-question risk profile quiz and were classified as Conservative, Moderate or Aggressive.

Write a short draft reply that an administrator will review before sending:
- Answer in the language of the question.
- Keep it under 120 words, plain text, no Markdown.
- Do not promise returns and do not give personalised financial advice.
- When the question needs account-specific details, say what the administrator should check.`

// FormatQuestionPrompt builds the user turn for an answer draft.
func FormatQuestionPrompt(question, category string) string {
	var sb strings.Builder
	if category != "" {
		fmt.Fprintf(&sb, "Risk profile: %s\n", category)
	} else {
		sb.WriteString("Risk profile: not determined\n")
	}
	sb.WriteString("Question:\n")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}
