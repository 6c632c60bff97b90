package handlers

import (
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/config"
	"github.com/VDAgency/RiskBotCrypto/internal/quiz"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
)

// Callback data values.
const (
	CallbackConsentPolicy  = "consent_policy"
	CallbackConsentOffer   = "consent_offer"
	CallbackConsentAccept  = "consent_accept"
	CallbackDownloadGuide  = "download_guide"
	CallbackRestartQuiz    = "restart_quiz"
	CallbackAskQuestion    = "ask_question"
	CallbackAdminStats     = "admin_stats"
	CallbackAdminUserInfo  = "admin_user_info"
	CallbackAdminQuestions = "admin_questions"
	CallbackAdminBack      = "admin_back"
)

func checkbox(checked bool, label string) string {
	if checked {
		return "✅ " + label
	}
	return "⬜ " + label
}

func consentKeyboard(state session.State, msgs config.MessagesConfig) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	if msgs.PolicyURL != "" {
		rows = append(rows, []models.InlineKeyboardButton{{Text: msgs.PolicyLinkButton, URL: msgs.PolicyURL}})
	}
	if msgs.OfferURL != "" {
		rows = append(rows, []models.InlineKeyboardButton{{Text: msgs.OfferLinkButton, URL: msgs.OfferURL}})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: checkbox(state.PolicyChecked, msgs.PolicyToggle), CallbackData: CallbackConsentPolicy}},
		[]models.InlineKeyboardButton{{Text: checkbox(state.OfferChecked, msgs.OfferToggle), CallbackData: CallbackConsentOffer}},
		[]models.InlineKeyboardButton{{Text: msgs.ConsentAcceptButton, CallbackData: CallbackConsentAccept}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// questionKeyboard shows one answer per row. It hides itself after a tap so
// the next question brings its own keyboard.
func questionKeyboard(q quiz.Question) *models.ReplyKeyboardMarkup {
	labels := q.Labels()
	rows := make([][]models.KeyboardButton, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []models.KeyboardButton{{Text: label}})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func resultKeyboard(msgs config.MessagesConfig) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: msgs.GuideButton, CallbackData: CallbackDownloadGuide}},
		{{Text: msgs.RestartButton, CallbackData: CallbackRestartQuiz}},
	}}
}

func helpKeyboard(msgs config.MessagesConfig) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: msgs.AskButton, CallbackData: CallbackAskQuestion}},
	}}
}

func cancelKeyboard(msgs config.MessagesConfig) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:       [][]models.KeyboardButton{{{Text: msgs.CancelButton}}},
		ResizeKeyboard: true,
	}
}

func removeKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}

func adminMenuKeyboard(msgs config.MessagesConfig) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: msgs.StatsButton, CallbackData: CallbackAdminStats}},
		{{Text: msgs.UserInfoButton, CallbackData: CallbackAdminUserInfo}},
		{{Text: msgs.OpenQuestionsButton, CallbackData: CallbackAdminQuestions}},
	}}
}

func backKeyboard(msgs config.MessagesConfig) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: msgs.BackButton, CallbackData: CallbackAdminBack}},
	}}
}
