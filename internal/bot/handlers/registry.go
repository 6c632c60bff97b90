package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
	"github.com/VDAgency/RiskBotCrypto/internal/ticket"
)

// RegisterAllHandlers initializes and returns a map of all command and
// callback handlers. Free text is not registered here; it reaches
// NewDefaultHandler.
func RegisterAllHandlers(deps HandlerDeps) map[string]telegram.RegisteredHandler {
	handlers := make(map[string]telegram.RegisteredHandler)

	command := func(name string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers["/"+name] = telegram.RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  mw,
		}
	}
	callback := func(data string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers[data] = telegram.RegisteredHandler{
			HandlerType: tgbot.HandlerTypeCallbackQueryData,
			Pattern:     data,
			Handler:     h,
			MatchType:   tgbot.MatchTypeExact,
			Middleware:  mw,
		}
	}

	command("start", NewStartHandler(deps))
	command("help", NewHelpHandler(deps))

	consent := NewConsentHandler(deps)
	callback(CallbackConsentPolicy, consent)
	callback(CallbackConsentOffer, consent)
	callback(CallbackConsentAccept, consent)
	callback(CallbackDownloadGuide, NewDownloadGuideHandler(deps))
	callback(CallbackRestartQuiz, NewRestartQuizHandler(deps))
	callback(CallbackAskQuestion, NewAskQuestionHandler(deps))

	adminOnly := AdminOnly(deps)
	questions := NewQuestionsHandler(deps)
	menu := NewAdminMenuHandler(deps)

	command("admin", menu, adminOnly)
	command("questions", questions, adminOnly)
	callback(CallbackAdminStats, NewStatsHandler(deps), adminOnly)
	callback(CallbackAdminUserInfo, NewUserInfoHandler(deps), adminOnly)
	callback(CallbackAdminQuestions, questions, adminOnly)
	callback(CallbackAdminBack, menu, adminOnly)

	handlers[ticket.AnswerCallbackPrefix] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     ticket.AnswerCallbackPrefix,
		Handler:     NewAnswerCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  []tgbot.Middleware{adminOnly},
	}

	return handlers
}
