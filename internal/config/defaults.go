package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional settings.
const (
	DefaultLogLevel       = "info"
	DefaultDBPath         = "riskbot.db"
	DefaultSessionBackend = "sqlite"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultRedisKeyPrefix = "riskbot:session:"
	DefaultGuidePath      = "assets/guide.pdf"
	DefaultGuideFileName  = "RiskBotCrypto-guide.pdf"

	DefaultGeminiModel          = "gemini-2.0-flash"
	DefaultGeminiTemperature    = 0.4
	DefaultGeminiMaxRetries     = 1
	DefaultGeminiRetryDelay     = 2
	DefaultGeminiTimeoutSeconds = 20
)

// DefaultTasks are the scheduled jobs and their cron expressions (with seconds).
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance":         {Enabled: true, Schedule: "0 0 4 * * 0"},
	"open_questions_reminder": {Enabled: true, Schedule: "0 0 10 * * *"},
	"session_cleanup":         {Enabled: true, Schedule: "0 30 3 * * *"},
}

// DefaultMessages are the built-in user-facing texts.
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Welcome to RiskBotCrypto!\n\n" +
		"In a few questions we will determine your risk profile and suggest a trading bot setup that suits it.\n\n" +
		"Before we start, please read and accept the privacy policy and the offer.",
	PolicyToggle:        "Privacy policy",
	OfferToggle:         "Offer",
	PolicyLinkButton:    "📄 Read the privacy policy",
	OfferLinkButton:     "📄 Read the offer",
	ConsentAcceptButton: "➡️ Continue",
	ConsentRequired:     "Please accept both the privacy policy and the offer to continue.",
	ConsentAccepted:     "✅ Thank you! Let's find out your risk profile.",

	ResultFormat:     "📊 *Your score:* %d\n🎯 *Risk profile:* %s\n\n%s",
	GuideButton:      "📥 Download the guide",
	RestartButton:    "🔄 Retake the test",
	GuideCaption:     "📘 Your guide to setting up trading bots",
	GuideUnavailable: "The guide is temporarily unavailable. Please try again later.",

	Help: "ℹ️ This bot determines your trading risk profile and suggests a matching bot setup.\n\n" +
		"/start: take the test\n/help: show this message\n\n" +
		"Have a question? Press the button below and the team will reply here.",
	AskButton:          "❓ Ask a question",
	AskPrompt:          "✍️ Type your question in a single message or press «Cancel».",
	CancelButton:       "Cancel",
	Cancelled:          "Cancelled.",
	QuestionReceived:   "✅ Your question has been sent. The answer will arrive in this chat.",
	QuestionNotSent:    "⚠️ Your question was saved but could not be delivered to the team right now. Please try again later.",
	AnswerFormat:       "💬 Answer to your question:\n\n%s",
	Fallback:           "Use /start to take the test or /help to ask a question.",
	GeneralError:       "❌ An error occurred. Please try again later.",
	Unauthorized:       "🚫 Access denied.",
	AnswerPromptFormat: "✍️ Write your answer to question #%d:\n\n%s",
	AnswerSent:         "✅ The answer was sent to the user.",
	AnswerNotSent:      "⚠️ The answer was saved but could not be delivered to the user.",
	TicketNotFound:     "Question not found.",
	TicketAnswered:     "This question has already been answered.",
	NoOpenQuestions:    "There are no open questions.",
	AdminMenu:          "🛠 Admin panel",
	UsernamePrompt:     "Send the username to look up (with or without @), or press «Cancel».",
	UserNotFound:       "User not found.",
	ReplyButton:        "Reply",
	BackButton:         "⬅️ Back",
	StatsButton:        "📈 Statistics",
	UserInfoButton:     "🔎 User lookup",

	OpenQuestionsButton: "📬 Open questions",

	StatsFormat: "📈 Statistics\n\nUsers: %d\nAccepted consent: %d\n" +
		"Completed the test: %d\nDownloaded the guide: %d",

	UserSummaryFormat: "👤 %s (@%s)\nRegistered: %s\nRisk profile: %s\n" +
		"Score: %s\nGuide downloaded: %s",

	NotDetermined:  "not determined",
	Yes:            "yes",
	No:             "no",
	ReminderFormat: "⏰ %d open question(s) waiting for an answer. Oldest: #%d.\nUse /questions to reply.",
}

// setDefaults registers every key with viper so that environment variables
// can override keys that appear in no config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")

	v.SetDefault("admin.ids", []int64{})
	v.SetDefault("admin.inbox_id", 0)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("session.backend", DefaultSessionBackend)
	v.SetDefault("session.ttl", DefaultSessionTTL)
	v.SetDefault("session.redis.addr", "")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.key_prefix", DefaultRedisKeyPrefix)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelay)
	v.SetDefault("gemini.timeout_seconds", DefaultGeminiTimeoutSeconds)
	v.SetDefault("gemini.system_instruction", "")

	v.SetDefault("guide.path", DefaultGuidePath)
	v.SetDefault("guide.file_name", DefaultGuideFileName)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	m := DefaultMessages
	for key, value := range map[string]string{
		"welcome":               m.Welcome,
		"policy_url":            m.PolicyURL,
		"offer_url":             m.OfferURL,
		"policy_toggle":         m.PolicyToggle,
		"offer_toggle":          m.OfferToggle,
		"policy_link_button":    m.PolicyLinkButton,
		"offer_link_button":     m.OfferLinkButton,
		"consent_accept_button": m.ConsentAcceptButton,
		"consent_required":      m.ConsentRequired,
		"consent_accepted":      m.ConsentAccepted,
		"result_format":         m.ResultFormat,
		"guide_button":          m.GuideButton,
		"restart_button":        m.RestartButton,
		"guide_caption":         m.GuideCaption,
		"guide_unavailable":     m.GuideUnavailable,
		"help":                  m.Help,
		"ask_button":            m.AskButton,
		"ask_prompt":            m.AskPrompt,
		"cancel_button":         m.CancelButton,
		"cancelled":             m.Cancelled,
		"question_received":     m.QuestionReceived,
		"question_not_sent":     m.QuestionNotSent,
		"answer_format":         m.AnswerFormat,
		"fallback":              m.Fallback,
		"general_error":         m.GeneralError,
		"unauthorized":          m.Unauthorized,
		"answer_prompt_format":  m.AnswerPromptFormat,
		"answer_sent":           m.AnswerSent,
		"answer_not_sent":       m.AnswerNotSent,
		"ticket_not_found":      m.TicketNotFound,
		"ticket_answered":       m.TicketAnswered,
		"no_open_questions":     m.NoOpenQuestions,
		"admin_menu":            m.AdminMenu,
		"username_prompt":       m.UsernamePrompt,
		"user_not_found":        m.UserNotFound,
		"reply_button":          m.ReplyButton,
		"back_button":           m.BackButton,
		"stats_button":          m.StatsButton,
		"user_info_button":      m.UserInfoButton,
		"open_questions_button": m.OpenQuestionsButton,
		"stats_format":          m.StatsFormat,
		"user_summary_format":   m.UserSummaryFormat,
		"not_determined":        m.NotDetermined,
		"yes_label":             m.Yes,
		"no_label":              m.No,
		"reminder_format":       m.ReminderFormat,
	} {
		v.SetDefault("messages."+key, value)
	}
}
