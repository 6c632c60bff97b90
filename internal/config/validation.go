package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and the rules that span sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !c.Admin.IsAdmin(c.Admin.InboxID) {
		return fmt.Errorf("admin.inbox_id %d must be listed in admin.ids", c.Admin.InboxID)
	}

	if c.Session.Backend == "redis" && c.Session.Redis.Addr == "" {
		return fmt.Errorf("session.redis.addr is required when session.backend is redis")
	}

	for _, format := range []struct {
		key, value string
		verbs      int
	}{
		{"messages.result_format", c.Messages.ResultFormat, 3},
		{"messages.answer_format", c.Messages.AnswerFormat, 1},
		{"messages.answer_prompt_format", c.Messages.AnswerPromptFormat, 2},
		{"messages.stats_format", c.Messages.StatsFormat, 4},
		{"messages.user_summary_format", c.Messages.UserSummaryFormat, 6},
		{"messages.reminder_format", c.Messages.ReminderFormat, 2},
	} {
		if n := countVerbs(format.value); n != format.verbs {
			return fmt.Errorf("%s must contain %d format verbs, found %d", format.key, format.verbs, n)
		}
	}

	return nil
}

// countVerbs counts fmt verbs in s, ignoring "%%".
func countVerbs(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}
