package quiz

// Category is the risk profile assigned from the final score.
type Category string

// Risk profiles.
const (
	Conservative Category = "Conservative"
	Moderate     Category = "Moderate"
	Aggressive   Category = "Aggressive"
)

// Score bounds. A total of at most ConservativeMax is conservative, at most
// ModerateMax is moderate, anything above is aggressive.
const (
	MinScore        = QuestionCount * 1
	MaxScore        = QuestionCount * 4
	ConservativeMax = 13
	ModerateMax     = 21
)

// Classify maps a final score to its category.
func Classify(score int) Category {
	switch {
	case score <= ConservativeMax:
		return Conservative
	case score <= ModerateMax:
		return Moderate
	default:
		return Aggressive
	}
}

// Recommendation returns the static strategy text for the category,
// formatted with Telegram Markdown.
func (c Category) Recommendation() string {
	switch c {
	case Conservative:
		return conservativeText
	case Moderate:
		return moderateText
	case Aggressive:
		return aggressiveText
	default:
		return ""
	}
}

const conservativeText = `🟢 *Conservative strategy*
You value stability and control and are not ready to risk a significant part of your deposit.

🔧 *Recommended setup:*
• Grid: wide (conservative)
• Trading: spot only, or futures with isolated margin
• Leverage: 1 to 3
• Assets: coins from the *CoinMarketCap top 50* with high liquidity and a long history
• Goal: preserve the deposit, target return *5–10% per month*

🛡 *Risk management is mandatory*: a loss limit per cycle and a limited number of bots.
`

const moderateText = `🟡 *Moderate strategy*
You are open to risk but want to keep the situation under control.

🔧 *Recommended setup:*
• Grid: moderate to conservative
• Margin: *isolated or cross*, depending on the market phase and volatility
• Leverage: 1 to 5
• Assets: coins from the *CMC top 100 to top 200*
• Goal: balance return and risk, trade *both sides (long/short)* with a trend filter

⚖️ Suits traders who manage risk deliberately and understand the market phase.
`

const aggressiveText = `🔴 *Aggressive strategy*
You are a trader with high risk tolerance. Volatility does not scare you and you readily enter fast-moving markets.

🔥 *Recommended setup:*
• Grid: *aggressive to moderate width*
• Margin: *cross*
• Leverage: 5 to 10
• Assets: any CMC coins that meet the *volatility, liquidity and volume* criteria
• Examples: fresh listings, pump/dump assets
• Goal: high return, *20–40% per month*

⚠️ Requires *manual control and frequent interaction with the bots*.
`
