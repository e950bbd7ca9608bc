package assistant

import (
	"errors"
	"strings"
	"unicode"
)

var ErrEmptyMessage = errors.New("message is empty")

// Rule 任一關鍵字以完整單字或片語出現即回覆 Reply。
type Rule struct {
	Name     string
	Keywords []string
	Reply    string
}

// DefaultRules 依序比對，先命中者優先。
var DefaultRules = []Rule{
	{
		Name:     "confluence",
		Keywords: []string{"confluence", "confluences", "pivot", "pivots", "fib", "banking level", "banking levels"},
		Reply:    "Open Analytics > Confluence Combinations. Filter by market condition to see which pivot, banking, MA, Fib and balance setups carry the highest win rate.",
	},
	{
		Name:     "trend",
		Keywords: []string{"trend", "against", "with the trend"},
		Reply:    "A trade is with trend when a Buy is taken on a Bullish bias or a Sell on a Bearish bias. Compare both buckets under Analytics > Trend Alignment.",
	},
	{
		Name:     "day",
		Keywords: []string{"monday", "tuesday", "wednesday", "thursday", "friday", "which day", "weekday"},
		Reply:    "Analytics > Day of Week lists every weekday, including days without trades, so you can spot the sessions where you lose most.",
	},
	{
		Name:     "market_condition",
		Keywords: []string{"balanced", "imbalanced", "market condition"},
		Reply:    "Analytics > Market Condition groups your trades by the condition you logged. Trades without one are shown as Unknown.",
	},
	{
		Name:     "win_rate",
		Keywords: []string{"win rate", "winrate", "breakeven"},
		Reply:    "Win rate counts wins over wins plus losses. Breakeven trades are left out of the ratio.",
	},
	{
		Name:     "compound",
		Keywords: []string{"compound", "growth", "calculator"},
		Reply:    "Use the compounding calculator with your starting balance, return per period and optional top-ups to project account growth.",
	},
	{
		Name:     "log_trade",
		Keywords: []string{"log", "log a trade", "add trade", "new trade", "journal"},
		Reply:    "Go to Journal > New Trade. Date, action and P/L are required. The weekday is filled from the date when left blank.",
	},
	{
		Name:     "greeting",
		Keywords: []string{"hello", "hi", "hey"},
		Reply:    "Hi! Ask me about your win rate, trend alignment, confluences or the compounding calculator.",
	},
}

const DefaultFallback = "I can help with analytics, confluences, trend alignment, win rate and the compounding calculator. Try asking about one of those."

// Reply 助理回覆；Rule 為空表示使用預設回覆。
type Reply struct {
	Text string `json:"reply"`
	Rule string `json:"rule,omitempty"`
}

// Assistant 以靜態關鍵字表產生固定回覆。
type Assistant struct {
	rules    []Rule
	fallback string
}

// New 建立助理，rules 為空時使用 DefaultRules。
func New(rules []Rule, fallback string) *Assistant {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	if fallback == "" {
		fallback = DefaultFallback
	}
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = wordPhrase(k); k != "" {
				kw = append(kw, k)
			}
		}
		normalized[i] = Rule{Name: r.Name, Keywords: kw, Reply: r.Reply}
	}
	return &Assistant{rules: normalized, fallback: fallback}
}

// Respond 不分大小寫，關鍵字須落在單字邊界上（"log" 不會比到 "login"）。
func (a *Assistant) Respond(message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}
	msg := " " + wordPhrase(message) + " "
	for _, r := range a.rules {
		for _, k := range r.Keywords {
			if strings.Contains(msg, " "+k+" ") {
				return Reply{Text: r.Reply, Rule: r.Name}, nil
			}
		}
	}
	return Reply{Text: a.fallback}, nil
}

// wordPhrase 轉小寫並以單一空白連接字母數字片段，標點視為分隔。
func wordPhrase(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
