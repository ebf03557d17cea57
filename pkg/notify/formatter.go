// Package notify formats analysis results into alerts and delivers them over
// Telegram and Discord.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Azeflow10/solana-ml-scanner/pkg/db"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

var categoryEmoji = map[model.Category]string{
	model.CategoryFastSniper:        "⚡",
	model.CategorySmartSniper:       "🎯",
	model.CategoryMomentum:          "📈",
	model.CategorySafe:              "🛡",
	model.CategoryWhaleAccumulation: "🐋",
	model.CategoryUnknown:           "❓",
}

var riskEmoji = map[model.RiskLevel]string{
	model.RiskLow:    "🟢",
	model.RiskMedium: "🟡",
	model.RiskHigh:   "🔴",
}

// FormatUSD renders a dollar amount compactly: $12.5K, $3.40M, $1.20B.
func FormatUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// ShortAddress truncates a base58 address for display: "7xKX...gAsU".
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

// FormatAge renders seconds as the largest sensible unit.
func FormatAge(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}

// FormatAlert builds the detailed Telegram-Markdown alert message.
func FormatAlert(r *model.AnalysisResult) string {
	sc := r.Scoring
	t := r.Token

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s ALERT* %s\n\n",
		categoryEmoji[sc.Category], sc.Category, riskEmoji[sc.RiskLevel])
	fmt.Fprintf(&b, "*%s* (%s)\n`%s`\n\n", escapeMarkdown(t.Name), escapeMarkdown(t.Symbol), t.Address)

	fmt.Fprintf(&b, "💯 *Score:* %.1f/100", sc.ScoreCombined)
	if sc.ScoreML > 0 {
		fmt.Fprintf(&b, " (rules %.1f / ml %.1f @ %.0f%%)", sc.ScoreRules, sc.ScoreML, sc.MLConfidence*100)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s *Risk:* %s\n\n", riskEmoji[sc.RiskLevel], sc.RiskLevel)

	fmt.Fprintf(&b, "💧 Liquidity: %s\n", FormatUSD(t.LiquidityUSD))
	fmt.Fprintf(&b, "📊 Market Cap: %s\n", FormatUSD(t.MarketCap))
	fmt.Fprintf(&b, "⏱ Age: %s\n", FormatAge(t.AgeSeconds))
	if t.PriceChange5Min != 0 {
		fmt.Fprintf(&b, "📈 5m: %+.1f%%\n", t.PriceChange5Min)
	}
	if t.Volume24h > 0 {
		fmt.Fprintf(&b, "🔄 Vol 24h: %s\n", FormatUSD(t.Volume24h))
	}

	if r.Security != nil {
		b.WriteString("\n*Security*\n")
		fmt.Fprintf(&b, "  Score: %.1f/10\n", r.Security.OverallScore)
		fmt.Fprintf(&b, "  Mint frozen: %s  Freeze revoked: %s\n",
			yesNo(r.Security.MintAuthorityFrozen), yesNo(r.Security.FreezeAuthorityRevoked))
		fmt.Fprintf(&b, "  LP: %s  Top10: %.1f%%\n",
			lpState(r.Security), r.Security.Top10HoldersPercent)
	}
	if r.Holders != nil && r.Holders.TotalHolders > 0 {
		fmt.Fprintf(&b, "👥 Holders: %d (top10 %.1f%%)\n",
			r.Holders.TotalHolders, r.Holders.Top10Concentration)
	}

	fmt.Fprintf(&b, "\n_source: %s_", t.Source)
	return b.String()
}

// FormatCompactAlert is the one-line Discord variant.
func FormatCompactAlert(r *model.AnalysisResult) string {
	sc := r.Scoring
	t := r.Token
	return fmt.Sprintf("%s **%s** %s | %s (%s) | score %.1f | liq %s | age %s | `%s`",
		categoryEmoji[sc.Category], sc.Category, riskEmoji[sc.RiskLevel],
		t.Name, t.Symbol, sc.ScoreCombined,
		FormatUSD(t.LiquidityUSD), FormatAge(t.AgeSeconds), ShortAddress(t.Address))
}

// FormatDailySummary renders the end-of-day stats digest.
func FormatDailySummary(st *db.Stats, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Daily Summary — %s*\n\n", date.Format("2006-01-02"))
	fmt.Fprintf(&b, "🔍 Analyzed: %d tokens\n", st.AnalysesToday)
	fmt.Fprintf(&b, "🚨 Alerts sent: %d\n", st.AlertsToday)
	if st.AnalysesToday > 0 {
		fmt.Fprintf(&b, "💯 Avg score: %.1f  Best: %.1f\n", st.AvgScoreToday, st.BestScoreToday)
	}
	if len(st.ByCategoryToday) > 0 {
		b.WriteString("\n*By category*\n")
		for _, cat := range []model.Category{
			model.CategoryFastSniper, model.CategorySmartSniper, model.CategoryMomentum,
			model.CategorySafe, model.CategoryWhaleAccumulation, model.CategoryUnknown,
		} {
			if n := st.ByCategoryToday[string(cat)]; n > 0 {
				fmt.Fprintf(&b, "  %s %s: %d\n", categoryEmoji[cat], cat, n)
			}
		}
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "✅"
	}
	return "❌"
}

func lpState(s *model.SecurityReport) string {
	switch {
	case s.LPBurned:
		return "🔥 burned"
	case s.LPLocked:
		return "🔒 locked"
	default:
		return "⚠️ unlocked"
	}
}

// escapeMarkdown neutralizes the characters Telegram's legacy Markdown parser
// chokes on in token names.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return r.Replace(s)
}
