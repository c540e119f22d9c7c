package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

// FormatHeadline renders "$64000.12 • +1.25%" for a summary.
func FormatHeadline(sum *model.Summary) string {
	if sum == nil {
		return "Loading..."
	}
	if !sum.ChangeDefined {
		return fmt.Sprintf("$%s • n/a", sum.Current.StringFixed(2))
	}
	sign := ""
	if sum.ChangePercent.IsPositive() {
		sign = "+"
	}
	return fmt.Sprintf("$%s • %s%s%%", sum.Current.StringFixed(2), sign, sum.ChangePercent.StringFixed(2))
}

// FormatStatus formats the dashboard state as a Telegram message.
func FormatStatus(s dashboard.State) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s\n\n", displaySymbol(s.Symbol), s.Timeframe.Label()))
	b.WriteString(FormatHeadline(s.Summary))
	b.WriteString("\n")

	if s.Series != nil {
		if high, low, err := calculator.WindowRange(s.Series); err == nil {
			b.WriteString(fmt.Sprintf("区间: %s ~ %s\n", low.StringFixed(2), high.StringFixed(2)))
			if s.Summary != nil {
				pos := calculator.WindowPosition(s.Summary.Current, high, low)
				b.WriteString(fmt.Sprintf("区间位置: %s%%\n", pos.Mul(decimal.NewFromInt(100)).StringFixed(0)))
			}
		}
		b.WriteString(fmt.Sprintf("样本数: %d (%s)\n", s.Series.Len(), timeframe.Resolve(s.Series.Timeframe).Granularity))
		b.WriteString(fmt.Sprintf("更新时间: %s\n", s.Series.FetchedAt.Format("2006-01-02 15:04")))
	}
	if s.Loading {
		b.WriteString("⏳ 正在加载...\n")
	}
	if s.LastError != "" {
		b.WriteString(fmt.Sprintf("⚠️ 数据不可用: %s\n", s.LastError))
	}
	return b.String()
}

// FormatDigest formats the scheduled digest message.
func FormatDigest(s dashboard.State, now time.Time) string {
	return fmt.Sprintf("🗓 <b>PriceBoard 摘要</b> | %s\n\n%s", now.Format("2006-01-02 15:04"), FormatStatus(s))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	tfs := make([]string, 0, 7)
	for _, tf := range timeframe.All() {
		tfs = append(tfs, string(tf))
	}
	tabs := make([]string, 0, 5)
	for _, t := range dashboard.Tabs() {
		tabs = append(tabs, string(t))
	}
	return "可用命令:\n" +
		"• /status\n" +
		"• /tf <" + strings.Join(tfs, "|") + ">\n" +
		"• /tab <" + strings.Join(tabs, "|") + ">"
}

// displaySymbol turns BTCUSDT into BTC/USD for headers.
func displaySymbol(symbol string) string {
	if symbol == "" {
		return "BTC/USD"
	}
	if base, ok := strings.CutSuffix(symbol, "USDT"); ok {
		return base + "/USD"
	}
	return symbol
}
