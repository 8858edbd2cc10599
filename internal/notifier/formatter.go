package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"MarketAnalyst/internal/model"
)

// MaxMessageLen is the Telegram limit for a single message.
const MaxMessageLen = 4096

var biasLabels = map[model.Bias]string{
	model.BiasStrongBullish: "🟢🟢 Strong Bullish",
	model.BiasBullish:       "🟢 Bullish",
	model.BiasNeutral:       "⚪ Neutral",
	model.BiasBearish:       "🔴 Bearish",
	model.BiasStrongBearish: "🔴🔴 Strong Bearish",
}

// BiasLabel returns a display label for b.
func BiasLabel(b model.Bias) string {
	if l, ok := biasLabels[b]; ok {
		return l
	}
	return string(b)
}

// FormatReport formats an indicator report into a Telegram HTML message.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s technical report</b> | %s\n\n",
		html.EscapeString(r.Symbol), r.GeneratedAt.Format("2006-01-02")))

	if close, ok := r.Latest["Close"]; ok {
		b.WriteString(fmt.Sprintf("Close: %.2f\n", close))
	}
	if s := r.Summary; s != nil {
		b.WriteString(fmt.Sprintf("Support: %.2f | Resistance: %.2f\n\n", s.Support, s.Resistance))

		b.WriteString("📈 <b>Factors:</b>\n")
		for _, f := range s.Factors {
			b.WriteString(fmt.Sprintf("  %s (%s): %+.1f (×%.2f) = %+.3f\n",
				html.EscapeString(f.Name), html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  Total: %+.3f\n\n", s.TotalScore))
		b.WriteString(fmt.Sprintf("🧭 <b>Bias:</b> %s\n", BiasLabel(s.Bias)))
		if s.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(s.WarningMsg)))
		}
	}

	if r.Text != "" {
		b.WriteString("\n<pre>")
		b.WriteString(html.EscapeString(strings.TrimLeft(r.Text, "\n")))
		b.WriteString("</pre>")
	}
	return b.String()
}

// FormatWatchlist lists the symbols covered by scheduled reports.
func FormatWatchlist(symbols []string, cron string) string {
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	for _, s := range symbols {
		b.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(s)))
	}
	if cron != "" {
		b.WriteString(fmt.Sprintf("\nSchedule: <code>%s</code>\n", html.EscapeString(cron)))
	}
	return b.String()
}

// FormatLatest renders stored indicator values as a short list.
func FormatLatest(latest map[string]float64) string {
	var b strings.Builder
	for _, col := range append([]string{"Close"}, model.CoreColumns...) {
		v, ok := latest[col]
		if !ok || math.IsNaN(v) {
			b.WriteString(fmt.Sprintf("%s: n/a\n", html.EscapeString(col)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %.2f\n", html.EscapeString(col), v))
	}
	return b.String()
}

// Truncate shortens s to at most limit bytes without splitting a rune or
// leaving an unclosed <pre> block.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	const suffix = "\n…</pre>"
	cut := limit - len(suffix)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	out := s[:cut]
	if strings.Count(out, "<pre>") > strings.Count(out, "</pre>") {
		return out + suffix
	}
	return out + "\n…"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
