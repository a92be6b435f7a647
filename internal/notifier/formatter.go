package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"GeoSentinel/internal/model"
)

var colorIcon = map[model.Status]string{
	model.StatusGreen:  "🟢",
	model.StatusYellow: "🟡",
	model.StatusRed:    "🔴",
}

func esc(s string) string { return html.EscapeString(s) }

// FormatDigest formats the periodic digest into a Telegram message.
func FormatDigest(d *model.Digest) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🛰 <b>GeoSentinel 周报</b> | %s\n\n", d.GeneratedAt.Format("2006-01-02")))

	if a := d.Assessment; a != nil {
		b.WriteString("📈 <b>指标面板评分:</b>\n")
		for _, f := range a.Factors {
			b.WriteString(fmt.Sprintf("  %s(%s): %+.2f (×%.2f) = %+.3f\n",
				f.Name, f.Commentary, f.RawScore, f.Weight, f.Weighted))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  综合评分: %+.3f → %s\n", a.TotalScore, a.Tier.Label))
		b.WriteString(fmt.Sprintf("  建议: %s\n", a.Tier.Action))
		if a.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("  ⚠️ %s\n", a.WarningMsg))
		}
		b.WriteString("\n")
	}

	if d.Red {
		b.WriteString("🚨 <b>红线: 已触发</b>\n\n")
	} else {
		active := 0
		for _, s := range d.Alerts {
			if s.Active {
				active++
			}
		}
		b.WriteString(fmt.Sprintf("🛡 红线: 未触发 (%d/%d 信号活跃)\n\n", active, len(d.Alerts)))
	}

	b.WriteString(fmt.Sprintf("🎯 <b>待验证预测:</b> %d\n", len(d.Pending)))
	for _, ev := range d.Pending {
		b.WriteString(fmt.Sprintf("  %s  p=%.2f  %s\n", ev.DueDate, ev.Probability, esc(ev.Event)))
	}
	if len(d.Overdue) > 0 {
		b.WriteString(fmt.Sprintf("⏰ 已到期未结算: %d\n", len(d.Overdue)))
		for _, ev := range d.Overdue {
			b.WriteString(fmt.Sprintf("  %s  %s\n", ev.DueDate, esc(ev.Event)))
		}
	}
	if d.BrierOK {
		b.WriteString(fmt.Sprintf("Brier 均值: %.3f\n", d.Brier))
	} else {
		b.WriteString("Brier 均值: 暂无已结算预测\n")
	}
	return b.String()
}

// FormatRedLine formats a red-line state change.
func FormatRedLine(red bool, trigger string, alerts []model.SignalSummary) string {
	var b strings.Builder
	if red {
		b.WriteString("🚨 <b>红线预警: 三信号全部满足</b>\n\n")
	} else {
		b.WriteString("✅ <b>红线解除</b>\n\n")
	}
	if trigger != "" {
		b.WriteString(fmt.Sprintf("触发信号: %s\n\n", esc(trigger)))
	}
	writeAlerts(&b, alerts)
	if red {
		b.WriteString("\n下一步: 运行 flash_brief 模板生成快报草案")
	}
	return b.String()
}

// FormatAlerts formats the current signal board.
func FormatAlerts(alerts []model.SignalSummary, red bool) string {
	var b strings.Builder
	state := "未触发"
	if red {
		state = "已触发"
	}
	b.WriteString(fmt.Sprintf("🛡 <b>Entrapment 信号</b> | 红线%s\n\n", state))
	writeAlerts(&b, alerts)
	return b.String()
}

func writeAlerts(b *strings.Builder, alerts []model.SignalSummary) {
	for _, s := range alerts {
		mark := "⚪"
		if s.Active {
			mark = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s %s (证据 %d, %s)\n", mark, esc(s.Key), s.EvidenceCount, s.LastChecked.Format("2006-01-02")))
		if s.Notes != "" {
			b.WriteString(fmt.Sprintf("   %s\n", esc(s.Notes)))
		}
	}
}

// FormatPanel formats the indicator panel grouped in record order.
func FormatPanel(records []model.IndicatorRecord) string {
	var b strings.Builder
	b.WriteString("📋 <b>指标面板</b>\n\n")
	for _, r := range records {
		value := r.LatestValue
		if value == "" {
			value = "-"
		}
		updated := "未更新"
		if r.Date != nil {
			updated = r.Date.Format("2006-01-02")
		}
		b.WriteString(fmt.Sprintf("%s %s [%s] w=%d %s\n   %s | %s\n",
			colorIcon[r.Color], esc(r.Indicator), r.Dimension, r.Weight, r.Confidence, esc(value), updated))
	}
	return b.String()
}

// FormatForecasts formats the forecast ledger.
func FormatForecasts(events []model.ForecastEvent, brier float64, ok bool) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 <b>预测记分板</b> | %d 项\n\n", len(events)))
	for _, ev := range events {
		status := "待定"
		if ev.Outcome != nil {
			status = fmt.Sprintf("outcome=%d", *ev.Outcome)
			if ev.Brier != nil {
				status += fmt.Sprintf(" brier=%.3f", *ev.Brier)
			}
		}
		b.WriteString(fmt.Sprintf("%s p=%.2f %s\n   %s\n", ev.DueDate, ev.Probability, status, esc(ev.Event)))
	}
	if ok {
		b.WriteString(fmt.Sprintf("\nBrier 均值: %.3f", brier))
	}
	return b.String()
}

// FormatACH formats the hypothesis table.
func FormatACH(table model.ACHTable) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⚖️ <b>ACH</b>: %s\n\n", esc(table.Question)))
	for _, e := range table.Entries {
		b.WriteString(fmt.Sprintf("<b>%s</b>  净值 %+d  置信 %s\n", esc(e.Hypothesis), e.NetAssessment, e.Confidence))
		b.WriteString(fmt.Sprintf("   支持 %d | 反驳 %d\n", len(e.Supports), len(e.Refutes)))
		if len(e.KeyGaps) > 0 {
			b.WriteString(fmt.Sprintf("   缺口: %s\n", esc(strings.Join(e.KeyGaps, "; "))))
		}
	}
	return b.String()
}

// FormatError formats a failure for the chat.
func FormatError(action string, err error) string {
	return fmt.Sprintf("⚠️ <b>%s 失败</b>\n%s\n%s", esc(action), esc(err.Error()), time.Now().Format("2006-01-02 15:04"))
}
