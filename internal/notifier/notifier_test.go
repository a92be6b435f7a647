package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoSentinel/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []map[string]string
	failures atomic.Int32
	updates  []byte
	polled   atomic.Int32
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		if f.failures.Load() > 0 {
			f.failures.Add(-1)
			http.Error(w, `{"ok":false}`, http.StatusBadGateway)
			return
		}
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		f.mu.Lock()
		f.sent = append(f.sent, payload)
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if f.polled.Add(1) == 1 {
			w.Write(f.updates)
			return
		}
		// Later polls hold the connection like a long poll.
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.Write([]byte(`{"ok":true,"result":[]}`))
	})
	return mux
}

func (f *fakeTelegram) messages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, f *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	n.Backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)

	require.NoError(t, n.Send("<b>hi</b>"))
	msgs := f.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
	assert.Equal(t, "<b>hi</b>", msgs[0]["text"])
}

func TestSend_APIError(t *testing.T) {
	f := &fakeTelegram{}
	f.failures.Store(1)
	n := newTestNotifier(t, f)

	err := n.Send("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	f := &fakeTelegram{}
	f.failures.Store(2)
	n := newTestNotifier(t, f)

	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.Len(t, f.messages(), 1)
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	f := &fakeTelegram{}
	f.failures.Store(10)
	n := newTestNotifier(t, f)

	err := n.SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
	assert.Equal(t, int32(7), f.failures.Load())
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	f := &fakeTelegram{}
	f.failures.Store(10)
	n := newTestNotifier(t, f)
	n.Backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "x", 3)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStartPolling_RepliesToCommands(t *testing.T) {
	f := &fakeTelegram{updates: []byte(`{"ok":true,"result":[
		{"update_id":7,"message":{"text":" /alerts "}},
		{"update_id":8},
		{"update_id":9,"message":{"text":"/unknown"}}
	]}`)}
	n := newTestNotifier(t, f)

	var mu sync.Mutex
	var seen []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.StartPolling(ctx, func(cmd string) string {
			mu.Lock()
			seen = append(seen, cmd)
			mu.Unlock()
			if cmd == "/alerts" {
				return "board"
			}
			return ""
		})
	}()

	require.Eventually(t, func() bool { return len(f.messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("polling did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/alerts", "/unknown"}, seen)
	assert.Equal(t, "board", f.messages()[0]["text"])
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.Send("x"))
	assert.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
}

func TestFormatDigest(t *testing.T) {
	due, err := model.ParseDate("2026-12-31")
	require.NoError(t, err)
	d := &model.Digest{
		GeneratedAt: time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC),
		Assessment: &model.RiskAssessment{
			Factors:    []model.FactorScore{{Name: "capability", RawScore: 1, Weight: 0.5, Weighted: 0.5, Commentary: "1 red / 0 yellow / 0 green"}},
			TotalScore: 0.5,
			Tier:       model.RiskTier{Label: "critical", Action: "issue flash brief"},
		},
		Pending: []model.ForecastEvent{{Event: "A & B <joint>", DueDate: due, Probability: 0.35}},
		Alerts:  []model.SignalSummary{{Key: "s1", Active: true}, {Key: "s2"}},
	}

	msg := FormatDigest(d)
	assert.Contains(t, msg, "2026-10-05")
	assert.Contains(t, msg, "综合评分: +0.500 → critical")
	assert.Contains(t, msg, "(1/2 信号活跃)")
	assert.Contains(t, msg, "A &amp; B &lt;joint&gt;")
	assert.Contains(t, msg, "暂无已结算预测")

	d.Red, d.BrierOK, d.Brier = true, true, 0.125
	msg = FormatDigest(d)
	assert.Contains(t, msg, "红线: 已触发")
	assert.Contains(t, msg, "Brier 均值: 0.125")
}

func TestFormatRedLine(t *testing.T) {
	alerts := []model.SignalSummary{{Key: "trilateral_packaging", Active: true, EvidenceCount: 2, Notes: "joint statement"}}
	msg := FormatRedLine(true, "trilateral_packaging", alerts)
	assert.True(t, strings.HasPrefix(msg, "🚨"))
	assert.Contains(t, msg, "触发信号: trilateral_packaging")
	assert.Contains(t, msg, "证据 2")
	assert.Contains(t, msg, "flash_brief")

	msg = FormatRedLine(false, "", alerts)
	assert.Contains(t, msg, "红线解除")
	assert.NotContains(t, msg, "flash_brief")
}

func TestFormatPanelAndForecasts(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	msg := FormatPanel([]model.IndicatorRecord{
		{Indicator: "反击能力交付", Dimension: model.DimensionCapability, Weight: 5, Color: model.StatusRed, Confidence: "H", LatestValue: "IOC", Date: &now},
		{Indicator: "GPIF", Dimension: model.DimensionFunds, Weight: 3, Color: model.StatusYellow, Confidence: "M"},
	})
	assert.Contains(t, msg, "🔴 反击能力交付 [capability] w=5 H")
	assert.Contains(t, msg, "IOC | 2026-10-01")
	assert.Contains(t, msg, "- | 未更新")

	due, err := model.ParseDate("2026-03-01")
	require.NoError(t, err)
	one, brier := 1, 0.09
	msg = FormatForecasts([]model.ForecastEvent{
		{Event: "settled", DueDate: due, Probability: 0.7, Outcome: &one, Brier: &brier},
		{Event: "open", DueDate: due, Probability: 0.2},
	}, 0.09, true)
	assert.Contains(t, msg, "outcome=1 brier=0.090")
	assert.Contains(t, msg, "p=0.20 待定")
	assert.Contains(t, msg, "Brier 均值: 0.090")
}

func TestFormatACH(t *testing.T) {
	table := model.BootstrapACH("Q?", []string{"H1", "H2"})
	table.Entries[0].KeyGaps = []string{"budget line", "C2 text"}
	table.Entries[0].NetAssessment = 2
	msg := FormatACH(table)
	assert.Contains(t, msg, "Q?")
	assert.Contains(t, msg, "<b>H1</b>  净值 +2")
	assert.Contains(t, msg, "缺口: budget line; C2 text")
}
