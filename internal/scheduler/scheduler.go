package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"GeoSentinel/internal/agent"
	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/notifier"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron   *cron.Cron
	Agent  *agent.Agent
	Ctx    context.Context
	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a *agent.Agent) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Agent:  a,
		Ctx:    ctx,
		logger: logging.New("scheduler"),
	}
}

// RegisterAll registers the digest and red-line tasks.
func (s *Scheduler) RegisterAll(digestCron, redLineCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	if _, err := s.Cron.AddFunc(redLineCron, s.redLineTask); err != nil {
		return fmt.Errorf("register red-line task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunDigestNow executes the digest task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	s.logger.Info().Msg("running digest task")
	d, err := s.Agent.SendDigest(s.Ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("digest")
		return
	}
	s.logger.Info().Float64("score", d.Assessment.TotalScore).Str("tier", d.Assessment.Tier.Label).
		Int("pending", len(d.Pending)).Bool("red", d.Red).Msg("digest sent")
}

func (s *Scheduler) redLineTask() {
	red, changed, err := s.Agent.CheckRedLine(s.Ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("red-line check")
		return
	}
	s.logger.Debug().Bool("red", red).Bool("changed", changed).Msg("red-line checked")
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	cmd := strings.Fields(command)
	if len(cmd) == 0 {
		return ""
	}
	// Commands in groups arrive as /digest@BotName.
	name, _, _ := strings.Cut(cmd[0], "@")

	if err := s.Agent.Reload(); err != nil {
		s.logger.Error().Err(err).Msg("reload for command")
		return notifier.FormatError(name, err)
	}

	switch name {
	case "/digest", "查看周报":
		return notifier.FormatDigest(s.Agent.Digest())
	case "/panel", "查看指标":
		return notifier.FormatPanel(s.Agent.PanelRecords())
	case "/forecasts", "查看预测":
		score, ok := s.Agent.AggregateBrier()
		return notifier.FormatForecasts(s.Agent.Forecasts(), score, ok)
	case "/alerts", "查看红线":
		return notifier.FormatAlerts(s.Agent.AlertSummary(), s.Agent.RedAlert())
	case "/ach", "查看假说":
		return notifier.FormatACH(s.Agent.ACHTable())
	default:
		return "可用命令:\n• /digest 周报\n• /panel 指标面板\n• /forecasts 预测记分板\n• /alerts 红线信号\n• /ach 假说表"
	}
}
