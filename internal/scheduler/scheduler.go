package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/notifier"
	"PriceBoard/internal/timeframe"
)

// Dashboard is the part of the controller the scheduler drives.
type Dashboard interface {
	Snapshot() dashboard.State
	SelectTimeframe(tf timeframe.Timeframe)
	SelectTab(tab dashboard.Tab)
}

// Sender delivers a text message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the digest cron task and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Dashboard Dashboard
	Notifier  Sender
	Ctx       context.Context
	log       *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, d Dashboard, n Sender, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Dashboard: d,
		Notifier:  n,
		Ctx:       ctx,
		log:       log.With(zap.String("component", "scheduler")),
		now:       time.Now,
	}
}

// RegisterDigest schedules the digest task. An empty spec registers nothing.
func (s *Scheduler) RegisterDigest(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.digestTask); err != nil {
		return fmt.Errorf("add cron %q: %w", spec, err)
	}
	s.log.Info("digest registered", zap.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// digestTask reports the current snapshot. It never triggers a fetch.
func (s *Scheduler) digestTask() {
	st := s.Dashboard.Snapshot()
	s.log.Info("sending digest", zap.String("timeframe", st.Timeframe.String()), zap.Bool("has_data", st.HasData()))
	s.trySend(notifier.FormatDigest(st, s.now()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch strings.ToLower(fields[0]) {
	case "/status", "查看状态":
		return notifier.FormatStatus(s.Dashboard.Snapshot())
	case "/tf", "/timeframe":
		tf, err := timeframe.Parse(arg)
		if err != nil {
			return fmt.Sprintf("未知周期 %q\n\n%s", arg, notifier.FormatHelp())
		}
		s.Dashboard.SelectTimeframe(tf)
		return fmt.Sprintf("⏳ 切换到 %s，稍后发送 /status 查看", tf.Label())
	case "/tab":
		tab, err := dashboard.ParseTab(arg)
		if err != nil {
			return fmt.Sprintf("未知标签 %q\n\n%s", arg, notifier.FormatHelp())
		}
		s.Dashboard.SelectTab(tab)
		return fmt.Sprintf("已切换到 %s", tab)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
