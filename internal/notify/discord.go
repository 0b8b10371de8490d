// Package notify delivers monitor reports to Discord on a fixed cadence. The
// scheduler lives here, outside the audit pipeline: it invokes the pure
// pipeline and forwards its string result, nothing more.
package notify

import (
	"context"
	"fmt"
	"time"

	"fedvote-monitor/internal/logger"
	"fedvote-monitor/internal/monitor"

	"github.com/bwmarrin/discordgo"
)

// Sink posts a finished report somewhere. Discord is the only production
// implementation; tests substitute their own.
type Sink interface {
	Post(report string) error
	Close() error
}

// DiscordSink posts reports to a single Discord channel.
type DiscordSink struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordSink(token, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("connect to discord: %w", err)
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (s *DiscordSink) Post(report string) error {
	if _, err := s.session.ChannelMessageSend(s.channelID, report); err != nil {
		return fmt.Errorf("post to channel %s: %w", s.channelID, err)
	}
	return nil
}

func (s *DiscordSink) Close() error {
	return s.session.Close()
}

// Runner is anything that produces one report per invocation.
type Runner interface {
	Run(ctx context.Context) (monitor.Result, error)
}

// Scheduler periodically runs the monitor and posts the report. A failed run
// is logged and skipped; the next tick starts fresh. There is no retry within
// a run.
type Scheduler struct {
	runner   Runner
	sink     Sink
	interval time.Duration
	log      *logger.Logger

	// afterRun, when set, observes each successful result (audit trail hook).
	afterRun func(monitor.Result)
}

func NewScheduler(runner Runner, sink Sink, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		sink:     sink,
		interval: interval,
		log:      log,
	}
}

// OnResult registers a callback invoked after each successful run and post.
func (s *Scheduler) OnResult(fn func(monitor.Result)) {
	s.afterRun = fn
}

// Loop posts one report immediately, then once per interval until the context
// is cancelled.
func (s *Scheduler) Loop(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	res, err := s.runner.Run(ctx)
	if err != nil {
		s.log.Printf("monitor run failed: %v", err)
		return
	}
	if err := s.sink.Post(res.Report); err != nil {
		s.log.Printf("report delivery failed: %v", err)
		return
	}
	s.log.Printf("report posted: height=%d flagged=%d", res.ChainHeight, len(res.Flagged))
	if s.afterRun != nil {
		s.afterRun(res)
	}
}
