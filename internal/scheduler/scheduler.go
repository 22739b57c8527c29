// Package scheduler drives the periodic batch work: matching rounds,
// pending-conversation runs, and highlight showcasing.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/conversation"
	"github.com/hingebot/hingebot/internal/repository"
)

type matchmaker interface {
	RunRound(ctx context.Context, maxMatches int) ([]repository.Match, error)
}

type sessionRunner interface {
	RunSession(ctx context.Context, matchID string) (*conversation.Result, error)
}

type showcaser interface {
	PostHighlightsBatch(ctx context.Context) (int, error)
}

type Scheduler struct {
	cfg           *config.Config
	repo          repository.Repository
	matcher       matchmaker
	conversations sessionRunner
	showcase      showcaser
}

func NewScheduler(cfg *config.Config, repo repository.Repository, matcher matchmaker, conversations sessionRunner, sc showcaser) *Scheduler {
	return &Scheduler{
		cfg:           cfg,
		repo:          repo,
		matcher:       matcher,
		conversations: conversations,
		showcase:      sc,
	}
}

// Run starts the three periodic loops and blocks until ctx is
// cancelled, then waits for in-flight runs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	loops := []struct {
		name   string
		period time.Duration
		run    func(context.Context, string) error
	}{
		{"matching", time.Duration(s.cfg.MatchingPeriodMin) * time.Minute, s.runMatchingRound},
		{"conversation", time.Duration(s.cfg.ConversationPeriodMin) * time.Minute, s.runConversationBatch},
		{"showcase", time.Duration(s.cfg.ShowcasePeriodMin) * time.Minute, s.runShowcaseBatch},
	}

	var wg sync.WaitGroup
	for _, loop := range loops {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, loop.name, loop.period, loop.run)
		}()
	}
	wg.Wait()
}

// loop fires once on startup, then on every tick. Each run gets a uuid
// so its log lines can be correlated.
func (s *Scheduler) loop(ctx context.Context, name string, period time.Duration, run func(context.Context, string) error) {
	slog.Info("scheduler loop started", "loop", name, "period", period)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		runID := uuid.NewString()
		slog.Info("scheduled run starting", "loop", name, "run_id", runID)
		if err := run(ctx, runID); err != nil {
			slog.Error("scheduled run failed", "error", err, "loop", name, "run_id", runID)
		} else {
			slog.Info("scheduled run finished", "loop", name, "run_id", runID)
		}

		select {
		case <-ctx.Done():
			slog.Info("scheduler loop stopped", "loop", name)
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runMatchingRound(ctx context.Context, runID string) error {
	matches, err := s.matcher.RunRound(ctx, s.cfg.MaxMatchesPerRound)
	if err != nil {
		return fmt.Errorf("matching round: %w", err)
	}
	slog.Info("matching round produced matches", "run_id", runID, "matches", len(matches))
	return nil
}

// runConversationBatch drains a bounded batch of pending matches, at
// most ConversationWorkers sessions in flight at once.
func (s *Scheduler) runConversationBatch(ctx context.Context, runID string) error {
	matchIDs, err := s.repo.ListPendingMatchIDs(ctx, s.cfg.ConversationBatchSize)
	if err != nil {
		return fmt.Errorf("list pending matches: %w", err)
	}
	if len(matchIDs) == 0 {
		return nil
	}

	sem := make(chan struct{}, s.cfg.ConversationWorkers)
	var wg sync.WaitGroup
	for _, matchID := range matchIDs {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := s.conversations.RunSession(ctx, matchID); err != nil {
				slog.Error("conversation session failed", "error", err, "run_id", runID, "match_id", matchID)
			}
		}()
	}
	wg.Wait()
	return nil
}

func (s *Scheduler) runShowcaseBatch(ctx context.Context, runID string) error {
	count, err := s.showcase.PostHighlightsBatch(ctx)
	if err != nil {
		return fmt.Errorf("highlight batch: %w", err)
	}
	if count > 0 {
		slog.Info("highlights cross-posted", "run_id", runID, "count", count)
	}
	return nil
}
