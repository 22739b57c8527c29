package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/conversation"
	"github.com/hingebot/hingebot/internal/repository"
)

type pendingRepo struct {
	repository.Repository

	pending []string
}

func (r *pendingRepo) ListPendingMatchIDs(_ context.Context, limit int) ([]string, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

type countingRunner struct {
	mu        sync.Mutex
	running   int
	peak      int
	ran       []string
	blockEach time.Duration
}

func (c *countingRunner) RunSession(_ context.Context, matchID string) (*conversation.Result, error) {
	c.mu.Lock()
	c.running++
	if c.running > c.peak {
		c.peak = c.running
	}
	c.mu.Unlock()

	time.Sleep(c.blockEach)

	c.mu.Lock()
	c.running--
	c.ran = append(c.ran, matchID)
	c.mu.Unlock()
	return &conversation.Result{}, nil
}

type stubMatchmaker struct {
	rounds int
}

func (s *stubMatchmaker) RunRound(_ context.Context, _ int) ([]repository.Match, error) {
	s.rounds++
	return nil, nil
}

type stubShowcaser struct {
	batches int
}

func (s *stubShowcaser) PostHighlightsBatch(_ context.Context) (int, error) {
	s.batches++
	return 0, nil
}

func schedulerConfig() *config.Config {
	return &config.Config{
		MaxMatchesPerRound:    3,
		ConversationBatchSize: 5,
		ConversationWorkers:   2,
		MatchingPeriodMin:     30,
		ConversationPeriodMin: 5,
		ShowcasePeriodMin:     60,
	}
}

func TestRunConversationBatch_RespectsWorkerCap(t *testing.T) {
	pending := make([]string, 6)
	for i := range pending {
		pending[i] = uuid.NewString()
	}
	repo := &pendingRepo{pending: pending}
	runner := &countingRunner{blockEach: 20 * time.Millisecond}
	s := NewScheduler(schedulerConfig(), repo, &stubMatchmaker{}, runner, &stubShowcaser{})

	if err := s.runConversationBatch(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("runConversationBatch() error: %v", err)
	}
	if len(runner.ran) != 5 {
		t.Errorf("ran %d sessions, want the batch size of 5", len(runner.ran))
	}
	if runner.peak > 2 {
		t.Errorf("peak concurrency %d exceeds the worker cap of 2", runner.peak)
	}
}

func TestRunConversationBatch_EmptyQueueIsNoop(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(schedulerConfig(), &pendingRepo{}, &stubMatchmaker{}, runner, &stubShowcaser{})

	if err := s.runConversationBatch(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("runConversationBatch() error: %v", err)
	}
	if len(runner.ran) != 0 {
		t.Errorf("no pending matches, but %d sessions ran", len(runner.ran))
	}
}

func TestRun_FiresEachLoopOnceAndStops(t *testing.T) {
	matcher := &stubMatchmaker{}
	sc := &stubShowcaser{}
	s := NewScheduler(schedulerConfig(), &pendingRepo{}, matcher, &countingRunner{}, sc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Each loop fires immediately on startup; the periods are minutes,
	// so nothing else will fire before cancellation.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
	if matcher.rounds != 1 {
		t.Errorf("matching round ran %d times, want 1", matcher.rounds)
	}
	if sc.batches != 1 {
		t.Errorf("showcase batch ran %d times, want 1", sc.batches)
	}
}
