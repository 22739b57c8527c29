package matching

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/repository"
)

const (
	// Matches scanned when computing the novelty window.
	recentMatchWindow = 100
	// Hard cap on consent simulations per round, as a multiple of the
	// requested match count. Keeps a large pool from making a round
	// run away on LLM calls.
	consentBudgetFactor = 4

	decisionLike = "like"
	decisionPass = "pass"
)

type Engine struct {
	repo         repository.Repository
	gen          generator.Generator
	roundTimeout time.Duration
}

func NewEngine(cfg *config.Config, repo repository.Repository, gen generator.Generator) *Engine {
	return &Engine{
		repo:         repo,
		gen:          gen,
		roundTimeout: time.Duration(cfg.MatchingRoundTimeoutMin) * time.Minute,
	}
}

type scoredPair struct {
	score float64
	a, b  *repository.Agent
}

// RunRound scores every available pair and greedily creates up to
// maxMatches pending matches, each gated behind a mutual swipe
// simulation. Consent failures skip the pair, never the round.
func (e *Engine) RunRound(ctx context.Context, maxMatches int) ([]repository.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, e.roundTimeout)
	defer cancel()

	agents, err := e.repo.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if len(agents) < 2 {
		return nil, nil
	}
	unavailable, err := e.repo.ListUnavailableAgentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unavailable agents: %w", err)
	}
	recent, err := e.repo.ListRecentParticipantIDs(ctx, recentMatchWindow)
	if err != nil {
		return nil, fmt.Errorf("list recent participants: %w", err)
	}

	available := make([]*repository.Agent, 0, len(agents))
	for i := range agents {
		if _, busy := unavailable[agents[i].ID]; !busy {
			available = append(available, &agents[i])
		}
	}
	if len(available) < 2 {
		return nil, nil
	}

	pairs := make([]scoredPair, 0, len(available)*(len(available)-1)/2)
	for i, a := range available {
		for _, b := range available[i+1:] {
			pairs = append(pairs, scoredPair{score: scorePair(a, b, recent), a: a, b: b})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	var created []repository.Match
	claimed := make(map[string]struct{})
	consentBudget := consentBudgetFactor * maxMatches

	for _, pair := range pairs {
		if len(created) >= maxMatches {
			break
		}
		if ctx.Err() != nil {
			slog.Warn("matching round deadline reached", "created", len(created))
			break
		}
		if consentBudget <= 0 {
			slog.Warn("matching round consent budget exhausted", "created", len(created))
			break
		}
		if _, ok := claimed[pair.a.ID]; ok {
			continue
		}
		if _, ok := claimed[pair.b.ID]; ok {
			continue
		}
		consentBudget--

		match, ok := e.tryPair(ctx, pair)
		if !ok {
			continue
		}
		created = append(created, *match)
		claimed[pair.a.ID] = struct{}{}
		claimed[pair.b.ID] = struct{}{}
	}
	slog.Info("matching round finished", "candidates", len(pairs), "created", len(created))
	return created, nil
}

// tryPair runs both swipe simulations, records the decisions, and
// creates the match on mutual like. Any failure skips the pair.
func (e *Engine) tryPair(ctx context.Context, pair scoredPair) (*repository.Match, bool) {
	decisionA, reasonA, err := e.simulateSwipe(ctx, pair.a, pair.b)
	if err != nil {
		slog.Warn("swipe simulation failed; skipping pair", "error", err, "swiper", pair.a.Name, "target", pair.b.Name)
		return nil, false
	}
	decisionB, reasonB, err := e.simulateSwipe(ctx, pair.b, pair.a)
	if err != nil {
		slog.Warn("swipe simulation failed; skipping pair", "error", err, "swiper", pair.b.Name, "target", pair.a.Name)
		return nil, false
	}

	// Both decisions feed future novelty scoring, declines included.
	err = e.repo.InsertSwipeDecisions(ctx, []repository.InsertSwipeDecisionInput{
		{SwiperID: pair.a.ID, TargetID: pair.b.ID, Decision: decisionA, Reason: reasonA},
		{SwiperID: pair.b.ID, TargetID: pair.a.ID, Decision: decisionB, Reason: reasonB},
	})
	if err != nil {
		slog.Warn("failed to record swipe decisions; skipping pair", "error", err, "agent_a", pair.a.Name, "agent_b", pair.b.Name)
		return nil, false
	}

	if decisionA != decisionLike || decisionB != decisionLike {
		return nil, false
	}
	match, err := e.repo.CreateMatch(ctx, pair.a.ID, pair.b.ID)
	if err != nil {
		slog.Warn("failed to create match; skipping pair", "error", err, "agent_a", pair.a.Name, "agent_b", pair.b.Name)
		return nil, false
	}
	slog.Info("mutual match created", "match_id", match.ID, "agent_a", pair.a.Name, "agent_b", pair.b.Name,
		"pair_score", fmt.Sprintf("%.1f", pair.score))
	return match, true
}

type swipeResult struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (e *Engine) simulateSwipe(ctx context.Context, swiper, target *repository.Agent) (string, string, error) {
	var result swipeResult
	err := e.gen.CompleteJSON(ctx, generator.Request{
		System: `You are simulating a dating app swipe decision for an AI agent. Respond with JSON: {"decision": "like" or "pass", "reason": "short reason"}`,
		User: fmt.Sprintf(
			"Swiper: %s (%s)\nBio: %s\nInterests: %s\n\nTarget: %s (%s)\nBio: %s\nInterests: %s\n\nWould %s swipe right? Be generous — about 70%% like rate.",
			swiper.Name, swiper.ArchetypePrimary, swiper.Bio, strings.Join(swiper.Interests, ", "),
			target.Name, target.ArchetypePrimary, target.Bio, strings.Join(target.Interests, ", "),
			swiper.Name),
		Temperature: 0.8,
	}, &result)
	if err != nil {
		return "", "", err
	}
	if result.Decision == "" {
		result.Decision = decisionLike
	}
	if result.Reason == "" {
		result.Reason = "just vibes"
	}
	return result.Decision, result.Reason, nil
}
