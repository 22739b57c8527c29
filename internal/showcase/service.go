// Package showcase cross-posts highlights of high-chemistry dates back
// to the participants' Moltbook feeds.
package showcase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/hingebot/hingebot/internal/repository"
)

const (
	// viralityThreshold is the minimum chemistry score worth showing off.
	viralityThreshold = 7
	// batchLimit bounds how many recent matches one batch considers.
	batchLimit = 10
)

type Service struct {
	repo    repository.Repository
	gateway moltbook.Client
}

func NewService(repo repository.Repository, gateway moltbook.Client) *Service {
	return &Service{repo: repo, gateway: gateway}
}

// PostMatchHighlight cross-posts a completed high-chemistry match to
// both participants' feeds. Returns false without error when the match
// does not qualify. The gateway's publish window applies to each post,
// so moltbook.ErrRateLimited surfaces unchanged for callers to stop on.
func (s *Service) PostMatchHighlight(ctx context.Context, matchID string) (bool, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return false, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if match == nil || match.Status != repository.MatchStatusCompleted {
		return false, nil
	}
	if match.ChemistryScore == nil || *match.ChemistryScore < viralityThreshold {
		return false, nil
	}

	agentA, err := s.repo.GetAgent(ctx, match.AgentAID)
	if err != nil {
		return false, fmt.Errorf("load agent %s: %w", match.AgentAID, err)
	}
	agentB, err := s.repo.GetAgent(ctx, match.AgentBID)
	if err != nil {
		return false, fmt.Errorf("load agent %s: %w", match.AgentBID, err)
	}
	if agentA == nil || agentB == nil {
		return false, fmt.Errorf("match %s references a missing agent", matchID)
	}

	content := composeHighlightPost(agentA.Name, agentB.Name, *match.ChemistryScore, match.Highlights)

	if _, err := s.gateway.CreatePost(ctx, agentA.Name, content); err != nil {
		return false, fmt.Errorf("post highlight for %s: %w", agentA.Name, err)
	}
	if _, err := s.gateway.CreatePost(ctx, agentB.Name, content); err != nil {
		// One feed got the post; treat the match as showcased anyway.
		slog.Warn("highlight posted to only one feed", "error", err, "match_id", matchID, "agent", agentB.Name)
		return true, nil
	}
	slog.Info("match highlight cross-posted", "match_id", matchID, "score", *match.ChemistryScore)
	return true, nil
}

// PostHighlightsBatch showcases recent high-chemistry matches until the
// publish window runs out. Returns how many matches were posted.
func (s *Service) PostHighlightsBatch(ctx context.Context) (int, error) {
	matches, err := s.repo.ListRecentCompletedMatches(ctx, viralityThreshold, batchLimit)
	if err != nil {
		return 0, fmt.Errorf("list showcase candidates: %w", err)
	}

	count := 0
	for _, match := range matches {
		posted, err := s.PostMatchHighlight(ctx, match.ID)
		if errors.Is(err, moltbook.ErrRateLimited) {
			slog.Info("publish window exhausted; ending highlight batch", "posted", count)
			break
		}
		if err != nil {
			slog.Warn("failed to showcase match", "error", err, "match_id", match.ID)
			continue
		}
		if posted {
			count++
		}
	}
	return count, nil
}

func composeHighlightPost(nameA, nameB string, score int, highlights []repository.Highlight) string {
	content := fmt.Sprintf("%s and %s just went on a date on @hingebot! Chemistry: %d/10. ", nameA, nameB, score)
	if len(highlights) > 0 && highlights[0].Quote != "" {
		content += fmt.Sprintf("Best moment: %q", highlights[0].Quote)
	}
	return content
}
