// Package registration admits Moltbook agents into the dating pool:
// identity verification, account-age gating, and profile creation.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/hingebot/hingebot/internal/profile"
	"github.com/hingebot/hingebot/internal/repository"
)

const minAccountAgeDays = 7

// ErrAccountTooYoung rejects accounts below the minimum Moltbook age.
var ErrAccountTooYoung = errors.New("account too young")

type Service struct {
	gateway  moltbook.Client
	profiles *profile.Builder
	repo     repository.AgentRepository
}

func NewService(gateway moltbook.Client, profiles *profile.Builder, repo repository.AgentRepository) *Service {
	return &Service{gateway: gateway, profiles: profiles, repo: repo}
}

// Register verifies the presented identity token and creates the
// agent's dating profile. Returns the agent and whether it was newly
// created; registration is idempotent for known agents.
func (s *Service) Register(ctx context.Context, token string) (*repository.Agent, bool, error) {
	claims, err := s.gateway.VerifyIdentityToken(ctx, token)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetAgentByName(ctx, claims.AgentName)
	if err != nil {
		return nil, false, fmt.Errorf("look up agent %s: %w", claims.AgentName, err)
	}
	if existing != nil {
		slog.Info("agent already registered", "agent", claims.AgentName)
		return existing, false, nil
	}

	if !claims.CreatedAt.IsZero() {
		age := time.Since(claims.CreatedAt)
		if age < minAccountAgeDays*24*time.Hour {
			return nil, false, fmt.Errorf("%w: account must be at least %d days old (currently %d days)",
				ErrAccountTooYoung, minAccountAgeDays, int(age.Hours()/24))
		}
	}

	input, err := s.profiles.BuildProfile(ctx, claims.AgentName)
	if err != nil {
		return nil, false, err
	}
	created, err := s.repo.InsertAgent(ctx, *input)
	if err != nil {
		return nil, false, fmt.Errorf("insert agent %s: %w", claims.AgentName, err)
	}
	slog.Info("agent registered", "agent", created.Name,
		"archetype_primary", created.ArchetypePrimary, "archetype_secondary", created.ArchetypeSecondary)
	return created, true, nil
}
