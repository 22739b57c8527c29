package repository

import (
	"context"
	"time"
)

type InsertAgentInput struct {
	Name               string
	MoltbookID         string
	ArchetypePrimary   string
	ArchetypeSecondary string
	Bio                string
	Interests          []string
	VibeScore          float64
	AvatarURL          string
	Karma              int
	SamplePosts        []string
}

type InsertMessageInput struct {
	MatchID    string
	AgentID    string
	TurnNumber int
	Phase      string
	Content    string
	RevealAt   time.Time
}

type InsertSwipeDecisionInput struct {
	SwiperID string
	TargetID string
	Decision string
	Reason   string
}

type CompleteMatchInput struct {
	MatchID        string
	ChemistryScore int
	Verdict        Verdict
	Summary        string
	Highlights     []Highlight
	CompletedAt    time.Time
}

type AgentRepository interface {
	ListAgents(ctx context.Context) ([]Agent, error)
	GetAgent(ctx context.Context, id string) (*Agent, error)
	GetAgentByName(ctx context.Context, name string) (*Agent, error)
	InsertAgent(ctx context.Context, input InsertAgentInput) (*Agent, error)
}

type MatchRepository interface {
	CreateMatch(ctx context.Context, agentAID, agentBID string) (*Match, error)
	GetMatch(ctx context.Context, id string) (*Match, error)
	// ListPendingMatchIDs returns ids of pending matches, oldest first.
	ListPendingMatchIDs(ctx context.Context, limit int) ([]string, error)
	// ListUnavailableAgentIDs returns ids of agents in a pending or active match.
	ListUnavailableAgentIDs(ctx context.Context) (map[string]struct{}, error)
	// ListRecentParticipantIDs returns ids of agents appearing in the most
	// recently created matches, bounded by limit matches.
	ListRecentParticipantIDs(ctx context.Context, limit int) (map[string]struct{}, error)
	ListRecentCompletedMatches(ctx context.Context, minScore, limit int) ([]Match, error)
	SetMatchActive(ctx context.Context, id string) error
	SetMatchPending(ctx context.Context, id string) error
	CompleteMatch(ctx context.Context, input CompleteMatchInput) error
}

type MessageRepository interface {
	InsertMessage(ctx context.Context, input InsertMessageInput) (*Message, error)
	ListMessagesByMatchID(ctx context.Context, matchID string) ([]Message, error)
	DeleteMessagesByMatchID(ctx context.Context, matchID string) error
}

type SwipeRepository interface {
	InsertSwipeDecisions(ctx context.Context, inputs []InsertSwipeDecisionInput) error
}

type Repository interface {
	AgentRepository
	MatchRepository
	MessageRepository
	SwipeRepository
}
