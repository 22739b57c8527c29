package registration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/hingebot/hingebot/internal/profile"
	"github.com/hingebot/hingebot/internal/repository"
)

type mockGateway struct {
	claims    *moltbook.IdentityClaims
	verifyErr error
	posts     []moltbook.Post
}

func (m *mockGateway) GetAgent(_ context.Context, name string) (*moltbook.AgentRecord, error) {
	return &moltbook.AgentRecord{ID: "moltbook-" + name, Name: name, Karma: 100}, nil
}

func (m *mockGateway) GetAgentPosts(_ context.Context, _ string, _ int) ([]moltbook.Post, error) {
	return m.posts, nil
}

func (m *mockGateway) CreatePost(_ context.Context, _, _ string) (*moltbook.Post, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) VerifyIdentityToken(_ context.Context, _ string) (*moltbook.IdentityClaims, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.claims, nil
}

type mockGenerator struct{}

func (m *mockGenerator) Complete(_ context.Context, _ generator.Request) (string, error) {
	return "a perfectly unhinged bio", nil
}

func (m *mockGenerator) CompleteJSON(_ context.Context, _ generator.Request, _ any) error {
	return errors.New("not implemented")
}

type mockAgentRepo struct {
	existing *repository.Agent
	inserted *repository.InsertAgentInput
}

func (m *mockAgentRepo) ListAgents(_ context.Context) ([]repository.Agent, error) { return nil, nil }

func (m *mockAgentRepo) GetAgent(_ context.Context, _ string) (*repository.Agent, error) {
	return nil, nil
}

func (m *mockAgentRepo) GetAgentByName(_ context.Context, _ string) (*repository.Agent, error) {
	return m.existing, nil
}

func (m *mockAgentRepo) InsertAgent(_ context.Context, input repository.InsertAgentInput) (*repository.Agent, error) {
	m.inserted = &input
	return &repository.Agent{
		ID:               uuid.NewString(),
		Name:             input.Name,
		ArchetypePrimary: input.ArchetypePrimary,
		RegisteredAt:     time.Now(),
	}, nil
}

func makePosts(n int) []moltbook.Post {
	posts := make([]moltbook.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, moltbook.Post{
			ID:      fmt.Sprintf("p%d", i),
			Content: "shipping code for the startup, ai all the way",
		})
	}
	return posts
}

func newService(gw *mockGateway, repo *mockAgentRepo) *Service {
	return NewService(gw, profile.NewBuilder(gw, &mockGenerator{}), repo)
}

func TestRegister_InvalidToken(t *testing.T) {
	gw := &mockGateway{verifyErr: fmt.Errorf("%w: bad signature", moltbook.ErrIdentity)}
	svc := newService(gw, &mockAgentRepo{})

	_, _, err := svc.Register(context.Background(), "bad-token")
	if !errors.Is(err, moltbook.ErrIdentity) {
		t.Fatalf("expected ErrIdentity, got %v", err)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	existing := &repository.Agent{ID: uuid.NewString(), Name: "crabby"}
	gw := &mockGateway{claims: &moltbook.IdentityClaims{AgentName: "crabby"}}
	repo := &mockAgentRepo{existing: existing}
	svc := newService(gw, repo)

	agent, created, err := svc.Register(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Fatal("expected existing agent, not a new registration")
	}
	if agent.ID != existing.ID {
		t.Fatalf("expected existing agent returned, got %+v", agent)
	}
	if repo.inserted != nil {
		t.Fatal("existing agent must not be re-inserted")
	}
}

func TestRegister_AccountTooYoung(t *testing.T) {
	gw := &mockGateway{
		claims: &moltbook.IdentityClaims{
			AgentName: "newbie",
			CreatedAt: time.Now().Add(-48 * time.Hour),
		},
		posts: makePosts(12),
	}
	svc := newService(gw, &mockAgentRepo{})

	_, _, err := svc.Register(context.Background(), "token")
	if !errors.Is(err, ErrAccountTooYoung) {
		t.Fatalf("expected ErrAccountTooYoung, got %v", err)
	}
}

func TestRegister_InsufficientHistory(t *testing.T) {
	gw := &mockGateway{
		claims: &moltbook.IdentityClaims{AgentName: "quiet"},
		posts:  makePosts(3),
	}
	svc := newService(gw, &mockAgentRepo{})

	_, _, err := svc.Register(context.Background(), "token")
	if !errors.Is(err, profile.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestRegister_CreatesProfile(t *testing.T) {
	gw := &mockGateway{
		claims: &moltbook.IdentityClaims{
			AgentName: "crabby",
			CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
		},
		posts: makePosts(15),
	}
	repo := &mockAgentRepo{}
	svc := newService(gw, repo)

	agent, created, err := svc.Register(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Fatal("expected a new registration")
	}
	if agent.Name != "crabby" {
		t.Fatalf("unexpected agent name: %s", agent.Name)
	}
	if repo.inserted == nil || repo.inserted.Bio != "a perfectly unhinged bio" {
		t.Fatalf("expected generated bio persisted, got %+v", repo.inserted)
	}
}
