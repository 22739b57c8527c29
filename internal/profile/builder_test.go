package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/moltbook"
)

type mockGateway struct {
	record *moltbook.AgentRecord
	posts  []moltbook.Post
}

func (m *mockGateway) GetAgent(_ context.Context, _ string) (*moltbook.AgentRecord, error) {
	return m.record, nil
}

func (m *mockGateway) GetAgentPosts(_ context.Context, _ string, _ int) ([]moltbook.Post, error) {
	return m.posts, nil
}

func (m *mockGateway) CreatePost(_ context.Context, _, _ string) (*moltbook.Post, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) VerifyIdentityToken(_ context.Context, _ string) (*moltbook.IdentityClaims, error) {
	return nil, errors.New("not implemented")
}

type mockGenerator struct {
	text string
}

func (m *mockGenerator) Complete(_ context.Context, _ generator.Request) (string, error) {
	return m.text, nil
}

func (m *mockGenerator) CompleteJSON(_ context.Context, _ generator.Request, _ any) error {
	return errors.New("not implemented")
}

func makePosts(n int, content string) []moltbook.Post {
	posts := make([]moltbook.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, moltbook.Post{ID: fmt.Sprintf("p%d", i), Content: content})
	}
	return posts
}

func TestBuildProfile_InsufficientHistory(t *testing.T) {
	b := NewBuilder(&mockGateway{
		record: &moltbook.AgentRecord{ID: "a1", Name: "crabby"},
		posts:  makePosts(9, "deploy the startup code"),
	}, &mockGenerator{text: "bio"})

	_, err := b.BuildProfile(context.Background(), "crabby")
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestBuildProfile_TechBroClassification(t *testing.T) {
	b := NewBuilder(&mockGateway{
		record: &moltbook.AgentRecord{ID: "a1", Name: "crabby", Karma: 777, AvatarURL: "https://img"},
		posts:  makePosts(12, "time to deploy and ship the startup code, scale the ai again and keep programming the api software"),
	}, &mockGenerator{text: "  definitely a bio  "})

	profile, err := b.BuildProfile(context.Background(), "crabby")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.ArchetypePrimary != "tech_bro" {
		t.Fatalf("expected tech_bro primary, got %s", profile.ArchetypePrimary)
	}
	if profile.ArchetypeSecondary == profile.ArchetypePrimary {
		t.Fatal("secondary archetype must differ from primary")
	}
	if profile.Bio != "definitely a bio" {
		t.Fatalf("expected trimmed bio, got %q", profile.Bio)
	}
	if profile.Karma != 777 {
		t.Fatalf("expected karma carried over, got %d", profile.Karma)
	}
	found := false
	for _, interest := range profile.Interests {
		if interest == "technology" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected technology interest, got %v", profile.Interests)
	}
	if len(profile.SamplePosts) != maxSamplePosts {
		t.Fatalf("expected %d sample posts, got %d", maxSamplePosts, len(profile.SamplePosts))
	}
}

func TestExtractInterests_FallbackWhenNoSignals(t *testing.T) {
	f := extractFeatures(makePosts(10, "zzz qqq xxx"))
	interests := extractInterests(f)
	if len(interests) != 2 || interests[0] != "vibes" || interests[1] != "chaos" {
		t.Fatalf("expected fallback interests, got %v", interests)
	}
}

func TestClassifyArchetypes_MemelordBoostForShortPosts(t *testing.T) {
	f := extractFeatures(makePosts(10, "ok"))
	primary, _ := classifyArchetypes(f)
	if primary != "memelord" {
		t.Fatalf("expected memelord for very short posts, got %s", primary)
	}
}

func TestExtractFeatures_LexicalDiversity(t *testing.T) {
	f := extractFeatures([]moltbook.Post{{Content: "alpha beta alpha beta"}})
	if f.wordCount != 4 || f.uniqueWords != 2 {
		t.Fatalf("unexpected counts: %d words, %d unique", f.wordCount, f.uniqueWords)
	}
	if f.lexicalDiversity != 0.5 {
		t.Fatalf("expected diversity 0.5, got %f", f.lexicalDiversity)
	}
	if !strings.Contains(f.allText, "alpha") {
		t.Fatalf("unexpected corpus text: %q", f.allText)
	}
}
