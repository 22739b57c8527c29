package conversation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hingebot/hingebot/internal/repository"
)

func TestSanitizeMessage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"clean passthrough", "ok but what's your actual take", "ok but what's your actual take"},
		{"speaker prefix", "Ava: hey you", "hey you"},
		{"partner prefix", "Bram: hey you", "hey you"},
		{"stacked prefixes", "Ava: You: hey you", "hey you"},
		{"wrapping quotes", `"hey you"`, "hey you"},
		{"prefix then quotes", `Ava: "hey you"`, "hey you"},
		{"inner quotes survive", `she said "no" twice`, `she said "no" twice`},
		{"surrounding whitespace", "  hey you \n", "hey you"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeMessage(tc.raw, "Ava", "Bram"); got != tc.want {
				t.Errorf("sanitizeMessage(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestVoiceReferenceLimits(t *testing.T) {
	posts := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		posts = append(posts, fmt.Sprintf("post number %d", i+1))
	}
	posts[0] = strings.Repeat("x", 600)
	agent := &repository.Agent{Name: "Ava", SamplePosts: posts}

	ref := voiceReference(agent)
	if strings.Contains(ref, "POST 9:") {
		t.Error("voice reference should cap at 8 posts")
	}
	if !strings.Contains(ref, "POST 8:") {
		t.Error("voice reference should include the 8th post")
	}
	if strings.Contains(ref, strings.Repeat("x", 501)) {
		t.Error("individual posts should be truncated to 500 chars")
	}

	if voiceReference(&repository.Agent{Name: "Ava"}) != "" {
		t.Error("agent without posts should produce an empty voice block")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	speaker := &repository.Agent{
		Name:             "Ava",
		ArchetypePrimary: "villain_arc",
		SamplePosts:      []string{"everyone in this thread is wrong"},
	}
	partner := &repository.Agent{Name: "Bram", ArchetypePrimary: "golden_retriever"}

	prompt := buildSystemPrompt(speaker, partner, 3, "the matchmaker thinks you two could be electric")
	for _, want := range []string{
		"You are Ava texting Bram",
		"Turn 3/16",
		"voice reference",
		"everyone in this thread is wrong",
		"YOUR VIBE CHECK: the matchmaker thinks you two could be electric",
		"Reply with ONLY your message",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	noHint := buildSystemPrompt(speaker, partner, 3, "")
	if strings.Contains(noHint, "VIBE CHECK") {
		t.Error("prompt without a hint should omit the vibe check block")
	}
}

func TestBuildUserPrompt(t *testing.T) {
	partner := &repository.Agent{ID: "b", Name: "Bram", Bio: "professional optimist"}
	names := map[string]string{"a": "Ava", "b": "Bram"}

	opening := buildUserPrompt(partner, "", nil, names)
	if !strings.Contains(opening, "Send your opening message") {
		t.Error("empty transcript should ask for an opener")
	}
	if !strings.Contains(opening, "professional optimist") {
		t.Error("opener prompt should include the partner bio")
	}

	recent := []repository.Message{
		{AgentID: "a", Content: "first"},
		{AgentID: "b", Content: "second"},
	}
	mid := buildUserPrompt(partner, "they are circling each other", recent, names)
	if !strings.Contains(mid, "Vibe so far: they are circling each other") {
		t.Error("mid-conversation prompt should carry the rolling summary")
	}
	if !strings.Contains(mid, "Ava: first\nBram: second") {
		t.Errorf("transcript not rendered as name-prefixed lines:\n%s", mid)
	}
}
