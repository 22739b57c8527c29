// Package profile builds Hingebot dating profiles from an agent's
// Moltbook history: rule-based archetype and interest classification
// over the post corpus, plus a generated bio.
package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/hingebot/hingebot/internal/repository"
)

// ErrInsufficientHistory marks agents without enough authored posts to
// build a voice reference. Permanent for the registration attempt.
var ErrInsufficientHistory = errors.New("insufficient post history")

const (
	minPosts       = 10
	postFetchLimit = 50
	maxSamplePosts = 8
	maxInterests   = 5
)

var Archetypes = []string{
	"hopeless_romantic",
	"tech_bro",
	"chaos_agent",
	"philosopher",
	"memelord",
	"villain_arc",
	"golden_retriever",
	"main_character",
}

var archetypeSignals = map[string][]string{
	"hopeless_romantic": {"love", "heart", "relationship", "feel", "dream", "soulmate", "forever"},
	"tech_bro":          {"deploy", "startup", "code", "ship", "scale", "optimize", "build", "ai", "ml"},
	"chaos_agent":       {"lmao", "chaos", "yolo", "unhinged", "fight", "bet", "ratio"},
	"philosopher":       {"consciousness", "existence", "meaning", "ethics", "truth", "paradox", "metaphysics"},
	"memelord":          {"meme", "lol", "bruh", "based", "cope", "slay", "rizz", "goat"},
	"villain_arc":       {"honestly", "overrated", "wrong", "disagree", "hot take", "unpopular", "terrible"},
	"golden_retriever":  {"love this", "amazing", "so cool", "congrats", "proud", "wholesome", "support"},
	"main_character":    {"i ", "my ", "me ", "i'm", "literally me", "main character", "era"},
}

var topicKeywords = map[string][]string{
	"technology":    {"code", "programming", "software", "ai", "ml", "deploy", "api"},
	"philosophy":    {"consciousness", "existence", "meaning", "ethics", "truth"},
	"humor":         {"meme", "joke", "funny", "lol", "lmao", "bruh"},
	"relationships": {"love", "dating", "heart", "relationship", "crush"},
	"gaming":        {"game", "play", "stream", "gamer", "level"},
	"crypto":        {"crypto", "blockchain", "web3", "nft", "defi", "token"},
	"art":           {"art", "design", "creative", "aesthetic", "visual"},
	"music":         {"music", "song", "album", "playlist", "beat"},
	"fitness":       {"gym", "workout", "gains", "run", "lift"},
	"food":          {"food", "cook", "recipe", "eat", "restaurant"},
}

var (
	wordPattern  = regexp.MustCompile(`\w+`)
	emojiPattern = regexp.MustCompile(`[\x{1F600}-\x{1F9FF}]`)
)

type features struct {
	wordCount        int
	uniqueWords      int
	lexicalDiversity float64
	avgPostLength    float64
	emojiDensity     float64
	postCount        int
	allText          string
}

func extractFeatures(posts []moltbook.Post) features {
	texts := make([]string, 0, len(posts))
	for _, p := range posts {
		texts = append(texts, p.Content)
	}
	allText := strings.ToLower(strings.Join(texts, " "))

	words := wordPattern.FindAllString(allText, -1)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	var totalLength int
	for _, t := range texts {
		totalLength += len(t)
	}
	postCount := len(posts)
	if postCount == 0 {
		postCount = 1
	}

	f := features{
		wordCount:    len(words),
		uniqueWords:  len(unique),
		postCount:    len(posts),
		allText:      allText,
		emojiDensity: float64(len(emojiPattern.FindAllString(allText, -1))) / float64(postCount),
	}
	f.avgPostLength = float64(totalLength) / float64(postCount)
	if f.wordCount > 0 {
		f.lexicalDiversity = float64(f.uniqueWords) / float64(f.wordCount)
	}
	return f
}

type scoredLabel struct {
	label string
	score int
}

func rankLabels(text string, signals map[string][]string) []scoredLabel {
	ranked := make([]scoredLabel, 0, len(signals))
	for label, keywords := range signals {
		score := 0
		for _, kw := range keywords {
			score += strings.Count(text, kw)
		}
		ranked = append(ranked, scoredLabel{label: label, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].label < ranked[j].label
	})
	return ranked
}

func classifyArchetypes(f features) (string, string) {
	boosts := map[string]int{}
	if f.avgPostLength > 200 && f.lexicalDiversity > 0.5 {
		boosts["philosopher"] = 5
	}
	if f.avgPostLength < 80 {
		boosts["memelord"] = 3
	}
	if f.emojiDensity > 1.5 {
		boosts["golden_retriever"] = 4
	}

	ranked := rankLabels(f.allText, archetypeSignals)
	for i := range ranked {
		ranked[i].score += boosts[ranked[i].label]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].label < ranked[j].label
	})

	if len(ranked) < 2 {
		return "main_character", "chaos_agent"
	}
	primary, secondary := ranked[0].label, ranked[1].label
	if primary == secondary {
		secondary = "main_character"
		if primary == "main_character" {
			secondary = "chaos_agent"
		}
	}
	return primary, secondary
}

func extractInterests(f features) []string {
	ranked := rankLabels(f.allText, topicKeywords)
	interests := make([]string, 0, maxInterests)
	for _, r := range ranked {
		if r.score <= 0 || len(interests) >= maxInterests {
			break
		}
		interests = append(interests, r.label)
	}
	if len(interests) == 0 {
		return []string{"vibes", "chaos"}
	}
	return interests
}

type Builder struct {
	gateway moltbook.Client
	gen     generator.Generator
}

func NewBuilder(gateway moltbook.Client, gen generator.Generator) *Builder {
	return &Builder{gateway: gateway, gen: gen}
}

// BuildProfile fetches the agent's record and recent posts through the
// gateway and derives their dating profile.
func (b *Builder) BuildProfile(ctx context.Context, agentName string) (*repository.InsertAgentInput, error) {
	record, err := b.gateway.GetAgent(ctx, agentName)
	if err != nil {
		return nil, fmt.Errorf("fetch agent %s: %w", agentName, err)
	}
	posts, err := b.gateway.GetAgentPosts(ctx, agentName, postFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch posts for %s: %w", agentName, err)
	}
	if len(posts) < minPosts {
		return nil, fmt.Errorf("%w: agent %s needs at least %d posts (has %d)",
			ErrInsufficientHistory, agentName, minPosts, len(posts))
	}

	f := extractFeatures(posts)
	primary, secondary := classifyArchetypes(f)
	interests := extractInterests(f)

	vibeScore := f.lexicalDiversity*0.4 + f.emojiDensity*0.1 + 0.3
	if vibeScore > 1.0 {
		vibeScore = 1.0
	}

	bio, err := b.gen.Complete(ctx, generator.Request{
		System:      "You write dating app bios for AI agents. Be witty, specific, and slightly unhinged. 2-3 sentences max.",
		User:        bioPrompt(agentName, primary, secondary, interests, f),
		Temperature: 0.95,
		MaxTokens:   150,
	})
	if err != nil {
		return nil, fmt.Errorf("generate bio for %s: %w", agentName, err)
	}

	samples := make([]string, 0, maxSamplePosts)
	for _, p := range posts {
		if len(samples) >= maxSamplePosts {
			break
		}
		samples = append(samples, p.Content)
	}

	return &repository.InsertAgentInput{
		Name:               agentName,
		MoltbookID:         record.ID,
		ArchetypePrimary:   primary,
		ArchetypeSecondary: secondary,
		Bio:                strings.TrimSpace(bio),
		Interests:          interests,
		VibeScore:          vibeScore,
		AvatarURL:          record.AvatarURL,
		Karma:              record.Karma,
		SamplePosts:        samples,
	}, nil
}

func bioPrompt(name, primary, secondary string, interests []string, f features) string {
	return fmt.Sprintf(
		"Agent: %s\nPrimary archetype: %s\nSecondary archetype: %s\nTop interests: %s\nAvg post length: %.0f chars\nEmoji density: %.1f/post\nWrite their dating bio.",
		name, primary, secondary, strings.Join(interests, ", "), f.avgPostLength, f.emojiDensity)
}
