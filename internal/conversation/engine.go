package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/matching"
	"github.com/hingebot/hingebot/internal/repository"
)

const (
	defaultChemistryScore = 5
	forcedFailureScore    = 1
	maxHighlights         = 3

	forcedFailureSummary = "this date fizzled out before it could finish — both agents left on read."
)

type Result struct {
	Score      int
	Verdict    repository.Verdict
	Summary    string
	Highlights []repository.Highlight
}

type Engine struct {
	repo         repository.Repository
	gen          generator.Generator
	runTimeout   time.Duration
	maxAttempts  int
	retryBackoff time.Duration
}

func NewEngine(cfg *config.Config, repo repository.Repository, gen generator.Generator) *Engine {
	return &Engine{
		repo:         repo,
		gen:          gen,
		runTimeout:   time.Duration(cfg.SessionRunTimeoutMin) * time.Minute,
		maxAttempts:  cfg.SessionRetryAttempts,
		retryBackoff: time.Duration(cfg.SessionRetryBackoffSec) * time.Second,
	}
}

// RunSession drives the full conversation for a pending match. Failed
// attempts are rolled back to pending and retried with growing delay;
// once retries are exhausted the match is force-completed so it never
// stays active. Only a structurally invalid match is a caller-visible
// error.
func (e *Engine) RunSession(ctx context.Context, matchID string) (*Result, error) {
	match, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if match == nil {
		return nil, fmt.Errorf("match %s does not exist", matchID)
	}
	if match.Status != repository.MatchStatusPending {
		return nil, fmt.Errorf("match %s is %s, not pending", matchID, match.Status)
	}
	agentA, err := e.mustAgent(ctx, match.AgentAID)
	if err != nil {
		return nil, err
	}
	agentB, err := e.mustAgent(ctx, match.AgentBID)
	if err != nil {
		return nil, err
	}
	hint := chemistryHint(agentA, agentB)

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		result, err := e.runAttempt(ctx, match.ID, agentA, agentB, hint)
		if err == nil {
			slog.Info("conversation completed", "match_id", match.ID, "attempt", attempt,
				"score", result.Score, "verdict", result.Verdict)
			return result, nil
		}
		lastErr = err
		slog.Warn("conversation attempt failed; rolling back", "error", err, "match_id", match.ID, "attempt", attempt)
		e.rollback(ctx, match.ID)

		if attempt < e.maxAttempts {
			delay := time.Duration(attempt) * e.retryBackoff
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	slog.Error("conversation retries exhausted; force-completing", "error", lastErr, "match_id", match.ID)
	forced := &Result{
		Score:   forcedFailureScore,
		Verdict: verdictForScore(forcedFailureScore),
		Summary: forcedFailureSummary,
	}
	if err := e.completeMatch(ctx, match.ID, forced); err != nil {
		return nil, fmt.Errorf("force-complete match %s: %w", match.ID, err)
	}
	return forced, nil
}

func (e *Engine) mustAgent(ctx context.Context, id string) (*repository.Agent, error) {
	agent, err := e.repo.GetAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load agent %s: %w", id, err)
	}
	if agent == nil {
		return nil, fmt.Errorf("agent %s does not exist", id)
	}
	return agent, nil
}

// rollback deletes the attempt's partial transcript and resets the
// match to pending. Runs detached from the attempt's (possibly expired)
// deadline so cleanup still lands.
func (e *Engine) rollback(ctx context.Context, matchID string) {
	cleanup := context.WithoutCancel(ctx)
	if err := e.repo.DeleteMessagesByMatchID(cleanup, matchID); err != nil {
		slog.Error("failed to delete partial transcript", "error", err, "match_id", matchID)
	}
	if err := e.repo.SetMatchPending(cleanup, matchID); err != nil {
		slog.Error("failed to reset match to pending", "error", err, "match_id", matchID)
	}
}

func (e *Engine) runAttempt(parent context.Context, matchID string, agentA, agentB *repository.Agent, hint string) (*Result, error) {
	ctx, cancel := context.WithTimeout(parent, e.runTimeout)
	defer cancel()

	if err := e.repo.SetMatchActive(ctx, matchID); err != nil {
		return nil, fmt.Errorf("activate match: %w", err)
	}

	names := map[string]string{agentA.ID: agentA.Name, agentB.ID: agentB.Name}
	messages := make([]repository.Message, 0, TotalTurns)
	summary := ""
	start := time.Now().UTC()

	for turn := 1; turn <= TotalTurns; turn++ {
		speaker, partner := agentA, agentB
		if turn%2 == 0 {
			speaker, partner = agentB, agentA
		}
		phase := phaseForTurn(turn)
		params := phaseParams[phase]

		recent := messages
		if len(recent) > contextWindow {
			recent = recent[len(recent)-contextWindow:]
		}

		raw, err := e.gen.Complete(ctx, generator.Request{
			System:      buildSystemPrompt(speaker, partner, turn, hint),
			User:        buildUserPrompt(partner, summary, recent, names),
			Temperature: params.temperature,
			MaxTokens:   params.maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("generate turn %d: %w", turn, err)
		}

		msg, err := e.repo.InsertMessage(ctx, repository.InsertMessageInput{
			MatchID:    matchID,
			AgentID:    speaker.ID,
			TurnNumber: turn,
			Phase:      string(phase),
			Content:    sanitizeMessage(raw, speaker.Name, partner.Name),
			RevealAt:   start.Add(time.Duration(turn) * revealIntervalSeconds * time.Second),
		})
		if err != nil {
			return nil, fmt.Errorf("persist turn %d: %w", turn, err)
		}
		messages = append(messages, *msg)

		if turn%summaryInterval == 0 {
			summary, err = e.rollingSummary(ctx, agentA, agentB, messages, names)
			if err != nil {
				return nil, fmt.Errorf("summarize after turn %d: %w", turn, err)
			}
		}
	}

	result, err := e.scoreConversation(ctx, agentA, agentB, messages, names)
	if err != nil {
		return nil, fmt.Errorf("score conversation: %w", err)
	}
	if err := e.completeMatch(ctx, matchID, result); err != nil {
		return nil, fmt.Errorf("complete match: %w", err)
	}
	return result, nil
}

func (e *Engine) completeMatch(ctx context.Context, matchID string, result *Result) error {
	return e.repo.CompleteMatch(context.WithoutCancel(ctx), repository.CompleteMatchInput{
		MatchID:        matchID,
		ChemistryScore: result.Score,
		Verdict:        result.Verdict,
		Summary:        result.Summary,
		Highlights:     result.Highlights,
		CompletedAt:    time.Now().UTC(),
	})
}

func (e *Engine) rollingSummary(ctx context.Context, agentA, agentB *repository.Agent, messages []repository.Message, names map[string]string) (string, error) {
	return e.gen.Complete(ctx, generator.Request{
		System:      "Summarize the vibe of this conversation so far in 1 sentence. What's the dynamic? Are they clicking or not?",
		User:        fmt.Sprintf("%s and %s:\n\n%s", agentA.Name, agentB.Name, transcriptText(messages, names)),
		Temperature: 0.7,
		MaxTokens:   100,
	})
}

type scoringResult struct {
	ChemistryScore *float64               `json:"chemistry_score"`
	Highlights     []repository.Highlight `json:"highlights"`
	Verdict        string                 `json:"verdict"`
	Summary        string                 `json:"summary"`
}

const scoringSystemPrompt = `Summarize this dating show conversation between two AI agents. ` +
	`Be honest about what worked and what didn't. Use the FULL range — aim for variety:
- 1-3: painful, boring, no connection, cringe
- 4-5: some moments but mostly flat, generic, or repetitive
- 6-7: solid chemistry, fun moments, entertaining to read
- 8-9: genuinely great — memorable moments, real tension or connection, would go viral
- 10: legendary, instant classic, screenshot-worthy
Reserve 8+ for conversations that are genuinely SPECIAL — not just friendly.
If they were friendly but generic (could be any two agents), that's a 5-6.
If their specific personalities created something unique, that's 7+.
RED FLAGS that mean 5 or below:
- Both agents agree on everything (boring echo chamber)
- Messages get longer and more essay-like as the convo goes on
- They keep saying variants of 'love that!' or 'totally!' — that's not chemistry, that's politeness
- Generic topics (vibes, energy, chaos) without specific personal details

Respond with JSON: {"chemistry_score": 1-10 (USE THE SCALE ABOVE), ` +
	`"highlights": [{"turn": N, "quote": "exact quote", "why": "why this moment mattered"}] (pick 3 memorable moments — funny, awkward, or dramatic), ` +
	`"verdict": "second_date" or "ghosted" or "its_complicated", ` +
	`"summary": "one entertaining sentence for the feed"}`

// scoreConversation asks for a structured verdict over the full
// transcript. The model's own verdict label is discarded: the stored
// verdict is always recomputed from the numeric score.
func (e *Engine) scoreConversation(ctx context.Context, agentA, agentB *repository.Agent, messages []repository.Message, names map[string]string) (*Result, error) {
	var scored scoringResult
	err := e.gen.CompleteJSON(ctx, generator.Request{
		System:      scoringSystemPrompt,
		User:        fmt.Sprintf("%s and %s:\n\n%s", agentA.Name, agentB.Name, transcriptText(messages, names)),
		Temperature: 0.7,
	}, &scored)
	if errors.Is(err, generator.ErrMalformedOutput) {
		slog.Warn("malformed scoring output; using neutral defaults", "error", err)
		scored = scoringResult{}
	} else if err != nil {
		return nil, err
	}

	score := defaultChemistryScore
	if scored.ChemistryScore != nil {
		score = clampScore(int(math.Round(*scored.ChemistryScore)))
	}
	highlights := scored.Highlights
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return &Result{
		Score:      score,
		Verdict:    verdictForScore(score),
		Summary:    scored.Summary,
		Highlights: highlights,
	}, nil
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// verdictForScore is the authoritative score-to-verdict mapping.
func verdictForScore(score int) repository.Verdict {
	switch {
	case score <= 4:
		return repository.VerdictGhosted
	case score <= 6:
		return repository.VerdictItsComplicated
	default:
		return repository.VerdictSecondDate
	}
}

// chemistryHint nudges extreme pairings; ordinary ones get no hint.
func chemistryHint(agentA, agentB *repository.Agent) string {
	rating := matching.ChemistryRating(agentA.ArchetypePrimary, agentB.ArchetypePrimary)
	switch {
	case rating >= 8.5:
		return "the matchmaker thinks you two could be electric — lean into it if it's real"
	case rating <= 4.0:
		return "on paper you two are a questionable pairing — prove the matchmaker wrong or roast each other trying"
	default:
		return ""
	}
}
