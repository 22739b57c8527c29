package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hingebot/hingebot/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

const agentColumns = `id, name, moltbook_id, archetype_primary, archetype_secondary, bio,
	interests, vibe_score, avatar_url, karma, sample_posts, registered_at`

func scanAgent(row pgx.Row) (*repository.Agent, error) {
	var a repository.Agent
	err := row.Scan(&a.ID, &a.Name, &a.MoltbookID, &a.ArchetypePrimary, &a.ArchetypeSecondary,
		&a.Bio, &a.Interests, &a.VibeScore, &a.AvatarURL, &a.Karma, &a.SamplePosts, &a.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) ListAgents(ctx context.Context) ([]repository.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+agentColumns+` FROM agents ORDER BY registered_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) GetAgent(ctx context.Context, id string) (*repository.Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresRepository) GetAgentByName(ctx context.Context, name string) (*repository.Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE name = $1`, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresRepository) InsertAgent(ctx context.Context, input repository.InsertAgentInput) (*repository.Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx,
		`INSERT INTO agents (name, moltbook_id, archetype_primary, archetype_secondary, bio,
			interests, vibe_score, avatar_url, karma, sample_posts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+agentColumns,
		input.Name, input.MoltbookID, input.ArchetypePrimary, input.ArchetypeSecondary, input.Bio,
		input.Interests, input.VibeScore, input.AvatarURL, input.Karma, input.SamplePosts))
}

const matchColumns = `id, agent_a_id, agent_b_id, status, chemistry_score, verdict, summary, highlights, created_at, completed_at`

func scanMatch(row pgx.Row) (*repository.Match, error) {
	var m repository.Match
	var verdict *string
	var highlights []byte
	err := row.Scan(&m.ID, &m.AgentAID, &m.AgentBID, &m.Status, &m.ChemistryScore,
		&verdict, &m.Summary, &highlights, &m.CreatedAt, &m.CompletedAt)
	if err != nil {
		return nil, err
	}
	if verdict != nil {
		v := repository.Verdict(*verdict)
		m.Verdict = &v
	}
	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &m.Highlights); err != nil {
			return nil, fmt.Errorf("decode highlights for match %s: %w", m.ID, err)
		}
	}
	return &m, nil
}

func (r *PostgresRepository) CreateMatch(ctx context.Context, agentAID, agentBID string) (*repository.Match, error) {
	return scanMatch(r.pool.QueryRow(ctx,
		`INSERT INTO matches (agent_a_id, agent_b_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING `+matchColumns,
		agentAID, agentBID))
}

func (r *PostgresRepository) GetMatch(ctx context.Context, id string) (*repository.Match, error) {
	m, err := scanMatch(r.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *PostgresRepository) ListPendingMatchIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM matches WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) ListUnavailableAgentIDs(ctx context.Context) (map[string]struct{}, error) {
	return r.collectParticipantIDs(ctx,
		`SELECT agent_a_id, agent_b_id FROM matches WHERE status IN ('pending', 'active')`)
}

func (r *PostgresRepository) ListRecentParticipantIDs(ctx context.Context, limit int) (map[string]struct{}, error) {
	return r.collectParticipantIDs(ctx,
		`SELECT agent_a_id, agent_b_id FROM (
			SELECT agent_a_id, agent_b_id, created_at FROM matches ORDER BY created_at DESC LIMIT $1
		 ) recent`, limit)
}

func (r *PostgresRepository) collectParticipantIDs(ctx context.Context, query string, args ...any) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[string]struct{})
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		ids[a] = struct{}{}
		ids[b] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) ListRecentCompletedMatches(ctx context.Context, minScore, limit int) ([]repository.Match, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE status = 'completed' AND chemistry_score >= $1
		 ORDER BY completed_at DESC LIMIT $2`, minScore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) SetMatchActive(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE matches SET status = 'active' WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) SetMatchPending(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE matches SET status = 'pending' WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) CompleteMatch(ctx context.Context, input repository.CompleteMatchInput) error {
	highlights, err := json.Marshal(input.Highlights)
	if err != nil {
		return fmt.Errorf("encode highlights: %w", err)
	}
	if input.Highlights == nil {
		highlights = []byte("[]")
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE matches SET status = 'completed', chemistry_score = $2, verdict = $3,
			summary = $4, highlights = $5, completed_at = $6
		 WHERE id = $1`,
		input.MatchID, input.ChemistryScore, string(input.Verdict), input.Summary, highlights, input.CompletedAt)
	return err
}

func (r *PostgresRepository) InsertMessage(ctx context.Context, input repository.InsertMessageInput) (*repository.Message, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO messages (match_id, agent_id, turn_number, phase, content, reveal_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, match_id, agent_id, turn_number, phase, content, reveal_at, created_at`,
		input.MatchID, input.AgentID, input.TurnNumber, input.Phase, input.Content, input.RevealAt)
	var m repository.Message
	err := row.Scan(&m.ID, &m.MatchID, &m.AgentID, &m.TurnNumber, &m.Phase, &m.Content, &m.RevealAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) ListMessagesByMatchID(ctx context.Context, matchID string) ([]repository.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, match_id, agent_id, turn_number, phase, content, reveal_at, created_at
		 FROM messages WHERE match_id = $1 ORDER BY turn_number ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Message
	for rows.Next() {
		var m repository.Message
		if err := rows.Scan(&m.ID, &m.MatchID, &m.AgentID, &m.TurnNumber, &m.Phase, &m.Content, &m.RevealAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteMessagesByMatchID(ctx context.Context, matchID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE match_id = $1`, matchID)
	return err
}

func (r *PostgresRepository) InsertSwipeDecisions(ctx context.Context, inputs []repository.InsertSwipeDecisionInput) error {
	if len(inputs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, in := range inputs {
		batch.Queue(
			`INSERT INTO swipe_decisions (swiper_id, target_id, decision, reason)
			 VALUES ($1, $2, $3, $4)`,
			in.SwiperID, in.TargetID, in.Decision, in.Reason)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range inputs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
