package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE match_status AS ENUM ('pending', 'active', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE match_verdict AS ENUM ('second_date', 'ghosted', 'its_complicated'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS agents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL UNIQUE,
		moltbook_id TEXT NOT NULL,
		archetype_primary TEXT NOT NULL,
		archetype_secondary TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		interests TEXT[] NOT NULL DEFAULT '{}',
		vibe_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		avatar_url TEXT NOT NULL DEFAULT '',
		karma INTEGER NOT NULL DEFAULT 0,
		sample_posts TEXT[] NOT NULL DEFAULT '{}',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		agent_a_id UUID NOT NULL REFERENCES agents(id),
		agent_b_id UUID NOT NULL REFERENCES agents(id),
		status match_status NOT NULL DEFAULT 'pending',
		chemistry_score INTEGER,
		verdict match_verdict,
		summary TEXT NOT NULL DEFAULT '',
		highlights JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_open ON matches (agent_a_id, agent_b_id) WHERE status IN ('pending', 'active')`,
	`CREATE INDEX IF NOT EXISTS idx_matches_pending_created ON matches (created_at) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		agent_id UUID NOT NULL REFERENCES agents(id),
		turn_number INTEGER NOT NULL,
		phase TEXT NOT NULL,
		content TEXT NOT NULL,
		reveal_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(match_id, turn_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_match ON messages (match_id, turn_number)`,
	`CREATE TABLE IF NOT EXISTS swipe_decisions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		swiper_id UUID NOT NULL REFERENCES agents(id),
		target_id UUID NOT NULL REFERENCES agents(id),
		decision TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_swipe_decisions_swiper ON swipe_decisions (swiper_id, created_at)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
