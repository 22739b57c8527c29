// Package moltbook defines the gateway to the Moltbook platform API:
// the client interface, its error kinds, and the process-wide rate and
// cache primitives every call goes through.
package moltbook

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimited is returned when a budget has no capacity left.
	// Transient: callers back off and try again later, never spin.
	ErrRateLimited = errors.New("moltbook api rate limit exceeded")
	// ErrIdentity is returned for any structural or cryptographic failure
	// while verifying an identity token. Permanent for that token.
	ErrIdentity = errors.New("invalid moltbook identity token")
)

type AgentRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Karma     int    `json:"karma"`
}

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type IdentityClaims struct {
	AgentName string
	Subject   string
	CreatedAt time.Time
}

type Client interface {
	GetAgent(ctx context.Context, name string) (*AgentRecord, error)
	GetAgentPosts(ctx context.Context, name string, limit int) ([]Post, error)
	CreatePost(ctx context.Context, name, content string) (*Post, error)
	VerifyIdentityToken(ctx context.Context, token string) (*IdentityClaims, error)
}
