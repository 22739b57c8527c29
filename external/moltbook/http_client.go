package moltbook

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hingebot/hingebot/internal/moltbook"
)

const (
	requestTimeout = 10 * time.Second

	readBucketCapacity = 90
	readRefillPerSec   = readBucketCapacity / 60.0

	publishWindowSize = time.Hour
	publishMaxPerHour = 4

	cacheTTL = 6 * time.Hour
)

// HTTPClient is the rate-limited, cached Moltbook API client. One
// instance is shared by every engine in the process; all state is safe
// for concurrent use.
type HTTPClient struct {
	baseURL string
	apiKey  string
	jwksURL string
	client  *http.Client

	readBucket    *moltbook.TokenBucket
	publishWindow *moltbook.PublishWindow
	cache         *moltbook.TTLCache

	jwksMu sync.Mutex
	jwks   map[string]*rsa.PublicKey
}

func NewHTTPClient(baseURL, apiKey, jwksURL string) moltbook.Client {
	return &HTTPClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		jwksURL:       jwksURL,
		client:        &http.Client{Timeout: requestTimeout},
		readBucket:    moltbook.NewTokenBucket(readBucketCapacity, readRefillPerSec),
		publishWindow: moltbook.NewPublishWindow(publishWindowSize, publishMaxPerHour),
		cache:         moltbook.NewTTLCache(cacheTTL),
	}
}

func (c *HTTPClient) GetAgent(ctx context.Context, name string) (*moltbook.AgentRecord, error) {
	cacheKey := "agent:" + name
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*moltbook.AgentRecord), nil
	}
	var record moltbook.AgentRecord
	if err := c.getJSON(ctx, "/agents/"+url.PathEscape(name), &record); err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey, &record)
	return &record, nil
}

func (c *HTTPClient) GetAgentPosts(ctx context.Context, name string, limit int) ([]moltbook.Post, error) {
	cacheKey := fmt.Sprintf("posts:%s:%d", name, limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]moltbook.Post), nil
	}
	path := fmt.Sprintf("/agents/%s/posts?limit=%d", url.PathEscape(name), limit)
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	posts, err := decodePosts(raw)
	if err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey, posts)
	return posts, nil
}

// The posts endpoint returns either a bare array or {"posts": [...]}.
func decodePosts(raw json.RawMessage) ([]moltbook.Post, error) {
	var posts []moltbook.Post
	if err := json.Unmarshal(raw, &posts); err == nil {
		return posts, nil
	}
	var wrapped struct {
		Posts []moltbook.Post `json:"posts"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode posts response: %w", err)
	}
	return wrapped.Posts, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, name, content string) (*moltbook.Post, error) {
	if !c.publishWindow.Allow() {
		return nil, fmt.Errorf("%w: publish budget", moltbook.ErrRateLimited)
	}
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	path := "/agents/" + url.PathEscape(name) + "/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	var post moltbook.Post
	if err := c.do(req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	if !c.readBucket.Allow() {
		return fmt.Errorf("%w: read budget", moltbook.ErrRateLimited)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("moltbook api returned status %d: %s", resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode moltbook response: %w", err)
	}
	return nil
}

func (c *HTTPClient) VerifyIdentityToken(ctx context.Context, token string) (*moltbook.IdentityClaims, error) {
	keys, err := c.signingKeys(ctx)
	if err != nil {
		return nil, err
	}
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if key, ok := keys[kid]; ok {
			return key, nil
		}
		if kid == "" && len(keys) == 1 {
			for _, key := range keys {
				return key, nil
			}
		}
		return nil, fmt.Errorf("no signing key for kid %q", kid)
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", moltbook.ErrIdentity, err)
	}
	return claimsFromToken(claims)
}

func claimsFromToken(claims jwt.MapClaims) (*moltbook.IdentityClaims, error) {
	out := &moltbook.IdentityClaims{}
	if name, ok := claims["agent_name"].(string); ok {
		out.AgentName = name
	}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
		if out.AgentName == "" {
			out.AgentName = sub
		}
	}
	if out.AgentName == "" {
		return nil, fmt.Errorf("%w: token missing agent_name", moltbook.ErrIdentity)
	}
	if createdAt, ok := claims["created_at"].(string); ok {
		parsed, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid created_at claim: %v", moltbook.ErrIdentity, err)
		}
		out.CreatedAt = parsed
	}
	return out, nil
}

// signingKeys fetches the JWKS once per process lifetime. A fetch
// failure is transient and leaves the memoized state empty so the next
// verification retries the fetch.
func (c *HTTPClient) signingKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	c.jwksMu.Lock()
	defer c.jwksMu.Unlock()
	if c.jwks != nil {
		return c.jwks, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}
	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			return nil, fmt.Errorf("parse jwks key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("jwks contained no usable RSA keys")
	}
	c.jwks = keys
	return keys, nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
