package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hingebot/hingebot/internal/generator"
)

func completionServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		if capture != nil {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Fatalf("failed to read request body: %v", err)
			}
			if err := json.Unmarshal(body, capture); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestComplete_Success(t *testing.T) {
	var captured map[string]any
	server := completionServer(t, "hello there", &captured)
	defer server.Close()

	g := NewOpenAIGenerator(server.URL, "test-key", "test-model")
	got, err := g.Complete(context.Background(), generator.Request{
		System:      "be brief",
		User:        "say hi",
		Temperature: 0.9,
		MaxTokens:   30,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "hello there" {
		t.Fatalf("unexpected content: %q", got)
	}
	if captured["model"] != "test-model" {
		t.Fatalf("unexpected model: %v", captured["model"])
	}
	if captured["max_tokens"] != float64(30) {
		t.Fatalf("unexpected max_tokens: %v", captured["max_tokens"])
	}
	if _, ok := captured["response_format"]; ok {
		t.Fatal("plain completion must not request a response format")
	}
}

func TestCompleteJSON_Success(t *testing.T) {
	var captured map[string]any
	server := completionServer(t, `{"decision":"like","reason":"good vibes"}`, &captured)
	defer server.Close()

	g := NewOpenAIGenerator(server.URL, "test-key", "test-model")
	var out struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := g.CompleteJSON(context.Background(), generator.Request{User: "decide"}, &out); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Decision != "like" || out.Reason != "good vibes" {
		t.Fatalf("unexpected decode: %+v", out)
	}
	format, ok := captured["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured["response_format"])
	}
}

func TestCompleteJSON_MalformedOutput(t *testing.T) {
	server := completionServer(t, "not json at all", nil)
	defer server.Close()

	g := NewOpenAIGenerator(server.URL, "test-key", "test-model")
	var out map[string]any
	err := g.CompleteJSON(context.Background(), generator.Request{User: "decide"}, &out)
	if !errors.Is(err, generator.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestComplete_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewOpenAIGenerator(server.URL, "test-key", "test-model")
	if _, err := g.Complete(context.Background(), generator.Request{User: "hi"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
