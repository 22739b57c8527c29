package generator

import (
	"context"
	"errors"
)

// ErrMalformedOutput marks structured completions whose payload did not
// decode into the requested shape. Callers recover with local defaults
// instead of retrying.
var ErrMalformedOutput = errors.New("malformed generator output")

type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

type Generator interface {
	// Complete returns the raw text of a single completion.
	Complete(ctx context.Context, req Request) (string, error)
	// CompleteJSON requests a JSON-object completion and decodes it into out.
	// A response that is not valid JSON for out yields ErrMalformedOutput.
	CompleteJSON(ctx context.Context, req Request, out any) error
}
