// Package generate sends composed prompts to a text generation backend.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/prompt"
)

// Generator turns a prompt into completion text.
type Generator interface {
	Generate(ctx context.Context, text string, params prompt.Parameters) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, text string, params prompt.Parameters) (string, error)

func (f Func) Generate(ctx context.Context, text string, params prompt.Parameters) (string, error) {
	return f(ctx, text, params)
}

// ErrEmptyResponse is wrapped when the backend answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// BackendError wraps every failure reported by a backend.
type BackendError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider. OpenAI needs a model served by the legacy
// completions endpoint.
const (
	DefaultOpenAIModel    = "gpt-3.5-turbo-instruct"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Config selects and configures a backend.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	// MaxRetries < 0 keeps the SDK default.
	MaxRetries int
	UserAgent  string

	// Logger receives one record per HTTP attempt, retries included.
	Logger *slog.Logger
}

// New returns the backend named by cfg.Provider.
func New(cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Logged wraps g with debug records around each call.
func Logged(g Generator, provider string, l *slog.Logger) Generator {
	l = logging.OrNop(l)
	return Func(func(ctx context.Context, text string, params prompt.Parameters) (string, error) {
		start := time.Now()
		out, err := g.Generate(ctx, text, params)
		if err != nil {
			l.Debug("generate failed", "provider", provider, "prompt_len", len(text), "took", time.Since(start), "error", err)
			return "", err
		}
		l.Debug("generate", "provider", provider, "prompt_len", len(text), "completion_len", len(out), "took", time.Since(start))
		return out, nil
	})
}
