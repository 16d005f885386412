package generate

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/iw2rmb/inkwell/prompt"
)

// OpenAI calls the legacy completions endpoint, which accepts every field
// of prompt.Parameters.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(cfg Config) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClient(openAIOptions(cfg)...),
		model:  model,
	}
}

func openAIOptions(cfg Config) []option.RequestOption {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithHeader("User-Agent", cfg.UserAgent))
	}
	if cfg.Logger != nil {
		l := cfg.Logger
		opts = append(opts, option.WithMiddleware(func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
			return logAttempt(l, ProviderOpenAI, req, next)
		}))
	}
	return opts
}

func (g *OpenAI) Generate(ctx context.Context, text string, params prompt.Parameters) (string, error) {
	req := openai.CompletionNewParams{
		Model:  openai.CompletionNewParamsModel(g.model),
		Prompt: openai.CompletionNewParamsPromptUnion{OfString: openai.String(text)},

		Temperature:      openai.Float(params.Temperature),
		PresencePenalty:  openai.Float(params.PresencePenalty),
		FrequencyPenalty: openai.Float(params.FrequencyPenalty),
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	if params.N > 0 {
		req.N = openai.Int(int64(params.N))
	}
	if params.BestOf > 0 {
		req.BestOf = openai.Int(int64(params.BestOf))
	}

	resp, err := g.client.Completions.New(ctx, req)
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &BackendError{Provider: ProviderOpenAI, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Text, nil
}

func openAIError(err error) error {
	be := &BackendError{Provider: ProviderOpenAI, Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		be.StatusCode = apiErr.StatusCode
	}
	return be
}
