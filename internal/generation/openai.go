package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/antoniostano/babybot/internal/reliability"
)

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	RetryBase  time.Duration
	RetryCap   time.Duration
}

// OpenAIGenerator calls the chat completions API, retrying throttled and
// transient upstream failures with capped exponential backoff.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	logger *zap.Logger
}

func NewOpenAIGenerator(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 400 * time.Millisecond
	}
	if cfg.RetryCap <= 0 {
		cfg.RetryCap = 4 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:            g.cfg.Model,
		Messages:         convertMessages(req),
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
	}

	var lastErr error
	lastStatus := 0
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := reliability.Backoff(attempt-1, g.cfg.RetryBase, g.cfg.RetryCap)
			if err := reliability.Wait(ctx, wait); err != nil {
				return "", &Error{StatusCode: lastStatus, Err: err}
			}
		}

		resp, err := g.client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", &Error{Err: errors.New("empty choices")}
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		lastStatus = statusCode(err)
		retryable := reliability.IsRetryableHTTPStatus(lastStatus) || reliability.IsTransientNetError(err)
		if !retryable || ctx.Err() != nil {
			break
		}
		g.logger.Warn("chat completion retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("status", lastStatus),
			zap.Error(err),
		)
	}
	return "", &Error{StatusCode: lastStatus, Err: lastErr}
}

func convertMessages(req Request) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
