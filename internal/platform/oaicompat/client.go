// Package oaicompat talks to any OpenAI-compatible chat completion endpoint (Groq, Together,
// a local vLLM) and serves as the secondary text-generation provider.
package oaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/aryansondharva/Aura/internal/platform/envutil"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("SECONDARY_LLM_API_KEY", ""),
		BaseURL:     envutil.String("SECONDARY_LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:       envutil.String("SECONDARY_LLM_MODEL", "llama-3.1-8b-instant"),
		MaxTokens:   envutil.Int("SECONDARY_LLM_MAX_TOKENS", 4096),
		Temperature: float32(envutil.Float("SECONDARY_LLM_TEMPERATURE", 0.7)),
		Timeout:     envutil.Duration("SECONDARY_LLM_TIMEOUT", 90*time.Second),
	}
}

type Client struct {
	log    *logger.Logger
	cfg    Config
	client *openai.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SECONDARY_LLM_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("missing SECONDARY_LLM_MODEL")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		log:    log.With("client", "OpenAICompatClient", "model", cfg.Model),
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (c *Client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return text, nil
}
