package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

// ErrServiceUnavailable is returned when every text generation provider failed.
var ErrServiceUnavailable = errors.New("service temporarily unavailable")

// TextGenerator turns a prompt into text. Both the OpenAI client and the
// OpenAI-compatible secondary client satisfy it.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Provider struct {
	Name string
	Gen  TextGenerator
}

// FallbackGenerator tries each provider in order and stops at the first non-empty answer.
type FallbackGenerator struct {
	log       *logger.Logger
	providers []Provider
}

func NewFallbackGenerator(baseLog *logger.Logger, providers ...Provider) *FallbackGenerator {
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.Gen != nil {
			kept = append(kept, p)
		}
	}
	return &FallbackGenerator{log: baseLog.With("service", "FallbackGenerator"), providers: kept}
}

func (g *FallbackGenerator) GenerateText(ctx context.Context, system string, user string) (string, error) {
	if g == nil || len(g.providers) == 0 {
		return "", ErrServiceUnavailable
	}
	var lastErr error
	for _, p := range g.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		start := time.Now()
		out, err := p.Gen.GenerateText(ctx, system, user)
		if err == nil && strings.TrimSpace(out) == "" {
			err = fmt.Errorf("%s: empty response", p.Name)
		}
		if err != nil {
			observability.Current().ObserveLLMRequest(p.Name, "error", time.Since(start))
			g.log.Warn("text generation provider failed", "provider", p.Name, "error", err)
			lastErr = err
			continue
		}
		observability.Current().ObserveLLMRequest(p.Name, "ok", time.Since(start))
		return out, nil
	}
	g.log.Error("all text generation providers failed", "error", lastErr)
	return "", ErrServiceUnavailable
}
