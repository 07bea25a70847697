package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/platform/oaicompat"
	"github.com/aryansondharva/Aura/internal/platform/openai"
	"github.com/aryansondharva/Aura/internal/platform/pinecone"
	"github.com/aryansondharva/Aura/internal/platform/redis"
	"github.com/aryansondharva/Aura/internal/platform/sendgrid"
)

// Clients holds the outbound integrations. Everything except the generator and embedder may be
// nil when its configuration is absent.
type Clients struct {
	Generator *ai.FallbackGenerator
	Embedder  *ai.FallbackEmbedder
	Vectors   pinecone.VectorStore
	Mailer    sendgrid.Client
	Redis     *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger) Clients {
	var out Clients

	var providers []ai.Provider
	var embedInner ai.Embedder
	embedDims := ai.EmbeddingDims
	oaiCfg := openai.ConfigFromEnv()
	if oai, err := openai.New(log, oaiCfg); err != nil {
		log.Warn("primary text generation disabled", "error", err)
	} else {
		providers = append(providers, ai.Provider{Name: "openai", Gen: oai})
		embedInner = oai
		if oaiCfg.EmbedDimension > 0 {
			embedDims = oaiCfg.EmbedDimension
		}
	}
	if sec, err := oaicompat.New(log, oaicompat.ConfigFromEnv()); err != nil {
		log.Warn("secondary text generation disabled", "error", err)
	} else {
		providers = append(providers, ai.Provider{Name: "secondary", Gen: sec})
	}
	if len(providers) == 0 {
		log.Warn("no text generation provider configured; generation requests will return 503")
	}
	out.Generator = ai.NewFallbackGenerator(log, providers...)
	out.Embedder = ai.NewFallbackEmbedder(log, embedInner, embedDims)

	if pcCfg := pinecone.ConfigFromEnv(); pcCfg.Enabled() {
		pc, err := pinecone.New(log, pcCfg)
		if err == nil {
			out.Vectors, err = pinecone.NewVectorStore(ctx, log, pc, pcCfg)
		}
		if err != nil {
			log.Warn("vector index disabled", "error", err)
			out.Vectors = nil
		}
	}

	if mailer, err := sendgrid.New(log, sendgrid.ConfigFromEnv()); err != nil {
		log.Info("email notifications disabled", "error", err)
	} else {
		out.Mailer = mailer
	}

	if rCfg := redis.ConfigFromEnv(); rCfg.Enabled() {
		rdb, err := redis.NewClient(ctx, log, rCfg)
		if err != nil {
			log.Warn("redis unavailable; chat sessions stay in process memory", "error", err)
		} else {
			out.Redis = rdb
		}
	}
	return out
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
