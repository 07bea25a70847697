package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

const EmbeddingDims = 768

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// FallbackEmbedder never fails: texts the provider could not embed get a hash-seeded vector.
type FallbackEmbedder struct {
	log   *logger.Logger
	inner Embedder
	dims  int
}

func NewFallbackEmbedder(baseLog *logger.Logger, inner Embedder, dims int) *FallbackEmbedder {
	if dims <= 0 {
		dims = EmbeddingDims
	}
	return &FallbackEmbedder{log: baseLog.With("service", "FallbackEmbedder"), inner: inner, dims: dims}
}

func (e *FallbackEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	if e.inner != nil {
		vecs, err := e.inner.Embed(ctx, inputs)
		if err == nil && e.usable(vecs, len(inputs)) {
			return vecs, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reason := "bad_shape"
		if err != nil {
			reason = "provider_error"
		}
		e.log.Warn("embedding provider failed; using hash fallback", "reason", reason, "error", err, "count", len(inputs))
		observability.Current().AddEmbeddingFallback(reason, len(inputs))
	} else {
		observability.Current().AddEmbeddingFallback("no_provider", len(inputs))
	}

	out := make([][]float32, len(inputs))
	for i, s := range inputs {
		out[i] = HashEmbedding(s, e.dims)
	}
	return out, nil
}

func (e *FallbackEmbedder) usable(vecs [][]float32, n int) bool {
	if len(vecs) != n {
		return false
	}
	for _, v := range vecs {
		if len(v) != e.dims {
			return false
		}
	}
	return true
}

// HashEmbedding returns a unit-length pseudo-random vector seeded from the SHA-256 of text.
// The same text always yields the same vector.
func HashEmbedding(text string, dims int) []float32 {
	if dims <= 0 {
		dims = EmbeddingDims
	}
	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	r := rand.New(rand.NewSource(seed))

	out := make([]float32, dims)
	var norm float64
	for i := range out {
		v := r.NormFloat64()
		out[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		out[0] = 1
		return out
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / norm)
	}
	return out
}
