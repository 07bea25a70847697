package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/modules/ingestion/chunker"
	"github.com/aryansondharva/Aura/internal/modules/ingestion/dedupe"
	"github.com/aryansondharva/Aura/internal/modules/ingestion/extractor"
	"github.com/aryansondharva/Aura/internal/modules/topics"
	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/platform/pinecone"
)

const (
	vectorUpsertBatch       = 100
	vectorUpsertConcurrency = 4
)

type UploadInput struct {
	OwnerID      uuid.UUID
	OriginalName string
	MimeType     string
	Data         []byte
}

type ChatIngestResult struct {
	SourceFileID uuid.UUID `json:"source_file_id"`
	Chunks       int       `json:"chunks"`
}

type TopicIngestResult struct {
	Topics    []*types.Topic `json:"topics"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Advisory  string         `json:"advisory,omitempty"`
	Clusters  int            `json:"clusters"`
	Deduped   int            `json:"deduped"`
}

type IngestionService interface {
	// IngestChat stores chunk vectors for retrieval. Duplicates are rejected with a 409 before
	// any chunking or embedding.
	IngestChat(ctx context.Context, in UploadInput) (*ChatIngestResult, error)
	// IngestTopics clusters the document into topics. Duplicates return the stored topics.
	IngestTopics(ctx context.Context, in UploadInput) (*TopicIngestResult, error)
}

type IngestionConfig struct {
	MaxBytes            int64
	ClusterThreshold    float64
	TitlePromptMaxChars int
}

type ingestionService struct {
	log      *logger.Logger
	dedupe   *dedupe.Detector
	files    repos.SourceFileRepo
	chunks   repos.ChunkRepo
	topics   repos.TopicRepo
	embedder ai.Embedder
	gen      ai.TextGenerator
	vec      pinecone.VectorStore
	cfg      IngestionConfig
}

// NewIngestionService wires the upload pipelines. vec may be nil when no vector index is configured.
func NewIngestionService(
	baseLog *logger.Logger,
	files repos.SourceFileRepo,
	chunks repos.ChunkRepo,
	topicRepo repos.TopicRepo,
	embedder ai.Embedder,
	gen ai.TextGenerator,
	vec pinecone.VectorStore,
	cfg IngestionConfig,
) IngestionService {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = extractor.DefaultMaxBytes
	}
	if cfg.ClusterThreshold <= 0 {
		cfg.ClusterThreshold = topics.DefaultThreshold
	}
	return &ingestionService{
		log:      baseLog.With("service", "IngestionService"),
		dedupe:   dedupe.NewDetector(baseLog, files),
		files:    files,
		chunks:   chunks,
		topics:   topicRepo,
		embedder: embedder,
		gen:      gen,
		vec:      vec,
		cfg:      cfg,
	}
}

func (s *ingestionService) validate(in UploadInput) error {
	if in.OwnerID == uuid.Nil {
		return apierr.BadRequest(fmt.Errorf("missing owner"))
	}
	if len(in.Data) == 0 {
		return apierr.BadRequest(extractor.ErrEmpty)
	}
	if int64(len(in.Data)) > s.cfg.MaxBytes {
		return apierr.BadRequest(extractor.ErrTooLarge)
	}
	return nil
}

func (s *ingestionService) IngestChat(ctx context.Context, in UploadInput) (_ *ChatIngestResult, err error) {
	ctx, span := observability.StartSpan(ctx, "ingestion.chat", attribute.Int("size_bytes", len(in.Data)))
	defer func() { observability.EndSpan(span, err) }()
	if err := s.validate(in); err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.log.With("owner_id", in.OwnerID, "pipeline", types.PipelineChat)
	hash := dedupe.ContentHash(in.Data)

	dup, err := s.dedupe.IsDuplicate(ctx, hash, in.OwnerID, types.PipelineChat)
	if err != nil {
		log.Error("duplicate check failed", "error", err)
		return nil, apierr.Internal(err)
	}
	if dup {
		observability.Current().ObserveIngestStage(types.PipelineChat, "dedupe", "duplicate", time.Since(start))
		return nil, apierr.Conflict(dedupe.ErrDuplicate)
	}
	file, err := s.dedupe.Claim(ctx, dedupe.ClaimInput{
		OwnerID:      in.OwnerID,
		ContentHash:  hash,
		Pipeline:     types.PipelineChat,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		SizeBytes:    int64(len(in.Data)),
	})
	if errors.Is(err, dedupe.ErrDuplicate) {
		return nil, apierr.Conflict(err)
	}
	if err != nil {
		log.Error("claim upload failed", "error", err)
		return nil, apierr.Internal(err)
	}

	rows, _, err := s.storeChunks(ctx, in, file, hash)
	if err != nil {
		s.release(ctx, file.ID)
		observability.Current().ObserveIngestStage(types.PipelineChat, "total", "error", time.Since(start))
		return nil, err
	}
	observability.Current().ObserveIngestStage(types.PipelineChat, "total", "ok", time.Since(start))
	log.Info("chat document ingested", "source_file_id", file.ID, "chunks", len(rows))
	return &ChatIngestResult{SourceFileID: file.ID, Chunks: len(rows)}, nil
}

// storeChunks extracts, chunks, embeds and persists the document. Vectors are upserted to the
// index when one is configured.
func (s *ingestionService) storeChunks(ctx context.Context, in UploadInput, file *types.SourceFile, hash string) ([]*types.Chunk, [][]float32, error) {
	rows, vecs, err := s.prepare(ctx, in, file, hash)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.chunks.Create(dbctx.Context{Ctx: ctx}, rows); err != nil {
		s.log.Error("persist chunks failed", "source_file_id", file.ID, "error", err)
		return nil, nil, apierr.Internal(err)
	}
	if file.Pipeline == types.PipelineChat && s.vec != nil {
		if err := s.upsertVectors(ctx, in.OwnerID, rows, vecs); err != nil {
			s.log.Error("vector upsert failed", "source_file_id", file.ID, "error", err)
			s.discardVectors(ctx, in.OwnerID, rows)
			return nil, nil, apierr.Internal(err)
		}
	}
	if err := s.files.UpdateFields(dbctx.Context{Ctx: ctx}, file.ID, map[string]interface{}{"chunk_count": len(rows)}); err != nil {
		s.log.Warn("update chunk count failed", "source_file_id", file.ID, "error", err)
	}
	return rows, vecs, nil
}

func (s *ingestionService) prepare(ctx context.Context, in UploadInput, file *types.SourceFile, hash string) ([]*types.Chunk, [][]float32, error) {
	t0 := time.Now()
	text, err := extractor.Extract(in.OriginalName, in.MimeType, in.Data)
	if err != nil {
		observability.Current().ObserveIngestStage(file.Pipeline, "extract", "error", time.Since(t0))
		return nil, nil, apierr.BadRequest(err)
	}
	observability.Current().ObserveIngestStage(file.Pipeline, "extract", "ok", time.Since(t0))

	pieces := chunker.Split(text)
	if len(pieces) == 0 {
		return nil, nil, apierr.BadRequest(extractor.ErrEmpty)
	}
	texts := make([]string, len(pieces))
	rows := make([]*types.Chunk, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
		rows[i] = &types.Chunk{
			ID:           uuid.New(),
			SourceFileID: file.ID,
			OwnerID:      in.OwnerID,
			Ordinal:      p.Ordinal,
			Content:      p.Content,
			ContentHash:  hash,
		}
	}

	t1 := time.Now()
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		observability.Current().ObserveIngestStage(file.Pipeline, "embed", "error", time.Since(t1))
		return nil, nil, apierr.Internal(err)
	}
	observability.Current().ObserveIngestStage(file.Pipeline, "embed", "ok", time.Since(t1))
	return rows, vecs, nil
}

func (s *ingestionService) upsertVectors(ctx context.Context, ownerID uuid.UUID, rows []*types.Chunk, vecs [][]float32) error {
	t0 := time.Now()
	namespace := ownerID.String()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(vectorUpsertConcurrency)
	for start := 0; start < len(rows); start += vectorUpsertBatch {
		end := start + vectorUpsertBatch
		if end > len(rows) {
			end = len(rows)
		}
		batch := make([]pinecone.Vector, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, pinecone.Vector{
				ID:     rows[i].VectorID(),
				Values: vecs[i],
				Metadata: map[string]any{
					"owner_id":       ownerID.String(),
					"source_file_id": rows[i].SourceFileID.String(),
					"ordinal":        rows[i].Ordinal,
				},
			})
		}
		g.Go(func() error {
			return s.vec.Upsert(gctx, namespace, batch)
		})
	}
	err := g.Wait()
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.Current().ObserveIngestStage(types.PipelineChat, "upsert", status, time.Since(t0))
	return err
}

// discardVectors deletes every vector id of rows. Batches that did land would otherwise stay in the
// index after the chunk rows are released.
func (s *ingestionService) discardVectors(ctx context.Context, ownerID uuid.UUID, rows []*types.Chunk) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.VectorID()
	}
	if err := s.vec.DeleteIDs(cctx, ownerID.String(), ids); err != nil {
		s.log.Warn("discard vectors failed", "owner_id", ownerID, "vectors", len(ids), "error", err)
	}
}

func (s *ingestionService) release(ctx context.Context, fileID uuid.UUID) {
	// The request context may already be cancelled; cleanup still has to run.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.chunks.FullDeleteBySourceFileIDs(dbctx.Context{Ctx: cctx}, []uuid.UUID{fileID}); err != nil {
		s.log.Warn("release chunks failed", "source_file_id", fileID, "error", err)
	}
	if err := s.dedupe.Release(cctx, fileID); err != nil {
		s.log.Warn("release upload claim failed", "source_file_id", fileID, "error", err)
	}
}

func (s *ingestionService) IngestTopics(ctx context.Context, in UploadInput) (_ *TopicIngestResult, err error) {
	ctx, span := observability.StartSpan(ctx, "ingestion.topics", attribute.Int("size_bytes", len(in.Data)))
	defer func() { observability.EndSpan(span, err) }()
	if err := s.validate(in); err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.log.With("owner_id", in.OwnerID, "pipeline", types.PipelineTopics)
	hash := dedupe.ContentHash(in.Data)
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.topics.GetByOwnerAndSourceHash(dbc, in.OwnerID, hash)
	if err != nil {
		log.Error("lookup existing topics failed", "error", err)
		return nil, apierr.Internal(err)
	}
	if len(existing) > 0 {
		observability.Current().AddTopics("reused", len(existing))
		return &TopicIngestResult{Topics: existing, Duplicate: true}, nil
	}

	file, err := s.dedupe.Claim(ctx, dedupe.ClaimInput{
		OwnerID:      in.OwnerID,
		ContentHash:  hash,
		Pipeline:     types.PipelineTopics,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		SizeBytes:    int64(len(in.Data)),
	})
	if errors.Is(err, dedupe.ErrDuplicate) {
		// Another request for the same bytes won the claim; hand back whatever it stored.
		rows, lerr := s.topics.GetByOwnerAndSourceHash(dbc, in.OwnerID, hash)
		if lerr != nil {
			return nil, apierr.Internal(lerr)
		}
		if rows == nil {
			rows = []*types.Topic{}
		}
		return &TopicIngestResult{Topics: rows, Duplicate: true}, nil
	}
	if err != nil {
		log.Error("claim upload failed", "error", err)
		return nil, apierr.Internal(err)
	}

	res, err := s.buildTopics(ctx, in, file, hash)
	if err != nil {
		s.release(ctx, file.ID)
		observability.Current().ObserveIngestStage(types.PipelineTopics, "total", "error", time.Since(start))
		if errors.Is(err, ai.ErrServiceUnavailable) {
			return nil, apierr.Unavailable(err)
		}
		return nil, apierr.From(err)
	}
	observability.Current().ObserveIngestStage(types.PipelineTopics, "total", "ok", time.Since(start))
	log.Info("topics ingested", "source_file_id", file.ID, "topics", len(res.Topics), "clusters", res.Clusters, "deduped", res.Deduped)
	return res, nil
}

func (s *ingestionService) buildTopics(ctx context.Context, in UploadInput, file *types.SourceFile, hash string) (*TopicIngestResult, error) {
	rows, vecs, err := s.storeChunks(ctx, in, file, hash)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.Content
	}

	t0 := time.Now()
	built, err := topics.Build(ctx, topics.BuildDeps{Log: s.log, Gen: s.gen}, topics.BuildInput{
		Texts:          texts,
		Embeddings:     vecs,
		Threshold:      s.cfg.ClusterThreshold,
		PromptMaxChars: s.cfg.TitlePromptMaxChars,
	})
	if err != nil {
		observability.Current().ObserveIngestStage(types.PipelineTopics, "cluster", "error", time.Since(t0))
		return nil, err
	}
	observability.Current().ObserveIngestStage(types.PipelineTopics, "cluster", "ok", time.Since(t0))

	fileID := file.ID
	out := make([]*types.Topic, 0, len(built.Topics))
	for _, c := range built.Topics {
		out = append(out, &types.Topic{
			ID:             uuid.New(),
			OwnerID:        in.OwnerID,
			Title:          c.Title,
			Summary:        c.Summary,
			MergedContent:  c.MergedContent,
			Status:         types.TopicStatusNotStarted,
			SourceFileHash: hash,
			SourceFileID:   &fileID,
			ClusterIndex:   c.ClusterIndex,
			ChunkCount:     len(c.Members),
		})
	}
	if len(out) > 0 {
		if _, err := s.topics.Create(dbctx.Context{Ctx: ctx}, out); err != nil {
			return nil, apierr.Internal(err)
		}
	}
	observability.Current().AddTopics("created", len(out))
	observability.Current().AddTopics("deduped", built.Deduped)
	return &TopicIngestResult{
		Topics:   out,
		Advisory: built.Advisory,
		Clusters: built.ClusterCount,
		Deduped:  built.Deduped,
	}, nil
}
