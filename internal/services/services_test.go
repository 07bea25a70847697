package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryansondharva/Aura/internal/data/repos"
	"github.com/aryansondharva/Aura/internal/data/repos/testutil"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/modules/conversation"
	"github.com/aryansondharva/Aura/internal/modules/progress"
	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/platform/pinecone"
	"github.com/aryansondharva/Aura/internal/platform/sendgrid"
)

type scriptedGen struct {
	mu      sync.Mutex
	titles  []string
	calls   int
	prompts []string
	fail    bool
}

func (g *scriptedGen) GenerateText(ctx context.Context, system, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, user)
	if g.fail {
		return "", ai.ErrServiceUnavailable
	}
	i := g.calls
	g.calls++
	if strings.Contains(user, "Student: ") {
		return fmt.Sprintf("reply %d", i), nil
	}
	title := fmt.Sprintf("Topic %d", i)
	if i < len(g.titles) {
		title = g.titles[i]
	}
	return "Title: " + title + "\nSummary: A short summary.", nil
}

type recordingVectors struct {
	mu        sync.Mutex
	upserted  map[string][]pinecone.Vector
	deleted   map[string][]string
	upsertErr error
	queryIDs  []string
	queryErr  error
}

func (v *recordingVectors) Upsert(ctx context.Context, ns string, vectors []pinecone.Vector) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.upserted == nil {
		v.upserted = map[string][]pinecone.Vector{}
	}
	v.upserted[ns] = append(v.upserted[ns], vectors...)
	return v.upsertErr
}

func (v *recordingVectors) QueryMatches(ctx context.Context, ns string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	return nil, v.queryErr
}

func (v *recordingVectors) QueryIDs(ctx context.Context, ns string, q []float32, topK int, filter map[string]any) ([]string, error) {
	return v.queryIDs, v.queryErr
}

func (v *recordingVectors) DeleteIDs(ctx context.Context, ns string, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleted == nil {
		v.deleted = map[string][]string{}
	}
	v.deleted[ns] = append(v.deleted[ns], ids...)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sendgrid.SendEmailRequest
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	if m.err != nil {
		return nil, m.err
	}
	return &sendgrid.SendEmailResult{StatusCode: http.StatusAccepted}, nil
}

type fixture struct {
	log       *logger.Logger
	tx        *gorm.DB
	files     repos.SourceFileRepo
	chunks    repos.ChunkRepo
	topics    repos.TopicRepo
	questions repos.QuestionRepo
	attempts  repos.AttemptRepo
	reviews   repos.ReviewFeatureRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	return fixture{
		log:       log,
		tx:        tx,
		files:     repos.NewSourceFileRepo(tx, log),
		chunks:    repos.NewChunkRepo(tx, log),
		topics:    repos.NewTopicRepo(tx, log),
		questions: repos.NewQuestionRepo(tx, log),
		attempts:  repos.NewAttemptRepo(tx, log),
		reviews:   repos.NewReviewFeatureRepo(tx, log),
	}
}

func document(n int) []byte {
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		fmt.Fprintf(&b, "Sentence %d about cells and membranes. ", i)
	}
	return []byte(b.String()[:n])
}

func apiStatus(err error) int {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func TestIngestChat_StoresChunksAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vec := &recordingVectors{}
	svc := NewIngestionService(f.log, f.files, f.chunks, f.topics, ai.NewFallbackEmbedder(f.log, nil, 0), &scriptedGen{}, vec, IngestionConfig{})

	owner := uuid.New()
	data := document(1200)
	res, err := svc.IngestChat(ctx, UploadInput{OwnerID: owner, OriginalName: "notes.txt", MimeType: "text/plain", Data: data})
	if err != nil {
		t.Fatalf("IngestChat: %v", err)
	}
	if res.Chunks != 3 {
		t.Fatalf("chunks=%d want 3", res.Chunks)
	}
	if got := len(vec.upserted[owner.String()]); got != 3 {
		t.Fatalf("upserted=%d want 3", got)
	}
	if dims := len(vec.upserted[owner.String()][0].Values); dims != ai.EmbeddingDims {
		t.Fatalf("dims=%d want %d", dims, ai.EmbeddingDims)
	}

	_, err = svc.IngestChat(ctx, UploadInput{OwnerID: owner, OriginalName: "copy.txt", Data: data})
	if apiStatus(err) != http.StatusConflict {
		t.Fatalf("second upload err=%v want 409", err)
	}

	if _, err := svc.IngestChat(ctx, UploadInput{OwnerID: uuid.New(), OriginalName: "notes.txt", Data: data}); err != nil {
		t.Fatalf("other owner upload: %v", err)
	}
}

func TestIngestChat_UpsertFailureDiscardsVectors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vec := &recordingVectors{upsertErr: errors.New("index unavailable")}
	svc := NewIngestionService(f.log, f.files, f.chunks, f.topics, ai.NewFallbackEmbedder(f.log, nil, 0), &scriptedGen{}, vec, IngestionConfig{})

	owner := uuid.New()
	ns := owner.String()
	data := document(1200)
	_, err := svc.IngestChat(ctx, UploadInput{OwnerID: owner, OriginalName: "notes.txt", Data: data})
	if apiStatus(err) != http.StatusInternalServerError {
		t.Fatalf("err=%v want 500", err)
	}
	sent := map[string]bool{}
	for _, v := range vec.upserted[ns] {
		sent[v.ID] = true
	}
	if len(sent) != 3 || len(vec.deleted[ns]) != len(sent) {
		t.Fatalf("upserted=%d deleted=%d want 3 each", len(sent), len(vec.deleted[ns]))
	}
	for _, id := range vec.deleted[ns] {
		if !sent[id] {
			t.Fatalf("deleted unknown vector %s", id)
		}
	}

	vec.upsertErr = nil
	res, err := svc.IngestChat(ctx, UploadInput{OwnerID: owner, OriginalName: "notes.txt", Data: data})
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if res.Chunks != 3 {
		t.Fatalf("chunks=%d want 3", res.Chunks)
	}
}

func TestIngestChat_RejectsEmptyAndOversized(t *testing.T) {
	f := newFixture(t)
	svc := NewIngestionService(f.log, f.files, f.chunks, f.topics, ai.NewFallbackEmbedder(f.log, nil, 0), &scriptedGen{}, nil, IngestionConfig{MaxBytes: 10})
	ctx := context.Background()
	if _, err := svc.IngestChat(ctx, UploadInput{OwnerID: uuid.New(), Data: nil}); apiStatus(err) != http.StatusBadRequest {
		t.Fatalf("empty err=%v want 400", err)
	}
	if _, err := svc.IngestChat(ctx, UploadInput{OwnerID: uuid.New(), Data: document(11)}); apiStatus(err) != http.StatusBadRequest {
		t.Fatalf("oversized err=%v want 400", err)
	}
}

func TestIngestTopics_BuildsTopicsAndReturnsExistingOnDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := &scriptedGen{titles: []string{"Cell membranes", "Cell membranes", "Protein synthesis"}}
	svc := NewIngestionService(f.log, f.files, f.chunks, f.topics, ai.NewFallbackEmbedder(f.log, nil, 0), gen, nil, IngestionConfig{})

	owner := uuid.New()
	data := document(1200)
	res, err := svc.IngestTopics(ctx, UploadInput{OwnerID: owner, OriginalName: "bio.txt", Data: data})
	if err != nil {
		t.Fatalf("IngestTopics: %v", err)
	}
	if res.Duplicate {
		t.Fatalf("first upload reported duplicate")
	}
	if res.Clusters != 3 || res.Deduped != 1 || len(res.Topics) != 2 {
		t.Fatalf("clusters=%d deduped=%d topics=%d", res.Clusters, res.Deduped, len(res.Topics))
	}
	for _, tp := range res.Topics {
		if tp.Status != types.TopicStatusNotStarted || tp.SourceFileHash == "" {
			t.Fatalf("unexpected topic %+v", tp)
		}
	}

	calls := gen.calls
	again, err := svc.IngestTopics(ctx, UploadInput{OwnerID: owner, OriginalName: "bio-copy.txt", Data: data})
	if err != nil {
		t.Fatalf("IngestTopics duplicate: %v", err)
	}
	if !again.Duplicate || len(again.Topics) != 2 {
		t.Fatalf("duplicate=%v topics=%d", again.Duplicate, len(again.Topics))
	}
	if gen.calls != calls {
		t.Fatalf("duplicate upload called the generator")
	}
}

func TestIngestTopics_GeneratorDownReleasesClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := &scriptedGen{fail: true}
	svc := NewIngestionService(f.log, f.files, f.chunks, f.topics, ai.NewFallbackEmbedder(f.log, nil, 0), gen, nil, IngestionConfig{})

	owner := uuid.New()
	data := document(300)
	_, err := svc.IngestTopics(ctx, UploadInput{OwnerID: owner, Data: data})
	if apiStatus(err) != http.StatusServiceUnavailable {
		t.Fatalf("err=%v want 503", err)
	}
	gen.fail = false
	res, err := svc.IngestTopics(ctx, UploadInput{OwnerID: owner, Data: data})
	if err != nil {
		t.Fatalf("retry after release: %v", err)
	}
	if res.Duplicate || len(res.Topics) != 1 {
		t.Fatalf("duplicate=%v topics=%d", res.Duplicate, len(res.Topics))
	}
}

func TestChat_UsesWindowAndRetrievedChunks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	gen := &scriptedGen{}
	embed := ai.NewFallbackEmbedder(f.log, nil, 0)
	ingest := NewIngestionService(f.log, f.files, f.chunks, f.topics, embed, gen, nil, IngestionConfig{})
	if _, err := ingest.IngestChat(ctx, UploadInput{OwnerID: owner, Data: []byte("Mitochondria produce ATP.")}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	store := conversation.NewMemoryStore(f.log, 10, time.Minute)
	svc := NewChatService(f.log, gen, embed, nil, f.chunks, store, 0)
	for i := 0; i < 7; i++ {
		if _, err := svc.Ask(ctx, owner, "s1", fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("Ask: %v", err)
		}
	}
	last := gen.prompts[len(gen.prompts)-1]
	if !strings.Contains(last, "Mitochondria produce ATP.") {
		t.Fatalf("prompt missing retrieved chunk: %q", last)
	}
	if strings.Contains(last, "question 0") {
		t.Fatalf("prompt carries turns outside the window: %q", last)
	}
	if !strings.Contains(last, "question 1") {
		t.Fatalf("prompt missing turn inside the window: %q", last)
	}

	hist, err := svc.History(ctx, owner, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != conversation.WindowSize {
		t.Fatalf("history=%d want %d", len(hist), conversation.WindowSize)
	}
	other, _ := svc.History(ctx, uuid.New(), "s1")
	if len(other) != 0 {
		t.Fatalf("session leaked across owners")
	}
}

func TestChat_VectorRetrievalKeepsMatchOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	file, err := f.files.Create(dbcOf(ctx), &types.SourceFile{OwnerID: owner, ContentHash: "h", Pipeline: types.PipelineChat})
	if err != nil {
		t.Fatalf("seed file: %v", err)
	}
	a := &types.Chunk{ID: uuid.New(), SourceFileID: file.ID, OwnerID: owner, Ordinal: 0, Content: "alpha", ContentHash: "h"}
	b := &types.Chunk{ID: uuid.New(), SourceFileID: file.ID, OwnerID: owner, Ordinal: 1, Content: "beta", ContentHash: "h"}
	if _, err := f.chunks.Create(dbcOf(ctx), []*types.Chunk{a, b}); err != nil {
		t.Fatalf("seed chunks: %v", err)
	}
	vec := &recordingVectors{queryIDs: []string{b.ID.String(), "not-a-uuid", a.ID.String()}}
	gen := &scriptedGen{}
	svc := NewChatService(f.log, gen, ai.NewFallbackEmbedder(f.log, nil, 0), vec, f.chunks, conversation.NewMemoryStore(f.log, 10, time.Minute), 2)
	if _, err := svc.Ask(ctx, owner, "s", "what?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	p := gen.prompts[0]
	if !strings.Contains(p, "[1] beta") || !strings.Contains(p, "[2] alpha") {
		t.Fatalf("unexpected excerpt order: %q", p)
	}
}

func TestChat_ProviderDownIsUnavailable(t *testing.T) {
	f := newFixture(t)
	svc := NewChatService(f.log, &scriptedGen{fail: true}, nil, nil, f.chunks, conversation.NewMemoryStore(f.log, 10, time.Minute), 0)
	_, err := svc.Ask(context.Background(), uuid.New(), "s", "hi")
	if apiStatus(err) != http.StatusServiceUnavailable {
		t.Fatalf("err=%v want 503", err)
	}
	if _, err := svc.Ask(context.Background(), uuid.New(), "s", "  "); apiStatus(err) != http.StatusBadRequest {
		t.Fatalf("blank message err=%v want 400", err)
	}
}

func TestProgressAndReview_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	mail := &fakeMailer{}
	notify := NewNotifier(f.log, mail)

	topic := testutil.SeedTopic(t, ctx, f.tx, owner, "Enzymes")
	var responses []progress.Response
	for i := 0; i < 10; i++ {
		q := testutil.SeedQuestion(t, ctx, f.tx, owner, topic.ID, fmt.Sprintf("q%d", i), "B")
		sel := "A"
		if i < 5 {
			sel = "b"
		}
		responses = append(responses, progress.Response{QuestionID: q.ID, SelectedOption: sel})
	}

	prog := NewProgressService(f.log, f.topics, f.questions, f.attempts, f.reviews, scheduler.Heuristic{}, notify)
	out, err := prog.Submit(ctx, SubmitRequest{OwnerID: owner, Email: "student@example.com", TopicID: topic.ID, Responses: responses})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Score != 5 || out.Status != types.TopicStatusWeak {
		t.Fatalf("score=%v status=%s", out.Score, out.Status)
	}
	notify.Wait()
	if len(mail.sent) != 1 || mail.sent[0].Subject != "Quiz result: Enzymes" {
		t.Fatalf("sent=%+v", mail.sent)
	}

	if _, err := prog.Submit(ctx, SubmitRequest{OwnerID: uuid.New(), TopicID: topic.ID, Responses: responses}); apiStatus(err) != http.StatusNotFound {
		t.Fatalf("foreign owner err=%v want 404", err)
	}

	rs := NewReviewService(f.log, f.topics, f.attempts, f.reviews, scheduler.Heuristic{}, notify).(*reviewService)
	items, err := rs.Schedule(ctx, owner)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(items) != 1 || items[0].Overdue || items[0].Title != "Enzymes" {
		t.Fatalf("items=%+v", items)
	}

	rs.now = func() time.Time { return time.Now().AddDate(0, 0, 90) }
	res, err := rs.SweepAll(ctx)
	if err != nil {
		t.Fatalf("SweepAll: %v", err)
	}
	if res.Topics < 1 {
		t.Fatalf("SweepAll reset %d topics", res.Topics)
	}
	latest, err := f.attempts.GetLatest(dbcOf(ctx), owner, topic.ID)
	if err != nil || latest == nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest.Score != 0 {
		t.Fatalf("latest score=%v want 0", latest.Score)
	}
	if got := rs.Predict(-5, 99, 0, -1); got < scheduler.MinDays || got > scheduler.MaxDays {
		t.Fatalf("Predict out of range: %d", got)
	}
}

func TestProgress_ForeignQuestionsOnlyIsBadRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, f.tx, owner, "Cells")
	other := testutil.SeedTopic(t, ctx, f.tx, owner, "Atoms")
	q := testutil.SeedQuestion(t, ctx, f.tx, owner, other.ID, "q", "A")

	mail := &fakeMailer{}
	notify := NewNotifier(f.log, mail)
	prog := NewProgressService(f.log, f.topics, f.questions, f.attempts, f.reviews, scheduler.Heuristic{}, notify)
	_, err := prog.Submit(ctx, SubmitRequest{
		OwnerID: owner, Email: "student@example.com", TopicID: topic.ID,
		Responses: []progress.Response{{QuestionID: q.ID, SelectedOption: "A"}},
	})
	if apiStatus(err) != http.StatusBadRequest {
		t.Fatalf("err=%v want 400", err)
	}
	notify.Wait()
	if len(mail.sent) != 0 {
		t.Fatalf("unexpected mail: %+v", mail.sent)
	}
	latest, err := f.attempts.GetLatest(dbcOf(ctx), owner, topic.ID)
	if err != nil || latest != nil {
		t.Fatalf("attempt stored: %+v err=%v", latest, err)
	}
	review, err := f.reviews.GetByOwnerTopic(dbcOf(ctx), owner, topic.ID)
	if err != nil || review != nil {
		t.Fatalf("review row stored: %+v err=%v", review, err)
	}
	stored, err := f.topics.GetByID(dbcOf(ctx), topic.ID)
	if err != nil || stored.Status != types.TopicStatusNotStarted {
		t.Fatalf("topic status changed: %+v err=%v", stored, err)
	}
}

func TestNotifier_SwallowsFailures(t *testing.T) {
	mail := &fakeMailer{err: errors.New("boom")}
	n := NewNotifier(logger.Nop(), mail)
	n.SendAsync("a@example.com", "subject", "<p>x</p>")
	n.SendAsync("", "skipped", "<p>x</p>")
	n.Wait()
	if len(mail.sent) != 1 {
		t.Fatalf("sent=%d want 1", len(mail.sent))
	}
	NewNotifier(logger.Nop(), nil).SendAsync("a@example.com", "s", "b")
}

func dbcOf(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }
