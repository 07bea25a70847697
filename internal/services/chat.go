package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/modules/conversation"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/platform/pinecone"
)

const (
	DefaultRetrievalTopK = 5
	maxChatMessageChars  = 4000
	maxContextChars      = 6000
)

const chatSystemPrompt = `You are Aura, a study assistant. Answer the student's question using the study material excerpts when they are relevant. If the excerpts do not cover the question, say so briefly and answer from general knowledge. Keep answers concise.`

type ChatService interface {
	Ask(ctx context.Context, ownerID uuid.UUID, sessionID, message string) (string, error)
	History(ctx context.Context, ownerID uuid.UUID, sessionID string) ([]conversation.Message, error)
}

type chatService struct {
	log      *logger.Logger
	gen      ai.TextGenerator
	embedder ai.Embedder
	vec      pinecone.VectorStore
	chunks   repos.ChunkRepo
	store    conversation.Store
	topK     int
}

// NewChatService wires retrieval chat. vec may be nil; retrieval then uses the owner's newest chunks.
func NewChatService(
	baseLog *logger.Logger,
	gen ai.TextGenerator,
	embedder ai.Embedder,
	vec pinecone.VectorStore,
	chunks repos.ChunkRepo,
	store conversation.Store,
	topK int,
) ChatService {
	if topK <= 0 {
		topK = DefaultRetrievalTopK
	}
	return &chatService{
		log:      baseLog.With("service", "ChatService"),
		gen:      gen,
		embedder: embedder,
		vec:      vec,
		chunks:   chunks,
		store:    store,
		topK:     topK,
	}
}

// sessionKey scopes session ids per owner so two owners never share a window.
func sessionKey(ownerID uuid.UUID, sessionID string) string {
	return ownerID.String() + ":" + sessionID
}

func (s *chatService) History(ctx context.Context, ownerID uuid.UUID, sessionID string) ([]conversation.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apierr.BadRequest(fmt.Errorf("missing session id"))
	}
	msgs, err := s.store.Recent(ctx, sessionKey(ownerID, sessionID))
	if err != nil {
		s.log.Error("load conversation failed", "session_id", sessionID, "error", err)
		return nil, apierr.Internal(err)
	}
	return msgs, nil
}

func (s *chatService) Ask(ctx context.Context, ownerID uuid.UUID, sessionID, message string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	message = strings.TrimSpace(message)
	if sessionID == "" {
		return "", apierr.BadRequest(fmt.Errorf("missing session id"))
	}
	if message == "" {
		return "", apierr.BadRequest(fmt.Errorf("empty message"))
	}
	if len([]rune(message)) > maxChatMessageChars {
		return "", apierr.BadRequest(fmt.Errorf("message longer than %d characters", maxChatMessageChars))
	}
	key := sessionKey(ownerID, sessionID)

	history, err := s.store.Recent(ctx, key)
	if err != nil {
		s.log.Error("load conversation failed", "session_id", sessionID, "error", err)
		return "", apierr.Internal(err)
	}
	excerpts := s.retrieve(ctx, ownerID, message)

	reply, err := s.gen.GenerateText(ctx, chatSystemPrompt, buildChatPrompt(excerpts, history, message))
	if err != nil {
		if errors.Is(err, ai.ErrServiceUnavailable) {
			return "", apierr.Unavailable(ai.ErrServiceUnavailable)
		}
		return "", apierr.Internal(err)
	}
	reply = strings.TrimSpace(reply)

	now := time.Now().UTC()
	if err := s.store.Append(ctx, key, conversation.Message{Role: conversation.RoleUser, Content: message, At: now}); err != nil {
		s.log.Warn("append user turn failed", "session_id", sessionID, "error", err)
	}
	if err := s.store.Append(ctx, key, conversation.Message{Role: conversation.RoleAssistant, Content: reply, At: now}); err != nil {
		s.log.Warn("append assistant turn failed", "session_id", sessionID, "error", err)
	}
	return reply, nil
}

// retrieve returns the owner's chunks closest to the question. Errors degrade to the newest
// chunks; chat still answers without context.
func (s *chatService) retrieve(ctx context.Context, ownerID uuid.UUID, question string) []*types.Chunk {
	dbc := dbctx.Context{Ctx: ctx}
	if s.vec != nil && s.embedder != nil {
		rows, err := s.retrieveByVector(ctx, ownerID, question)
		if err == nil {
			return rows
		}
		s.log.Warn("vector retrieval failed; using recent chunks", "error", err)
	}
	rows, err := s.chunks.ListRecentByOwner(dbc, ownerID, s.topK)
	if err != nil {
		s.log.Warn("load recent chunks failed", "error", err)
		return nil
	}
	return rows
}

func (s *chatService) retrieveByVector(ctx context.Context, ownerID uuid.UUID, question string) ([]*types.Chunk, error) {
	vecs, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors", len(vecs))
	}
	ids, err := s.vec.QueryIDs(ctx, ownerID.String(), vecs[0], s.topK, map[string]any{
		"owner_id": map[string]any{"$eq": ownerID.String()},
	})
	if err != nil {
		return nil, err
	}
	order := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		if id, err := uuid.Parse(raw); err == nil {
			order = append(order, id)
		}
	}
	if len(order) == 0 {
		return nil, nil
	}
	rows, err := s.chunks.GetByIDs(dbctx.Context{Ctx: ctx}, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Chunk, len(rows))
	for _, r := range rows {
		if r != nil && r.OwnerID == ownerID {
			byID[r.ID] = r
		}
	}
	out := make([]*types.Chunk, 0, len(order))
	for _, id := range order {
		if r := byID[id]; r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func buildChatPrompt(excerpts []*types.Chunk, history []conversation.Message, message string) string {
	var b strings.Builder
	if len(excerpts) > 0 {
		b.WriteString("Study material excerpts:\n")
		used := 0
		for i, c := range excerpts {
			if used+len(c.Content) > maxContextChars {
				break
			}
			fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(c.Content))
			used += len(c.Content)
		}
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("Student: ")
	b.WriteString(message)
	return b.String()
}
