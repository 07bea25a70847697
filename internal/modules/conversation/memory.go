package conversation

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type session struct {
	id  string
	log []Message
}

// MemoryStore keeps sessions in process. Idle sessions expire after the TTL and, once
// capacity is reached, the least recently used session is evicted.
//
// go-cache owns expiry; the LRU list and index are only trusted for ids whose cached value is
// still the same *session. Every access refreshes the TTL, so LRU order is also expiry order.
type MemoryStore struct {
	log      *logger.Logger
	mu       sync.Mutex
	cache    *cache.Cache
	lru      *list.List
	index    map[string]*list.Element
	capacity int
	ttl      time.Duration
}

func NewMemoryStore(baseLog *logger.Logger, capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cleanup := ttl / 3
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &MemoryStore{
		log:      baseLog.With("service", "ConversationMemoryStore"),
		cache:    cache.New(ttl, cleanup),
		lru:      list.New(),
		index:    make(map[string]*list.Element),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneExpired()
	sess := s.lookup(sessionID)
	if sess == nil {
		for s.lru.Len() >= s.capacity {
			s.evict(s.lru.Back())
		}
		sess = &session{id: sessionID}
		s.index[sessionID] = s.lru.PushFront(sess)
	} else {
		s.lru.MoveToFront(s.index[sessionID])
	}
	sess.log = append(sess.log, m)
	s.cache.Set(sessionID, sess, s.ttl)
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, sessionID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.lookup(sessionID)
	if sess == nil {
		return []Message{}, nil
	}
	s.lru.MoveToFront(s.index[sessionID])
	s.cache.Set(sessionID, sess, s.ttl)
	return lastN(sess.log, WindowSize), nil
}

// lookup returns the live session or nil, dropping a stale LRU entry for an expired id.
// Callers hold s.mu.
func (s *MemoryStore) lookup(sessionID string) *session {
	elem, ok := s.index[sessionID]
	if !ok {
		return nil
	}
	if !s.live(elem) {
		s.drop(elem)
		return nil
	}
	return elem.Value.(*session)
}

func (s *MemoryStore) live(elem *list.Element) bool {
	sess := elem.Value.(*session)
	v, ok := s.cache.Get(sess.id)
	if !ok {
		return false
	}
	cached, _ := v.(*session)
	return cached == sess
}

// pruneExpired drops expired sessions from the cold end of the LRU. Callers hold s.mu.
func (s *MemoryStore) pruneExpired() {
	for back := s.lru.Back(); back != nil && !s.live(back); back = s.lru.Back() {
		s.drop(back)
	}
}

// evict removes a live session to make room. Callers hold s.mu.
func (s *MemoryStore) evict(elem *list.Element) {
	sess := elem.Value.(*session)
	s.drop(elem)
	s.cache.Delete(sess.id)
	s.log.Debug("evicted idle conversation session", "session_id", sess.id)
}

func (s *MemoryStore) drop(elem *list.Element) {
	sess := elem.Value.(*session)
	if s.index[sess.id] == elem {
		delete(s.index, sess.id)
	}
	s.lru.Remove(elem)
}

// Len is the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneExpired()
	return s.lru.Len()
}
