package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	gocache "github.com/patrickmn/go-cache"

	"github.com/hrassist-core-poc/server/internal/agent/model"
)

// MemoryConversationRepository keeps conversation history in an in-process
// TTL cache. It is the fallback backend for local runs and tests when no
// Redis is configured, and enforces the same retention bound.
type MemoryConversationRepository struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryConversationRepository{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (r *MemoryConversationRepository) load(conversationID string) []*schema.Message {
	if v, ok := r.cache.Get(conversationID); ok {
		return v.([]*schema.Message)
	}
	return nil
}

func (r *MemoryConversationRepository) AddExchange(ctx context.Context, conversationID string, user, assistant *schema.Message, maxExchanges int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := append(r.load(conversationID), user, assistant)
	if maxExchanges > 0 && len(msgs) > 2*maxExchanges {
		msgs = msgs[len(msgs)-2*maxExchanges:]
	}
	r.cache.SetDefault(conversationID, msgs)
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.load(conversationID)
	msgs := make([]*schema.Message, len(stored))
	copy(msgs, stored)
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Delete(conversationID)
	return nil
}

func (r *MemoryConversationRepository) MessageCount(ctx context.Context, conversationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.load(conversationID)), nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
