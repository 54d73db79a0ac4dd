package chatbot

import (
	"sync"
	"time"
)

// ConversationContext is transient per-user state used for continuity. It is
// a best-effort cache, not a source of truth, and is rebuilt empty on
// process restart.
type ConversationContext struct {
	LastIntent      string
	MessageCount    int
	TopicsDiscussed []string
	LastInteraction time.Time
}

// ContextStore holds conversation contexts keyed by user id
type ContextStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	contexts map[uint]*ConversationContext
}

func NewContextStore() *ContextStore {
	return &ContextStore{
		now:      time.Now,
		contexts: make(map[uint]*ConversationContext),
	}
}

// Touch records that intentName was resolved for the user
func (s *ContextStore) Touch(userID uint, intentName string) {
	if userID == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.contexts[userID]
	if !ok {
		ctx = &ConversationContext{}
		s.contexts[userID] = ctx
	}

	ctx.LastIntent = intentName
	ctx.MessageCount++
	ctx.LastInteraction = s.now()

	for _, topic := range ctx.TopicsDiscussed {
		if topic == intentName {
			return
		}
	}
	ctx.TopicsDiscussed = append(ctx.TopicsDiscussed, intentName)
}

// Get returns a copy of the user's context, if one exists
func (s *ContextStore) Get(userID uint) (ConversationContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.contexts[userID]
	if !ok {
		return ConversationContext{}, false
	}

	copied := *ctx
	copied.TopicsDiscussed = append([]string(nil), ctx.TopicsDiscussed...)
	return copied, true
}

// PruneStale drops contexts idle for longer than maxAge and returns how many
// were removed.
func (s *ContextStore) PruneStale(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, ctx := range s.contexts {
		if ctx.LastInteraction.Before(cutoff) {
			delete(s.contexts, userID)
			removed++
		}
	}
	return removed
}

// Len reports how many user contexts are held
func (s *ContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}
