package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Session identifies a thread on the remote assistant.
type Session struct {
	AssistantID string
	ThreadID    string
}

const (
	flightAssistant = "assistant"
	flightSearch    = "search"
	flightChat      = "chat"
)

// sessionCache memoizes the assistant id and one thread per use. Creation
// runs at most once concurrently per key; failures are not cached so the
// next caller starts over.
type sessionCache struct {
	api     *backboard
	timeout time.Duration

	mu           sync.Mutex
	assistantID  string
	searchThread string
	chatThread   string

	group singleflight.Group
}

func newSessionCache(api *backboard, cfg Config) *sessionCache {
	return &sessionCache{
		api:          api,
		timeout:      cfg.Timeout,
		assistantID:  cfg.AssistantID,
		searchThread: cfg.ThreadID,
		chatThread:   cfg.ChatThreadID,
	}
}

func (s *sessionCache) cached(slot *string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *slot
}

func (s *sessionCache) store(slot *string, v string) {
	s.mu.Lock()
	*slot = v
	s.mu.Unlock()
}

// flightContext detaches the shared creation flow from the cancellation of
// whichever caller happened to start it.
func (s *sessionCache) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(ctx), 2*timeout)
}

func (s *sessionCache) ensureAssistant(ctx context.Context) (string, error) {
	if id := s.cached(&s.assistantID); id != "" {
		return id, nil
	}
	v, err, _ := s.group.Do(flightAssistant, func() (any, error) {
		if id := s.cached(&s.assistantID); id != "" {
			return id, nil
		}
		fctx, cancel := s.flightContext(ctx)
		defer cancel()
		id, err := s.api.createAssistant(fctx)
		if err != nil {
			return "", err
		}
		s.store(&s.assistantID, id)
		common.L().Info("assistant created", zap.String("assistant_id", id))
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *sessionCache) ensureThread(ctx context.Context, key string, slot *string) (Session, error) {
	if tid := s.cached(slot); tid != "" {
		return Session{AssistantID: s.cached(&s.assistantID), ThreadID: tid}, nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		if tid := s.cached(slot); tid != "" {
			return Session{AssistantID: s.cached(&s.assistantID), ThreadID: tid}, nil
		}
		fctx, cancel := s.flightContext(ctx)
		defer cancel()
		aid, err := s.ensureAssistant(fctx)
		if err != nil {
			return Session{}, err
		}
		tid, err := s.api.createThread(fctx, aid)
		if err != nil {
			return Session{}, err
		}
		s.store(slot, tid)
		common.L().Info("assistant thread created", zap.String("kind", key), zap.String("thread_id", tid))
		return Session{AssistantID: aid, ThreadID: tid}, nil
	})
	if err != nil {
		observability.SessionCreateErrors.Add(1)
		common.L().Warn("assistant session unavailable", zap.String("kind", key), zap.Error(err))
		return Session{}, err
	}
	observability.SessionCreations.Add(1)
	return v.(Session), nil
}
