package discovery

import (
	"context"
	"errors"
	"strings"

	"github.com/gogogo1024/cultura/internal/assistant"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/observability"
	"go.uber.org/zap"
)

var (
	ErrMessageRequired      = errors.New("message is required")
	ErrTitleRequired        = errors.New("title is required")
	ErrOrganizationNotFound = errors.New("organization profile not found")
)

// UpstreamError is returned by Chat when the assistant could not answer.
type UpstreamError struct {
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string { return "assistant unavailable: " + e.Detail }

func (e *UpstreamError) Unwrap() error { return e.Err }

// StoreError wraps a catalog failure.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// Chatter answers a free-text message. *assistant.Gateway and
// *assistant.ChainChatter implement it.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Searcher looks up candidate records on the assistant's search thread.
type Searcher interface {
	Enabled() bool
	Search(ctx context.Context, query string, limit int, f assistant.Filters) ([]assistant.Candidate, error)
}

// Publisher pushes new records to the assistant's knowledge.
type Publisher interface {
	Enabled() bool
	UpsertDocument(ctx context.Context, doc assistant.Document) error
	AddMemory(ctx context.Context, content string, metadata map[string]any) error
	UploadAssistantDocument(ctx context.Context, filename string, content []byte) error
}

// Source tells where a discover reply came from.
type Source string

const (
	SourceAssistant Source = "assistant"
	SourceFallback  Source = "fallback"
)

// Outcome is the result of Discover.
type Outcome struct {
	Reply  string `json:"reply"`
	Source Source `json:"source"`
}

// Deps wires a Service. Repo is required; a nil Chat makes Discover always
// use the matcher and Chat always fail.
type Deps struct {
	Repo      catalog.Repo
	Chat      Chatter
	Discover  Chatter
	Search    Searcher
	Publisher Publisher
	Index     *VectorIndex
}

// Service is the request handler behind the chat, discover and events routes.
type Service struct {
	repo     catalog.Repo
	chat     Chatter
	discover Chatter
	search   Searcher
	publish  Publisher
	index    *VectorIndex
}

// New builds a Service. Discover defaults to Chat when unset.
func New(d Deps) *Service {
	s := &Service{
		repo:     d.Repo,
		chat:     d.Chat,
		discover: d.Discover,
		search:   d.Search,
		publish:  d.Publisher,
		index:    d.Index,
	}
	if s.discover == nil {
		s.discover = s.chat
	}
	return s
}

func (s *Service) Repo() catalog.Repo { return s.repo }

// Chat forwards message to the assistant with no fallback.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return "", ErrMessageRequired
	}
	observability.ChatRequests.Add(1)
	if s.chat == nil {
		observability.ChatUpstreamErrors.Add(1)
		return "", &UpstreamError{Detail: assistant.ErrNotConfigured.Detail, Err: assistant.ErrNotConfigured}
	}
	reply, err := s.chat.Chat(ctx, msg)
	if err != nil {
		observability.ChatUpstreamErrors.Add(1)
		common.L().Warn("assistant chat failed", zap.Error(err))
		return "", &UpstreamError{Detail: err.Error(), Err: err}
	}
	return reply, nil
}

// Discover tries the assistant first and answers from the catalog matcher
// when it fails. Only a catalog failure is returned as an error.
func (s *Service) Discover(ctx context.Context, message string) (Outcome, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Outcome{}, ErrMessageRequired
	}
	observability.DiscoverRequests.Add(1)
	if s.discover != nil {
		reply, err := s.discover.Chat(ctx, msg)
		if err == nil {
			return Outcome{Reply: reply, Source: SourceAssistant}, nil
		}
		common.L().Info("discover falling back to catalog matcher", zap.Error(err))
	}
	observability.DiscoverFallbacks.Add(1)
	orgs, err := s.repo.ListOrganizations(ctx, catalog.Filter{})
	if err != nil {
		return Outcome{}, &StoreError{Err: err}
	}
	return Outcome{Reply: FallbackReply(orgs, msg), Source: SourceFallback}, nil
}
