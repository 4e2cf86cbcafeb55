package assistant

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gogogo1024/cultura/internal/common"
	"go.uber.org/zap"
)

const defaultSearchLimit = 25

// Filters narrow a search. Type is sent as a "type:<value>" label.
type Filters struct {
	Type string
}

// Document is a record published to the search thread.
type Document struct {
	ID       string
	Type     string
	Text     string
	Metadata map[string]any
}

// Gateway hides the remote assistant behind chat and search calls. The zero
// configuration yields a disabled gateway whose calls report ErrNotConfigured.
type Gateway struct {
	cfg      Config
	api      *backboard
	sessions *sessionCache
}

func New(cfg Config) (*Gateway, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	api, err := newBackboard(cfg)
	if err != nil {
		return nil, err
	}
	return &Gateway{cfg: api.cfg, api: api, sessions: newSessionCache(api, api.cfg)}, nil
}

func (g *Gateway) Enabled() bool { return g != nil && g.cfg.Enabled() }

// EnsureSearchSession returns the retrieval thread, creating it on first use.
func (g *Gateway) EnsureSearchSession(ctx context.Context) (Session, error) {
	if !g.Enabled() {
		return Session{}, ErrNotConfigured
	}
	return g.sessions.ensureThread(ctx, flightSearch, &g.sessions.searchThread)
}

// EnsureChatSession returns the conversation thread, kept apart from retrieval.
func (g *Gateway) EnsureChatSession(ctx context.Context) (Session, error) {
	if !g.Enabled() {
		return Session{}, ErrNotConfigured
	}
	return g.sessions.ensureThread(ctx, flightChat, &g.sessions.chatThread)
}

// Search asks the search thread for candidates. Undecodable replies yield no
// candidates and no error.
func (g *Gateway) Search(ctx context.Context, query string, limit int, f Filters) ([]Candidate, error) {
	sess, err := g.EnsureSearchSession(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	content := query
	if f.Type != "" {
		content = "type:" + f.Type + "\n" + query
	}
	out, err := g.api.postMessage(ctx, sess.ThreadID, content, limit)
	if err != nil {
		return nil, unavailable("Unable to reach Backboard.", err)
	}
	if !out.ok() {
		return nil, responseError(out.status, out.body)
	}
	return DecodeReply(out.body).Candidates(), nil
}

// Chat sends the guard prompt followed by message and returns the trimmed reply.
func (g *Gateway) Chat(ctx context.Context, message string) (string, error) {
	if !g.Enabled() {
		return "", ErrNotConfigured
	}
	sess, err := g.EnsureChatSession(ctx)
	if err != nil {
		return "", unavailable("Unable to create chat thread.", err)
	}
	out, err := g.api.postMessage(ctx, sess.ThreadID, g.cfg.ChatGuardPrompt+"\n\n"+message, 0)
	if err != nil {
		return "", unavailable("Unable to reach Backboard.", err)
	}
	if !out.ok() {
		return "", responseError(out.status, out.body)
	}
	reply := DecodeReply(out.body).Content()
	if reply == "" {
		return "", unavailable("Backboard returned an empty reply.", nil)
	}
	return reply, nil
}

// UpsertDocument stores doc as JSON on the search thread.
func (g *Gateway) UpsertDocument(ctx context.Context, doc Document) error {
	sess, err := g.EnsureSearchSession(ctx)
	if err != nil {
		return err
	}
	meta := make(map[string]any, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta["id"] = doc.ID
	meta["type"] = doc.Type
	out, err := g.api.postJSON(ctx, verbThreadDocument, "/threads/"+sess.ThreadID+"/documents", map[string]any{
		"content":  doc.Text,
		"metadata": meta,
	})
	return checkOutcome(out, err)
}

func (g *Gateway) AddMemory(ctx context.Context, content string, metadata map[string]any) error {
	if !g.Enabled() {
		return ErrNotConfigured
	}
	aid, err := g.sessions.ensureAssistant(ctx)
	if err != nil {
		return err
	}
	out, err := g.api.postJSON(ctx, verbAssistantMemory, "/assistants/"+aid+"/memories", map[string]any{
		"content":  content,
		"metadata": metadata,
	})
	return checkOutcome(out, err)
}

// UploadAssistantDocument attaches a text file to the assistant itself.
func (g *Gateway) UploadAssistantDocument(ctx context.Context, filename string, content []byte) error {
	if !g.Enabled() {
		return ErrNotConfigured
	}
	aid, err := g.sessions.ensureAssistant(ctx)
	if err != nil {
		return unavailable("Unable to create Backboard assistant.", err)
	}
	out, err := g.api.postFile(ctx, verbAssistantDocument, "/assistants/"+aid+"/documents", filename, bytesReader(content))
	return checkOutcome(out, err)
}

// UploadThreadDocument attaches an arbitrary file to the search thread.
func (g *Gateway) UploadThreadDocument(ctx context.Context, filename string, r io.Reader) error {
	sess, err := g.EnsureSearchSession(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return err
		}
		return unavailable("Unable to create Backboard thread.", err)
	}
	out, err := g.api.postFile(ctx, verbThreadDocument, "/threads/"+sess.ThreadID+"/documents", filename, r)
	return checkOutcome(out, err)
}

func checkOutcome(out outcome, err error) error {
	if err != nil {
		common.L().Warn("assistant request failed", zap.Error(err))
		return unavailable("Unable to reach Backboard.", err)
	}
	if !out.ok() {
		return responseError(out.status, out.body)
	}
	return nil
}
