package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/libs/acl/openai"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gogogo1024/cultura/internal/observability"
)

// ErrNotConfigured reports a missing OpenAI provider or key.
var ErrNotConfigured = errors.New("openai completion not configured")

var errEmptyCompletion = errors.New("empty completion")

// Completer answers one user message under an optional system prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAICompleter struct {
	client *einoopenai.Client
	model  string
}

// NewCompleter builds the OpenAI chat completer.
func NewCompleter(cfg Config) (Completer, error) {
	if !cfg.openAI() {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	cli, err := einoopenai.NewClient(ctx, &einoopenai.Config{APIKey: cfg.APIKey, Model: cfg.ChatModel, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	return &openAICompleter{client: cli, model: cfg.ChatModel}, nil
}

func (o *openAICompleter) Complete(ctx context.Context, system, user string) (reply string, err error) {
	ctx, span := observability.Tracer().Start(ctx, "openai.chat")
	span.SetAttributes(attribute.String("model", o.model))
	defer span.End()
	start := time.Now()
	defer func() { observability.ObserveUpstream("openai-chat", start, err) }()

	resp, err := o.client.Generate(ctx, buildMessages(system, user))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errEmptyCompletion
	}
	return resp.Content, nil
}

func buildMessages(system, user string) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	return append(msgs, schema.UserMessage(user))
}
