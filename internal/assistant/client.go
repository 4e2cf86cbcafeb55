package assistant

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gogogo1024/cultura/internal/observability"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Verb names label spans and metrics.
const (
	verbCreateAssistant   = "create-assistant"
	verbCreateThread      = "create-thread"
	verbPostMessage       = "post-message"
	verbThreadDocument    = "thread-document"
	verbAssistantMemory   = "assistant-memory"
	verbAssistantDocument = "assistant-document"
)

// backboard speaks the REST verbs of the assistant backend.
type backboard struct {
	cfg Config
	cli *client.Client
}

func newBackboard(cfg Config) (*backboard, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.Timeout = timeout
	cli, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}
	return &backboard{cfg: cfg, cli: cli}, nil
}

type outcome struct {
	status int
	body   []byte
}

func (o outcome) ok() bool { return o.status >= 200 && o.status < 300 }

// do sends req and copies the response out before the pooled objects are released.
func (b *backboard) do(ctx context.Context, verb string, build func(req *protocol.Request)) (out outcome, err error) {
	ctx, span := observability.Tracer().Start(ctx, "assistant."+verb)
	start := time.Now()
	defer func() {
		span.SetAttributes(attribute.Int("http.status_code", out.status))
		if err == nil && !out.ok() {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", out.status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		var obsErr error = err
		if obsErr == nil && !out.ok() {
			obsErr = fmt.Errorf("status %d", out.status)
		}
		observability.ObserveUpstream(verb, start, obsErr)
		span.End()
	}()

	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)
	req.SetMethod(consts.MethodPost)
	req.Header.Set("X-API-Key", b.cfg.APIKey)
	build(req)
	if err = b.cli.DoTimeout(ctx, req, resp, b.cfg.Timeout); err != nil {
		return outcome{}, err
	}
	out.status = resp.StatusCode()
	out.body = append([]byte(nil), resp.Body()...)
	return out, nil
}

func (b *backboard) postJSON(ctx context.Context, verb, path string, payload any) (outcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return outcome{}, err
	}
	return b.do(ctx, verb, func(req *protocol.Request) {
		req.SetRequestURI(b.cfg.BaseURL + path)
		req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
		req.SetBody(body)
	})
}

func (b *backboard) postForm(ctx context.Context, verb, path string, form map[string]string) (outcome, error) {
	return b.do(ctx, verb, func(req *protocol.Request) {
		req.SetRequestURI(b.cfg.BaseURL + path)
		req.SetFormData(form)
	})
}

func (b *backboard) postFile(ctx context.Context, verb, path, filename string, r io.Reader) (outcome, error) {
	return b.do(ctx, verb, func(req *protocol.Request) {
		req.SetRequestURI(b.cfg.BaseURL + path)
		req.SetFileReader("file", filename, r)
	})
}

// createAssistant returns the id of a newly created assistant.
func (b *backboard) createAssistant(ctx context.Context) (string, error) {
	out, err := b.postJSON(ctx, verbCreateAssistant, "/assistants", b.cfg.assistantPayload())
	if err != nil {
		return "", unavailable("Failed to create Backboard assistant.", err)
	}
	if !out.ok() {
		return "", unavailable("Failed to create Backboard assistant.", responseError(out.status, out.body))
	}
	id := stringField(out.body, "assistant_id")
	if id == "" {
		return "", unavailable("Backboard assistant id missing.", nil)
	}
	return id, nil
}

func (b *backboard) createThread(ctx context.Context, assistantID string) (string, error) {
	out, err := b.postJSON(ctx, verbCreateThread, "/assistants/"+assistantID+"/threads", map[string]any{})
	if err != nil {
		return "", unavailable("Failed to create Backboard thread.", err)
	}
	if !out.ok() {
		return "", unavailable("Failed to create Backboard thread.", responseError(out.status, out.body))
	}
	id := stringField(out.body, "thread_id")
	if id == "" {
		return "", unavailable("Backboard thread id missing.", nil)
	}
	return id, nil
}

// postMessage sends content to a thread. limit <= 0 omits the limit field.
func (b *backboard) postMessage(ctx context.Context, threadID, content string, limit int) (outcome, error) {
	form := map[string]string{
		"content": content,
		"stream":  "false",
		"memory":  "Auto",
	}
	if limit > 0 {
		form["limit"] = fmt.Sprint(limit)
	}
	return b.postForm(ctx, verbPostMessage, "/threads/"+threadID+"/messages", form)
}

func stringField(body []byte, key string) string {
	v := gjson.GetBytes(body, key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }
