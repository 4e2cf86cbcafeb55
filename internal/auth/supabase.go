package auth

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/conf"
	"github.com/gogogo1024/cultura/internal/observability"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const verbGetUser = "auth-get-user"

// SupabaseResolver asks the Supabase auth API who owns a token.
type SupabaseResolver struct {
	baseURL string
	anonKey string
	timeout time.Duration
	cli     *client.Client
}

func NewSupabaseResolver(baseURL, anonKey string, timeout time.Duration) (*SupabaseResolver, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cli, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}
	return &SupabaseResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		timeout: timeout,
		cli:     cli,
	}, nil
}

// Resolve calls GET {url}/auth/v1/user. Any failure is ErrInvalidSession.
func (s *SupabaseResolver) Resolve(ctx context.Context, token string) (user *User, err error) {
	ctx, span := observability.Tracer().Start(ctx, "auth.get-user")
	start := time.Now()
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		observability.ObserveUpstream(verbGetUser, start, err)
		span.End()
	}()

	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)
	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(s.baseURL + "/auth/v1/user")
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if err := s.cli.DoTimeout(ctx, req, resp, s.timeout); err != nil {
		common.L().Warn("supabase user lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidSession, resp.StatusCode())
	}
	body := resp.Body()
	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return nil, ErrInvalidSession
	}
	return &User{ID: id, Email: gjson.GetBytes(body, "email").String()}, nil
}

// NewFromConfig returns the Supabase resolver, or an empty StaticResolver that
// rejects every token when Supabase is not configured.
func NewFromConfig(c conf.AuthConfig) (Resolver, error) {
	if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
		common.L().Warn("supabase not configured; authenticated routes will reject all tokens")
		return StaticResolver{}, nil
	}
	return NewSupabaseResolver(c.SupabaseURL, c.SupabaseAnonKey, 0)
}
