package assistant

import (
	"context"
	"errors"
	"testing"
)

type stubCompleter struct {
	reply        string
	err          error
	system, user string
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.reply, s.err
}

func TestChainChatterWithoutCompleterIsUnavailable(t *testing.T) {
	c := NewChainChatter(nil, "guard")
	_, err := c.Chat(context.Background(), "hi")
	var ue *UnavailableError
	if !errors.As(err, &ue) || ue.Detail != "OpenAI not configured." {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestChainChatterSendsGuardAsSystem(t *testing.T) {
	s := &stubCompleter{reply: " ok "}
	reply, err := NewChainChatter(s, "guard").Chat(context.Background(), "hi")
	if err != nil || reply != "ok" {
		t.Fatalf("reply %q err %v", reply, err)
	}
	if s.system != "guard" || s.user != "hi" {
		t.Fatalf("prompt %q / %q", s.system, s.user)
	}
}

func TestChainChatterErrors(t *testing.T) {
	c := NewChainChatter(&stubCompleter{err: errors.New("rate limited")}, "")
	if _, err := c.Chat(context.Background(), "hi"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	c = NewChainChatter(&stubCompleter{reply: "  "}, "")
	if _, err := c.Chat(context.Background(), "hi"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable on empty, got %v", err)
	}
}
