package assistant

import (
	"context"
	"strings"

	"github.com/gogogo1024/cultura/internal/ai/chain"
)

var errChainNotConfigured = &UnavailableError{Detail: "OpenAI not configured."}

// ChainChatter answers chat through the configured LLM instead of the remote
// assistant. The guard prompt is sent as the system message.
type ChainChatter struct {
	llm   chain.Completer
	guard string
}

// NewChainChatter accepts a nil completer; Chat then reports unavailability.
func NewChainChatter(c chain.Completer, guardPrompt string) *ChainChatter {
	return &ChainChatter{llm: c, guard: guardPrompt}
}

func (c *ChainChatter) Chat(ctx context.Context, message string) (string, error) {
	if c.llm == nil {
		return "", errChainNotConfigured
	}
	resp, err := c.llm.Complete(ctx, c.guard, message)
	if err != nil {
		return "", unavailable("OpenAI chat failed: "+err.Error(), err)
	}
	reply := strings.TrimSpace(resp)
	if reply == "" {
		return "", unavailable("OpenAI returned an empty reply.", nil)
	}
	return reply, nil
}
