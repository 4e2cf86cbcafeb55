package discovery

import (
	"strings"

	"github.com/gogogo1024/cultura/internal/catalog"
)

// NoMatchesReply is returned when no organization matches a query.
const NoMatchesReply = "No matching organizations yet. Check back later or create one."

const maxMatches = 5

// Match picks at most five organizations for query in the order given. Name
// and description must contain the whole query; a tag only needs to contain
// one token of it.
func Match(orgs []*catalog.Organization, query string) []*catalog.Organization {
	q := strings.ToLower(strings.TrimSpace(query))
	tokens := strings.Fields(q)
	if len(tokens) == 0 {
		return nil
	}
	var out []*catalog.Organization
	for _, o := range orgs {
		if o == nil {
			continue
		}
		if matches(o, q, tokens) {
			out = append(out, o)
			if len(out) == maxMatches {
				break
			}
		}
	}
	return out
}

func matches(o *catalog.Organization, q string, tokens []string) bool {
	if strings.Contains(strings.ToLower(o.Name), q) || strings.Contains(strings.ToLower(o.Description), q) {
		return true
	}
	for _, tag := range o.Tags {
		t := strings.ToLower(tag)
		for _, tok := range tokens {
			if strings.Contains(t, tok) {
				return true
			}
		}
	}
	return false
}

// RenderMatches formats matches one per line, or NoMatchesReply when empty.
func RenderMatches(orgs []*catalog.Organization) string {
	if len(orgs) == 0 {
		return NoMatchesReply
	}
	lines := make([]string, len(orgs))
	for i, o := range orgs {
		lines[i] = "Organization: " + o.Name + " — Tags: " + strings.Join(o.Tags, ", ")
	}
	return strings.Join(lines, "\n")
}

// FallbackReply runs Match and RenderMatches in one step.
func FallbackReply(orgs []*catalog.Organization, query string) string {
	return RenderMatches(Match(orgs, query))
}
