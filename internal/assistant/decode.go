package assistant

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Candidate is one search hit extracted from an assistant reply.
type Candidate struct {
	ID    string
	Score *float64
	Data  map[string]any
}

type ReplyKind int

const (
	// ReplyEmpty: the body was not JSON.
	ReplyEmpty ReplyKind = iota
	// ReplyStructured: the body itself carries the candidates.
	ReplyStructured
	// ReplyEmbeddedText: the body's content string holds the payload.
	ReplyEmbeddedText
)

// Reply is a decoded post-message response.
type Reply struct {
	Kind ReplyKind
	Text string
	root gjson.Result
}

// Field names tried in order when probing replies.
var (
	listFields = []string{"results", "items", "data", "hits", "matches"}
	idFields   = []string{"id", "document_id", "doc_id", "_id", "key"}
	dataFields = []string{"data", "metadata", "payload", "document"}
)

// DecodeReply classifies a post-message body without failing.
func DecodeReply(body []byte) Reply {
	if !gjson.ValidBytes(body) {
		return Reply{Kind: ReplyEmpty}
	}
	root := gjson.ParseBytes(body)
	if c := root.Get("content"); c.Type == gjson.String && c.Str != "" {
		return Reply{Kind: ReplyEmbeddedText, Text: c.Str, root: root}
	}
	return Reply{Kind: ReplyStructured, root: root}
}

// Content is the trimmed reply text, empty unless the reply carried one.
func (r Reply) Content() string {
	return strings.TrimSpace(r.Text)
}

// Candidates extracts search hits. Text that is not JSON yields none.
func (r Reply) Candidates() []Candidate {
	switch r.Kind {
	case ReplyStructured:
		return extractCandidates(r.root)
	case ReplyEmbeddedText:
		if !gjson.Valid(r.Text) {
			return nil
		}
		return extractCandidates(gjson.Parse(r.Text))
	default:
		return nil
	}
}

func extractCandidates(v gjson.Result) []Candidate {
	switch {
	case v.IsArray():
		var out []Candidate
		v.ForEach(func(_, item gjson.Result) bool {
			if c, ok := candidateFrom(item); ok {
				out = append(out, c)
			}
			return true
		})
		return out
	case v.IsObject():
		for _, f := range listFields {
			if inner := v.Get(f); present(inner) {
				return extractCandidates(inner)
			}
		}
	}
	return nil
}

func candidateFrom(item gjson.Result) (Candidate, bool) {
	if item.Type == gjson.String {
		return Candidate{ID: item.Str}, item.Str != ""
	}
	if !item.IsObject() {
		return Candidate{}, false
	}
	c := Candidate{ID: firstString(item, idFields)}
	if c.ID == "" {
		return Candidate{}, false
	}
	if s := item.Get("score"); s.Type == gjson.Number {
		score := s.Num
		c.Score = &score
	}
	c.Data = firstObject(item, dataFields)
	return c, true
}

// firstString returns the first present field's value if it is a string.
// A present non-string field stops the search.
func firstString(item gjson.Result, fields []string) string {
	for _, f := range fields {
		v := item.Get(f)
		if !present(v) {
			continue
		}
		if v.Type == gjson.String {
			return v.Str
		}
		return ""
	}
	return ""
}

func firstObject(item gjson.Result, fields []string) map[string]any {
	for _, f := range fields {
		v := item.Get(f)
		if v.IsObject() {
			if m, ok := v.Value().(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}
