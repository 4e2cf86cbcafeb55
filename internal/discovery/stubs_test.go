package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gogogo1024/cultura/internal/assistant"
	"github.com/gogogo1024/cultura/internal/catalog"
)

type stubChatter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	last  string
}

func (s *stubChatter) Chat(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = message
	return s.reply, s.err
}

type stubAssistant struct {
	enabled    bool
	candidates []assistant.Candidate
	searchErr  error
	publishErr error
	lastQuery  string
	lastFilter assistant.Filters
	docs       []assistant.Document
	memories   []map[string]any
	files      map[string]string
}

func (s *stubAssistant) Enabled() bool { return s.enabled }

func (s *stubAssistant) Search(ctx context.Context, query string, limit int, f assistant.Filters) ([]assistant.Candidate, error) {
	s.lastQuery, s.lastFilter = query, f
	return s.candidates, s.searchErr
}

func (s *stubAssistant) UpsertDocument(ctx context.Context, doc assistant.Document) error {
	s.docs = append(s.docs, doc)
	return s.publishErr
}

func (s *stubAssistant) AddMemory(ctx context.Context, content string, metadata map[string]any) error {
	s.memories = append(s.memories, metadata)
	return s.publishErr
}

func (s *stubAssistant) UploadAssistantDocument(ctx context.Context, filename string, content []byte) error {
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[filename] = string(content)
	return s.publishErr
}

// keywordEmbedding puts each known keyword on its own axis.
type keywordEmbedding struct {
	dim   int
	calls int
}

func newKeywordEmbedding() *keywordEmbedding { return &keywordEmbedding{dim: 8} }

var keywordAxes = []string{"salsa", "chess", "poetry", "jazz"}

func (k *keywordEmbedding) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	k.calls++
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v := make([]float64, k.dim)
		lt := strings.ToLower(t)
		for j, kw := range keywordAxes {
			if strings.Contains(lt, kw) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

func (k *keywordEmbedding) Dim() int         { return k.dim }
func (k *keywordEmbedding) Provider() string { return "keyword" }

// brokenRepo fails every read.
type brokenRepo struct {
	catalog.Repo
}

var errStoreDown = errors.New("relation \"organizations\" does not exist")

func (brokenRepo) ListOrganizations(ctx context.Context, f catalog.Filter) ([]*catalog.Organization, error) {
	return nil, errStoreDown
}

func (brokenRepo) GetOrganizationByOwner(ctx context.Context, ownerID string) (*catalog.Organization, error) {
	return nil, errStoreDown
}

func seededRepo(orgs ...*catalog.Organization) catalog.Repo {
	r := catalog.NewMemoryRepo()
	for _, o := range orgs {
		if o.Slug == "" {
			o.Slug = catalog.OwnerSlug(o.Name, o.OwnerID)
		}
		if err := r.SaveOrganization(context.Background(), o); err != nil {
			panic(err)
		}
	}
	return r
}
