package esrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/google/uuid"
)

// Config for the Elasticsearch catalog.
// Index holds organization documents keyed by slug; profiles live in Index+"_profiles".
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

type Repo struct {
	cli      *elasticsearch.Client
	index    string
	profiles string

	ensureOnce sync.Once
	ensureErr  error
}

func New(cfg Config) (*Repo, error) {
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.Index == "" {
		cfg.Index = "cultura_organizations"
	}
	esCfg := elasticsearch.Config{Addresses: cfg.Addresses}
	if cfg.Username != "" || cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	cli, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, err
	}
	return &Repo{cli: cli, index: cfg.Index, profiles: cfg.Index + "_profiles"}, nil
}

const orgMapping = `{
	"mappings": {"properties": {
		"id":          {"type": "keyword"},
		"owner_id":    {"type": "keyword"},
		"slug":        {"type": "keyword"},
		"name":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
		"description": {"type": "text"},
		"tags":        {"type": "keyword"},
		"events":      {"type": "object", "enabled": false},
		"created_at":  {"type": "date"}
	}}
}`

const profileMapping = `{
	"mappings": {"properties": {
		"user_id":  {"type": "keyword"},
		"username": {"type": "keyword"},
		"tags":     {"type": "keyword"}
	}}
}`

func (r *Repo) ensureIndices(ctx context.Context) error {
	r.ensureOnce.Do(func() {
		if err := r.createIndex(ctx, r.index, orgMapping); err != nil {
			r.ensureErr = err
			return
		}
		r.ensureErr = r.createIndex(ctx, r.profiles, profileMapping)
	})
	return r.ensureErr
}

func (r *Repo) createIndex(ctx context.Context, index, body string) error {
	res, err := r.cli.Indices.Exists([]string{index}, r.cli.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	cr := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(body)}
	cres, err := cr.Do(ctx, r.cli)
	if err != nil {
		return err
	}
	defer cres.Body.Close()
	// a concurrent creator may have won the race
	if cres.StatusCode >= 300 && !strings.Contains(cres.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s failed: %s", index, cres.String())
	}
	return nil
}

type searchHit struct {
	ID     string               `json:"_id"`
	Source catalog.Organization `json:"_source"`
}

func (r *Repo) search(ctx context.Context, query map[string]any) ([]searchHit, error) {
	if err := r.ensureIndices(ctx); err != nil {
		return nil, err
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	sr := esapi.SearchRequest{Index: []string{r.index}, Body: bytes.NewReader(body)}
	res, err := sr.Do(ctx, r.cli)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}
	var resp struct {
		Hits struct {
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return resp.Hits.Hits, nil
}

func orgQuery(f catalog.Filter, size int) map[string]any {
	q := map[string]any{"match_all": map[string]any{}}
	if f.OwnerID != "" {
		q = map[string]any{"term": map[string]any{"owner_id": f.OwnerID}}
	}
	return map[string]any{
		"size":  size,
		"query": q,
		"sort":  []any{map[string]any{"created_at": "asc"}, map[string]any{"id": "asc"}},
	}
}

func (r *Repo) ListOrganizations(ctx context.Context, f catalog.Filter) ([]*catalog.Organization, error) {
	hits, err := r.search(ctx, orgQuery(f, 10000))
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Organization, 0, len(hits))
	for i := range hits {
		out = append(out, normalize(&hits[i].Source))
	}
	return out, nil
}

func (r *Repo) GetOrganizationByOwner(ctx context.Context, ownerID string) (*catalog.Organization, error) {
	hits, err := r.search(ctx, orgQuery(catalog.Filter{OwnerID: ownerID}, 1))
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return normalize(&hits[0].Source), nil
}

func (r *Repo) SaveOrganization(ctx context.Context, org *catalog.Organization) error {
	if err := r.ensureIndices(ctx); err != nil {
		return err
	}
	if org.Slug == "" {
		return errors.New("organization slug required")
	}
	existing, err := r.getBySlug(ctx, org.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		org.ID = existing.ID
		org.CreatedAt = existing.CreatedAt
		return r.updateProfileFields(ctx, org)
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	doc := *normalize(org)
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	ir := esapi.IndexRequest{Index: r.index, DocumentID: org.Slug, Body: bytes.NewReader(payload), Refresh: "true"}
	res, err := ir.Do(ctx, r.cli)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("index failed: %s", res.String())
	}
	return nil
}

// updateProfileFields rewrites everything but events with a partial update,
// leaving concurrent AppendEvent scripts intact.
func (r *Repo) updateProfileFields(ctx context.Context, org *catalog.Organization) error {
	payload, err := json.Marshal(partialDoc(org))
	if err != nil {
		return err
	}
	retries := 3
	ur := esapi.UpdateRequest{Index: r.index, DocumentID: org.Slug, Body: bytes.NewReader(payload), Refresh: "true", RetryOnConflict: &retries}
	res, err := ur.Do(ctx, r.cli)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("update failed: %s", res.String())
	}
	return nil
}

func partialDoc(org *catalog.Organization) map[string]any {
	tags := org.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{"doc": map[string]any{
		"owner_id":    org.OwnerID,
		"name":        org.Name,
		"description": org.Description,
		"tags":        tags,
	}}
}

func (r *Repo) getBySlug(ctx context.Context, slug string) (*catalog.Organization, error) {
	gr := esapi.GetRequest{Index: r.index, DocumentID: slug}
	res, err := gr.Do(ctx, r.cli)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("get failed: %s", res.String())
	}
	var h struct {
		Source catalog.Organization `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return nil, err
	}
	return &h.Source, nil
}

// AppendEvent runs a painless script so the append is applied server side.
func (r *Repo) AppendEvent(ctx context.Context, orgID string, ev catalog.Event) error {
	hits, err := r.search(ctx, map[string]any{
		"size":  1,
		"query": map[string]any{"term": map[string]any{"id": orgID}},
	})
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return catalog.ErrNotFound
	}
	if ev.Tags == nil {
		ev.Tags = []string{}
	}
	body, err := json.Marshal(map[string]any{
		"script": map[string]any{
			"lang":   "painless",
			"source": "if (ctx._source.events == null) { ctx._source.events = [] } ctx._source.events.add(params.ev)",
			"params": map[string]any{"ev": ev},
		},
	})
	if err != nil {
		return err
	}
	retries := 3
	ur := esapi.UpdateRequest{Index: r.index, DocumentID: hits[0].ID, Body: bytes.NewReader(body), Refresh: "true", RetryOnConflict: &retries}
	res, err := ur.Do(ctx, r.cli)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("append event failed: %s", res.String())
	}
	return nil
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (*catalog.Profile, error) {
	if err := r.ensureIndices(ctx); err != nil {
		return nil, err
	}
	gr := esapi.GetRequest{Index: r.profiles, DocumentID: userID}
	res, err := gr.Do(ctx, r.cli)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("get profile failed: %s", res.String())
	}
	var h struct {
		Source catalog.Profile `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return nil, err
	}
	if h.Source.Tags == nil {
		h.Source.Tags = []string{}
	}
	return &h.Source, nil
}

func (r *Repo) SaveProfile(ctx context.Context, p *catalog.Profile) error {
	if err := r.ensureIndices(ctx); err != nil {
		return err
	}
	cp := *p
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	payload, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	ir := esapi.IndexRequest{Index: r.profiles, DocumentID: p.UserID, Body: bytes.NewReader(payload), Refresh: "true"}
	res, err := ir.Do(ctx, r.cli)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("index profile failed: %s", res.String())
	}
	return nil
}

// Ping checks the cluster with the Info API under a short timeout.
func (r *Repo) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
	}
	res, err := r.cli.Info(r.cli.Info.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode >= 300 {
		return fmt.Errorf("es info status %d", res.StatusCode)
	}
	return nil
}

func normalize(o *catalog.Organization) *catalog.Organization {
	if o.Tags == nil {
		o.Tags = []string{}
	}
	if o.Events == nil {
		o.Events = []catalog.Event{}
	}
	for i := range o.Events {
		if o.Events[i].Tags == nil {
			o.Events[i].Tags = []string{}
		}
	}
	return o
}
