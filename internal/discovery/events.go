package discovery

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gogogo1024/cultura/internal/assistant"
	"github.com/gogogo1024/cultura/internal/catalog"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/observability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventSearchLimit = 50
	defaultOrgName   = "Organization"
	defaultTitle     = "Event"
)

// EventItem is one entry of the events feed.
type EventItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	OrgName     string   `json:"orgName"`
}

// EventInput is what an organization owner submits.
type EventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
}

// Events returns the feed for viewerID (may be empty). The search query is q,
// or the viewer's interest tags when q is blank. Ranking order: assistant
// search, assistant ids over the local feed (possibly empty), local vectors,
// full feed.
func (s *Service) Events(ctx context.Context, viewerID, q string) ([]EventItem, error) {
	observability.EventsFeedRequests.Add(1)
	orgs, err := s.repo.ListOrganizations(ctx, catalog.Filter{})
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	items := flattenEvents(orgs)
	query := strings.TrimSpace(q)
	if query == "" {
		query = strings.Join(s.viewerTags(ctx, viewerID), " ")
	}
	if query == "" {
		return items, nil
	}

	if s.search != nil && s.search.Enabled() {
		candidates, err := s.search.Search(ctx, query, eventSearchLimit, assistant.Filters{Type: "event"})
		if err != nil {
			common.L().Warn("event search failed", zap.Error(err))
		}
		if mapped := candidatesToEvents(candidates); len(mapped) > 0 {
			observability.EventsSearchHits.Add(1)
			return mapped, nil
		}
		// Returned ids are authoritative even when none is in the local feed.
		if len(candidates) > 0 {
			ids := make(map[string]bool, len(candidates))
			for _, c := range candidates {
				ids[c.ID] = true
			}
			picked := []EventItem{}
			for _, it := range items {
				if ids[it.ID] {
					picked = append(picked, it)
				}
			}
			observability.EventsSearchHits.Add(1)
			return picked, nil
		}
	}

	if ranked := s.rankLocal(ctx, items, query); len(ranked) > 0 {
		return ranked, nil
	}
	return items, nil
}

// viewerTags prefers the viewer's organization tags and falls back to their
// individual profile.
func (s *Service) viewerTags(ctx context.Context, viewerID string) []string {
	if viewerID == "" {
		return nil
	}
	if org, err := s.repo.GetOrganizationByOwner(ctx, viewerID); err == nil && org != nil && len(org.Tags) > 0 {
		return org.Tags
	}
	if p, err := s.repo.GetProfile(ctx, viewerID); err == nil && p != nil {
		return p.Tags
	}
	return nil
}

func (s *Service) rankLocal(ctx context.Context, items []EventItem, query string) []EventItem {
	if !s.index.Enabled() || len(items) == 0 {
		return nil
	}
	byID := make(map[string]EventItem, len(items))
	texts := make(map[string]string, len(items))
	for _, it := range items {
		byID[it.ID] = it
		texts[it.ID] = eventText(it)
	}
	if err := s.index.Sync(ctx, texts); err != nil {
		common.L().Warn("vector index sync failed", zap.Error(err))
	}
	hits, err := s.index.Search(ctx, query, eventSearchLimit)
	if err != nil {
		common.L().Warn("vector search failed", zap.Error(err))
		return nil
	}
	var out []EventItem
	for _, h := range hits {
		if it, ok := byID[h.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}

func eventText(it EventItem) string {
	return catalog.Event{Title: it.Title, Description: it.Description, Tags: it.Tags}.SearchText()
}

func flattenEvents(orgs []*catalog.Organization) []EventItem {
	items := []EventItem{}
	for _, org := range orgs {
		if org == nil {
			continue
		}
		orgName := org.Name
		if orgName == "" {
			orgName = defaultOrgName
		}
		for i, ev := range org.Events {
			id := ev.ID
			if id == "" {
				id = org.ID + "-" + strconv.Itoa(i)
			}
			title := ev.Title
			if title == "" {
				title = defaultTitle
			}
			tags := ev.Tags
			if tags == nil {
				tags = []string{}
			}
			items = append(items, EventItem{
				ID:          id,
				Title:       title,
				Description: ev.Description,
				Date:        ev.Date,
				Tags:        tags,
				OrgName:     orgName,
			})
		}
	}
	return items
}

func candidatesToEvents(cands []assistant.Candidate) []EventItem {
	var out []EventItem
	for _, c := range cands {
		if it, ok := candidateToEvent(c); ok {
			out = append(out, it)
		}
	}
	return out
}

// candidateToEvent maps search data onto a feed item. Candidates carrying no
// usable field are skipped.
func candidateToEvent(c assistant.Candidate) (EventItem, bool) {
	d := c.Data
	title := stringOf(d, "title", "name")
	desc := stringOf(d, "description")
	date := stringOf(d, "date", "starts_at")
	tags := catalog.NormalizeTags(d["tags"])
	orgName := stringOf(d, "orgName", "organization")
	if orgName == "" {
		orgName = defaultOrgName
	}
	if title == "" && desc == "" && date == "" && len(tags) == 0 {
		return EventItem{}, false
	}
	if title == "" {
		title = defaultTitle
	}
	return EventItem{ID: c.ID, Title: title, Description: desc, Date: date, Tags: tags, OrgName: orgName}, true
}

// stringOf returns the first key holding a string value.
func stringOf(d map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := d[k].(string); ok {
			return v
		}
	}
	return ""
}

// CreateEvent appends a new event to the owner's organization and publishes
// it to the assistant and the local index. Publishing is best-effort.
func (s *Service) CreateEvent(ctx context.Context, ownerID string, in EventInput) (catalog.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return catalog.Event{}, ErrTitleRequired
	}
	org, err := s.repo.GetOrganizationByOwner(ctx, ownerID)
	if err != nil {
		return catalog.Event{}, &StoreError{Err: err}
	}
	if org == nil {
		return catalog.Event{}, ErrOrganizationNotFound
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	ev := catalog.Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        strings.TrimSpace(in.Date),
		Tags:        tags,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.repo.AppendEvent(ctx, org.ID, ev); err != nil {
		return catalog.Event{}, &StoreError{Err: err}
	}
	observability.EventsCreated.Add(1)
	orgName := org.Name
	if orgName == "" {
		orgName = defaultOrgName
	}
	s.publishEvent(ctx, ev, orgName)
	return ev, nil
}

func (s *Service) publishEvent(ctx context.Context, ev catalog.Event, orgName string) {
	text := ev.SearchText()
	if err := s.index.Upsert(ctx, ev.ID, text); err != nil {
		common.L().Warn("vector index upsert failed", zap.String("event_id", ev.ID), zap.Error(err))
	}
	if s.publish == nil || !s.publish.Enabled() {
		return
	}
	meta := map[string]any{
		"title":       ev.Title,
		"description": ev.Description,
		"date":        ev.Date,
		"tags":        ev.Tags,
		"orgName":     orgName,
	}
	failed := func(verb string, err error) {
		observability.EventPublishErrors.Add(1)
		common.L().Warn("event publish failed", zap.String("verb", verb), zap.String("event_id", ev.ID), zap.Error(err))
	}
	if err := s.publish.UpsertDocument(ctx, assistant.Document{ID: ev.ID, Type: "event", Text: text, Metadata: meta}); err != nil {
		failed("document", err)
	}
	memMeta := map[string]any{"type": "event", "id": ev.ID}
	for k, v := range meta {
		memMeta[k] = v
	}
	if err := s.publish.AddMemory(ctx, text, memMeta); err != nil {
		failed("memory", err)
	}
	if err := s.publish.UploadAssistantDocument(ctx, "event-"+ev.ID+".txt", []byte(ev.AssistantDocument(orgName))); err != nil {
		failed("assistant_document", err)
	}
}
