package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gogogo1024/cultura/internal/assistant"
	"github.com/gogogo1024/cultura/internal/catalog"
)

func feedRepo() catalog.Repo {
	return seededRepo(
		&catalog.Organization{OwnerID: "u1", Name: "Latin Nights", Tags: []string{"salsa", "dance"}, Events: []catalog.Event{
			{ID: "e1", Title: "Salsa Social", Description: "Beginner salsa", Date: "2026-11-01", Tags: []string{"salsa"}},
			{Title: "", Description: "untitled"},
		}},
		&catalog.Organization{OwnerID: "u2", Name: "", Tags: []string{"chess"}, Events: []catalog.Event{
			{ID: "e2", Title: "Chess Blitz", Tags: []string{"chess"}},
		}},
	)
}

func TestEventsFlattenDefaults(t *testing.T) {
	svc := New(Deps{Repo: feedRepo()})
	items, err := svc.Events(context.Background(), "", "")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "e1" || items[0].OrgName != "Latin Nights" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].Title != "Event" || !strings.Contains(items[1].ID, "-") || items[1].Tags == nil {
		t.Fatalf("defaults not applied: %+v", items[1])
	}
	if items[2].OrgName != "Organization" {
		t.Fatalf("missing org name should default: %+v", items[2])
	}
}

func TestEventsUsesSearchCandidates(t *testing.T) {
	a := &stubAssistant{enabled: true, candidates: []assistant.Candidate{
		{ID: "r1", Data: map[string]any{"name": "Remote Gig", "starts_at": "Friday", "organization": "Club X", "tags": []any{"jazz", 3}}},
		{ID: "r2", Data: map[string]any{"unrelated": true}},
	}}
	svc := New(Deps{Repo: feedRepo(), Search: a})
	items, err := svc.Events(context.Background(), "", "  jazz  ")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if a.lastQuery != "jazz" || a.lastFilter.Type != "event" {
		t.Fatalf("search called with %q %+v", a.lastQuery, a.lastFilter)
	}
	if len(items) != 1 {
		t.Fatalf("expected one mapped item, got %+v", items)
	}
	it := items[0]
	if it.ID != "r1" || it.Title != "Remote Gig" || it.Date != "Friday" || it.OrgName != "Club X" || len(it.Tags) != 1 {
		t.Fatalf("bad mapping %+v", it)
	}
}

func TestEventsCandidateIDsFilterLocalFeed(t *testing.T) {
	a := &stubAssistant{enabled: true, candidates: []assistant.Candidate{{ID: "e2"}}}
	svc := New(Deps{Repo: feedRepo(), Search: a})
	items, _ := svc.Events(context.Background(), "", "chess")
	if len(items) != 1 || items[0].ID != "e2" {
		t.Fatalf("expected e2 only, got %+v", items)
	}
}

func TestEventsUnknownCandidateIDsYieldEmptyFeed(t *testing.T) {
	a := &stubAssistant{enabled: true, candidates: []assistant.Candidate{{ID: "gone"}}}
	svc := New(Deps{Repo: feedRepo(), Search: a, Index: NewVectorIndex(newKeywordEmbedding())})
	items, err := svc.Events(context.Background(), "", "chess")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected an empty non-nil feed, got %+v", items)
	}
}

func TestEventsSearchFailureReturnsFullFeed(t *testing.T) {
	a := &stubAssistant{enabled: true, searchErr: assistant.ErrNotConfigured}
	svc := New(Deps{Repo: feedRepo(), Search: a})
	items, err := svc.Events(context.Background(), "", "chess")
	if err != nil || len(items) != 3 {
		t.Fatalf("expected full feed, got %d, %v", len(items), err)
	}
}

func TestEventsViewerTagsBecomeQuery(t *testing.T) {
	a := &stubAssistant{enabled: true}
	svc := New(Deps{Repo: feedRepo(), Search: a})
	_, _ = svc.Events(context.Background(), "u1", "")
	if a.lastQuery != "salsa dance" {
		t.Fatalf("expected org tags as query, got %q", a.lastQuery)
	}

	repo := feedRepo()
	_ = repo.SaveProfile(context.Background(), &catalog.Profile{UserID: "p1", Username: "pat", Tags: []string{"poetry"}})
	a2 := &stubAssistant{enabled: true}
	_, _ = New(Deps{Repo: repo, Search: a2}).Events(context.Background(), "p1", "")
	if a2.lastQuery != "poetry" {
		t.Fatalf("expected profile tags as query, got %q", a2.lastQuery)
	}
}

func TestEventsDisabledSearchSkipsAssistant(t *testing.T) {
	a := &stubAssistant{enabled: false, candidates: []assistant.Candidate{{ID: "e2"}}}
	svc := New(Deps{Repo: feedRepo(), Search: a})
	items, _ := svc.Events(context.Background(), "", "chess")
	if a.lastQuery != "" || len(items) != 3 {
		t.Fatalf("disabled search must not be called: %q, %d", a.lastQuery, len(items))
	}
}

func TestEventsVectorRanking(t *testing.T) {
	emb := newKeywordEmbedding()
	svc := New(Deps{Repo: feedRepo(), Index: NewVectorIndex(emb)})
	items, err := svc.Events(context.Background(), "", "salsa")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(items) != 1 || items[0].ID != "e1" {
		t.Fatalf("expected salsa event only, got %+v", items)
	}
	calls := emb.calls
	_, _ = svc.Events(context.Background(), "", "chess")
	// Known ids are not re-embedded; one call for the query.
	if emb.calls != calls+1 {
		t.Fatalf("unexpected embed calls %d -> %d", calls, emb.calls)
	}
	items, _ = svc.Events(context.Background(), "", "opera")
	if len(items) != 3 {
		t.Fatalf("unrelated query should return the full feed, got %d", len(items))
	}
}

func TestEventsStoreFailure(t *testing.T) {
	svc := New(Deps{Repo: brokenRepo{}})
	_, err := svc.Events(context.Background(), "", "")
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc := New(Deps{Repo: feedRepo()})
	ctx := context.Background()
	if _, err := svc.CreateEvent(ctx, "u1", EventInput{Title: "   "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := svc.CreateEvent(ctx, "nobody", EventInput{Title: "x"}); !errors.Is(err, ErrOrganizationNotFound) {
		t.Fatalf("expected ErrOrganizationNotFound, got %v", err)
	}
	var se *StoreError
	if _, err := New(Deps{Repo: brokenRepo{}}).CreateEvent(ctx, "u1", EventInput{Title: "x"}); !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestCreateEventAppendsAndPublishes(t *testing.T) {
	repo := feedRepo()
	a := &stubAssistant{enabled: true}
	emb := newKeywordEmbedding()
	idx := NewVectorIndex(emb)
	svc := New(Deps{Repo: repo, Search: a, Publisher: a, Index: idx})
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, "u1", EventInput{Title: " Jazz Brunch ", Description: "Sunday", Tags: []string{"jazz"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.ID == "" || ev.Title != "Jazz Brunch" || ev.CreatedAt == "" {
		t.Fatalf("bad event %+v", ev)
	}
	org, _ := repo.GetOrganizationByOwner(ctx, "u1")
	if len(org.Events) != 3 || org.Events[2].ID != ev.ID {
		t.Fatalf("event not appended: %+v", org.Events)
	}
	if len(a.docs) != 1 || a.docs[0].Type != "event" || a.docs[0].Text != "Jazz Brunch\nSunday\njazz" {
		t.Fatalf("document not published: %+v", a.docs)
	}
	if a.docs[0].Metadata["orgName"] != "Latin Nights" {
		t.Fatalf("metadata %+v", a.docs[0].Metadata)
	}
	if len(a.memories) != 1 || a.memories[0]["type"] != "event" || a.memories[0]["id"] != ev.ID {
		t.Fatalf("memory not published: %+v", a.memories)
	}
	doc := a.files["event-"+ev.ID+".txt"]
	if !strings.Contains(doc, "Event: Jazz Brunch") || !strings.Contains(doc, "Date: TBD") {
		t.Fatalf("assistant document %q", doc)
	}
	if idx.Len() != 1 {
		t.Fatalf("event not indexed locally")
	}
}

func TestCreateEventPublishFailureIsSwallowed(t *testing.T) {
	a := &stubAssistant{enabled: true, publishErr: assistant.ErrNotConfigured}
	svc := New(Deps{Repo: feedRepo(), Publisher: a})
	if _, err := svc.CreateEvent(context.Background(), "u1", EventInput{Title: "Open Mic"}); err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
}
