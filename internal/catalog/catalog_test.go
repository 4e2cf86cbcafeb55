package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestMemoryRepoKeepsInsertionOrder(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	for _, n := range []string{"Zeta", "Alpha", "Mid"} {
		if err := r.SaveOrganization(ctx, &Organization{OwnerID: "o-" + n, Name: n, Slug: Slugify(n)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	list, _ := r.ListOrganizations(ctx, Filter{})
	if len(list) != 3 || list[0].Name != "Zeta" || list[2].Name != "Mid" {
		t.Fatalf("order not preserved: %+v", list)
	}
	own, _ := r.ListOrganizations(ctx, Filter{OwnerID: "o-Alpha"})
	if len(own) != 1 || own[0].Name != "Alpha" {
		t.Fatalf("owner filter: %+v", own)
	}
}

func TestSaveOrganizationReplacesBySlug(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	first := &Organization{OwnerID: "u1", Name: "Dance", Slug: "dance-u1"}
	_ = r.SaveOrganization(ctx, first)
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("id/created_at not assigned: %+v", first)
	}
	second := &Organization{OwnerID: "u1", Name: "Dance Club", Slug: "dance-u1"}
	_ = r.SaveOrganization(ctx, second)
	if second.ID != first.ID {
		t.Fatalf("expected id kept, got %s vs %s", second.ID, first.ID)
	}
	list, _ := r.ListOrganizations(ctx, Filter{})
	if len(list) != 1 || list[0].Name != "Dance Club" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestAppendEventConcurrent(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	org := &Organization{OwnerID: "u1", Name: "Choir", Slug: "choir"}
	_ = r.SaveOrganization(ctx, org)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.AppendEvent(ctx, org.ID, Event{ID: "e", Title: "t"})
		}()
	}
	wg.Wait()
	got, _ := r.GetOrganizationByOwner(ctx, "u1")
	if len(got.Events) != 20 {
		t.Fatalf("lost events: %d", len(got.Events))
	}
	if err := r.AppendEvent(ctx, "missing", Event{}); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSaveOrganizationKeepsAppendedEvents(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	_ = r.SaveOrganization(ctx, &Organization{OwnerID: "u1", Name: "Harbor Jazz", Slug: "harbor-u1"})
	stale, _ := r.GetOrganizationByOwner(ctx, "u1")
	if err := r.AppendEvent(ctx, stale.ID, Event{ID: "e1", Title: "Late Set"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	stale.Name = "Harbor Jazz Society"
	stale.Tags = []string{"jazz"}
	if err := r.SaveOrganization(ctx, stale); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := r.GetOrganizationByOwner(ctx, "u1")
	if len(got.Events) != 1 || got.Events[0].ID != "e1" {
		t.Fatalf("profile update dropped events: %+v", got.Events)
	}
	if got.Name != "Harbor Jazz Society" || len(got.Tags) != 1 {
		t.Fatalf("profile fields not updated: %+v", got)
	}
	if len(stale.Events) != 1 {
		t.Fatalf("current events not written back: %+v", stale.Events)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	_ = r.SaveOrganization(ctx, &Organization{OwnerID: "u", Name: "A", Slug: "a", Tags: []string{"x"}})
	got, _ := r.GetOrganizationByOwner(ctx, "u")
	got.Tags[0] = "mutated"
	again, _ := r.GetOrganizationByOwner(ctx, "u")
	if again.Tags[0] != "x" {
		t.Fatalf("store leaked internal slice")
	}
}

func TestProfileUpsert(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	if p, err := r.GetProfile(ctx, "u"); p != nil || err != nil {
		t.Fatalf("expected nil profile, got %+v %v", p, err)
	}
	_ = r.SaveProfile(ctx, &Profile{UserID: "u", Username: "ana", Tags: []string{"jazz"}})
	_ = r.SaveProfile(ctx, &Profile{UserID: "u", Username: "ana2"})
	p, _ := r.GetProfile(ctx, "u")
	if p.Username != "ana2" || len(p.Tags) != 0 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]any{"a", 3, "b", nil})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
	if got := NormalizeTags("nope"); got == nil || len(got) != 0 {
		t.Fatalf("non-list should give empty slice, got %#v", got)
	}
}

func TestSlugHelpers(t *testing.T) {
	if s := Slugify("  Salsa & Bachata Club! "); s != "salsa-bachata-club" {
		t.Fatalf("slugify %q", s)
	}
	if s := OwnerSlug("!!!", "abcdef123"); s != "org-abcdef" {
		t.Fatalf("owner slug %q", s)
	}
	if s := OwnerSlug("Jazz", "ab"); s != "jazz-ab" {
		t.Fatalf("short owner slug %q", s)
	}
	if a, b := SeedSlug("Jazz"), SeedSlug("Jazz"); a != b || !strings.HasPrefix(a, "jazz-") || len(a) != len("jazz-")+6 {
		t.Fatalf("seed slug %q", a)
	}
}

func TestAssistantDocumentDefaults(t *testing.T) {
	doc := Event{Title: "Open Mic"}.AssistantDocument("Poets")
	want := "Event: Open Mic\nOrganization: Poets\nDescription: N/A\nDate: TBD\nTags: N/A"
	if doc != want {
		t.Fatalf("got\n%s", doc)
	}
	ev := Event{Title: "Salsa", Description: "Beginners", Tags: []string{"dance", "latin"}}
	if ev.SearchText() != "Salsa\nBeginners\ndance latin" {
		t.Fatalf("search text %q", ev.SearchText())
	}
}

func TestParseSeedAndFlatten(t *testing.T) {
	src := `
- name: Harbour Choir
  description: Community singing
  tags: music, choir
  events:
    - title: Winter Concert
      date: "2025-12-01"
      tags: [music]
    - title: ""
- name: ""
- name: Quiet Readers
`
	orgs, err := ParseSeed([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(orgs) != 2 || len(orgs[0].Tags) != 2 || len(orgs[0].Events) != 1 {
		t.Fatalf("unexpected parse %+v", orgs)
	}
	text := Flatten(orgs)
	want := "Organization: Harbour Choir\nDescription: Community singing\nTags: music, choir\nEvents:\n" +
		"- Winter Concert | 2025-12-01 | Tags: music | No description.\n\n" +
		"Organization: Quiet Readers\nDescription: N/A\nTags: N/A\nEvents: None listed."
	if text != want {
		t.Fatalf("flatten mismatch:\n%s", text)
	}
	org := orgs[0].ToOrganization("owner")
	if org.Slug != SeedSlug("Harbour Choir") || org.Events[0].ID == "" {
		t.Fatalf("to organization %+v", org)
	}
}

func TestParseSeedJSON(t *testing.T) {
	orgs, err := ParseSeed([]byte(`[{"name":"A","tags":["x","y"]}]`))
	if err != nil || len(orgs) != 1 || len(orgs[0].Tags) != 2 {
		t.Fatalf("json seed: %+v %v", orgs, err)
	}
	if _, err := ParseSeed([]byte(`[]`)); err == nil {
		t.Fatalf("expected error on empty seed")
	}
}
