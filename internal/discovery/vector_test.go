package discovery

import (
	"context"
	"testing"
)

func TestVectorIndexDisabled(t *testing.T) {
	if NewVectorIndex(nil).Enabled() {
		t.Fatalf("nil embedder should disable the index")
	}
	if NewVectorIndex(&keywordEmbedding{}).Enabled() {
		t.Fatalf("zero dim should disable the index")
	}
	var vi *VectorIndex
	if err := vi.Upsert(context.Background(), "a", "salsa"); err != nil {
		t.Fatalf("nil index upsert: %v", err)
	}
	if hits, _ := vi.Search(context.Background(), "salsa", 5); hits != nil {
		t.Fatalf("nil index returned hits")
	}
}

func TestVectorIndexRanksAndLimits(t *testing.T) {
	vi := NewVectorIndex(newKeywordEmbedding())
	ctx := context.Background()
	_ = vi.Upsert(ctx, "both", "salsa and jazz night")
	_ = vi.Upsert(ctx, "salsa", "salsa only")
	_ = vi.Upsert(ctx, "chess", "chess")
	hits, err := vi.Search(ctx, "salsa", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "salsa" || hits[1].ID != "both" {
		t.Fatalf("unexpected ranking %+v", hits)
	}
	if hits, _ := vi.Search(ctx, "salsa", 1); len(hits) != 1 {
		t.Fatalf("limit not applied: %d", len(hits))
	}
}

func TestVectorIndexSyncSkipsKnownIDs(t *testing.T) {
	emb := newKeywordEmbedding()
	vi := NewVectorIndex(emb)
	ctx := context.Background()
	_ = vi.Sync(ctx, map[string]string{"a": "salsa", "b": "chess"})
	_ = vi.Sync(ctx, map[string]string{"a": "salsa", "b": "chess"})
	if emb.calls != 1 || vi.Len() != 2 {
		t.Fatalf("expected a single batch, got %d calls, %d docs", emb.calls, vi.Len())
	}
}
