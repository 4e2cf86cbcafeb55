package discovery

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/gogogo1024/cultura/internal/ai/chain"
)

// minVectorScore drops weak cosine hits so an unrelated query falls back to
// the full feed.
const minVectorScore = 0.15

// VectorIndex keeps normalized embeddings of event texts in memory. It is a
// best-effort cache: embedding failures leave it unchanged.
type VectorIndex struct {
	emb  chain.Embedder
	mu   sync.RWMutex
	dim  int
	docs map[string][]float32
}

// Hit is one ranked event id.
type Hit struct {
	ID    string
	Score float64
}

// NewVectorIndex returns nil when emb is nil or has no dimension, which
// disables local ranking.
func NewVectorIndex(emb chain.Embedder) *VectorIndex {
	if emb == nil || emb.Dim() <= 0 {
		return nil
	}
	return &VectorIndex{emb: emb, dim: emb.Dim(), docs: map[string][]float32{}}
}

func (vi *VectorIndex) Enabled() bool { return vi != nil }

func (vi *VectorIndex) Len() int {
	if vi == nil {
		return 0
	}
	vi.mu.RLock()
	defer vi.mu.RUnlock()
	return len(vi.docs)
}

// Upsert embeds text and stores it under id.
func (vi *VectorIndex) Upsert(ctx context.Context, id, text string) error {
	if vi == nil || id == "" || text == "" {
		return nil
	}
	vecs, err := vi.emb.Embed(ctx, []string{text})
	if err != nil {
		return err
	}
	if len(vecs) == 1 {
		vi.put(id, vecs[0])
	}
	return nil
}

// Sync embeds, in one batch, every text whose id is not indexed yet.
func (vi *VectorIndex) Sync(ctx context.Context, texts map[string]string) error {
	if vi == nil || len(texts) == 0 {
		return nil
	}
	vi.mu.RLock()
	ids := make([]string, 0, len(texts))
	for id, txt := range texts {
		if _, ok := vi.docs[id]; !ok && id != "" && txt != "" {
			ids = append(ids, id)
		}
	}
	vi.mu.RUnlock()
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)
	batch := make([]string, len(ids))
	for i, id := range ids {
		batch[i] = texts[id]
	}
	vecs, err := vi.emb.Embed(ctx, batch)
	if err != nil {
		return err
	}
	for i := 0; i < len(ids) && i < len(vecs); i++ {
		vi.put(ids[i], vecs[i])
	}
	return nil
}

// Search ranks indexed ids against query by cosine similarity, best first.
func (vi *VectorIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if vi == nil || limit <= 0 || query == "" {
		return nil, nil
	}
	vecs, err := vi.emb.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		return nil, err
	}
	qv := normalize(toFloat32(vecs[0]))
	if len(qv) != vi.dim {
		return nil, nil
	}
	vi.mu.RLock()
	out := make([]Hit, 0, len(vi.docs))
	for id, v := range vi.docs {
		s := float64(dot(qv, v))
		if s >= minVectorScore {
			out = append(out, Hit{ID: id, Score: s})
		}
	}
	vi.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (vi *VectorIndex) put(id string, vec []float64) {
	if len(vec) != vi.dim {
		return
	}
	nv := normalize(toFloat32(vec))
	vi.mu.Lock()
	vi.docs[id] = nv
	vi.mu.Unlock()
}

func dot(a, b []float32) float32 {
	var s float32
	for i := 0; i < len(a) && i < len(b); i++ {
		s += a[i] * b[i]
	}
	return s
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	if sum == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
