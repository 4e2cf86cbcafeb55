package ai

import (
	"math"
	"testing"
)

func TestMockEmbeddingsDeterministic(t *testing.T) {
	texts := []string{"hello", "world"}
	vecs1 := MockEmbeddings(texts, 8)
	vecs2 := MockEmbeddings(texts, 8)
	for i := range vecs1 {
		if len(vecs1[i]) != 8 {
			t.Fatalf("unexpected dim")
		}
		for j := range vecs1[i] {
			if vecs1[i][j] != vecs2[i][j] {
				t.Fatalf("non-deterministic at %d,%d", i, j)
			}
		}
	}
}

func TestMockEmbeddingsSharedWordsAreCloser(t *testing.T) {
	v := MockEmbeddings([]string{"jazz concert", "Jazz night", "pottery class"}, 256)
	if len(v[0]) != 256 {
		t.Fatalf("dim %d", len(v[0]))
	}
	if dot(v[0], v[1]) <= dot(v[0], v[2]) {
		t.Fatalf("expected shared token to raise similarity: %f vs %f", dot(v[0], v[1]), dot(v[0], v[2]))
	}
	if n := dot(v[0], v[0]); math.Abs(n-1) > 1e-9 {
		t.Fatalf("not normalized: %f", n)
	}
}

func TestMockEmbeddingsEmptyText(t *testing.T) {
	v := MockEmbeddings([]string{"  "}, 4)
	for _, x := range v[0] {
		if x != 0 {
			t.Fatalf("expected zero vector, got %v", v[0])
		}
	}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
