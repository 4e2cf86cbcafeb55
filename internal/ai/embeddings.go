package ai

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"unicode"
)

// MockEmbeddings returns deterministic bag-of-words vectors: every lowercased
// token is hashed into a signed bucket and the result is L2 normalized, so
// texts sharing words score higher under cosine similarity.
func MockEmbeddings(texts []string, dim int) [][]float64 {
	if dim <= 0 {
		dim = 32
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec := make([]float64, dim)
		for _, tok := range tokenize(t) {
			h := sha256.Sum256([]byte(tok))
			idx := int(binary.BigEndian.Uint32(h[0:4]) % uint32(dim))
			if h[4]&1 == 0 {
				vec[idx] += 1
			} else {
				vec[idx] -= 1
			}
		}
		out[i] = normalize(vec)
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	n := math.Sqrt(sum)
	for i := range v {
		v[i] /= n
	}
	return v
}
