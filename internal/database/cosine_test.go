package database

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	a := []float32{0.5, 0.5, 0.5, 0.5}

	sim := CosineSimilarity(a, a)

	if math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("expected similarity 1.0 for identical vectors, got %f", sim)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0, 0, 0}
	b := []float32{0, 1, 0, 0}

	sim := CosineSimilarity(a, b)

	if math.Abs(sim) > 1e-9 {
		t.Errorf("expected similarity 0 for orthogonal vectors, got %f", sim)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}

	sim := CosineSimilarity(a, b)

	if math.Abs(sim+1.0) > 1e-9 {
		t.Errorf("expected similarity -1 for opposite vectors, got %f", sim)
	}
}

func TestCosineSimilarity_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"mismatched dims", []float32{1, 0}, []float32{1, 0, 0}},
		{"empty", nil, nil},
		{"zero vector", []float32{0, 0}, []float32{1, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if sim := CosineSimilarity(tc.a, tc.b); sim != -1 {
				t.Errorf("expected -1 for invalid input, got %f", sim)
			}
			if dist := CosineDistance(tc.a, tc.b); dist != 2 {
				t.Errorf("expected distance 2 for invalid input, got %f", dist)
			}
		})
	}
}

func TestCosineDistance_ComplementsSimilarity(t *testing.T) {
	a := []float32{0.6, 0.8, 0, 0}
	b := []float32{1, 0, 0, 0}

	sim := CosineSimilarity(a, b)
	dist := CosineDistance(a, b)

	if math.Abs((1-sim)-dist) > 1e-12 {
		t.Errorf("distance %f does not complement similarity %f", dist, sim)
	}
	if math.Abs(sim-0.6) > 1e-6 {
		t.Errorf("expected similarity ~0.6, got %f", sim)
	}
}

func TestEmbeddingBlobRoundTrip(t *testing.T) {
	v := []float32{0.1, -2.5, 0, 1e-8, 42}

	decoded := DecodeEmbedding(EncodeEmbedding(v))

	if len(decoded) != len(v) {
		t.Fatalf("expected %d values, got %d", len(v), len(decoded))
	}
	for i := range v {
		if decoded[i] != v[i] {
			t.Errorf("value %d: expected %f, got %f", i, v[i], decoded[i])
		}
	}
}

func TestDecodeEmbedding_Truncated(t *testing.T) {
	if v := DecodeEmbedding([]byte{1, 2, 3}); v != nil {
		t.Errorf("expected nil for truncated blob, got %v", v)
	}
}
