package database

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

// HNSW index parameters for 512-dim face embeddings.
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16

	// HNSWSearchMultiplier requests extra candidates from HNSW so enough
	// survive distance filtering.
	HNSWSearchMultiplier = 3
)

// HNSWIndex wraps an in-memory HNSW graph for approximate face similarity
// search. It backs the "faces similar" surface only; clustering and
// reconciliation use exact scans, since approximate neighbors would make
// cluster membership non-deterministic.
type HNSWIndex struct {
	mu       sync.RWMutex
	graph    *hnsw.Graph[int64]
	idToFace map[int64]*StoredFace
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{
		idToFace: make(map[int64]*StoredFace),
	}
}

// BuildFromFaces builds the index from a slice of faces. Faces without an
// embedding are skipped.
func (h *HNSWIndex) BuildFromFaces(faces []StoredFace) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.idToFace = make(map[int64]*StoredFace, len(faces))
	if len(faces) == 0 {
		h.graph = nil
		return
	}

	g := hnsw.NewGraph[int64]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	for i := range faces {
		face := &faces[i]
		if len(face.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(face.ID, face.Embedding))
		h.idToFace[face.ID] = face
	}

	h.graph = g
}

// Search finds the k nearest neighbors to the query embedding and returns
// face ids with exact cosine distances (recomputed from the node vectors,
// not the graph's internal estimates).
func (h *HNSWIndex) Search(query []float32, k int) ([]int64, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	ids := make([]int64, len(neighbors))
	distances := make([]float64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.Key
		distances[i] = CosineDistance(query, n.Value)
	}
	return ids, distances, nil
}

// GetFace returns the indexed face for an id, or nil.
func (h *HNSWIndex) GetFace(id int64) *StoredFace {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idToFace[id]
}

// Len returns the number of indexed faces.
func (h *HNSWIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToFace)
}
