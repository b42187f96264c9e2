// Package cluster implements the incremental face identity engine: batch
// clustering of embeddings into persons, cheap reconciliation of new faces
// against person centroids, gated mining of new identities from the
// unmatched residue, and the convergence loop that alternates the two.
package cluster

import (
	"fmt"

	"github.com/mpetrik/photo-people/internal/database"
)

// Default clustering parameters. The batch defaults match the original
// recognizer; the incremental defaults deliberately gate new identities
// harder than the batch pass does.
const (
	DefaultEps                 = 0.6
	DefaultMinSamples          = 3
	DefaultSimilarityThreshold = 0.6
	DefaultMinSamplesNew       = 30
	DefaultMaxIterations       = 10

	// minerEps is the fixed radius for mining new identities from the
	// unmatched set.
	minerEps = 0.4
)

// Engine drives identity clustering over the face and person stores.
//
// Operations are single-writer: callers must serialize clustering runs
// against the same store (the CLI runs one command at a time). Concurrent
// detector inserts are safe because they only add new unassigned faces.
type Engine struct {
	faces   database.FaceStore
	persons database.PersonStore
	dim     int
	events  Events
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvents routes engine events to the given sink.
func WithEvents(ev Events) Option {
	return func(e *Engine) {
		if ev != nil {
			e.events = ev
		}
	}
}

// WithDimension overrides the expected embedding dimension. Faces whose
// embeddings have any other length are skipped and reported.
func WithDimension(dim int) Option {
	return func(e *Engine) {
		if dim > 0 {
			e.dim = dim
		}
	}
}

// NewEngine creates an engine bound to the given stores.
func NewEngine(faces database.FaceStore, persons database.PersonStore, opts ...Option) *Engine {
	e := &Engine{
		faces:   faces,
		persons: persons,
		dim:     database.FaceEmbeddingDim,
		events:  NopEvents{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// usable reports whether a face's embedding has the expected
// dimensionality; malformed faces are reported and excluded from the
// surrounding batch without aborting it.
func (e *Engine) usable(f *database.StoredFace) bool {
	if len(f.Embedding) != e.dim {
		e.events.FaceSkipped(f.ID,
			fmt.Sprintf("embedding has %d dimensions, want %d", len(f.Embedding), e.dim))
		return false
	}
	return true
}

// personName formats the placeholder name for the n-th identity.
func personName(ordinal int) string {
	return fmt.Sprintf("Person %d", ordinal)
}
