package cluster

import (
	"context"
	"fmt"

	"github.com/mpetrik/photo-people/internal/database"
)

// LibraryStats is the people overview for the stats surface.
type LibraryStats struct {
	Persons         []database.PersonStats
	TotalFaces      int
	UnassignedFaces int
}

// Stats returns per-person face/photo counts with mean detection
// confidence, plus library-wide totals.
func (e *Engine) Stats(ctx context.Context) (*LibraryStats, error) {
	persons, err := e.persons.PersonStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("person stats: %w", err)
	}
	total, err := e.faces.CountFaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("count faces: %w", err)
	}
	unassigned, err := e.faces.CountUnassigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("count unassigned faces: %w", err)
	}

	return &LibraryStats{
		Persons:         persons,
		TotalFaces:      total,
		UnassignedFaces: unassigned,
	}, nil
}
