package cluster

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mpetrik/photo-people/internal/database"
)

// ClusterResult summarizes a full re-cluster.
type ClusterResult struct {
	RunID          string
	Skipped        bool
	Reason         string
	PersonsCreated int
	FacesAssigned  int
	NoiseFaces     int
}

// Cluster groups every clusterable face into identities from scratch.
//
// This operation is destructive: before applying the new grouping it
// deletes every person and clears every assignment. It is meant for
// bootstrap and re-baselining only; incremental imports go through
// ClusterNew/ClusterNewLoop.
//
// When fewer than minSamples eligible faces exist the run is skipped and
// reported in the result; that is not an error.
func (e *Engine) Cluster(ctx context.Context, eps float64, minSamples int) (*ClusterResult, error) {
	res := &ClusterResult{RunID: uuid.NewString()}

	all, err := e.faces.ListClusterable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clusterable faces: %w", err)
	}

	eligible := make([]database.StoredFace, 0, len(all))
	for i := range all {
		if e.usable(&all[i]) {
			eligible = append(eligible, all[i])
		}
	}

	if len(eligible) < minSamples {
		res.Skipped = true
		res.Reason = fmt.Sprintf("need at least %d faces with embeddings, have %d", minSamples, len(eligible))
		return res, nil
	}

	points := make([][]float32, len(eligible))
	for i := range eligible {
		points[i] = eligible[i].Embedding
	}

	e.events.Progress("cluster", 0, len(eligible))
	labels := dbscan(points, eps, minSamples)
	e.events.Progress("cluster", len(eligible), len(eligible))

	// Full reset before applying the new grouping.
	if err := e.persons.DeleteAllPersons(ctx); err != nil {
		return nil, fmt.Errorf("reset persons: %w", err)
	}
	if err := e.faces.ClearAssignments(ctx); err != nil {
		return nil, fmt.Errorf("clear assignments: %w", err)
	}

	for label, members := range groupByLabel(labels) {
		name := personName(label + 1)
		personID, err := e.persons.CreatePerson(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}

		ids := make([]int64, len(members))
		for i, m := range members {
			ids[i] = eligible[m].ID
		}
		if err := e.faces.AssignFaces(ctx, personID, ids); err != nil {
			return nil, fmt.Errorf("assign faces to %s: %w", name, err)
		}

		e.events.PersonCreated(personID, name, len(ids))
		res.PersonsCreated++
		res.FacesAssigned += len(ids)
	}

	for _, l := range labels {
		if l == Noise {
			res.NoiseFaces++
		}
	}
	return res, nil
}
