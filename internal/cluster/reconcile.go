package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/mpetrik/photo-people/internal/database"
)

// Params holds the incremental clustering parameters.
type Params struct {
	// SimilarityThreshold is the cosine similarity a face must strictly
	// exceed against some person centroid to be assigned to it.
	SimilarityThreshold float64

	// MinSamplesNew is the minimum number of unmatched faces required
	// before any new identity is minted.
	MinSamplesNew int

	// MaxIterations caps the convergence loop.
	MaxIterations int
}

func (p Params) withDefaults() Params {
	if p.SimilarityThreshold == 0 {
		p.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if p.MinSamplesNew == 0 {
		p.MinSamplesNew = DefaultMinSamplesNew
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = DefaultMaxIterations
	}
	return p
}

// PassResult summarizes one reconcile+mine pass.
type PassResult struct {
	// FacesAssigned counts faces matched to pre-existing persons.
	FacesAssigned int
	// PersonsCreated counts identities minted from the unmatched set.
	PersonsCreated int
	// Unmatched counts faces left unassigned after the pass.
	Unmatched int
}

// personCentroid is the in-memory representative of a person during one
// pass. The centroid starts as the exact mean of the person's assigned
// embeddings and is nudged by the running (old+new)/2 approximation as
// faces are matched.
type personCentroid struct {
	id       int64
	name     string
	centroid []float32
}

func (e *Engine) buildCentroids(ctx context.Context) ([]*personCentroid, error) {
	persons, err := e.persons.ListPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	assigned, err := e.faces.ListAssigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assigned faces: %w", err)
	}

	sums := make(map[int64][]float64, len(persons))
	counts := make(map[int64]int, len(persons))
	for i := range assigned {
		f := &assigned[i]
		if !e.usable(f) {
			continue
		}
		sum := sums[*f.PersonID]
		if sum == nil {
			sum = make([]float64, e.dim)
			sums[*f.PersonID] = sum
		}
		for d, v := range f.Embedding {
			sum[d] += float64(v)
		}
		counts[*f.PersonID]++
	}

	var out []*personCentroid
	for _, p := range persons {
		n := counts[p.ID]
		if n == 0 {
			continue // person with no usable embeddings cannot attract faces
		}
		centroid := make([]float32, e.dim)
		for d, v := range sums[p.ID] {
			centroid[d] = float32(v / float64(n))
		}
		out = append(out, &personCentroid{id: p.ID, name: p.Name, centroid: centroid})
	}

	// ListPersons is ascending-id already; keep the order explicit so the
	// lowest-id person wins similarity ties.
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

// halfway is the O(1) running centroid update applied after each match.
func halfway(centroid, embedding []float32) []float32 {
	out := make([]float32, len(centroid))
	for i := range centroid {
		out[i] = (centroid[i] + embedding[i]) / 2
	}
	return out
}

// ClusterNew runs one incremental pass: match unassigned faces against
// person centroids, then mine the unmatched residue for new identities.
//
// Matching uses a strict similarity threshold; a face whose best
// similarity equals the threshold exactly stays unmatched. Assignments
// are committed per person at the end of the matching stage.
func (e *Engine) ClusterNew(ctx context.Context, p Params) (*PassResult, error) {
	p = p.withDefaults()
	res := &PassResult{}

	unassigned, err := e.faces.ListUnassigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unassigned faces: %w", err)
	}
	if len(unassigned) == 0 {
		return res, nil
	}

	centroids, err := e.buildCentroids(ctx)
	if err != nil {
		return nil, err
	}

	assignments := make(map[int64][]int64)
	var assignedPersons []int64
	var unmatched []database.StoredFace

	for i := range unassigned {
		f := &unassigned[i]
		if !e.usable(f) {
			continue
		}

		var best *personCentroid
		bestSim := -1.0
		for _, pc := range centroids {
			// Strictly-greater comparison over ascending person ids keeps
			// the lowest-id person on ties.
			if sim := database.CosineSimilarity(f.Embedding, pc.centroid); sim > bestSim {
				bestSim = sim
				best = pc
			}
		}

		if best != nil && bestSim > p.SimilarityThreshold {
			if len(assignments[best.id]) == 0 {
				assignedPersons = append(assignedPersons, best.id)
			}
			assignments[best.id] = append(assignments[best.id], f.ID)
			best.centroid = halfway(best.centroid, f.Embedding)
			e.events.FaceAssigned(f.ID, best.id, bestSim)
			res.FacesAssigned++
		} else {
			unmatched = append(unmatched, *f)
		}
		e.events.Progress("reconcile", i+1, len(unassigned))
	}

	sort.Slice(assignedPersons, func(i, j int) bool { return assignedPersons[i] < assignedPersons[j] })
	for _, personID := range assignedPersons {
		if err := e.faces.AssignFaces(ctx, personID, assignments[personID]); err != nil {
			return nil, fmt.Errorf("assign faces to person %d: %w", personID, err)
		}
	}

	created, minted, err := e.mine(ctx, unmatched, len(centroids), p.MinSamplesNew)
	if err != nil {
		return nil, err
	}
	res.PersonsCreated = created
	res.Unmatched = len(unmatched) - minted
	return res, nil
}
