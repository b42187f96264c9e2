package cluster

import (
	"context"
	"fmt"

	"github.com/mpetrik/photo-people/internal/database"
)

// mine clusters the unmatched residue of a reconcile stage into brand-new
// identities. It only runs when the residue is at least minSamplesNew
// strong; routine small imports never mint low-confidence identities.
//
// existingPersons feeds the placeholder-name ordinal explicitly, so the
// miner never reads an ambient person count mid-run. Returns the number
// of persons created and the number of faces they absorbed.
func (e *Engine) mine(ctx context.Context, unmatched []database.StoredFace, existingPersons, minSamplesNew int) (int, int, error) {
	if len(unmatched) < minSamplesNew {
		return 0, 0, nil
	}

	points := make([][]float32, len(unmatched))
	for i := range unmatched {
		points[i] = unmatched[i].Embedding
	}

	labels := dbscan(points, minerEps, minSamplesNew)

	created := 0
	minted := 0
	for _, members := range groupByLabel(labels) {
		name := personName(existingPersons + created + 1)
		personID, err := e.persons.CreatePerson(ctx, name)
		if err != nil {
			return created, minted, fmt.Errorf("create %s: %w", name, err)
		}

		ids := make([]int64, len(members))
		for i, m := range members {
			ids[i] = unmatched[m].ID
		}
		if err := e.faces.AssignFaces(ctx, personID, ids); err != nil {
			return created, minted, fmt.Errorf("assign faces to %s: %w", name, err)
		}

		e.events.PersonCreated(personID, name, len(ids))
		created++
		minted += len(ids)
	}
	return created, minted, nil
}
