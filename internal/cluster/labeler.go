package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpetrik/photo-people/internal/database"
)

// LabelResult summarizes a labeling operation.
type LabelResult struct {
	PersonID   int64
	Name       string
	Merged     bool
	MergedInto int64
	FacesMoved int
}

// Label assigns a name to a person. If another person already carries
// exactly that name (case-sensitive), the call is a merge instead: every
// face moves to the existing person and the labeled row is deleted, in
// one transaction. Otherwise the person is renamed and confirmed.
func (e *Engine) Label(ctx context.Context, personID int64, name string) (*LabelResult, error) {
	if _, err := e.persons.GetPerson(ctx, personID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("person %d: %w", personID, err)
		}
		return nil, err
	}

	existing, err := e.persons.FindPersonByName(ctx, name)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("find person by name: %w", err)
	}

	if err == nil && existing.ID != personID {
		moved, err := e.persons.MergePersons(ctx, personID, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("merge person %d into %d: %w", personID, existing.ID, err)
		}
		e.events.PersonsMerged(personID, existing.ID, moved)
		return &LabelResult{
			PersonID:   personID,
			Name:       name,
			Merged:     true,
			MergedInto: existing.ID,
			FacesMoved: moved,
		}, nil
	}

	if err := e.persons.RenamePerson(ctx, personID, name, true); err != nil {
		return nil, fmt.Errorf("rename person %d: %w", personID, err)
	}
	return &LabelResult{PersonID: personID, Name: name}, nil
}

// PruneResult summarizes a DeleteUnconfirmed run.
type PruneResult struct {
	PersonsDeleted int
	FacesReleased  int
}

// DeleteUnconfirmed removes every person a human has not confirmed. Their
// faces become unassigned again — embeddings are retained, so a later
// clustering pass can re-evaluate them. Confirmed persons are untouched.
func (e *Engine) DeleteUnconfirmed(ctx context.Context) (*PruneResult, error) {
	stats, err := e.persons.PersonStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}

	res := &PruneResult{}
	var ids []int64
	for _, st := range stats {
		if !st.Confirmed {
			ids = append(ids, st.PersonID)
			res.FacesReleased += st.FaceCount
		}
	}
	if len(ids) == 0 {
		return res, nil
	}

	if err := e.persons.DeletePersons(ctx, ids); err != nil {
		return nil, fmt.Errorf("delete unconfirmed persons: %w", err)
	}
	res.PersonsDeleted = len(ids)
	return res, nil
}
