package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a face or person id does not exist.
var ErrNotFound = errors.New("not found")

// FaceStore provides access to face rows. Every mutating call commits
// atomically; partial writes are never left visible.
type FaceStore interface {
	// InsertFaces stores new faces. Faces are always inserted unassigned;
	// PersonID on the input is ignored.
	InsertFaces(ctx context.Context, faces []StoredFace) error

	// GetFace retrieves a face by id, ErrNotFound if missing.
	GetFace(ctx context.Context, id int64) (*StoredFace, error)

	// ListClusterable returns every non-ignored face with an embedding,
	// in ascending id order.
	ListClusterable(ctx context.Context) ([]StoredFace, error)

	// ListUnassigned returns non-ignored faces with an embedding and no
	// person, in ascending id order.
	ListUnassigned(ctx context.Context) ([]StoredFace, error)

	// ListAssigned returns non-ignored faces currently assigned to a
	// person, in ascending id order. Used to compute person centroids.
	ListAssigned(ctx context.Context) ([]StoredFace, error)

	// AssignFaces points the given faces at a person in a single batch.
	AssignFaces(ctx context.Context, personID int64, faceIDs []int64) error

	// ClearAssignments unassigns every face. Embeddings are untouched.
	ClearAssignments(ctx context.Context) error

	// SetIgnored flips the ignored flag on a face, ErrNotFound if missing.
	SetIgnored(ctx context.Context, faceID int64, ignored bool) error

	// HasFaces reports whether face detection has stored rows for a photo.
	HasFaces(ctx context.Context, photoPath string) (bool, error)

	// CountFaces returns the total number of face rows.
	CountFaces(ctx context.Context) (int, error)

	// CountUnassigned returns the number of clusterable unassigned faces.
	CountUnassigned(ctx context.Context) (int, error)

	// DeleteAllFaces removes every face row.
	DeleteAllFaces(ctx context.Context) error
}

// PersonStore provides access to person rows.
type PersonStore interface {
	// CreatePerson inserts an unconfirmed person and returns its id.
	CreatePerson(ctx context.Context, name string) (int64, error)

	// GetPerson retrieves a person by id, ErrNotFound if missing.
	GetPerson(ctx context.Context, id int64) (*Person, error)

	// FindPersonByName does an exact, case-sensitive name lookup.
	// Returns ErrNotFound when no person has that name.
	FindPersonByName(ctx context.Context, name string) (*Person, error)

	// ListPersons returns all persons in ascending id order.
	ListPersons(ctx context.Context) ([]Person, error)

	// RenamePerson sets the name and confirmed flag of a person.
	RenamePerson(ctx context.Context, id int64, name string, confirmed bool) error

	// MergePersons re-points every face of src at dst and deletes the src
	// row. Both steps happen in one transaction. Returns the number of
	// faces moved.
	MergePersons(ctx context.Context, srcID, dstID int64) (int, error)

	// DeletePersons unassigns the faces of the given persons (embeddings
	// retained) and deletes the rows, atomically.
	DeletePersons(ctx context.Context, ids []int64) error

	// DeleteAllPersons removes every person row and unassigns all faces.
	DeleteAllPersons(ctx context.Context) error

	// PersonStats returns per-person face/photo counts and mean detection
	// confidence, in ascending person id order.
	PersonStats(ctx context.Context) ([]PersonStats, error)
}

// Store combines both row families plus lifecycle, implemented by each
// backend (SQLite, PostgreSQL) and by the test mock.
type Store interface {
	FaceStore
	PersonStore
	Close() error
}
