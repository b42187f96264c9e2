// Package mock provides an in-memory implementation of the database
// contracts for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mpetrik/photo-people/internal/database"
)

// Store is an in-memory database.Store with error injection hooks.
// All mutating calls are atomic under a single mutex, mirroring the
// per-batch commit guarantee of the real backends.
type Store struct {
	mu           sync.RWMutex
	faces        map[int64]*database.StoredFace
	persons      map[int64]*database.Person
	nextFaceID   int64
	nextPersonID int64

	// Error injection
	ListError         error
	AssignError       error
	CreatePersonError error
	MergeError        error
	DeleteError       error
}

// NewStore creates an empty mock store.
func NewStore() *Store {
	return &Store{
		faces:        make(map[int64]*database.StoredFace),
		persons:      make(map[int64]*database.Person),
		nextFaceID:   1,
		nextPersonID: 1,
	}
}

// AddFace seeds a face. A zero ID is auto-allocated. Returns the id.
func (s *Store) AddFace(f database.StoredFace) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == 0 {
		f.ID = s.nextFaceID
	}
	if f.ID >= s.nextFaceID {
		s.nextFaceID = f.ID + 1
	}
	s.faces[f.ID] = &f
	return f.ID
}

// AddPerson seeds a person. A zero ID is auto-allocated. Returns the id.
func (s *Store) AddPerson(p database.Person) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextPersonID
	}
	if p.ID >= s.nextPersonID {
		s.nextPersonID = p.ID + 1
	}
	s.persons[p.ID] = &p
	return p.ID
}

// Face returns a copy of a seeded face for assertions, or nil.
func (s *Store) Face(id int64) *database.StoredFace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.faces[id]
	if !ok {
		return nil
	}
	cp := *f
	return &cp
}

// Person returns a copy of a seeded person for assertions, or nil.
func (s *Store) Person(id int64) *database.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *Store) sortedFaces(filter func(*database.StoredFace) bool) []database.StoredFace {
	ids := make([]int64, 0, len(s.faces))
	for id := range s.faces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []database.StoredFace
	for _, id := range ids {
		f := s.faces[id]
		if filter == nil || filter(f) {
			out = append(out, *f)
		}
	}
	return out
}

// InsertFaces stores new faces, always unassigned.
func (s *Store) InsertFaces(ctx context.Context, faces []database.StoredFace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, f := range faces {
		f.ID = s.nextFaceID
		s.nextFaceID++
		f.PersonID = nil
		f.CreatedAt = now
		f.UpdatedAt = now
		s.faces[f.ID] = &f
	}
	return nil
}

// GetFace retrieves a face by id.
func (s *Store) GetFace(ctx context.Context, id int64) (*database.StoredFace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.faces[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

// ListClusterable returns non-ignored faces with embeddings, ascending id.
func (s *Store) ListClusterable(ctx context.Context) ([]database.StoredFace, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedFaces(func(f *database.StoredFace) bool {
		return !f.Ignored && len(f.Embedding) > 0
	}), nil
}

// ListUnassigned returns clusterable faces without a person, ascending id.
func (s *Store) ListUnassigned(ctx context.Context) ([]database.StoredFace, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedFaces(func(f *database.StoredFace) bool {
		return !f.Ignored && len(f.Embedding) > 0 && f.PersonID == nil
	}), nil
}

// ListAssigned returns clusterable faces with a person, ascending id.
func (s *Store) ListAssigned(ctx context.Context) ([]database.StoredFace, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedFaces(func(f *database.StoredFace) bool {
		return !f.Ignored && len(f.Embedding) > 0 && f.PersonID != nil
	}), nil
}

// AssignFaces points the given faces at a person.
func (s *Store) AssignFaces(ctx context.Context, personID int64, faceIDs []int64) error {
	if s.AssignError != nil {
		return s.AssignError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range faceIDs {
		f, ok := s.faces[id]
		if !ok {
			return database.ErrNotFound
		}
		pid := personID
		f.PersonID = &pid
		f.UpdatedAt = time.Now()
	}
	return nil
}

// ClearAssignments unassigns every face.
func (s *Store) ClearAssignments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.faces {
		f.PersonID = nil
	}
	return nil
}

// SetIgnored flips the ignored flag on a face.
func (s *Store) SetIgnored(ctx context.Context, faceID int64, ignored bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.faces[faceID]
	if !ok {
		return database.ErrNotFound
	}
	f.Ignored = ignored
	f.UpdatedAt = time.Now()
	return nil
}

// HasFaces reports whether any face row exists for a photo.
func (s *Store) HasFaces(ctx context.Context, photoPath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.faces {
		if f.PhotoPath == photoPath {
			return true, nil
		}
	}
	return false, nil
}

// CountFaces returns the number of face rows.
func (s *Store) CountFaces(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.faces), nil
}

// CountUnassigned returns the number of clusterable unassigned faces.
func (s *Store) CountUnassigned(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, f := range s.faces {
		if !f.Ignored && len(f.Embedding) > 0 && f.PersonID == nil {
			count++
		}
	}
	return count, nil
}

// DeleteAllFaces removes every face row.
func (s *Store) DeleteAllFaces(ctx context.Context) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = make(map[int64]*database.StoredFace)
	return nil
}

// CreatePerson inserts an unconfirmed person.
func (s *Store) CreatePerson(ctx context.Context, name string) (int64, error) {
	if s.CreatePersonError != nil {
		return 0, s.CreatePersonError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextPersonID
	s.nextPersonID++
	s.persons[id] = &database.Person{
		ID:        id,
		Name:      name,
		Confirmed: false,
		CreatedAt: time.Now(),
	}
	return id, nil
}

// GetPerson retrieves a person by id.
func (s *Store) GetPerson(ctx context.Context, id int64) (*database.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// FindPersonByName does an exact, case-sensitive lookup.
func (s *Store) FindPersonByName(ctx context.Context, name string) (*database.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *database.Person
	for _, p := range s.persons {
		if p.Name == name && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	if found == nil {
		return nil, database.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

// ListPersons returns all persons in ascending id order.
func (s *Store) ListPersons(ctx context.Context) ([]database.Person, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.persons))
	for id := range s.persons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]database.Person, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.persons[id])
	}
	return out, nil
}

// RenamePerson sets the name and confirmed flag of a person.
func (s *Store) RenamePerson(ctx context.Context, id int64, name string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.persons[id]
	if !ok {
		return database.ErrNotFound
	}
	p.Name = name
	p.Confirmed = confirmed
	return nil
}

// MergePersons moves every face of src to dst and deletes the src row.
func (s *Store) MergePersons(ctx context.Context, srcID, dstID int64) (int, error) {
	if s.MergeError != nil {
		return 0, s.MergeError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[srcID]; !ok {
		return 0, database.ErrNotFound
	}
	if _, ok := s.persons[dstID]; !ok {
		return 0, database.ErrNotFound
	}
	moved := 0
	for _, f := range s.faces {
		if f.PersonID != nil && *f.PersonID == srcID {
			pid := dstID
			f.PersonID = &pid
			f.UpdatedAt = time.Now()
			moved++
		}
	}
	delete(s.persons, srcID)
	return moved, nil
}

// DeletePersons unassigns faces of the given persons and deletes the rows.
func (s *Store) DeletePersons(ctx context.Context, ids []int64) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	for _, f := range s.faces {
		if f.PersonID != nil {
			if _, ok := idSet[*f.PersonID]; ok {
				f.PersonID = nil
			}
		}
	}
	for id := range idSet {
		delete(s.persons, id)
	}
	return nil
}

// DeleteAllPersons removes every person row and unassigns all faces.
func (s *Store) DeleteAllPersons(ctx context.Context) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.faces {
		f.PersonID = nil
	}
	s.persons = make(map[int64]*database.Person)
	return nil
}

// PersonStats returns per-person aggregates in ascending id order.
func (s *Store) PersonStats(ctx context.Context) ([]database.PersonStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPerson := make(map[int64][]*database.StoredFace)
	for _, f := range s.faces {
		if f.PersonID != nil {
			byPerson[*f.PersonID] = append(byPerson[*f.PersonID], f)
		}
	}

	ids := make([]int64, 0, len(s.persons))
	for id := range s.persons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]database.PersonStats, 0, len(ids))
	for _, id := range ids {
		p := s.persons[id]
		faces := byPerson[id]
		photos := make(map[string]struct{})
		var confidence float64
		for _, f := range faces {
			photos[f.PhotoPath] = struct{}{}
			confidence += f.Confidence
		}
		avg := 0.0
		if len(faces) > 0 {
			avg = confidence / float64(len(faces))
		}
		out = append(out, database.PersonStats{
			PersonID:      id,
			Name:          p.Name,
			Confirmed:     p.Confirmed,
			FaceCount:     len(faces),
			PhotoCount:    len(photos),
			AvgConfidence: avg,
		})
	}
	return out, nil
}

// Close is a no-op for the mock store.
func (s *Store) Close() error { return nil }
