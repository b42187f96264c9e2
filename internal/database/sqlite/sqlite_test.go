package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mpetrik/photo-people/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFace(t *testing.T, s *Store, photo string, embedding []float32) int64 {
	t.Helper()

	ctx := context.Background()
	err := s.InsertFaces(ctx, []database.StoredFace{{
		PhotoPath:  photo,
		X:          10,
		Y:          20,
		Width:      64,
		Height:     64,
		Confidence: 0.9,
		Embedding:  embedding,
	}})
	if err != nil {
		t.Fatalf("failed to seed face: %v", err)
	}

	faces, err := s.listFaces(ctx, "")
	if err != nil {
		t.Fatalf("failed to list faces: %v", err)
	}
	return faces[len(faces)-1].ID
}

func TestInsertAndGetFace(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id := seedFace(t, s, "photos/a.jpg", []float32{1, 0, 0})

	f, err := s.GetFace(ctx, id)
	if err != nil {
		t.Fatalf("GetFace failed: %v", err)
	}
	if f.PhotoPath != "photos/a.jpg" {
		t.Errorf("expected photo path photos/a.jpg, got %s", f.PhotoPath)
	}
	if f.PersonID != nil {
		t.Error("inserted face should be unassigned")
	}
	if len(f.Embedding) != 3 || f.Embedding[0] != 1 {
		t.Errorf("embedding not round-tripped: %v", f.Embedding)
	}
}

func TestGetFace_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetFace(context.Background(), 999)

	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUnassigned_ExcludesIgnoredAndAssigned(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id1 := seedFace(t, s, "a.jpg", []float32{1, 0})
	id2 := seedFace(t, s, "b.jpg", []float32{0, 1})
	id3 := seedFace(t, s, "c.jpg", []float32{1, 1})

	personID, err := s.CreatePerson(ctx, "Person 1")
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	if err := s.AssignFaces(ctx, personID, []int64{id1}); err != nil {
		t.Fatalf("AssignFaces failed: %v", err)
	}
	if err := s.SetIgnored(ctx, id2, true); err != nil {
		t.Fatalf("SetIgnored failed: %v", err)
	}

	unassigned, err := s.ListUnassigned(ctx)
	if err != nil {
		t.Fatalf("ListUnassigned failed: %v", err)
	}
	if len(unassigned) != 1 || unassigned[0].ID != id3 {
		t.Errorf("expected only face %d unassigned, got %v", id3, unassigned)
	}

	assigned, err := s.ListAssigned(ctx)
	if err != nil {
		t.Fatalf("ListAssigned failed: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != id1 {
		t.Errorf("expected only face %d assigned, got %v", id1, assigned)
	}

	clusterable, err := s.ListClusterable(ctx)
	if err != nil {
		t.Fatalf("ListClusterable failed: %v", err)
	}
	if len(clusterable) != 2 {
		t.Errorf("expected 2 clusterable faces (ignored excluded), got %d", len(clusterable))
	}
}

func TestFindPersonByName_CaseSensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePerson(ctx, "alice"); err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}

	if _, err := s.FindPersonByName(ctx, "Alice"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("lookup should be case-sensitive, got %v", err)
	}

	p, err := s.FindPersonByName(ctx, "alice")
	if err != nil {
		t.Fatalf("FindPersonByName failed: %v", err)
	}
	if p.Name != "alice" {
		t.Errorf("expected name alice, got %s", p.Name)
	}
}

func TestMergePersons(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	src, _ := s.CreatePerson(ctx, "Person 1")
	dst, _ := s.CreatePerson(ctx, "Person 2")

	f1 := seedFace(t, s, "a.jpg", []float32{1, 0})
	f2 := seedFace(t, s, "b.jpg", []float32{0, 1})
	f3 := seedFace(t, s, "c.jpg", []float32{1, 1})
	if err := s.AssignFaces(ctx, src, []int64{f1, f2}); err != nil {
		t.Fatalf("AssignFaces failed: %v", err)
	}
	if err := s.AssignFaces(ctx, dst, []int64{f3}); err != nil {
		t.Fatalf("AssignFaces failed: %v", err)
	}

	moved, err := s.MergePersons(ctx, src, dst)
	if err != nil {
		t.Fatalf("MergePersons failed: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 faces moved, got %d", moved)
	}

	if _, err := s.GetPerson(ctx, src); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("source person should be deleted, got %v", err)
	}

	assigned, _ := s.ListAssigned(ctx)
	for _, f := range assigned {
		if *f.PersonID != dst {
			t.Errorf("face %d should belong to person %d, got %d", f.ID, dst, *f.PersonID)
		}
	}
	if len(assigned) != 3 {
		t.Errorf("expected 3 assigned faces after merge, got %d", len(assigned))
	}
}

func TestMergePersons_MissingDestination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	src, _ := s.CreatePerson(ctx, "Person 1")

	if _, err := s.MergePersons(ctx, src, 999); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing destination, got %v", err)
	}

	// Source must survive the rolled-back transaction.
	if _, err := s.GetPerson(ctx, src); err != nil {
		t.Errorf("source person should still exist after failed merge: %v", err)
	}
}

func TestDeletePersons_PreservesEmbeddings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, _ := s.CreatePerson(ctx, "Person 1")
	id := seedFace(t, s, "a.jpg", []float32{0.25, 0.75})
	if err := s.AssignFaces(ctx, p, []int64{id}); err != nil {
		t.Fatalf("AssignFaces failed: %v", err)
	}

	if err := s.DeletePersons(ctx, []int64{p}); err != nil {
		t.Fatalf("DeletePersons failed: %v", err)
	}

	f, err := s.GetFace(ctx, id)
	if err != nil {
		t.Fatalf("GetFace failed: %v", err)
	}
	if f.PersonID != nil {
		t.Error("face should be unassigned after person deletion")
	}
	if len(f.Embedding) != 2 || f.Embedding[1] != 0.75 {
		t.Errorf("embedding should be preserved, got %v", f.Embedding)
	}
}

func TestPersonStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, _ := s.CreatePerson(ctx, "Person 1")
	f1 := seedFace(t, s, "a.jpg", []float32{1, 0})
	f2 := seedFace(t, s, "a.jpg", []float32{0, 1})
	f3 := seedFace(t, s, "b.jpg", []float32{1, 1})
	if err := s.AssignFaces(ctx, p, []int64{f1, f2, f3}); err != nil {
		t.Fatalf("AssignFaces failed: %v", err)
	}

	stats, err := s.PersonStats(ctx)
	if err != nil {
		t.Fatalf("PersonStats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 person, got %d", len(stats))
	}
	st := stats[0]
	if st.FaceCount != 3 {
		t.Errorf("expected 3 faces, got %d", st.FaceCount)
	}
	if st.PhotoCount != 2 {
		t.Errorf("expected 2 distinct photos, got %d", st.PhotoCount)
	}
	if st.AvgConfidence < 0.89 || st.AvgConfidence > 0.91 {
		t.Errorf("expected mean confidence ~0.9, got %f", st.AvgConfidence)
	}
}

func TestDeleteAllPersons_ResetsAssignments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, _ := s.CreatePerson(ctx, "Person 1")
	id := seedFace(t, s, "a.jpg", []float32{1, 0})
	if err := s.AssignFaces(ctx, p, []int64{id}); err != nil {
		t.Fatalf("AssignFaces failed: %v", err)
	}

	if err := s.DeleteAllPersons(ctx); err != nil {
		t.Fatalf("DeleteAllPersons failed: %v", err)
	}

	persons, _ := s.ListPersons(ctx)
	if len(persons) != 0 {
		t.Errorf("expected no persons, got %d", len(persons))
	}
	n, _ := s.CountUnassigned(ctx)
	if n != 1 {
		t.Errorf("expected 1 unassigned face, got %d", n)
	}
}
