package cluster

import (
	"context"
	"testing"

	"github.com/mpetrik/photo-people/internal/database"
	"github.com/mpetrik/photo-people/internal/database/mock"
)

// recorder captures engine events for assertions.
type recorder struct {
	skipped  []int64
	assigned map[int64]int64
	created  []string
	merges   int
}

func newRecorder() *recorder {
	return &recorder{assigned: make(map[int64]int64)}
}

func (r *recorder) Progress(string, int, int) {}
func (r *recorder) FaceSkipped(faceID int64, _ string) {
	r.skipped = append(r.skipped, faceID)
}
func (r *recorder) FaceAssigned(faceID, personID int64, _ float64) {
	r.assigned[faceID] = personID
}
func (r *recorder) PersonCreated(_ int64, name string, _ int) {
	r.created = append(r.created, name)
}
func (r *recorder) PersonsMerged(int64, int64, int) { r.merges++ }

func TestClusterNew_AssignsToNearestPerson(t *testing.T) {
	store := mock.NewStore()
	p1 := store.AddPerson(database.Person{Name: "Person 1"})
	p2 := store.AddPerson(database.Person{Name: "Person 2"})
	seedAssignedFace(store, 1, p1, 0)
	seedAssignedFace(store, 2, p1, 4)
	seedAssignedFace(store, 3, p2, 90)
	seedAssignedFace(store, 4, p2, 94)

	near1 := seedFace(store, 10, 10)
	near2 := seedFace(store, 11, 80)
	far := seedFace(store, 12, 225)

	engine := newTestEngine(store)
	res, err := engine.ClusterNew(context.Background(), Params{})
	if err != nil {
		t.Fatalf("cluster-new: %v", err)
	}

	if res.FacesAssigned != 2 {
		t.Errorf("expected 2 faces assigned, got %d", res.FacesAssigned)
	}
	if res.PersonsCreated != 0 {
		t.Errorf("expected no new persons, got %d", res.PersonsCreated)
	}
	if res.Unmatched != 1 {
		t.Errorf("expected 1 unmatched, got %d", res.Unmatched)
	}
	if f := store.Face(near1); !f.Assigned() || *f.PersonID != p1 {
		t.Errorf("face %d should belong to person %d", near1, p1)
	}
	if f := store.Face(near2); !f.Assigned() || *f.PersonID != p2 {
		t.Errorf("face %d should belong to person %d", near2, p2)
	}
	if f := store.Face(far); f.Assigned() {
		t.Errorf("face %d should stay unassigned", far)
	}
}

func TestClusterNew_ThresholdIsStrict(t *testing.T) {
	anchor := unit(0)
	probe := unit(53)
	sim := database.CosineSimilarity(probe, anchor)

	cases := []struct {
		name      string
		threshold float64
		assigned  bool
	}{
		{"just below similarity", sim - 1e-9, true},
		{"exactly at similarity", sim, false},
		{"just above similarity", sim + 1e-9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := mock.NewStore()
			p1 := store.AddPerson(database.Person{Name: "Person 1"})
			pid := p1
			store.AddFace(database.StoredFace{ID: 1, PhotoPath: "a.jpg", Embedding: anchor, PersonID: &pid})
			probeID := store.AddFace(database.StoredFace{ID: 2, PhotoPath: "b.jpg", Embedding: probe})

			engine := newTestEngine(store)
			res, err := engine.ClusterNew(context.Background(), Params{SimilarityThreshold: tc.threshold})
			if err != nil {
				t.Fatalf("cluster-new: %v", err)
			}

			got := store.Face(probeID).Assigned()
			if got != tc.assigned {
				t.Errorf("assigned = %v, want %v (similarity %.9f, threshold %.9f)",
					got, tc.assigned, sim, tc.threshold)
			}
			wantCount := 0
			if tc.assigned {
				wantCount = 1
			}
			if res.FacesAssigned != wantCount {
				t.Errorf("FacesAssigned = %d, want %d", res.FacesAssigned, wantCount)
			}
		})
	}
}

func TestClusterNew_TieGoesToLowestPersonID(t *testing.T) {
	store := mock.NewStore()
	p1 := store.AddPerson(database.Person{Name: "Person 1"})
	p2 := store.AddPerson(database.Person{Name: "Person 2"})
	seedAssignedFace(store, 1, p1, 0)
	seedAssignedFace(store, 2, p2, 0)
	probe := seedFace(store, 10, 5)

	engine := newTestEngine(store)
	if _, err := engine.ClusterNew(context.Background(), Params{}); err != nil {
		t.Fatalf("cluster-new: %v", err)
	}

	f := store.Face(probe)
	if !f.Assigned() || *f.PersonID != p1 {
		t.Errorf("equidistant face should go to the lowest person id %d, got %v", p1, f.PersonID)
	}
}

func TestClusterNew_CentroidFollowsAssignments(t *testing.T) {
	// The second face is too far from the person's original centroid but
	// close enough once the first match has pulled the centroid halfway
	// toward it. Processing order is ascending face id.
	store := mock.NewStore()
	p1 := store.AddPerson(database.Person{Name: "Person 1"})
	seedAssignedFace(store, 1, p1, 0)
	seedFace(store, 10, 30)
	chained := seedFace(store, 11, 60)

	engine := newTestEngine(store)
	res, err := engine.ClusterNew(context.Background(), Params{})
	if err != nil {
		t.Fatalf("cluster-new: %v", err)
	}

	if res.FacesAssigned != 2 {
		t.Errorf("expected 2 faces assigned, got %d", res.FacesAssigned)
	}
	if f := store.Face(chained); !f.Assigned() {
		t.Error("face within reach of the updated centroid should be assigned")
	}
}

func TestClusterNew_CentroidUpdateIsOrderDependent(t *testing.T) {
	// Same geometry as above with the ids swapped: the far face is scanned
	// before anything has moved the centroid, so it stays unmatched.
	store := mock.NewStore()
	p1 := store.AddPerson(database.Person{Name: "Person 1"})
	seedAssignedFace(store, 1, p1, 0)
	early := seedFace(store, 10, 60)
	seedFace(store, 11, 30)

	engine := newTestEngine(store)
	res, err := engine.ClusterNew(context.Background(), Params{})
	if err != nil {
		t.Fatalf("cluster-new: %v", err)
	}

	if res.FacesAssigned != 1 {
		t.Errorf("expected 1 face assigned, got %d", res.FacesAssigned)
	}
	if f := store.Face(early); f.Assigned() {
		t.Error("face scanned before the centroid moved should stay unassigned")
	}
	if res.Unmatched != 1 {
		t.Errorf("expected 1 unmatched, got %d", res.Unmatched)
	}
}

func TestClusterNew_SkipsMalformedEmbeddings(t *testing.T) {
	store := mock.NewStore()
	p1 := store.AddPerson(database.Person{Name: "Person 1"})
	seedAssignedFace(store, 1, p1, 0)
	bad := store.AddFace(database.StoredFace{ID: 10, PhotoPath: "a.jpg", Embedding: []float32{1, 0, 0}})
	good := seedFace(store, 11, 5)

	rec := newRecorder()
	engine := newTestEngine(store, WithEvents(rec))
	res, err := engine.ClusterNew(context.Background(), Params{})
	if err != nil {
		t.Fatalf("cluster-new: %v", err)
	}

	if res.FacesAssigned != 1 {
		t.Errorf("expected 1 face assigned, got %d", res.FacesAssigned)
	}
	if store.Face(bad).Assigned() {
		t.Error("malformed face must not be assigned")
	}
	if _, ok := rec.assigned[good]; !ok {
		t.Error("good face should be reported as assigned")
	}
	if len(rec.skipped) != 1 || rec.skipped[0] != bad {
		t.Errorf("malformed face should be reported as skipped, got %v", rec.skipped)
	}
}

func TestClusterNew_NothingToDo(t *testing.T) {
	store := mock.NewStore()
	engine := newTestEngine(store)

	res, err := engine.ClusterNew(context.Background(), Params{})
	if err != nil {
		t.Fatalf("cluster-new: %v", err)
	}
	if res.FacesAssigned != 0 || res.PersonsCreated != 0 || res.Unmatched != 0 {
		t.Errorf("empty store should be a no-op, got %+v", res)
	}
}
