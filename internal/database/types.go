package database

import (
	"encoding/binary"
	"math"
	"time"
)

// FaceEmbeddingDim is the fixed dimension of detector face embeddings
// (InsightFace buffalo_l / ResNet100).
const FaceEmbeddingDim = 512

// StoredFace represents a detected face stored in the database.
// Embedding, bounding box and confidence are immutable once written;
// only PersonID, Ignored and UpdatedAt change after insert.
type StoredFace struct {
	ID         int64
	PhotoPath  string
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
	Embedding  []float32
	PersonID   *int64 // nil while unassigned
	Ignored    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Assigned reports whether the face currently belongs to a person.
func (f *StoredFace) Assigned() bool {
	return f.PersonID != nil
}

// Person represents a face identity. Clustering always creates persons
// unconfirmed with a placeholder name; Confirmed is set when a human
// labels them explicitly.
type Person struct {
	ID        int64
	Name      string
	Confirmed bool
	CreatedAt time.Time
}

// PersonStats summarizes one person for the stats surface.
type PersonStats struct {
	PersonID      int64
	Name          string
	Confirmed     bool
	FaceCount     int
	PhotoCount    int
	AvgConfidence float64
}

// EncodeEmbedding packs a float32 vector into a little-endian BLOB,
// the on-disk format used by the SQLite backend.
func EncodeEmbedding(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeEmbedding unpacks a little-endian float32 BLOB.
func DecodeEmbedding(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
