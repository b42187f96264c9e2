package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/mpetrik/photo-people/internal/database"
)

const faceColumns = "id, photo_path, x, y, width, height, confidence, embedding, person_id, ignored, created_at, updated_at"

func scanFace(row interface{ Scan(...any) error }) (*database.StoredFace, error) {
	var f database.StoredFace
	var vec sql.Null[pgvector.Vector]
	var personID sql.NullInt64

	err := row.Scan(&f.ID, &f.PhotoPath, &f.X, &f.Y, &f.Width, &f.Height,
		&f.Confidence, &vec, &personID, &f.Ignored, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if vec.Valid {
		f.Embedding = vec.V.Slice()
	}
	if personID.Valid {
		f.PersonID = &personID.Int64
	}
	return &f, nil
}

func (s *Store) listFaces(ctx context.Context, where string, args ...any) ([]database.StoredFace, error) {
	query := "SELECT " + faceColumns + " FROM faces"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query faces: %w", err)
	}
	defer rows.Close()

	var out []database.StoredFace
	for rows.Next() {
		f, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// InsertFaces stores new faces, always unassigned, in one transaction.
func (s *Store) InsertFaces(ctx context.Context, faces []database.StoredFace) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert faces: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO faces (photo_path, x, y, width, height, confidence, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert face: %w", err)
	}
	defer stmt.Close()

	for _, f := range faces {
		var vec any
		if len(f.Embedding) > 0 {
			vec = pgvector.NewVector(f.Embedding)
		}
		_, err := stmt.ExecContext(ctx, f.PhotoPath, f.X, f.Y, f.Width, f.Height, f.Confidence, vec)
		if err != nil {
			return fmt.Errorf("insert face for %s: %w", f.PhotoPath, err)
		}
	}
	return tx.Commit()
}

// GetFace retrieves a face by id.
func (s *Store) GetFace(ctx context.Context, id int64) (*database.StoredFace, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+faceColumns+" FROM faces WHERE id = $1", id)
	f, err := scanFace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get face %d: %w", id, err)
	}
	return f, nil
}

// ListClusterable returns every non-ignored face with an embedding.
func (s *Store) ListClusterable(ctx context.Context) ([]database.StoredFace, error) {
	return s.listFaces(ctx, "embedding IS NOT NULL AND NOT ignored")
}

// ListUnassigned returns clusterable faces without a person.
func (s *Store) ListUnassigned(ctx context.Context) ([]database.StoredFace, error) {
	return s.listFaces(ctx, "embedding IS NOT NULL AND NOT ignored AND person_id IS NULL")
}

// ListAssigned returns clusterable faces with a person.
func (s *Store) ListAssigned(ctx context.Context) ([]database.StoredFace, error) {
	return s.listFaces(ctx, "embedding IS NOT NULL AND NOT ignored AND person_id IS NOT NULL")
}

// AssignFaces points the given faces at a person in a single statement.
func (s *Store) AssignFaces(ctx context.Context, personID int64, faceIDs []int64) error {
	if len(faceIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE faces
		SET person_id = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`, personID, pq.Array(faceIDs))
	if err != nil {
		return fmt.Errorf("assign %d faces to person %d: %w", len(faceIDs), personID, err)
	}
	return nil
}

// ClearAssignments unassigns every face. Embeddings are untouched.
func (s *Store) ClearAssignments(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE faces SET person_id = NULL"); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return nil
}

// SetIgnored flips the ignored flag on a face.
func (s *Store) SetIgnored(ctx context.Context, faceID int64, ignored bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE faces
		SET ignored = $1, updated_at = NOW()
		WHERE id = $2
	`, ignored, faceID)
	if err != nil {
		return fmt.Errorf("set ignored on face %d: %w", faceID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return database.ErrNotFound
	}
	return nil
}

// HasFaces reports whether face detection has stored rows for a photo.
func (s *Store) HasFaces(ctx context.Context, photoPath string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM faces WHERE photo_path = $1)", photoPath).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check faces exist: %w", err)
	}
	return exists, nil
}

// CountFaces returns the total number of face rows.
func (s *Store) CountFaces(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM faces").Scan(&count); err != nil {
		return 0, fmt.Errorf("count faces: %w", err)
	}
	return count, nil
}

// CountUnassigned returns the number of clusterable unassigned faces.
func (s *Store) CountUnassigned(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM faces
		WHERE embedding IS NOT NULL AND NOT ignored AND person_id IS NULL
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unassigned faces: %w", err)
	}
	return count, nil
}

// DeleteAllFaces removes every face row.
func (s *Store) DeleteAllFaces(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM faces"); err != nil {
		return fmt.Errorf("delete faces: %w", err)
	}
	return nil
}
