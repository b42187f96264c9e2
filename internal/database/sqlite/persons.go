package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mpetrik/photo-people/internal/database"
)

func scanPerson(row interface{ Scan(...any) error }) (*database.Person, error) {
	var p database.Person
	if err := row.Scan(&p.ID, &p.Name, &p.Confirmed, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePerson inserts an unconfirmed person and returns its id.
func (s *Store) CreatePerson(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO persons (name, confirmed) VALUES (?, 0)", name)
	if err != nil {
		return 0, fmt.Errorf("create person %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create person %q: %w", name, err)
	}
	return id, nil
}

// GetPerson retrieves a person by id.
func (s *Store) GetPerson(ctx context.Context, id int64) (*database.Person, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, confirmed, created_at FROM persons WHERE id = ?", id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}
	return p, nil
}

// FindPersonByName does an exact, case-sensitive name lookup.
func (s *Store) FindPersonByName(ctx context.Context, name string) (*database.Person, error) {
	// BINARY collation keeps the comparison case-sensitive regardless of
	// any table-level collation.
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, confirmed, created_at FROM persons
		WHERE name = ? COLLATE BINARY
		ORDER BY id LIMIT 1
	`, name)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find person %q: %w", name, err)
	}
	return p, nil
}

// ListPersons returns all persons in ascending id order.
func (s *Store) ListPersons(ctx context.Context) ([]database.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, confirmed, created_at FROM persons ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var out []database.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// RenamePerson sets the name and confirmed flag of a person.
func (s *Store) RenamePerson(ctx context.Context, id int64, name string, confirmed bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE persons SET name = ?, confirmed = ? WHERE id = ?", name, confirmed, id)
	if err != nil {
		return fmt.Errorf("rename person %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MergePersons re-points every face of src at dst and deletes the src row,
// in one transaction.
func (s *Store) MergePersons(ctx context.Context, srcID, dstID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM persons WHERE id = ?)", dstID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("merge persons: %w", err)
	}
	if !exists {
		return 0, database.ErrNotFound
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE faces
		SET person_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE person_id = ?
	`, dstID, srcID)
	if err != nil {
		return 0, fmt.Errorf("reassign faces from person %d to %d: %w", srcID, dstID, err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("merge persons: %w", err)
	}

	del, err := tx.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", srcID)
	if err != nil {
		return 0, fmt.Errorf("delete merged person %d: %w", srcID, err)
	}
	if n, err := del.RowsAffected(); err == nil && n == 0 {
		return 0, database.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge: %w", err)
	}
	return int(moved), nil
}

// DeletePersons unassigns the faces of the given persons and deletes the
// rows, in one transaction.
func (s *Store) DeletePersons(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete persons: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"UPDATE faces SET person_id = NULL WHERE person_id = ?", id); err != nil {
			return fmt.Errorf("unassign faces of person %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete person %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// DeleteAllPersons removes every person row and unassigns all faces.
func (s *Store) DeleteAllPersons(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset persons: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE faces SET person_id = NULL"); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM persons"); err != nil {
		return fmt.Errorf("delete persons: %w", err)
	}
	return tx.Commit()
}

// PersonStats returns per-person aggregates in ascending id order.
func (s *Store) PersonStats(ctx context.Context) ([]database.PersonStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.confirmed,
		       COUNT(f.id),
		       COUNT(DISTINCT f.photo_path),
		       COALESCE(AVG(f.confidence), 0)
		FROM persons p
		LEFT JOIN faces f ON f.person_id = p.id
		GROUP BY p.id, p.name, p.confirmed
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("person stats: %w", err)
	}
	defer rows.Close()

	var out []database.PersonStats
	for rows.Next() {
		var st database.PersonStats
		if err := rows.Scan(&st.PersonID, &st.Name, &st.Confirmed,
			&st.FaceCount, &st.PhotoCount, &st.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scan person stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
