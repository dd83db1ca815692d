package repositories

import (
	"database/sql"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/google/uuid"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create creates a new note
func (r *NoteRepository) Create(note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	query := `
		INSERT INTO notes (id, owner_id, title, content, related_person_id)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, note.ID, note.OwnerID, note.Title, note.Content, note.RelatedPersonID)
	return err
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ownerID, id string) (*models.Note, error) {
	query := `
		SELECT id, owner_id, title, content, related_person_id, created_at, updated_at
		FROM notes WHERE owner_id = ? AND id = ?
	`

	note := &models.Note{}
	err := r.db.QueryRow(query, ownerID, id).Scan(
		&note.ID, &note.OwnerID, &note.Title, &note.Content, &note.RelatedPersonID,
		&note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return note, nil
}

// ListByOwner returns all notes of one owner in insertion order
func (r *NoteRepository) ListByOwner(ownerID string) ([]*models.Note, error) {
	query := `
		SELECT id, owner_id, title, content, related_person_id, created_at, updated_at
		FROM notes WHERE owner_id = ? ORDER BY rowid
	`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		note := &models.Note{}
		err := rows.Scan(
			&note.ID, &note.OwnerID, &note.Title, &note.Content, &note.RelatedPersonID,
			&note.CreatedAt, &note.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// Update updates an existing note
func (r *NoteRepository) Update(note *models.Note) error {
	query := `
		UPDATE notes SET
			title = ?, content = ?, related_person_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND id = ?
	`

	result, err := r.db.Exec(query, note.Title, note.Content, note.RelatedPersonID, note.OwnerID, note.ID)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// Delete deletes a note by ID
func (r *NoteRepository) Delete(ownerID, id string) error {
	result, err := r.db.Exec(`DELETE FROM notes WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// ClearRelatedPerson detaches every note of ownerID from personID
func (r *NoteRepository) ClearRelatedPerson(ownerID, personID string) (int64, error) {
	query := `
		UPDATE notes SET related_person_id = '', updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND related_person_id = ?
	`

	result, err := r.db.Exec(query, ownerID, personID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
