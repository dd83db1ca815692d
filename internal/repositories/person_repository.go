package repositories

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/google/uuid"
)

const personColumns = `id, owner_id, name, gender, birth_date, death_date, birth_place, death_place,
	photo_url, spouse_id, parent_ids, child_ids, created_at, updated_at`

type PersonRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// Create stores a new person, assigning an id when the caller left it empty
func (r *PersonRepository) Create(person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}

	parentIDs, err := encodeIDs(person.ParentIDs)
	if err != nil {
		return err
	}
	childIDs, err := encodeIDs(person.ChildIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO members (
			id, owner_id, name, gender, birth_date, death_date, birth_place, death_place,
			photo_url, spouse_id, parent_ids, child_ids
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		person.ID, person.OwnerID, person.Name, string(person.Gender),
		person.BirthDate, person.DeathDate, person.BirthPlace, person.DeathPlace,
		person.PhotoURL, person.SpouseID, parentIDs, childIDs,
	)
	return err
}

// GetByID retrieves a person owned by ownerID
func (r *PersonRepository) GetByID(ownerID, id string) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM members WHERE owner_id = ? AND id = ?`

	person, err := scanPerson(r.db.QueryRow(query, ownerID, id))
	if err != nil {
		return nil, err
	}
	return person, nil
}

// ListByOwner returns every person of one owner in insertion order
func (r *PersonRepository) ListByOwner(ownerID string) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM members WHERE owner_id = ? ORDER BY rowid`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := []*models.Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}

	return people, rows.Err()
}

// Update writes only the fields set in changes.
// Returns sql.ErrNoRows when the person does not exist.
func (r *PersonRepository) Update(ownerID, id string, changes models.PersonChanges) error {
	var sets []string
	var args []interface{}

	addString := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}

	addString("name", changes.Name)
	if changes.Gender != nil {
		sets = append(sets, "gender = ?")
		args = append(args, string(*changes.Gender))
	}
	addString("birth_date", changes.BirthDate)
	addString("death_date", changes.DeathDate)
	addString("birth_place", changes.BirthPlace)
	addString("death_place", changes.DeathPlace)
	addString("photo_url", changes.PhotoURL)
	addString("spouse_id", changes.SpouseID)

	if changes.ParentIDs != nil {
		encoded, err := encodeIDs(changes.ParentIDs)
		if err != nil {
			return err
		}
		sets = append(sets, "parent_ids = ?")
		args = append(args, encoded)
	}
	if changes.ChildIDs != nil {
		encoded, err := encodeIDs(changes.ChildIDs)
		if err != nil {
			return err
		}
		sets = append(sets, "child_ids = ?")
		args = append(args, encoded)
	}

	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE members SET ` + strings.Join(sets, ", ") + `, updated_at = CURRENT_TIMESTAMP
		WHERE owner_id = ? AND id = ?`
	args = append(args, ownerID, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// Delete deletes a person by ID
func (r *PersonRepository) Delete(ownerID, id string) error {
	result, err := r.db.Exec(`DELETE FROM members WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	person := &models.Person{}
	var gender, parentIDs, childIDs string

	err := row.Scan(
		&person.ID, &person.OwnerID, &person.Name, &gender,
		&person.BirthDate, &person.DeathDate, &person.BirthPlace, &person.DeathPlace,
		&person.PhotoURL, &person.SpouseID, &parentIDs, &childIDs,
		&person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	person.Gender = models.Gender(gender)
	if person.ParentIDs, err = decodeIDs(parentIDs); err != nil {
		return nil, err
	}
	if person.ChildIDs, err = decodeIDs(childIDs); err != nil {
		return nil, err
	}

	return person, nil
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeIDs(data string) ([]string, error) {
	ids := []string{}
	if data == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
