package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/logger"
)

// NoteStore is the per-owner store for family stories
type NoteStore interface {
	Create(note *models.Note) error
	GetByID(ownerID, id string) (*models.Note, error)
	ListByOwner(ownerID string) ([]*models.Note, error)
	Update(note *models.Note) error
	Delete(ownerID, id string) error
}

type NoteService struct {
	notes     NoteStore
	people    PeopleLister
	publisher ChangePublisher
}

func NewNoteService(notes NoteStore, people PeopleLister, publisher ChangePublisher) *NoteService {
	return &NoteService{
		notes:     notes,
		people:    people,
		publisher: publisher,
	}
}

// ListNotes returns the notes of the session owner. Guests have none.
func (s *NoteService) ListNotes(session models.Session) ([]*models.Note, error) {
	if !session.Persistent() {
		return []*models.Note{}, nil
	}
	return s.notes.ListByOwner(session.UserID)
}

// SaveNote creates the note when its ID is empty and updates it otherwise
func (s *NoteService) SaveNote(session models.Session, note *models.Note) (*models.Note, error) {
	if !session.Persistent() {
		return nil, ErrGuestMode
	}

	note.Title = strings.TrimSpace(note.Title)
	note.Content = strings.TrimSpace(note.Content)
	if err := validateStruct(note); err != nil {
		return nil, err
	}

	if err := s.checkRelatedPerson(session.UserID, note.RelatedPersonID); err != nil {
		return nil, err
	}

	note.OwnerID = session.UserID
	log := logger.WithUser(session.UserID)

	if note.ID == "" {
		created := models.NewNote(session.UserID, note.Title, note.Content, note.RelatedPersonID)
		if err := s.notes.Create(created); err != nil {
			log.WithError(err).Error("Error adding note")
			return nil, err
		}
		note = created
		log.WithField("note_id", note.ID).Info("Note added")
	} else {
		if err := s.notes.Update(note); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNoteNotFound
			}
			log.WithError(err).Error("Error updating note")
			return nil, err
		}
		log.WithField("note_id", note.ID).Info("Note updated")
	}

	s.publish(session.UserID)
	return note, nil
}

// DeleteNote deletes a note of the session owner
func (s *NoteService) DeleteNote(session models.Session, noteID string) error {
	if !session.Persistent() {
		return ErrGuestMode
	}

	if err := s.notes.Delete(session.UserID, noteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoteNotFound
		}
		logger.WithUser(session.UserID).WithError(err).Error("Error deleting note")
		return err
	}

	s.publish(session.UserID)
	return nil
}

// checkRelatedPerson rejects a link to someone who is not a member of the owner's tree
func (s *NoteService) checkRelatedPerson(ownerID, personID string) error {
	if personID == "" {
		return nil
	}

	people, err := s.people.ListByOwner(ownerID)
	if err != nil {
		logger.WithUser(ownerID).WithError(err).Error("Error loading family members")
		return err
	}
	for _, p := range people {
		if p.ID == personID {
			return nil
		}
	}

	return models.ValidationErrors{{
		Field:   "relatedPersonId",
		Message: "Related family member not found",
	}}
}

func (s *NoteService) publish(userID string) {
	if s.publisher != nil {
		s.publisher.Publish(userID, CollectionNotes)
	}
}
