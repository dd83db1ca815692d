package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/alimgiray/familytree/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// PersonStore is the per-owner document store for family members
type PersonStore interface {
	Create(person *models.Person) error
	Update(ownerID, id string, changes models.PersonChanges) error
	Delete(ownerID, id string) error
	ListByOwner(ownerID string) ([]*models.Person, error)
}

// NoteDetacher drops note links to a deleted person
type NoteDetacher interface {
	ClearRelatedPerson(ownerID, personID string) (int64, error)
}

// ChangePublisher is told whenever a collection of a user changed
type ChangePublisher interface {
	Publish(userID string, collection Collection)
}

// PhotoUploader stores member photos
type PhotoUploader interface {
	Validate(upload *PhotoUpload) error
	Upload(ctx context.Context, userID string, upload *PhotoUpload) (string, error)
}

// SaveResult is the stored person plus the related-record updates that went through
type SaveResult struct {
	Person  *models.Person        `json:"person"`
	Applied []models.UpdateIntent `json:"applied"`
}

type FamilyService struct {
	people    PersonStore
	notes     NoteDetacher
	photos    PhotoUploader
	publisher ChangePublisher
}

func NewFamilyService(people PersonStore, notes NoteDetacher, photos PhotoUploader, publisher ChangePublisher) *FamilyService {
	return &FamilyService{
		people:    people,
		notes:     notes,
		photos:    photos,
		publisher: publisher,
	}
}

// ListMembers returns every member of the session owner. Guests have none.
func (s *FamilyService) ListMembers(session models.Session) ([]*models.Person, error) {
	if !session.Persistent() {
		return []*models.Person{}, nil
	}
	return s.people.ListByOwner(session.UserID)
}

// SavePerson creates or updates a member from a submitted form and brings the
// records it links to in line. A *RelationshipUpdateError comes back together
// with a result when the member was stored but some linked records were not.
func (s *FamilyService) SavePerson(ctx context.Context, session models.Session, draft *models.PersonDraft, photo *PhotoUpload) (*SaveResult, error) {
	if !session.Persistent() {
		metrics.SavesTotal.WithLabelValues("guest").Inc()
		return nil, ErrGuestMode
	}

	log := logger.WithUser(session.UserID)

	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Gender == "" {
		draft.Gender = models.GenderUnknown
	}
	if err := validateStruct(draft); err != nil {
		metrics.SavesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if photo != nil && s.photos != nil {
		if err := s.photos.Validate(photo); err != nil {
			metrics.SavesTotal.WithLabelValues("invalid").Inc()
			return nil, err
		}
	}

	all, err := s.people.ListByOwner(session.UserID)
	if err != nil {
		metrics.SavesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrPrimarySave, err)
	}

	var previous *models.Person
	person := models.NewPerson(session.UserID)
	if draft.ID != "" {
		previous = findPerson(all, draft.ID)
		if previous == nil {
			return nil, ErrPersonNotFound
		}
		person.ID = previous.ID
		person.CreatedAt = previous.CreatedAt
	}

	relations := SanitizeRelations(person.ID, draft.Relations())
	if err := ValidateRelations(person.ID, relations, all); err != nil {
		metrics.SavesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	photoURL := draft.PhotoURL
	if photo != nil && s.photos != nil {
		photoURL, err = s.photos.Upload(ctx, session.UserID, photo)
		if err != nil {
			metrics.SavesTotal.WithLabelValues("upload_failed").Inc()
			return nil, err
		}
	}

	person.Name = draft.Name
	person.Gender = draft.Gender
	person.BirthDate = draft.BirthDate
	person.DeathDate = draft.DeathDate
	person.BirthPlace = draft.BirthPlace
	person.DeathPlace = draft.DeathPlace
	person.PhotoURL = photoURL
	person.SpouseID = relations.SpouseID
	person.ParentIDs = relations.ParentIDs
	person.ChildIDs = relations.ChildIDs

	if previous == nil {
		err = s.people.Create(person)
	} else {
		err = s.people.Update(session.UserID, person.ID, fullChanges(person))
	}
	if err != nil {
		metrics.SavesTotal.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Error saving family member")
		return nil, fmt.Errorf("%w: %v", ErrPrimarySave, err)
	}
	log.WithField("person_id", person.ID).Info("Family member saved")

	intents := PlanSave(person.ID, relations, previous, all)
	applied, failures := s.applyIntents(log, session.UserID, intents, false)
	s.publish(session.UserID, CollectionMembers)

	result := &SaveResult{Person: person, Applied: applied}
	if len(failures) > 0 {
		metrics.SavesTotal.WithLabelValues("partial").Inc()
		return result, &RelationshipUpdateError{Failures: failures}
	}

	metrics.SavesTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// DeletePerson removes every link to a member, then the member itself.
// The first failing step stops the cascade; steps already done stay done.
func (s *FamilyService) DeletePerson(session models.Session, personID string) error {
	if !session.Persistent() {
		metrics.DeletesTotal.WithLabelValues("guest").Inc()
		return ErrGuestMode
	}

	log := logger.WithUser(session.UserID).WithField("person_id", personID)

	all, err := s.people.ListByOwner(session.UserID)
	if err != nil {
		metrics.DeletesTotal.WithLabelValues("failed").Inc()
		return err
	}
	if findPerson(all, personID) == nil {
		return ErrPersonNotFound
	}

	intents := PlanDelete(personID, all)
	applied, failures := s.applyIntents(log, session.UserID, intents, true)
	if len(applied) > 0 {
		s.publish(session.UserID, CollectionMembers)
	}
	if len(failures) > 0 {
		metrics.DeletesTotal.WithLabelValues("failed").Inc()
		return &RelationshipUpdateError{Failures: failures}
	}

	if s.notes != nil {
		detached, err := s.notes.ClearRelatedPerson(session.UserID, personID)
		if err != nil {
			metrics.DeletesTotal.WithLabelValues("failed").Inc()
			log.WithError(err).Error("Error detaching notes from family member")
			return err
		}
		if detached > 0 {
			s.publish(session.UserID, CollectionNotes)
		}
	}

	if err := s.people.Delete(session.UserID, personID); err != nil {
		metrics.DeletesTotal.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Error deleting family member")
		return err
	}

	s.publish(session.UserID, CollectionMembers)
	metrics.DeletesTotal.WithLabelValues("ok").Inc()
	log.Info("Family member and all related relationships deleted")
	return nil
}

// Tree returns the chart model anchored on the selected root
func (s *FamilyService) Tree(session models.Session, previousRootID string) (*ChartData, error) {
	members, err := s.ListMembers(session)
	if err != nil {
		return nil, err
	}
	return BuildChart(members, SelectRoot(members, previousRootID)), nil
}

// applyIntents writes each intent on its own. With stopOnError the first
// failure ends the run, otherwise every intent is attempted.
func (s *FamilyService) applyIntents(log *logrus.Entry, ownerID string, intents []models.UpdateIntent, stopOnError bool) ([]models.UpdateIntent, []RelationshipFailure) {
	applied := make([]models.UpdateIntent, 0, len(intents))
	var failures []RelationshipFailure

	for _, intent := range intents {
		if err := s.people.Update(ownerID, intent.TargetID, intent.Changes); err != nil {
			metrics.RelationshipUpdatesTotal.WithLabelValues("failed").Inc()
			log.WithError(err).WithField("target_id", intent.TargetID).Error("Error updating related family member")
			failures = append(failures, RelationshipFailure{TargetID: intent.TargetID, Err: err})
			if stopOnError {
				break
			}
			continue
		}
		metrics.RelationshipUpdatesTotal.WithLabelValues("ok").Inc()
		applied = append(applied, intent)
	}

	return applied, failures
}

func (s *FamilyService) publish(userID string, collection Collection) {
	if s.publisher != nil {
		s.publisher.Publish(userID, collection)
	}
}

// fullChanges turns a person into a change set touching every stored field
func fullChanges(p *models.Person) models.PersonChanges {
	gender := p.Gender
	name, birthDate, deathDate := p.Name, p.BirthDate, p.DeathDate
	birthPlace, deathPlace, photoURL, spouseID := p.BirthPlace, p.DeathPlace, p.PhotoURL, p.SpouseID

	return models.PersonChanges{
		Name:       &name,
		Gender:     &gender,
		BirthDate:  &birthDate,
		DeathDate:  &deathDate,
		BirthPlace: &birthPlace,
		DeathPlace: &deathPlace,
		PhotoURL:   &photoURL,
		SpouseID:   &spouseID,
		ParentIDs:  append([]string{}, p.ParentIDs...),
		ChildIDs:   append([]string{}, p.ChildIDs...),
	}
}

func findPerson(all []*models.Person, id string) *models.Person {
	for _, p := range all {
		if p.ID == id {
			return p
		}
	}
	return nil
}
