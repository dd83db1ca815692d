package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"

	"github.com/alimgiray/familytree/internal/models"
)

// memoryPeople is a PersonStore keeping records in insertion order
type memoryPeople struct {
	mu        sync.Mutex
	order     []string
	records   map[string]*models.Person
	updates   []string
	createErr error
	listErr   error
	updateErr map[string]error
	deleteErr error
}

func newMemoryPeople(people ...*models.Person) *memoryPeople {
	s := &memoryPeople{
		records:   make(map[string]*models.Person),
		updateErr: make(map[string]error),
	}
	for _, p := range people {
		s.order = append(s.order, p.ID)
		s.records[p.ID] = clonePerson(p)
	}
	return s
}

func clonePerson(p *models.Person) *models.Person {
	c := *p
	c.ParentIDs = append([]string{}, p.ParentIDs...)
	c.ChildIDs = append([]string{}, p.ChildIDs...)
	return &c
}

func (s *memoryPeople) Create(person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.order = append(s.order, person.ID)
	s.records[person.ID] = clonePerson(person)
	return nil
}

func (s *memoryPeople) Update(ownerID, id string, changes models.PersonChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, id)
	if err := s.updateErr[id]; err != nil {
		return err
	}
	p, ok := s.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	changes.Apply(p)
	return nil
}

func (s *memoryPeople) Delete(ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryPeople) ListByOwner(ownerID string) ([]*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Person, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clonePerson(s.records[id]))
	}
	return out, nil
}

func (s *memoryPeople) get(id string) *models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// memoryNotes is a NoteStore that also detaches notes from deleted people
type memoryNotes struct {
	mu       sync.Mutex
	notes    []*models.Note
	clearErr error
}

func (s *memoryNotes) Create(note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *note
	s.notes = append(s.notes, &c)
	return nil
}

func (s *memoryNotes) GetByID(ownerID, id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id && n.OwnerID == ownerID {
			c := *n
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryNotes) ListByOwner(ownerID string) ([]*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Note{}
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memoryNotes) Update(note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == note.ID && n.OwnerID == note.OwnerID {
			c := *note
			s.notes[i] = &c
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *memoryNotes) Delete(ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id && n.OwnerID == ownerID {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *memoryNotes) ClearRelatedPerson(ownerID, personID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return 0, s.clearErr
	}
	var cleared int64
	for _, n := range s.notes {
		if n.OwnerID == ownerID && n.RelatedPersonID == personID {
			n.RelatedPersonID = ""
			cleared++
		}
	}
	return cleared, nil
}

// recordingPublisher remembers every change notification
type recordingPublisher struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (p *recordingPublisher) Publish(userID string, collection Collection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ChangeEvent{UserID: userID, Collection: collection})
}

func (p *recordingPublisher) count(collection Collection) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Collection == collection {
			n++
		}
	}
	return n
}

// memoryObjects is an ObjectStore keeping uploads in memory
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memoryObjects) Store(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[objectPath] = data
	return "https://photos.test/" + objectPath, nil
}

var errStoreDown = errors.New("store unavailable")
