package services

import (
	"hash/fnv"
	"sync"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/alimgiray/familytree/pkg/metrics"
)

// Collection names one per-user collection a client can follow
type Collection string

const (
	CollectionMembers Collection = "members"
	CollectionNotes   Collection = "notes"
)

// Snapshot is the full current content of one collection
type Snapshot struct {
	Collection Collection       `json:"collection"`
	Members    []*models.Person `json:"members,omitempty"`
	Notes      []*models.Note   `json:"notes,omitempty"`
	RootID     string           `json:"rootId,omitempty"`
}

// SnapshotHandler receives every snapshot of a subscribed collection
type SnapshotHandler func(Snapshot)

// ChangeEvent tells the feed that a collection of a user changed
type ChangeEvent struct {
	UserID     string
	Collection Collection
}

type PeopleLister interface {
	ListByOwner(ownerID string) ([]*models.Person, error)
}

type NoteLister interface {
	ListByOwner(ownerID string) ([]*models.Note, error)
}

type subscription struct {
	id         int
	collection Collection
	handler    SnapshotHandler
	rootID     string
}

// FeedService fans collection snapshots out to subscribers. Change events are
// routed to a queue by user so one worker handles all events of a user in
// order, and events still waiting in a queue are coalesced.
type FeedService struct {
	people PeopleLister
	notes  NoteLister

	mu      sync.Mutex
	subs    map[string]map[int]*subscription
	pending map[ChangeEvent]bool
	nextID  int
	queues  []chan ChangeEvent
}

func NewFeedService(people PeopleLister, notes NoteLister, partitions int) *FeedService {
	if partitions < 1 {
		partitions = 1
	}

	queues := make([]chan ChangeEvent, partitions)
	for i := range queues {
		queues[i] = make(chan ChangeEvent, 256)
	}

	return &FeedService{
		people:  people,
		notes:   notes,
		subs:    make(map[string]map[int]*subscription),
		pending: make(map[ChangeEvent]bool),
		queues:  queues,
	}
}

// Partitions returns how many queues the feed routes events to
func (s *FeedService) Partitions() int {
	return len(s.queues)
}

// Queue returns the events of one partition
func (s *FeedService) Queue(partition int) <-chan ChangeEvent {
	return s.queues[partition]
}

// Subscribe registers handler for a collection of userID and schedules an
// initial snapshot. The returned function cancels the subscription.
func (s *FeedService) Subscribe(userID string, collection Collection, handler SnapshotHandler) func() {
	s.mu.Lock()
	s.nextID++
	sub := &subscription{id: s.nextID, collection: collection, handler: handler}
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]*subscription)
	}
	s.subs[userID][sub.id] = sub
	s.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	s.Publish(userID, collection)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[userID], sub.id)
			if len(s.subs[userID]) == 0 {
				delete(s.subs, userID)
			}
			s.mu.Unlock()
			metrics.FeedSubscribers.Dec()
		})
	}
}

// Publish records that a collection changed. Users without subscribers are
// ignored and an event that is already queued is not queued twice.
func (s *FeedService) Publish(userID string, collection Collection) {
	event := ChangeEvent{UserID: userID, Collection: collection}

	s.mu.Lock()
	if len(s.subs[userID]) == 0 || s.pending[event] {
		s.mu.Unlock()
		return
	}
	s.pending[event] = true
	s.mu.Unlock()

	select {
	case s.queues[s.partition(userID)] <- event:
	default:
		s.mu.Lock()
		delete(s.pending, event)
		s.mu.Unlock()
		logger.WithUser(userID).Warn("Feed queue full, dropping change notification")
	}
}

// Deliver loads the collection named by event and hands it to every subscriber
func (s *FeedService) Deliver(event ChangeEvent) error {
	s.mu.Lock()
	delete(s.pending, event)
	var subs []*subscription
	for _, sub := range s.subs[event.UserID] {
		if sub.collection == event.Collection {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	if len(subs) == 0 {
		return nil
	}

	snapshot := Snapshot{Collection: event.Collection}
	switch event.Collection {
	case CollectionMembers:
		members, err := s.people.ListByOwner(event.UserID)
		if err != nil {
			return err
		}
		snapshot.Members = members
	case CollectionNotes:
		notes, err := s.notes.ListByOwner(event.UserID)
		if err != nil {
			return err
		}
		snapshot.Notes = notes
	}

	for _, sub := range subs {
		delivered := snapshot
		if event.Collection == CollectionMembers {
			s.mu.Lock()
			sub.rootID = SelectRoot(snapshot.Members, sub.rootID)
			delivered.RootID = sub.rootID
			s.mu.Unlock()
		}
		sub.handler(delivered)
		metrics.FeedDeliveriesTotal.WithLabelValues(string(event.Collection)).Inc()
	}

	return nil
}

func (s *FeedService) partition(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(s.queues)))
}
