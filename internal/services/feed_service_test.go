package services

import (
	"testing"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain delivers every queued event synchronously
func drain(t *testing.T, feed *FeedService) int {
	t.Helper()
	delivered := 0
	for i := 0; i < feed.Partitions(); i++ {
		for {
			select {
			case event := <-feed.Queue(i):
				require.NoError(t, feed.Deliver(event))
				delivered++
				continue
			default:
			}
			break
		}
	}
	return delivered
}

func TestFeedInitialSnapshot(t *testing.T) {
	people := newMemoryPeople(person("a", models.GenderMale, "", nil, nil))
	feed := NewFeedService(people, &memoryNotes{}, 2)

	var got []Snapshot
	cancel := feed.Subscribe("user-1", CollectionMembers, func(s Snapshot) { got = append(got, s) })
	defer cancel()

	assert.Equal(t, 1, drain(t, feed))
	require.Len(t, got, 1)
	assert.Equal(t, CollectionMembers, got[0].Collection)
	assert.Len(t, got[0].Members, 1)
	assert.Equal(t, "a", got[0].RootID)
}

func TestFeedCoalescesPendingEvents(t *testing.T) {
	people := newMemoryPeople()
	feed := NewFeedService(people, &memoryNotes{}, 1)

	var got []Snapshot
	cancel := feed.Subscribe("user-1", CollectionMembers, func(s Snapshot) { got = append(got, s) })
	defer cancel()

	feed.Publish("user-1", CollectionMembers)
	feed.Publish("user-1", CollectionMembers)

	assert.Equal(t, 1, drain(t, feed))
	assert.Len(t, got, 1)

	require.NoError(t, people.Create(person("b", models.GenderFemale, "", nil, nil)))
	feed.Publish("user-1", CollectionMembers)

	assert.Equal(t, 1, drain(t, feed))
	require.Len(t, got, 2)
	assert.Len(t, got[1].Members, 1)
}

func TestFeedRootIsStablePerSubscriber(t *testing.T) {
	people := newMemoryPeople(person("a", models.GenderMale, "", nil, nil))
	feed := NewFeedService(people, &memoryNotes{}, 1)

	var roots []string
	cancel := feed.Subscribe("user-1", CollectionMembers, func(s Snapshot) { roots = append(roots, s.RootID) })
	defer cancel()
	drain(t, feed)

	// A new parentless member listed first does not move the anchor
	people.order = append([]string{"z"}, people.order...)
	people.records["z"] = person("z", models.GenderFemale, "", nil, nil)
	feed.Publish("user-1", CollectionMembers)
	drain(t, feed)

	assert.Equal(t, []string{"a", "a"}, roots)
}

func TestFeedCollectionsAndUsersAreSeparate(t *testing.T) {
	notes := &memoryNotes{}
	require.NoError(t, notes.Create(&models.Note{ID: "n1", OwnerID: "user-1", Title: "T", Content: "C"}))
	feed := NewFeedService(newMemoryPeople(), notes, 4)

	var noteSnapshots, otherUser []Snapshot
	cancelNotes := feed.Subscribe("user-1", CollectionNotes, func(s Snapshot) { noteSnapshots = append(noteSnapshots, s) })
	defer cancelNotes()
	cancelOther := feed.Subscribe("user-2", CollectionNotes, func(s Snapshot) { otherUser = append(otherUser, s) })
	defer cancelOther()
	drain(t, feed)

	feed.Publish("user-1", CollectionMembers)
	drain(t, feed)

	require.Len(t, noteSnapshots, 1)
	assert.Len(t, noteSnapshots[0].Notes, 1)
	require.Len(t, otherUser, 1)
	assert.Empty(t, otherUser[0].Notes)
}

func TestFeedUnsubscribe(t *testing.T) {
	feed := NewFeedService(newMemoryPeople(), &memoryNotes{}, 1)

	calls := 0
	cancel := feed.Subscribe("user-1", CollectionMembers, func(Snapshot) { calls++ })
	cancel()
	cancel()

	// The initial event is still queued but nobody listens anymore
	drain(t, feed)
	feed.Publish("user-1", CollectionMembers)

	assert.Equal(t, 0, drain(t, feed))
	assert.Equal(t, 0, calls)
}
