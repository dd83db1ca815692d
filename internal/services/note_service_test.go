package services

import (
	"testing"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteService(t *testing.T) {
	t.Run("Create, update and delete", func(t *testing.T) {
		notes := &memoryNotes{}
		publisher := &recordingPublisher{}
		service := NewNoteService(notes, newMemoryPeople(person("a", models.GenderFemale, "", nil, nil)), publisher)

		created, err := service.SaveNote(ownerSession, &models.Note{Title: " First winter ", Content: "Snow", RelatedPersonID: "a"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "First winter", created.Title)
		assert.Equal(t, "user-1", created.OwnerID)

		created.Content = "Lots of snow"
		_, err = service.SaveNote(ownerSession, created)
		require.NoError(t, err)

		list, err := service.ListNotes(ownerSession)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Lots of snow", list[0].Content)

		require.NoError(t, service.DeleteNote(ownerSession, created.ID))
		list, err = service.ListNotes(ownerSession)
		require.NoError(t, err)
		assert.Empty(t, list)

		assert.Equal(t, 3, publisher.count(CollectionNotes))
	})

	t.Run("Title and content are required", func(t *testing.T) {
		service := NewNoteService(&memoryNotes{}, newMemoryPeople(), nil)

		_, err := service.SaveNote(ownerSession, &models.Note{Title: "", Content: " "})

		var validationErrs models.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Len(t, validationErrs, 2)
	})

	t.Run("Related member must exist", func(t *testing.T) {
		notes := &memoryNotes{}
		service := NewNoteService(notes, newMemoryPeople(person("a", models.GenderMale, "", nil, nil)), nil)

		_, err := service.SaveNote(ownerSession, &models.Note{Title: "T", Content: "C", RelatedPersonID: "no-such-member"})

		var validationErrs models.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		require.Len(t, validationErrs, 1)
		assert.Equal(t, "relatedPersonId", validationErrs[0].Field)
		assert.Empty(t, notes.notes)

		created, err := service.SaveNote(ownerSession, &models.Note{Title: "T", Content: "C", RelatedPersonID: "a"})
		require.NoError(t, err)
		created.RelatedPersonID = "gone"
		_, err = service.SaveNote(ownerSession, created)
		require.ErrorAs(t, err, &validationErrs)
	})

	t.Run("Unknown note", func(t *testing.T) {
		service := NewNoteService(&memoryNotes{}, newMemoryPeople(), nil)

		_, err := service.SaveNote(ownerSession, &models.Note{ID: "missing", Title: "T", Content: "C"})
		assert.ErrorIs(t, err, ErrNoteNotFound)
		assert.ErrorIs(t, service.DeleteNote(ownerSession, "missing"), ErrNoteNotFound)
	})

	t.Run("Guests cannot write and see nothing", func(t *testing.T) {
		notes := &memoryNotes{}
		service := NewNoteService(notes, newMemoryPeople(), nil)
		guest := models.Session{UserID: "g", Mode: models.SessionGuest}

		_, err := service.SaveNote(guest, &models.Note{Title: "T", Content: "C"})
		assert.ErrorIs(t, err, ErrGuestMode)
		assert.ErrorIs(t, service.DeleteNote(guest, "x"), ErrGuestMode)
		assert.Empty(t, notes.notes)

		list, err := service.ListNotes(guest)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
