package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-text family story, optionally tied to one person
type Note struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"-"`
	Title           string    `json:"title" validate:"required,max=200"`
	Content         string    `json:"content" validate:"required"`
	RelatedPersonID string    `json:"relatedPersonId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewNote(ownerID, title, content, relatedPersonID string) *Note {
	return &Note{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Title:           title,
		Content:         content,
		RelatedPersonID: relatedPersonID,
	}
}
