package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender of a family member, the chart uses it to tell fathers from mothers
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Person is a single family member owned by one user
type Person struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	Name       string    `json:"name"`
	Gender     Gender    `json:"gender"`
	BirthDate  string    `json:"birthDate"`
	DeathDate  string    `json:"deathDate"`
	BirthPlace string    `json:"birthPlace"`
	DeathPlace string    `json:"deathPlace"`
	PhotoURL   string    `json:"photoUrl"`
	SpouseID   string    `json:"spouseId"`
	ParentIDs  []string  `json:"parentIds"`
	ChildIDs   []string  `json:"childIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewPerson creates a new Person with a generated UUID
func NewPerson(ownerID string) *Person {
	return &Person{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Gender:    GenderUnknown,
		ParentIDs: []string{},
		ChildIDs:  []string{},
	}
}

// Relations is the relationship part of a person record
type Relations struct {
	SpouseID  string   `json:"spouseId"`
	ParentIDs []string `json:"parentIds"`
	ChildIDs  []string `json:"childIds"`
}

// Relations returns a copy of the person's relationship fields
func (p *Person) Relations() Relations {
	return Relations{
		SpouseID:  p.SpouseID,
		ParentIDs: append([]string{}, p.ParentIDs...),
		ChildIDs:  append([]string{}, p.ChildIDs...),
	}
}

// PersonDraft is what a user submits from the member form.
// ID is empty when a new member is being created.
type PersonDraft struct {
	ID         string   `json:"id" form:"id"`
	Name       string   `json:"name" form:"name" validate:"required,max=200"`
	Gender     Gender   `json:"gender" form:"gender" validate:"omitempty,gender"`
	BirthDate  string   `json:"birthDate" form:"birthDate" validate:"max=64"`
	DeathDate  string   `json:"deathDate" form:"deathDate" validate:"max=64"`
	BirthPlace string   `json:"birthPlace" form:"birthPlace" validate:"max=200"`
	DeathPlace string   `json:"deathPlace" form:"deathPlace" validate:"max=200"`
	PhotoURL   string   `json:"photoUrl" form:"photoUrl" validate:"omitempty,url|startswith=/"`
	SpouseID   string   `json:"spouseId" form:"spouseId"`
	ParentIDs  []string `json:"parentIds" form:"parentIds"`
	ChildIDs   []string `json:"childIds" form:"childIds"`
}

// Relations returns the submitted relationship fields
func (d *PersonDraft) Relations() Relations {
	return Relations{
		SpouseID:  d.SpouseID,
		ParentIDs: append([]string{}, d.ParentIDs...),
		ChildIDs:  append([]string{}, d.ChildIDs...),
	}
}

// PersonChanges is a partial update of a person record; nil fields are left untouched
type PersonChanges struct {
	Name       *string  `json:"name,omitempty"`
	Gender     *Gender  `json:"gender,omitempty"`
	BirthDate  *string  `json:"birthDate,omitempty"`
	DeathDate  *string  `json:"deathDate,omitempty"`
	BirthPlace *string  `json:"birthPlace,omitempty"`
	DeathPlace *string  `json:"deathPlace,omitempty"`
	PhotoURL   *string  `json:"photoUrl,omitempty"`
	SpouseID   *string  `json:"spouseId,omitempty"`
	ParentIDs  []string `json:"parentIds"`
	ChildIDs   []string `json:"childIds"`
}

// IsEmpty reports whether the changes would touch no field at all
func (c PersonChanges) IsEmpty() bool {
	return c.Name == nil && c.Gender == nil && c.BirthDate == nil && c.DeathDate == nil &&
		c.BirthPlace == nil && c.DeathPlace == nil && c.PhotoURL == nil && c.SpouseID == nil &&
		c.ParentIDs == nil && c.ChildIDs == nil
}

// Apply writes the changes into p
func (c PersonChanges) Apply(p *Person) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Gender != nil {
		p.Gender = *c.Gender
	}
	if c.BirthDate != nil {
		p.BirthDate = *c.BirthDate
	}
	if c.DeathDate != nil {
		p.DeathDate = *c.DeathDate
	}
	if c.BirthPlace != nil {
		p.BirthPlace = *c.BirthPlace
	}
	if c.DeathPlace != nil {
		p.DeathPlace = *c.DeathPlace
	}
	if c.PhotoURL != nil {
		p.PhotoURL = *c.PhotoURL
	}
	if c.SpouseID != nil {
		p.SpouseID = *c.SpouseID
	}
	if c.ParentIDs != nil {
		p.ParentIDs = append([]string{}, c.ParentIDs...)
	}
	if c.ChildIDs != nil {
		p.ChildIDs = append([]string{}, c.ChildIDs...)
	}
}

// UpdateIntent is one update to apply to a related record
type UpdateIntent struct {
	TargetID string        `json:"targetId"`
	Changes  PersonChanges `json:"changes"`
}
