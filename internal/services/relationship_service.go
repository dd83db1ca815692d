package services

import (
	"fmt"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/logger"
)

// maxParents is the number of biological parents a person may list
const maxParents = 2

// SanitizeRelations drops empty ids, self references and duplicates.
func SanitizeRelations(selfID string, r models.Relations) models.Relations {
	clean := models.Relations{
		ParentIDs: uniqueIDs(selfID, r.ParentIDs),
		ChildIDs:  uniqueIDs(selfID, r.ChildIDs),
	}
	if r.SpouseID != selfID {
		clean.SpouseID = r.SpouseID
	}
	return clean
}

func uniqueIDs(selfID string, ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == selfID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ValidateRelations checks the parent limits that sanitizing cannot fix.
// next must already be sanitized.
func ValidateRelations(personID string, next models.Relations, all []*models.Person) error {
	var errs models.ValidationErrors

	if len(next.ParentIDs) > maxParents {
		errs = append(errs, &models.ValidationError{
			Field:   "parentIds",
			Message: fmt.Sprintf("A person can have at most %d parents", maxParents),
		})
	}

	index := indexPeople(all)
	for _, childID := range next.ChildIDs {
		child, ok := index[childID]
		if !ok {
			continue
		}
		parents := uniqueIDs("", append(append([]string{}, child.ParentIDs...), personID))
		if len(parents) > maxParents {
			errs = append(errs, &models.ValidationError{
				Field:   "childIds",
				Message: fmt.Sprintf("%s already has %d parents", child.Name, maxParents),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PlanSave computes the updates other records need after personID moved from
// previous (nil for a new person) to next. Changes are merged per target so
// every related record receives a single whole-array update.
func PlanSave(personID string, next models.Relations, previous *models.Person, all []*models.Person) []models.UpdateIntent {
	var old models.Relations
	if previous != nil {
		old = previous.Relations()
	}

	plan := newRelationshipPlan(all)

	if old.SpouseID != next.SpouseID {
		if old.SpouseID != "" {
			if oldSpouse, ok := plan.index[old.SpouseID]; ok && oldSpouse.SpouseID == personID {
				plan.setSpouse(old.SpouseID, "")
			}
		}
		if next.SpouseID != "" {
			if newSpouse, ok := plan.index[next.SpouseID]; ok {
				// The new spouse's current partner loses the link
				if third := newSpouse.SpouseID; third != "" && third != personID {
					if other, ok := plan.index[third]; ok && other.SpouseID == next.SpouseID {
						plan.setSpouse(third, "")
					}
				}
			}
			plan.setSpouse(next.SpouseID, personID)
		}
	}

	addedParents, removedParents := diffIDs(old.ParentIDs, next.ParentIDs)
	for _, parentID := range addedParents {
		plan.addChild(parentID, personID)
	}
	for _, parentID := range removedParents {
		plan.removeChild(parentID, personID)
	}

	addedChildren, removedChildren := diffIDs(old.ChildIDs, next.ChildIDs)
	for _, childID := range addedChildren {
		plan.addParent(childID, personID)
	}
	for _, childID := range removedChildren {
		plan.removeParent(childID, personID)
	}

	return plan.intents()
}

// PlanDelete computes the inverse removals for every record that points at personID.
func PlanDelete(personID string, all []*models.Person) []models.UpdateIntent {
	plan := newRelationshipPlan(all)

	for _, p := range all {
		if p.ID == personID {
			continue
		}
		if p.SpouseID == personID {
			plan.setSpouse(p.ID, "")
		}
		if containsID(p.ChildIDs, personID) {
			plan.removeChild(p.ID, personID)
		}
		if containsID(p.ParentIDs, personID) {
			plan.removeParent(p.ID, personID)
		}
	}

	return plan.intents()
}

// SelectRoot picks the person the chart is anchored on. A previous root that
// still exists is kept; otherwise the first person without known parents wins,
// falling back to the first person. Returns "" only for an empty list.
func SelectRoot(all []*models.Person, previousRootID string) string {
	if len(all) == 0 {
		return ""
	}

	index := indexPeople(all)
	if _, ok := index[previousRootID]; ok && previousRootID != "" {
		return previousRootID
	}

	for _, p := range all {
		if isRoot(p, index) {
			return p.ID
		}
	}

	return all[0].ID
}

func isRoot(p *models.Person, index map[string]*models.Person) bool {
	for _, parentID := range p.ParentIDs {
		if _, ok := index[parentID]; ok {
			return false
		}
	}
	return true
}

// pendingUpdate accumulates the edits for one related record
type pendingUpdate struct {
	spouse         *string
	addParents     []string
	removeParents  []string
	addChildren    []string
	removeChildren []string
}

type relationshipPlan struct {
	index   map[string]*models.Person
	order   []string
	pending map[string]*pendingUpdate
}

func newRelationshipPlan(all []*models.Person) *relationshipPlan {
	return &relationshipPlan{
		index:   indexPeople(all),
		pending: make(map[string]*pendingUpdate),
	}
}

func (p *relationshipPlan) target(id string) *pendingUpdate {
	if _, ok := p.index[id]; !ok {
		logger.WithField("target_id", id).Warn("Skipping relationship update for unknown person")
		return nil
	}
	u, ok := p.pending[id]
	if !ok {
		u = &pendingUpdate{}
		p.pending[id] = u
		p.order = append(p.order, id)
	}
	return u
}

func (p *relationshipPlan) setSpouse(targetID, spouseID string) {
	if u := p.target(targetID); u != nil {
		u.spouse = &spouseID
	}
}

func (p *relationshipPlan) addChild(targetID, childID string) {
	if u := p.target(targetID); u != nil {
		u.addChildren = append(u.addChildren, childID)
	}
}

func (p *relationshipPlan) removeChild(targetID, childID string) {
	if u := p.target(targetID); u != nil {
		u.removeChildren = append(u.removeChildren, childID)
	}
}

func (p *relationshipPlan) addParent(targetID, parentID string) {
	if u := p.target(targetID); u != nil {
		u.addParents = append(u.addParents, parentID)
	}
}

func (p *relationshipPlan) removeParent(targetID, parentID string) {
	if u := p.target(targetID); u != nil {
		u.removeParents = append(u.removeParents, parentID)
	}
}

// intents turns the pending edits into update intents, dropping the ones
// that would leave a record unchanged.
func (p *relationshipPlan) intents() []models.UpdateIntent {
	intents := make([]models.UpdateIntent, 0, len(p.order))

	for _, id := range p.order {
		current := p.index[id]
		u := p.pending[id]

		var changes models.PersonChanges
		if u.spouse != nil && *u.spouse != current.SpouseID {
			spouse := *u.spouse
			changes.SpouseID = &spouse
		}
		if len(u.addParents) > 0 || len(u.removeParents) > 0 {
			parents := applySetOps(current.ParentIDs, u.removeParents, u.addParents)
			if !sameIDs(parents, current.ParentIDs) {
				changes.ParentIDs = parents
			}
		}
		if len(u.addChildren) > 0 || len(u.removeChildren) > 0 {
			children := applySetOps(current.ChildIDs, u.removeChildren, u.addChildren)
			if !sameIDs(children, current.ChildIDs) {
				changes.ChildIDs = children
			}
		}

		if changes.IsEmpty() {
			continue
		}
		intents = append(intents, models.UpdateIntent{TargetID: id, Changes: changes})
	}

	return intents
}

// applySetOps returns (current - remove) ∪ add, keeping first-seen order
func applySetOps(current, remove, add []string) []string {
	removed := make(map[string]bool, len(remove))
	for _, id := range remove {
		removed[id] = true
	}

	out := make([]string, 0, len(current)+len(add))
	seen := make(map[string]bool, len(current)+len(add))
	for _, id := range current {
		if removed[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range add {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// diffIDs returns the ids only in next and the ids only in old
func diffIDs(old, next []string) (added, removed []string) {
	oldSet := make(map[string]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, id := range next {
		nextSet[id] = true
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !nextSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func indexPeople(all []*models.Person) map[string]*models.Person {
	index := make(map[string]*models.Person, len(all))
	for _, p := range all {
		index[p.ID] = p
	}
	return index
}
