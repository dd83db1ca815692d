package services

import "github.com/alimgiray/familytree/internal/models"

// ChartNode is one person as the family tree chart expects it
type ChartNode struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Gender    string   `json:"gender"`
	BirthDate string   `json:"birthDate"`
	DeathDate string   `json:"deathDate"`
	Photo     string   `json:"photo"`
	FatherID  string   `json:"fid,omitempty"`
	MotherID  string   `json:"mid,omitempty"`
	PartnerID []string `json:"pids,omitempty"`
}

// ChartData is everything the chart needs to draw the tree
type ChartData struct {
	RootID string      `json:"rootId"`
	Nodes  []ChartNode `json:"nodes"`
}

// BuildChart maps members to chart nodes. Father and mother are the first
// listed parents found with male and female gender; parents missing from
// members are left out.
func BuildChart(members []*models.Person, rootID string) *ChartData {
	index := indexPeople(members)
	nodes := make([]ChartNode, 0, len(members))

	for _, m := range members {
		gender := m.Gender
		if gender == "" {
			gender = models.GenderUnknown
		}

		node := ChartNode{
			ID:        m.ID,
			Name:      m.Name,
			Gender:    string(gender),
			BirthDate: m.BirthDate,
			DeathDate: m.DeathDate,
			Photo:     m.PhotoURL,
		}

		for _, parentID := range m.ParentIDs {
			parent, ok := index[parentID]
			if !ok {
				continue
			}
			switch parent.Gender {
			case models.GenderMale:
				if node.FatherID == "" {
					node.FatherID = parent.ID
				}
			case models.GenderFemale:
				if node.MotherID == "" {
					node.MotherID = parent.ID
				}
			}
		}

		if m.SpouseID != "" {
			node.PartnerID = []string{m.SpouseID}
		}

		nodes = append(nodes, node)
	}

	return &ChartData{RootID: rootID, Nodes: nodes}
}
