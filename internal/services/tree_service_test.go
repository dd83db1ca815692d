package services

import (
	"testing"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChart(t *testing.T) {
	members := []*models.Person{
		person("dad", models.GenderMale, "mom", nil, []string{"kid"}),
		person("mom", models.GenderFemale, "dad", nil, []string{"kid"}),
		person("kid", "", "", []string{"mom", "dad", "outside"}, nil),
	}
	members[2].PhotoURL = "https://photos.test/kid.jpg"

	chart := BuildChart(members, "dad")

	assert.Equal(t, "dad", chart.RootID)
	require.Len(t, chart.Nodes, 3)

	dad := chart.Nodes[0]
	assert.Equal(t, []string{"mom"}, dad.PartnerID)
	assert.Empty(t, dad.FatherID)
	assert.Empty(t, dad.MotherID)

	kid := chart.Nodes[2]
	assert.Equal(t, "dad", kid.FatherID)
	assert.Equal(t, "mom", kid.MotherID)
	assert.Equal(t, "unknown", kid.Gender)
	assert.Equal(t, "https://photos.test/kid.jpg", kid.Photo)
	assert.Nil(t, kid.PartnerID)
}

func TestBuildChartUnknownGenderParent(t *testing.T) {
	members := []*models.Person{
		person("p", models.GenderUnknown, "", nil, []string{"c"}),
		person("c", models.GenderUnknown, "", []string{"p"}, nil),
	}

	chart := BuildChart(members, "p")

	// A parent without gender cannot be placed as father or mother
	assert.Empty(t, chart.Nodes[1].FatherID)
	assert.Empty(t, chart.Nodes[1].MotherID)
}
