package services

import (
	"testing"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWorkbook(t *testing.T) {
	members := []*models.Person{
		person("a", models.GenderMale, "b", nil, []string{"c"}),
		person("b", models.GenderFemale, "a", nil, []string{"c"}),
		person("c", models.GenderUnknown, "", []string{"a", "b"}, nil),
	}
	members[0].BirthDate = "1950-01-02"
	notes := []*models.Note{
		{ID: "n1", Title: "Harvest", Content: "The year of the big harvest", RelatedPersonID: "a"},
	}

	f, err := NewExportService().Workbook(members, notes)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Members", "Stories"}, f.GetSheetList())

	rows, err := f.GetRows("Members")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, []string{"Person a", "male", "1950-01-02", "", "", "", "Person b", "", "Person c"}, rows[1])
	assert.Equal(t, "Person a, Person b", rows[3][7])

	stories, err := f.GetRows("Stories")
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, []string{"Harvest", "Person a", "The year of the big harvest"}, stories[1])
}

func TestExportWorkbookEmpty(t *testing.T) {
	f, err := NewExportService().Workbook(nil, nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Members")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
