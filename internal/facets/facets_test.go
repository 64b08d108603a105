package facets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"homescout/server/internal/models"
)

func TestExtract(t *testing.T) {
	records := []models.Listing{
		{MLSNumber: "1", City: "Toronto", Neighbourhood: "X"},
		{MLSNumber: "2", City: "Toronto", Neighbourhood: "X"},
		{MLSNumber: "3", City: "Mississauga", Neighbourhood: "Y"},
	}

	fs := Extract(records)

	assert.Equal(t, []string{"X", "Y"}, fs.Communities)
	assert.Equal(t, map[string]int{"X": 2, "Y": 1}, fs.CommunityCounts)
	assert.Equal(t, map[string]int{"Toronto": 2, "Mississauga": 1}, fs.CityCounts)
}

func TestExtract_SkipsEmptyFields(t *testing.T) {
	records := []models.Listing{
		{MLSNumber: "1", City: "Toronto"},
		{MLSNumber: "2", Neighbourhood: "X"},
		{MLSNumber: "3"},
	}

	fs := Extract(records)

	assert.Equal(t, []string{"X"}, fs.Communities)
	assert.Equal(t, map[string]int{"Toronto": 1}, fs.CityCounts)
}

func TestExtract_Empty(t *testing.T) {
	fs := Extract(nil)
	assert.Empty(t, fs.Communities)
	assert.Empty(t, fs.CommunityCounts)
	assert.Empty(t, fs.CityCounts)
}

func TestTopCities(t *testing.T) {
	records := []models.Listing{
		{MLSNumber: "1", City: "Toronto"},
		{MLSNumber: "2", City: "Toronto"},
		{MLSNumber: "3", City: "Toronto"},
		{MLSNumber: "4", City: "Brampton"},
		{MLSNumber: "5", City: "Brampton"},
		{MLSNumber: "6", City: "Ajax"},
		{MLSNumber: "7", City: "Markham"},
	}

	fs := Extract(records)

	assert.Equal(t, []string{"Toronto", "Brampton", "Ajax", "Markham"}, fs.TopCities(DefaultTopCities),
		"ordered by count descending, ties alphabetical")
	assert.Equal(t, []string{"Toronto", "Brampton"}, fs.TopCities(2))
}
