package scramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	assert.Len(t, c.Stations, 8)

	pico, ok := c.StationByName("Pico")
	require.True(t, ok)
	assert.True(t, pico.HasLine(LineE))
	assert.False(t, pico.HasLine(LineA))

	// Pico on line E carries a pool of three candidates.
	assert.Len(t, c.TemplatesFor("Pico", LineE), 3)

	// Line-restricted templates only show up for their line.
	forA := c.TemplatesFor("7th Street/Metro Center", LineA)
	forD := c.TemplatesFor("7th Street/Metro Center", LineD)
	assert.Greater(t, len(forA), len(forD))
}

func TestCatalogValidateRejectsUnknownStation(t *testing.T) {
	c := &Catalog{
		Stations: []Station{{Name: "Pico", Lines: []Line{LineE}}},
		Templates: []ChallengeTemplate{
			{Title: "x", Station: "Nowhere"},
		},
	}
	assert.Error(t, c.Validate())
}

func TestCatalogValidateRejectsUncoveredStationLine(t *testing.T) {
	c := &Catalog{
		Stations: []Station{{Name: "Pico", Lines: []Line{LineE}}},
	}
	assert.Error(t, c.Validate())
}

func TestParseLine(t *testing.T) {
	l, err := ParseLine("E")
	require.NoError(t, err)
	assert.Equal(t, LineE, l)
	assert.NotEmpty(t, l.Color())

	_, err = ParseLine("Z")
	assert.ErrorIs(t, err, ErrUnknownLine)
}
