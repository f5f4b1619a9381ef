package ingest

import (
	"testing"

	"taod/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCorrelator(t *testing.T) {
	first, second, third := uuid.New(), uuid.New(), uuid.New()
	accidents := []models.Accident{
		{ID: first, PrefectureCode: "10", PoliceStationCode: "059", MainNumber: 1},
		{ID: second, PrefectureCode: "10", PoliceStationCode: "059", MainNumber: 2},
		{ID: third, PrefectureCode: "10", PoliceStationCode: "059", MainNumber: 1},
	}

	c := NewCorrelator(accidents)
	assert.Equal(t, 2, c.Len())

	got, ok := c.Resolve(models.AccidentIdentifier{PrefectureCode: "10", PoliceStationCode: "059", MainNumber: 2})
	assert.True(t, ok)
	assert.Equal(t, second, got)

	// last write wins
	got, ok = c.Resolve(accidents[0].Identifier())
	assert.True(t, ok)
	assert.Equal(t, third, got)
	assert.Equal(t, []models.AccidentIdentifier{accidents[0].Identifier()}, c.Duplicates())

	_, ok = c.Resolve(models.AccidentIdentifier{PrefectureCode: "10", PoliceStationCode: "060", MainNumber: 1})
	assert.False(t, ok)
}

func TestCorrelator_Empty(t *testing.T) {
	c := NewCorrelator(nil)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Duplicates())

	_, ok := c.Resolve(models.AccidentIdentifier{})
	assert.False(t, ok)
}
