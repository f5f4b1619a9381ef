package ingest

import (
	"errors"
	"strings"
	"testing"

	"taod/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supportRow = "1,10,059,0001,1,61,,,1,0,00,2,2,4,,"

func testCorrelator(id uuid.UUID) *Correlator {
	return NewCorrelator([]models.Accident{{
		ID:                id,
		PrefectureCode:    "10",
		PoliceStationCode: "059",
		MainNumber:        1,
	}})
}

func TestDecoder_InvolvedPerson(t *testing.T) {
	accidentID := uuid.New()
	personID := uuid.New()
	d := NewDecoder(WithIDGenerator(func() uuid.UUID { return personID }))

	p, err := d.InvolvedPerson(NewRow(1, strings.Split(supportRow, ","), true), testCorrelator(accidentID))
	require.NoError(t, err)

	assert.Equal(t, personID, p.ID)
	assert.Equal(t, accidentID, p.AccidentID)
	assert.Equal(t, int32(1), p.SubNumber)
	assert.Equal(t, "61", p.PartyCode)
	assert.Nil(t, p.PurposeCode)
	assert.Nil(t, p.VehicleTypeCode)
	assert.Equal(t, "1", p.RidingTypeCode)
	assert.Equal(t, "0", p.RidingClassCode)
	assert.Equal(t, "00", p.SupportCarCode)
	assert.Equal(t, "2", p.AirbagCode)
	assert.Equal(t, "2", p.SideAirbagCode)
	assert.Equal(t, "4", p.InjuryCode)
	assert.Nil(t, p.CollisionPart)
	assert.Nil(t, p.VehicleDamageCode)
}

func TestDecoder_InvolvedPerson_OptionalCodesPresent(t *testing.T) {
	cells := strings.Split(supportRow, ",")
	cells[6] = "31"
	cells[7] = "0"
	cells[14] = "30"
	cells[15] = "3"

	p, err := NewDecoder().InvolvedPerson(NewRow(1, cells, true), testCorrelator(uuid.New()))
	require.NoError(t, err)
	require.NotNil(t, p.PurposeCode)
	assert.Equal(t, "31", *p.PurposeCode)
	require.NotNil(t, p.VehicleTypeCode)
	assert.Equal(t, "0", *p.VehicleTypeCode)
	require.NotNil(t, p.CollisionPart)
	assert.Equal(t, "30", *p.CollisionPart)
	require.NotNil(t, p.VehicleDamageCode)
	assert.Equal(t, "3", *p.VehicleDamageCode)
}

func TestDecoder_InvolvedPerson_UnknownAccident(t *testing.T) {
	cells := strings.Split(supportRow, ",")
	cells[3] = "0002"

	p, err := NewDecoder().InvolvedPerson(NewRow(7, cells, true), testCorrelator(uuid.New()))
	assert.Nil(t, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, KindReference, derr.Kind)
	assert.Equal(t, 7, derr.Row)
	assert.Equal(t, "prefecture=10 police_station=059 main_number=2", derr.Key)
	assert.Contains(t, err.Error(), derr.Key)
}

func TestDecoder_InvolvedPerson_MalformedRows(t *testing.T) {
	tests := []struct {
		name   string
		cells  []string
		target error
		column int
	}{
		{
			name:   "non-numeric main number",
			cells:  []string{"1", "10", "059", "abc"},
			target: ErrNonNumeric,
			column: 4,
		},
		{
			name:   "non-numeric sub number",
			cells:  strings.Split(strings.Replace(supportRow, "0001,1,", "0001,x,", 1), ","),
			target: ErrNonNumeric,
			column: 5,
		},
		{
			name:   "truncated row",
			cells:  strings.Split(supportRow, ",")[:15],
			target: ErrColumnOutOfRange,
			column: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder().InvolvedPerson(NewRow(1, tt.cells, true), testCorrelator(uuid.New()))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var derr *DecodeError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.column, derr.Column)
		})
	}
}
