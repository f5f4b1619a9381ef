package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taod/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

const (
	mainHeader    = "資料区分,都道府県コード,警察署等コード,本票番号"
	supportHeader = "資料区分,都道府県コード,警察署等コード,本票番号,補充票番号"
)

// shiftJIS encodes lines as a Shift_JIS CSV file body.
func shiftJIS(t *testing.T, lines ...string) []byte {
	t.Helper()
	s, err := japanese.ShiftJIS.NewEncoder().String(strings.Join(lines, "\r\n") + "\r\n")
	require.NoError(t, err)
	return []byte(s)
}

func writeFile(t *testing.T, name string, body []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, body, 0o644))
	return path
}

func mainLine(station, number string) string {
	cells := strings.Split(mainRow, ",")
	cells[2] = station
	cells[3] = number
	return strings.Join(cells, ",")
}

func supportLine(station, number, sub string) string {
	cells := strings.Split(supportRow, ",")
	cells[2] = station
	cells[3] = number
	cells[4] = sub
	return strings.Join(cells, ",")
}

func TestDecoder_DecodeAccidents(t *testing.T) {
	body := shiftJIS(t, mainHeader, mainLine("059", "0001"), mainLine("059", "0002"), mainLine("060", "0001"))

	accidents, err := NewDecoder().DecodeAccidents(context.Background(), bytes.NewReader(body), testCities())
	require.NoError(t, err)
	require.Len(t, accidents, 3)

	assert.Equal(t, "059", accidents[0].PoliceStationCode)
	assert.Equal(t, int32(1), accidents[0].MainNumber)
	assert.Equal(t, int32(2), accidents[1].MainNumber)
	assert.Equal(t, "060", accidents[2].PoliceStationCode)
	assert.NotEqual(t, accidents[0].ID, accidents[1].ID)
}

func TestDecoder_DecodeAccidents_HeaderOnly(t *testing.T) {
	accidents, err := NewDecoder().DecodeAccidents(context.Background(), bytes.NewReader(shiftJIS(t, mainHeader)), testCities())
	require.NoError(t, err)
	assert.Empty(t, accidents)

	accidents, err = NewDecoder().DecodeAccidents(context.Background(), bytes.NewReader(nil), testCities())
	require.NoError(t, err)
	assert.Empty(t, accidents)
}

func TestDecoder_DecodeAccidents_StopsAtFirstBadRow(t *testing.T) {
	bad := strings.Replace(mainLine("059", "0002"), ",2022,01,", ",2022,13,", 1)
	worse := strings.Replace(mainLine("059", "0003"), ",104,", ",999,", 1)
	body := shiftJIS(t, mainHeader, mainLine("059", "0001"), bad, worse)

	accidents, err := NewDecoder().DecodeAccidents(context.Background(), bytes.NewReader(body), testCities())
	assert.Nil(t, accidents)
	require.Error(t, err)

	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, KindRange, derr.Kind)
	assert.Equal(t, 2, derr.Row)
	assert.Equal(t, 12, derr.Column)
	assert.Equal(t, "row 2, column 12: month (13) out of range", err.Error())
}

func TestDecoder_DecodeAccidents_Cancelled(t *testing.T) {
	prev := ContextCheckInterval
	ContextCheckInterval = 1
	t.Cleanup(func() { ContextCheckInterval = prev })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := shiftJIS(t, mainHeader, mainLine("059", "0001"))
	_, err := NewDecoder().DecodeAccidents(ctx, bytes.NewReader(body), testCities())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecoder_DecodeAccidents_CheckDisabled(t *testing.T) {
	prev := ContextCheckInterval
	ContextCheckInterval = 0
	t.Cleanup(func() { ContextCheckInterval = prev })

	body := shiftJIS(t, mainHeader, mainLine("059", "0001"))
	accidents, err := NewDecoder().DecodeAccidents(context.Background(), bytes.NewReader(body), testCities())
	require.NoError(t, err)
	assert.Len(t, accidents, 1)
}

func TestDecoder_DecodeAccidents_MalformedCSV(t *testing.T) {
	body := shiftJIS(t, mainHeader, mainLine("059", "0001"), `1,10,"059`+`"x,0002`)

	_, err := NewDecoder().DecodeAccidents(context.Background(), bytes.NewReader(body), testCities())
	require.Error(t, err)

	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, KindStructural, derr.Kind)
	assert.Equal(t, 2, derr.Row)
	assert.Positive(t, derr.Column)
}

func TestDecoder_Decode(t *testing.T) {
	mainPath := writeFile(t, "main.csv", shiftJIS(t, mainHeader, mainLine("059", "0001"), mainLine("059", "0002")))
	supportPath := writeFile(t, "support.csv", shiftJIS(t, supportHeader,
		supportLine("059", "0002", "1"),
		supportLine("059", "0001", "1"),
		supportLine("059", "0002", "2"),
	))

	batch, err := NewDecoder().Decode(context.Background(), mainPath, supportPath, testCities())
	require.NoError(t, err)
	require.Len(t, batch.Accidents, 2)
	require.Len(t, batch.InvolvedPersons, 3)
	assert.Empty(t, batch.Duplicates)

	first, second := batch.Accidents[0], batch.Accidents[1]
	assert.Equal(t, second.ID, batch.InvolvedPersons[0].AccidentID)
	assert.Equal(t, first.ID, batch.InvolvedPersons[1].AccidentID)
	assert.Equal(t, second.ID, batch.InvolvedPersons[2].AccidentID)
	assert.Equal(t, int32(2), batch.InvolvedPersons[2].SubNumber)
}

func TestDecoder_Decode_UnresolvedParent(t *testing.T) {
	mainPath := writeFile(t, "main.csv", shiftJIS(t, mainHeader, mainLine("059", "0001")))
	supportPath := writeFile(t, "support.csv", shiftJIS(t, supportHeader,
		supportLine("059", "0001", "1"),
		supportLine("061", "0001", "1"),
	))

	batch, err := NewDecoder().Decode(context.Background(), mainPath, supportPath, testCities())
	assert.Nil(t, batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), supportPath)
	assert.Contains(t, err.Error(), "row 2: accident prefecture=10 police_station=061 main_number=1")
}

func TestDecoder_Decode_MissingFile(t *testing.T) {
	supportPath := writeFile(t, "support.csv", shiftJIS(t, supportHeader))

	_, err := NewDecoder().Decode(context.Background(), filepath.Join(t.TempDir(), "none.csv"), supportPath, testCities())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecoder_Decode_ReportsDuplicates(t *testing.T) {
	mainPath := writeFile(t, "main.csv", shiftJIS(t, mainHeader, mainLine("059", "0001"), mainLine("059", "0001")))
	supportPath := writeFile(t, "support.csv", shiftJIS(t, supportHeader, supportLine("059", "0001", "1")))

	batch, err := NewDecoder().Decode(context.Background(), mainPath, supportPath, testCities())
	require.NoError(t, err)
	require.Len(t, batch.Duplicates, 1)
	assert.Equal(t, batch.Accidents[1].ID, batch.InvolvedPersons[0].AccidentID)
}

func TestDecoder_Decode_Idempotent(t *testing.T) {
	mainPath := writeFile(t, "main.csv", shiftJIS(t, mainHeader, mainLine("059", "0001"), mainLine("060", "0007")))
	supportPath := writeFile(t, "support.csv", shiftJIS(t, supportHeader,
		supportLine("060", "0007", "1"),
		supportLine("059", "0001", "1"),
	))

	d := NewDecoder()
	a, err := d.Decode(context.Background(), mainPath, supportPath, testCities())
	require.NoError(t, err)
	b, err := d.Decode(context.Background(), mainPath, supportPath, testCities())
	require.NoError(t, err)

	assert.NotEqual(t, a.Accidents[0].ID, b.Accidents[0].ID)
	accidentsA, personsA := withoutIDs(a)
	accidentsB, personsB := withoutIDs(b)
	assert.Equal(t, accidentsA, accidentsB)
	assert.Equal(t, personsA, personsB)
}

func withoutIDs(b *Batch) ([]models.Accident, []models.InvolvedPerson) {
	accidents := make([]models.Accident, len(b.Accidents))
	for i, a := range b.Accidents {
		a.ID = uuid.Nil
		accidents[i] = a
	}
	persons := make([]models.InvolvedPerson, len(b.InvolvedPersons))
	for i, p := range b.InvolvedPersons {
		p.ID = uuid.Nil
		p.AccidentID = uuid.Nil
		persons[i] = p
	}
	return accidents, persons
}
