package ingest

import (
	"taod/internal/models"
)

// Column positions in the main file.
const (
	colPrefecture    = 1
	colPoliceStation = 2
	colMainNumber    = 3
	colRoute         = 7
	colCity          = 9
	colOccurredAt    = 10
	colSunrise       = 16
	colSunset        = 18
	colLocation      = 60
)

// CityCodes maps a prefecture code plus municipality code of the main file to
// the JIS municipality code.
type CityCodes map[string]string

// Accident decodes one row of the main file.
func (d *Decoder) Accident(row Row, cities CityCodes) (*models.Accident, error) {
	prefecture, err := row.String(colPrefecture)
	if err != nil {
		return nil, err
	}
	city, err := row.String(colCity)
	if err != nil {
		return nil, err
	}
	jis, ok := cities[prefecture+city]
	if !ok {
		return nil, referenceError(row.Num(), colCity+1, "city code", prefecture+city)
	}

	route, err := row.String(colRoute)
	if err != nil {
		return nil, err
	}
	if len(route) != 5 || !isDigits(route) {
		return nil, rangeError(row.Num(), colRoute+1, &RangeError{Field: "route", Value: route})
	}

	a := &models.Accident{
		ID:             d.newID(),
		PrefectureCode: prefecture,
		RouteCode:      route[0:4],
		RouteClassCode: route[4:5],
		CityJISCode:    jis,
	}

	r := rowReader{row: row}
	a.PoliceStationCode = r.str(colPoliceStation)
	a.MainNumber = r.integer(colMainNumber)
	a.AccidentDetailCode = r.str(4)
	a.NumberOfDeaths = r.integer(5)
	a.NumberOfInjuries = r.integer(6)
	a.LocationCode = r.integer(8)
	if r.err == nil {
		a.OccurredAt, r.err = row.DateTime(colOccurredAt)
	}
	a.DayNightCode = r.str(15)
	if r.err == nil {
		a.SunriseTime, r.err = row.TimeOfDay(colSunrise)
	}
	if r.err == nil {
		a.SunsetTime, r.err = row.TimeOfDay(colSunset)
	}
	a.WeatherCode = r.str(20)
	a.DistrictCode = r.str(21)
	a.SurfaceConditionCode = r.str(22)
	a.RoadModelCode = r.str(23)
	a.TrafficSignalCode = r.str(24)
	a.StopRegulationSignACode = r.str(25)
	a.StopRegulationDisplayACode = r.str(26)
	a.StopRegulationSignBCode = r.str(27)
	a.StopRegulationDisplayBCode = r.str(28)
	a.RoadWidthCode = r.str(29)
	a.RoadAlignmentCode = r.str(30)
	a.CollisionPointCode = r.str(31)
	a.ZoneRegulationCode = r.str(32)
	a.CentralSeparationCode = r.str(33)
	a.RoadSegmentationCode = r.str(34)
	a.AccidentTypeCode = r.str(35)
	a.AgeACode = r.str(36)
	a.AgeBCode = r.str(37)
	a.PartyACode = r.str(38)
	a.PartyBCode = r.str(39)
	a.PurposeACode = r.str(40)
	a.PurposeBCode = r.str(41)
	a.VehicleTypeACode = r.str(42)
	a.VehicleTypeBCode = r.str(43)
	a.AutomaticACode = r.str(44)
	a.AutomaticBCode = r.str(45)
	a.SupportCarACode = r.str(46)
	a.SupportCarBCode = r.str(47)
	a.SpeedRegulationACode = r.str(48)
	a.SpeedRegulationBCode = r.str(49)
	a.CollisionPartA = r.str(50)
	a.CollisionPartB = r.str(51)
	a.VehicleDamageACode = r.str(52)
	a.VehicleDamageBCode = r.str(53)
	a.AirbagACode = r.str(54)
	a.AirbagBCode = r.str(55)
	a.SideAirbagACode = r.str(56)
	a.SideAirbagBCode = r.str(57)
	a.InjuryACode = r.str(58)
	a.InjuryBCode = r.str(59)
	if r.err == nil {
		a.Location, r.err = row.Point(colLocation)
	}
	a.WeekCode = r.str(62)
	a.HolidayCode = r.str(63)
	a.CognitiveDaysA = r.integer(64)
	a.CognitiveDaysB = r.integer(65)
	a.DrivingPracticeACode = r.str(66)
	a.DrivingPracticeBCode = r.str(67)

	if r.err != nil {
		return nil, r.err
	}
	return a, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// rowReader keeps the first error of a long run of column reads.
type rowReader struct {
	row Row
	err error
}

func (r *rowReader) str(col int) string {
	if r.err != nil {
		return ""
	}
	var v string
	v, r.err = r.row.String(col)
	return v
}

func (r *rowReader) optional(col int) *string {
	if r.err != nil {
		return nil
	}
	var v *string
	v, r.err = r.row.OptionalString(col)
	return v
}

func (r *rowReader) integer(col int) int32 {
	if r.err != nil {
		return 0
	}
	var v int32
	v, r.err = r.row.Int(col)
	return v
}

// Both files carry the natural key in the same columns.
func readIdentifier(row Row) (models.AccidentIdentifier, error) {
	r := rowReader{row: row}
	id := models.AccidentIdentifier{
		PrefectureCode:    r.str(colPrefecture),
		PoliceStationCode: r.str(colPoliceStation),
		MainNumber:        r.integer(colMainNumber),
	}
	return id, r.err
}
