package ingest

import (
	"strconv"
	"time"

	"taod/internal/models"
)

// JST is the fixed +09:00 offset every occurrence time is recorded in.
var JST = time.FixedZone("+09:00", 9*60*60)

// OffsetDateTime assembles a +09:00 timestamp with zero seconds. Components are
// checked in order: month, calendar date, hour, minute.
func OffsetDateTime(year, month, day, hour, minute int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, &RangeError{Field: "month", Value: strconv.Itoa(month), Offset: 1}
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, &RangeError{Field: "day", Value: strconv.Itoa(day), Offset: 2}
	}
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		err.(*RangeError).Offset += 3
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, t.Hour, t.Minute, 0, 0, JST), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewTimeOfDay validates hour (0-23) and minute (0-59).
func NewTimeOfDay(hour, minute int) (models.TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return models.TimeOfDay{}, &RangeError{Field: "hour", Value: strconv.Itoa(hour)}
	}
	if minute < 0 || minute > 59 {
		return models.TimeOfDay{}, &RangeError{Field: "minute", Value: strconv.Itoa(minute), Offset: 1}
	}
	return models.TimeOfDay{Hour: hour, Minute: minute}, nil
}

// DMSToLatitude converts a DDMMSSsss... string (2-digit degrees, 2-digit
// minutes, the rest seconds x1000) to decimal degrees.
func DMSToLatitude(s string) (float64, error) {
	return dmsToDegrees(s, 2, 90, "latitude")
}

// DMSToLongitude converts a DDDMMSSsss... string (3-digit degrees) to decimal
// degrees.
func DMSToLongitude(s string) (float64, error) {
	return dmsToDegrees(s, 3, 180, "longitude")
}

func dmsToDegrees(s string, degreeDigits int, maxDegrees uint64, field string) (float64, error) {
	bad := &RangeError{Field: field, Value: s}
	if len(s) <= degreeDigits+2 {
		return 0, bad
	}
	if !isDigits(s) {
		return 0, bad
	}

	degrees, err := strconv.ParseUint(s[:degreeDigits], 10, 64)
	if err != nil || degrees > maxDegrees {
		return 0, bad
	}
	minutes, err := strconv.ParseUint(s[degreeDigits:degreeDigits+2], 10, 64)
	if err != nil || minutes >= 60 {
		return 0, bad
	}
	millis, err := strconv.ParseUint(s[degreeDigits+2:], 10, 64)
	if err != nil || millis >= 60_000 {
		return 0, bad
	}

	seconds := float64(millis) / 1000
	v := float64(degrees) + float64(minutes)/60 + seconds/3600
	if v > float64(maxDegrees) {
		return 0, bad
	}
	return v, nil
}

// DateTime reads year, month, day, hour and minute from col..col+4.
func (r Row) DateTime(col int) (time.Time, error) {
	v, err := r.ints(col, 5)
	if err != nil {
		return time.Time{}, err
	}
	t, err := OffsetDateTime(v[0], v[1], v[2], v[3], v[4])
	if err != nil {
		return time.Time{}, rangeError(r.num, col+1, err.(*RangeError))
	}
	return t, nil
}

// TimeOfDay reads hour and minute from col and col+1.
func (r Row) TimeOfDay(col int) (models.TimeOfDay, error) {
	v, err := r.ints(col, 2)
	if err != nil {
		return models.TimeOfDay{}, err
	}
	t, err := NewTimeOfDay(v[0], v[1])
	if err != nil {
		return models.TimeOfDay{}, rangeError(r.num, col+1, err.(*RangeError))
	}
	return t, nil
}

// Point reads a DMS latitude from col and a DMS longitude from col+1.
func (r Row) Point(col int) (models.GeoPoint, error) {
	latRaw, err := r.String(col)
	if err != nil {
		return models.GeoPoint{}, err
	}
	lonRaw, err := r.String(col + 1)
	if err != nil {
		return models.GeoPoint{}, err
	}

	lat, err := DMSToLatitude(latRaw)
	if err != nil {
		return models.GeoPoint{}, rangeError(r.num, col+1, err.(*RangeError))
	}
	lon, err := DMSToLongitude(lonRaw)
	if err != nil {
		rerr := err.(*RangeError)
		rerr.Offset = 1
		return models.GeoPoint{}, rangeError(r.num, col+1, rerr)
	}
	return models.GeoPoint{Longitude: lon, Latitude: lat}, nil
}
