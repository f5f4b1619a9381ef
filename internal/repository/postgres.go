package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"taod/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SRID of JGD2011 geographic coordinates.
const SRID = 6668

const schema = `
	CREATE EXTENSION IF NOT EXISTS postgis;

	CREATE TABLE IF NOT EXISTS cities (
		code VARCHAR(5) PRIMARY KEY,
		jis_code VARCHAR(5) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accidents (
		id UUID PRIMARY KEY,
		prefecture_code VARCHAR(2) NOT NULL,
		police_station_code VARCHAR(3) NOT NULL,
		main_number INTEGER NOT NULL,
		accident_detail_code VARCHAR(1) NOT NULL,
		number_of_deaths INTEGER NOT NULL,
		number_of_injuries INTEGER NOT NULL,
		route_code VARCHAR(4) NOT NULL,
		route_class_code VARCHAR(1) NOT NULL,
		location_code INTEGER NOT NULL,
		city_jis_code VARCHAR(5) NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		day_night_code VARCHAR(2) NOT NULL,
		sunrise_time TIME NOT NULL,
		sunset_time TIME NOT NULL,
		weather_code VARCHAR(1) NOT NULL,
		district_code VARCHAR(1) NOT NULL,
		surface_condition_code VARCHAR(1) NOT NULL,
		road_model_code VARCHAR(2) NOT NULL,
		traffic_signal_code VARCHAR(1) NOT NULL,
		stop_regulation_sign_a_code VARCHAR(2) NOT NULL,
		stop_regulation_display_a_code VARCHAR(2) NOT NULL,
		stop_regulation_sign_b_code VARCHAR(2) NOT NULL,
		stop_regulation_display_b_code VARCHAR(2) NOT NULL,
		road_width_code VARCHAR(2) NOT NULL,
		road_alignment_code VARCHAR(1) NOT NULL,
		collision_point_code VARCHAR(2) NOT NULL,
		zone_regulation_code VARCHAR(2) NOT NULL,
		central_separation_code VARCHAR(1) NOT NULL,
		road_segmentation_code VARCHAR(1) NOT NULL,
		accident_type_code VARCHAR(2) NOT NULL,
		age_a_code VARCHAR(2) NOT NULL,
		age_b_code VARCHAR(2) NOT NULL,
		party_a_code VARCHAR(2) NOT NULL,
		party_b_code VARCHAR(2) NOT NULL,
		purpose_a_code VARCHAR(2) NOT NULL,
		purpose_b_code VARCHAR(2) NOT NULL,
		vehicle_type_a_code VARCHAR(2) NOT NULL,
		vehicle_type_b_code VARCHAR(2) NOT NULL,
		automatic_a_code VARCHAR(1) NOT NULL,
		automatic_b_code VARCHAR(1) NOT NULL,
		support_car_a_code VARCHAR(2) NOT NULL,
		support_car_b_code VARCHAR(2) NOT NULL,
		speed_regulation_a_code VARCHAR(2) NOT NULL,
		speed_regulation_b_code VARCHAR(2) NOT NULL,
		collision_part_a VARCHAR(2) NOT NULL,
		collision_part_b VARCHAR(2) NOT NULL,
		vehicle_damage_a_code VARCHAR(1) NOT NULL,
		vehicle_damage_b_code VARCHAR(1) NOT NULL,
		airbag_a_code VARCHAR(1) NOT NULL,
		airbag_b_code VARCHAR(1) NOT NULL,
		side_airbag_a_code VARCHAR(1) NOT NULL,
		side_airbag_b_code VARCHAR(1) NOT NULL,
		injury_a_code VARCHAR(1) NOT NULL,
		injury_b_code VARCHAR(1) NOT NULL,
		location GEOMETRY(POINT, 6668) NOT NULL,
		week_code VARCHAR(1) NOT NULL,
		holiday_code VARCHAR(1) NOT NULL,
		cognitive_days_a INTEGER NOT NULL,
		cognitive_days_b INTEGER NOT NULL,
		driving_practice_a_code VARCHAR(1) NOT NULL,
		driving_practice_b_code VARCHAR(1) NOT NULL
	);
	CREATE INDEX IF NOT EXISTS accidents_location_idx ON accidents USING GIST (location);
	CREATE INDEX IF NOT EXISTS accidents_identifier_idx
		ON accidents (prefecture_code, police_station_code, main_number);

	CREATE TABLE IF NOT EXISTS involved_persons (
		id UUID PRIMARY KEY,
		accident_id UUID NOT NULL REFERENCES accidents (id) ON DELETE CASCADE,
		sub_number INTEGER NOT NULL,
		party_code VARCHAR(2) NOT NULL,
		purpose_code VARCHAR(2),
		vehicle_type_code VARCHAR(2),
		riding_type_code VARCHAR(1) NOT NULL,
		riding_class_code VARCHAR(1) NOT NULL,
		support_car_code VARCHAR(2) NOT NULL,
		airbag_code VARCHAR(1) NOT NULL,
		side_airbag_code VARCHAR(1) NOT NULL,
		injury_code VARCHAR(1) NOT NULL,
		collision_part VARCHAR(2),
		vehicle_damage_code VARCHAR(1)
	);
	CREATE INDEX IF NOT EXISTS involved_persons_accident_id_idx ON involved_persons (accident_id);
`

var accidentColumns = []string{
	"id", "prefecture_code", "police_station_code", "main_number", "accident_detail_code",
	"number_of_deaths", "number_of_injuries", "route_code", "route_class_code", "location_code",
	"city_jis_code", "occurred_at", "day_night_code", "sunrise_time", "sunset_time",
	"weather_code", "district_code", "surface_condition_code", "road_model_code", "traffic_signal_code",
	"stop_regulation_sign_a_code", "stop_regulation_display_a_code",
	"stop_regulation_sign_b_code", "stop_regulation_display_b_code",
	"road_width_code", "road_alignment_code", "collision_point_code", "zone_regulation_code",
	"central_separation_code", "road_segmentation_code", "accident_type_code",
	"age_a_code", "age_b_code", "party_a_code", "party_b_code",
	"purpose_a_code", "purpose_b_code", "vehicle_type_a_code", "vehicle_type_b_code",
	"automatic_a_code", "automatic_b_code", "support_car_a_code", "support_car_b_code",
	"speed_regulation_a_code", "speed_regulation_b_code", "collision_part_a", "collision_part_b",
	"vehicle_damage_a_code", "vehicle_damage_b_code", "airbag_a_code", "airbag_b_code",
	"side_airbag_a_code", "side_airbag_b_code", "injury_a_code", "injury_b_code",
	"location", "week_code", "holiday_code", "cognitive_days_a", "cognitive_days_b",
	"driving_practice_a_code", "driving_practice_b_code",
}

var involvedPersonColumns = []string{
	"id", "accident_id", "sub_number", "party_code", "purpose_code", "vehicle_type_code",
	"riding_type_code", "riding_class_code", "support_car_code", "airbag_code",
	"side_airbag_code", "injury_code", "collision_part", "vehicle_damage_code",
}

// Repository stores decoded accidents in PostgreSQL/PostGIS.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// CityCodes returns the administrative code table keyed by prefecture code
// followed by municipality code.
func (r *Repository) CityCodes(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT code, jis_code FROM cities`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query city codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]string)
	for rows.Next() {
		var code, jisCode string
		if err := rows.Scan(&code, &jisCode); err != nil {
			return nil, fmt.Errorf("repository: failed to scan city code: %w", err)
		}
		codes[code] = jisCode
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return codes, nil
}

// SaveCityCodes inserts or replaces entries of the administrative code table.
func (r *Repository) SaveCityCodes(ctx context.Context, codes map[string]string) error {
	batch := &pgx.Batch{}
	for code, jisCode := range codes {
		batch.Queue(`
			INSERT INTO cities (code, jis_code) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET jis_code = EXCLUDED.jis_code
		`, code, jisCode)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repository: failed to save city codes: %w", err)
	}
	return nil
}

// SaveImport stores the accidents and their involved persons in one
// transaction. Nothing is stored if any row is rejected.
func (r *Repository) SaveImport(ctx context.Context, accidents []models.Accident, persons []models.InvolvedPerson) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"accidents"}, accidentColumns,
		pgx.CopyFromSlice(len(accidents), func(i int) ([]any, error) {
			return accidentValues(&accidents[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to copy accidents: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"involved_persons"}, involvedPersonColumns,
		pgx.CopyFromSlice(len(persons), func(i int) ([]any, error) {
			return involvedPersonValues(&persons[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to copy involved persons: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit import: %w", err)
	}
	return nil
}

// CountImported returns the number of stored accidents and involved persons.
func (r *Repository) CountImported(ctx context.Context) (accidents, persons int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM accidents),
			(SELECT COUNT(*) FROM involved_persons)
	`).Scan(&accidents, &persons)
	if err != nil {
		return 0, 0, fmt.Errorf("repository: failed to count records: %w", err)
	}
	return accidents, persons, nil
}

func accidentValues(a *models.Accident) []any {
	return []any{
		pgUUID(a.ID), a.PrefectureCode, a.PoliceStationCode, a.MainNumber, a.AccidentDetailCode,
		a.NumberOfDeaths, a.NumberOfInjuries, a.RouteCode, a.RouteClassCode, a.LocationCode,
		a.CityJISCode, a.OccurredAt, a.DayNightCode, pgTime(a.SunriseTime), pgTime(a.SunsetTime),
		a.WeatherCode, a.DistrictCode, a.SurfaceConditionCode, a.RoadModelCode, a.TrafficSignalCode,
		a.StopRegulationSignACode, a.StopRegulationDisplayACode,
		a.StopRegulationSignBCode, a.StopRegulationDisplayBCode,
		a.RoadWidthCode, a.RoadAlignmentCode, a.CollisionPointCode, a.ZoneRegulationCode,
		a.CentralSeparationCode, a.RoadSegmentationCode, a.AccidentTypeCode,
		a.AgeACode, a.AgeBCode, a.PartyACode, a.PartyBCode,
		a.PurposeACode, a.PurposeBCode, a.VehicleTypeACode, a.VehicleTypeBCode,
		a.AutomaticACode, a.AutomaticBCode, a.SupportCarACode, a.SupportCarBCode,
		a.SpeedRegulationACode, a.SpeedRegulationBCode, a.CollisionPartA, a.CollisionPartB,
		a.VehicleDamageACode, a.VehicleDamageBCode, a.AirbagACode, a.AirbagBCode,
		a.SideAirbagACode, a.SideAirbagBCode, a.InjuryACode, a.InjuryBCode,
		EWKBPoint(a.Location), a.WeekCode, a.HolidayCode, a.CognitiveDaysA, a.CognitiveDaysB,
		a.DrivingPracticeACode, a.DrivingPracticeBCode,
	}
}

func involvedPersonValues(p *models.InvolvedPerson) []any {
	return []any{
		pgUUID(p.ID), pgUUID(p.AccidentID), p.SubNumber, p.PartyCode,
		pgText(p.PurposeCode), pgText(p.VehicleTypeCode),
		p.RidingTypeCode, p.RidingClassCode, p.SupportCarCode, p.AirbagCode,
		p.SideAirbagCode, p.InjuryCode, pgText(p.CollisionPart), pgText(p.VehicleDamageCode),
	}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgTime(t models.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func pgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// EWKBPoint encodes p as a little-endian extended WKB point carrying SRID.
// PostGIS accepts it as the binary input of a geometry column.
func EWKBPoint(p models.GeoPoint) []byte {
	const (
		wkbPoint = 1
		hasSRID  = 0x20000000
	)
	buf := make([]byte, 0, 25)
	buf = append(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, wkbPoint|hasSRID)
	buf = binary.LittleEndian.AppendUint32(buf, SRID)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Longitude))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Latitude))
	return buf
}
