package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccidentIdentifier is the natural key of an accident in the source data.
// It is only used to correlate supplementary rows with their main row.
type AccidentIdentifier struct {
	PrefectureCode    string
	PoliceStationCode string
	MainNumber        int32
}

func (id AccidentIdentifier) String() string {
	return fmt.Sprintf("prefecture=%s police_station=%s main_number=%d",
		id.PrefectureCode, id.PoliceStationCode, id.MainNumber)
}

// GeoPoint is a position in decimal degrees (JGD2011).
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Duration returns the offset of t from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute)
}

// Accident is one row of the main file (本票).
type Accident struct {
	ID                   uuid.UUID `json:"id"`
	PrefectureCode       string    `json:"prefecture_code"`
	PoliceStationCode    string    `json:"police_station_code"`
	MainNumber           int32     `json:"main_number"`
	AccidentDetailCode   string    `json:"accident_detail_code"`
	NumberOfDeaths       int32     `json:"number_of_deaths"`
	NumberOfInjuries     int32     `json:"number_of_injuries"`
	RouteCode            string    `json:"route_code"`
	RouteClassCode       string    `json:"route_class_code"`
	LocationCode         int32     `json:"location_code"`
	CityJISCode          string    `json:"city_jis_code"`
	OccurredAt           time.Time `json:"occurred_at"`
	DayNightCode         string    `json:"day_night_code"`
	SunriseTime          TimeOfDay `json:"sunrise_time"`
	SunsetTime           TimeOfDay `json:"sunset_time"`
	WeatherCode          string    `json:"weather_code"`
	DistrictCode         string    `json:"district_code"`
	SurfaceConditionCode string    `json:"surface_condition_code"`
	RoadModelCode        string    `json:"road_model_code"`
	TrafficSignalCode    string    `json:"traffic_signal_code"`

	StopRegulationSignACode    string `json:"stop_regulation_sign_a_code"`
	StopRegulationDisplayACode string `json:"stop_regulation_display_a_code"`
	StopRegulationSignBCode    string `json:"stop_regulation_sign_b_code"`
	StopRegulationDisplayBCode string `json:"stop_regulation_display_b_code"`

	RoadWidthCode          string `json:"road_width_code"`
	RoadAlignmentCode      string `json:"road_alignment_code"`
	CollisionPointCode     string `json:"collision_point_code"`
	ZoneRegulationCode     string `json:"zone_regulation_code"`
	CentralSeparationCode  string `json:"central_separation_code"`
	RoadSegmentationCode   string `json:"road_segmentation_code"`
	AccidentTypeCode       string `json:"accident_type_code"`
	AgeACode               string `json:"age_a_code"`
	AgeBCode               string `json:"age_b_code"`
	PartyACode             string `json:"party_a_code"`
	PartyBCode             string `json:"party_b_code"`
	PurposeACode           string `json:"purpose_a_code"`
	PurposeBCode           string `json:"purpose_b_code"`
	VehicleTypeACode       string `json:"vehicle_type_a_code"`
	VehicleTypeBCode       string `json:"vehicle_type_b_code"`
	AutomaticACode         string `json:"automatic_a_code"`
	AutomaticBCode         string `json:"automatic_b_code"`
	SupportCarACode        string `json:"support_car_a_code"`
	SupportCarBCode        string `json:"support_car_b_code"`
	SpeedRegulationACode   string `json:"speed_regulation_a_code"`
	SpeedRegulationBCode   string `json:"speed_regulation_b_code"`
	CollisionPartA         string `json:"collision_part_a"`
	CollisionPartB         string `json:"collision_part_b"`
	VehicleDamageACode     string `json:"vehicle_damage_a_code"`
	VehicleDamageBCode     string `json:"vehicle_damage_b_code"`
	AirbagACode            string `json:"airbag_a_code"`
	AirbagBCode            string `json:"airbag_b_code"`
	SideAirbagACode        string `json:"side_airbag_a_code"`
	SideAirbagBCode        string `json:"side_airbag_b_code"`
	InjuryACode            string `json:"injury_a_code"`
	InjuryBCode            string `json:"injury_b_code"`

	Location    GeoPoint `json:"location"`
	WeekCode    string   `json:"week_code"`
	HolidayCode string   `json:"holiday_code"`

	// Days elapsed since the cognitive function test, 9999 when not applicable.
	CognitiveDaysA int32 `json:"cognitive_days_a"`
	CognitiveDaysB int32 `json:"cognitive_days_b"`

	DrivingPracticeACode string `json:"driving_practice_a_code"`
	DrivingPracticeBCode string `json:"driving_practice_b_code"`
}

// Identifier returns the natural key of the accident.
func (a *Accident) Identifier() AccidentIdentifier {
	return AccidentIdentifier{
		PrefectureCode:    a.PrefectureCode,
		PoliceStationCode: a.PoliceStationCode,
		MainNumber:        a.MainNumber,
	}
}

// InvolvedPerson is one row of the supplementary file (補充票): a party to an
// accident other than parties A and B. Nil code pointers mean not applicable.
type InvolvedPerson struct {
	ID                uuid.UUID `json:"id"`
	AccidentID        uuid.UUID `json:"accident_id"`
	SubNumber         int32     `json:"sub_number"`
	PartyCode         string    `json:"party_code"`
	PurposeCode       *string   `json:"purpose_code,omitempty"`
	VehicleTypeCode   *string   `json:"vehicle_type_code,omitempty"`
	RidingTypeCode    string    `json:"riding_type_code"`
	RidingClassCode   string    `json:"riding_class_code"`
	SupportCarCode    string    `json:"support_car_code"`
	AirbagCode        string    `json:"airbag_code"`
	SideAirbagCode    string    `json:"side_airbag_code"`
	InjuryCode        string    `json:"injury_code"`
	CollisionPart     *string   `json:"collision_part,omitempty"`
	VehicleDamageCode *string   `json:"vehicle_damage_code,omitempty"`
}
