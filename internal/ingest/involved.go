package ingest

import (
	"taod/internal/models"
)

// InvolvedPerson decodes one row of the supplementary file, linking it to the
// accident its natural key resolves to.
func (d *Decoder) InvolvedPerson(row Row, accidents *Correlator) (*models.InvolvedPerson, error) {
	key, err := readIdentifier(row)
	if err != nil {
		return nil, err
	}
	accidentID, ok := accidents.Resolve(key)
	if !ok {
		return nil, referenceError(row.Num(), 0, "accident", key.String())
	}

	r := rowReader{row: row}
	p := &models.InvolvedPerson{
		ID:                d.newID(),
		AccidentID:        accidentID,
		SubNumber:         r.integer(4),
		PartyCode:         r.str(5),
		PurposeCode:       r.optional(6),
		VehicleTypeCode:   r.optional(7),
		RidingTypeCode:    r.str(8),
		RidingClassCode:   r.str(9),
		SupportCarCode:    r.str(10),
		AirbagCode:        r.str(11),
		SideAirbagCode:    r.str(12),
		InjuryCode:        r.str(13),
		CollisionPart:     r.optional(14),
		VehicleDamageCode: r.optional(15),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}
