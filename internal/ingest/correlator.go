package ingest

import (
	"taod/internal/models"

	"github.com/google/uuid"
)

// Correlator maps the natural key of each decoded accident to its surrogate
// ID. It is built once from a complete collection and only read afterwards.
type Correlator struct {
	ids        map[models.AccidentIdentifier]uuid.UUID
	duplicates []models.AccidentIdentifier
}

// NewCorrelator indexes accidents. A natural key seen more than once maps to
// the ID of its last occurrence; the repeated keys are kept for reporting.
func NewCorrelator(accidents []models.Accident) *Correlator {
	c := &Correlator{ids: make(map[models.AccidentIdentifier]uuid.UUID, len(accidents))}
	for i := range accidents {
		c.register(&accidents[i])
	}
	return c
}

func (c *Correlator) register(a *models.Accident) {
	key := a.Identifier()
	if _, ok := c.ids[key]; ok {
		c.duplicates = append(c.duplicates, key)
	}
	c.ids[key] = a.ID
}

// Resolve returns the surrogate ID registered for id.
func (c *Correlator) Resolve(id models.AccidentIdentifier) (uuid.UUID, bool) {
	v, ok := c.ids[id]
	return v, ok
}

// Len returns the number of distinct natural keys.
func (c *Correlator) Len() int { return len(c.ids) }

// Duplicates returns the natural keys that were registered more than once,
// in file order, one entry per repeat.
func (c *Correlator) Duplicates() []models.AccidentIdentifier {
	return c.duplicates
}
