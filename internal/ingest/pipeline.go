package ingest

import (
	"context"
	"fmt"

	"taod/internal/models"
)

// Batch is the output of one import run. It is stored as a single unit.
type Batch struct {
	Accidents       []models.Accident
	InvolvedPersons []models.InvolvedPerson
	// Duplicates lists natural keys repeated in the main file.
	Duplicates []models.AccidentIdentifier
}

// Decode reads the main file, indexes its accidents by natural key and then
// reads the supplementary file against that index. No partial batch is
// returned on failure.
func (d *Decoder) Decode(ctx context.Context, mainPath, supportPath string, cities CityCodes) (*Batch, error) {
	accidents, err := d.ReadAccidents(ctx, mainPath, cities)
	if err != nil {
		return nil, fmt.Errorf("ingest: main file %s: %w", mainPath, err)
	}

	index := NewCorrelator(accidents)

	persons, err := d.ReadInvolvedPersons(ctx, supportPath, index)
	if err != nil {
		return nil, fmt.Errorf("ingest: support file %s: %w", supportPath, err)
	}

	return &Batch{
		Accidents:       accidents,
		InvolvedPersons: persons,
		Duplicates:      index.Duplicates(),
	}, nil
}
