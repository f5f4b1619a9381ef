// Package ingest decodes the main (本票) and supplementary (補充票) files of the
// traffic accident dataset into models.Accident and models.InvolvedPerson
// values.
//
// Both files are Shift_JIS encoded CSV with a header row. Fields are addressed
// by zero-based column index only. Decoding stops at the first row that fails;
// the error is a *DecodeError carrying the 1-based row and column.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"taod/internal/models"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ContextCheckInterval is how often (in rows) cancellation is checked. Values
// below 1 disable the check.
var ContextCheckInterval = 1000

// Decoder turns input rows into records. The zero value is not usable; use
// NewDecoder.
type Decoder struct {
	newID func() uuid.UUID
	trim  bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithIDGenerator replaces the random v4 surrogate ID generator.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(d *Decoder) { d.newID = gen }
}

// WithTrim controls whether cells are whitespace-trimmed before decoding.
func WithTrim(trim bool) Option {
	return func(d *Decoder) { d.trim = trim }
}

// NewDecoder creates a Decoder that trims cells and assigns random IDs.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{newID: uuid.New, trim: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReadAccidents decodes the main file at path.
func (d *Decoder) ReadAccidents(ctx context.Context, path string, cities CityCodes) ([]models.Accident, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return d.DecodeAccidents(ctx, f, cities)
}

// DecodeAccidents decodes a main file read from r.
func (d *Decoder) DecodeAccidents(ctx context.Context, r io.Reader, cities CityCodes) ([]models.Accident, error) {
	var accidents []models.Accident
	err := d.eachRow(ctx, r, func(row Row) error {
		a, err := d.Accident(row, cities)
		if err != nil {
			return err
		}
		accidents = append(accidents, *a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accidents, nil
}

// ReadInvolvedPersons decodes the supplementary file at path.
func (d *Decoder) ReadInvolvedPersons(ctx context.Context, path string, accidents *Correlator) ([]models.InvolvedPerson, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return d.DecodeInvolvedPersons(ctx, f, accidents)
}

// DecodeInvolvedPersons decodes a supplementary file read from r.
func (d *Decoder) DecodeInvolvedPersons(ctx context.Context, r io.Reader, accidents *Correlator) ([]models.InvolvedPerson, error) {
	var persons []models.InvolvedPerson
	err := d.eachRow(ctx, r, func(row Row) error {
		p, err := d.InvolvedPerson(row, accidents)
		if err != nil {
			return err
		}
		persons = append(persons, *p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return persons, nil
}

func (d *Decoder) eachRow(ctx context.Context, r io.Reader, fn func(Row) error) error {
	reader := csv.NewReader(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	reader.FieldsPerRecord = -1 // column count is checked per field

	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read header: %w", err)
	}

	for num := 1; ; num++ {
		if ContextCheckInterval > 0 && num%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("decoding cancelled at row %d: %w", num, err)
			}
		}

		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			derr := &DecodeError{Kind: KindStructural, Row: num, Err: err}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				derr.Column = perr.Column
			}
			return derr
		}

		if err := fn(NewRow(num, cells, d.trim)); err != nil {
			return err
		}
	}
}
