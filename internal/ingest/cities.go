package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ReadCityCodes decodes a municipality code table at path. Its rows are
// prefecture code, municipality code and JIS municipality code, in the same
// encoding as the accident files.
func (d *Decoder) ReadCityCodes(ctx context.Context, path string) (CityCodes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return d.DecodeCityCodes(ctx, f)
}

// DecodeCityCodes decodes a municipality code table read from r. A later row
// replaces an earlier one with the same key.
func (d *Decoder) DecodeCityCodes(ctx context.Context, r io.Reader) (CityCodes, error) {
	codes := make(CityCodes)
	err := d.eachRow(ctx, r, func(row Row) error {
		prefecture, err := row.String(0)
		if err != nil {
			return err
		}
		city, err := row.String(1)
		if err != nil {
			return err
		}
		jis, err := row.String(2)
		if err != nil {
			return err
		}
		if len(jis) != 5 {
			return rangeError(row.Num(), 3, &RangeError{Field: "jis code", Value: jis})
		}
		codes[prefecture+city] = jis
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}
