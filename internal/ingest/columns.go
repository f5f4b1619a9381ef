package ingest

import (
	"strconv"
	"strings"
)

// Row is one parsed data row of an input file. Columns are addressed by
// zero-based index; the header row is never a Row.
type Row struct {
	num   int
	cells []string
}

// NewRow wraps the cells of the num-th (1-based) data row. When trim is true
// each cell is stripped of surrounding whitespace.
func NewRow(num int, cells []string, trim bool) Row {
	if trim {
		trimmed := make([]string, len(cells))
		for i, c := range cells {
			trimmed[i] = strings.TrimSpace(c)
		}
		cells = trimmed
	}
	return Row{num: num, cells: cells}
}

// Num returns the 1-based data row number.
func (r Row) Num() int { return r.num }

// Len returns the number of cells.
func (r Row) Len() int { return len(r.cells) }

func (r Row) cell(col int) (string, error) {
	if col < 0 || col >= len(r.cells) {
		return "", structuralError(r.num, col+1)
	}
	return r.cells[col], nil
}

// String returns the cell at col verbatim.
func (r Row) String(col int) (string, error) {
	return r.cell(col)
}

// OptionalString returns nil for an empty cell.
func (r Row) OptionalString(col int) (*string, error) {
	v, err := r.cell(col)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	return &v, nil
}

// Int parses the cell at col as a base-10 signed 32-bit integer.
func (r Row) Int(col int) (int32, error) {
	v, err := r.cell(col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, typeError(r.num, col+1, v)
	}
	return int32(n), nil
}

func (r Row) ints(col, n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		v, err := r.Int(col + i)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}
