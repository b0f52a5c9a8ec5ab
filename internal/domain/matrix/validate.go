package matrix

import (
	"encoding/json"
	"fmt"
	"math"
)

// Matrix is an ordered sequence of rows of numbers.
type Matrix [][]float64

// Shape holds the dimensions of a validated matrix.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// String renders the shape as "RxC".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Square reports whether rows equal columns.
func (s Shape) Square() bool {
	return s.Rows > 0 && s.Rows == s.Cols
}

// Cells returns rows*cols.
func (s Shape) Cells() int {
	return s.Rows * s.Cols
}

// Validate checks the shape invariants of m and returns its dimensions.
// The expected column count is taken from the first row.
func Validate(field string, m Matrix) (Shape, error) {
	if len(m) == 0 {
		return Shape{}, shapeError(field, ReasonEmptyMatrix, "matrix cannot be empty")
	}

	cols := len(m[0])
	if cols == 0 {
		return Shape{}, shapeError(field, ReasonEmptyRow, "matrix rows cannot be empty")
	}

	for i, row := range m {
		if len(row) == 0 {
			return Shape{}, shapeError(field, ReasonEmptyRow, fmt.Sprintf("row %d is empty", i))
		}
		if len(row) != cols {
			return Shape{}, shapeError(field, ReasonNotRectangular,
				fmt.Sprintf("matrix rows must have consistent length (row %d has %d, expected %d)", i, len(row), cols))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Shape{}, typeError(field, ReasonNotFinite,
					fmt.Sprintf("matrix contains invalid value at [%d][%d]", i, j))
			}
		}
	}

	return Shape{Rows: len(m), Cols: cols}, nil
}

// ValidateShape reports whether m passes Validate.
func ValidateShape(m Matrix) bool {
	_, err := Validate("", m)
	return err == nil
}

// Dimensions returns the nominal shape of m without validating it.
func Dimensions(m Matrix) Shape {
	if len(m) == 0 {
		return Shape{}
	}
	return Shape{Rows: len(m), Cols: len(m[0])}
}

// Parse converts a decoded JSON value into a validated Matrix.
func Parse(field string, v any) (Matrix, error) {
	if v == nil {
		return nil, typeError(field, ReasonNotMatrix, "matrix is required and must be an array")
	}

	switch t := v.(type) {
	case Matrix:
		if _, err := Validate(field, t); err != nil {
			return nil, err
		}
		return t, nil
	case [][]float64:
		return Parse(field, Matrix(t))
	case []any:
		return parseRows(field, t)
	default:
		return nil, typeError(field, ReasonNotMatrix, "matrix is required and must be an array")
	}
}

func parseRows(field string, rows []any) (Matrix, error) {
	if len(rows) == 0 {
		return nil, shapeError(field, ReasonEmptyMatrix, "matrix cannot be empty")
	}

	m := make(Matrix, len(rows))
	for i, raw := range rows {
		cells, ok := raw.([]any)
		if !ok {
			return nil, typeError(field, ReasonNotMatrix, "matrix must be a 2D array")
		}
		row := make([]float64, len(cells))
		for j, cell := range cells {
			f, ok := toFloat(cell)
			if !ok {
				return nil, typeError(field, ReasonNotNumeric,
					fmt.Sprintf("matrix must contain only valid numbers (cell [%d][%d])", i, j))
			}
			row[j] = f
		}
		m[i] = row
	}

	if _, err := Validate(field, m); err != nil {
		return nil, err
	}
	return m, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Flatten returns the values of ms row-major, matrices in argument order.
func Flatten(ms ...Matrix) []float64 {
	n := 0
	for _, m := range ms {
		for _, row := range m {
			n += len(row)
		}
	}
	out := make([]float64, 0, n)
	for _, m := range ms {
		for _, row := range m {
			out = append(out, row...)
		}
	}
	return out
}
