package matrix

import (
	gomath "math"

	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the off-diagonal tolerance used when none is supplied.
const DefaultTolerance = 1e-9

// DiagonalInfo describes the diagonal structure of a matrix.
type DiagonalInfo struct {
	IsDiagonal       bool      `json:"isDiagonal"`
	DiagonalElements []float64 `json:"diagonalElements"`
	DiagonalSum      float64   `json:"diagonalSum"`
	IsSquare         bool      `json:"isSquare"`
	Tolerance        float64   `json:"tolerance"`
}

// Clone returns a copy that shares no memory with info.
func (info DiagonalInfo) Clone() DiagonalInfo {
	out := info
	if info.DiagonalElements != nil {
		out.DiagonalElements = append([]float64(nil), info.DiagonalElements...)
	}
	return out
}

// ValidateTolerance rejects negative or non-finite tolerances.
func ValidateTolerance(tolerance float64) error {
	if gomath.IsNaN(tolerance) || gomath.IsInf(tolerance, 0) || tolerance < 0 {
		return typeError("tolerance", ReasonBadTolerance, "tolerance must be a finite non-negative number")
	}
	return nil
}

// IsDiagonal reports whether every off-diagonal cell of m is within tolerance
// of zero. An empty matrix is never diagonal.
func IsDiagonal(m Matrix, tolerance float64) bool {
	if len(m) == 0 {
		return false
	}
	for i, row := range m {
		for j, v := range row {
			if i != j && gomath.Abs(v) > tolerance {
				return false
			}
		}
	}
	return true
}

// DiagonalElements returns m[i][i] for i in [0, min(rows, cols)).
func DiagonalElements(m Matrix) []float64 {
	shape := Dimensions(m)
	if shape.Rows == 0 || shape.Cols == 0 {
		return []float64{}
	}

	if !ValidateShape(m) {
		// Ragged input cannot back a dense view; walk the rows directly.
		n := min(shape.Rows, shape.Cols)
		out := make([]float64, 0, n)
		for i := 0; i < n && i < len(m[i]); i++ {
			out = append(out, m[i][i])
		}
		return out
	}

	diag := toDense(m, shape).DiagView()
	out := make([]float64, diag.Diag())
	for i := range out {
		out[i] = diag.At(i, i)
	}
	return out
}

// DiagonalSum returns the sum of the main diagonal, 0 when it is empty.
func DiagonalSum(m Matrix) float64 {
	sum := 0.0
	for _, v := range DiagonalElements(m) {
		sum += v
	}
	return sum
}

// IsSquare reports whether m has as many rows as columns. An empty matrix is
// not square.
func IsSquare(m Matrix) bool {
	if len(m) == 0 {
		return false
	}
	return len(m) == len(m[0])
}

// AnalyzeDiagonal collects the full diagonal description of m.
func AnalyzeDiagonal(m Matrix, tolerance float64) DiagonalInfo {
	elems := DiagonalElements(m)
	sum := 0.0
	for _, v := range elems {
		sum += v
	}
	return DiagonalInfo{
		IsDiagonal:       IsDiagonal(m, tolerance),
		DiagonalElements: elems,
		DiagonalSum:      sum,
		IsSquare:         IsSquare(m),
		Tolerance:        tolerance,
	}
}

// toDense copies a validated matrix into a gonum dense matrix.
func toDense(m Matrix, shape Shape) *mat.Dense {
	data := make([]float64, 0, shape.Cells())
	for _, row := range m {
		data = append(data, row...)
	}
	return mat.NewDense(shape.Rows, shape.Cols, data)
}
