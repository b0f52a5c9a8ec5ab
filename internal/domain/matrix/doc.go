// Package matrix provides the numeric core of the statistics service.
//
// The package is organized in three layers:
//   - validate: shape and value checks gating every computation
//   - stats: max/min/sum/avg over one matrix or two matrices combined
//   - diagonal: main-diagonal extraction and diagonal-matrix detection
//
// Built on gonum.org/v1/gonum:
//   - floats for aggregate reductions
//   - mat.Dense views for diagonal extraction
//
// Invariants:
//   - A valid matrix has at least one row, a non-empty first row, rows of equal
//     length and only finite values.
//   - Values are accumulated row-major, first matrix before second.
//   - All functions are pure and safe for concurrent use.
//
// Example Usage:
//
//	m, err := matrix.Parse("matrix", decoded)
//	if err != nil {
//	    return err
//	}
//	calc := matrix.NewCalculator(matrix.SinglePolicy)
//	stats, err := calc.Compute(m)
//	info := matrix.AnalyzeDiagonal(m, matrix.DefaultTolerance)
package matrix
