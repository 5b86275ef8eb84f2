// elPrep pairhmm: forward-algorithm read likelihoods for haplotype calling.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package pairhmm

import "math"

// Precision selects the floating-point representation of the matrices.
type Precision int

const (
	// Double uses float64 cells.
	Double Precision = iota
	// Single uses float32 cells; faster, but underflows on long reads.
	Single
)

func (p Precision) String() string {
	switch p {
	case Double:
		return "double"
	case Single:
		return "single"
	default:
		return "unknown"
	}
}

type float interface {
	~float32 | ~float64
}

// Scale factors for the real-domain fill. The deletion row starts at
// initialCondition/haplotypeLength so that products of many small
// probabilities stay in the normal range; the final sum is unscaled in
// log10 space.
const (
	initialConditionSingle = 1 << 120
	initialConditionDouble = 0x1p1020

	// Scaled sums below these are treated as underflow.
	minAcceptedSingle = 1e-28
	minAcceptedDouble = 0x1p-1022

	// Positive log10 results up to these are rounding noise.
	clampToleranceSingle = 1e-4
	clampToleranceDouble = 1e-10
)

var (
	initialConditionLog10Single = math.Log10(initialConditionSingle)
	initialConditionLog10Double = math.Log10(initialConditionDouble)
)
