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

import (
	"math"
	"sync"
)

const (
	jacobianLogTableMaxTolerance = 8
	jacobianLogTableStep         = 0.0001
	jacobianLogTableInvStep      = 1 / jacobianLogTableStep
	jacobianLogTableSize         = int(jacobianLogTableMaxTolerance*jacobianLogTableInvStep) + 1
)

var (
	jacobianLogTableOnce sync.Once
	jacobianLogTable     []float64
)

// jacobianLogTable[i] holds log10(1 + 10^(-i*step)).
func initializeJacobianLogTable() {
	jacobianLogTableOnce.Do(func() {
		table := make([]float64, jacobianLogTableSize)
		for i := range table {
			table[i] = math.Log10(1 + math.Pow(10, -float64(i)*jacobianLogTableStep))
		}
		jacobianLogTable = table
	})
}

func jacobianLog(difference float64) float64 {
	return jacobianLogTable[int(math.Round(difference*jacobianLogTableInvStep))]
}

// approximateLog10SumLog10 is accurate to about 1e-4. Call
// initializeJacobianLogTable first.
func approximateLog10SumLog10(a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	if math.IsInf(a, -1) {
		return b
	}
	if diff := b - a; diff < jacobianLogTableMaxTolerance {
		return b + jacobianLog(diff)
	}
	return b
}

func log10SumLog10(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(b, -1) {
		return a
	}
	return a + math.Log10(1+math.Pow(10, b-a))
}

// GoodLog10Probability reports whether result is a usable log10
// probability: finite and not above 0.
func GoodLog10Probability(result float64) bool {
	return result <= 0 && !math.IsInf(result, 0) && !math.IsNaN(result)
}
