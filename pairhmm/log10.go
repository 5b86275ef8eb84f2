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
	"io"
	"math"
)

// log10Kernel runs the forward algorithm on log10 probabilities. It
// never underflows, but every cell costs several log10 sums.
type log10Kernel struct {
	matrices    Matrices[float64]
	transitions []Transition[float64]
	sum         func(a, b float64) float64
	tolerance   float64
}

func newExactKernel() *log10Kernel {
	return &log10Kernel{sum: log10SumLog10, tolerance: clampToleranceDouble}
}

func newOriginalKernel() *log10Kernel {
	initializeJacobianLogTable()
	return &log10Kernel{sum: approximateLog10SumLog10, tolerance: 1e-3}
}

func (k *log10Kernel) precision() Precision {
	return Double
}

func (k *log10Kernel) clampTolerance() float64 {
	return k.tolerance
}

func (k *log10Kernel) allocate(maxReadLength, maxHaplotypeLength int) {
	k.matrices.allocate(maxReadLength, maxHaplotypeLength, math.Inf(-1))
}

func (k *log10Kernel) cacheRead(readQuals, insertionGOP, deletionGOP, overallGCP []byte) {
	k.transitions = buildTransitions(k.transitions, readQuals, insertionGOP, deletionGOP, overallGCP)
	for i := range k.transitions {
		t := &k.transitions[i]
		*t = Transition[float64]{
			MatchPrior:           math.Log10(t.MatchPrior),
			MismatchPrior:        math.Log10(t.MismatchPrior),
			MatchToMatch:         math.Log10(t.MatchToMatch),
			MatchToInsertion:     math.Log10(t.MatchToInsertion),
			MatchToDeletion:      math.Log10(t.MatchToDeletion),
			IndelToMatch:         math.Log10(t.IndelToMatch),
			InsertionToInsertion: math.Log10(t.InsertionToInsertion),
			DeletionToDeletion:   math.Log10(t.DeletionToDeletion),
		}
	}
}

func (k *log10Kernel) cachedReadLength() int {
	return len(k.transitions)
}

func (k *log10Kernel) initializeHaplotype(haplotypeLength int) {
	k.matrices.setInitialDeletions(haplotypeLength, -math.Log10(float64(haplotypeLength)))
}

func (k *log10Kernel) fill(haplotypeBases, readBases []byte, startColumn int) {
	m, sum := &k.matrices, k.sum
	for i, x := range readBases {
		t := &k.transitions[i]

		matchI := m.match.rowView(i)
		matchI1 := m.match.rowView(i + 1)
		insertionI := m.insertion.rowView(i)
		insertionI1 := m.insertion.rowView(i + 1)
		deletionI := m.deletion.rowView(i)
		deletionI1 := m.deletion.rowView(i + 1)

		for j := startColumn; j < len(haplotypeBases); j++ {
			y := haplotypeBases[j]
			prior := t.MismatchPrior
			if x == y || x == 'N' || y == 'N' {
				prior = t.MatchPrior
			}
			matchI1[j+1] = prior + sum(sum(
				matchI[j]+t.MatchToMatch,
				insertionI[j]+t.IndelToMatch),
				deletionI[j]+t.IndelToMatch)
			insertionI1[j+1] = sum(matchI[j+1]+t.MatchToInsertion, insertionI[j+1]+t.InsertionToInsertion)
			deletionI1[j+1] = sum(matchI1[j]+t.MatchToDeletion, deletionI1[j]+t.DeletionToDeletion)
		}
	}
}

func (k *log10Kernel) dump(w io.Writer) error {
	return k.matrices.dump(w)
}

func (k *log10Kernel) finalLog10(readLength, haplotypeLength int) (float64, bool) {
	result := math.Inf(-1)
	matchEnd := k.matrices.match.rowView(readLength)
	insertionEnd := k.matrices.insertion.rowView(readLength)
	for j := 1; j <= haplotypeLength; j++ {
		result = k.sum(result, k.sum(matchEnd[j], insertionEnd[j]))
	}
	return result, false
}
