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

// loglessKernel runs the forward algorithm on probabilities instead of
// log10 probabilities, which avoids a transcendental function per cell.
// The transitions of the current read are cached between calls.
type loglessKernel[F float] struct {
	matrices    Matrices[F]
	transitions []Transition[F]

	prec                  Precision
	initialCondition      float64
	initialConditionLog10 float64
	minAccepted           float64
	tolerance             float64
}

func newLoglessKernel[F float](precision Precision) *loglessKernel[F] {
	k := &loglessKernel[F]{prec: precision}
	switch precision {
	case Single:
		k.initialCondition = initialConditionSingle
		k.initialConditionLog10 = initialConditionLog10Single
		k.minAccepted = minAcceptedSingle
		k.tolerance = clampToleranceSingle
	default:
		k.initialCondition = initialConditionDouble
		k.initialConditionLog10 = initialConditionLog10Double
		k.minAccepted = minAcceptedDouble
		k.tolerance = clampToleranceDouble
	}
	return k
}

func (k *loglessKernel[F]) precision() Precision {
	return k.prec
}

func (k *loglessKernel[F]) clampTolerance() float64 {
	return k.tolerance
}

func (k *loglessKernel[F]) allocate(maxReadLength, maxHaplotypeLength int) {
	k.matrices.allocate(maxReadLength, maxHaplotypeLength, 0)
}

func (k *loglessKernel[F]) cacheRead(readQuals, insertionGOP, deletionGOP, overallGCP []byte) {
	k.transitions = buildTransitions(k.transitions, readQuals, insertionGOP, deletionGOP, overallGCP)
}

func (k *loglessKernel[F]) cachedReadLength() int {
	return len(k.transitions)
}

func (k *loglessKernel[F]) initializeHaplotype(haplotypeLength int) {
	k.matrices.setInitialDeletions(haplotypeLength, F(k.initialCondition/float64(haplotypeLength)))
}

func (k *loglessKernel[F]) fill(haplotypeBases, readBases []byte, startColumn int) {
	loglessFill(&k.matrices, k.transitions, haplotypeBases, readBases, startColumn)
}

// loglessFill computes the matrix columns after startColumn for every
// read row. Columns up to and including startColumn must hold the
// values of a previous fill against the same read and haplotype prefix.
func loglessFill[F float](m *Matrices[F], transitions []Transition[F], haplotypeBases, readBases []byte, startColumn int) {
	for i, x := range readBases {
		t := &transitions[i]
		matchPrior, mismatchPrior := t.MatchPrior, t.MismatchPrior
		matchToMatch, indelToMatch := t.MatchToMatch, t.IndelToMatch
		matchToInsertion, insertionToInsertion := t.MatchToInsertion, t.InsertionToInsertion
		matchToDeletion, deletionToDeletion := t.MatchToDeletion, t.DeletionToDeletion

		// note: it's important to get the row views for performance
		matchI := m.match.rowView(i)
		matchI1 := m.match.rowView(i + 1)
		insertionI := m.insertion.rowView(i)
		insertionI1 := m.insertion.rowView(i + 1)
		deletionI := m.deletion.rowView(i)
		deletionI1 := m.deletion.rowView(i + 1)

		for j := startColumn; j < len(haplotypeBases); j++ {
			y := haplotypeBases[j]
			prior := mismatchPrior
			if x == y || x == 'N' || y == 'N' {
				prior = matchPrior
			}
			matchI1[j+1] = prior * (matchI[j]*matchToMatch +
				insertionI[j]*indelToMatch +
				deletionI[j]*indelToMatch)
			insertionI1[j+1] = matchI[j+1]*matchToInsertion + insertionI[j+1]*insertionToInsertion
			deletionI1[j+1] = matchI1[j]*matchToDeletion + deletionI1[j]*deletionToDeletion
		}
	}
}

func (k *loglessKernel[F]) dump(w io.Writer) error {
	return k.matrices.dump(w)
}

func (k *loglessKernel[F]) finalLog10(readLength, haplotypeLength int) (float64, bool) {
	var sum F
	matchEnd := k.matrices.match.rowView(readLength)
	insertionEnd := k.matrices.insertion.rowView(readLength)
	for j := 1; j <= haplotypeLength; j++ {
		sum += matchEnd[j] + insertionEnd[j]
	}
	scaled := float64(sum)
	return math.Log10(scaled) - k.initialConditionLog10, !(scaled >= k.minAccepted)
}
