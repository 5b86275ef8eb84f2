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
	"github.com/pkg/errors"
)

// Transition holds the per read position probabilities of the pair
// HMM. MatchPrior and MismatchPrior are the emission probabilities of a
// match state for equal and differing bases. IndelToMatch is shared by
// the insertion and deletion states.
type Transition[F float] struct {
	MatchPrior, MismatchPrior F

	MatchToMatch, MatchToInsertion, MatchToDeletion F
	IndelToMatch                                    F
	InsertionToInsertion, DeletionToDeletion        F
}

func checkQualsLength(readLength int, readQuals, insertionGOP, deletionGOP, overallGCP []byte) error {
	if len(readQuals) != readLength {
		return errors.Wrapf(ErrQualsLengthMismatch, "read quals: %v vs %v", readLength, len(readQuals))
	}
	if len(insertionGOP) != readLength {
		return errors.Wrapf(ErrQualsLengthMismatch, "read insertion quals: %v vs %v", readLength, len(insertionGOP))
	}
	if len(deletionGOP) != readLength {
		return errors.Wrapf(ErrQualsLengthMismatch, "read deletion quals: %v vs %v", readLength, len(deletionGOP))
	}
	if len(overallGCP) != readLength {
		return errors.Wrapf(ErrQualsLengthMismatch, "overall GCP: %v vs %v", readLength, len(overallGCP))
	}
	return nil
}

func checkAllQuals(readQuals, insertionGOP, deletionGOP, overallGCP []byte) error {
	if err := checkQuals("read quals", readQuals); err != nil {
		return err
	}
	if err := checkQuals("insertion GOP", insertionGOP); err != nil {
		return err
	}
	if err := checkQuals("deletion GOP", deletionGOP); err != nil {
		return err
	}
	return checkQuals("overall GCP", overallGCP)
}

// BuildTransitions derives the transition probabilities for every
// position of a read, reusing the storage of dst when it is large
// enough. All four quality slices must have the same length.
func BuildTransitions[F float](dst []Transition[F], readQuals, insertionGOP, deletionGOP, overallGCP []byte) ([]Transition[F], error) {
	if err := checkQualsLength(len(readQuals), readQuals, insertionGOP, deletionGOP, overallGCP); err != nil {
		return dst, err
	}
	if err := checkAllQuals(readQuals, insertionGOP, deletionGOP, overallGCP); err != nil {
		return dst, err
	}
	return buildTransitions(dst, readQuals, insertionGOP, deletionGOP, overallGCP), nil
}

// buildTransitions assumes validated input.
func buildTransitions[F float](dst []Transition[F], readQuals, insertionGOP, deletionGOP, overallGCP []byte) []Transition[F] {
	n := len(readQuals)
	if n <= cap(dst) {
		dst = dst[:n]
	} else {
		dst = make([]Transition[F], n)
	}
	for i := range dst {
		substitution := qualToErrorProbCache[readQuals[i]]
		insertion := qualToErrorProbCache[insertionGOP[i]]
		deletion := qualToErrorProbCache[deletionGOP[i]]
		gcp := qualToErrorProbCache[overallGCP[i]]

		matchToMatch := 1 - (insertion + deletion)
		if matchToMatch < 0 {
			total := insertion + deletion
			insertion /= total
			deletion /= total
			matchToMatch = 0
		}

		dst[i] = Transition[F]{
			MatchPrior:           F(1 - substitution),
			MismatchPrior:        F(substitution / 3),
			MatchToMatch:         F(matchToMatch),
			MatchToInsertion:     F(insertion),
			MatchToDeletion:      F(deletion),
			IndelToMatch:         F(1 - gcp),
			InsertionToInsertion: F(gcp),
			DeletionToDeletion:   F(gcp),
		}
	}
	return dst
}
