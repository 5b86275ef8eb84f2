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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransitions(t *testing.T) {
	quals := []byte{30, 20, 10}
	ins := []byte{45, 40, 30}
	del := []byte{45, 30, 40}
	gcp := []byte{10, 10, 20}
	transitions, err := BuildTransitions[float64](nil, quals, ins, del, gcp)
	require.NoError(t, err)
	require.Len(t, transitions, 3)

	tr := transitions[1]
	assert.InDelta(t, 0.99, tr.MatchPrior, 1e-12)
	assert.InDelta(t, 0.01/3, tr.MismatchPrior, 1e-12)
	assert.InDelta(t, 1e-4, tr.MatchToInsertion, 1e-12)
	assert.InDelta(t, 1e-3, tr.MatchToDeletion, 1e-12)
	assert.InDelta(t, 0.9, tr.IndelToMatch, 1e-12)
	assert.InDelta(t, 0.1, tr.InsertionToInsertion, 1e-12)
	assert.InDelta(t, 0.1, tr.DeletionToDeletion, 1e-12)

	for i, tr := range transitions {
		assert.InDelta(t, 1, tr.MatchToMatch+tr.MatchToInsertion+tr.MatchToDeletion, 1e-12, "match exits at %v", i)
		assert.InDelta(t, 1, tr.IndelToMatch+tr.InsertionToInsertion, 1e-12, "insertion exits at %v", i)
		assert.InDelta(t, 1, tr.IndelToMatch+tr.DeletionToDeletion, 1e-12, "deletion exits at %v", i)
	}
}

func TestBuildTransitionsLowGapOpenPenalties(t *testing.T) {
	transitions, err := BuildTransitions[float32](nil, []byte{20}, []byte{0}, []byte{1}, []byte{10})
	require.NoError(t, err)
	tr := transitions[0]
	assert.Equal(t, float32(0), tr.MatchToMatch)
	assert.InDelta(t, 1, tr.MatchToInsertion+tr.MatchToDeletion, 1e-6)
	assert.True(t, tr.MatchToInsertion > tr.MatchToDeletion)
}

func TestBuildTransitionsReusesStorage(t *testing.T) {
	quals := []byte{30, 30, 30, 30}
	dst := make([]Transition[float64], 10)
	transitions, err := BuildTransitions(dst, quals, quals, quals, quals)
	require.NoError(t, err)
	assert.Len(t, transitions, 4)
	assert.Same(t, &dst[0], &transitions[0])
}

func TestBuildTransitionsInvalid(t *testing.T) {
	_, err := BuildTransitions[float64](nil, []byte{30, 30}, []byte{45}, []byte{45, 45}, []byte{10, 10})
	assert.Equal(t, ErrQualsLengthMismatch, errors.Cause(err))

	_, err = BuildTransitions[float64](nil, []byte{30, 30}, []byte{45, 45}, []byte{45, 200}, []byte{10, 10})
	assert.Equal(t, ErrQualityOutOfRange, errors.Cause(err))
}
