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
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTiered(t testing.TB, maxHaplotypeLength, maxReadLength int) *Tiered {
	tiered := NewTiered()
	require.NoError(t, tiered.Initialize(maxHaplotypeLength, maxReadLength))
	return tiered
}

func TestTieredWithoutEscalation(t *testing.T) {
	rnd := rand.New(rand.NewSource(17))
	tiered := newTiered(t, 120, 50)
	single := newEngine(t, variant{"single", LoglessCaching, Single}, 120, 50)
	double := newEngine(t, variant{"double", LoglessCaching, Double}, 120, 50)
	for i := 0; i < 20; i++ {
		readLength := 10 + rnd.Intn(40)
		haplotype := randomBases(rnd, readLength+rnd.Intn(70))
		read := randomRead(rnd, haplotype, readLength)
		result, err := tiered.ComputeTiered(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, 0, true)
		require.NoError(t, err)
		assert.False(t, result.Escalated)
		assert.Equal(t, compute(t, single, haplotype, read, 0, true), result.Log10Likelihood)
		assert.InDelta(t, compute(t, double, haplotype, read, 0, true), result.Log10Likelihood, 1e-3)
	}
	assert.Equal(t, 0, tiered.Escalations())
}

func TestTieredEscalates(t *testing.T) {
	haplotype := []byte(strings.Repeat("A", 30))
	read := uniformRead(strings.Repeat("C", 20), 40, 40, 40)

	single := newEngine(t, variant{"single", LoglessCaching, Single}, 30, 20)
	_, err := single.ComputeReadLikelihoodGivenHaplotypeLog10(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, 0, true)
	fault, ok := IsNumericalFault(err)
	require.True(t, ok, "expected a numerical fault, got %v", err)
	assert.Equal(t, ErrPrecisionExhausted, fault.Err)
	assert.Equal(t, Single, fault.Precision)
	assert.Equal(t, ErrPrecisionExhausted, errors.Cause(err))

	double := newEngine(t, variant{"double", LoglessCaching, Double}, 30, 20)
	expected := compute(t, double, haplotype, read, 0, true)
	assert.InDelta(t, -78.178, expected, 1e-3)

	tiered := newTiered(t, 30, 20)
	result, err := tiered.ComputeTiered(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, 0, true)
	require.NoError(t, err)
	assert.True(t, result.Escalated)
	assert.Equal(t, expected, result.Log10Likelihood)
	assert.Equal(t, 1, tiered.Escalations())

	// the plain interface returns the same value
	assert.Equal(t, expected, compute(t, tiered, haplotype, read, 0, true))
	assert.Equal(t, 2, tiered.Escalations())
}

func TestTieredIncrementalAfterEscalation(t *testing.T) {
	haplotype1 := []byte(strings.Repeat("A", 30))
	haplotype2 := []byte(strings.Repeat("A", 12) + strings.Repeat("C", 18))
	read := uniformRead(strings.Repeat("C", 20), 40, 40, 40)

	tiered := newTiered(t, 30, 20)
	compute(t, tiered, haplotype1, read, 0, true)
	require.Equal(t, 1, tiered.Escalations())
	incremental := compute(t, tiered, haplotype2, read, 12, false)
	full := compute(t, newTiered(t, 30, 20), haplotype2, read, 0, true)
	assert.Equal(t, full, incremental)
	assert.True(t, incremental > -10)
}

func TestTieredInvalidInput(t *testing.T) {
	tiered := NewTiered()
	read := uniformRead("ACGT", 30, 45, 10)
	_, err := tiered.ComputeTiered([]byte("ACGTACGT"), read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, 0, true)
	assert.Equal(t, ErrNotInitialized, errors.Cause(err))

	require.NoError(t, tiered.Initialize(8, 4))
	assert.Equal(t, 8, tiered.MaxHaplotypeLength())
	assert.Equal(t, 4, tiered.MaxReadLength())
	_, err = tiered.ComputeTiered([]byte("ACGTACGT"), read.Bases, read.Quals[:3], read.InsertionGOP, read.DeletionGOP, read.OverallGCP, 0, true)
	assert.Equal(t, ErrQualsLengthMismatch, errors.Cause(err))
	_, err = tiered.ComputeTiered([]byte("ACGTACGT"), read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, 9, false)
	assert.Equal(t, ErrBadHapStartIndex, errors.Cause(err))
	assert.Equal(t, 0, tiered.Escalations())
	assert.Equal(t, ErrAlreadyInitialized, errors.Cause(tiered.Initialize(8, 4)))
}
