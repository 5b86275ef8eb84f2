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
	"github.com/willf/bitset"
)

func randomHaplotypes(rnd *rand.Rand, n, length int) [][]byte {
	base := randomBases(rnd, length)
	haplotypes := [][]byte{base}
	for len(haplotypes) < n {
		haplotype := append([]byte(nil), base...)
		position := rnd.Intn(length)
		haplotype[position] = bases[(strings.IndexByte(bases, haplotype[position])+1)%len(bases)]
		haplotypes = append(haplotypes, haplotype)
	}
	// one haplotype of a different length
	return append(haplotypes, randomBases(rnd, length-3))
}

func TestComputeReadLikelihoods(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	haplotypes := randomHaplotypes(rnd, 5, 60)
	var reads []Read
	for i := 0; i < 8; i++ {
		reads = append(reads, randomRead(rnd, haplotypes[0], 20+rnd.Intn(30)))
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			likelihoods := make([]float64, len(reads)*len(haplotypes))
			require.NoError(t, ComputeReadLikelihoods(newEngine(t, v, 60, 50), reads, haplotypes, likelihoods, nil))
			fresh := newEngine(t, v, 60, 50)
			for r, read := range reads {
				for h, haplotype := range haplotypes {
					assert.Equal(t, compute(t, fresh, haplotype, read, 0, true), likelihoods[r*len(haplotypes)+h], "read %v, haplotype %v", r, h)
				}
			}
		})
	}
}

func TestComputeReadLikelihoodsTiered(t *testing.T) {
	haplotypes := [][]byte{
		[]byte(strings.Repeat("C", 30)),
		[]byte(strings.Repeat("A", 30)),
		[]byte(strings.Repeat("A", 12) + strings.Repeat("C", 18)),
	}
	reads := []Read{
		uniformRead(strings.Repeat("C", 20), 40, 40, 40),
		uniformRead(strings.Repeat("C", 10), 40, 40, 40),
	}
	likelihoods := make([]float64, 6)
	escalated := bitset.New(6)
	tiered := newTiered(t, 30, 20)
	require.NoError(t, ComputeReadLikelihoods(tiered, reads, haplotypes, likelihoods, escalated))

	assert.True(t, escalated.Test(1))
	assert.Equal(t, uint(1), escalated.Count())
	assert.Equal(t, 1, tiered.Escalations())
	assert.InDelta(t, -78.178, likelihoods[1], 1e-3)
	for i, likelihood := range likelihoods {
		requireValid(t, likelihood)
		if i != 1 {
			assert.True(t, likelihood > -45, "likelihood %v: %v", i, likelihood)
		}
	}
}

func TestComputeReadLikelihoodsErrors(t *testing.T) {
	e := newEngine(t, variants[2], 10, 10)
	reads := []Read{uniformRead("ACGT", 30, 45, 10)}
	haplotypes := [][]byte{[]byte("ACGTACGT"), []byte("ACGTACGTACGT")}

	err := ComputeReadLikelihoods(e, reads, haplotypes, make([]float64, 1), nil)
	assert.Error(t, err)

	err = ComputeReadLikelihoods(e, reads, haplotypes, make([]float64, 2), nil)
	assert.Equal(t, ErrHaplotypeTooLong, errors.Cause(err))
	assert.Contains(t, err.Error(), "read 0, haplotype 1")
}
