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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type variant struct {
	name      string
	impl      Implementation
	precision Precision
}

var variants = []variant{
	{"exact", Exact, Double},
	{"original", Original, Double},
	{"logless", LoglessCaching, Double},
	{"logless-single", LoglessCaching, Single},
}

func newEngine(t testing.TB, v variant, maxHaplotypeLength, maxReadLength int) *Engine {
	e, err := New(v.impl, v.precision)
	require.NoError(t, err)
	require.NoError(t, e.Initialize(maxHaplotypeLength, maxReadLength))
	return e
}

func repeat(n int, value byte) []byte {
	result := make([]byte, n)
	for i := range result {
		result[i] = value
	}
	return result
}

func uniformRead(bases string, qual, gop, gcp byte) Read {
	n := len(bases)
	return Read{
		Bases:        []byte(bases),
		Quals:        repeat(n, qual),
		InsertionGOP: repeat(n, gop),
		DeletionGOP:  repeat(n, gop),
		OverallGCP:   repeat(n, gcp),
	}
}

const bases = "ACGT"

func randomBases(rnd *rand.Rand, n int) []byte {
	result := make([]byte, n)
	for i := range result {
		result[i] = bases[rnd.Intn(len(bases))]
	}
	return result
}

// randomRead samples a read of the given length from the haplotype, with
// substitutions at roughly one in ten bases and realistic qualities.
func randomRead(rnd *rand.Rand, haplotype []byte, length int) Read {
	start := rnd.Intn(len(haplotype) - length + 1)
	read := Read{
		Bases:        append([]byte(nil), haplotype[start:start+length]...),
		Quals:        make([]byte, length),
		InsertionGOP: make([]byte, length),
		DeletionGOP:  make([]byte, length),
		OverallGCP:   repeat(length, DefaultGCP),
	}
	for i := range read.Bases {
		if rnd.Intn(10) == 0 {
			read.Bases[i] = bases[rnd.Intn(len(bases))]
		}
		if rnd.Intn(50) == 0 {
			read.Bases[i] = 'N'
		}
		read.Quals[i] = byte(6 + rnd.Intn(35))
		read.InsertionGOP[i] = byte(30 + rnd.Intn(16))
		read.DeletionGOP[i] = byte(30 + rnd.Intn(16))
	}
	return read
}

func compute(t testing.TB, hmm PairHMM, haplotype []byte, read Read, hapStartIndex int, recache bool) float64 {
	result, err := hmm.ComputeReadLikelihoodGivenHaplotypeLog10(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, hapStartIndex, recache)
	require.NoError(t, err)
	return result
}

func requireValid(t testing.TB, result float64) {
	require.True(t, result <= 0, "likelihood %v above 0", result)
	require.False(t, math.IsInf(result, 0) || math.IsNaN(result), "likelihood %v not finite", result)
}

// snapshot copies the matrices of an engine.
func snapshot(e *Engine) [][]float64 {
	switch k := e.kernel.(type) {
	case *loglessKernel[float64]:
		return copyMatrices(&k.matrices)
	case *loglessKernel[float32]:
		return copyMatrices(&k.matrices)
	case *log10Kernel:
		return copyMatrices(&k.matrices)
	}
	panic("unknown kernel")
}

// shape returns the allocated dimensions of an engine's matrices.
func shape(e *Engine) (rows, cols int) {
	switch k := e.kernel.(type) {
	case *loglessKernel[float64]:
		return k.matrices.Rows(), k.matrices.Cols()
	case *loglessKernel[float32]:
		return k.matrices.Rows(), k.matrices.Cols()
	case *log10Kernel:
		return k.matrices.Rows(), k.matrices.Cols()
	}
	panic("unknown kernel")
}

func copyMatrices[F float](m *Matrices[F]) [][]float64 {
	var result [][]float64
	for _, mat := range []*matrix[F]{&m.match, &m.insertion, &m.deletion} {
		values := make([]float64, len(mat.array))
		for i, v := range mat.array {
			values[i] = float64(v)
		}
		result = append(result, values)
	}
	return result
}
