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
	"testing"
)

func benchmarkEngine(b *testing.B, hmm PairHMM, incremental bool) {
	rnd := rand.New(rand.NewSource(1))
	haplotypes := randomHaplotypes(rnd, 8, 300)[:8]
	read := randomRead(rnd, haplotypes[0], 150)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for h, haplotype := range haplotypes {
			hapStartIndex := 0
			if incremental && h > 0 {
				hapStartIndex = FindFirstPositionWhereHaplotypesDiffer(haplotypes[h-1], haplotype)
			}
			if _, err := hmm.ComputeReadLikelihoodGivenHaplotypeLog10(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, hapStartIndex, h == 0); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkEngine(b *testing.B) {
	for _, v := range variants {
		b.Run(v.name, func(b *testing.B) {
			benchmarkEngine(b, newEngine(b, v, 300, 150), false)
		})
	}
	b.Run("logless-incremental", func(b *testing.B) {
		benchmarkEngine(b, newEngine(b, variants[2], 300, 150), true)
	})
	b.Run("tiered", func(b *testing.B) {
		benchmarkEngine(b, newTiered(b, 300, 150), true)
	})
}
