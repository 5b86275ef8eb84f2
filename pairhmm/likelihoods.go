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
	"github.com/willf/bitset"
)

// Read is a read with its four per-base quality arrays.
type Read struct {
	Bases, Quals, InsertionGOP, DeletionGOP, OverallGCP []byte
}

// ComputeReadLikelihoods computes the likelihood of every read against
// every haplotype into likelihoods, which must have room for
// len(reads)*len(haplotypes) values, laid out read by read. Consecutive
// haplotypes of the same read reuse the matrix columns of their common
// prefix.
//
// When hmm is a *Tiered and escalated is not nil, the indexes of the
// likelihoods that needed double precision are added to escalated.
func ComputeReadLikelihoods(hmm PairHMM, reads []Read, haplotypes [][]byte, likelihoods []float64, escalated *bitset.BitSet) error {
	if len(likelihoods) < len(reads)*len(haplotypes) {
		return errors.Errorf("room for %v likelihoods, but need %v", len(likelihoods), len(reads)*len(haplotypes))
	}
	tiered, _ := hmm.(*Tiered)
	index := 0
	for r := range reads {
		read := &reads[r]
		var previous []byte
		for h, haplotype := range haplotypes {
			hapStartIndex, recache := 0, true
			if h > 0 {
				recache = false
				if len(previous) == len(haplotype) {
					hapStartIndex = FindFirstPositionWhereHaplotypesDiffer(previous, haplotype)
				}
			}
			var (
				result float64
				err    error
			)
			if tiered != nil {
				var tr TieredResult
				tr, err = tiered.ComputeTiered(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, hapStartIndex, recache)
				result = tr.Log10Likelihood
				if tr.Escalated && escalated != nil {
					escalated.Set(uint(index))
				}
			} else {
				result, err = hmm.ComputeReadLikelihoodGivenHaplotypeLog10(haplotype, read.Bases, read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP, hapStartIndex, recache)
			}
			if err != nil {
				return errors.Wrapf(err, "read %v, haplotype %v", r, h)
			}
			likelihoods[index] = result
			index++
			previous = haplotype
		}
	}
	return nil
}
