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

// Tiered runs the logless caching implementation in single precision
// and repeats a computation in double precision when the single
// precision result is a NumericalFault. The two engines do not share
// state; a repeated computation is always a full one.
type Tiered struct {
	narrow, wide *Engine
	escalations  int
}

// TieredResult is a likelihood together with the precision that
// produced it.
type TieredResult struct {
	Log10Likelihood float64
	Escalated       bool
}

// NewTiered returns an uninitialized tiered engine.
func NewTiered() *Tiered {
	narrow, err := New(LoglessCaching, Single)
	if err != nil {
		panic(err)
	}
	wide, err := New(LoglessCaching, Double)
	if err != nil {
		panic(err)
	}
	return &Tiered{narrow: narrow, wide: wide}
}

// Initialize implements PairHMM.
func (t *Tiered) Initialize(maxHaplotypeLength, maxReadLength int) error {
	if err := t.narrow.Initialize(maxHaplotypeLength, maxReadLength); err != nil {
		return err
	}
	return t.wide.Initialize(maxHaplotypeLength, maxReadLength)
}

// MaxHaplotypeLength returns the configured maximum.
func (t *Tiered) MaxHaplotypeLength() int {
	return t.narrow.MaxHaplotypeLength()
}

// MaxReadLength returns the configured maximum.
func (t *Tiered) MaxReadLength() int {
	return t.narrow.MaxReadLength()
}

// Escalations returns how many computations were repeated in double
// precision.
func (t *Tiered) Escalations() int {
	return t.escalations
}

// ComputeReadLikelihoodGivenHaplotypeLog10 implements PairHMM.
func (t *Tiered) ComputeReadLikelihoodGivenHaplotypeLog10(
	haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP []byte,
	hapStartIndex int, recacheReadValues bool,
) (float64, error) {
	result, err := t.ComputeTiered(haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP, hapStartIndex, recacheReadValues)
	return result.Log10Likelihood, err
}

// ComputeTiered is ComputeReadLikelihoodGivenHaplotypeLog10, but also
// reports whether double precision was needed.
func (t *Tiered) ComputeTiered(
	haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP []byte,
	hapStartIndex int, recacheReadValues bool,
) (TieredResult, error) {
	result, err := t.narrow.ComputeReadLikelihoodGivenHaplotypeLog10(haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP, hapStartIndex, recacheReadValues)
	if err == nil {
		return TieredResult{Log10Likelihood: result}, nil
	}
	if _, ok := IsNumericalFault(err); !ok {
		return TieredResult{}, err
	}
	t.escalations++
	result, err = t.wide.ComputeReadLikelihoodGivenHaplotypeLog10(haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP, 0, true)
	if err != nil {
		return TieredResult{Escalated: true}, err
	}
	return TieredResult{Log10Likelihood: result, Escalated: true}, nil
}
