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

	"github.com/pkg/errors"
)

const (
	// MaxCachedQual is the largest quality with a precomputed probability.
	MaxCachedQual = 127

	// DefaultGOP is the default phred-scaled gap open penalty.
	DefaultGOP = 45

	// DefaultGCP is the default phred-scaled gap continuation penalty.
	DefaultGCP = 10
)

// The tables are filled once at package initialization and only read
// afterwards, so they are safe to share between goroutines.
var (
	qualToErrorProbCache      [MaxCachedQual + 1]float64
	qualToProbCache           [MaxCachedQual + 1]float64
	qualToErrorProbLog10Cache [MaxCachedQual + 1]float64
	qualToProbLog10Cache      [MaxCachedQual + 1]float64
)

func init() {
	for q := range qualToErrorProbCache {
		errorProb := qualityToErrorProbability(float64(q))
		qualToErrorProbCache[q] = errorProb
		qualToProbCache[q] = 1 - errorProb
		qualToErrorProbLog10Cache[q] = float64(q) / -10.0
		qualToProbLog10Cache[q] = math.Log1p(-errorProb) / math.Ln10
	}
}

func qualityToErrorProbability(phred float64) float64 {
	return math.Pow(10, phred/-10)
}

func checkQual(qual byte) error {
	if qual > MaxCachedQual {
		return errors.Wrapf(ErrQualityOutOfRange, "got %v but max is %v", qual, MaxCachedQual)
	}
	return nil
}

func checkQuals(name string, quals []byte) error {
	for i, qual := range quals {
		if qual > MaxCachedQual {
			return errors.Wrapf(ErrQualityOutOfRange, "%v[%v] is %v but max is %v", name, i, qual, MaxCachedQual)
		}
	}
	return nil
}

// QualToErrorProb returns 10^(-qual/10).
func QualToErrorProb(qual byte) (float64, error) {
	if err := checkQual(qual); err != nil {
		return 0, err
	}
	return qualToErrorProbCache[qual], nil
}

// QualToProb returns 1 - 10^(-qual/10).
func QualToProb(qual byte) (float64, error) {
	if err := checkQual(qual); err != nil {
		return 0, err
	}
	return qualToProbCache[qual], nil
}

// QualToErrorProbLog10 returns log10 of QualToErrorProb.
func QualToErrorProbLog10(qual byte) (float64, error) {
	if err := checkQual(qual); err != nil {
		return 0, err
	}
	return qualToErrorProbLog10Cache[qual], nil
}

// QualToProbLog10 returns log10 of QualToProb.
func QualToProbLog10(qual byte) (float64, error) {
	if err := checkQual(qual); err != nil {
		return 0, err
	}
	return qualToProbLog10Cache[qual], nil
}
