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

	"github.com/pkg/errors"
)

// Implementation selects the numeric strategy of an Engine.
type Implementation int

const (
	// Exact sums log10 probabilities with exact log10 sum functions.
	// Very slow, only meant as a reference.
	Exact Implementation = iota

	// Original sums log10 probabilities with a lookup table accurate
	// to about 1e-4.
	Original

	// LoglessCaching works on scaled probabilities and caches the
	// per-read transitions.
	LoglessCaching
)

func (impl Implementation) String() string {
	switch impl {
	case Exact:
		return "exact"
	case Original:
		return "original"
	case LoglessCaching:
		return "logless-caching"
	default:
		return "unknown"
	}
}

// PairHMM is implemented by Engine and Tiered.
type PairHMM interface {
	// Initialize allocates the matrices for the given maximum
	// lengths. It must be called exactly once, before any likelihood
	// computation.
	Initialize(maxHaplotypeLength, maxReadLength int) error

	// ComputeReadLikelihoodGivenHaplotypeLog10 returns the log10
	// probability of the read arising from the haplotype.
	//
	// With hapStartIndex > 0 and recacheReadValues false, the caller
	// guarantees that the read and its qualities are those of the
	// previous call, and that the haplotype equals the previous
	// haplotype before hapStartIndex. Only the remaining haplotype
	// columns are then recomputed. FindFirstPositionWhereHaplotypesDiffer
	// computes a suitable hapStartIndex.
	ComputeReadLikelihoodGivenHaplotypeLog10(
		haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP []byte,
		hapStartIndex int, recacheReadValues bool,
	) (float64, error)
}

type kernel interface {
	precision() Precision
	clampTolerance() float64
	allocate(maxReadLength, maxHaplotypeLength int)
	cacheRead(readQuals, insertionGOP, deletionGOP, overallGCP []byte)
	cachedReadLength() int
	initializeHaplotype(haplotypeLength int)
	fill(haplotypeBases, readBases []byte, startColumn int)
	finalLog10(readLength, haplotypeLength int) (result float64, saturated bool)
	dump(w io.Writer) error
}

// Engine computes read likelihoods with one of the implementations. It
// owns its matrices and is not safe for concurrent use.
type Engine struct {
	kernel         kernel
	implementation Implementation

	initialized                       bool
	maxHaplotypeLength, maxReadLength int

	readCached              bool
	previousHaplotypeLength int
}

// New returns an uninitialized engine. Only LoglessCaching supports
// Single precision.
func New(impl Implementation, precision Precision) (*Engine, error) {
	var k kernel
	switch impl {
	case Exact, Original:
		if precision != Double {
			return nil, errors.Wrapf(ErrUnknownImplementation, "%v requires double precision", impl)
		}
		if impl == Exact {
			k = newExactKernel()
		} else {
			k = newOriginalKernel()
		}
	case LoglessCaching:
		switch precision {
		case Double:
			k = newLoglessKernel[float64](Double)
		case Single:
			k = newLoglessKernel[float32](Single)
		default:
			return nil, errors.Wrapf(ErrUnknownImplementation, "precision %v", int(precision))
		}
	default:
		return nil, errors.Wrapf(ErrUnknownImplementation, "implementation %v", int(impl))
	}
	return &Engine{kernel: k, implementation: impl}, nil
}

// Implementation returns the implementation the engine was created with.
func (e *Engine) Implementation() Implementation {
	return e.implementation
}

// Precision returns the precision of the engine's matrices.
func (e *Engine) Precision() Precision {
	return e.kernel.precision()
}

// MaxHaplotypeLength returns the configured maximum, or 0 before
// initialization.
func (e *Engine) MaxHaplotypeLength() int {
	return e.maxHaplotypeLength
}

// MaxReadLength returns the configured maximum, or 0 before
// initialization.
func (e *Engine) MaxReadLength() int {
	return e.maxReadLength
}

// Initialize implements PairHMM.
func (e *Engine) Initialize(maxHaplotypeLength, maxReadLength int) error {
	if e.initialized {
		return ErrAlreadyInitialized
	}
	if maxReadLength <= 0 {
		return errors.Wrapf(ErrBadMaxLength, "read max length got %v", maxReadLength)
	}
	if maxHaplotypeLength <= 0 {
		return errors.Wrapf(ErrBadMaxLength, "haplotype max length got %v", maxHaplotypeLength)
	}
	e.maxHaplotypeLength = maxHaplotypeLength
	e.maxReadLength = maxReadLength
	e.kernel.allocate(maxReadLength, maxHaplotypeLength)
	e.initialized = true
	return nil
}

func (e *Engine) validate(
	haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP []byte,
	hapStartIndex int,
) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if len(haplotypeBases) == 0 {
		return ErrEmptyHaplotype
	}
	if len(haplotypeBases) > e.maxHaplotypeLength {
		return errors.Wrapf(ErrHaplotypeTooLong, "got %v but max is %v", len(haplotypeBases), e.maxHaplotypeLength)
	}
	if len(readBases) == 0 {
		return ErrEmptyRead
	}
	if len(readBases) > e.maxReadLength {
		return errors.Wrapf(ErrReadTooLong, "got %v but max is %v", len(readBases), e.maxReadLength)
	}
	if err := checkQualsLength(len(readBases), readQuals, insertionGOP, deletionGOP, overallGCP); err != nil {
		return err
	}
	if hapStartIndex < 0 || hapStartIndex > len(haplotypeBases) {
		return errors.Wrapf(ErrBadHapStartIndex, "must be between 0 and haplotype length %v but got %v", len(haplotypeBases), hapStartIndex)
	}
	return checkAllQuals(readQuals, insertionGOP, deletionGOP, overallGCP)
}

// ComputeReadLikelihoodGivenHaplotypeLog10 implements PairHMM. Invalid
// input is reported before any matrix is touched. A result that cannot
// be trusted is reported as a *NumericalFault.
func (e *Engine) ComputeReadLikelihoodGivenHaplotypeLog10(
	haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP []byte,
	hapStartIndex int, recacheReadValues bool,
) (float64, error) {
	if err := e.validate(haplotypeBases, readBases, readQuals, insertionGOP, deletionGOP, overallGCP, hapStartIndex); err != nil {
		return 0, err
	}

	if recacheReadValues || !e.readCached || e.kernel.cachedReadLength() != len(readBases) {
		e.kernel.cacheRead(readQuals, insertionGOP, deletionGOP, overallGCP)
		e.readCached = true
		hapStartIndex = 0
	}
	if e.previousHaplotypeLength != len(haplotypeBases) {
		e.kernel.initializeHaplotype(len(haplotypeBases))
		e.previousHaplotypeLength = len(haplotypeBases)
		hapStartIndex = 0
	}

	e.kernel.fill(haplotypeBases, readBases, hapStartIndex)
	result, saturated := e.kernel.finalLog10(len(readBases), len(haplotypeBases))
	return e.checkResult(result, saturated)
}

func (e *Engine) checkResult(result float64, saturated bool) (float64, error) {
	if saturated {
		return 0, &NumericalFault{Value: result, Precision: e.kernel.precision(), Err: ErrPrecisionExhausted}
	}
	if result > 0 && result <= e.kernel.clampTolerance() {
		result = 0
	}
	if !GoodLog10Probability(result) {
		return 0, &NumericalFault{Value: result, Precision: e.kernel.precision(), Err: ErrNumericalFault}
	}
	return result, nil
}

// dumpMatrices writes the match, insertion and deletion matrices of the
// last computation to w, for debugging.
func (e *Engine) dumpMatrices(w io.Writer) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	return e.kernel.dump(w)
}

// FindFirstPositionWhereHaplotypesDiffer returns the first index at
// which the two haplotypes differ, or the length of the shorter one.
func FindFirstPositionWhereHaplotypesDiffer(haplotype1, haplotype2 []byte) int {
	n := len(haplotype1)
	if len(haplotype2) < n {
		n = len(haplotype2)
	}
	for i := 0; i < n; i++ {
		if haplotype1[i] != haplotype2[i] {
			return i
		}
	}
	return n
}
