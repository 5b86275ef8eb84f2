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
	"fmt"

	"github.com/pkg/errors"
)

// Invalid input. Errors returned by this package wrap one of these, so
// use errors.Cause to compare.
var (
	ErrBadMaxLength          = errors.New("maximum length must be > 0")
	ErrAlreadyInitialized    = errors.New("pair HMM already initialized")
	ErrNotInitialized        = errors.New("must call Initialize before computing likelihoods")
	ErrEmptyHaplotype        = errors.New("haplotype bases cannot be empty")
	ErrHaplotypeTooLong      = errors.New("haplotype bases too long")
	ErrEmptyRead             = errors.New("read bases cannot be empty")
	ErrReadTooLong           = errors.New("read bases too long")
	ErrQualsLengthMismatch   = errors.New("read bases and qualities are not the same size")
	ErrBadHapStartIndex      = errors.New("hapStartIndex out of range")
	ErrQualityOutOfRange     = errors.New("quality out of cacheable range")
	ErrUnknownImplementation = errors.New("unknown pair HMM implementation")
)

// Internal numerical faults, see NumericalFault.
var (
	ErrNumericalFault     = errors.New("bad likelihood")
	ErrPrecisionExhausted = errors.New("likelihood underflows the numeric representation")
)

// NumericalFault reports a likelihood that cannot be trusted: a log10
// probability above 0, a NaN or infinity, or a sum that fell below the
// smallest magnitude the representation resolves.
type NumericalFault struct {
	Value     float64
	Precision Precision
	Err       error
}

func (f *NumericalFault) Error() string {
	return fmt.Sprintf("%v: %v (%v precision)", f.Err, f.Value, f.Precision)
}

// Cause implements the causer interface of github.com/pkg/errors.
func (f *NumericalFault) Cause() error {
	return f.Err
}

// Unwrap supports errors.Is from the standard library.
func (f *NumericalFault) Unwrap() error {
	return f.Err
}

// IsNumericalFault returns the fault wrapped in err, if any.
func IsNumericalFault(err error) (*NumericalFault, bool) {
	var fault *NumericalFault
	if errors.As(err, &fault) {
		return fault, true
	}
	return nil, false
}
