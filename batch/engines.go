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

package batch

import (
	"sync"

	"github.com/exascience/pairhmm/pairhmm"
	"github.com/pkg/errors"
)

// Engine is a pair HMM that knows the lengths it was initialized for.
type Engine interface {
	pairhmm.PairHMM
	MaxHaplotypeLength() int
	MaxReadLength() int
}

// Implementation names accepted by NewEngineFunc.
const (
	Tiered        = "tiered"
	Exact         = "exact"
	Original      = "original"
	Logless       = "logless"
	LoglessSingle = "logless-single"
)

// Implementations lists the accepted implementation names.
var Implementations = []string{Tiered, Exact, Original, Logless, LoglessSingle}

// NewEngineFunc returns a constructor for uninitialized engines of the
// named implementation.
func NewEngineFunc(name string) (func() Engine, error) {
	var impl pairhmm.Implementation
	precision := pairhmm.Double
	switch name {
	case "", Tiered:
		return func() Engine { return pairhmm.NewTiered() }, nil
	case Exact:
		impl = pairhmm.Exact
	case Original:
		impl = pairhmm.Original
	case Logless:
		impl = pairhmm.LoglessCaching
	case LoglessSingle:
		impl, precision = pairhmm.LoglessCaching, pairhmm.Single
	default:
		return nil, errors.Wrapf(pairhmm.ErrUnknownImplementation, "%q", name)
	}
	return func() Engine {
		engine, err := pairhmm.New(impl, precision)
		if err != nil {
			panic(err)
		}
		return engine
	}, nil
}

// enginePool hands out initialized engines that are large enough for a
// test case. An engine is never initialized twice, so a test case that
// exceeds a pooled engine's maximums gets a fresh, larger engine.
type enginePool struct {
	pool      sync.Pool
	newEngine func() Engine
}

func newEnginePool(newEngine func() Engine) *enginePool {
	return &enginePool{newEngine: newEngine}
}

const (
	minHaplotypeLength = 64
	minReadLength      = 64
)

func (p *enginePool) get(maxHaplotypeLength, maxReadLength int) (Engine, error) {
	maxHaplotypeLength = maxInt(maxHaplotypeLength, minHaplotypeLength)
	maxReadLength = maxInt(maxReadLength, minReadLength)
	if x := p.pool.Get(); x != nil {
		engine := x.(Engine)
		if engine.MaxHaplotypeLength() >= maxHaplotypeLength && engine.MaxReadLength() >= maxReadLength {
			return engine, nil
		}
		maxHaplotypeLength = maxInt(maxHaplotypeLength, engine.MaxHaplotypeLength())
		maxReadLength = maxInt(maxReadLength, engine.MaxReadLength())
	}
	engine := p.newEngine()
	if err := engine.Initialize(maxHaplotypeLength, maxReadLength); err != nil {
		return nil, err
	}
	return engine, nil
}

func (p *enginePool) put(engine Engine) {
	p.pool.Put(engine)
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}
