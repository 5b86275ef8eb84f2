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

// Package batch computes the likelihoods of a stream of test cases in
// parallel, writing the results in input order.
package batch

import (
	"fmt"
	"io"

	"github.com/exascience/pairhmm/pairhmm"
	"github.com/exascience/pairhmm/testcase"
	"github.com/exascience/pargo/pipeline"
	"github.com/pkg/errors"
	"github.com/willf/bitset"
)

// Stats summarizes a run.
type Stats struct {
	Testcases   int
	Likelihoods int
	Escalations int
}

type job struct {
	tc          *testcase.Testcase
	likelihoods []float64
	escalated   *bitset.BitSet
	err         error
}

// Run reads all test cases from input, computes their likelihoods with
// engines made by newEngine, and writes them to output. When
// escalationReport is not nil, it receives one line per test case with
// the indexes of the likelihoods that needed double precision.
func Run(input *testcase.Scanner, output *testcase.Writer, newEngine func() Engine, escalationReport io.Writer) (stats Stats, err error) {
	engines := newEnginePool(newEngine)

	var p pipeline.Pipeline
	p.Source(pipeline.NewFunc(-1, func(size int) (interface{}, int, error) {
		jobs := make([]*job, 0, size)
		for len(jobs) < size {
			tc := new(testcase.Testcase)
			if !input.Scan(tc) {
				break
			}
			jobs = append(jobs, &job{tc: tc})
		}
		return jobs, len(jobs), input.Err()
	}))
	p.SetVariableBatchSize(1, 16)
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, j := range data.([]*job) {
				j.compute(engines)
			}
			return data
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			for _, j := range data.([]*job) {
				if p.Err() != nil {
					return nil
				}
				if j.err != nil {
					p.SetErr(errors.Wrapf(j.err, "test case %v", stats.Testcases+1))
					return nil
				}
				if err := output.WriteLikelihoods(j.likelihoods); err != nil {
					p.SetErr(err)
					return nil
				}
				escalations := int(j.escalated.Count())
				if escalationReport != nil && escalations > 0 {
					if err := writeEscalations(escalationReport, stats.Testcases+1, j.escalated); err != nil {
						p.SetErr(err)
						return nil
					}
				}
				stats.Testcases++
				stats.Likelihoods += len(j.likelihoods)
				stats.Escalations += escalations
			}
			return nil
		})),
	)
	p.Run()
	if err = p.Err(); err != nil {
		return stats, err
	}
	return stats, output.Flush()
}

func (j *job) compute(engines *enginePool) {
	tc := j.tc
	j.likelihoods = make([]float64, tc.NumLikelihoods())
	j.escalated = bitset.New(uint(len(j.likelihoods)))
	if len(j.likelihoods) == 0 {
		return
	}
	engine, err := engines.get(tc.MaxHaplotypeLength(), tc.MaxReadLength())
	if err != nil {
		j.err = err
		return
	}
	defer engines.put(engine)
	j.err = pairhmm.ComputeReadLikelihoods(engine, tc.Reads, tc.Haplotypes, j.likelihoods, j.escalated)
}

func writeEscalations(w io.Writer, testcaseNumber int, escalated *bitset.BitSet) error {
	if _, err := fmt.Fprintf(w, "%v", testcaseNumber); err != nil {
		return err
	}
	for i, ok := escalated.NextSet(0); ok; i, ok = escalated.NextSet(i + 1) {
		if _, err := fmt.Fprintf(w, "\t%v", i); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
