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

/*
Package testcase reads and writes the batch format of pair HMM test
cases. A file is a sequence of test cases, each of the form

	<number of reads> <number of haplotypes>
	<read bases> <base quals> <insertion quals> <deletion quals> <gap continuation quals>
	...
	<haplotype bases>
	...

with one line per read and one line per haplotype. Qualities are phred
scores encoded as ASCII characters offset by 33, one per read base. Blank
lines and lines starting with '#' between test cases are ignored.
*/
package testcase

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/exascience/pairhmm/pairhmm"
	"github.com/pkg/errors"
)

// QualOffset is subtracted from quality characters.
const QualOffset = 33

// ErrInvalid is returned for malformed test cases.
var ErrInvalid = errors.New("invalid test case")

// Testcase is a set of reads, each to be compared against every
// haplotype.
type Testcase struct {
	Reads      []pairhmm.Read
	Haplotypes [][]byte
}

// NumLikelihoods is the number of read and haplotype combinations.
func (tc *Testcase) NumLikelihoods() int {
	return len(tc.Reads) * len(tc.Haplotypes)
}

// MaxReadLength returns the length of the longest read.
func (tc *Testcase) MaxReadLength() (max int) {
	for _, read := range tc.Reads {
		if l := len(read.Bases); l > max {
			max = l
		}
	}
	return max
}

// MaxHaplotypeLength returns the length of the longest haplotype.
func (tc *Testcase) MaxHaplotypeLength() (max int) {
	for _, haplotype := range tc.Haplotypes {
		if l := len(haplotype); l > max {
			max = l
		}
	}
	return max
}

// Scanner reads test cases one at a time.
type Scanner struct {
	b    *bufio.Scanner
	line int
	err  error
}

const (
	maxLineLength   = 1 << 24
	maxPreallocated = 1 << 10
)

// NewScanner returns a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineLength)
	return &Scanner{b: b}
}

func (s *Scanner) scan() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = io.EOF
		}
		return false
	}
	s.line++
	return true
}

func (s *Scanner) fail(format string, args ...interface{}) bool {
	s.err = errors.Wrapf(ErrInvalid, "line %v: "+format, append([]interface{}{s.line}, args...)...)
	return false
}

// Scan reads the next test case into tc, reusing none of its previous
// contents. It returns false at the end of the input or on error.
func (s *Scanner) Scan(tc *Testcase) bool {
	if s.err != nil {
		return false
	}
	var header []byte
	for {
		if !s.scan() {
			return false
		}
		header = bytes.TrimSpace(s.b.Bytes())
		if len(header) > 0 && header[0] != '#' {
			break
		}
	}
	fields := bytes.Fields(header)
	if len(fields) != 2 {
		return s.fail("expected <reads> <haplotypes>, got %q", header)
	}
	nofReads, err := strconv.Atoi(string(fields[0]))
	if err != nil || nofReads < 0 {
		return s.fail("bad number of reads %q", fields[0])
	}
	nofHaplotypes, err := strconv.Atoi(string(fields[1]))
	if err != nil || nofHaplotypes < 0 {
		return s.fail("bad number of haplotypes %q", fields[1])
	}

	// the counts are not trusted for preallocation
	tc.Reads = make([]pairhmm.Read, 0, minInt(nofReads, maxPreallocated))
	for i := 0; i < nofReads; i++ {
		if !s.scanRecord("reads", nofReads, i) {
			return false
		}
		var read pairhmm.Read
		if !s.parseRead(&read) {
			return false
		}
		tc.Reads = append(tc.Reads, read)
	}
	tc.Haplotypes = make([][]byte, 0, minInt(nofHaplotypes, maxPreallocated))
	for i := 0; i < nofHaplotypes; i++ {
		if !s.scanRecord("haplotypes", nofHaplotypes, i) {
			return false
		}
		fields := bytes.Fields(s.b.Bytes())
		if len(fields) != 1 {
			return s.fail("expected one haplotype, got %v fields", len(fields))
		}
		tc.Haplotypes = append(tc.Haplotypes, append([]byte(nil), fields[0]...))
	}
	return true
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func (s *Scanner) scanRecord(what string, expected, got int) bool {
	if s.scan() {
		return true
	}
	if s.err == io.EOF {
		return s.fail("expected %v %v, got %v", expected, what, got)
	}
	return false
}

func (s *Scanner) parseRead(read *pairhmm.Read) bool {
	fields := bytes.Fields(s.b.Bytes())
	if len(fields) != 5 {
		return s.fail("expected 5 read fields, got %v", len(fields))
	}
	read.Bases = append([]byte(nil), fields[0]...)
	quals := make([][]byte, 4)
	for i, field := range fields[1:] {
		if len(field) != len(read.Bases) {
			return s.fail("quality field %v has length %v, expected %v", i+1, len(field), len(read.Bases))
		}
		q := make([]byte, len(field))
		for j, c := range field {
			if c < QualOffset {
				return s.fail("invalid quality character %q", c)
			}
			q[j] = c - QualOffset
		}
		quals[i] = q
	}
	read.Quals, read.InsertionGOP, read.DeletionGOP, read.OverallGCP = quals[0], quals[1], quals[2], quals[3]
	return true
}

// Err returns the first error encountered, or nil at the regular end of
// the input.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
