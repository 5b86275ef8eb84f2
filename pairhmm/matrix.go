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
	"io"

	"github.com/exascience/pargo/parallel"
)

type matrix[F float] struct {
	cols  int
	array []F
}

func (m *matrix[F]) allocate(rows, cols int, initialValue F) {
	m.cols = cols
	m.array = make([]F, rows*cols)
	if initialValue != 0 {
		m.fill(initialValue)
	}
}

func (m *matrix[F]) rowView(row int) []F {
	offset := row * m.cols
	return m.array[offset : offset+m.cols]
}

func (m *matrix[F]) fill(value F) {
	for i := range m.array {
		m.array[i] = value
	}
}

// Matrices is the scratch space of one forward computation. The rows
// are indexed by read prefix length and the columns by haplotype
// prefix length, with one extra row and column for the empty prefix and
// one for the end of a non-global alignment.
type Matrices[F float] struct {
	match, insertion, deletion matrix[F]
	rows                       int
}

func (m *Matrices[F]) allocate(maxReadLength, maxHaplotypeLength int, initialValue F) {
	rows, cols := maxReadLength+2, maxHaplotypeLength+2
	m.rows = rows
	parallel.Do(
		func() { m.match.allocate(rows, cols, initialValue) },
		func() { m.insertion.allocate(rows, cols, initialValue) },
		func() { m.deletion.allocate(rows, cols, initialValue) },
	)
}

// Rows returns the number of allocated rows.
func (m *Matrices[F]) Rows() int {
	return m.rows
}

// Cols returns the number of allocated columns.
func (m *Matrices[F]) Cols() int {
	return m.match.cols
}

// setInitialDeletions lets an alignment start at any haplotype offset
// without penalty.
func (m *Matrices[F]) setInitialDeletions(haplotypeLength int, value F) {
	deletion0 := m.deletion.rowView(0)
	for j := 0; j <= haplotypeLength; j++ {
		deletion0[j] = value
	}
}

// dump writes the matrices in human readable form, one line per row.
func (m *Matrices[F]) dump(w io.Writer) error {
	for _, named := range []struct {
		name string
		mat  *matrix[F]
	}{
		{"match", &m.match},
		{"insertion", &m.insertion},
		{"deletion", &m.deletion},
	} {
		if _, err := fmt.Fprintln(w, named.name); err != nil {
			return err
		}
		for i := 0; i < m.Rows(); i++ {
			if _, err := fmt.Fprintf(w, "\t%v[%v]", named.name, i); err != nil {
				return err
			}
			for _, value := range named.mat.rowView(i)[:m.Cols()] {
				if _, err := fmt.Fprintf(w, " % 15.5e", float64(value)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}
