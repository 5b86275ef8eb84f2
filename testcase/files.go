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

package testcase

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// InputFile is a test case file, possibly gzip compressed.
type InputFile struct {
	*Scanner
	file *os.File
	gz   *gzip.Reader
}

var gzipMagic = []byte{0x1f, 0x8b}

// Open opens a test case file. The empty filename and "-" denote
// standard input. Gzip compressed input is recognized by its magic
// number.
func Open(filename string) (*InputFile, error) {
	var f *os.File
	if filename == "" || filename == "-" {
		f = os.Stdin
	} else {
		pathname, err := filepath.Abs(filename)
		if err != nil {
			return nil, err
		}
		if f, err = os.Open(pathname); err != nil {
			return nil, err
		}
	}
	input, err := NewInputFile(f)
	if err != nil {
		if f != os.Stdin {
			_ = f.Close()
		}
		return nil, err
	}
	if f == os.Stdin {
		input.file = nil
	}
	return input, nil
}

// NewInputFile reads test cases from an already opened file.
func NewInputFile(f *os.File) (*InputFile, error) {
	input := &InputFile{file: f}
	buffered := bufio.NewReader(f)
	magic, err := buffered.Peek(len(gzipMagic))
	if err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		if input.gz, err = gzip.NewReader(buffered); err != nil {
			return nil, errors.Wrapf(err, "opening gzip stream of %v", f.Name())
		}
		input.Scanner = NewScanner(input.gz)
	} else {
		input.Scanner = NewScanner(buffered)
	}
	return input, nil
}

// Close closes the underlying file unless it is standard input.
func (f *InputFile) Close() (err error) {
	if f.gz != nil {
		err = f.gz.Close()
	}
	if f.file != nil {
		if nerr := f.file.Close(); err == nil {
			err = nerr
		}
	}
	return err
}

// Writer writes one likelihood per line.
type Writer struct {
	w   *bufio.Writer
	buf []byte
}

// NewWriter returns a buffered writer to w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteLikelihoods writes the values in order, with six significant
// digits.
func (w *Writer) WriteLikelihoods(values []float64) error {
	for _, value := range values {
		w.buf = strconv.AppendFloat(w.buf[:0], value, 'g', 6, 64)
		w.buf = append(w.buf, '\n')
		if _, err := w.w.Write(w.buf); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
