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
Package pairhmm computes the likelihood of a sequencing read given a
candidate haplotype with the pair hidden Markov model of Durbin et al.,
Biological Sequence Analysis (1998), figure 4.3.

The result is the log10 of the sum over all local alignments of the read
against the haplotype (the forward algorithm), with substitution,
insertion and deletion penalties derived from the per-base qualities of
the read.

An Engine owns the three dynamic programming matrices and must be
initialized exactly once with the maximum read and haplotype lengths it
will see. Engines are not safe for concurrent use; use one engine per
goroutine. Tiered combines a single precision engine with a double
precision fallback.
*/
package pairhmm
