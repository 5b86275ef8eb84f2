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

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/exascience/pairhmm/batch"
	"github.com/exascience/pairhmm/testcase"
)

// ComputeHelp is the help string for the compute command.
const ComputeHelp = "\nCompute parameters:\n" +
	"pairhmm compute [test-case-file | -]\n" +
	"[--output file]\n" +
	"[--implementation [tiered | exact | original | logless | logless-single]]\n" +
	"[--escalation-report file]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--cpu-profile name]\n" +
	"[--log-path path]\n"

// Compute implements the pairhmm compute command.
func Compute() error {
	var (
		output, implementation, escalationReport, profile, logPath string
		nrOfThreads                                                int
		timed                                                      bool
	)

	var flags flag.FlagSet

	flags.StringVar(&output, "output", "", "file for the likelihoods, standard output by default")
	flags.StringVar(&implementation, "implementation", batch.Tiered, "pair HMM implementation")
	flags.StringVar(&escalationReport, "escalation-report", "", "file listing the likelihoods that needed double precision")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "cpu-profile", "", "write a cpu profile")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, ComputeHelp)
		os.Exit(1)
	}

	input := os.Args[2]
	if input != "-" {
		input = getFilename(input, ComputeHelp)
	}

	parseFlags(flags, 3, ComputeHelp)

	if logPath != "" {
		setLogOutput(logPath)
	}

	// sanity checks

	var sanityChecksFailed bool

	if input != "-" && !checkExist("", input) {
		sanityChecksFailed = true
	}

	if output != "" && !checkCreate("--output", output) {
		sanityChecksFailed = true
	}

	if escalationReport != "" && !checkCreate("--escalation-report", escalationReport) {
		sanityChecksFailed = true
	}

	newEngine, err := batch.NewEngineFunc(implementation)
	if err != nil {
		log.Printf("Error: Invalid implementation %v, expected one of %v.\n", implementation, strings.Join(batch.Implementations, ", "))
		sanityChecksFailed = true
	}

	if escalationReport != "" && implementation != batch.Tiered {
		log.Println("Warning: The --escalation-report option is set without the tiered implementation. The report will be empty.")
	}

	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ComputeHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " compute ", input)
	if output != "" {
		fmt.Fprint(&command, " --output ", output)
	}
	fmt.Fprint(&command, " --implementation ", implementation)
	if escalationReport != "" {
		fmt.Fprint(&command, " --escalation-report ", escalationReport)
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --cpu-profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	return timedRun(timed, profile, "Computing likelihoods.", 1, func() (err error) {
		in, err := testcase.Open(input)
		if err != nil {
			return err
		}
		defer func() {
			if nerr := in.Close(); err == nil {
				err = nerr
			}
		}()

		out := os.Stdout
		if output != "" {
			var pathname string
			if pathname, err = filepath.Abs(output); err != nil {
				return err
			}
			if out, err = os.Create(pathname); err != nil {
				return err
			}
			defer func() {
				if nerr := out.Close(); err == nil {
					err = nerr
				}
			}()
		}

		var report *os.File
		if escalationReport != "" {
			if report, err = os.Create(escalationReport); err != nil {
				return err
			}
			defer func() {
				if nerr := report.Close(); err == nil {
					err = nerr
				}
			}()
		}

		stats, err := runBatch(in.Scanner, testcase.NewWriter(out), newEngine, report)
		if err != nil {
			return err
		}
		if timed {
			log.Printf("Computed %v likelihoods for %v test cases, %v in double precision.\n",
				humanize.Comma(int64(stats.Likelihoods)), humanize.Comma(int64(stats.Testcases)), humanize.Comma(int64(stats.Escalations)))
		}
		return nil
	})
}

// report must not reach batch.Run as a typed nil io.Writer.
func runBatch(in *testcase.Scanner, out *testcase.Writer, newEngine func() batch.Engine, report *os.File) (batch.Stats, error) {
	if report == nil {
		return batch.Run(in, out, newEngine, nil)
	}
	return batch.Run(in, out, newEngine, report)
}
