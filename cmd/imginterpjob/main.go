// Command imginterpjob runs a batch of imginterp jobs declared one
// per line in a job file, sharing a single driver registry across the
// whole run.
//
// Grounded on original_source/src/execture_imginterp_job.cpp, the
// Rcpp-bound batch front end over imginterp's own option grammar:
// each line of the job file is tokenized and parsed exactly like an
// imginterp command line (minus the program name), then run through
// cliutil.RunInterpJob. Blank lines and lines starting with '#' are
// skipped, matching the option-file comment convention spec §6
// already defines for --option-file.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fusionkit/imgfusion/internal/cliutil"
	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/logctx"
	"github.com/fusionkit/imgfusion/internal/optparse"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logctx.Default(false).Error("imginterpjob", "error", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	if len(argv) != 1 {
		fmt.Println("Usage: imginterpjob <job-file>")
		return nil
	}

	f, err := os.Open(argv[0])
	if err != nil {
		return fmt.Errorf("opening job file: %w", err)
	}
	defer f.Close()

	reg := driver.Default()
	log := logctx.Default(false)

	lineNo := 0
	succeeded, failed := 0, 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := optparse.TokenizeStrings(line)
		out, err := cliutil.RunInterpJob(reg, tokens)
		if err != nil {
			log.Error("job failed", "line", lineNo, "error", err)
			failed++
			continue
		}
		log.Info("job wrote", "line", lineNo, "path", out)
		succeeded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading job file: %w", err)
	}

	log.Info("imginterpjob done", "succeeded", succeeded, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, succeeded+failed)
	}
	return nil
}
