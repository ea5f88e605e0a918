// Package pipeline runs report collection end to end.
//
// The pipeline locates the descriptor, parses it and assembles the report.
// CLI commands and the tracking server share it so both produce identical
// reports and log the same run events.
//
// # Stages
//
//  1. Locate: resolve a directory or file argument to a pom.xml path
//  2. Read: parse the descriptor into a [pom.Model]
//  3. Collect: assemble the [report.Report]
//
// A failure in stages 1 or 2 aborts the run. Stage 3 cannot fail.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "."})
//	if err != nil {
//	    return err
//	}
//	report.Encode(os.Stdout, result.Report, report.FormatJSON)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/syslex/artitracker/pkg/collect"
	"github.com/syslex/artitracker/pkg/pom"
	"github.com/syslex/artitracker/pkg/report"
)

// Options configures one pipeline run.
type Options struct {
	// Path is a pom.xml file or a directory containing one.
	// Empty selects the working directory.
	Path string

	// Generator stamps the report. See [collect.Options].
	Generator *report.Generator

	// Now overrides the construction clock.
	Now func() time.Time

	// Logger receives run events. Defaults to the runner's logger.
	Logger *log.Logger
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Path is the descriptor that was read.
	Path string

	// Model is the parsed descriptor.
	Model *pom.Model

	// Report is the assembled report.
	Report *report.Report

	// Version describes where the Java version came from, if resolved.
	Version *collect.Resolution

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	References  int
	ReadTime    time.Duration
	CollectTime time.Duration
}

// setDefaults fills unset options.
func (o *Options) setDefaults(logger *log.Logger) {
	if o.Path == "" {
		o.Path = "."
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logger
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
