package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/syslex/artitracker/pkg/collect"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/pom"
)

// Runner executes the pipeline.
//
// The Runner is stateless except for the logger. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger selects log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs locate → read → collect.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.setDefaults(r.Logger)
	logger := opts.Logger
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnCollectStart(ctx, opts.Path)
	logger.Info("Start collecting artifact information")

	result, err := r.execute(ctx, opts)
	if err != nil {
		hooks.OnCollectComplete(ctx, opts.Path, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnCollectComplete(ctx, result.Path, result.Stats.References, time.Since(start), nil)
	logger.Info("Finished collecting artifact information",
		"artifact", result.Report.Artifact,
		"references", result.Stats.References,
		"duration", time.Since(start))
	return result, nil
}

func (r *Runner) execute(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger

	// Stage 1: Locate
	path, err := pom.Find(opts.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Read
	readStart := time.Now()
	m, err := pom.ReadFile(path)
	if err != nil {
		return nil, err
	}
	result := &Result{Path: path, Model: m}
	result.Stats.ReadTime = time.Since(readStart)
	logger.Debug("read descriptor", "path", path, "duration", result.Stats.ReadTime)

	// Stage 3: Collect
	collectStart := time.Now()
	if res, ok := collect.ResolveJavaVersion(m); ok {
		result.Version = &res
		logger.Debug("resolved java version", "version", res.Version, "source", res.Source)
	} else {
		logger.Debug("no java version declared")
	}

	builder := collect.NewBuilder(collect.Options{Now: opts.Now, Generator: opts.Generator})
	result.Report = builder.Build(m)
	result.Stats.CollectTime = time.Since(collectStart)
	result.Stats.References = len(result.Report.Dependencies)
	return result, nil
}
