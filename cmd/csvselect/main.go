// Command csvselect copies a delimited file keeping only the requested
// columns and applying per-column transformations.
//
//	csvselect in.csv out.csv --columns name email --uppercase name --strip email
//
// Settings may also come from a JSON job file (--config) and, for metrics
// and logging, from the environment or a .env file in the working directory.
// Command line flags win over the job file, which wins over the environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"csvselect/internal/config"
	"csvselect/internal/logging"
	"csvselect/internal/metrics"
	"csvselect/internal/pipeline"
	"csvselect/internal/transformer/builtin"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: load .env: %v\n", err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	opts, help, err := parseArgs(args, stderr)
	if help {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	job, err := buildJob(opts, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	level := job.Log.Level
	if opts.verbose {
		level = "debug"
	}
	log := logging.Setup(level, job.Log.Format, stderr)

	hasError := false
	for _, iss := range config.ValidateJob(job) {
		if iss.Severity == config.SeverityError {
			hasError = true
			fmt.Fprintf(stderr, "Error: %s: %s\n", iss.Path, iss.Message)
			continue
		}
		log.Warn(iss.Message, "path", iss.Path)
	}
	if hasError {
		return exitFailure
	}
	if opts.validate {
		fmt.Fprintln(stdout, "Configuration is valid")
		return exitOK
	}

	p, err := job.Pipeline(log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	if err := addFlagTransformers(p, opts); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	jobName := job.Job
	if jobName == "" {
		jobName = pipeline.DefaultJob
	}
	flush := setupMetrics(job.Metrics, jobName, log)
	defer flush()

	src, dst := job.Source.Path, job.Destination.Path
	log.Debug("starting", "source", src, "destination", dst, "columns", p.Columns())
	if err := p.Run(ctx, src, dst); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", describe(err))
		return exitFailure
	}

	fmt.Fprintf(stdout, "Successfully parsed %s -> %s\n", src, dst)
	return exitOK
}

// buildJob merges the job file, flags and environment.
func buildJob(o cliOptions, getenv func(string) string) (config.Job, error) {
	var job config.Job
	if o.config != "" {
		j, err := config.Load(o.config)
		if err != nil {
			return config.Job{}, err
		}
		job = j
	}

	if o.input != "" {
		job.Source.Path = o.input
		job.Destination.Path = o.output
	}
	if len(o.columns) > 0 {
		job.Columns = append([]string(nil), o.columns...)
	}

	override := func(name string, dst *string, v string) {
		if o.set[name] {
			*dst = v
		}
	}
	override("job", &job.Job, o.job)
	override("encoding", &job.Source.Encoding, o.encoding)
	override("delimiter", &job.Source.Delimiter, o.delimiter)
	override("metrics-backend", &job.Metrics.Backend, o.metricsBackend)
	override("pushgateway-url", &job.Metrics.PushgatewayURL, o.pushgatewayURL)
	override("dogstatsd-addr", &job.Metrics.DogStatsDAddr, o.dogstatsdAddr)
	override("log-level", &job.Log.Level, o.logLevel)
	override("log-format", &job.Log.Format, o.logFormat)
	if o.set["crlf"] {
		job.Destination.CRLF = o.crlf
	}

	job.ApplyEnv(getenv)
	return job, nil
}

// addFlagTransformers registers the case flags in a fixed order; a column
// named by several flags keeps the last one registered.
func addFlagTransformers(p *pipeline.Pipeline, o cliOptions) error {
	groups := []struct {
		kind string
		cols []string
	}{
		{"uppercase", o.uppercase},
		{"lowercase", o.lowercase},
		{"strip", o.strip},
		{"title", o.title},
	}
	for _, g := range groups {
		if len(g.cols) == 0 {
			continue
		}
		t, err := builtin.New(g.kind, nil)
		if err != nil {
			return err
		}
		for _, c := range g.cols {
			p.AddTransformer(c, t)
		}
	}
	return nil
}

func setupMetrics(m config.Metrics, job string, log *slog.Logger) (flush func()) {
	b, err := newMetricsBackend(m, job)
	if err != nil {
		log.Warn("metrics disabled", "backend", m.Backend, "err", err)
		return func() {}
	}
	if b == nil {
		log.Debug("metrics disabled", "backend", m.Backend)
		return func() {}
	}
	log.Debug("metrics enabled", "backend", m.Backend, "job", job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "err", err)
		}
	}
}

// describe renders a run error for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrSourceNotFound):
		return fmt.Sprintf("File not found - %v", err)
	case errors.Is(err, pipeline.ErrSourceRead):
		return fmt.Sprintf("Cannot read input - %v", err)
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}
