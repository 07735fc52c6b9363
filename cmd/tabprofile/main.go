// Command tabprofile profiles a CSV or Excel file: it loads the table,
// normalizes its headers and prints per-column statistics.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"tabprofile/internal/analytics"
	"tabprofile/internal/config"
	"tabprofile/internal/dataprocessing"
	"tabprofile/internal/exporter"
	"tabprofile/internal/infrastructure"
	"tabprofile/internal/operations"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath      string
	jsonOut         string
	csvOut          string
	graphOut        string
	metricsTextfile string
	sheet           string
	workers         int
	path            string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("tabprofile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to a tabprofile.yaml config file")
	fs.StringVar(&opts.jsonOut, "json", "", "write the result record as JSON to this file (- for stdout)")
	fs.StringVar(&opts.csvOut, "csv", "", "write per-column statistics as CSV to this file")
	fs.StringVar(&opts.graphOut, "graph", "", "write the pipeline as a Mermaid flowchart to this file (- for stdout)")
	fs.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write run metrics in Prometheus textfile format to this file")
	fs.StringVar(&opts.sheet, "sheet", "", "Excel sheet to load (default: first sheet)")
	fs.IntVar(&opts.workers, "workers", 0, "columns profiled concurrently (default from config)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one file path, got %d", fs.NArg())
	}
	opts.path = fs.Arg(0)
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitFailed
	}
	applyOverrides(cfg, opts)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize telemetry: %v\n", err)
		return exitFailed
	}
	defer providers.Shutdown(context.WithoutCancel(ctx))

	tracer, err := operations.NewTracer(providers)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize tracer: %v\n", err)
		return exitFailed
	}

	loaders := dataprocessing.NewRegistry(dataprocessing.OptionsFromConfig(cfg.Loader), logger)
	registry, err := operations.NewDefaultRegistry(loaders, analytics.Options{
		Workers: cfg.Stats.Workers,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build pipeline: %v\n", err)
		return exitFailed
	}
	pipeline := operations.NewPipeline(registry, tracer, logger)

	if opts.graphOut != "" {
		if err := writeOutput(opts.graphOut, stdout, func(w io.Writer) error {
			_, err := io.WriteString(w, operations.Mermaid(pipeline.Steps()))
			return err
		}); err != nil {
			fmt.Fprintf(stderr, "Failed to write graph: %v\n", err)
			return exitFailed
		}
		if opts.path == "" {
			return exitOK
		}
	}

	path := opts.path
	if path == "" {
		path, err = prompt(stdin, stdout)
		if err != nil || path == "" {
			fmt.Fprintln(stderr, "No file path given")
			return exitUsage
		}
	}

	rec := pipeline.Run(ctx, path)

	if err := exporter.WriteText(stdout, rec); err != nil {
		logger.Error("report_write_failed", slog.String("error", err.Error()))
	}

	code := exitOK
	if rec.Failed() {
		code = exitFailed
	}

	if opts.jsonOut != "" {
		if err := writeOutput(opts.jsonOut, stdout, func(w io.Writer) error {
			return exporter.WriteJSON(w, rec)
		}); err != nil {
			fmt.Fprintf(stderr, "Failed to write JSON: %v\n", err)
			code = exitFailed
		}
	}

	if opts.csvOut != "" && !rec.Failed() {
		stats := exporter.NewStatisticsExporter(exporter.NewCSVWriter("", logger))
		if err := stats.Export(rec, opts.csvOut); err != nil {
			fmt.Fprintf(stderr, "Failed to write CSV: %v\n", err)
			code = exitFailed
		}
	}

	if cfg.Telemetry.MetricsTextfile != "" {
		if err := providers.WriteMetricsTextfile(cfg.Telemetry.MetricsTextfile); err != nil {
			fmt.Fprintf(stderr, "Failed to write metrics: %v\n", err)
			code = exitFailed
		}
	}

	return code
}

func applyOverrides(cfg *config.Config, opts *options) {
	if opts.metricsTextfile != "" {
		cfg.Telemetry.MetricsTextfile = opts.metricsTextfile
	}
	if opts.sheet != "" {
		cfg.Loader.Sheet = opts.sheet
	}
	if opts.workers > 0 {
		cfg.Stats.Workers = opts.workers
	}
}

// prompt asks for a file path on stdin
func prompt(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Enter the path to your CSV or Excel file: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// writeOutput sends output to stdout for "-" or to a file otherwise
func writeOutput(target string, stdout io.Writer, write func(io.Writer) error) error {
	if target == "-" {
		return write(stdout)
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
