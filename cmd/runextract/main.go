package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core"
	"github.com/joseph-ayodele/docextract/internal/core/async"
	"github.com/joseph-ayodele/docextract/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type batchLine struct {
	Index    int                    `json:"index"`
	URL      string                 `json:"url"`
	DocType  string                 `json:"doc_type"`
	Response server.ExtractResponse `json:"response"`
}

func main() {
	var (
		batch   = flag.String("batch", "", "file of '<url> <doc_type>' lines to process; '-' reads stdin")
		workers = flag.Int("workers", 4, "concurrent extractions in batch mode")
	)
	flag.Usage = func() {
		printError("usage: runextract <url> <ktp|passport|ijazah>\n       runextract -batch jobs.txt [-workers N]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := common.LoadConfig()

	// logs go to stderr so stdout carries only JSON
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	var jobs []async.Job
	switch {
	case *batch != "":
		parsed, err := readJobs(*batch)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(2)
		}
		jobs = parsed
	case flag.NArg() == 2:
		kind, ok := constants.ParseDocType(strings.ToLower(flag.Arg(1)))
		if !ok {
			printError("Error: unsupported doc type %q (allowed: %s)\n", flag.Arg(1), strings.Join(constants.DocTypesAsStrings(), ", "))
			os.Exit(2)
		}
		jobs = []async.Job{{Index: 0, URL: flag.Arg(0), DocType: kind}}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()
	processor, closeLLM, err := core.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeLLM() }()

	// single document: plain indented response
	if *batch == "" {
		runCtx, cancel := common.WithOptionalTimeout(ctx, cfg.Server.ExtractTimeout)
		out := processor.Run(runCtx, jobs[0].URL, jobs[0].DocType)
		cancel()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(server.ToResponse(out)); err != nil {
			logger.Error("encode response", "error", err)
			os.Exit(1)
		}
		if out.Status == constants.OutcomeFailed {
			os.Exit(1)
		}
		return
	}

	results, err := async.RunBatch(ctx, processor, logger, jobs,
		async.WithWorkers(*workers),
		async.WithProcessTimeout(cfg.Server.ExtractTimeout),
	)
	if err != nil {
		logger.Error("batch interrupted", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, r := range results {
		if r.Outcome.Status == constants.OutcomeFailed {
			failed++
		}
		line := batchLine{
			Index:    r.Job.Index,
			URL:      r.Job.URL,
			DocType:  string(r.Job.DocType),
			Response: server.ToResponse(r.Outcome),
		}
		if err := enc.Encode(line); err != nil {
			logger.Error("encode response", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("batch complete", "jobs", len(jobs), "results", len(results), "failed", failed)
	if failed > 0 || err != nil {
		os.Exit(1)
	}
}

func readJobs(path string) ([]async.Job, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseJobs(r)
}

// parseJobs reads '<url> <doc_type>' lines; blank lines and '#' comments are skipped.
func parseJobs(r io.Reader) ([]async.Job, error) {
	var jobs []async.Job
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want '<url> <doc_type>', got %q", lineNo, line)
		}
		kind, ok := constants.ParseDocType(strings.ToLower(fields[1]))
		if !ok {
			return nil, fmt.Errorf("line %d: unsupported doc type %q", lineNo, fields[1])
		}
		jobs = append(jobs, async.Job{Index: len(jobs), URL: fields[0], DocType: kind})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs found")
	}
	return jobs, nil
}
