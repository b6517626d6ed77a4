package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ArchiveManifest/internal/config"
	"ArchiveManifest/internal/logging"
	"ArchiveManifest/internal/manifest"
	"ArchiveManifest/internal/metrics"
	"ArchiveManifest/internal/pipeline"
	"ArchiveManifest/internal/progress"

	"github.com/google/uuid"
)

var errInterrupted = errors.New("run interrupted; manifest holds the files completed so far")

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := filepath.Abs(cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("resolve archive path: %w", err)
	}
	walkOpts, err := cfg.WalkOptions()
	if err != nil {
		return err
	}
	walkOpts.Skip = skipOutput(root, cfg.Output)

	out, err := manifest.Create(cfg.Output, manifest.Options{Prefix: cfg.ArchiveName})
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	log := logging.New(stderr, cfg.Verbose)
	stats := metrics.New(uuid.NewString())
	log.Info("run started",
		"run_id", stats.RunID,
		"archive", root,
		"output", cfg.Output,
		"threads", cfg.Threads,
		"buffer_size", cfg.BufferSize,
		"algorithm", cfg.Algorithm,
	)

	sinks := pipeline.Sinks{Errors: logging.NewSink(log)}
	var bar *progress.Bar
	if cfg.Progress {
		bar = progress.New(stderr)
		sinks.Progress = bar
	}

	runErr := pipeline.Run(ctx, os.DirFS(root), pipeline.Options{
		Threads:    cfg.Threads,
		BufferSize: cfg.BufferSize,
		Algorithm:  cfg.Algorithm,
		Walk:       walkOpts,
	}, out, sinks, stats)

	if bar != nil {
		bar.Close()
	}
	if cerr := out.Close(); cerr != nil && runErr == nil {
		runErr = cerr
	}

	snap := stats.Snapshot()
	log.Info("run finished",
		"run_id", snap.RunID,
		"succeeded", snap.Succeeded,
		"failed", snap.Failed,
		"walk_errors", snap.WalkErrors,
		"bytes_processed", snap.BytesProcessed,
		"cancelled", snap.Cancelled,
	)
	metrics.Print(stdout, stats)

	if runErr != nil {
		return runErr
	}
	if snap.Cancelled {
		return errInterrupted
	}
	return nil
}

// skipOutput returns the manifest's own path relative to root when the
// output file lives inside the archive. Symlinks are resolved on both sides
// so an aliased root or output directory still matches.
func skipOutput(root, output string) map[string]struct{} {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(realRoot, filepath.Join(dir, filepath.Base(abs)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return map[string]struct{}{filepath.ToSlash(rel): {}}
}
