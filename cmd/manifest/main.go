package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ArchiveManifest/internal/config"
	"ArchiveManifest/internal/digest"
	"ArchiveManifest/internal/version"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		flags      = config.Default()
	)

	cmd := &cobra.Command{
		Use:   "manifest [ARCHIVE_PATH]",
		Short: "Write a SHA-256 content manifest for a directory tree",
		Long: `manifest walks ARCHIVE_PATH, hashes every regular file with a fixed pool
of workers and writes one "<digest> <path>" line per file to the output file.

Files that cannot be read are logged to stderr and counted; they never stop
the run. A summary is printed when the run finishes or is interrupted.`,
		Args:    cobra.MaximumNArgs(1),
		Version: version.GetFullVersion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			overlay(cmd, &cfg, flags)
			if len(args) == 1 {
				cfg.ArchivePath = args[0]
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "TOML file with default settings")
	f.StringVarP(&flags.ArchivePath, "archive-path", "a", "", "Directory to hash")
	f.StringVarP(&flags.Output, "output", "o", flags.Output, "Manifest file to write")
	f.IntVarP(&flags.Threads, "threads", "t", flags.Threads, "Number of hashing workers")
	f.IntVarP(&flags.BufferSize, "buffer-size", "b", flags.BufferSize, "Read buffer size per worker in bytes")
	f.BoolVarP(&flags.Progress, "progress", "p", false, "Show a progress bar on stderr")
	f.StringVar(&flags.ArchiveName, "archive-name", "", "Prefix every manifest path with NAME/")
	f.StringVar(&flags.Algorithm, "algorithm", flags.Algorithm, "Digest algorithm ("+strings.Join(digest.Algorithms(), ", ")+")")
	f.StringVar(&flags.Symlinks, "symlinks", flags.Symlinks, "Symbolic link policy (skip, follow)")
	f.StringArrayVar(&flags.Exclude, "exclude", nil, "Glob of paths to leave out (repeatable)")
	f.BoolVar(&flags.SkipAppleDouble, "skip-appledouble", false, "Leave out macOS ._* resource fork files")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log every hashed file")

	return cmd
}

// overlay copies the flags the user actually set over cfg so that a config
// file is only overridden explicitly.
func overlay(cmd *cobra.Command, cfg *config.Config, flags config.Config) {
	set := cmd.Flags().Changed
	if set("archive-path") {
		cfg.ArchivePath = flags.ArchivePath
	}
	if set("output") {
		cfg.Output = flags.Output
	}
	if set("threads") {
		cfg.Threads = flags.Threads
	}
	if set("buffer-size") {
		cfg.BufferSize = flags.BufferSize
	}
	if set("progress") {
		cfg.Progress = flags.Progress
	}
	if set("archive-name") {
		cfg.ArchiveName = flags.ArchiveName
	}
	if set("algorithm") {
		cfg.Algorithm = flags.Algorithm
	}
	if set("symlinks") {
		cfg.Symlinks = flags.Symlinks
	}
	if set("exclude") {
		cfg.Exclude = append(cfg.Exclude, flags.Exclude...)
	}
	if set("skip-appledouble") {
		cfg.SkipAppleDouble = flags.SkipAppleDouble
	}
	if set("verbose") {
		cfg.Verbose = flags.Verbose
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCmd())
	stop()
	if err != nil {
		os.Exit(1)
	}
}
