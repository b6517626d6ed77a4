package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X ArchiveManifest/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// GetVersion prefers the linker-provided version and falls back to the module
// build info.
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "development"
}

func setting(key, fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return fallback
}

func GetCommit() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	return setting("vcs.revision", "unknown")
}

func GetBuildDate() string {
	if Date != "unknown" && Date != "" {
		return Date
	}
	return setting("vcs.time", "unknown")
}

// GetFullVersion formats "version (commit, built date)" with whatever parts
// are known.
func GetFullVersion() string {
	v, commit, date := GetVersion(), GetCommit(), GetBuildDate()
	if commit == "unknown" || len(commit) <= 7 {
		return v
	}
	if date != "unknown" {
		return fmt.Sprintf("%s (%s, built %s)", v, commit[:7], date)
	}
	return fmt.Sprintf("%s (%s)", v, commit[:7])
}
