package preflight

import (
	"context"

	"mixport/internal/config"
	"mixport/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Source library (always checked)
	results = append(results, CheckFileReadable("Mixxx database", cfg.Mixxx.Database))

	// Destination document (always checked)
	results = append(results, CheckOutputPath("Output document", cfg.Export.OutputPath))

	// Relocation directory (when configured)
	if cfg.Export.OutDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Export.OutDir))
	}

	for _, missing := range deps.Missing(CheckSystemDeps(ctx, cfg, false)) {
		results = append(results, Result{Name: missing.Name, Detail: missing.Detail})
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
