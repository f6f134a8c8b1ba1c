package preflight

import (
	"context"

	"photoreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Albums directory", cfg.Paths.AlbumsDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Origin.Kind == config.OriginLocal {
		results = append(results, CheckDirectoryAccess("Origin directory", cfg.Origin.LocalDir))
	}

	if cfg.Origin.Kind != config.OriginNone && cfg.Origin.PublicURL != "" {
		results = append(results, CheckOriginURL(ctx, cfg.Origin.PublicURL))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
