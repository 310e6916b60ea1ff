package preflight

import (
	"context"
	"fmt"

	"mediato115/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	allowed := cfg.AllowedPaths()
	if len(allowed) == 0 {
		results = append(results, Result{Name: "Allowed paths", Detail: "none configured (uploads are disabled)"})
	}
	for i, root := range allowed {
		results = append(results, CheckAllowedRoot(fmt.Sprintf("Allowed path %d", i+1), root))
	}

	results = append(results, CheckIndex(ctx, cfg))
	results = append(results, CheckTransferQueue(ctx, cfg))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
