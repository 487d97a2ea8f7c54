package preflight

import (
	"storyreel/internal/config"
	"storyreel/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Dirs are the run directories to validate.
type Dirs struct {
	Video  string
	Audio  string
	Output string
}

// RunAll executes every check a run needs. Empty Dirs fields are skipped so
// `doctor` can check just the configuration.
func RunAll(cfg *config.Config, dirs Dirs) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	if dirs.Video != "" {
		results = append(results, CheckReadableDirectory("Clip directory", dirs.Video))
	}
	if dirs.Audio != "" {
		results = append(results, CheckReadableDirectory("Narration directory", dirs.Audio))
	}
	if dirs.Output != "" {
		results = append(results, CheckCreatableDirectory("Output directory", dirs.Output))
	}
	results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
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

func fromStatus(status deps.Status) Result {
	return Result{
		Name:   status.Name,
		Passed: status.Available || status.Optional,
		Detail: status.Summary(),
	}
}
