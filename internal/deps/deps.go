package deps

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement defines an external binary storyreel shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether one requirement resolved on this host.
type Status struct {
	Requirement
	Path      string
	Available bool
	Version   string
	Detail    string
}

var lookPath = exec.LookPath

// CheckBinaries resolves each requirement's command against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		statuses = append(statuses, check(req))
	}
	return statuses
}

func check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := lookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Path = resolved
	status.Available = true
	return status
}

// WithVersions fills Version for every available binary. Tools that fail to
// report keep an empty Version.
func WithVersions(ctx context.Context, statuses []Status) []Status {
	out := make([]Status, len(statuses))
	for i, status := range statuses {
		if status.Available {
			status.Version = Version(ctx, status.Path, VersionFlag(filepath.Base(status.Command)))
		}
		out[i] = status
	}
	return out
}

// Summary is the one-line description doctor prints for status.
func (s Status) Summary() string {
	switch {
	case s.Available && s.Version != "":
		return fmt.Sprintf("%s (%s)", s.Version, s.Path)
	case s.Available:
		return s.Path
	case s.Optional:
		return s.Detail + " (optional)"
	default:
		return s.Detail
	}
}

// MissingRequired returns the unavailable, non-optional dependencies.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
