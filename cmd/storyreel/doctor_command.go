package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/deps"
	"storyreel/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			problems := 0
			writeLines(out, renderSectionHeader("Configuration", colorize))
			configMessage, fromFile := ctx.configSource()
			if !fromFile {
				configMessage += " (not found, defaults in use)"
			}
			writeLines(out, []string{
				renderStatusLine("Config", statusInfo, configMessage, colorize),
				renderStatusLine("Scene backend", statusInfo, cfg.Scenes.Backend, colorize),
				renderStatusLine("Trim mode", statusInfo, cfg.Trim.Mode, colorize),
				renderStatusLine("Cleanup", statusInfo, yesNo(cfg.Run.Cleanup), colorize),
			})

			fmt.Fprintln(out)
			writeLines(out, renderSectionHeader("Dependencies", colorize))
			statuses := deps.WithVersions(cmd.Context(), preflight.CheckSystemDeps(cfg))
			lines, missing := dependencyLines(statuses, colorize)
			writeLines(out, lines)
			problems += missing

			fmt.Fprintln(out)
			writeLines(out, renderSectionHeader("Directories", colorize))
			for _, result := range directoryChecks(cfg) {
				fmt.Fprintln(out, renderStatusLine(result.Name, preflightKind(result), result.Detail, colorize))
				if !result.Passed {
					problems++
				}
			}

			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			return nil
		},
	}
}

// dependencyLines renders one line per binary and returns the number of
// missing required binaries.
func dependencyLines(statuses []deps.Status, colorize bool) ([]string, int) {
	lines := make([]string, 0, len(statuses)+1)
	var missing []string
	for _, status := range statuses {
		kind := statusOK
		switch {
		case status.Available:
		case status.Optional:
			kind = statusWarn
		default:
			kind = statusError
			missing = append(missing, status.Name)
		}
		lines = append(lines, renderStatusLine(status.Name, kind, status.Summary(), colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines, len(missing)
}

func directoryChecks(cfg *config.Config) []preflight.Result {
	return []preflight.Result{
		preflight.CheckCreatableDirectory("State directory", cfg.Paths.StateDir),
		preflight.CheckCreatableDirectory("Log directory", cfg.Paths.LogDir),
	}
}

func writeLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
