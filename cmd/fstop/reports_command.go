package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fstop/internal/api"
	"fstop/internal/textutil"
)

func newReportsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List analyses stored by the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			var statuses []string
			for _, raw := range strings.Split(statusFilter, ",") {
				if trimmed := strings.TrimSpace(raw); trimmed != "" {
					statuses = append(statuses, trimmed)
				}
			}
			analyses, err := client.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, analyses)
			}
			if len(analyses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No analyses found.")
				return nil
			}

			rows := make([][]string, 0, len(analyses))
			for _, a := range analyses {
				rows = append(rows, []string{
					strconv.FormatInt(a.ID, 10),
					a.Filename,
					a.Status,
					deviceCell(a),
					likelihoodCell(a),
					textutil.Truncate(a.Rationale, 48),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "File", "Status", "Device", "Likelihood", "Rationale"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Comma-separated status filter (pending,extracting,scoring,completed,failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")

	cmd.AddCommand(newReportsShowCommand(ctx))
	cmd.AddCommand(newReportsClearCommand(ctx))
	return cmd
}

func newReportsClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			removed, err := client.Clear(cmd.Context(), completedOnly)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, api.ClearResponse{Removed: removed})
			}
			if completedOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed analyses\n", removed)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d analyses\n", removed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Remove only completed analyses")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newReportsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id|uuid>",
		Short: "Show a single analysis in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			analysis, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, analysis)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Analysis %d (%s)\n", analysis.ID, analysis.UUID)
			fmt.Fprintf(out, "  File:       %s (%s, %d bytes)\n", analysis.Filename, analysis.MediaType, analysis.SizeBytes)
			fmt.Fprintf(out, "  Status:     %s\n", analysis.Status)
			fmt.Fprintf(out, "  Device:     %s\n", deviceCell(analysis))
			if analysis.Scored {
				fmt.Fprintf(out, "  Likelihood: %.2f (%s)\n", analysis.Likelihood, analysis.Verdict)
				if analysis.Rationale != "" {
					fmt.Fprintf(out, "  Rationale:  %s\n", analysis.Rationale)
				}
			} else {
				fmt.Fprintln(out, "  Likelihood: not scored")
			}
			if analysis.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:      %s\n", analysis.ErrorMessage)
			}
			if analysis.CreatedAt != "" {
				fmt.Fprintf(out, "  Created:    %s\n", analysis.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func deviceCell(a api.Analysis) string {
	if !a.ExifFound || a.DeviceDisplay == "" {
		return "not found"
	}
	return a.DeviceDisplay
}

func likelihoodCell(a api.Analysis) string {
	if !a.Scored {
		return "-"
	}
	return fmt.Sprintf("%.2f %s", a.Likelihood, a.Verdict)
}
