package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fstop/internal/exif"
	"fstop/internal/fileutil"
	"fstop/internal/processing"
	"fstop/internal/services/llm"
)

type analyzeResult struct {
	File       string  `json:"file"`
	MediaType  string  `json:"mediaType"`
	SizeBytes  int64   `json:"sizeBytes"`
	ExifFound  bool    `json:"exifFound"`
	Device     string  `json:"device,omitempty"`
	Scored     bool    `json:"scored"`
	Likelihood float64 `json:"likelihood,omitempty"`
	Verdict    string  `json:"verdict,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var score bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract the EXIF device identity from a photo locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			mediaType := mime.TypeByExtension(filepath.Ext(path))
			if idx := strings.Index(mediaType, ";"); idx >= 0 {
				mediaType = strings.TrimSpace(mediaType[:idx])
			}
			if mediaType == "" {
				mediaType = "application/octet-stream"
			}

			result := analyzeResult{
				File:      filepath.Base(path),
				MediaType: mediaType,
				SizeBytes: info.Size(),
			}

			if processing.IsJPEGMediaType(mediaType) {
				sniff := cfg.Analysis.SniffBytes
				if sniff <= 0 || sniff > exif.MaxSniffBytes {
					sniff = exif.MaxSniffBytes
				}
				buf, err := fileutil.ReadPrefix(path, sniff)
				if err != nil {
					return err
				}
				if device, ok := exif.ParseDevice(buf); ok {
					result.ExifFound = true
					result.Device = device
				}
			}

			if score {
				client, err := ctx.scorer()
				if err != nil {
					return err
				}
				if client == nil {
					return fmt.Errorf("scoring requires an llm api key; set [llm] api_key in the config")
				}
				assessment, err := client.ScoreAuthenticity(cmd.Context(), llm.Evidence{
					Filename:      result.File,
					MediaType:     result.MediaType,
					SizeBytes:     result.SizeBytes,
					ExifFound:     result.ExifFound,
					DeviceDisplay: result.Device,
				})
				if err != nil {
					return fmt.Errorf("score %s: %w", result.File, err)
				}
				result.Scored = true
				result.Likelihood = assessment.Likelihood
				result.Verdict = assessment.Verdict
				result.Reason = assessment.Reason
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if result.ExifFound {
				fmt.Fprintf(out, "Device: %s\n", result.Device)
			} else {
				fmt.Fprintln(out, "Device: not found")
			}
			if result.Scored {
				fmt.Fprintf(out, "Forgery likelihood: %.2f (%s)\n", result.Likelihood, result.Verdict)
				if result.Reason != "" {
					fmt.Fprintf(out, "Reason: %s\n", result.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&score, "score", false, "Also obtain a forgery-likelihood assessment")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
