package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steveyiyo/jarvis-backend/internal/capture"
	"github.com/steveyiyo/jarvis-backend/internal/config"
	"github.com/steveyiyo/jarvis-backend/internal/core/eyecontact"
	"github.com/steveyiyo/jarvis-backend/internal/core/feedback"
	"github.com/steveyiyo/jarvis-backend/internal/core/gemini"
	"github.com/steveyiyo/jarvis-backend/internal/detector"
	"github.com/steveyiyo/jarvis-backend/internal/logging"
)

type analyzeOptions struct {
	InputPath  string
	Output     string
	Feedback   bool
	Transcript string
	Quiet      bool
}

// report is what the command prints.
type report struct {
	eyecontact.Result `yaml:",inline"`
	Input             string `json:"input" yaml:"input"`
	Feedback          string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate the eye contact percentage of a video file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeOpts.Output != "json" && analyzeOpts.Output != "yaml" {
			return fmt.Errorf("unknown output format %q (want json or yaml)", analyzeOpts.Output)
		}
		return runAnalyze(cmd, analyzeOpts)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.InputPath, "input", "i", "", "Path to video")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Output, "output", "o", "json", "Output format: json or yaml")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.Feedback, "feedback", "f", false, "Also ask Gemini for speaking feedback")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Transcript, "transcript", "t", "", "Transcript passed along with --feedback")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.Quiet, "quiet", "q", false, "Hide the progress bar")

	analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	dcfg := detector.DefaultConfig()
	dcfg.Script = cfg.MediaPipeScript
	dcfg.Python = cfg.PythonBin
	det, err := detector.NewMediaPipeDetector(dcfg, log)
	if err != nil {
		return fmt.Errorf("face mesh detector: %w", err)
	}
	defer det.Close()

	src, err := capture.OpenVideo(opts.InputPath)
	if err != nil {
		return err
	}

	analyzer := eyecontact.NewAnalyzer(det, log)
	if !opts.Quiet {
		total := src.FrameCount()
		if total <= 0 {
			// Unknown length, render a spinner.
			total = -1
		}
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Analyzing frames"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		analyzer.Progress = func() { bar.Add(1) }
		defer func() {
			bar.Finish()
			fmt.Fprintln(os.Stderr)
		}()
	}

	res, err := analyzer.Analyze(src)
	if err != nil {
		return err
	}

	out := report{Result: res, Input: opts.InputPath}
	if opts.Feedback {
		var llm gemini.Completer = gemini.Unavailable{}
		if client, err := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, log); err != nil {
			log.WithError(err).Warn("gemini unavailable, feedback will use the fallback text")
		} else {
			llm = client
		}
		out.Feedback = feedback.New(llm).Feedback(cmd.Context(), res.Percentage, opts.Transcript)
	}

	return writeReport(cmd.OutOrStdout(), opts.Output, out)
}

func writeReport(w io.Writer, format string, r report) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(r)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
}
