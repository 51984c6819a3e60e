package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipkit/clipkit/internal/config"
	"github.com/clipkit/clipkit/internal/domain/timecode"
	"github.com/clipkit/clipkit/internal/logging"
	"github.com/clipkit/clipkit/internal/pipeline"
)

func run(cmd *cobra.Command, input string) error {
	fl := cmd.Flags()
	configPath, _ := fl.GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Flags override file values only when actually set.
	if fl.Changed("segments") {
		cfg.Segments.Num, _ = fl.GetInt("segments")
	}
	if fl.Changed("min-length") {
		cfg.Segments.MinLength, _ = fl.GetFloat64("min-length")
	}
	if fl.Changed("aspect") {
		cfg.Video.AspectRatio, _ = fl.GetString("aspect")
	}
	if fl.Changed("skip-captions") {
		cfg.Captions.Skip, _ = fl.GetBool("skip-captions")
	}
	if fl.Changed("keep-intermediates") {
		cfg.Cleanup.KeepIntermediates, _ = fl.GetBool("keep-intermediates")
	}
	if fl.Changed("log-level") {
		cfg.Logging.Level, _ = fl.GetString("log-level")
	}
	logging.Init(cfg.Logging.Level)

	source, err := resolveSource(input)
	if err != nil {
		return err
	}
	outDir, _ := fl.GetString("out")

	pcfg := pipeline.Config{
		Input:          source,
		OutDir:         outDir,
		SegmentsN:      cfg.Segments.Num,
		MinSegment:     cfg.Segments.MinDuration(),
		WindowInterval: cfg.Segments.WindowInterval,
		Aspect:         cfg.Video.AspectRatio,
		SkipCaptions:   cfg.Captions.Skip,
		KeepFiles:      cfg.Cleanup.KeepIntermediates,
		StageTimeout:   cfg.Tools.Timeout(),

		FFmpegPath:   getenvDefault("CLIPKIT_FFMPEG", cfg.Tools.FFmpeg),
		FFprobePath:  getenvDefault("CLIPKIT_FFPROBE", cfg.Tools.FFprobe),
		WhisperBin:   getenvDefault("CLIPKIT_WHISPER_BIN", cfg.Tools.WhisperBin),
		WhisperModel: getenvDefault("CLIPKIT_WHISPER_MODEL", cfg.Tools.WhisperModel),
		YtDlpPath:    getenvDefault("CLIPKIT_YTDLP", cfg.Tools.YtDlp),
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	res, err := pipeline.Run(ctx, pcfg)
	if err != nil {
		return err
	}
	printRunSummary(cmd.OutOrStdout(), res)
	return nil
}

// resolveSource leaves URLs alone and absolutizes local paths so the
// run does not depend on the working directory.
func resolveSource(input string) (string, error) {
	if strings.Contains(input, "://") {
		return input, nil
	}
	return filepath.Abs(input)
}

func printRunSummary(w io.Writer, res *pipeline.Result) {
	clips := res.Manifest.Clips
	if len(clips) == 0 {
		fmt.Fprintln(w, "no segments made the cut")
		return
	}
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		rows = append(rows, []string{
			c.ID,
			timecode.Format(c.StartSec) + " - " + timecode.Format(c.EndSec),
			strconv.Itoa(c.Score),
			c.File,
			captionMark(c.Captioned),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Clip", "Range", "Score", "File", "Captions"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(w, "%d clips in %s (run %s)\n",
		len(clips), filepath.Join(res.OutDir, "final_clips"), res.RunID)
}

func captionMark(captioned bool) string {
	if captioned {
		return "yes"
	}
	return "no"
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
