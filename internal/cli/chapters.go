package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipkit/clipkit/internal/config"
	"github.com/clipkit/clipkit/internal/domain/segments"
	"github.com/clipkit/clipkit/internal/logging"
	"github.com/clipkit/clipkit/internal/ports/adapters/ffmpeg"
	"github.com/clipkit/clipkit/internal/ports/adapters/whispercpp"
	"github.com/clipkit/clipkit/internal/ports/adapters/ytdlp"
	"github.com/clipkit/clipkit/internal/types"
	"github.com/clipkit/clipkit/internal/usecase"
)

func newChaptersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapters <input>",
		Short: "Transcribe a video and print its timed chapter windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChapters(cmd, args[0])
		},
	}
	cmd.Flags().String("config", "", "Config file (default ./clipkit.toml if present)")
	cmd.Flags().Float64("interval", 0, "Target window length in seconds (default from config)")
	cmd.Flags().Bool("json", false, "Print windows as JSON instead of a table")
	cmd.Flags().String("write", "chapters.json", "Also write the windows to this file (empty disables)")
	return cmd
}

func runChapters(cmd *cobra.Command, input string) error {
	fl := cmd.Flags()
	configPath, _ := fl.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.Init(cfg.Logging.Level)

	interval := cfg.Segments.WindowInterval
	if fl.Changed("interval") {
		interval, _ = fl.GetFloat64("interval")
	}
	if interval <= 0 {
		return fmt.Errorf("window interval must be > 0")
	}

	model := getenvDefault("CLIPKIT_WHISPER_MODEL", cfg.Tools.WhisperModel)
	if model == "" {
		return errors.New("whisper model path is required (tools.whisper_model or CLIPKIT_WHISPER_MODEL)")
	}

	source, err := resolveSource(input)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "clipkit-chapters-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	uc := usecase.New(usecase.Deps{
		Video: ffmpeg.New(
			getenvDefault("CLIPKIT_FFMPEG", cfg.Tools.FFmpeg),
			getenvDefault("CLIPKIT_FFPROBE", cfg.Tools.FFprobe),
		),
		ASR:        whispercpp.New(getenvDefault("CLIPKIT_WHISPER_BIN", cfg.Tools.WhisperBin), model),
		Downloader: ytdlp.New(getenvDefault("CLIPKIT_YTDLP", cfg.Tools.YtDlp)),
		Scorer:     segments.NewScorer(nil),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	wins, err := uc.Chapters(ctx, usecase.Input{
		Source:       source,
		WorkDir:      workDir,
		StageTimeout: cfg.Tools.Timeout(),
	}, interval)
	if err != nil {
		return err
	}

	if wins == nil {
		wins = []types.Window{}
	}
	chaptersPath, _ := fl.GetString("write")
	if chaptersPath != "" {
		b, err := json.MarshalIndent(wins, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal chapters: %w", err)
		}
		if err := os.WriteFile(chaptersPath, b, 0o644); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := fl.GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(wins)
	}
	if len(wins) == 0 {
		fmt.Fprintln(out, "no speech found")
		return nil
	}
	rows := make([][]string, 0, len(wins))
	for _, w := range wins {
		rows = append(rows, []string{w.Time, w.Text})
	}
	fmt.Fprintln(out, renderTable([]string{"Time", "Transcript"}, rows, nil))
	if chaptersPath != "" {
		fmt.Fprintf(out, "chapters written to %s\n", chaptersPath)
	}
	return nil
}
