// Package pipeline wires the adapters, the store and the clip workflow
// into a single run against one input video.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/clipkit/clipkit/internal/domain/segments"
	"github.com/clipkit/clipkit/internal/domain/transcript"
	"github.com/clipkit/clipkit/internal/logging"
	"github.com/clipkit/clipkit/internal/ports"
	"github.com/clipkit/clipkit/internal/ports/adapters/ffmpeg"
	"github.com/clipkit/clipkit/internal/ports/adapters/prose"
	"github.com/clipkit/clipkit/internal/ports/adapters/whispercpp"
	"github.com/clipkit/clipkit/internal/ports/adapters/ytdlp"
	"github.com/clipkit/clipkit/internal/store"
	"github.com/clipkit/clipkit/internal/types"
	"github.com/clipkit/clipkit/internal/usecase"
)

type Config struct {
	Input  string // local video file or http(s) URL
	OutDir string

	SegmentsN      int
	MinSegment     time.Duration
	WindowInterval float64 // seconds
	Aspect         string
	SkipCaptions   bool
	KeepFiles      bool
	StageTimeout   time.Duration

	FFmpegPath   string
	FFprobePath  string
	WhisperBin   string
	WhisperModel string
	YtDlpPath    string
}

func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if c.SegmentsN < 0 {
		return fmt.Errorf("segments must be >= 0")
	}
	if c.MinSegment < 0 {
		return fmt.Errorf("min segment length must be >= 0")
	}
	if c.WindowInterval <= 0 {
		return fmt.Errorf("window interval must be > 0")
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	if _, _, err := ffmpeg.ParseAspect(c.Aspect); err != nil {
		return err
	}
	return nil
}

// Result is what a completed run produced, for the caller to present.
type Result struct {
	RunID    string
	OutDir   string
	Manifest types.Manifest
	Windows  []types.Window
}

func Run(ctx context.Context, cfg Config) (*Result, error) {
	log := logging.WithComponent("clipkit")

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	// One run per output directory at a time.
	lock := flock.New(filepath.Join(outDir, ".clipkit.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run is already writing to %s", outDir)
	}
	defer func() { _ = lock.Unlock() }()

	workDir := filepath.Join(outDir, ".clipkit")
	rawDir := filepath.Join(outDir, "raw_clips")
	finalDir := filepath.Join(outDir, "final_clips")
	for _, d := range []string{workDir, rawDir} {
		if err := os.RemoveAll(d); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return nil, err
	}
	log.Info().Str("out", outDir).Msg("workspace ready")

	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	asr := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	dl := ytdlp.New(cfg.YtDlpPath)

	var tagger segments.Tagger
	if pt, err := prose.New(); err != nil {
		log.Warn().Err(err).Msg("tagger unavailable, scoring segments by length")
	} else {
		tagger = pt
	}

	st, err := store.Open(filepath.Join(outDir, "clipkit.db"))
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	defer st.Close()

	runID := uuid.NewString()
	if err := st.CreateRun(ctx, runID, cfg.Input); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	uc := usecase.New(usecase.Deps{
		Video:      video,
		ASR:        asr,
		Downloader: dl,
		Scorer:     segments.NewScorer(tagger),
	})

	res, err := uc.Run(ctx, usecase.Input{
		RunID:        runID,
		Source:       cfg.Input,
		WorkDir:      workDir,
		RawDir:       rawDir,
		FinalDir:     finalDir,
		SegmentsN:    cfg.SegmentsN,
		MinSegment:   cfg.MinSegment,
		AspectRatio:  cfg.Aspect,
		SkipCaptions: cfg.SkipCaptions,
		KeepFiles:    cfg.KeepFiles,
		StageTimeout: cfg.StageTimeout,
	})
	if err != nil {
		if ferr := st.FinishRun(ctx, runID, store.StatusFailed, 0, err.Error()); ferr != nil {
			log.Warn().Err(ferr).Msg("could not record run failure")
		}
		return nil, err
	}

	if err := writeJSON(filepath.Join(outDir, "manifest.json"), res.Manifest); err != nil {
		return nil, err
	}
	windows := transcript.Windows(res.Transcript, cfg.WindowInterval)
	if windows == nil {
		windows = []types.Window{}
	}
	if err := writeJSON(filepath.Join(outDir, "chapters.json"), windows); err != nil {
		return nil, err
	}

	for _, clip := range res.Manifest.Clips {
		if err := st.AddClip(ctx, runID, clip); err != nil {
			return nil, fmt.Errorf("record clip %s: %w", clip.ID, err)
		}
	}
	if err := st.FinishRun(ctx, runID, store.StatusDone, len(res.Manifest.Clips), ""); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	log.Info().
		Str("run_id", runID).
		Int("clips", len(res.Manifest.Clips)).
		Str("manifest", filepath.Join(outDir, "manifest.json")).
		Msg("done")

	return &Result{
		RunID:    runID,
		OutDir:   outDir,
		Manifest: res.Manifest,
		Windows:  windows,
	}, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	return nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.Downloader = (*ytdlp.Adapter)(nil)
var _ segments.Tagger = (*prose.Adapter)(nil)
