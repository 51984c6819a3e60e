package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipkit/clipkit/internal/logging"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	log     zerolog.Logger
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		log:     logging.WithComponent("ffmpeg"),
	}
}

func (a *Adapter) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	a.log.Debug().Str("bin", bin).Strs("args", args).Msg("exec")
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error {
	b, err := a.run(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

// CutClip extracts [start, end] by stream copy. No re-encode happens
// here; the crop stage owns the only expensive encode.
func (a *Adapter) CutClip(ctx context.Context, inVideo string, start, end time.Duration, outVideo string) error {
	b, err := a.run(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", inVideo,
		"-c", "copy",
		outVideo,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg cut clip: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) CropToAspect(ctx context.Context, inVideo, outVideo, aspect string) error {
	tw, th, err := ParseAspect(aspect)
	if err != nil {
		return err
	}
	w, h, err := a.ProbeDimensions(ctx, inVideo)
	if err != nil {
		return err
	}
	cw, ch := cropSize(w, h, tw, th)
	b, err := a.run(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vf", fmt.Sprintf("crop=%d:%d", cw, ch),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "copy",
		outVideo,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg crop: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) BurnSubtitles(ctx context.Context, inVideo, assPath, outVideo string) error {
	b, err := a.run(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vf", "subtitles="+escapeFilterPath(assPath),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "copy",
		outVideo,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg burn subtitles: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error) {
	b, err := a.run(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inVideo,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func (a *Adapter) ProbeDimensions(ctx context.Context, inVideo string) (int, int, error) {
	b, err := a.run(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		inVideo,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe dimensions: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("parse dimensions %q", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("parse dimensions %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("parse dimensions %q: %w", s, err)
	}
	return w, h, nil
}

// ParseAspect splits a "W:H" ratio like "9:16" into its two terms.
func ParseAspect(aspect string) (int, int, error) {
	ws, hs, ok := strings.Cut(aspect, ":")
	if !ok {
		return 0, 0, fmt.Errorf("aspect %q: want W:H", aspect)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("aspect %q: %w", aspect, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("aspect %q: %w", aspect, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("aspect %q: terms must be positive", aspect)
	}
	return w, h, nil
}

// cropSize computes the centered crop of a w x h frame matching the
// target aspect. Integer cross products avoid float ratio comparison;
// dimensions are trimmed to even numbers for the encoder.
func cropSize(w, h, targetW, targetH int) (int, int) {
	cw, ch := w, h
	if w*targetH > h*targetW {
		cw = h * targetW / targetH
	} else {
		ch = w * targetH / targetW
	}
	cw -= cw % 2
	ch -= ch % 2
	return cw, ch
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
