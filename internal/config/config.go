// Package config loads the clipkit.toml file and holds its defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Segments struct {
	Num            int     `toml:"num_segments"`
	MinLength      float64 `toml:"min_segment_length"`
	WindowInterval float64 `toml:"window_interval"`
}

type Video struct {
	AspectRatio string `toml:"output_aspect_ratio"`
}

type Captions struct {
	Skip bool `toml:"skip_captioning"`
}

type Cleanup struct {
	KeepIntermediates bool `toml:"keep_intermediate_files"`
}

type Tools struct {
	FFmpeg         string `toml:"ffmpeg"`
	FFprobe        string `toml:"ffprobe"`
	WhisperBin     string `toml:"whisper_bin"`
	WhisperModel   string `toml:"whisper_model"`
	YtDlp          string `toml:"yt_dlp"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Logging struct {
	Level string `toml:"level"`
}

type Config struct {
	Segments Segments `toml:"segments"`
	Video    Video    `toml:"video"`
	Captions Captions `toml:"captions"`
	Cleanup  Cleanup  `toml:"cleanup"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`
}

func Default() Config {
	return Config{
		Segments: Segments{
			Num:            3,
			MinLength:      30,
			WindowInterval: 60,
		},
		Video: Video{AspectRatio: "9:16"},
		Tools: Tools{
			FFmpeg:     "ffmpeg",
			FFprobe:    "ffprobe",
			WhisperBin: "whisper-cli",
			YtDlp:      "yt-dlp",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads path, or ./clipkit.toml when path is empty. A missing
// default file yields the defaults; a missing explicit file is an
// error. File values are decoded over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	resolved := path
	if resolved == "" {
		resolved = "clipkit.toml"
	}
	f, err := os.Open(resolved)
	switch {
	case err == nil:
		defer f.Close()
		if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == "":
		// No config file is fine; defaults apply.
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Segments.Num < 0 {
		return errors.New("segments.num_segments must not be negative")
	}
	if c.Segments.MinLength < 0 {
		return errors.New("segments.min_segment_length must not be negative")
	}
	if c.Segments.WindowInterval <= 0 {
		return errors.New("segments.window_interval must be positive")
	}
	if err := checkAspect(c.Video.AspectRatio); err != nil {
		return err
	}
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must not be negative")
	}
	return nil
}

func (s Segments) MinDuration() time.Duration {
	return time.Duration(s.MinLength * float64(time.Second))
}

func (t Tools) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// WriteDefault writes a config file holding the defaults, ready for
// editing.
func WriteDefault(path string) error {
	b, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# clipkit configuration. Values below are the defaults; flags override\n# file values.\n\n"
	if err := os.WriteFile(path, append([]byte(header), b...), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func checkAspect(aspect string) error {
	ws, hs, ok := strings.Cut(aspect, ":")
	if !ok {
		return fmt.Errorf("video.output_aspect_ratio %q: want W:H", aspect)
	}
	w, werr := strconv.Atoi(strings.TrimSpace(ws))
	h, herr := strconv.Atoi(strings.TrimSpace(hs))
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return fmt.Errorf("video.output_aspect_ratio %q: want positive W:H", aspect)
	}
	return nil
}
