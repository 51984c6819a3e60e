package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clipkit/clipkit/internal/logging"
)

type Adapter struct {
	bin string
	log zerolog.Logger
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, log: logging.WithComponent("ytdlp")}
}

// Fetch downloads url into destDir and returns the path of the file
// yt-dlp produced. The tool names the file after the video title.
func (a *Adapter) Fetch(ctx context.Context, url, destDir string) (string, error) {
	args := []string{
		"-f", "best",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"--no-simulate",
		"--print", "after_move:filepath",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		url,
	}
	a.log.Debug().Str("bin", a.bin).Strs("args", args).Msg("exec")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp fetch: %w\n%s", err, stderr.String())
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("yt-dlp fetch: no output path reported")
	}
	lines := strings.Split(out, "\n")
	path := strings.TrimSpace(lines[len(lines)-1])
	a.log.Info().Str("file", path).Msg("download complete")
	return path, nil
}
