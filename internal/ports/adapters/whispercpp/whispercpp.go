package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clipkit/clipkit/internal/logging"
	"github.com/clipkit/clipkit/internal/types"
)

type Adapter struct {
	bin   string
	model string
	log   zerolog.Logger
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, log: logging.WithComponent("whisper")}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	a.log.Debug().Str("bin", a.bin).Strs("args", args).Msg("exec")
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	tr, err := parseOutput(jb)
	if err != nil {
		return types.Transcript{}, err
	}
	a.log.Info().Int("segments", len(tr.Segments)).Msg("transcription complete")
	return tr, nil
}

// whisperOutput mirrors the document whisper.cpp writes with -oj.
// Offsets are milliseconds from the start of the audio.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseOutput(b []byte) (types.Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper json: %w", err)
	}
	var tr types.Transcript
	for _, s := range out.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return tr, nil
}
