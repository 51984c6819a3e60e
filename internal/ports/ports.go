package ports

import (
	"context"
	"time"

	"github.com/clipkit/clipkit/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error
	CutClip(ctx context.Context, inVideo string, start, end time.Duration, outVideo string) error
	CropToAspect(ctx context.Context, inVideo, outVideo, aspect string) error
	BurnSubtitles(ctx context.Context, inVideo, assPath, outVideo string) error
	ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error)
	ProbeDimensions(ctx context.Context, inVideo string) (width, height int, err error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// Downloader fetches a remote video into destDir and returns the path
// of the file it produced.
type Downloader interface {
	Fetch(ctx context.Context, url, destDir string) (string, error)
}
