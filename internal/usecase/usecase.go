package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipkit/clipkit/internal/domain/captions"
	"github.com/clipkit/clipkit/internal/domain/segments"
	"github.com/clipkit/clipkit/internal/domain/transcript"
	"github.com/clipkit/clipkit/internal/logging"
	"github.com/clipkit/clipkit/internal/ports"
	"github.com/clipkit/clipkit/internal/types"
)

type Deps struct {
	Video      ports.VideoTool
	ASR        ports.ASR
	Downloader ports.Downloader
	Scorer     segments.Scorer
}

type Usecase struct {
	d   Deps
	log zerolog.Logger
}

func New(d Deps) Usecase {
	return Usecase{d: d, log: logging.WithComponent("pipeline")}
}

type Input struct {
	RunID        string
	Source       string // local file path or http(s) URL
	WorkDir      string // scratch workspace, owned by this run
	RawDir       string // intermediate cuts
	FinalDir     string // formatted and captioned clips
	SegmentsN    int
	MinSegment   time.Duration
	AspectRatio  string
	SkipCaptions bool
	KeepFiles    bool
	StageTimeout time.Duration // 0 disables per-stage timeouts
}

type Result struct {
	Manifest   types.Manifest
	Transcript types.Transcript
}

// clipRecord carries one selected segment through the per-clip stages.
// Stages take a record by value and return the updated copy; a stage
// error drops the record from the working set.
type clipRecord struct {
	idx       int
	seg       types.SelectedSegment
	score     int
	rawPath   string
	final     string
	captioned bool
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	src, tr, err := u.prepare(ctx, in)
	if err != nil {
		return Result{}, err
	}

	scored, err := segments.ScoreSegments(ctx, u.d.Scorer, tr)
	if err != nil {
		return Result{}, err
	}
	selected := segments.Select(scored, in.SegmentsN, in.MinSegment)
	u.log.Info().
		Str("scorer", u.d.Scorer.Name()).
		Int("scored", len(scored)).
		Int("selected", len(selected)).
		Msg("segments selected")

	manifest := types.Manifest{RunID: in.RunID, Input: in.Source}
	if len(selected) == 0 {
		u.log.Warn().Msg("no segments matched the selection criteria")
		u.cleanup(in)
		return Result{Manifest: manifest, Transcript: tr}, nil
	}

	records := make([]clipRecord, 0, len(selected))
	for i, seg := range selected {
		records = append(records, clipRecord{idx: i, seg: seg, score: scoreFor(scored, seg)})
	}

	cut := func(ctx context.Context, rec clipRecord) (clipRecord, error) {
		name := fmt.Sprintf("segment_%d_%s_%.0fs-%.0fs.mp4",
			rec.idx+1, slug(rec.seg.Text), rec.seg.Start.Seconds(), rec.seg.End.Seconds())
		raw := filepath.Join(in.RawDir, name)
		cctx, cancel := stageCtx(ctx, in.StageTimeout)
		defer cancel()
		if err := u.d.Video.CutClip(cctx, src, rec.seg.Start, rec.seg.End, raw); err != nil {
			return rec, err
		}
		rec.rawPath = raw
		return rec, nil
	}

	reformat := func(ctx context.Context, rec clipRecord) (clipRecord, error) {
		base := strings.TrimSuffix(filepath.Base(rec.rawPath), filepath.Ext(rec.rawPath))
		formatted := filepath.Join(in.FinalDir, base+"_formatted.mp4")
		cctx, cancel := stageCtx(ctx, in.StageTimeout)
		defer cancel()
		if err := u.d.Video.CropToAspect(cctx, rec.rawPath, formatted, in.AspectRatio); err != nil {
			return rec, err
		}
		rec.final = formatted
		return rec, nil
	}

	// Caption problems never drop a record: the formatted clip stays
	// as that record's final artifact.
	caption := func(ctx context.Context, rec clipRecord) (clipRecord, error) {
		if in.SkipCaptions {
			return rec, nil
		}
		cues := captions.Rebase(captions.Overlapping(tr, rec.seg.Start, rec.seg.End), rec.seg.Start)
		if len(cues) == 0 {
			u.log.Info().Int("clip", rec.idx+1).Msg("no caption overlap, keeping formatted clip")
			return rec, nil
		}
		assPath := filepath.Join(in.WorkDir, fmt.Sprintf("segment_%d.ass", rec.idx+1))
		if err := os.WriteFile(assPath, []byte(captions.RenderASS(cues)), 0o644); err != nil {
			u.log.Warn().Err(err).Int("clip", rec.idx+1).Msg("caption write failed, keeping formatted clip")
			return rec, nil
		}
		base := strings.TrimSuffix(filepath.Base(rec.final), "_formatted.mp4")
		captioned := filepath.Join(in.FinalDir, base+"_captioned.mp4")
		cctx, cancel := stageCtx(ctx, in.StageTimeout)
		defer cancel()
		if err := u.d.Video.BurnSubtitles(cctx, rec.final, assPath, captioned); err != nil {
			u.log.Warn().Err(err).Int("clip", rec.idx+1).Msg("caption burn failed, keeping formatted clip")
			return rec, nil
		}
		if !in.KeepFiles {
			_ = os.Remove(rec.final)
		}
		rec.final = captioned
		rec.captioned = true
		return rec, nil
	}

	for _, st := range []struct {
		name  string
		stage stageFunc
	}{
		{name: "cut", stage: cut},
		{name: "reformat", stage: reformat},
		{name: "caption", stage: caption},
	} {
		records, err = u.fold(ctx, st.name, records, st.stage)
		if err != nil {
			return Result{}, err
		}
	}

	for _, rec := range records {
		manifest.Clips = append(manifest.Clips, types.ManifestClip{
			ID:        fmt.Sprintf("clip_%03d", rec.idx+1),
			StartSec:  rec.seg.Start.Seconds(),
			EndSec:    rec.seg.End.Seconds(),
			Score:     rec.score,
			Text:      rec.seg.Text,
			File:      filepath.ToSlash(filepath.Join(filepath.Base(in.FinalDir), filepath.Base(rec.final))),
			Captioned: rec.captioned,
		})
	}

	u.cleanup(in)
	u.log.Info().Int("clips", len(manifest.Clips)).Str("dir", in.FinalDir).Msg("run complete")
	return Result{Manifest: manifest, Transcript: tr}, nil
}

// Chapters transcribes the source and groups the transcript into timed
// windows without cutting anything. Only Source, WorkDir and
// StageTimeout of the input are used.
func (u Usecase) Chapters(ctx context.Context, in Input, interval float64) ([]types.Window, error) {
	_, tr, err := u.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	return transcript.Windows(tr, interval), nil
}

// prepare stages the source locally, pulls its audio and transcribes
// it. Every later stage works off the returned transcript.
func (u Usecase) prepare(ctx context.Context, in Input) (string, types.Transcript, error) {
	cctx, cancel := stageCtx(ctx, in.StageTimeout)
	src, err := u.ingest(cctx, in)
	cancel()
	if err != nil {
		return "", types.Transcript{}, err
	}
	u.log.Info().Str("source", src).Msg("input ready")

	wav := filepath.Join(in.WorkDir, "audio.wav")
	cctx, cancel = stageCtx(ctx, in.StageTimeout)
	err = u.d.Video.ExtractAudioMono16k(cctx, src, wav)
	cancel()
	if err != nil {
		return "", types.Transcript{}, err
	}

	cctx, cancel = stageCtx(ctx, in.StageTimeout)
	tr, err := u.d.ASR.Transcribe(cctx, wav, in.WorkDir)
	cancel()
	if err != nil {
		return "", types.Transcript{}, err
	}
	if len(tr.Segments) == 0 {
		return "", types.Transcript{}, errors.New("transcription produced no segments")
	}
	return src, tr, nil
}

type stageFunc func(ctx context.Context, rec clipRecord) (clipRecord, error)

// fold advances every record through one stage, dropping the ones the
// stage rejects. Survivors keep their chronological order. A dead run
// context aborts the whole batch; a per-record stage timeout does not.
func (u Usecase) fold(ctx context.Context, name string, recs []clipRecord, stage stageFunc) ([]clipRecord, error) {
	out := make([]clipRecord, 0, len(recs))
	for _, rec := range recs {
		next, err := stage(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			u.log.Warn().Err(err).Int("clip", rec.idx+1).Str("stage", name).Msg("record dropped")
			continue
		}
		out = append(out, next)
	}
	return out, nil
}

func (u Usecase) ingest(ctx context.Context, in Input) (string, error) {
	if isURL(in.Source) {
		path, err := u.d.Downloader.Fetch(ctx, in.Source, in.WorkDir)
		if err != nil {
			return "", fmt.Errorf("download input: %w", err)
		}
		return path, nil
	}
	info, err := os.Stat(in.Source)
	if err != nil {
		return "", fmt.Errorf("input video: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input video %s is a directory", in.Source)
	}
	dst := filepath.Join(in.WorkDir, filepath.Base(in.Source))
	if err := copyFile(in.Source, dst); err != nil {
		return "", fmt.Errorf("copy input: %w", err)
	}
	return dst, nil
}

func (u Usecase) cleanup(in Input) {
	if in.KeepFiles {
		u.log.Info().Msg("keeping intermediate files")
		return
	}
	for _, dir := range []string{in.WorkDir, in.RawDir} {
		if err := os.RemoveAll(dir); err != nil {
			u.log.Warn().Err(err).Str("dir", dir).Msg("cleanup failed")
		}
	}
}

func stageCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func scoreFor(scored []types.ScoredSegment, sel types.SelectedSegment) int {
	for _, s := range scored {
		if s.Start == sel.Start && s.End == sel.End && s.Text == sel.Text {
			return s.Score
		}
	}
	return 0
}

// slug keeps the first 20 characters of the text with anything outside
// ASCII letters and digits replaced by underscores, for raw clip names.
func slug(text string) string {
	runes := []rune(text)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	var b strings.Builder
	for _, r := range runes {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
