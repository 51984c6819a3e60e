package segments

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clipkit/clipkit/internal/types"
)

// Tagger produces part-of-speech tokens for a piece of text. A nil
// Tagger means tagging is unavailable for this run.
type Tagger interface {
	Tag(text string) ([]types.Token, error)
}

// Scorer rates how content-rich a piece of transcript text is. Scores
// from different scorers are not comparable with each other, so one
// scorer rates a whole batch.
type Scorer interface {
	Name() string
	Score(ctx context.Context, text string) (int, error)
}

// NewScorer picks the scoring mode for a batch. The tagger was probed
// once when its adapter was built; runs never switch modes per segment.
func NewScorer(tagger Tagger) Scorer {
	if tagger == nil {
		return LengthScorer{}
	}
	return &TokenScorer{tagger: tagger}
}

// TokenScorer counts nouns, proper nouns and verbs: segments dense in
// them carry the concrete statements worth clipping.
type TokenScorer struct {
	tagger Tagger
}

func (s *TokenScorer) Name() string { return "tokens" }

func (s *TokenScorer) Score(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	toks, err := s.tagger.Tag(text)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, tok := range toks {
		switch tok.POS {
		case "NOUN", "PROPN", "VERB":
			n++
		}
	}
	return n, nil
}

// LengthScorer is the degraded mode: trimmed text length stands in for
// content density when no tagger is available.
type LengthScorer struct{}

func (LengthScorer) Name() string { return "length" }

func (LengthScorer) Score(_ context.Context, text string) (int, error) {
	return utf8.RuneCountInString(strings.TrimSpace(text)), nil
}

// ScoreSegments rates every segment that has usable text. A scoring
// error degrades the whole batch to the length metric, never a single
// segment.
func ScoreSegments(ctx context.Context, scorer Scorer, tr types.Transcript) ([]types.ScoredSegment, error) {
	out, err := scoreAll(ctx, scorer, tr)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if _, ok := scorer.(LengthScorer); ok {
		return nil, err
	}
	return scoreAll(ctx, LengthScorer{}, tr)
}

func scoreAll(ctx context.Context, scorer Scorer, tr types.Transcript) ([]types.ScoredSegment, error) {
	out := make([]types.ScoredSegment, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		score, err := scorer.Score(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, types.ScoredSegment{
			Start: dur(seg.Start),
			End:   dur(seg.End),
			Text:  text,
			Score: score,
		})
	}
	return out, nil
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
