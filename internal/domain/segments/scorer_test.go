package segments

import (
	"context"
	"errors"
	"testing"

	"github.com/clipkit/clipkit/internal/types"
)

type fakeTagger struct {
	tokens map[string][]types.Token
	errOn  string
	calls  []string
}

func (f *fakeTagger) Tag(text string) ([]types.Token, error) {
	f.calls = append(f.calls, text)
	if f.errOn != "" && text == f.errOn {
		return nil, errors.New("tagger down")
	}
	return f.tokens[text], nil
}

func toks(pos ...string) []types.Token {
	out := make([]types.Token, 0, len(pos))
	for _, p := range pos {
		out = append(out, types.Token{Text: "w", POS: p})
	}
	return out
}

func TestNewScorer(t *testing.T) {
	t.Parallel()

	if got := NewScorer(nil).Name(); got != "length" {
		t.Fatalf("NewScorer(nil).Name() = %q, want length", got)
	}
	if got := NewScorer(&fakeTagger{}).Name(); got != "tokens" {
		t.Fatalf("NewScorer(tagger).Name() = %q, want tokens", got)
	}
}

func TestTokenScorerCountsContentTags(t *testing.T) {
	t.Parallel()

	tagger := &fakeTagger{tokens: map[string][]types.Token{
		"the cat sat": toks("DET", "NOUN", "VERB"),
		"John runs":   toks("PROPN", "VERB"),
		"so very":     toks("ADV", "ADV"),
	}}
	scorer := NewScorer(tagger)

	cases := []struct {
		text string
		want int
	}{
		{text: "the cat sat", want: 2},
		{text: "John runs", want: 2},
		{text: "so very", want: 0},
	}
	for _, tc := range cases {
		got, err := scorer.Score(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("Score(%q): %v", tc.text, err)
		}
		if got != tc.want {
			t.Fatalf("Score(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestTokenScorerContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scorer := NewScorer(&fakeTagger{})
	if _, err := scorer.Score(ctx, "anything"); err == nil {
		t.Fatal("Score with cancelled context: want error")
	}
}

func TestLengthScorer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want int
	}{
		{text: "hello", want: 5},
		{text: "  padded  ", want: 6},
		{text: "приём", want: 5},
		{text: "", want: 0},
	}
	for _, tc := range cases {
		got, err := LengthScorer{}.Score(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("Score(%q): %v", tc.text, err)
		}
		if got != tc.want {
			t.Fatalf("Score(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestScoreSegments(t *testing.T) {
	t.Parallel()

	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 5, Text: " the cat sat "},
		{Start: 5, End: 6, Text: "   "},
		{Start: 6, End: 10, Text: "John runs"},
	}}
	tagger := &fakeTagger{tokens: map[string][]types.Token{
		"the cat sat": toks("DET", "NOUN", "VERB"),
		"John runs":   toks("PROPN", "VERB"),
	}}

	got, err := ScoreSegments(context.Background(), NewScorer(tagger), tr)
	if err != nil {
		t.Fatalf("ScoreSegments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d scored segments, want 2 (blank segment skipped)", len(got))
	}
	if got[0].Text != "the cat sat" || got[0].Score != 2 {
		t.Fatalf("first = %q score %d, want %q score 2", got[0].Text, got[0].Score, "the cat sat")
	}
	if got[1].Text != "John runs" || got[1].Score != 2 {
		t.Fatalf("second = %q score %d, want %q score 2", got[1].Text, got[1].Score, "John runs")
	}
	if got[0].Duration().Seconds() != 5 {
		t.Fatalf("first duration = %v, want 5s", got[0].Duration())
	}
}

func TestScoreSegmentsEmptyTranscript(t *testing.T) {
	t.Parallel()

	got, err := ScoreSegments(context.Background(), NewScorer(nil), types.Transcript{})
	if err != nil {
		t.Fatalf("ScoreSegments: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d scored segments, want 0", len(got))
	}
}

func TestScoreSegmentsFallsBackForWholeBatch(t *testing.T) {
	t.Parallel()

	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 5, Text: "alpha beta"},
		{Start: 5, End: 8, Text: "boom"},
		{Start: 8, End: 12, Text: "gamma"},
	}}
	tagger := &fakeTagger{
		tokens: map[string][]types.Token{
			"alpha beta": toks("NOUN", "NOUN"),
			"gamma":      toks("NOUN"),
		},
		errOn: "boom",
	}

	got, err := ScoreSegments(context.Background(), NewScorer(tagger), tr)
	if err != nil {
		t.Fatalf("ScoreSegments: %v", err)
	}
	// Every segment is rescored with the length metric, including the
	// ones the tagger had already handled.
	wantScores := []int{10, 4, 5}
	if len(got) != len(wantScores) {
		t.Fatalf("got %d scored segments, want %d", len(got), len(wantScores))
	}
	for i, want := range wantScores {
		if got[i].Score != want {
			t.Fatalf("segment %d score = %d, want %d (length metric)", i, got[i].Score, want)
		}
	}
}

func TestScoreSegmentsCancelledContextDoesNotFallBack(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := types.Transcript{Segments: []types.Segment{{Start: 0, End: 5, Text: "hello"}}}
	if _, err := ScoreSegments(ctx, NewScorer(&fakeTagger{}), tr); err == nil {
		t.Fatal("ScoreSegments with cancelled context: want error")
	}
}
