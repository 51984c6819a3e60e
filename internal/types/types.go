package types

import "time"

type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

type ScoredSegment struct {
	Start time.Duration
	End   time.Duration
	Text  string
	Score int
}

func (s ScoredSegment) Duration() time.Duration { return s.End - s.Start }

type SelectedSegment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Caption is a single subtitle cue. Times are clip-local once the cue
// has been rebased onto a cut clip.
type Caption struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Window is a chapter-sized span of transcript text.
type Window struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// Token is one word with its coarse part-of-speech tag (NOUN, PROPN,
// VERB and friends).
type Token struct {
	Text string
	POS  string
}

type Manifest struct {
	RunID string         `json:"run_id"`
	Input string         `json:"input"`
	Clips []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID        string  `json:"id"`
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Score     int     `json:"score"`
	Text      string  `json:"text"`
	File      string  `json:"file"`
	Captioned bool    `json:"captioned"`
}
