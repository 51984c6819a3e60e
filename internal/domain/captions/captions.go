package captions

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipkit/clipkit/internal/types"
)

// Overlapping returns the transcript segments whose time range overlaps
// the clip range [start, end).
func Overlapping(tr types.Transcript, start, end time.Duration) []types.Segment {
	var out []types.Segment
	for _, s := range tr.Segments {
		ss := dur(s.Start)
		se := dur(s.End)
		if se <= start || ss >= end {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Rebase shifts segments onto a clip's own timeline. Starts clamp to
// zero for speech already running when the clip begins. Cues with no
// text or no remaining duration are dropped.
func Rebase(segs []types.Segment, clipStart time.Duration) []types.Caption {
	var out []types.Caption
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		start := dur(s.Start) - clipStart
		if start < 0 {
			start = 0
		}
		end := dur(s.End) - clipStart
		if end <= start {
			continue
		}
		out = append(out, types.Caption{Start: start, End: end, Text: text})
	}
	return out
}

// RenderASS renders caption cues as an ASS subtitle document styled for
// vertical 9:16 video, one Dialogue event per cue.
func RenderASS(captions []types.Caption) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range captions {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(c.Start))
		b.WriteString(",")
		b.WriteString(assTime(c.End))
		b.WriteString(",Caption,,0,0,0,,")
		b.WriteString(sanitizeASS(c.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption, Inter, 72, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,2, 60,60,120,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", `\N`)
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
