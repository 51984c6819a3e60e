package transcript

import (
	"strings"

	"github.com/clipkit/clipkit/internal/domain/timecode"
	"github.com/clipkit/clipkit/internal/types"
)

// DefaultInterval is the target window length in seconds.
const DefaultInterval = 60.0

type item struct {
	start float64
	end   float64
	text  string
}

// Windows groups the transcript into chapter-sized spans of roughly
// interval seconds. Word timestamps are used when a segment carries
// them, for tighter window boundaries. A window closes on a silence gap
// longer than half the interval, or once the next item would stretch it
// past the interval itself.
func Windows(tr types.Transcript, interval float64) []types.Window {
	if interval <= 0 {
		interval = DefaultInterval
	}

	var (
		out    []types.Window
		buf    []string
		start  float64 // start of the open window
		last   float64 // end of the previous item
		primed bool    // at least one item seen
	)
	flush := func(from, to float64) {
		if len(buf) == 0 {
			return
		}
		out = append(out, types.Window{
			Time: timecode.Format(from) + " - " + timecode.Format(to),
			Text: strings.Join(buf, " "),
		})
		buf = nil
	}

	for _, it := range items(tr) {
		if !primed {
			start = it.start
		}
		gap := primed && it.start-last > interval/2
		full := it.end-start > interval
		if gap || full {
			flush(start, last)
			start = it.start
		}
		buf = append(buf, it.text)
		last = it.end
		primed = true
	}
	flush(start, last)
	return out
}

func items(tr types.Transcript) []item {
	var out []item
	for _, seg := range tr.Segments {
		if len(seg.Words) > 0 {
			for _, w := range seg.Words {
				if text := strings.TrimSpace(w.Word); text != "" {
					out = append(out, item{start: w.Start, end: w.End, text: text})
				}
			}
			continue
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			out = append(out, item{start: seg.Start, end: seg.End, text: text})
		}
	}
	return out
}
